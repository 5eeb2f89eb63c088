// Package output provides styled terminal output helpers (success, error,
// warning, day and stats formatting) using lipgloss.
package output

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/jstrand/bt/internal/clock"
	"github.com/jstrand/bt/internal/models"
)

var (
	// Styles
	titleStyle    = lipgloss.NewStyle().Bold(true)
	subtleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	lockedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	openStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("45"))
	doneStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	streakStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	degradedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// Success prints a success message
func Success(format string, args ...interface{}) {
	fmt.Println(successStyle.Render(fmt.Sprintf(format, args...)))
}

// Error prints an error message
func Error(format string, args ...interface{}) {
	fmt.Println(errorStyle.Render("ERROR: " + fmt.Sprintf(format, args...)))
}

// Warning prints a warning message
func Warning(format string, args ...interface{}) {
	fmt.Println(warningStyle.Render("Warning: " + fmt.Sprintf(format, args...)))
}

// Info prints an info message
func Info(format string, args ...interface{}) {
	fmt.Println(fmt.Sprintf(format, args...))
}

// JSON outputs data as JSON
func JSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// DegradedBanner returns the banner shown when the session is running
// off the local cache because the sync server was unreachable.
func DegradedBanner() string {
	return degradedStyle.Render("offline: showing cached progress, changes will sync later")
}

// DayBadge returns a status indicator with symbol
// e.g., "✓ done", "○ open", "· locked"
func DayBadge(d models.Day) string {
	switch {
	case d.Completed:
		return doneStyle.Render("✓ done")
	case d.Locked:
		return lockedStyle.Render("· locked")
	default:
		return openStyle.Render("○ open")
	}
}

// FormatDayShort formats a day as a single list row
func FormatDayShort(d models.Day, current bool) string {
	var parts []string
	num := fmt.Sprintf("day %2d", d.Number)
	if current {
		parts = append(parts, titleStyle.Render(num))
	} else {
		parts = append(parts, num)
	}
	parts = append(parts, d.Title)
	parts = append(parts, subtleStyle.Render(fmt.Sprintf("%s, %dmin", d.Technique, d.DurationMin)))
	parts = append(parts, DayBadge(d))
	return strings.Join(parts, "  ")
}

// FormatDayLong formats the full detail view for a single day
func FormatDayLong(d models.Day, kind models.TrackKind) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(fmt.Sprintf("Day %d: %s", d.Number, d.Title)))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Technique: %s | Duration: %dmin | %s\n", d.Technique, d.DurationMin, DayBadge(d)))
	if kind == models.TrackExtended {
		sb.WriteString(subtleStyle.Render("Sessions: morning and evening"))
		sb.WriteString("\n")
	}
	if d.Description != "" {
		sb.WriteString("\n")
		sb.WriteString(d.Description)
		sb.WriteString("\n")
	}
	return sb.String()
}

// FormatProgram formats the whole-program view: one row per day with the
// current day highlighted.
func FormatProgram(p *models.Program, days []models.Day) string {
	var sb strings.Builder

	label := "standard (5 days)"
	if p.TrackKind == models.TrackExtended {
		label = "extended (21 days)"
	}
	sb.WriteString(titleStyle.Render(fmt.Sprintf("Program: %s", label)))
	sb.WriteString("\n")
	sb.WriteString(subtleStyle.Render(fmt.Sprintf("started %s", clock.FormatDate(p.StartDate))))
	sb.WriteString("\n\n")

	for _, d := range days {
		sb.WriteString(FormatDayShort(d, d.Number == p.CurrentDay))
		sb.WriteString("\n")
	}
	return sb.String()
}

// FormatStats formats the lifetime practice summary
func FormatStats(s *models.Stats) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Practice stats"))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Sessions: %d\n", s.TotalSessions))
	sb.WriteString(fmt.Sprintf("Streak: %s (longest %d)\n",
		streakStyle.Render(fmt.Sprintf("%d days", s.CurrentStreak)), s.LongestStreak))
	if s.LastSessionDate != nil {
		sb.WriteString(fmt.Sprintf("Last session: %s\n", FormatTimeAgo(*s.LastSessionDate)))
	}
	if len(s.FavoriteTechniques) > 0 {
		sb.WriteString(fmt.Sprintf("Favorite: %s\n", strings.Join(s.FavoriteTechniques, ", ")))
	}
	if len(s.TechniqueCounts) > 0 {
		sb.WriteString(SectionHeader("by technique"))
		for _, name := range s.TechniqueOrder {
			sb.WriteString(fmt.Sprintf("  %s: %d\n", name, s.TechniqueCounts[name]))
		}
	}
	return sb.String()
}

// FormatResetsRemaining renders the monthly reset allowance
func FormatResetsRemaining(remaining int) string {
	if remaining == models.UnlimitedResets {
		return "resets remaining this month: unlimited"
	}
	return fmt.Sprintf("resets remaining this month: %d of %d", remaining, models.MonthlyResetLimit)
}

// FormatTimeAgo formats a time as a human-readable "ago" string
func FormatTimeAgo(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1m ago"
		}
		return fmt.Sprintf("%dm ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1h ago"
		}
		return fmt.Sprintf("%dh ago", hours)
	case diff < 7*24*time.Hour:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1d ago"
		}
		return fmt.Sprintf("%dd ago", days)
	default:
		return t.Format("2006-01-02")
	}
}

// SectionHeader returns a formatted section header for CLI output
// e.g., "\nDEPENDENCIES:\n"
func SectionHeader(title string) string {
	return fmt.Sprintf("\n%s:\n", strings.ToUpper(title))
}

// IndentLines indents each line by the specified number of spaces
func IndentLines(lines []string, spaces int) []string {
	indent := strings.Repeat(" ", spaces)
	result := make([]string, len(lines))
	for i, line := range lines {
		result[i] = indent + line
	}
	return result
}

// IndentString indents each line in a string by the specified number of spaces
func IndentString(s string, spaces int) string {
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	indented := IndentLines(lines, spaces)
	return strings.Join(indented, "\n")
}
