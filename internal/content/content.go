// Package content holds the built-in day tables for the two program tracks
// and builds a fresh Program from assessment answers. The progression
// engine treats the generated days as opaque content.
package content

import (
	"fmt"
	"time"

	"github.com/jstrand/bt/internal/models"
)

// Assessment carries the onboarding answers that pick a track.
type Assessment struct {
	// Experienced users get the extended track.
	Experienced bool
	// MinutesPerDay the user can commit. Under 10 forces the standard
	// track regardless of experience.
	MinutesPerDay int
}

// ChooseTrack maps assessment answers to a track kind.
func ChooseTrack(a Assessment) models.TrackKind {
	if a.Experienced && a.MinutesPerDay >= 10 {
		return models.TrackExtended
	}
	return models.TrackStandard
}

// NewProgram builds an active program for the given track starting now.
func NewProgram(kind models.TrackKind, now time.Time) (*models.Program, error) {
	days, err := Days(kind)
	if err != nil {
		return nil, err
	}
	return &models.Program{
		TrackKind:   kind,
		CurrentDay:  1,
		StartDate:   now,
		LastUpdated: now,
		IsActive:    true,
		Days:        days,
	}, nil
}

// Days returns the content table for the track.
func Days(kind models.TrackKind) ([]models.Day, error) {
	switch kind {
	case models.TrackStandard:
		return append([]models.Day(nil), standardDays[:]...), nil
	case models.TrackExtended:
		return extendedDays(), nil
	default:
		return nil, fmt.Errorf("unknown track kind %q", kind)
	}
}

var standardDays = [models.StandardTrackLength]models.Day{
	{Number: 1, Title: "Arrive", Technique: "box", DurationMin: 5,
		Description: "Four counts in, hold, out, hold. Settle into the rhythm."},
	{Number: 2, Title: "Slow down", Technique: "coherent", DurationMin: 6,
		Description: "Five and a half breaths per minute, no holds."},
	{Number: 3, Title: "Lengthen the exhale", Technique: "extended_exhale", DurationMin: 7,
		Description: "Inhale four, exhale eight. The long exhale does the work."},
	{Number: 4, Title: "Balance", Technique: "alternate_nostril", DurationMin: 8,
		Description: "Alternate nostril breathing, seated, eyes closed."},
	{Number: 5, Title: "Put it together", Technique: "coherent", DurationMin: 10,
		Description: "A full coherent session at your own pace."},
}

// extendedDays builds the 21-day table: three weekly blocks that cycle the
// techniques with growing session length.
func extendedDays() []models.Day {
	techniques := []struct {
		id    string
		title string
	}{
		{"box", "Box breathing"},
		{"coherent", "Coherent breathing"},
		{"extended_exhale", "Extended exhale"},
		{"alternate_nostril", "Alternate nostril"},
		{"diaphragmatic", "Diaphragmatic breathing"},
		{"humming", "Humming breath"},
		{"body_scan", "Breath with body scan"},
	}

	days := make([]models.Day, models.ExtendedTrackLength)
	for i := range days {
		week := i/7 + 1
		tech := techniques[i%len(techniques)]
		days[i] = models.Day{
			Number:      i + 1,
			Title:       fmt.Sprintf("Week %d: %s", week, tech.title),
			Technique:   tech.id,
			DurationMin: 5 + 2*(week-1),
			Description: "Morning and evening session, same technique both times.",
		}
	}
	return days
}
