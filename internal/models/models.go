package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TrackKind discriminates the two program shapes.
type TrackKind string

const (
	// TrackStandard is the 5-day track with a single session per day.
	TrackStandard TrackKind = "standard"
	// TrackExtended is the 21-day track with morning and evening sessions.
	TrackExtended TrackKind = "extended"
)

// Session identifies one of the two daily sessions on the extended track.
type Session string

const (
	SessionMorning Session = "morning"
	SessionEvening Session = "evening"
)

// Track lengths in days.
const (
	StandardTrackLength = 5
	ExtendedTrackLength = 21
)

// Length returns the number of days in the track, or 0 for an unknown kind.
func (k TrackKind) Length() int {
	switch k {
	case TrackStandard:
		return StandardTrackLength
	case TrackExtended:
		return ExtendedTrackLength
	default:
		return 0
	}
}

// Valid reports whether k is a known track kind.
func (k TrackKind) Valid() bool {
	return k == TrackStandard || k == TrackExtended
}

// CompletionKey identifies a completed unit of work: a bare day number on
// the standard track ("3"), or a day-session pair on the extended track
// ("3-morning").
type CompletionKey string

// DayKey builds the completion key for a standard-track day.
func DayKey(day int) CompletionKey {
	return CompletionKey(strconv.Itoa(day))
}

// SessionKey builds the completion key for an extended-track day session.
func SessionKey(day int, session Session) CompletionKey {
	return CompletionKey(fmt.Sprintf("%d-%s", day, session))
}

// Parse splits the key into its day number and optional session.
// For a standard-track key the returned session is empty.
func (k CompletionKey) Parse() (day int, session Session, err error) {
	s := string(k)
	if i := strings.IndexByte(s, '-'); i >= 0 {
		session = Session(s[i+1:])
		if session != SessionMorning && session != SessionEvening {
			return 0, "", fmt.Errorf("unknown session %q in key %q", session, k)
		}
		s = s[:i]
	}
	day, err = strconv.Atoi(s)
	if err != nil {
		return 0, "", fmt.Errorf("parse day in key %q: %w", k, err)
	}
	return day, session, nil
}

// Day is one unit of program content. The progression engine treats
// everything except the day number as opaque; Locked and Completed are
// derived at read time and never persisted.
type Day struct {
	Number      int    `json:"number"`
	Title       string `json:"title"`
	Technique   string `json:"technique"`
	Description string `json:"description,omitempty"`
	DurationMin int    `json:"duration_min,omitempty"`

	// Derived at read time, never stored.
	Locked    bool `json:"locked,omitempty"`
	Completed bool `json:"completed,omitempty"`
}

// Program is the per-user progression record. One active program exists per
// user; the remote store holds the authoritative copy and the local cache
// mirrors it for offline reads.
type Program struct {
	TrackKind     TrackKind       `json:"track_kind"`
	CurrentDay    int             `json:"current_day"`
	CompletedKeys []CompletionKey `json:"completed_keys"`
	StartDate     time.Time       `json:"start_date"`
	LastUpdated   time.Time       `json:"last_updated"`
	IsActive      bool            `json:"is_active"`
	Days          []Day           `json:"days,omitempty"`
}

// HasCompleted reports whether the key is already in the completion set.
func (p *Program) HasCompleted(key CompletionKey) bool {
	for _, k := range p.CompletedKeys {
		if k == key {
			return true
		}
	}
	return false
}

// DayDone reports whether a whole day is complete: the bare day key on the
// standard track, both sessions on the extended track.
func (p *Program) DayDone(day int) bool {
	switch p.TrackKind {
	case TrackStandard:
		return p.HasCompleted(DayKey(day))
	case TrackExtended:
		return p.HasCompleted(SessionKey(day, SessionMorning)) &&
			p.HasCompleted(SessionKey(day, SessionEvening))
	default:
		return false
	}
}

// Clone returns a deep copy so pure transforms never alias their input.
func (p *Program) Clone() *Program {
	cp := *p
	cp.CompletedKeys = append([]CompletionKey(nil), p.CompletedKeys...)
	cp.Days = append([]Day(nil), p.Days...)
	return &cp
}

// Stats is the per-user session statistics record. It is created on the
// first completed session and survives program resets.
type Stats struct {
	TotalSessions      int            `json:"total_sessions"`
	CurrentStreak      int            `json:"current_streak"`
	LongestStreak      int            `json:"longest_streak"`
	LastSessionDate    *time.Time     `json:"last_session_date,omitempty"`
	TechniqueCounts    map[string]int `json:"technique_counts,omitempty"`
	FavoriteTechniques []string       `json:"favorite_techniques,omitempty"`

	// TechniqueOrder records techniques in first-seen order. Favorite
	// ranking breaks count ties on this order, which a bare map cannot
	// preserve.
	TechniqueOrder []string `json:"technique_order,omitempty"`
}

// Clone returns a deep copy of the stats record.
func (s *Stats) Clone() *Stats {
	cp := *s
	if s.LastSessionDate != nil {
		d := *s.LastSessionDate
		cp.LastSessionDate = &d
	}
	if s.TechniqueCounts != nil {
		cp.TechniqueCounts = make(map[string]int, len(s.TechniqueCounts))
		for k, v := range s.TechniqueCounts {
			cp.TechniqueCounts[k] = v
		}
	}
	cp.FavoriteTechniques = append([]string(nil), s.FavoriteTechniques...)
	cp.TechniqueOrder = append([]string(nil), s.TechniqueOrder...)
	return &cp
}

// ResetQuota tracks how many program resets a free-tier user has spent in
// the current month. Created lazily on the first reset attempt.
type ResetQuota struct {
	ResetCount int    `json:"reset_count"`
	MonthKey   string `json:"month_key"`
}

// MonthlyResetLimit is the free-tier allowance of program resets per month.
const MonthlyResetLimit = 3

// UnlimitedResets is the remaining-resets sentinel for premium accounts.
const UnlimitedResets = -1
