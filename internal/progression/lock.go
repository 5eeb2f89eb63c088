// Package progression holds the pure core of the program engine: day lock
// evaluation, completion bookkeeping, streak arithmetic, and the monthly
// reset quota. Nothing here performs I/O; persistence belongs to the
// reconciler.
package progression

import (
	"time"

	"github.com/jstrand/bt/internal/clock"
	"github.com/jstrand/bt/internal/models"
)

// IsLocked reports whether the given day's content may not yet be started.
// Locked status is computed from the program snapshot and "now", never
// stored. A malformed snapshot or invalid day number fails safe to locked.
//
// Standard track: day N opens once day N-1 is completed and at least N-1
// calendar days have passed since the program started.
//
// Extended track: day N opens once both of day N-1's sessions are completed
// and the calendar day has rolled over since the last program mutation.
// The rollover gate keeps a user who finishes morning and evening back to
// back from unlocking more than one day within the same calendar day.
func IsLocked(p *models.Program, dayNumber int, now time.Time) bool {
	if p == nil || dayNumber < 1 || p.StartDate.IsZero() || !p.TrackKind.Valid() {
		return true
	}
	if dayNumber > p.TrackKind.Length() {
		return true
	}
	if dayNumber == 1 {
		return false
	}

	switch p.TrackKind {
	case models.TrackStandard:
		if !p.DayDone(dayNumber - 1) {
			return true
		}
		return clock.DaysBetween(p.StartDate, now) < dayNumber-1
	case models.TrackExtended:
		// Days the user has already reached never re-lock.
		if dayNumber <= p.CurrentDay {
			return false
		}
		if dayNumber > p.CurrentDay+1 {
			return true
		}
		// A started day stays open. Recording its morning session stamps
		// lastUpdated, which must not trip the rollover gate below.
		if p.HasCompleted(models.SessionKey(dayNumber, models.SessionMorning)) ||
			p.HasCompleted(models.SessionKey(dayNumber, models.SessionEvening)) {
			return false
		}
		if !p.DayDone(dayNumber - 1) {
			return true
		}
		return clock.SameDay(p.LastUpdated, now)
	default:
		return true
	}
}

// NextDayUnlockable reports whether the reconciler's rollover check should
// advance currentDay: the program is active, not at the end of its track,
// and the day after currentDay now evaluates unlocked.
func NextDayUnlockable(p *models.Program, now time.Time) bool {
	if p == nil || !p.IsActive {
		return false
	}
	if p.CurrentDay >= p.TrackKind.Length() {
		return false
	}
	return !IsLocked(p, p.CurrentDay+1, now)
}
