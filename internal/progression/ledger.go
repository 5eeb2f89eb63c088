package progression

import (
	"fmt"
	"time"

	"github.com/jstrand/bt/internal/models"
	"github.com/jstrand/bt/internal/store"
)

// Complete records a finished day or session and returns the updated
// program snapshot. The input is never mutated. Completing a key that is
// already recorded is a no-op and returns the input snapshot unchanged, so
// callers can detect idempotent repeats by pointer identity.
//
// On the standard track currentDay advances immediately. On the extended
// track currentDay only moves via the reconciler's date-rollover check;
// finishing the evening session does not itself flip the day.
func Complete(p *models.Program, key models.CompletionKey, now time.Time) (*models.Program, error) {
	if p == nil || !p.TrackKind.Valid() {
		return nil, fmt.Errorf("complete %q: %w", key, store.ErrMalformedRecord)
	}

	day, session, err := key.Parse()
	if err != nil {
		return nil, fmt.Errorf("complete: %w: %v", store.ErrOutOfRange, err)
	}
	if day < 1 || day > p.TrackKind.Length() {
		return nil, fmt.Errorf("complete day %d on %s track: %w", day, p.TrackKind, store.ErrOutOfRange)
	}
	switch p.TrackKind {
	case models.TrackStandard:
		if session != "" {
			return nil, fmt.Errorf("session key %q on standard track: %w", key, store.ErrOutOfRange)
		}
	case models.TrackExtended:
		if session == "" {
			return nil, fmt.Errorf("bare day key %q on extended track: %w", key, store.ErrOutOfRange)
		}
	}

	if p.HasCompleted(key) {
		return p, nil
	}

	next := p.Clone()
	next.CompletedKeys = append(next.CompletedKeys, key)
	if p.TrackKind == models.TrackStandard {
		next.CurrentDay = min(p.CurrentDay+1, p.TrackKind.Length())
	}
	next.LastUpdated = now
	return next, nil
}
