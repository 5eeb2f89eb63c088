package progression

import (
	"time"

	"github.com/jstrand/bt/internal/clock"
	"github.com/jstrand/bt/internal/models"
)

// ResetDecision is the outcome of a reset attempt.
type ResetDecision struct {
	Allowed   bool
	Remaining int
	// Quota is the record to persist when Allowed; on a denial or for a
	// premium account it is the input, untouched.
	Quota *models.ResetQuota
}

// TryReset decides whether a program reset is permitted and, when it is,
// returns the spent quota record. Premium accounts are never metered: the
// quota record is neither consulted nor mutated and Remaining reports the
// unlimited sentinel. Free-tier accounts get MonthlyResetLimit resets per
// calendar month; the counter rolls to zero whenever the month changes.
//
// A denied attempt mutates nothing and reports zero remaining.
func TryReset(q *models.ResetQuota, now time.Time, premium bool) ResetDecision {
	if premium {
		return ResetDecision{Allowed: true, Remaining: models.UnlimitedResets, Quota: q}
	}

	monthKey := clock.MonthKey(now)
	spent := 0
	if q != nil && q.MonthKey == monthKey {
		spent = q.ResetCount
	}

	if spent >= models.MonthlyResetLimit {
		return ResetDecision{Allowed: false, Remaining: 0, Quota: q}
	}

	updated := &models.ResetQuota{
		ResetCount: spent + 1,
		MonthKey:   monthKey,
	}
	return ResetDecision{
		Allowed:   true,
		Remaining: models.MonthlyResetLimit - updated.ResetCount,
		Quota:     updated,
	}
}
