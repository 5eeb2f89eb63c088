package store

import "errors"

// Sentinel errors for the engine's failure taxonomy. Callers classify with
// errors.Is; everything else is treated as fatal and surfaced.
var (
	// ErrNetworkUnavailable means the remote store could not be reached.
	// The reconciler degrades to the local cache and retries later.
	ErrNetworkUnavailable = errors.New("remote store unreachable")

	// ErrOutOfRange rejects a day or session key beyond the track bounds.
	ErrOutOfRange = errors.New("day out of range")

	// ErrDayLocked rejects a completion for a day whose unlock condition
	// has not been met yet.
	ErrDayLocked = errors.New("day is locked")

	// ErrQuotaExceeded denies a reset for a free-tier user who has spent
	// this month's allowance.
	ErrQuotaExceeded = errors.New("monthly reset quota exceeded")

	// ErrMalformedRecord marks a stored record missing a required field.
	// Pure functions fail safe (locked / denied) instead of crashing.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrNoProgram means no active program exists for the user.
	ErrNoProgram = errors.New("no active program")
)
