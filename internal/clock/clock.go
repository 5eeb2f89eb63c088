// Package clock supplies "now" and calendar-day arithmetic. Unlock and
// streak rules are tied to date rollover, not elapsed hours, so every
// comparison in the engine goes through the midnight-normalized helpers
// here rather than raw time.Time math.
package clock

import (
	"math"
	"sync"
	"time"
)

// Clock is the injectable time source. Production code uses System;
// tests use a Fixed clock to pin "now".
type Clock interface {
	Now() time.Time
}

// System reads the wall clock.
type System struct{}

func (System) Now() time.Time { return time.Now() }

// Fixed reports a pinned instant until Set moves it. Safe for concurrent
// use so a test can roll the clock under a running timer.
type Fixed struct {
	mu sync.Mutex
	T  time.Time
}

func (f *Fixed) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.T
}

// Set moves the fixed clock to t.
func (f *Fixed) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.T = t
}

// CalendarDay strips the time of day, returning midnight of t's date in
// t's location.
func CalendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DaysBetween returns the whole calendar days from a to b (negative when b
// precedes a). Time of day is discarded on both sides. Rounding absorbs the
// one-hour drift a DST transition introduces between local midnights.
func DaysBetween(a, b time.Time) int {
	return int(math.Round(CalendarDay(b).Sub(CalendarDay(a)).Hours() / 24))
}

// MonthKey formats t as "YYYY-MM", the reset-quota bucket key.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// FormatDate formats t as an ISO 8601 date (YYYY-MM-DD).
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}
