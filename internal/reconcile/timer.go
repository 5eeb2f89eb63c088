package reconcile

import (
	"context"
	"log/slog"
	"time"

	"github.com/jstrand/bt/internal/clock"
)

// RolloverTimer re-invokes the controller when the calendar day changes.
// The tick is coarse (about once a minute); the day comparison, not the
// tick cadence, decides when a sync actually runs, so a missed or doubled
// tick is harmless.
type RolloverTimer struct {
	Controller *Controller
	Clock      clock.Clock
	// Interval between checks. Zero means a minute.
	Interval time.Duration
}

// Run blocks until ctx is cancelled, firing a reconciliation pass on every
// midnight boundary. A write already in flight inside the controller is
// never interrupted; cancellation only stops future ticks.
func (t *RolloverTimer) Run(ctx context.Context) {
	interval := t.Interval
	if interval <= 0 {
		interval = time.Minute
	}

	lastDay := clock.CalendarDay(t.Clock.Now())
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := t.Clock.Now()
			if clock.SameDay(lastDay, now) {
				continue
			}
			lastDay = clock.CalendarDay(now)
			slog.Debug("midnight rollover tick", "day", clock.FormatDate(now))
			if _, err := t.Controller.Sync(context.WithoutCancel(ctx)); err != nil {
				slog.Warn("rollover sync failed", "err", err)
			}
		}
	}
}
