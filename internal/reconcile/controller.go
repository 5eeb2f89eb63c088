// Package reconcile keeps the local cache converged with the authoritative
// remote store and runs the date-rollover unlock check. It is the only
// place that performs record I/O; the pure progression functions feed it.
package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jstrand/bt/internal/clock"
	"github.com/jstrand/bt/internal/models"
	"github.com/jstrand/bt/internal/progression"
	"github.com/jstrand/bt/internal/store"
)

// Controller orchestrates remote/local reconciliation for one user.
// Triggers (CLI invocation, rollover timer) may fire concurrently; the
// mutex keeps their fetch-merge-write sequences from interleaving.
type Controller struct {
	userID string
	remote store.RemoteStore
	cache  store.LocalCache
	clk    clock.Clock
	retry  RetryPolicy

	mu sync.Mutex
}

// NewController wires a controller for the given user.
func NewController(userID string, remote store.RemoteStore, cache store.LocalCache, clk clock.Clock, retry RetryPolicy) *Controller {
	return &Controller{
		userID: userID,
		remote: remote,
		cache:  cache,
		clk:    clk,
		retry:  retry,
	}
}

// Snapshot is the result of one reconciliation pass.
type Snapshot struct {
	// Program is nil when no active program exists anywhere.
	Program *models.Program
	// Degraded marks a read served from the cache because the remote
	// store was unreachable. Callers must flag it to the user.
	Degraded bool
	// RolloverPending is set when the next day should have unlocked but
	// the remote write failed; the next trigger retries it.
	RolloverPending bool
}

// Sync runs one full reconciliation pass: fetch the remote program,
// remote-wins overwrite of the cache, then the rollover check with a
// remote-first write. Unreachable remote degrades to the cached snapshot.
func (c *Controller) Sync(ctx context.Context) (*Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	doc, err := c.remote.Get(ctx, c.userID, store.KindProgram)
	if errors.Is(err, store.ErrNetworkUnavailable) {
		slog.Debug("sync: remote unreachable, degrading to cache", "err", err)
		return c.cachedSnapshot()
	}
	if err != nil {
		return nil, fmt.Errorf("fetch remote program: %w", err)
	}

	if doc == nil {
		// No remote program: the authority says there is nothing, so the
		// mirror must not resurrect one.
		if err := c.cache.Remove(store.KindProgram); err != nil {
			slog.Warn("sync: clear cache mirror", "err", err)
		}
		return &Snapshot{}, nil
	}

	prog, err := decodeProgram(doc)
	if err != nil {
		return nil, err
	}

	// Remote wins: overwrite the mirror with the authoritative snapshot.
	if err := c.cache.Set(store.KindProgram, doc); err != nil {
		slog.Warn("sync: mirror remote program", "err", err)
	}

	return c.rolloverCheck(ctx, prog)
}

// rolloverCheck advances currentDay when the next day's unlock condition
// now passes. The remote write lands first; only then is the mirror
// updated. A failed remote write leaves local state untouched so the
// authoritative record never falls behind the mirror.
func (c *Controller) rolloverCheck(ctx context.Context, prog *models.Program) (*Snapshot, error) {
	now := c.clk.Now()
	if !progression.NextDayUnlockable(prog, now) {
		return &Snapshot{Program: prog}, nil
	}
	// Defensive dedup: a second trigger in the same burst sees
	// lastUpdated already stamped today and skips the advance.
	if clock.SameDay(prog.LastUpdated, now) {
		return &Snapshot{Program: prog}, nil
	}

	advanced := prog.Clone()
	advanced.CurrentDay++
	advanced.LastUpdated = now

	doc, err := json.Marshal(advanced)
	if err != nil {
		return nil, fmt.Errorf("encode program: %w", err)
	}

	writeErr := c.retry.Do(ctx, func() error {
		return c.remote.Set(ctx, c.userID, store.KindProgram, doc, false)
	})
	if writeErr != nil {
		// Not dropped: the next trigger re-evaluates the same condition.
		slog.Warn("sync: rollover write failed, will retry on next trigger",
			"day", advanced.CurrentDay, "err", writeErr)
		return &Snapshot{Program: prog, RolloverPending: true}, nil
	}

	if err := c.cache.Set(store.KindProgram, doc); err != nil {
		slog.Warn("sync: mirror advanced program", "err", err)
	}
	slog.Info("unlocked next day", "day", advanced.CurrentDay)
	return &Snapshot{Program: advanced}, nil
}

// cachedSnapshot serves the degraded read path: the mirror only, no
// rollover check, no writes.
func (c *Controller) cachedSnapshot() (*Snapshot, error) {
	doc, err := c.cache.Get(store.KindProgram)
	if err != nil {
		return nil, fmt.Errorf("read cache: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("offline with empty cache: %w", store.ErrNoProgram)
	}
	prog, err := decodeProgram(doc)
	if err != nil {
		return nil, err
	}
	return &Snapshot{Program: prog, Degraded: true}, nil
}

// CompleteSession records a finished day or session, persists the program
// remote-first, then folds the session into the stats record. A locked day
// is rejected with ErrDayLocked before any write. A repeat completion is
// detected by the ledger and triggers no stat side effects.
func (c *Controller) CompleteSession(ctx context.Context, key models.CompletionKey, technique string) (*Snapshot, error) {
	snap, err := c.Sync(ctx)
	if err != nil {
		return nil, err
	}
	if snap.Program == nil {
		return nil, store.ErrNoProgram
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clk.Now()
	day, _, err := key.Parse()
	if err != nil {
		return nil, fmt.Errorf("complete: %w: %v", store.ErrOutOfRange, err)
	}
	if progression.IsLocked(snap.Program, day, now) {
		return nil, fmt.Errorf("complete day %d: %w", day, store.ErrDayLocked)
	}
	next, err := progression.Complete(snap.Program, key, now)
	if err != nil {
		return nil, err
	}
	if next == snap.Program {
		slog.Debug("completion already recorded", "key", key)
		return snap, nil
	}

	doc, err := json.Marshal(next)
	if err != nil {
		return nil, fmt.Errorf("encode program: %w", err)
	}

	degraded := snap.Degraded
	writeErr := c.retry.Do(ctx, func() error {
		return c.remote.Set(ctx, c.userID, store.KindProgram, doc, false)
	})
	switch {
	case writeErr == nil:
	case errors.Is(writeErr, store.ErrNetworkUnavailable):
		// Offline completion lands in the mirror now and reaches the
		// authority on the next successful push; remote wins if the two
		// have diverged by then.
		slog.Warn("completion stored offline", "key", key, "err", writeErr)
		degraded = true
	default:
		return nil, fmt.Errorf("write program: %w", writeErr)
	}

	if err := c.cache.Set(store.KindProgram, doc); err != nil {
		return nil, fmt.Errorf("mirror program: %w", err)
	}

	if err := c.applyStats(ctx, technique, now, degraded); err != nil {
		slog.Warn("update stats", "err", err)
	}

	return &Snapshot{Program: next, Degraded: degraded}, nil
}

// applyStats folds one session into the stats record and persists it
// remote-first, mirror second.
func (c *Controller) applyStats(ctx context.Context, technique string, now time.Time, degraded bool) error {
	stats, _, err := c.loadStats(ctx, degraded)
	if err != nil {
		return err
	}

	updated := progression.ApplyCompletion(stats, technique, now)
	doc, err := json.Marshal(updated)
	if err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}

	if !degraded {
		writeErr := c.retry.Do(ctx, func() error {
			return c.remote.Set(ctx, c.userID, store.KindStats, doc, false)
		})
		if writeErr != nil && !errors.Is(writeErr, store.ErrNetworkUnavailable) {
			return fmt.Errorf("write stats: %w", writeErr)
		}
		if writeErr != nil {
			slog.Warn("stats stored offline", "err", writeErr)
		}
	}
	return c.cache.Set(store.KindStats, doc)
}

// Stats returns the user's statistics, remote first, cache when offline.
func (c *Controller) Stats(ctx context.Context) (*models.Stats, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadStats(ctx, false)
}

// loadStats fetches the stats record. The degraded flag (or an unreachable
// remote) routes the read to the cache; the returned bool reports whether
// that fallback happened. Absent stats are (nil, _, nil): no session yet.
func (c *Controller) loadStats(ctx context.Context, degraded bool) (*models.Stats, bool, error) {
	if !degraded {
		doc, err := c.remote.Get(ctx, c.userID, store.KindStats)
		switch {
		case err == nil:
			if doc == nil {
				return nil, false, nil
			}
			if cerr := c.cache.Set(store.KindStats, doc); cerr != nil {
				slog.Warn("mirror stats", "err", cerr)
			}
			var s models.Stats
			if err := json.Unmarshal(doc, &s); err != nil {
				return nil, false, fmt.Errorf("%w: stats: %v", store.ErrMalformedRecord, err)
			}
			return &s, false, nil
		case errors.Is(err, store.ErrNetworkUnavailable):
			// fall through to cache
		default:
			return nil, false, fmt.Errorf("fetch stats: %w", err)
		}
	}

	doc, err := c.cache.Get(store.KindStats)
	if err != nil {
		return nil, true, fmt.Errorf("read cached stats: %w", err)
	}
	if doc == nil {
		return nil, true, nil
	}
	var s models.Stats
	if err := json.Unmarshal(doc, &s); err != nil {
		return nil, true, fmt.Errorf("%w: stats: %v", store.ErrMalformedRecord, err)
	}
	return &s, true, nil
}

// ResetProgram spends one reset if the quota allows it, deletes the remote
// program, and clears the local mirror. Stats are deliberately untouched:
// resets affect progression, not history. Resets require the remote store;
// a local-only delete would resurrect on the next sync.
func (c *Controller) ResetProgram(ctx context.Context, premium bool) (progression.ResetDecision, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clk.Now()

	var quota *models.ResetQuota
	if !premium {
		doc, err := c.remote.Get(ctx, c.userID, store.KindQuota)
		if err != nil {
			return progression.ResetDecision{}, fmt.Errorf("fetch reset quota: %w", err)
		}
		if doc != nil {
			quota = &models.ResetQuota{}
			if err := json.Unmarshal(doc, quota); err != nil {
				return progression.ResetDecision{}, fmt.Errorf("%w: quota: %v", store.ErrMalformedRecord, err)
			}
		}
	}

	decision := progression.TryReset(quota, now, premium)
	if !decision.Allowed {
		return decision, fmt.Errorf("%w: %d resets used this month", store.ErrQuotaExceeded, models.MonthlyResetLimit)
	}

	if !premium {
		doc, err := json.Marshal(decision.Quota)
		if err != nil {
			return decision, fmt.Errorf("encode quota: %w", err)
		}
		writeErr := c.retry.Do(ctx, func() error {
			return c.remote.Set(ctx, c.userID, store.KindQuota, doc, false)
		})
		if writeErr != nil {
			return decision, fmt.Errorf("write quota: %w", writeErr)
		}
		if err := c.cache.Set(store.KindQuota, doc); err != nil {
			slog.Warn("mirror quota", "err", err)
		}
	}

	deleteErr := c.retry.Do(ctx, func() error {
		return c.remote.Delete(ctx, c.userID, store.KindProgram)
	})
	if deleteErr != nil {
		return decision, fmt.Errorf("delete remote program: %w", deleteErr)
	}
	if err := c.cache.Remove(store.KindProgram); err != nil {
		slog.Warn("clear program mirror", "err", err)
	}

	slog.Info("program reset", "remaining", decision.Remaining)
	return decision, nil
}

// CreateProgram writes a freshly generated program remote-first and mirrors
// it. It refuses to clobber an existing active program.
func (c *Controller) CreateProgram(ctx context.Context, prog *models.Program) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	existing, err := c.remote.Get(ctx, c.userID, store.KindProgram)
	if err != nil {
		return fmt.Errorf("check existing program: %w", err)
	}
	if existing != nil {
		cur, err := decodeProgram(existing)
		if err == nil && cur.IsActive {
			return fmt.Errorf("an active program already exists; reset it first")
		}
	}

	doc, err := json.Marshal(prog)
	if err != nil {
		return fmt.Errorf("encode program: %w", err)
	}
	writeErr := c.retry.Do(ctx, func() error {
		return c.remote.Set(ctx, c.userID, store.KindProgram, doc, false)
	})
	if writeErr != nil {
		return fmt.Errorf("write program: %w", writeErr)
	}
	if err := c.cache.Set(store.KindProgram, doc); err != nil {
		slog.Warn("mirror new program", "err", err)
	}
	return nil
}

// decodeProgram unmarshals and validates a program document. A missing
// start date or unknown track kind is a malformed record, not a crash.
func decodeProgram(doc json.RawMessage) (*models.Program, error) {
	var p models.Program
	if err := json.Unmarshal(doc, &p); err != nil {
		return nil, fmt.Errorf("%w: program: %v", store.ErrMalformedRecord, err)
	}
	if p.StartDate.IsZero() || !p.TrackKind.Valid() {
		return nil, fmt.Errorf("%w: program missing start date or track kind", store.ErrMalformedRecord)
	}
	return &p, nil
}
