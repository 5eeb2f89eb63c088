package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/jstrand/bt/internal/cache"
	"github.com/jstrand/bt/internal/clock"
	"github.com/jstrand/bt/internal/output"
	"github.com/jstrand/bt/internal/reconcile"
	"github.com/jstrand/bt/internal/remote"
	"github.com/jstrand/bt/internal/syncconfig"
)

// session bundles the controller with the resources it borrows. Close the
// session when the command is done.
type session struct {
	Controller *reconcile.Controller
	Client     *remote.Client
	Config     *syncconfig.Config
	cache      *cache.Cache
}

func (s *session) Close() {
	if s.cache != nil {
		s.cache.Close()
	}
}

// newSession wires a reconcile controller from the stored credentials.
func newSession() (*session, error) {
	creds, err := syncconfig.LoadAuth()
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	if creds == nil || creds.APIKey == "" {
		return nil, fmt.Errorf("not logged in; run 'bt auth login' first")
	}

	cfg, err := syncconfig.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	deviceID, err := syncconfig.GetDeviceID()
	if err != nil {
		return nil, fmt.Errorf("get device id: %w", err)
	}

	cacheDir, err := syncconfig.CacheDir()
	if err != nil {
		return nil, err
	}
	mirror, err := cache.Open(cacheDir)
	if err != nil {
		return nil, fmt.Errorf("open local cache: %w", err)
	}

	client := remote.New(syncconfig.GetServerURL(), syncconfig.GetAPIKey(), deviceID)
	ctrl := reconcile.NewController(creds.UserID, client, mirror, clock.System{}, reconcile.DefaultRetryPolicy())

	return &session{Controller: ctrl, Client: client, Config: cfg, cache: mirror}, nil
}

// premium returns the account tier, asking the server first so an upgrade
// applies without re-login. Offline, the tier cached at login stands.
func (s *session) premium(ctx context.Context) bool {
	me, err := s.Client.Me(ctx)
	if err != nil {
		return s.Config != nil && s.Config.Premium
	}
	if s.Config != nil && s.Config.Premium != me.Premium {
		s.Config.Premium = me.Premium
		if err := syncconfig.SaveConfig(s.Config); err != nil {
			output.Warning("save config: %v", err)
		}
	}
	return me.Premium
}

// rolloverInterval returns the configured timer cadence.
func rolloverInterval(cfg *syncconfig.Config) time.Duration {
	if cfg != nil && cfg.SyncIntervalMinutes > 0 {
		return time.Duration(cfg.SyncIntervalMinutes) * time.Minute
	}
	return time.Minute
}
