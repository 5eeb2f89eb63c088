package e2e_test

import (
	"context"
	"fmt"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/jstrand/bt/internal/api"
	"github.com/jstrand/bt/internal/cache"
	"github.com/jstrand/bt/internal/clock"
	"github.com/jstrand/bt/internal/reconcile"
	"github.com/jstrand/bt/internal/remote"
	"github.com/jstrand/bt/internal/serverdb"
)

// harness runs the real bt-sync server in-process and hands out fully
// wired clients: HTTP transport, local mirror, and controller, exactly as
// the CLI assembles them. Each actor is one signed-up user on one device.
type harness struct {
	t     *testing.T
	srv   *httptest.Server
	store *serverdb.ServerDB
	clk   *clock.Fixed
}

type actor struct {
	UserID     string
	APIKey     string
	Client     *remote.Client
	Cache      *cache.Cache
	Controller *reconcile.Controller
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	store, err := serverdb.Open(filepath.Join(t.TempDir(), "server.db"))
	if err != nil {
		t.Fatalf("open server db: %v", err)
	}

	cfg := api.Config{
		ListenAddr:      ":0",
		AllowSignup:     true,
		RateLimitSignup: 100000,
		RateLimitWrite:  100000,
		RateLimitRead:   100000,
		RateLimitOther:  100000,
	}
	apiSrv, err := api.NewServer(cfg, store)
	if err != nil {
		t.Fatalf("create server: %v", err)
	}

	srv := httptest.NewServer(apiSrv.Handler())
	t.Cleanup(func() {
		srv.Close()
		store.Close()
	})

	return &harness{
		t:     t,
		srv:   srv,
		store: store,
		clk:   &clock.Fixed{T: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)},
	}
}

var actorSeq int

// signup registers a fresh user and wires a controller against the live
// server. Repeated calls with the same email model a second device.
func (h *harness) signup(email string) *actor {
	h.t.Helper()

	actorSeq++
	deviceID := fmt.Sprintf("device-%d", actorSeq)

	bootstrap := remote.New(h.srv.URL, "", deviceID)
	resp, err := bootstrap.Signup(context.Background(), email, "e2e")
	if err != nil {
		h.t.Fatalf("signup %s: %v", email, err)
	}

	client := remote.New(h.srv.URL, resp.APIKey, deviceID)
	mirror, err := cache.Open(h.t.TempDir())
	if err != nil {
		h.t.Fatalf("open cache: %v", err)
	}
	h.t.Cleanup(func() { mirror.Close() })

	return &actor{
		UserID:     resp.UserID,
		APIKey:     resp.APIKey,
		Client:     client,
		Cache:      mirror,
		Controller: reconcile.NewController(resp.UserID, client, mirror, h.clk, reconcile.ZeroRetryPolicy(2)),
	}
}

// offline returns a controller for the same user and mirror whose remote
// points at a dead address, so every call degrades to the cache.
func (h *harness) offline(a *actor) *actor {
	h.t.Helper()

	dead := remote.New("http://127.0.0.1:1", a.APIKey, "device-offline")
	return &actor{
		UserID:     a.UserID,
		APIKey:     a.APIKey,
		Client:     dead,
		Cache:      a.Cache,
		Controller: reconcile.NewController(a.UserID, dead, a.Cache, h.clk, reconcile.ZeroRetryPolicy(2)),
	}
}

// advanceDays moves the shared clock forward by whole calendar days.
func (h *harness) advanceDays(n int) {
	h.clk.Set(h.clk.Now().AddDate(0, 0, n))
}
