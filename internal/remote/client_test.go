package remote

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jstrand/bt/internal/store"
)

func TestClient_GetPresent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/users/u1/records/program", r.URL.Path)
		assert.Equal(t, "Bearer key-1", r.Header.Get("Authorization"))
		assert.Equal(t, "dev-1", r.Header.Get("X-Device-ID"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"track_kind":"standard","current_day":2}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "key-1", "dev-1")
	doc, err := c.Get(context.Background(), "u1", store.KindProgram)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(doc, &got))
	assert.Equal(t, "standard", got["track_kind"])
}

func TestClient_GetAbsent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"code":"not_found","message":"no such record"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "key-1", "dev-1")
	doc, err := c.Get(context.Background(), "u1", store.KindStats)
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestClient_Me(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/me", r.URL.Path)
		assert.Equal(t, "Bearer key-1", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"user_id":"u1","email":"a@example.com","premium":true}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "key-1", "dev-1")
	me, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u1", me.UserID)
	assert.Equal(t, "a@example.com", me.Email)
	assert.True(t, me.Premium)
}

func TestClient_SetMergeFlag(t *testing.T) {
	var gotMerge, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMerge = r.URL.Query().Get("merge")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL, "key-1", "dev-1")
	err := c.Set(context.Background(), "u1", store.KindQuota, json.RawMessage(`{"reset_count":1}`), true)
	require.NoError(t, err)
	assert.Equal(t, "1", gotMerge)
	assert.JSONEq(t, `{"reset_count":1}`, gotBody)
}

func TestClient_DeleteAbsentIsNoop(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL, "key-1", "dev-1")
	assert.NoError(t, c.Delete(context.Background(), "u1", store.KindProgram))
}

func TestClient_UnreachableClassifiedAsNetwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := New(srv.URL, "key-1", "dev-1")
	_, err := c.Get(context.Background(), "u1", store.KindProgram)
	assert.ErrorIs(t, err, store.ErrNetworkUnavailable)
}

func TestClient_ServerErrorClassifiedAsNetwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL, "key-1", "dev-1")
	_, err := c.Get(context.Background(), "u1", store.KindProgram)
	assert.ErrorIs(t, err, store.ErrNetworkUnavailable)
}

func TestClient_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"code":"unauthorized","message":"bad key"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "stale", "dev-1")
	err := c.Set(context.Background(), "u1", store.KindProgram, json.RawMessage(`{}`), false)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.NotErrorIs(t, err, store.ErrNetworkUnavailable)
}

func TestClient_HealthCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/healthz", r.URL.Path)
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "", "")
	h, err := c.HealthCheck(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", h.Status)
}
