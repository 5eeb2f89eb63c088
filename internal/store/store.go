// Package store defines the adapter contracts the progression engine is
// written against: an authoritative remote record store and a synchronous
// local cache mirror. Concrete implementations live in internal/remote and
// internal/cache.
package store

import (
	"context"
	"encoding/json"
)

// RecordKind names one of the three per-user documents.
type RecordKind string

const (
	KindProgram RecordKind = "program"
	KindStats   RecordKind = "stats"
	KindQuota   RecordKind = "quota"
)

// Valid reports whether k names a known record kind.
func (k RecordKind) Valid() bool {
	return k == KindProgram || k == KindStats || k == KindQuota
}

// RemoteStore is the authoritative, network-backed record store. Absent
// records are reported as (nil, nil), not as an error. Implementations
// must surface unreachability as ErrNetworkUnavailable (wrapped) so the
// reconciler can distinguish offline from everything else.
type RemoteStore interface {
	Get(ctx context.Context, userID string, kind RecordKind) (json.RawMessage, error)
	Set(ctx context.Context, userID string, kind RecordKind, record json.RawMessage, merge bool) error
	Delete(ctx context.Context, userID string, kind RecordKind) error
}

// LocalCache is the possibly-stale local mirror of the same records.
// It is synchronous and always available; a cache miss is (nil, nil).
type LocalCache interface {
	Get(kind RecordKind) (json.RawMessage, error)
	Set(kind RecordKind, record json.RawMessage) error
	Remove(kind RecordKind) error
}
