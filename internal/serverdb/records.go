package serverdb

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Record kinds accepted by the records table. The CHECK constraint in the
// schema enforces the same set.
const (
	KindProgram = "program"
	KindStats   = "stats"
	KindQuota   = "quota"
)

// ValidKind reports whether kind names a known record kind.
func ValidKind(kind string) bool {
	switch kind {
	case KindProgram, KindStats, KindQuota:
		return true
	}
	return false
}

// Record is one stored JSON document for a (user, kind) pair.
type Record struct {
	UserID    string
	Kind      string
	Doc       json.RawMessage
	DeviceID  string
	UpdatedAt time.Time
}

// GetRecord returns the stored document, or (nil, nil) when absent.
func (db *ServerDB) GetRecord(userID, kind string) (json.RawMessage, error) {
	var doc string
	err := db.conn.QueryRow(
		`SELECT doc FROM records WHERE user_id = ? AND kind = ?`, userID, kind,
	).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	return json.RawMessage(doc), nil
}

// PutRecord stores the document, replacing any existing one.
func (db *ServerDB) PutRecord(userID, kind string, doc json.RawMessage, deviceID string) error {
	if !json.Valid(doc) {
		return fmt.Errorf("put record: document is not valid JSON")
	}
	now := time.Now().UTC()
	_, err := db.conn.Exec(`
		INSERT INTO records (user_id, kind, doc, device_id, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, kind) DO UPDATE SET doc = excluded.doc, device_id = excluded.device_id, updated_at = excluded.updated_at
	`, userID, kind, string(doc), deviceID, now)
	if err != nil {
		return fmt.Errorf("put record: %w", err)
	}
	return nil
}

// MergeRecord overlays the incoming document's top-level fields onto the
// stored one and returns the merged result. Absent stored document behaves
// like a plain put. Both documents must be JSON objects.
func (db *ServerDB) MergeRecord(userID, kind string, doc json.RawMessage, deviceID string) (json.RawMessage, error) {
	var incoming map[string]json.RawMessage
	if err := json.Unmarshal(doc, &incoming); err != nil {
		return nil, fmt.Errorf("merge record: incoming document: %w", err)
	}

	existing, err := db.GetRecord(userID, kind)
	if err != nil {
		return nil, err
	}

	merged := doc
	if existing != nil {
		base := map[string]json.RawMessage{}
		if err := json.Unmarshal(existing, &base); err != nil {
			return nil, fmt.Errorf("merge record: stored document: %w", err)
		}
		for k, v := range incoming {
			base[k] = v
		}
		merged, err = json.Marshal(base)
		if err != nil {
			return nil, fmt.Errorf("merge record: encode: %w", err)
		}
	}

	if err := db.PutRecord(userID, kind, merged, deviceID); err != nil {
		return nil, err
	}
	return merged, nil
}

// DeleteRecord removes the document. Deleting an absent record is a no-op.
func (db *ServerDB) DeleteRecord(userID, kind string) error {
	_, err := db.conn.Exec(`DELETE FROM records WHERE user_id = ? AND kind = ?`, userID, kind)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}

// ListRecords returns all documents stored for a user.
func (db *ServerDB) ListRecords(userID string) ([]*Record, error) {
	rows, err := db.conn.Query(
		`SELECT user_id, kind, doc, device_id, updated_at FROM records WHERE user_id = ? ORDER BY kind`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		r := &Record{}
		var doc string
		if err := rows.Scan(&r.UserID, &r.Kind, &doc, &r.DeviceID, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		r.Doc = json.RawMessage(doc)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list records: iterate: %w", err)
	}
	return records, nil
}
