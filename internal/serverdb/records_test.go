package serverdb

import (
	"encoding/json"
	"testing"
)

func seedUser(t *testing.T, db *ServerDB) *User {
	t.Helper()
	u, err := db.CreateUser("records@test.com")
	if err != nil {
		t.Fatal(err)
	}
	return u
}

func TestGetRecordAbsent(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db)

	doc, err := db.GetRecord(u.ID, KindProgram)
	if err != nil {
		t.Fatal(err)
	}
	if doc != nil {
		t.Fatalf("expected nil for absent record, got %s", doc)
	}
}

func TestPutAndGetRecord(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db)

	in := json.RawMessage(`{"trackKind":"standard","currentDay":1}`)
	if err := db.PutRecord(u.ID, KindProgram, in, "dev1"); err != nil {
		t.Fatal(err)
	}

	out, err := db.GetRecord(u.ID, KindProgram)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != string(in) {
		t.Errorf("round trip mismatch: %s", out)
	}
}

func TestPutRecordReplaces(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db)

	db.PutRecord(u.ID, KindStats, json.RawMessage(`{"totalSessions":1}`), "dev1")
	if err := db.PutRecord(u.ID, KindStats, json.RawMessage(`{"totalSessions":2}`), "dev2"); err != nil {
		t.Fatal(err)
	}

	out, _ := db.GetRecord(u.ID, KindStats)
	var stats struct {
		TotalSessions int `json:"totalSessions"`
	}
	if err := json.Unmarshal(out, &stats); err != nil {
		t.Fatal(err)
	}
	if stats.TotalSessions != 2 {
		t.Errorf("expected replacement, got %d", stats.TotalSessions)
	}
}

func TestPutRecordRejectsInvalidJSON(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db)

	if err := db.PutRecord(u.ID, KindProgram, json.RawMessage(`{broken`), "dev1"); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestPutRecordRejectsUnknownKind(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db)

	if err := db.PutRecord(u.ID, "journal", json.RawMessage(`{}`), "dev1"); err == nil {
		t.Fatal("expected CHECK constraint violation for unknown kind")
	}
}

func TestMergeRecordOverlaysTopLevel(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db)

	db.PutRecord(u.ID, KindProgram, json.RawMessage(`{"currentDay":2,"isActive":true,"startDate":"2026-01-01"}`), "dev1")

	merged, err := db.MergeRecord(u.ID, KindProgram, json.RawMessage(`{"currentDay":3}`), "dev2")
	if err != nil {
		t.Fatal(err)
	}

	var got map[string]json.RawMessage
	if err := json.Unmarshal(merged, &got); err != nil {
		t.Fatal(err)
	}
	if string(got["currentDay"]) != "3" {
		t.Errorf("currentDay not overlaid: %s", got["currentDay"])
	}
	if string(got["startDate"]) != `"2026-01-01"` {
		t.Errorf("untouched field lost: %s", got["startDate"])
	}

	stored, _ := db.GetRecord(u.ID, KindProgram)
	if string(stored) != string(merged) {
		t.Error("merge result not persisted")
	}
}

func TestMergeRecordAbsentActsAsPut(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db)

	in := json.RawMessage(`{"resetCount":1,"monthKey":"2026-08"}`)
	merged, err := db.MergeRecord(u.ID, KindQuota, in, "dev1")
	if err != nil {
		t.Fatal(err)
	}
	if string(merged) != string(in) {
		t.Errorf("merge into absent should return input: %s", merged)
	}
}

func TestMergeRecordRejectsNonObject(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db)

	if _, err := db.MergeRecord(u.ID, KindQuota, json.RawMessage(`[1,2]`), "dev1"); err == nil {
		t.Fatal("expected error for non-object merge document")
	}
}

func TestDeleteRecord(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db)

	db.PutRecord(u.ID, KindProgram, json.RawMessage(`{}`), "dev1")
	if err := db.DeleteRecord(u.ID, KindProgram); err != nil {
		t.Fatal(err)
	}
	doc, _ := db.GetRecord(u.ID, KindProgram)
	if doc != nil {
		t.Fatal("record not deleted")
	}

	// deleting again is a no-op
	if err := db.DeleteRecord(u.ID, KindProgram); err != nil {
		t.Fatal(err)
	}
}

func TestListRecords(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db)

	db.PutRecord(u.ID, KindProgram, json.RawMessage(`{}`), "dev1")
	db.PutRecord(u.ID, KindStats, json.RawMessage(`{}`), "dev1")

	records, err := db.ListRecords(u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].DeviceID != "dev1" {
		t.Errorf("device id not stored: %s", records[0].DeviceID)
	}
}
