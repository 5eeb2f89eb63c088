package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/jstrand/bt/internal/serverdb"
)

// maxRecordBytes caps a single record document. Program, stats, and quota
// documents are all small; anything near this size is malformed input.
const maxRecordBytes = 256 << 10

// handleGetRecord returns the stored document for (user, kind).
func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	kind := r.PathValue("kind")
	if !serverdb.ValidKind(kind) {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidKind, "unknown record kind: "+kind)
		return
	}

	user := authUserFrom(r.Context())
	doc, err := s.store.GetRecord(user.UserID, kind)
	if err != nil {
		logFor(r.Context()).Error("get record", "kind", kind, "err", err)
		writeError(w, http.StatusInternalServerError, ErrCodeInternal, "failed to read record")
		return
	}
	if doc == nil {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "no "+kind+" record")
		return
	}

	s.metrics.RecordRead()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(doc)
}

// handlePutRecord stores the document for (user, kind). With ?merge=1 the
// body's top-level fields are overlaid onto the stored document and the
// merged result is returned; otherwise the body replaces the record and the
// response is 204.
func (s *Server) handlePutRecord(w http.ResponseWriter, r *http.Request) {
	kind := r.PathValue("kind")
	if !serverdb.ValidKind(kind) {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidKind, "unknown record kind: "+kind)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRecordBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "read request body")
		return
	}
	if !json.Valid(body) {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidDocument, "body is not valid JSON")
		return
	}

	user := authUserFrom(r.Context())
	deviceID := r.Header.Get("X-Device-ID")

	if r.URL.Query().Get("merge") == "1" {
		merged, err := s.store.MergeRecord(user.UserID, kind, body, deviceID)
		if err != nil {
			logFor(r.Context()).Error("merge record", "kind", kind, "err", err)
			writeError(w, http.StatusBadRequest, ErrCodeInvalidDocument, "merge requires JSON objects")
			return
		}
		s.metrics.RecordWrite()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(merged)
		return
	}

	if err := s.store.PutRecord(user.UserID, kind, body, deviceID); err != nil {
		logFor(r.Context()).Error("put record", "kind", kind, "err", err)
		writeError(w, http.StatusInternalServerError, ErrCodeInternal, "failed to store record")
		return
	}
	s.metrics.RecordWrite()
	w.WriteHeader(http.StatusNoContent)
}

// handleDeleteRecord removes the document. Deleting an absent record
// succeeds so retries stay idempotent.
func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	kind := r.PathValue("kind")
	if !serverdb.ValidKind(kind) {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidKind, "unknown record kind: "+kind)
		return
	}

	user := authUserFrom(r.Context())
	if err := s.store.DeleteRecord(user.UserID, kind); err != nil {
		logFor(r.Context()).Error("delete record", "kind", kind, "err", err)
		writeError(w, http.StatusInternalServerError, ErrCodeInternal, "failed to delete record")
		return
	}
	s.metrics.RecordWrite()
	w.WriteHeader(http.StatusNoContent)
}

// handleListRecords returns every document the user has stored, mainly for
// debugging a device against the server's view.
func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	user := authUserFrom(r.Context())
	records, err := s.store.ListRecords(user.UserID)
	if err != nil {
		logFor(r.Context()).Error("list records", "err", err)
		writeError(w, http.StatusInternalServerError, ErrCodeInternal, "failed to list records")
		return
	}

	type recordView struct {
		Kind      string          `json:"kind"`
		Doc       json.RawMessage `json:"doc"`
		DeviceID  string          `json:"device_id,omitempty"`
		UpdatedAt string          `json:"updated_at"`
	}
	out := make([]recordView, 0, len(records))
	for _, rec := range records {
		out = append(out, recordView{
			Kind:      rec.Kind,
			Doc:       rec.Doc,
			DeviceID:  rec.DeviceID,
			UpdatedAt: rec.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	s.metrics.RecordRead()
	writeJSON(w, http.StatusOK, map[string]any{"records": out})
}
