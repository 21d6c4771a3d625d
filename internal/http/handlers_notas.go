package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"notas/internal/core"
	"notas/internal/storage"
)

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	uid := userID(r.Context())
	key := s.cacheKey(uid)

	if records, found := s.listCache.Get(key); found {
		slog.DebugContext(r.Context(), "Record list cache hit", "user_id", uid, "count", len(records))
		writeJSON(w, http.StatusOK, records)
		return
	}

	records, err := s.store.ListRecords(r.Context(), uid)
	if err != nil {
		slog.ErrorContext(r.Context(), "List records error", "error", err, "user_id", uid)
		writeError(w, http.StatusInternalServerError, "could not load records")
		return
	}

	s.listCache.Set(key, records)
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	uid := userID(r.Context())

	var rec core.Record
	if err := decodeJSON(r, &rec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rec.ID = 0
	rec.UserID = uid
	if err := rec.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := s.store.CreateRecord(r.Context(), rec)
	if err != nil {
		slog.ErrorContext(r.Context(), "Create record error", "error", err, "user_id", uid)
		writeError(w, http.StatusInternalServerError, "could not save record")
		return
	}
	s.invalidateList(uid)
	s.publishSync(r, id)

	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	uid := userID(r.Context())
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid record id")
		return
	}

	var rec core.Record
	if err := decodeJSON(r, &rec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rec.ID = id
	rec.UserID = uid
	if err := rec.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// ErrNotFound covers both a missing record and one owned by somebody
	// else; the caller cannot tell the difference.
	err = s.store.UpdateRecord(r.Context(), rec)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Update record error", "error", err, "id", id, "user_id", uid)
		writeError(w, http.StatusInternalServerError, "could not update record")
		return
	}
	s.invalidateList(uid)
	s.publishSync(r, id)

	writeJSON(w, http.StatusOK, rec)
}

// handleDeleteRecord always answers 200: deleting a record that is already
// gone is a success from the caller's point of view.
func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	uid := userID(r.Context())
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid record id")
		return
	}

	deleted, err := s.store.DeleteRecord(r.Context(), id, uid)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		slog.ErrorContext(r.Context(), "Delete record error", "error", err, "id", id, "user_id", uid)
		writeError(w, http.StatusInternalServerError, "could not delete record")
		return
	}
	if err == nil {
		s.invalidateList(uid)
		if s.events != nil {
			if perr := s.events.PublishRecordDelete(r.Context(), deleted); perr != nil {
				slog.ErrorContext(r.Context(), "Publish delete event error", "error", perr, "id", id)
			}
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "record deleted"})
}

func (s *Server) publishSync(r *http.Request, id int64) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishRecordSync(r.Context(), id); err != nil {
		slog.ErrorContext(r.Context(), "Publish sync event error", "error", err, "id", id)
	}
}
