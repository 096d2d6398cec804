package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"catanrig/internal/game"
	"catanrig/internal/storage"
)

type checkResult struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	results := make(map[string]checkResult, len(s.checks))
	status := http.StatusOK
	for name, c := range s.checks {
		if err := c.Check(ctx); err != nil {
			s.log.Error("health check failed", "name", name, "error", err)
			results[name] = checkResult{Status: "error"}
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = checkResult{Status: "ok"}
	}
	writeJSON(w, status, results)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	st, err := s.state.Snapshot()
	if err != nil {
		s.log.Error("snapshot failed", "error", err)
		writeError(w, http.StatusInternalServerError, "state unavailable")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

type historyEntry struct {
	storage.SnapshotRow
	State json.RawMessage `json:"state"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusNotFound, "history is not recorded")
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	rows, err := s.history.History(r.Context(), limit)
	if err != nil {
		s.log.Error("history failed", "error", err)
		writeError(w, http.StatusInternalServerError, "history unavailable")
		return
	}
	entries := make([]historyEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, historyEntry{SnapshotRow: row, State: json.RawMessage(row.StateJSON)})
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	if s.queue == nil {
		writeError(w, http.StatusConflict, "remote actions are disabled")
		return
	}
	var a game.Action
	if err := readJSON(r, &a); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.queue.Submit(a); err != nil {
		writeQueueError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	if s.queue == nil {
		writeError(w, http.StatusConflict, "remote actions are disabled")
		return
	}
	if err := s.queue.Confirm(); err != nil {
		writeQueueError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

func writeQueueError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNoAction):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrQueueFull):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
