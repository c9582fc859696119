package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/claude/overload/internal/ingest/alpha"
	"github.com/claude/overload/internal/models"
)

func (s *Server) handleCompleteSession(w http.ResponseWriter, r *http.Request) {
	var training models.CompletedTraining
	if err := json.NewDecoder(r.Body).Decode(&training); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	report, err := s.completer.Complete(r.Context(), userIDFromContext(r), training)
	if err != nil {
		s.log.Error("session error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleAlphaSessions(w http.ResponseWriter, r *http.Request) {
	reports, err := s.alpha.Ingest(r.Context(), r.Body, userIDFromContext(r))
	if errors.Is(err, alpha.ErrMalformed) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err != nil {
		s.log.Error("alpha ingest error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, reports)
}
