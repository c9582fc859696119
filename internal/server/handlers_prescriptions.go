package server

import (
	"encoding/json"
	"net/http"

	"github.com/claude/overload/internal/models"
	"github.com/claude/overload/internal/progression"
	"github.com/google/uuid"
)

// previewRequest carries everything the decider needs. When ExerciseID is
// set, state and equipment come from storage for the caller instead.
type previewRequest struct {
	ExerciseID *uuid.UUID                      `json:"exercise_id,omitempty"`
	State      models.ExerciseProgressionState `json:"state"`
	Sets       []models.SetTarget              `json:"sets"`
	UnitSystem models.UnitSystem               `json:"unit_system"`
	Equipment  models.EquipmentContext         `json:"equipment"`
}

type roundRequest struct {
	TargetWeight float64                         `json:"target_weight"`
	Equipment    models.EquipmentContext         `json:"equipment"`
	State        models.ExerciseProgressionState `json:"state"`
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	if req.ExerciseID != nil {
		def, err := s.store.GetExercise(r.Context(), *req.ExerciseID)
		if err != nil {
			s.storeError(w, err)
			return
		}
		state, err := s.store.GetProgressionState(r.Context(), userIDFromContext(r), def.ID)
		if err != nil {
			s.storeError(w, err)
			return
		}
		req.State = *state
		req.Equipment = def.Equipment()
	}

	if err := req.State.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid state: " + err.Error()})
		return
	}
	if req.UnitSystem == "" {
		req.UnitSystem = models.UnitMetric
	}

	writeJSON(w, http.StatusOK, progression.NextPrescription(req.State, req.Sets, req.UnitSystem, req.Equipment))
}

func (s *Server) handleRound(w http.ResponseWriter, r *http.Request) {
	var req roundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.TargetWeight < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "target_weight must not be negative"})
		return
	}

	weight := progression.RoundToEquipment(req.TargetWeight, req.Equipment, req.State)
	writeJSON(w, http.StatusOK, map[string]float64{"weight": weight})
}
