package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/claude/overload/internal/models"
	"github.com/google/uuid"
)

const defaultEventLimit = 50

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	defs, err := s.store.ListExercises(r.Context())
	if err != nil {
		s.storeError(w, err)
		return
	}
	if defs == nil {
		defs = []models.ExerciseDefinition{}
	}
	writeJSON(w, http.StatusOK, defs)
}

func (s *Server) handleCreateExercise(w http.ResponseWriter, r *http.Request) {
	var def models.ExerciseDefinition
	if err := json.NewDecoder(r.Body).Decode(&def); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if err := validateDefinition(&def); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	created, err := s.store.CreateExercise(r.Context(), def)
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetExercise(w http.ResponseWriter, r *http.Request) {
	id, ok := exerciseID(w, r)
	if !ok {
		return
	}
	def, err := s.store.GetExercise(r.Context(), id)
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, def)
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	id, ok := exerciseID(w, r)
	if !ok {
		return
	}
	state, err := s.store.GetProgressionState(r.Context(), userIDFromContext(r), id)
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handlePutState(w http.ResponseWriter, r *http.Request) {
	id, ok := exerciseID(w, r)
	if !ok {
		return
	}
	var state models.ExerciseProgressionState
	if err := json.NewDecoder(r.Body).Decode(&state); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	state.ExerciseDefinitionID = id
	if state.ID == uuid.Nil {
		state.ID = uuid.New()
	}
	if err := state.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid state: " + err.Error()})
		return
	}

	if _, err := s.store.GetExercise(r.Context(), id); err != nil {
		s.storeError(w, err)
		return
	}
	if err := s.store.PutProgressionState(r.Context(), userIDFromContext(r), state); err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := exerciseID(w, r)
	if !ok {
		return
	}
	events, err := s.store.QueryProgressionEvents(r.Context(), userIDFromContext(r), id, queryLimit(r, defaultEventLimit))
	if err != nil {
		s.storeError(w, err)
		return
	}
	if events == nil {
		events = []models.ProgressionEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}

// validateDefinition normalizes and checks a definition before it is stored.
// A free-text equipment label is accepted if it maps to a known kind.
func validateDefinition(d *models.ExerciseDefinition) error {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return fmt.Errorf("name is required")
	}
	kind, ok := models.ParseEquipmentType(string(d.EquipmentType))
	if !ok {
		return fmt.Errorf("unknown equipment_type %q", d.EquipmentType)
	}
	d.EquipmentType = kind
	if d.MachineIncrement != nil && *d.MachineIncrement <= 0 {
		return fmt.Errorf("machine_increment must be positive")
	}
	for _, step := range d.DumbbellSteps {
		if step <= 0 {
			return fmt.Errorf("dumbbell_steps must be positive")
		}
	}
	if kind == models.EquipmentBodyweight {
		d.IsBodyweight = true
	}
	return nil
}
