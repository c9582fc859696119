package models

import (
	"testing"

	"github.com/google/uuid"
)

// TestDefaultProgressionState verifies the defaults for both unit systems and
// that a fresh state passes validation.
func TestDefaultProgressionState(t *testing.T) {
	id := uuid.New()

	metric := DefaultProgressionState(id, 60, UnitMetric)
	if metric.ExerciseDefinitionID != id {
		t.Errorf("exercise id = %s, want %s", metric.ExerciseDefinitionID, id)
	}
	if metric.MinWeightIncrement != 2.5 || metric.PreferredPlateIncrement != 1.25 {
		t.Errorf("metric increments = %v/%v, want 2.5/1.25", metric.MinWeightIncrement, metric.PreferredPlateIncrement)
	}
	if metric.CurrentRepTarget != 8 || metric.StartingReps != 8 || metric.MaxReps != 12 {
		t.Errorf("rep range = %d [%d, %d], want 8 [8, 12]", metric.CurrentRepTarget, metric.StartingReps, metric.MaxReps)
	}
	if err := metric.Validate(); err != nil {
		t.Errorf("default metric state invalid: %v", err)
	}

	imperial := DefaultProgressionState(id, 135, UnitImperial)
	if imperial.MinWeightIncrement != 5 || imperial.PreferredPlateIncrement != 2.5 {
		t.Errorf("imperial increments = %v/%v, want 5/2.5", imperial.MinWeightIncrement, imperial.PreferredPlateIncrement)
	}
}

// TestValidate verifies each invariant violation is rejected.
func TestValidate(t *testing.T) {
	base := DefaultProgressionState(uuid.New(), 60, UnitMetric)

	tests := []struct {
		name   string
		mutate func(s *ExerciseProgressionState)
	}{
		{"zero starting reps", func(s *ExerciseProgressionState) { s.StartingReps = 0 }},
		{"starting above max", func(s *ExerciseProgressionState) { s.StartingReps = 13 }},
		{"target below range", func(s *ExerciseProgressionState) { s.CurrentRepTarget = 6 }},
		{"target above range", func(s *ExerciseProgressionState) { s.CurrentRepTarget = 13 }},
		{"zero percent", func(s *ExerciseProgressionState) { s.WeightIncrementPercent = 0 }},
		{"zero increment", func(s *ExerciseProgressionState) { s.MinWeightIncrement = 0 }},
		{"negative weight", func(s *ExerciseProgressionState) { s.CurrentWeight = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base
			tt.mutate(&s)
			if err := s.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
