package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// UnitSystem is the lifter's display unit system. It never enters the
// prescription arithmetic; weights are stored in whatever unit the lifter uses.
type UnitSystem string

const (
	UnitMetric   UnitSystem = "metric"
	UnitImperial UnitSystem = "imperial"
)

// ProgressionType classifies what a prescription changed.
type ProgressionType string

const (
	ProgressionRepIncrease    ProgressionType = "repIncrease"
	ProgressionWeightIncrease ProgressionType = "weightIncrease"
	ProgressionNone           ProgressionType = "none"
)

// SetStatus is the lifecycle state of a single set.
type SetStatus string

const (
	SetPending    SetStatus = "pending"
	SetInProgress SetStatus = "inProgress"
	SetCompleted  SetStatus = "completed"
	SetFailed     SetStatus = "failed"
	SetSkipped    SetStatus = "skipped"
	SetWarmup     SetStatus = "warmup"
)

// SetTarget is one planned or executed set. ActualReps and ActualWeight are
// nil until the set is finalized.
type SetTarget struct {
	TargetReps   int       `json:"target_reps"`
	TargetWeight float64   `json:"target_weight"`
	Status       SetStatus `json:"status"`
	ActualReps   *int      `json:"actual_reps,omitempty"`
	ActualWeight *float64  `json:"actual_weight,omitempty"`
	IsWarmup     bool      `json:"is_warmup"`
}

// IsWorking reports whether the set counts toward a progression decision.
func (s SetTarget) IsWorking() bool {
	return s.Status == SetCompleted && !s.IsWarmup
}

// ExerciseDefinition is a library entry shared across templates.
type ExerciseDefinition struct {
	ID               uuid.UUID     `json:"id"`
	Name             string        `json:"name"`
	Category         string        `json:"category"`
	EquipmentType    EquipmentType `json:"equipment_type"`
	IsBodyweight     bool          `json:"is_bodyweight"`
	BarWeight        *float64      `json:"bar_weight,omitempty"`
	AvailablePlates  []float64     `json:"available_plates,omitempty"`
	MachineIncrement *float64      `json:"machine_increment,omitempty"`
	DumbbellSteps    []float64     `json:"dumbbell_steps,omitempty"`
}

// Equipment derives the rounding snapshot for this exercise.
func (d ExerciseDefinition) Equipment() EquipmentContext {
	return EquipmentContext{
		Type:             d.EquipmentType,
		DumbbellSteps:    d.DumbbellSteps,
		MachineIncrement: d.MachineIncrement,
	}
}

// ExerciseProgressionState is the per-user, per-exercise prescription baseline.
type ExerciseProgressionState struct {
	ID                   uuid.UUID `json:"id"`
	ExerciseDefinitionID uuid.UUID `json:"exercise_definition_id"`

	CurrentWeight    float64 `json:"current_weight"`
	CurrentRepTarget int     `json:"current_rep_target"`
	Sets             int     `json:"sets"`

	StartingReps            int     `json:"starting_reps"`
	MaxReps                 int     `json:"max_reps"`
	WeightIncrementPercent  float64 `json:"weight_increment_percent"`
	MinWeightIncrement      float64 `json:"min_weight_increment"`
	PreferredPlateIncrement float64 `json:"preferred_plate_increment"`
	AutoIncrement           bool    `json:"auto_increment"`

	LastUsedWeight     float64 `json:"last_used_weight"`
	LastUsedReps       int     `json:"last_used_reps"`
	PersonalRecordE1RM float64 `json:"personal_record_e1rm"`
	ConsecutiveStalls  int     `json:"consecutive_stalls"`
}

// DefaultProgressionState returns a fresh state for an exercise: 3 sets of
// 8–12 reps, 5% load jumps, and the usual smallest increments for the unit system.
func DefaultProgressionState(exerciseID uuid.UUID, weight float64, unit UnitSystem) ExerciseProgressionState {
	minInc, plateInc := 2.5, 1.25
	if unit == UnitImperial {
		minInc, plateInc = 5, 2.5
	}
	return ExerciseProgressionState{
		ID:                      uuid.New(),
		ExerciseDefinitionID:    exerciseID,
		CurrentWeight:           weight,
		CurrentRepTarget:        8,
		Sets:                    3,
		StartingReps:            8,
		MaxReps:                 12,
		WeightIncrementPercent:  5,
		MinWeightIncrement:      minInc,
		PreferredPlateIncrement: plateInc,
		AutoIncrement:           true,
		LastUsedWeight:          weight,
	}
}

// Validate checks the invariants the prescription logic relies on.
func (s ExerciseProgressionState) Validate() error {
	if s.StartingReps <= 0 {
		return errors.New("starting_reps must be positive")
	}
	if s.StartingReps > s.MaxReps {
		return fmt.Errorf("starting_reps (%d) exceeds max_reps (%d)", s.StartingReps, s.MaxReps)
	}
	if s.CurrentRepTarget < s.StartingReps || s.CurrentRepTarget > s.MaxReps {
		return fmt.Errorf("current_rep_target (%d) outside [%d, %d]", s.CurrentRepTarget, s.StartingReps, s.MaxReps)
	}
	if s.WeightIncrementPercent <= 0 {
		return errors.New("weight_increment_percent must be positive")
	}
	if s.MinWeightIncrement <= 0 {
		return errors.New("min_weight_increment must be positive")
	}
	if s.CurrentWeight < 0 {
		return errors.New("current_weight must not be negative")
	}
	return nil
}

// NextPrescriptionResult is the decision for the next session.
type NextPrescriptionResult struct {
	NextWeight float64         `json:"next_weight"`
	NextReps   int             `json:"next_reps"`
	Type       ProgressionType `json:"type"`
}

// ProgressionEvent records one applied change to a progression baseline.
type ProgressionEvent struct {
	ID                   uuid.UUID       `json:"id"`
	Date                 time.Time       `json:"date"`
	ExerciseDefinitionID uuid.UUID       `json:"exercise_definition_id"`
	Type                 ProgressionType `json:"type"`
	OldValue             float64         `json:"old_value"`
	NewValue             float64         `json:"new_value"`
	Note                 *string         `json:"note,omitempty"`
}
