package models

import (
	"time"

	"github.com/google/uuid"
)

// TemplateExercise places an exercise in a template.
type TemplateExercise struct {
	TemplateID           uuid.UUID `json:"template_id"`
	ExerciseDefinitionID uuid.UUID `json:"exercise_definition_id"`
	SortOrder            int       `json:"sort_order"`
	SetsOverride         *int      `json:"sets_override,omitempty"`
}

// TrainingTemplate is a reusable list of exercises.
type TrainingTemplate struct {
	ID                   uuid.UUID          `json:"id"`
	Name                 string             `json:"name"`
	Exercises            []TemplateExercise `json:"exercises"`
	Category             string             `json:"category"`
	EstimatedDurationMin int                `json:"estimated_duration_min"`
	Frequency            int                `json:"frequency"`
	LastUsed             *time.Time         `json:"last_used,omitempty"`
	IsFavorite           bool               `json:"is_favorite"`
}

// LoggedExercise is one exercise as performed in a session.
type LoggedExercise struct {
	ID                   uuid.UUID   `json:"id"`
	ExerciseDefinitionID uuid.UUID   `json:"exercise_definition_id"`
	Name                 string      `json:"name"`
	SetTargets           []SetTarget `json:"set_targets"`
	Notes                *string     `json:"notes,omitempty"`
}

// WorkingSets returns the completed, non-warmup sets.
func (e LoggedExercise) WorkingSets() []SetTarget {
	var out []SetTarget
	for _, s := range e.SetTargets {
		if s.IsWorking() {
			out = append(out, s)
		}
	}
	return out
}

// CompletedTraining is a finished session.
type CompletedTraining struct {
	ID                uuid.UUID        `json:"id"`
	TemplateID        *uuid.UUID       `json:"template_id,omitempty"`
	TemplateName      string           `json:"template_name"`
	Date              time.Time        `json:"date"`
	Exercises         []LoggedExercise `json:"exercises"`
	PersonalNotes     *string          `json:"personal_notes,omitempty"`
	StartTime         time.Time        `json:"start_time"`
	EndTime           time.Time        `json:"end_time"`
	TotalVolume       float64          `json:"total_volume"`
	PerceivedExertion int              `json:"perceived_exertion"`
	Achievements      []string         `json:"achievements,omitempty"`
	UnitSystem        UnitSystem       `json:"unit_system"`
}

// Volume sums weight × reps over every working set that has both values.
func (c CompletedTraining) Volume() float64 {
	var total float64
	for _, ex := range c.Exercises {
		for _, s := range ex.WorkingSets() {
			if s.ActualReps == nil || s.ActualWeight == nil {
				continue
			}
			total += *s.ActualWeight * float64(*s.ActualReps)
		}
	}
	return total
}
