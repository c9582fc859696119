package models

import (
	"time"

	"github.com/google/uuid"
)

// WorkoutSetRow is a row for the workout_sets table.
type WorkoutSetRow struct {
	UserID       int       `json:"user_id"`
	SessionID    uuid.UUID `json:"session_id"`
	SessionName  string    `json:"session_name"`
	SessionDate  time.Time `json:"session_date"`
	ExerciseID   uuid.UUID `json:"exercise_id"`
	ExerciseName string    `json:"exercise_name"`
	SetNumber    int       `json:"set_number"`
	Status       SetStatus `json:"status"`
	IsWarmup     bool      `json:"is_warmup"`
	TargetReps   int       `json:"target_reps"`
	TargetWeight float64   `json:"target_weight"`
	ActualReps   *int      `json:"actual_reps,omitempty"`
	ActualWeight *float64  `json:"actual_weight,omitempty"`
}

// SetRows flattens a completed session into workout_sets rows. Set numbers
// run across the whole session so an exercise logged in two blocks keeps
// every set.
func SetRows(userID int, c CompletedTraining) []WorkoutSetRow {
	var rows []WorkoutSetRow
	for _, ex := range c.Exercises {
		for _, s := range ex.SetTargets {
			rows = append(rows, WorkoutSetRow{
				UserID:       userID,
				SessionID:    c.ID,
				SessionName:  c.TemplateName,
				SessionDate:  c.Date,
				ExerciseID:   ex.ExerciseDefinitionID,
				ExerciseName: ex.Name,
				SetNumber:    len(rows) + 1,
				Status:       s.Status,
				IsWarmup:     s.IsWarmup,
				TargetReps:   s.TargetReps,
				TargetWeight: s.TargetWeight,
				ActualReps:   s.ActualReps,
				ActualWeight: s.ActualWeight,
			})
		}
	}
	return rows
}
