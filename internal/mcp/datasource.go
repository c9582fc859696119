package mcp

import (
	"context"
	"time"

	"github.com/claude/overload/internal/models"
	"github.com/claude/overload/internal/storage"
	"github.com/google/uuid"
)

// DataSource abstracts the data layer for MCP tools. Both *storage.DB (local)
// and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	ListExercises(ctx context.Context) ([]models.ExerciseDefinition, error)
	GetExercise(ctx context.Context, id uuid.UUID) (*models.ExerciseDefinition, error)
	GetExerciseByName(ctx context.Context, name string) (*models.ExerciseDefinition, error)
	GetProgressionState(ctx context.Context, userID int, exerciseID uuid.UUID) (*models.ExerciseProgressionState, error)
	QueryProgressionEvents(ctx context.Context, userID int, exerciseID uuid.UUID, limit int) ([]models.ProgressionEvent, error)
	QueryWorkoutSets(ctx context.Context, start, end time.Time, userID int, exerciseFilter string) ([]models.WorkoutSetRow, error)
	GetTrainingSummary(ctx context.Context, start, end time.Time, bucket string, userID int) ([]storage.TrainingSummaryPeriod, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
