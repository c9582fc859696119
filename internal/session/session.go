// Package session applies prescription decisions when a workout is finished:
// it stores the logged sets, runs the decider for each exercise against the
// stored progression state, writes the new baseline and records the change.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/claude/overload/internal/models"
	"github.com/claude/overload/internal/progression"
	"github.com/claude/overload/internal/storage"
	"github.com/google/uuid"
)

// Store is the persistence the workflow needs. *storage.DB satisfies it.
type Store interface {
	GetExercise(ctx context.Context, id uuid.UUID) (*models.ExerciseDefinition, error)
	InsertWorkoutSets(ctx context.Context, rows []models.WorkoutSetRow) (int64, error)
	UpdateProgression(ctx context.Context, userID int, exerciseID, sessionID uuid.UUID, fn storage.UpdateFunc) error
}

var _ Store = (*storage.DB)(nil)

// Skip reasons reported on an Outcome.
const (
	SkipUnknownExercise = "unknown exercise"
	SkipNoState         = "no progression state"
	SkipAlreadyDecided  = "already decided for this session"
)

// Outcome is the decision taken for one exercise of a session.
type Outcome struct {
	ExerciseID uuid.UUID                      `json:"exercise_id"`
	Name       string                         `json:"name"`
	Result     *models.NextPrescriptionResult `json:"result,omitempty"`
	Applied    bool                           `json:"applied"`
	Event      *models.ProgressionEvent       `json:"event,omitempty"`
	Skipped    string                         `json:"skipped,omitempty"`
}

// Report summarizes a completed session.
type Report struct {
	SessionID    uuid.UUID `json:"session_id"`
	TotalVolume  float64   `json:"total_volume"`
	SetsReceived int       `json:"sets_received"`
	SetsInserted int64     `json:"sets_inserted"`
	Duplicate    bool      `json:"duplicate,omitempty"`
	Outcomes     []Outcome `json:"outcomes"`
}

// Completer runs the session-completion workflow.
type Completer struct {
	store Store
	log   *slog.Logger
	now   func() time.Time
}

// NewCompleter creates a Completer backed by the given store.
func NewCompleter(store Store, log *slog.Logger) *Completer {
	return &Completer{store: store, log: log, now: time.Now}
}

// Complete stores the session's sets and decides the next prescription for
// every exercise in it, once per exercise: blocks of the same exercise are
// merged first. Exercises without a definition or progression state are
// reported as skipped, not as errors.
//
// Each decision is recorded against the session ID by the store, so
// resubmitting a session only decides exercises a failed attempt did not
// reach. A resubmission that stores no sets and decides nothing is
// reported as Duplicate.
func (c *Completer) Complete(ctx context.Context, userID int, training models.CompletedTraining) (*Report, error) {
	if training.ID == uuid.Nil {
		training.ID = uuid.New()
	}
	if training.Date.IsZero() {
		training.Date = training.EndTime
		if training.Date.IsZero() {
			training.Date = c.now()
		}
	}
	training.TotalVolume = training.Volume()

	rows := models.SetRows(userID, training)
	inserted, err := c.store.InsertWorkoutSets(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("storing sets: %w", err)
	}

	report := &Report{
		SessionID:    training.ID,
		TotalVolume:  training.TotalVolume,
		SetsReceived: len(rows),
		SetsInserted: inserted,
	}

	decided := false
	for _, ex := range mergeBlocks(training.Exercises) {
		out, err := c.completeExercise(ctx, userID, training, ex)
		if err != nil {
			return nil, fmt.Errorf("exercise %s: %w", label(out), err)
		}
		if out.Skipped == "" {
			decided = true
		}
		report.Outcomes = append(report.Outcomes, out)
	}

	if len(rows) > 0 && inserted == 0 && !decided {
		report.Duplicate = true
		c.log.Info("session: already completed", "session_id", training.ID)
	}
	return report, nil
}

// mergeBlocks folds repeated blocks of one exercise into the first block,
// keeping every set in logged order. Entries without a definition ID are
// left as they are.
func mergeBlocks(exercises []models.LoggedExercise) []models.LoggedExercise {
	merged := make([]models.LoggedExercise, 0, len(exercises))
	index := map[uuid.UUID]int{}
	for _, ex := range exercises {
		if ex.ExerciseDefinitionID == uuid.Nil {
			merged = append(merged, ex)
			continue
		}
		if i, ok := index[ex.ExerciseDefinitionID]; ok {
			first := &merged[i]
			first.SetTargets = append(slices.Clip(first.SetTargets), ex.SetTargets...)
			continue
		}
		index[ex.ExerciseDefinitionID] = len(merged)
		merged = append(merged, ex)
	}
	return merged
}

// label names an outcome in errors: the exercise name when known, else its ID.
func label(out Outcome) string {
	if out.Name != "" {
		return fmt.Sprintf("%q", out.Name)
	}
	return out.ExerciseID.String()
}

func (c *Completer) completeExercise(ctx context.Context, userID int, training models.CompletedTraining, ex models.LoggedExercise) (Outcome, error) {
	out := Outcome{ExerciseID: ex.ExerciseDefinitionID, Name: ex.Name}

	if ex.ExerciseDefinitionID == uuid.Nil {
		out.Skipped = SkipUnknownExercise
		return out, nil
	}
	def, err := c.store.GetExercise(ctx, ex.ExerciseDefinitionID)
	if errors.Is(err, storage.ErrNotFound) {
		out.Skipped = SkipUnknownExercise
		c.log.Warn("session: exercise not in library", "exercise_id", ex.ExerciseDefinitionID, "name", ex.Name)
		return out, nil
	}
	if err != nil {
		return out, err
	}
	if out.Name == "" {
		out.Name = def.Name
	}

	err = c.store.UpdateProgression(ctx, userID, def.ID, training.ID, func(state models.ExerciseProgressionState) (models.ExerciseProgressionState, *models.ProgressionEvent, error) {
		res := progression.NextPrescription(state, ex.SetTargets, training.UnitSystem, def.Equipment())
		next, applied := Apply(state, ex.SetTargets, res)

		out.Result = &res
		out.Applied = applied
		out.Event = nil
		if applied {
			out.Event = progression.EventFor(def.ID, state, res, training.Date)
		}
		return next, out.Event, nil
	})
	if errors.Is(err, storage.ErrNotFound) {
		out.Skipped = SkipNoState
		c.log.Info("session: no progression state", "exercise", out.Name, "user_id", userID)
		return out, nil
	}
	if errors.Is(err, storage.ErrAlreadyDecided) {
		out = Outcome{ExerciseID: out.ExerciseID, Name: out.Name, Skipped: SkipAlreadyDecided}
		return out, nil
	}
	if err != nil {
		return out, err
	}

	c.log.Info("prescription",
		"exercise", out.Name,
		"type", out.Result.Type,
		"next_weight", out.Result.NextWeight,
		"next_reps", out.Result.NextReps,
		"applied", out.Applied,
	)
	return out, nil
}
