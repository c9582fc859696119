package alpha

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/claude/overload/internal/models"
	"github.com/claude/overload/internal/session"
	"github.com/claude/overload/internal/storage"
	"github.com/google/uuid"
)

// Library resolves exercises by name and seeds progression state for new ones.
type Library interface {
	GetExerciseByName(ctx context.Context, name string) (*models.ExerciseDefinition, error)
	CreateExercise(ctx context.Context, d models.ExerciseDefinition) (*models.ExerciseDefinition, error)
	GetProgressionState(ctx context.Context, userID int, exerciseID uuid.UUID) (*models.ExerciseProgressionState, error)
	PutProgressionState(ctx context.Context, userID int, s models.ExerciseProgressionState) error
}

var _ Library = (*storage.DB)(nil)

// ErrMalformed marks an export that could not be parsed.
var ErrMalformed = errors.New("malformed alpha export")

// sessionNamespace derives stable session IDs so re-imports are recognized.
var sessionNamespace = uuid.MustParse("6f1c1b52-4a37-4f8e-9d0a-3c2b7e1f5a90")

// Provider processes Alpha Progression CSV exports.
type Provider struct {
	lib       Library
	completer *session.Completer
	log       *slog.Logger
}

// NewProvider creates a new Alpha Progression ingest provider.
func NewProvider(lib Library, completer *session.Completer, log *slog.Logger) *Provider {
	return &Provider{lib: lib, completer: completer, log: log}
}

// Ingest parses a CSV export and completes every session in it, oldest first,
// so progression decisions chain in training order.
func (p *Provider) Ingest(ctx context.Context, r io.Reader, userID int) ([]*session.Report, error) {
	sessions, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	slices.Reverse(sessions)
	return p.IngestSessions(ctx, sessions, userID)
}

// IngestSessions completes already parsed sessions in the order given.
// Exports list the newest session first; callers pass them oldest first.
func (p *Provider) IngestSessions(ctx context.Context, sessions []models.AlphaSession, userID int) ([]*session.Report, error) {
	var reports []*session.Report
	for _, s := range sessions {
		training, err := p.toTraining(ctx, userID, s)
		if err != nil {
			return nil, err
		}
		report, err := p.completer.Complete(ctx, userID, training)
		if err != nil {
			return nil, fmt.Errorf("completing session %s: %w", s.Date.Format("2006-01-02"), err)
		}
		reports = append(reports, report)
	}

	p.log.Info("alpha import", "sessions", len(sessions), "user_id", userID)
	return reports, nil
}

// toTraining resolves each exercise to a library definition and wraps the
// session as a CompletedTraining with a deterministic ID.
func (p *Provider) toTraining(ctx context.Context, userID int, s models.AlphaSession) (models.CompletedTraining, error) {
	training := models.CompletedTraining{
		ID:           SessionID(s),
		TemplateName: s.Name,
		Date:         s.Date,
		StartTime:    s.Date,
		EndTime:      s.Date.Add(s.Duration),
		UnitSystem:   models.UnitMetric,
	}
	for _, ex := range s.Exercises {
		def, err := p.resolve(ctx, userID, ex)
		if err != nil {
			return training, fmt.Errorf("resolving exercise %q: %w", ex.Name, err)
		}
		training.Exercises = append(training.Exercises, models.LoggedExercise{
			ID:                   uuid.New(),
			ExerciseDefinitionID: def.ID,
			Name:                 def.Name,
			SetTargets:           ex.Sets,
		})
	}
	return training, nil
}

// resolve finds or creates the definition for ex and makes sure the user has
// a progression state for it.
func (p *Provider) resolve(ctx context.Context, userID int, ex models.AlphaExercise) (*models.ExerciseDefinition, error) {
	def, err := p.lib.GetExerciseByName(ctx, ex.Name)
	if errors.Is(err, storage.ErrNotFound) {
		kind, known := models.ParseEquipmentType(ex.Equipment)
		if !known {
			p.log.Warn("alpha: unknown equipment, treating as fixed load", "exercise", ex.Name, "equipment", ex.Equipment)
		}
		def, err = p.lib.CreateExercise(ctx, models.ExerciseDefinition{
			Name:          ex.Name,
			EquipmentType: kind,
			IsBodyweight:  kind == models.EquipmentBodyweight,
		})
	}
	if err != nil {
		return nil, err
	}

	_, err = p.lib.GetProgressionState(ctx, userID, def.ID)
	if errors.Is(err, storage.ErrNotFound) {
		state := SeedState(def.ID, ex)
		p.log.Info("alpha: seeding progression state", "exercise", def.Name, "weight", state.CurrentWeight, "reps", state.CurrentRepTarget)
		return def, p.lib.PutProgressionState(ctx, userID, state)
	}
	return def, err
}

// SessionID derives a stable ID from the session's name and start time.
func SessionID(s models.AlphaSession) uuid.UUID {
	return uuid.NewSHA1(sessionNamespace, []byte(s.Date.Format("2006-01-02T15:04")+"|"+s.Name))
}

// SeedState builds the first progression state for an exercise from the sets
// logged the first time it is seen: the heaviest working weight becomes the
// baseline and the export's target reps start a four-rep range.
func SeedState(exerciseID uuid.UUID, ex models.AlphaExercise) models.ExerciseProgressionState {
	var weight float64
	for _, s := range ex.Sets {
		if s.IsWorking() && s.ActualWeight != nil && *s.ActualWeight > weight {
			weight = *s.ActualWeight
		}
	}
	state := models.DefaultProgressionState(exerciseID, weight, models.UnitMetric)
	if ex.TargetReps > 0 {
		state.StartingReps = ex.TargetReps
		state.CurrentRepTarget = ex.TargetReps
		state.MaxReps = ex.TargetReps + 4
	}
	return state
}
