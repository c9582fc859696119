package progression

import (
	"time"

	"github.com/claude/overload/internal/models"
	"github.com/google/uuid"
)

// EventFor builds the history record for a decision, or nil when nothing changed.
// Weight increases record the load; rep increases record the rep target.
func EventFor(exerciseID uuid.UUID, state models.ExerciseProgressionState, res models.NextPrescriptionResult, at time.Time) *models.ProgressionEvent {
	ev := &models.ProgressionEvent{
		ID:                   uuid.New(),
		Date:                 at,
		ExerciseDefinitionID: exerciseID,
		Type:                 res.Type,
	}
	switch res.Type {
	case models.ProgressionWeightIncrease:
		ev.OldValue = state.CurrentWeight
		ev.NewValue = res.NextWeight
	case models.ProgressionRepIncrease:
		ev.OldValue = float64(state.CurrentRepTarget)
		ev.NewValue = float64(res.NextReps)
	default:
		return nil
	}
	return ev
}
