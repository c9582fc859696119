package progression

import (
	"github.com/claude/overload/internal/models"
)

// NextPrescription decides the weight and rep target for the next session
// from the sets just logged.
//
// Only working sets (completed, not warmup) are considered. A set without
// actual reps never meets a threshold. When every working set reaches MaxReps
// the load goes up and reps reset to StartingReps; otherwise, when every
// working set reaches the current target and there is room below MaxReps, the
// target goes up by one rep. Anything else holds.
//
// The unit system is accepted for the caller's context only.
func NextPrescription(state models.ExerciseProgressionState, sets []models.SetTarget, _ models.UnitSystem, eq models.EquipmentContext) models.NextPrescriptionResult {
	hold := models.NextPrescriptionResult{
		NextWeight: state.CurrentWeight,
		NextReps:   state.CurrentRepTarget,
		Type:       models.ProgressionNone,
	}

	working := make([]models.SetTarget, 0, len(sets))
	for _, s := range sets {
		if s.IsWorking() {
			working = append(working, s)
		}
	}
	if len(working) == 0 {
		return hold
	}

	if allReached(working, state.MaxReps) {
		raw := state.CurrentWeight * (1 + state.WeightIncrementPercent/100)
		return models.NextPrescriptionResult{
			NextWeight: RoundToEquipment(raw, eq, state),
			NextReps:   state.StartingReps,
			Type:       models.ProgressionWeightIncrease,
		}
	}

	if allReached(working, state.CurrentRepTarget) && state.CurrentRepTarget < state.MaxReps {
		return models.NextPrescriptionResult{
			NextWeight: state.CurrentWeight,
			NextReps:   state.CurrentRepTarget + 1,
			Type:       models.ProgressionRepIncrease,
		}
	}

	return hold
}

func allReached(sets []models.SetTarget, reps int) bool {
	for _, s := range sets {
		if s.ActualReps == nil || *s.ActualReps < reps {
			return false
		}
	}
	return true
}
