package session

import (
	"github.com/claude/overload/internal/models"
)

// Apply folds a decision into the stored state. It records the last working
// set and counts stalls: a hold with working sets adds one, any progression
// resets to zero, and a session without working sets leaves the count alone.
//
// The prescribed weight and reps replace the baseline only when AutoIncrement
// is set; otherwise the decision stays a suggestion and applied is false.
func Apply(state models.ExerciseProgressionState, sets []models.SetTarget, res models.NextPrescriptionResult) (next models.ExerciseProgressionState, applied bool) {
	next = state

	var last *models.SetTarget
	for i := range sets {
		if sets[i].IsWorking() {
			last = &sets[i]
		}
	}
	if last == nil {
		return next, false
	}
	if last.ActualWeight != nil {
		next.LastUsedWeight = *last.ActualWeight
	}
	if last.ActualReps != nil {
		next.LastUsedReps = *last.ActualReps
	}

	if res.Type == models.ProgressionNone {
		next.ConsecutiveStalls++
		return next, false
	}
	next.ConsecutiveStalls = 0

	if !state.AutoIncrement {
		return next, false
	}
	next.CurrentWeight = res.NextWeight
	next.CurrentRepTarget = res.NextReps
	return next, true
}
