package progression

import (
	"math"

	"github.com/claude/overload/internal/models"
)

// tieTolerance is how close two distances must be to count as a tie.
const tieTolerance = 1e-9

// RoundToEquipment maps a raw target weight to the nearest weight loadable on
// the given equipment, never returning less than state.CurrentWeight.
//
// Increments round half away from zero: with 2.5 steps, 63.75 becomes 65.
// Increments must be positive; a non-positive increment leaves the target
// unrounded. Dumbbells with no configured steps return the target unchanged.
// Bodyweight, kettlebell and band (and any unknown kind) keep CurrentWeight.
func RoundToEquipment(target float64, eq models.EquipmentContext, state models.ExerciseProgressionState) float64 {
	switch eq.Type {
	case models.EquipmentBarbell:
		return math.Max(roundToIncrement(target, state.MinWeightIncrement), state.CurrentWeight)
	case models.EquipmentDumbbell:
		if len(eq.DumbbellSteps) == 0 {
			return target
		}
		return math.Max(nearestStep(target, eq.DumbbellSteps), state.CurrentWeight)
	case models.EquipmentMachine, models.EquipmentCable:
		inc := state.MinWeightIncrement
		if eq.MachineIncrement != nil {
			inc = *eq.MachineIncrement
		}
		return math.Max(roundToIncrement(target, inc), state.CurrentWeight)
	case models.EquipmentBodyweight, models.EquipmentKettlebell, models.EquipmentBand:
		return state.CurrentWeight
	default:
		return state.CurrentWeight
	}
}

func roundToIncrement(target, inc float64) float64 {
	if inc <= 0 {
		return target
	}
	return math.Round(target/inc) * inc
}

// nearestStep picks the step closest to target, preferring the larger one on a tie.
// Steps need not be sorted.
func nearestStep(target float64, steps []float64) float64 {
	nearest := steps[0]
	minDiff := math.Abs(target - nearest)
	for _, s := range steps[1:] {
		d := math.Abs(target - s)
		if d < minDiff-tieTolerance || (math.Abs(d-minDiff) < tieTolerance && s > nearest) {
			nearest = s
			minDiff = d
		}
	}
	return nearest
}
