package models

import "strings"

// EquipmentType is the closed set of equipment kinds the rounding rules know about.
type EquipmentType string

const (
	EquipmentBarbell    EquipmentType = "barbell"
	EquipmentDumbbell   EquipmentType = "dumbbell"
	EquipmentMachine    EquipmentType = "machine"
	EquipmentCable      EquipmentType = "cable"
	EquipmentBodyweight EquipmentType = "bodyweight"
	EquipmentKettlebell EquipmentType = "kettlebell"
	EquipmentBand       EquipmentType = "band"
)

// EquipmentTypes lists every known kind in declaration order.
var EquipmentTypes = []EquipmentType{
	EquipmentBarbell, EquipmentDumbbell, EquipmentMachine, EquipmentCable,
	EquipmentBodyweight, EquipmentKettlebell, EquipmentBand,
}

// Valid reports whether t is one of the known equipment kinds.
func (t EquipmentType) Valid() bool {
	for _, k := range EquipmentTypes {
		if t == k {
			return true
		}
	}
	return false
}

// Adjustable reports whether load on this equipment can be changed by rounding.
// Bodyweight, kettlebell and band exercises progress through reps only.
func (t EquipmentType) Adjustable() bool {
	switch t {
	case EquipmentBarbell, EquipmentDumbbell, EquipmentMachine, EquipmentCable:
		return true
	default:
		return false
	}
}

// equipmentLabels maps lowercased equipment labels, as they appear in
// training app exports, to equipment kinds. Covers English and German.
var equipmentLabels = map[string]EquipmentType{
	// English
	"barbell":         EquipmentBarbell,
	"barbells":        EquipmentBarbell,
	"ez bar":          EquipmentBarbell,
	"ez-bar":          EquipmentBarbell,
	"trap bar":        EquipmentBarbell,
	"dumbbell":        EquipmentDumbbell,
	"dumbbells":       EquipmentDumbbell,
	"machine":         EquipmentMachine,
	"smith machine":   EquipmentMachine,
	"plate loaded":    EquipmentMachine,
	"cable":           EquipmentCable,
	"cables":          EquipmentCable,
	"cable tower":     EquipmentCable,
	"bodyweight":      EquipmentBodyweight,
	"body weight":     EquipmentBodyweight,
	"kettlebell":      EquipmentKettlebell,
	"kettlebells":     EquipmentKettlebell,
	"band":            EquipmentBand,
	"bands":           EquipmentBand,
	"resistance band": EquipmentBand,

	// German
	"langhantel":      EquipmentBarbell,
	"sz-stange":       EquipmentBarbell,
	"kurzhantel":      EquipmentDumbbell,
	"kurzhanteln":     EquipmentDumbbell,
	"maschine":        EquipmentMachine,
	"multipresse":     EquipmentMachine,
	"kabelzug":        EquipmentCable,
	"körpergewicht":   EquipmentBodyweight,
	"koerpergewicht":  EquipmentBodyweight,
	"widerstandsband": EquipmentBand,
}

// ParseEquipmentType maps a free-text equipment label to its kind.
// Returns the kind and true if recognized, or EquipmentBodyweight and false
// if unknown, so unrecognized equipment never has its load auto-adjusted.
func ParseEquipmentType(raw string) (EquipmentType, bool) {
	lower := strings.ToLower(strings.TrimSpace(raw))
	if t := EquipmentType(lower); t.Valid() {
		return t, true
	}
	if t, ok := equipmentLabels[lower]; ok {
		return t, true
	}
	return EquipmentBodyweight, false
}

// EquipmentContext is the read-only rounding data for one exercise.
// Nil DumbbellSteps or MachineIncrement mean "not configured".
type EquipmentContext struct {
	Type             EquipmentType `json:"type"`
	DumbbellSteps    []float64     `json:"dumbbell_steps,omitempty"`
	MachineIncrement *float64      `json:"machine_increment,omitempty"`
}
