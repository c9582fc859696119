package models

import "testing"

// TestParseEquipmentType_Labels verifies that export labels (including the
// multi-word and plural forms Alpha Progression uses) resolve to the right kind.
func TestParseEquipmentType_Labels(t *testing.T) {
	cases := []struct {
		input string
		want  EquipmentType
	}{
		{"Barbell", EquipmentBarbell},
		{"Dumbbells", EquipmentDumbbell},
		{"Machine", EquipmentMachine},
		{"Smith machine", EquipmentMachine},
		{"Cable", EquipmentCable},
		{"Bodyweight", EquipmentBodyweight},
		{"Kettlebell", EquipmentKettlebell},
		{"Band", EquipmentBand},
		{"  barbell  ", EquipmentBarbell},
		{"Kurzhanteln", EquipmentDumbbell},
		{"Kabelzug", EquipmentCable},
	}
	for _, tc := range cases {
		got, known := ParseEquipmentType(tc.input)
		if !known {
			t.Errorf("ParseEquipmentType(%q): expected known=true", tc.input)
		}
		if got != tc.want {
			t.Errorf("ParseEquipmentType(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

// TestParseEquipmentType_Unknown verifies that unknown labels fall back to
// bodyweight so their load is never adjusted automatically.
func TestParseEquipmentType_Unknown(t *testing.T) {
	got, known := ParseEquipmentType("Sandbag")
	if known {
		t.Error("expected known=false for unrecognized label")
	}
	if got != EquipmentBodyweight {
		t.Errorf("got %q, want %q", got, EquipmentBodyweight)
	}
}

// TestEquipmentAdjustable verifies which kinds allow load changes.
func TestEquipmentAdjustable(t *testing.T) {
	want := map[EquipmentType]bool{
		EquipmentBarbell:    true,
		EquipmentDumbbell:   true,
		EquipmentMachine:    true,
		EquipmentCable:      true,
		EquipmentBodyweight: false,
		EquipmentKettlebell: false,
		EquipmentBand:       false,
	}
	for _, k := range EquipmentTypes {
		if got := k.Adjustable(); got != want[k] {
			t.Errorf("%s.Adjustable() = %v, want %v", k, got, want[k])
		}
	}
	if EquipmentType("sled").Valid() {
		t.Error("unknown kind reported as valid")
	}
}

// TestExerciseDefinitionEquipment verifies the rounding snapshot carries the
// definition's steps and increment through unchanged.
func TestExerciseDefinitionEquipment(t *testing.T) {
	inc := 5.0
	d := ExerciseDefinition{
		EquipmentType:    EquipmentCable,
		MachineIncrement: &inc,
		DumbbellSteps:    []float64{10, 12.5},
	}
	eq := d.Equipment()
	if eq.Type != EquipmentCable {
		t.Errorf("type = %q, want cable", eq.Type)
	}
	if eq.MachineIncrement == nil || *eq.MachineIncrement != 5 {
		t.Errorf("machine increment = %v, want 5", eq.MachineIncrement)
	}
	if len(eq.DumbbellSteps) != 2 {
		t.Errorf("dumbbell steps = %v, want 2 entries", eq.DumbbellSteps)
	}
}
