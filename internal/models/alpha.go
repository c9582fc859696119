package models

import "time"

// AlphaSession is one workout parsed from an Alpha Progression CSV export.
type AlphaSession struct {
	Name      string
	Date      time.Time
	Duration  time.Duration
	Exercises []AlphaExercise
}

// AlphaExercise is a single exercise block within a session. Equipment is the
// raw label from the export; resolve it with ParseEquipmentType.
type AlphaExercise struct {
	Number     int
	Name       string
	Equipment  string
	TargetReps int
	Sets       []SetTarget
}
