package storage

import (
	"context"
	"fmt"

	"github.com/claude/overload/internal/models"
	"github.com/google/uuid"
)

const exerciseColumns = `id, name, category, equipment_type, is_bodyweight,
	bar_weight, available_plates, machine_increment, dumbbell_steps`

// CreateExercise inserts a library definition. A nil ID is replaced with a new one.
// Names are unique regardless of case; a duplicate returns ErrConflict.
func (db *DB) CreateExercise(ctx context.Context, d models.ExerciseDefinition) (*models.ExerciseDefinition, error) {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO exercise_definitions (`+exerciseColumns+`)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		d.ID, d.Name, d.Category, d.EquipmentType, d.IsBodyweight,
		d.BarWeight, d.AvailablePlates, d.MachineIncrement, d.DumbbellSteps)
	if err != nil {
		return nil, conflict(err, "exercise "+d.Name)
	}
	return &d, nil
}

// GetExercise retrieves a definition by ID.
func (db *DB) GetExercise(ctx context.Context, id uuid.UUID) (*models.ExerciseDefinition, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+exerciseColumns+` FROM exercise_definitions WHERE id = $1`, id)
	d, err := scanExercise(row)
	if err != nil {
		return nil, notFound(err, "exercise "+id.String())
	}
	return d, nil
}

// GetExerciseByName retrieves a definition by case-insensitive name.
func (db *DB) GetExerciseByName(ctx context.Context, name string) (*models.ExerciseDefinition, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+exerciseColumns+` FROM exercise_definitions WHERE lower(name) = lower($1)`, name)
	d, err := scanExercise(row)
	if err != nil {
		return nil, notFound(err, "exercise "+name)
	}
	return d, nil
}

// ListExercises returns all definitions ordered by category and name.
func (db *DB) ListExercises(ctx context.Context) ([]models.ExerciseDefinition, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+exerciseColumns+` FROM exercise_definitions ORDER BY category, name`)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	var result []models.ExerciseDefinition
	for rows.Next() {
		d, err := scanExercise(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		result = append(result, *d)
	}
	return result, rows.Err()
}

func scanExercise(row interface{ Scan(dest ...any) error }) (*models.ExerciseDefinition, error) {
	var d models.ExerciseDefinition
	if err := row.Scan(&d.ID, &d.Name, &d.Category, &d.EquipmentType, &d.IsBodyweight,
		&d.BarWeight, &d.AvailablePlates, &d.MachineIncrement, &d.DumbbellSteps); err != nil {
		return nil, err
	}
	return &d, nil
}
