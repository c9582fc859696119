package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/overload/internal/models"
)

const setColumnCount = 13

// InsertWorkoutSets batch-inserts logged sets. Returns count inserted.
// Re-sending a session is a no-op thanks to the (session, exercise, set) key.
func (db *DB) InsertWorkoutSets(ctx context.Context, rows []models.WorkoutSetRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	query := `INSERT INTO workout_sets (user_id, session_id, session_name, session_date,
		exercise_id, exercise_name, set_number, status, is_warmup,
		target_reps, target_weight, actual_reps, actual_weight) VALUES ` +
		placeholders(len(rows), setColumnCount) + " ON CONFLICT DO NOTHING"

	args := make([]any, 0, len(rows)*setColumnCount)
	for _, r := range rows {
		args = append(args, r.UserID, r.SessionID, r.SessionName, r.SessionDate,
			r.ExerciseID, r.ExerciseName, r.SetNumber, r.Status, r.IsWarmup,
			r.TargetReps, r.TargetWeight, r.ActualReps, r.ActualWeight)
	}

	tag, err := db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("inserting workout sets: %w", err)
	}
	return tag.RowsAffected(), nil
}

// QueryWorkoutSets retrieves logged sets in a date range, optionally filtered
// by a partial, case-insensitive exercise name.
func (db *DB) QueryWorkoutSets(ctx context.Context, start, end time.Time, userID int, exerciseFilter string) ([]models.WorkoutSetRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT user_id, session_id, session_name, session_date,
		 exercise_id, exercise_name, set_number, status, is_warmup,
		 target_reps, target_weight, actual_reps, actual_weight
		 FROM workout_sets
		 WHERE session_date >= $1 AND session_date < $2 AND user_id = $3
		   AND ($4 = '' OR exercise_name ILIKE '%' || $4 || '%')
		 ORDER BY session_date DESC, exercise_name ASC, set_number ASC`,
		start, end, userID, exerciseFilter)
	if err != nil {
		return nil, fmt.Errorf("querying workout sets: %w", err)
	}
	defer rows.Close()

	var result []models.WorkoutSetRow
	for rows.Next() {
		var r models.WorkoutSetRow
		if err := rows.Scan(&r.UserID, &r.SessionID, &r.SessionName, &r.SessionDate,
			&r.ExerciseID, &r.ExerciseName, &r.SetNumber, &r.Status, &r.IsWarmup,
			&r.TargetReps, &r.TargetWeight, &r.ActualReps, &r.ActualWeight); err != nil {
			return nil, fmt.Errorf("scanning workout set: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
