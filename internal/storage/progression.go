package storage

import (
	"context"
	"fmt"

	"github.com/claude/overload/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const stateColumns = `id, exercise_id, current_weight, current_rep_target, sets,
	starting_reps, max_reps, weight_increment_percent, min_weight_increment,
	preferred_plate_increment, auto_increment,
	last_used_weight, last_used_reps, personal_record_e1rm, consecutive_stalls`

// UpdateFunc receives the locked state and returns the state to store plus an
// optional event to append. Returning an error rolls the transaction back.
type UpdateFunc func(models.ExerciseProgressionState) (models.ExerciseProgressionState, *models.ProgressionEvent, error)

// GetProgressionState retrieves a user's state for one exercise.
func (db *DB) GetProgressionState(ctx context.Context, userID int, exerciseID uuid.UUID) (*models.ExerciseProgressionState, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+stateColumns+` FROM progression_states WHERE user_id = $1 AND exercise_id = $2`,
		userID, exerciseID)
	s, err := scanState(row)
	if err != nil {
		return nil, notFound(err, "progression state "+exerciseID.String())
	}
	return s, nil
}

// PutProgressionState creates or replaces a user's state for one exercise.
func (db *DB) PutProgressionState(ctx context.Context, userID int, s models.ExerciseProgressionState) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return upsertState(ctx, db.Pool, userID, s)
}

// UpdateProgression locks the state row for (userID, exerciseID), passes it to
// fn and writes back the result in the same transaction. Concurrent session
// completions for the same exercise are serialized by the row lock.
//
// The decision is recorded against sessionID in the same transaction, so a
// session is decided at most once per exercise even when a completion is
// retried after a partial failure. Returns ErrNotFound when no state exists
// and ErrAlreadyDecided when the session was already applied.
func (db *DB) UpdateProgression(ctx context.Context, userID int, exerciseID, sessionID uuid.UUID, fn UpdateFunc) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning progression tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	row := tx.QueryRow(ctx,
		`SELECT `+stateColumns+` FROM progression_states
		 WHERE user_id = $1 AND exercise_id = $2 FOR UPDATE`,
		userID, exerciseID)
	current, err := scanState(row)
	if err != nil {
		return notFound(err, "progression state "+exerciseID.String())
	}

	tag, err := tx.Exec(ctx,
		`INSERT INTO session_decisions (user_id, session_id, exercise_id)
		 VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`,
		userID, sessionID, exerciseID)
	if err != nil {
		return fmt.Errorf("recording decision: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyDecided
	}

	next, event, err := fn(*current)
	if err != nil {
		return err
	}

	if err := upsertState(ctx, tx, userID, next); err != nil {
		return err
	}
	if event != nil {
		if err := insertEvent(ctx, tx, userID, *event); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing progression tx: %w", err)
	}
	return nil
}

// QueryProgressionEvents returns the most recent events for one exercise.
func (db *DB) QueryProgressionEvents(ctx context.Context, userID int, exerciseID uuid.UUID, limit int) ([]models.ProgressionEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT id, date, exercise_id, type, old_value, new_value, note
		 FROM progression_events
		 WHERE user_id = $1 AND exercise_id = $2
		 ORDER BY date DESC
		 LIMIT $3`,
		userID, exerciseID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying progression events: %w", err)
	}
	defer rows.Close()

	var result []models.ProgressionEvent
	for rows.Next() {
		var e models.ProgressionEvent
		if err := rows.Scan(&e.ID, &e.Date, &e.ExerciseDefinitionID, &e.Type,
			&e.OldValue, &e.NewValue, &e.Note); err != nil {
			return nil, fmt.Errorf("scanning progression event: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// execer is satisfied by both *pgxpool.Pool and pgx.Tx.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func upsertState(ctx context.Context, q execer, userID int, s models.ExerciseProgressionState) error {
	_, err := q.Exec(ctx,
		`INSERT INTO progression_states (user_id, `+stateColumns+`, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16, NOW())
		 ON CONFLICT (user_id, exercise_id) DO UPDATE SET
			current_weight = EXCLUDED.current_weight,
			current_rep_target = EXCLUDED.current_rep_target,
			sets = EXCLUDED.sets,
			starting_reps = EXCLUDED.starting_reps,
			max_reps = EXCLUDED.max_reps,
			weight_increment_percent = EXCLUDED.weight_increment_percent,
			min_weight_increment = EXCLUDED.min_weight_increment,
			preferred_plate_increment = EXCLUDED.preferred_plate_increment,
			auto_increment = EXCLUDED.auto_increment,
			last_used_weight = EXCLUDED.last_used_weight,
			last_used_reps = EXCLUDED.last_used_reps,
			personal_record_e1rm = EXCLUDED.personal_record_e1rm,
			consecutive_stalls = EXCLUDED.consecutive_stalls,
			updated_at = NOW()`,
		userID, s.ID, s.ExerciseDefinitionID, s.CurrentWeight, s.CurrentRepTarget, s.Sets,
		s.StartingReps, s.MaxReps, s.WeightIncrementPercent, s.MinWeightIncrement,
		s.PreferredPlateIncrement, s.AutoIncrement,
		s.LastUsedWeight, s.LastUsedReps, s.PersonalRecordE1RM, s.ConsecutiveStalls)
	if err != nil {
		return fmt.Errorf("saving progression state: %w", err)
	}
	return nil
}

func insertEvent(ctx context.Context, q execer, userID int, e models.ProgressionEvent) error {
	_, err := q.Exec(ctx,
		`INSERT INTO progression_events (id, user_id, exercise_id, date, type, old_value, new_value, note)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		e.ID, userID, e.ExerciseDefinitionID, e.Date, e.Type, e.OldValue, e.NewValue, e.Note)
	if err != nil {
		return fmt.Errorf("inserting progression event: %w", err)
	}
	return nil
}

func scanState(row pgx.Row) (*models.ExerciseProgressionState, error) {
	var s models.ExerciseProgressionState
	if err := row.Scan(&s.ID, &s.ExerciseDefinitionID, &s.CurrentWeight, &s.CurrentRepTarget, &s.Sets,
		&s.StartingReps, &s.MaxReps, &s.WeightIncrementPercent, &s.MinWeightIncrement,
		&s.PreferredPlateIncrement, &s.AutoIncrement,
		&s.LastUsedWeight, &s.LastUsedReps, &s.PersonalRecordE1RM, &s.ConsecutiveStalls); err != nil {
		return nil, err
	}
	return &s, nil
}
