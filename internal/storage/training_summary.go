package storage

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"time"
)

// StrengthVolumeSummary holds aggregated working-set volume for a period.
type StrengthVolumeSummary struct {
	WorkingSets       int     `json:"working_sets"`
	TotalReps         int     `json:"total_reps"`
	Tonnage           float64 `json:"tonnage"`
	Sessions          int     `json:"sessions"`
	AvgSetsPerSession float64 `json:"avg_sets_per_session"`
}

// ProgressionCounts tallies applied progression events for a period.
type ProgressionCounts struct {
	RepIncreases    int `json:"rep_increases"`
	WeightIncreases int `json:"weight_increases"`
}

// TrainingSummaryPeriod holds volume and progression data for one time period.
type TrainingSummaryPeriod struct {
	Period      string                 `json:"period"`
	Strength    *StrengthVolumeSummary `json:"strength,omitempty"`
	Progression *ProgressionCounts     `json:"progression,omitempty"`
}

// GetTrainingSummary returns working-set volume and progression counts per period.
func (db *DB) GetTrainingSummary(ctx context.Context, start, end time.Time, bucket string, userID int) ([]TrainingSummaryPeriod, error) {
	periods := make(map[string]*TrainingSummaryPeriod)
	period := func(t time.Time) *TrainingSummaryPeriod {
		key := t.Format("2006-01-02")
		p, ok := periods[key]
		if !ok {
			p = &TrainingSummaryPeriod{Period: key}
			periods[key] = p
		}
		return p
	}
	interval := truncInterval(bucket)

	strengthRows, err := db.Pool.Query(ctx,
		`SELECT date_trunc($1, session_date)::date AS period,
		        COUNT(*)::int AS working_sets,
		        COALESCE(SUM(actual_reps), 0)::int AS total_reps,
		        COALESCE(SUM(actual_weight * actual_reps), 0) AS tonnage,
		        COUNT(DISTINCT session_id)::int AS sessions
		 FROM workout_sets
		 WHERE session_date >= $2 AND session_date < $3 AND user_id = $4
		   AND status = 'completed' AND NOT is_warmup
		 GROUP BY period`,
		interval, start, end, userID)
	if err != nil {
		return nil, fmt.Errorf("querying strength summary: %w", err)
	}
	defer strengthRows.Close()

	for strengthRows.Next() {
		var periodTime time.Time
		var sv StrengthVolumeSummary
		if err := strengthRows.Scan(&periodTime, &sv.WorkingSets, &sv.TotalReps, &sv.Tonnage, &sv.Sessions); err != nil {
			return nil, fmt.Errorf("scanning strength summary: %w", err)
		}
		if sv.Sessions > 0 {
			sv.AvgSetsPerSession = float64(sv.WorkingSets) / float64(sv.Sessions)
		}
		period(periodTime).Strength = &sv
	}
	if err := strengthRows.Err(); err != nil {
		return nil, err
	}

	// Applied progressions per period
	eventRows, err := db.Pool.Query(ctx,
		`SELECT date_trunc($1, date)::date AS period,
		        COUNT(*) FILTER (WHERE type = 'repIncrease')::int,
		        COUNT(*) FILTER (WHERE type = 'weightIncrease')::int
		 FROM progression_events
		 WHERE date >= $2 AND date < $3 AND user_id = $4
		 GROUP BY period`,
		interval, start, end, userID)
	if err != nil {
		return nil, fmt.Errorf("querying progression summary: %w", err)
	}
	defer eventRows.Close()

	for eventRows.Next() {
		var periodTime time.Time
		var pc ProgressionCounts
		if err := eventRows.Scan(&periodTime, &pc.RepIncreases, &pc.WeightIncreases); err != nil {
			return nil, fmt.Errorf("scanning progression summary: %w", err)
		}
		period(periodTime).Progression = &pc
	}
	if err := eventRows.Err(); err != nil {
		return nil, err
	}

	// Newest period first; ISO dates sort lexically.
	keys := slices.Sorted(maps.Keys(periods))
	slices.Reverse(keys)
	result := make([]TrainingSummaryPeriod, 0, len(keys))
	for _, k := range keys {
		result = append(result, *periods[k])
	}
	return result, nil
}

// truncInterval maps a bucket ("1 week", "1 month") to a date_trunc field.
// Anything unrecognised is monthly.
func truncInterval(bucket string) string {
	if bucket == "1 week" {
		return "week"
	}
	return "month"
}
