package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/claude/overload/internal/models"
	"github.com/claude/overload/internal/progression"
	"github.com/claude/overload/internal/storage"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// defaultTimeRange returns start/end defaulting to the last 7 days.
func defaultTimeRange(startStr, endStr string) (time.Time, time.Time, error) {
	return timeRange(startStr, endStr, func(end time.Time) time.Time { return end.AddDate(0, 0, -7) })
}

// timeRange parses optional bounds; a missing end is now and a missing start
// is derived from the end.
func timeRange(startStr, endStr string, defaultStart func(end time.Time) time.Time) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = defaultStart(end)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// --- Tool definitions ---

var toolPreviewPrescription = mcp.NewTool("preview_prescription",
	mcp.WithDescription("Preview the next session's weight and rep target for a stored exercise from the reps achieved on each working set. Nothing is saved."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name (case-insensitive) or ID")),
	mcp.WithArray("reps", mcp.Required(), mcp.Description("Reps achieved on each working set, in order"), mcp.Items(map[string]any{"type": "integer"})),
	mcp.WithNumber("weight", mcp.Description("Weight used on the working sets. Defaults to the current prescribed weight.")),
)

var toolRoundWeight = mcp.NewTool("round_weight",
	mcp.WithDescription("Round a target weight to the nearest load available on an exercise's equipment. Never goes below the current prescribed weight."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name (case-insensitive) or ID")),
	mcp.WithNumber("target_weight", mcp.Required(), mcp.Description("Desired weight in the lifter's unit")),
)

var toolGetProgressionState = mcp.NewTool("get_progression_state",
	mcp.WithDescription("Current prescription for an exercise: weight, rep target, rep range, increments, stall count and last performance."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name (case-insensitive) or ID")),
)

var toolGetProgressionHistory = mcp.NewTool("get_progression_history",
	mcp.WithDescription("Applied progression events for an exercise, newest first. Each event records a rep or weight increase with old and new values."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name (case-insensitive) or ID")),
	mcp.WithNumber("limit", mcp.Description("Maximum events to return. Defaults to 20.")),
)

var toolListExercises = mcp.NewTool("list_exercises",
	mcp.WithDescription("List every exercise in the library with its equipment type."),
)

var toolGetWorkoutSets = mcp.NewTool("get_workout_sets",
	mcp.WithDescription("Query logged strength sets. Returns target and actual weight and reps for each set, warmups flagged."),
	mcp.WithString("start", mcp.Description("Start date. Defaults to 7 days ago.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to now.")),
	mcp.WithString("exercise", mcp.Description("Filter by exercise name (partial match, e.g. 'bench press')")),
)

var toolGetTrainingSummary = mcp.NewTool("get_training_summary",
	mcp.WithDescription("Weekly or monthly working-set volume (sets, reps, tonnage, sessions) and counts of rep and weight increases per period."),
	mcp.WithString("start", mcp.Description("Start date. Defaults to 6 months ago.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to now.")),
	mcp.WithString("bucket", mcp.Description("Aggregation period. Defaults to '1 month'."), mcp.Enum("1 week", "1 month")),
)

// --- Tool handlers ---

// resolveExercise finds an exercise by ID or name and loads the caller's
// state for it. A non-nil result is a tool error to return as is.
func (h *handlers) resolveExercise(ctx context.Context, ref string) (*models.ExerciseDefinition, *models.ExerciseProgressionState, *mcp.CallToolResult) {
	var def *models.ExerciseDefinition
	var err error
	if id, perr := uuid.Parse(ref); perr == nil {
		def, err = h.ds.GetExercise(ctx, id)
	} else {
		def, err = h.ds.GetExerciseByName(ctx, ref)
	}
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, mcp.NewToolResultError("unknown exercise: " + ref)
	}
	if err != nil {
		h.log.Error("mcp resolve exercise", "exercise", ref, "error", err)
		return nil, nil, mcp.NewToolResultError("query failed: " + err.Error())
	}

	state, err := h.ds.GetProgressionState(ctx, UserIDFromContext(ctx), def.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, mcp.NewToolResultError("no progression state for " + def.Name)
	}
	if err != nil {
		h.log.Error("mcp progression state", "exercise", def.Name, "error", err)
		return nil, nil, mcp.NewToolResultError("query failed: " + err.Error())
	}
	return def, state, nil
}

func (h *handlers) previewPrescription(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}
	reps, err := req.RequireIntSlice("reps")
	if err != nil || len(reps) == 0 {
		return mcp.NewToolResultError("reps must list at least one set"), nil
	}

	def, state, errResult := h.resolveExercise(ctx, ref)
	if errResult != nil {
		return errResult, nil
	}

	weight := req.GetFloat("weight", state.CurrentWeight)
	sets := make([]models.SetTarget, len(reps))
	for i, r := range reps {
		r := r
		sets[i] = models.SetTarget{
			TargetReps:   state.CurrentRepTarget,
			TargetWeight: state.CurrentWeight,
			Status:       models.SetCompleted,
			ActualReps:   &r,
			ActualWeight: &weight,
		}
	}

	res := progression.NextPrescription(*state, sets, models.UnitMetric, def.Equipment())
	result, err := mcp.NewToolResultJSON(map[string]any{
		"exercise": def.Name,
		"current": map[string]any{
			"weight":     state.CurrentWeight,
			"rep_target": state.CurrentRepTarget,
			"rep_range":  []int{state.StartingReps, state.MaxReps},
		},
		"next": res,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) roundWeight(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}
	target, err := req.RequireFloat("target_weight")
	if err != nil || target < 0 {
		return mcp.NewToolResultError("target_weight must be a non-negative number"), nil
	}

	def, state, errResult := h.resolveExercise(ctx, ref)
	if errResult != nil {
		return errResult, nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{
		"exercise":  def.Name,
		"equipment": def.EquipmentType,
		"target":    target,
		"weight":    progression.RoundToEquipment(target, def.Equipment(), *state),
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getProgressionState(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}

	def, state, errResult := h.resolveExercise(ctx, ref)
	if errResult != nil {
		return errResult, nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{
		"exercise": def,
		"state":    state,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getProgressionHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}

	def, _, errResult := h.resolveExercise(ctx, ref)
	if errResult != nil {
		return errResult, nil
	}

	limit := req.GetInt("limit", 20)
	events, err := h.ds.QueryProgressionEvents(ctx, UserIDFromContext(ctx), def.ID, limit)
	if err != nil {
		h.log.Error("mcp get_progression_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if events == nil {
		events = []models.ProgressionEvent{}
	}

	result, err := mcp.NewToolResultJSON(map[string]any{
		"exercise": def.Name,
		"events":   events,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listExercises(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	defs, err := h.ds.ListExercises(ctx)
	if err != nil {
		h.log.Error("mcp list_exercises", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	type entry struct {
		ID        uuid.UUID            `json:"id"`
		Name      string               `json:"name"`
		Category  string               `json:"category,omitempty"`
		Equipment models.EquipmentType `json:"equipment"`
	}
	out := make([]entry, 0, len(defs))
	for _, d := range defs {
		out = append(out, entry{ID: d.ID, Name: d.Name, Category: d.Category, Equipment: d.EquipmentType})
	}

	result, err := mcp.NewToolResultJSON(out)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkoutSets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	sets, err := h.ds.QueryWorkoutSets(ctx, start, end, UserIDFromContext(ctx), req.GetString("exercise", ""))
	if err != nil {
		h.log.Error("mcp get_workout_sets", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(sets)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getTrainingSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := timeRange(req.GetString("start", ""), req.GetString("end", ""),
		func(end time.Time) time.Time { return end.AddDate(0, -6, 0) })
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	bucket := req.GetString("bucket", "1 month")
	summary, err := h.ds.GetTrainingSummary(ctx, start, end, bucket, UserIDFromContext(ctx))
	if err != nil {
		h.log.Error("mcp get_training_summary", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(summary)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
