package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/claude/overload/internal/models"
	"github.com/claude/overload/internal/storage"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// memSource is an in-memory DataSource holding one user's data.
type memSource struct {
	defs   []models.ExerciseDefinition
	states map[uuid.UUID]models.ExerciseProgressionState
	events map[uuid.UUID][]models.ProgressionEvent

	lastUser   int
	lastLimit  int
	lastBucket string
}

func (m *memSource) ListExercises(context.Context) ([]models.ExerciseDefinition, error) {
	return m.defs, nil
}

func (m *memSource) GetExercise(_ context.Context, id uuid.UUID) (*models.ExerciseDefinition, error) {
	for i := range m.defs {
		if m.defs[i].ID == id {
			return &m.defs[i], nil
		}
	}
	return nil, storage.ErrNotFound
}

func (m *memSource) GetExerciseByName(_ context.Context, name string) (*models.ExerciseDefinition, error) {
	for i := range m.defs {
		if strings.EqualFold(m.defs[i].Name, name) {
			return &m.defs[i], nil
		}
	}
	return nil, storage.ErrNotFound
}

func (m *memSource) GetProgressionState(_ context.Context, userID int, id uuid.UUID) (*models.ExerciseProgressionState, error) {
	m.lastUser = userID
	s, ok := m.states[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &s, nil
}

func (m *memSource) QueryProgressionEvents(_ context.Context, _ int, id uuid.UUID, limit int) ([]models.ProgressionEvent, error) {
	m.lastLimit = limit
	return m.events[id], nil
}

func (m *memSource) QueryWorkoutSets(context.Context, time.Time, time.Time, int, string) ([]models.WorkoutSetRow, error) {
	return nil, nil
}

func (m *memSource) GetTrainingSummary(_ context.Context, _, _ time.Time, bucket string, _ int) ([]storage.TrainingSummaryPeriod, error) {
	m.lastBucket = bucket
	return nil, nil
}

func newMemSource() (*memSource, uuid.UUID) {
	bench := uuid.New()
	inc := 5.0
	m := &memSource{
		defs: []models.ExerciseDefinition{
			{ID: bench, Name: "Bench Press", EquipmentType: models.EquipmentBarbell},
			{ID: uuid.New(), Name: "Leg Press", EquipmentType: models.EquipmentMachine, MachineIncrement: &inc},
		},
		states: map[uuid.UUID]models.ExerciseProgressionState{},
		events: map[uuid.UUID][]models.ProgressionEvent{},
	}
	m.states[bench] = models.DefaultProgressionState(bench, 100, models.UnitMetric)
	return m, bench
}

func newHandlers(ds DataSource) *handlers {
	return &handlers{ds: ds, log: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func callTool(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

// resultJSON decodes a successful tool result's text payload into v.
func resultJSON(t *testing.T, res *mcp.CallToolResult, v any) {
	t.Helper()
	if res.IsError {
		t.Fatalf("tool returned error: %+v", res.Content)
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content type = %T, want TextContent", res.Content[0])
	}
	if err := json.Unmarshal([]byte(text.Text), v); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

// TestUserIDFromContextDefault verifies the default user ID (1) when no value
// is set in the context.
func TestUserIDFromContextDefault(t *testing.T) {
	ctx := context.Background()
	if id := UserIDFromContext(ctx); id != 1 {
		t.Errorf("UserIDFromContext(empty) = %d, want 1", id)
	}
}

// TestUserIDFromContextSet verifies the user ID is extracted from context
// after being set by WithUserID.
func TestUserIDFromContextSet(t *testing.T) {
	ctx := WithUserID(context.Background(), 42)
	if id := UserIDFromContext(ctx); id != 42 {
		t.Errorf("UserIDFromContext = %d, want 42", id)
	}
}

// TestDefaultTimeRange verifies time range defaults (last 7 days) and parsing.
func TestDefaultTimeRange(t *testing.T) {
	// Both empty → defaults to last 7 days
	start, end, err := defaultTimeRange("", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	diff := end.Sub(start)
	if diff.Hours() < 167 || diff.Hours() > 169 { // ~168 hours = 7 days
		t.Errorf("default range = %.0f hours, want ~168", diff.Hours())
	}

	// Explicit dates
	start, end, err = defaultTimeRange("2024-01-01", "2024-01-31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start.Year() != 2024 || start.Month() != 1 || start.Day() != 1 {
		t.Errorf("start = %v, want 2024-01-01", start)
	}
	if end.Year() != 2024 || end.Month() != 1 || end.Day() != 31 {
		t.Errorf("end = %v, want 2024-01-31", end)
	}

	// Invalid
	if _, _, err = defaultTimeRange("not-a-date", ""); err == nil {
		t.Error("expected error for invalid date")
	}
}

// TestPreviewPrescriptionTool verifies the preview tool runs the decider on
// stored state without changing it.
func TestPreviewPrescriptionTool(t *testing.T) {
	ds, bench := newMemSource()
	h := newHandlers(ds)

	tests := []struct {
		name       string
		reps       []any
		wantType   models.ProgressionType
		wantWeight float64
		wantReps   int
	}{
		{"all at max", []any{12, 12, 12}, models.ProgressionWeightIncrease, 105, 8},
		{"all at target", []any{8, 9, 10}, models.ProgressionRepIncrease, 100, 9},
		{"one short", []any{8, 7, 8}, models.ProgressionNone, 100, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := h.previewPrescription(WithUserID(context.Background(), 7), callTool(map[string]any{
				"exercise": "bench press",
				"reps":     tt.reps,
			}))
			if err != nil {
				t.Fatal(err)
			}
			var out struct {
				Next models.NextPrescriptionResult `json:"next"`
			}
			resultJSON(t, res, &out)
			if out.Next.Type != tt.wantType || out.Next.NextWeight != tt.wantWeight || out.Next.NextReps != tt.wantReps {
				t.Errorf("next = %+v, want %s %v x %d", out.Next, tt.wantType, tt.wantWeight, tt.wantReps)
			}
		})
	}

	if ds.lastUser != 7 {
		t.Errorf("state read for user %d, want 7", ds.lastUser)
	}
	if got := ds.states[bench]; got.CurrentWeight != 100 || got.CurrentRepTarget != 8 {
		t.Errorf("preview changed state: %+v", got)
	}
}

// TestToolErrors verifies missing arguments and unknown exercises come back
// as tool errors, not protocol errors.
func TestToolErrors(t *testing.T) {
	ds, _ := newMemSource()
	h := newHandlers(ds)
	ctx := context.Background()

	tests := []struct {
		name string
		call func() (*mcp.CallToolResult, error)
	}{
		{"preview without reps", func() (*mcp.CallToolResult, error) {
			return h.previewPrescription(ctx, callTool(map[string]any{"exercise": "Bench Press"}))
		}},
		{"preview unknown exercise", func() (*mcp.CallToolResult, error) {
			return h.previewPrescription(ctx, callTool(map[string]any{"exercise": "Zercher Squat", "reps": []any{5}}))
		}},
		{"round without state", func() (*mcp.CallToolResult, error) {
			return h.roundWeight(ctx, callTool(map[string]any{"exercise": "Leg Press", "target_weight": 100}))
		}},
		{"round negative", func() (*mcp.CallToolResult, error) {
			return h.roundWeight(ctx, callTool(map[string]any{"exercise": "Bench Press", "target_weight": -5}))
		}},
		{"state without exercise", func() (*mcp.CallToolResult, error) {
			return h.getProgressionState(ctx, callTool(map[string]any{}))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tt.call()
			if err != nil {
				t.Fatalf("protocol error: %v", err)
			}
			if !res.IsError {
				t.Error("expected tool error")
			}
		})
	}
}

// TestRoundWeightTool verifies rounding uses the exercise's equipment and
// accepts an ID reference.
func TestRoundWeightTool(t *testing.T) {
	ds, bench := newMemSource()
	h := newHandlers(ds)

	res, err := h.roundWeight(context.Background(), callTool(map[string]any{
		"exercise":      bench.String(),
		"target_weight": 108.7,
	}))
	if err != nil {
		t.Fatal(err)
	}
	var out struct {
		Weight float64 `json:"weight"`
	}
	resultJSON(t, res, &out)
	if out.Weight != 107.5 {
		t.Errorf("weight = %v, want 107.5", out.Weight)
	}
}

// TestProgressionHistoryTool verifies the default limit and an empty history
// serializes as a list.
func TestProgressionHistoryTool(t *testing.T) {
	ds, _ := newMemSource()
	h := newHandlers(ds)

	res, err := h.getProgressionHistory(context.Background(), callTool(map[string]any{"exercise": "Bench Press"}))
	if err != nil {
		t.Fatal(err)
	}
	var out struct {
		Events []models.ProgressionEvent `json:"events"`
	}
	resultJSON(t, res, &out)
	if out.Events == nil {
		t.Error("events = null, want []")
	}
	if ds.lastLimit != 20 {
		t.Errorf("limit = %d, want 20", ds.lastLimit)
	}
}

// TestListExercisesTool verifies every library entry is listed.
func TestListExercisesTool(t *testing.T) {
	ds, _ := newMemSource()
	res, err := newHandlers(ds).listExercises(context.Background(), callTool(nil))
	if err != nil {
		t.Fatal(err)
	}
	var out []map[string]any
	resultJSON(t, res, &out)
	if len(out) != 2 {
		t.Errorf("got %d exercises, want 2", len(out))
	}
}

// TestTrainingSummaryDefaultBucket verifies monthly aggregation is the default.
func TestTrainingSummaryDefaultBucket(t *testing.T) {
	ds, _ := newMemSource()
	if _, err := newHandlers(ds).getTrainingSummary(context.Background(), callTool(nil)); err != nil {
		t.Fatal(err)
	}
	if ds.lastBucket != "1 month" {
		t.Errorf("bucket = %q, want 1 month", ds.lastBucket)
	}
}
