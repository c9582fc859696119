package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/claude/overload/internal/models"
	"github.com/claude/overload/internal/storage"
	"github.com/google/uuid"
)

// HTTPClient implements DataSource by calling the Overload REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
// The user ID arguments are ignored: the server identifies the caller.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// bucketToAgg maps MCP bucket values to REST API agg parameter values.
func bucketToAgg(bucket string) string {
	switch bucket {
	case "1 week":
		return "weekly"
	case "1 month":
		return "monthly"
	default:
		return "monthly"
	}
}

// getJSON fetches path and decodes the body into v. A 404 maps to
// storage.ErrNotFound so tools treat local and remote misses alike.
func (c *HTTPClient) getJSON(ctx context.Context, path string, params url.Values, what string, v any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("httpclient: %s: %w", path, storage.ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", what, err)
	}
	return nil
}

func timeParams(start, end time.Time) url.Values {
	v := url.Values{}
	v.Set("start", start.Format(time.RFC3339))
	v.Set("end", end.Format(time.RFC3339))
	return v
}

func (c *HTTPClient) ListExercises(ctx context.Context) ([]models.ExerciseDefinition, error) {
	var defs []models.ExerciseDefinition
	if err := c.getJSON(ctx, "/api/v1/exercises", nil, "exercises", &defs); err != nil {
		return nil, err
	}
	return defs, nil
}

func (c *HTTPClient) GetExercise(ctx context.Context, id uuid.UUID) (*models.ExerciseDefinition, error) {
	var def models.ExerciseDefinition
	if err := c.getJSON(ctx, "/api/v1/exercises/"+id.String(), nil, "exercise", &def); err != nil {
		return nil, err
	}
	return &def, nil
}

// GetExerciseByName matches case-insensitively against the full library,
// the same rule the server applies.
func (c *HTTPClient) GetExerciseByName(ctx context.Context, name string) (*models.ExerciseDefinition, error) {
	defs, err := c.ListExercises(ctx)
	if err != nil {
		return nil, err
	}
	for i := range defs {
		if strings.EqualFold(defs[i].Name, name) {
			return &defs[i], nil
		}
	}
	return nil, fmt.Errorf("exercise %s: %w", name, storage.ErrNotFound)
}

func (c *HTTPClient) GetProgressionState(ctx context.Context, _ int, exerciseID uuid.UUID) (*models.ExerciseProgressionState, error) {
	var state models.ExerciseProgressionState
	if err := c.getJSON(ctx, "/api/v1/exercises/"+exerciseID.String()+"/state", nil, "progression state", &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (c *HTTPClient) QueryProgressionEvents(ctx context.Context, _ int, exerciseID uuid.UUID, limit int) ([]models.ProgressionEvent, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var events []models.ProgressionEvent
	if err := c.getJSON(ctx, "/api/v1/exercises/"+exerciseID.String()+"/events", params, "progression events", &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (c *HTTPClient) QueryWorkoutSets(ctx context.Context, start, end time.Time, _ int, exerciseFilter string) ([]models.WorkoutSetRow, error) {
	params := timeParams(start, end)
	if exerciseFilter != "" {
		params.Set("exercise", exerciseFilter)
	}

	var sets []models.WorkoutSetRow
	if err := c.getJSON(ctx, "/api/v1/sets", params, "workout sets", &sets); err != nil {
		return nil, err
	}
	return sets, nil
}

func (c *HTTPClient) GetTrainingSummary(ctx context.Context, start, end time.Time, bucket string, _ int) ([]storage.TrainingSummaryPeriod, error) {
	params := timeParams(start, end)
	params.Set("agg", bucketToAgg(bucket))

	var periods []storage.TrainingSummaryPeriod
	if err := c.getJSON(ctx, "/api/v1/summary", params, "training summary", &periods); err != nil {
		return nil, err
	}
	return periods, nil
}
