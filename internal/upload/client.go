package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/claude/overload/internal/models"
)

const maxAttempts = 3

// ErrRejected is returned when the server refuses an export outright
// (malformed CSV or bad API key). These are not retried.
var ErrRejected = errors.New("rejected by server")

// SessionReport mirrors the server's per-session report without importing
// the server-side packages.
type SessionReport struct {
	SessionID    string    `json:"session_id"`
	SetsInserted int64     `json:"sets_inserted"`
	Duplicate    bool      `json:"duplicate"`
	Outcomes     []Outcome `json:"outcomes"`
}

// Outcome is what happened to one exercise of an uploaded session.
type Outcome struct {
	Name    string                         `json:"name"`
	Result  *models.NextPrescriptionResult `json:"result"`
	Applied bool                           `json:"applied"`
	Skipped string                         `json:"skipped"`
}

// Client sends Alpha Progression exports to the Overload server over HTTP.
type Client struct {
	serverURL  string
	apiKey     string
	httpClient *http.Client
	backoff    time.Duration
}

// NewClient creates a new HTTP client for the Overload server.
func NewClient(serverURL, apiKey string) *Client {
	return &Client{
		serverURL: strings.TrimRight(serverURL, "/"),
		apiKey:    apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		backoff: time.Second,
	}
}

// SendExport POSTs one CSV export to the alpha sessions endpoint.
// Retries up to 3 times with exponential backoff on network errors and 5xx.
func (c *Client) SendExport(ctx context.Context, data []byte) ([]SessionReport, error) {
	var lastErr error
	for attempt := range maxAttempts {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.backoff << uint(attempt-1)):
			}
		}

		reports, err := c.post(ctx, data)
		if err == nil || errors.Is(err, ErrRejected) {
			return reports, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("after %d attempts: %w", maxAttempts, lastErr)
}

func (c *Client) post(ctx context.Context, data []byte) ([]SessionReport, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.serverURL+"/api/v1/sessions/alpha", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "text/csv")
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, fmt.Errorf("%w (status %d): %s", ErrRejected, resp.StatusCode, body)
	default:
		return nil, fmt.Errorf("upload failed (status %d): %s", resp.StatusCode, body)
	}

	var reports []SessionReport
	if err := json.Unmarshal(body, &reports); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return reports, nil
}
