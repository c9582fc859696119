package upload

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(url string) *Client {
	c := NewClient(url+"/", "secret")
	c.backoff = time.Millisecond
	return c
}

// TestSendExport verifies the request shape and report decoding.
func TestSendExport(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/sessions/alpha" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("X-API-Key"); got != "secret" {
			t.Errorf("api key = %q, want secret", got)
		}
		if body, _ := io.ReadAll(r.Body); string(body) != "csv-data" {
			t.Errorf("body = %q", body)
		}
		w.Write([]byte(`[{"session_id":"a","sets_inserted":6,"outcomes":[{"name":"Squat","applied":true,"result":{"next_weight":105,"next_reps":8,"type":"weightIncrease"}}]}]`))
	}))
	defer ts.Close()

	reports, err := newTestClient(ts.URL).SendExport(context.Background(), []byte("csv-data"))
	if err != nil {
		t.Fatal(err)
	}
	if len(reports) != 1 || reports[0].SetsInserted != 6 {
		t.Fatalf("reports = %+v", reports)
	}
	if res := reports[0].Outcomes[0].Result; res == nil || res.NextWeight != 105 {
		t.Errorf("result = %+v", res)
	}
}

// TestSendExportRetries verifies transient server errors are retried.
func TestSendExportRetries(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer ts.Close()

	if _, err := newTestClient(ts.URL).SendExport(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

// TestSendExportGivesUp verifies the attempt limit.
func TestSendExportGivesUp(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	if _, err := newTestClient(ts.URL).SendExport(context.Background(), nil); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != maxAttempts {
		t.Errorf("calls = %d, want %d", calls.Load(), maxAttempts)
	}
}

// TestSendExportRejected verifies client errors are not retried.
func TestSendExportRejected(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"malformed alpha export"}`))
	}))
	defer ts.Close()

	_, err := newTestClient(ts.URL).SendExport(context.Background(), nil)
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("err = %v, want ErrRejected", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}
