package importer

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/claude/overload/internal/models"
	"github.com/claude/overload/internal/session"
	"github.com/google/uuid"
)

const (
	weekOne = `"Legs";"2026-02-03 6:10 h";"58 min"
"1. Squat · Barbell · 8 reps"
#;KG;REPS;RIR
1;100;8;2
2;100;8;1
`
	weekTwo = `"Legs";"2026-02-10 6:05 h";"1:01 hr"
"1. Squat · Barbell · 8 reps"
#;KG;REPS;RIR
1;100;9;1
2;100;9;1

"Legs";"2026-02-03 6:10 h";"58 min"
"1. Squat · Barbell · 8 reps"
#;KG;REPS;RIR
1;100;8;2
2;100;8;1
`
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakeIngester records the sessions it receives and reports each as applied.
type fakeIngester struct {
	got     []models.AlphaSession
	reports []*session.Report
}

func (f *fakeIngester) IngestSessions(_ context.Context, sessions []models.AlphaSession, _ int) ([]*session.Report, error) {
	f.got = append(f.got, sessions...)
	if f.reports != nil {
		return f.reports, nil
	}
	var out []*session.Report
	for range sessions {
		out = append(out, &session.Report{
			SessionID:    uuid.New(),
			SetsInserted: 2,
			Outcomes:     []session.Outcome{{Name: "Squat", Applied: true}},
		})
	}
	return out, nil
}

func writeExport(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// TestImportMergesOverlappingExports verifies sessions repeated across files
// are replayed once, oldest first.
func TestImportMergesOverlappingExports(t *testing.T) {
	dir := t.TempDir()
	writeExport(t, dir, "a-week-two.csv", weekTwo)
	writeExport(t, dir, "b/week-one.CSV", weekOne)
	writeExport(t, dir, "readme.txt", "not an export")

	ing := &fakeIngester{}
	stats, err := New(ing, 1, discard, false).Import(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}

	if stats.FilesProcessed != 2 {
		t.Errorf("files = %d, want 2", stats.FilesProcessed)
	}
	if stats.SessionsFound != 3 || stats.SessionsOverlapped != 1 {
		t.Errorf("found = %d overlapped = %d, want 3 and 1", stats.SessionsFound, stats.SessionsOverlapped)
	}
	if len(ing.got) != 2 {
		t.Fatalf("ingested %d sessions, want 2", len(ing.got))
	}
	if !ing.got[0].Date.Before(ing.got[1].Date) {
		t.Errorf("sessions not oldest first: %v then %v", ing.got[0].Date, ing.got[1].Date)
	}
	if stats.SessionsImported != 2 || stats.SetsInserted != 4 || stats.Progressions != 2 {
		t.Errorf("stats = %+v", stats)
	}
}

// TestImportTalliesReports verifies duplicates and skips from the ingester are counted.
func TestImportTalliesReports(t *testing.T) {
	dir := t.TempDir()
	writeExport(t, dir, "export.csv", weekTwo)

	ing := &fakeIngester{reports: []*session.Report{
		{Duplicate: true},
		{SetsInserted: 2, Outcomes: []session.Outcome{
			{Name: "Squat", Skipped: session.SkipNoState},
			{Name: "Bench Press", Skipped: session.SkipAlreadyDecided},
		}},
	}}
	stats, err := New(ing, 1, discard, false).Import(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	if stats.SessionsDuplicate != 1 || stats.SessionsImported != 1 || stats.Progressions != 0 {
		t.Errorf("stats = %+v", stats)
	}
	if len(stats.Skipped) != 1 || stats.Skipped[0] != "Squat: no progression state" {
		t.Errorf("skipped = %v", stats.Skipped)
	}
}

// TestImportBadFile verifies a malformed export is counted and the rest still load.
func TestImportBadFile(t *testing.T) {
	dir := t.TempDir()
	writeExport(t, dir, "bad.csv", "1;100;8;2\n")
	writeExport(t, dir, "good.csv", weekOne)

	ing := &fakeIngester{}
	stats, err := New(ing, 1, discard, false).Import(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	if stats.FilesErrored != 1 || stats.FilesProcessed != 1 || len(ing.got) != 1 {
		t.Errorf("stats = %+v ingested = %d", stats, len(ing.got))
	}
}

// TestImportDryRun verifies nothing is ingested in dry-run mode.
func TestImportDryRun(t *testing.T) {
	dir := t.TempDir()
	writeExport(t, dir, "export.csv", weekTwo)

	stats, err := New(nil, 1, discard, true).Import(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	if stats.SessionsImported != 2 {
		t.Errorf("sessions = %d, want 2", stats.SessionsImported)
	}
}

// TestImportMissingDir verifies a missing directory is an error.
func TestImportMissingDir(t *testing.T) {
	_, err := New(nil, 1, discard, true).Import(context.Background(), filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Fatal("expected error")
	}
}
