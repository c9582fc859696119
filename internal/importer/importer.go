// Package importer bulk-loads a directory of Alpha Progression CSV exports
// straight into the database, bypassing the HTTP server.
package importer

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/claude/overload/internal/ingest/alpha"
	"github.com/claude/overload/internal/models"
	"github.com/claude/overload/internal/session"
	"github.com/google/uuid"
)

// Stats tracks import progress.
type Stats struct {
	FilesProcessed int
	FilesErrored   int

	SessionsFound      int
	SessionsOverlapped int
	SessionsImported   int
	SessionsDuplicate  int
	SetsInserted       int64
	Progressions       int

	Skipped []string
}

// Ingester completes parsed sessions in order. *alpha.Provider satisfies it.
type Ingester interface {
	IngestSessions(ctx context.Context, sessions []models.AlphaSession, userID int) ([]*session.Report, error)
}

// Importer reads every export under a directory, merges the sessions and
// replays them oldest first.
type Importer struct {
	ingester Ingester
	userID   int
	log      *slog.Logger
	dryRun   bool
	stats    Stats
}

// New creates a new Importer. ingester may be nil in dry-run mode.
func New(ingester Ingester, userID int, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{ingester: ingester, userID: userID, log: log, dryRun: dryRun}
}

// Import processes all .csv files under dir. Exports often overlap (a monthly
// export repeats sessions from a weekly one); each session is replayed once.
func (imp *Importer) Import(ctx context.Context, dir string) (*Stats, error) {
	files, err := exportFiles(dir)
	if err != nil {
		return &imp.stats, err
	}

	seen := map[uuid.UUID]bool{}
	var sessions []models.AlphaSession
	for _, f := range files {
		parsed, err := parseFile(f)
		if err != nil {
			imp.log.Warn("parse failed", "file", f, "error", err)
			imp.stats.FilesErrored++
			continue
		}
		imp.stats.FilesProcessed++

		for _, s := range parsed {
			imp.stats.SessionsFound++
			id := alpha.SessionID(s)
			if seen[id] {
				imp.stats.SessionsOverlapped++
				continue
			}
			seen[id] = true
			sessions = append(sessions, s)
		}
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].Date.Before(sessions[j].Date)
	})

	if imp.dryRun {
		imp.stats.SessionsImported = len(sessions)
		return &imp.stats, nil
	}
	if len(sessions) == 0 {
		return &imp.stats, nil
	}

	reports, err := imp.ingester.IngestSessions(ctx, sessions, imp.userID)
	if err != nil {
		return &imp.stats, fmt.Errorf("ingesting sessions: %w", err)
	}
	for _, r := range reports {
		imp.tally(r)
	}
	return &imp.stats, nil
}

func (imp *Importer) tally(r *session.Report) {
	if r.Duplicate {
		imp.stats.SessionsDuplicate++
		return
	}
	imp.stats.SessionsImported++
	imp.stats.SetsInserted += r.SetsInserted
	for _, o := range r.Outcomes {
		switch {
		case o.Applied:
			imp.stats.Progressions++
		case o.Skipped == session.SkipAlreadyDecided:
		case o.Skipped != "":
			imp.stats.Skipped = append(imp.stats.Skipped, o.Name+": "+o.Skipped)
		}
	}
}

func parseFile(path string) ([]models.AlphaSession, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return alpha.Parse(f)
}

// exportFiles lists the .csv files under dir, skipping hidden directories.
func exportFiles(dir string) ([]string, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".csv") {
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}
