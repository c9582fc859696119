package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/claude/overload/internal/ingest/alpha"
	"github.com/claude/overload/internal/session"
)

// Stats tracks upload progress.
type Stats struct {
	FilesTotal    int
	FilesUploaded int
	FilesSkipped  int
	FilesErrored  int

	SessionsSent      int
	SessionsDuplicate int
	Progressions      int
	Skipped           []string
}

// Sender posts one export and returns the server's reports. *Client satisfies it.
type Sender interface {
	SendExport(ctx context.Context, data []byte) ([]SessionReport, error)
}

// Uploader walks a directory of Alpha Progression CSV exports and sends the
// ones the server has not seen yet.
type Uploader struct {
	client Sender
	state  *StateDB
	root   string
	dryRun bool
	log    *slog.Logger
	stats  Stats
}

// New creates a new Uploader. client may be nil in dry-run mode.
func New(client Sender, state *StateDB, root string, dryRun bool, log *slog.Logger) *Uploader {
	return &Uploader{
		client: client,
		state:  state,
		root:   root,
		dryRun: dryRun,
		log:    log,
	}
}

// Run uploads every new or changed export under the root, oldest file name
// first. A failed file is counted and logged; the rest still go out.
func (u *Uploader) Run(ctx context.Context) (*Stats, error) {
	files, err := findExports(u.root)
	if err != nil {
		return &u.stats, fmt.Errorf("scanning %s: %w", u.root, err)
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return &u.stats, err
		}
		u.stats.FilesTotal++
		if err := u.processFile(ctx, f); err != nil {
			u.log.Warn("export failed", "file", f, "error", err)
			u.stats.FilesErrored++
		}
	}

	return &u.stats, nil
}

func (u *Uploader) processFile(ctx context.Context, path string) error {
	relPath, _ := filepath.Rel(u.root, path)

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	hash, err := HashFile(path)
	if err != nil {
		return fmt.Errorf("hashing: %w", err)
	}

	uploaded, err := u.state.IsUploaded(relPath, info.Size(), hash)
	if err != nil {
		return err
	}
	if uploaded {
		u.stats.FilesSkipped++
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if u.dryRun {
		sessions, err := alpha.Parse(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("parsing: %w", err)
		}
		u.log.Info("dry run: would upload", "file", relPath, "sessions", len(sessions))
		u.stats.SessionsSent += len(sessions)
		return nil
	}

	reports, err := u.client.SendExport(ctx, data)
	if err != nil {
		return err
	}

	for _, r := range reports {
		u.stats.SessionsSent++
		if r.Duplicate {
			u.stats.SessionsDuplicate++
			continue
		}
		for _, o := range r.Outcomes {
			switch {
			case o.Applied:
				u.stats.Progressions++
			case o.Skipped == session.SkipAlreadyDecided:
			case o.Skipped != "":
				u.stats.Skipped = append(u.stats.Skipped, o.Name+": "+o.Skipped)
			}
		}
	}

	if err := u.state.MarkUploaded(relPath, info.Size(), hash, len(reports)); err != nil {
		return err
	}
	u.stats.FilesUploaded++
	u.log.Info("uploaded", "file", relPath, "sessions", len(reports))
	return nil
}

// findExports returns every .csv file under root in lexical order.
func findExports(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".csv") {
			files = append(files, path)
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("export directory not found: %w", err)
	}
	sort.Strings(files)
	return files, err
}
