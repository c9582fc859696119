package upload

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const stateSchema = `CREATE TABLE IF NOT EXISTS uploaded_exports (
	path        TEXT PRIMARY KEY,
	size        INTEGER NOT NULL,
	sha256      TEXT NOT NULL,
	sessions    INTEGER NOT NULL DEFAULT 0,
	uploaded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`

// StateDB remembers which exports the server has accepted, keyed by path
// relative to the export directory.
type StateDB struct {
	db *sql.DB
}

// OpenStateDB opens or creates dir/state.db.
func OpenStateDB(dir string) (*StateDB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
	}
	db, err := sql.Open("sqlite", filepath.Join(dir, "state.db"))
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}
	if _, err := db.Exec(stateSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating state table: %w", err)
	}
	return &StateDB{db: db}, nil
}

// IsUploaded reports whether relPath was last accepted with this exact size
// and digest. Alpha exports grow when re-exported, so a changed file goes out again.
func (s *StateDB) IsUploaded(relPath string, size int64, digest string) (bool, error) {
	var storedSize int64
	var storedDigest string
	err := s.db.QueryRow(`SELECT size, sha256 FROM uploaded_exports WHERE path = ?`, relPath).
		Scan(&storedSize, &storedDigest)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("looking up %s: %w", relPath, err)
	}
	return storedSize == size && storedDigest == digest, nil
}

// MarkUploaded records an accepted export and the number of sessions in it,
// replacing any earlier record for the same path.
func (s *StateDB) MarkUploaded(relPath string, size int64, digest string, sessions int) error {
	_, err := s.db.Exec(`INSERT INTO uploaded_exports (path, size, sha256, sessions) VALUES (?, ?, ?, ?)
		ON CONFLICT (path) DO UPDATE SET size = excluded.size, sha256 = excluded.sha256,
			sessions = excluded.sessions, uploaded_at = CURRENT_TIMESTAMP`,
		relPath, size, digest, sessions)
	if err != nil {
		return fmt.Errorf("recording %s: %w", relPath, err)
	}
	return nil
}

// Close closes the state database.
func (s *StateDB) Close() error {
	return s.db.Close()
}

// HashFile returns the hex SHA-256 of a file's contents.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
