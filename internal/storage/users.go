package storage

import (
	"context"
	"fmt"
)

// LocalUser is the seeded account used when no identity provider is active.
const LocalUser = 1

// GetOrCreateUser resolves a tailnet login to a user ID, creating the user on
// first sight. Each call refreshes last_seen and, when non-empty, the display name.
// Progression states and logged sets hang off this ID.
func (db *DB) GetOrCreateUser(ctx context.Context, login, displayName string) (int, error) {
	if login == "" {
		return 0, fmt.Errorf("resolving user: empty login")
	}
	var id int
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO users (login, display_name)
		VALUES ($1, $2)
		ON CONFLICT (login) DO UPDATE
			SET last_seen = NOW(), display_name = COALESCE(NULLIF($2, ''), users.display_name)
		RETURNING id
	`, login, displayName).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("resolving user %s: %w", login, err)
	}
	return id, nil
}
