package storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// TestPlaceholders verifies batch VALUES groups are numbered continuously
// across rows, which the multi-row INSERTs rely on.
func TestPlaceholders(t *testing.T) {
	tests := []struct {
		rows, cols int
		want       string
	}{
		{1, 1, "($1)"},
		{1, 3, "($1,$2,$3)"},
		{2, 2, "($1,$2),($3,$4)"},
		{3, 2, "($1,$2),($3,$4),($5,$6)"},
		{0, 4, ""},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%dx%d", tt.rows, tt.cols), func(t *testing.T) {
			if got := placeholders(tt.rows, tt.cols); got != tt.want {
				t.Errorf("placeholders(%d, %d) = %q, want %q", tt.rows, tt.cols, got, tt.want)
			}
		})
	}
}

// TestNotFound verifies pgx.ErrNoRows is surfaced as ErrNotFound while other
// errors keep their identity.
func TestNotFound(t *testing.T) {
	err := notFound(pgx.ErrNoRows, "exercise x")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("ErrNoRows not mapped: %v", err)
	}

	boom := errors.New("connection reset")
	err = notFound(boom, "exercise x")
	if errors.Is(err, ErrNotFound) {
		t.Error("unrelated error mapped to ErrNotFound")
	}
	if !errors.Is(err, boom) {
		t.Error("original error lost")
	}
}

// TestTruncInterval verifies bucket names map to date_trunc units, defaulting to month.
func TestTruncInterval(t *testing.T) {
	cases := map[string]string{"1 week": "week", "1 month": "month", "": "month", "1 year": "month"}
	for in, want := range cases {
		if got := truncInterval(in); got != want {
			t.Errorf("truncInterval(%q) = %q, want %q", in, got, want)
		}
	}
}

// TestConflict verifies only unique violations become ErrConflict.
func TestConflict(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", Message: "duplicate key value"}
	if err := conflict(dup, "exercise Bench"); !errors.Is(err, ErrConflict) {
		t.Errorf("unique violation not mapped: %v", err)
	}
	check := &pgconn.PgError{Code: "23514", Message: "check constraint"}
	err := conflict(check, "exercise Bench")
	if errors.Is(err, ErrConflict) {
		t.Error("check violation mapped to ErrConflict")
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		t.Error("original error lost")
	}
}
