package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/noah-isme/backend-pupuseria/internal/common"
)

// OperatingDay maps a calendar date to an open/closed state. A date with no
// stored record is open.
type OperatingDay struct {
	Date   string `json:"date"`
	IsOpen bool   `json:"is_open"`
}

// DB is the subset of pgxpool.Pool the repository needs.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repo persists operating-day records.
type Repo struct {
	db DB
}

// NewRepo constructs a Repo.
func NewRepo(db DB) *Repo {
	return &Repo{db: db}
}

// ListRange returns the stored records within [start, end], newest first.
func (r *Repo) ListRange(ctx context.Context, start, end time.Time) ([]OperatingDay, error) {
	rows, err := r.db.Query(ctx, `
		SELECT day, is_open FROM operating_days
		WHERE day BETWEEN $1 AND $2
		ORDER BY day DESC`, start, end)
	if err != nil {
		return nil, fmt.Errorf("list operating days: %w", err)
	}
	defer rows.Close()
	result := []OperatingDay{}
	for rows.Next() {
		var (
			day    time.Time
			isOpen bool
		)
		if err := rows.Scan(&day, &isOpen); err != nil {
			return nil, fmt.Errorf("scan operating day: %w", err)
		}
		result = append(result, OperatingDay{Date: common.FormatDay(day), IsOpen: isOpen})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list operating days: %w", err)
	}
	return result, nil
}

// Get returns the stored record for a date. Missing records surface pgx.ErrNoRows.
func (r *Repo) Get(ctx context.Context, day time.Time) (OperatingDay, error) {
	var (
		stored time.Time
		isOpen bool
	)
	err := r.db.QueryRow(ctx, `SELECT day, is_open FROM operating_days WHERE day = $1`, day).
		Scan(&stored, &isOpen)
	if err != nil {
		return OperatingDay{}, err
	}
	return OperatingDay{Date: common.FormatDay(stored), IsOpen: isOpen}, nil
}

// Upsert writes the open/closed state for a date.
func (r *Repo) Upsert(ctx context.Context, day time.Time, isOpen bool) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO operating_days (day, is_open) VALUES ($1, $2)
		ON CONFLICT (day) DO UPDATE SET is_open = EXCLUDED.is_open`, day, isOpen)
	if err != nil {
		return fmt.Errorf("upsert operating day: %w", err)
	}
	return nil
}

// Delete removes a stored record; the date reverts to the default-open policy.
func (r *Repo) Delete(ctx context.Context, day time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM operating_days WHERE day = $1`, day)
	if err != nil {
		return 0, fmt.Errorf("delete operating day: %w", err)
	}
	return tag.RowsAffected(), nil
}
