package calendar

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/noah-isme/backend-pupuseria/internal/common"
)

type store interface {
	ListRange(ctx context.Context, start, end time.Time) ([]OperatingDay, error)
	Get(ctx context.Context, day time.Time) (OperatingDay, error)
	Upsert(ctx context.Context, day time.Time, isOpen bool) error
	Delete(ctx context.Context, day time.Time) (int64, error)
}

// Service applies the default-open policy over stored operating-day records.
type Service struct {
	store store
}

// NewService constructs a Service instance.
func NewService(store store) (*Service, error) {
	if store == nil {
		return nil, errors.New("calendar: store is required")
	}
	return &Service{store: store}, nil
}

// BulkEntry is one date/state pair in a bulk upsert.
type BulkEntry struct {
	Date   string `json:"date"`
	IsOpen bool   `json:"is_open"`
}

// BulkResult reports how a bulk upsert went: invalid dates are skipped, not
// fatal.
type BulkResult struct {
	Updated int      `json:"updated"`
	Skipped []string `json:"skipped,omitempty"`
}

// ListRange returns stored records within the range, newest first.
func (s *Service) ListRange(ctx context.Context, startDate, endDate string) ([]OperatingDay, error) {
	start, err := common.ParseDay(startDate)
	if err != nil {
		return nil, common.BadRequest("start_date", "start_date must be YYYY-MM-DD", err)
	}
	end, err := common.ParseDay(endDate)
	if err != nil {
		return nil, common.BadRequest("end_date", "end_date must be YYYY-MM-DD", err)
	}
	if end.Before(start) {
		return nil, common.BadRequest("end_date", "end_date cannot precede start_date", nil)
	}
	return s.store.ListRange(ctx, start, end)
}

// Get returns the state for one date. A missing record means open.
func (s *Service) Get(ctx context.Context, date string) (OperatingDay, error) {
	day, err := common.ParseDay(date)
	if err != nil {
		return OperatingDay{}, common.BadRequest("date", "date must be YYYY-MM-DD", err)
	}
	record, err := s.store.Get(ctx, day)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return OperatingDay{Date: common.FormatDay(day), IsOpen: true}, nil
		}
		return OperatingDay{}, fmt.Errorf("get operating day: %w", err)
	}
	return record, nil
}

// Set upserts the open/closed state for one date.
func (s *Service) Set(ctx context.Context, date string, isOpen bool) (OperatingDay, error) {
	day, err := common.ParseDay(date)
	if err != nil {
		return OperatingDay{}, common.BadRequest("date", "date must be YYYY-MM-DD", err)
	}
	if err := s.store.Upsert(ctx, day, isOpen); err != nil {
		return OperatingDay{}, err
	}
	return OperatingDay{Date: common.FormatDay(day), IsOpen: isOpen}, nil
}

// SetBulk upserts many dates at once. Entries with malformed dates are skipped
// and reported back, never failing the batch.
func (s *Service) SetBulk(ctx context.Context, entries []BulkEntry) (BulkResult, error) {
	result := BulkResult{}
	for _, entry := range entries {
		day, err := common.ParseDay(entry.Date)
		if err != nil {
			result.Skipped = append(result.Skipped, strings.TrimSpace(entry.Date))
			continue
		}
		if err := s.store.Upsert(ctx, day, entry.IsOpen); err != nil {
			return BulkResult{}, err
		}
		result.Updated++
	}
	return result, nil
}

// Remove drops the stored record for a date, reverting it to default-open.
func (s *Service) Remove(ctx context.Context, date string) error {
	day, err := common.ParseDay(date)
	if err != nil {
		return common.BadRequest("date", "date must be YYYY-MM-DD", err)
	}
	affected, err := s.store.Delete(ctx, day)
	if err != nil {
		return err
	}
	if affected == 0 {
		return common.NotFound(fmt.Sprintf("no operating-day record for %s", common.FormatDay(day)), nil)
	}
	return nil
}
