// Package reporting assembles sailing reports from store state.
package reporting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tidewater/ferryd/internal/core/domain"
	"github.com/tidewater/ferryd/internal/core/ledger"
	"github.com/tidewater/ferryd/internal/shell/store"
)

// =============================================================================
// Service
// =============================================================================

// Service computes SailingReport projections. Reports are derived on every
// call and never cached, so they always reflect the committed ledger state.
type Service struct {
	store  store.Store
	logger *slog.Logger
}

// NewService creates a reporting service.
func NewService(s store.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: s, logger: logger}
}

// =============================================================================
// Reports
// =============================================================================

// List returns up to count reports starting at offset, ordered by departure
// day then hour, together with the total number of sailings so callers can
// tell an exhausted offset apart from an empty store.
func (s *Service) List(ctx context.Context, count, offset int) ([]domain.SailingReport, int, error) {
	total, err := s.store.CountSailings(ctx)
	if err != nil {
		return nil, 0, err
	}

	joins, err := s.store.ListSailingJoins(ctx, store.ListOptions{Limit: count, Offset: offset})
	if err != nil {
		return nil, 0, err
	}

	reports := make([]domain.SailingReport, 0, len(joins))
	for _, join := range joins {
		reports = append(reports, buildReport(join))
	}
	return reports, total, nil
}

// Get returns the report for one sailing identified by its departure key.
func (s *Service) Get(ctx context.Context, key domain.DepartureKey) (*domain.SailingReport, error) {
	join, err := s.store.GetSailingJoin(ctx, key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("sailing %s: %w", key, domain.ErrNotFound)
		}
		return nil, err
	}

	report := buildReport(*join)
	return &report, nil
}

func buildReport(join store.SailingJoin) domain.SailingReport {
	return domain.SailingReport{
		Sailing:          join.Sailing,
		Vessel:           join.Vessel,
		VehicleCount:     join.ReservationCount,
		OccupancyPercent: ledger.Occupancy(&join.Sailing, &join.Vessel),
	}
}
