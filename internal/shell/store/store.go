package store

import (
	"context"

	"github.com/tidewater/ferryd/internal/core/domain"
)

// =============================================================================
// Store Interface
// =============================================================================

// Store defines the persistence interface for ferry reservation entities.
type Store interface {
	// Vessel operations
	CreateVessel(ctx context.Context, vessel *domain.Vessel) error
	GetVessel(ctx context.Context, id int64) (*domain.Vessel, error)
	GetVesselByName(ctx context.Context, name string) (*domain.Vessel, error)
	ListVessels(ctx context.Context, opts ListOptions) ([]domain.Vessel, error)

	// Sailing operations
	CreateSailing(ctx context.Context, sailing *domain.Sailing) error
	GetSailing(ctx context.Context, id int64) (*domain.Sailing, error)
	GetSailingByKey(ctx context.Context, key domain.DepartureKey) (*domain.Sailing, error)
	UpdateSailingRemaining(ctx context.Context, sailing *domain.Sailing) error
	DeleteSailing(ctx context.Context, id int64) error // also removes its reservations
	CountSailings(ctx context.Context) (int, error)

	// Vehicle operations
	CreateVehicle(ctx context.Context, vehicle *domain.Vehicle) error
	GetVehicle(ctx context.Context, id int64) (*domain.Vehicle, error)
	GetVehicleByPlate(ctx context.Context, licensePlate string) (*domain.Vehicle, error)

	// Reservation operations
	CreateReservation(ctx context.Context, reservation *domain.Reservation) error
	GetReservation(ctx context.Context, sailingID, vehicleID int64) (*domain.Reservation, error)
	DeleteReservation(ctx context.Context, sailingID, vehicleID int64) error
	UpdateReservationAmount(ctx context.Context, sailingID, vehicleID, amountCents int64) error
	CountReservations(ctx context.Context, sailingID int64) (int, error)

	// Report joins (sailing + vessel + reservation count, ordered by day then hour)
	ListSailingJoins(ctx context.Context, opts ListOptions) ([]SailingJoin, error)
	GetSailingJoin(ctx context.Context, key domain.DepartureKey) (*SailingJoin, error)

	// Transaction support
	WithTx(ctx context.Context, fn func(Store) error) error

	// Lifecycle
	Close() error
}

// SailingJoin is a sailing joined with its vessel and reservation count, the
// raw material for a sailing report.
type SailingJoin struct {
	Sailing          domain.Sailing
	Vessel           domain.Vessel
	ReservationCount int
}

// =============================================================================
// Options
// =============================================================================

// ListOptions defines pagination options.
type ListOptions struct {
	Limit  int
	Offset int
}

// DefaultListOptions returns default list options. The default page length of
// 10 follows the interactive listing screens this store backs.
func DefaultListOptions() ListOptions {
	return ListOptions{
		Limit:  10,
		Offset: 0,
	}
}

// Normalize ensures list options have valid values.
func (o ListOptions) Normalize() ListOptions {
	if o.Limit <= 0 {
		o.Limit = 10
	}
	if o.Limit > 1000 {
		o.Limit = 1000
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}
