// Package booking provides the reservation lifecycle service. It combines
// the pure allocation, ledger and fare cores with the store, and owns the
// per-sailing serialization and transactional boundaries.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tidewater/ferryd/internal/core/allocation"
	"github.com/tidewater/ferryd/internal/core/domain"
	"github.com/tidewater/ferryd/internal/core/fare"
	"github.com/tidewater/ferryd/internal/core/ledger"
	"github.com/tidewater/ferryd/internal/shell/store"
)

// =============================================================================
// Service
// =============================================================================

// Service orchestrates reservation create/cancel/board operations. Every
// operation that touches a sailing's ledger holds that sailing's lock across
// the policy decision, the ledger mutation and the reservation write, and
// runs the writes inside a single store transaction.
type Service struct {
	store  store.Store
	logger *slog.Logger

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewService creates a booking service.
func NewService(s store.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  s,
		logger: logger,
		locks:  make(map[int64]*sync.Mutex),
	}
}

// lockSailing acquires the exclusive scope for one sailing and returns the
// release function. Locks are never removed from the map; the sailing
// population is small and bounded.
func (s *Service) lockSailing(id int64) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// =============================================================================
// Vehicle Details
// =============================================================================

// VehicleDetails carries the caller-supplied vehicle description. Only the
// license plate is consulted for a known vehicle; the remaining fields are
// used to register an unseen one.
type VehicleDetails struct {
	LicensePlate string
	PhoneNumber  string
	Length       float64
	Height       float64
}

// resolveVehicle finds the vehicle by plate, registering it first if unseen.
func (s *Service) resolveVehicle(ctx context.Context, details VehicleDetails) (*domain.Vehicle, error) {
	vehicle, err := s.store.GetVehicleByPlate(ctx, details.LicensePlate)
	if err == nil {
		return vehicle, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	vehicle, err = domain.NewVehicle(details.LicensePlate, details.PhoneNumber, details.Length, details.Height)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateVehicle(ctx, vehicle); err != nil {
		// Lost a race with another registration of the same plate.
		if errors.Is(err, store.ErrDuplicateVehicle) {
			return s.store.GetVehicleByPlate(ctx, details.LicensePlate)
		}
		return nil, err
	}

	s.logger.Info("vehicle registered",
		"license_plate", vehicle.LicensePlate,
		"length", vehicle.Length,
		"height", vehicle.Height,
	)
	return vehicle, nil
}

// lookupVehicle finds the vehicle by plate without registering it.
func (s *Service) lookupVehicle(ctx context.Context, licensePlate string) (*domain.Vehicle, error) {
	vehicle, err := s.store.GetVehicleByPlate(ctx, licensePlate)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("vehicle %s: %w", licensePlate, domain.ErrNotFound)
		}
		return nil, err
	}
	return vehicle, nil
}

func (s *Service) lookupSailing(ctx context.Context, key domain.DepartureKey) (*domain.Sailing, error) {
	sailing, err := s.store.GetSailingByKey(ctx, key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("sailing %s: %w", key, domain.ErrNotFound)
		}
		return nil, err
	}
	return sailing, nil
}

// =============================================================================
// Create
// =============================================================================

// CreateReservation reserves lane space on a sailing for a vehicle,
// registering the vehicle first if its plate is unseen. Fails with
// domain.ErrAlreadyExists if the pair already holds a reservation and with
// domain.ErrInsufficientCapacity if neither lane fits the vehicle; in both
// cases nothing is mutated.
func (s *Service) CreateReservation(ctx context.Context, key domain.DepartureKey, details VehicleDetails) (*domain.Reservation, error) {
	sailing, err := s.lookupSailing(ctx, key)
	if err != nil {
		return nil, err
	}
	vehicle, err := s.resolveVehicle(ctx, details)
	if err != nil {
		return nil, err
	}

	unlock := s.lockSailing(sailing.ID)
	defer unlock()

	var reservation *domain.Reservation
	err = s.store.WithTx(ctx, func(tx store.Store) error {
		r, err := s.reserveInTx(ctx, tx, sailing.ID, vehicle)
		reservation = r
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("reservation created",
		"sailing", key.String(),
		"license_plate", vehicle.LicensePlate,
		"lane", reservation.Lane().String(),
		"reference", reservation.Reference,
	)
	return reservation, nil
}

// reserveInTx runs the policy decision, the ledger decrement and the
// reservation insert as one unit inside the caller's transaction.
func (s *Service) reserveInTx(ctx context.Context, tx store.Store, sailingID int64, vehicle *domain.Vehicle) (*domain.Reservation, error) {
	current, err := tx.GetSailing(ctx, sailingID)
	if err != nil {
		return nil, err
	}

	if _, err := tx.GetReservation(ctx, current.ID, vehicle.ID); err == nil {
		return nil, domain.ErrAlreadyExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	lane, err := allocation.Decide(*vehicle, current.LowRemaining, current.HighRemaining)
	if err != nil {
		return nil, err
	}
	if err := ledger.Reserve(current, lane, allocation.Footprint(*vehicle)); err != nil {
		return nil, err
	}
	if err := tx.UpdateSailingRemaining(ctx, current); err != nil {
		return nil, err
	}

	reservation := domain.NewReservation(current.ID, vehicle.ID, lane)
	if err := tx.CreateReservation(ctx, reservation); err != nil {
		if errors.Is(err, store.ErrDuplicateReservation) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	return reservation, nil
}

// =============================================================================
// Cancel
// =============================================================================

// CancelReservation removes the pair's reservation and returns the vehicle's
// footprint to the lane recorded at creation time. Fails with
// domain.ErrNotFound before any mutation if no reservation exists.
func (s *Service) CancelReservation(ctx context.Context, key domain.DepartureKey, licensePlate string) error {
	sailing, err := s.lookupSailing(ctx, key)
	if err != nil {
		return err
	}
	vehicle, err := s.lookupVehicle(ctx, licensePlate)
	if err != nil {
		return err
	}

	unlock := s.lockSailing(sailing.ID)
	defer unlock()

	err = s.store.WithTx(ctx, func(tx store.Store) error {
		reservation, err := tx.GetReservation(ctx, sailing.ID, vehicle.ID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("reservation %s/%s: %w", key, licensePlate, domain.ErrNotFound)
			}
			return err
		}

		if err := tx.DeleteReservation(ctx, sailing.ID, vehicle.ID); err != nil {
			return err
		}

		current, err := tx.GetSailing(ctx, sailing.ID)
		if err != nil {
			return err
		}
		vessel, err := tx.GetVessel(ctx, current.VesselID)
		if err != nil {
			return err
		}

		if err := ledger.Release(current, vessel, reservation.Lane(), allocation.Footprint(*vehicle)); err != nil {
			s.logger.Error("ledger release would exceed vessel capacity",
				"sailing", key.String(),
				"license_plate", licensePlate,
				"lane", reservation.Lane().String(),
				"error", err,
			)
			return err
		}
		return tx.UpdateSailingRemaining(ctx, current)
	})
	if err != nil {
		return err
	}

	s.logger.Info("reservation cancelled",
		"sailing", key.String(),
		"license_plate", licensePlate,
	)
	return nil
}

// =============================================================================
// Board
// =============================================================================

// Board finalizes the fee for an existing reservation. Fails with
// domain.ErrNotFound if the pair has no reservation and with
// domain.ErrAlreadyBoarded, leaving the amount untouched, if boarding was
// already completed.
func (s *Service) Board(ctx context.Context, key domain.DepartureKey, licensePlate string) (*domain.Reservation, error) {
	sailing, err := s.lookupSailing(ctx, key)
	if err != nil {
		return nil, err
	}
	vehicle, err := s.lookupVehicle(ctx, licensePlate)
	if err != nil {
		return nil, err
	}

	unlock := s.lockSailing(sailing.ID)
	defer unlock()

	var reservation *domain.Reservation
	err = s.store.WithTx(ctx, func(tx store.Store) error {
		r, err := s.boardInTx(ctx, tx, sailing.ID, vehicle, key)
		reservation = r
		return err
	})
	if err != nil {
		return nil, err
	}
	return reservation, nil
}

// WalkUpBoard is the boarding-gate workflow: the vehicle is registered if its
// plate is unseen and a reservation is created on the fly, subject to
// capacity, before the fee is applied.
func (s *Service) WalkUpBoard(ctx context.Context, key domain.DepartureKey, details VehicleDetails) (*domain.Reservation, error) {
	sailing, err := s.lookupSailing(ctx, key)
	if err != nil {
		return nil, err
	}
	vehicle, err := s.resolveVehicle(ctx, details)
	if err != nil {
		return nil, err
	}

	unlock := s.lockSailing(sailing.ID)
	defer unlock()

	var reservation *domain.Reservation
	err = s.store.WithTx(ctx, func(tx store.Store) error {
		if _, err := tx.GetReservation(ctx, sailing.ID, vehicle.ID); err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				return err
			}
			if _, err := s.reserveInTx(ctx, tx, sailing.ID, vehicle); err != nil {
				return err
			}
		}
		r, err := s.boardInTx(ctx, tx, sailing.ID, vehicle, key)
		reservation = r
		return err
	})
	if err != nil {
		return nil, err
	}
	return reservation, nil
}

func (s *Service) boardInTx(ctx context.Context, tx store.Store, sailingID int64, vehicle *domain.Vehicle, key domain.DepartureKey) (*domain.Reservation, error) {
	reservation, err := tx.GetReservation(ctx, sailingID, vehicle.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("reservation %s/%s: %w", key, vehicle.LicensePlate, domain.ErrNotFound)
		}
		return nil, err
	}
	if reservation.Boarded() {
		return nil, domain.ErrAlreadyBoarded
	}

	amount := fare.Quote(*vehicle)
	if err := tx.UpdateReservationAmount(ctx, sailingID, vehicle.ID, amount); err != nil {
		return nil, err
	}
	reservation.AmountPaidCents = amount

	s.logger.Info("boarding completed",
		"sailing", key.String(),
		"license_plate", vehicle.LicensePlate,
		"amount_cents", amount,
	)
	return reservation, nil
}

// =============================================================================
// Sailing Removal
// =============================================================================

// DeleteSailing removes a sailing and all its reservations as one
// transaction.
func (s *Service) DeleteSailing(ctx context.Context, key domain.DepartureKey) error {
	sailing, err := s.lookupSailing(ctx, key)
	if err != nil {
		return err
	}

	unlock := s.lockSailing(sailing.ID)
	defer unlock()

	err = s.store.WithTx(ctx, func(tx store.Store) error {
		return tx.DeleteSailing(ctx, sailing.ID)
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("sailing %s: %w", key, domain.ErrNotFound)
		}
		return err
	}

	s.logger.Info("sailing deleted", "sailing", key.String())
	return nil
}
