// Package store provides persistence for ferry reservation entities.
package store

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrNotFound is returned when an entity is not found.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicateVessel is returned when creating a vessel whose name exists.
	ErrDuplicateVessel = errors.New("vessel with this name already exists")

	// ErrDuplicateSailing is returned when creating a sailing whose departure
	// key (terminal, day, hour) exists.
	ErrDuplicateSailing = errors.New("sailing with this departure key already exists")

	// ErrDuplicateVehicle is returned when creating a vehicle whose license
	// plate exists.
	ErrDuplicateVehicle = errors.New("vehicle with this license plate already exists")

	// ErrDuplicateReservation is returned when creating a second reservation
	// for the same (sailing, vehicle) pair.
	ErrDuplicateReservation = errors.New("reservation for this sailing and vehicle already exists")

	// ErrForeignKey is returned when a foreign key constraint is violated.
	ErrForeignKey = errors.New("foreign key constraint violated")

	// ErrConnectionFailed is returned when database connection fails.
	ErrConnectionFailed = errors.New("database connection failed")

	// ErrMigrationFailed is returned when database migration fails.
	ErrMigrationFailed = errors.New("database migration failed")

	// ErrTxFailed is returned when a transaction operation fails.
	ErrTxFailed = errors.New("transaction failed")
)

// StoreError wraps errors with additional context.
type StoreError struct {
	Op      string // Operation that failed (e.g., "CreateVessel")
	Entity  string // Entity type (e.g., "vessel", "reservation")
	ID      string // Entity identifier if applicable
	Message string
	Err     error
}

func (e *StoreError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s %s: %s", e.Op, e.Entity, e.ID, e.Message)
	}
	if e.Entity != "" {
		return fmt.Sprintf("%s %s: %s", e.Op, e.Entity, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError.
func NewStoreError(op, entity, id, message string, err error) *StoreError {
	return &StoreError{
		Op:      op,
		Entity:  entity,
		ID:      id,
		Message: message,
		Err:     err,
	}
}
