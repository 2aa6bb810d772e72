// Package domain defines the core entities of the ferry reservation system.
package domain

import "errors"

// =============================================================================
// Lifecycle Errors
// =============================================================================

var (
	// ErrNotFound is returned when a referenced vessel, sailing, vehicle or
	// reservation does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when a reservation already exists for a
	// (sailing, vehicle) pair.
	ErrAlreadyExists = errors.New("reservation already exists")

	// ErrInsufficientCapacity is returned when neither lane can fit the vehicle.
	ErrInsufficientCapacity = errors.New("insufficient lane capacity")

	// ErrAlreadyBoarded is returned when boarding a reservation that has
	// already been boarded.
	ErrAlreadyBoarded = errors.New("reservation already boarded")

	// ErrInvariantViolation indicates a ledger update that would drive a lane
	// below zero or above its vessel's design capacity. It signals a
	// programming error and must be surfaced, never swallowed.
	ErrInvariantViolation = errors.New("lane capacity invariant violated")
)
