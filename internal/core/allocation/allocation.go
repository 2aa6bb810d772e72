// Package allocation provides the pure lane allocation policy.
// This is part of the Functional Core - all functions are pure with no I/O.
package allocation

import (
	"github.com/tidewater/ferryd/internal/core/domain"
)

// =============================================================================
// Policy Constants
// =============================================================================

const (
	// ReservationMargin is the fixed buffer in meters added to every
	// vehicle's footprint for inter-vehicle spacing. It is consumed from the
	// ledger alongside the vehicle length and returned on cancellation.
	ReservationMargin = 0.5

	// MaxLowLaneHeight is the tallest vehicle the low-ceiling lane accepts,
	// in meters.
	MaxLowLaneHeight = 2.0
)

// =============================================================================
// Lane Decision
// =============================================================================

// Footprint returns the lane length a vehicle consumes, margin included.
func Footprint(vehicle domain.Vehicle) float64 {
	return vehicle.Length + ReservationMargin
}

// Decide assigns a vehicle to a lane given the sailing's current remaining
// lengths. Low vehicles are preferentially placed in the low lane to preserve
// high-lane capacity for tall vehicles that have no alternative. Returns
// domain.ErrInsufficientCapacity when neither lane fits the vehicle.
func Decide(vehicle domain.Vehicle, lowRemaining, highRemaining float64) (domain.Lane, error) {
	needed := Footprint(vehicle)

	if vehicle.Height <= MaxLowLaneHeight && needed <= lowRemaining {
		return domain.LaneLow, nil
	}
	if needed <= highRemaining {
		return domain.LaneHigh, nil
	}
	return 0, domain.ErrInsufficientCapacity
}
