package domain

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Lane
// =============================================================================

// Lane identifies one of the two parking lanes on a vessel.
type Lane int

const (
	LaneLow Lane = iota
	LaneHigh
)

func (l Lane) String() string {
	if l == LaneLow {
		return "low"
	}
	return "high"
}

// =============================================================================
// Reservation
// =============================================================================

// Reservation joins a sailing and a vehicle; at most one exists per pair.
// AmountPaidCents is 0 until boarding completes, which is the sentinel for
// "not yet boarded". LowLane is fixed at creation time and decides which
// ledger counter is credited back on cancellation.
type Reservation struct {
	SailingID       int64     `json:"sailing_id"`
	VehicleID       int64     `json:"vehicle_id"`
	Reference       string    `json:"reference"`
	AmountPaidCents int64     `json:"amount_paid_cents"`
	LowLane         bool      `json:"low_lane"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewReservation creates an unboarded reservation for the given pair and lane.
func NewReservation(sailingID, vehicleID int64, lane Lane) *Reservation {
	return &Reservation{
		SailingID:       sailingID,
		VehicleID:       vehicleID,
		Reference:       "res_" + uuid.New().String()[:8],
		AmountPaidCents: 0,
		LowLane:         lane == LaneLow,
		CreatedAt:       time.Now().UTC(),
	}
}

// Lane returns the lane the reservation holds space in.
func (r *Reservation) Lane() Lane {
	if r.LowLane {
		return LaneLow
	}
	return LaneHigh
}

// Boarded reports whether boarding has completed for this reservation.
func (r *Reservation) Boarded() bool {
	return r.AmountPaidCents != 0
}
