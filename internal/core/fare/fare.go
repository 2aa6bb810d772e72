// Package fare provides the pure boarding fee policy.
package fare

import (
	"math"

	"github.com/tidewater/ferryd/internal/core/domain"
)

// =============================================================================
// Fare Constants
// =============================================================================

// All amounts are in integer cents.
const (
	// BaseFareCents is the flat fee for vehicles triggering no surcharge.
	BaseFareCents int64 = 1400

	// LongRateCentsPerMeter applies to vehicles longer than LongLengthMeters.
	LongRateCentsPerMeter int64 = 1000

	// OverheightRateCentsPerMeter applies to vehicles taller than
	// OverheightMeters. When a vehicle is both long and overheight, the
	// overheight rate wins.
	OverheightRateCentsPerMeter int64 = 1500

	LongLengthMeters = 7.0
	OverheightMeters = 2.0
)

// =============================================================================
// Quote
// =============================================================================

// Quote computes the boarding fee for a vehicle. Long and tall surcharges are
// per-meter rates over the vehicle's length; either one replaces the flat
// base fare rather than adding to it. A quote is never zero, since a zero
// amount paid marks an unboarded reservation.
func Quote(vehicle domain.Vehicle) int64 {
	switch {
	case vehicle.Height > OverheightMeters:
		return perMeter(vehicle.Length, OverheightRateCentsPerMeter)
	case vehicle.Length > LongLengthMeters:
		return perMeter(vehicle.Length, LongRateCentsPerMeter)
	default:
		return BaseFareCents
	}
}

func perMeter(length float64, rateCents int64) int64 {
	cents := int64(math.Round(length * float64(rateCents)))
	if cents < 1 {
		cents = 1
	}
	return cents
}
