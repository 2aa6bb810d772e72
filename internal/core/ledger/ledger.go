// Package ledger provides the pure arithmetic over a sailing's two
// remaining-length counters. This is part of the Functional Core - callers
// own persistence and serialization of the mutations.
package ledger

import (
	"math"

	"github.com/tidewater/ferryd/internal/core/domain"
)

// lengthTolerance absorbs float64 drift from decimal-meter lengths when
// testing the lane bounds. Any real overdraw or over-release is at least the
// margin (0.5 m), many orders of magnitude above it.
const lengthTolerance = 1e-9

// =============================================================================
// Reserve / Release
// =============================================================================

// Reserve decrements the named lane's remaining length by amount. It fails
// with domain.ErrInsufficientCapacity and leaves the sailing untouched if the
// result would go negative. A result within tolerance of zero is an exact
// fill and snaps to zero.
func Reserve(sailing *domain.Sailing, lane domain.Lane, amount float64) error {
	switch lane {
	case domain.LaneLow:
		next, ok := debit(sailing.LowRemaining, amount)
		if !ok {
			return domain.ErrInsufficientCapacity
		}
		sailing.LowRemaining = next
	case domain.LaneHigh:
		next, ok := debit(sailing.HighRemaining, amount)
		if !ok {
			return domain.ErrInsufficientCapacity
		}
		sailing.HighRemaining = next
	default:
		return domain.ErrInvariantViolation
	}
	return nil
}

// Release increments the named lane's remaining length by amount. A result
// within tolerance of the vessel's design capacity snaps to it, so a full
// reserve/release cycle restores the lane exactly. Exceeding the capacity
// beyond tolerance means reserve and release calls have lost pairing
// somewhere, so the sailing is left untouched and
// domain.ErrInvariantViolation is returned for the caller to surface.
func Release(sailing *domain.Sailing, vessel *domain.Vessel, lane domain.Lane, amount float64) error {
	switch lane {
	case domain.LaneLow:
		next, ok := credit(sailing.LowRemaining, amount, vessel.LowLaneLength)
		if !ok {
			return domain.ErrInvariantViolation
		}
		sailing.LowRemaining = next
	case domain.LaneHigh:
		next, ok := credit(sailing.HighRemaining, amount, vessel.HighLaneLength)
		if !ok {
			return domain.ErrInvariantViolation
		}
		sailing.HighRemaining = next
	default:
		return domain.ErrInvariantViolation
	}
	return nil
}

func debit(remaining, amount float64) (float64, bool) {
	next := remaining - amount
	if next < -lengthTolerance {
		return remaining, false
	}
	if next < 0 {
		next = 0
	}
	return next, true
}

func credit(remaining, amount, capacity float64) (float64, bool) {
	next := remaining + amount
	if next > capacity+lengthTolerance {
		return remaining, false
	}
	if next > capacity {
		next = capacity
	}
	return next, true
}

// =============================================================================
// Occupancy
// =============================================================================

// Occupancy computes the integer percentage of the sailing's total lane
// capacity currently consumed, floored. A vessel with zero total capacity
// reports 0 rather than dividing by zero.
func Occupancy(sailing *domain.Sailing, vessel *domain.Vessel) int {
	total := vessel.TotalCapacity()
	if total == 0 {
		return 0
	}
	consumed := total - sailing.LowRemaining - sailing.HighRemaining
	return int(math.Floor(consumed / total * 100))
}
