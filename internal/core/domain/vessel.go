package domain

import (
	"errors"
	"strings"
)

// =============================================================================
// Vessel Errors
// =============================================================================

var (
	ErrInvalidVesselName = errors.New("vessel name must not be empty")
	ErrInvalidLaneLength = errors.New("lane length must be non-negative")
)

// =============================================================================
// Vessel
// =============================================================================

// Vessel is a ferry with two parking lanes of different vertical clearance.
// The two lane lengths are design capacities in meters and are immutable
// once the vessel is created.
type Vessel struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	LowLaneLength  float64 `json:"low_lane_length"`
	HighLaneLength float64 `json:"high_lane_length"`
}

// NewVessel creates a vessel after validating its name and lane capacities.
func NewVessel(name string, lowLaneLength, highLaneLength float64) (*Vessel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidVesselName
	}
	if lowLaneLength < 0 || highLaneLength < 0 {
		return nil, ErrInvalidLaneLength
	}
	return &Vessel{
		Name:           name,
		LowLaneLength:  lowLaneLength,
		HighLaneLength: highLaneLength,
	}, nil
}

// TotalCapacity returns the combined design capacity of both lanes in meters.
func (v *Vessel) TotalCapacity() float64 {
	return v.LowLaneLength + v.HighLaneLength
}
