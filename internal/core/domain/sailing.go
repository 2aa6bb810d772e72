package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// =============================================================================
// Sailing Errors
// =============================================================================

var (
	ErrInvalidTerminal     = errors.New("terminal must be three uppercase letters")
	ErrInvalidDepartureDay = errors.New("departure day must be between 1 and 28")
	ErrInvalidDepartureHour = errors.New("departure hour must be between 0 and 23")
	ErrInvalidDepartureKey = errors.New("departure key must match TTT-dd-hh")
)

// =============================================================================
// Departure Key
// =============================================================================

var (
	terminalPattern     = regexp.MustCompile(`^[A-Z]{3}$`)
	departureKeyPattern = regexp.MustCompile(`^([A-Z]{3})-(\d{2})-(\d{2})$`)
)

// DepartureKey uniquely identifies a sailing by terminal, day and hour.
type DepartureKey struct {
	Terminal string `json:"terminal"`
	Day      int    `json:"day"`
	Hour     int    `json:"hour"`
}

// NewDepartureKey validates the parts of a departure key.
func NewDepartureKey(terminal string, day, hour int) (DepartureKey, error) {
	if !terminalPattern.MatchString(terminal) {
		return DepartureKey{}, ErrInvalidTerminal
	}
	if day < 1 || day > 28 {
		return DepartureKey{}, ErrInvalidDepartureDay
	}
	if hour < 0 || hour > 23 {
		return DepartureKey{}, ErrInvalidDepartureHour
	}
	return DepartureKey{Terminal: terminal, Day: day, Hour: hour}, nil
}

// ParseDepartureKey parses the "TTT-dd-hh" form used at every caller surface.
func ParseDepartureKey(s string) (DepartureKey, error) {
	m := departureKeyPattern.FindStringSubmatch(s)
	if m == nil {
		return DepartureKey{}, ErrInvalidDepartureKey
	}
	day, _ := strconv.Atoi(m[2])
	hour, _ := strconv.Atoi(m[3])
	return NewDepartureKey(m[1], day, hour)
}

// String renders the key in its canonical "TTT-dd-hh" form.
func (k DepartureKey) String() string {
	return fmt.Sprintf("%s-%02d-%02d", k.Terminal, k.Day, k.Hour)
}

// =============================================================================
// Sailing
// =============================================================================

// Sailing is one scheduled departure of a vessel. LowRemaining and
// HighRemaining are the ledger values: unreserved linear meters left in each
// lane, initialized to the vessel's design capacities and adjusted by
// reservation operations only.
type Sailing struct {
	ID            int64   `json:"id"`
	VesselID      int64   `json:"vessel_id"`
	Terminal      string  `json:"terminal"`
	Day           int     `json:"day"`
	Hour          int     `json:"hour"`
	LowRemaining  float64 `json:"low_remaining"`
	HighRemaining float64 `json:"high_remaining"`
}

// NewSailing creates a sailing for a vessel with both lanes fully available.
func NewSailing(vessel *Vessel, key DepartureKey) (*Sailing, error) {
	if vessel == nil {
		return nil, ErrNotFound
	}
	if _, err := NewDepartureKey(key.Terminal, key.Day, key.Hour); err != nil {
		return nil, err
	}
	return &Sailing{
		VesselID:      vessel.ID,
		Terminal:      key.Terminal,
		Day:           key.Day,
		Hour:          key.Hour,
		LowRemaining:  vessel.LowLaneLength,
		HighRemaining: vessel.HighLaneLength,
	}, nil
}

// Key returns the sailing's departure key.
func (s *Sailing) Key() DepartureKey {
	return DepartureKey{Terminal: s.Terminal, Day: s.Day, Hour: s.Hour}
}
