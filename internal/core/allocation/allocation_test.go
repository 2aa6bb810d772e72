package allocation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidewater/ferryd/internal/core/domain"
)

// =============================================================================
// Test Helpers
// =============================================================================

func makeVehicle(length, height float64) domain.Vehicle {
	return domain.Vehicle{
		ID:           1,
		LicensePlate: "ABC 123",
		PhoneNumber:  "6045551234",
		Length:       length,
		Height:       height,
	}
}

// =============================================================================
// Decide Tests
// =============================================================================

func TestDecide_LowVehicleGoesLow(t *testing.T) {
	lane, err := Decide(makeVehicle(5, 1.5), 10, 20)
	require.NoError(t, err)
	assert.Equal(t, domain.LaneLow, lane)
}

func TestDecide_LowLanePreferredWhileSpaceSuffices(t *testing.T) {
	// Plenty of high-lane space must not pull a low vehicle out of the low lane.
	lane, err := Decide(makeVehicle(4, 2.0), 4.5, 100)
	require.NoError(t, err)
	assert.Equal(t, domain.LaneLow, lane)
}

func TestDecide_TallVehicleGoesHigh(t *testing.T) {
	lane, err := Decide(makeVehicle(5, 2.5), 10, 20)
	require.NoError(t, err)
	assert.Equal(t, domain.LaneHigh, lane)
}

func TestDecide_LowVehicleOverflowsToHigh(t *testing.T) {
	// Fits by height but not by low-lane length.
	lane, err := Decide(makeVehicle(8, 1.5), 5, 20)
	require.NoError(t, err)
	assert.Equal(t, domain.LaneHigh, lane)
}

func TestDecide_MarginCountsAgainstLowLane(t *testing.T) {
	// Vehicle length alone fits the low lane but the margin pushes it out.
	lane, err := Decide(makeVehicle(5, 1.5), 5.25, 20)
	require.NoError(t, err)
	assert.Equal(t, domain.LaneHigh, lane)
}

func TestDecide_ExactFitIncludingMargin(t *testing.T) {
	lane, err := Decide(makeVehicle(5, 1.5), 5.5, 20)
	require.NoError(t, err)
	assert.Equal(t, domain.LaneLow, lane)
}

func TestDecide_RejectedWhenNeitherLaneFits(t *testing.T) {
	_, err := Decide(makeVehicle(8, 2.5), 10, 8)
	assert.ErrorIs(t, err, domain.ErrInsufficientCapacity)
}

func TestDecide_TallVehicleRejectedDespiteLowSpace(t *testing.T) {
	// Height disqualifies the low lane no matter how much space it has.
	_, err := Decide(makeVehicle(3, 2.1), 100, 2)
	assert.ErrorIs(t, err, domain.ErrInsufficientCapacity)
}

func TestFootprint(t *testing.T) {
	assert.Equal(t, 5.5, Footprint(makeVehicle(5, 1.5)))
}
