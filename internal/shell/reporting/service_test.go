package reporting

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidewater/ferryd/internal/core/domain"
	"github.com/tidewater/ferryd/internal/shell/store"
)

// =============================================================================
// Test Helpers
// =============================================================================

func setupTestService(t *testing.T) (*Service, store.Store) {
	t.Helper()
	s, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		s.Close()
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(s, logger), s
}

func seedVessel(t *testing.T, s store.Store, low, high float64) *domain.Vessel {
	t.Helper()
	vessel, err := domain.NewVessel("Coastal Runner", low, high)
	require.NoError(t, err)
	require.NoError(t, s.CreateVessel(context.Background(), vessel))
	return vessel
}

func seedSailing(t *testing.T, s store.Store, vessel *domain.Vessel, key domain.DepartureKey) *domain.Sailing {
	t.Helper()
	sailing, err := domain.NewSailing(vessel, key)
	require.NoError(t, err)
	require.NoError(t, s.CreateSailing(context.Background(), sailing))
	return sailing
}

func seedReservation(t *testing.T, s store.Store, sailing *domain.Sailing, plate string) {
	t.Helper()
	ctx := context.Background()
	vehicle, err := domain.NewVehicle(plate, "6045551234", 5, 1.5)
	require.NoError(t, err)
	require.NoError(t, s.CreateVehicle(ctx, vehicle))
	require.NoError(t, s.CreateReservation(ctx, domain.NewReservation(sailing.ID, vehicle.ID, domain.LaneLow)))
}

// =============================================================================
// List Tests
// =============================================================================

func TestList_Empty(t *testing.T) {
	svc, _ := setupTestService(t)

	reports, total, err := svc.List(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Empty(t, reports)
	assert.Zero(t, total)
}

func TestList_OrdersByDeparture(t *testing.T) {
	svc, s := setupTestService(t)
	vessel := seedVessel(t, s, 10, 20)

	seedSailing(t, s, vessel, domain.DepartureKey{Terminal: "TSA", Day: 14, Hour: 18})
	seedSailing(t, s, vessel, domain.DepartureKey{Terminal: "TSA", Day: 3, Hour: 8})
	seedSailing(t, s, vessel, domain.DepartureKey{Terminal: "SWB", Day: 14, Hour: 6})

	reports, total, err := svc.List(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, reports, 3)
	assert.Equal(t, "TSA-03-08", reports[0].Sailing.Key().String())
	assert.Equal(t, "SWB-14-06", reports[1].Sailing.Key().String())
	assert.Equal(t, "TSA-14-18", reports[2].Sailing.Key().String())
}

func TestList_PageSmallerThanTotal(t *testing.T) {
	svc, s := setupTestService(t)
	vessel := seedVessel(t, s, 10, 20)

	for day := 1; day <= 5; day++ {
		seedSailing(t, s, vessel, domain.DepartureKey{Terminal: "TSA", Day: day, Hour: 8})
	}

	reports, total, err := svc.List(context.Background(), 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, reports, 2)
	assert.Equal(t, 3, reports[0].Sailing.Day)
	assert.Equal(t, 4, reports[1].Sailing.Day)
}

func TestList_OffsetBeyondRows(t *testing.T) {
	svc, s := setupTestService(t)
	vessel := seedVessel(t, s, 10, 20)
	seedSailing(t, s, vessel, domain.DepartureKey{Terminal: "TSA", Day: 14, Hour: 8})

	reports, total, err := svc.List(context.Background(), 10, 50)
	require.NoError(t, err)
	assert.Empty(t, reports)
	assert.Equal(t, 1, total)
}

// =============================================================================
// Get Tests
// =============================================================================

func TestGet_ComputesOccupancy(t *testing.T) {
	svc, s := setupTestService(t)
	ctx := context.Background()
	vessel := seedVessel(t, s, 10, 20)
	key := domain.DepartureKey{Terminal: "TSA", Day: 14, Hour: 8}
	sailing := seedSailing(t, s, vessel, key)
	seedReservation(t, s, sailing, "ABC 123")

	// 5.5 m consumed out of 30 m floors to 18 percent.
	sailing.LowRemaining = 4.5
	require.NoError(t, s.UpdateSailingRemaining(ctx, sailing))

	report, err := svc.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 1, report.VehicleCount)
	assert.Equal(t, 18, report.OccupancyPercent)
	assert.Equal(t, "Coastal Runner", report.Vessel.Name)
}

func TestGet_EmptySailing(t *testing.T) {
	svc, s := setupTestService(t)
	vessel := seedVessel(t, s, 10, 20)
	key := domain.DepartureKey{Terminal: "TSA", Day: 14, Hour: 8}
	seedSailing(t, s, vessel, key)

	report, err := svc.Get(context.Background(), key)
	require.NoError(t, err)
	assert.Zero(t, report.VehicleCount)
	assert.Zero(t, report.OccupancyPercent)
}

func TestGet_NotFound(t *testing.T) {
	svc, _ := setupTestService(t)

	key := domain.DepartureKey{Terminal: "ZZZ", Day: 1, Hour: 1}
	_, err := svc.Get(context.Background(), key)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
