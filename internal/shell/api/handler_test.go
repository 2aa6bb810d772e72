package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidewater/ferryd/internal/shell/booking"
	"github.com/tidewater/ferryd/internal/shell/reporting"
	"github.com/tidewater/ferryd/internal/shell/store"
)

// =============================================================================
// Test Helpers
// =============================================================================

func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	s, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		s.Close()
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(s, booking.NewService(s, logger), reporting.NewService(s, logger), logger)
	server := httptest.NewServer(handler.Routes())
	t.Cleanup(server.Close)
	return server
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() {
		resp.Body.Close()
	})
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func createVessel(t *testing.T, server *httptest.Server) VesselResponse {
	t.Helper()
	resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/vessels", CreateVesselRequest{
		Name:           "Coastal Runner",
		LowLaneLength:  10,
		HighLaneLength: 20,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[VesselResponse](t, resp)
}

func createSailing(t *testing.T, server *httptest.Server, vesselID int64) string {
	t.Helper()
	resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/sailings", CreateSailingRequest{
		VesselID: vesselID,
		Terminal: "TSA",
		Day:      14,
		Hour:     8,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	report := decode[SailingReportResponse](t, resp)
	return report.Sailing
}

func vehicleBody(plate string, length, height float64) VehicleRequest {
	return VehicleRequest{
		LicensePlate: plate,
		PhoneNumber:  "6045551234",
		Length:       length,
		Height:       height,
	}
}

// =============================================================================
// Health Tests
// =============================================================================

func TestHealthEndpoint(t *testing.T) {
	server := setupTestServer(t)

	resp := doJSON(t, http.MethodGet, server.URL+"/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	body := decode[HealthResponse](t, resp)
	assert.Equal(t, "healthy", body.Status)
}

func TestReadyEndpoint(t *testing.T) {
	server := setupTestServer(t)

	resp := doJSON(t, http.MethodGet, server.URL+"/ready", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[ReadyResponse](t, resp)
	assert.Equal(t, "ready", body.Status)
	assert.Equal(t, "ok", body.Checks["database"])
}

// =============================================================================
// Vessel Endpoint Tests
// =============================================================================

func TestCreateVessel(t *testing.T) {
	server := setupTestServer(t)

	vessel := createVessel(t, server)
	assert.NotZero(t, vessel.ID)
	assert.Equal(t, "Coastal Runner", vessel.Name)

	resp := doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/v1/vessels/%d", server.URL, vessel.ID), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateVessel_ValidationError(t *testing.T) {
	server := setupTestServer(t)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/vessels", CreateVesselRequest{
		Name:          "",
		LowLaneLength: 10,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[ErrorResponse](t, resp)
	assert.Equal(t, "validation_error", body.Code)
}

func TestCreateVessel_DuplicateName(t *testing.T) {
	server := setupTestServer(t)

	createVessel(t, server)
	resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/vessels", CreateVesselRequest{
		Name:           "Coastal Runner",
		LowLaneLength:  30,
		HighLaneLength: 40,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	body := decode[ErrorResponse](t, resp)
	assert.Equal(t, "already_exists", body.Code)
}

func TestGetVessel_NotFound(t *testing.T) {
	server := setupTestServer(t)

	resp := doJSON(t, http.MethodGet, server.URL+"/api/v1/vessels/404", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	body := decode[ErrorResponse](t, resp)
	assert.Equal(t, "not_found", body.Code)
}

func TestListVessels(t *testing.T) {
	server := setupTestServer(t)

	createVessel(t, server)

	resp := doJSON(t, http.MethodGet, server.URL+"/api/v1/vessels", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	vessels := decode[[]VesselResponse](t, resp)
	require.Len(t, vessels, 1)
}

// =============================================================================
// Sailing Endpoint Tests
// =============================================================================

func TestCreateSailing(t *testing.T) {
	server := setupTestServer(t)

	vessel := createVessel(t, server)
	key := createSailing(t, server, vessel.ID)
	assert.Equal(t, "TSA-14-08", key)

	resp := doJSON(t, http.MethodGet, server.URL+"/api/v1/sailings/"+key, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	report := decode[SailingReportResponse](t, resp)
	assert.Equal(t, 10.0, report.LowRemaining)
	assert.Equal(t, 20.0, report.HighRemaining)
	assert.Zero(t, report.VehicleCount)
}

func TestCreateSailing_UnknownVessel(t *testing.T) {
	server := setupTestServer(t)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/sailings", CreateSailingRequest{
		VesselID: 404,
		Terminal: "TSA",
		Day:      14,
		Hour:     8,
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateSailing_InvalidDeparture(t *testing.T) {
	server := setupTestServer(t)

	vessel := createVessel(t, server)
	resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/sailings", CreateSailingRequest{
		VesselID: vessel.ID,
		Terminal: "TSA",
		Day:      31,
		Hour:     8,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateSailing_DuplicateKey(t *testing.T) {
	server := setupTestServer(t)

	vessel := createVessel(t, server)
	createSailing(t, server, vessel.ID)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/sailings", CreateSailingRequest{
		VesselID: vessel.ID,
		Terminal: "TSA",
		Day:      14,
		Hour:     8,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestGetSailing_MalformedKey(t *testing.T) {
	server := setupTestServer(t)

	resp := doJSON(t, http.MethodGet, server.URL+"/api/v1/sailings/notakey", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[ErrorResponse](t, resp)
	assert.Equal(t, "validation_error", body.Code)
}

func TestListSailings_PagedWithTotal(t *testing.T) {
	server := setupTestServer(t)

	vessel := createVessel(t, server)
	for day := 1; day <= 3; day++ {
		resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/sailings", CreateSailingRequest{
			VesselID: vessel.ID,
			Terminal: "TSA",
			Day:      day,
			Hour:     8,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp := doJSON(t, http.MethodGet, server.URL+"/api/v1/sailings?count=2&offset=1", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[SailingReportListResponse](t, resp)
	assert.Equal(t, 3, body.Total)
	require.Len(t, body.Reports, 2)
	assert.Equal(t, "TSA-02-08", body.Reports[0].Sailing)
}

func TestDeleteSailing(t *testing.T) {
	server := setupTestServer(t)

	vessel := createVessel(t, server)
	key := createSailing(t, server, vessel.ID)

	resp := doJSON(t, http.MethodDelete, server.URL+"/api/v1/sailings/"+key, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, server.URL+"/api/v1/sailings/"+key, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// =============================================================================
// Reservation Endpoint Tests
// =============================================================================

func TestCreateReservation(t *testing.T) {
	server := setupTestServer(t)

	vessel := createVessel(t, server)
	key := createSailing(t, server, vessel.ID)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/sailings/"+key+"/reservations", vehicleBody("ABC 123", 5, 1.5))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	reservation := decode[ReservationResponse](t, resp)
	assert.Regexp(t, `^res_[0-9a-f]{8}$`, reservation.Reference)
	assert.Equal(t, key, reservation.Sailing)
	assert.Equal(t, "ABC 123", reservation.LicensePlate)
	assert.Equal(t, "low", reservation.Lane)
	assert.False(t, reservation.Boarded)

	report := decode[SailingReportResponse](t, doJSON(t, http.MethodGet, server.URL+"/api/v1/sailings/"+key, nil))
	assert.Equal(t, 4.5, report.LowRemaining)
	assert.Equal(t, 1, report.VehicleCount)
}

func TestCreateReservation_Duplicate(t *testing.T) {
	server := setupTestServer(t)

	vessel := createVessel(t, server)
	key := createSailing(t, server, vessel.ID)
	url := server.URL + "/api/v1/sailings/" + key + "/reservations"

	resp := doJSON(t, http.MethodPost, url, vehicleBody("ABC 123", 5, 1.5))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, url, vehicleBody("ABC 123", 5, 1.5))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	body := decode[ErrorResponse](t, resp)
	assert.Equal(t, "already_exists", body.Code)
}

func TestCreateReservation_InsufficientCapacity(t *testing.T) {
	server := setupTestServer(t)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/vessels", CreateVesselRequest{
		Name:           "Dinghy",
		LowLaneLength:  4,
		HighLaneLength: 4,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	vessel := decode[VesselResponse](t, resp)
	key := createSailing(t, server, vessel.ID)

	resp = doJSON(t, http.MethodPost, server.URL+"/api/v1/sailings/"+key+"/reservations", vehicleBody("ABC 123", 6, 1.5))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	body := decode[ErrorResponse](t, resp)
	assert.Equal(t, "insufficient_capacity", body.Code)
}

func TestCreateReservation_InvalidVehicle(t *testing.T) {
	server := setupTestServer(t)

	vessel := createVessel(t, server)
	key := createSailing(t, server, vessel.ID)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/sailings/"+key+"/reservations", vehicleBody("x", 5, 1.5))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[ErrorResponse](t, resp)
	assert.Equal(t, "validation_error", body.Code)
}

func TestCancelReservation(t *testing.T) {
	server := setupTestServer(t)

	vessel := createVessel(t, server)
	key := createSailing(t, server, vessel.ID)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/sailings/"+key+"/reservations", vehicleBody("ABC 123", 5, 1.5))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, http.MethodDelete, server.URL+"/api/v1/sailings/"+key+"/reservations/ABC 123", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	report := decode[SailingReportResponse](t, doJSON(t, http.MethodGet, server.URL+"/api/v1/sailings/"+key, nil))
	assert.Equal(t, 10.0, report.LowRemaining)
	assert.Zero(t, report.VehicleCount)
}

func TestCancelReservation_NotFound(t *testing.T) {
	server := setupTestServer(t)

	vessel := createVessel(t, server)
	key := createSailing(t, server, vessel.ID)

	resp := doJSON(t, http.MethodDelete, server.URL+"/api/v1/sailings/"+key+"/reservations/ZZZ 999", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// =============================================================================
// Boarding Endpoint Tests
// =============================================================================

func TestBoardReservation(t *testing.T) {
	server := setupTestServer(t)

	vessel := createVessel(t, server)
	key := createSailing(t, server, vessel.ID)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/sailings/"+key+"/reservations", vehicleBody("ABC 123", 5, 1.5))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, server.URL+"/api/v1/sailings/"+key+"/reservations/ABC 123/board", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	reservation := decode[ReservationResponse](t, resp)
	assert.True(t, reservation.Boarded)
	assert.Equal(t, int64(1400), reservation.AmountPaidCents)
}

func TestBoardReservation_Twice(t *testing.T) {
	server := setupTestServer(t)

	vessel := createVessel(t, server)
	key := createSailing(t, server, vessel.ID)
	base := server.URL + "/api/v1/sailings/" + key + "/reservations"

	resp := doJSON(t, http.MethodPost, base, vehicleBody("ABC 123", 5, 1.5))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = doJSON(t, http.MethodPost, base+"/ABC 123/board", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, base+"/ABC 123/board", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	body := decode[ErrorResponse](t, resp)
	assert.Equal(t, "already_boarded", body.Code)
}

func TestWalkUpBoard(t *testing.T) {
	server := setupTestServer(t)

	vessel := createVessel(t, server)
	key := createSailing(t, server, vessel.ID)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/sailings/"+key+"/board", vehicleBody("DEF 456", 8, 2.5))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	reservation := decode[ReservationResponse](t, resp)
	assert.Equal(t, "high", reservation.Lane)
	assert.True(t, reservation.Boarded)
	assert.Equal(t, int64(12000), reservation.AmountPaidCents)

	report := decode[SailingReportResponse](t, doJSON(t, http.MethodGet, server.URL+"/api/v1/sailings/"+key, nil))
	assert.Equal(t, 11.5, report.HighRemaining)
}
