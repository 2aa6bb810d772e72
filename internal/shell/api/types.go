package api

import (
	"time"

	"github.com/tidewater/ferryd/internal/core/domain"
)

// =============================================================================
// Request Types
// =============================================================================

// CreateVesselRequest is the request body for creating a vessel.
type CreateVesselRequest struct {
	Name           string  `json:"name"`
	LowLaneLength  float64 `json:"low_lane_length"`
	HighLaneLength float64 `json:"high_lane_length"`
}

// CreateSailingRequest is the request body for creating a sailing.
type CreateSailingRequest struct {
	VesselID int64  `json:"vessel_id"`
	Terminal string `json:"terminal"`
	Day      int    `json:"day"`
	Hour     int    `json:"hour"`
}

// VehicleRequest carries the vehicle description for reservation and
// boarding requests. Phone, length and height are only consulted when the
// plate is unseen.
type VehicleRequest struct {
	LicensePlate string  `json:"license_plate"`
	PhoneNumber  string  `json:"phone_number,omitempty"`
	Length       float64 `json:"length,omitempty"`
	Height       float64 `json:"height,omitempty"`
}

// =============================================================================
// Response Types
// =============================================================================

// VesselResponse is the response for vessel operations.
type VesselResponse struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	LowLaneLength  float64 `json:"low_lane_length"`
	HighLaneLength float64 `json:"high_lane_length"`
}

// ReservationResponse is the response for reservation and boarding
// operations.
type ReservationResponse struct {
	Reference       string    `json:"reference"`
	Sailing         string    `json:"sailing"`
	LicensePlate    string    `json:"license_plate"`
	Lane            string    `json:"lane"`
	AmountPaidCents int64     `json:"amount_paid_cents"`
	Boarded         bool      `json:"boarded"`
	CreatedAt       time.Time `json:"created_at"`
}

// SailingReportResponse is the response for sailing report operations.
type SailingReportResponse struct {
	Sailing          string  `json:"sailing"`
	VesselName       string  `json:"vessel_name"`
	LowRemaining     float64 `json:"low_remaining"`
	HighRemaining    float64 `json:"high_remaining"`
	VehicleCount     int     `json:"vehicle_count"`
	OccupancyPercent int     `json:"occupancy_percent"`
}

// SailingReportListResponse is the response for listing sailing reports.
type SailingReportListResponse struct {
	Reports []SailingReportResponse `json:"reports"`
	Total   int                     `json:"total"`
}

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HealthResponse is the response for the health endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadyResponse is the response for the readiness endpoint.
type ReadyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// =============================================================================
// Converters
// =============================================================================

func vesselToResponse(v *domain.Vessel) VesselResponse {
	return VesselResponse{
		ID:             v.ID,
		Name:           v.Name,
		LowLaneLength:  v.LowLaneLength,
		HighLaneLength: v.HighLaneLength,
	}
}

func reservationToResponse(r *domain.Reservation, key domain.DepartureKey, licensePlate string) ReservationResponse {
	return ReservationResponse{
		Reference:       r.Reference,
		Sailing:         key.String(),
		LicensePlate:    licensePlate,
		Lane:            r.Lane().String(),
		AmountPaidCents: r.AmountPaidCents,
		Boarded:         r.Boarded(),
		CreatedAt:       r.CreatedAt,
	}
}

func reportToResponse(r domain.SailingReport) SailingReportResponse {
	return SailingReportResponse{
		Sailing:          r.Sailing.Key().String(),
		VesselName:       r.Vessel.Name,
		LowRemaining:     r.Sailing.LowRemaining,
		HighRemaining:    r.Sailing.HighRemaining,
		VehicleCount:     r.VehicleCount,
		OccupancyPercent: r.OccupancyPercent,
	}
}
