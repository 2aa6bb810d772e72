// Package api provides the HTTP surface consumed by the reservation desk and
// boarding gate clients.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tidewater/ferryd/internal/core/domain"
	"github.com/tidewater/ferryd/internal/shell/booking"
	"github.com/tidewater/ferryd/internal/shell/reporting"
	"github.com/tidewater/ferryd/internal/shell/store"
)

// =============================================================================
// Handler
// =============================================================================

// Handler provides HTTP handlers for the API.
type Handler struct {
	store     store.Store
	booking   *booking.Service
	reporting *reporting.Service
	logger    *slog.Logger
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, b *booking.Service, r *reporting.Service, l *slog.Logger) *Handler {
	if l == nil {
		l = slog.Default()
	}
	return &Handler{
		store:     s,
		booking:   b,
		reporting: r,
		logger:    l,
	}
}

// Routes returns the router with all routes configured.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(h.jsonContentType)

	// Health endpoints
	r.Get("/health", h.handleHealth)
	r.Get("/ready", h.handleReady)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/vessels", func(r chi.Router) {
			r.Post("/", h.handleCreateVessel)
			r.Get("/", h.handleListVessels)
			r.Get("/{id}", h.handleGetVessel)
		})

		r.Route("/sailings", func(r chi.Router) {
			r.Post("/", h.handleCreateSailing)
			r.Get("/", h.handleListSailingReports)
			r.Route("/{key}", func(r chi.Router) {
				r.Get("/", h.handleGetSailingReport)
				r.Delete("/", h.handleDeleteSailing)
				r.Post("/board", h.handleWalkUpBoard)
				r.Route("/reservations", func(r chi.Router) {
					r.Post("/", h.handleCreateReservation)
					r.Delete("/{plate}", h.handleCancelReservation)
					r.Post("/{plate}/board", h.handleBoard)
				})
			})
		})
	})

	return r
}

// =============================================================================
// Middleware
// =============================================================================

// jsonContentType sets Content-Type header to application/json.
func (h *Handler) jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// Health Handlers
// =============================================================================

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy"})
}

func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"database": "ok"}
	if _, err := h.store.CountSailings(r.Context()); err != nil {
		checks["database"] = "failed"
		h.writeJSON(w, http.StatusServiceUnavailable, ReadyResponse{
			Status: "not_ready",
			Checks: checks,
		})
		return
	}

	h.writeJSON(w, http.StatusOK, ReadyResponse{
		Status: "ready",
		Checks: checks,
	})
}

// =============================================================================
// Vessel Handlers
// =============================================================================

func (h *Handler) handleCreateVessel(w http.ResponseWriter, r *http.Request) {
	var req CreateVesselRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON", "validation_error")
		return
	}

	vessel, err := domain.NewVessel(req.Name, req.LowLaneLength, req.HighLaneLength)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error(), "validation_error")
		return
	}

	if err := h.store.CreateVessel(r.Context(), vessel); err != nil {
		if errors.Is(err, store.ErrDuplicateVessel) {
			h.writeError(w, http.StatusConflict, "vessel name already in use", "already_exists")
			return
		}
		h.logger.Error("failed to create vessel", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to create vessel", "internal_error")
		return
	}

	h.writeJSON(w, http.StatusCreated, vesselToResponse(vessel))
}

func (h *Handler) handleGetVessel(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid vessel id", "validation_error")
		return
	}

	vessel, err := h.store.GetVessel(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "vessel not found", "not_found")
			return
		}
		h.logger.Error("failed to get vessel", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to get vessel", "internal_error")
		return
	}

	h.writeJSON(w, http.StatusOK, vesselToResponse(vessel))
}

func (h *Handler) handleListVessels(w http.ResponseWriter, r *http.Request) {
	opts := listOptionsFromQuery(r)

	vessels, err := h.store.ListVessels(r.Context(), opts)
	if err != nil {
		h.logger.Error("failed to list vessels", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to list vessels", "internal_error")
		return
	}

	responses := make([]VesselResponse, 0, len(vessels))
	for i := range vessels {
		responses = append(responses, vesselToResponse(&vessels[i]))
	}
	h.writeJSON(w, http.StatusOK, responses)
}

// =============================================================================
// Sailing Handlers
// =============================================================================

func (h *Handler) handleCreateSailing(w http.ResponseWriter, r *http.Request) {
	var req CreateSailingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON", "validation_error")
		return
	}

	key, err := domain.NewDepartureKey(req.Terminal, req.Day, req.Hour)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error(), "validation_error")
		return
	}

	vessel, err := h.store.GetVessel(r.Context(), req.VesselID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "vessel not found", "not_found")
			return
		}
		h.logger.Error("failed to get vessel", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to get vessel", "internal_error")
		return
	}

	sailing, err := domain.NewSailing(vessel, key)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error(), "validation_error")
		return
	}

	if err := h.store.CreateSailing(r.Context(), sailing); err != nil {
		if errors.Is(err, store.ErrDuplicateSailing) {
			h.writeError(w, http.StatusConflict, "departure key already in use", "already_exists")
			return
		}
		h.logger.Error("failed to create sailing", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to create sailing", "internal_error")
		return
	}

	report, err := h.reporting.Get(r.Context(), key)
	if err != nil {
		h.logger.Error("failed to build sailing report", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to build sailing report", "internal_error")
		return
	}
	h.writeJSON(w, http.StatusCreated, reportToResponse(*report))
}

func (h *Handler) handleDeleteSailing(w http.ResponseWriter, r *http.Request) {
	key, ok := h.departureKey(w, r)
	if !ok {
		return
	}

	if err := h.booking.DeleteSailing(r.Context(), key); err != nil {
		h.writeServiceError(w, err, "failed to delete sailing")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Report Handlers
// =============================================================================

func (h *Handler) handleListSailingReports(w http.ResponseWriter, r *http.Request) {
	opts := listOptionsFromQuery(r)

	reports, total, err := h.reporting.List(r.Context(), opts.Limit, opts.Offset)
	if err != nil {
		h.logger.Error("failed to list sailing reports", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to list sailing reports", "internal_error")
		return
	}

	responses := make([]SailingReportResponse, 0, len(reports))
	for _, report := range reports {
		responses = append(responses, reportToResponse(report))
	}
	h.writeJSON(w, http.StatusOK, SailingReportListResponse{
		Reports: responses,
		Total:   total,
	})
}

func (h *Handler) handleGetSailingReport(w http.ResponseWriter, r *http.Request) {
	key, ok := h.departureKey(w, r)
	if !ok {
		return
	}

	report, err := h.reporting.Get(r.Context(), key)
	if err != nil {
		h.writeServiceError(w, err, "failed to get sailing report")
		return
	}
	h.writeJSON(w, http.StatusOK, reportToResponse(*report))
}

// =============================================================================
// Reservation Handlers
// =============================================================================

func (h *Handler) handleCreateReservation(w http.ResponseWriter, r *http.Request) {
	key, ok := h.departureKey(w, r)
	if !ok {
		return
	}

	var req VehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON", "validation_error")
		return
	}

	reservation, err := h.booking.CreateReservation(r.Context(), key, booking.VehicleDetails{
		LicensePlate: req.LicensePlate,
		PhoneNumber:  req.PhoneNumber,
		Length:       req.Length,
		Height:       req.Height,
	})
	if err != nil {
		h.writeServiceError(w, err, "failed to create reservation")
		return
	}

	h.writeJSON(w, http.StatusCreated, reservationToResponse(reservation, key, req.LicensePlate))
}

func (h *Handler) handleCancelReservation(w http.ResponseWriter, r *http.Request) {
	key, ok := h.departureKey(w, r)
	if !ok {
		return
	}
	plate := chi.URLParam(r, "plate")

	if err := h.booking.CancelReservation(r.Context(), key, plate); err != nil {
		h.writeServiceError(w, err, "failed to cancel reservation")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleBoard(w http.ResponseWriter, r *http.Request) {
	key, ok := h.departureKey(w, r)
	if !ok {
		return
	}
	plate := chi.URLParam(r, "plate")

	reservation, err := h.booking.Board(r.Context(), key, plate)
	if err != nil {
		h.writeServiceError(w, err, "failed to complete boarding")
		return
	}

	h.writeJSON(w, http.StatusOK, reservationToResponse(reservation, key, plate))
}

func (h *Handler) handleWalkUpBoard(w http.ResponseWriter, r *http.Request) {
	key, ok := h.departureKey(w, r)
	if !ok {
		return
	}

	var req VehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON", "validation_error")
		return
	}

	reservation, err := h.booking.WalkUpBoard(r.Context(), key, booking.VehicleDetails{
		LicensePlate: req.LicensePlate,
		PhoneNumber:  req.PhoneNumber,
		Length:       req.Length,
		Height:       req.Height,
	})
	if err != nil {
		h.writeServiceError(w, err, "failed to complete boarding")
		return
	}

	h.writeJSON(w, http.StatusOK, reservationToResponse(reservation, key, req.LicensePlate))
}

// =============================================================================
// Helpers
// =============================================================================

func (h *Handler) departureKey(w http.ResponseWriter, r *http.Request) (domain.DepartureKey, bool) {
	key, err := domain.ParseDepartureKey(chi.URLParam(r, "key"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "sailing key must match TTT-dd-hh", "validation_error")
		return domain.DepartureKey{}, false
	}
	return key, true
}

func listOptionsFromQuery(r *http.Request) store.ListOptions {
	opts := store.DefaultListOptions()
	if v := r.URL.Query().Get("count"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.Limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.Offset = n
		}
	}
	return opts.Normalize()
}

// writeServiceError maps booking/reporting errors to HTTP responses.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		h.writeError(w, http.StatusNotFound, err.Error(), "not_found")
	case errors.Is(err, domain.ErrAlreadyExists):
		h.writeError(w, http.StatusConflict, "reservation already exists for this sailing and vehicle", "already_exists")
	case errors.Is(err, domain.ErrInsufficientCapacity):
		h.writeError(w, http.StatusConflict, "no lane can fit this vehicle on this sailing", "insufficient_capacity")
	case errors.Is(err, domain.ErrAlreadyBoarded):
		h.writeError(w, http.StatusConflict, "boarding already completed for this reservation", "already_boarded")
	case errors.Is(err, domain.ErrInvariantViolation):
		h.logger.Error("ledger invariant violated", "error", err)
		h.writeError(w, http.StatusInternalServerError, "ledger invariant violated", "invariant_violation")
	case isValidationError(err):
		h.writeError(w, http.StatusBadRequest, err.Error(), "validation_error")
	default:
		h.logger.Error(fallback, "error", err)
		h.writeError(w, http.StatusInternalServerError, fallback, "internal_error")
	}
}

// isValidationError reports whether err is one of the domain input
// validation sentinels.
func isValidationError(err error) bool {
	for _, sentinel := range []error{
		domain.ErrInvalidVesselName,
		domain.ErrInvalidLaneLength,
		domain.ErrInvalidTerminal,
		domain.ErrInvalidDepartureDay,
		domain.ErrInvalidDepartureHour,
		domain.ErrInvalidDepartureKey,
		domain.ErrInvalidLicensePlate,
		domain.ErrInvalidPhoneNumber,
		domain.ErrInvalidVehicleLength,
		domain.ErrInvalidVehicleHeight,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode JSON", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message, code string) {
	h.writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
