// Package adminhandler serves the admin-owned catalogs the workflow reads:
// holidays, blackout dates and the system configuration.
package adminhandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"ptohub/internal/domain/auth"
	"ptohub/internal/domain/calendar"
	"ptohub/internal/domain/settings"
	"ptohub/internal/transport/http/api"
	"ptohub/internal/transport/http/middleware"
	"ptohub/internal/transport/http/shared"
)

type Handler struct {
	Calendar *calendar.Service
	Settings *settings.Service
}

func NewHandler(cal *calendar.Service, cfg *settings.Service) *Handler {
	return &Handler{Calendar: cal, Settings: cfg}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/holidays", h.handleListHolidays)
	r.Post("/holidays", h.requireAdmin(h.handleCreateHoliday))
	r.Delete("/holidays/{holidayID}", h.requireAdmin(h.handleDeleteHoliday))
	r.Get("/blackouts", h.handleListBlackouts)
	r.Post("/blackouts", h.requireAdmin(h.handleCreateBlackout))
	r.Delete("/blackouts/{blackoutID}", h.requireAdmin(h.handleDeleteBlackout))
	r.Get("/admin/config", h.requireAdmin(h.handleGetConfig))
	r.Put("/admin/config", h.requireAdmin(h.handleUpdateConfig))
}

func (h *Handler) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.GetActor(r.Context())
		if !ok {
			api.Fail(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", middleware.GetRequestID(r.Context()))
			return
		}
		if actor.Role != auth.RoleAdmin {
			api.Fail(w, http.StatusForbidden, "UNAUTHORIZED", "admin role required", middleware.GetRequestID(r.Context()))
			return
		}
		next(w, r)
	}
}

func (h *Handler) handleListHolidays(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	if _, ok := middleware.GetActor(r.Context()); !ok {
		api.Fail(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", reqID)
		return
	}
	holidays, err := h.Calendar.ListHolidays(r.Context())
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, holidays, reqID)
}

type datedEntryPayload struct {
	Name    string `json:"name"`
	Date    string `json:"date"`
	EndDate string `json:"endDate"`
}

func (p datedEntryPayload) parse() (string, time.Time, *time.Time, error) {
	if p.Name == "" || p.Date == "" {
		return "", time.Time{}, nil, errors.New("name and date are required")
	}
	date, err := shared.ParseDate(p.Date)
	if err != nil || date.IsZero() {
		return "", time.Time{}, nil, errors.New("date must be a valid date")
	}
	var endDate *time.Time
	if p.EndDate != "" {
		parsed, err := shared.ParseDate(p.EndDate)
		if err != nil || parsed.Before(date) {
			return "", time.Time{}, nil, errors.New("endDate must be a valid date on or after date")
		}
		endDate = &parsed
	}
	return p.Name, date, endDate, nil
}

func (h *Handler) handleCreateHoliday(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload datedEntryPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "MISSING_PARAMETERS", "invalid request payload", reqID)
		return
	}
	name, date, endDate, err := payload.parse()
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "MISSING_PARAMETERS", err.Error(), reqID)
		return
	}
	holiday, err := h.Calendar.CreateHoliday(r.Context(), name, date, endDate)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Created(w, holiday, reqID)
}

func (h *Handler) handleDeleteHoliday(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	err := h.Calendar.DeleteHoliday(r.Context(), chi.URLParam(r, "holidayID"))
	if errors.Is(err, calendar.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "NOT_FOUND", "holiday not found", reqID)
		return
	}
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, reqID)
}

func (h *Handler) handleListBlackouts(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	if _, ok := middleware.GetActor(r.Context()); !ok {
		api.Fail(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", reqID)
		return
	}
	blackouts, err := h.Calendar.ListBlackouts(r.Context())
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, blackouts, reqID)
}

func (h *Handler) handleCreateBlackout(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload datedEntryPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "MISSING_PARAMETERS", "invalid request payload", reqID)
		return
	}
	name, date, endDate, err := payload.parse()
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "MISSING_PARAMETERS", err.Error(), reqID)
		return
	}
	blackout, err := h.Calendar.CreateBlackout(r.Context(), name, date, endDate)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Created(w, blackout, reqID)
}

func (h *Handler) handleDeleteBlackout(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	err := h.Calendar.DeleteBlackout(r.Context(), chi.URLParam(r, "blackoutID"))
	if errors.Is(err, calendar.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "NOT_FOUND", "blackout not found", reqID)
		return
	}
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, reqID)
}

func (h *Handler) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	cfg, err := h.Settings.Get(r.Context())
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, cfg, reqID)
}

func (h *Handler) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload settings.SystemConfig
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "MISSING_PARAMETERS", "invalid request payload", reqID)
		return
	}
	if payload.DefaultFullTimeDays <= 0 || payload.DefaultPartTimeDays < 0 {
		api.Fail(w, http.StatusBadRequest, "MISSING_PARAMETERS", "defaultFullTimeDays must be positive", reqID)
		return
	}
	cfg, err := h.Settings.Update(r.Context(), payload)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, cfg, reqID)
}
