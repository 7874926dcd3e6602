package ptohandler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"ptohub/internal/domain/pto"
	"ptohub/internal/transport/http/api"
	"ptohub/internal/transport/http/middleware"
	"ptohub/internal/transport/http/shared"
)

type Handler struct {
	Service *pto.Service
}

func NewHandler(service *pto.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/pto", func(r chi.Router) {
		r.Get("/balance", h.handleBalance)
		r.Get("/requests", h.handleListRequests)
		r.Post("/requests", h.handleCreateRequest)
		r.Get("/requests/{requestID}", h.handleGetRequest)
		r.Patch("/requests/{requestID}", h.handleUpdateRequest)
		r.Post("/requests/{requestID}/submit", h.handleSubmitRequest)
		r.Post("/requests/{requestID}/approve", h.handleApproveRequest)
		r.Post("/requests/{requestID}/deny", h.handleDenyRequest)
		r.Post("/requests/{requestID}/request-changes", h.handleRequestChanges)
		r.Post("/requests/{requestID}/cancel", h.handleCancelRequest)
	})
}

func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (pto.Actor, bool) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", middleware.GetRequestID(r.Context()))
		return pto.Actor{}, false
	}
	return actor, true
}

func (h *Handler) handleBalance(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	year := 0
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "MISSING_PARAMETERS", "year must be a number", reqID)
			return
		}
		year = parsed
	}

	result, err := h.Service.Balance(r.Context(), actor, r.URL.Query().Get("userId"), year)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, map[string]any{
		"userId":        result.UserID,
		"year":          result.Year,
		"totalDays":     result.TotalDays,
		"usedDays":      result.UsedDays,
		"pendingDays":   result.PendingDays,
		"availableDays": result.AvailableDays(),
	}, reqID)
}

type createRequestPayload struct {
	Type           string `json:"type"`
	StartDate      string `json:"startDate"`
	EndDate        string `json:"endDate"`
	IsHalfDayStart bool   `json:"isHalfDayStart"`
	IsHalfDayEnd   bool   `json:"isHalfDayEnd"`
	Reason         string `json:"reason"`
	Status         string `json:"status"`
}

func (h *Handler) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var payload createRequestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "MISSING_PARAMETERS", "invalid request payload", reqID)
		return
	}
	startDate, err := shared.ParseDate(payload.StartDate)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "MISSING_PARAMETERS", "startDate must be a valid date", reqID)
		return
	}
	endDate, err := shared.ParseDate(payload.EndDate)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "MISSING_PARAMETERS", "endDate must be a valid date", reqID)
		return
	}

	created, err := h.Service.Create(r.Context(), actor, pto.CreateInput{
		Type:           payload.Type,
		StartDate:      startDate,
		EndDate:        endDate,
		IsHalfDayStart: payload.IsHalfDayStart,
		IsHalfDayEnd:   payload.IsHalfDayEnd,
		Reason:         payload.Reason,
		Status:         payload.Status,
	})
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Created(w, created, reqID)
}

func (h *Handler) handleListRequests(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	filter := pto.Filter{
		UserID: query.Get("userId"),
		Status: query.Get("status"),
	}
	if raw := query.Get("startDate"); raw != "" {
		parsed, err := shared.ParseDate(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "MISSING_PARAMETERS", "startDate must be a valid date", reqID)
			return
		}
		filter.From = parsed
	}
	if raw := query.Get("endDate"); raw != "" {
		parsed, err := shared.ParseDate(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "MISSING_PARAMETERS", "endDate must be a valid date", reqID)
			return
		}
		filter.To = parsed
	}

	requests, err := h.Service.List(r.Context(), actor, filter)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, requests, reqID)
}

func (h *Handler) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	req, err := h.Service.Get(r.Context(), actor, chi.URLParam(r, "requestID"))
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, req, reqID)
}

type updateRequestPayload struct {
	Type            *string `json:"type"`
	StartDate       *string `json:"startDate"`
	EndDate         *string `json:"endDate"`
	IsHalfDayStart  *bool   `json:"isHalfDayStart"`
	IsHalfDayEnd    *bool   `json:"isHalfDayEnd"`
	Reason          *string `json:"reason"`
	EmployeeComment *string `json:"employeeComment"`
}

func (h *Handler) handleUpdateRequest(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var payload updateRequestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "MISSING_PARAMETERS", "invalid request payload", reqID)
		return
	}
	input := pto.UpdateInput{
		Type:            payload.Type,
		IsHalfDayStart:  payload.IsHalfDayStart,
		IsHalfDayEnd:    payload.IsHalfDayEnd,
		Reason:          payload.Reason,
		EmployeeComment: payload.EmployeeComment,
	}
	if payload.StartDate != nil {
		parsed, err := shared.ParseDate(*payload.StartDate)
		if err != nil || parsed.IsZero() {
			api.Fail(w, http.StatusBadRequest, "MISSING_PARAMETERS", "startDate must be a valid date", reqID)
			return
		}
		input.StartDate = &parsed
	}
	if payload.EndDate != nil {
		parsed, err := shared.ParseDate(*payload.EndDate)
		if err != nil || parsed.IsZero() {
			api.Fail(w, http.StatusBadRequest, "MISSING_PARAMETERS", "endDate must be a valid date", reqID)
			return
		}
		input.EndDate = &parsed
	}

	updated, err := h.Service.Update(r.Context(), actor, chi.URLParam(r, "requestID"), input)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, updated, reqID)
}

type commentPayload struct {
	Comment string `json:"comment"`
}

func decodeComment(r *http.Request) string {
	var payload commentPayload
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&payload)
	}
	return payload.Comment
}

func (h *Handler) handleSubmitRequest(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(actor pto.Actor, requestID string) (pto.Request, error) {
		return h.Service.Submit(r.Context(), actor, requestID)
	})
}

func (h *Handler) handleApproveRequest(w http.ResponseWriter, r *http.Request) {
	comment := decodeComment(r)
	h.transition(w, r, func(actor pto.Actor, requestID string) (pto.Request, error) {
		return h.Service.Approve(r.Context(), actor, requestID, comment)
	})
}

func (h *Handler) handleDenyRequest(w http.ResponseWriter, r *http.Request) {
	comment := decodeComment(r)
	h.transition(w, r, func(actor pto.Actor, requestID string) (pto.Request, error) {
		return h.Service.Deny(r.Context(), actor, requestID, comment)
	})
}

func (h *Handler) handleRequestChanges(w http.ResponseWriter, r *http.Request) {
	comment := decodeComment(r)
	h.transition(w, r, func(actor pto.Actor, requestID string) (pto.Request, error) {
		return h.Service.RequestChanges(r.Context(), actor, requestID, comment)
	})
}

func (h *Handler) handleCancelRequest(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(actor pto.Actor, requestID string) (pto.Request, error) {
		return h.Service.Cancel(r.Context(), actor, requestID)
	})
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, apply func(pto.Actor, string) (pto.Request, error)) {
	reqID := middleware.GetRequestID(r.Context())
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	updated, err := apply(actor, chi.URLParam(r, "requestID"))
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, updated, reqID)
}
