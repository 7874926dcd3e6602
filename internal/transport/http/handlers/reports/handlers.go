package reportshandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"ptohub/internal/domain/reports"
	"ptohub/internal/transport/http/api"
	"ptohub/internal/transport/http/middleware"
)

type Handler struct {
	Reports *reports.Service
}

func NewHandler(service *reports.Service) *Handler {
	return &Handler{Reports: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/pto/calendar", h.handleCalendar)
	r.Get("/pto/calendar/export", h.handleCalendarExport)
}

func (h *Handler) handleCalendar(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", reqID)
		return
	}
	rows, err := h.Reports.Calendar(r.Context(), actor)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, rows, reqID)
}

func (h *Handler) handleCalendarExport(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", reqID)
		return
	}
	rows, err := h.Reports.Calendar(r.Context(), actor)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}

	switch r.URL.Query().Get("format") {
	case "pdf":
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="pto-calendar.pdf"`)
		if err := h.Reports.WriteCalendarPDF(w, rows); err != nil {
			api.Fail(w, http.StatusInternalServerError, "EXPORT_ERROR", "failed to render pdf", reqID)
		}
	case "", "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="pto-calendar.csv"`)
		if err := h.Reports.WriteCalendarCSV(w, rows); err != nil {
			api.Fail(w, http.StatusInternalServerError, "EXPORT_ERROR", "failed to render csv", reqID)
		}
	default:
		api.Fail(w, http.StatusBadRequest, "MISSING_PARAMETERS", "format must be csv or pdf", reqID)
	}
}
