package directoryhandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ptohub/internal/domain/auth"
	"ptohub/internal/domain/directory"
	"ptohub/internal/transport/http/api"
	"ptohub/internal/transport/http/middleware"
	"ptohub/internal/transport/http/shared"
)

type Handler struct {
	Directory *directory.Service
}

func NewHandler(dir *directory.Service) *Handler {
	return &Handler{Directory: dir}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Get("/me", h.handleMe)
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Patch("/{userID}", h.handleAssign)
		r.Get("/{userID}/reports", h.handleDirectReports)
	})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", reqID)
		return
	}
	user, err := h.Directory.FindByID(r.Context(), actor.ID)
	if errors.Is(err, directory.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "NOT_FOUND", "user not found", reqID)
		return
	}
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, user.Public(), reqID)
}

// handleList returns the directory. Admins see everyone; managers see
// themselves plus their direct reports; staff see only themselves.
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", reqID)
		return
	}

	users, err := h.Directory.List(r.Context())
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}

	visible := make([]directory.User, 0, len(users))
	for _, user := range users {
		switch {
		case actor.Role == auth.RoleAdmin:
			visible = append(visible, user.Public())
		case user.ID == actor.ID:
			visible = append(visible, user.Public())
		case actor.Role == auth.RoleManager && user.ManagerID == actor.ID:
			visible = append(visible, user.Public())
		}
	}
	api.Success(w, visible, reqID)
}

type createUserRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	ManagerID      string `json:"managerId"`
	EmploymentType string `json:"employmentType"`
	HireDate       string `json:"hireDate"`
	Password       string `json:"password"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, ok := middleware.GetActor(r.Context())
	if !ok || actor.Role != auth.RoleAdmin {
		api.Fail(w, http.StatusForbidden, "UNAUTHORIZED", "admin role required", reqID)
		return
	}

	var payload createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "MISSING_PARAMETERS", "invalid request payload", reqID)
		return
	}
	if payload.Name == "" || payload.Email == "" || payload.Password == "" {
		api.Fail(w, http.StatusBadRequest, "MISSING_PARAMETERS", "name, email and password are required", reqID)
		return
	}
	hireDate, err := shared.ParseDate(payload.HireDate)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "MISSING_PARAMETERS", "hireDate must be a valid date", reqID)
		return
	}

	user, err := h.Directory.Create(r.Context(), directory.CreateInput{
		Name:           payload.Name,
		Email:          payload.Email,
		Role:           payload.Role,
		ManagerID:      payload.ManagerID,
		EmploymentType: payload.EmploymentType,
		HireDate:       hireDate,
		Password:       payload.Password,
	})
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "MISSING_PARAMETERS", err.Error(), reqID)
		return
	}
	api.Created(w, user.Public(), reqID)
}

type assignRequest struct {
	Role      *string `json:"role"`
	ManagerID *string `json:"managerId"`
}

func (h *Handler) handleAssign(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, ok := middleware.GetActor(r.Context())
	if !ok || actor.Role != auth.RoleAdmin {
		api.Fail(w, http.StatusForbidden, "UNAUTHORIZED", "admin role required", reqID)
		return
	}

	var payload assignRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "MISSING_PARAMETERS", "invalid request payload", reqID)
		return
	}

	user, err := h.Directory.Assign(r.Context(), chi.URLParam(r, "userID"), payload.Role, payload.ManagerID)
	if errors.Is(err, directory.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "NOT_FOUND", "user not found", reqID)
		return
	}
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, user.Public(), reqID)
}

func (h *Handler) handleDirectReports(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", reqID)
		return
	}
	userID := chi.URLParam(r, "userID")
	if actor.Role != auth.RoleAdmin && actor.ID != userID {
		api.Fail(w, http.StatusForbidden, "UNAUTHORIZED", "not allowed", reqID)
		return
	}

	reports, err := h.Directory.DirectReports(r.Context(), userID)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	out := make([]directory.User, 0, len(reports))
	for _, report := range reports {
		out = append(out, report.Public())
	}
	api.Success(w, out, reqID)
}
