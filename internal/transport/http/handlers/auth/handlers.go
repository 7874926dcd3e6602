package authhandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"ptohub/internal/domain/auth"
	"ptohub/internal/domain/directory"
	"ptohub/internal/transport/http/api"
	"ptohub/internal/transport/http/middleware"
)

type Handler struct {
	Directory *directory.Service
	JWTSecret string
	TokenTTL  time.Duration
}

func NewHandler(dir *directory.Service, jwtSecret string, tokenTTL time.Duration) *Handler {
	if tokenTTL <= 0 {
		tokenTTL = 12 * time.Hour
	}
	return &Handler{Directory: dir, JWTSecret: jwtSecret, TokenTTL: tokenTTL}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "MISSING_PARAMETERS", "invalid request payload", reqID)
		return
	}
	if payload.Email == "" || payload.Password == "" {
		api.Fail(w, http.StatusBadRequest, "MISSING_PARAMETERS", "email and password are required", reqID)
		return
	}

	user, err := h.Directory.FindByEmail(r.Context(), payload.Email)
	if errors.Is(err, directory.ErrNotFound) {
		api.Fail(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid credentials", reqID)
		return
	}
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	if err := auth.CheckPassword(user.PasswordHash, payload.Password); err != nil {
		api.Fail(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid credentials", reqID)
		return
	}

	token, err := auth.GenerateToken(h.JWTSecret, auth.Claims{UserID: user.ID, Email: user.Email, Role: user.Role}, h.TokenTTL)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}

	api.Success(w, map[string]any{
		"token": token,
		"user":  user.Public(),
	}, reqID)
}
