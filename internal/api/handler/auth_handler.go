package handler

import (
	"encoding/json"
	"net/http"

	"associados_api/internal/api/middleware"
	"associados_api/internal/app/service"
	"associados_api/internal/common"

	"github.com/go-chi/chi/v5"
)

type AuthHandler struct {
	authService   *service.AuthService
	authenticator *middleware.Authenticator
}

func NewAuthHandler(authService *service.AuthService, authenticator *middleware.Authenticator) *AuthHandler {
	return &AuthHandler{authService: authService, authenticator: authenticator}
}

func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)

	r.Group(func(protected chi.Router) {
		protected.Use(h.authenticator.Handler)
		protected.Post("/logout", h.logout)
		protected.Get("/user", h.currentUser)
	})
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, r, &common.RequestError{
			Status:  http.StatusBadRequest,
			Message: "Invalid request payload.",
		})
		return
	}

	resp, err := h.authService.Register(r.Context(), req)
	if err != nil {
		common.RespondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, resp)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, r, &common.RequestError{
			Status:  http.StatusBadRequest,
			Message: "Invalid request payload.",
		})
		return
	}

	resp, err := h.authService.Login(r.Context(), req)
	if err != nil {
		common.RespondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	jti, ok := middleware.GetTokenIDFromContext(r.Context())
	if !ok {
		common.RespondError(w, r, common.ErrUnauthorized)
		return
	}
	expiresAt, ok := middleware.GetTokenExpiryFromContext(r.Context())
	if !ok {
		common.RespondError(w, r, common.ErrUnauthorized)
		return
	}

	if err := h.authService.Logout(r.Context(), jti, expiresAt); err != nil {
		common.RespondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Successfully logged out",
	})
}

func (h *AuthHandler) currentUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondError(w, r, common.ErrUnauthorized)
		return
	}

	user, err := h.authService.CurrentUser(r.Context(), userID)
	if err != nil {
		common.RespondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}
