package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/catalina-labs/usuarios-api/internal/api/middleware"
	"github.com/catalina-labs/usuarios-api/internal/app/service"
	"github.com/catalina-labs/usuarios-api/internal/common"
	"github.com/catalina-labs/usuarios-api/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)
	// Logout extracts the token itself: a missing token is a 400, and
	// invalidating an already-dead token stays a success.
	r.Post("/logout", h.logout)
}

func (h *AuthHandler) RegisterProtectedRoutes(r chi.Router) {
	r.Get("/verify", h.verify)
	r.Get("/profile", h.profile)
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Payload inválido")
		return
	}

	resp, err := h.authService.Register(r.Context(), req)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, resp)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Payload inválido")
		return
	}

	resp, err := h.authService.Login(r.Context(), middleware.ClientIP(r), req)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.BearerToken(r)
	if err := h.authService.Logout(r.Context(), token); err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Logout exitoso",
	})
}

// verify reports the identity behind the presented token. Authenticator
// already resolved it, so reaching this handler means the token is live.
func (h *AuthHandler) verify(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Token de autenticación requerido")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Token válido",
		"user":    user.Public(),
	})
}

type profileView struct {
	model.PublicUser
	LastLogin  *time.Time `json:"last_login"`
	LastAccess *time.Time `json:"last_access"`
	IsActive   bool       `json:"is_active"`
}

func (h *AuthHandler) profile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Token de autenticación requerido")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user": profileView{
			PublicUser: user.Public(),
			LastLogin:  user.LastLogin,
			LastAccess: user.LastAccess,
			IsActive:   user.IsActive,
		},
	})
}
