package handler

import (
	"encoding/json"
	"net/http"

	"github.com/catalina-labs/usuarios-api/internal/api/middleware"
	"github.com/catalina-labs/usuarios-api/internal/app/service"
	"github.com/catalina-labs/usuarios-api/internal/common"

	"github.com/go-chi/chi/v5"
)

type ProfileHandler struct {
	userService *service.UserService
}

func NewProfileHandler(userService *service.UserService) *ProfileHandler {
	return &ProfileHandler{userService: userService}
}

func (h *ProfileHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.get)
	r.Patch("/", h.update)
	r.Post("/change-password", h.changePassword)
}

func (h *ProfileHandler) get(w http.ResponseWriter, r *http.Request) {
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

func (h *ProfileHandler) update(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Token de autenticación requerido")
		return
	}

	var req service.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Payload inválido")
		return
	}

	if err := h.userService.UpdateProfile(r.Context(), user.ID, req); err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Perfil actualizado",
	})
}

func (h *ProfileHandler) changePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Token de autenticación requerido")
		return
	}

	var req service.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Payload inválido")
		return
	}

	if err := h.userService.ChangePassword(r.Context(), user.ID, req); err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Contraseña actualizada",
	})
}
