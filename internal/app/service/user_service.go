package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/catalina-labs/usuarios-api/internal/common"
	"github.com/catalina-labs/usuarios-api/internal/common/security"
	"github.com/catalina-labs/usuarios-api/internal/domain/model"
	"github.com/catalina-labs/usuarios-api/internal/domain/repository"
)

// nombreRe accepts Unicode letters and spaces only.
var nombreRe = regexp.MustCompile(`^[\p{L}\s]+$`)

// UserService covers the directory operations: listing, lookup, profile and
// admin mutations, soft deletion.
type UserService struct {
	userRepo          repository.UserRepository
	bcryptCost        int
	passwordMinLength int
}

func NewUserService(userRepo repository.UserRepository, bcryptCost, passwordMinLength int) *UserService {
	return &UserService{userRepo: userRepo, bcryptCost: bcryptCost, passwordMinLength: passwordMinLength}
}

type UpdateUserRequest struct {
	Nombre *string `json:"nombre"`
	Edad   *int    `json:"edad"`
	Rol    *string `json:"rol"`
}

type UpdateProfileRequest struct {
	Nombre *string `json:"nombre"`
	Edad   *int    `json:"edad"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (s *UserService) GetAll(ctx context.Context) ([]model.PublicUser, error) {
	users, err := s.userRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	out := make([]model.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("Usuario no encontrado: %w", common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// Update applies an admin mutation to another user's record.
func (s *UserService) Update(ctx context.Context, id string, req UpdateUserRequest) error {
	if req.Nombre == nil && req.Edad == nil && req.Rol == nil {
		return fmt.Errorf("Nada que actualizar: %w", common.ErrValidation)
	}
	if req.Nombre != nil {
		trimmed := strings.TrimSpace(*req.Nombre)
		if trimmed == "" || !nombreRe.MatchString(trimmed) {
			return fmt.Errorf("Nombre inválido: %w", common.ErrValidation)
		}
		req.Nombre = &trimmed
	}
	if req.Rol != nil && !model.IsValidRole(*req.Rol) {
		return fmt.Errorf("Rol desconocido: %s: %w", *req.Rol, common.ErrValidation)
	}
	if err := s.userRepo.Update(ctx, id, req.Nombre, req.Edad, req.Rol); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("Usuario no encontrado: %w", common.ErrNotFound)
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// UpdateProfile lets an authenticated user change their own nombre/edad.
// Role changes stay admin-only.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) error {
	return s.Update(ctx, userID, UpdateUserRequest{Nombre: req.Nombre, Edad: req.Edad})
}

// ChangePassword verifies the current password before storing a new hash.
func (s *UserService) ChangePassword(ctx context.Context, userID string, req ChangePasswordRequest) error {
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return fmt.Errorf("current_password y new_password son requeridos: %w", common.ErrValidation)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("Usuario no encontrado: %w", common.ErrNotFound)
		}
		return fmt.Errorf("failed to find user: %w", err)
	}
	if !security.CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
		return fmt.Errorf("Contraseña actual incorrecta: %w", common.ErrUnauthorized)
	}
	if ok, reason := security.ValidatePasswordStrength(req.NewPassword, s.passwordMinLength); !ok {
		return fmt.Errorf("%s: %w", reason, common.ErrValidation)
	}

	hash, err := security.HashPassword(req.NewPassword, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// Delete soft-deletes the user: the row survives but is excluded from all
// reads and authentication.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("Falta el campo 'id': %w", common.ErrValidation)
	}
	if err := s.userRepo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("Usuario no encontrado: %w", common.ErrNotFound)
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
