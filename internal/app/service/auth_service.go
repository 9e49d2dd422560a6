package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"

	"github.com/catalina-labs/usuarios-api/internal/common"
	"github.com/catalina-labs/usuarios-api/internal/common/security"
	"github.com/catalina-labs/usuarios-api/internal/domain/model"
	"github.com/catalina-labs/usuarios-api/internal/domain/repository"

	"github.com/google/uuid"
)

type AuthService struct {
	userRepo          repository.UserRepository
	sessions          *SessionService
	throttle          *ThrottleService
	bcryptCost        int
	passwordMinLength int
}

func NewAuthService(
	userRepo repository.UserRepository,
	sessions *SessionService,
	throttle *ThrottleService,
	bcryptCost int,
	passwordMinLength int,
) *AuthService {
	return &AuthService{
		userRepo:          userRepo,
		sessions:          sessions,
		throttle:          throttle,
		bcryptCost:        bcryptCost,
		passwordMinLength: passwordMinLength,
	}
}

type RegisterRequest struct {
	Nombre   string `json:"nombre"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Edad     int    `json:"edad"`
	Rol      string `json:"rol"`
}

type RegisterResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Token   string           `json:"token"`
	User    model.PublicUser `json:"user"`
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	req.Nombre = strings.TrimSpace(req.Nombre)
	req.Email = strings.TrimSpace(req.Email)
	req.Rol = strings.TrimSpace(req.Rol)

	if missing := firstMissingField(req); missing != "" {
		return nil, fmt.Errorf("Campo requerido faltante: %s: %w", missing, common.ErrValidation)
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return nil, fmt.Errorf("Formato de email inválido: %w", common.ErrValidation)
	}
	if !model.IsValidRole(req.Rol) {
		return nil, fmt.Errorf("Rol desconocido: %s: %w", req.Rol, common.ErrValidation)
	}
	if ok, reason := security.ValidatePasswordStrength(req.Password, s.passwordMinLength); !ok {
		return nil, fmt.Errorf("%s: %w", reason, common.ErrValidation)
	}

	hashedPassword, err := security.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.NewString(),
		Nombre:       req.Nombre,
		Email:        req.Email,
		PasswordHash: hashedPassword,
		Rol:          req.Rol,
		Edad:         req.Edad,
		IsActive:     true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, fmt.Errorf("El email ya está registrado: %w", common.ErrConflict)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Printf("user registered: %s", user.Email)
	return &RegisterResponse{
		Success: true,
		Message: "Usuario registrado exitosamente",
		UserID:  user.ID,
	}, nil
}

// Login validates credentials for a client identified by clientKey (its
// network origin). The throttle gates the attempt before credentials are
// checked, and failures never reveal whether the account exists.
func (s *AuthService) Login(ctx context.Context, clientKey string, req LoginRequest) (*LoginResponse, error) {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, fmt.Errorf("Email y password son requeridos: %w", common.ErrValidation)
	}

	if err := s.throttle.CheckNotBlocked(ctx, clientKey); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	// Unknown email, inactive account and wrong password all take the same
	// failure path so responses stay uniform.
	if err != nil || !user.IsActive || !security.CheckPasswordHash(req.Password, user.PasswordHash) {
		if ferr := s.throttle.RecordFailure(ctx, clientKey); ferr != nil {
			if errors.Is(ferr, common.ErrRateLimited) {
				return nil, ferr
			}
			log.Printf("record login failure for client %s: %v", clientKey, ferr)
		}
		return nil, fmt.Errorf("Credenciales inválidas: %w", common.ErrUnauthorized)
	}

	if err := s.throttle.RecordSuccess(ctx, clientKey); err != nil {
		log.Printf("reset login attempts for client %s: %v", clientKey, err)
	}

	token, err := s.sessions.Issue(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	log.Printf("login ok: %s, token %s", user.Email, security.TruncateToken(token))
	return &LoginResponse{
		Success: true,
		Message: "Login exitoso",
		Token:   token,
		User:    user.Public(),
	}, nil
}

// Logout invalidates the presented token. A missing token is a client error;
// an unknown token is not.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("Token no proporcionado: %w", common.ErrBadRequest)
	}
	return s.sessions.Invalidate(ctx, token)
}

func firstMissingField(req RegisterRequest) string {
	switch {
	case req.Nombre == "":
		return "nombre"
	case req.Email == "":
		return "email"
	case req.Password == "":
		return "password"
	case req.Edad <= 0:
		return "edad"
	case req.Rol == "":
		return "rol"
	}
	return ""
}
