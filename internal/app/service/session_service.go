package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/catalina-labs/usuarios-api/internal/common"
	"github.com/catalina-labs/usuarios-api/internal/common/security"
	"github.com/catalina-labs/usuarios-api/internal/domain/model"
	"github.com/catalina-labs/usuarios-api/internal/domain/repository"
)

// SessionService issues and resolves opaque session tokens. A token lives
// inline on the user row, so a user has at most one live session: issuing a
// new token overwrites the previous one.
type SessionService struct {
	userRepo   repository.UserRepository
	tokenBytes int
}

func NewSessionService(userRepo repository.UserRepository, tokenBytes int) *SessionService {
	return &SessionService{userRepo: userRepo, tokenBytes: tokenBytes}
}

// Issue generates a fresh random token for the user, stores it (overwriting
// any prior token) and stamps last_login.
func (s *SessionService) Issue(ctx context.Context, userID string) (string, error) {
	token, err := security.GenerateSessionToken(s.tokenBytes)
	if err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	if err := s.userRepo.UpdateSessionToken(ctx, userID, token, time.Now()); err != nil {
		return "", fmt.Errorf("failed to store session token: %w", err)
	}
	return token, nil
}

// Resolve maps a presented token to its active, non-deleted owner. It returns
// (nil, nil) uniformly when the token is empty, unknown, or the owner is
// inactive or deleted, so callers cannot distinguish which condition failed.
// A real store failure is returned as an error.
func (s *SessionService) Resolve(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, nil
	}
	user, err := s.userRepo.FindBySessionToken(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to resolve session token: %w", err)
	}

	// Last access is advisory telemetry; a failed update must not fail the
	// request.
	if err := s.userRepo.TouchLastAccess(ctx, user.ID); err != nil {
		log.Printf("touch last access for user %s: %v", user.ID, err)
	}
	return user, nil
}

// Invalidate clears the stored token for whichever user currently holds it.
// Invalidating an unknown token is a no-op.
func (s *SessionService) Invalidate(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.userRepo.ClearSessionToken(ctx, token); err != nil {
		return fmt.Errorf("failed to invalidate session token: %w", err)
	}
	log.Printf("session invalidated for token %s", security.TruncateToken(token))
	return nil
}
