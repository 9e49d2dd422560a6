package service

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/catalina-labs/usuarios-api/internal/domain/model"
	"github.com/catalina-labs/usuarios-api/internal/domain/repository"
	"github.com/catalina-labs/usuarios-api/internal/platform/config"
)

// StatsService exposes basic operational stats and the effective security
// policy (admin only). It never exposes secrets.
type StatsService struct {
	userRepo  repository.UserRepository
	startedAt time.Time
}

func NewStatsService(userRepo repository.UserRepository) *StatsService {
	return &StatsService{userRepo: userRepo, startedAt: time.Now()}
}

type StatsSnapshot struct {
	UptimeSeconds float64        `json:"uptime_seconds"`
	MemoryMB      float64        `json:"memory_MB"`
	TotalUsers    int            `json:"total_users"`
	ActiveUsers   int            `json:"active_users"`
	UsersByRole   map[string]int `json:"users_by_role"`
	Fecha         string         `json:"fecha"`
}

func (s *StatsService) Snapshot(ctx context.Context) (*StatsSnapshot, error) {
	total, active, byRole, err := s.userRepo.CountByRole(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return &StatsSnapshot{
		UptimeSeconds: time.Since(s.startedAt).Seconds(),
		MemoryMB:      float64(mem.Alloc) / 1024 / 1024,
		TotalUsers:    total,
		ActiveUsers:   active,
		UsersByRole:   byRole,
		Fecha:         time.Now().Format("2006-01-02 15:04:05"),
	}, nil
}

// AuthPolicy is the admin-readable view of the security configuration.
type AuthPolicy struct {
	PasswordMinLength  int                       `json:"password_min_length"`
	BcryptCost         int                       `json:"bcrypt_cost"`
	SessionTokenBytes  int                       `json:"session_token_bytes"`
	MaxLoginAttempts   int                       `json:"max_login_attempts"`
	LoginWindowSeconds int                       `json:"login_window_seconds"`
	Roles              map[string]model.RoleSpec `json:"roles"`
}

func (s *StatsService) AuthPolicy() AuthPolicy {
	cfg := config.AppConfig
	return AuthPolicy{
		PasswordMinLength:  cfg.PasswordMinLength,
		BcryptCost:         cfg.BcryptCost,
		SessionTokenBytes:  cfg.TokenLengthBytes,
		MaxLoginAttempts:   cfg.MaxLoginAttempts,
		LoginWindowSeconds: cfg.LoginWindowSeconds,
		Roles:              model.Roles,
	}
}
