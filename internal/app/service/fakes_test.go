package service

import (
	"context"
	"sync"
	"time"

	"github.com/catalina-labs/usuarios-api/internal/common"
	"github.com/catalina-labs/usuarios-api/internal/domain/model"
)

// fakeUserRepo is an in-memory UserRepository honoring the soft-delete and
// active-owner filters the real pg repository applies.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User // by id
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email && !u.Deleted {
			return common.ErrConflict
		}
	}
	cp := *user
	now := time.Now()
	cp.CreatedAt, cp.UpdatedAt = now, now
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email && !u.Deleted {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok && !u.Deleted {
		cp := *u
		return &cp, nil
	}
	return nil, common.ErrNotFound
}

func (f *fakeUserRepo) FindBySessionToken(ctx context.Context, token string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.SessionToken != nil && *u.SessionToken == token && u.IsActive && !u.Deleted {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeUserRepo) GetAll(ctx context.Context) ([]*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.User
	for _, u := range f.users {
		if !u.Deleted {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, id string, nombre *string, edad *int, rol *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok || u.Deleted {
		return common.ErrNotFound
	}
	if nombre != nil {
		u.Nombre = *nombre
	}
	if edad != nil {
		u.Edad = *edad
	}
	if rol != nil {
		u.Rol = *rol
	}
	u.UpdatedAt = time.Now()
	return nil
}

func (f *fakeUserRepo) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok || u.Deleted {
		return common.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (f *fakeUserRepo) UpdateSessionToken(ctx context.Context, id string, token string, lastLogin time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok || u.Deleted {
		return common.ErrNotFound
	}
	u.SessionToken = &token
	u.LastLogin = &lastLogin
	return nil
}

func (f *fakeUserRepo) ClearSessionToken(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.SessionToken != nil && *u.SessionToken == token {
			u.SessionToken = nil
		}
	}
	return nil
}

func (f *fakeUserRepo) TouchLastAccess(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		now := time.Now()
		u.LastAccess = &now
	}
	return nil
}

func (f *fakeUserRepo) SoftDelete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok || u.Deleted {
		return common.ErrNotFound
	}
	now := time.Now()
	u.Deleted = true
	u.DeletedAt = &now
	u.SessionToken = nil
	return nil
}

func (f *fakeUserRepo) CountByRole(ctx context.Context) (int, int, map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	total, active := 0, 0
	byRole := make(map[string]int)
	for _, u := range f.users {
		if u.Deleted {
			continue
		}
		total++
		if u.IsActive {
			active++
		}
		byRole[u.Rol]++
	}
	return total, active, byRole, nil
}
