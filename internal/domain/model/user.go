package model

import (
	"time"
)

const (
	RoleAdministrador = "administrador"
	RoleUsuario       = "usuario"
	RoleInvitado      = "invitado"
)

// RoleSpec describes a role's privilege level and capability set. The "*"
// permission grants full access.
type RoleSpec struct {
	Level       int      `json:"level"`
	Permissions []string `json:"permissions"`
}

// Roles is the static role catalog. Levels define a total order used for
// "at least as privileged as" checks.
var Roles = map[string]RoleSpec{
	RoleAdministrador: {Level: 100, Permissions: []string{"*"}},
	RoleUsuario:       {Level: 50, Permissions: []string{"read", "write_own"}},
	RoleInvitado:      {Level: 10, Permissions: []string{"read"}},
}

// RoleLevel returns the privilege level for a role name, 0 for unknown roles.
func RoleLevel(rol string) int {
	return Roles[rol].Level
}

// IsValidRole reports whether rol names one of the catalog roles.
func IsValidRole(rol string) bool {
	_, ok := Roles[rol]
	return ok
}

type User struct {
	ID           string     `json:"id"`
	Nombre       string     `json:"nombre"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // Not exposed
	Rol          string     `json:"rol"`
	Edad         int        `json:"edad"`
	IsActive     bool       `json:"is_active"`
	Deleted      bool       `json:"-"`
	DeletedAt    *time.Time `json:"-"`
	SessionToken *string    `json:"-"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	LastAccess   *time.Time `json:"last_access,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// PublicUser is the projection returned by login/verify/profile endpoints.
type PublicUser struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
	Email  string `json:"email"`
	Rol    string `json:"rol"`
	Edad   int    `json:"edad"`
}

func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Nombre: u.Nombre, Email: u.Email, Rol: u.Rol, Edad: u.Edad}
}
