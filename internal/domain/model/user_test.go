package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleLevels(t *testing.T) {
	assert.Greater(t, RoleLevel(RoleAdministrador), RoleLevel(RoleUsuario))
	assert.Greater(t, RoleLevel(RoleUsuario), RoleLevel(RoleInvitado))
	assert.Equal(t, 0, RoleLevel("superuser"))
}

func TestIsValidRole(t *testing.T) {
	assert.True(t, IsValidRole(RoleAdministrador))
	assert.True(t, IsValidRole(RoleUsuario))
	assert.True(t, IsValidRole(RoleInvitado))
	assert.False(t, IsValidRole("admin"))
	assert.False(t, IsValidRole(""))
}

func TestAdminHasWildcardPermission(t *testing.T) {
	assert.Contains(t, Roles[RoleAdministrador].Permissions, "*")
}

func TestPublicProjectionHidesCredentials(t *testing.T) {
	token := "tok"
	u := &User{ID: "1", Nombre: "Ana", Email: "ana@x.com", PasswordHash: "hash",
		Rol: RoleUsuario, Edad: 30, SessionToken: &token}
	pub := u.Public()
	assert.Equal(t, "Ana", pub.Nombre)
	assert.Equal(t, 30, pub.Edad)
}
