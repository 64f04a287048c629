package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	t.Parallel()

	for _, valid := range []string{"admin", "athlete", "collaborator", "partner"} {
		role, ok := ParseRole(valid)
		require.True(t, ok, valid)
		assert.Equal(t, valid, role.String())
		assert.True(t, role.Valid())
	}

	for _, invalid := range []string{"", "Admin", "editor", "superuser"} {
		_, ok := ParseRole(invalid)
		assert.False(t, ok, invalid)
	}
}

func TestRolePermits(t *testing.T) {
	t.Parallel()

	// Admin passes every gate.
	for _, required := range []Role{RoleAdmin, RoleAthlete, RoleCollaborator, RolePartner} {
		assert.True(t, RoleAdmin.Permits(required), required)
	}

	assert.True(t, RoleAthlete.Permits(RoleAthlete))
	assert.False(t, RoleCollaborator.Permits(RoleAthlete))
	assert.False(t, RoleAthlete.Permits(RoleAdmin))
	assert.False(t, RolePartner.Permits(RoleCollaborator))
}
