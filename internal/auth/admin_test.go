package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAdminGuard(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	g := NewAdminGuard(string(hash))

	assert.True(t, g.Enabled())
	assert.NoError(t, g.Check("s3cret"))
	assert.ErrorIs(t, g.Check(""), ErrTokenRequired)
	assert.ErrorIs(t, g.Check("guess"), ErrTokenInvalid)
}

func TestAdminGuardDisabled(t *testing.T) {
	g := NewAdminGuard("")
	assert.False(t, g.Enabled())
	assert.NoError(t, g.Check(""))

	var nilGuard *AdminGuard
	assert.NoError(t, nilGuard.Check("anything"))
}
