package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAdminUser(t *testing.T) {
	u, err := NewAdminUser(" Owner@Shop.com ", "", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "owner@shop.com", u.Email)
	assert.Equal(t, "owner@shop.com", u.Name)
	assert.True(t, u.Active)
	assert.NotEqual(t, "correct horse", u.PasswordHash)
	assert.True(t, u.VerifyPassword("correct horse"))
	assert.False(t, u.VerifyPassword("wrong"))

	_, err = NewAdminUser("not-an-email", "", "correct horse")
	assert.Error(t, err)
	_, err = NewAdminUser("owner@shop.com", "", "short")
	assert.Error(t, err)
}

func TestAdminUser_ChangePassword(t *testing.T) {
	u, err := NewAdminUser("owner@shop.com", "Owner", "correct horse")
	require.NoError(t, err)

	assert.Error(t, u.ChangePassword("wrong", "battery staple"))
	require.NoError(t, u.ChangePassword("correct horse", "battery staple"))
	assert.True(t, u.VerifyPassword("battery staple"))

	u.RecordLogin()
	assert.NotNil(t, u.LastLoginAt)
	u.Deactivate()
	assert.False(t, u.Active)
}
