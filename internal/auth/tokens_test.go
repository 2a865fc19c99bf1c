package auth

import (
	"testing"
	"time"

	"warehouse-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEmployee() *models.Employee {
	return &models.Employee{
		ID:    "emp-1",
		Name:  "Ravi Kumar",
		Email: "ravi@example.com",
		Role:  models.RoleStaff,
	}
}

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	token, err := tm.Generate(testEmployee())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	actor, err := tm.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "emp-1", actor.ID)
	assert.Equal(t, "ravi@example.com", actor.Email)
	assert.Equal(t, models.RoleStaff, actor.Role)
	assert.Equal(t, "Ravi Kumar", actor.Name)
	assert.False(t, actor.IsAdmin())
}

func TestTokenManager_WrongSecret(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	other := NewTokenManager("different-secret", time.Hour)

	token, err := tm.Generate(testEmployee())
	require.NoError(t, err)

	_, err = other.Verify(token)
	assert.Error(t, err)
}

func TestTokenManager_Expired(t *testing.T) {
	tm := NewTokenManager("test-secret", -time.Minute)

	token, err := tm.Generate(testEmployee())
	require.NoError(t, err)

	_, err = tm.Verify(token)
	assert.Error(t, err)
}

func TestTokenManager_Garbage(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	_, err := tm.Verify("not-a-token")
	assert.Error(t, err)
}
