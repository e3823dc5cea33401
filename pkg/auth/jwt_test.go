package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicore/clinic-api/internal/model"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour, "clinic-test")

	token, err := svc.GenerateAccessToken(&model.User{
		ID:       42,
		Username: "jdoe",
		Role:     model.RoleDoctor,
	})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "jdoe", claims.Username)
	assert.Equal(t, model.RoleDoctor, claims.Role)
	assert.NotEmpty(t, claims.TokenID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, time.Minute)
}

func TestUniqueTokenIDs(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour, "clinic-test")
	user := &model.User{ID: 42, Username: "jdoe", Role: model.RolePatient}

	first, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)
	second, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)

	a, err := svc.ValidateToken(first)
	require.NoError(t, err)
	b, err := svc.ValidateToken(second)
	require.NoError(t, err)
	assert.NotEqual(t, a.TokenID, b.TokenID)
}

func TestExpiredToken(t *testing.T) {
	svc := NewJWTService("test-secret", -time.Minute, "clinic-test")

	token, err := svc.GenerateAccessToken(&model.User{ID: 42, Username: "jdoe", Role: model.RolePatient})
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestWrongSecret(t *testing.T) {
	issuer := NewJWTService("secret-a", time.Hour, "clinic-test")
	verifier := NewJWTService("secret-b", time.Hour, "clinic-test")

	token, err := issuer.GenerateAccessToken(&model.User{ID: 42, Username: "jdoe", Role: model.RolePatient})
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}
