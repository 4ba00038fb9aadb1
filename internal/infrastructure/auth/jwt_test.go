package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitchline/backoffice/internal/infrastructure/config"
)

func newTestService(expiration time.Duration) *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:     "test-secret-key-at-least-32-chars-long",
		Expiration: expiration,
		Issuer:     "backoffice-test",
	})
}

func TestJWTService_GenerateAndValidate(t *testing.T) {
	service := newTestService(time.Hour)
	userID := uuid.New()

	token, expiresAt, err := service.Generate(userID, "jsmith", RoleOfficeEmployee)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := service.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "jsmith", claims.Username)
	assert.Equal(t, RoleOfficeEmployee, claims.Role)
	assert.Equal(t, "backoffice-test", claims.Issuer)

	parsed, err := claims.GetUserUUID()
	require.NoError(t, err)
	assert.Equal(t, userID, parsed)
}

func TestJWTService_Generate_UnknownRole(t *testing.T) {
	service := newTestService(time.Hour)

	_, _, err := service.Generate(uuid.New(), "jsmith", Role("WAREHOUSE_ROBOT"))

	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestJWTService_Validate_Expired(t *testing.T) {
	service := newTestService(-time.Minute)

	token, _, err := service.Generate(uuid.New(), "jsmith", RoleAdmin)
	require.NoError(t, err)

	_, err = service.Validate(token)

	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTService_Validate_WrongSecret(t *testing.T) {
	service := newTestService(time.Hour)
	other := NewJWTService(config.JWTConfig{
		Secret:     "a-completely-different-32-char-secret!!",
		Expiration: time.Hour,
		Issuer:     "backoffice-test",
	})

	token, _, err := service.Generate(uuid.New(), "jsmith", RoleAdmin)
	require.NoError(t, err)

	_, err = other.Validate(token)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_Validate_Garbage(t *testing.T) {
	service := newTestService(time.Hour)

	_, err := service.Validate("not.a.token")

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRole_IsValid(t *testing.T) {
	assert.True(t, RoleAdmin.IsValid())
	assert.True(t, RoleSuperAdmin.IsValid())
	assert.True(t, RoleOfficeEmployee.IsValid())
	assert.False(t, Role("").IsValid())
	assert.False(t, Role("admin").IsValid())
}
