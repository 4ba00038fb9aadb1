package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitchline/backoffice/internal/infrastructure/auth"
	"github.com/stitchline/backoffice/internal/infrastructure/config"
)

func newTestJWTService(t *testing.T) *auth.JWTService {
	t.Helper()
	return auth.NewJWTService(config.JWTConfig{
		Secret:     "test-secret-key-at-least-32-chars-long",
		Expiration: time.Hour,
		Issuer:     "backoffice-test",
	})
}

func newAuthRouter(service *auth.JWTService, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	handlers := append([]gin.HandlerFunc{JWTAuthMiddleware(service)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetJWTUserID(c), "role": GetJWTRole(c)})
	})
	engine.GET("/protected", handlers...)
	engine.GET("/health", handlers...)
	return engine
}

func TestJWTAuthMiddleware_ValidToken(t *testing.T) {
	service := newTestJWTService(t)
	engine := newAuthRouter(service)
	userID := uuid.New()

	token, _, err := service.Generate(userID, "jsmith", auth.RoleOfficeEmployee)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+token)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID.String())
}

func TestJWTAuthMiddleware_MissingHeader(t *testing.T) {
	engine := newAuthRouter(newTestJWTService(t))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Missing authorization header")
}

func TestJWTAuthMiddleware_MalformedHeader(t *testing.T) {
	engine := newAuthRouter(newTestJWTService(t))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(AuthHeaderKey, "Basic dXNlcjpwYXNz")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthMiddleware_ExpiredToken(t *testing.T) {
	expired := auth.NewJWTService(config.JWTConfig{
		Secret:     "test-secret-key-at-least-32-chars-long",
		Expiration: -time.Minute,
		Issuer:     "backoffice-test",
	})
	engine := newAuthRouter(newTestJWTService(t))

	token, _, err := expired.Generate(uuid.New(), "jsmith", auth.RoleAdmin)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+token)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_TOKEN_EXPIRED")
}

func TestJWTAuthMiddleware_SkipPath(t *testing.T) {
	engine := newAuthRouter(newTestJWTService(t))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRoles_Allowed(t *testing.T) {
	service := newTestJWTService(t)
	engine := newAuthRouter(service, RequireRoles(auth.RoleAdmin, auth.RoleSuperAdmin))

	token, _, err := service.Generate(uuid.New(), "admin", auth.RoleAdmin)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+token)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRoles_Forbidden(t *testing.T) {
	service := newTestJWTService(t)
	engine := newAuthRouter(service, RequireRoles(auth.RoleAdmin, auth.RoleSuperAdmin))

	token, _, err := service.Generate(uuid.New(), "jsmith", auth.RoleOfficeEmployee)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+token)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_FORBIDDEN")
}

func TestRequireRoles_NoClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/admin", RequireRoles(auth.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
