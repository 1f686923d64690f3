package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService(accessTTL time.Duration) *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  accessTTL,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "storefront-test",
		MaxRefreshCount:        10,
	})
}

func jwtRouter(jwtService *auth.JWTService) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), JWTAuth(jwtService, nil))
	router.GET("/admin", func(c *gin.Context) {
		adminID, ok := GetAdminID(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"admin_id":     adminID.String(),
			"email":        GetJWTClaims(c).Email,
			"logged_admin": logger.GetAdminID(c.Request.Context()),
		})
	})
	return router
}

func TestJWTAuth_ValidToken(t *testing.T) {
	jwtService := newTestJWTService(15 * time.Minute)
	adminID := uuid.New()
	pair, err := jwtService.GenerateTokenPair(auth.Subject{AdminID: adminID, Email: "owner@example.com"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+pair.AccessToken)
	w := httptest.NewRecorder()
	jwtRouter(jwtService).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"admin_id":"`+adminID.String()+`"`)
	assert.Contains(t, w.Body.String(), `"email":"owner@example.com"`)
	assert.Contains(t, w.Body.String(), `"logged_admin":"`+adminID.String()+`"`)
}

func TestJWTAuth_Rejections(t *testing.T) {
	jwtService := newTestJWTService(15 * time.Minute)
	pair, err := jwtService.GenerateTokenPair(auth.Subject{AdminID: uuid.New()})
	require.NoError(t, err)

	expiredService := newTestJWTService(-time.Minute)
	expired, err := expiredService.GenerateTokenPair(auth.Subject{AdminID: uuid.New()})
	require.NoError(t, err)

	tests := []struct {
		name     string
		header   string
		wantCode string
	}{
		{"missing header", "", "UNAUTHORIZED"},
		{"not bearer", "Basic abc", "UNAUTHORIZED"},
		{"empty token", "Bearer ", "UNAUTHORIZED"},
		{"garbage token", "Bearer not-a-jwt", "TOKEN_INVALID"},
		{"refresh token", "Bearer " + pair.RefreshToken, "TOKEN_INVALID"},
		{"expired token", "Bearer " + expired.AccessToken, "TOKEN_EXPIRED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.header != "" {
				req.Header.Set(AuthHeaderKey, tt.header)
			}
			w := httptest.NewRecorder()
			jwtRouter(jwtService).ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), `"code":"`+tt.wantCode+`"`)
			assert.Contains(t, w.Body.String(), `"success":false`)
		})
	}
}

func TestGetAdminID_NotAuthenticated(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := GetAdminID(c)
	assert.False(t, ok)
	assert.Nil(t, GetJWTClaims(c))
}
