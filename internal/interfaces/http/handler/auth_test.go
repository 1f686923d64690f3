package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	identityapp "github.com/storefront/backend/internal/application/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthHandler(t *testing.T) {
	srv := newTestServer(t)

	t.Run("me", func(t *testing.T) {
		var me identityapp.AdminResponse
		srv.mustDo(t, http.MethodGet, "/api/v1/auth/me", nil, http.StatusOK, &me)
		assert.Equal(t, testAdminEmail, me.Email)
		assert.NotNil(t, me.LastLoginAt)
	})

	t.Run("wrong password", func(t *testing.T) {
		w := srv.do(t, http.MethodPost, "/api/v1/auth/login", gin.H{
			"email":    testAdminEmail,
			"password": "wrong-password",
		})
		require.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "INVALID_CREDENTIALS", decodeError(t, w).Code)
	})

	t.Run("refresh", func(t *testing.T) {
		var login identityapp.TokenResponse
		srv.mustDo(t, http.MethodPost, "/api/v1/auth/login", gin.H{
			"email":    testAdminEmail,
			"password": testAdminPassword,
		}, http.StatusOK, &login)

		var refreshed identityapp.TokenResponse
		srv.mustDo(t, http.MethodPost, "/api/v1/auth/refresh", gin.H{
			"refresh_token": login.RefreshToken,
		}, http.StatusOK, &refreshed)
		assert.NotEmpty(t, refreshed.AccessToken)

		w := srv.do(t, http.MethodPost, "/api/v1/auth/refresh", gin.H{"refresh_token": login.AccessToken})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("change password", func(t *testing.T) {
		w := srv.do(t, http.MethodPut, "/api/v1/auth/password", gin.H{
			"old_password": testAdminPassword,
			"new_password": "battery-staple",
		})
		require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

		srv.mustDo(t, http.MethodPost, "/api/v1/auth/login", gin.H{
			"email":    testAdminEmail,
			"password": "battery-staple",
		}, http.StatusOK, nil)
	})

	t.Run("admin routes need a token", func(t *testing.T) {
		anonymous := &testServer{engine: srv.engine}
		w := anonymous.do(t, http.MethodGet, "/api/v1/admin/orders", nil)
		require.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "UNAUTHORIZED", decodeError(t, w).Code)
	})
}
