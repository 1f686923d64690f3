package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"display_name" binding:"required,min=2"`
	Method   string `json:"method" binding:"omitempty,oneof=stripe manual"`
	Quantity int    `json:"quantity" binding:"max=5"`
}

func TestValidationDetails_UsesJSONNames(t *testing.T) {
	SetupValidator()

	var details []dto.ValidationDetail
	router := gin.New()
	router.POST("/signup", func(c *gin.Context) {
		var req signupRequest
		err := c.ShouldBindJSON(&req)
		details = ValidationDetails(err)
		c.Status(http.StatusBadRequest)
	})

	body := `{"email":"nope","display_name":"x","method":"cash","quantity":9}`
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(body)))

	require.Len(t, details, 4)
	got := map[string]string{}
	for _, d := range details {
		got[d.Field] = d.Message
	}
	assert.Equal(t, map[string]string{
		"email":        "Invalid email format",
		"display_name": "Must be at least 2 characters",
		"method":       "Must be one of: stripe manual",
		"quantity":     "Must be at most 5",
	}, got)
}

func TestValidationDetails_NotValidationError(t *testing.T) {
	assert.Nil(t, ValidationDetails(assert.AnError))
	assert.Nil(t, ValidationDetails(nil))
}
