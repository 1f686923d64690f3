package dto

import (
	"net/http"
	"strings"
)

// General error codes. Domain errors keep their own codes in responses.
const (
	ErrCodeInternal           = "INTERNAL_ERROR"
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeInvalidJSON        = "INVALID_JSON"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeRateLimited        = "RATE_LIMIT_EXCEEDED"
	ErrCodeRequestTooLarge    = "REQUEST_TOO_LARGE"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes that do not follow the naming
// rules in GetHTTPStatus
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	"INTERNAL":                http.StatusInternalServerError,
	"PASSWORD_HASH_FAILED":    http.StatusInternalServerError,
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeInvalidJSON:        http.StatusBadRequest,
	ErrCodeRequestTooLarge:    http.StatusRequestEntityTooLarge,
	"IMPORT_TOO_LARGE":        http.StatusRequestEntityTooLarge,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,

	// Auth
	ErrCodeUnauthorized:   http.StatusUnauthorized,
	"INVALID_CREDENTIALS": http.StatusUnauthorized,
	"TOKEN_EXPIRED":       http.StatusUnauthorized,
	"TOKEN_INVALID":       http.StatusUnauthorized,
	"TOKEN_MAX_REFRESH":   http.StatusUnauthorized,
	"TOKEN_ERROR":         http.StatusUnauthorized,
	"INVALID_SIGNATURE":   http.StatusBadRequest,
	ErrCodeForbidden:      http.StatusForbidden,
	"ACCOUNT_INACTIVE":    http.StatusForbidden,

	// Conflicts
	ErrCodeConflict:         http.StatusConflict,
	"ALREADY_EXISTS":        http.StatusConflict,
	"CONCURRENCY_CONFLICT":  http.StatusConflict,
	"CATEGORY_HAS_PRODUCTS": http.StatusConflict,
	"INVALID_STATE":         http.StatusUnprocessableEntity,

	// Availability
	"PAYMENTS_DISABLED": http.StatusServiceUnavailable,
	"STORAGE_DISABLED":  http.StatusServiceUnavailable,

	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status for an error code. Codes outside
// ErrorCodeHTTPStatus are classified by name: *_NOT_FOUND is 404,
// INVALID_*, WEAK_* and *_EMPTY are 400, and any other domain rule
// violation is 422.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	switch {
	case code == "":
		return http.StatusInternalServerError
	case code == ErrCodeNotFound || strings.HasSuffix(code, "_NOT_FOUND"):
		return http.StatusNotFound
	case strings.HasPrefix(code, "INVALID_"), strings.HasPrefix(code, "WEAK_"),
		strings.HasSuffix(code, "_EMPTY"), code == "NO_ITEMS":
		return http.StatusBadRequest
	default:
		return http.StatusUnprocessableEntity
	}
}
