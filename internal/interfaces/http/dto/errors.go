package dto

import (
	"net/http"
	"strings"
)

// Error codes produced by the HTTP layer itself. Domain errors keep the
// code they were raised with.
const (
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeRateLimited  = "RATE_LIMIT_EXCEEDED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes. Codes not
// listed here fall back to GetHTTPStatus's rules.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeRateLimited:  http.StatusTooManyRequests,
	ErrCodeUnauthorized: http.StatusUnauthorized,

	// Authentication
	"INVALID_CREDENTIALS": http.StatusUnauthorized,
	"ACCOUNT_DEACTIVATED": http.StatusUnauthorized,

	// Access
	ErrCodeForbidden: http.StatusForbidden,

	// Resources
	ErrCodeNotFound:        http.StatusNotFound,
	"ALREADY_EXISTS":       http.StatusConflict,
	"USERNAME_EXISTS":      http.StatusConflict,
	"USER_ALREADY_LINKED":  http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,
	"PROJECT_IN_USE":       http.StatusConflict,
	"DEPARTMENT_NOT_EMPTY": http.StatusConflict,
	"CONFIRM_IN_PROGRESS":  http.StatusConflict,
	"FILE_TOO_LARGE":       http.StatusRequestEntityTooLarge,

	// Input
	"INVALID_INPUT":          http.StatusBadRequest,
	"CANCEL_REASON_REQUIRED": http.StatusBadRequest,

	// Business rules
	"INVALID_STATE":           http.StatusUnprocessableEntity,
	"FIELD_READONLY":          http.StatusUnprocessableEntity,
	"BUDGET_EXCEEDED":         http.StatusUnprocessableEntity,
	"CURRENCY_MISMATCH":       http.StatusUnprocessableEntity,
	"NO_LINES":                http.StatusUnprocessableEntity,
	"NO_VALIDATOR":            http.StatusUnprocessableEntity,
	"PROJECT_REQUIRED":        http.StatusUnprocessableEntity,
	"CP_EMPLOYEE_REQUIRED":    http.StatusUnprocessableEntity,
	"DEPARTMENT_REQUIRED":     http.StatusUnprocessableEntity,
	"ATTACHMENT_NOT_UPLOADED": http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status for an error code. Unlisted
// INVALID_* codes are input errors (400); any other unlisted domain code is
// a business rule violation (422).
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusUnprocessableEntity
}
