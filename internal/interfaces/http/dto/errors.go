package dto

import (
	"errors"
	"net/http"

	"github.com/biasharahub/backend/internal/domain/shared"
)

// General error codes
const (
	ErrCodeInternal     = "ERR_INTERNAL"
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"

	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	ErrCodeRateLimited     = "RATE_LIMIT_EXCEEDED"
)

// domainErrorHTTPStatus maps domain error codes to HTTP status codes
var domainErrorHTTPStatus = map[string]int{
	"NOT_FOUND":            http.StatusNotFound,
	"ALREADY_EXISTS":       http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,
	"INVALID_STATE":        http.StatusUnprocessableEntity,
	"TENANT_REQUIRED":      http.StatusUnauthorized,
	"INSUFFICIENT_BALANCE": http.StatusUnprocessableEntity,
	"AMOUNT_BELOW_MINIMUM": http.StatusUnprocessableEntity,
	"INVALID_AMOUNT":       http.StatusBadRequest,
	"INVALID_BOOKING":      http.StatusBadRequest,
	"INVALID_DESTINATION":  http.StatusBadRequest,
	"INVALID_SCHEMA":       http.StatusBadRequest,
	"TENANT_INACTIVE":      http.StatusForbidden,
}

// FromError converts an error into an HTTP status and error response.
// Unrecognized errors map to 500 with a generic body so internals never leak.
func FromError(err error) (int, Response) {
	var derr *shared.DomainError
	if errors.As(err, &derr) {
		status, ok := domainErrorHTTPStatus[derr.Code]
		if !ok {
			status = http.StatusUnprocessableEntity
		}
		return status, NewErrorResponse(derr.Code, derr.Message)
	}
	return http.StatusInternalServerError, NewErrorResponse(ErrCodeInternal, "Internal server error")
}
