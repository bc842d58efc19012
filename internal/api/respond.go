package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"rentfair/server/internal/apperrors"
)

// Error code constants for standardized error responses
const (
	codeNotFound          = "NOT_FOUND"
	codeBadRequest        = "BAD_REQUEST"
	codeValidation        = "VALIDATION_ERROR"
	codeInvalidTransition = "INVALID_TRANSITION"
	codeUpstream          = "UPSTREAM_UNAVAILABLE"
	codeInternal          = "INTERNAL_SERVER_ERROR"
)

// ErrorResponse is the top-level error response structure.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the error information.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func respondError(c *gin.Context, status int, code, message, field string) {
	c.JSON(status, ErrorResponse{Error: ErrorDetail{
		Code:    code,
		Message: message,
		Field:   field,
	}})
}

// respondDomainError maps a domain error onto the wire taxonomy.
func respondDomainError(c *gin.Context, err error) {
	var ve *apperrors.ValidationError
	switch {
	case errors.As(err, &ve):
		respondError(c, http.StatusBadRequest, codeValidation, ve.Error(), ve.Field)
	case errors.Is(err, apperrors.ErrSessionNotFound):
		respondError(c, http.StatusNotFound, codeNotFound, "session not found or expired", "")
	case errors.Is(err, apperrors.ErrLocationNotFound):
		respondError(c, http.StatusNotFound, codeNotFound, "address could not be located", "")
	case errors.Is(err, apperrors.ErrInvalidTransition):
		respondError(c, http.StatusConflict, codeInvalidTransition, "operation not allowed from the current page", "")
	case errors.Is(err, apperrors.ErrUpstreamUnavailable):
		respondError(c, http.StatusBadGateway, codeUpstream, "upstream service unavailable", "")
	default:
		respondError(c, http.StatusInternalServerError, codeInternal, "internal server error", "")
	}
}
