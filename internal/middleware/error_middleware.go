package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/yigit/alumnihub/internal/app/models/dto"
	"github.com/yigit/alumnihub/internal/pkg/apperrors"
)

type errorMapping struct {
	target  error
	status  int
	code    dto.ErrorCode
	message string
}

// Specific errors come before the kinds they wrap
var errorMappings = []errorMapping{
	{apperrors.ErrAccountDisabled, http.StatusForbidden, dto.ErrorCodeAccountDisabled, "Account disabled"},
	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials"},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired"},
	{apperrors.ErrTokenRevoked, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Token revoked"},
	{apperrors.ErrTokenNotFound, http.StatusUnauthorized, dto.ErrorCodeTokenNotFound, "Token not found"},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"},
	{apperrors.ErrInvalidPassword, http.StatusBadRequest, dto.ErrorCodeInvalidPassword, "Invalid password"},
	{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"},
	{apperrors.ErrBadRequest, http.StatusBadRequest, dto.ErrorCodeResourceInvalid, "Bad request"},
	{apperrors.ErrResourceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"},
	{apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"},
	{apperrors.ErrEmailAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Email already exists"},
	{apperrors.ErrUsernameAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Username already exists"},
	{apperrors.ErrResourceAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Resource already exists"},
	{apperrors.ErrConflict, http.StatusConflict, dto.ErrorCodeConflict, "Conflict"},
	{apperrors.ErrCapacityExceeded, http.StatusConflict, dto.ErrorCodeCapacityExceeded, "Capacity exceeded"},
	{apperrors.ErrInvalidTransition, http.StatusConflict, dto.ErrorCodeInvalidTransition, "Invalid state transition"},
}

// ErrorDetailFor maps a service error onto its HTTP status and body
func ErrorDetailFor(err error) (int, *dto.ErrorDetail) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}

		detail := dto.NewErrorDetail(m.code, m.message)
		var custom *apperrors.CustomError
		if errors.As(err, &custom) {
			if custom.Message != "" {
				detail.Message = custom.Message
			}
			if field, ok := custom.Details["field"].(string); ok {
				detail.WithField(field)
			}
			if len(custom.Details) > 0 {
				detail.WithDetails(custom.Details)
			}
		} else {
			detail.WithDetails(err.Error())
		}
		return m.status, detail
	}

	return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error").
		WithSeverity(dto.ErrorSeverityCritical)
}

// HandleAPIError writes the error response for err and aborts the chain
func HandleAPIError(c *gin.Context, err error) {
	status, detail := ErrorDetailFor(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("requestId", c.GetString(ContextRequestID)).
			Msg("Unhandled error")
	}
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}
