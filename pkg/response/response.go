package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/secufur/commerce-api/internal/types"
)

// Response represents a standardized API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Error represents an error response
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes
const (
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeBadRequest        = "BAD_REQUEST"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeInternalError     = "INTERNAL_ERROR"
	ErrCodeValidationFailed  = "VALIDATION_FAILED"
	ErrCodeDuplicateResource = "DUPLICATE_RESOURCE"
	ErrCodeExternalService   = "EXTERNAL_SERVICE_ERROR"
	ErrCodeSignatureMismatch = "SIGNATURE_MISMATCH"
	ErrCodeInvalidState      = "INVALID_STATE"
)

// Handle maps a service error to the appropriate HTTP response. Validation and
// authorization failures carry their message through; internal failures are
// logged server-side and return a generic message.
func Handle(c *gin.Context, data interface{}, err error) {
	if err == nil {
		Success(c, data)
		return
	}
	handleError(c, err)
}

// HandleOK is Handle for POST operations that act on an existing resource
// rather than creating one; success is always 200.
func HandleOK(c *gin.Context, data interface{}, err error) {
	if err == nil {
		OK(c, data)
		return
	}
	handleError(c, err)
}

func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, types.ErrUnauthenticated):
		Unauthorized(c, err.Error())
	case errors.Is(err, types.ErrForbidden):
		Forbidden(c, err.Error())
	case errors.Is(err, types.ErrValidation):
		BadRequest(c, err.Error())
	case errors.Is(err, types.ErrInvalidState):
		errorJSON(c, http.StatusBadRequest, ErrCodeInvalidState, err.Error())
	case errors.Is(err, types.ErrSignatureMismatch):
		errorJSON(c, http.StatusBadRequest, ErrCodeSignatureMismatch, err.Error())
	case errors.Is(err, types.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		NotFound(c, "Resource not found")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		Conflict(c, "Resource already exists")
	case errors.Is(err, types.ErrExternalService):
		log.Error().Err(err).Str("path", c.FullPath()).Msg("external service failure")
		errorJSON(c, http.StatusInternalServerError, ErrCodeExternalService, "An upstream service failed")
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("unhandled error")
		InternalError(c, "An unexpected error occurred")
	}
}

// Success sends a successful response
func Success(c *gin.Context, data interface{}) {
	status := http.StatusOK
	if c.Request.Method == "POST" {
		status = http.StatusCreated
	}

	c.JSON(status, Response{
		Success: true,
		Data:    data,
	})
}

// OK sends a 200 response regardless of method
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// NotFound sends a 404 response
func NotFound(c *gin.Context, message string) {
	errorJSON(c, http.StatusNotFound, ErrCodeNotFound, message)
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, message string) {
	errorJSON(c, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, message string) {
	errorJSON(c, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// Forbidden sends a 403 response
func Forbidden(c *gin.Context, message string) {
	errorJSON(c, http.StatusForbidden, ErrCodeForbidden, message)
}

// InternalError sends a 500 response
func InternalError(c *gin.Context, message string) {
	errorJSON(c, http.StatusInternalServerError, ErrCodeInternalError, message)
}

// Conflict sends a 409 response
func Conflict(c *gin.Context, message string) {
	errorJSON(c, http.StatusConflict, ErrCodeDuplicateResource, message)
}

func errorJSON(c *gin.Context, status int, code, message string) {
	c.JSON(status, Response{
		Success: false,
		Error: &Error{
			Code:    code,
			Message: message,
		},
	})
}
