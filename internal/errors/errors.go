// Package errors renders the API's JSON error envelope and the
// {success, error} result used by favorite toggles.
package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stwalsh4118/hearth/api/internal/middleware"
)

// Error code constants for standardized error responses
const (
	ErrNotFound           = "NOT_FOUND"
	ErrBadRequest         = "BAD_REQUEST"
	ErrInternalServer     = "INTERNAL_SERVER_ERROR"
	ErrValidation         = "VALIDATION_ERROR"
	ErrDatabaseConnection = "DATABASE_CONNECTION_ERROR"
	ErrUnauthorized       = "UNAUTHORIZED"
	ErrForbidden          = "FORBIDDEN"
	ErrUpstream           = "UPSTREAM_ERROR"
	ErrNoData             = "NO_DATA"
	ErrUnavailable        = "UNAVAILABLE"
)

// ErrorResponse is the top-level error response structure.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the error information.
type ErrorDetail struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// Result is the body of operations that report success inline instead of
// through the status code, such as favorite toggles.
type Result struct {
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
	Favorited *bool  `json:"favorited,omitempty"`
}

// abort writes the envelope and stops the handler chain.
func abort(c *gin.Context, status int, code, message string, details map[string]interface{}) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorDetail{
			Code:      code,
			Message:   message,
			Details:   details,
			RequestID: middleware.GetRequestID(c),
		},
	})
}

// warn logs a client-side failure with the request context.
func warn(c *gin.Context, msg string, fields map[string]interface{}) {
	log := middleware.GetLogger(c)
	if log == nil {
		return
	}
	fields["request_id"] = middleware.GetRequestID(c)
	fields["path"] = c.Request.URL.Path
	log.Warn(msg, fields)
}

// NotFound returns a 404 Not Found error response.
func NotFound(c *gin.Context, message string) {
	warn(c, "Resource not found", map[string]interface{}{"message": message})
	abort(c, http.StatusNotFound, ErrNotFound, message, nil)
}

// BadRequest returns a 400 Bad Request error response with optional details.
func BadRequest(c *gin.Context, message string, details map[string]interface{}) {
	fields := map[string]interface{}{"message": message}
	if details != nil {
		fields["details"] = details
	}
	warn(c, "Bad request", fields)
	abort(c, http.StatusBadRequest, ErrBadRequest, message, details)
}

// Gone returns a 410 response for a listing that has been sold or rented.
func Gone(c *gin.Context, message string, details map[string]interface{}) {
	warn(c, "Resource no longer available", map[string]interface{}{"message": message})
	abort(c, http.StatusGone, ErrUnavailable, message, details)
}

// Unauthorized returns a 401 response for a missing or invalid bearer token.
func Unauthorized(c *gin.Context, message string) {
	warn(c, "Unauthorized request", map[string]interface{}{"message": message})
	abort(c, http.StatusUnauthorized, ErrUnauthorized, message, nil)
}

// Forbidden returns a 403 response for an authenticated caller lacking a role.
func Forbidden(c *gin.Context, message string) {
	warn(c, "Forbidden request", map[string]interface{}{"message": message})
	abort(c, http.StatusForbidden, ErrForbidden, message, nil)
}

// UnprocessableEntity returns a 422 response when a request is well formed
// but there is nothing to act on, such as a report over an empty sale log.
func UnprocessableEntity(c *gin.Context, message string) {
	warn(c, "Unprocessable request", map[string]interface{}{"message": message})
	abort(c, http.StatusUnprocessableEntity, ErrNoData, message, nil)
}

// BadGateway returns a 502 response when the upstream listing API failed.
// The upstream error is logged but only message reaches the client.
func BadGateway(c *gin.Context, message string, err error) {
	log := middleware.GetLogger(c)
	if log != nil {
		log.Error("Upstream request failed", err, map[string]interface{}{
			"message":    message,
			"request_id": middleware.GetRequestID(c),
			"path":       c.Request.URL.Path,
			"method":     c.Request.Method,
		})
	}
	abort(c, http.StatusBadGateway, ErrUpstream, message, nil)
}

// ServiceUnavailable returns a 503 response when a dependency is down.
func ServiceUnavailable(c *gin.Context, message string, err error) {
	log := middleware.GetLogger(c)
	if log != nil {
		log.Error("Dependency unavailable", err, map[string]interface{}{
			"message":    message,
			"request_id": middleware.GetRequestID(c),
			"path":       c.Request.URL.Path,
		})
	}
	abort(c, http.StatusServiceUnavailable, ErrDatabaseConnection, message, nil)
}

// InternalServerError returns a 500 Internal Server Error response.
// The error is logged; the client only sees message.
func InternalServerError(c *gin.Context, message string, err error) {
	log := middleware.GetLogger(c)
	if log != nil {
		log.Error("Internal server error", err, map[string]interface{}{
			"message":    message,
			"request_id": middleware.GetRequestID(c),
			"path":       c.Request.URL.Path,
			"method":     c.Request.Method,
		})
	}
	abort(c, http.StatusInternalServerError, ErrInternalServer, message, nil)
}

// ValidationError returns a 400 Bad Request error response with field-specific validation errors.
func ValidationError(c *gin.Context, validationErrors validator.ValidationErrors) {
	details := make(map[string]interface{})
	for _, err := range validationErrors {
		details[err.Field()] = formatValidationError(err)
	}

	warn(c, "Validation error", map[string]interface{}{"fields": details})
	abort(c, http.StatusBadRequest, ErrValidation, "Validation failed for one or more fields", details)
}

// ToggleFailed reports a favorite toggle that did not change anything.
// The status stays 200 so clients read the inline error.
func ToggleFailed(c *gin.Context, message string) {
	warn(c, "Favorite toggle failed", map[string]interface{}{"message": message})
	c.JSON(http.StatusOK, Result{Success: false, Error: message})
}

// Toggled reports a successful favorite toggle and the new membership.
func Toggled(c *gin.Context, favorited bool) {
	c.JSON(http.StatusOK, Result{Success: true, Favorited: &favorited})
}

// formatValidationError converts a validator.FieldError to a human-readable message.
func formatValidationError(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "This field is required"
	case "min":
		return "Value is too short or small (minimum: " + err.Param() + ")"
	case "max":
		return "Value is too long or large (maximum: " + err.Param() + ")"
	case "gt":
		return "Must be greater than " + err.Param()
	case "gte":
		return "Must be greater than or equal to " + err.Param()
	case "lt":
		return "Must be less than " + err.Param()
	case "lte":
		return "Must be less than or equal to " + err.Param()
	case "oneof":
		return "Must be one of: " + err.Param()
	case "numeric":
		return "Must be a number"
	case "uuid":
		return "Must be a valid UUID"
	default:
		return "Validation failed for tag: " + err.Tag()
	}
}
