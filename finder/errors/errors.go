package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Messages returned to callers.
const (
	MsgUnauthenticated = "Authentication Failed. Please login."
	MsgUnauthorized    = "Authorization Failed. Please send valid token."
	MsgInternal        = "An unexpected error occurred"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid bearer token")
	ErrUserNotFound = errors.New("user not found")
	ErrIPNotAllowed = errors.New("client ip not on allowlist")
)

// ServiceError is a failure with the status code it should be reported as.
type ServiceError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	cause   error
}

func (e *ServiceError) Error() string {
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.cause
}

// ErrorResponse is the failure body.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func newError(code int, cause error, format string, a ...interface{}) *ServiceError {
	return &ServiceError{Code: code, Message: fmt.Sprintf(format, a...), cause: cause}
}

// NotFound reports an unknown collection or finder.
func NotFound(collectionName string) *ServiceError {
	return newError(http.StatusNotFound, nil, "No collection %s found", collectionName)
}

// Unauthenticated reports a missing token or unknown user.
func Unauthenticated(cause error) *ServiceError {
	return newError(http.StatusUnauthorized, cause, MsgUnauthenticated)
}

// Unauthorized reports a token that failed verification or carries no subject.
func Unauthorized(cause error) *ServiceError {
	return newError(http.StatusForbidden, cause, MsgUnauthorized)
}

// IPNotAllowed reports a caller outside the collection's IP allowlist.
func IPNotAllowed() *ServiceError {
	return newError(http.StatusForbidden, ErrIPNotAllowed, "Access denied for this IP address")
}

// MissingParams reports required external params absent from the request.
func MissingParams(required []string) *ServiceError {
	return newError(http.StatusUnprocessableEntity, nil, "External params should be in [%s]", strings.Join(required, ","))
}

// Validation reports a malformed request or condition.
func Validation(cause error) *ServiceError {
	return newError(http.StatusUnprocessableEntity, cause, "%s", cause.Error())
}

// Execution reports a failure while resolving or running a query. The
// message of the underlying error is passed through.
func Execution(cause error) *ServiceError {
	return newError(http.StatusBadRequest, cause, "%s", cause.Error())
}

// FilterTooDeep reports nested finders beyond the configured depth.
func FilterTooDeep(limit int) *ServiceError {
	return newError(http.StatusBadRequest, nil, "Nested filter depth exceeds limit of %d", limit)
}

// AsServiceError returns err as a *ServiceError, mapping anything
// unstructured to 500.
func AsServiceError(err error) *ServiceError {
	var se *ServiceError
	if errors.As(err, &se) {
		return se
	}
	return newError(http.StatusInternalServerError, err, MsgInternal)
}

// HandleServiceError writes err as a {code, message} body.
func HandleServiceError(c *fiber.Ctx, err error) error {
	if err == nil {
		return nil
	}
	se := AsServiceError(err)
	return c.Status(se.Code).JSON(ErrorResponse{Code: se.Code, Message: se.Message})
}

// HandleValidationError writes a 400 with message.
func HandleValidationError(c *fiber.Ctx, message string) error {
	return c.Status(http.StatusBadRequest).JSON(ErrorResponse{Code: http.StatusBadRequest, Message: message})
}
