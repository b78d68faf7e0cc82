package errors

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Error codes
const (
	// Authentication errors
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeAccountInactive    = "ACCOUNT_INACTIVE"
	ErrCodeTokenExpired       = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid       = "TOKEN_INVALID"
	ErrCodeTokenRevoked       = "TOKEN_REVOKED"

	// Authorization errors
	ErrCodeForbidden = "FORBIDDEN"

	// Validation errors
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeInvalidInput    = "INVALID_INPUT"
	ErrCodeInvalidAssignee = "INVALID_ASSIGNEE"
	ErrCodeInvalidBoard    = "INVALID_BOARD"
	ErrCodeInvalidRef      = "INVALID_REFERENCE"

	// Resource errors
	ErrCodeNotFound = "NOT_FOUND"
	ErrCodeConflict = "CONFLICT"

	// Service errors
	ErrCodeRateLimited        = "RATE_LIMITED"
	ErrCodeDatabase           = "DATABASE_ERROR"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// APIError is the JSON error envelope returned to clients.
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Debug   string      `json:"debug,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// AppError carries an HTTP status alongside the client-facing envelope.
// Err, when set, is the underlying cause and is never shown to clients
// outside development mode.
type AppError struct {
	Status  int
	Code    string
	Message string
	Details interface{}
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Wrap returns a copy of e carrying cause. errors.Is(copy, e) stays true.
func (e *AppError) Wrap(cause error) error {
	return &wrapped{AppError: &AppError{
		Status:  e.Status,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Err:     cause,
	}, sentinel: e}
}

type wrapped struct {
	*AppError
	sentinel *AppError
}

func (w *wrapped) Is(target error) bool {
	return target == error(w.sentinel)
}

func (w *wrapped) As(target any) bool {
	if t, ok := target.(**AppError); ok {
		*t = w.AppError
		return true
	}
	return false
}

// NewValidationError is a 400 with a field-level detail list.
func NewValidationError(message string, fields ...FieldError) *AppError {
	if message == "" {
		message = "Validation failed"
	}
	e := &AppError{Status: http.StatusBadRequest, Code: ErrCodeValidation, Message: message}
	if len(fields) > 0 {
		e.Details = fields
	}
	return e
}

// NewBadRequestError is a 400 with a specific code.
func NewBadRequestError(code, message string) *AppError {
	return &AppError{Status: http.StatusBadRequest, Code: code, Message: message}
}

// NewAuthError is a 401.
func NewAuthError(code, message string) *AppError {
	if code == "" {
		code = ErrCodeUnauthorized
	}
	return &AppError{Status: http.StatusUnauthorized, Code: code, Message: message}
}

// NewForbiddenError is a 403.
func NewForbiddenError(message string) *AppError {
	if message == "" {
		message = "Access denied"
	}
	return &AppError{Status: http.StatusForbidden, Code: ErrCodeForbidden, Message: message}
}

// NewNotFoundError is a 404.
func NewNotFoundError(message string) *AppError {
	if message == "" {
		message = "Resource not found"
	}
	return &AppError{Status: http.StatusNotFound, Code: ErrCodeNotFound, Message: message}
}

// NewConflictError is a 409.
func NewConflictError(message string) *AppError {
	if message == "" {
		message = "Resource conflict"
	}
	return &AppError{Status: http.StatusConflict, Code: ErrCodeConflict, Message: message}
}

// NewDatabaseError is a 500 wrapping a store failure.
func NewDatabaseError(err error) *AppError {
	return &AppError{
		Status:  http.StatusInternalServerError,
		Code:    ErrCodeDatabase,
		Message: "Internal server error",
		Err:     err,
	}
}

// Predefined errors
var (
	ErrUnauthorized = NewAuthError(ErrCodeUnauthorized, "Authentication required")
	ErrInvalidInput = NewBadRequestError(ErrCodeInvalidInput, "Invalid request body")
	ErrRateLimited  = &AppError{Status: http.StatusTooManyRequests, Code: ErrCodeRateLimited, Message: "Too many requests"}
)

// Classify maps any error to an AppError. Store errors are translated by
// gorm (TranslateError) into driver-neutral sentinels before they get here.
func Classify(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &AppError{Status: http.StatusConflict, Code: ErrCodeConflict, Message: "Resource already exists", Err: err}
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return &AppError{Status: http.StatusBadRequest, Code: ErrCodeInvalidRef, Message: "Referenced resource not found", Err: err}
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &AppError{Status: http.StatusNotFound, Code: ErrCodeNotFound, Message: "Resource not found", Err: err}
	case errors.Is(err, gorm.ErrInvalidTransaction),
		errors.Is(err, gorm.ErrInvalidDB),
		errors.Is(err, gorm.ErrCheckConstraintViolated):
		return NewDatabaseError(err)
	}

	return &AppError{
		Status:  http.StatusInternalServerError,
		Code:    ErrCodeInternalError,
		Message: "Internal server error",
		Err:     err,
	}
}

// Abort records err on the gin context for the central error handler and
// stops the handler chain.
func Abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// Respond writes the envelope for err. Debug text is included only when
// debug is true.
func Respond(c *gin.Context, err error, debug bool) *AppError {
	appErr := Classify(err)
	body := &APIError{
		Code:    appErr.Code,
		Message: appErr.Message,
		Details: appErr.Details,
	}
	if debug && appErr.Err != nil {
		body.Debug = appErr.Err.Error()
	}
	c.JSON(appErr.Status, body)
	return appErr
}
