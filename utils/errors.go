package utils

import (
	"errors"
	"net/http"

	"github.com/dcode-github/realestate_console/imageset"
)

// Domain-level errors used by the service layer.
var (
	ErrValidation = errors.New("validation_error")
	ErrNotFound   = errors.New("not_found")

	ErrQuotaExceeded = imageset.ErrQuotaExceeded
)

// AppError carries the HTTP mapping of a service failure to the controllers.
type AppError struct {
	StatusCode int
	Code       string
	Message    string
	Details    any
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// ValidationError builds the 4xx failure for a request that must not write anything.
func ValidationError(message string, details any) *AppError {
	return &AppError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrCodeValidation,
		Message:    message,
		Details:    details,
		Err:        ErrValidation,
	}
}

// QuotaError reports an image set that would grow past the limit.
func QuotaError(err error) *AppError {
	return &AppError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrCodeQuotaExceeded,
		Message:    "Too many images: a property can hold at most 6",
		Err:        err,
	}
}

func ConflictError(message string, err error) *AppError {
	return &AppError{
		StatusCode: http.StatusConflict,
		Code:       ErrCodeConflict,
		Message:    message,
		Err:        err,
	}
}

func ExternalServiceError(message string, err error) *AppError {
	return &AppError{
		StatusCode: http.StatusBadGateway,
		Code:       ErrCodeExternalService,
		Message:    message,
		Err:        err,
	}
}

func NotFoundError(message string) *AppError {
	return &AppError{
		StatusCode: http.StatusNotFound,
		Code:       ErrCodeNotFound,
		Message:    message,
		Err:        ErrNotFound,
	}
}

// PersistenceError wraps a database or storage failure; the transaction has
// already been rolled back when this reaches a controller.
func PersistenceError(message string, err error) *AppError {
	return &AppError{
		StatusCode: http.StatusInternalServerError,
		Code:       ErrCodeInternal,
		Message:    message,
		Err:        err,
	}
}

// HandleAppError centralizes responding to AppErrors.
func HandleAppError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		RespondErrorWithCode(w, appErr.StatusCode, appErr.Code, appErr.Message, appErr.Details, appErr.Err)
	} else {
		RespondErrorWithCode(w, http.StatusInternalServerError, ErrCodeInternal, "An unexpected error occurred", nil, err)
	}
}
