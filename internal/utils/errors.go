package utils

import (
	"errors"
	"net/http"
)

// Sentinel errors for the closing-workflow domain. Controllers can do:
// if errors.Is(err, ErrXYZ) { ... }
var (
	ErrPropertyNotFound   = errors.New("property_not_found")
	ErrUserNotFound       = errors.New("user_not_found")
	ErrRowVersionConflict = errors.New("row_version_conflict")

	// External collaborator failures (permission service, title search)
	ErrExternalServiceFailure = errors.New("external_service_failure")
)

// AppError for structured error handling from services to controllers.
type AppError struct {
	StatusCode int
	Code       string
	Message    string
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

// HandleAppError centralizes responding to AppErrors.
func HandleAppError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		RespondErrorWithCode(w, appErr.StatusCode, appErr.Code, appErr.Message, nil, appErr.Err)
	} else {
		// Fallback for unexpected error types
		RespondErrorWithCode(w, http.StatusInternalServerError, ErrCodeInternal, "An unexpected error occurred", nil, err)
	}
}
