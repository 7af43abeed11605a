// internal/errors/errors.go
package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies an AppError.
type ErrorType string

const (
	ErrorTypeValidation    ErrorType = "validation_error"
	ErrorTypeNotFound      ErrorType = "not_found"
	ErrorTypeNotReady      ErrorType = "not_ready"
	ErrorTypeConfiguration ErrorType = "configuration_error"
	ErrorTypeTransport     ErrorType = "transport_error"
	ErrorTypeContent       ErrorType = "content_error"
)

// AppError is the application error carried across package boundaries.
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
	Code    string
}

// Error implements error.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the wrapped cause.
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError builds an AppError with the code derived from its type.
func NewAppError(errType ErrorType, message string, originalError error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Err:     originalError,
		Code:    generateErrorCode(errType),
	}
}

func NewValidationError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeValidation, message, originalError)
}

func NewNotFoundError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeNotFound, message, originalError)
}

func NewNotReadyError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeNotReady, message, originalError)
}

// NewConfigurationError reports a missing or invalid operator setting.
// It cannot be fixed by retrying.
func NewConfigurationError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeConfiguration, message, originalError)
}

// NewTransportError reports a failed call to the model endpoint.
func NewTransportError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeTransport, message, originalError)
}

// NewContentError reports a model reply that is empty or has the wrong shape.
func NewContentError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeContent, message, originalError)
}

// TypeOf returns the type of the first AppError in the chain, or "".
func TypeOf(err error) ErrorType {
	var appError *AppError
	if errors.As(err, &appError) {
		return appError.Type
	}
	return ""
}

func IsValidationError(err error) bool    { return TypeOf(err) == ErrorTypeValidation }
func IsNotFoundError(err error) bool      { return TypeOf(err) == ErrorTypeNotFound }
func IsNotReadyError(err error) bool      { return TypeOf(err) == ErrorTypeNotReady }
func IsConfigurationError(err error) bool { return TypeOf(err) == ErrorTypeConfiguration }
func IsTransportError(err error) bool     { return TypeOf(err) == ErrorTypeTransport }
func IsContentError(err error) bool       { return TypeOf(err) == ErrorTypeContent }

// CodeOf returns the user-facing code of err, defaulting to INTERNAL_ERROR.
func CodeOf(err error) string {
	var appError *AppError
	if errors.As(err, &appError) && appError.Code != "" {
		return appError.Code
	}
	return "INTERNAL_ERROR"
}

func generateErrorCode(errType ErrorType) string {
	switch errType {
	case ErrorTypeValidation:
		return "VALIDATION_ERROR"
	case ErrorTypeNotFound:
		return "NOT_FOUND"
	case ErrorTypeNotReady:
		return "BRIEFING_INCOMPLETE"
	case ErrorTypeConfiguration:
		return "API_KEY_MISSING"
	case ErrorTypeTransport:
		return "LLM_CALL_FAILED"
	case ErrorTypeContent:
		return "LLM_BAD_RESPONSE"
	default:
		return "UNKNOWN_ERROR"
	}
}

// WrapError prefixes err with message, keeping the type of an existing AppError.
func WrapError(err error, message string, errType ErrorType) error {
	if err == nil {
		return nil
	}

	var appError *AppError
	if errors.As(err, &appError) {
		return &AppError{
			Type:    appError.Type,
			Message: fmt.Sprintf("%s: %s", message, appError.Message),
			Err:     appError.Err,
			Code:    appError.Code,
		}
	}

	return NewAppError(errType, message, err)
}
