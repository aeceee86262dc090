// Package errors provides standardized error handling for the notification pipeline.
package errors

import (
	"fmt"
	"net/http"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Configuration / environment
	ErrCodeConfigurationError ErrorCode = "CONFIGURATION_ERROR"

	// Input validation
	ErrCodeValidationFailed       ErrorCode = "VALIDATION_FAILED"
	ErrCodeAuthenticationRequired ErrorCode = "AUTHENTICATION_REQUIRED"

	// Templates
	ErrCodeTemplateInvalid     ErrorCode = "TEMPLATE_INVALID"
	ErrCodeTemplateSaveFailed  ErrorCode = "TEMPLATE_SAVE_FAILED"
	ErrCodeRenderFailed        ErrorCode = "RENDER_FAILED"

	// Outbound email
	ErrCodeProviderRejected ErrorCode = "PROVIDER_REJECTED"
	ErrCodeTransportFailed  ErrorCode = "TRANSPORT_FAILED"

	// Waitlist advisor
	ErrCodeAdvisorTimeout ErrorCode = "ADVISOR_TIMEOUT"
	ErrCodeAdvisorFailed  ErrorCode = "ADVISOR_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewConfigurationError creates a non-retryable configuration error.
// Used when a required secret (such as the email provider API key) is missing.
func NewConfigurationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigurationError,
		Message:   "Service configuration error",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationError creates a non-retryable input validation error.
func NewValidationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Request validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAuthenticationRequiredError creates an error for writes without a tenant.
func NewAuthenticationRequiredError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuthenticationRequired,
		Message:   "An authenticated tenant is required",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTemplateInvalidError creates an error for an unrecognized template id.
// Note the contrast with a missing override, which silently falls back to the
// compiled-in default and is never an error.
func NewTemplateInvalidError(templateID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTemplateInvalid,
		Message:   "Unknown notification template",
		Details:   fmt.Sprintf("templateId: %s", templateID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTemplateSaveFailedError creates a retryable persistence error.
func NewTemplateSaveFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTemplateSaveFailed,
		Message:   "Failed to save template override",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRenderFailedError signals a broken template: subject or body rendered to
// nothing. Surfaced distinctly from provider errors so an admin can fix the
// template rather than chase the email provider.
func NewRenderFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRenderFailed,
		Message:   "Template rendered to empty content",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewProviderRejectedError creates an error for a non-2xx provider response.
func NewProviderRejectedError(message string) *StandardError {
	return &StandardError{
		Code:      ErrCodeProviderRejected,
		Message:   message,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTransportFailedError creates an error for network-level send failures.
func NewTransportFailedError(err error) *StandardError {
	details := "unknown error"
	if err != nil {
		details = err.Error()
	}
	return &StandardError{
		Code:      ErrCodeTransportFailed,
		Message:   "Email provider unreachable",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAdvisorTimeoutError creates a retryable GenAI timeout error.
func NewAdvisorTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeAdvisorTimeout,
		Message:   "Waitlist advisor timed out",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAdvisorFailedError creates an error for GenAI call failures.
func NewAdvisorFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAdvisorFailed,
		Message:   "Waitlist advisor request failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError wraps an unexpected error.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. HTTP Integration
// ==========================

// HTTPStatus maps an error code to the status the API layer responds with.
// The notification actions themselves never surface errors through status
// codes (they always answer 200 with {success, message}); this mapping is for
// the template management and waitlist routes.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeValidationFailed, ErrCodeTemplateInvalid:
		return http.StatusBadRequest
	case ErrCodeAuthenticationRequired:
		return http.StatusUnauthorized
	case ErrCodeConfigurationError:
		return http.StatusServiceUnavailable
	case ErrCodeAdvisorTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeProviderRejected, ErrCodeTransportFailed, ErrCodeAdvisorFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Normalize ensures any error is represented as a StandardError.
func Normalize(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return NewInternalError(err)
}

// CategoryOf groups error codes for metrics labels.
func CategoryOf(code ErrorCode) string {
	switch code {
	case ErrCodeConfigurationError:
		return "configuration"
	case ErrCodeValidationFailed, ErrCodeAuthenticationRequired, ErrCodeTemplateInvalid:
		return "validation"
	case ErrCodeRenderFailed:
		return "render"
	case ErrCodeProviderRejected:
		return "provider"
	case ErrCodeTransportFailed:
		return "transport"
	case ErrCodeAdvisorTimeout, ErrCodeAdvisorFailed:
		return "advisor"
	default:
		return "internal"
	}
}
