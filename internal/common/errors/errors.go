// internal/common/errors/errors.go
package errors

import (
	"fmt"
	"time"
)

// ErrorCode represents a stable error classification
type ErrorCode string

const (
	ErrCodeClarificationNeeded ErrorCode = "CLARIFICATION_NEEDED"
	ErrCodePermissionDenied    ErrorCode = "PERMISSION_DENIED"
	ErrCodeDataUnavailable     ErrorCode = "DATA_UNAVAILABLE"
	ErrCodeCausalRefused       ErrorCode = "CAUSAL_REFUSED"
	ErrCodeValidation          ErrorCode = "VALIDATION_ERROR"
	ErrCodeERPTimeout          ErrorCode = "ERP_TIMEOUT"
	ErrCodeLLMTimeout          ErrorCode = "LLM_TIMEOUT"
	ErrCodeDatabase            ErrorCode = "DATABASE_ERROR"
	ErrCodeInternal            ErrorCode = "INTERNAL_ERROR"
)

// StandardError is the error shape carried through the pipeline
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New creates a StandardError with the given code and message
func New(code ErrorCode, message string) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

// Wrap creates a StandardError preserving the underlying error's text as details
func Wrap(code ErrorCode, message string, err error) *StandardError {
	e := New(code, message)
	if err != nil {
		e.Details = err.Error()
	}
	return e
}

// WithMetadata attaches key/value metadata
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// NewClarificationError signals the query needs user clarification.
// The message is the clarification prompt shown to the user.
func NewClarificationError(prompt string) *StandardError {
	return New(ErrCodeClarificationNeeded, prompt)
}

// NewPermissionError signals a role based access denial
func NewPermissionError(message string) *StandardError {
	return New(ErrCodePermissionDenied, message)
}

// NewCausalRefusedError signals a refused causal or explanatory question
func NewCausalRefusedError(message string) *StandardError {
	return New(ErrCodeCausalRefused, message)
}

// NewValidationError signals a malformed or contradictory query
func NewValidationError(message string) *StandardError {
	return New(ErrCodeValidation, message)
}

// NewDatabaseError wraps a storage failure; retryable by default
func NewDatabaseError(message string, err error) *StandardError {
	e := Wrap(ErrCodeDatabase, message, err)
	e.Retryable = true
	return e
}

// NewERPTimeoutError wraps a live feed failure; retryable
func NewERPTimeoutError(err error) *StandardError {
	e := Wrap(ErrCodeERPTimeout, "live sales feed unavailable", err)
	e.Retryable = true
	return e
}

// NewLLMTimeoutError wraps an annotator failure; never retried, annotation is optional
func NewLLMTimeoutError(err error) *StandardError {
	return Wrap(ErrCodeLLMTimeout, "annotation service unavailable", err)
}

// NewInternalError wraps an unexpected failure
func NewInternalError(message string, err error) *StandardError {
	return Wrap(ErrCodeInternal, message, err)
}
