package errorutil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// GenericMessage is shown when no better message is available.
const GenericMessage = "Something went wrong. Please try again."

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError("CONFLICT", message, http.StatusConflict, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewUpstreamError wraps a rejected upstream call, keeping its status and message.
// Transport failures (status 0) become 502.
func NewUpstreamError(status int, message string, err error) error {
	if message == "" {
		message = GenericMessage
	}
	httpStatus := status
	if httpStatus < 400 || httpStatus > 599 {
		httpStatus = http.StatusBadGateway
	}
	return &DomainError{
		Code:       "UPSTREAM_ERROR",
		Message:    message,
		HTTPStatus: httpStatus,
		Details:    map[string]any{"upstream_status": status},
		Err:        err,
	}
}

// UpstreamError is implemented by errors returned from the upstream API client.
type UpstreamError interface {
	error
	UpstreamStatus() int
	UpstreamMessage() string
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	var upstream UpstreamError
	if errors.As(err, &upstream) {
		if de, ok := NewUpstreamError(upstream.UpstreamStatus(), upstream.UpstreamMessage(), err).(*DomainError); ok {
			return de
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &DomainError{
			Code:       "TIMEOUT",
			Message:    "request timed out",
			HTTPStatus: http.StatusGatewayTimeout,
			Err:        err,
		}
	}
	if de, ok := NewInternalError(err).(*DomainError); ok {
		return de
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// UserMessage returns the message to surface to the user for err.
func UserMessage(err error) string {
	de := ToDomainError(err)
	if de == nil {
		return ""
	}
	if de.HTTPStatus >= 500 && de.Code == "INTERNAL_ERROR" {
		return GenericMessage
	}
	return de.Message
}

func MapError(err error) error {
	return ToDomainError(err)
}
