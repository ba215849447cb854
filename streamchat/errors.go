package streamchat

import (
	"errors"
	"fmt"
)

// ErrorCode represents a categorized error type.
type ErrorCode int

const (
	ErrorUnknown ErrorCode = iota

	// ErrorTransport covers dial failures, mid-session errors and closes.
	// Never fatal: it only leads to a scheduled reconnect.
	ErrorTransport

	// ErrorProtocolDecode means an inbound frame did not have the expected shape.
	// The frame is dropped and the connection stays open.
	ErrorProtocolDecode

	// ErrorPrecondition is a contract violation on the message log.
	ErrorPrecondition

	// ErrorSendNotReady is a retry condition on the outbound gate, not a failure.
	ErrorSendNotReady

	ErrorInvalidConfig
	ErrorClosed
)

// String returns the string representation of an ErrorCode.
func (e ErrorCode) String() string {
	switch e {
	case ErrorUnknown:
		return "unknown"
	case ErrorTransport:
		return "transport_error"
	case ErrorProtocolDecode:
		return "protocol_decode_error"
	case ErrorPrecondition:
		return "precondition_failed"
	case ErrorSendNotReady:
		return "send_not_ready"
	case ErrorInvalidConfig:
		return "invalid_config"
	case ErrorClosed:
		return "closed"
	default:
		return fmt.Sprintf("unknown_code_%d", e)
	}
}

// ChatError is a structured error with code and context.
type ChatError struct {
	Code    ErrorCode
	Message string
	Wrapped error
}

// Error implements the error interface.
func (e *ChatError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %s (wrapped: %v)", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error for errors.Unwrap support.
func (e *ChatError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is a *ChatError with the same code.
func (e *ChatError) Is(target error) bool {
	t, ok := target.(*ChatError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Sentinels for errors.Is comparisons. Only the code is compared.
var (
	ErrTransport      = &ChatError{Code: ErrorTransport, Message: "transport error"}
	ErrProtocolDecode = &ChatError{Code: ErrorProtocolDecode, Message: "malformed frame"}
	ErrPrecondition   = &ChatError{Code: ErrorPrecondition, Message: "precondition failed"}
	ErrSendNotReady   = &ChatError{Code: ErrorSendNotReady, Message: "connection not ready"}
	ErrInvalidConfig  = &ChatError{Code: ErrorInvalidConfig, Message: "invalid config"}
	ErrClosed         = &ChatError{Code: ErrorClosed, Message: "client closed"}
)

// NewError creates a new ChatError with the given code and message.
func NewError(code ErrorCode, message string) *ChatError {
	return &ChatError{
		Code:    code,
		Message: message,
	}
}

// WrapError wraps an existing error with a ChatError.
func WrapError(code ErrorCode, message string, err error) *ChatError {
	return &ChatError{
		Code:    code,
		Message: message,
		Wrapped: err,
	}
}

// IsTransportError checks if an error is a transport-level error.
func IsTransportError(err error) bool {
	return hasCode(err, ErrorTransport)
}

// IsPreconditionError checks if an error is a message log contract violation.
func IsPreconditionError(err error) bool {
	return hasCode(err, ErrorPrecondition)
}

func hasCode(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}
	var ce *ChatError
	if !errors.As(err, &ce) {
		return false
	}
	return ce.Code == code
}
