package live

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes session errors.
type ErrorKind string

const (
	// ErrInitialization covers failures that prevent a session from ever
	// reaching ACTIVE: missing credential, capability unavailable,
	// insecure environment, permission denied.
	ErrInitialization ErrorKind = "initialization_error"
	// ErrDevice covers the capture device being revoked mid-session.
	ErrDevice ErrorKind = "device_error"
	// ErrTransport covers connection-level transport failures.
	ErrTransport ErrorKind = "transport_error"
	// ErrDecode covers malformed inbound audio. Never fatal.
	ErrDecode ErrorKind = "decode_error"
	// ErrMisuse covers operations invoked in an invalid state. Never fatal.
	ErrMisuse ErrorKind = "misuse_error"
)

// Initialization error codes.
const (
	CodeMissingCredential     = "missing_credential"
	CodeCapabilityUnavailable = "capability_unavailable"
	CodeInsecureEnvironment   = "insecure_environment"
	CodePermissionDenied      = "permission_denied"
)

// Error is the typed error returned by session operations.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: %s (code: %s)", e.Kind, msg, e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Fatal reports whether the error forces the session into the ERROR state.
func (e *Error) Fatal() bool {
	switch e.Kind {
	case ErrInitialization, ErrDevice, ErrTransport:
		return true
	default:
		return false
	}
}

// NewInitializationError creates a fatal pre-ACTIVE failure.
func NewInitializationError(code, message string) *Error {
	return &Error{Kind: ErrInitialization, Code: code, Message: message}
}

// NewDeviceError creates a fatal capture device failure.
func NewDeviceError(message string, err error) *Error {
	return &Error{Kind: ErrDevice, Message: message, Err: err}
}

// NewTransportError creates a fatal connection-level failure.
func NewTransportError(message string, err error) *Error {
	return &Error{Kind: ErrTransport, Message: message, Err: err}
}

// NewDecodeError creates a non-fatal inbound audio decode failure.
func NewDecodeError(message string, err error) *Error {
	return &Error{Kind: ErrDecode, Message: message, Err: err}
}

// NewMisuseError creates a non-fatal invalid-state rejection.
func NewMisuseError(message string) *Error {
	return &Error{Kind: ErrMisuse, Message: message}
}

// KindOf returns the error kind, or "" for untyped errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
