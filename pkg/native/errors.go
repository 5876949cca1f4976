package native

import "errors"

// Sentinel errors for bridge operations.
var (
	// ErrBridgeUnavailable indicates no engine bridge has been installed via
	// SetBridge, or the host engine does not support the requested feature.
	ErrBridgeUnavailable = errors.New("native: bridge unavailable")

	// ErrTimeout indicates a permission request exceeded its deadline: the
	// user did not respond to the dialog in time.
	ErrTimeout = errors.New("native: operation timed out")

	// ErrCanceled indicates the operation was canceled via context cancellation.
	ErrCanceled = errors.New("native: operation was canceled")

	// ErrClosed is returned when operating on a channel the engine has shut
	// down. Expected during teardown and not reported.
	ErrClosed = errors.New("native: channel closed")

	// ErrChannelNotRegistered is returned when the engine delivers an event
	// for a channel no Go code listens on.
	ErrChannelNotRegistered = errors.New("native: event channel not registered")
)

// ChannelError represents an error returned from native code.
type ChannelError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func (e *ChannelError) Error() string {
	if e.Message != "" {
		return e.Code + ": " + e.Message
	}
	return e.Code
}

// NewChannelError creates a new ChannelError with the given code and message.
func NewChannelError(code, message string) *ChannelError {
	return &ChannelError{Code: code, Message: message}
}
