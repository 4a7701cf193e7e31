package listquery

import "errors"

// Fallback messages used when a failure carries no usable message.
const (
	FallbackApplicationMessage = "Failed to fetch"
	FallbackTransportMessage   = "Network error"
)

// ApplicationError is a response the backend answered with success=false,
// or one whose shape did not match the list contract.
type ApplicationError struct {
	Message string
}

func (e *ApplicationError) Error() string {
	if e.Message == "" {
		return FallbackApplicationMessage
	}
	return e.Message
}

// TransportError wraps a failure of the fetch function itself: network
// errors, decoding errors, or a panic.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	if e.Err == nil || e.Err.Error() == "" {
		return FallbackTransportMessage
	}
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// userMessage returns the text shown to the user for err.
func userMessage(err error) string {
	var appErr *ApplicationError
	if errors.As(err, &appErr) {
		return appErr.Error()
	}
	var trErr *TransportError
	if errors.As(err, &trErr) {
		return trErr.Error()
	}
	if err == nil || err.Error() == "" {
		return FallbackTransportMessage
	}
	return err.Error()
}

// errShape reports a response that does not match the list contract.
func errShape() error {
	return &ApplicationError{}
}
