package dispatch

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// KindValidation errors are raised before any request is made.
	KindValidation Kind = iota + 1
	// KindTransport errors mean the request did not complete.
	KindTransport
	// KindApplication errors are non-2xx responses.
	KindApplication
	// KindMapping errors are 2xx responses with an unexpected body.
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindTransport:
		return "transport"
	case KindApplication:
		return "application"
	case KindMapping:
		return "mapping"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// User-facing messages used when the backend does not supply one.
const (
	MessageServerError = "Server error!"
	MessageTransport   = "Unable to reach the server."
	MessageUnexpected  = "Unexpected response from the server."
)

// Error is the failure of a single dispatcher operation. Message is what the
// user should see; Err carries the underlying cause when there is one.
type Error struct {
	Kind    Kind
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	prefix := fmt.Sprintf("%s: %s error", e.Op, e.Kind)
	if e.Status != 0 {
		prefix = fmt.Sprintf("%s (%d)", prefix, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s", prefix, e.Message, e.Err.Error())
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message returns the user-facing text for any error, falling back to a
// fixed message so the status area is never left blank.
func Message(err error) string {
	var derr *Error
	if errors.As(err, &derr) && derr.Message != "" {
		return derr.Message
	}
	return MessageServerError
}

// KindOf returns the kind of a dispatcher error, or 0 for other errors.
func KindOf(err error) Kind {
	var derr *Error
	if errors.As(err, &derr) {
		return derr.Kind
	}
	return 0
}
