package usecase

import "fmt"

// ErrorCode is the stable error vocabulary exposed to the transport layer.
// The handler maps each code to an HTTP status.
type ErrorCode string

const (
	// ErrorInvalidInput rejects the request itself: empty or oversized
	// messages, and conversations that already spent their roadmap turns.
	ErrorInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrorInvalidQuestion rejects message content that failed moderation.
	ErrorInvalidQuestion ErrorCode = "INVALID_QUESTION"
	// ErrorRateLimited surfaces HTTP 429 from the completion service.
	ErrorRateLimited ErrorCode = "RATE_LIMITED"
	// ErrorUpstream covers every other completion failure, including empty
	// and malformed replies.
	ErrorUpstream ErrorCode = "UPSTREAM_ERROR"
	// ErrorInternal covers conversation state reads and writes.
	ErrorInternal ErrorCode = "INTERNAL_ERROR"
)

// Error carries a stable code for transport mapping and a short machine
// reason; Unwrap exposes the underlying cause.
type Error struct {
	Code   ErrorCode
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("usecase: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("usecase: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(code ErrorCode, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}
