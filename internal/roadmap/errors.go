package roadmap

import "fmt"

type ErrorCode string

const (
	// ErrorUpstream covers transport and service failures; the cause is
	// wrapped, never retried.
	ErrorUpstream ErrorCode = "UPSTREAM_ERROR"
	// ErrorEmptyReply means the service answered with no textual content.
	ErrorEmptyReply ErrorCode = "UPSTREAM_EMPTY_REPLY"
	// ErrorMalformed means the detection reply was not a valid judgment.
	ErrorMalformed ErrorCode = "MALFORMED_RESPONSE"
)

// Error is the failure surface of the classifier and generator. Callers
// branch on Code via errors.As; Unwrap exposes the transport or parse cause.
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
		return fmt.Sprintf("roadmap: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("roadmap: %s (%s): %v", e.Code, e.Reason, e.Err)
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
