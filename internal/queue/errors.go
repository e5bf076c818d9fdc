package queue

import "fmt"

// Code is a stable, machine-readable reason for a rejected operation.
// The HTTP layer sends it to clients as is.
type Code string

const (
	// CodeOwnerAlreadyQueued: the show already has an owner request (jukebox)
	// or an owner vote (voting).
	CodeOwnerAlreadyQueued Code = "OWNER_ALREADY_QUEUED"

	// CodeWrongMode: the operation belongs to the other viewer control mode.
	CodeWrongMode Code = "WRONG_CONTROL_MODE"

	CodeSequenceNotFound Code = "SEQUENCE_NOT_FOUND"
	CodeInvalidMode      Code = "INVALID_CONTROL_MODE"
)

// Error is a business-rule rejection. Two Errors match under errors.Is
// when their codes match, so callers compare against the Err* values.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrOwnerAlreadyQueued = &Error{Code: CodeOwnerAlreadyQueued}
	ErrWrongMode          = &Error{Code: CodeWrongMode}
	ErrSequenceNotFound   = &Error{Code: CodeSequenceNotFound}
	ErrInvalidMode        = &Error{Code: CodeInvalidMode}
)

func newError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}
