package game

import "fmt"

// Code is a machine-readable error code.
type Code string

const (
	CodeNotFound      Code = "NOT_FOUND"
	CodeInvalidParent Code = "INVALID_PARENT"
	CodeCycle         Code = "CYCLE"
	CodeValidation    Code = "VALIDATION"
	CodeInvalidState  Code = "INVALID_STATE"
)

// Error is returned by every fallible State operation. The receiver state is
// never modified when one is returned.
type Error struct {
	Code    Code
	Message string
	// ID is the object id the failure refers to, 0 when not applicable.
	ID int
}

func (e *Error) Error() string {
	return e.Message
}

// Is reports whether target matches this error by code, so callers can use
// errors.Is(err, game.ErrCycle).
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

var (
	// ErrNotFound: the referenced object does not exist.
	ErrNotFound = &Error{Code: CodeNotFound, Message: "object not found"}
	// ErrInvalidParent: a non-zero parent id does not exist.
	ErrInvalidParent = &Error{Code: CodeInvalidParent, Message: "invalid parent"}
	// ErrCycle: a move would make an object its own ancestor.
	ErrCycle = &Error{Code: CodeCycle, Message: "move would create a cycle"}
	// ErrValidation: a choice selection is out of bounds.
	ErrValidation = &Error{Code: CodeValidation, Message: "invalid selection"}
	// ErrInvalidState: the engine is not in a state that allows the call.
	ErrInvalidState = &Error{Code: CodeInvalidState, Message: "invalid engine state"}
)

func newError(code Code, id int, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		ID:      id,
	}
}
