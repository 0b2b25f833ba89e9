package orders

import "fmt"

type ErrKind int

const (
	KindValidation ErrKind = iota
	KindNotFound
	KindUnauthorized
	KindForbidden
	KindInsufficientStock
	KindPaymentNotCompleted
	KindConflict
	KindInternal
)

// Error carries a kind the HTTP boundary maps to a status code and a message
// safe to show to the caller.
type Error struct {
	Kind    ErrKind
	Message string
}

func (e *Error) Error() string { return e.Message }

func errf(kind ErrKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
