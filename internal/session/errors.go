package session

import (
	"errors"
	"fmt"
)

// ErrorKind groups session failures by what the caller can do about
// them.
type ErrorKind int

const (
	// KindInputMissing marks operations refused up front: no design
	// open, no roles assigned, no reference net, an empty selection.
	// Nothing happened; fix the input and retry.
	KindInputMissing ErrorKind = iota
	// KindStorage marks storage engine failures mid-operation. Work
	// finished before the failure is kept.
	KindStorage
	// KindPersist marks a failed commit reopen. The session state is
	// cleared; the design must be opened again.
	KindPersist
)

func (k ErrorKind) String() string {
	switch k {
	case KindInputMissing:
		return "input missing"
	case KindStorage:
		return "storage failure"
	case KindPersist:
		return "persist failure"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error is a classified session failure.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a session error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var se *Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Kind == kind
}

func inputMissing(op string, err error) *Error {
	return &Error{Kind: KindInputMissing, Op: op, Err: err}
}

func storageFailure(op string, err error) *Error {
	return &Error{Kind: KindStorage, Op: op, Err: err}
}

func persistFailure(op string, err error) *Error {
	return &Error{Kind: KindPersist, Op: op, Err: err}
}
