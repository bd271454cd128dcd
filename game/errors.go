package game

import (
	"errors"
	"fmt"
)

// Kind classifies engine errors so the transport layer can map them to a
// response without parsing messages.
type Kind int

const (
	KindUnknown Kind = iota
	// KindNotFound: game, unit, building or token does not exist.
	KindNotFound
	// KindPrecondition: the action is not legal against current state.
	KindPrecondition
	// KindConflict: a concurrent writer committed first; retrying the
	// whole action is safe.
	KindConflict
	// KindStoreUnavailable: the state store failed; nothing was written.
	KindStoreUnavailable
)

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NotFoundf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Preconditionf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindPrecondition, Msg: fmt.Sprintf(format, args...)}
}

// ErrConflict is returned when a compare-and-swap commit loses the race.
var ErrConflict = &Error{Kind: KindConflict, Msg: "game was modified concurrently, retry"}

func StoreError(err error) *Error {
	return &Error{Kind: KindStoreUnavailable, Msg: "state store failure", Err: err}
}

// KindOf extracts the Kind from any error in the chain, KindUnknown if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
