package bus

import (
	"errors"
	"fmt"
)

var (
	ErrSignatureMismatch = errors.New("argument signature mismatch")
	ErrEmptyReply        = errors.New("empty reply")
	ErrUnexpectedReply   = errors.New("unexpected reply type")
)

// Error is returned when a remote call fails. It carries the call that failed.
type Error struct {
	Call Call
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("dbus call %s failed: %v", e.Call, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
