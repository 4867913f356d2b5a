package chat

import "errors"

var (
	ErrInvalidArgument = errors.New("chat: invalid argument")
	ErrNoAddr          = errors.New("chat: could not resolve address")
	ErrAlreadyStarted  = errors.New("chat: already started")
	ErrNotStarted      = errors.New("chat: not started")
	ErrPortBusy        = errors.New("chat: port already in use")
	ErrTimeout         = errors.New("chat: operation timed out")

	// ErrSys wraps an underlying syscall failure; use errors.Unwrap or
	// errors.Is(err, ErrSys) to detect the category without caring about
	// the specific errno.
	ErrSys = errors.New("chat: system call failed")
)
