package corobus

import "errors"

// Sentinel errors returned by Bus operations. Unlike the source's
// process-wide coro_bus_errno, every call here returns its own error value
// directly.
var (
	// ErrNoChannel is returned when the channel id names a slot that was
	// never opened, or has since been closed.
	ErrNoChannel = errors.New("corobus: no such channel")

	// ErrWouldBlock is returned only by the non-blocking Try* variants,
	// when a send would exceed capacity or a receive would starve.
	ErrWouldBlock = errors.New("corobus: would block")
)
