package serial

import "errors"

var (
	// ErrPortUnavailable indicates that a serial port could not be opened
	// or claimed (missing device node, insufficient permission, or the
	// port is held by another process).
	ErrPortUnavailable = errors.New("serial port unavailable")

	// ErrPortClaimed indicates that the port is already open inside this
	// process. A port has at most one owner at a time; close the existing
	// Port before reopening.
	ErrPortClaimed = errors.New("serial port already claimed")

	// ErrPortClosed indicates an operation on a Port that has been closed.
	ErrPortClosed = errors.New("serial port closed")

	// ErrReadTimeout indicates that the expected terminator byte was not
	// observed within the read timeout.
	ErrReadTimeout = errors.New("serial read timeout")

	// ErrInvalidConfig indicates an invalid port configuration
	// (e.g. non-positive baud rate).
	ErrInvalidConfig = errors.New("invalid serial port config")
)
