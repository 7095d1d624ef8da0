package device

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation indicates a caller-supplied argument outside the
	// device's legal domain. The command is rejected before any bytes are
	// written to the transport.
	ErrValidation = errors.New("argument outside device's legal range")

	// ErrCommunicationTimeout indicates that no (complete) response
	// arrived within the configured window. The transport is left open;
	// the caller decides whether to retry or close. The session never
	// resends on its own, since resending a stateful command could
	// double-apply side effects on hardware.
	ErrCommunicationTimeout = errors.New("no response within timeout")

	// ErrDecode indicates a response was received but does not parse per
	// the device's grammar.
	ErrDecode = errors.New("response does not match device grammar")

	// ErrUnconfirmedSet indicates the device accepted a write but echoed
	// (or subsequently reported) a different value than requested. The
	// session records the device's actual value, not the requested one.
	ErrUnconfirmedSet = errors.New("device state differs from requested value")

	// ErrBusy indicates the device refused the command because an
	// external trigger mode is active (VC Mini replies "?").
	ErrBusy = errors.New("device busy")

	// ErrSessionClosed indicates an operation on a closed session.
	ErrSessionClosed = errors.New("session closed")
)

// CommandError decorates a failure with the context an operator needs
// to diagnose a hardware-layer problem without reading wire bytes by
// hand: which instrument, which command, and what actually came back.
type CommandError struct {
	// Identity is the instrument family the command was sent to.
	Identity Identity

	// Command is the logical name of the attempted command.
	Command string

	// Raw holds whatever reply bytes were read before the failure, if any.
	Raw []byte

	// Err is the underlying failure, one of the sentinel errors above or
	// a transport error.
	Err error
}

func (e *CommandError) Error() string {
	if len(e.Raw) > 0 {
		return fmt.Sprintf("%s: command %q: %v (reply %q)", e.Identity, e.Command, e.Err, e.Raw)
	}
	return fmt.Sprintf("%s: command %q: %v", e.Identity, e.Command, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

// newCommandError wraps err with command context. Raw may be nil.
func newCommandError(id Identity, cmd string, raw []byte, err error) *CommandError {
	return &CommandError{Identity: id, Command: cmd, Raw: raw, Err: err}
}
