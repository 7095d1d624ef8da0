package device

import "time"

// Codec translates logical commands to and from the wire form of one
// instrument family.
//
// Encode validates the command against the family grammar (returning an
// error wrapping ErrValidation for out-of-range arguments or foreign
// command types) before producing bytes. Decode validates and strips
// the family's reply framing, returning an error wrapping ErrDecode on
// malformed replies and never a partially-parsed value.
type Codec interface {
	// Identity returns the instrument family this codec serves.
	Identity() Identity

	// Encode produces the wire bytes for cmd.
	Encode(cmd Command) ([]byte, error)

	// Decode validates raw as the reply to cmd and extracts the payload.
	Decode(cmd Command, raw []byte) (Response, error)

	// IdentifyCommand returns the lightweight query discovery sends to
	// probe a port for this family.
	IdentifyCommand() Command

	// MatchSignature reports whether raw looks like this family's reply
	// to its identification command.
	MatchSignature(raw []byte) bool

	// Baud returns the family's serial line speed.
	Baud() int

	// Terminator returns the byte ending every reply from the device.
	Terminator() byte
}

// Transport is the byte-stream duplex channel a session drives.
// serial.Port satisfies it; the tg5012a package also provides a LAN
// (TCP) implementation.
type Transport interface {
	// Name identifies the endpoint for diagnostics (port path or
	// network address).
	Name() string

	// Write writes all bytes in p.
	Write(p []byte) (int, error)

	// ReadUntil reads until term or timeout; on timeout it fails with an
	// error reporting Timeout() true or wrapping serial.ErrReadTimeout.
	ReadUntil(term byte, timeout time.Duration) ([]byte, error)

	// Close closes the channel. Closing an owned transport releases the
	// session's exclusive claim.
	Close() error
}
