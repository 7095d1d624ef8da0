package tg5012a

import (
	"fmt"
	"strings"

	"github.com/sheetjet/sheetjet-go/device"
)

// Wire constants.
const (
	// DefaultBaudRate is the serial line speed (the instrument's USB
	// bridge default).
	DefaultBaudRate = 9600

	// Terminator ends every command and reply.
	Terminator = '\n'

	// ChannelCount is the number of output channels.
	ChannelCount = 2

	// MinPulseWidth is the minimum trigger pulse width, in seconds,
	// accepted by the micro valves this generator drives (10 µs).
	MinPulseWidth = 10e-6
)

// Codec encodes and decodes TG5012A commands.
// The zero value is ready to use.
type Codec struct{}

var _ device.Codec = Codec{}

// Identity returns device.TG5012A.
func (Codec) Identity() device.Identity { return device.TG5012A }

// Baud returns the serial line speed.
func (Codec) Baud() int { return DefaultBaudRate }

// Terminator returns the newline reply terminator.
func (Codec) Terminator() byte { return Terminator }

// Encode validates cmd against the recognized key set and produces its
// newline-terminated wire form. Unrecognized keys and out-of-domain
// values fail here, before any bytes are written.
func (Codec) Encode(cmd device.Command) ([]byte, error) {
	c, ok := cmd.(*command)
	if !ok {
		return nil, fmt.Errorf("%w: not a TG5012A command", device.ErrValidation)
	}

	spec, known := keySpecs[c.key]
	if !known {
		return nil, fmt.Errorf("%w: unrecognized parameter %q", device.ErrValidation, c.key)
	}

	switch c.kind {
	case device.KindQuery:
		if !spec.queryable {
			return nil, fmt.Errorf("%w: %s is not queryable", device.ErrValidation, c.key)
		}
		return []byte(c.key + "?" + string(Terminator)), nil

	case device.KindSet:
		if !spec.settable {
			return nil, fmt.Errorf("%w: %s is not settable", device.ErrValidation, c.key)
		}
		if err := checkValue(c.key, c.value); err != nil {
			return nil, err
		}
		return []byte(c.key + " " + c.value + string(Terminator)), nil

	default:
		if !spec.bare {
			return nil, fmt.Errorf("%w: %s requires a value", device.ErrValidation, c.key)
		}
		return []byte(c.key + string(Terminator)), nil
	}
}

// Decode strips the terminator and surrounding whitespace from the
// echoed value.
func (Codec) Decode(cmd device.Command, raw []byte) (device.Response, error) {
	if _, ok := cmd.(*command); !ok {
		return device.Response{}, fmt.Errorf("%w: not a TG5012A command", device.ErrValidation)
	}

	value := strings.TrimSpace(string(raw))
	if value == "" {
		return device.Response{}, fmt.Errorf("%w: empty reply", device.ErrDecode)
	}

	return device.Response{Raw: raw, Value: value}, nil
}

// IdentifyCommand returns the *IDN? query.
func (Codec) IdentifyCommand() device.Command {
	return QueryCmd(KeyID)
}

// MatchSignature reports whether raw looks like a TG5012A
// identification reply.
func (Codec) MatchSignature(raw []byte) bool {
	id := strings.ToUpper(string(raw))
	return strings.Contains(id, "THURLBY THANDAR") || strings.Contains(id, "TG5012A")
}
