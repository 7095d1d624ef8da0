package mxii

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sheetjet/sheetjet-go/device"
)

// Wire constants.
const (
	// BaudRate is the fixed line speed of the MX II serial interface.
	BaudRate = 19200

	// Terminator ends every command and reply.
	Terminator = '\r'

	// PortCount is the number of physical ports on the valve.
	PortCount = 16
)

// command is the closed command variant for the MX II family.
type command struct {
	name string
	kind device.Kind
	wire string
	arg  string
}

func (c *command) Name() string        { return c.name }
func (c *command) Kind() device.Kind   { return c.kind }
func (c *command) Arg() (string, bool) { return c.arg, c.arg != "" }

// StatusQuery builds the current-port status query ("S").
func StatusQuery() device.Command {
	return &command{name: "port", kind: device.KindQuery, wire: "S"}
}

// SetPort builds the move command selecting port n ("Pnn" in hex).
// n is validated against PortCount at encode time.
func SetPort(n int) device.Command {
	return &command{name: "port", kind: device.KindSet, wire: fmt.Sprintf("P%02X", n), arg: strconv.Itoa(n)}
}

// Home builds the homing command ("M00"). The valve does not reply.
func Home() device.Command {
	return &command{name: "home", kind: device.KindExecute, wire: "M00"}
}

// ModeQuery builds the mode query ("D00").
func ModeQuery() device.Command {
	return &command{name: "mode", kind: device.KindQuery, wire: "D00"}
}

// Codec encodes and decodes MX II commands.
// The zero value is ready to use.
type Codec struct{}

var _ device.Codec = Codec{}

// Identity returns device.MXII.
func (Codec) Identity() device.Identity { return device.MXII }

// Baud returns the MX II line speed.
func (Codec) Baud() int { return BaudRate }

// Terminator returns the CR reply terminator.
func (Codec) Terminator() byte { return Terminator }

// Encode validates cmd and produces its CR-terminated wire form.
// Out-of-range ports are rejected here, before any bytes are written.
func (Codec) Encode(cmd device.Command) ([]byte, error) {
	c, ok := cmd.(*command)
	if !ok {
		return nil, fmt.Errorf("%w: not an MX II command", device.ErrValidation)
	}

	if c.kind == device.KindSet {
		n, err := strconv.Atoi(c.arg)
		if err != nil || n < 1 || n > PortCount {
			return nil, fmt.Errorf("%w: port %s out of range [1, %d]", device.ErrValidation, c.arg, PortCount)
		}
	}

	return []byte(c.wire + string(Terminator)), nil
}

// Decode parses a CR-terminated hexadecimal reply, normalizing the
// value to decimal so it compares directly against requested ports.
func (Codec) Decode(cmd device.Command, raw []byte) (device.Response, error) {
	if _, ok := cmd.(*command); !ok {
		return device.Response{}, fmt.Errorf("%w: not an MX II command", device.ErrValidation)
	}

	line := strings.TrimSpace(string(raw))
	v, err := strconv.ParseInt(line, 16, 32)
	if err != nil {
		return device.Response{}, fmt.Errorf("%w: reply %q is not hexadecimal", device.ErrDecode, line)
	}

	return device.Response{Raw: raw, Value: strconv.Itoa(int(v))}, nil
}

// IdentifyCommand returns the status query, a read-only probe.
func (Codec) IdentifyCommand() device.Command {
	return StatusQuery()
}

// MatchSignature reports whether raw looks like an MX II status reply:
// one or two hex digits terminated by CR.
func (Codec) MatchSignature(raw []byte) bool {
	line := strings.TrimSpace(string(raw))
	if len(line) == 0 || len(line) > 2 {
		return false
	}
	_, err := strconv.ParseInt(line, 16, 32)
	return err == nil
}
