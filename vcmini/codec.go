package vcmini

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sheetjet/sheetjet-go/device"
)

// Wire framing constants.
const (
	// BaudRate is the fixed line speed of the VC Mini serial interface.
	BaudRate = 38400

	// Terminator ends every controller reply: the ">" entry prompt.
	Terminator = '>'

	// busyEcho is the reply line sent while an external trigger mode is
	// active and the module accepts no entries.
	busyEcho = "?"

	// promptSuffix follows the echo line in every reply.
	promptSuffix = "\r>"
)

// Codec encodes and decodes VC Mini commands.
// The zero value is ready to use.
type Codec struct{}

var _ device.Codec = Codec{}

// Identity returns device.VCMini.
func (Codec) Identity() device.Identity { return device.VCMini }

// Baud returns the VC Mini line speed.
func (Codec) Baud() int { return BaudRate }

// Terminator returns the prompt byte ending every reply.
func (Codec) Terminator() byte { return Terminator }

// Encode validates cmd against the parameter ranges from the manual and
// produces its wire form: an optional decimal value followed by the
// command letter.
func (Codec) Encode(cmd device.Command) ([]byte, error) {
	c, ok := cmd.(*command)
	if !ok {
		return nil, fmt.Errorf("%w: not a VC Mini command", device.ErrValidation)
	}
	if c.letter == 0 {
		return nil, fmt.Errorf("%w: invalid valve number", device.ErrValidation)
	}

	if c.hasValue && c.kind == device.KindSet && !c.unchecked {
		if err := checkRange(c); err != nil {
			return nil, err
		}
	}
	if c.letter == loadParamsLetter && (c.value < 0 || c.value > 7) {
		return nil, fmt.Errorf("%w: parameter position %d out of range [0, 7]", device.ErrValidation, c.value)
	}

	if c.hasValue {
		return []byte(fmt.Sprintf("%d%c", c.value, c.letter)), nil
	}

	return []byte{c.letter}, nil
}

// Decode validates the echo line and prompt framing of raw and extracts
// the reply value.
//
// The reply to any command is "<echo>\r\n\r>". The echo is the command
// itself for sets and executes, "." plus the command letter plus the
// value for queries, and "?" while the module is busy.
func (Codec) Decode(cmd device.Command, raw []byte) (device.Response, error) {
	c, ok := cmd.(*command)
	if !ok {
		return device.Response{}, fmt.Errorf("%w: not a VC Mini command", device.ErrValidation)
	}

	line, err := splitReply(raw)
	if err != nil {
		return device.Response{}, err
	}
	if line == busyEcho {
		return device.Response{}, fmt.Errorf("%w: module in external trigger mode", device.ErrBusy)
	}

	switch c.kind {
	case device.KindExecute:
		if line != string(c.letter) {
			return device.Response{}, fmt.Errorf("%w: echo %q does not match command %q", device.ErrDecode, line, c.letter)
		}
		return device.Response{Raw: raw}, nil

	case device.KindSet:
		echoed, found := strings.CutSuffix(line, string(c.letter))
		if !found {
			return device.Response{}, fmt.Errorf("%w: echo %q does not match command %q", device.ErrDecode, line, c.letter)
		}
		if _, err := strconv.Atoi(echoed); err != nil {
			return device.Response{}, fmt.Errorf("%w: echoed value %q is not numeric", device.ErrDecode, echoed)
		}
		return device.Response{Raw: raw, Value: echoed}, nil

	default: // query
		if c.hasValue {
			// Query-with-value form (load parameter set): echo is "<value>.<letter>".
			want := fmt.Sprintf("%d.%c", c.value, c.letter)
			if line != want {
				return device.Response{}, fmt.Errorf("%w: echo %q, want %q", device.ErrDecode, line, want)
			}
			return device.Response{Raw: raw, Value: strconv.Itoa(c.value)}, nil
		}

		prefix := "." + string(c.letter)
		value, found := strings.CutPrefix(line, prefix)
		if !found {
			return device.Response{}, fmt.Errorf("%w: echo %q, want prefix %q", device.ErrDecode, line, prefix)
		}
		return device.Response{Raw: raw, Value: value}, nil
	}
}

// IdentifyCommand returns the address query, a read-only probe whose
// reply carries the module-type signature.
func (Codec) IdentifyCommand() device.Command {
	return Query(Address)
}

// MatchSignature reports whether raw looks like a VC Mini address-query
// reply: a ".=" echo followed by the "\r>" prompt.
func (Codec) MatchSignature(raw []byte) bool {
	line, err := splitReply(raw)
	if err != nil {
		return false
	}
	return strings.HasPrefix(line, ".=")
}

// splitReply validates the "<line>\r\n\r>" reply framing and returns
// the echo line.
func splitReply(raw []byte) (string, error) {
	reply := string(raw)
	line, prompt, found := strings.Cut(reply, "\n")
	if !found || prompt != promptSuffix {
		return "", fmt.Errorf("%w: reply %q missing prompt", device.ErrDecode, reply)
	}
	return strings.TrimSuffix(line, "\r"), nil
}

// checkRange enforces the manual's parameter limits.
func checkRange(c *command) error {
	for _, spec := range paramSpecs {
		if spec.setLetter != c.letter {
			continue
		}
		if c.value < spec.min || c.value > spec.max {
			return fmt.Errorf("%w: %s %d out of range [%d, %d]",
				device.ErrValidation, spec.name, c.value, spec.min, spec.max)
		}
		return nil
	}
	return nil
}
