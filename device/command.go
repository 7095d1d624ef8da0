package device

// Kind classifies a command by its exchange pattern.
type Kind int

const (
	// KindQuery reads a value from the device without changing state.
	KindQuery Kind = iota

	// KindSet writes a value. The session confirms the write against the
	// device's echo (or a follow-up query, for families that do not echo)
	// and flags mismatches as unconfirmed sets.
	KindSet

	// KindExecute triggers an action. The device acknowledges but returns
	// no value.
	KindExecute
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindQuery:
		return "query"
	case KindSet:
		return "set"
	case KindExecute:
		return "execute"
	default:
		return "invalid"
	}
}

// Command is one logical operation understood by a single instrument
// family. Concrete command types live in the family packages and form a
// closed set; a Codec rejects commands it does not recognize.
type Command interface {
	// Name returns the stable logical parameter name, used for
	// diagnostics and as the key of the session's confirmed-state cache
	// (e.g. "address", "port", "CHN").
	Name() string

	// Kind returns the exchange pattern of the command.
	Kind() Kind

	// Arg returns the encoded argument and whether one is present.
	Arg() (string, bool)
}

// Response is the decoded result of one exchange. Responses are never
// cached; every call re-reads the device.
type Response struct {
	// Raw holds the reply bytes exactly as read from the wire,
	// terminator included.
	Raw []byte

	// Value is the decoded payload with echo framing and terminators
	// stripped.
	Value string
}
