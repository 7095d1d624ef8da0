package device

// Identity names a supported instrument family.
// Each Identity maps to exactly one Codec.
type Identity int

const (
	// IdentityUnknown is the zero value; no codec is registered for it.
	IdentityUnknown Identity = iota

	// VCMini is the Gyger VC Mini micro-valve controller.
	VCMini

	// MXII is the IDEX MX Series II multi-port selector valve.
	MXII

	// TG5012A is the Aim TTi TG5012A function generator.
	TG5012A
)

// String returns the instrument family name.
func (i Identity) String() string {
	switch i {
	case VCMini:
		return "VCMini"
	case MXII:
		return "MXII"
	case TG5012A:
		return "TG5012A"
	default:
		return "unknown"
	}
}

// Identities returns all supported instrument families.
func Identities() []Identity {
	return []Identity{VCMini, MXII, TG5012A}
}
