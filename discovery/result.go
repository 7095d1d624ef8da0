package discovery

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sheetjet/sheetjet-go/device"
)

var (
	// ErrNotFound indicates that no port matched the requested
	// instrument's signature. The instrument may be unplugged or held by
	// another process.
	ErrNotFound = errors.New("device not discovered")

	// ErrAmbiguous indicates that more than one port matched the same
	// instrument signature. The caller must disambiguate manually, e.g.
	// by unplugging one candidate or supplying an explicit port.
	ErrAmbiguous = errors.New("multiple ports match device signature")
)

// AmbiguityError lists every candidate port for an instrument whose
// signature matched more than one port. It wraps ErrAmbiguous.
type AmbiguityError struct {
	Identity device.Identity
	Ports    []string
}

func (e *AmbiguityError) Error() string {
	return fmt.Sprintf("%s: %v: %s", e.Identity, ErrAmbiguous, strings.Join(e.Ports, ", "))
}

func (e *AmbiguityError) Unwrap() error { return ErrAmbiguous }

// Result maps instrument identities to the candidate ports whose probe
// reply matched their signature. Identities with no match are absent.
type Result struct {
	// Matches holds every candidate per identified family, in
	// enumeration order. A single-element slice is an unambiguous match.
	Matches map[device.Identity][]string
}

// Port returns the port assigned to id.
//
// It fails with ErrNotFound when no port matched and with an
// *AmbiguityError (wrapping ErrAmbiguous) when several did; the
// ambiguity is never resolved by an arbitrary pick.
func (r Result) Port(id device.Identity) (string, error) {
	ports := r.Matches[id]
	switch len(ports) {
	case 0:
		return "", fmt.Errorf("%s: %w", id, ErrNotFound)
	case 1:
		return ports[0], nil
	default:
		return "", &AmbiguityError{Identity: id, Ports: ports}
	}
}

// Ambiguous returns the identities that matched more than one port.
func (r Result) Ambiguous() []device.Identity {
	var ids []device.Identity
	for _, id := range device.Identities() {
		if len(r.Matches[id]) > 1 {
			ids = append(ids, id)
		}
	}
	return ids
}
