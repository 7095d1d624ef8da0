// Package device defines the instrument-independent protocol layer of
// sheetjet-go: device identities, the closed command model, response
// decoding results, the error taxonomy, and the Session type that
// drives one instrument over one exclusively-owned transport.
//
// Each instrument family (vcmini, mxii, tg5012a) contributes a Codec
// implementation translating its own command variants to and from wire
// bytes. The Session is family-agnostic: it owns the write-then-read
// exchange, echo confirmation, timeout mapping, and the lazily
// populated last-confirmed state per parameter.
//
// # Command model
//
// Commands are a closed set per family: each family package defines its
// own concrete command type and constructors, validated against the
// family's enumerated grammar before any bytes reach the wire. The
// generic Command interface exists only so the Session and discovery
// engine can carry commands opaquely; a Codec rejects commands of a
// foreign family with ErrValidation.
package device
