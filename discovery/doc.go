// Package discovery associates serial ports with instrument identities
// without prior knowledge of port assignment.
//
// The engine enumerates the serial ports visible to the OS and probes
// each one with the identification command of every known instrument
// family, at that family's line speed and with a short read timeout so
// unrelated hardware cannot stall the scan. A port whose reply matches
// exactly one family's signature is recorded for that family.
//
// Port numbering is not stable across reconnects (duplicate COM-port
// assignment is a documented hazard on the deployment platform), so the
// enumeration is regenerated on every call and two ports may plausibly
// match the same signature. Discovery never picks one silently: the
// result keeps every candidate, and Result.Port surfaces the ambiguity
// for the operator to resolve.
//
// Discovered assignments can be persisted to a YAML cache file and
// revalidated against the live enumeration on the next run, so a bench
// setup that has not been re-plugged skips the probe entirely.
package discovery
