// Package serial provides the byte-oriented transport boundary for
// sheetjet-go: opening, configuring, and enumerating serial ports.
//
// The instrument packages (vcmini, mxii, tg5012a) and the discovery
// engine never touch the OS serial stack directly; they operate on the
// [Port] interface, which adds terminator-bounded reads with explicit
// timeouts on top of the raw byte stream.
//
// Ports are exclusively owned: a port name that is already open inside
// this process cannot be opened again until the first Port is closed.
// This enforces the one-session-per-port ownership model structurally,
// without locks in the protocol layer.
//
// The underlying implementation is go.bug.st/serial.
package serial
