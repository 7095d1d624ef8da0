// Package tg5012a implements the remote-command grammar of the Aim TTi
// TG5012A function generator (per the TG5012A instruction manual).
//
// The instrument speaks a SCPI-flavored line protocol over serial or
// LAN: settings are written as "KEY value", queries as "KEY?", both
// newline-terminated. Settings are not acknowledged on the wire; the
// session confirms a set by querying the same parameter back. Keys are
// validated against the closed parameter set of the instrument before
// anything is written, so a typo fails locally instead of feeding the
// hardware malformed commands.
//
// By default the session returns the instrument to local (front-panel)
// control after every exchange, matching bench usage where an operator
// works alongside the control program.
//
// The generator provides the hardware trigger pulses for the micro
// valves controlled by package vcmini; the pulse width floor of those
// valves (10 µs) is enforced here when setting PULSWID.
package tg5012a
