// Package vcmini implements the serial command grammar of the Gyger
// VC Mini micro-valve controller (per the "Manual serial interface
// VC Mini" rev 2.00).
//
// The protocol is line-oriented ASCII at 38400 8N1. A command is an
// optional decimal value followed by a single command letter; the
// controller echoes the command, appends the value for queries, and
// terminates every reply with a CR LF CR ">" prompt. A bare "?" echo
// means the module is busy in an external trigger mode.
//
// Command letters fall into three groups:
//
//   - queries (lowercase): current parameter values, status, counters
//   - parametrization (uppercase): write a parameter, echoed back
//   - execution (single letter): software trigger, arm/disarm, counter reset
//
// The controller itself does not time trigger pulses; pulse timing
// belongs to the external function generator (see package tg5012a).
package vcmini
