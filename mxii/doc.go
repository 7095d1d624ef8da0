// Package mxii implements the serial command grammar of IDEX MX
// Series II multi-port selector valves (per the MX Series II driver
// development package and the Rheolink communication protocol).
//
// The protocol is line-oriented ASCII at 19200 8N1, commands and
// replies terminated by CR. The valve's observable state is a single
// register: the currently selected port. Moves ("Pnn") and homing
// ("M00") are not acknowledged on the wire; the session confirms a move
// by re-reading the status register ("S"), which replies with the
// current port in hexadecimal. Status values above the port count are
// valve fault codes.
package mxii
