package serial

import (
	"fmt"
	"time"

	gobug "go.bug.st/serial"
)

// Default port settings. 8N1 is the framing used by all three supported
// instrument families; only the baud rate differs per family.
const (
	DefaultBaudRate    = 9600
	DefaultDataBits    = 8
	DefaultReadTimeout = 1 * time.Second
)

// Parity describes the serial parity setting.
type Parity int

const (
	// NoParity disables parity control (default).
	NoParity Parity = iota
	// OddParity enables odd-parity check.
	OddParity
	// EvenParity enables even-parity check.
	EvenParity
)

// StopBits describes the serial stop-bits setting.
type StopBits int

const (
	// OneStopBit sets 1 stop bit (default).
	OneStopBit StopBits = iota
	// OnePointFiveStopBits sets 1.5 stop bits.
	OnePointFiveStopBits
	// TwoStopBits sets 2 stop bits.
	TwoStopBits
)

// Config holds the settings applied to a port on Open.
// The zero value is usable: defaults are filled in by Open.
type Config struct {
	// BaudRate is the line speed in bits per second.
	BaudRate int

	// DataBits is the number of data bits per character (5-8).
	DataBits int

	// Parity is the parity mode.
	Parity Parity

	// StopBits is the number of stop bits.
	StopBits StopBits

	// ReadTimeout bounds every blocking read on the port. A ReadUntil
	// call fails with ErrReadTimeout when the terminator is not seen
	// within this window.
	ReadTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.BaudRate == 0 {
		c.BaudRate = DefaultBaudRate
	}
	if c.DataBits == 0 {
		c.DataBits = DefaultDataBits
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	return c
}

func (c Config) validate() error {
	if c.BaudRate < 0 {
		return fmt.Errorf("serial: baud rate %d: %w", c.BaudRate, ErrInvalidConfig)
	}
	if c.DataBits < 5 || c.DataBits > 8 {
		return fmt.Errorf("serial: data bits %d out of range [5, 8]: %w", c.DataBits, ErrInvalidConfig)
	}
	if c.ReadTimeout < 0 {
		return fmt.Errorf("serial: negative read timeout %v: %w", c.ReadTimeout, ErrInvalidConfig)
	}
	return nil
}

// mode maps Config onto the go.bug.st/serial Mode.
func (c Config) mode() *gobug.Mode {
	var parity gobug.Parity
	switch c.Parity {
	case OddParity:
		parity = gobug.OddParity
	case EvenParity:
		parity = gobug.EvenParity
	default:
		parity = gobug.NoParity
	}

	var stopBits gobug.StopBits
	switch c.StopBits {
	case OnePointFiveStopBits:
		stopBits = gobug.OnePointFiveStopBits
	case TwoStopBits:
		stopBits = gobug.TwoStopBits
	default:
		stopBits = gobug.OneStopBit
	}

	return &gobug.Mode{
		BaudRate: c.BaudRate,
		DataBits: c.DataBits,
		Parity:   parity,
		StopBits: stopBits,
	}
}
