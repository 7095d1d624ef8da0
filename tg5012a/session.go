package tg5012a

import (
	"strconv"

	"github.com/sheetjet/sheetjet-go/device"
	"github.com/sheetjet/sheetjet-go/serial"
)

// PulseConfig collects the settings applied by Session.Pulse.
// Start from DefaultPulseConfig and override fields as needed.
type PulseConfig struct {
	// Frequency is the pulse repetition rate in Hz.
	Frequency float64
	// Width is the pulse width in seconds. Must be at least
	// MinPulseWidth.
	Width float64
	// Rise and Fall are the edge times in seconds.
	Rise float64
	Fall float64
	// High and Low are the amplitude levels in volts.
	High float64
	Low  float64
	// Delay is the pulse delay in seconds.
	Delay float64
	// Phase is the output phase in degrees.
	Phase float64
	// Output is the output state: "ON", "OFF", "NORMAL" or "INVERT".
	Output string
}

// DefaultPulseConfig returns a 1 Hz, 100 ms, 0-1 V pulse with 1 ms
// edges and the output enabled.
func DefaultPulseConfig() PulseConfig {
	return PulseConfig{
		Frequency: 1,
		Width:     0.1,
		Rise:      0.001,
		Fall:      0.001,
		High:      1,
		Low:       0,
		Output:    "ON",
	}
}

// Session drives one TG5012A function generator over serial or LAN.
type Session struct {
	dev *device.Session

	// autoLocal returns the instrument to front-panel control after
	// every exchange.
	autoLocal bool
}

// Open opens the named serial port and binds a session, verifying the
// connection with an identification query.
func Open(portName string, opts ...device.Option) (*Session, error) {
	port, err := serial.Open(portName, serial.Config{BaudRate: DefaultBaudRate})
	if err != nil {
		return nil, err
	}

	return newVerified(port, opts)
}

// OpenLAN connects to the instrument's TCP control port
// (host:port, typically port 9221) and binds a session.
func OpenLAN(address string, opts ...device.Option) (*Session, error) {
	t, err := dialLAN(address)
	if err != nil {
		return nil, err
	}

	return newVerified(t, opts)
}

// NewSession binds a session to an already-open transport without the
// identification handshake.
func NewSession(t device.Transport, opts ...device.Option) (*Session, error) {
	dev, err := device.NewSession(t, Codec{}, opts...)
	if err != nil {
		return nil, err
	}
	return &Session{dev: dev, autoLocal: true}, nil
}

func newVerified(t device.Transport, opts []device.Option) (*Session, error) {
	s, err := NewSession(t, opts...)
	if err != nil {
		_ = t.Close()
		return nil, err
	}
	if _, err := s.ID(); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the session and its transport.
func (s *Session) Close() error { return s.dev.Close() }

// SetAutoLocal controls whether the instrument is returned to local
// (front-panel) mode after each command. Enabled by default.
func (s *Session) SetAutoLocal(enabled bool) { s.autoLocal = enabled }

// Query sends "KEY?" and returns the instrument's reply. The key must
// belong to the instrument's recognized parameter set; a trailing "?"
// is tolerated.
func (s *Session) Query(key string) (string, error) {
	resp, err := s.dev.Query(QueryCmd(key))
	if err != nil {
		return "", err
	}
	s.local(normalizeKey(key))

	return resp.Value, nil
}

// Set sends "KEY value". For queryable keys the session confirms the
// write by querying the parameter back; a mismatch fails with
// device.ErrUnconfirmedSet. Settings whose key cannot be queried are
// write-only, as on the instrument itself.
func (s *Session) Set(key, value string) error {
	cmd := SetCmd(key, value)
	k := normalizeKey(key)

	var err error
	if spec, known := keySpecs[k]; known && spec.queryable {
		_, err = s.dev.SetConfirmed(cmd, QueryCmd(k))
	} else {
		err = s.dev.Send(cmd)
	}
	if err != nil {
		return err
	}
	s.local(k)

	return nil
}

// execute sends a value-less command (ALIGN, *RST, LOCAL, ...).
func (s *Session) execute(key string) error {
	if err := s.dev.Send(BareCmd(key)); err != nil {
		return err
	}
	s.local(normalizeKey(key))

	return nil
}

// local restores front-panel control after a remote command, unless the
// command itself was LOCAL or auto-local is disabled.
func (s *Session) local(key string) {
	if !s.autoLocal || key == KeyLocal {
		return
	}
	_ = s.dev.Send(BareCmd(KeyLocal))
}

// --- Channel selection ---

// Channel queries the active channel.
func (s *Session) Channel() (int, error) {
	v, err := s.Query(KeyChannel)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(v)
}

// SetChannel selects the active channel (1 or 2) with confirmation.
func (s *Session) SetChannel(n int) error {
	return s.Set(KeyChannel, strconv.Itoa(n))
}

// --- Carrier wave settings ---

// SetWave sets the output waveform (e.g. "SINE", "SQUARE", "PULSE").
func (s *Session) SetWave(wave string) error { return s.Set(KeyWave, wave) }

// SetFrequency sets the output frequency in Hz.
func (s *Session) SetFrequency(hz float64) error { return s.Set(KeyFrequency, formatFloat(hz)) }

// SetAmplitude sets the output amplitude in volts.
func (s *Session) SetAmplitude(v float64) error { return s.Set(KeyAmplitude, formatFloat(v)) }

// SetOffset sets the DC offset in volts.
func (s *Session) SetOffset(v float64) error { return s.Set(KeyOffset, formatFloat(v)) }

// SetHigh sets the amplitude high level in volts.
func (s *Session) SetHigh(v float64) error { return s.Set(KeyHighLevel, formatFloat(v)) }

// SetLow sets the amplitude low level in volts.
func (s *Session) SetLow(v float64) error { return s.Set(KeyLowLevel, formatFloat(v)) }

// SetOutput sets the output state: "ON", "OFF", "NORMAL" or "INVERT".
func (s *Session) SetOutput(state string) error { return s.Set(KeyOutput, state) }

// SetOutputLoad sets the assumed output load in ohms.
func (s *Session) SetOutputLoad(ohms float64) error { return s.Set(KeyOutputLoad, formatFloat(ohms)) }

// SetPhase sets the output phase in degrees.
func (s *Session) SetPhase(deg float64) error { return s.Set(KeyPhase, formatFloat(deg)) }

// Align aligns the zero phase reference of both channels.
func (s *Session) Align() error { return s.execute(KeyAlign) }

// --- Pulse generator settings ---

// SetPulseFrequency sets the pulse repetition rate in Hz.
func (s *Session) SetPulseFrequency(hz float64) error {
	return s.Set(KeyPulseFrequency, formatFloat(hz))
}

// SetPulseWidth sets the pulse width in seconds. Widths below
// MinPulseWidth are rejected before anything is written: the driven
// micro valves cannot follow shorter trigger pulses.
func (s *Session) SetPulseWidth(sec float64) error {
	return s.Set(KeyPulseWidth, formatFloat(sec))
}

// SetPulseRise sets the pulse rise time in seconds.
func (s *Session) SetPulseRise(sec float64) error { return s.Set(KeyPulseRise, formatFloat(sec)) }

// SetPulseFall sets the pulse fall time in seconds.
func (s *Session) SetPulseFall(sec float64) error { return s.Set(KeyPulseFall, formatFloat(sec)) }

// SetPulseDelay sets the pulse delay in seconds.
func (s *Session) SetPulseDelay(sec float64) error { return s.Set(KeyPulseDelay, formatFloat(sec)) }

// Pulse configures the output as a pulse train in one call.
func (s *Session) Pulse(cfg PulseConfig) error {
	if err := s.SetWave("PULSE"); err != nil {
		return err
	}
	if err := s.SetFrequency(cfg.Frequency); err != nil {
		return err
	}
	if err := s.SetPulseWidth(cfg.Width); err != nil {
		return err
	}
	if err := s.SetPulseRise(cfg.Rise); err != nil {
		return err
	}
	if err := s.SetPulseFall(cfg.Fall); err != nil {
		return err
	}
	if err := s.SetPulseDelay(cfg.Delay); err != nil {
		return err
	}
	if err := s.SetHigh(cfg.High); err != nil {
		return err
	}
	if err := s.SetLow(cfg.Low); err != nil {
		return err
	}
	if err := s.SetPhase(cfg.Phase); err != nil {
		return err
	}
	return s.SetOutput(cfg.Output)
}

// --- System and status ---

// ID returns the instrument identification string.
func (s *Session) ID() (string, error) { return s.Query(KeyID) }

// QueryError reads and clears the query error register.
func (s *Session) QueryError() (string, error) { return s.Query(KeyQueryError) }

// ExecutionError reads and clears the execution error register.
func (s *Session) ExecutionError() (string, error) { return s.Query(KeyExecError) }

// ClearStatus clears the status registers.
func (s *Session) ClearStatus() error { return s.execute(KeyClearStatus) }

// Reset resets the instrument.
func (s *Session) Reset() error { return s.execute(KeyReset) }

// Save stores the current settings at a non-volatile memory address.
func (s *Session) Save(addr int) error { return s.Set(KeySave, strconv.Itoa(addr)) }

// Recall restores settings from a non-volatile memory address.
func (s *Session) Recall(addr int) error { return s.Set(KeyRecall, strconv.Itoa(addr)) }

// WaitForCompletion blocks until the instrument reports pending
// operations complete.
func (s *Session) WaitForCompletion() error {
	_, err := s.Query(KeyOpComplete)
	return err
}

// Local returns the instrument to front-panel control.
func (s *Session) Local() error { return s.execute(KeyLocal) }

// Beep sounds the instrument's beeper once.
func (s *Session) Beep() error { return s.execute(KeyBeep) }

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
