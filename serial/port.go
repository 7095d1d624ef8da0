package serial

import (
	"fmt"
	"time"

	gobug "go.bug.st/serial"
)

// portHandle is the subset of go.bug.st/serial.Port the package relies on.
// Tests substitute fakes through the openPort variable below.
type portHandle interface {
	SetReadTimeout(timeout time.Duration) error
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
}

// Overridable constructors so tests can run without real hardware.
var (
	openPort = func(name string, mode *gobug.Mode) (portHandle, error) {
		return gobug.Open(name, mode)
	}
	listPorts = gobug.GetPortsList
)

// Port is an open serial connection with terminator-bounded reads.
//
// A Port is not goroutine-safe; the owning session serializes access,
// consistent with the strictly synchronous request/response model of
// the supported instruments.
type Port interface {
	// Name returns the OS port name the Port was opened on
	// (e.g. "COM3", "/dev/ttyUSB0").
	Name() string

	// Write writes all bytes in p, returning the number written.
	Write(p []byte) (int, error)

	// Read reads up to len(p) bytes, blocking until at least one byte
	// arrives or the read timeout expires. On timeout it returns 0, nil.
	Read(p []byte) (int, error)

	// ReadUntil reads until term is observed, returning everything read
	// up to and including term. If term does not arrive within timeout
	// the call fails with ErrReadTimeout; any bytes that did arrive are
	// returned alongside the error for diagnosis.
	ReadUntil(term byte, timeout time.Duration) ([]byte, error)

	// SetReadTimeout changes the default timeout applied by ReadUntil
	// and Read.
	SetReadTimeout(d time.Duration) error

	// Close closes the port and releases its claim. Close is idempotent.
	Close() error
}

// Open opens and claims the named serial port.
//
// It fails with ErrPortClaimed if the port is already open inside this
// process, and with ErrPortUnavailable if the OS-level open fails.
func Open(name string, cfg Config) (Port, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if !claim(name) {
		return nil, fmt.Errorf("serial: %s: %w", name, ErrPortClaimed)
	}

	handle, err := openPort(name, cfg.mode())
	if err != nil {
		release(name)
		return nil, fmt.Errorf("serial: open %s: %w: %w", name, ErrPortUnavailable, err)
	}

	if err := handle.SetReadTimeout(cfg.ReadTimeout); err != nil {
		_ = handle.Close()
		release(name)
		return nil, fmt.Errorf("serial: set read timeout on %s: %w", name, err)
	}

	return &port{
		name:    name,
		handle:  handle,
		timeout: cfg.ReadTimeout,
	}, nil
}

// ListPorts enumerates the serial ports currently visible to the OS.
//
// The list is regenerated on every call. Port numbering is not stable
// across device reconnects, so callers must not cache the result beyond
// the operation at hand.
func ListPorts() ([]string, error) {
	ports, err := listPorts()
	if err != nil {
		return nil, fmt.Errorf("serial: enumerate ports: %w", err)
	}
	return ports, nil
}

type port struct {
	name    string
	handle  portHandle
	timeout time.Duration
	closed  bool
}

func (p *port) Name() string { return p.name }

func (p *port) Write(b []byte) (int, error) {
	if p.closed {
		return 0, fmt.Errorf("serial: write %s: %w", p.name, ErrPortClosed)
	}
	// Serial writes may be short; push until done.
	for written := 0; written < len(b); {
		n, err := p.handle.Write(b[written:])
		written += n
		if err != nil {
			return written, fmt.Errorf("serial: write %s: %w", p.name, err)
		}
	}
	return len(b), nil
}

func (p *port) Read(b []byte) (int, error) {
	if p.closed {
		return 0, fmt.Errorf("serial: read %s: %w", p.name, ErrPortClosed)
	}
	return p.handle.Read(b)
}

func (p *port) ReadUntil(term byte, timeout time.Duration) ([]byte, error) {
	if p.closed {
		return nil, fmt.Errorf("serial: read %s: %w", p.name, ErrPortClosed)
	}
	if timeout <= 0 {
		timeout = p.timeout
	}

	deadline := time.Now().Add(timeout)
	buf := make([]byte, 0, 64)
	chunk := make([]byte, 1)

	// The handle timeout is narrowed to the remaining window before each
	// read, then restored, so a short probe timeout is honored even when
	// the port default is longer.
	defer func() { _ = p.handle.SetReadTimeout(p.timeout) }()

	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}
		if err := p.handle.SetReadTimeout(remaining); err != nil {
			return buf, fmt.Errorf("serial: read %s: %w", p.name, err)
		}

		n, err := p.handle.Read(chunk)
		if err != nil {
			return buf, fmt.Errorf("serial: read %s: %w", p.name, err)
		}
		if n == 0 {
			// Underlying read timeout expired with no data.
			break
		}

		buf = append(buf, chunk[0])
		if chunk[0] == term {
			return buf, nil
		}
	}

	return buf, fmt.Errorf("serial: read %s: terminator %#x not seen within %v: %w",
		p.name, term, timeout, ErrReadTimeout)
}

func (p *port) SetReadTimeout(d time.Duration) error {
	if p.closed {
		return fmt.Errorf("serial: %s: %w", p.name, ErrPortClosed)
	}
	if err := p.handle.SetReadTimeout(d); err != nil {
		return fmt.Errorf("serial: set read timeout on %s: %w", p.name, err)
	}
	p.timeout = d
	return nil
}

func (p *port) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	release(p.name)
	if err := p.handle.Close(); err != nil {
		return fmt.Errorf("serial: close %s: %w", p.name, err)
	}
	return nil
}
