package mxii

import (
	"strconv"

	"github.com/sheetjet/sheetjet-go/device"
	"github.com/sheetjet/sheetjet-go/logger"
	"github.com/sheetjet/sheetjet-go/serial"
)

// Session drives one MX II selector valve.
type Session struct {
	dev *device.Session
	log logger.Logger
}

// Open opens the named serial port at the MX II line settings, binds a
// session, and verifies the connection with a mode query. A failed
// verification closes the port.
func Open(portName string, opts ...device.Option) (*Session, error) {
	port, err := serial.Open(portName, serial.Config{BaudRate: BaudRate})
	if err != nil {
		return nil, err
	}

	s, err := NewSession(port, opts...)
	if err != nil {
		_ = port.Close()
		return nil, err
	}

	if _, err := s.Mode(); err != nil {
		_ = s.Close()
		return nil, err
	}

	return s, nil
}

// NewSession binds a session to an already-open transport.
func NewSession(t device.Transport, opts ...device.Option) (*Session, error) {
	dev, err := device.NewSession(t, Codec{}, opts...)
	if err != nil {
		return nil, err
	}
	return &Session{dev: dev, log: logger.With("device", device.MXII.String(), "port", t.Name())}, nil
}

// Close closes the session and its transport.
func (s *Session) Close() error { return s.dev.Close() }

// Port queries the currently selected port. Values above PortCount are
// valve fault codes; they are returned as-is and logged as warnings.
func (s *Session) Port() (int, error) {
	resp, err := s.dev.Query(StatusQuery())
	if err != nil {
		return 0, err
	}

	n, err := strconv.Atoi(resp.Value)
	if err != nil {
		return 0, err
	}
	if n > PortCount {
		s.log.Warn("valve reports fault code", "code", n)
	}

	return n, nil
}

// SetPort moves the valve to port n (1-16). The valve does not
// acknowledge moves, so the session confirms by re-reading the status
// register; a mismatch fails with device.ErrUnconfirmedSet.
func (s *Session) SetPort(n int) error {
	_, err := s.dev.SetConfirmed(SetPort(n), StatusQuery())
	return err
}

// Home homes the valve. The valve does not reply.
func (s *Session) Home() error {
	return s.dev.Send(Home())
}

// Mode queries the valve's configured mode.
func (s *Session) Mode() (int, error) {
	resp, err := s.dev.Query(ModeQuery())
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(resp.Value)
}
