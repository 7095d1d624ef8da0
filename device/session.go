package device

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/sheetjet/sheetjet-go/logger"
	"github.com/sheetjet/sheetjet-go/serial"
)

// DefaultExchangeTimeout bounds the read phase of one exchange.
const DefaultExchangeTimeout = 1 * time.Second

// ErrTransportOwned indicates an attempt to construct a second Session
// over a Transport that is already owned by a live Session.
var ErrTransportOwned = errors.New("transport already owned by a session")

// owned tracks which transports are bound to a live session, enforcing
// the one-owner invariant across goroutines.
var owned = xsync.NewMapOf[Transport, struct{}]()

// Session drives one instrument over one exclusively-owned Transport.
//
// Every operation is synchronous and single-attempt: the call blocks
// until the device responds or the exchange timeout elapses, and a
// timed-out command is never resent automatically. A Session is not
// goroutine-safe; sessions for different instruments are independent
// and may be driven from different goroutines.
type Session struct {
	transport Transport
	codec     Codec
	timeout   time.Duration
	logger    logger.Logger

	// confirmed caches the last confirmed value per settable parameter,
	// populated lazily on the first successful set or query.
	confirmed map[string]string

	closed bool
}

// Option configures a Session.
type Option func(*Session) error

// WithLogger sets the logger used for wire-level traces.
func WithLogger(l logger.Logger) Option {
	return func(s *Session) error {
		if l == nil {
			return errors.New("device: nil logger")
		}
		s.logger = l
		return nil
	}
}

// WithExchangeTimeout bounds the read phase of every exchange.
func WithExchangeTimeout(d time.Duration) Option {
	return func(s *Session) error {
		if d <= 0 {
			return fmt.Errorf("device: exchange timeout %v must be positive", d)
		}
		s.timeout = d
		return nil
	}
}

// NewSession binds a Transport to a Codec.
//
// The Transport becomes exclusively owned by the returned Session until
// Close; constructing a second Session over the same Transport fails
// with ErrTransportOwned.
func NewSession(t Transport, c Codec, opts ...Option) (*Session, error) {
	if t == nil {
		return nil, errors.New("device: nil transport")
	}
	if c == nil {
		return nil, errors.New("device: nil codec")
	}

	if _, loaded := owned.LoadOrStore(t, struct{}{}); loaded {
		return nil, fmt.Errorf("device: %s on %s: %w", c.Identity(), t.Name(), ErrTransportOwned)
	}

	s := &Session{
		transport: t,
		codec:     c,
		timeout:   DefaultExchangeTimeout,
		logger:    logger.GetLogger(),
		confirmed: make(map[string]string),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			owned.Delete(t)
			return nil, err
		}
	}
	s.logger = s.logger.With("device", c.Identity().String(), "port", t.Name())

	return s, nil
}

// Identity returns the instrument family of the session.
func (s *Session) Identity() Identity { return s.codec.Identity() }

// Name returns the transport endpoint the session is bound to.
func (s *Session) Name() string { return s.transport.Name() }

// Confirmed returns the last confirmed value of the named parameter and
// whether one has been observed yet.
func (s *Session) Confirmed(name string) (string, bool) {
	v, ok := s.confirmed[name]
	return v, ok
}

// Send encodes cmd and writes it without reading a reply. Used for
// commands the device does not answer (e.g. selector valve moves,
// function generator settings).
func (s *Session) Send(cmd Command) error {
	if s.closed {
		return newCommandError(s.Identity(), cmd.Name(), nil, ErrSessionClosed)
	}

	data, err := s.codec.Encode(cmd)
	if err != nil {
		return newCommandError(s.Identity(), cmd.Name(), nil, err)
	}

	s.logger.Debug("send", "command", cmd.Name(), "wire", string(data))
	if _, err := s.transport.Write(data); err != nil {
		return newCommandError(s.Identity(), cmd.Name(), nil, err)
	}

	return nil
}

// Exchange encodes cmd, writes it, reads one terminated reply, and
// decodes it. All session operations reduce to Send or Exchange.
func (s *Session) Exchange(cmd Command) (Response, error) {
	if s.closed {
		return Response{}, newCommandError(s.Identity(), cmd.Name(), nil, ErrSessionClosed)
	}

	data, err := s.codec.Encode(cmd)
	if err != nil {
		return Response{}, newCommandError(s.Identity(), cmd.Name(), nil, err)
	}

	s.logger.Debug("exchange", "command", cmd.Name(), "wire", string(data))
	if _, err := s.transport.Write(data); err != nil {
		return Response{}, newCommandError(s.Identity(), cmd.Name(), nil, err)
	}

	raw, err := s.transport.ReadUntil(s.codec.Terminator(), s.timeout)
	if err != nil {
		return Response{}, s.readError(cmd, raw, err)
	}

	resp, err := s.codec.Decode(cmd, raw)
	if err != nil {
		return Response{}, newCommandError(s.Identity(), cmd.Name(), raw, err)
	}

	return resp, nil
}

// Query performs a pure read of cmd's parameter and records the value
// as last-confirmed.
func (s *Session) Query(cmd Command) (Response, error) {
	if cmd.Kind() != KindQuery {
		return Response{}, newCommandError(s.Identity(), cmd.Name(), nil,
			fmt.Errorf("%w: %s is not a query", ErrValidation, cmd.Kind()))
	}

	resp, err := s.Exchange(cmd)
	if err != nil {
		return Response{}, err
	}
	s.confirmed[cmd.Name()] = resp.Value

	return resp, nil
}

// Set writes cmd and confirms it against the device's echo.
//
// On an echo mismatch the session records the device's actual value and
// fails with an error wrapping ErrUnconfirmedSet: the hardware accepted
// the write but settled to a different state. This is distinct from a
// communication timeout.
func (s *Session) Set(cmd Command) (Response, error) {
	if cmd.Kind() != KindSet {
		return Response{}, newCommandError(s.Identity(), cmd.Name(), nil,
			fmt.Errorf("%w: %s is not a set", ErrValidation, cmd.Kind()))
	}

	resp, err := s.Exchange(cmd)
	if err != nil {
		return Response{}, err
	}

	return s.confirm(cmd, resp)
}

// SetConfirmed writes cmd without expecting an echo, then issues the
// confirm query and compares its result against the requested value.
// Families whose devices do not echo sets (MX II, TG5012A) confirm
// through this path.
func (s *Session) SetConfirmed(cmd, confirm Command) (Response, error) {
	if cmd.Kind() != KindSet {
		return Response{}, newCommandError(s.Identity(), cmd.Name(), nil,
			fmt.Errorf("%w: %s is not a set", ErrValidation, cmd.Kind()))
	}

	if err := s.Send(cmd); err != nil {
		return Response{}, err
	}

	resp, err := s.Exchange(confirm)
	if err != nil {
		return Response{}, err
	}

	return s.confirm(cmd, resp)
}

// Execute sends an action command and validates the acknowledgment.
func (s *Session) Execute(cmd Command) error {
	if cmd.Kind() != KindExecute {
		return newCommandError(s.Identity(), cmd.Name(), nil,
			fmt.Errorf("%w: %s is not an execute", ErrValidation, cmd.Kind()))
	}

	_, err := s.Exchange(cmd)

	return err
}

// Close releases the transport claim and closes the transport.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	owned.Delete(s.transport)

	return s.transport.Close()
}

// confirm compares the decoded reply against cmd's requested argument,
// recording the device's actual state either way.
func (s *Session) confirm(cmd Command, resp Response) (Response, error) {
	s.confirmed[cmd.Name()] = resp.Value

	want, ok := cmd.Arg()
	if ok && resp.Value != want {
		return resp, newCommandError(s.Identity(), cmd.Name(), resp.Raw,
			fmt.Errorf("%w: requested %q, device reports %q", ErrUnconfirmedSet, want, resp.Value))
	}

	return resp, nil
}

// readError maps transport read failures onto the error taxonomy:
// deadline expiries become ErrCommunicationTimeout, everything else
// passes through with command context attached.
func (s *Session) readError(cmd Command, raw []byte, err error) error {
	var nerr net.Error
	if errors.Is(err, serial.ErrReadTimeout) || (errors.As(err, &nerr) && nerr.Timeout()) {
		return newCommandError(s.Identity(), cmd.Name(), raw,
			fmt.Errorf("%w after %v", ErrCommunicationTimeout, s.timeout))
	}

	return newCommandError(s.Identity(), cmd.Name(), raw, err)
}
