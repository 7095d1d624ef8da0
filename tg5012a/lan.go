package tg5012a

import (
	"bufio"
	"fmt"
	"net"
	"time"

	"github.com/sheetjet/sheetjet-go/device"
)

// DefaultLANPort is the instrument's TCP control port.
const DefaultLANPort = 9221

// DefaultDialTimeout bounds the TCP connect.
const DefaultDialTimeout = 3 * time.Second

// lanTransport adapts a TCP connection to the device.Transport
// interface, for instruments reached over LAN instead of serial.
type lanTransport struct {
	conn   net.Conn
	reader *bufio.Reader
}

var _ device.Transport = (*lanTransport)(nil)

func dialLAN(address string) (*lanTransport, error) {
	conn, err := net.DialTimeout("tcp", address, DefaultDialTimeout)
	if err != nil {
		return nil, fmt.Errorf("tg5012a: dial %s: %w", address, err)
	}

	return &lanTransport{
		conn:   conn,
		reader: bufio.NewReader(conn),
	}, nil
}

func (t *lanTransport) Name() string { return t.conn.RemoteAddr().String() }

func (t *lanTransport) Write(p []byte) (int, error) {
	return t.conn.Write(p)
}

func (t *lanTransport) ReadUntil(term byte, timeout time.Duration) ([]byte, error) {
	if err := t.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, err
	}

	// On deadline expiry ReadBytes fails with a net.Error reporting
	// Timeout() true, which the session maps to ErrCommunicationTimeout.
	return t.reader.ReadBytes(term)
}

func (t *lanTransport) Close() error {
	return t.conn.Close()
}
