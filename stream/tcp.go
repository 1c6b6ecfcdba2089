package stream

import (
	"net"
	"time"

	"github.com/pkg/errors"

	"github.com/pkopriv2/conduit/common"
)

const (
	confDialTimeout = "conduit.stream.dial.timeout"
)

const (
	defaultDialTimeout = 30 * time.Second
)

func ListenTCP(addr string) (*TCPListener, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to listen [%v]", addr)
	}

	return &TCPListener{listener}, nil
}

func DialTCP(config common.Config, addr string) (*TCPStream, error) {
	timeout := config.OptionalDuration(confDialTimeout, defaultDialTimeout)

	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to connect [%v]", addr)
	}

	return NewTCPStream(conn.(*net.TCPConn))
}

type TCPListener struct {
	listener net.Listener
}

func (l *TCPListener) Close() error {
	return l.listener.Close()
}

func (l *TCPListener) Addr() net.Addr {
	return l.listener.Addr()
}

func (l *TCPListener) Accept() (*TCPStream, error) {
	conn, err := l.listener.Accept()
	if err != nil {
		return nil, err
	}

	return NewTCPStream(conn.(*net.TCPConn))
}

// A TCPStream drives a *net.TCPConn without ever blocking.  Shutdown
// of the write half maps to a FIN; Abort arms a zero linger before
// closing, so the peer observes a genuine RST rather than an orderly
// close.
type TCPStream struct {
	conn *net.TCPConn
	*rawDuplex
}

func NewTCPStream(conn *net.TCPConn) (*TCPStream, error) {
	dup, err := newRawDuplex(conn)
	if err != nil {
		return nil, err
	}

	return &TCPStream{conn, dup}, nil
}

func (t *TCPStream) SetNoDelay(nodelay bool) error {
	return t.conn.SetNoDelay(nodelay)
}

func (t *TCPStream) ShutdownRead() error {
	return t.conn.CloseRead()
}

func (t *TCPStream) ShutdownWrite() error {
	return t.conn.CloseWrite()
}

func (t *TCPStream) Abort() error {
	if err := t.conn.SetLinger(0); err != nil {
		return errors.Wrap(err, "Unable to arm linger")
	}

	return t.conn.Close()
}

func (t *TCPStream) Close() error {
	return t.conn.Close()
}

func (t *TCPStream) LocalAddr() net.Addr {
	return t.conn.LocalAddr()
}

func (t *TCPStream) RemoteAddr() net.Addr {
	return t.conn.RemoteAddr()
}
