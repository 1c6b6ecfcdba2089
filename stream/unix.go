package stream

import (
	"net"

	"github.com/pkg/errors"

	"github.com/pkopriv2/conduit/common"
)

func ListenUnix(path string) (*UnixListener, error) {
	listener, err := net.ListenUnix("unix", &net.UnixAddr{Name: path, Net: "unix"})
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to listen [%v]", path)
	}

	return &UnixListener{listener}, nil
}

func DialUnix(config common.Config, path string) (*UnixStream, error) {
	timeout := config.OptionalDuration(confDialTimeout, defaultDialTimeout)

	conn, err := net.DialTimeout("unix", path, timeout)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to connect [%v]", path)
	}

	return NewUnixStream(conn.(*net.UnixConn))
}

type UnixListener struct {
	listener *net.UnixListener
}

func (l *UnixListener) Close() error {
	return l.listener.Close()
}

func (l *UnixListener) Addr() net.Addr {
	return l.listener.Addr()
}

func (l *UnixListener) Accept() (*UnixStream, error) {
	conn, err := l.listener.AcceptUnix()
	if err != nil {
		return nil, err
	}

	return NewUnixStream(conn)
}

// A UnixStream drives a *net.UnixConn without ever blocking.  Unix
// domain sockets have no linger semantics; Abort shuts both halves
// and releases the handle, which ends the peer's stream promptly.
type UnixStream struct {
	conn *net.UnixConn
	*rawDuplex
}

func NewUnixStream(conn *net.UnixConn) (*UnixStream, error) {
	dup, err := newRawDuplex(conn)
	if err != nil {
		return nil, err
	}

	return &UnixStream{conn, dup}, nil
}

func (u *UnixStream) ShutdownRead() error {
	return u.conn.CloseRead()
}

func (u *UnixStream) ShutdownWrite() error {
	return u.conn.CloseWrite()
}

func (u *UnixStream) Abort() error {
	err := common.Or(u.conn.CloseRead(), u.conn.CloseWrite())
	return common.Or(err, u.conn.Close())
}

func (u *UnixStream) Close() error {
	return u.conn.Close()
}

func (u *UnixStream) LocalAddr() net.Addr {
	return u.conn.LocalAddr()
}

func (u *UnixStream) RemoteAddr() net.Addr {
	return u.conn.RemoteAddr()
}
