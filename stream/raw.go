package stream

import (
	"io"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// rawDuplex performs single-attempt, non-blocking reads and writes
// against a socket's underlying file descriptor.  The readiness
// callbacks always return true, so the runtime poller never parks the
// calling goroutine; would-block conditions surface as ErrWouldBlock.
// Interrupted calls are retried on the spot.
type rawDuplex struct {
	raw syscall.RawConn
}

func newRawDuplex(conn syscall.Conn) (*rawDuplex, error) {
	raw, err := conn.SyscallConn()
	if err != nil {
		return nil, errors.Wrap(err, "Unable to access raw connection")
	}

	return &rawDuplex{raw}, nil
}

func (r *rawDuplex) TryRead(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	var n int
	var errno error
	if err := r.raw.Read(func(fd uintptr) bool {
		for {
			n, errno = unix.Read(int(fd), p)
			if errno == unix.EINTR {
				continue
			}
			return true
		}
	}); err != nil {
		return 0, ErrStreamClosed
	}

	switch {
	case errno == unix.EAGAIN || errno == unix.EWOULDBLOCK:
		return 0, ErrWouldBlock
	case errno != nil:
		return 0, errno
	case n == 0:
		return 0, io.EOF
	}

	return n, nil
}

func (r *rawDuplex) TryWrite(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	var n int
	var errno error
	if err := r.raw.Write(func(fd uintptr) bool {
		for {
			n, errno = unix.Write(int(fd), p)
			if errno == unix.EINTR {
				continue
			}
			return true
		}
	}); err != nil {
		return 0, ErrStreamClosed
	}

	switch {
	case errno == unix.EAGAIN || errno == unix.EWOULDBLOCK:
		return 0, ErrWouldBlock
	case errno != nil:
		return 0, errno
	}

	return n, nil
}
