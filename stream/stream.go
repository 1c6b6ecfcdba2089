package stream

import (
	"io"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

var (
	// Returned by TryRead/TryWrite when the operation would have to
	// wait for the socket to become ready.  This is backpressure, not
	// failure: retry after the next readiness signal.
	ErrWouldBlock = errors.New("STREAM:ERR:WOULD_BLOCK")

	ErrStreamClosed = errors.New("STREAM:ERR:CLOSED")
)

// A Stream is a non-blocking, full-duplex byte stream.  Implementations
// never park the calling goroutine: an operation that cannot complete
// immediately returns ErrWouldBlock instead.
//
// Instances are NOT safe for concurrent use.  The owner is expected to
// drive a stream from a single readiness loop.
type Stream interface {

	// Reads whatever is immediately available into p.  Returns
	// (0, io.EOF) once the peer has closed its write half, and
	// (0, ErrWouldBlock) when nothing is buffered.
	TryRead(p []byte) (int, error)

	// Writes as much of p as the socket will immediately accept.
	// A short write is not an error.  Returns (0, ErrWouldBlock)
	// when the socket's send queue is full.
	TryWrite(p []byte) (int, error)

	// Closes the read half of the stream.
	ShutdownRead() error

	// Closes the write half of the stream, signalling end of stream
	// to the peer.  Bytes already written are still delivered.
	ShutdownWrite() error

	// Tears the stream down abruptly, releasing the handle.  NOT
	// idempotent: invoking it twice is a caller error, and callers
	// must latch it themselves.
	Abort() error

	io.Closer
}

func IsWouldBlock(err error) bool {
	return errors.Cause(err) == ErrWouldBlock
}

// Reports whether err describes an abrupt peer-side teardown, as
// opposed to a graceful end of stream or a local failure.
func IsReset(err error) bool {
	switch errors.Cause(err) {
	case unix.ECONNRESET, unix.ECONNABORTED, unix.EPIPE:
		return true
	}

	return false
}
