package link

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"

	"github.com/pkopriv2/conduit/common"
	"github.com/pkopriv2/conduit/stream"
)

// A link bridges a pair of pipe buffers with a non-blocking stream.
// An external readiness loop registers the underlying socket for
// readable/writable interest and invokes Service whenever either may
// have become ready, or on a periodic tick.  The link never blocks and
// never spawns routines: all waiting is expressed by returning control
// to the caller.
//
// Service is NOT safe for concurrent invocation.  The owner guarantees
// at most one in-flight call per link.

const (
	confLinkReadUnit = "conduit.link.read.unit"
	confTCPNoDelay   = "conduit.link.tcp.nodelay"
)

const (
	defaultLinkReadUnit = 2048
	defaultTCPNoDelay   = false
)

var (
	// Returned by Service (and Abort) once the link has already
	// reported its terminal abort.  Purely informational: the caller
	// should drop the link.
	ErrLinkTerminated = errors.New("LINK:ERR:TERMINATED")

	// The abort cause used when the teardown was requested through
	// the input buffer's abort marker rather than observed on the
	// socket.
	ErrAbortRequested = errors.New("LINK:ERR:ABORT_REQUESTED")
)

// The terminal error of an aborted link.  Reported exactly once, no
// matter how many paths trigger the abort or how often Service is
// invoked afterward.
type AbortedError struct {
	Reason error
}

func (e AbortedError) Error() string {
	return fmt.Sprintf("LINK:ERR:ABORTED(%v)", e.Reason)
}

func (e AbortedError) Cause() error {
	return e.Reason
}

// The lifecycle of the stream's read half.
type ReadState int

const (
	ReadOpen ReadState = iota
	ReadHalfClosedByPeer
	ReadClosedByUs
	ReadAborted
)

func (s ReadState) String() string {
	switch s {
	case ReadOpen:
		return "Open"
	case ReadHalfClosedByPeer:
		return "HalfClosedByPeer"
	case ReadClosedByUs:
		return "ClosedByUs"
	case ReadAborted:
		return "Aborted"
	}
	return "Unknown"
}

// The lifecycle of the stream's write half.
type WriteState int

const (
	WriteOpen WriteState = iota
	WriteHalfClosedByUs
	WriteClosedByPeer
	WriteAborted
)

func (s WriteState) String() string {
	switch s {
	case WriteOpen:
		return "Open"
	case WriteHalfClosedByUs:
		return "HalfClosedByUs"
	case WriteClosedByPeer:
		return "ClosedByPeer"
	case WriteAborted:
		return "Aborted"
	}
	return "Unknown"
}

// Source is the end of a pipe buffer the link drains and writes to the
// socket.  The link owns the consumed cursor exclusively; the upstream
// producer owns the rest.  *pipe.Buffer satisfies this.
type Source interface {
	Readable() []byte
	Consume(n int)
	Closed() bool
	Aborted() bool
}

// Sink is the end of a pipe buffer the link fills from socket reads.
// The link owns the produced cursor and the end markers; the
// downstream consumer owns the consumed cursor.  *pipe.Buffer
// satisfies this.
type Sink interface {
	Writable() []byte
	Produce(n int)
	Close()
	Abort()
}

// The outcome of a single Service pass.
type Result struct {
	Read     int  // bytes moved socket -> output buffer
	Written  int  // bytes moved input buffer -> socket
	Eof      bool // the peer half-closed its write side during this pass
	Shutdown bool // the local write half was shut down during this pass
	Closed   bool // the socket was fully, gracefully closed during this pass
}

type Link struct {
	id    uuid.UUID
	log   common.Logger
	stats *linkStats

	stream stream.Stream
	in     Source
	out    Sink

	readState  ReadState
	writeState WriteState

	closeReported bool
	abortReported bool

	readUnit    int
	pauseReads  bool
	pauseWrites bool
}

func NewLink(ctx common.Context, s stream.Stream, in Source, out Sink) *Link {
	id := uuid.NewV4()

	return &Link{
		id:       id,
		log:      common.FormatLogger(ctx.Logger(), id),
		stats:    newLinkStats(id),
		stream:   s,
		in:       in,
		out:      out,
		readUnit: ctx.Config().OptionalInt(confLinkReadUnit, defaultLinkReadUnit)}
}

func (l *Link) Id() uuid.UUID {
	return l.id
}

func (l *Link) ReadState() ReadState {
	return l.readState
}

func (l *Link) WriteState() WriteState {
	return l.writeState
}

// A link is terminated once it has either fully closed or reported an
// abort.  Terminated links should be dropped by their owner.
func (l *Link) Terminated() bool {
	return l.closeReported || l.abortReported
}

// Caps the number of bytes read from the socket per Service pass.
// Bounding the read unit bounds how far the output buffer can grow
// ahead of its consumer in one pass.
func (l *Link) SetReadUnit(n int) {
	if n > 0 {
		l.readUnit = n
	}
}

// Gates the read path.  While paused, Service performs no reads.
func (l *Link) SetPauseReads(pause bool) {
	l.pauseReads = pause
}

// Gates the write path.  While paused, Service performs no writes.
func (l *Link) SetPauseWrites(pause bool) {
	l.pauseWrites = pause
}

// Forces the abort path from the outside, e.g. for idle eviction.
// Subject to the same latch as socket-triggered aborts: the first call
// returns the AbortedError, every later one ErrLinkTerminated.
func (l *Link) Abort(reason error) error {
	return l.abort(reason)
}

// Performs one non-blocking pass over the connection: drains the input
// buffer into the socket, fills the output buffer from it, and runs
// the closing bookkeeping.  Returns how much moved and which lifecycle
// edges fired.  An AbortedError is returned exactly once; afterward
// every call reports ErrLinkTerminated without touching the socket.
func (l *Link) Service() (Result, error) {
	if l.abortReported {
		return Result{}, ErrLinkTerminated
	}

	var res Result
	if err := l.serviceWrite(&res); err != nil {
		return res, err
	}
	if err := l.serviceRead(&res); err != nil {
		return res, err
	}

	// Full close only once both halves finished gracefully.
	if l.readState == ReadHalfClosedByPeer && l.writeState == WriteHalfClosedByUs {
		if err := l.stream.Close(); err != nil {
			l.log.Error("Error releasing stream: %v", err)
		}

		l.readState = ReadClosedByUs
		l.closeReported = true
		res.Closed = true
		l.log.Info("Connection closed")
	}

	return res, nil
}

func (l *Link) serviceWrite(res *Result) error {
	if l.pauseWrites || l.writeState != WriteOpen {
		return nil
	}

	for {
		buf := l.in.Readable()
		if len(buf) == 0 {
			break
		}

		n, err := l.stream.TryWrite(buf)
		if n > 0 {
			l.in.Consume(n)
			l.stats.bytesSent.Inc(int64(n))
			res.Written += n
		}
		if err != nil {
			if stream.IsWouldBlock(err) {
				return nil
			}
			if stream.IsReset(err) {
				l.writeState = WriteClosedByPeer
			}
			return l.abort(err)
		}
		if n < len(buf) {
			// short write: the send queue is nearly full, come
			// back on the next writable signal
			return nil
		}
	}

	// Input drained and no more will ever arrive: finish the half.
	if l.in.Closed() {
		if l.in.Aborted() {
			return l.abort(ErrAbortRequested)
		}

		if err := l.stream.ShutdownWrite(); err != nil {
			return l.abort(err)
		}

		l.writeState = WriteHalfClosedByUs
		l.stats.numShutdowns.Inc(1)
		res.Shutdown = true
		l.log.Debug("Write half shut down")
	}

	return nil
}

func (l *Link) serviceRead(res *Result) error {
	if l.pauseReads || l.readState != ReadOpen {
		return nil
	}

	for res.Read < l.readUnit {
		buf := l.out.Writable()
		if len(buf) == 0 {
			// backpressure: the consumer hasn't drained the
			// output buffer yet
			return nil
		}
		if limit := l.readUnit - res.Read; len(buf) > limit {
			buf = buf[:limit]
		}

		n, err := l.stream.TryRead(buf)
		if n > 0 {
			l.out.Produce(n)
			l.stats.bytesReceived.Inc(int64(n))
			res.Read += n
		}
		if err != nil {
			if stream.IsWouldBlock(err) {
				return nil
			}
			if errors.Cause(err) == io.EOF {
				l.readState = ReadHalfClosedByPeer
				l.out.Close()
				l.stats.numEofs.Inc(1)
				res.Eof = true
				l.log.Debug("Peer half closed")
				return nil
			}
			return l.abort(err)
		}
	}

	return nil
}

// The terminal teardown.  Both the read path and the write path may
// route here, possibly within the same Service pass, and the owner may
// force its way here at any time.  The latch guarantees the underlying
// handle is torn down at most once: tearing down an already-released
// handle is undefined at the socket layer.
func (l *Link) abort(reason error) error {
	if l.abortReported {
		return ErrLinkTerminated
	}
	l.abortReported = true

	l.readState = ReadAborted
	if l.writeState != WriteClosedByPeer {
		l.writeState = WriteAborted
	}

	if err := l.stream.Abort(); err != nil {
		l.log.Error("Error tearing down stream: %v", err)
	}
	l.out.Abort()
	l.stats.numResets.Inc(1)

	l.log.Error("Connection aborted: %v", reason)
	return AbortedError{reason}
}
