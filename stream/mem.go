package stream

import (
	"io"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/pkopriv2/conduit/pipe"
)

// Implements a simple in-memory stream environment.  This is mostly
// intended for testing, but is exposed publicly for general use when
// necessary.  A pair shares two bounded queues, one per direction, so
// backpressure, half-close and reset semantics all behave like their
// socket counterparts: a full queue would-blocks, a closed queue
// drains and then reports end of stream, a reset discards immediately.

// Returns two connected in-memory streams.  Each direction buffers up
// to size bytes.
func NewMemPair(size int) (*MemStream, *MemStream) {
	ab := newMemHalf(size)
	ba := newMemHalf(size)

	a := &MemStream{send: ab, recv: ba}
	b := &MemStream{send: ba, recv: ab}
	return a, b
}

type memHalf struct {
	lock  sync.Mutex
	data  *pipe.Buffer
	reset bool
}

func newMemHalf(size int) *memHalf {
	return &memHalf{data: pipe.NewBuffer(size)}
}

func (h *memHalf) abort() {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.reset = true
}

func (h *memHalf) isReset() bool {
	h.lock.Lock()
	defer h.lock.Unlock()
	return h.reset
}

type MemStream struct {
	lock   sync.Mutex
	send   *memHalf
	recv   *memHalf
	rshut  bool
	closed bool
}

func (m *MemStream) TryRead(p []byte) (int, error) {
	m.lock.Lock()
	closed, rshut := m.closed, m.rshut
	m.lock.Unlock()

	if closed {
		return 0, ErrStreamClosed
	}
	if rshut {
		return 0, io.EOF
	}
	if m.recv.isReset() {
		return 0, unix.ECONNRESET
	}

	if n := m.recv.data.Pop(p); n > 0 {
		return n, nil
	}
	if m.recv.data.Closed() {
		return 0, io.EOF
	}

	return 0, ErrWouldBlock
}

func (m *MemStream) TryWrite(p []byte) (int, error) {
	m.lock.Lock()
	closed := m.closed
	m.lock.Unlock()

	if closed {
		return 0, ErrStreamClosed
	}
	if m.send.isReset() {
		return 0, unix.ECONNRESET
	}
	if m.send.data.Closed() {
		return 0, unix.EPIPE
	}
	if len(p) == 0 {
		return 0, nil
	}

	if n := m.send.data.Push(p); n > 0 {
		return n, nil
	}

	return 0, ErrWouldBlock
}

func (m *MemStream) ShutdownRead() error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.closed {
		return ErrStreamClosed
	}

	m.rshut = true
	return nil
}

func (m *MemStream) ShutdownWrite() error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.closed {
		return ErrStreamClosed
	}

	m.send.data.Close()
	return nil
}

func (m *MemStream) Abort() error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.closed {
		return ErrStreamClosed
	}

	m.closed = true
	m.send.abort()
	m.recv.abort()
	return nil
}

func (m *MemStream) Close() error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.closed {
		return ErrStreamClosed
	}

	m.closed = true
	m.send.data.Close()
	return nil
}
