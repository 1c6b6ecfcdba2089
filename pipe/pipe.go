package pipe

import (
	"sync"
)

// A Buffer is a fixed-capacity FIFO byte queue with independent
// produced and consumed cursors.  It decouples protocol logic from raw
// socket I/O: one side fills it with Writable/Produce (or Push), the
// other drains it with Readable/Consume (or Pop).
//
// A buffer carries two end markers.  Close marks a graceful end of
// input: no more bytes will ever be produced, and a consumer that has
// drained the queue has seen everything.  Abort marks an abrupt end:
// the producer tore down, and any bytes still queued carry no delivery
// guarantee.  Abort implies Close.
//
// A buffer is safe for one producer and one consumer running
// concurrently.  Each side owns its cursor exclusively.
type Buffer struct {
	lock sync.Mutex // just using a simple, coarse lock

	data []byte
	rpos int
	wpos int
	size int

	produced uint64
	consumed uint64

	closed  bool
	aborted bool
}

func NewBuffer(cap int) *Buffer {
	if cap < 1 {
		cap = 1
	}

	return &Buffer{data: make([]byte, cap)}
}

// Returns the contiguous run of unconsumed bytes.  At the ring's wrap
// point this may be shorter than Len(); consumers simply come back for
// the remainder.  The returned slice is valid until the next Consume.
func (b *Buffer) Readable() []byte {
	b.lock.Lock()
	defer b.lock.Unlock()

	if b.size == 0 {
		return nil
	}

	if b.rpos+b.size <= len(b.data) {
		return b.data[b.rpos : b.rpos+b.size]
	}

	return b.data[b.rpos:]
}

// Advances the consumed cursor by n bytes.  Consuming beyond what is
// readable is a programming error and panics.
func (b *Buffer) Consume(n int) {
	b.lock.Lock()
	defer b.lock.Unlock()

	if n < 0 || n > b.size {
		panic("pipe: consume beyond readable")
	}

	b.rpos = (b.rpos + n) % len(b.data)
	b.size -= n
	b.consumed += uint64(n)
}

// Returns the contiguous run of free capacity.  Nil once the buffer is
// full or closed.  The returned slice is valid until the next Produce.
func (b *Buffer) Writable() []byte {
	b.lock.Lock()
	defer b.lock.Unlock()

	if b.closed || b.size == len(b.data) {
		return nil
	}

	if b.wpos >= b.rpos {
		return b.data[b.wpos:]
	}

	return b.data[b.wpos:b.rpos]
}

// Advances the produced cursor by n bytes.  Producing beyond the free
// capacity, or after Close, is a programming error and panics.
func (b *Buffer) Produce(n int) {
	b.lock.Lock()
	defer b.lock.Unlock()

	if b.closed {
		panic("pipe: produce after close")
	}

	if n < 0 || n > len(b.data)-b.size {
		panic("pipe: produce beyond writable")
	}

	b.wpos = (b.wpos + n) % len(b.data)
	b.size += n
	b.produced += uint64(n)
}

// Copies as much of p as fits into the buffer, returning the number of
// bytes accepted.  Returns 0 when the buffer is full or closed.
func (b *Buffer) Push(p []byte) int {
	total := 0
	for len(p) > 0 {
		dst := b.Writable()
		if len(dst) == 0 {
			break
		}

		n := copy(dst, p)
		b.Produce(n)

		p = p[n:]
		total += n
	}
	return total
}

// Copies up to len(p) queued bytes into p, returning the number of
// bytes moved.  Returns 0 when the buffer is empty.
func (b *Buffer) Pop(p []byte) int {
	total := 0
	for len(p) > 0 {
		src := b.Readable()
		if len(src) == 0 {
			break
		}

		n := copy(p, src)
		b.Consume(n)

		p = p[n:]
		total += n
	}
	return total
}

// Marks a graceful end of input.  Bytes already queued remain readable.
func (b *Buffer) Close() {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.closed = true
}

// Marks an abrupt end of input.
func (b *Buffer) Abort() {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.closed = true
	b.aborted = true
}

func (b *Buffer) Closed() bool {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.closed
}

func (b *Buffer) Aborted() bool {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.aborted
}

// The number of bytes currently queued.
func (b *Buffer) Len() int {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.size
}

// The number of bytes that may still be produced.
func (b *Buffer) Free() int {
	b.lock.Lock()
	defer b.lock.Unlock()

	if b.closed {
		return 0
	}

	return len(b.data) - b.size
}

func (b *Buffer) Cap() int {
	return len(b.data)
}

// The total number of bytes ever produced into the buffer.
func (b *Buffer) Produced() uint64 {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.produced
}

// The total number of bytes ever consumed from the buffer.
func (b *Buffer) Consumed() uint64 {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.consumed
}
