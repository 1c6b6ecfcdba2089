package link

import (
	"net"

	"github.com/pkopriv2/conduit/common"
	"github.com/pkopriv2/conduit/stream"
)

// A TCPLink binds a TCP connection to a pipe-buffer pair.
//
// For the incoming direction both close (FIN) and abort (RST) are
// detected and passed on to the output buffer.  For the outgoing
// direction, closing the input buffer maps to a shutdown of the write
// half once the buffer drains; aborting it maps to a linger-armed
// close, which the peer observes as an RST.
type TCPLink struct {
	*Link

	tcp *stream.TCPStream

	nodelay        bool
	pendingNoDelay bool
}

func NewTCPLink(ctx common.Context, conn *net.TCPConn, in Source, out Sink) (*TCPLink, error) {
	tcp, err := stream.NewTCPStream(conn)
	if err != nil {
		return nil, err
	}

	nodelay := ctx.Config().OptionalBool(confTCPNoDelay, defaultTCPNoDelay)

	return &TCPLink{
		Link:           NewLink(ctx, tcp, in, out),
		tcp:            tcp,
		nodelay:        nodelay,
		pendingNoDelay: nodelay}, nil
}

// Toggles the Nagle algorithm.  Takes effect on the next Service pass.
// Disable it when sending packetized data that should go out
// immediately; leave it enabled for chatty, few-bytes-at-a-time
// traffic.
func (t *TCPLink) SetNoDelay(nodelay bool) {
	if t.nodelay != nodelay {
		t.nodelay = nodelay
		t.pendingNoDelay = true
	}
}

func (t *TCPLink) Service() (Result, error) {
	if t.pendingNoDelay && !t.Terminated() {
		t.pendingNoDelay = false
		if err := t.tcp.SetNoDelay(t.nodelay); err != nil {
			return Result{}, t.abort(err)
		}
	}

	return t.Link.Service()
}
