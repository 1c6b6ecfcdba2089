package link

import (
	"net"

	"github.com/pkopriv2/conduit/common"
	"github.com/pkopriv2/conduit/stream"
)

// A UnixLink binds a unix-domain stream connection to a pipe-buffer
// pair.  Semantics match TCPLink, except that unix sockets have no
// linger: an abort shuts both halves and releases the handle, which
// ends the peer's stream promptly but without a distinguishable reset.
type UnixLink struct {
	*Link
}

func NewUnixLink(ctx common.Context, conn *net.UnixConn, in Source, out Sink) (*UnixLink, error) {
	us, err := stream.NewUnixStream(conn)
	if err != nil {
		return nil, err
	}

	return &UnixLink{NewLink(ctx, us, in, out)}, nil
}
