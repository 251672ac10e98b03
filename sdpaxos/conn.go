package sdpaxos

import (
	"context"

	"github.com/relab/slotpaxos/grp"
	px "github.com/relab/slotpaxos/paxos"
)

type localConn struct {
	a *Acceptor
}

// LocalConn returns a connection that calls a directly, in the caller's
// goroutine. A call with an already cancelled context gets no response.
func LocalConn(a *Acceptor) px.AcceptorConn {
	return &localConn{a: a}
}

func (lc *localConn) ID() grp.ID {
	return lc.a.ID()
}

func (lc *localConn) Prepare(ctx context.Context, msg px.Prepare) (px.Promise, error) {
	if err := ctx.Err(); err != nil {
		return px.Promise{}, err
	}
	return lc.a.Prepare(msg), nil
}

func (lc *localConn) Accept(ctx context.Context, msg px.Accept) (px.Accepted, error) {
	if err := ctx.Err(); err != nil {
		return px.Accepted{}, err
	}
	return lc.a.Accept(msg), nil
}
