package net

import (
	"context"
	"sync/atomic"

	"github.com/golang/glog"

	"github.com/relab/slotpaxos/grp"
	px "github.com/relab/slotpaxos/paxos"
)

// A Switch passes calls through to the wrapped connection while it is up,
// and behaves like an unreachable acceptor while it is down.
type Switch struct {
	conn px.AcceptorConn
	down atomic.Bool
}

// NewSwitch returns a switch for conn that is initially up.
func NewSwitch(conn px.AcceptorConn) *Switch {
	return &Switch{conn: conn}
}

func (s *Switch) ID() grp.ID {
	return s.conn.ID()
}

func (s *Switch) Down() {
	if !s.down.Swap(true) {
		glog.V(1).Infoln("acceptor", s.conn.ID(), "is down")
	}
}

func (s *Switch) Up() {
	if s.down.Swap(false) {
		glog.V(1).Infoln("acceptor", s.conn.ID(), "is up")
	}
}

func (s *Switch) IsUp() bool {
	return !s.down.Load()
}

func (s *Switch) Prepare(ctx context.Context, msg px.Prepare) (px.Promise, error) {
	if s.down.Load() {
		return px.Promise{}, ErrUnreachable
	}
	return s.conn.Prepare(ctx, msg)
}

func (s *Switch) Accept(ctx context.Context, msg px.Accept) (px.Accepted, error) {
	if s.down.Load() {
		return px.Accepted{}, ErrUnreachable
	}
	return s.conn.Accept(ctx, msg)
}
