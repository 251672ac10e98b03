package net

import (
	"context"
	"errors"

	"github.com/relab/slotpaxos/grp"
	px "github.com/relab/slotpaxos/paxos"
)

var (
	ErrUnreachable = errors.New("acceptor is unreachable")
	ErrDropped     = errors.New("message dropped")
)

type unreachable struct {
	id grp.ID
}

// Unreachable returns a connection with the identity of conn that never
// delivers a message.
func Unreachable(conn px.AcceptorConn) px.AcceptorConn {
	return &unreachable{id: conn.ID()}
}

func (u *unreachable) ID() grp.ID {
	return u.id
}

func (u *unreachable) Prepare(ctx context.Context, msg px.Prepare) (px.Promise, error) {
	return px.Promise{}, ErrUnreachable
}

func (u *unreachable) Accept(ctx context.Context, msg px.Accept) (px.Accepted, error) {
	return px.Accepted{}, ErrUnreachable
}
