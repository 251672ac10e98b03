package net

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/relab/slotpaxos/grp"
	px "github.com/relab/slotpaxos/paxos"
)

// LossyOpts configures a lossy connection. Rates are probabilities in
// [0,1].
type LossyOpts struct {
	DropRequest float64       // The request never reaches the acceptor
	DropReply   float64       // The acceptor handles the request, but the reply is lost
	Delay       time.Duration // Upper bound of a random delay added to every call
	Seed        int64         // Zero seeds from the clock
}

// A Lossy connection loses and delays messages at random.
type Lossy struct {
	conn px.AcceptorConn
	opts LossyOpts

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewLossy(conn px.AcceptorConn, opts LossyOpts) *Lossy {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano() + int64(conn.ID())
	}
	return &Lossy{
		conn: conn,
		opts: opts,
		rnd:  rand.New(rand.NewSource(seed)),
	}
}

func (l *Lossy) ID() grp.ID {
	return l.conn.ID()
}

func (l *Lossy) Prepare(ctx context.Context, msg px.Prepare) (px.Promise, error) {
	if err := l.transmit(ctx, l.opts.DropRequest, "prepare"); err != nil {
		return px.Promise{}, err
	}
	promise, err := l.conn.Prepare(ctx, msg)
	if err != nil {
		return px.Promise{}, err
	}
	if err := l.transmit(ctx, l.opts.DropReply, "promise"); err != nil {
		return px.Promise{}, err
	}
	return promise, nil
}

func (l *Lossy) Accept(ctx context.Context, msg px.Accept) (px.Accepted, error) {
	if err := l.transmit(ctx, l.opts.DropRequest, "accept"); err != nil {
		return px.Accepted{}, err
	}
	accepted, err := l.conn.Accept(ctx, msg)
	if err != nil {
		return px.Accepted{}, err
	}
	if err := l.transmit(ctx, l.opts.DropReply, "accepted"); err != nil {
		return px.Accepted{}, err
	}
	return accepted, nil
}

// transmit delays one message and decides whether it is lost.
func (l *Lossy) transmit(ctx context.Context, dropRate float64, kind string) error {
	delay, drop := l.roll(dropRate)
	if delay > 0 {
		t := time.NewTimer(delay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if drop {
		if glog.V(3) {
			glog.Infoln("dropping", kind, "for acceptor", l.conn.ID())
		}
		return ErrDropped
	}
	return nil
}

func (l *Lossy) roll(dropRate float64) (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var delay time.Duration
	if l.opts.Delay > 0 {
		delay = time.Duration(l.rnd.Int63n(int64(l.opts.Delay)))
	}
	return delay, dropRate > 0 && l.rnd.Float64() < dropRate
}
