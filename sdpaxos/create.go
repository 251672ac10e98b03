package sdpaxos

import (
	"github.com/relab/slotpaxos/grp"
	px "github.com/relab/slotpaxos/paxos"
)

// A Cluster is a set of in-process acceptors with ids 0..n-1 together with
// direct connections to them.
type Cluster struct {
	Group     *grp.Group
	Acceptors []*Acceptor
	Conns     []px.AcceptorConn
}

// NewCluster creates n acceptors without any slot state.
func NewCluster(n int) (*Cluster, error) {
	group, err := grp.NewGroupOfSize(n)
	if err != nil {
		return nil, err
	}

	c := &Cluster{Group: group}
	for _, id := range group.IDs() {
		a := NewAcceptor(id)
		c.Acceptors = append(c.Acceptors, a)
		c.Conns = append(c.Conns, LocalConn(a))
	}

	return c, nil
}

// Readers returns the acceptors as StateReaders, for use with NewObserver.
func (c *Cluster) Readers() []StateReader {
	readers := make([]StateReader, len(c.Acceptors))
	for i, a := range c.Acceptors {
		readers[i] = a
	}
	return readers
}

// Observer returns an observer over every acceptor of the cluster with
// the group's majority quorum.
func (c *Cluster) Observer() *Observer {
	return NewObserver(c.Group.Quorum(), c.Readers()...)
}
