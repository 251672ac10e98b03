package paxos

import (
	"github.com/relab/slotpaxos/config"
	"github.com/relab/slotpaxos/grp"
)

// A Pack is used during the construction of a proposer. It carries the
// proposer's identity and the fixed acceptor set it drives:
//
//	p, err := sdpaxos.NewProposer(&px.Pack{
//	  ID:        grp.NewIDFromInt(1),
//	  Acceptors: conns,
//	  Config:    config.NewConfig(),
//	})
//
// A zero Quorum is replaced by a strict majority of Acceptors.
type Pack struct {
	ID         grp.ID
	InitialRnd uint64
	Quorum     uint
	Acceptors  []AcceptorConn
	Config     *config.Config
}

// QuorumSize returns the configured quorum, or the strict majority of the
// acceptor set if none is configured.
func (pp *Pack) QuorumSize() uint {
	if pp.Quorum == 0 {
		return grp.QuorumSize(uint(len(pp.Acceptors)))
	}
	return pp.Quorum
}
