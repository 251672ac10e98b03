package sdpaxos

import (
	"sort"

	"github.com/relab/slotpaxos/grp"
	px "github.com/relab/slotpaxos/paxos"
)

// A StateReader exposes the per-slot state of an acceptor without going
// through the protocol. *Acceptor implements it.
type StateReader interface {
	ID() grp.ID
	SlotState(slot px.SlotID) (px.AcceptorSlot, bool)
}

// A Decision describes a value that is chosen for a slot: Support
// acceptors have voted for Val in ballots at least Bal, and no acceptor has
// voted for anything else in such a ballot.
type Decision struct {
	Slot    px.SlotID
	Bal     px.Ballot
	Val     px.Value
	Support uint
}

// An Observer inspects the acceptors directly to determine which value, if
// any, has been chosen for a slot.
type Observer struct {
	quorum    uint
	acceptors []StateReader
}

// NewObserver returns an observer for the given acceptors. A zero quorum
// means a strict majority of them.
func NewObserver(quorum uint, acceptors ...StateReader) *Observer {
	if quorum == 0 {
		quorum = grp.QuorumSize(uint(len(acceptors)))
	}
	return &Observer{
		quorum:    quorum,
		acceptors: acceptors,
	}
}

// Snapshot returns a copy of the state of every acceptor that has seen
// slot, keyed by acceptor.
func (o *Observer) Snapshot(slot px.SlotID) map[grp.ID]px.AcceptorSlot {
	states := make(map[grp.ID]px.AcceptorSlot, len(o.acceptors))
	for _, a := range o.acceptors {
		if s, found := a.SlotState(slot); found {
			states[a.ID()] = s
		}
	}
	return states
}

// Decided reports the value chosen for slot. Val is chosen with ballot Bal
// when a quorum of acceptors has voted in ballots at least Bal and every one
// of those votes carries Val. A decision may thus span several ballots, as
// when a later proposer adopts the value and only some acceptors see its
// accept. The lowest qualifying ballot is reported.
func (o *Observer) Decided(slot px.SlotID) (Decision, bool) {
	var votes []px.AcceptorSlot
	for _, s := range o.Snapshot(slot) {
		if s.Voted() {
			votes = append(votes, s)
		}
	}

	sort.Slice(votes, func(i, j int) bool {
		return votes[i].VRnd.Compare(votes[j].VRnd) < 0
	})

	// votes[i:] holds every vote cast in a ballot at least votes[i].VRnd
	for i := 0; uint(len(votes)-i) >= o.quorum; i++ {
		if i > 0 && votes[i].VRnd == votes[i-1].VRnd {
			continue
		}
		if agree(votes[i:]) {
			return Decision{
				Slot:    slot,
				Bal:     votes[i].VRnd,
				Val:     votes[i].VVal.Clone(),
				Support: uint(len(votes) - i),
			}, true
		}
	}

	return Decision{}, false
}

func agree(votes []px.AcceptorSlot) bool {
	for _, v := range votes[1:] {
		if !v.VVal.Equal(votes[0].VVal) {
			return false
		}
	}
	return true
}

// DecidedValue returns the value chosen for slot, if any.
func (o *Observer) DecidedValue(slot px.SlotID) (px.Value, bool) {
	d, ok := o.Decided(slot)
	if !ok {
		return nil, false
	}
	return d.Val, true
}
