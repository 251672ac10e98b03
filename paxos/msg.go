package paxos

import (
	"encoding/gob"

	"github.com/relab/slotpaxos/grp"
)

func init() {
	gob.Register(Prepare{})
	gob.Register(Promise{})
	gob.Register(Accept{})
	gob.Register(Accepted{})
}

// Prepare is sent by proposer ID in phase one.
type Prepare struct {
	ID   grp.ID
	Slot SlotID
	Bal  Ballot
}

// Promise answers a Prepare. When Granted, VRnd and VVal carry the highest
// ballot the acceptor has voted in for the slot and the value of that vote
// (zero and nil if it has not voted). Rnd is the acceptor's promise after
// handling the request; on a rejection it tells the proposer what to beat.
type Promise struct {
	ID      grp.ID
	Slot    SlotID
	Bal     Ballot
	Granted bool
	Rnd     Ballot
	VRnd    Ballot
	VVal    Value
}

// Accept is sent by proposer ID in phase two.
type Accept struct {
	ID   grp.ID
	Slot SlotID
	Bal  Ballot
	Val  Value
}

// Accepted answers an Accept.
type Accepted struct {
	ID   grp.ID
	Slot SlotID
	Bal  Ballot
	OK   bool
	Rnd  Ballot
}
