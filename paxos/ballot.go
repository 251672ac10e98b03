package paxos

import (
	"fmt"

	"github.com/relab/slotpaxos/grp"
)

// The zero-value of a Ballot. It is lower than every ballot a proposer can
// generate and marks promise or vote state that has not been set yet.
var ZeroBallot = Ballot{}

// A Ballot, which is guaranteed to be unique among all the Proposers due to
// the fact that it is based on the Proposer's ID as well as the round number.
type Ballot struct {
	Rnd uint64
	ID  grp.ID
}

// NewBallot returns a ballot owned by id, starting at round rnd. The first
// call to Next yields round rnd+1.
func NewBallot(rnd uint64, id grp.ID) *Ballot {
	return &Ballot{Rnd: rnd, ID: id}
}

// Compare two Ballots. Returns -1 if b is less than ob, 0 if they are
// equal, or 1 if b is greater than ob.
func (b Ballot) Compare(ob Ballot) int {
	if b.Rnd == ob.Rnd {
		return b.ID.CompareTo(ob.ID)
	} else if b.Rnd < ob.Rnd {
		return -1
	}
	return 1
}

// IsZero reports whether b is unset.
func (b Ballot) IsZero() bool {
	return b.Rnd == 0
}

// Next increments the Ballot's round.
func (b *Ballot) Next() {
	b.Rnd++
}

// Raise moves the round past the round of seen, so that the following Next
// produces a ballot strictly higher than seen.
func (b *Ballot) Raise(seen Ballot) {
	if seen.Rnd > b.Rnd {
		b.Rnd = seen.Rnd
	}
}

// SetOwner changes the ownership of the Ballot.
func (b *Ballot) SetOwner(id grp.ID) {
	b.ID = id
}

func (b Ballot) String() string {
	if b.IsZero() {
		return "(⊥)"
	}
	return fmt.Sprintf("(%d,%v)", b.Rnd, b.ID)
}
