package sdpaxos

import (
	"errors"
	"fmt"

	px "github.com/relab/slotpaxos/paxos"
)

var (
	ErrQuorumNotReached = errors.New("quorum not reached")
	ErrNoAcceptors      = errors.New("proposer needs at least one acceptor")
	ErrUnsafeQuorum     = errors.New("quorum size is not a strict majority of the acceptors")
)

// A Phase names one of the two phases of a Paxos round.
type Phase uint8

const (
	PhaseOne Phase = 1
	PhaseTwo Phase = 2
)

func (ph Phase) String() string {
	switch ph {
	case PhaseOne:
		return "phase 1 (prepare)"
	case PhaseTwo:
		return "phase 2 (accept)"
	}
	return fmt.Sprintf("phase %d", uint8(ph))
}

// A QuorumError reports a round that did not collect a quorum of positive
// answers. Responses counts the acceptors that answered at all; the rest
// did not respond in time. The round can be retried with a higher ballot.
type QuorumError struct {
	Phase     Phase
	Slot      px.SlotID
	Bal       px.Ballot
	Responses uint
	Granted   uint
	Quorum    uint
}

func (qe *QuorumError) Error() string {
	return fmt.Sprintf("slot %d ballot %v: %v: %v (%d of %d needed, %d responded)",
		qe.Slot, qe.Bal, qe.Phase, ErrQuorumNotReached, qe.Granted, qe.Quorum, qe.Responses)
}

func (qe *QuorumError) Unwrap() error {
	return ErrQuorumNotReached
}

// IsRecoverable reports whether err is a protocol-level failure that a
// new round with a higher ballot may overcome.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrQuorumNotReached)
}

// FailedPhase returns the phase in which err occurred, if err is a
// QuorumError.
func FailedPhase(err error) (Phase, bool) {
	var qe *QuorumError
	if errors.As(err, &qe) {
		return qe.Phase, true
	}
	return 0, false
}
