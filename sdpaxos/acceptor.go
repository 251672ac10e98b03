package sdpaxos

import (
	"github.com/golang/glog"

	"github.com/relab/slotpaxos/elog"
	e "github.com/relab/slotpaxos/elog/event"
	"github.com/relab/slotpaxos/grp"
	px "github.com/relab/slotpaxos/paxos"
)

// An Acceptor holds the promise and vote state of one acceptor for every
// slot it has been contacted about.
type Acceptor struct {
	id    grp.ID
	slots *px.AcceptorSlotMap
}

// NewAcceptor returns an acceptor with no slot state. Slots are created on
// first contact.
func NewAcceptor(id grp.ID) *Acceptor {
	return &Acceptor{
		id:    id,
		slots: px.NewAcceptorSlotMap(),
	}
}

func (a *Acceptor) ID() grp.ID {
	return a.id
}

// Prepare handles a phase one request. The promise is granted only if the
// ballot is strictly higher than any ballot promised for the slot.
func (a *Acceptor) Prepare(msg px.Prepare) px.Promise {
	if glog.V(3) {
		glog.Infoln(
			"acceptor", a.id, "got prepare from", msg.ID,
			"with ballot", msg.Bal, "for slot", msg.Slot)
	}

	promise := px.Promise{
		ID:   a.id,
		Slot: msg.Slot,
		Bal:  msg.Bal,
	}

	a.slots.Update(msg.Slot, func(slot *px.AcceptorSlot) {
		// If the ballot is lower or equal to the highest one we have
		// promised: reject and report what the proposer has to beat. An
		// unset promise is lower than every valid ballot.
		if msg.Bal.IsZero() || msg.Bal.Compare(slot.Rnd) <= 0 {
			promise.Rnd = slot.Rnd
			return
		}

		slot.Rnd = msg.Bal
		promise.Granted = true
		promise.Rnd = slot.Rnd
		promise.VRnd = slot.VRnd
		promise.VVal = slot.VVal.Clone()
	})

	if promise.Granted {
		elog.Log(e.NewSlotEvent(e.Promised, int8(a.id), uint64(msg.Slot), msg.Bal.Rnd))
	} else {
		glog.V(2).Infof("acceptor %v: stale prepare %v for slot %d, promised %v",
			a.id, msg.Bal, msg.Slot, promise.Rnd)
		elog.Log(e.NewSlotEvent(e.StalePrepare, int8(a.id), uint64(msg.Slot), msg.Bal.Rnd))
	}

	return promise
}

// Accept handles a phase two request. A ballot equal to the promised one is
// accepted, which is what lets a proposer's own prepared ballot through.
func (a *Acceptor) Accept(msg px.Accept) px.Accepted {
	if glog.V(3) {
		glog.Infoln(
			"acceptor", a.id, "got accept from", msg.ID,
			"with ballot", msg.Bal, "for slot", msg.Slot)
	}

	accepted := px.Accepted{
		ID:   a.id,
		Slot: msg.Slot,
		Bal:  msg.Bal,
	}

	a.slots.Update(msg.Slot, func(slot *px.AcceptorSlot) {
		if msg.Bal.IsZero() || msg.Bal.Compare(slot.Rnd) < 0 {
			accepted.Rnd = slot.Rnd
			return
		}

		slot.Rnd = msg.Bal
		slot.VRnd = msg.Bal
		slot.VVal = msg.Val.Clone()
		accepted.OK = true
		accepted.Rnd = slot.Rnd
	})

	if accepted.OK {
		elog.Log(e.NewSlotEvent(e.Voted, int8(a.id), uint64(msg.Slot), msg.Bal.Rnd))
	} else {
		glog.V(2).Infof("acceptor %v: stale accept %v for slot %d, promised %v",
			a.id, msg.Bal, msg.Slot, accepted.Rnd)
		elog.Log(e.NewSlotEvent(e.StaleAccept, int8(a.id), uint64(msg.Slot), msg.Bal.Rnd))
	}

	return accepted
}

// SlotState returns a copy of the state kept for slot. The second result is
// false if the acceptor has never been contacted about the slot.
func (a *Acceptor) SlotState(slot px.SlotID) (px.AcceptorSlot, bool) {
	return a.slots.Lookup(slot)
}

// Slots returns the ids of all slots the acceptor holds state for.
func (a *Acceptor) Slots() []px.SlotID {
	return a.slots.SlotIDs()
}

// MaxSeen returns the highest slot the acceptor has been contacted about.
func (a *Acceptor) MaxSeen() px.SlotID {
	return a.slots.MaxSeen()
}
