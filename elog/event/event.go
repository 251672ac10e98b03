package event

import (
	"fmt"
	"time"
)

type Event struct {
	Type    Type
	Time    time.Time
	EndTime time.Time
	Node    int8
	Slot    uint64
	Rnd     uint64
}

type Type uint8

const (
	// General: 0-15
	Unknown Type = 0
	Start   Type = 1
	Exit    Type = 5

	// Proposer: 16-31
	RoundStart      Type = 16
	PrepareRejected Type = 17
	PhaseOneQuorum  Type = 18
	PhaseOneFailed  Type = 19
	ValueAdopted    Type = 20
	AcceptRejected  Type = 21
	PhaseTwoQuorum  Type = 22
	PhaseTwoFailed  Type = 23
	Chosen          Type = 24

	// Acceptor: 32-47
	Promised     Type = 32
	Voted        Type = 33
	StalePrepare Type = 34
	StaleAccept  Type = 35
)

var typeNames = map[Type]string{
	Unknown:         "Unknown",
	Start:           "Start",
	Exit:            "Exit",
	RoundStart:      "RoundStart",
	PrepareRejected: "PrepareRejected",
	PhaseOneQuorum:  "PhaseOneQuorum",
	PhaseOneFailed:  "PhaseOneFailed",
	ValueAdopted:    "ValueAdopted",
	AcceptRejected:  "AcceptRejected",
	PhaseTwoQuorum:  "PhaseTwoQuorum",
	PhaseTwoFailed:  "PhaseTwoFailed",
	Chosen:          "Chosen",
	Promised:        "Promised",
	Voted:           "Voted",
	StalePrepare:    "StalePrepare",
	StaleAccept:     "StaleAccept",
}

func (t Type) String() string {
	if name, found := typeNames[t]; found {
		return name
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

func NewEvent(t Type) Event {
	return Event{
		Type: t,
		Time: time.Now(),
	}
}

// NewSlotEvent returns an event raised by node for ballot round rnd in slot.
func NewSlotEvent(t Type, node int8, slot, rnd uint64) Event {
	return Event{
		Type: t,
		Time: time.Now(),
		Node: node,
		Slot: slot,
		Rnd:  rnd,
	}
}

// NewTimedSlotEvent is like NewSlotEvent but records the interval since
// start.
func NewTimedSlotEvent(t Type, node int8, slot, rnd uint64, start time.Time) Event {
	return Event{
		Type:    t,
		Time:    start,
		EndTime: time.Now(),
		Node:    node,
		Slot:    slot,
		Rnd:     rnd,
	}
}

const layout = "2006-01-02 15:04:05.999999999"

func (e Event) String() string {
	switch e.Type {
	case Unknown, Start, Exit:
		return fmt.Sprintf("%v:\t%16v", e.Time.Format(layout), e.Type)
	case Chosen:
		return fmt.Sprintf("%v:\t%16v node %d slot %d rnd %d Latency: %v",
			e.EndTime.Format(layout), e.Type, e.Node, e.Slot, e.Rnd, e.EndTime.Sub(e.Time))
	default:
		return fmt.Sprintf("%v:\t%16v node %d slot %d rnd %d",
			e.Time.Format(layout), e.Type, e.Node, e.Slot, e.Rnd)
	}
}
