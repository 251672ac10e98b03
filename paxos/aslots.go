package paxos

import (
	"sort"
	"sync"
)

// A SlotID names one independent Paxos instance.
type SlotID uint64

// An AcceptorSlot contains the state an acceptor keeps for a single slot.
type AcceptorSlot struct {
	ID   SlotID
	Rnd  Ballot // The highest ballot we have promised
	VRnd Ballot // The highest ballot in which we have casted a vote
	VVal Value  // The value voted for with ballot VRnd
}

// Voted reports whether the acceptor has accepted a value in this slot.
func (s *AcceptorSlot) Voted() bool {
	return !s.VRnd.IsZero()
}

type acceptorCell struct {
	mu   sync.Mutex
	slot AcceptorSlot
}

// An AcceptorSlotMap maps slots to their AcceptorSlot. Entries are created
// lazily on first access while holding the map lock. Each slot has its own
// lock, so operations on different slots do not serialize on each other.
type AcceptorSlotMap struct {
	mu      sync.Mutex
	slots   map[SlotID]*acceptorCell
	maxSeen SlotID
}

// Construct a new AcceptorSlotMap.
func NewAcceptorSlotMap() *AcceptorSlotMap {
	return &AcceptorSlotMap{
		slots: make(map[SlotID]*acceptorCell),
	}
}

func (sm *AcceptorSlotMap) getCell(id SlotID) *acceptorCell {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	cell, ok := sm.slots[id]
	if !ok {
		cell = &acceptorCell{slot: AcceptorSlot{ID: id}}
		sm.slots[id] = cell
	}
	if id > sm.maxSeen {
		sm.maxSeen = id
	}
	return cell
}

// Update calls fn with exclusive access to the state of slot id, creating
// the slot if this is the first contact.
func (sm *AcceptorSlotMap) Update(id SlotID, fn func(slot *AcceptorSlot)) {
	cell := sm.getCell(id)
	cell.mu.Lock()
	defer cell.mu.Unlock()
	fn(&cell.slot)
}

// Lookup returns a copy of the state of slot id. It does not create the slot.
func (sm *AcceptorSlotMap) Lookup(id SlotID) (AcceptorSlot, bool) {
	sm.mu.Lock()
	cell, ok := sm.slots[id]
	sm.mu.Unlock()
	if !ok {
		return AcceptorSlot{ID: id}, false
	}
	cell.mu.Lock()
	defer cell.mu.Unlock()
	slot := cell.slot
	slot.VVal = slot.VVal.Clone()
	return slot, true
}

// MaxSeen returns the highest slot id accessed so far.
func (sm *AcceptorSlotMap) MaxSeen() SlotID {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.maxSeen
}

// SlotIDs returns the ids of all slots that have been contacted, in
// ascending order.
func (sm *AcceptorSlotMap) SlotIDs() []SlotID {
	sm.mu.Lock()
	ids := make([]SlotID, 0, len(sm.slots))
	for id := range sm.slots {
		ids = append(ids, id)
	}
	sm.mu.Unlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
