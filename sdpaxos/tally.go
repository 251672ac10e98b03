package sdpaxos

import px "github.com/relab/slotpaxos/paxos"

// A ValueTally counts the acceptors that have voted for each value in a
// slot, keyed by the value's string form.
//
// It ignores the ballot of each vote and is therefore NOT a correct
// decision rule: votes for the same value cast in unrelated ballots can
// add up to a quorum even though no ballot ever got a quorum. It is kept
// for comparison with Observer.Decided.
type ValueTally map[string]uint

// TallyByValue returns the per-value vote count for slot.
func (o *Observer) TallyByValue(slot px.SlotID) ValueTally {
	tally := make(ValueTally)
	for _, s := range o.Snapshot(slot) {
		if s.Voted() {
			tally[string(s.VVal)]++
		}
	}
	return tally
}

// Leader returns the value with most votes and whether it reaches quorum.
// Ties resolve to the lexicographically smallest value.
func (t ValueTally) Leader(quorum uint) (px.Value, uint, bool) {
	var (
		best  string
		count uint
		found bool
	)
	for val, n := range t {
		if !found || n > count || (n == count && val < best) {
			best, count, found = val, n, true
		}
	}
	if !found {
		return nil, 0, false
	}
	return px.Value(best), count, count >= quorum
}
