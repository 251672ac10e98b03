package grp

// QuorumSize returns the size of a strict majority of n acceptors.
func QuorumSize(n uint) uint {
	return n/2 + 1
}

// IsQuorum reports whether count responses out of total acceptors form a
// strict majority. A proposer may be configured with a larger quorum; its
// phases count against a Threshold instead.
func IsQuorum(count, total uint) bool {
	return count > total/2
}

// IsSafeQuorum reports whether a configured quorum size guarantees that any
// two quorums of a group of total acceptors intersect.
func IsSafeQuorum(quorum, total uint) bool {
	return total > 0 && quorum <= total && IsQuorum(quorum, total)
}

// A Threshold is the number of positive answers a protocol phase needs.
// Both phases of a round evaluate their answers against the same
// Threshold.
type Threshold uint

// Reached reports whether count positive answers satisfy t.
func (t Threshold) Reached(count uint) bool {
	return count >= uint(t)
}

// Possible reports whether t can still be reached when pending answers
// are outstanding in addition to count positive ones.
func (t Threshold) Possible(count, pending uint) bool {
	return t.Reached(count + pending)
}
