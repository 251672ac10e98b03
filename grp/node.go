package grp

import (
	"errors"
	"math"
	"strconv"
)

var (
	ErrNodeAlreadyPresent = errors.New("node with given id is already present in group")
	ErrNodeIDOutOfBounds  = errors.New("node id is out of bounds")
	ErrEmptyGroup         = errors.New("group must contain at least one acceptor")
)

const (
	MinID = ID(0)
	MaxID = ID(math.MaxInt8)
)

// An ID identifies a proposer or an acceptor. Proposer IDs are used as the
// tiebreaker in ballots, so two proposers must never share an ID.
type ID int8

var undefinedID = ID(-1)

func NewIDFromInt(id int) ID {
	return ID(id)
}

func UndefinedID() ID {
	return undefinedID
}

func (id ID) Defined() bool {
	return id >= MinID
}

func (id ID) CompareTo(otherID ID) int {
	if id > otherID {
		return 1
	} else if id < otherID {
		return -1
	}

	return 0
}

func (id ID) PxInt() int {
	return int(id)
}

func (id ID) String() string {
	return strconv.Itoa(int(id))
}
