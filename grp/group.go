package grp

import (
	"fmt"
	"sort"
	"strings"
)

// A Group is the fixed set of acceptors a proposer talks to. The quorum size
// is computed once when the group is created.
type Group struct {
	ids    []ID
	member map[ID]bool
	quorum uint
}

// NewGroup returns a group containing the given acceptor ids, sorted in
// ascending order.
func NewGroup(ids ...ID) (*Group, error) {
	if len(ids) == 0 {
		return nil, ErrEmptyGroup
	}

	g := &Group{member: make(map[ID]bool, len(ids))}
	for _, id := range ids {
		if !id.Defined() {
			return nil, ErrNodeIDOutOfBounds
		}
		if g.member[id] {
			return nil, ErrNodeAlreadyPresent
		}
		g.member[id] = true
		g.ids = append(g.ids, id)
	}

	sort.Slice(g.ids, func(i, j int) bool { return g.ids[i] < g.ids[j] })
	g.quorum = QuorumSize(uint(len(g.ids)))

	return g, nil
}

// NewGroupOfSize returns a group with acceptor ids 0..n-1.
func NewGroupOfSize(n int) (*Group, error) {
	if n <= 0 || n > int(MaxID)+1 {
		return nil, fmt.Errorf("group of size %d: %w", n, ErrNodeIDOutOfBounds)
	}
	ids := make([]ID, n)
	for i := range ids {
		ids[i] = ID(i)
	}
	return NewGroup(ids...)
}

func (g *Group) IDs() []ID {
	ids := make([]ID, len(g.ids))
	copy(ids, g.ids)
	return ids
}

func (g *Group) NrOfAcceptors() uint {
	return uint(len(g.ids))
}

func (g *Group) Quorum() uint {
	return g.quorum
}

func (g *Group) Contains(id ID) bool {
	return g.member[id]
}

func (g *Group) String() string {
	parts := make([]string, len(g.ids))
	for i, id := range g.ids {
		parts[i] = id.String()
	}
	return fmt.Sprintf("group [%s] (quorum %d)", strings.Join(parts, ","), g.quorum)
}
