package paxos

import (
	"bytes"
	"hash/fnv"
)

// A Value is the opaque application payload agreed upon in a slot.
type Value []byte

func (v Value) Equal(o Value) bool {
	return bytes.Equal(v, o)
}

func (v Value) Clone() Value {
	if v == nil {
		return nil
	}
	c := make(Value, len(v))
	copy(c, v)
	return c
}

func (v Value) Hash() uint32 {
	h := fnv.New32a()
	h.Write(v)
	return h.Sum32()
}

func (v Value) String() string {
	return string(v)
}
