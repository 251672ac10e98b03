/*
Package sdpaxos implements slot-indexed single-decree Paxos. The
implementation is split up into three types: Acceptor, Proposer, and
Observer.

An Acceptor guards the per-slot promise and vote state and answers Prepare
and Accept requests. Operations on the same slot are mutually exclusive;
different slots proceed concurrently.

A Proposer runs one two-phase round per call to Propose against a fixed set
of acceptors, reached through paxos.AcceptorConn:

	val, err := p.Propose(ctx, slot, paxos.Value("foo"))

The returned value may differ from the candidate: when any promise reports a
previously accepted value, the round must re-propose the value from the
highest ballot instead. A failed round returns a *QuorumError naming the
phase that failed; it is always safe to retry with a new ballot, which
ProposeWithRetry does.

An Observer inspects acceptor state after the fact and reports the value
decided in a slot. It is meant for testing and inspection only.
*/
package sdpaxos
