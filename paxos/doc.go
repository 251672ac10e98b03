/*
Package paxos provides the Paxos structures shared by the acceptor, proposer
and observer implementations.

This includes ballots, values, the request/response messages exchanged in the
two protocol phases, the per-slot acceptor state map, and the AcceptorConn
contract through which a proposer reaches an acceptor, either in-process or
through a transport layer.
*/
package paxos
