/*
Package net provides fault injection for acceptor connections.

The types here wrap a paxos.AcceptorConn and make some of its calls fail
to produce a response, the way an unreachable or lossy network would. A
proposer counts such a call as neither a grant nor a rejection.

	conns[3] = net.Unreachable(conns[3])
	conns[4] = net.NewLossy(conns[4], net.LossyOpts{DropReply: 0.2})
*/
package net
