package paxos

import (
	"context"

	"github.com/relab/slotpaxos/grp"
)

// An AcceptorConn is how a proposer reaches one acceptor. A non-nil error
// means the acceptor did not respond; it is neither a grant nor a rejection.
// Implementations must be safe for concurrent use.
type AcceptorConn interface {
	ID() grp.ID
	Prepare(ctx context.Context, msg Prepare) (Promise, error)
	Accept(ctx context.Context, msg Accept) (Accepted, error)
}
