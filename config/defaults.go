package config

import (
	"time"
)

// Default configuration settings for the Paxos core
const (
	// acceptors: int
	// Number of acceptors in the fixed acceptor set
	DefAcceptors = 5

	// quorum: int
	// Quorum size used by proposers. 0 derives a strict majority of the
	// acceptor set. A value below a strict majority is rejected.
	DefQuorum = 0

	// prepareTimeout: duration
	// How long does a proposer wait for promises before giving up on
	// phase 1 of a round?
	DefPrepareTimeout = 500 * time.Millisecond

	// acceptTimeout: duration
	// How long does a proposer wait for accept acknowledgements before
	// giving up on phase 2 of a round?
	DefAcceptTimeout = 500 * time.Millisecond

	// maxAttempts: int
	// Number of rounds ProposeWithRetry runs before reporting the last
	// quorum failure
	DefMaxAttempts = 10

	// retryBackoff: duration
	// Upper bound for the randomized wait between two rounds of
	// ProposeWithRetry
	DefRetryBackoff = 20 * time.Millisecond
)

// Default configuration settings for the demo driver
const (
	// proposers: int
	// Number of concurrently running proposers
	DefProposers = 4

	// slots: int
	// Number of slots each proposer proposes values for
	DefSlots = 3

	// dropRate: int (percent)
	// Probability that a request or reply to an acceptor is lost
	DefDropRate = 0

	// maxDelay: duration
	// Upper bound for the random delay added to every acceptor call
	DefMaxDelay = time.Duration(0)
)
