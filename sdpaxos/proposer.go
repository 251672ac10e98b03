package sdpaxos

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/relab/slotpaxos/config"
	"github.com/relab/slotpaxos/elog"
	e "github.com/relab/slotpaxos/elog/event"
	"github.com/relab/slotpaxos/grp"
	px "github.com/relab/slotpaxos/paxos"
)

// A Proposer contains all the state for a proposer. Rounds started on the
// same Proposer run one at a time.
type Proposer struct {
	id             grp.ID
	mu             sync.Mutex
	crnd           *px.Ballot // Current ballot, incremented before every round
	group          *grp.Group
	quorum         grp.Threshold
	acceptors      []px.AcceptorConn
	prepareTimeout time.Duration
	acceptTimeout  time.Duration
	maxAttempts    int
	retryBackoff   time.Duration
}

// NewProposer returns a new proposer based on the state in pp.
func NewProposer(pp *px.Pack) (*Proposer, error) {
	if !pp.ID.Defined() {
		return nil, fmt.Errorf("proposer id %v: %w", pp.ID, grp.ErrNodeIDOutOfBounds)
	}
	if len(pp.Acceptors) == 0 {
		return nil, ErrNoAcceptors
	}

	ids := make([]grp.ID, len(pp.Acceptors))
	for i, conn := range pp.Acceptors {
		ids[i] = conn.ID()
	}
	group, err := grp.NewGroup(ids...)
	if err != nil {
		return nil, fmt.Errorf("acceptor set: %w", err)
	}

	quorum := pp.QuorumSize()
	if !grp.IsSafeQuorum(quorum, group.NrOfAcceptors()) {
		return nil, fmt.Errorf("%w: %d of %d", ErrUnsafeQuorum, quorum, group.NrOfAcceptors())
	}

	cfg := pp.Config
	if cfg == nil {
		cfg = config.NewConfig()
	}

	acceptors := make([]px.AcceptorConn, len(pp.Acceptors))
	copy(acceptors, pp.Acceptors)

	p := &Proposer{
		id:             pp.ID,
		crnd:           px.NewBallot(pp.InitialRnd, pp.ID),
		group:          group,
		quorum:         grp.Threshold(quorum),
		acceptors:      acceptors,
		prepareTimeout: cfg.GetDuration("prepareTimeout", config.DefPrepareTimeout),
		acceptTimeout:  cfg.GetDuration("acceptTimeout", config.DefAcceptTimeout),
		maxAttempts:    cfg.GetInt("maxAttempts", config.DefMaxAttempts),
		retryBackoff:   cfg.GetDuration("retryBackoff", config.DefRetryBackoff),
	}
	if p.maxAttempts < 1 {
		p.maxAttempts = 1
	}

	glog.V(1).Infoln("proposer", p.id, "status:", p.getStatus())

	return p, nil
}

func (p *Proposer) ID() grp.ID {
	return p.id
}

func (p *Proposer) Quorum() uint {
	return uint(p.quorum)
}

// Ballot returns the ballot of the most recent round.
func (p *Proposer) Ballot() px.Ballot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return *p.crnd
}

// Propose runs one round for slot with candidate as the value to propose
// unless a previously accepted value must be adopted. It returns the value
// chosen by the round, or a *QuorumError naming the phase that failed. If
// ctx is done before the round completes, ctx.Err() is returned.
func (p *Proposer) Propose(ctx context.Context, slot px.SlotID, candidate px.Value) (px.Value, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.crnd.Next()
	bal := *p.crnd
	start := time.Now()

	glog.V(2).Infof("proposer %v: starting round %v for slot %d", p.id, bal, slot)
	elog.Log(e.NewSlotEvent(e.RoundStart, int8(p.id), uint64(slot), bal.Rnd))

	val, err := p.phaseOne(ctx, slot, bal, candidate)
	if err != nil {
		return nil, err
	}

	if err = p.phaseTwo(ctx, slot, bal, val); err != nil {
		return nil, err
	}

	glog.V(2).Infof("proposer %v: value %q chosen for slot %d with ballot %v", p.id, val, slot, bal)
	elog.Log(e.NewTimedSlotEvent(e.Chosen, int8(p.id), uint64(slot), bal.Rnd, start))

	return val, nil
}

// ProposeWithRetry runs rounds until a value is chosen for slot, a
// non-recoverable error occurs, or the configured number of attempts is
// used up, in which case the last QuorumError is returned. Rounds are
// separated by a random backoff to let competing proposers finish.
func (p *Proposer) ProposeWithRetry(ctx context.Context, slot px.SlotID, candidate px.Value) (px.Value, error) {
	var err error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		var val px.Value
		val, err = p.Propose(ctx, slot, candidate)
		if err == nil {
			return val, nil
		}
		if !IsRecoverable(err) {
			return nil, err
		}
		glog.V(2).Infof("proposer %v: attempt %d/%d for slot %d failed: %v",
			p.id, attempt, p.maxAttempts, slot, err)
		if attempt == p.maxAttempts {
			break
		}

		select {
		case <-time.After(p.backoff()):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, err
}

// -----------------------------------------------------------------------
// Phase 1: Sending prepares and handling promises

type promiseReply struct {
	promise px.Promise
	err     error
}

func (p *Proposer) phaseOne(ctx context.Context, slot px.SlotID, bal px.Ballot, candidate px.Value) (px.Value, error) {
	cctx, done := callContext(ctx, p.prepareTimeout, len(p.acceptors))
	timeout := time.NewTimer(p.prepareTimeout)
	defer timeout.Stop()

	msg := px.Prepare{ID: p.id, Slot: slot, Bal: bal}
	replies := make(chan promiseReply, len(p.acceptors))
	for _, conn := range p.acceptors {
		go func(conn px.AcceptorConn) {
			defer done()
			promise, err := conn.Prepare(cctx, msg)
			replies <- promiseReply{promise, err}
		}(conn)
	}

	var (
		pending   = uint(len(p.acceptors))
		responses uint
		granted   uint
		vrnd      = px.ZeroBallot
		vval      px.Value
	)

	// Stop as soon as a quorum has promised, or when the outstanding
	// acceptors can no longer make up a quorum. Late promises are dropped.
gather:
	for pending > 0 && !p.quorum.Reached(granted) && p.quorum.Possible(granted, pending) {
		select {
		case r := <-replies:
			pending--
			if r.err != nil {
				if glog.V(3) {
					glog.Infoln("proposer", p.id, "got no promise:", r.err)
				}
				continue
			}
			if r.promise.Slot != slot || r.promise.Bal != bal {
				continue
			}
			responses++
			if !r.promise.Granted {
				glog.V(2).Infof("proposer %v: prepare %v for slot %d rejected by %v (promised %v)",
					p.id, bal, slot, r.promise.ID, r.promise.Rnd)
				elog.Log(e.NewSlotEvent(e.PrepareRejected, int8(p.id), uint64(slot), bal.Rnd))
				p.crnd.Raise(r.promise.Rnd)
				continue
			}
			granted++
			// Keep the vote with the highest ballot among the promises.
			if r.promise.VRnd.Compare(vrnd) > 0 {
				vrnd = r.promise.VRnd
				vval = r.promise.VVal
			}
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timeout.C:
			break gather
		}
	}

	if !p.quorum.Reached(granted) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		err := &QuorumError{
			Phase:     PhaseOne,
			Slot:      slot,
			Bal:       bal,
			Responses: responses,
			Granted:   granted,
			Quorum:    uint(p.quorum),
		}
		glog.V(2).Infof("proposer %v: %v", p.id, err)
		elog.Log(e.NewSlotEvent(e.PhaseOneFailed, int8(p.id), uint64(slot), bal.Rnd))
		return nil, err
	}

	if glog.V(3) {
		glog.Infof("proposer %v: received quorum of %d promises for slot %d", p.id, granted, slot)
	}
	elog.Log(e.NewSlotEvent(e.PhaseOneQuorum, int8(p.id), uint64(slot), bal.Rnd))

	if vrnd.IsZero() {
		return candidate, nil
	}

	if !vval.Equal(candidate) {
		glog.V(2).Infof("proposer %v: adopting value %q from ballot %v for slot %d instead of %q",
			p.id, vval, vrnd, slot, candidate)
	}
	elog.Log(e.NewSlotEvent(e.ValueAdopted, int8(p.id), uint64(slot), bal.Rnd))

	return vval, nil
}

// -----------------------------------------------------------------------
// Phase 2: Sending accepts and counting acknowledgements

type acceptedReply struct {
	accepted px.Accepted
	err      error
}

func (p *Proposer) phaseTwo(ctx context.Context, slot px.SlotID, bal px.Ballot, val px.Value) error {
	cctx, done := callContext(ctx, p.acceptTimeout, len(p.acceptors))
	timeout := time.NewTimer(p.acceptTimeout)
	defer timeout.Stop()

	msg := px.Accept{ID: p.id, Slot: slot, Bal: bal, Val: val}
	replies := make(chan acceptedReply, len(p.acceptors))
	for _, conn := range p.acceptors {
		go func(conn px.AcceptorConn) {
			defer done()
			accepted, err := conn.Accept(cctx, msg)
			replies <- acceptedReply{accepted, err}
		}(conn)
	}

	var (
		pending   = uint(len(p.acceptors))
		responses uint
		ok        uint
	)

gather:
	for pending > 0 && !p.quorum.Reached(ok) && p.quorum.Possible(ok, pending) {
		select {
		case r := <-replies:
			pending--
			if r.err != nil {
				if glog.V(3) {
					glog.Infoln("proposer", p.id, "got no accept acknowledgement:", r.err)
				}
				continue
			}
			if r.accepted.Slot != slot || r.accepted.Bal != bal {
				continue
			}
			responses++
			if !r.accepted.OK {
				glog.V(2).Infof("proposer %v: accept %v for slot %d rejected by %v (promised %v)",
					p.id, bal, slot, r.accepted.ID, r.accepted.Rnd)
				elog.Log(e.NewSlotEvent(e.AcceptRejected, int8(p.id), uint64(slot), bal.Rnd))
				p.crnd.Raise(r.accepted.Rnd)
				continue
			}
			ok++
		case <-ctx.Done():
			return ctx.Err()
		case <-timeout.C:
			break gather
		}
	}

	if !p.quorum.Reached(ok) {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := &QuorumError{
			Phase:     PhaseTwo,
			Slot:      slot,
			Bal:       bal,
			Responses: responses,
			Granted:   ok,
			Quorum:    uint(p.quorum),
		}
		glog.V(2).Infof("proposer %v: %v", p.id, err)
		elog.Log(e.NewSlotEvent(e.PhaseTwoFailed, int8(p.id), uint64(slot), bal.Rnd))
		return err
	}

	if glog.V(3) {
		glog.Infof("proposer %v: received quorum of %d accepts for slot %d", p.id, ok, slot)
	}
	elog.Log(e.NewSlotEvent(e.PhaseTwoQuorum, int8(p.id), uint64(slot), bal.Rnd))

	return nil
}

// -----------------------------------------------------------------------
// Utility methods

// callContext returns the context for the acceptor calls of one phase and
// the function each call runs when it returns. The context is not cancelled
// when the phase stops gathering: every acceptor still gets the request,
// and calls in flight end at timeout or when the last call has returned.
func callContext(ctx context.Context, timeout time.Duration, calls int) (context.Context, func()) {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	var wg sync.WaitGroup
	wg.Add(calls)
	go func() {
		wg.Wait()
		cancel()
	}()
	return cctx, wg.Done
}

func (p *Proposer) backoff() time.Duration {
	if p.retryBackoff <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(p.retryBackoff)))
}

func (p *Proposer) getStatus() string {
	return fmt.Sprintf(
		"ballot: %v, %v, prepare timeout: %v, accept timeout: %v",
		*p.crnd, p.group, p.prepareTimeout, p.acceptTimeout,
	)
}
