package sdpaxos

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/relab/slotpaxos/elog"
	e "github.com/relab/slotpaxos/elog/event"
	"github.com/relab/slotpaxos/grp"
	"github.com/relab/slotpaxos/net"
	px "github.com/relab/slotpaxos/paxos"

	gc "gopkg.in/check.v1"
)

type propSuite struct{}

var _ = gc.Suite(&propSuite{})

// -----------------------------------------------------------------------
// Tests: Construction

func (*propSuite) TestNewProposerValidation(c *gc.C) {
	cluster := newTestCluster(c, 5)

	_, err := NewProposer(&px.Pack{ID: r1id})
	c.Assert(errors.Is(err, ErrNoAcceptors), gc.Equals, true)

	_, err = NewProposer(&px.Pack{ID: r1id, Quorum: 2, Acceptors: cluster.Conns})
	c.Assert(errors.Is(err, ErrUnsafeQuorum), gc.Equals, true)

	dup := []px.AcceptorConn{cluster.Conns[0], cluster.Conns[1], cluster.Conns[0]}
	_, err = NewProposer(&px.Pack{ID: r1id, Acceptors: dup})
	c.Assert(errors.Is(err, grp.ErrNodeAlreadyPresent), gc.Equals, true)

	_, err = NewProposer(&px.Pack{ID: grp.UndefinedID(), Acceptors: cluster.Conns})
	c.Assert(errors.Is(err, grp.ErrNodeIDOutOfBounds), gc.Equals, true)

	p, err := NewProposer(&px.Pack{ID: r1id, Acceptors: cluster.Conns})
	c.Assert(err, gc.IsNil)
	c.Assert(p.Quorum(), gc.Equals, uint(3))

	p, err = NewProposer(&px.Pack{ID: r1id, Quorum: 5, Acceptors: cluster.Conns})
	c.Assert(err, gc.IsNil)
	c.Assert(p.Quorum(), gc.Equals, uint(5))
}

// -----------------------------------------------------------------------
// Tests: Single rounds

func (*propSuite) TestChooseCandidateOnFreshSlot(c *gc.C) {
	cluster := newTestCluster(c, 5)
	p := newTestProposer(c, r1id, 0, cluster.Conns)
	ctx, cancel := testContext()
	defer cancel()

	val, err := p.Propose(ctx, sid1, valFoo)
	c.Assert(err, gc.IsNil)
	c.Assert(val, gc.DeepEquals, valFoo)
	c.Assert(p.Ballot(), gc.Equals, rnd11)

	decided, ok := cluster.Observer().DecidedValue(sid1)
	c.Assert(ok, gc.Equals, true)
	c.Assert(decided, gc.DeepEquals, valFoo)
}

func (*propSuite) TestSecondProposerAdoptsChosenValue(c *gc.C) {
	cluster := newTestCluster(c, 5)
	p1 := newTestProposer(c, r1id, 0, cluster.Conns)
	p2 := newTestProposer(c, r2id, 0, cluster.Conns)
	ctx, cancel := testContext()
	defer cancel()

	val, err := p1.Propose(ctx, sid1, valX)
	c.Assert(err, gc.IsNil)
	c.Assert(val, gc.DeepEquals, valX)

	// Every acceptor gets the prepare and the accept, not just a quorum
	allVoted := eventually(func() bool {
		return votesFor(cluster, sid1, rnd11, valX) == len(cluster.Acceptors)
	})
	c.Assert(allVoted, gc.Equals, true, gc.Commentf("%d of 5 acceptors voted (1,1) X",
		votesFor(cluster, sid1, rnd11, valX)))

	// p2 uses ballot (1,2) > (1,1) and must learn about X in phase one
	val, err = p2.Propose(ctx, sid1, valY)
	c.Assert(err, gc.IsNil)
	c.Assert(val, gc.DeepEquals, valX)

	d, ok := cluster.Observer().Decided(sid1)
	c.Assert(ok, gc.Equals, true)
	c.Assert(d.Val, gc.DeepEquals, valX)

	for _, a := range cluster.Acceptors {
		slot, _ := a.SlotState(sid1)
		if slot.Voted() {
			c.Assert(slot.VVal, gc.DeepEquals, valX)
		}
	}
}

func (*propSuite) TestRequestsReachEveryAcceptor(c *gc.C) {
	for i := 0; i < 20; i++ {
		cluster := newTestCluster(c, 5)
		p := newTestProposer(c, r1id, 0, cluster.Conns)
		ctx, cancel := testContext()
		_, err := p.Propose(ctx, sid0, valFoo)
		cancel()
		c.Assert(err, gc.IsNil)

		allVoted := eventually(func() bool {
			return votesFor(cluster, sid0, rnd11, valFoo) == len(cluster.Acceptors)
		})
		c.Assert(allVoted, gc.Equals, true, gc.Commentf("run %d: %d of 5 acceptors voted",
			i, votesFor(cluster, sid0, rnd11, valFoo)))
	}
}

func (*propSuite) TestRoundEvents(c *gc.C) {
	cluster := newTestCluster(c, 3)
	p1 := newTestProposer(c, r3id, 0, cluster.Conns)
	p2 := newTestProposer(c, r4id, 0, cluster.Conns)
	ctx, cancel := testContext()
	defer cancel()

	// Acceptors have ids 0-2, so node 4 only logs proposer events
	var (
		mu     sync.Mutex
		events []e.Type
	)
	stop := elog.Subscribe(func(ev e.Event) {
		if ev.Node == int8(r4id) && ev.Slot == uint64(sid2) {
			mu.Lock()
			events = append(events, ev.Type)
			mu.Unlock()
		}
	})
	defer stop()

	_, err := p1.Propose(ctx, sid2, valFoo)
	c.Assert(err, gc.IsNil)
	_, err = p2.Propose(ctx, sid2, valBar)
	c.Assert(err, gc.IsNil)

	mu.Lock()
	defer mu.Unlock()
	c.Assert(events, gc.DeepEquals, []e.Type{
		e.RoundStart, e.PhaseOneQuorum, e.ValueAdopted, e.PhaseTwoQuorum, e.Chosen,
	})
}

func (*propSuite) TestAdoptHighestVote(c *gc.C) {
	cluster := newTestCluster(c, 3)
	// Acceptor 0 voted foo in (1,1), acceptor 1 voted bar in (2,2)
	cluster.Acceptors[0].Accept(px.Accept{ID: r1id, Slot: sid1, Bal: rnd11, Val: valFoo})
	cluster.Acceptors[1].Accept(px.Accept{ID: r2id, Slot: sid1, Bal: rnd22, Val: valBar})

	conns := []px.AcceptorConn{
		cluster.Conns[0],
		cluster.Conns[1],
		net.Unreachable(cluster.Conns[2]),
	}
	p := newTestProposer(c, r3id, 5, conns)
	ctx, cancel := testContext()
	defer cancel()

	val, err := p.Propose(ctx, sid1, valX)
	c.Assert(err, gc.IsNil)
	c.Assert(val, gc.DeepEquals, valBar)
}

func (*propSuite) TestQuorumFailureInPhaseOne(c *gc.C) {
	cluster := newTestCluster(c, 5)
	conns := make([]px.AcceptorConn, len(cluster.Conns))
	for i, conn := range cluster.Conns {
		if i < 2 {
			conns[i] = conn
		} else {
			conns[i] = net.Unreachable(conn)
		}
	}
	p := newTestProposer(c, r1id, 0, conns)
	ctx, cancel := testContext()
	defer cancel()

	val, err := p.Propose(ctx, sid1, valFoo)
	c.Assert(val, gc.IsNil)
	c.Assert(IsRecoverable(err), gc.Equals, true)

	var qe *QuorumError
	c.Assert(errors.As(err, &qe), gc.Equals, true)
	c.Assert(qe.Phase, gc.Equals, PhaseOne)
	c.Assert(qe.Quorum, gc.Equals, uint(3))
	// The round may give up before hearing from both live acceptors
	c.Assert(qe.Granted <= 2, gc.Equals, true)
	c.Assert(qe.Responses, gc.Equals, qe.Granted)

	// No acceptor may have voted
	for _, a := range cluster.Acceptors {
		slot, _ := a.SlotState(sid1)
		c.Assert(slot.Voted(), gc.Equals, false)
	}
	_, ok := cluster.Observer().DecidedValue(sid1)
	c.Assert(ok, gc.Equals, false)
}

func (*propSuite) TestQuorumFailureInPhaseTwo(c *gc.C) {
	cluster := newTestCluster(c, 3)
	conns := []px.AcceptorConn{
		cluster.Conns[0],
		acceptFailConn{cluster.Conns[1]},
		acceptFailConn{cluster.Conns[2]},
	}
	p := newTestProposer(c, r1id, 0, conns)
	ctx, cancel := testContext()
	defer cancel()

	_, err := p.Propose(ctx, sid1, valFoo)
	phase, ok := FailedPhase(err)
	c.Assert(ok, gc.Equals, true)
	c.Assert(phase, gc.Equals, PhaseTwo)
	c.Assert(IsRecoverable(err), gc.Equals, true)

	_, ok = cluster.Observer().DecidedValue(sid1)
	c.Assert(ok, gc.Equals, false)
}

func (*propSuite) TestRejectionRaisesBallot(c *gc.C) {
	cluster := newTestCluster(c, 3)
	high := px.Ballot{Rnd: 10, ID: r4id}
	for _, a := range cluster.Acceptors {
		a.Prepare(px.Prepare{ID: r4id, Slot: sid1, Bal: high})
	}

	p := newTestProposer(c, r1id, 0, cluster.Conns)
	ctx, cancel := testContext()
	defer cancel()

	_, err := p.Propose(ctx, sid1, valFoo)
	var qe *QuorumError
	c.Assert(errors.As(err, &qe), gc.Equals, true)
	c.Assert(qe.Phase, gc.Equals, PhaseOne)
	c.Assert(qe.Granted, gc.Equals, uint(0))

	// The next round is started above the rejecting promise
	val, err := p.Propose(ctx, sid1, valFoo)
	c.Assert(err, gc.IsNil)
	c.Assert(val, gc.DeepEquals, valFoo)
	c.Assert(p.Ballot().Compare(high) > 0, gc.Equals, true)
}

func (*propSuite) TestSlowAcceptorDoesNotStallRound(c *gc.C) {
	cluster := newTestCluster(c, 3)
	conns := []px.AcceptorConn{
		cluster.Conns[0],
		cluster.Conns[1],
		slowConn{cluster.Conns[2], time.Minute},
	}
	p := newTestProposer(c, r1id, 0, conns)
	ctx, cancel := testContext()
	defer cancel()

	start := time.Now()
	val, err := p.Propose(ctx, sid1, valFoo)
	c.Assert(err, gc.IsNil)
	c.Assert(val, gc.DeepEquals, valFoo)
	c.Assert(time.Since(start) < time.Second, gc.Equals, true)
}

func (*propSuite) TestCancelledContext(c *gc.C) {
	cluster := newTestCluster(c, 3)
	p := newTestProposer(c, r1id, 0, cluster.Conns)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Propose(ctx, sid1, valFoo)
	c.Assert(errors.Is(err, context.Canceled), gc.Equals, true)
	c.Assert(IsRecoverable(err), gc.Equals, false)

	_, err = p.ProposeWithRetry(ctx, sid1, valFoo)
	c.Assert(errors.Is(err, context.Canceled), gc.Equals, true)
}

// -----------------------------------------------------------------------
// Tests: Retries and competing proposers

func (*propSuite) TestRetryGivesUpAfterMaxAttempts(c *gc.C) {
	cluster := newTestCluster(c, 3)
	conns := []px.AcceptorConn{
		cluster.Conns[0],
		net.Unreachable(cluster.Conns[1]),
		net.Unreachable(cluster.Conns[2]),
	}
	p := newTestProposer(c, r1id, 0, conns)
	p.maxAttempts = 3
	ctx, cancel := testContext()
	defer cancel()

	_, err := p.ProposeWithRetry(ctx, sid1, valFoo)
	c.Assert(IsRecoverable(err), gc.Equals, true)
	c.Assert(p.Ballot().Rnd, gc.Equals, uint64(3))
}

func (*propSuite) TestRetrySucceedsWhenAcceptorsReturn(c *gc.C) {
	cluster := newTestCluster(c, 3)
	switches := make([]*net.Switch, len(cluster.Conns))
	conns := make([]px.AcceptorConn, len(cluster.Conns))
	for i, conn := range cluster.Conns {
		switches[i] = net.NewSwitch(conn)
		conns[i] = switches[i]
	}
	switches[1].Down()
	switches[2].Down()

	p := newTestProposer(c, r1id, 0, conns)
	ctx, cancel := testContext()
	defer cancel()

	_, err := p.Propose(ctx, sid1, valFoo)
	c.Assert(IsRecoverable(err), gc.Equals, true)

	switches[2].Up()
	val, err := p.ProposeWithRetry(ctx, sid1, valFoo)
	c.Assert(err, gc.IsNil)
	c.Assert(val, gc.DeepEquals, valFoo)
}

func (*propSuite) TestConcurrentProposersAgree(c *gc.C) {
	const (
		nProposers = 4
		nSlots     = 10
	)
	cluster := newTestCluster(c, 5)
	ctx, cancel := testContext()
	defer cancel()

	proposers := make([]*Proposer, nProposers)
	for i := range proposers {
		id := grp.NewIDFromInt(i + 1)
		proposers[i] = newTestProposer(c, id, uint64(i+1), cluster.Conns)
	}

	results := make([][]px.Value, nSlots)
	for s := range results {
		results[s] = make([]px.Value, nProposers)
	}
	var wg sync.WaitGroup
	for i, p := range proposers {
		wg.Add(1)
		go func(i int, p *Proposer) {
			defer wg.Done()
			for s := 0; s < nSlots; s++ {
				val, err := p.ProposeWithRetry(ctx, px.SlotID(s), px.Value(fmt.Sprintf("p%d-s%d", i, s)))
				if err == nil {
					results[s][i] = val
				}
			}
		}(i, p)
	}
	wg.Wait()

	obs := cluster.Observer()
	for s, vals := range results {
		decided, ok := obs.DecidedValue(px.SlotID(s))
		c.Assert(ok, gc.Equals, true, gc.Commentf("slot %d", s))
		for i, val := range vals {
			c.Assert(val, gc.DeepEquals, decided, gc.Commentf("slot %d proposer %d", s, i))
		}
	}
}

func (*propSuite) TestConcurrentProposersOverLossyLinks(c *gc.C) {
	const (
		nProposers = 3
		nSlots     = 5
	)
	cluster := newTestCluster(c, 5)
	ctx, cancel := testContext()
	defer cancel()

	proposers := make([]*Proposer, nProposers)
	for i := range proposers {
		conns := make([]px.AcceptorConn, len(cluster.Conns))
		for j, conn := range cluster.Conns {
			conns[j] = net.NewLossy(conn, net.LossyOpts{
				DropRequest: 0.1,
				DropReply:   0.1,
				Delay:       time.Millisecond,
				Seed:        int64(i*len(cluster.Conns) + j + 1),
			})
		}
		proposers[i] = newTestProposer(c, grp.NewIDFromInt(i+1), 0, conns)
	}

	var (
		mu        sync.Mutex
		chosen    = make(map[px.SlotID]px.Value)
		conflicts []string
		wg        sync.WaitGroup
	)
	for i, p := range proposers {
		wg.Add(1)
		go func(i int, p *Proposer) {
			defer wg.Done()
			for s := 0; s < nSlots; s++ {
				slot := px.SlotID(s)
				val, err := p.ProposeWithRetry(ctx, slot, px.Value(fmt.Sprintf("p%d", i)))
				if err != nil {
					continue
				}
				mu.Lock()
				if prev, found := chosen[slot]; found {
					if !prev.Equal(val) {
						conflicts = append(conflicts, fmt.Sprintf("slot %d: %q and %q", s, prev, val))
					}
				} else {
					chosen[slot] = val
				}
				mu.Unlock()
			}
		}(i, p)
	}
	wg.Wait()
	c.Assert(conflicts, gc.HasLen, 0)

	obs := cluster.Observer()
	for slot, val := range chosen {
		if decided, ok := obs.DecidedValue(slot); ok {
			c.Assert(decided, gc.DeepEquals, val, gc.Commentf("slot %d", slot))
		}
	}
}
