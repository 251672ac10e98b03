package sdpaxos

import (
	px "github.com/relab/slotpaxos/paxos"

	gc "gopkg.in/check.v1"
)

type obsSuite struct {
	cluster *Cluster
	obs     *Observer
}

var _ = gc.Suite(&obsSuite{})

func (obss *obsSuite) SetUpTest(c *gc.C) {
	obss.cluster = newTestCluster(c, 5)
	obss.obs = obss.cluster.Observer()
}

// vote makes acceptor i accept val in bal for slot sid1.
func (obss *obsSuite) vote(c *gc.C, i int, bal px.Ballot, val px.Value) {
	accepted := obss.cluster.Acceptors[i].Accept(px.Accept{ID: bal.ID, Slot: sid1, Bal: bal, Val: val})
	c.Assert(accepted.OK, gc.Equals, true)
}

func (obss *obsSuite) TestNothingDecidedWithoutVotes(c *gc.C) {
	_, ok := obss.obs.DecidedValue(sid1)
	c.Assert(ok, gc.Equals, false)

	obss.cluster.Acceptors[0].Prepare(px.Prepare{ID: r1id, Slot: sid1, Bal: rnd11})
	_, ok = obss.obs.DecidedValue(sid1)
	c.Assert(ok, gc.Equals, false)
}

func (obss *obsSuite) TestDecidedByQuorumInOneBallot(c *gc.C) {
	obss.vote(c, 0, rnd11, valFoo)
	obss.vote(c, 1, rnd11, valFoo)
	_, ok := obss.obs.Decided(sid1)
	c.Assert(ok, gc.Equals, false)

	obss.vote(c, 2, rnd11, valFoo)
	d, ok := obss.obs.Decided(sid1)
	c.Assert(ok, gc.Equals, true)
	c.Assert(d, gc.DeepEquals, Decision{Slot: sid1, Bal: rnd11, Val: valFoo, Support: 3})
}

func (obss *obsSuite) TestDecisionFollowsAdoptingRound(c *gc.C) {
	for i := 0; i < 3; i++ {
		obss.vote(c, i, rnd11, valFoo)
	}
	// A later round adopted foo and reached all but the first acceptors
	obss.vote(c, 3, rnd22, valFoo)
	obss.vote(c, 4, rnd22, valFoo)
	obss.vote(c, 2, rnd22, valFoo)

	d, ok := obss.obs.Decided(sid1)
	c.Assert(ok, gc.Equals, true)
	c.Assert(d, gc.DeepEquals, Decision{Slot: sid1, Bal: rnd11, Val: valFoo, Support: 5})
}

func (obss *obsSuite) TestDecisionSplitAcrossBallots(c *gc.C) {
	// X was chosen in (1,1) by acceptors 0, 1 and 4. A later proposer
	// adopted X and reached acceptor 0 alone.
	obss.vote(c, 1, rnd11, valX)
	obss.vote(c, 4, rnd11, valX)
	obss.vote(c, 0, px.Ballot{Rnd: 6, ID: r2id}, valX)

	d, ok := obss.obs.Decided(sid1)
	c.Assert(ok, gc.Equals, true)
	c.Assert(d, gc.DeepEquals, Decision{Slot: sid1, Bal: rnd11, Val: valX, Support: 3})
}

func (obss *obsSuite) TestAllAcceptorsVoted(c *gc.C) {
	for i := range obss.cluster.Acceptors {
		obss.vote(c, i, rnd12, valBar)
	}
	d, ok := obss.obs.Decided(sid1)
	c.Assert(ok, gc.Equals, true)
	c.Assert(d, gc.DeepEquals, Decision{Slot: sid1, Bal: rnd12, Val: valBar, Support: 5})
}

func (obss *obsSuite) TestHigherBallotCanDecideAlone(c *gc.C) {
	obss.vote(c, 0, rnd11, valY)
	obss.vote(c, 1, rnd22, valX)
	obss.vote(c, 2, rnd22, valX)
	obss.vote(c, 3, rnd33, valX)

	d, ok := obss.obs.Decided(sid1)
	c.Assert(ok, gc.Equals, true)
	c.Assert(d, gc.DeepEquals, Decision{Slot: sid1, Bal: rnd22, Val: valX, Support: 3})
}

// Votes for the same value do not add up across a conflicting vote in a
// later ballot, while the per-value tally is fooled by them.
func (obss *obsSuite) TestBallotsAreNotMixed(c *gc.C) {
	obss.vote(c, 0, rnd11, valX)
	obss.vote(c, 1, rnd22, valX)
	obss.vote(c, 2, rnd33, valX)
	obss.vote(c, 3, rnd31, valY)

	_, ok := obss.obs.DecidedValue(sid1)
	c.Assert(ok, gc.Equals, false)

	tally := obss.obs.TallyByValue(sid1)
	c.Assert(tally, gc.DeepEquals, ValueTally{"X": 3, "Y": 1})
	val, n, quorum := tally.Leader(obss.cluster.Group.Quorum())
	c.Assert(val, gc.DeepEquals, valX)
	c.Assert(n, gc.Equals, uint(3))
	c.Assert(quorum, gc.Equals, true)
}

func (obss *obsSuite) TestTallyLeaderTieBreak(c *gc.C) {
	tally := ValueTally{"b": 2, "a": 2}
	val, n, quorum := tally.Leader(3)
	c.Assert(val, gc.DeepEquals, px.Value("a"))
	c.Assert(n, gc.Equals, uint(2))
	c.Assert(quorum, gc.Equals, false)

	_, _, quorum = ValueTally{}.Leader(1)
	c.Assert(quorum, gc.Equals, false)
}

func (obss *obsSuite) TestSnapshotSkipsUncontactedAcceptors(c *gc.C) {
	obss.vote(c, 1, rnd12, valBar)
	snap := obss.obs.Snapshot(sid1)
	c.Assert(snap, gc.HasLen, 1)
	c.Assert(snap[r1id].VVal, gc.DeepEquals, valBar)
}
