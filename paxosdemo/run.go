package main

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/codegangsta/cli"
	"github.com/golang/glog"

	"github.com/relab/slotpaxos/config"
	"github.com/relab/slotpaxos/grp"
	px "github.com/relab/slotpaxos/paxos"
	"github.com/relab/slotpaxos/sdpaxos"
)

var runCmd = cli.Command{
	Name:  "run",
	Usage: "let several proposers compete for the same slots",
	Flags: []cli.Flag{
		cli.IntFlag{Name: "acceptors", Value: config.DefAcceptors, Usage: "number of acceptors"},
		cli.IntFlag{Name: "proposers", Value: config.DefProposers, Usage: "number of proposers"},
		cli.IntFlag{Name: "slots", Value: config.DefSlots, Usage: "number of slots per proposer"},
		cli.IntFlag{Name: "quorum", Usage: "quorum size (0 is a strict majority)"},
		cli.IntFlag{Name: "dropRate", Usage: "percentage of lost requests and replies"},
		cli.DurationFlag{Name: "maxDelay", Usage: "upper bound for random message delay"},
		cli.StringFlag{Name: "down", Usage: "comma separated ids of unreachable acceptors"},
		cli.BoolFlag{Name: "retry", Usage: "retry failed rounds with higher ballots"},
	},
	Action: run,
}

var runKeys = []string{"acceptors", "proposers", "slots", "quorum", "dropRate", "maxDelay", "down"}

func run(c *cli.Context) error {
	cfg, err := loadConfig(c, runKeys...)
	if err != nil {
		return err
	}
	nProposers, err := proposerCount(cfg)
	if err != nil {
		return err
	}
	dc, err := newDemoCluster(cfg)
	if err != nil {
		return err
	}

	nSlots := cfg.GetInt("slots", config.DefSlots)

	proposers := make([]*sdpaxos.Proposer, nProposers)
	for i := range proposers {
		// Proposer i starts out with round i
		if proposers[i], err = dc.newProposer(i+1, uint64(i+1), cfg); err != nil {
			return err
		}
	}

	ctx := context.Background()
	var wg sync.WaitGroup
	for _, p := range proposers {
		wg.Add(1)
		go func(p *sdpaxos.Proposer) {
			defer wg.Done()
			for s := 0; s < nSlots; s++ {
				proposeAndReport(ctx, p, px.SlotID(s), message(p, s), c.Bool("retry"))
			}
		}(p)
	}
	wg.Wait()

	slots := make([]px.SlotID, nSlots)
	for s := range slots {
		slots[s] = px.SlotID(s)
	}
	fmt.Println()
	printSlots(os.Stdout, dc.Observer(), dc.Group.Quorum(), slots)

	return nil
}

// proposerCount returns the configured number of proposers. Proposers get
// the ids 1 through n, so n is bounded by the largest node id.
func proposerCount(cfg *config.Config) (int, error) {
	n := cfg.GetInt("proposers", config.DefProposers)
	if n < 1 || n > int(grp.MaxID) {
		return 0, fmt.Errorf("%d proposers: %w", n, grp.ErrNodeIDOutOfBounds)
	}
	return n, nil
}

// message returns the candidate proposer p uses for slot s. The first
// proposer has its own set of messages, the others share one.
func message(p *sdpaxos.Proposer, s int) px.Value {
	set := 2
	if p.ID() == 1 {
		set = 1
	}
	return px.Value(fmt.Sprintf("Message %c%d", 'A'+rune(s%26), set))
}

func proposeAndReport(ctx context.Context, p *sdpaxos.Proposer, slot px.SlotID, candidate px.Value, retry bool) {
	var (
		val px.Value
		err error
	)
	if retry {
		val, err = p.ProposeWithRetry(ctx, slot, candidate)
	} else {
		val, err = p.Propose(ctx, slot, candidate)
	}

	switch {
	case err != nil:
		if phase, ok := sdpaxos.FailedPhase(err); ok {
			fmt.Printf("Proposer %v: failed to reach quorum in %v for slot %d.\n", p.ID(), phase, slot)
		} else {
			fmt.Printf("Proposer %v: slot %d: %v\n", p.ID(), slot, err)
		}
		glog.V(1).Infoln(err)
	case !val.Equal(candidate):
		fmt.Printf("Proposer %v: consensus reached for slot %d with adopted value %q instead of %q.\n",
			p.ID(), slot, val, candidate)
	default:
		fmt.Printf("Proposer %v: consensus reached for slot %d with value %q.\n", p.ID(), slot, val)
	}
}
