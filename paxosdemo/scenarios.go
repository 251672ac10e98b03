package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/codegangsta/cli"

	"github.com/relab/slotpaxos/config"
	"github.com/relab/slotpaxos/grp"
	px "github.com/relab/slotpaxos/paxos"
)

var adoptCmd = cli.Command{
	Name:  "adopt",
	Usage: "a second proposer adopts the value already chosen by the first",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}
		return adopt(cfg)
	},
}

var partitionCmd = cli.Command{
	Name:  "partition",
	Usage: "a proposer that reaches only a minority of acceptors fails in phase one",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}
		return partition(cfg)
	},
}

const scenarioSlot = px.SlotID(1)

// scenarioConfig pins the settings the scenarios depend on.
func scenarioConfig(cfg *config.Config) {
	cfg.Set("acceptors", "5")
	cfg.Set("quorum", "0")
	cfg.Set("dropRate", "0")
	cfg.Set("maxDelay", "0s")
	cfg.Set("down", "")
}

func adopt(cfg *config.Config) error {
	scenarioConfig(cfg)
	dc, err := newDemoCluster(cfg)
	if err != nil {
		return err
	}

	p1, err := dc.newProposer(1, 0, cfg)
	if err != nil {
		return err
	}
	p2, err := dc.newProposer(2, 0, cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	proposeAndReport(ctx, p1, scenarioSlot, px.Value("X"), false)
	proposeAndReport(ctx, p2, scenarioSlot, px.Value("Y"), false)

	fmt.Println()
	printSlots(os.Stdout, dc.Observer(), dc.Group.Quorum(), []px.SlotID{scenarioSlot})

	if val, ok := dc.Observer().DecidedValue(scenarioSlot); !ok || !val.Equal(px.Value("X")) {
		return errors.New("adopt: X was not decided")
	}
	return nil
}

func partition(cfg *config.Config) error {
	scenarioConfig(cfg)
	dc, err := newDemoCluster(cfg)
	if err != nil {
		return err
	}
	for _, id := range []int{2, 3, 4} {
		if err := dc.setDown(grp.NewIDFromInt(id)); err != nil {
			return err
		}
	}

	p, err := dc.newProposer(1, 0, cfg)
	if err != nil {
		return err
	}

	proposeAndReport(context.Background(), p, scenarioSlot, px.Value("X"), false)

	fmt.Println()
	printSlots(os.Stdout, dc.Observer(), dc.Group.Quorum(), []px.SlotID{scenarioSlot})

	if _, ok := dc.Observer().DecidedValue(scenarioSlot); ok {
		return errors.New("partition: a value was decided without a quorum")
	}
	return nil
}
