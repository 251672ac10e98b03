package main

import (
	"fmt"
	"time"

	"github.com/golang/glog"

	"github.com/relab/slotpaxos/config"
	"github.com/relab/slotpaxos/grp"
	"github.com/relab/slotpaxos/net"
	px "github.com/relab/slotpaxos/paxos"
	"github.com/relab/slotpaxos/sdpaxos"
)

// A demoCluster is a set of acceptors together with per-acceptor switches
// to take them down, and the settings for the links of each proposer.
type demoCluster struct {
	*sdpaxos.Cluster
	switches []*net.Switch
	dropRate float64
	maxDelay time.Duration
}

func newDemoCluster(cfg *config.Config) (*demoCluster, error) {
	n := cfg.GetInt("acceptors", config.DefAcceptors)
	cluster, err := sdpaxos.NewCluster(n)
	if err != nil {
		return nil, err
	}

	dc := &demoCluster{
		Cluster:  cluster,
		dropRate: float64(cfg.GetInt("dropRate", config.DefDropRate)) / 100,
		maxDelay: cfg.GetDuration("maxDelay", config.DefMaxDelay),
	}
	for _, conn := range cluster.Conns {
		dc.switches = append(dc.switches, net.NewSwitch(conn))
	}

	down, err := cfg.GetIDList("down")
	if err != nil {
		return nil, err
	}
	for _, id := range down {
		if err := dc.setDown(id); err != nil {
			return nil, err
		}
	}

	glog.V(1).Infoln("cluster:", cluster.Group)
	return dc, nil
}

func (dc *demoCluster) setDown(id grp.ID) error {
	if !dc.Group.Contains(id) {
		return fmt.Errorf("acceptor %v: %w", id, grp.ErrNodeIDOutOfBounds)
	}
	dc.switches[id].Down()
	return nil
}

// conns returns the connections a single proposer uses. Every proposer has
// its own lossy links when loss or delay is configured.
func (dc *demoCluster) conns(seed int64) []px.AcceptorConn {
	conns := make([]px.AcceptorConn, len(dc.switches))
	for i, sw := range dc.switches {
		conns[i] = sw
		if dc.dropRate > 0 || dc.maxDelay > 0 {
			conns[i] = net.NewLossy(sw, net.LossyOpts{
				DropRequest: dc.dropRate,
				DropReply:   dc.dropRate,
				Delay:       dc.maxDelay,
				Seed:        seed*int64(len(dc.switches)) + int64(i) + 1,
			})
		}
	}
	return conns
}

func (dc *demoCluster) newProposer(id int, initialRnd uint64, cfg *config.Config) (*sdpaxos.Proposer, error) {
	return sdpaxos.NewProposer(&px.Pack{
		ID:         grp.NewIDFromInt(id),
		InitialRnd: initialRnd,
		Quorum:     uint(cfg.GetInt("quorum", config.DefQuorum)),
		Acceptors:  dc.conns(int64(id)),
		Config:     cfg,
	})
}
