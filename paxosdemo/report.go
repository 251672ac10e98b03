package main

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/relab/slotpaxos/grp"
	px "github.com/relab/slotpaxos/paxos"
	"github.com/relab/slotpaxos/sdpaxos"
)

// printSlots writes the acceptor state of each slot and the value decided
// for it. The naive per-value tally is shown next to the decision.
func printSlots(w io.Writer, obs *sdpaxos.Observer, quorum uint, slots []px.SlotID) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "slot\tacceptor\tpromised\tvoted\tvalue")
	for _, slot := range slots {
		snap := obs.Snapshot(slot)
		ids := make([]grp.ID, 0, len(snap))
		for id := range snap {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		for _, id := range ids {
			s := snap[id]
			fmt.Fprintf(tw, "%d\t%v\t%v\t%v\t%q\n", slot, id, s.Rnd, s.VRnd, s.VVal)
		}

		if d, ok := obs.Decided(slot); ok {
			fmt.Fprintf(tw, "%d\tdecided\t\t%v\t%q (%d votes)\n", slot, d.Bal, d.Val, d.Support)
		} else {
			fmt.Fprintf(tw, "%d\tundecided\t\t\t\n", slot)
		}
		if val, n, q := obs.TallyByValue(slot).Leader(quorum); n > 0 {
			fmt.Fprintf(tw, "%d\tvalue tally\t\t\t%q (%d votes, quorum %t)\n", slot, val, n, q)
		}
	}
}
