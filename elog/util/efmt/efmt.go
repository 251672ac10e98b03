package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/relab/slotpaxos/elog/event"
)

func main() {
	var file = flag.String("file", "", "elog file to parse")
	var slot = flag.Int("slot", -1, "only show events for this slot")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if *file == "" {
		flag.Usage()
		os.Exit(1)
	}

	events, err := event.Parse(*file)
	if err != nil {
		fmt.Println("Error parsing events:", err)
		return
	}

	if *slot >= 0 {
		events, _ = event.ExtractSlot(events, uint64(*slot))
	}

	if err := event.WriteText(os.Stdout, events); err != nil {
		fmt.Fprintln(os.Stderr, "Error writing events:", err)
		os.Exit(1)
	}
}
