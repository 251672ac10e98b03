// The paxosdemo command runs slot-indexed Paxos with in-process acceptors
// and concurrently running proposers, and reports what was decided in
// every slot. The run command reproduces a set of proposers competing for
// the same slots; adopt and partition replay two fixed scenarios that show
// value adoption and a failed quorum.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/codegangsta/cli"
	"github.com/golang/glog"
	"github.com/pkg/profile"

	"github.com/relab/slotpaxos/config"
	"github.com/relab/slotpaxos/elog"
)

var globalFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "config-file",
		Usage: "INI file with [paxos] and [demo] sections",
	},
	cli.IntFlag{
		Name:  "v",
		Usage: "glog verbosity level",
	},
	cli.BoolFlag{
		Name:  "logtostderr",
		Usage: "log to standard error instead of files",
	},
	cli.BoolFlag{
		Name:  "log-events",
		Usage: "write protocol events to an event log file",
	},
	cli.BoolFlag{
		Name:  "cpuprofile",
		Usage: "write cpu profile to disk",
	},
	cli.BoolFlag{
		Name:  "memprofile",
		Usage: "write memory profile to disk",
	},
}

var prof interface{ Stop() }

func main() {
	// -v belongs to glog
	cli.VersionFlag = cli.BoolFlag{Name: "version", Usage: "print the version"}

	app := cli.NewApp()
	app.Name = "paxosdemo"
	app.Usage = "Run slot-indexed Paxos with in-process acceptors."
	app.Version = "0.1.0"
	app.Commands = []cli.Command{
		runCmd,
		adoptCmd,
		partitionCmd,
	}
	app.Flags = globalFlags
	app.Before = setup
	app.After = teardown

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup hands the logging flags over to glog and starts profiling.
func setup(c *cli.Context) error {
	if err := flag.CommandLine.Parse(nil); err != nil {
		return err
	}
	if err := flag.Set("v", strconv.Itoa(c.GlobalInt("v"))); err != nil {
		return err
	}
	if err := flag.Set("logtostderr", strconv.FormatBool(c.GlobalBool("logtostderr"))); err != nil {
		return err
	}

	if c.GlobalBool("log-events") {
		elog.Enable()
	}

	switch {
	case c.GlobalBool("cpuprofile"):
		prof = profile.Start(profile.CPUProfile, profile.ProfilePath("profile"), profile.NoShutdownHook)
	case c.GlobalBool("memprofile"):
		prof = profile.Start(profile.MemProfile, profile.ProfilePath("profile"), profile.NoShutdownHook)
	}

	return nil
}

func teardown(c *cli.Context) error {
	if prof != nil {
		prof.Stop()
	}
	elog.Flush()
	glog.Flush()
	return nil
}

// loadConfig reads the config file given on the command line, if any, and
// applies the command's flags on top of it.
func loadConfig(c *cli.Context, keys ...string) (*config.Config, error) {
	cfg := config.NewConfig()
	if path := c.GlobalString("config-file"); path != "" {
		var err error
		if cfg, err = config.LoadFile(path); err != nil {
			return nil, err
		}
		glog.V(1).Infoln("loaded config from", path)
	}

	for _, key := range keys {
		if c.IsSet(key) {
			cfg.Set(key, c.String(key))
		}
	}

	return cfg, nil
}
