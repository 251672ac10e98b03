package elog

import (
	"flag"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"
)

var logDir = flag.String("log_events_dir", "", "directory for event log files (default: working directory)")

var (
	pid      = os.Getpid()
	program  = filepath.Base(os.Args[0])
	host     = "unknownhost"
	userName = "unknownuser"
)

func init() {
	if h, err := os.Hostname(); err == nil {
		host = shortHostname(h)
	}
	if current, err := user.Current(); err == nil {
		userName = current.Username
	}
}

func shortHostname(hostname string) string {
	if i := strings.Index(hostname, "."); i >= 0 {
		return hostname[:i]
	}
	return hostname
}

// logName returns the path of a new event log and of the symlink that
// points to the most recent one, both in dir.
func logName(dir string, t time.Time) (name, link string) {
	name = fmt.Sprintf("%s.%s.%s.%s.pid%d.elog",
		program, host, userName, t.Format("20060102-150405"), pid)
	return filepath.Join(dir, name), filepath.Join(dir, program+".elog")
}
