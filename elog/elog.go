package elog

import (
	"bufio"
	"encoding/gob"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	e "github.com/relab/slotpaxos/elog/event"
)

const (
	flushInterval = 30 * time.Second
	bufferSize    = 1024 * 256
)

var logger eventLogger

// A Listener receives every logged event. Listeners run synchronously on
// the goroutine that logs the event, outside any lock held by this
// package, so they may call back into it. Listeners may run concurrently
// and must not block.
type Listener func(e.Event)

// flagBool is a boolean command line flag that is safe to read without
// holding the logger lock.
type flagBool struct {
	atomic.Bool
}

func (b *flagBool) Set(s string) error {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	b.Store(v)
	return nil
}

func (b *flagBool) String() string   { return strconv.FormatBool(b.Load()) }
func (b *flagBool) IsBoolFlag() bool { return true }

type eventLogger struct {
	enabled    flagBool
	nlisteners atomic.Int32
	mu         sync.Mutex
	*bufio.Writer
	*gob.Encoder
	*os.File
	listeners    map[int]Listener
	nextListener int
	stopRegFlush chan bool
}

func init() {
	flag.Var(&logger.enabled, "log_events", "enable event logging")
	logger.listeners = make(map[int]Listener)
	logger.stopRegFlush = make(chan bool)
	go logger.flushRegularly()
}

func (el *eventLogger) init() {
	var err error
	name, symlink := logName(*logDir, time.Now())
	el.File, err = os.Create(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "elog: exiting due to error: %s\n", err)
		os.Exit(2)
	}
	os.Remove(symlink)                       // ignore err
	os.Symlink(filepath.Base(name), symlink) // ignore err
	el.Writer = bufio.NewWriterSize(el.File, bufferSize)
	el.Encoder = gob.NewEncoder(el.Writer)
}

// IsEnabled reports whether the EventLogger writes events to file.
func IsEnabled() bool {
	return logger.enabled.Load()
}

// Enable enables writing events to file.
func Enable() {
	logger.enabled.Store(true)
}

// Disable disables writing events to file.
func Disable() {
	logger.enabled.Store(false)
}

// Subscribe registers l to receive all subsequently logged events,
// independent of whether file logging is enabled. The returned function
// removes the listener.
func Subscribe(l Listener) (cancel func()) {
	logger.mu.Lock()
	defer logger.mu.Unlock()
	id := logger.nextListener
	logger.nextListener++
	logger.listeners[id] = l
	logger.nlisteners.Add(1)
	return func() {
		logger.mu.Lock()
		defer logger.mu.Unlock()
		if _, found := logger.listeners[id]; found {
			delete(logger.listeners, id)
			logger.nlisteners.Add(-1)
		}
	}
}

// Log logs event ev to file if the EventLogger is enabled, and hands it to
// all listeners. It returns without locking when file logging is disabled
// and nobody listens.
func Log(ev e.Event) {
	enabled := logger.enabled.Load()
	if !enabled && logger.nlisteners.Load() == 0 {
		return
	}

	logger.mu.Lock()
	if enabled {
		if logger.Encoder == nil {
			logger.init()
		}
		logger.Encoder.Encode(ev)
	}
	var listeners []Listener
	if len(logger.listeners) > 0 {
		listeners = make([]Listener, 0, len(logger.listeners))
		for _, l := range logger.listeners {
			listeners = append(listeners, l)
		}
	}
	logger.mu.Unlock()

	for _, l := range listeners {
		l(ev)
	}
}

// FileName returns the path of the current event log file, or "" if no
// event has been written to file yet.
func FileName() string {
	logger.mu.Lock()
	defer logger.mu.Unlock()
	if logger.File == nil {
		return ""
	}
	return logger.File.Name()
}

// Flush flushes all pending events to file.
func Flush() {
	logger.mu.Lock()
	defer logger.mu.Unlock()
	logger.flush()
}

func (el *eventLogger) flushRegularly() {
	for {
		select {
		case <-time.After(flushInterval):
			el.mu.Lock()
			el.flush()
			el.mu.Unlock()
		case <-el.stopRegFlush:
			return
		}
	}
}

func (el *eventLogger) flush() {
	if el.Encoder != nil {
		el.Writer.Flush()
		el.File.Sync()
	}
}
