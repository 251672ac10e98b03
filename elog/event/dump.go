package event

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// WriteText writes events to w, one numbered event per line.
func WriteText(w io.Writer, events []Event) error {
	bw := bufio.NewWriter(w)
	for i, event := range events {
		if _, err := fmt.Fprintf(bw, "%2d: %v\n", i, event); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func DumpAsTextFile(filename string, events []Event) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err = WriteText(f, events); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
