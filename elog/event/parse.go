package event

import (
	"bytes"
	"encoding/gob"
	"io"
	"os"
)

func Parse(filename string) ([]Event, error) {
	file, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	return Decode(bytes.NewBuffer(file))
}

// Decode reads gob encoded events from r until EOF.
func Decode(r io.Reader) ([]Event, error) {
	dec := gob.NewDecoder(r)
	var events []Event

	for {
		var event Event
		err := dec.Decode(&event)
		if err != nil {
			if err == io.EOF {
				break
			}
			return events, err
		}
		events = append(events, event)
	}

	return events, nil
}

// ExtractSlot splits events into those belonging to slot and the rest.
// General events (Start, Exit) always go to rest.
func ExtractSlot(events []Event, slot uint64) (inSlot, rest []Event) {
	inSlot = make([]Event, 0)
	rest = make([]Event, 0)
	for _, event := range events {
		if event.Type >= RoundStart && event.Slot == slot {
			inSlot = append(inSlot, event)
		} else {
			rest = append(rest, event)
		}
	}

	return
}
