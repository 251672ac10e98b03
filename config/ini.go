package config

import (
	"fmt"

	ini "github.com/vaughan0/go-ini"
)

// Section names read by LoadFile when no sections are given.
const (
	SectionPaxos = "paxos"
	SectionDemo  = "demo"
)

// LoadFile reads an INI file and returns a Config holding the keys of the
// given sections. Later sections override earlier ones. With no sections,
// the paxos and demo sections are read.
func LoadFile(path string, sections ...string) (*Config, error) {
	file, err := ini.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: load %s: %w", path, err)
	}
	if len(sections) == 0 {
		sections = []string{SectionPaxos, SectionDemo}
	}

	values := make(map[string]string)
	for _, name := range sections {
		for k, v := range file.Section(name) {
			values[k] = v
		}
	}

	return newConfigFromValues(values), nil
}
