package config

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/relab/slotpaxos/grp"
)

// The Config holds a map of config values by their keys/names. They
// are all stored as strings and parsed on read time only. The typed
// getters are:
//
// `string`: (GetString) Returns the raw value. This can never fail.
//
// `int`: (GetInt) strconv.Atoi.
//
// `duration`: (GetDuration) time.ParseDuration, so durations are set
// like "500ms" or "2s".
//
// `bool`: (GetBool) strconv.ParseBool, accepting true/t/1 or false/f/0.
//
// `idlist`: (GetIDList) A []grp.ID parsed from a comma separated list
// of integers, like "0, 1, 2".
//
// When a value COULD NOT BE PARSED at runtime, Config emits a warning
// (with glog) and returns the given DEFAULT VALUE. A Config may be read
// and written from several goroutines.
type Config struct {
	mu     sync.RWMutex
	values map[string]string
}

// Returns a new empty Config.
func NewConfig() *Config {
	return &Config{
		values: make(map[string]string),
	}
}

func newConfigFromValues(values map[string]string) *Config {
	return &Config{
		values: values,
	}
}

// Sets a config to a value. All values can only be set as strings.
func (c *Config) Set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
}

func (c *Config) lookup(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, found := c.values[key]
	return strings.TrimSpace(v), found
}

func warnDefault(key, value, kind string, defaultVal interface{}) {
	glog.Warningf("Could not parse config %q: %q as %s. Using default value: %v.",
		key, value, kind, defaultVal)
}

// Gets a value as a string. This one will never emit an warning
// because all values per definition is available as strings.
func (c *Config) GetString(key, defaultVal string) string {
	if v, found := c.lookup(key); found {
		return v
	}
	return defaultVal
}

// Returns the config as an int, or defaultVal if it is unset or not
// an integer.
func (c *Config) GetInt(key string, defaultVal int) int {
	v, found := c.lookup(key)
	if !found {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		warnDefault(key, v, "int", defaultVal)
		return defaultVal
	}
	return i
}

// Returns the config as a time.Duration, or defaultVal if it is unset
// or cannot be parsed.
func (c *Config) GetDuration(key string, defaultVal time.Duration) time.Duration {
	v, found := c.lookup(key)
	if !found {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		warnDefault(key, v, "duration", defaultVal)
		return defaultVal
	}
	return d
}

// Returns the config as a bool, or defaultVal if it is unset or cannot
// be parsed.
func (c *Config) GetBool(key string, defaultVal bool) bool {
	v, found := c.lookup(key)
	if !found {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		warnDefault(key, v, "bool", defaultVal)
		return defaultVal
	}
	return b
}

// Parses an id list: (id, id, ...) into a []grp.ID.
//
// This one takes no default values. An unset or empty value gives an
// empty list, and the function returns a descriptive error if an entry
// is not an integer in the valid id range.
func (c *Config) GetIDList(key string) ([]grp.ID, error) {
	var ids []grp.ID

	list := c.GetString(key, "")
	if list == "" {
		return ids, nil
	}

	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("config %q: id %q is not an integer, want the format id, id, ...", key, part)
		}
		if id < int(grp.MinID) || id > int(grp.MaxID) {
			return nil, fmt.Errorf("config %q: id %d: %w", key, id, grp.ErrNodeIDOutOfBounds)
		}
		ids = append(ids, grp.NewIDFromInt(id))
	}

	return ids, nil
}

// Clones the config with all the values.
func (c *Config) CloneToKeyValueMap() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	clonedMap := make(map[string]string, len(c.values))
	for k, v := range c.values {
		clonedMap[k] = v
	}

	return clonedMap
}
