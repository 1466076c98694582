package types

import (
	"sort"
	"sync"
)

// Config is the ordered mapping from feature name to feature options.
// It is safe for concurrent use; features of the same stage may read it while
// a sibling registers services.
type Config struct {
	mu     sync.RWMutex
	keys   []string
	values map[string]any
}

// NewConfig returns an empty configuration
func NewConfig() *Config {
	return &Config{values: make(map[string]any)}
}

// ConfigFromMap builds a configuration from a plain map. Go maps carry no
// order, so keys are ordered lexicographically.
func ConfigFromMap(m map[string]any) *Config {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	c := NewConfig()
	for _, k := range keys {
		c.Set(k, m[k])
	}
	return c
}

// ConfigFromOrdered builds a configuration from a map and an explicit key
// order. Keys missing from order are appended lexicographically.
func ConfigFromOrdered(m map[string]any, order []string) *Config {
	c := NewConfig()
	for _, k := range order {
		if v, ok := m[k]; ok {
			c.Set(k, v)
		}
	}

	var rest []string
	for k := range m {
		if !c.Has(k) {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		c.Set(k, m[k])
	}
	return c
}

// Set stores options for key, keeping the key's position if it already exists
func (c *Config) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.values == nil {
		c.values = make(map[string]any)
	}
	if _, exists := c.values[key]; !exists {
		c.keys = append(c.keys, key)
	}
	c.values[key] = value
}

// Get returns the options stored for key
func (c *Config) Get(key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	v, ok := c.values[key]
	return v, ok
}

// Has reports whether key is present
func (c *Config) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Delete removes key; deleting a missing key is a no-op
func (c *Config) Delete(key string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.values[key]; !exists {
		return
	}
	delete(c.values, key)
	for i, k := range c.keys {
		if k == key {
			c.keys = append(c.keys[:i:i], c.keys[i+1:]...)
			break
		}
	}
}

// Keys returns a copy of the keys in order
func (c *Config) Keys() []string {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	return append([]string(nil), c.keys...)
}

// Len returns the number of keys
func (c *Config) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.keys)
}

// IsEmpty reports whether the configuration has no keys
func (c *Config) IsEmpty() bool {
	return c.Len() == 0
}

// Clone returns a shallow copy; option values are shared
func (c *Config) Clone() *Config {
	out := NewConfig()
	if c == nil {
		return out
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, k := range c.keys {
		out.keys = append(out.keys, k)
		out.values[k] = c.values[k]
	}
	return out
}

// ToMap returns the configuration as a plain map
func (c *Config) ToMap() map[string]any {
	out := make(map[string]any, c.Len())
	if c == nil {
		return out
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	for k, v := range c.values {
		out[k] = v
	}
	return out
}
