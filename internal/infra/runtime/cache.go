package runtime

import (
	"fmt"
	"sync"

	"reminder_relay/internal/domain/channel"
)

// DefaultEngine is the cache entry shared by every component that needs the runtime.
const DefaultEngine = "default_engine"

// Cache holds runtime handles by name for the life of the process.
type Cache struct {
	mu      sync.Mutex
	entries map[string]channel.Invoker
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]channel.Invoker)}
}

func (c *Cache) Get(name string) (channel.Invoker, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	inv, ok := c.entries[name]
	return inv, ok
}

func (c *Cache) Put(name string, inv channel.Invoker) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[name] = inv
}

// GetOrCreate returns the cached handle, or builds one with create and caches it.
// created reports whether create was called.
func (c *Cache) GetOrCreate(name string, create func() (channel.Invoker, error)) (inv channel.Invoker, created bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if inv, ok := c.entries[name]; ok {
		return inv, false, nil
	}
	inv, err = create()
	if err != nil {
		return nil, false, fmt.Errorf("create runtime %q: %w", name, err)
	}
	c.entries[name] = inv
	return inv, true, nil
}
