package rewritecache

import (
	"context"
	"sync"
	"time"

	"github.com/couchcryptid/parking-tariff-etl/internal/observability"
	"github.com/jonboulle/clockwork"
)

// Memory is an in-process LRU rewrite cache with optional entry expiry.
// It implements domain.RewriteCache.
type Memory struct {
	maxEntries int
	ttl        time.Duration
	clock      clockwork.Clock
	metrics    *observability.Metrics

	mu      sync.Mutex
	entries map[string]*entry
	head    *entry // most recently used
	tail    *entry // least recently used
}

type entry struct {
	key     string
	value   string
	expires time.Time
	prev    *entry
	next    *entry
}

// NewMemory creates an LRU cache holding at most maxEntries rewrites.
// A zero ttl keeps entries until they are evicted.
func NewMemory(maxEntries int, ttl time.Duration, metrics *observability.Metrics) *Memory {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &Memory{
		maxEntries: maxEntries,
		ttl:        ttl,
		clock:      clockwork.NewRealClock(),
		metrics:    metrics,
		entries:    make(map[string]*entry),
	}
}

func (c *Memory) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := c.get(key)
	observe(c.metrics, "memory", ok, nil)
	return v, ok, nil
}

func (c *Memory) Put(_ context.Context, key, value string) error {
	c.put(key, value)
	return nil
}

// Len returns the number of cached entries, expired ones included.
func (c *Memory) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Memory) get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if !e.expires.IsZero() && !c.clock.Now().Before(e.expires) {
		delete(c.entries, key)
		c.remove(e)
		return "", false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *Memory) put(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expires time.Time
	if c.ttl > 0 {
		expires = c.clock.Now().Add(c.ttl)
	}

	if e, ok := c.entries[key]; ok {
		e.value = value
		e.expires = expires
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value, expires: expires}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *Memory) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *Memory) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *Memory) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *Memory) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}

// observe records a lookup result; metrics may be nil.
func observe(m *observability.Metrics, backend string, hit bool, err error) {
	if m == nil {
		return
	}
	result := "miss"
	switch {
	case err != nil:
		result = "error"
	case hit:
		result = "hit"
	}
	m.RewriteCache.WithLabelValues(backend, result).Inc()
}
