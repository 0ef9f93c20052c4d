package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

type item[V any] struct {
	key     string
	value   V
	expires time.Time
}

func (it *item[V]) expired(now time.Time) bool {
	return !it.expires.IsZero() && !now.Before(it.expires)
}

// Memory is an in-process store with expiry and optional LRU eviction.
type Memory[V any] struct {
	mu     sync.Mutex
	items  map[string]*list.Element
	order  *list.List
	ttl    time.Duration
	limit  int
	sweep  time.Duration
	now    func() time.Time
	done   chan struct{}
	closed bool
}

// MemoryOption configures a Memory store.
type MemoryOption func(*memoryConfig)

type memoryConfig struct {
	ttl   time.Duration
	limit int
	sweep time.Duration
	now   func() time.Time
}

// WithTTL sets the expiry used when Put is called with a zero ttl.
func WithTTL(d time.Duration) MemoryOption {
	return func(c *memoryConfig) { c.ttl = d }
}

// WithLimit evicts the least recently used key beyond n keys.
func WithLimit(n int) MemoryOption {
	return func(c *memoryConfig) { c.limit = n }
}

// WithSweepInterval sets how often expired keys are purged. Zero disables
// the background sweep; expired keys are still dropped when read.
func WithSweepInterval(d time.Duration) MemoryOption {
	return func(c *memoryConfig) { c.sweep = d }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) MemoryOption {
	return func(c *memoryConfig) { c.now = now }
}

// NewMemory creates a Memory store.
func NewMemory[V any](opts ...MemoryOption) *Memory[V] {
	cfg := memoryConfig{ttl: time.Hour, sweep: time.Minute, now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	m := &Memory[V]{
		items: make(map[string]*list.Element),
		order: list.New(),
		ttl:   cfg.ttl,
		limit: cfg.limit,
		sweep: cfg.sweep,
		now:   cfg.now,
		done:  make(chan struct{}),
	}
	if m.sweep > 0 {
		go m.sweeper()
	}
	return m
}

func (m *Memory[V]) Get(_ context.Context, key string) (V, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	it, ok := m.lookup(key)
	if !ok {
		var zero V
		return zero, ErrMiss
	}
	return it.value, nil
}

func (m *Memory[V]) Put(_ context.Context, key string, value V, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.store(key, value, m.expiry(ttl))
	return nil
}

func (m *Memory[V]) Has(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.lookup(key)
	return ok, nil
}

func (m *Memory[V]) Forget(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if el, ok := m.items[key]; ok {
		m.remove(el)
	}
	return nil
}

func (m *Memory[V]) Flush(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.items = make(map[string]*list.Element)
	m.order.Init()
	return nil
}

// Close stops the sweeper. Further writes fail with ErrClosed.
func (m *Memory[V]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.done)
	}
	return nil
}

// Update atomically replaces the value of key with fn(current, found). A
// new key gets ttl; an existing key keeps its expiry. It returns the new
// value and its expiry, zero when it never expires.
func (m *Memory[V]) Update(key string, ttl time.Duration, fn func(current V, found bool) V) (V, time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		var zero V
		return zero, time.Time{}, ErrClosed
	}

	if it, ok := m.lookup(key); ok {
		it.value = fn(it.value, true)
		return it.value, it.expires, nil
	}
	var zero V
	v := fn(zero, false)
	expires := m.expiry(ttl)
	m.store(key, v, expires)
	return v, expires, nil
}

// Peek returns the value of key and its expiry without touching the LRU
// order.
func (m *Memory[V]) Peek(key string) (V, time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	el, ok := m.items[key]
	if !ok || el.Value.(*item[V]).expired(m.now()) {
		var zero V
		return zero, time.Time{}, false
	}
	it := el.Value.(*item[V])
	return it.value, it.expires, true
}

// Len returns the number of keys, expired ones included until swept.
func (m *Memory[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

func (m *Memory[V]) expiry(ttl time.Duration) time.Time {
	if ttl == 0 {
		ttl = m.ttl
	}
	if ttl < 0 {
		return time.Time{}
	}
	return m.now().Add(ttl)
}

// lookup returns the live item of key and marks it recently used.
func (m *Memory[V]) lookup(key string) (*item[V], bool) {
	el, ok := m.items[key]
	if !ok {
		return nil, false
	}
	it := el.Value.(*item[V])
	if it.expired(m.now()) {
		m.remove(el)
		return nil, false
	}
	m.order.MoveToFront(el)
	return it, true
}

func (m *Memory[V]) store(key string, value V, expires time.Time) {
	if el, ok := m.items[key]; ok {
		it := el.Value.(*item[V])
		it.value, it.expires = value, expires
		m.order.MoveToFront(el)
		return
	}
	if m.limit > 0 && len(m.items) >= m.limit {
		if oldest := m.order.Back(); oldest != nil {
			m.remove(oldest)
		}
	}
	m.items[key] = m.order.PushFront(&item[V]{key: key, value: value, expires: expires})
}

func (m *Memory[V]) remove(el *list.Element) {
	m.order.Remove(el)
	delete(m.items, el.Value.(*item[V]).key)
}

func (m *Memory[V]) sweeper() {
	ticker := time.NewTicker(m.sweep)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.purge()
		}
	}
}

func (m *Memory[V]) purge() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for el := m.order.Back(); el != nil; {
		prev := el.Prev()
		if el.Value.(*item[V]).expired(now) {
			m.remove(el)
		}
		el = prev
	}
}

var _ Store[any] = (*Memory[any])(nil)
