// Package dedupe tracks keys that were already seen.
package dedupe

import (
	"sync"
	"sync/atomic"
)

// Deduper records seen keys.
type Deduper[K comparable] interface {
	// SeenAndRecord atomically checks if key was seen and records it if not.
	// Returns true if key was already seen, false if it was newly recorded.
	SeenAndRecord(key K) bool

	// Unrecord forgets key so it can be recorded again.
	Unrecord(key K)

	Size() int64
}

// node is one entry of the insertion-ordered list used in bounded mode.
type node[K comparable] struct {
	key  K
	prev *node[K]
	next *node[K]
}

// inMemoryDeduper keeps keys in a map. In bounded mode (maxSize > 0) it also
// keeps a doubly linked list in insertion order and evicts the oldest key.
type inMemoryDeduper[K comparable] struct {
	mu      sync.Mutex
	seen    map[K]*node[K]
	oldest  *node[K]
	newest  *node[K]
	maxSize int
	size    atomic.Int64
}

// New creates an in-memory deduper. It is unbounded unless WithMaxSize is given.
func New[K comparable](opts ...Option) Deduper[K] {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &inMemoryDeduper[K]{
		seen:    make(map[K]*node[K]),
		maxSize: cfg.maxSize,
	}
}

func (d *inMemoryDeduper[K]) SeenAndRecord(key K) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[key]; exists {
		return true
	}

	if d.maxSize <= 0 {
		d.seen[key] = nil
		d.size.Add(1)
		return false
	}

	if len(d.seen) >= d.maxSize {
		d.evictOldest()
	}
	n := &node[K]{key: key, prev: d.newest}
	if d.newest != nil {
		d.newest.next = n
	}
	d.newest = n
	if d.oldest == nil {
		d.oldest = n
	}
	d.seen[key] = n
	d.size.Add(1)
	return false
}

func (d *inMemoryDeduper[K]) Unrecord(key K) {
	d.mu.Lock()
	defer d.mu.Unlock()

	n, exists := d.seen[key]
	if !exists {
		return
	}
	delete(d.seen, key)
	if n != nil {
		d.unlink(n)
	}
	d.size.Add(-1)
}

func (d *inMemoryDeduper[K]) Size() int64 {
	return d.size.Load()
}

// evictOldest drops the first recorded key. Callers hold mu.
func (d *inMemoryDeduper[K]) evictOldest() {
	if d.oldest == nil {
		return
	}
	n := d.oldest
	delete(d.seen, n.key)
	d.unlink(n)
	d.size.Add(-1)
}

func (d *inMemoryDeduper[K]) unlink(n *node[K]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		d.oldest = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		d.newest = n.prev
	}
	n.prev, n.next = nil, nil
}
