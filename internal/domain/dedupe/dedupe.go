// Package dedupe tracks observation IDs so that re-submitted payloads are
// ingested at most once.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Deduper records seen observation IDs.
type Deduper interface {
	// SeenAndRecord atomically checks whether id was seen before and records
	// it if not. Returns true when id was already present.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets an ID so the observation can be retried. Use it when
	// an observation was recorded but could not be handed off downstream.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// entry is a node in the insertion-ordered list used for eviction.
type entry struct {
	id   string
	next *entry
}

func (e *entry) reset() {
	e.id = ""
	e.next = nil
}

// memoryDeduper keeps IDs in a map. In bounded mode (capacity > 0) a linked
// list tracks insertion order and the oldest entry is evicted once the map is
// full; capacity <= 0 means no eviction at all.
type memoryDeduper struct {
	mu       sync.Mutex
	seen     map[string]*entry
	newest   *entry
	capacity int
	size     atomic.Int64
	pool     sync.Pool
}

const defaultCapacity = 50000

// NewMemoryDeduper creates an in-memory deduper.
func NewMemoryDeduper(opts ...Option) Deduper {
	d := &memoryDeduper{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]*entry)
	if d.capacity > 0 {
		d.pool = sync.Pool{New: func() interface{} { return &entry{} }}
	}
	return d
}

func (d *memoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}

	if d.capacity > 0 {
		if len(d.seen) >= d.capacity {
			d.evictOldest()
		}
		e := d.pool.Get().(*entry)
		e.id = id
		e.next = d.newest
		d.newest = e
		d.seen[id] = e
	} else {
		d.seen[id] = nil
	}
	d.size.Add(1)
	return false
}

func (d *memoryDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, ok := d.seen[id]
	if !ok {
		return
	}
	delete(d.seen, id)
	d.size.Add(-1)

	if d.capacity <= 0 {
		return
	}
	if d.newest == e {
		d.newest = e.next
	} else {
		cur := d.newest
		for cur != nil && cur.next != e {
			cur = cur.next
		}
		if cur != nil {
			cur.next = e.next
		}
	}
	e.reset()
	d.pool.Put(e)
}

// evictOldest drops the tail of the insertion list. Caller holds d.mu.
func (d *memoryDeduper) evictOldest() {
	if d.newest == nil {
		return
	}
	var prev *entry
	cur := d.newest
	for cur.next != nil {
		prev = cur
		cur = cur.next
	}
	if prev == nil {
		d.newest = nil
	} else {
		prev.next = nil
	}
	delete(d.seen, cur.id)
	cur.reset()
	d.pool.Put(cur)
	d.size.Add(-1)
}

func (d *memoryDeduper) Size() int64 {
	return d.size.Load()
}
