// Package dedupe tracks idempotency keys of submitted jobs.
package dedupe

import (
	"context"
	"sync"
)

// Deduper maps client idempotency keys to the job they first produced.
type Deduper interface {
	// Claim binds key to jobID unless key is already bound. It returns the
	// job id bound to key and whether the key was already known.
	Claim(ctx context.Context, key, jobID string) (existing string, dup bool)

	// Release forgets key so a rejected submission can be retried under it.
	Release(ctx context.Context, key string)

	Size() int64
}

// entry is a node in the insertion-ordered list.
type entry struct {
	key        string
	jobID      string
	prev, next *entry
}

// inMemoryDeduper is a bounded key table that evicts the oldest claim first.
// A non-positive maxSize disables eviction.
type inMemoryDeduper struct {
	mu      sync.Mutex
	keys    map[string]*entry
	oldest  *entry
	newest  *entry
	maxSize int
	pool    sync.Pool
}

// NewInMemoryDeduper returns a Deduper holding at most 50000 keys unless
// WithMaxSize says otherwise.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{maxSize: 50000}
	for _, opt := range opts {
		opt(d)
	}
	d.keys = make(map[string]*entry)
	d.pool.New = func() any { return &entry{} }
	return d
}

func (d *inMemoryDeduper) Claim(_ context.Context, key, jobID string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if e, ok := d.keys[key]; ok {
		return e.jobID, true
	}

	if d.maxSize > 0 && len(d.keys) >= d.maxSize {
		d.remove(d.oldest)
	}

	e := d.pool.Get().(*entry)
	e.key, e.jobID = key, jobID
	e.prev = d.newest
	if d.newest != nil {
		d.newest.next = e
	}
	d.newest = e
	if d.oldest == nil {
		d.oldest = e
	}
	d.keys[key] = e
	return jobID, false
}

func (d *inMemoryDeduper) Release(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if e, ok := d.keys[key]; ok {
		d.remove(e)
	}
}

// remove unlinks e. d.mu must be held.
func (d *inMemoryDeduper) remove(e *entry) {
	if e == nil {
		return
	}
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		d.oldest = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		d.newest = e.prev
	}
	delete(d.keys, e.key)
	*e = entry{}
	d.pool.Put(e)
}

func (d *inMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.keys))
}
