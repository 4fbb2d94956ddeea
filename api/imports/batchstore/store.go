package batchstore

import (
	"errors"
	"sync"
	"time"

	"TradeFlowERP/api/imports/pipeline"
)

// ErrNotFound is returned when a batch id is unknown or already evicted.
// No operation may assume a batch id stays valid indefinitely.
var ErrNotFound = errors.New("import batch not found")

// ErrStatusConflict is returned by Take when the batch exists but is not
// in the expected status.
var ErrStatusConflict = errors.New("import batch not in expected status")

// Store holds pending import batches between parse and commit/cancel. The
// interface exists so retention policy is swappable and testable without
// timers; the process-wide default is the in-memory implementation below.
type Store interface {
	Put(b *pipeline.Batch)
	Get(id string) (*pipeline.Batch, error)
	// Take atomically claims a batch: the status check and the removal
	// happen under one lock, so two concurrent commits (or a commit and a
	// cancel) can never both win. On ErrStatusConflict the batch is
	// returned alongside the error so callers can report its status.
	Take(id string, expected pipeline.BatchStatus) (*pipeline.Batch, error)
	Delete(id string)
	// EvictExpired removes batches older than the TTL that were never
	// committed or cancelled, returning the evicted ids.
	EvictExpired(now time.Time) []string
}

// MemoryStore is a concurrency-safe keyed store. Batches may be written by
// one caller and read by status/preview/commit from others.
type MemoryStore struct {
	mu  sync.RWMutex
	ttl time.Duration
	m   map[string]*pipeline.Batch
}

// NewMemoryStore creates a store evicting uncommitted batches after ttl.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl: ttl,
		m:   make(map[string]*pipeline.Batch),
	}
}

func (s *MemoryStore) Put(b *pipeline.Batch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[b.ID] = b
}

func (s *MemoryStore) Get(id string) (*pipeline.Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.m[id]
	if !ok {
		return nil, ErrNotFound
	}
	return b, nil
}

func (s *MemoryStore) Take(id string, expected pipeline.BatchStatus) (*pipeline.Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.m[id]
	if !ok {
		return nil, ErrNotFound
	}
	if b.Status != expected {
		return b, ErrStatusConflict
	}
	delete(s.m, id)
	return b, nil
}

func (s *MemoryStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, id)
}

func (s *MemoryStore) EvictExpired(now time.Time) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var evicted []string
	for id, b := range s.m {
		if now.Sub(b.CreatedAt) > s.ttl {
			delete(s.m, id)
			evicted = append(evicted, id)
		}
	}
	return evicted
}

// Len reports the number of pending batches. Used by the retention sweep's
// audit line.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}
