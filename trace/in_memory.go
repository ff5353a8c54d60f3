package trace

import (
	"context"
	"sync"
)

// InMemoryStore is a process-local Store. Append-only; records are queryable
// by kind or trace id. Suitable for tests and local development; swap for a
// durable backend in production.
//
// Concurrency: protected by RWMutex.
type InMemoryStore struct {
	mu      sync.RWMutex
	records []Record
}

// NewInMemoryStore creates a new in-memory trace store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// Write appends the record.
func (s *InMemoryStore) Write(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

// ByKind returns all records of the given kind in insertion order.
func (s *InMemoryStore) ByKind(kind string) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Record
	for _, rec := range s.records {
		if rec.Kind == kind {
			out = append(out, rec)
		}
	}
	return out
}

// ByTraceID returns all records for one trace id in insertion order.
func (s *InMemoryStore) ByTraceID(traceID string) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Record
	for _, rec := range s.records {
		if rec.TraceID == traceID {
			out = append(out, rec)
		}
	}
	return out
}

// Len returns the number of stored records.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
