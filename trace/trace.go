// Package trace defines the audit-record boundary. The orchestrator writes
// one record per request; durable backends (document stores, log pipelines)
// live behind the Store interface and are external collaborators. An
// in-memory implementation covers tests and local development.
package trace

import (
	"context"
	"time"
)

// Record is one audit document tied to a request by its trace (correlation) id.
type Record struct {
	Kind    string         `json:"kind"`
	TraceID string         `json:"trace_id"`
	Time    time.Time      `json:"ts"`
	Fields  map[string]any `json:"fields,omitempty"`
}

// Store persists trace records. Implementations must be safe for concurrent
// use. Write failures must not fail the request being traced; callers log
// and move on.
type Store interface {
	Write(ctx context.Context, rec Record) error
}

// NewRecord builds a record of the given kind stamped with the current UTC time.
func NewRecord(kind, traceID string, fields map[string]any) Record {
	return Record{Kind: kind, TraceID: traceID, Time: time.Now().UTC(), Fields: fields}
}
