package tool

import (
	"context"
	"sync"
)

// Query filters history lookups. Zero values match everything.
type Query struct {
	ToolName string
	Success  *bool
	Limit    int
}

// History is an append-only log of execution records. Records are never
// edited once written; Clear is the only operation that discards them.
type History interface {
	Append(ctx context.Context, rec Record) error
	Records(ctx context.Context, q Query) ([]Record, error)
	Len(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
}

// MemoryHistory is the in-process History implementation.
type MemoryHistory struct {
	mu      sync.RWMutex
	records []Record
}

// NewMemoryHistory creates an empty in-memory history.
func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{}
}

// Append adds a record to the log.
func (h *MemoryHistory) Append(_ context.Context, rec Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.records = append(h.records, rec)
	return nil
}

// Records returns records matching the query, newest first.
func (h *MemoryHistory) Records(_ context.Context, q Query) ([]Record, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]Record, 0, len(h.records))
	for i := len(h.records) - 1; i >= 0; i-- {
		rec := h.records[i]
		if q.ToolName != "" && rec.ToolName != q.ToolName {
			continue
		}
		if q.Success != nil && rec.Success != *q.Success {
			continue
		}
		out = append(out, rec)
		if q.Limit > 0 && len(out) >= q.Limit {
			break
		}
	}
	return out, nil
}

// Len returns the number of stored records.
func (h *MemoryHistory) Len(_ context.Context) (int, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.records), nil
}

// Clear discards all records.
func (h *MemoryHistory) Clear(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.records = nil
	return nil
}
