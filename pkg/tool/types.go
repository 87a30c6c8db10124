package tool

import (
	"context"
	"encoding/json"
	"time"
)

// Handler is the function signature for tool execution.
type Handler func(ctx context.Context, args map[string]any) (any, error)

// Definition describes a tool at registration time.
type Definition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Schema      map[string]any `json:"parameters_schema"`
	ReturnType  string         `json:"return_type"`
	Timeout     time.Duration  `json:"-"` // advisory hint, not enforced by the executor
	Handler     Handler        `json:"-"`
}

// Metadata is the registry's view of a registered tool. The schema and
// descriptive fields never change after registration; only the call
// counters and timestamps are updated, and only by the Executor.
type Metadata struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Description     string         `json:"description"`
	Schema          map[string]any `json:"parameters_schema"`
	ReturnType      string         `json:"return_type"`
	TimeoutMS       int64          `json:"timeout_ms,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	CallCount       uint64         `json:"call_count"`
	TotalDurationMS uint64         `json:"total_duration_ms"`
	LastCalledAt    *time.Time     `json:"last_called_at,omitempty"`
}

// Result represents the outcome of a single tool execution. A failed
// execution still yields a well-formed Result; callers branch on Success.
type Result struct {
	Success    bool   `json:"success"`
	Output     any    `json:"output"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// Record is an immutable log entry describing one completed invocation
// attempt. Input and output are stored as serialized JSON.
type Record struct {
	ID         string          `json:"id"`
	ToolName   string          `json:"tool_name"`
	Input      json.RawMessage `json:"input_parameters"`
	Output     json.RawMessage `json:"output,omitempty"`
	Success    bool            `json:"success"`
	Error      string          `json:"error,omitempty"`
	DurationMS int64           `json:"duration_ms"`
	Timestamp  time.Time       `json:"timestamp"`
}
