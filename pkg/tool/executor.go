package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/harun/armory/internal/tracing"
)

// Observer receives a notification for every completed execution attempt.
// The error kind is empty on success.
type Observer interface {
	ObserveExecution(toolName string, success bool, kind ErrorKind, duration time.Duration)
}

// Executor looks up, validates, invokes, times, and records tool calls.
// A failed call never panics or returns an error to the caller; the
// outcome is always reported through Result.
type Executor struct {
	registry  *Registry
	collector *Collector
	history   History
	observers []Observer
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithHistory sets the execution history sink.
func WithHistory(h History) ExecutorOption {
	return func(e *Executor) { e.history = h }
}

// WithCollector sets the metrics collector.
func WithCollector(c *Collector) ExecutorOption {
	return func(e *Executor) { e.collector = c }
}

// WithObserver adds an additional execution observer.
func WithObserver(o Observer) ExecutorOption {
	return func(e *Executor) { e.observers = append(e.observers, o) }
}

// NewExecutor creates an executor over the given registry. Without options
// it records to an in-memory collector and history.
func NewExecutor(registry *Registry, opts ...ExecutorOption) *Executor {
	e := &Executor{
		registry: registry,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.collector == nil {
		e.collector = NewCollector()
	}
	if e.history == nil {
		e.history = NewMemoryHistory()
	}
	return e
}

// Collector returns the executor's metrics collector.
func (e *Executor) Collector() *Collector {
	return e.collector
}

// History returns the executor's execution history.
func (e *Executor) History() History {
	return e.history
}

// Execute runs a tool by name with the given JSON argument map.
func (e *Executor) Execute(ctx context.Context, name string, args map[string]any) Result {
	start := time.Now()

	ctx, span := tracing.StartSpan(ctx, "armory.tool", "tool.execute",
		attribute.String("tool.name", name),
	)
	defer span.End()

	ent, ok := e.registry.lookup(name)
	if !ok {
		log.Error().Str("tool", name).Msg("Tool not found")
		return e.finish(ctx, name, args, Result{
			Success: false,
			Error:   fmt.Sprintf("tool not found: %s", name),
		}, start, false)
	}

	if err := ValidateArguments(ent.compiled, args); err != nil {
		log.Error().Str("tool", name).Err(err).Msg("Argument validation failed")
		return e.finishKind(ctx, name, args, Result{
			Success: false,
			Error:   err.Error(),
		}, start, true, KindInvalidArguments)
	}

	log.Debug().Str("tool", name).Msg("Executing tool")

	raw, err := e.invoke(ctx, ent.handler, args)
	if err != nil {
		log.Error().Str("tool", name).Err(err).Msg("Tool execution failed")
		return e.finishKind(ctx, name, args, Result{
			Success: false,
			Error:   err.Error(),
		}, start, true, KindExecutionFailed)
	}

	output, err := Normalize(raw)
	if err != nil {
		log.Error().Str("tool", name).Err(err).Msg("Result normalization failed")
		return e.finishKind(ctx, name, args, Result{
			Success: false,
			Error:   err.Error(),
		}, start, true, KindSerialization)
	}

	span.SetStatus(codes.Ok, "")

	return e.finish(ctx, name, args, Result{
		Success: true,
		Output:  output,
	}, start, true)
}

// invoke calls the handler, converting panics into execution errors so
// they never cross the executor boundary.
func (e *Executor) invoke(ctx context.Context, handler Handler, args map[string]any) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = NewError(KindExecutionFailed, fmt.Sprintf("tool panicked: %v", r))
		}
	}()

	out, err = handler(ctx, args)
	if err != nil {
		return nil, WrapError(KindExecutionFailed, "tool execution failed", err)
	}
	return out, nil
}

func (e *Executor) finish(ctx context.Context, name string, args map[string]any, res Result, start time.Time, registered bool) Result {
	kind := ErrorKind("")
	if !res.Success {
		if registered {
			kind = KindExecutionFailed
		} else {
			kind = KindNotFound
		}
	}
	return e.finishKind(ctx, name, args, res, start, registered, kind)
}

// finishKind stamps the duration, appends the history record, and reports
// metrics. It runs for every outcome, success or failure.
func (e *Executor) finishKind(ctx context.Context, name string, args map[string]any, res Result, start time.Time, registered bool, kind ErrorKind) Result {
	duration := time.Since(start)
	res.DurationMS = duration.Milliseconds()

	if !res.Success {
		tracing.SetSpanError(ctx, res.Error)
	}

	rec := Record{
		ID:         uuid.New().String(),
		ToolName:   name,
		Input:      marshalJSON(args),
		Success:    res.Success,
		Error:      res.Error,
		DurationMS: res.DurationMS,
		Timestamp:  time.Now(),
	}
	if res.Success {
		rec.Output = marshalJSON(res.Output)
	}

	if err := e.history.Append(ctx, rec); err != nil {
		log.Error().Str("tool", name).Err(err).Msg("Failed to append execution record")
	}

	e.collector.Record(name, res.Success, duration)
	for _, obs := range e.observers {
		obs.ObserveExecution(name, res.Success, kind, duration)
	}

	if registered {
		e.registry.recordCall(name, duration)
	}

	return res
}

// marshalJSON serializes a value that has already passed normalization (or
// is an argument map). Unmarshalable values degrade to a quoted string.
func marshalJSON(v any) json.RawMessage {
	if v == nil {
		return json.RawMessage("null")
	}
	raw, err := json.Marshal(v)
	if err != nil {
		quoted, _ := json.Marshal(fmt.Sprintf("%v", v))
		return quoted
	}
	return raw
}
