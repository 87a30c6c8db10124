package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAddRegistry(t *testing.T) *Registry {
	t.Helper()

	reg := NewRegistry()
	require.NoError(t, reg.Register(Definition{
		Name:        "add",
		Description: "Add two integers",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"a": map[string]any{"type": "integer"},
				"b": map[string]any{"type": "integer"},
			},
			"required": []any{"a", "b"},
		},
		ReturnType: "integer",
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			a := args["a"].(int)
			b := args["b"].(int)
			return a + b, nil
		},
	}))
	return reg
}

func TestExecutor_Execute_Success(t *testing.T) {
	exec := NewExecutor(newAddRegistry(t))

	res := exec.Execute(context.Background(), "add", map[string]any{"a": 2, "b": 3})

	assert.True(t, res.Success)
	assert.EqualValues(t, 5, res.Output)
	assert.Empty(t, res.Error)
	assert.GreaterOrEqual(t, res.DurationMS, int64(0))
}

func TestExecutor_Execute_ToolNotFound(t *testing.T) {
	exec := NewExecutor(NewRegistry())

	res := exec.Execute(context.Background(), "does_not_exist", map[string]any{})

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "not found")
	assert.Nil(t, res.Output)

	// The attempt is still recorded.
	n, err := exec.History().Len(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	stats, ok := exec.Collector().Stats("does_not_exist")
	require.True(t, ok)
	assert.EqualValues(t, 1, stats.Failures)
}

func TestExecutor_Execute_InvalidArguments(t *testing.T) {
	exec := NewExecutor(newAddRegistry(t))

	res := exec.Execute(context.Background(), "add", map[string]any{"a": 2})

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "validation")
}

func TestExecutor_Execute_HandlerError(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(Definition{
		Name:        "broken",
		Description: "Always fails",
		Schema:      objectSchema(),
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			return nil, errors.New("backend unavailable")
		},
	}))
	exec := NewExecutor(reg)

	res := exec.Execute(context.Background(), "broken", map[string]any{})

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "backend unavailable")
}

func TestExecutor_Execute_PanicCaptured(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(Definition{
		Name:        "panicky",
		Description: "Panics",
		Schema:      objectSchema(),
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			panic("boom")
		},
	}))
	exec := NewExecutor(reg)

	assert.NotPanics(t, func() {
		res := exec.Execute(context.Background(), "panicky", map[string]any{})
		assert.False(t, res.Success)
		assert.Contains(t, res.Error, "boom")
	})
}

func TestExecutor_Execute_SerializationFailure(t *testing.T) {
	cyclic := map[string]any{}
	cyclic["self"] = cyclic

	reg := NewRegistry()
	require.NoError(t, reg.Register(Definition{
		Name:        "cyclic",
		Description: "Returns a circular structure",
		Schema:      objectSchema(),
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			return cyclic, nil
		},
	}))
	exec := NewExecutor(reg)

	res := exec.Execute(context.Background(), "cyclic", map[string]any{})

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "circular")
}

func TestExecutor_MetadataCounters(t *testing.T) {
	reg := newAddRegistry(t)
	exec := NewExecutor(reg)

	for i := 0; i < 3; i++ {
		exec.Execute(context.Background(), "add", map[string]any{"a": i, "b": i})
	}
	// A failed attempt also counts as a call.
	exec.Execute(context.Background(), "add", map[string]any{"a": 1})

	meta, ok := reg.Metadata("add")
	require.True(t, ok)
	assert.EqualValues(t, 4, meta.CallCount)
	require.NotNil(t, meta.LastCalledAt)
}

func TestExecutor_MetricsMonotonicity(t *testing.T) {
	const successes, failures = 5, 3

	exec := NewExecutor(newAddRegistry(t))

	for i := 0; i < successes; i++ {
		res := exec.Execute(context.Background(), "add", map[string]any{"a": 1, "b": 1})
		require.True(t, res.Success)
	}
	for i := 0; i < failures; i++ {
		res := exec.Execute(context.Background(), "add", map[string]any{"a": 1})
		require.False(t, res.Success)
	}

	stats, ok := exec.Collector().Stats("add")
	require.True(t, ok)
	assert.EqualValues(t, successes+failures, stats.TotalCalls)
	assert.EqualValues(t, successes, stats.Successes)
	assert.EqualValues(t, failures, stats.Failures)
	assert.InDelta(t, float64(successes)/float64(successes+failures), stats.SuccessRate, 1e-9)
}

func TestExecutor_HistoryRecords(t *testing.T) {
	exec := NewExecutor(newAddRegistry(t))
	ctx := context.Background()

	exec.Execute(ctx, "add", map[string]any{"a": 1, "b": 2})
	exec.Execute(ctx, "add", map[string]any{"a": 1})

	records, err := exec.History().Records(ctx, Query{ToolName: "add"})
	require.NoError(t, err)
	require.Len(t, records, 2)

	for _, rec := range records {
		assert.Equal(t, "add", rec.ToolName)
		assert.NotEmpty(t, rec.ID)
		assert.False(t, rec.Timestamp.IsZero())
		assert.NotEmpty(t, rec.Input)
	}

	failed := false
	failures, err := exec.History().Records(ctx, Query{Success: &failed})
	require.NoError(t, err)
	require.Len(t, failures, 1)
	assert.NotEmpty(t, failures[0].Error)
}

func TestExecutor_LargePayload(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(Definition{
		Name:        "length",
		Description: "Return input length",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"data": map[string]any{"type": "string"},
			},
			"required": []any{"data"},
		},
		ReturnType: "integer",
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			return len(args["data"].(string)), nil
		},
	}))
	exec := NewExecutor(reg)

	payload := strings.Repeat("x", 3<<20)
	res := exec.Execute(context.Background(), "length", map[string]any{"data": payload})

	require.True(t, res.Success)
	assert.EqualValues(t, len(payload), res.Output)

	meta, ok := reg.Metadata("length")
	require.True(t, ok)
	assert.EqualValues(t, 1, meta.CallCount)

	n, err := exec.History().Len(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestExecutor_ConcurrentExecution(t *testing.T) {
	const workers, callsPer = 8, 20

	exec := NewExecutor(newAddRegistry(t))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < callsPer; i++ {
				res := exec.Execute(context.Background(), "add", map[string]any{"a": w, "b": i})
				assert.True(t, res.Success)
			}
		}(w)
	}
	wg.Wait()

	stats, ok := exec.Collector().Stats("add")
	require.True(t, ok)
	assert.EqualValues(t, workers*callsPer, stats.TotalCalls)
	assert.EqualValues(t, workers*callsPer, stats.Successes)

	n, err := exec.History().Len(context.Background())
	require.NoError(t, err)
	assert.Equal(t, workers*callsPer, n)
}

type recordingObserver struct {
	mu    sync.Mutex
	calls []string
}

func (o *recordingObserver) ObserveExecution(toolName string, success bool, kind ErrorKind, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, fmt.Sprintf("%s/%v/%s", toolName, success, kind))
}

func TestExecutor_Observer(t *testing.T) {
	obs := &recordingObserver{}
	exec := NewExecutor(newAddRegistry(t), WithObserver(obs))

	exec.Execute(context.Background(), "add", map[string]any{"a": 1, "b": 2})
	exec.Execute(context.Background(), "nope", map[string]any{})

	obs.mu.Lock()
	defer obs.mu.Unlock()
	require.Len(t, obs.calls, 2)
	assert.Equal(t, "add/true/", obs.calls[0])
	assert.Equal(t, "nope/false/not_found", obs.calls[1])
}
