package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord(tool string, success bool) Record {
	return Record{
		ID:         fmt.Sprintf("%s-%d", tool, time.Now().UnixNano()),
		ToolName:   tool,
		Input:      json.RawMessage(`{"x":1}`),
		Output:     json.RawMessage(`"ok"`),
		Success:    success,
		DurationMS: 5,
		Timestamp:  time.Now(),
	}
}

func TestMemoryHistory_AppendAndQuery(t *testing.T) {
	h := NewMemoryHistory()
	ctx := context.Background()

	require.NoError(t, h.Append(ctx, sampleRecord("a", true)))
	require.NoError(t, h.Append(ctx, sampleRecord("b", false)))
	require.NoError(t, h.Append(ctx, sampleRecord("a", false)))

	n, err := h.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	byTool, err := h.Records(ctx, Query{ToolName: "a"})
	require.NoError(t, err)
	assert.Len(t, byTool, 2)

	failed := false
	byOutcome, err := h.Records(ctx, Query{Success: &failed})
	require.NoError(t, err)
	assert.Len(t, byOutcome, 2)

	limited, err := h.Records(ctx, Query{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	// Newest first.
	assert.Equal(t, "a", limited[0].ToolName)
	assert.False(t, limited[0].Success)
}

func TestMemoryHistory_AppendOnly(t *testing.T) {
	h := NewMemoryHistory()
	ctx := context.Background()

	lengths := []int{}
	for i := 0; i < 10; i++ {
		require.NoError(t, h.Append(ctx, sampleRecord("t", i%3 != 0)))
		n, err := h.Len(ctx)
		require.NoError(t, err)
		lengths = append(lengths, n)
	}

	// Length only ever grows.
	for i := 1; i < len(lengths); i++ {
		assert.Greater(t, lengths[i], lengths[i-1])
	}

	// Queries do not mutate the log.
	_, err := h.Records(ctx, Query{ToolName: "t", Limit: 3})
	require.NoError(t, err)
	n, err := h.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, n)
}

func TestMemoryHistory_Clear(t *testing.T) {
	h := NewMemoryHistory()
	ctx := context.Background()

	require.NoError(t, h.Append(ctx, sampleRecord("t", true)))
	require.NoError(t, h.Clear(ctx))

	n, err := h.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMemoryHistory_ConcurrentAppend(t *testing.T) {
	const workers, recordsPer = 8, 25

	h := NewMemoryHistory()
	ctx := context.Background()

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < recordsPer; i++ {
				assert.NoError(t, h.Append(ctx, sampleRecord(fmt.Sprintf("tool_%d", w), true)))
			}
		}(w)
	}
	wg.Wait()

	n, err := h.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, workers*recordsPer, n)
}
