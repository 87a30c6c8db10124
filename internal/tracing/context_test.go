package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTraceIDRoundTrip(t *testing.T) {
	ctx := context.Background()

	assert.Empty(t, GetTraceID(ctx))

	traceID := NewTraceID()
	assert.NotEmpty(t, traceID)

	ctx = WithTraceID(ctx, traceID)
	assert.Equal(t, traceID, GetTraceID(ctx))
}

func TestCallIDRoundTrip(t *testing.T) {
	ctx := context.Background()

	assert.Empty(t, GetCallID(ctx))

	callID := NewCallID()
	ctx = WithCallID(ctx, callID)
	assert.Equal(t, callID, GetCallID(ctx))
}

func TestIDsAreUnique(t *testing.T) {
	assert.NotEqual(t, NewTraceID(), NewTraceID())
	assert.NotEqual(t, NewCallID(), NewCallID())
}

func TestStartSpanPropagatesTraceID(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "test", "test.operation")
	defer span.End()

	assert.NotNil(t, ctx)
	// Without an initialized provider the span is a no-op and no trace ID
	// is forced onto the context.
	assert.NotPanics(t, func() { SetSpanError(ctx, "failed") })
}
