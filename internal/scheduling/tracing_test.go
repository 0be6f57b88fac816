package scheduling

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/teemow/schedulr/internal/instrumentation"
)

func withSpanRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return recorder
}

func spanAttr(s sdktrace.ReadOnlySpan, key string) string {
	for _, kv := range s.Attributes() {
		if string(kv.Key) == key {
			return kv.Value.AsString()
		}
	}
	return ""
}

func TestWorkflowSpans(t *testing.T) {
	recorder := withSpanRecorder(t)
	f := newFixture(t)

	result, err := f.workflow.ProposeSlots(context.Background(), bob(), StaticSlots(testSlots()))
	require.NoError(t, err)
	_, err = f.workflow.ConfirmSlot(context.Background(), result.RequestID, 0)
	require.NoError(t, err)
	_, err = f.workflow.ConfirmSlot(context.Background(), result.RequestID, 1)
	require.ErrorIs(t, err, ErrAlreadyScheduled)

	spans := recorder.Ended()
	require.Len(t, spans, 3)

	assert.Equal(t, "scheduling.propose", spans[0].Name())
	assert.Equal(t, result.RequestID, spanAttr(spans[0], instrumentation.SpanAttrRequestID))
	assert.NotEqual(t, codes.Error, spans[0].Status().Code)

	assert.Equal(t, "scheduling.confirm", spans[1].Name())
	assert.Equal(t, result.RequestID, spanAttr(spans[1], instrumentation.SpanAttrRequestID))
	assert.NotEqual(t, codes.Error, spans[1].Status().Code)

	assert.Equal(t, "scheduling.confirm", spans[2].Name())
	assert.Equal(t, codes.Error, spans[2].Status().Code)
}
