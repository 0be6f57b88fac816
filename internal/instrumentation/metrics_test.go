package instrumentation

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T, detailed bool) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp.Meter("test"), detailed)
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}
	return m, reader
}

// counterValue returns the sum of the data points of the named counter
// whose attributes include all of want.
func counterValue(t *testing.T, reader *sdkmetric.ManualReader, name string, want ...attribute.KeyValue) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			if md.Name != name {
				continue
			}
			sum, ok := md.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("metric %s is %T, not an int64 sum", name, md.Data)
			}
		dataPoints:
			for _, dp := range sum.DataPoints {
				for _, kv := range want {
					v, ok := dp.Attributes.Value(kv.Key)
					if !ok || v != kv.Value {
						continue dataPoints
					}
				}
				total += dp.Value
			}
		}
	}
	return total
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	ctx := context.Background()

	m.RecordHTTPRequest(ctx, "GET", "/mcp", 200, time.Millisecond)
	m.RecordGoogleAPIOperation(ctx, ServiceCalendar, OperationFreeBusy, StatusSuccess, time.Millisecond)
	m.RecordToolInvocation(ctx, "get_free_slots", StatusSuccess, "default", time.Millisecond)
	m.RecordSchedulingEvent(ctx, EventProposed)
	m.RecordSlotsOffered(ctx, 3)

	var zero Metrics
	zero.RecordSchedulingEvent(ctx, EventScheduled)
}

func TestMetrics_RecordHTTPRequest(t *testing.T) {
	m, reader := newTestMetrics(t, false)
	ctx := context.Background()

	m.RecordHTTPRequest(ctx, "POST", "/mcp", 200, 10*time.Millisecond)
	m.RecordHTTPRequest(ctx, "POST", "/mcp", 500, 10*time.Millisecond)
	m.RecordHTTPRequest(ctx, "POST", "/mcp", 200, 10*time.Millisecond)

	if got := counterValue(t, reader, "http_requests_total", attribute.String(attrStatus, "200")); got != 2 {
		t.Errorf("expected 2 requests with status 200, got %d", got)
	}
	if got := counterValue(t, reader, "http_requests_total"); got != 3 {
		t.Errorf("expected 3 requests, got %d", got)
	}
}

func TestMetrics_RecordSchedulingEvent(t *testing.T) {
	m, reader := newTestMetrics(t, false)
	ctx := context.Background()

	m.RecordSchedulingEvent(ctx, EventProposed)
	m.RecordSchedulingEvent(ctx, EventProposed)
	m.RecordSchedulingEvent(ctx, EventInvalidSelection)

	tests := []struct {
		event string
		want  int64
	}{
		{EventProposed, 2},
		{EventInvalidSelection, 1},
		{EventScheduled, 0},
	}
	for _, tt := range tests {
		t.Run(tt.event, func(t *testing.T) {
			got := counterValue(t, reader, "scheduling_events_total", attribute.String(attrEvent, tt.event))
			if got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestMetrics_RecordToolInvocation_AccountLabel(t *testing.T) {
	tests := []struct {
		name     string
		detailed bool
		want     int64
	}{
		{name: "without detailed labels", detailed: false, want: 0},
		{name: "with detailed labels", detailed: true, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, reader := newTestMetrics(t, tt.detailed)
			m.RecordToolInvocation(context.Background(), "propose_meeting", StatusSuccess, "work", time.Second)

			got := counterValue(t, reader, "mcp_tool_invocations_total", attribute.String(attrAccount, "work"))
			if got != tt.want {
				t.Errorf("expected %d points labelled with the account, got %d", tt.want, got)
			}
			if total := counterValue(t, reader, "mcp_tool_invocations_total"); total != 1 {
				t.Errorf("expected 1 invocation, got %d", total)
			}
		})
	}
}

func TestTrackGoogleAPI(t *testing.T) {
	m, reader := newTestMetrics(t, false)
	ctx := context.Background()

	_, done := TrackGoogleAPI(ctx, m, ServiceGmail, OperationSend)
	done(nil)
	_, done = TrackGoogleAPI(ctx, m, ServiceGmail, OperationSend)
	done(errors.New("quota exceeded"))

	success := counterValue(t, reader, "google_api_operations_total",
		attribute.String(attrService, ServiceGmail),
		attribute.String(attrOperation, OperationSend),
		attribute.String(attrStatus, StatusSuccess))
	failed := counterValue(t, reader, "google_api_operations_total",
		attribute.String(attrStatus, StatusError))

	if success != 1 {
		t.Errorf("expected 1 successful send, got %d", success)
	}
	if failed != 1 {
		t.Errorf("expected 1 failed send, got %d", failed)
	}
}

func TestTrackGoogleAPI_NilMetrics(t *testing.T) {
	ctx, done := TrackGoogleAPI(context.Background(), nil, ServiceCalendar, OperationList)
	if ctx == nil {
		t.Fatal("expected a context")
	}
	done(nil)
}
