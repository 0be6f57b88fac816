// Package toolstest provides a fake Google backend and helpers for testing
// the MCP tool packages.
package toolstest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	calendarapi "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
	peopleapi "google.golang.org/api/people/v1"

	"github.com/teemow/schedulr/internal/google"
	"github.com/teemow/schedulr/internal/instrumentation"
	"github.com/teemow/schedulr/internal/server"
)

// Now is the fixed clock of test server contexts, a Monday.
var Now = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

// FakeGoogle serves the Calendar, People and Gmail endpoints the tools use.
// Busy periods are relative to Now.
type FakeGoogle struct {
	mu sync.Mutex

	Busy        [][2]time.Duration
	Connections []*peopleapi.Person

	FailSend     bool
	FailInsert   bool
	FailFreeBusy bool

	sent     []string
	inserted []calendarapi.Event
}

// SetFailSend makes Gmail sends fail from now on, or succeed again.
func (f *FakeGoogle) SetFailSend(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.FailSend = fail
}

// Sent returns the raw messages sent through Gmail.
func (f *FakeGoogle) Sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

// Inserted returns the events inserted into the primary calendar.
func (f *FakeGoogle) Inserted() []calendarapi.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]calendarapi.Event(nil), f.inserted...)
}

// Handler returns the HTTP handler of the fake.
func (f *FakeGoogle) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/me/calendarList", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, calendarapi.CalendarList{Items: []*calendarapi.CalendarListEntry{{Id: "primary", Primary: true}}})
	})
	mux.HandleFunc("/freeBusy", func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.FailFreeBusy {
			http.Error(w, `{"error":{"code":400,"message":"backend error"}}`, http.StatusBadRequest)
			return
		}
		var busy []*calendarapi.TimePeriod
		for _, b := range f.Busy {
			busy = append(busy, &calendarapi.TimePeriod{
				Start: Now.Add(b[0]).Format(time.RFC3339),
				End:   Now.Add(b[1]).Format(time.RFC3339),
			})
		}
		writeJSON(w, calendarapi.FreeBusyResponse{Calendars: map[string]calendarapi.FreeBusyCalendar{
			"primary": {Busy: busy},
		}})
	})
	mux.HandleFunc("/calendars/primary/events", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.FailInsert {
			http.Error(w, `{"error":{"code":403,"message":"insert failed"}}`, http.StatusForbidden)
			return
		}
		var ev calendarapi.Event
		_ = json.NewDecoder(r.Body).Decode(&ev)
		ev.Id = "evt-1"
		f.inserted = append(f.inserted, ev)
		writeJSON(w, ev)
	})
	mux.HandleFunc("/v1/people/me/connections", func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, peopleapi.ListConnectionsResponse{Connections: f.Connections})
	})
	mux.HandleFunc("/gmail/v1/users/me/messages/send", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.FailSend {
			http.Error(w, `{"error":{"code":400,"message":"send failed"}}`, http.StatusBadRequest)
			return
		}
		body, _ := io.ReadAll(r.Body)
		f.sent = append(f.sent, string(body))
		writeJSON(w, map[string]string{"id": "msg-1"})
	})
	return mux
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// Env is a server context wired to a FakeGoogle, with metrics collected
// by a manual reader.
type Env struct {
	SC     *server.ServerContext
	Google *FakeGoogle
	Reader *sdkmetric.ManualReader
}

// NewEnv starts fake and returns a server context using it. A nil fake
// starts an empty one. With withToken false no account has a token.
func NewEnv(t *testing.T, fake *FakeGoogle, withToken bool) *Env {
	t.Helper()
	if fake == nil {
		fake = &FakeGoogle{}
	}
	srv := httptest.NewServer(fake.Handler())
	t.Cleanup(srv.Close)

	var provider google.TokenProvider = google.NewFileTokenProvider(t.TempDir())
	if withToken {
		static, err := google.NewStaticTokenProvider("test-access-token", "")
		if err != nil {
			t.Fatalf("failed to create token provider: %v", err)
		}
		provider = static
	}

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	metrics, err := instrumentation.NewMetrics(mp.Meter("test"), false)
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}

	sc, err := server.NewServerContext(context.Background(), server.Options{
		TokenProvider: provider,
		Settings: server.Settings{
			SenderName:  "Ada",
			SenderEmail: "ada@example.com",
		},
		Metrics: metrics,
		Clock:   func() time.Time { return Now },
		ClientOptions: []option.ClientOption{
			option.WithEndpoint(srv.URL + "/"),
			option.WithHTTPClient(srv.Client()),
		},
	})
	if err != nil {
		t.Fatalf("failed to create server context: %v", err)
	}
	t.Cleanup(func() { _ = sc.Shutdown() })

	return &Env{SC: sc, Google: fake, Reader: reader}
}

// Counter returns the sum of the named counter over the data points whose
// attribute key equals value.
func (e *Env) Counter(t *testing.T, name, key, value string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := e.Reader.Collect(context.Background(), &rm); err != nil {
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
				continue
			}
			for _, dp := range sum.DataPoints {
				if v, ok := dp.Attributes.Value(attribute.Key(key)); ok && v.AsString() == value {
					total += dp.Value
				}
			}
		}
	}
	return total
}

// Request builds a tool call request with args.
func Request(name string, args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

// Text returns the text of the first content item of result.
func Text(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil || len(result.Content) == 0 {
		t.Fatal("result has no content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want mcp.TextContent", result.Content[0])
	}
	return text.Text
}

// DecodeJSON unmarshals the text of result into v.
func DecodeJSON(t *testing.T, result *mcp.CallToolResult, v interface{}) {
	t.Helper()
	if err := json.Unmarshal([]byte(Text(t, result)), v); err != nil {
		t.Fatalf("result is not JSON: %v\n%s", err, Text(t, result))
	}
}
