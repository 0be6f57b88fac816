package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/schedulr/internal/instrumentation"
)

// MCPEndpointPath is where the streamable HTTP transport is mounted.
const MCPEndpointPath = "/mcp"

// HTTPServer serves the MCP streamable HTTP transport together with the
// health endpoints.
type HTTPServer struct {
	httpServer *http.Server
	mux        *http.ServeMux
	metrics    *instrumentation.Metrics
}

// NewHTTPServer mounts mcpServer at /mcp and the health endpoints of health
// on one mux. metrics may be nil.
func NewHTTPServer(mcpServer *mcpserver.MCPServer, health *HealthChecker, metrics *instrumentation.Metrics) *HTTPServer {
	s := &HTTPServer{
		mux:     http.NewServeMux(),
		metrics: metrics,
	}

	streamable := mcpserver.NewStreamableHTTPServer(mcpServer,
		mcpserver.WithEndpointPath(MCPEndpointPath),
	)
	s.mux.Handle(MCPEndpointPath, s.instrumentationMiddleware(streamable))
	if health != nil {
		health.RegisterHealthEndpoints(s.mux)
	}
	return s
}

// Handler returns the server's mux.
func (s *HTTPServer) Handler() http.Handler {
	return s.mux
}

// Start listens on addr and blocks until the server stops.
func (s *HTTPServer) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	slog.Info("starting MCP HTTP server", "addr", addr, "endpoint", MCPEndpointPath)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// instrumentationMiddleware records method, path, status and duration of
// every request.
func (s *HTTPServer) instrumentationMiddleware(next http.Handler) http.Handler {
	if s.metrics == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)
		s.metrics.RecordHTTPRequest(r.Context(), r.Method, r.URL.Path, rw.statusCode, time.Since(start))
	})
}

// responseWriter captures the status code written by a handler.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Flush keeps streaming responses working through the wrapper.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
