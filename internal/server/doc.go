// Package server wires the schedulr MCP server together.
//
// ServerContext owns the process lifetime: the shutdown context, the Google
// token provider, lazily created per-account Calendar, People and Gmail
// clients, and the in-memory scheduling request store shared by all tool
// calls. Workflows built by WorkflowForAccount send through the account's
// Gmail sender and record meetings in its calendar.
//
// HTTPServer mounts the streamable HTTP transport at /mcp next to the
// Kubernetes probes of HealthChecker (/healthz, /readyz, /healthz/detailed).
// MetricsServer serves /metrics on a separate port.
package server
