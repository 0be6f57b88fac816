// Package instrumentation provides OpenTelemetry metrics, tracing and audit
// logging for the schedulr MCP server.
//
// # Metrics
//
//   - http_requests_total, http_request_duration_seconds: streamable HTTP transport
//   - google_api_operations_total, google_api_operation_duration_seconds: Calendar, People and Gmail calls
//   - mcp_tool_invocations_total, mcp_tool_duration_seconds: tool calls by tool and status
//   - scheduling_events_total: proposals sent, slots selected, delivery and persistence failures
//   - scheduling_slots_offered: slots offered per proposal
//
// Metrics are exported through Prometheus (default, served by the metrics
// server), OTLP or stdout.
//
// # Tracing
//
// Spans are created for tool invocations (tool.<name>) and Google API calls
// (google.<service>.<operation>). Tracing is off unless TRACING_EXPORTER is
// set to otlp or stdout.
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	ctx, done := instrumentation.TrackGoogleAPI(ctx, provider.Metrics(),
//		instrumentation.ServiceGmail, instrumentation.OperationSend)
//	err = send(ctx)
//	done(err)
package instrumentation
