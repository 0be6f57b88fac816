package common

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"go.opentelemetry.io/otel/attribute"

	"github.com/teemow/schedulr/internal/instrumentation"
	"github.com/teemow/schedulr/internal/logging"
	"github.com/teemow/schedulr/internal/server"
)

// ToolHandler is the signature of an MCP tool handler.
type ToolHandler func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// Arguments naming the counterpart and the request of a call, picked up
// for the audit record.
var (
	recipientArgs = []string{"email", "targetEmail"}
	requestIDArg  = "requestId"
)

// InstrumentedToolHandler wraps a tool handler with a span, metrics and
// audit logging. A result with IsError set counts as a failure.
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandler("my_tool", sc, handler))
func InstrumentedToolHandler(toolName string, sc *server.ServerContext, handler ToolHandler) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		account := GetAccountFromArgs(args, sc.Settings().DefaultAccount)

		ctx, span := instrumentation.StartToolSpan(ctx, toolName,
			attribute.String(instrumentation.SpanAttrAccount, account))
		defer span.End()

		start := time.Now()
		invocation := instrumentation.NewToolInvocation(toolName).
			WithSpanContext(ctx).
			WithAccount(account)
		for _, name := range recipientArgs {
			if v := StringArg(args, name); v != "" {
				invocation.WithRecipient(v)
				break
			}
		}
		if id := StringArg(args, requestIDArg); id != "" {
			invocation.WithRequestID(id)
			span.SetAttributes(attribute.String(instrumentation.SpanAttrRequestID, id))
		}

		result, err := handler(ctx, request)

		status := instrumentation.StatusSuccess
		switch {
		case err != nil:
			status = instrumentation.StatusError
			invocation.Complete(false, err)
			instrumentation.SetSpanError(span, err)
		case result != nil && result.IsError:
			status = instrumentation.StatusError
			invocation.Complete(false, nil)
			span.SetAttributes(attribute.Bool("mcp.result_error", true))
		default:
			invocation.Complete(true, nil)
			instrumentation.SetSpanSuccess(span)
		}

		logger := logging.WithTool(sc.Logger(), toolName)
		if err != nil {
			logger.Warn("tool handler failed", logging.Account(account), logging.Err(err))
		} else {
			logger.Debug("tool call finished", logging.Account(account), logging.Status(status))
		}

		sc.Metrics().RecordToolInvocation(ctx, toolName, status, account, time.Since(start))
		sc.AuditLogger().LogToolInvocation(invocation)

		return result, err
	}
}
