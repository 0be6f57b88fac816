package scheduling_tools

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/schedulr/internal/instrumentation"
	"github.com/teemow/schedulr/internal/scheduling"
	"github.com/teemow/schedulr/internal/server"
	"github.com/teemow/schedulr/internal/tools/common"
)

// RegisterReplyTools registers reply_scheduling_email.
func RegisterReplyTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	replyTool := mcp.NewTool("reply_scheduling_email",
		mcp.WithDescription("Record the slot a contact picked from a scheduling email. "+
			"Sends a confirmation with a calendar invite and saves the meeting to the calendar."),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("requestId",
			mcp.Required(),
			mcp.Description("ID returned by send_scheduling_email"),
		),
		mcp.WithNumber("selectedSlotIndex",
			mcp.Required(),
			mcp.Description("0-based index of the picked slot (the number in the email minus one)"),
		),
	)

	s.AddTool(replyTool, common.InstrumentedToolHandler("reply_scheduling_email", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleReplySchedulingEmail(ctx, request, sc)
		}))

	return nil
}

func handleReplySchedulingEmail(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(args, sc.Settings().DefaultAccount)

	requestID := common.StringArg(args, "requestId")
	if requestID == "" {
		return common.ErrorResult("requestId is required", nil), nil
	}
	if _, ok := args["selectedSlotIndex"]; !ok {
		return common.ErrorResult("selectedSlotIndex is required", nil), nil
	}
	index, err := common.IntArg(args, "selectedSlotIndex", 0)
	if err != nil {
		return common.ErrorResult("invalid selectedSlotIndex", err), nil
	}

	if _, err := sc.Store().Get(requestID); err != nil {
		return common.ErrorResult("failed to confirm slot", err), nil
	}

	workflow, err := sc.WorkflowForAccount(account)
	if err != nil {
		return common.ErrorResult("scheduling not available", err), nil
	}

	metrics := sc.Metrics()
	conf, err := workflow.ConfirmSlot(ctx, requestID, index)
	if err != nil {
		if errors.Is(err, scheduling.ErrInvalidIndex) {
			metrics.RecordSchedulingEvent(ctx, instrumentation.EventInvalidSelection)
		}
		return common.ErrorResult("failed to confirm slot", err), nil
	}

	switch conf.Status {
	case scheduling.ResultError:
		metrics.RecordSchedulingEvent(ctx, instrumentation.EventUnconfirmed)
		return common.JSONErrorResult(conf), nil
	case scheduling.ResultPartial:
		metrics.RecordSchedulingEvent(ctx, instrumentation.EventScheduled)
		metrics.RecordSchedulingEvent(ctx, instrumentation.EventNotPersisted)
	default:
		metrics.RecordSchedulingEvent(ctx, instrumentation.EventScheduled)
	}
	return common.JSONResult(conf)
}
