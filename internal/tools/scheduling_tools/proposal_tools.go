package scheduling_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/schedulr/internal/instrumentation"
	"github.com/teemow/schedulr/internal/scheduling"
	"github.com/teemow/schedulr/internal/server"
	"github.com/teemow/schedulr/internal/tools/common"
)

// maxDaysAhead bounds the lookahead window of a proposal.
const maxDaysAhead = 60

// RegisterProposalTools registers propose_meeting and send_scheduling_email.
func RegisterProposalTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	proposeTool := mcp.NewTool("propose_meeting",
		mcp.WithDescription("Compose the text of a meeting proposal without sending it. "+
			"myAvailability is either free text or an array of {start, end} slots."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Your name, used to sign the message"),
		),
		mcp.WithString("targetName",
			mcp.Required(),
			mcp.Description("Name of the person to meet"),
		),
		mcp.WithString("email",
			mcp.Required(),
			mcp.Description("Email address of the person to meet"),
		),
		mcp.WithString("myAvailability",
			mcp.Required(),
			mcp.Description("Your available times, as text or as a JSON array of {start, end} slots"),
		),
	)

	s.AddTool(proposeTool, common.InstrumentedToolHandler("propose_meeting", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleProposeMeeting(ctx, request, sc)
		}))

	sendTool := mcp.NewTool("send_scheduling_email",
		mcp.WithDescription("Email a contact up to 10 available time slots and start a scheduling request. "+
			"The returned requestId is needed to record the slot the contact picks."),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("senderName",
			mcp.Description("Your name (default: the configured sender name)"),
		),
		mcp.WithString("targetName",
			mcp.Description("Name of the person to meet"),
		),
		mcp.WithString("targetEmail",
			mcp.Required(),
			mcp.Description("Email address of the person to meet"),
		),
		mcp.WithNumber("daysAhead",
			mcp.Description("Number of days to offer slots from (default: 7)"),
		),
		mcp.WithBoolean("useCalendar",
			mcp.Description("Offer the free slots of your calendar (default: true). "+
				"When false fixed daily times on weekdays are offered."),
		),
	)

	s.AddTool(sendTool, common.InstrumentedToolHandler("send_scheduling_email", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSendSchedulingEmail(ctx, request, sc)
		}))

	return nil
}

func handleProposeMeeting(_ context.Context, request mcp.CallToolRequest, _ *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	name := common.StringArg(args, "name")
	targetName := common.StringArg(args, "targetName")
	email := common.StringArg(args, "email")
	switch {
	case name == "":
		return common.ErrorResult("name is required", nil), nil
	case targetName == "":
		return common.ErrorResult("targetName is required", nil), nil
	case !strings.Contains(email, "@"):
		return common.ErrorResult("email must be a valid email address", nil), nil
	}

	availability, err := availabilityText(args)
	if err != nil {
		return common.ErrorResult("invalid myAvailability", err), nil
	}

	return mcp.NewToolResultText(scheduling.ComposeProposal(name, targetName, availability)), nil
}

// availabilityText renders myAvailability. Slot arrays and JSON encoded
// slot arrays become a numbered list; any other text is used verbatim.
func availabilityText(args map[string]interface{}) (string, error) {
	if text, ok := args["myAvailability"].(string); ok {
		text = strings.TrimSpace(text)
		if !strings.HasPrefix(text, "[") {
			if text == "" {
				return "", fmt.Errorf("myAvailability is required")
			}
			return text, nil
		}
	}

	slots, err := common.SlotsArg(args, "myAvailability")
	if err != nil {
		return "", err
	}
	if len(slots) == 0 {
		return "", fmt.Errorf("myAvailability has no slots")
	}
	return scheduling.FormatSlotList(slots), nil
}

func handleSendSchedulingEmail(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	settings := sc.Settings()
	account := common.GetAccountFromArgs(args, settings.DefaultAccount)

	targetEmail := common.StringArg(args, "targetEmail")
	if !strings.Contains(targetEmail, "@") {
		return common.ErrorResult("targetEmail must be a valid email address", nil), nil
	}
	senderName := common.StringArg(args, "senderName")
	if senderName == "" {
		senderName = settings.SenderName
	}

	days, err := common.IntArg(args, "daysAhead", settings.DaysAhead)
	if err != nil {
		return common.ErrorResult("invalid daysAhead", err), nil
	}
	if days < 1 || days > maxDaysAhead {
		return common.ErrorResult(fmt.Sprintf("daysAhead must be between 1 and %d", maxDaysAhead), nil), nil
	}
	useCalendar := common.BoolArg(args, "useCalendar", true)

	workflow, err := sc.WorkflowForAccount(account)
	if err != nil {
		return common.ErrorResult("scheduling not available", err), nil
	}
	source, err := sc.SlotSourceForAccount(account, days, useCalendar)
	if err != nil {
		return common.ErrorResult("calendar not available", err), nil
	}

	result, err := workflow.ProposeSlots(ctx, scheduling.Proposal{
		SenderName:  senderName,
		TargetName:  common.StringArg(args, "targetName"),
		TargetEmail: targetEmail,
	}, source)
	if err != nil {
		return common.ErrorResult("failed to propose slots", err), nil
	}

	metrics := sc.Metrics()
	if result.RequestID != "" {
		metrics.RecordSlotsOffered(ctx, result.SlotsOffered)
		if result.Delivered {
			metrics.RecordSchedulingEvent(ctx, instrumentation.EventProposed)
		} else {
			metrics.RecordSchedulingEvent(ctx, instrumentation.EventProposalUndelivered)
		}
	}

	if result.Status == scheduling.ResultError {
		return common.JSONErrorResult(result), nil
	}
	return common.JSONResult(result)
}
