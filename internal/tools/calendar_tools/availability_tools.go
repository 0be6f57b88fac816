package calendar_tools

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/schedulr/internal/interval"
	"github.com/teemow/schedulr/internal/server"
	"github.com/teemow/schedulr/internal/tools/common"
)

// maxDaysAhead bounds the lookahead window of get_free_slots.
const maxDaysAhead = 60

// slotsPayload is the result of the availability tools.
type slotsPayload struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Slots   []interval.Slot `json:"slots"`
}

// RegisterAvailabilityTools registers get_free_slots and find_common_availability.
func RegisterAvailabilityTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	getFreeSlotsTool := mcp.NewTool("get_free_slots",
		mcp.WithDescription("Get the free time slots of the calendar over the next days. "+
			"Slots shorter than the minimum slot size are left out."),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithNumber("daysAhead",
			mcp.Description("Number of days to look ahead (default: 7)"),
		),
	)

	s.AddTool(getFreeSlotsTool, common.InstrumentedToolHandler("get_free_slots", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetFreeSlots(ctx, request, sc)
		}))

	slotSchema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"start": map[string]any{"type": "string", "description": "Slot start (ISO-8601)"},
			"end":   map[string]any{"type": "string", "description": "Slot end (ISO-8601)"},
		},
		"required": []string{"start", "end"},
	}

	findCommonTool := mcp.NewTool("find_common_availability",
		mcp.WithDescription("Find the time slots in which both parties are available"),
		mcp.WithArray("myAvailability",
			mcp.Required(),
			mcp.Description("Your available slots"),
			mcp.Items(slotSchema),
		),
		mcp.WithArray("friendAvailability",
			mcp.Required(),
			mcp.Description("The other party's available slots"),
			mcp.Items(slotSchema),
		),
		mcp.WithNumber("minMinutes",
			mcp.Description("Drop common slots shorter than this many minutes (default: 0, keep all)"),
		),
	)

	s.AddTool(findCommonTool, common.InstrumentedToolHandler("find_common_availability", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleFindCommonAvailability(ctx, request, sc)
		}))

	return nil
}

func handleGetFreeSlots(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(args, sc.Settings().DefaultAccount)

	days, err := common.IntArg(args, "daysAhead", sc.Settings().DaysAhead)
	if err != nil {
		return common.ErrorResult("invalid daysAhead", err), nil
	}
	if days < 1 || days > maxDaysAhead {
		return common.ErrorResult(fmt.Sprintf("daysAhead must be between 1 and %d", maxDaysAhead), nil), nil
	}

	source, err := sc.SlotSourceForAccount(account, days, true)
	if err != nil {
		return common.ErrorResult("calendar not available", err), nil
	}

	slots, err := source(ctx)
	if err != nil {
		return common.ErrorResult("failed to compute free slots", err), nil
	}

	return common.JSONResult(slotsPayload{
		Status:  common.StatusSuccess,
		Message: fmt.Sprintf("Found %d free slot(s) in the next %d day(s)", len(slots), days),
		Slots:   interval.ToWire(slots),
	})
}

func handleFindCommonAvailability(_ context.Context, request mcp.CallToolRequest, _ *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	mine, err := common.SlotsArg(args, "myAvailability")
	if err != nil {
		return common.ErrorResult("invalid myAvailability", err), nil
	}
	theirs, err := common.SlotsArg(args, "friendAvailability")
	if err != nil {
		return common.ErrorResult("invalid friendAvailability", err), nil
	}
	minMinutes, err := common.IntArg(args, "minMinutes", 0)
	if err != nil {
		return common.ErrorResult("invalid minMinutes", err), nil
	}
	if minMinutes < 0 {
		return common.ErrorResult("minMinutes cannot be negative", nil), nil
	}

	overlap := interval.Intersect(mine, theirs)
	if minMinutes > 0 {
		overlap = interval.AtLeast(overlap, time.Duration(minMinutes)*time.Minute)
	}

	msg := fmt.Sprintf("Found %d common slot(s)", len(overlap))
	if len(overlap) == 0 {
		msg = "No common availability found"
	}
	return common.JSONResult(slotsPayload{
		Status:  common.StatusSuccess,
		Message: msg,
		Slots:   interval.ToWire(overlap),
	})
}
