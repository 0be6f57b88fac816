package calendar_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/schedulr/internal/interval"
	"github.com/teemow/schedulr/internal/scheduling"
	"github.com/teemow/schedulr/internal/server"
	"github.com/teemow/schedulr/internal/tools/common"
)

type calendarView struct {
	ID         string `json:"id"`
	Summary    string `json:"summary"`
	TimeZone   string `json:"timeZone,omitempty"`
	Primary    bool   `json:"primary"`
	AccessRole string `json:"accessRole,omitempty"`
}

type freeBusyView struct {
	Calendar string          `json:"calendar"`
	Busy     []interval.Slot `json:"busy"`
	Errors   []string        `json:"errors,omitempty"`
}

// RegisterCalendarListTools registers calendar_list and calendar_query_freebusy.
func RegisterCalendarListTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	listCalendarsTool := mcp.NewTool("calendar_list",
		mcp.WithDescription("List the calendars whose busy time is taken into account"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
	)

	s.AddTool(listCalendarsTool, common.InstrumentedToolHandler("calendar_list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListCalendars(ctx, request, sc)
		}))

	queryFreeBusyTool := mcp.NewTool("calendar_query_freebusy",
		mcp.WithDescription("Check the busy periods of one or more calendars in a time range"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("timeMin",
			mcp.Required(),
			mcp.Description("Start of the range (ISO-8601, e.g. '2025-01-01T00:00:00Z')"),
		),
		mcp.WithString("timeMax",
			mcp.Required(),
			mcp.Description("End of the range (ISO-8601)"),
		),
		mcp.WithString("calendars",
			mcp.Description("Comma-separated calendar IDs or email addresses (default: 'primary')"),
		),
	)

	s.AddTool(queryFreeBusyTool, common.InstrumentedToolHandler("calendar_query_freebusy", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleQueryFreeBusy(ctx, request, sc)
		}))

	return nil
}

func handleListCalendars(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	account := common.GetAccountFromArgs(request.GetArguments(), sc.Settings().DefaultAccount)

	client, err := sc.CalendarClientForAccount(account)
	if err != nil {
		return common.ErrorResult("calendar not available", err), nil
	}

	calendars, err := client.ListCalendars(ctx)
	if err != nil {
		return common.ErrorResult("failed to list calendars", fmt.Errorf("%w: %w", scheduling.ErrUpstream, err)), nil
	}

	views := make([]calendarView, 0, len(calendars))
	for _, c := range calendars {
		views = append(views, calendarView{
			ID:         c.ID,
			Summary:    c.Summary,
			TimeZone:   c.TimeZone,
			Primary:    c.Primary,
			AccessRole: c.AccessRole,
		})
	}
	return common.JSONResult(views)
}

func handleQueryFreeBusy(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(args, sc.Settings().DefaultAccount)

	window, err := interval.Parse(common.StringArg(args, "timeMin"), common.StringArg(args, "timeMax"))
	if err != nil {
		return common.ErrorResult("invalid time range", err), nil
	}

	var calendars []string
	for _, id := range strings.Split(common.StringArg(args, "calendars"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			calendars = append(calendars, id)
		}
	}
	if len(calendars) == 0 {
		calendars = []string{"primary"}
	}

	client, err := sc.CalendarClientForAccount(account)
	if err != nil {
		return common.ErrorResult("calendar not available", err), nil
	}

	infos, err := client.QueryFreeBusy(ctx, window.Start, window.End, calendars)
	if err != nil {
		return common.ErrorResult("failed to query free/busy", fmt.Errorf("%w: %w", scheduling.ErrUpstream, err)), nil
	}

	views := make([]freeBusyView, 0, len(infos))
	for _, info := range infos {
		views = append(views, freeBusyView{
			Calendar: info.Calendar,
			Busy:     interval.ToWire(info.Busy),
			Errors:   info.Errors,
		})
	}
	return common.JSONResult(views)
}
