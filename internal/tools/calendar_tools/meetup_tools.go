package calendar_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/schedulr/internal/interval"
	"github.com/teemow/schedulr/internal/scheduling"
	"github.com/teemow/schedulr/internal/server"
	"github.com/teemow/schedulr/internal/tools/common"
)

type meetupPayload struct {
	Success       bool   `json:"success"`
	Status        string `json:"status"`
	Message       string `json:"message"`
	RequestID     string `json:"requestId,omitempty"`
	MeetingTime   string `json:"meetingTime"`
	CalendarSaved bool   `json:"calendarSaved"`
}

// RegisterMeetupTools registers save_scheduled_meetup.
func RegisterMeetupTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	saveTool := mcp.NewTool("save_scheduled_meetup",
		mcp.WithDescription("Save a confirmed meeting to the primary calendar with the other party as attendee. "+
			"When requestId names a scheduling request it is marked as persisted."),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("requestId",
			mcp.Description("Scheduling request the meeting was agreed in (optional)"),
		),
		mcp.WithString("email",
			mcp.Required(),
			mcp.Description("Email address of the other party"),
		),
		mcp.WithString("startTime",
			mcp.Required(),
			mcp.Description("Meeting start (ISO-8601, e.g. '2025-03-11T10:00:00Z')"),
		),
		mcp.WithString("endTime",
			mcp.Required(),
			mcp.Description("Meeting end (ISO-8601)"),
		),
		mcp.WithString("title",
			mcp.Description("Event title (default: 'Meeting with <email>')"),
		),
	)

	s.AddTool(saveTool, common.InstrumentedToolHandler("save_scheduled_meetup", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSaveScheduledMeetup(ctx, request, sc)
		}))

	return nil
}

func handleSaveScheduledMeetup(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(args, sc.Settings().DefaultAccount)

	email := common.StringArg(args, "email")
	if email == "" {
		return common.ErrorResult("email is required", nil), nil
	}

	meeting, err := interval.Parse(common.StringArg(args, "startTime"), common.StringArg(args, "endTime"))
	if err != nil {
		return common.ErrorResult("invalid meeting time", err), nil
	}

	title := common.StringArg(args, "title")
	if title == "" {
		title = "Meeting with " + email
	}
	requestID := common.StringArg(args, "requestId")

	workflow, err := sc.WorkflowForAccount(account)
	if err != nil {
		return common.ErrorResult("scheduling not available", err), nil
	}

	err = workflow.SaveMeeting(ctx, scheduling.Meeting{
		RequestID: requestID,
		Email:     email,
		Title:     title,
		Start:     meeting.Start,
		End:       meeting.End,
	})
	if err != nil {
		return common.ErrorResult("failed to save meeting", err), nil
	}

	return common.JSONResult(meetupPayload{
		Success:       true,
		Status:        common.StatusSuccess,
		Message:       fmt.Sprintf("Saved %q to the calendar", title),
		RequestID:     requestID,
		MeetingTime:   scheduling.FormatSlot(meeting),
		CalendarSaved: true,
	})
}
