package scheduling_tools

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/schedulr/internal/interval"
	"github.com/teemow/schedulr/internal/scheduling"
	"github.com/teemow/schedulr/internal/server"
	"github.com/teemow/schedulr/internal/tools/common"
)

// requestView is the JSON form of a scheduling request.
type requestView struct {
	ID           string          `json:"requestId"`
	TargetEmail  string          `json:"targetEmail"`
	TargetName   string          `json:"targetName,omitempty"`
	SenderName   string          `json:"senderName,omitempty"`
	Status       string          `json:"status"`
	OfferedSlots []interval.Slot `json:"offeredSlots"`
	SelectedSlot *interval.Slot  `json:"selectedSlot,omitempty"`
	CreatedAt    string          `json:"createdAt"`
	Persisted    bool            `json:"persisted"`
}

func toRequestView(r scheduling.Request) requestView {
	v := requestView{
		ID:           r.ID,
		TargetEmail:  r.TargetEmail,
		TargetName:   r.TargetName,
		SenderName:   r.SenderName,
		Status:       string(r.Status),
		OfferedSlots: interval.ToWire(r.OfferedSlots),
		CreatedAt:    r.CreatedAt.UTC().Format(time.RFC3339),
		Persisted:    r.Persisted,
	}
	if r.SelectedSlot != nil {
		slot := interval.ToWire([]interval.Interval{*r.SelectedSlot})[0]
		v.SelectedSlot = &slot
	}
	return v
}

type requestListPayload struct {
	Status   string        `json:"status"`
	Message  string        `json:"message"`
	Requests []requestView `json:"requests"`
}

// RegisterRequestTools registers scheduling_get_request and scheduling_list_requests.
func RegisterRequestTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	getRequestTool := mcp.NewTool("scheduling_get_request",
		mcp.WithDescription("Get a scheduling request with its offered slots and status"),
		mcp.WithString("requestId",
			mcp.Required(),
			mcp.Description("ID returned by send_scheduling_email"),
		),
	)

	s.AddTool(getRequestTool, common.InstrumentedToolHandler("scheduling_get_request", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetRequest(ctx, request, sc)
		}))

	listRequestsTool := mcp.NewTool("scheduling_list_requests",
		mcp.WithDescription("List the scheduling requests of this server, oldest first"),
		mcp.WithString("status",
			mcp.Description("Only list requests in this state"),
			mcp.Enum(string(scheduling.StatusPending), string(scheduling.StatusScheduled), string(scheduling.StatusError)),
		),
	)

	s.AddTool(listRequestsTool, common.InstrumentedToolHandler("scheduling_list_requests", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListRequests(ctx, request, sc)
		}))

	return nil
}

func handleGetRequest(_ context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	requestID := common.StringArg(request.GetArguments(), "requestId")
	if requestID == "" {
		return common.ErrorResult("requestId is required", nil), nil
	}

	req, err := sc.Store().Get(requestID)
	if err != nil {
		return common.ErrorResult("failed to get request", err), nil
	}
	return common.JSONResult(toRequestView(req))
}

func handleListRequests(_ context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	status := scheduling.Status(common.StringArg(request.GetArguments(), "status"))
	switch status {
	case "", scheduling.StatusPending, scheduling.StatusScheduled, scheduling.StatusError:
	default:
		return common.ErrorResult(fmt.Sprintf("unknown status %q", status), nil), nil
	}

	views := make([]requestView, 0)
	for _, r := range sc.Store().List() {
		if status != "" && r.Status != status {
			continue
		}
		views = append(views, toRequestView(r))
	}

	return common.JSONResult(requestListPayload{
		Status:   common.StatusSuccess,
		Message:  fmt.Sprintf("Found %d request(s)", len(views)),
		Requests: views,
	})
}
