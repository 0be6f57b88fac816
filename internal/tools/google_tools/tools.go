package google_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/schedulr/internal/google"
	"github.com/teemow/schedulr/internal/server"
	"github.com/teemow/schedulr/internal/tools/common"
)

type accountStatus struct {
	Account         string   `json:"account"`
	TokenConfigured bool     `json:"tokenConfigured"`
	Scopes          []string `json:"scopes"`
	Message         string   `json:"message"`
}

// RegisterGoogleTools registers Google account tools with the MCP server
func RegisterGoogleTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	statusTool := mcp.NewTool("google_account_status",
		mcp.WithDescription("Check whether a Google account has a token for Calendar, Contacts and Gmail access"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
	)

	s.AddTool(statusTool, common.InstrumentedToolHandler("google_account_status", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleAccountStatus(ctx, request, sc)
		}))

	return nil
}

func handleAccountStatus(_ context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	account := common.GetAccountFromArgs(request.GetArguments(), sc.Settings().DefaultAccount)

	status := accountStatus{
		Account:         account,
		TokenConfigured: sc.HasTokenForAccount(account),
		Scopes:          google.Scopes,
	}
	if status.TokenConfigured {
		status.Message = fmt.Sprintf("Account %q is ready", account)
	} else {
		status.Message = google.AuthenticationErrorMessage(account)
	}

	return common.JSONResult(status)
}
