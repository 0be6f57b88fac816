package contacts_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/schedulr/internal/contacts"
	"github.com/teemow/schedulr/internal/server"
	"github.com/teemow/schedulr/internal/tools/common"
)

type contactsPayload struct {
	Status   string             `json:"status"`
	Message  string             `json:"message"`
	Contacts []contacts.Contact `json:"contacts"`
}

// RegisterContactsTools registers contact-related tools with the MCP server
func RegisterContactsTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	getContactsTool := mcp.NewTool("get_contacts",
		mcp.WithDescription("List the contacts of the Google account with their names, email addresses and phone numbers"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("query",
			mcp.Description("Only return contacts whose name or email contains this text (case-insensitive)"),
		),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum number of contacts to return (default: all)"),
		),
	)

	s.AddTool(getContactsTool, common.InstrumentedToolHandler("get_contacts", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetContacts(ctx, request, sc)
		}))

	return nil
}

func handleGetContacts(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(args, sc.Settings().DefaultAccount)

	maxResults, err := common.IntArg(args, "maxResults", 0)
	if err != nil {
		return common.ErrorResult("invalid maxResults", err), nil
	}
	if maxResults < 0 {
		return common.ErrorResult("maxResults cannot be negative", nil), nil
	}

	client, err := sc.ContactsClientForAccount(account)
	if err != nil {
		return common.ErrorResult("contacts not available", err), nil
	}

	all, err := client.ListContacts(ctx)
	if err != nil {
		return common.ErrorResult("failed to list contacts", err), nil
	}

	matched := filterContacts(all, common.StringArg(args, "query"))
	if maxResults > 0 && len(matched) > maxResults {
		matched = matched[:maxResults]
	}

	return common.JSONResult(contactsPayload{
		Status:   common.StatusSuccess,
		Message:  fmt.Sprintf("Found %d contact(s)", len(matched)),
		Contacts: matched,
	})
}

func filterContacts(all []contacts.Contact, query string) []contacts.Contact {
	if query == "" {
		return all
	}
	query = strings.ToLower(query)
	matched := make([]contacts.Contact, 0, len(all))
	for _, c := range all {
		if strings.Contains(strings.ToLower(c.Name), query) || strings.Contains(strings.ToLower(c.Email), query) {
			matched = append(matched, c)
		}
	}
	return matched
}
