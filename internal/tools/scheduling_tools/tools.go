package scheduling_tools

import (
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/schedulr/internal/server"
)

// RegisterSchedulingTools registers all scheduling workflow tools with the MCP server
func RegisterSchedulingTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if err := RegisterProposalTools(s, sc); err != nil {
		return fmt.Errorf("failed to register proposal tools: %w", err)
	}

	if err := RegisterReplyTools(s, sc); err != nil {
		return fmt.Errorf("failed to register reply tools: %w", err)
	}

	if err := RegisterRequestTools(s, sc); err != nil {
		return fmt.Errorf("failed to register request tools: %w", err)
	}

	return nil
}
