package common

import (
	"context"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/schedulr/internal/instrumentation"
	"github.com/teemow/schedulr/internal/tools/toolstest"
)

func TestInstrumentedToolHandler(t *testing.T) {
	tests := []struct {
		name       string
		result     *mcp.CallToolResult
		err        error
		wantStatus string
	}{
		{
			name:       "success",
			result:     mcp.NewToolResultText("ok"),
			wantStatus: instrumentation.StatusSuccess,
		},
		{
			name:       "error result",
			result:     mcp.NewToolResultError("bad input"),
			wantStatus: instrumentation.StatusError,
		},
		{
			name:       "go error",
			err:        errors.New("boom"),
			wantStatus: instrumentation.StatusError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := toolstest.NewEnv(t, nil, true)

			var gotAccount string
			handler := InstrumentedToolHandler("test_tool", env.SC,
				func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
					gotAccount = GetAccountFromArgs(request.GetArguments(), "default")
					return tt.result, tt.err
				})

			result, err := handler(context.Background(), toolstest.Request("test_tool", map[string]interface{}{
				"account": "work",
				"email":   "grace@example.com",
			}))
			if !errors.Is(err, tt.err) {
				t.Errorf("handler error = %v, want %v", err, tt.err)
			}
			if result != tt.result {
				t.Error("handler should return the wrapped result unchanged")
			}
			if gotAccount != "work" {
				t.Errorf("wrapped handler saw account %q, want %q", gotAccount, "work")
			}

			if got := env.Counter(t, "mcp_tool_invocations_total", "status", tt.wantStatus); got != 1 {
				t.Errorf("mcp_tool_invocations_total{status=%q} = %d, want 1", tt.wantStatus, got)
			}
		})
	}
}
