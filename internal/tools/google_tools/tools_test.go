package google_tools

import (
	"context"
	"testing"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/schedulr/internal/google"
	"github.com/teemow/schedulr/internal/tools/toolstest"
)

func TestRegisterGoogleTools(t *testing.T) {
	env := toolstest.NewEnv(t, nil, true)
	s := mcpserver.NewMCPServer("test", "0.0.0", mcpserver.WithToolCapabilities(true))

	require.NoError(t, RegisterGoogleTools(s, env.SC))
	assert.Contains(t, s.ListTools(), "google_account_status")
}

func TestAccountStatus(t *testing.T) {
	tests := []struct {
		name      string
		withToken bool
		account   string
		wantMsg   string
	}{
		{name: "token configured", withToken: true, wantMsg: `Account "default" is ready`},
		{name: "no token", withToken: false, account: "work", wantMsg: google.AuthenticationErrorMessage("work")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := toolstest.NewEnv(t, nil, tt.withToken)

			args := map[string]interface{}{}
			if tt.account != "" {
				args["account"] = tt.account
			}
			result, err := handleAccountStatus(context.Background(), toolstest.Request("google_account_status", args), env.SC)
			require.NoError(t, err)
			require.False(t, result.IsError)

			var status accountStatus
			toolstest.DecodeJSON(t, result, &status)
			assert.Equal(t, tt.withToken, status.TokenConfigured)
			assert.Equal(t, tt.wantMsg, status.Message)
			assert.Equal(t, google.Scopes, status.Scopes)
		})
	}
}
