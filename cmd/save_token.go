package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/teemow/schedulr/internal/google"
	"github.com/teemow/schedulr/internal/logging"
)

func newSaveTokenCmd() *cobra.Command {
	var (
		account      string
		tokenDir     string
		accessToken  string
		refreshToken string
		expiresIn    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "save-token",
		Short: "Store a Google OAuth token for an account",
		Long: `Store a Google OAuth token as <token-dir>/google-<account>.token so that
serve picks it up for the account.

The token needs the Calendar, Contacts (read only) and Gmail send scopes.
Pass a refresh token together with --google-client-id and
--google-client-secret on serve to let the server refresh it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			provider := google.NewFileTokenProvider(tokenDir)
			return saveToken(cmd.OutOrStdout(), provider, account, accessToken, refreshToken, expiresIn, time.Now())
		},
	}

	f := cmd.Flags()
	f.StringVar(&account, "account", google.DefaultAccount, "Account the token belongs to")
	f.StringVar(&tokenDir, "token-dir", "", "Directory holding google-<account>.token files (default: user cache dir)")
	f.StringVar(&accessToken, "access-token", "", "Google OAuth access token")
	f.StringVar(&refreshToken, "refresh-token", "", "Google OAuth refresh token")
	f.DurationVar(&expiresIn, "expires-in", 0, "Remaining lifetime of the access token (0: unknown)")

	return cmd
}

func saveToken(w io.Writer, provider *google.FileTokenProvider, account, accessToken, refreshToken string, expiresIn time.Duration, now time.Time) error {
	if accessToken == "" && refreshToken == "" {
		return fmt.Errorf("at least one of --access-token and --refresh-token is required")
	}

	token := &oauth2.Token{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
	}
	if expiresIn > 0 {
		token.Expiry = now.Add(expiresIn).UTC()
	}

	if err := provider.SaveToken(account, token); err != nil {
		return fmt.Errorf("failed to save token for account %s: %w", account, err)
	}

	fmt.Fprintf(w, "Saved token for account %q (access %s, refresh %s)\n",
		account, logging.SanitizeToken(accessToken), logging.SanitizeToken(refreshToken))
	return nil
}
