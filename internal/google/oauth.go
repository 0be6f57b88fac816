package google

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
)

// Credentials identify the OAuth client the tokens were issued to.
// They are only needed to refresh expired access tokens.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// OAuthConfig returns the OAuth2 configuration for the Google APIs schedulr uses.
func OAuthConfig(creds Credentials) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint:     googleoauth.Endpoint,
		Scopes:       Scopes,
	}
}

// TokenSource returns a token source for token. With client credentials and a
// refresh token the source refreshes itself, otherwise it is static.
func TokenSource(ctx context.Context, creds Credentials, token *oauth2.Token) oauth2.TokenSource {
	if creds.ClientID != "" && token.RefreshToken != "" {
		return OAuthConfig(creds).TokenSource(ctx, token)
	}
	return oauth2.StaticTokenSource(token)
}

// HTTPClient returns an authenticated HTTP client for account.
// The client is configured to use HTTP/1.1 to avoid HTTP/2 protocol errors.
func HTTPClient(ctx context.Context, provider TokenProvider, creds Credentials, account string) (*http.Client, error) {
	if provider == nil {
		return nil, fmt.Errorf("token provider cannot be nil")
	}

	token, err := provider.GetTokenForAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to get Google OAuth token for account %s: %w", account, err)
	}

	client := oauth2.NewClient(ctx, TokenSource(ctx, creds, token))
	if transport, ok := client.Transport.(*oauth2.Transport); ok {
		transport.Base = &http.Transport{
			Proxy:             http.ProxyFromEnvironment,
			ForceAttemptHTTP2: false,
		}
	}
	return client, nil
}

// AuthenticationErrorMessage explains how to provide a token for account.
func AuthenticationErrorMessage(account string) string {
	return fmt.Sprintf("Google OAuth token not found for account %q. "+
		"Write an OAuth token JSON file to %s or set SCHEDULR_GOOGLE_ACCESS_TOKEN / SCHEDULR_GOOGLE_REFRESH_TOKEN.",
		account, "google-"+account+".token")
}
