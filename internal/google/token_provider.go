package google

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"golang.org/x/oauth2"
)

// DefaultAccount is used when a tool call does not name an account.
const DefaultAccount = "default"

// TokenProvider is an interface for providing OAuth tokens for Google APIs.
type TokenProvider interface {
	// GetTokenForAccount retrieves an OAuth token for the specified account
	GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error)

	// HasTokenForAccount checks if a token exists for the specified account
	HasTokenForAccount(account string) bool
}

var accountNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

func validateAccountName(account string) error {
	if account == "" {
		return fmt.Errorf("account name cannot be empty")
	}
	if !accountNamePattern.MatchString(account) {
		return fmt.Errorf("invalid account name %q: only letters, digits, '-' and '_' are allowed", account)
	}
	return nil
}

// FileTokenProvider reads tokens from JSON files, one per account, named
// google-<account>.token inside dir.
type FileTokenProvider struct {
	dir string
}

// NewFileTokenProvider creates a file-based token provider rooted at dir.
// An empty dir selects DefaultTokenDir().
func NewFileTokenProvider(dir string) *FileTokenProvider {
	if dir == "" {
		dir = DefaultTokenDir()
	}
	return &FileTokenProvider{dir: dir}
}

// DefaultTokenDir returns the per-user cache directory for token files.
func DefaultTokenDir() string {
	cache, err := os.UserCacheDir()
	if err != nil {
		cache = os.TempDir()
	}
	return filepath.Join(cache, "schedulr")
}

func (p *FileTokenProvider) tokenFilePath(account string) string {
	return filepath.Join(p.dir, "google-"+account+".token")
}

// GetTokenForAccount loads the token file of account.
func (p *FileTokenProvider) GetTokenForAccount(_ context.Context, account string) (*oauth2.Token, error) {
	if err := validateAccountName(account); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(p.tokenFilePath(account))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no Google OAuth token found for account %s", account)
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token file for account %s: %w", account, err)
	}
	if token.AccessToken == "" && token.RefreshToken == "" {
		return nil, fmt.Errorf("token file for account %s holds no token", account)
	}
	return &token, nil
}

// HasTokenForAccount checks if a token file exists for the specified account.
func (p *FileTokenProvider) HasTokenForAccount(account string) bool {
	if validateAccountName(account) != nil {
		return false
	}
	_, err := os.Stat(p.tokenFilePath(account))
	return err == nil
}

// SaveToken writes token as the token file of account.
func (p *FileTokenProvider) SaveToken(account string, token *oauth2.Token) error {
	if err := validateAccountName(account); err != nil {
		return err
	}
	if err := os.MkdirAll(p.dir, 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.WriteFile(p.tokenFilePath(account), data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// StaticTokenProvider serves the same token for every account.
// It backs the access/refresh token configuration options.
type StaticTokenProvider struct {
	token *oauth2.Token
}

// NewStaticTokenProvider returns a provider for a configured token.
// At least one of accessToken and refreshToken must be set.
func NewStaticTokenProvider(accessToken, refreshToken string) (*StaticTokenProvider, error) {
	if accessToken == "" && refreshToken == "" {
		return nil, fmt.Errorf("an access token or a refresh token is required")
	}
	return &StaticTokenProvider{token: &oauth2.Token{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
	}}, nil
}

// GetTokenForAccount returns a copy of the configured token.
func (p *StaticTokenProvider) GetTokenForAccount(_ context.Context, account string) (*oauth2.Token, error) {
	if err := validateAccountName(account); err != nil {
		return nil, err
	}
	t := *p.token
	return &t, nil
}

// HasTokenForAccount reports true for every valid account name.
func (p *StaticTokenProvider) HasTokenForAccount(account string) bool {
	return validateAccountName(account) == nil
}
