package common

// GetAccountFromArgs extracts the account name from request arguments.
// It falls back to defaultAccount when the argument is missing or empty.
func GetAccountFromArgs(args map[string]interface{}, defaultAccount string) string {
	if accountVal, ok := args["account"].(string); ok && accountVal != "" {
		return accountVal
	}
	return defaultAccount
}
