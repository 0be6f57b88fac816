// Package google_tools provides the google_account_status MCP tool, which
// reports whether a Google account is ready to be used by the scheduling
// tools.
package google_tools
