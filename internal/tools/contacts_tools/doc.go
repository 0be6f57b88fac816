// Package contacts_tools provides the get_contacts MCP tool, listing the
// Google Contacts of an account so a caller can pick whom to schedule with.
package contacts_tools
