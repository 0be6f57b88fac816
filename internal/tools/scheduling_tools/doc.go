// Package scheduling_tools provides the MCP tools of the email scheduling
// workflow.
//
// A caller composes or sends a proposal of free slots to a contact
// (propose_meeting, send_scheduling_email), records the slot the contact
// picked (reply_scheduling_email), which sends a confirmation with a
// calendar invite and saves the meeting, and inspects the requests kept
// by the server (scheduling_get_request, scheduling_list_requests).
//
// Requests live in memory for the lifetime of the server process.
package scheduling_tools
