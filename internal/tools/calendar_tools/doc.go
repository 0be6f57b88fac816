// Package calendar_tools provides the MCP tools that work on availability:
// free slots from the Google Calendar of an account, the overlap of two
// people's availability, and saving a confirmed meeting to the calendar.
//
// The calendar_list and calendar_query_freebusy tools expose the raw
// calendar data the free slot computation is based on.
package calendar_tools
