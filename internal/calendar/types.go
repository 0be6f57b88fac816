package calendar

import (
	"time"

	calendar "google.golang.org/api/calendar/v3"

	"github.com/teemow/schedulr/internal/interval"
)

// EventInput represents the input for creating a calendar event
type EventInput struct {
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	TimeZone    string
	Attendees   []string

	// SendUpdates is passed to the insert call: "all", "externalOnly" or "none".
	SendUpdates string
}

// EventSummary represents a created calendar event
type EventSummary struct {
	ID        string
	Summary   string
	Start     time.Time
	End       time.Time
	Organizer string
	Status    string
	HTMLLink  string
	Attendees []string
}

// CalendarInfo represents information about a calendar
type CalendarInfo struct {
	ID         string
	Summary    string
	TimeZone   string
	Primary    bool
	AccessRole string // "owner", "writer", "reader", "freeBusyReader"
}

// FreeBusyInfo represents availability information for a calendar
type FreeBusyInfo struct {
	Calendar string
	Busy     []interval.Interval
	Errors   []string
}

func parseEventTime(dt *calendar.EventDateTime) time.Time {
	if dt == nil {
		return time.Time{}
	}
	if dt.DateTime != "" {
		if t, err := interval.ParseTimestamp(dt.DateTime); err == nil {
			return t
		}
	}
	if dt.Date != "" {
		if t, err := time.Parse(time.DateOnly, dt.Date); err == nil {
			return t
		}
	}
	return time.Time{}
}

// toEventSummary converts a Google Calendar event to an EventSummary
func toEventSummary(event *calendar.Event) EventSummary {
	if event == nil {
		return EventSummary{}
	}

	summary := EventSummary{
		ID:       event.Id,
		Summary:  event.Summary,
		Status:   event.Status,
		HTMLLink: event.HtmlLink,
		Start:    parseEventTime(event.Start),
		End:      parseEventTime(event.End),
	}
	if event.Organizer != nil {
		summary.Organizer = event.Organizer.Email
	}
	for _, att := range event.Attendees {
		summary.Attendees = append(summary.Attendees, att.Email)
	}

	return summary
}

// toCalendarInfo converts a Google Calendar list entry to CalendarInfo
func toCalendarInfo(entry *calendar.CalendarListEntry) CalendarInfo {
	if entry == nil {
		return CalendarInfo{}
	}
	return CalendarInfo{
		ID:         entry.Id,
		Summary:    entry.Summary,
		TimeZone:   entry.TimeZone,
		Primary:    entry.Primary,
		AccessRole: entry.AccessRole,
	}
}
