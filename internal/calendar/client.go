package calendar

import (
	"context"
	"fmt"
	"sort"
	"time"

	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/teemow/schedulr/internal/instrumentation"
	"github.com/teemow/schedulr/internal/interval"
	"github.com/teemow/schedulr/internal/scheduling"
)

// PrimaryCalendarID addresses the account's primary calendar.
const PrimaryCalendarID = "primary"

// Client wraps the Google Calendar service
type Client struct {
	svc     *calendar.Service
	account string // The account this client is associated with
	metrics *instrumentation.Metrics
}

// Account returns the account name this client is associated with
func (c *Client) Account() string {
	return c.account
}

// NewClient creates a Calendar client for account. opts are passed to the
// Google API client and must carry the authenticated HTTP client.
// metrics may be nil.
func NewClient(ctx context.Context, account string, metrics *instrumentation.Metrics, opts ...option.ClientOption) (*Client, error) {
	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	return &Client{
		svc:     svc,
		account: account,
		metrics: metrics,
	}, nil
}

// ListCalendars lists all calendars accessible to the user
func (c *Client) ListCalendars(ctx context.Context) ([]CalendarInfo, error) {
	ctx, done := instrumentation.TrackGoogleAPI(ctx, c.metrics, instrumentation.ServiceCalendar, instrumentation.OperationList)

	var calendars []CalendarInfo
	err := c.svc.CalendarList.List().Pages(ctx, func(list *calendar.CalendarList) error {
		for _, entry := range list.Items {
			calendars = append(calendars, toCalendarInfo(entry))
		}
		return nil
	})
	done(err)
	if err != nil {
		return nil, fmt.Errorf("failed to list calendars: %w", err)
	}

	return calendars, nil
}

// QueryFreeBusy checks availability for calendars in a time range.
// Results are ordered by calendar ID.
func (c *Client) QueryFreeBusy(ctx context.Context, timeMin, timeMax time.Time, calendarIDs []string) ([]FreeBusyInfo, error) {
	items := make([]*calendar.FreeBusyRequestItem, len(calendarIDs))
	for i, id := range calendarIDs {
		items[i] = &calendar.FreeBusyRequestItem{Id: id}
	}

	query := &calendar.FreeBusyRequest{
		TimeMin: interval.FormatTimestamp(timeMin),
		TimeMax: interval.FormatTimestamp(timeMax),
		Items:   items,
	}

	ctx, done := instrumentation.TrackGoogleAPI(ctx, c.metrics, instrumentation.ServiceCalendar, instrumentation.OperationFreeBusy)
	result, err := c.svc.Freebusy.Query(query).Context(ctx).Do()
	done(err)
	if err != nil {
		return nil, fmt.Errorf("failed to query freebusy: %w", err)
	}

	infos := make([]FreeBusyInfo, 0, len(result.Calendars))
	for calID, cal := range result.Calendars {
		info := FreeBusyInfo{Calendar: calID}

		for _, busy := range cal.Busy {
			iv, err := interval.Parse(busy.Start, busy.End)
			if err != nil {
				return nil, fmt.Errorf("calendar %s returned a malformed busy period: %w", calID, err)
			}
			info.Busy = append(info.Busy, iv)
		}

		for _, e := range cal.Errors {
			info.Errors = append(info.Errors, e.Reason)
		}

		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Calendar < infos[j].Calendar })

	return infos, nil
}

// BusyIntervals returns the busy periods of every calendar of the account
// between timeMin and timeMax, flattened into one list. A calendar the
// free/busy query could not answer for fails the whole call.
func (c *Client) BusyIntervals(ctx context.Context, timeMin, timeMax time.Time) ([]interval.Interval, error) {
	calendars, err := c.ListCalendars(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", scheduling.ErrUpstream, err)
	}
	if len(calendars) == 0 {
		return []interval.Interval{}, nil
	}

	ids := make([]string, len(calendars))
	for i, cal := range calendars {
		ids[i] = cal.ID
	}

	infos, err := c.QueryFreeBusy(ctx, timeMin, timeMax, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", scheduling.ErrUpstream, err)
	}

	busy := make([]interval.Interval, 0)
	for _, info := range infos {
		if len(info.Errors) > 0 {
			return nil, fmt.Errorf("%w: free/busy for calendar %s failed: %v", scheduling.ErrUpstream, info.Calendar, info.Errors)
		}
		busy = append(busy, info.Busy...)
	}
	return busy, nil
}

// CreateEvent inserts an event into calendarID. Times are written in UTC
// unless input names a time zone.
func (c *Client) CreateEvent(ctx context.Context, calendarID string, input EventInput) (*EventSummary, error) {
	if err := interval.New(input.Start, input.End).Validate(); err != nil {
		return nil, err
	}

	tz := input.TimeZone
	if tz == "" {
		tz = "UTC"
	}
	event := &calendar.Event{
		Summary:     input.Summary,
		Description: input.Description,
		Location:    input.Location,
		Start: &calendar.EventDateTime{
			DateTime: input.Start.UTC().Format(time.RFC3339),
			TimeZone: tz,
		},
		End: &calendar.EventDateTime{
			DateTime: input.End.UTC().Format(time.RFC3339),
			TimeZone: tz,
		},
	}

	for _, email := range input.Attendees {
		event.Attendees = append(event.Attendees, &calendar.EventAttendee{Email: email})
	}

	call := c.svc.Events.Insert(calendarID, event)
	if input.SendUpdates != "" {
		call = call.SendUpdates(input.SendUpdates)
	}

	ctx, done := instrumentation.TrackGoogleAPI(ctx, c.metrics, instrumentation.ServiceCalendar, instrumentation.OperationInsert)
	created, err := call.Context(ctx).Do()
	done(err)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	summary := toEventSummary(created)
	return &summary, nil
}
