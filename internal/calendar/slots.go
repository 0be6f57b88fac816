package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/teemow/schedulr/internal/interval"
	"github.com/teemow/schedulr/internal/scheduling"
)

// BusySource reports busy periods in a time window. *Client implements it.
type BusySource interface {
	BusyIntervals(ctx context.Context, timeMin, timeMax time.Time) ([]interval.Interval, error)
}

// FreeSlots returns the free periods of at least minGap between now and
// now+lookahead, given the busy periods reported by src.
func FreeSlots(ctx context.Context, src BusySource, now time.Time, lookahead, minGap time.Duration) ([]interval.Interval, error) {
	if lookahead <= 0 {
		return nil, fmt.Errorf("lookahead must be positive, got %s", lookahead)
	}
	now = now.UTC()
	end := now.Add(lookahead)

	busy, err := src.BusyIntervals(ctx, now, end)
	if err != nil {
		return nil, err
	}

	return interval.AtLeast(interval.Free(busy, now, end, minGap), minGap), nil
}

// SlotSource adapts FreeSlots to a scheduling.SlotSource.
func SlotSource(src BusySource, clock func() time.Time, lookahead, minGap time.Duration) scheduling.SlotSource {
	if clock == nil {
		clock = time.Now
	}
	return func(ctx context.Context) ([]interval.Interval, error) {
		return FreeSlots(ctx, src, clock(), lookahead, minGap)
	}
}

// EventCreator inserts calendar events. *Client implements it.
type EventCreator interface {
	CreateEvent(ctx context.Context, calendarID string, input EventInput) (*EventSummary, error)
}

// Recorder saves confirmed meetings to the primary calendar.
type Recorder struct {
	events EventCreator
}

var _ scheduling.MeetingRecorder = (*Recorder)(nil)

// NewRecorder returns a Recorder writing through events.
func NewRecorder(events EventCreator) *Recorder {
	return &Recorder{events: events}
}

// SaveMeeting creates a UTC event on the primary calendar with the
// meeting's counterpart as attendee.
func (r *Recorder) SaveMeeting(ctx context.Context, m scheduling.Meeting) error {
	_, err := r.events.CreateEvent(ctx, PrimaryCalendarID, EventInput{
		Summary:   m.Title,
		Start:     m.Start.UTC(),
		End:       m.End.UTC(),
		TimeZone:  "UTC",
		Attendees: []string{m.Email},
	})
	return err
}
