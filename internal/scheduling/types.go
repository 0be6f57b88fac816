package scheduling

import (
	"context"
	"time"

	"github.com/teemow/schedulr/internal/interval"
)

// Status is the state of a scheduling request.
type Status string

const (
	StatusPending   Status = "pending"
	StatusScheduled Status = "scheduled"
	StatusError     Status = "error"
)

// Request is a proposal sent to one person and the reply it received.
type Request struct {
	ID           string
	TargetEmail  string
	TargetName   string
	SenderName   string
	OfferedSlots []interval.Interval
	Status       Status
	// SelectedSlot is set once the request is scheduled.
	SelectedSlot *interval.Interval
	CreatedAt    time.Time
	Persisted    bool
}

// clone returns a deep copy so callers never share memory with the store.
func (r *Request) clone() Request {
	c := *r
	c.OfferedSlots = append([]interval.Interval(nil), r.OfferedSlots...)
	if r.SelectedSlot != nil {
		s := *r.SelectedSlot
		c.SelectedSlot = &s
	}
	return c
}

// Message is an outbound notification.
type Message struct {
	To      string
	Subject string
	Body    string
	// Invite is an optional text/calendar attachment.
	Invite []byte
}

// Notifier delivers messages to people.
type Notifier interface {
	SendMessage(ctx context.Context, msg Message) error
}

// Meeting is a confirmed meeting to be recorded in a calendar.
type Meeting struct {
	RequestID string
	Email     string
	Title     string
	Start     time.Time
	End       time.Time
}

// MeetingRecorder persists confirmed meetings.
type MeetingRecorder interface {
	SaveMeeting(ctx context.Context, m Meeting) error
}

// Invite describes a single-event calendar invite.
type Invite struct {
	UID       string
	Summary   string
	Organizer string
	Attendee  string
	Start     time.Time
	End       time.Time
	Stamp     time.Time
}

// InviteEncoder turns an Invite into an attachable calendar payload.
type InviteEncoder interface {
	Encode(inv Invite) ([]byte, error)
}

// SlotSource generates candidate slots for a proposal.
type SlotSource func(ctx context.Context) ([]interval.Interval, error)

// StaticSlots returns a SlotSource that always yields slots.
func StaticSlots(slots []interval.Interval) SlotSource {
	return func(context.Context) ([]interval.Interval, error) {
		return slots, nil
	}
}

// Proposal names who proposes a meeting to whom.
type Proposal struct {
	SenderName  string
	TargetName  string
	TargetEmail string
}

// Result status values reported to tool callers.
const (
	ResultSuccess = "success"
	ResultPartial = "partial"
	ResultError   = "error"
)

// ProposalResult is the outcome of ProposeSlots.
type ProposalResult struct {
	RequestID    string          `json:"requestId,omitempty"`
	Status       string          `json:"status"`
	Message      string          `json:"message"`
	SlotsOffered int             `json:"slotsOffered"`
	Slots        []interval.Slot `json:"slots,omitempty"`
	Delivered    bool            `json:"delivered"`
}

// Confirmation is the outcome of ConfirmSlot. Delivery and persistence
// are reported independently.
type Confirmation struct {
	RequestID     string `json:"requestId"`
	Status        string `json:"status"`
	Message       string `json:"message"`
	MeetingTime   string `json:"meetingTime,omitempty"`
	EmailSent     bool   `json:"emailSent"`
	CalendarSaved bool   `json:"calendarSaved"`
}
