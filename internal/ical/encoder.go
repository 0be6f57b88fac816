package ical

import (
	"fmt"
	"strings"

	ics "github.com/arran4/golang-ical"

	"github.com/teemow/schedulr/internal/scheduling"
)

// DefaultProductID is the PRODID written to every invite.
const DefaultProductID = "-//teemow//schedulr//EN"

// Encoder builds single-event VCALENDAR payloads with METHOD:REQUEST.
type Encoder struct {
	productID string
}

// NewEncoder returns an Encoder. An empty productID selects DefaultProductID.
func NewEncoder(productID string) *Encoder {
	if productID == "" {
		productID = DefaultProductID
	}
	return &Encoder{productID: productID}
}

var _ scheduling.InviteEncoder = (*Encoder)(nil)

// Encode renders inv. Times are written in UTC.
func (e *Encoder) Encode(inv scheduling.Invite) ([]byte, error) {
	if inv.UID == "" {
		return nil, fmt.Errorf("invite uid is required")
	}
	if inv.Attendee == "" {
		return nil, fmt.Errorf("invite attendee is required")
	}
	if inv.End.Before(inv.Start) {
		return nil, fmt.Errorf("invite ends before it starts")
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodRequest)
	cal.SetProductId(e.productID)

	event := cal.AddEvent(inv.UID)
	event.SetDtStampTime(inv.Stamp.UTC())
	event.SetStartAt(inv.Start.UTC())
	event.SetEndAt(inv.End.UTC())
	event.SetSummary(inv.Summary)
	if inv.Organizer != "" {
		event.SetOrganizer("mailto:"+inv.Organizer, ics.WithCN(inv.Organizer))
	}
	event.AddAttendee(strings.TrimPrefix(inv.Attendee, "mailto:"), ics.WithRSVP(true))

	return []byte(cal.Serialize()), nil
}
