package scheduling

import (
	"fmt"
	"strings"
	"time"

	"github.com/teemow/schedulr/internal/interval"
)

const (
	slotDayLayout  = "Mon, Jan 2 at 3:04 PM"
	slotTimeLayout = "3:04 PM"
)

// FormatSlot renders a slot for people, in UTC.
func FormatSlot(slot interval.Interval) string {
	return fmt.Sprintf("%s - %s UTC",
		slot.Start.UTC().Format(slotDayLayout),
		slot.End.UTC().Format(slotTimeLayout))
}

// FormatSlotList renders slots as a 1-based numbered list.
func FormatSlotList(slots []interval.Interval) string {
	var b strings.Builder
	for i, slot := range slots {
		fmt.Fprintf(&b, "%d. %s\n", i+1, FormatSlot(slot))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// ComposeProposal returns the plain text meeting proposal sent by senderName
// to targetName. availability is inserted verbatim.
func ComposeProposal(senderName, targetName, availability string) string {
	return fmt.Sprintf("Hey %s!\n\n"+
		"Would love to meet you soon! Here are my available times over the next week:\n\n"+
		"%s\n\n"+
		"Best regards,\n%s",
		targetName, availability, senderName)
}

func proposalSubject(senderName string) string {
	if senderName == "" {
		return "Meeting request"
	}
	return "Meeting request from " + senderName
}

func proposalBody(r Request) string {
	greeting := r.TargetName
	if greeting == "" {
		greeting = r.TargetEmail
	}
	return fmt.Sprintf("Hi %s,\n\n"+
		"I'd like to find a time to meet. Here are the times that work for me:\n\n"+
		"%s\n\n"+
		"Reply with the number of the slot that suits you best and I'll send a calendar invite.\n\n"+
		"Best regards,\n%s",
		greeting, FormatSlotList(r.OfferedSlots), r.SenderName)
}

func meetingTitle(r Request) string {
	switch {
	case r.SenderName != "" && r.TargetName != "":
		return fmt.Sprintf("%s / %s", r.SenderName, r.TargetName)
	case r.TargetName != "":
		return "Meeting with " + r.TargetName
	default:
		return "Meeting with " + r.TargetEmail
	}
}

func confirmationBody(r Request, meeting interval.Interval, withInvite bool) string {
	greeting := r.TargetName
	if greeting == "" {
		greeting = r.TargetEmail
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\nGreat, our meeting is confirmed for %s.\n", greeting, FormatSlot(meeting))
	if withInvite {
		b.WriteString("A calendar invite is attached.\n")
	}
	fmt.Fprintf(&b, "\nBest regards,\n%s", r.SenderName)
	return b.String()
}

// DailySlots is the fixed slot policy used when no calendar is connected.
// It offers one slot of length d at each of hours (UTC) on every weekday of
// the days following from. Weekends are skipped.
func DailySlots(from time.Time, days int, hours []int, d time.Duration) []interval.Interval {
	midnight := from.UTC().Truncate(24 * time.Hour)
	slots := make([]interval.Interval, 0, days*len(hours))
	for i := 1; i <= days; i++ {
		day := midnight.AddDate(0, 0, i)
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}
		for _, h := range hours {
			start := day.Add(time.Duration(h) * time.Hour)
			slots = append(slots, interval.New(start, start.Add(d)))
		}
	}
	return slots
}
