package interval

import (
	"fmt"
	"strings"
	"time"
)

// Slot is the JSON representation of an interval exchanged with MCP clients.
type Slot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// timestampLayouts are tried in order. Layouts without an offset are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseTimestamp parses an ISO-8601 timestamp.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("timestamp is empty")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q: expected ISO-8601 (e.g. 2025-01-15T14:00:00Z)", s)
}

// FormatTimestamp renders t the way slots are returned to clients.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// Parse builds a validated interval from two ISO-8601 timestamps.
func Parse(start, end string) (Interval, error) {
	s, err := ParseTimestamp(start)
	if err != nil {
		return Interval{}, fmt.Errorf("invalid start: %w", err)
	}
	e, err := ParseTimestamp(end)
	if err != nil {
		return Interval{}, fmt.Errorf("invalid end: %w", err)
	}
	i := Interval{Start: s, End: e}
	if err := i.Validate(); err != nil {
		return Interval{}, err
	}
	return i, nil
}

// FromWire converts client supplied slots, rejecting the first malformed one.
func FromWire(slots []Slot) ([]Interval, error) {
	out := make([]Interval, 0, len(slots))
	for idx, s := range slots {
		i, err := Parse(s.Start, s.End)
		if err != nil {
			return nil, fmt.Errorf("slot %d: %w", idx, err)
		}
		out = append(out, i)
	}
	return out, nil
}

// ToWire converts intervals to their JSON representation.
func ToWire(intervals []Interval) []Slot {
	out := make([]Slot, 0, len(intervals))
	for _, i := range intervals {
		out = append(out, Slot{Start: FormatTimestamp(i.Start), End: FormatTimestamp(i.End)})
	}
	return out
}
