package interval

import (
	"fmt"
	"slices"
	"time"
)

// DefaultMinGap is the minimum usable slot size. Busy intervals closer
// together than this collapse into one, and free slots shorter than this
// are not offered to anyone.
const DefaultMinGap = 30 * time.Minute

// Interval is a span of time. Start must not be after End.
type Interval struct {
	Start time.Time
	End   time.Time
}

// New returns the interval [start, end).
func New(start, end time.Time) Interval {
	return Interval{Start: start, End: end}
}

// Duration returns the length of the interval.
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Validate reports whether the interval is well formed.
func (i Interval) Validate() error {
	if i.Start.After(i.End) {
		return fmt.Errorf("interval start %s is after end %s",
			i.Start.Format(time.RFC3339), i.End.Format(time.RFC3339))
	}
	return nil
}

// Overlaps reports whether the two intervals share any time.
// Touching endpoints do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// Intersection returns the overlap of the two intervals.
// The second return value is false when they do not overlap.
func (i Interval) Intersection(other Interval) (Interval, bool) {
	if !i.Overlaps(other) {
		return Interval{}, false
	}
	return Interval{
		Start: latest(i.Start, other.Start),
		End:   earliest(i.End, other.End),
	}, true
}

// Equal reports whether both endpoints denote the same instants.
func (i Interval) Equal(other Interval) bool {
	return i.Start.Equal(other.Start) && i.End.Equal(other.End)
}

// String formats the interval as "start/end" in RFC 3339.
func (i Interval) String() string {
	return i.Start.Format(time.RFC3339) + "/" + i.End.Format(time.RFC3339)
}

// Merge sorts intervals by start and collapses every pair whose gap is not
// larger than minGap. The returned slice is sorted and, for each adjacent
// pair, next.Start - cur.End > minGap. The input slice is left untouched.
func Merge(intervals []Interval, minGap time.Duration) []Interval {
	if len(intervals) == 0 {
		return []Interval{}
	}

	sorted := slices.Clone(intervals)
	slices.SortStableFunc(sorted, func(a, b Interval) int {
		return a.Start.Compare(b.Start)
	})

	merged := make([]Interval, 0, len(sorted))
	cur := sorted[0]
	for _, next := range sorted[1:] {
		if !cur.End.Add(minGap).Before(next.Start) {
			cur = Interval{
				Start: earliest(cur.Start, next.Start),
				End:   latest(cur.End, next.End),
			}
			continue
		}
		merged = append(merged, cur)
		cur = next
	}
	merged = append(merged, cur)

	return merged
}

// Free returns the parts of [windowStart, windowEnd] not covered by busy.
//
// With no busy time the whole window is returned, however short it is.
// Otherwise busy is merged with minGap and swept from windowStart. Free
// intervals are clipped to the window. Callers that present slots to a
// person should drop short ones with AtLeast.
func Free(busy []Interval, windowStart, windowEnd time.Time, minGap time.Duration) []Interval {
	if len(busy) == 0 {
		return []Interval{{Start: windowStart, End: windowEnd}}
	}

	free := make([]Interval, 0, len(busy)+1)
	cursor := windowStart
	for _, b := range Merge(busy, minGap) {
		if !cursor.Before(windowEnd) {
			break
		}
		if cursor.Before(b.Start) {
			free = append(free, Interval{Start: cursor, End: earliest(b.Start, windowEnd)})
		}
		cursor = latest(cursor, b.End)
	}
	if cursor.Before(windowEnd) {
		free = append(free, Interval{Start: cursor, End: windowEnd})
	}

	return free
}

// AtLeast returns the intervals that last at least min, in input order.
func AtLeast(intervals []Interval, min time.Duration) []Interval {
	out := make([]Interval, 0, len(intervals))
	for _, i := range intervals {
		if i.Duration() >= min {
			out = append(out, i)
		}
	}
	return out
}

// Intersect returns the overlap of every overlapping pair (a, b) from the
// two sets, iterating a in the outer loop. Results are neither sorted nor
// merged, so they may overlap each other when an input set does.
func Intersect(a, b []Interval) []Interval {
	out := make([]Interval, 0)
	for _, x := range a {
		for _, y := range b {
			if overlap, ok := x.Intersection(y); ok {
				out = append(out, overlap)
			}
		}
	}
	return out
}

func earliest(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func latest(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
