// Package interval implements the time interval algebra behind schedulr.
//
// It merges busy intervals with a gap tolerance, derives free intervals
// inside a bounding window and intersects two availability sets. The
// functions are pure: they never fail on well-formed input and never
// mutate the slices they are given. Input validation (start after end,
// unparsable timestamps) happens at the wire boundary in Parse and FromWire.
//
// Example usage:
//
//	busy := []interval.Interval{{Start: nine, End: ten}}
//	free := interval.Free(busy, eight, noon, interval.DefaultMinGap)
//	usable := interval.AtLeast(free, interval.DefaultMinGap)
package interval
