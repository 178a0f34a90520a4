package availability

import (
	"sort"
	"time"
)

// Interval is a half-open [Start, End) time span.
type Interval struct {
	Start time.Time
	End   time.Time
}

func (iv Interval) Empty() bool {
	return !iv.End.After(iv.Start)
}

// Overlaps reports whether the two spans share any time. An empty
// interval overlaps nothing.
func (iv Interval) Overlaps(other Interval) bool {
	if iv.Empty() || other.Empty() {
		return false
	}
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// Subtract removes busy spans from a window and returns the remaining free
// intervals in order. Partial overlaps clip the window: a busy span cuts
// out exactly the intersecting part, splitting the window when it lands in
// the middle.
func Subtract(window Interval, busy []Interval) []Interval {
	if window.Empty() {
		return nil
	}

	sorted := make([]Interval, 0, len(busy))
	for _, b := range busy {
		if b.Overlaps(window) {
			sorted = append(sorted, b)
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	free := []Interval{}
	cursor := window.Start
	for _, b := range sorted {
		if b.Start.After(cursor) {
			free = append(free, Interval{Start: cursor, End: minTime(b.Start, window.End)})
		}
		if b.End.After(cursor) {
			cursor = b.End
		}
		if !cursor.Before(window.End) {
			return free
		}
	}

	if cursor.Before(window.End) {
		free = append(free, Interval{Start: cursor, End: window.End})
	}

	return free
}

// CapacityInterval is a free span with the number of occupancy units still
// open across its whole length.
type CapacityInterval struct {
	Interval
	Remaining int
}

// FreeCapacity sweeps the window against overlapping occupancies and
// returns the spans where occupancy stays below capacity, each annotated
// with the units remaining. Adjacent spans with equal remaining capacity
// are merged.
func FreeCapacity(window Interval, busy []Interval, capacity int) []CapacityInterval {
	if window.Empty() || capacity <= 0 {
		return nil
	}

	if capacity == 1 {
		out := []CapacityInterval{}
		for _, f := range Subtract(window, busy) {
			out = append(out, CapacityInterval{Interval: f, Remaining: 1})
		}
		return out
	}

	// Boundary sweep: occupancy only changes at interval edges clipped to
	// the window.
	boundaries := []time.Time{window.Start, window.End}
	relevant := make([]Interval, 0, len(busy))
	for _, b := range busy {
		if !b.Overlaps(window) {
			continue
		}
		relevant = append(relevant, b)
		boundaries = append(boundaries, clampTime(b.Start, window), clampTime(b.End, window))
	}

	sort.Slice(boundaries, func(i, j int) bool { return boundaries[i].Before(boundaries[j]) })

	out := []CapacityInterval{}
	for i := 0; i < len(boundaries)-1; i++ {
		seg := Interval{Start: boundaries[i], End: boundaries[i+1]}
		if seg.Empty() {
			continue
		}

		occupied := 0
		for _, b := range relevant {
			if b.Overlaps(seg) {
				occupied++
			}
		}

		remaining := capacity - occupied
		if remaining <= 0 {
			continue
		}

		if n := len(out); n > 0 && out[n-1].Remaining == remaining && out[n-1].End.Equal(seg.Start) {
			out[n-1].End = seg.End
			continue
		}
		out = append(out, CapacityInterval{Interval: seg, Remaining: remaining})
	}

	return out
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func clampTime(t time.Time, window Interval) time.Time {
	if t.Before(window.Start) {
		return window.Start
	}
	if t.After(window.End) {
		return window.End
	}
	return t
}
