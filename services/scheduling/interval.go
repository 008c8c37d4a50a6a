package scheduling

import "sort"

// Interval is a time-of-day span in minutes from midnight, half-open:
// start <= t < end.
type Interval struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Overlaps reports whether two intervals share any time.
func Overlaps(a, b Interval) bool {
	return a.Start < b.End && b.Start < a.End
}

// Contains reports whether inner lies entirely within outer.
func Contains(outer, inner Interval) bool {
	return outer.Start <= inner.Start && inner.End <= outer.End
}

// MergeTouchingOrOverlapping folds a set of intervals into the minimal set
// of disjoint intervals, joining any pair that touch or overlap. Merged
// fragments shorter than minLength are dropped so unusably short windows
// are never offered. The merged view is for display only: booking
// validation runs against the unmerged per-rule intervals.
func MergeTouchingOrOverlapping(intervals []Interval, minLength int) []Interval {
	if len(intervals) == 0 {
		return nil
	}

	sorted := make([]Interval, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start == sorted[j].Start {
			return sorted[i].End < sorted[j].End
		}
		return sorted[i].Start < sorted[j].Start
	})

	merged := []Interval{sorted[0]}
	for _, next := range sorted[1:] {
		last := &merged[len(merged)-1]
		if next.Start <= last.End {
			if next.End > last.End {
				last.End = next.End
			}
			continue
		}
		merged = append(merged, next)
	}

	var out []Interval
	for _, iv := range merged {
		if iv.End-iv.Start >= minLength {
			out = append(out, iv)
		}
	}
	return out
}

// Subtract removes sub from iv, producing zero, one, or two fragments. A
// session in the middle of a free window splits it in two.
func Subtract(iv, sub Interval) []Interval {
	if !Overlaps(iv, sub) {
		return []Interval{iv}
	}

	var out []Interval
	if sub.Start > iv.Start {
		out = append(out, Interval{Start: iv.Start, End: sub.Start})
	}
	if sub.End < iv.End {
		out = append(out, Interval{Start: sub.End, End: iv.End})
	}
	return out
}

// SubtractAll removes every busy interval from every free interval.
func SubtractAll(free, busy []Interval) []Interval {
	out := free
	for _, b := range busy {
		var next []Interval
		for _, f := range out {
			next = append(next, Subtract(f, b)...)
		}
		out = next
	}
	return out
}

// TotalMinutes sums the lengths of a set of intervals.
func TotalMinutes(intervals []Interval) int {
	total := 0
	for _, iv := range intervals {
		total += iv.End - iv.Start
	}
	return total
}
