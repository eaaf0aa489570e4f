package structure

import "sort"

type rangeKind int

const (
	kindText rangeKind = iota
	kindTitle
	kindSection
	kindTable
)

// taggedRange is a claimed run of characters [start, end).
// For tables, emit is set on the range that closes the table.
type taggedRange struct {
	start int
	end   int
	kind  rangeKind
	table int
	emit  bool
}

// arena holds non-overlapping claimed ranges sorted by start offset.
type arena struct {
	ranges []taggedRange
}

// find returns the index of the first range whose end is past off.
func (a *arena) find(off int) int {
	return sort.Search(len(a.ranges), func(i int) bool { return a.ranges[i].end > off })
}

// claimed reports whether off falls inside any range.
func (a *arena) claimed(off int) bool {
	i := a.find(off)
	return i < len(a.ranges) && a.ranges[i].start <= off
}

// limitAfter returns the start of the first claimed range beginning after off, or max.
func (a *arena) limitAfter(off, max int) int {
	i := a.find(off)
	if i < len(a.ranges) && a.ranges[i].start > off && a.ranges[i].start < max {
		return a.ranges[i].start
	}
	return max
}

// carve releases [start, end) from every range it intersects. A range straddling
// either edge keeps the part outside; a range inside is removed.
func (a *arena) carve(start, end int) {
	out := make([]taggedRange, 0, len(a.ranges)+1)
	for _, r := range a.ranges {
		if r.end <= start || r.start >= end {
			out = append(out, r)
			continue
		}
		if r.start < start {
			left := r
			left.end = start
			out = append(out, left)
		}
		if r.end > end {
			right := r
			right.start = end
			out = append(out, right)
		}
	}
	a.ranges = out
}

// markTableEnds moves emit to the last surviving range of every table.
func (a *arena) markTableEnds() {
	seen := make(map[int]bool)
	for i := len(a.ranges) - 1; i >= 0; i-- {
		r := &a.ranges[i]
		if r.kind != kindTable {
			continue
		}
		r.emit = !seen[r.table]
		seen[r.table] = true
	}
}

// insert adds r. The caller guarantees r does not overlap an existing range.
func (a *arena) insert(r taggedRange) {
	i := sort.Search(len(a.ranges), func(i int) bool { return a.ranges[i].start > r.start })
	a.ranges = append(a.ranges, taggedRange{})
	copy(a.ranges[i+1:], a.ranges[i:])
	a.ranges[i] = r
}
