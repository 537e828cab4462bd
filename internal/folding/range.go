package folding

import (
	"fmt"
	"slices"
)

// Range is a span of 1-based buffer lines, both ends inclusive.
// A foldable range has StartLine < EndLine; the same type also describes
// hidden spans and decoration spans where StartLine may equal EndLine.
type Range struct {
	StartLine int
	EndLine   int
}

// String returns a human-readable representation of the range.
func (r Range) String() string {
	return fmt.Sprintf("[%d-%d]", r.StartLine, r.EndLine)
}

// Foldable reports whether the range can be collapsed: it must span at
// least two lines and start on line 1 or later.
func (r Range) Foldable() bool {
	return r.StartLine >= 1 && r.StartLine < r.EndLine
}

// Contains reports whether line lies within the range.
func (r Range) Contains(line int) bool {
	return line >= r.StartLine && line <= r.EndLine
}

// SortRanges orders ranges by start line, keeping the input order of
// ranges that share a start line.
func SortRanges(ranges []Range) {
	slices.SortStableFunc(ranges, func(a, b Range) int {
		return a.StartLine - b.StartLine
	})
}

// normalizeRanges prepares provider output for a merge: it drops ranges that
// are not foldable or that end past lineCount, sorts by start line, and keeps
// only the first range for each start line.
func normalizeRanges(ranges []Range, lineCount int) []Range {
	out := make([]Range, 0, len(ranges))
	for _, r := range ranges {
		if r.Foldable() && r.EndLine <= lineCount {
			out = append(out, r)
		}
	}
	SortRanges(out)
	return slices.CompactFunc(out, func(a, b Range) bool {
		return a.StartLine == b.StartLine
	})
}
