package folding

// Project derives the hidden line spans for a region set. Every collapsed
// region whose anchor resolves to [s, e] hides lines s+1..e; the header line
// stays visible. Regions that no longer resolve are skipped.
func Project(res RangeResolver, regions []*Region) []Range {
	var hidden []Range
	for _, r := range regions {
		if !r.Collapsed() {
			continue
		}
		rng, ok := r.ResolvedRange(res)
		if !ok || rng.EndLine <= rng.StartLine {
			continue
		}
		hidden = append(hidden, Range{StartLine: rng.StartLine + 1, EndLine: rng.EndLine})
	}
	return hidden
}

// IsHidden reports whether line falls inside any of the hidden spans.
func IsHidden(hidden []Range, line int) bool {
	for _, h := range hidden {
		if h.Contains(line) {
			return true
		}
	}
	return false
}
