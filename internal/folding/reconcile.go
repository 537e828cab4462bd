package folding

import "slices"

// reconcileResult counts what one merge did.
type reconcileResult struct {
	kept     int
	created  int
	disposed int
}

type resolvedRegion struct {
	region *Region
	rng    Range
	ok     bool
}

// reconcile merges freshly computed ranges into the current region set and
// returns the new set, ordered by start line. ranges must be normalized.
//
// A region survives iff some range starts on the line its anchor currently
// starts on; it is then re-anchored on that range and keeps its collapsed
// state. Every other range gets a new, expanded region. Regions whose anchor
// no longer resolves, or that no range matches, are disposed.
//
// reconcile must run inside a single decoration-editing transaction.
func reconcile(ed DecorationEditor, current []*Region, ranges []Range) ([]*Region, reconcileResult) {
	var res reconcileResult

	resolved := make([]resolvedRegion, len(current))
	for i, r := range current {
		rng, ok := r.ResolvedRange(ed)
		resolved[i] = resolvedRegion{region: r, rng: rng, ok: ok}
	}
	// Anchors keep their relative order under edits, so this is normally a
	// no-op; it guards the merge against hosts that do not.
	slices.SortStableFunc(resolved, func(a, b resolvedRegion) int {
		return a.rng.StartLine - b.rng.StartLine
	})

	next := make([]*Region, 0, len(ranges))
	create := func(r Range) {
		next = append(next, newRegion(ed, r, false))
		res.created++
	}
	drop := func(r *Region) {
		r.dispose(ed)
		res.disposed++
	}

	i, k := 0, 0
	for i < len(resolved) && k < len(ranges) {
		dec := resolved[i]
		if !dec.ok {
			drop(dec.region)
			i++
			continue
		}

		for k < len(ranges) && ranges[k].StartLine < dec.rng.StartLine {
			create(ranges[k])
			k++
		}
		if k == len(ranges) {
			break
		}

		switch {
		case dec.rng.StartLine < ranges[k].StartLine:
			drop(dec.region)
			i++
		case dec.rng.StartLine == ranges[k].StartLine:
			dec.region.update(ed, ranges[k])
			next = append(next, dec.region)
			res.kept++
			i++
			k++
		}
	}

	for ; i < len(resolved); i++ {
		drop(resolved[i].region)
	}
	for ; k < len(ranges); k++ {
		create(ranges[k])
	}

	return next, res
}
