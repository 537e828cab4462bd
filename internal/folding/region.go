package folding

// Region is one foldable region anchored in the buffer.
//
// The region owns two decorations: a marker on its header line that reflects
// the collapsed state, and a body spanning the whole region that serves as
// the anchor. Both grow when text is typed at their start, so inserting at
// the header keeps the region and its marker on the same line.
//
// The collapsed flag is independent of where the anchor currently resolves.
// Once disposed, a region releases both decorations and must not be used.
type Region struct {
	marker    DecorationID
	body      DecorationID
	anchored  bool
	collapsed bool
	disposed  bool

	lastRange Range
}

// headerStickiness is shared by the marker and the body so that the marker
// always resolves to the body's start line.
const headerStickiness = GrowsOnlyWhenTypingBefore

var bodyOptions = DecorationOptions{
	Kind:       KindBody,
	Stickiness: headerStickiness,
}

// newRegion anchors r in the buffer. It must run inside a transaction.
func newRegion(ed DecorationEditor, r Range, collapsed bool) *Region {
	reg := &Region{collapsed: collapsed}
	reg.update(ed, r)
	return reg
}

func (r *Region) markerOptions() DecorationOptions {
	return DecorationOptions{
		Kind:       KindMarker,
		Stickiness: headerStickiness,
		Collapsed:  r.collapsed,
	}
}

// update re-anchors the region on rng, keeping the collapsed state.
func (r *Region) update(ed DecorationEditor, rng Range) {
	if r.disposed {
		return
	}
	r.lastRange = rng
	header := Range{StartLine: rng.StartLine, EndLine: rng.StartLine}

	if !r.anchored {
		r.marker = ed.AddDecoration(header, r.markerOptions())
		r.body = ed.AddDecoration(rng, bodyOptions)
		r.anchored = true
		return
	}
	ed.MoveDecoration(r.marker, header)
	ed.MoveDecoration(r.body, rng)
}

// ResolvedRange returns the span the region's anchor currently covers.
// ok is false when the anchor is gone or the region was disposed.
func (r *Region) ResolvedRange(res RangeResolver) (Range, bool) {
	if r.disposed || !r.anchored {
		return Range{}, false
	}
	return res.DecorationRange(r.body)
}

// Collapsed reports whether the region is collapsed.
func (r *Region) Collapsed() bool {
	return r.collapsed
}

// LastKnownRange returns the range the region was last anchored on.
func (r *Region) LastKnownRange() Range {
	return r.lastRange
}

// Disposed reports whether the region has been released.
func (r *Region) Disposed() bool {
	return r.disposed
}

// SetCollapsed changes the collapsed state and restyles the marker. The
// anchor is left untouched.
func (r *Region) SetCollapsed(ed DecorationEditor, collapsed bool) {
	if r.disposed {
		return
	}
	r.collapsed = collapsed
	if r.anchored {
		ed.SetDecorationOptions(r.marker, r.markerOptions())
	}
}

// dispose releases the region's decorations. Calling it again is a no-op.
func (r *Region) dispose(ed DecorationEditor) {
	if r.disposed {
		return
	}
	r.disposed = true
	if r.anchored {
		ed.RemoveDecoration(r.marker)
		ed.RemoveDecoration(r.body)
		r.anchored = false
	}
}
