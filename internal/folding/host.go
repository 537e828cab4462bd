package folding

import (
	"context"

	"github.com/dshills/keyfold/internal/event"
)

// DecorationID is the host's handle for a tracked decoration.
type DecorationID uint64

// DecorationKind tells the host how to present a decoration.
type DecorationKind uint8

const (
	// KindMarker is the gutter glyph on a region's header line.
	KindMarker DecorationKind = iota
	// KindBody spans the whole region and serves as its anchor.
	KindBody
)

// Stickiness controls how a decoration reacts to text typed at its start.
type Stickiness uint8

const (
	GrowsOnlyWhenTypingBefore Stickiness = iota
	NeverGrowsWhenTypingAtEdges
)

// DecorationOptions describes a decoration added by this package.
type DecorationOptions struct {
	Kind       DecorationKind
	Stickiness Stickiness
	// Collapsed selects the marker glyph. It is always false for bodies.
	Collapsed bool
}

// RangeResolver resolves a decoration to the lines it currently covers.
// ok is false once the decoration is gone, for example because its buffer
// was discarded.
type RangeResolver interface {
	DecorationRange(id DecorationID) (r Range, ok bool)
}

// DecorationEditor is the accessor handed out for the duration of one
// decoration-editing transaction.
type DecorationEditor interface {
	RangeResolver
	AddDecoration(r Range, opts DecorationOptions) DecorationID
	MoveDecoration(id DecorationID, r Range)
	SetDecorationOptions(id DecorationID, opts DecorationOptions)
	RemoveDecoration(id DecorationID)
}

// Snapshot is an immutable view of buffer text handed to a RangeProvider.
// Lines are 1-based.
type Snapshot interface {
	LineCount() int
	LineText(line int) string
}

// Model is the buffer an editor currently shows.
type Model interface {
	RangeResolver

	// ChangeDecorations runs fn inside one exclusive decoration-editing
	// transaction. fn must not retain the DecorationEditor.
	ChangeDecorations(fn func(ed DecorationEditor))

	LineCount() int
	LineLength(line int) int
	TabSize() int
	Snapshot() Snapshot
}

// Editor is the host the Controller attaches to.
type Editor interface {
	// Model returns the attached buffer, or nil when there is none.
	Model() Model

	// Bus delivers model, mode, content and pointer events on the editor loop.
	Bus() *event.Bus

	// SetHiddenAreas replaces the set of hidden line spans.
	SetHiddenAreas(areas []Range)

	// Post schedules fn on the editor loop. It is safe to call from any goroutine.
	Post(fn func())
}

// RangeProvider discovers candidate foldable ranges in a snapshot.
// It runs off the editor loop and may return ranges in any order.
type RangeProvider interface {
	ComputeRanges(ctx context.Context, snap Snapshot, tabSize int) ([]Range, error)
}

// RangeProviderFunc adapts a function to RangeProvider.
type RangeProviderFunc func(ctx context.Context, snap Snapshot, tabSize int) ([]Range, error)

// ComputeRanges calls f.
func (f RangeProviderFunc) ComputeRanges(ctx context.Context, snap Snapshot, tabSize int) ([]Range, error) {
	return f(ctx, snap, tabSize)
}
