package editor

import (
	"slices"

	"github.com/dshills/keyfold/internal/engine/buffer"
	"github.com/dshills/keyfold/internal/folding"
)

// bufferModel exposes a buffer to the folding package. Folding lines are
// 1-based; buffer lines are 0-based.
type bufferModel struct {
	buf *buffer.Buffer
}

var _ folding.Model = (*bufferModel)(nil)

func toStickiness(s folding.Stickiness) buffer.Stickiness {
	if s == folding.NeverGrowsWhenTypingAtEdges {
		return buffer.NeverGrowsWhenTypingAtEdges
	}
	return buffer.GrowsOnlyWhenTypingBefore
}

func fromLineSpan(s buffer.LineSpan) folding.Range {
	return folding.Range{StartLine: int(s.Start) + 1, EndLine: int(s.End) + 1}
}

func lineIndex(line int) uint32 {
	if line < 1 {
		return 0
	}
	return uint32(line - 1)
}

func (m *bufferModel) DecorationRange(id folding.DecorationID) (folding.Range, bool) {
	span, ok := m.buf.DecorationLines(buffer.DecorationID(id))
	if !ok {
		return folding.Range{}, false
	}
	return fromLineSpan(span), true
}

func (m *bufferModel) ChangeDecorations(fn func(ed folding.DecorationEditor)) {
	m.buf.ChangeDecorations(func(tx *buffer.DecorationTx) {
		fn(txEditor{tx: tx})
	})
}

func (m *bufferModel) LineCount() int {
	return int(m.buf.LineCount())
}

func (m *bufferModel) LineLength(line int) int {
	return m.buf.LineLen(lineIndex(line))
}

func (m *bufferModel) TabSize() int {
	return m.buf.TabWidth()
}

func (m *bufferModel) Snapshot() folding.Snapshot {
	return snapshot{s: m.buf.Snapshot()}
}

// txEditor routes folding decoration edits into a buffer transaction. The
// folding options are stored as the decoration payload so renderers can
// find markers and their state.
type txEditor struct {
	tx *buffer.DecorationTx
}

func (e txEditor) DecorationRange(id folding.DecorationID) (folding.Range, bool) {
	span, ok := e.tx.Lines(buffer.DecorationID(id))
	if !ok {
		return folding.Range{}, false
	}
	return fromLineSpan(span), true
}

func (e txEditor) span(r folding.Range) buffer.Range {
	return e.tx.LineSpan(lineIndex(r.StartLine), lineIndex(r.EndLine))
}

func (e txEditor) AddDecoration(r folding.Range, opts folding.DecorationOptions) folding.DecorationID {
	return folding.DecorationID(e.tx.Add(e.span(r), toStickiness(opts.Stickiness), opts))
}

func (e txEditor) MoveDecoration(id folding.DecorationID, r folding.Range) {
	e.tx.Move(buffer.DecorationID(id), e.span(r))
}

func (e txEditor) SetDecorationOptions(id folding.DecorationID, opts folding.DecorationOptions) {
	e.tx.SetData(buffer.DecorationID(id), opts)
}

func (e txEditor) RemoveDecoration(id folding.DecorationID) {
	e.tx.Remove(buffer.DecorationID(id))
}

type snapshot struct {
	s *buffer.Snapshot
}

func (s snapshot) LineCount() int {
	return int(s.s.LineCount())
}

func (s snapshot) LineText(line int) string {
	return s.s.LineText(lineIndex(line))
}

// Marker is a fold marker as drawn in the gutter.
type Marker struct {
	Line      int
	Collapsed bool
}

// markers returns the fold markers stored in buf, ordered by line.
func markers(buf *buffer.Buffer) []Marker {
	var out []Marker
	for _, d := range buf.Decorations() {
		opts, ok := d.Data.(folding.DecorationOptions)
		if !ok || opts.Kind != folding.KindMarker {
			continue
		}
		out = append(out, Marker{
			Line:      int(buf.OffsetToPoint(d.Range.Start).Line) + 1,
			Collapsed: opts.Collapsed,
		})
	}
	slices.SortStableFunc(out, func(a, b Marker) int { return a.Line - b.Line })
	return out
}
