package buffer

import (
	"github.com/tidwall/btree"
)

// DecorationID identifies a tracked decoration. Zero is never issued.
type DecorationID uint64

// Stickiness controls how a decoration's start reacts to text inserted
// exactly at that position.
type Stickiness uint8

const (
	// GrowsOnlyWhenTypingBefore keeps the start in place when text is
	// inserted at it, so the span absorbs the insertion.
	GrowsOnlyWhenTypingBefore Stickiness = iota

	// NeverGrowsWhenTypingAtEdges moves the start past text inserted at it.
	NeverGrowsWhenTypingAtEdges
)

// String returns a string representation of the stickiness.
func (s Stickiness) String() string {
	switch s {
	case GrowsOnlyWhenTypingBefore:
		return "grows-only-when-typing-before"
	case NeverGrowsWhenTypingAtEdges:
		return "never-grows-when-typing-at-edges"
	default:
		return "unknown"
	}
}

// Decoration is a span tracked by the buffer.
type Decoration struct {
	ID         DecorationID
	Range      Range
	Stickiness Stickiness
	// Data is an opaque payload owned by whoever added the decoration.
	Data any
}

// decorationTable stores decorations keyed by id. It is only accessed with
// the owning buffer's lock held.
type decorationTable struct {
	nextID DecorationID
	items  btree.Map[DecorationID, *Decoration]
}

func newDecorationTable() *decorationTable {
	return &decorationTable{}
}

func (t *decorationTable) add(r Range, st Stickiness, data any) DecorationID {
	t.nextID++
	id := t.nextID
	t.items.Set(id, &Decoration{ID: id, Range: r, Stickiness: st, Data: data})
	return id
}

func (t *decorationTable) get(id DecorationID) (*Decoration, bool) {
	return t.items.Get(id)
}

func (t *decorationTable) remove(id DecorationID) bool {
	_, ok := t.items.Delete(id)
	return ok
}

func (t *decorationTable) len() int {
	return t.items.Len()
}

// clear drops every decoration. Ids keep increasing so stale handles never
// alias a later decoration.
func (t *decorationTable) clear() {
	t.items = btree.Map[DecorationID, *Decoration]{}
}

func (t *decorationTable) scan(fn func(d *Decoration) bool) {
	t.items.Scan(func(_ DecorationID, d *Decoration) bool {
		return fn(d)
	})
}

// adjustForInsert shifts decorations for n bytes inserted at offset.
func (t *decorationTable) adjustForInsert(offset, n ByteOffset) {
	t.scan(func(d *Decoration) bool {
		r := d.Range
		if offset < r.Start || (offset == r.Start && d.Stickiness == NeverGrowsWhenTypingAtEdges) {
			r.Start += n
		}
		if offset < r.End {
			r.End += n
		}
		if r.End < r.Start {
			r.End = r.Start
		}
		d.Range = r
		return true
	})
}

// adjustForDelete shifts decorations for the bytes in [start, end) being
// removed. Positions inside the removed span collapse onto start.
func (t *decorationTable) adjustForDelete(start, end ByteOffset) {
	n := end - start
	shift := func(pos ByteOffset) ByteOffset {
		switch {
		case pos >= end:
			return pos - n
		case pos > start:
			return start
		default:
			return pos
		}
	}
	t.scan(func(d *Decoration) bool {
		d.Range = Range{Start: shift(d.Range.Start), End: shift(d.Range.End)}
		return true
	})
}

// DecorationTx is the handle passed to ChangeDecorations. It is only valid
// inside the callback.
type DecorationTx struct {
	b      *Buffer
	closed bool

	added   int
	changed int
	removed int
}

func (tx *DecorationTx) check() {
	if tx.closed {
		panic("buffer: decoration transaction used after ChangeDecorations returned")
	}
}

// Add registers a new decoration and returns its id.
func (tx *DecorationTx) Add(r Range, st Stickiness, data any) DecorationID {
	tx.check()
	tx.added++
	return tx.b.decorations.add(tx.clamp(r), st, data)
}

// Move re-anchors an existing decoration. Returns false if id is unknown.
func (tx *DecorationTx) Move(id DecorationID, r Range) bool {
	tx.check()
	d, ok := tx.b.decorations.get(id)
	if !ok {
		return false
	}
	d.Range = tx.clamp(r)
	tx.changed++
	return true
}

// SetData replaces a decoration's payload. Returns false if id is unknown.
func (tx *DecorationTx) SetData(id DecorationID, data any) bool {
	tx.check()
	d, ok := tx.b.decorations.get(id)
	if !ok {
		return false
	}
	d.Data = data
	tx.changed++
	return true
}

// Remove deletes a decoration. Removing an unknown id is a no-op that
// returns false.
func (tx *DecorationTx) Remove(id DecorationID) bool {
	tx.check()
	if !tx.b.decorations.remove(id) {
		return false
	}
	tx.removed++
	return true
}

// Range resolves a decoration's current span.
func (tx *DecorationTx) Range(id DecorationID) (Range, bool) {
	tx.check()
	d, ok := tx.b.decorations.get(id)
	if !ok {
		return Range{}, false
	}
	return d.Range, true
}

// Lines resolves a decoration's current span to 0-indexed lines.
func (tx *DecorationTx) Lines(id DecorationID) (LineSpan, bool) {
	r, ok := tx.Range(id)
	if !ok {
		return LineSpan{}, false
	}
	return tx.b.lineSpanLocked(r), true
}

// LineSpan returns the byte range covering lines start..end inclusive,
// from the first byte of start to the end of end (before its newline).
func (tx *DecorationTx) LineSpan(start, end uint32) Range {
	tx.check()
	return tx.b.lineRangeLocked(start, end)
}

// LineCount returns the buffer's line count.
func (tx *DecorationTx) LineCount() uint32 {
	tx.check()
	return uint32(len(tx.b.lineStarts))
}

// LineLen returns the length of a line in bytes (without newline).
func (tx *DecorationTx) LineLen(line uint32) int {
	tx.check()
	if int(line) >= len(tx.b.lineStarts) {
		return 0
	}
	return int(lineEnd(tx.b.text, tx.b.lineStarts, line) - tx.b.lineStarts[line])
}

// TxStats reports what a transaction did.
type TxStats struct {
	Added   int
	Changed int
	Removed int
}

// ChangeDecorations runs fn with exclusive access to the decoration table.
// All mutations made by fn are visible to readers at once when it returns.
func (b *Buffer) ChangeDecorations(fn func(tx *DecorationTx)) TxStats {
	b.mu.Lock()
	defer b.mu.Unlock()

	tx := &DecorationTx{b: b}
	defer func() { tx.closed = true }()

	fn(tx)
	return TxStats{Added: tx.added, Changed: tx.changed, Removed: tx.removed}
}

// DecorationRange resolves a decoration's current byte span.
func (b *Buffer) DecorationRange(id DecorationID) (Range, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	d, ok := b.decorations.get(id)
	if !ok {
		return Range{}, false
	}
	return d.Range, true
}

// DecorationLines resolves a decoration's current span to 0-indexed lines.
func (b *Buffer) DecorationLines(id DecorationID) (LineSpan, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	d, ok := b.decorations.get(id)
	if !ok {
		return LineSpan{}, false
	}
	return b.lineSpanLocked(d.Range), true
}

// Decoration returns a copy of a decoration.
func (b *Buffer) Decoration(id DecorationID) (Decoration, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	d, ok := b.decorations.get(id)
	if !ok {
		return Decoration{}, false
	}
	return *d, true
}

// Decorations returns copies of all decorations ordered by id.
func (b *Buffer) Decorations() []Decoration {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Decoration, 0, b.decorations.len())
	b.decorations.scan(func(d *Decoration) bool {
		out = append(out, *d)
		return true
	})
	return out
}

// DecorationCount returns the number of tracked decorations.
func (b *Buffer) DecorationCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.decorations.len()
}

func (b *Buffer) lineSpanLocked(r Range) LineSpan {
	start := offsetToPoint(b.text, b.lineStarts, r.Start)
	end := offsetToPoint(b.text, b.lineStarts, r.End)
	return LineSpan{Start: start.Line, End: end.Line}
}

func (b *Buffer) lineRangeLocked(start, end uint32) Range {
	last := uint32(len(b.lineStarts) - 1)
	if start > last {
		start = last
	}
	if end > last {
		end = last
	}
	if end < start {
		end = start
	}
	return Range{Start: b.lineStarts[start], End: lineEnd(b.text, b.lineStarts, end)}
}

func (tx *DecorationTx) clamp(r Range) Range {
	n := ByteOffset(len(tx.b.text))
	if r.Start < 0 {
		r.Start = 0
	}
	if r.Start > n {
		r.Start = n
	}
	if r.End > n {
		r.End = n
	}
	if r.End < r.Start {
		r.End = r.Start
	}
	return r
}
