// Package buffer provides the editor's text buffer together with its
// decoration table.
//
// The buffer package provides:
//
//   - Thread-safe read/write access via sync.RWMutex
//   - A line table for coordinate conversion between byte offsets and
//     line/column positions
//   - Immutable snapshots for readers running off the editor loop
//   - Tracked decorations whose spans follow edits according to their
//     stickiness
//
// Basic usage:
//
//	buf := buffer.NewBufferFromString("func main() {\n\treturn\n}")
//
//	var id buffer.DecorationID
//	buf.ChangeDecorations(func(tx *buffer.DecorationTx) {
//	    id = tx.Add(tx.LineSpan(0, 2), buffer.GrowsOnlyWhenTypingBefore, nil)
//	})
//
//	buf.Insert(0, "// comment\n")
//	r, ok := buf.DecorationRange(id) // still covers the function
//
// Decorations:
//
// All decoration mutations happen inside ChangeDecorations, which holds the
// buffer's write lock for the duration of the callback. The transaction is
// released on every exit path, including panics. Reads made from inside the
// callback must go through the transaction (tx.Range) since the buffer lock
// is already held.
//
// Stickiness controls what happens when text is inserted exactly at a
// decoration's start: GrowsOnlyWhenTypingBefore keeps the start in place so
// the span absorbs the new text, NeverGrowsWhenTypingAtEdges pushes the start
// forward. Insertion exactly at the end never grows a span.
package buffer
