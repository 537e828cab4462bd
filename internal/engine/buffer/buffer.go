package buffer

import (
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
)

// Errors returned by buffer operations.
var (
	ErrOffsetOutOfRange = errors.New("offset out of range")
	ErrRangeInvalid     = errors.New("invalid range")
	ErrLineOutOfRange   = errors.New("line out of range")
)

// DefaultTabWidth is the tab width used when none is configured.
const DefaultTabWidth = 4

// Buffer holds text as a single string plus a table of line start offsets.
// All methods are thread-safe.
type Buffer struct {
	mu         sync.RWMutex
	text       string
	lineStarts []ByteOffset
	revision   uint64
	tabWidth   int
	mode       string

	decorations *decorationTable
}

// NewBuffer creates a new empty buffer.
func NewBuffer(opts ...Option) *Buffer {
	b := &Buffer{
		lineStarts:  []ByteOffset{0},
		tabWidth:    DefaultTabWidth,
		decorations: newDecorationTable(),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// NewBufferFromString creates a buffer with initial content.
// Line endings are normalized to "\n".
func NewBufferFromString(s string, opts ...Option) *Buffer {
	b := NewBuffer(opts...)
	b.setTextLocked(normalizeLineEndings(s))
	return b
}

// NewBufferFromReader creates a buffer from an io.Reader.
func NewBufferFromReader(r io.Reader, opts ...Option) (*Buffer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return NewBufferFromString(string(data), opts...), nil
}

// normalizeLineEndings converts CRLF and CR line endings to LF.
func normalizeLineEndings(s string) string {
	if !strings.ContainsRune(s, '\r') {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// computeLineStarts returns the byte offset at which each line begins.
func computeLineStarts(s string) []ByteOffset {
	starts := make([]ByteOffset, 1, strings.Count(s, "\n")+1)
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			starts = append(starts, ByteOffset(i+1))
		}
	}
	return starts
}

func (b *Buffer) setTextLocked(s string) {
	b.text = s
	b.lineStarts = computeLineStarts(s)
}

// Read Operations

// Text returns the full buffer content as a string.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.text
}

// Len returns the total byte length of the buffer.
func (b *Buffer) Len() ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return ByteOffset(len(b.text))
}

// IsEmpty returns true if the buffer has no content.
func (b *Buffer) IsEmpty() bool {
	return b.Len() == 0
}

// LineCount returns the number of lines. An empty buffer has one line.
func (b *Buffer) LineCount() uint32 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return uint32(len(b.lineStarts))
}

// LineText returns the text of a line without its newline.
// Returns an empty string for lines out of range.
func (b *Buffer) LineText(line uint32) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return lineText(b.text, b.lineStarts, line)
}

// LineLen returns the length of a line in bytes (without newline).
func (b *Buffer) LineLen(line uint32) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if int(line) >= len(b.lineStarts) {
		return 0
	}
	return int(lineEnd(b.text, b.lineStarts, line) - b.lineStarts[line])
}

// LineStartOffset returns the byte offset of the start of a line.
// Lines past the end clamp to the buffer length.
func (b *Buffer) LineStartOffset(line uint32) ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if int(line) >= len(b.lineStarts) {
		return ByteOffset(len(b.text))
	}
	return b.lineStarts[line]
}

// LineEndOffset returns the byte offset of the end of a line (before newline).
func (b *Buffer) LineEndOffset(line uint32) ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return lineEnd(b.text, b.lineStarts, line)
}

// OffsetToPoint converts a byte offset to a line/column position.
// Offsets are clamped to the buffer bounds.
func (b *Buffer) OffsetToPoint(offset ByteOffset) Point {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return offsetToPoint(b.text, b.lineStarts, offset)
}

// PointToOffset converts a line/column position to a byte offset.
// Columns past the end of the line clamp to the line end.
func (b *Buffer) PointToOffset(p Point) ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if int(p.Line) >= len(b.lineStarts) {
		return ByteOffset(len(b.text))
	}
	start := b.lineStarts[p.Line]
	end := lineEnd(b.text, b.lineStarts, p.Line)
	off := start + ByteOffset(p.Column)
	if off > end {
		off = end
	}
	return off
}

// Revision returns the current revision number. It increases on every edit.
func (b *Buffer) Revision() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.revision
}

// TabWidth returns the buffer's tab width.
func (b *Buffer) TabWidth() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tabWidth
}

// SetTabWidth sets the buffer's tab width. Non-positive widths are ignored.
func (b *Buffer) SetTabWidth(width int) {
	if width <= 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tabWidth = width
}

// Mode returns the buffer's mode (language identifier).
func (b *Buffer) Mode() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.mode
}

// SetMode sets the buffer's mode.
func (b *Buffer) SetMode(mode string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mode = mode
}

// Snapshot returns an immutable view of the current content.
func (b *Buffer) Snapshot() *Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return &Snapshot{
		text:       b.text,
		lineStarts: b.lineStarts,
		revision:   b.revision,
		tabWidth:   b.tabWidth,
	}
}

// Write Operations

// Insert inserts text at the given offset.
// Returns the end position of the inserted text.
func (b *Buffer) Insert(offset ByteOffset, text string) (ByteOffset, error) {
	return b.Replace(offset, offset, text)
}

// Delete removes text in the given range.
func (b *Buffer) Delete(start, end ByteOffset) error {
	_, err := b.Replace(start, end, "")
	return err
}

// Replace replaces text in the given range with new text.
// Decorations are adjusted as a deletion of [start, end) followed by an
// insertion at start. Returns the end position of the replacement text.
func (b *Buffer) Replace(start, end ByteOffset, text string) (ByteOffset, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if start < 0 || start > ByteOffset(len(b.text)) {
		return 0, ErrOffsetOutOfRange
	}
	if start > end || end > ByteOffset(len(b.text)) {
		return 0, ErrRangeInvalid
	}

	text = normalizeLineEndings(text)
	if start == end && text == "" {
		return start, nil
	}

	b.setTextLocked(b.text[:start] + text + b.text[end:])
	b.revision++

	if end > start {
		b.decorations.adjustForDelete(start, end)
	}
	if text != "" {
		b.decorations.adjustForInsert(start, ByteOffset(len(text)))
	}

	return start + ByteOffset(len(text)), nil
}

// Reset replaces the whole content. Every decoration is discarded, so ids
// handed out before the reset no longer resolve.
func (b *Buffer) Reset(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.setTextLocked(normalizeLineEndings(text))
	b.revision++
	b.decorations.clear()
}

// Line helpers shared by Buffer and Snapshot.

func lineEnd(text string, starts []ByteOffset, line uint32) ByteOffset {
	if int(line) >= len(starts) {
		return ByteOffset(len(text))
	}
	if int(line)+1 < len(starts) {
		return starts[line+1] - 1
	}
	return ByteOffset(len(text))
}

func lineText(text string, starts []ByteOffset, line uint32) string {
	if int(line) >= len(starts) {
		return ""
	}
	return text[starts[line]:lineEnd(text, starts, line)]
}

func lineOf(starts []ByteOffset, offset ByteOffset) uint32 {
	i := sort.Search(len(starts), func(i int) bool { return starts[i] > offset })
	if i == 0 {
		return 0
	}
	return uint32(i - 1)
}

func offsetToPoint(text string, starts []ByteOffset, offset ByteOffset) Point {
	if offset < 0 {
		offset = 0
	}
	if offset > ByteOffset(len(text)) {
		offset = ByteOffset(len(text))
	}
	line := lineOf(starts, offset)
	return Point{Line: line, Column: uint32(offset - starts[line])}
}
