package editor

import (
	"context"
	"errors"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/dshills/keyfold/internal/engine/buffer"
	"github.com/dshills/keyfold/internal/event"
	"github.com/dshills/keyfold/internal/folding"
)

// ErrNoBuffer is returned by edit operations when no buffer is attached.
var ErrNoBuffer = errors.New("no buffer attached")

const eventSource = "editor"

// Editor hosts one buffer view. Methods that change state publish the
// matching event and must run on the Loop. Read accessors are safe from
// any goroutine.
type Editor struct {
	loop   *Loop
	bus    *event.Bus
	logger *zap.Logger

	mu     sync.RWMutex
	buf    *buffer.Buffer
	model  *bufferModel
	hidden []folding.Range
}

var _ folding.Editor = (*Editor)(nil)

// New creates an editor.
func New(opts ...Option) *Editor {
	e := &Editor{
		bus:    event.NewBus(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.loop = NewLoop(e.logger.Named("loop"))
	if e.buf != nil {
		e.model = &bufferModel{buf: e.buf}
	}
	return e
}

// Loop returns the editor loop.
func (e *Editor) Loop() *Loop {
	return e.loop
}

// Post schedules fn on the editor loop.
func (e *Editor) Post(fn func()) {
	e.loop.Post(fn)
}

// Bus returns the event bus.
func (e *Editor) Bus() *event.Bus {
	return e.bus
}

// Model returns the attached buffer as a folding model, or nil.
func (e *Editor) Model() folding.Model {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.model == nil {
		return nil
	}
	return e.model
}

// Buffer returns the attached buffer, or nil.
func (e *Editor) Buffer() *buffer.Buffer {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buf
}

func (e *Editor) publish(topic event.Topic, payload any) {
	e.bus.Publish(context.Background(), event.Event{
		Topic:   topic,
		Payload: payload,
		Source:  eventSource,
	})
}

// SetBuffer replaces the attached buffer. A nil buf detaches it.
func (e *Editor) SetBuffer(buf *buffer.Buffer) {
	e.mu.Lock()
	e.buf = buf
	e.model = nil
	if buf != nil {
		e.model = &bufferModel{buf: buf}
	}
	e.mu.Unlock()

	e.logger.Debug("buffer attached", zap.Bool("attached", buf != nil))
	e.publish(event.TopicModelChanged, event.ModelChanged{Attached: buf != nil})
}

// SetMode changes the language mode and tab size of the attached buffer.
// A tabSize of zero keeps the current one.
func (e *Editor) SetMode(mode string, tabSize int) {
	buf := e.Buffer()
	if buf == nil {
		return
	}
	buf.SetMode(mode)
	if tabSize > 0 {
		buf.SetTabWidth(tabSize)
	}
	e.logger.Debug("mode changed", zap.String("mode", mode), zap.Int("tab_size", buf.TabWidth()))
	e.publish(event.TopicModeChanged, event.ModeChanged{Mode: mode, TabSize: buf.TabWidth()})
}

// Insert inserts text at offset.
func (e *Editor) Insert(offset buffer.ByteOffset, text string) (buffer.ByteOffset, error) {
	return e.Replace(offset, offset, text)
}

// Delete removes [start, end).
func (e *Editor) Delete(start, end buffer.ByteOffset) error {
	_, err := e.Replace(start, end, "")
	return err
}

// Replace replaces [start, end) with text and publishes a content change.
func (e *Editor) Replace(start, end buffer.ByteOffset, text string) (buffer.ByteOffset, error) {
	buf := e.Buffer()
	if buf == nil {
		return 0, ErrNoBuffer
	}
	rev := buf.Revision()
	pos, err := buf.Replace(start, end, text)
	if err != nil {
		return 0, err
	}
	if buf.Revision() == rev {
		return pos, nil
	}
	first := buf.OffsetToPoint(start).Line
	last := buf.OffsetToPoint(pos).Line
	e.publish(event.TopicContentChanged, event.ContentChanged{
		Revision:  buf.Revision(),
		StartLine: int(first) + 1,
		EndLine:   int(last) + 1,
	})
	return pos, nil
}

// InsertLine inserts text as a new line before line (1-based). A line past
// the end appends.
func (e *Editor) InsertLine(line int, text string) error {
	buf := e.Buffer()
	if buf == nil {
		return ErrNoBuffer
	}
	count := int(buf.LineCount())
	if line > count {
		_, err := e.Insert(buf.Len(), "\n"+text)
		return err
	}
	_, err := e.Insert(buf.LineStartOffset(lineIndex(line)), text+"\n")
	return err
}

// DeleteLines removes lines from..to (1-based, inclusive).
func (e *Editor) DeleteLines(from, to int) error {
	buf := e.Buffer()
	if buf == nil {
		return ErrNoBuffer
	}
	count := int(buf.LineCount())
	if from < 1 || to < from || to > count {
		return buffer.ErrLineOutOfRange
	}
	start := buf.LineStartOffset(lineIndex(from))
	end := buf.Len()
	if to < count {
		end = buf.LineStartOffset(uint32(to))
	} else if from > 1 {
		// Removing the last lines also removes the newline before them.
		start--
	}
	return e.Delete(start, end)
}

// ResetText replaces the whole content of the attached buffer. Every
// decoration in it is dropped.
func (e *Editor) ResetText(text string) error {
	buf := e.Buffer()
	if buf == nil {
		return ErrNoBuffer
	}
	buf.Reset(text)
	e.publish(event.TopicContentChanged, event.ContentChanged{
		Revision:  buf.Revision(),
		StartLine: 1,
		EndLine:   int(buf.LineCount()),
	})
	return nil
}

// PointerDown reports a pointer press at line and column (1-based).
func (e *Editor) PointerDown(line, column int, target event.MouseTarget) {
	e.publish(event.TopicMouseDown, event.MouseDown{Line: line, Column: column, Target: target})
}

// SetHiddenAreas replaces the hidden line spans.
func (e *Editor) SetHiddenAreas(areas []folding.Range) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hidden = slices.Clone(areas)
}

// HiddenAreas returns a copy of the hidden line spans.
func (e *Editor) HiddenAreas() []folding.Range {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.hidden)
}

// IsHidden reports whether line (1-based) is hidden.
func (e *Editor) IsHidden(line int) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return folding.IsHidden(e.hidden, line)
}

// VisibleLines returns the 1-based numbers of the lines that are not hidden.
func (e *Editor) VisibleLines() []int {
	buf := e.Buffer()
	if buf == nil {
		return nil
	}
	e.mu.RLock()
	defer e.mu.RUnlock()

	n := int(buf.LineCount())
	out := make([]int, 0, n)
	for line := 1; line <= n; line++ {
		if !folding.IsHidden(e.hidden, line) {
			out = append(out, line)
		}
	}
	return out
}

// Markers returns the fold markers of the attached buffer, ordered by line.
func (e *Editor) Markers() []Marker {
	buf := e.Buffer()
	if buf == nil {
		return nil
	}
	return markers(buf)
}
