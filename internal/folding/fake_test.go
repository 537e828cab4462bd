package folding

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dshills/keyfold/internal/event"
)

type fakeDecoration struct {
	rng  Range
	opts DecorationOptions
}

// fakeModel tracks decorations at line granularity. Mutations outside a
// transaction panic.
type fakeModel struct {
	lines   []string
	tabSize int
	decs    map[DecorationID]*fakeDecoration
	nextID  DecorationID
	inTx    bool
	txCount int
}

func newFakeModel(text string) *fakeModel {
	return &fakeModel{
		lines:   strings.Split(text, "\n"),
		tabSize: 4,
		decs:    make(map[DecorationID]*fakeDecoration),
	}
}

// linesModel returns a model with n empty lines.
func linesModel(n int) *fakeModel {
	return newFakeModel(strings.Repeat("\n", n-1))
}

func (m *fakeModel) DecorationRange(id DecorationID) (Range, bool) {
	d, ok := m.decs[id]
	if !ok {
		return Range{}, false
	}
	return d.rng, true
}

func (m *fakeModel) ChangeDecorations(fn func(ed DecorationEditor)) {
	if m.inTx {
		panic("nested decoration transaction")
	}
	m.inTx = true
	m.txCount++
	defer func() { m.inTx = false }()
	fn(m)
}

func (m *fakeModel) mustTx() {
	if !m.inTx {
		panic("decoration mutated outside a transaction")
	}
}

func (m *fakeModel) AddDecoration(r Range, opts DecorationOptions) DecorationID {
	m.mustTx()
	m.nextID++
	m.decs[m.nextID] = &fakeDecoration{rng: r, opts: opts}
	return m.nextID
}

func (m *fakeModel) MoveDecoration(id DecorationID, r Range) {
	m.mustTx()
	if d, ok := m.decs[id]; ok {
		d.rng = r
	}
}

func (m *fakeModel) SetDecorationOptions(id DecorationID, opts DecorationOptions) {
	m.mustTx()
	if d, ok := m.decs[id]; ok {
		d.opts = opts
	}
}

func (m *fakeModel) RemoveDecoration(id DecorationID) {
	m.mustTx()
	delete(m.decs, id)
}

func (m *fakeModel) LineCount() int          { return len(m.lines) }
func (m *fakeModel) LineLength(line int) int { return len(m.lines[line-1]) }
func (m *fakeModel) TabSize() int            { return m.tabSize }

func (m *fakeModel) Snapshot() Snapshot {
	return fakeSnapshot(append([]string(nil), m.lines...))
}

// insertLines inserts n lines at the start of line at. A body starting on
// that line grows; a marker there moves down.
func (m *fakeModel) insertLines(at, n int) {
	added := make([]string, n)
	m.lines = append(m.lines[:at-1], append(added, m.lines[at-1:]...)...)
	for _, d := range m.decs {
		switch {
		case d.rng.StartLine > at:
			d.rng.StartLine += n
			d.rng.EndLine += n
		case d.rng.StartLine == at:
			if d.opts.Stickiness == NeverGrowsWhenTypingAtEdges {
				d.rng.StartLine += n
			}
			d.rng.EndLine += n
		case d.rng.EndLine >= at:
			d.rng.EndLine += n
		}
	}
}

// deleteLines removes lines [from, to]. Decorations that lie entirely
// inside the deletion are dropped.
func (m *fakeModel) deleteLines(from, to int) {
	n := to - from + 1
	m.lines = append(m.lines[:from-1], m.lines[to:]...)
	for id, d := range m.decs {
		switch {
		case d.rng.StartLine >= from && d.rng.EndLine <= to:
			delete(m.decs, id)
		case d.rng.StartLine > to:
			d.rng.StartLine -= n
			d.rng.EndLine -= n
		default:
			if d.rng.StartLine >= from {
				d.rng.StartLine = from
			}
			if d.rng.EndLine > to {
				d.rng.EndLine -= n
			} else if d.rng.EndLine >= from {
				d.rng.EndLine = from - 1
			}
		}
	}
}

func (m *fakeModel) markerCount() (total, collapsed int) {
	for _, d := range m.decs {
		if d.opts.Kind == KindMarker {
			total++
			if d.opts.Collapsed {
				collapsed++
			}
		}
	}
	return total, collapsed
}

type fakeSnapshot []string

func (s fakeSnapshot) LineCount() int           { return len(s) }
func (s fakeSnapshot) LineText(line int) string { return s[line-1] }

// fakeEditor queues posted work so a test can run the editor loop one task
// at a time.
type fakeEditor struct {
	model  Model
	bus    *event.Bus
	posts  chan func()
	hidden []Range
	sets   int
}

func newFakeEditor(m Model) *fakeEditor {
	return &fakeEditor{
		model: m,
		bus:   event.NewBus(),
		posts: make(chan func(), 64),
	}
}

func (e *fakeEditor) Model() Model {
	if e.model == nil {
		return nil
	}
	return e.model
}

func (e *fakeEditor) Bus() *event.Bus { return e.bus }

func (e *fakeEditor) SetHiddenAreas(areas []Range) {
	e.hidden = append([]Range(nil), areas...)
	e.sets++
}

func (e *fakeEditor) Post(fn func()) { e.posts <- fn }

// runOne runs the next posted task, waiting for it if needed.
func (e *fakeEditor) runOne(t *testing.T) {
	t.Helper()
	select {
	case fn := <-e.posts:
		fn()
	case <-waitTimeout():
		t.Fatal("timed out waiting for posted work")
	}
}

func (e *fakeEditor) pending() int { return len(e.posts) }

func (e *fakeEditor) publish(topic event.Topic, payload any) {
	e.bus.Publish(context.Background(), event.Event{Topic: topic, Payload: payload})
}

// manualDebouncer keeps the last scheduled function until fire is called.
type manualDebouncer struct {
	mu      sync.Mutex
	pending func()
	calls   int
}

func (d *manualDebouncer) debounce(f func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = f
	d.calls++
}

func (d *manualDebouncer) fire() bool {
	d.mu.Lock()
	f := d.pending
	d.pending = nil
	d.mu.Unlock()
	if f == nil {
		return false
	}
	f()
	return true
}

// staticProvider returns whatever ranges it currently holds.
type staticProvider struct {
	mu     sync.Mutex
	ranges []Range
	err    error
	calls  int
}

func (p *staticProvider) set(ranges ...Range) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ranges = ranges
	p.err = nil
}

func (p *staticProvider) fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

func (p *staticProvider) ComputeRanges(context.Context, Snapshot, int) ([]Range, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return append([]Range(nil), p.ranges...), nil
}

func rng(start, end int) Range {
	return Range{StartLine: start, EndLine: end}
}

func waitTimeout() <-chan time.Time {
	return time.After(2 * time.Second)
}
