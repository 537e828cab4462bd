package mouse

import (
	"testing"
	"time"

	"github.com/dshills/keyfold/internal/event"
	"github.com/dshills/keyfold/internal/renderer/gutter"
)

func newLayout() *gutter.Gutter {
	g := gutter.New(gutter.DefaultConfig())
	g.SetLineCount(50)
	// columns: 0..2 numbers, 3 fold, 4 separator, text from 5
	return g
}

func TestButtonString(t *testing.T) {
	tests := []struct {
		button   Button
		expected string
	}{
		{ButtonNone, "none"},
		{ButtonLeft, "left"},
		{ButtonMiddle, "middle"},
		{ButtonRight, "right"},
		{ButtonWheelUp, "wheel-up"},
		{ButtonWheelDown, "wheel-down"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.button.String(); got != tt.expected {
				t.Errorf("Button.String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestPositionDistance(t *testing.T) {
	p := Position{X: 1, Y: 1}
	if d := p.Distance(Position{X: 4, Y: -1}); d != 5 {
		t.Errorf("Distance = %d, want 5", d)
	}
}

func TestRowMap(t *testing.T) {
	rows := RowMap{1, 2, 7}

	if line, ok := rows.LineAt(2); !ok || line != 7 {
		t.Errorf("LineAt(2) = %d, %v", line, ok)
	}
	if _, ok := rows.LineAt(3); ok {
		t.Error("LineAt past the last row should fail")
	}
	if _, ok := rows.LineAt(-1); ok {
		t.Error("LineAt(-1) should fail")
	}
}

func TestClassify(t *testing.T) {
	layout := newLayout()
	// rows 0..2 show lines 1, 2 and 6 (3..5 folded)
	rows := RowMap{1, 2, 6}

	tests := []struct {
		name   string
		pos    Position
		line   int
		column int
		target event.MouseTarget
		ok     bool
	}{
		{"fold column", Position{X: 3, Y: 1}, 2, 0, event.TargetGutterFoldMarkers, true},
		{"line numbers", Position{X: 0, Y: 2}, 6, 0, event.TargetGutterLineNumbers, true},
		{"separator", Position{X: 4, Y: 0}, 1, 0, event.TargetUnknown, true},
		{"text", Position{X: 8, Y: 2}, 6, 3, event.TargetText, true},
		{"past last row", Position{X: 3, Y: 3}, 0, 0, event.TargetUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, column, target, ok := Classify(tt.pos, layout, rows)
			if line != tt.line || column != tt.column || target != tt.target || ok != tt.ok {
				t.Errorf("Classify(%v) = (%d, %d, %v, %v), want (%d, %d, %v, %v)",
					tt.pos, line, column, target, ok, tt.line, tt.column, tt.target, tt.ok)
			}
		})
	}
}

func TestHandlerPress(t *testing.T) {
	h := NewHandler(DefaultConfig())
	res := h.Handle(Event{Position: Position{X: 3, Y: 0}, Button: ButtonLeft}, newLayout(), RowMap{4})

	if res.Kind != KindPress {
		t.Fatalf("Kind = %v, want press", res.Kind)
	}
	if res.Line != 4 || res.Target != event.TargetGutterFoldMarkers {
		t.Errorf("got line %d target %v", res.Line, res.Target)
	}
	if res.Clicks != 1 {
		t.Errorf("Clicks = %d, want 1", res.Clicks)
	}
}

func TestHandlerCountsRepeatedClicks(t *testing.T) {
	h := NewHandler(DefaultConfig())
	layout, rows := newLayout(), RowMap{1, 2}
	now := time.Now()
	press := func(pos Position, at time.Time) int {
		return h.Handle(Event{Position: pos, Button: ButtonLeft, Timestamp: at}, layout, rows).Clicks
	}

	if n := press(Position{X: 6, Y: 0}, now); n != 1 {
		t.Errorf("first click = %d", n)
	}
	if n := press(Position{X: 6, Y: 0}, now.Add(100*time.Millisecond)); n != 2 {
		t.Errorf("second click = %d", n)
	}
	if n := press(Position{X: 7, Y: 0}, now.Add(200*time.Millisecond)); n != 1 {
		t.Errorf("click elsewhere = %d, want 1", n)
	}
	if n := press(Position{X: 7, Y: 0}, now.Add(time.Second)); n != 1 {
		t.Errorf("slow click = %d, want 1", n)
	}
	if n := press(Position{X: 7, Y: 0}, now.Add(500*time.Millisecond)); n != 1 {
		t.Errorf("click before the last one = %d, want 1", n)
	}
}

func TestHandlerReset(t *testing.T) {
	h := NewHandler(DefaultConfig())
	layout, rows := newLayout(), RowMap{1}
	now := time.Now()

	h.Handle(Event{Position: Position{X: 6}, Button: ButtonLeft, Timestamp: now}, layout, rows)
	h.Reset()
	res := h.Handle(Event{Position: Position{X: 6}, Button: ButtonLeft, Timestamp: now.Add(time.Millisecond)}, layout, rows)
	if res.Clicks != 1 {
		t.Errorf("Clicks after reset = %d, want 1", res.Clicks)
	}
}

func TestHandlerWheel(t *testing.T) {
	h := NewHandler(DefaultConfig())

	up := h.Handle(Event{Button: ButtonWheelUp}, newLayout(), RowMap{})
	if up.Kind != KindScroll || up.Scroll != -3 {
		t.Errorf("wheel up = %+v", up)
	}
	down := h.Handle(Event{Button: ButtonWheelDown}, newLayout(), RowMap{})
	if down.Kind != KindScroll || down.Scroll != 3 {
		t.Errorf("wheel down = %+v", down)
	}
}

func TestHandlerIgnoresOtherButtons(t *testing.T) {
	h := NewHandler(DefaultConfig())
	res := h.Handle(Event{Position: Position{X: 3}, Button: ButtonRight}, newLayout(), RowMap{1})
	if res.Kind != KindNone {
		t.Errorf("right click Kind = %v, want none", res.Kind)
	}
}

func TestHandlerPressOutsideRows(t *testing.T) {
	h := NewHandler(DefaultConfig())
	res := h.Handle(Event{Position: Position{X: 3, Y: 9}, Button: ButtonLeft}, newLayout(), RowMap{1})
	if res.Kind != KindNone {
		t.Errorf("Kind = %v, want none", res.Kind)
	}
}
