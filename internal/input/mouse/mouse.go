package mouse

import (
	"sync"
	"time"

	"github.com/dshills/keyfold/internal/event"
	"github.com/dshills/keyfold/internal/renderer/gutter"
)

// Button represents a mouse button.
type Button uint8

const (
	ButtonNone Button = iota
	ButtonLeft
	ButtonMiddle
	ButtonRight
	ButtonWheelUp
	ButtonWheelDown
)

// String returns a string representation of the button.
func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonMiddle:
		return "middle"
	case ButtonRight:
		return "right"
	case ButtonWheelUp:
		return "wheel-up"
	case ButtonWheelDown:
		return "wheel-down"
	default:
		return "none"
	}
}

// IsWheel returns true for scroll wheel buttons.
func (b Button) IsWheel() bool {
	return b == ButtonWheelUp || b == ButtonWheelDown
}

// Position is a 0-based screen cell.
type Position struct {
	X int
	Y int
}

// Distance returns the Manhattan distance between two positions.
func (p Position) Distance(other Position) int {
	dx := p.X - other.X
	if dx < 0 {
		dx = -dx
	}
	dy := p.Y - other.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// Event is a raw button press.
type Event struct {
	Position  Position
	Button    Button
	Timestamp time.Time
}

// Layout reports the gutter geometry.
type Layout interface {
	Width() int
	ZoneAt(col int) gutter.Zone
}

// Rows maps a screen row to the 1-based buffer line drawn on it.
type Rows interface {
	LineAt(row int) (line int, ok bool)
}

// RowMap is a Rows backed by a slice indexed by screen row.
type RowMap []int

// LineAt implements Rows.
func (m RowMap) LineAt(row int) (int, bool) {
	if row < 0 || row >= len(m) {
		return 0, false
	}
	return m[row], true
}

// Kind is the kind of result a press produced.
type Kind uint8

const (
	KindNone Kind = iota
	KindPress
	KindScroll
)

// Result is a classified press.
type Result struct {
	Kind Kind

	// Line is the 1-based buffer line under the pointer.
	Line int
	// Column is the 0-based text column, or 0 in the gutter.
	Column int
	Target event.MouseTarget

	// Clicks counts consecutive presses on the same spot.
	Clicks int

	// Scroll is the number of lines to scroll, negative for up.
	Scroll int
}

// Config configures the handler.
type Config struct {
	DoubleClickTime     time.Duration
	DoubleClickDistance int
	ScrollLines         int
}

// DefaultConfig returns the default handler configuration.
func DefaultConfig() Config {
	return Config{
		DoubleClickTime:     400 * time.Millisecond,
		DoubleClickDistance: 0,
		ScrollLines:         3,
	}
}

// Handler turns raw presses into classified results.
type Handler struct {
	mu     sync.Mutex
	config Config

	lastPos   Position
	lastTime  time.Time
	lastCount int
}

// NewHandler creates a handler with the given configuration.
func NewHandler(config Config) *Handler {
	return &Handler{config: config}
}

// Handle classifies ev against the current layout.
func (h *Handler) Handle(ev Event, layout Layout, rows Rows) Result {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch {
	case ev.Button.IsWheel():
		n := h.config.ScrollLines
		if ev.Button == ButtonWheelUp {
			n = -n
		}
		return Result{Kind: KindScroll, Scroll: n}
	case ev.Button != ButtonLeft:
		return Result{}
	}

	line, column, target, ok := Classify(ev.Position, layout, rows)
	if !ok {
		h.resetClicks()
		return Result{}
	}
	return Result{
		Kind:   KindPress,
		Line:   line,
		Column: column,
		Target: target,
		Clicks: h.recordClick(ev.Position, ev.Timestamp),
	}
}

// Classify maps a screen position to a buffer line and target. It reports
// false when the row shows no buffer line.
func Classify(pos Position, layout Layout, rows Rows) (line, column int, target event.MouseTarget, ok bool) {
	line, ok = rows.LineAt(pos.Y)
	if !ok {
		return 0, 0, event.TargetUnknown, false
	}

	width := layout.Width()
	if pos.X >= width {
		return line, pos.X - width, event.TargetText, true
	}
	switch layout.ZoneAt(pos.X) {
	case gutter.ZoneFoldMarkers:
		return line, 0, event.TargetGutterFoldMarkers, true
	case gutter.ZoneLineNumbers:
		return line, 0, event.TargetGutterLineNumbers, true
	default:
		return line, 0, event.TargetUnknown, true
	}
}

func (h *Handler) recordClick(pos Position, ts time.Time) int {
	if ts.IsZero() {
		ts = time.Now()
	}
	elapsed := ts.Sub(h.lastTime)
	if h.lastCount > 0 && elapsed >= 0 && elapsed <= h.config.DoubleClickTime &&
		pos.Distance(h.lastPos) <= h.config.DoubleClickDistance {
		h.lastCount++
	} else {
		h.lastCount = 1
	}
	h.lastPos = pos
	h.lastTime = ts
	return h.lastCount
}

func (h *Handler) resetClicks() {
	h.lastCount = 0
	h.lastTime = time.Time{}
}

// Reset clears click tracking.
func (h *Handler) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.resetClicks()
}
