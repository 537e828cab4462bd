// Package gutter renders the area to the left of the text: line numbers and
// the fold marker column.
package gutter

import (
	"sync"
)

// Config holds gutter configuration.
type Config struct {
	// ShowLineNumbers enables line number display.
	ShowLineNumbers bool

	// LineNumberWidth is the fixed width for line numbers (0 = auto).
	LineNumberWidth int

	// MinLineNumberWidth is the minimum width for auto-calculated widths.
	MinLineNumberWidth int

	// ShowFoldMarkers enables the fold marker column.
	ShowFoldMarkers bool
}

// DefaultConfig returns the default gutter configuration.
func DefaultConfig() Config {
	return Config{
		ShowLineNumbers:    true,
		MinLineNumberWidth: 3,
		ShowFoldMarkers:    true,
	}
}

// FoldState is the fold marker shown for a line.
type FoldState uint8

const (
	FoldNone FoldState = iota
	FoldExpanded
	FoldCollapsed
)

// Marker glyphs.
const (
	GlyphExpanded  = '▾'
	GlyphCollapsed = '▸'
)

// FoldProvider reports the fold marker for a 1-based line.
type FoldProvider interface {
	FoldState(line int) FoldState
}

// FoldMap is a FoldProvider backed by a map from line to collapsed flag.
type FoldMap map[int]bool

// FoldState implements FoldProvider.
func (m FoldMap) FoldState(line int) FoldState {
	collapsed, ok := m[line]
	switch {
	case !ok:
		return FoldNone
	case collapsed:
		return FoldCollapsed
	default:
		return FoldExpanded
	}
}

// CellStyle describes how to style a gutter cell.
type CellStyle uint8

const (
	StyleNormal CellStyle = iota
	StyleCurrentLine
	StyleDim
	StyleFoldMarker
	StyleFoldCollapsed
)

// Cell represents a single gutter cell.
type Cell struct {
	Rune  rune
	Style CellStyle
}

// Zone identifies a gutter column group.
type Zone uint8

const (
	ZoneNone Zone = iota
	ZoneLineNumbers
	ZoneFoldMarkers
	ZoneSeparator
)

// String returns a string representation of the zone.
func (z Zone) String() string {
	switch z {
	case ZoneLineNumbers:
		return "line-numbers"
	case ZoneFoldMarkers:
		return "fold-markers"
	case ZoneSeparator:
		return "separator"
	default:
		return "none"
	}
}

// Gutter manages the gutter area rendering.
type Gutter struct {
	mu sync.RWMutex

	config Config

	width       int
	lineCount   int
	currentLine int

	folds FoldProvider
}

// New creates a new gutter with the given configuration.
func New(config Config) *Gutter {
	return &Gutter{
		config: config,
		width:  calculateWidth(config, 1),
	}
}

// Width returns the current gutter width.
func (g *Gutter) Width() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.width
}

// Config returns the current configuration.
func (g *Gutter) Config() Config {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.config
}

// SetConfig updates the gutter configuration.
func (g *Gutter) SetConfig(config Config) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.config = config
	g.width = calculateWidth(config, g.lineCount)
}

// SetLineCount updates the total line count (affects width calculation).
func (g *Gutter) SetLineCount(count int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lineCount = count
	g.width = calculateWidth(g.config, count)
}

// SetCurrentLine sets the highlighted line (1-based).
func (g *Gutter) SetCurrentLine(line int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.currentLine = line
}

// SetFoldProvider sets the source of fold markers.
func (g *Gutter) SetFoldProvider(p FoldProvider) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.folds = p
}

// LineNumberWidth returns just the line number width.
func (g *Gutter) LineNumberWidth() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.lineNumberWidth()
}

// ZoneAt classifies gutter column col (0-based). Columns at or past Width
// return ZoneNone.
func (g *Gutter) ZoneAt(col int) Zone {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if col < 0 || col >= g.width {
		return ZoneNone
	}
	if col == g.width-1 {
		return ZoneSeparator
	}
	if g.config.ShowLineNumbers && col < g.lineNumberWidth() {
		return ZoneLineNumbers
	}
	if g.config.ShowFoldMarkers {
		return ZoneFoldMarkers
	}
	return ZoneNone
}

// RenderLine renders the gutter for a 1-based line. exists is false for
// rows past the end of the buffer.
func (g *Gutter) RenderLine(line int, exists bool) []Cell {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.width == 0 {
		return nil
	}

	cells := make([]Cell, g.width)
	for i := range cells {
		cells[i] = Cell{Rune: ' ', Style: StyleNormal}
	}

	col := 0

	if g.config.ShowLineNumbers {
		numWidth := g.lineNumberWidth()
		if exists {
			style := g.styleForLine(line)
			num := PadLeft(FormatNumber(line), numWidth)
			for _, r := range num {
				if col >= g.width-1 {
					break
				}
				cells[col] = Cell{Rune: r, Style: style}
				col++
			}
		} else {
			// ~ marks rows past the end of the buffer
			col += numWidth - 1
			if col < g.width-1 {
				cells[col] = Cell{Rune: '~', Style: StyleDim}
				col++
			}
		}
	}

	if g.config.ShowFoldMarkers && col < g.width-1 {
		if exists && g.folds != nil {
			cells[col] = foldCell(g.folds.FoldState(line))
		}
		col++
	}

	return cells
}

func foldCell(s FoldState) Cell {
	switch s {
	case FoldExpanded:
		return Cell{Rune: GlyphExpanded, Style: StyleFoldMarker}
	case FoldCollapsed:
		return Cell{Rune: GlyphCollapsed, Style: StyleFoldCollapsed}
	default:
		return Cell{Rune: ' ', Style: StyleNormal}
	}
}

func (g *Gutter) styleForLine(line int) CellStyle {
	if line == g.currentLine {
		return StyleCurrentLine
	}
	return StyleDim
}

func (g *Gutter) lineNumberWidth() int {
	if g.config.LineNumberWidth > 0 {
		return g.config.LineNumberWidth
	}
	return CalculateWidth(g.lineCount, g.config.MinLineNumberWidth)
}

// calculateWidth calculates the total gutter width.
func calculateWidth(config Config, lineCount int) int {
	width := 0

	if config.ShowLineNumbers {
		if config.LineNumberWidth > 0 {
			width += config.LineNumberWidth
		} else {
			width += CalculateWidth(lineCount, config.MinLineNumberWidth)
		}
	}

	if config.ShowFoldMarkers {
		width++
	}

	// Separator
	if width > 0 {
		width++
	}

	return width
}
