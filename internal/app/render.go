package app

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/keyfold/internal/renderer/gutter"
)

const foldEllipsis = " ⋯"

var (
	styleText      = tcell.StyleDefault
	styleStatus    = tcell.StyleDefault.Reverse(true)
	styleEllipsis  = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleNumber    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleCurrent   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleMarker    = tcell.StyleDefault.Foreground(tcell.ColorTeal)
	styleCollapsed = tcell.StyleDefault.Foreground(tcell.ColorTeal).Bold(true)
)

// gutterStyle converts a gutter cell style to a terminal style.
func gutterStyle(s gutter.CellStyle) tcell.Style {
	switch s {
	case gutter.StyleDim:
		return styleNumber
	case gutter.StyleCurrentLine:
		return styleCurrent
	case gutter.StyleFoldMarker:
		return styleMarker
	case gutter.StyleFoldCollapsed:
		return styleCollapsed
	default:
		return styleText
	}
}

// draw renders the visible lines, the gutter and the status line.
func (app *Application) draw() {
	w, h := app.screen.Size()
	app.screen.Clear()

	buf := app.editor.Buffer()
	visible := app.editor.VisibleLines()
	app.clampTop(len(visible))

	folds := make(gutter.FoldMap)
	for _, m := range app.editor.Markers() {
		folds[m.Line] = m.Collapsed
	}
	if buf != nil {
		app.gutter.SetLineCount(int(buf.LineCount()))
	}
	app.gutter.SetFoldProvider(folds)

	textRows := max(h-1, 0)
	app.rows = app.rows[:0]
	gw := app.gutter.Width()
	tabSize := app.cfg.Editor.TabSize
	if buf != nil {
		tabSize = buf.TabWidth()
	}

	for row := 0; row < textRows; row++ {
		idx := app.top + row
		exists := idx < len(visible)
		line := 0
		if exists {
			line = visible[idx]
			app.rows = append(app.rows, line)
		}

		for x, c := range app.gutter.RenderLine(line, exists) {
			app.screen.SetContent(x, row, c.Rune, nil, gutterStyle(c.Style))
		}
		if !exists || buf == nil {
			continue
		}

		x := putString(app.screen, gw, row, w, expandTabs(buf.LineText(uint32(line-1)), tabSize), styleText)
		if folds[line] {
			putString(app.screen, x, row, w, foldEllipsis, styleEllipsis)
		}
	}

	app.drawStatus(w, h)
	app.screen.Show()
}

func (app *Application) drawStatus(w, h int) {
	if h < 1 {
		return
	}
	lines := 0
	if buf := app.editor.Buffer(); buf != nil {
		lines = int(buf.LineCount())
	}
	status := fmt.Sprintf(" %s  %d lines  %d regions  %s",
		filepath.Base(app.path), lines, len(app.folding.Regions()), app.folding.State())
	if app.status != "" {
		status += "  " + app.status
	}
	row := h - 1
	for x := 0; x < w; x++ {
		app.screen.SetContent(x, row, ' ', nil, styleStatus)
	}
	putString(app.screen, 0, row, w, status, styleStatus)
}

// putString draws s from column x, clipped at width. It returns the column
// after the last rune drawn.
func putString(screen tcell.Screen, x, y, width int, s string, style tcell.Style) int {
	for _, r := range s {
		if x >= width {
			break
		}
		screen.SetContent(x, y, r, nil, style)
		x++
	}
	return x
}

// expandTabs replaces tabs with spaces up to the next tab stop.
func expandTabs(s string, tabSize int) string {
	if !strings.ContainsRune(s, '\t') {
		return s
	}
	if tabSize < 1 {
		tabSize = 1
	}
	var b strings.Builder
	col := 0
	for _, r := range s {
		if r == '\t' {
			n := tabSize - col%tabSize
			b.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		b.WriteRune(r)
		col++
	}
	return b.String()
}
