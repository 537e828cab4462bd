// Package indent discovers foldable ranges from line indentation.
//
// A line opens a range when the next non-blank line is indented deeper; the
// range ends on the last non-blank line before indentation returns to the
// opening level or shallower. Blank lines never start or end a range.
package indent

import (
	"context"

	"github.com/dshills/keyfold/internal/folding"
)

// DefaultTabSize is used when the caller passes a tab size below 1.
const DefaultTabSize = 4

// cancelCheckInterval is how many lines are scanned between context checks.
const cancelCheckInterval = 1024

// Provider is a folding.RangeProvider based on indentation.
type Provider struct {
	// MinLines drops ranges spanning fewer lines than this, header included.
	// Values below 2 keep every foldable range.
	MinLines int
}

var _ folding.RangeProvider = Provider{}

// Width returns the visual indentation width of text. Tabs advance to the
// next multiple of tabSize. It returns -1 for blank lines.
func Width(text string, tabSize int) int {
	if tabSize < 1 {
		tabSize = DefaultTabSize
	}
	w := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case ' ':
			w++
		case '\t':
			w += tabSize - w%tabSize
		case '\r', '\n':
			// trailing line terminator on an otherwise blank line
		default:
			return w
		}
	}
	return -1
}

type open struct {
	line   int
	indent int
}

// ComputeRanges scans snap top to bottom keeping a stack of open blocks.
// Ranges are returned sorted by start line.
func (p Provider) ComputeRanges(ctx context.Context, snap folding.Snapshot, tabSize int) ([]folding.Range, error) {
	var (
		out       []folding.Range
		stack     []open
		lastSolid int
	)
	closeTop := func() {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if lastSolid-top.line+1 >= max(p.MinLines, 2) {
			out = append(out, folding.Range{StartLine: top.line, EndLine: lastSolid})
		}
	}

	n := snap.LineCount()
	for line := 1; line <= n; line++ {
		if line%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		w := Width(snap.LineText(line), tabSize)
		if w < 0 {
			continue
		}
		for len(stack) > 0 && stack[len(stack)-1].indent >= w {
			closeTop()
		}
		stack = append(stack, open{line: line, indent: w})
		lastSolid = line
	}
	for len(stack) > 0 {
		closeTop()
	}

	folding.SortRanges(out)
	return out, nil
}
