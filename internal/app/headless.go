package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/dshills/keyfold/internal/folding"
)

// Report is the outcome of a headless range computation.
type Report struct {
	Path  string
	Lines int

	Regions []folding.RegionInfo
	Hidden  []folding.Range

	// Toggled lists the requested lines that matched a region; Unmatched
	// the ones that did not.
	Toggled   []int
	Unmatched []int

	// Visible is the number of lines left after hiding.
	Visible int
}

// Ranges opens opts.Path, runs one range computation to completion, toggles
// the regions starting on each of toggle in order and reports the result.
// The debounce delay is skipped.
func Ranges(ctx context.Context, opts Options, toggle []int) (Report, error) {
	s, err := newSession(opts, folding.WithDebounce(0))
	if err != nil {
		return Report{}, err
	}
	defer func() {
		if err := s.close(); err != nil {
			s.logger.Warn("closing session", zap.Error(err))
		}
	}()

	loop := s.editor.Loop()
	idle := func() bool { return s.folding.State() == folding.StateIdle }
	if err := loop.RunUntil(ctx, idle); err != nil {
		return Report{}, fmt.Errorf("waiting for folding ranges: %w", err)
	}
	if s.lastErr != nil {
		return Report{}, s.lastErr
	}

	rep := Report{Path: s.path}
	for _, line := range toggle {
		if s.folding.Toggle(line) {
			rep.Toggled = append(rep.Toggled, line)
		} else {
			rep.Unmatched = append(rep.Unmatched, line)
		}
	}
	loop.RunPending()

	rep.Regions = s.folding.Regions()
	rep.Hidden = s.folding.HiddenAreas()
	rep.Visible = len(s.editor.VisibleLines())
	if buf := s.editor.Buffer(); buf != nil {
		rep.Lines = int(buf.LineCount())
	}
	return rep, nil
}
