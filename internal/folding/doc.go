// Package folding maintains the set of collapsible regions for an editor
// buffer.
//
// A Controller owns one feature instance per editor. It listens for buffer
// edits, recomputes candidate ranges through a RangeProvider after a debounce
// delay, and merges the result into the current region set so that regions
// whose start line did not change keep their collapsed state. Each region is
// anchored in the buffer through two tracked decorations (the header marker
// and the body span) so its position stays correct while the user keeps
// typing between recomputations.
//
// # Threading
//
// The Controller is single-threaded: every method and every event handler
// must run on the editor loop (Editor.Post). The only work done elsewhere is
// the RangeProvider call, which runs on its own goroutine and posts its
// result back together with the generation token it was started with.
// Results whose token is no longer current are dropped.
//
// # Usage
//
//	ctrl := folding.New(editor, indent.Provider{},
//	    folding.WithLogger(logger),
//	    folding.WithDebounce(200*time.Millisecond),
//	)
//	defer ctrl.Dispose()
//
//	// Later, on the editor loop:
//	ctrl.Toggle(12)
//	hidden := ctrl.HiddenAreas()
package folding
