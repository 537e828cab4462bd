// Package mouse classifies pointer input for the viewer.
//
// A press is mapped onto the screen layout: the gutter columns reported by
// a Layout and the buffer line shown on each row reported by Rows. The
// result names the buffer line under the pointer and whether the press
// landed on the fold marker column, the line numbers or the text:
//
//	h := mouse.NewHandler(mouse.DefaultConfig())
//	res := h.Handle(ev, gutter, rows)
//	if res.Kind == mouse.KindPress {
//	    ed.PointerDown(res.Line, res.Column, res.Target)
//	}
//
// Repeated presses on the same cell within DoubleClickTime are counted in
// Result.Clicks. Wheel buttons produce KindScroll results.
//
// Handler is safe for concurrent use.
package mouse
