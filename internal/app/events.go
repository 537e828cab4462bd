package app

import (
	"github.com/gdamore/tcell/v2"

	"github.com/dshills/keyfold/internal/event"
	"github.com/dshills/keyfold/internal/input/mouse"
)

// handleEvent processes one terminal event on the editor loop.
func (app *Application) handleEvent(ev tcell.Event) {
	switch e := ev.(type) {
	case *tcell.EventKey:
		app.handleKey(e)
	case *tcell.EventMouse:
		app.handleMouse(e)
	case *tcell.EventResize:
		app.screen.Sync()
	}
}

func (app *Application) handleKey(e *tcell.EventKey) {
	_, h := app.screen.Size()
	page := max(h-2, 1)

	switch e.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		app.quitting = true
	case tcell.KeyDown:
		app.scroll(1)
	case tcell.KeyUp:
		app.scroll(-1)
	case tcell.KeyPgDn:
		app.scroll(page)
	case tcell.KeyPgUp:
		app.scroll(-page)
	case tcell.KeyRune:
		switch e.Rune() {
		case 'q':
			app.quitting = true
		case 'j':
			app.scroll(1)
		case 'k':
			app.scroll(-1)
		}
	}
}

func (app *Application) handleMouse(e *tcell.EventMouse) {
	x, y := e.Position()
	buttons := e.Buttons()
	pressed := buttons &^ app.lastButtons
	app.lastButtons = buttons & (tcell.Button1 | tcell.Button2 | tcell.Button3)

	var button mouse.Button
	switch {
	case buttons&tcell.WheelUp != 0:
		button = mouse.ButtonWheelUp
	case buttons&tcell.WheelDown != 0:
		button = mouse.ButtonWheelDown
	case pressed&tcell.Button1 != 0:
		button = mouse.ButtonLeft
	case pressed&tcell.Button3 != 0:
		button = mouse.ButtonMiddle
	case pressed&tcell.Button2 != 0:
		button = mouse.ButtonRight
	default:
		return
	}

	res := app.mouse.Handle(mouse.Event{
		Position:  mouse.Position{X: x, Y: y},
		Button:    button,
		Timestamp: e.When(),
	}, app.gutter, app.rows)

	switch res.Kind {
	case mouse.KindScroll:
		app.scroll(res.Scroll)
	case mouse.KindPress:
		app.gutter.SetCurrentLine(res.Line)
		app.editor.PointerDown(res.Line, res.Column+1, res.Target)
		// A double click on text toggles the region starting there.
		if res.Target == event.TargetText && res.Clicks == 2 {
			app.folding.Toggle(res.Line)
		}
	}
}

// scroll moves the first visible row by n lines.
func (app *Application) scroll(n int) {
	app.top += n
	app.clampTop(len(app.editor.VisibleLines()))
}

func (app *Application) clampTop(visible int) {
	_, h := app.screen.Size()
	maxTop := max(visible-max(h-1, 1), 0)
	app.top = min(max(app.top, 0), maxTop)
}
