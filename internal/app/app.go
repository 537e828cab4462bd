package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/keyfold/internal/input/mouse"
	"github.com/dshills/keyfold/internal/renderer/gutter"
	"github.com/dshills/keyfold/internal/watcher"
)

// ViewerOptions configures the interactive viewer.
type ViewerOptions struct {
	Options

	// Screen overrides the terminal screen. Tests pass a simulation screen.
	Screen tcell.Screen

	// WatchDelay is the quiet period before a changed file is reloaded.
	WatchDelay time.Duration

	// DisableWatch turns off reloading on file changes.
	DisableWatch bool
}

// Application is the interactive folding viewer for one file.
type Application struct {
	*session

	screen  tcell.Screen
	finish  sync.Once
	gutter  *gutter.Gutter
	mouse   *mouse.Handler
	watcher *watcher.FileWatcher

	running atomic.Bool

	// Loop-only view state.
	top         int
	rows        mouse.RowMap
	lastButtons tcell.ButtonMask
	quitting    bool
	status      string
}

// New opens the file and attaches folding. The screen is not touched until
// Run.
func New(opts ViewerOptions) (*Application, error) {
	s, err := newSession(opts.Options)
	if err != nil {
		return nil, err
	}

	app := &Application{
		session: s,
		screen:  opts.Screen,
		gutter: gutter.New(gutter.Config{
			ShowLineNumbers:    true,
			MinLineNumberWidth: 3,
			ShowFoldMarkers:    opts.Config.Folding.ShowMarkers,
		}),
		mouse: mouse.NewHandler(mouse.DefaultConfig()),
	}

	if app.screen == nil {
		if app.screen, err = tcell.NewScreen(); err != nil {
			_ = s.close()
			return nil, &InitError{Component: "screen", Err: err}
		}
	}

	if !opts.DisableWatch {
		app.watcher, err = watcher.New(s.path,
			watcher.WithDelay(opts.WatchDelay),
			watcher.WithLogger(s.logger),
		)
		if err != nil {
			_ = s.close()
			return nil, &InitError{Component: "file watcher", Err: err}
		}
	}
	return app, nil
}

// Run shows the viewer until the user quits or ctx is done. It runs the
// editor loop, the screen poller and the file watcher together.
func (app *Application) Run(ctx context.Context) error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	if err := app.screen.Init(); err != nil {
		return &InitError{Component: "screen", Err: err}
	}
	app.screen.EnableMouse()
	app.screen.HideCursor()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	// Fini unblocks PollEvent.
	g.Go(func() error {
		<-ctx.Done()
		app.finishScreen()
		return nil
	})

	g.Go(func() error {
		defer cancel()
		err := app.editor.Loop().RunUntil(ctx, app.frame)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		app.pollScreen()
		return nil
	})

	if app.watcher != nil {
		g.Go(func() error {
			return app.watcher.Run(ctx)
		})
		g.Go(func() error {
			app.forwardReloads(ctx)
			return nil
		})
	}

	err := g.Wait()
	if cerr := app.close(); cerr != nil {
		app.logger.Warn("closing session", zap.Error(cerr))
	}
	app.logger.Info("viewer stopped")
	return err
}

func (app *Application) finishScreen() {
	app.finish.Do(app.screen.Fini)
}

// pollScreen hands terminal events to the editor loop until the screen is
// finalized.
func (app *Application) pollScreen() {
	for {
		ev := app.screen.PollEvent()
		if ev == nil {
			return
		}
		app.editor.Post(func() { app.handleEvent(ev) })
	}
}

// forwardReloads reloads the buffer for every coalesced file change.
func (app *Application) forwardReloads(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-app.watcher.Events():
			if !ok {
				return
			}
			app.editor.Post(func() {
				app.logger.Debug("reloading", zap.Stringer("op", ev.Op))
				if err := app.reload(); err != nil {
					app.status = err.Error()
					app.logger.Warn("reload failed", zap.Error(err))
				}
			})
		}
	}
}

// frame runs on the loop after every batch of tasks. It redraws and reports
// whether the viewer should stop.
func (app *Application) frame() bool {
	if app.quitting {
		return true
	}
	app.draw()
	return false
}

// Quit asks the viewer to stop. Safe from any goroutine.
func (app *Application) Quit() {
	app.editor.Post(func() { app.quitting = true })
}
