// Package editor is the single-threaded host the folding controller runs in.
//
// An Editor owns the event bus, the attached buffer (which may be absent)
// and the current set of hidden line spans. All state changes happen on the
// editor Loop: callers on other goroutines hand work over with Post.
//
// Basic usage:
//
//	ed := editor.New(editor.WithLogger(logger))
//	ed.SetBuffer(buffer.NewBufferFromString(src))
//
//	ctl := folding.New(ed, indent.Provider{})
//	defer ctl.Dispose()
//
//	go ed.Loop().Run(ctx)
//
// Line numbers exchanged with the folding package are 1-based; the buffer
// itself is 0-based and the adapter in this package converts between them.
package editor
