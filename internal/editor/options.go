package editor

import (
	"go.uber.org/zap"

	"github.com/dshills/keyfold/internal/engine/buffer"
	"github.com/dshills/keyfold/internal/event"
)

// Option configures an Editor.
type Option func(*Editor)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Editor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithBus shares an existing event bus.
func WithBus(bus *event.Bus) Option {
	return func(e *Editor) {
		if bus != nil {
			e.bus = bus
		}
	}
}

// WithBuffer attaches buf from the start. No ModelChanged event is sent.
func WithBuffer(buf *buffer.Buffer) Option {
	return func(e *Editor) {
		e.buf = buf
	}
}
