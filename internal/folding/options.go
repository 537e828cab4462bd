package folding

import (
	"time"

	"go.uber.org/zap"
)

// Option configures a Controller.
type Option func(*options)

type options struct {
	delay     time.Duration
	debouncer Debouncer
	logger    *zap.Logger
	metrics   *Metrics
	onError   func(error)
}

func defaultOptions() options {
	return options{
		delay:  DefaultDebounce,
		logger: zap.NewNop(),
	}
}

// WithDebounce sets the quiet period before a recomputation.
func WithDebounce(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.delay = d
		}
	}
}

// WithDebouncer replaces the debounce timer. Tests use it to fire
// recomputations by hand.
func WithDebouncer(d Debouncer) Option {
	return func(o *options) {
		o.debouncer = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics sets the metrics instruments.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithErrorHandler receives RangeProvider failures. The default handler logs
// them at error level.
func WithErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.onError = fn
	}
}
