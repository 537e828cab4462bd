// Package app wires the editor, the folding controller and a range provider
// into the keyfold viewer and the headless range dump.
package app

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/dshills/keyfold/internal/config"
	"github.com/dshills/keyfold/internal/editor"
	"github.com/dshills/keyfold/internal/engine/buffer"
	"github.com/dshills/keyfold/internal/folding"
	"github.com/dshills/keyfold/internal/indent"
	"github.com/dshills/keyfold/internal/plugin/lua"
)

// Options configures a session.
type Options struct {
	// Config holds the loaded settings.
	Config config.Config

	// Path is the file to open.
	Path string

	// Logger receives structured logs. Defaults to a no-op logger.
	Logger *zap.Logger

	// MeterProvider receives folding metrics. Nil uses the global provider.
	MeterProvider metric.MeterProvider

	// Provider overrides the range provider chosen from Config.
	Provider folding.RangeProvider

	// Debouncer overrides the recompute timer.
	Debouncer folding.Debouncer
}

// session is one open file with folding attached.
type session struct {
	cfg    config.Config
	logger *zap.Logger
	path   string

	editor   *editor.Editor
	folding  *folding.Controller
	provider folding.RangeProvider
	closers  []func() error

	// lastErr is the most recent provider failure. Loop only.
	lastErr error
}

func newSession(opts Options, extra ...folding.Option) (*session, error) {
	if opts.Path == "" {
		return nil, ErrNoPath
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &session{
		cfg:    opts.Config,
		logger: logger,
		path:   opts.Path,
	}

	buf, err := s.readBuffer()
	if err != nil {
		return nil, err
	}

	s.provider = opts.Provider
	if s.provider == nil {
		if s.provider, err = s.newProvider(); err != nil {
			return nil, err
		}
	}

	s.editor = editor.New(editor.WithLogger(logger), editor.WithBuffer(buf))

	fopts := []folding.Option{
		folding.WithDebounce(opts.Config.Folding.Debounce.Std()),
		folding.WithLogger(logger),
		folding.WithMetrics(folding.NewMetrics(opts.MeterProvider, logger)),
		folding.WithErrorHandler(s.onProviderError),
	}
	if opts.Debouncer != nil {
		fopts = append(fopts, folding.WithDebouncer(opts.Debouncer))
	}
	fopts = append(fopts, extra...)
	s.folding = folding.New(s.editor, s.provider, fopts...)

	logger.Info("file opened",
		zap.String("path", s.path),
		zap.Uint32("lines", buf.LineCount()),
		zap.String("mode", buf.Mode()),
	)
	return s, nil
}

// newProvider selects the Lua provider when a script is configured and the
// indentation provider otherwise.
func (s *session) newProvider() (folding.RangeProvider, error) {
	script := s.cfg.Plugin.LuaProvider
	if script == "" {
		return indent.Provider{}, nil
	}
	p, err := lua.NewProvider(expandHome(script))
	if err != nil {
		return nil, &InitError{Component: "lua provider", Err: err}
	}
	s.closers = append(s.closers, p.Close)
	s.logger.Info("using lua range provider", zap.String("script", script))
	return p, nil
}

func (s *session) onProviderError(err error) {
	s.lastErr = err
	s.logger.Warn("folding range computation failed", zap.Error(err))
}

func (s *session) readBuffer() (*buffer.Buffer, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, &FileError{Op: "open", Path: s.path, Err: err}
	}
	defer f.Close()

	buf, err := buffer.NewBufferFromReader(f,
		buffer.WithTabWidth(s.cfg.Editor.TabSize),
		buffer.WithMode(modeFor(s.path)),
	)
	if err != nil {
		return nil, &FileError{Op: "read", Path: s.path, Err: err}
	}
	return buf, nil
}

// reload replaces the buffer with the file's current contents. Must run on
// the editor loop.
func (s *session) reload() error {
	buf, err := s.readBuffer()
	if err != nil {
		return err
	}
	started := time.Now()
	s.editor.SetBuffer(buf)
	s.logger.Info("file reloaded",
		zap.String("path", s.path),
		zap.Uint32("lines", buf.LineCount()),
		zap.Duration("took", time.Since(started)),
	)
	return nil
}

// close disposes the controller and releases the provider. Must run on the
// editor loop or after it has stopped.
func (s *session) close() error {
	s.folding.Dispose()
	var first error
	for _, fn := range s.closers {
		if err := fn(); err != nil && first == nil {
			first = err
		}
	}
	s.closers = nil
	return first
}

// modeFor derives a language mode from the file extension.
func modeFor(path string) string {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "text"
	}
	return strings.ToLower(ext)
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
