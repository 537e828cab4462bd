package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config is the full set of keyfold settings.
type Config struct {
	Folding FoldingConfig `toml:"folding"`
	Editor  EditorConfig  `toml:"editor"`
	Logging LoggingConfig `toml:"logging"`
	Plugin  PluginConfig  `toml:"plugin"`
}

// FoldingConfig configures the folding controller.
type FoldingConfig struct {
	// Debounce is the quiet period after an edit before ranges are
	// recomputed.
	Debounce Duration `toml:"debounce"`
	// ShowMarkers enables the fold marker gutter column.
	ShowMarkers bool `toml:"show_markers"`
}

// EditorConfig configures the host editor.
type EditorConfig struct {
	TabSize int `toml:"tab_size"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`
	// Format is console or json.
	Format string `toml:"format"`
	// File receives log output. Empty means stderr, or nowhere while the
	// interactive viewer owns the terminal.
	File string `toml:"file"`
}

// PluginConfig configures scripted providers.
type PluginConfig struct {
	// LuaProvider is a Lua script computing folding ranges. Empty selects
	// the indentation provider.
	LuaProvider string `toml:"lua_provider"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Folding: FoldingConfig{
			Debounce:    Duration(200 * time.Millisecond),
			ShowMarkers: true,
		},
		Editor: EditorConfig{TabSize: 4},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Duration is a time.Duration written as a string such as "200ms".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// LoadOption configures Load.
type LoadOption func(*loadOptions)

type loadOptions struct {
	lookupEnv func(string) (string, bool)
	optional  bool
}

// WithLookupEnv replaces os.LookupEnv as the environment source.
func WithLookupEnv(fn func(string) (string, bool)) LoadOption {
	return func(o *loadOptions) {
		o.lookupEnv = fn
	}
}

// Optional makes a missing config file fall back to defaults instead of
// returning ErrFileNotFound.
func Optional() LoadOption {
	return func(o *loadOptions) {
		o.optional = true
	}
}

// Load builds a Config from defaults, the TOML file at path (skipped when
// path is empty) and KEYFOLD_* environment variables, then validates it.
func Load(path string, opts ...LoadOption) (Config, error) {
	o := loadOptions{lookupEnv: os.LookupEnv}
	for _, opt := range opts {
		opt(&o)
	}

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			if !o.optional {
				return Config{}, fmt.Errorf("%w: %s", ErrFileNotFound, path)
			}
		case err != nil:
			return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
		default:
			if err := decode(path, bytes.NewReader(data), &cfg); err != nil {
				return Config{}, err
			}
		}
	}

	if err := applyEnv(&cfg, o.lookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes TOML from r over the defaults and validates the result.
// Environment variables are not consulted.
func Parse(r io.Reader) (Config, error) {
	cfg := Default()
	if err := decode("<reader>", r, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(source string, r io.Reader, cfg *Config) error {
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return newParseError(source, err)
	}
	return nil
}

func newParseError(source string, err error) *ParseError {
	pe := &ParseError{Path: source, Message: err.Error(), Err: err}

	var decErr *toml.DecodeError
	var strictErr *toml.StrictMissingError
	switch {
	case errors.As(err, &decErr):
		pe.Line, pe.Column = decErr.Position()
	case errors.As(err, &strictErr):
		keys := make([]string, 0, len(strictErr.Errors))
		for _, e := range strictErr.Errors {
			keys = append(keys, strings.Join(e.Key(), "."))
			if pe.Line == 0 {
				pe.Line, pe.Column = e.Position()
			}
		}
		pe.Message = "unknown keys: " + strings.Join(keys, ", ")
	}
	return pe
}

// Validate checks every setting and returns the first failure.
func (c Config) Validate() error {
	if c.Folding.Debounce < 0 {
		return &ValidationError{Path: "folding.debounce", Message: "must not be negative", Value: c.Folding.Debounce.Std()}
	}
	if c.Editor.TabSize < 1 || c.Editor.TabSize > 16 {
		return &ValidationError{Path: "editor.tab_size", Message: "must be between 1 and 16", Value: c.Editor.TabSize}
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "logging.level", Message: "must be debug, info, warn or error", Value: c.Logging.Level}
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return &ValidationError{Path: "logging.format", Message: "must be console or json", Value: c.Logging.Format}
	}
	return nil
}
