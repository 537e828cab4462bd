package lua

import (
	"context"
	"fmt"
	"math"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/keyfold/internal/folding"
	"github.com/dshills/keyfold/internal/indent"
)

// DefaultFunction is the global a folding script must define.
const DefaultFunction = "folding_ranges"

// Provider is a folding.RangeProvider backed by a Lua script.
type Provider struct {
	state *State
	fn    string
}

var _ folding.RangeProvider = (*Provider)(nil)

// ProviderOption configures a Provider.
type ProviderOption func(*providerConfig)

type providerConfig struct {
	fn        string
	stateOpts []StateOption
}

// WithFunction changes the global function the provider calls.
func WithFunction(name string) ProviderOption {
	return func(c *providerConfig) {
		if name != "" {
			c.fn = name
		}
	}
}

// WithStateOptions passes options to the underlying State.
func WithStateOptions(opts ...StateOption) ProviderOption {
	return func(c *providerConfig) {
		c.stateOpts = append(c.stateOpts, opts...)
	}
}

// NewProvider loads the script at path.
func NewProvider(path string, opts ...ProviderOption) (*Provider, error) {
	return newProvider(func(s *State) error { return s.DoFile(path) }, path, opts)
}

// NewProviderFromString loads a script from source.
func NewProviderFromString(code string, opts ...ProviderOption) (*Provider, error) {
	return newProvider(func(s *State) error { return s.DoString(code) }, "<string>", opts)
}

func newProvider(load func(*State) error, name string, opts []ProviderOption) (*Provider, error) {
	cfg := providerConfig{fn: DefaultFunction}
	for _, opt := range opts {
		opt(&cfg)
	}

	state := NewState(cfg.stateOpts...)
	state.RegisterModule("keyfold", map[string]lua.LGFunction{
		"indent_width": luaIndentWidth,
	})

	if err := load(state); err != nil {
		state.Close()
		return nil, fmt.Errorf("load folding script %s: %w", name, err)
	}
	if state.GetGlobal(cfg.fn).Type() != lua.LTFunction {
		state.Close()
		return nil, fmt.Errorf("folding script %s: %w: %q", name, ErrFunctionNotFound, cfg.fn)
	}

	return &Provider{state: state, fn: cfg.fn}, nil
}

func luaIndentWidth(L *lua.LState) int {
	text := L.CheckString(1)
	tabSize := L.OptInt(2, indent.DefaultTabSize)
	L.Push(lua.LNumber(indent.Width(text, tabSize)))
	return 1
}

// ComputeRanges calls the script with the snapshot lines and tab size.
func (p *Provider) ComputeRanges(ctx context.Context, snap folding.Snapshot, tabSize int) ([]folding.Range, error) {
	results, err := p.state.Call(ctx, p.fn, func(L *lua.LState) []lua.LValue {
		lines := L.CreateTable(snap.LineCount(), 0)
		for line := 1; line <= snap.LineCount(); line++ {
			lines.RawSetInt(line, lua.LString(snap.LineText(line)))
		}
		return []lua.LValue{lines, lua.LNumber(tabSize)}
	})
	if err != nil {
		return nil, err
	}
	if len(results) == 0 || results[0] == lua.LNil {
		return nil, nil
	}
	return toRanges(results[0])
}

// Close releases the Lua state.
func (p *Provider) Close() error {
	return p.state.Close()
}

func toRanges(v lua.LValue) ([]folding.Range, error) {
	tbl, ok := v.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("%w: expected a table, got %s", ErrBadResult, v.Type())
	}

	out := make([]folding.Range, 0, tbl.Len())
	for i := 1; i <= tbl.Len(); i++ {
		entry, ok := tbl.RawGetInt(i).(*lua.LTable)
		if !ok {
			return nil, fmt.Errorf("%w: entry %d is not a table", ErrBadResult, i)
		}
		start, okStart := lineField(entry, "start", 1)
		end, okEnd := lineField(entry, "end", 2)
		if !okStart || !okEnd {
			return nil, fmt.Errorf("%w: entry %d needs integer start and end", ErrBadResult, i)
		}
		out = append(out, folding.Range{StartLine: start, EndLine: end})
	}
	return out, nil
}

func lineField(t *lua.LTable, name string, index int) (int, bool) {
	v := t.RawGetString(name)
	if v == lua.LNil {
		v = t.RawGetInt(index)
	}
	n, ok := v.(lua.LNumber)
	if !ok {
		return 0, false
	}
	f := float64(n)
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}
