package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/dshills/keyfold/internal/config"
	"github.com/dshills/keyfold/internal/folding"
)

const goSource = "func main() {\n\ta := 1\n\tif a > 0 {\n\t\tprintln(a)\n\t}\n}\n"

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestRangesIndentProvider(t *testing.T) {
	path := writeFile(t, "main.go", goSource)

	rep, err := Ranges(testContext(t), Options{Config: config.Default(), Path: path, Logger: zaptest.NewLogger(t)}, nil)
	require.NoError(t, err)

	assert.Equal(t, path, rep.Path)
	assert.Equal(t, 7, rep.Lines)
	require.Len(t, rep.Regions, 2)
	assert.Equal(t, folding.Range{StartLine: 1, EndLine: 5}, rep.Regions[0].Range)
	assert.Equal(t, folding.Range{StartLine: 3, EndLine: 4}, rep.Regions[1].Range)
	assert.False(t, rep.Regions[0].Collapsed)
	assert.Empty(t, rep.Hidden)
	assert.Equal(t, 7, rep.Visible)
}

func TestRangesToggle(t *testing.T) {
	path := writeFile(t, "main.go", goSource)

	rep, err := Ranges(testContext(t), Options{Config: config.Default(), Path: path}, []int{3, 2})
	require.NoError(t, err)

	assert.Equal(t, []int{3}, rep.Toggled)
	assert.Equal(t, []int{2}, rep.Unmatched)
	assert.True(t, rep.Regions[1].Collapsed)
	assert.Equal(t, []folding.Range{{StartLine: 4, EndLine: 4}}, rep.Hidden)
	assert.Equal(t, 6, rep.Visible)
}

func TestRangesToggleTwiceRestores(t *testing.T) {
	path := writeFile(t, "main.go", goSource)

	rep, err := Ranges(testContext(t), Options{Config: config.Default(), Path: path}, []int{1, 1})
	require.NoError(t, err)

	assert.Equal(t, []int{1, 1}, rep.Toggled)
	assert.Empty(t, rep.Hidden)
}

func TestRangesLuaProvider(t *testing.T) {
	script := writeFile(t, "ranges.lua", `
function folding_ranges(lines, tab_size)
  return { { start = 2, ["end"] = 6 } }
end
`)
	path := writeFile(t, "main.go", goSource)

	cfg := config.Default()
	cfg.Plugin.LuaProvider = script

	rep, err := Ranges(testContext(t), Options{Config: cfg, Path: path}, []int{2})
	require.NoError(t, err)

	require.Len(t, rep.Regions, 1)
	assert.Equal(t, folding.Range{StartLine: 2, EndLine: 6}, rep.Regions[0].Range)
	assert.Equal(t, []folding.Range{{StartLine: 3, EndLine: 6}}, rep.Hidden)
}

func TestRangesBadLuaScript(t *testing.T) {
	path := writeFile(t, "main.go", goSource)
	cfg := config.Default()
	cfg.Plugin.LuaProvider = filepath.Join(t.TempDir(), "missing.lua")

	_, err := Ranges(testContext(t), Options{Config: cfg, Path: path}, nil)
	var initErr *InitError
	require.ErrorAs(t, err, &initErr)
	assert.Equal(t, "lua provider", initErr.Component)
}

func TestRangesProviderError(t *testing.T) {
	path := writeFile(t, "main.go", goSource)
	boom := errors.New("boom")

	_, err := Ranges(testContext(t), Options{
		Config: config.Default(),
		Path:   path,
		Provider: folding.RangeProviderFunc(func(context.Context, folding.Snapshot, int) ([]folding.Range, error) {
			return nil, boom
		}),
	}, nil)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, folding.ErrRangeProvider)
}

func TestRangesMissingFile(t *testing.T) {
	_, err := Ranges(testContext(t), Options{Config: config.Default(), Path: filepath.Join(t.TempDir(), "nope.go")}, nil)
	var fe *FileError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "open", fe.Op)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRangesNoPath(t *testing.T) {
	_, err := Ranges(testContext(t), Options{Config: config.Default()}, nil)
	assert.ErrorIs(t, err, ErrNoPath)
}

func TestModeFor(t *testing.T) {
	assert.Equal(t, "go", modeFor("a/b/main.go"))
	assert.Equal(t, "py", modeFor("x.PY"))
	assert.Equal(t, "text", modeFor("Makefile"))
}

func TestExpandTabs(t *testing.T) {
	assert.Equal(t, "    a", expandTabs("\ta", 4))
	assert.Equal(t, "ab  c", expandTabs("ab\tc", 4))
	assert.Equal(t, "plain", expandTabs("plain", 4))
}
