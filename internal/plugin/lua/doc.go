// Package lua runs user folding scripts with gopher-lua.
//
// A script defines a global function that receives the buffer lines and the
// tab size and returns a list of ranges:
//
//	function folding_ranges(lines, tab_size)
//	    local out = {}
//	    for i, text in ipairs(lines) do
//	        if text:match("^%s*#region") then
//	            table.insert(out, { start = i, ["end"] = i + 1 })
//	        end
//	    end
//	    return out
//	end
//
// Each range may be given as { start = s, ["end"] = e } or as { s, e }.
// Line numbers are 1-based. Scripts also see a keyfold module with helpers:
//
//	keyfold.indent_width(text, tab_size)  -- -1 for blank lines
//
// # State
//
// State wraps an LState with only the base, table, string and math
// libraries opened. dofile, loadfile and load are removed. All calls are
// serialized by a mutex, since an LState is not goroutine-safe.
//
//	p, err := lua.NewProvider("folds.lua")
//	if err != nil {
//	    return err
//	}
//	defer p.Close()
//
//	ctl := folding.New(ed, p)
package lua
