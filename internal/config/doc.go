// Package config loads keyfold settings.
//
// Settings are layered, each layer overriding the one below:
//
//	┌───────────────────────────┐
//	│  3. KEYFOLD_* environment │  ← Highest priority
//	├───────────────────────────┤
//	│  2. TOML config file      │
//	├───────────────────────────┤
//	│  1. Built-in defaults     │  ← Lowest priority
//	└───────────────────────────┘
//
// A config file looks like:
//
//	[folding]
//	debounce = "200ms"
//	show_markers = true
//
//	[editor]
//	tab_size = 4
//
//	[logging]
//	level = "info"
//	format = "console"
//	file = ""
//
//	[plugin]
//	lua_provider = "~/.config/keyfold/ranges.lua"
//
// Unknown keys are rejected with a *ParseError. Values that parse but are
// out of range fail validation with a *ValidationError wrapping
// ErrInvalidValue.
package config
