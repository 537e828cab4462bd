package config

import (
	"fmt"
	"slices"
	"strconv"
	"time"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "KEYFOLD_"

// envSetters maps each supported variable to the setting it overrides.
var envSetters = map[string]func(c *Config, v string) error{
	EnvPrefix + "FOLDING_DEBOUNCE": func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		c.Folding.Debounce = Duration(d)
		return nil
	},
	EnvPrefix + "FOLDING_SHOW_MARKERS": func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		c.Folding.ShowMarkers = b
		return nil
	},
	EnvPrefix + "EDITOR_TAB_SIZE": func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		c.Editor.TabSize = n
		return nil
	},
	EnvPrefix + "LOG_LEVEL": func(c *Config, v string) error {
		c.Logging.Level = v
		return nil
	},
	EnvPrefix + "LOG_FORMAT": func(c *Config, v string) error {
		c.Logging.Format = v
		return nil
	},
	EnvPrefix + "LOG_FILE": func(c *Config, v string) error {
		c.Logging.File = v
		return nil
	},
	EnvPrefix + "LUA_PROVIDER": func(c *Config, v string) error {
		c.Plugin.LuaProvider = v
		return nil
	},
}

// EnvVars returns the supported environment variable names.
func EnvVars() []string {
	names := make([]string, 0, len(envSetters))
	for name := range envSetters {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func applyEnv(c *Config, lookup func(string) (string, bool)) error {
	for name, set := range envSetters {
		v, ok := lookup(name)
		if !ok {
			continue
		}
		if err := set(c, v); err != nil {
			return &ValidationError{Path: name, Message: fmt.Sprintf("cannot parse: %v", err), Value: v}
		}
	}
	return nil
}
