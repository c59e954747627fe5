package config

import (
	"strings"
)

// Sub returns subsection of the Config by name.
func (x *Config) Sub(name string) *Config {
	return &Config{
		v:    x.v,
		path: append(x.path[:len(x.path):len(x.path)], name),
	}
}

// Value returns configuration value by name.
//
// Result can be casted to a particular type
// via corresponding function (e.g. StringSafe).
// Note: casting via Go `.()` operator is not
// recommended.
func (x *Config) Value(name string) any {
	return x.v.Get(strings.Join(append(x.path[:len(x.path):len(x.path)], name), separator))
}

// Settings returns the whole configuration tree as nested maps. Keys are
// lower-cased. Sections of Sub results are ignored.
func (x *Config) Settings() map[string]any {
	return x.v.AllSettings()
}
