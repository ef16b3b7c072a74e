// Package config loads stubgen settings from stubgen.toml, STUBGEN_*
// environment variables and defaults, in that precedence order.
package config

import "fmt"

// Config represents the stubgen configuration
type Config struct {
	Stub   StubConfig   `mapstructure:"stub" toml:"stub"`
	Search SearchConfig `mapstructure:"search" toml:"search"`
	Python PythonConfig `mapstructure:"python" toml:"python"`
	Watch  WatchConfig  `mapstructure:"watch" toml:"watch"`
	Log    LogConfig    `mapstructure:"log" toml:"log"`
}

// StubConfig configures what is generated and where
type StubConfig struct {
	Provider        string   `mapstructure:"provider" toml:"provider"`                   // manifest or go
	Targets         []string `mapstructure:"targets" toml:"targets"`                     // target unit paths, used when none are given on the command line
	Dest            string   `mapstructure:"dest" toml:"dest"`                           // output root
	OnlyTargetTypes bool     `mapstructure:"only_target_types" toml:"only_target_types"` // skip types from dependency units
	FileName        string   `mapstructure:"file_name" toml:"file_name"`                 // stub file per namespace directory
	GlobalDir       string   `mapstructure:"global_dir" toml:"global_dir"`               // directory for types without a namespace
	Builtin         []string `mapstructure:"builtin" toml:"builtin"`                     // unit identities always loaded
}

// SearchConfig configures dependency resolution
type SearchConfig struct {
	// Paths are searched after the target directories, in order.
	// STUBGEN_SEARCH_PATHS overrides them with a shell-quoted list.
	Paths []string `mapstructure:"paths" toml:"paths"`
}

// PythonConfig tunes the rendered stubs
type PythonConfig struct {
	SnakeCaseMembers bool `mapstructure:"snake_case_members" toml:"snake_case_members"`
}

// WatchConfig configures watch mode
type WatchConfig struct {
	DebounceMS int `mapstructure:"debounce_ms" toml:"debounce_ms"` // quiet period before a rerun
}

// LogConfig configures logging when no flag overrides it
type LogConfig struct {
	JSON      bool `mapstructure:"json" toml:"json"`
	Verbosity int  `mapstructure:"verbosity" toml:"verbosity"`
}

// Provider names
const (
	ProviderManifest = "manifest"
	ProviderGo       = "go"
)

// File system constants
const (
	FileName               = "stubgen.toml"
	DefaultDirPermissions  = 0755
	DefaultFilePermissions = 0644
)

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{Stub: {Provider: %s, Dest: %s, Targets: %d}, Search: {Paths: %d}}",
		c.Stub.Provider, c.Stub.Dest, len(c.Stub.Targets), len(c.Search.Paths))
}
