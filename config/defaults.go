package config

import (
	"github.com/spf13/viper"

	"github.com/teranos/stubgen/stubgen"
	"github.com/teranos/stubgen/stubgen/pathmap"
	"github.com/teranos/stubgen/stubgen/watch"
)

// Defaults
const (
	DefaultProvider = ProviderManifest
	DefaultDest     = "stubs"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("stub.provider", DefaultProvider)
	v.SetDefault("stub.targets", []string{})
	v.SetDefault("stub.dest", DefaultDest)
	v.SetDefault("stub.only_target_types", false)
	v.SetDefault("stub.file_name", stubgen.DefaultStubFileName)
	v.SetDefault("stub.global_dir", pathmap.GlobalDir)
	v.SetDefault("stub.builtin", []string{})

	v.SetDefault("search.paths", []string{})

	v.SetDefault("python.snake_case_members", false)

	v.SetDefault("watch.debounce_ms", int(watch.DefaultDebounce.Milliseconds()))

	v.SetDefault("log.json", false)
	v.SetDefault("log.verbosity", 0)
}

// Default returns the configuration SetDefaults describes.
func Default() *Config {
	return &Config{
		Stub: StubConfig{
			Provider:  DefaultProvider,
			Targets:   []string{},
			Dest:      DefaultDest,
			FileName:  stubgen.DefaultStubFileName,
			GlobalDir: pathmap.GlobalDir,
			Builtin:   []string{},
		},
		Search: SearchConfig{Paths: []string{}},
		Watch:  WatchConfig{DebounceMS: int(watch.DefaultDebounce.Milliseconds())},
	}
}
