package commands

import (
	"github.com/spf13/cobra"

	"github.com/teranos/stubgen/config"
	"github.com/teranos/stubgen/errors"
	"github.com/teranos/stubgen/meta"
	"github.com/teranos/stubgen/meta/gosrc"
	"github.com/teranos/stubgen/meta/manifest"
	"github.com/teranos/stubgen/stubgen"
	"github.com/teranos/stubgen/stubgen/python"
	"github.com/teranos/stubgen/stubgen/registry"
)

// app carries the configuration shared by all commands.
type app struct {
	configPath string
	jsonLogs   bool
	verbosity  int

	cfg *config.Config
}

// loadConfig reads --config, or the nearest stubgen.toml.
func (a *app) loadConfig() error {
	var (
		cfg *config.Config
		err error
	)
	if a.configPath != "" {
		cfg, err = config.LoadFromFile(a.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}
	a.cfg = cfg
	return nil
}

// generateFlags are shared by generate, check and watch.
type generateFlags struct {
	dest        string
	provider    string
	search      []string
	builtin     []string
	onlyTargets bool
	snakeCase   bool
}

func (f *generateFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.dest, "dest", "o", "", "Output directory (default: stub.dest)")
	flags.StringVarP(&f.provider, "provider", "p", "", "Unit provider: manifest or go (default: stub.provider)")
	flags.StringSliceVarP(&f.search, "search", "s", nil, "Additional directories searched for dependencies")
	flags.StringSliceVar(&f.builtin, "builtin", nil, "Unit identities always loaded and stubbed")
	flags.BoolVar(&f.onlyTargets, "only-targets", false, "Only emit types declared by target units")
	flags.BoolVar(&f.snakeCase, "snake-case", false, "Rename members to snake_case")
}

// apply overlays flags the user set on cfg.
func (f *generateFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("dest") {
		cfg.Stub.Dest = f.dest
	}
	if flags.Changed("provider") {
		cfg.Stub.Provider = f.provider
	}
	if flags.Changed("search") {
		cfg.Search.Paths = append(cfg.Search.Paths, f.search...)
	}
	if flags.Changed("builtin") {
		cfg.Stub.Builtin = append(cfg.Stub.Builtin, f.builtin...)
	}
	if flags.Changed("only-targets") {
		cfg.Stub.OnlyTargetTypes = f.onlyTargets
	}
	if flags.Changed("snake-case") {
		cfg.Python.SnakeCaseMembers = f.snakeCase
	}
	return cfg.Validate()
}

// sessionOptions builds session options from cfg. Positional arguments
// replace stub.targets.
func sessionOptions(cfg *config.Config, args []string) stubgen.Options {
	targets := cfg.Stub.Targets
	if len(args) > 0 {
		targets = args
	}
	return stubgen.Options{
		Dest:            cfg.Stub.Dest,
		Targets:         targets,
		SearchPaths:     cfg.Search.Paths,
		OnlyTargetTypes: cfg.Stub.OnlyTargetTypes,
		BuiltinUnits:    cfg.Stub.Builtin,
		StubFileName:    cfg.Stub.FileName,
		GlobalDir:       cfg.Stub.GlobalDir,
	}
}

// newProvider returns a fresh provider. Providers cache units, so every
// session that must observe changes on disk gets its own.
func newProvider(cfg *config.Config) meta.Provider {
	if cfg.Stub.Provider == config.ProviderGo {
		return gosrc.New()
	}
	return manifest.New()
}

// watchExtensions lists the file extensions that trigger a rerun for
// directory targets.
func watchExtensions(cfg *config.Config) []string {
	if cfg.Stub.Provider == config.ProviderGo {
		return []string{".go"}
	}
	return manifest.New().Extensions()
}

func rendererFactory(cfg *config.Config) stubgen.RendererFactory {
	opts := python.Options{
		SnakeCaseMembers: cfg.Python.SnakeCaseMembers,
		GlobalModule:     cfg.Stub.GlobalDir,
	}
	return func(reg registry.Registrar) stubgen.Renderer {
		return python.NewRenderer(reg, opts)
	}
}
