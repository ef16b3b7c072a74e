package config

import (
	"path/filepath"
	"strings"

	"github.com/teranos/stubgen/errors"
)

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	switch c.Stub.Provider {
	case ProviderManifest, ProviderGo:
	default:
		return invalid("stub.provider must be %q or %q, got %q", ProviderManifest, ProviderGo, c.Stub.Provider)
	}

	// Go packages are located by the go tool, so builtin identities have no
	// search-path resolution to go through.
	if c.Stub.Provider == ProviderGo && len(c.Stub.Builtin) > 0 {
		err := invalid("stub.builtin is not supported with provider %q", ProviderGo)
		return errors.WithHint(err, "remove stub.builtin or pass the packages as targets")
	}

	if strings.TrimSpace(c.Stub.Dest) == "" {
		return invalid("stub.dest cannot be empty")
	}

	// The stub file sits directly in each namespace directory.
	if c.Stub.FileName == "" || filepath.Base(c.Stub.FileName) != c.Stub.FileName {
		return invalid("stub.file_name must be a plain file name, got %q", c.Stub.FileName)
	}
	if !strings.HasSuffix(c.Stub.FileName, ".pyi") && !strings.HasSuffix(c.Stub.FileName, ".py") {
		return invalid("stub.file_name must end in .pyi or .py, got %q", c.Stub.FileName)
	}

	// The global directory doubles as a Python module name.
	if !isIdentifier(c.Stub.GlobalDir) {
		return invalid("stub.global_dir must be a Python identifier, got %q", c.Stub.GlobalDir)
	}

	if c.Watch.DebounceMS < 0 {
		return invalid("watch.debounce_ms must be >= 0, got %d", c.Watch.DebounceMS)
	}
	if c.Log.Verbosity < 0 {
		return invalid("log.verbosity must be >= 0, got %d", c.Log.Verbosity)
	}

	for _, p := range c.Search.Paths {
		if strings.TrimSpace(p) == "" {
			return invalid("search.paths cannot contain empty entries")
		}
	}
	return nil
}

func invalid(format string, args ...interface{}) error {
	return errors.Wrapf(errors.ErrInvalidConfig, format, args...)
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
