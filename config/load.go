package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/spf13/viper"

	"github.com/teranos/stubgen/errors"
)

// EnvPrefix prefixes every environment variable stubgen reads.
const EnvPrefix = "STUBGEN"

// SearchPathsEnv holds a shell-quoted list of search directories.
const SearchPathsEnv = EnvPrefix + "_SEARCH_PATHS"

// Load reads the configuration from the nearest stubgen.toml at or above the
// working directory, then the environment.
func Load() (*Config, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get working directory")
	}
	return LoadFrom(dir)
}

// LoadFrom is Load with the upward search starting at dir.
func LoadFrom(dir string) (*Config, error) {
	v := newViper()
	if path := FindProjectConfig(dir); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", path)
		}
	}
	return LoadWithViper(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", configPath)
	}
	return LoadWithViper(v)
}

// LoadWithViper loads configuration using a provided Viper instance
func LoadWithViper(v *viper.Viper) (*Config, error) {
	if raw := os.Getenv(SearchPathsEnv); raw != "" {
		paths, err := shellquote.Split(raw)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInvalidConfig, "%s: %v", SearchPathsEnv, err)
		}
		v.Set("search.paths", paths)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// newViper initializes Viper with environment binding and defaults
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// FindProjectConfig searches for stubgen.toml by walking up from dir.
// Returns "" when none is found.
func FindProjectConfig(dir string) string {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}
	for {
		path := filepath.Join(dir, FileName)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
