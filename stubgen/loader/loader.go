// Package loader loads the units stubs are generated for and resolves the
// units they depend on against a directory search list.
package loader

import (
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/teranos/stubgen/errors"
	"github.com/teranos/stubgen/logger"
	"github.com/teranos/stubgen/meta"
)

// Versioned is implemented by units that declare a version.
type Versioned interface {
	Version() string
}

// Loader owns the search paths and target set of one generation session.
type Loader struct {
	provider meta.Provider
	extra    []string

	searchPaths []string
	seenDirs    map[string]bool

	targets map[string]bool
	units   []meta.Unit
	loaded  map[string]meta.Unit
	failed  map[string]error

	log *zap.SugaredLogger
}

// New creates a Loader over provider. extraSearch directories are consulted
// after the directories of the target units.
func New(provider meta.Provider, extraSearch []string) *Loader {
	return &Loader{
		provider: provider,
		extra:    extraSearch,
		seenDirs: make(map[string]bool),
		targets:  make(map[string]bool),
		loaded:   make(map[string]meta.Unit),
		failed:   make(map[string]error),
		log:      logger.ComponentLogger("stubgen.loader"),
	}
}

func (l *Loader) addSearchPath(dir string) {
	if dir == "" {
		return
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	if l.seenDirs[dir] {
		return
	}
	l.seenDirs[dir] = true
	l.searchPaths = append(l.searchPaths, dir)
}

// LoadTargets records the directory of every target as a search path,
// appends the extra search directories, installs the resolver on the
// provider and loads each target in order. Every loaded target's short
// identity joins the target set.
func (l *Loader) LoadTargets(paths []string) ([]meta.Unit, error) {
	for _, p := range paths {
		l.addSearchPath(filepath.Dir(p))
	}
	for _, dir := range l.extra {
		l.addSearchPath(dir)
	}
	l.installResolver()

	units := make([]meta.Unit, 0, len(paths))
	for _, p := range paths {
		u, err := l.load(p)
		if err != nil {
			l.log.Debugw("Failed to load target", logger.FieldPath, p, logger.FieldError, err)
			return nil, err
		}
		name := meta.ParseIdentity(u.Identity()).Name
		if l.targets[name] {
			continue
		}
		l.targets[name] = true
		units = append(units, u)

		l.log.Infow("Loaded target",
			logger.FieldUnit, name,
			logger.FieldPath, u.Path(),
			logger.FieldCount, len(u.ExportedTypes()))
	}
	return units, nil
}

// LoadBuiltin resolves and loads units by identity. They are not targets.
// A resolved unit older than the identity's Version is logged as a warning.
func (l *Loader) LoadBuiltin(identities []string) ([]meta.Unit, error) {
	l.installResolver()

	units := make([]meta.Unit, 0, len(identities))
	for _, identity := range identities {
		path, err := l.Resolve(identity)
		if err != nil {
			return nil, err
		}
		u, err := l.load(path)
		if err != nil {
			l.log.Debugw("Failed to load builtin unit",
				logger.FieldIdentity, identity,
				logger.FieldPath, path,
				logger.FieldError, err)
			return nil, err
		}
		l.checkVersion(identity, u)
		units = append(units, u)
	}
	return units, nil
}

func (l *Loader) checkVersion(identity string, u meta.Unit) {
	v, ok := u.(Versioned)
	if !ok {
		return
	}
	want := meta.ParseIdentity(identity)
	if !want.Satisfies(v.Version()) {
		l.log.Warnw("Resolved unit is older than requested",
			logger.FieldIdentity, identity,
			logger.FieldPath, u.Path(),
			logger.FieldWant, want.Version.String(),
			logger.FieldHave, v.Version())
	}
}

func (l *Loader) load(path string) (meta.Unit, error) {
	key := path
	if abs, err := filepath.Abs(path); err == nil {
		key = abs
	}
	if u, ok := l.loaded[key]; ok {
		return u, nil
	}
	u, err := l.provider.Load(path)
	if err != nil {
		return nil, err
	}
	l.loaded[key] = u
	l.units = append(l.units, u)
	return u, nil
}

// installResolver hands Resolve to the provider. SetResolver replaces any
// hook a previous session installed.
func (l *Loader) installResolver() {
	if rp, ok := l.provider.(meta.ResolvingProvider); ok {
		rp.SetResolver(l.Resolve)
	}
}

// Resolve scans the search paths in order for a file named after the first
// token of identity with one of the provider's extensions. A failed
// resolution is remembered and not retried.
func (l *Loader) Resolve(identity string) (string, error) {
	name := meta.ParseIdentity(identity).Name
	if err, ok := l.failed[name]; ok {
		return "", err
	}

	for _, dir := range l.searchPaths {
		for _, ext := range l.provider.Extensions() {
			candidate := filepath.Join(dir, name+ext)
			info, err := os.Stat(candidate)
			if err != nil || info.IsDir() {
				continue
			}
			l.log.Debugw("Resolved unit",
				logger.FieldIdentity, identity,
				logger.FieldPath, candidate)
			return candidate, nil
		}
	}

	err := errors.NewUnresolvedError(identity, l.searchPaths)
	l.failed[name] = err
	l.log.Errorw("Unresolved unit",
		logger.FieldIdentity, identity,
		logger.FieldCount, len(l.searchPaths))
	return "", err
}

// IsTarget reports whether unit is the short identity of a loaded target.
func (l *Loader) IsTarget(unit string) bool {
	return l.targets[unit]
}

// Targets returns the target set in ascending order.
func (l *Loader) Targets() []string {
	out := make([]string, 0, len(l.targets))
	for name := range l.targets {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// SearchPaths returns the directories Resolve consults, in order.
func (l *Loader) SearchPaths() []string {
	return append([]string(nil), l.searchPaths...)
}

// Units returns every unit loaded directly by this loader, in load order.
func (l *Loader) Units() []meta.Unit {
	return append([]meta.Unit(nil), l.units...)
}
