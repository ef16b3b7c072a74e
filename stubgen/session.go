// Package stubgen generates one Python stub file per namespace for every type
// reachable from a set of target units.
package stubgen

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teranos/stubgen/errors"
	"github.com/teranos/stubgen/logger"
	"github.com/teranos/stubgen/meta"
	"github.com/teranos/stubgen/stubgen/loader"
	"github.com/teranos/stubgen/stubgen/pathmap"
	"github.com/teranos/stubgen/stubgen/registry"
)

// DefaultStubFileName is the file written into every namespace directory.
const DefaultStubFileName = "__init__.pyi"

// Renderer turns the ordered member types of one namespace into stub text.
// It registers every type it references through the Registrar it was built with.
type Renderer interface {
	Render(ns meta.Namespace, types []meta.Type) (string, error)
}

// RendererFactory builds the renderer for a session around its registry.
type RendererFactory func(reg registry.Registrar) Renderer

// Options configures one generation run.
type Options struct {
	// Dest is the root of the output tree.
	Dest string
	// Targets are the unit paths whose exported types are requested.
	Targets []string
	// SearchPaths are consulted after the target directories when resolving.
	SearchPaths []string
	// OnlyTargetTypes restricts output to types declared by a target unit.
	OnlyTargetTypes bool
	// BuiltinUnits are identities loaded and stubbed on every run.
	BuiltinUnits []string
	// StubFileName defaults to DefaultStubFileName.
	StubFileName string
	// GlobalDir defaults to pathmap.GlobalDir.
	GlobalDir string
}

// WrittenFile describes one stub file a session wrote.
type WrittenFile struct {
	Namespace string
	Path      string
	Types     int
	// Reemit is true when the namespace had already been written this run.
	Reemit bool
}

// Report summarises a run.
type Report struct {
	Session    string
	Files      []WrittenFile
	Iterations int
	// Skipped lists namespaces left empty by target filtering.
	Skipped  []string
	Units    []string
	Duration time.Duration
}

// Session is the state of one generation run. A Session is not safe for
// concurrent use; run concurrent generations with separate sessions.
type Session struct {
	ID string

	opts        Options
	provider    meta.Provider
	newRenderer RendererFactory

	registry *registry.Registry
	loader   *loader.Loader
	mapper   pathmap.Mapper

	log *zap.SugaredLogger
}

// New creates a session over provider.
func New(provider meta.Provider, newRenderer RendererFactory, opts Options) *Session {
	if opts.StubFileName == "" {
		opts.StubFileName = DefaultStubFileName
	}
	id := uuid.NewString()
	return &Session{
		ID:          id,
		opts:        opts,
		provider:    provider,
		newRenderer: newRenderer,
		registry:    registry.New(),
		loader:      loader.New(provider, opts.SearchPaths),
		mapper:      pathmap.Mapper{Root: opts.Dest, Reserved: opts.GlobalDir},
		log:         logger.ChildLogger(logger.ComponentLogger("stubgen.session"), logger.FieldSession, id),
	}
}

// Registry exposes the session's dependency registry.
func (s *Session) Registry() *registry.Registry { return s.registry }

// Loader exposes the session's loader.
func (s *Session) Loader() *loader.Loader { return s.loader }

// Run loads the targets and builtin units, registers their exported types
// and writes stubs until no namespace is dirty.
func (s *Session) Run() (*Report, error) {
	start := time.Now()
	if len(s.opts.Targets) == 0 {
		return nil, errors.WithHint(errors.New("no target units given"), "pass one or more unit paths")
	}

	targets, err := s.loader.LoadTargets(s.opts.Targets)
	if err != nil {
		return nil, err
	}
	builtins, err := s.loader.LoadBuiltin(s.opts.BuiltinUnits)
	if err != nil {
		return nil, err
	}

	report := &Report{Session: s.ID}
	for _, u := range append(targets, builtins...) {
		report.Units = append(report.Units, u.Identity())
		if err := s.register(u); err != nil {
			return nil, err
		}
	}

	renderer := s.newRenderer(s.registry)
	for {
		ns, types, ok := s.registry.RemoveDirtyNamespace()
		if !ok {
			break
		}
		report.Iterations++

		written, err := s.writeStub(renderer, ns, types)
		if err != nil {
			return nil, err
		}
		if written == nil {
			report.Skipped = append(report.Skipped, ns.String())
			continue
		}
		report.Files = append(report.Files, *written)
	}

	report.Duration = time.Since(start)
	s.log.Infow("Generation complete",
		logger.FieldCount, len(report.Files),
		logger.FieldIteration, report.Iterations,
		logger.FieldDurationMS, report.Duration.Milliseconds())
	return report, nil
}

// register adds the exported types of u, rejecting reserved namespaces
// before anything is written.
func (s *Session) register(u meta.Unit) error {
	for _, t := range u.ExportedTypes() {
		if err := s.mapper.Validate(t.Namespace()); err != nil {
			return errors.Wrapf(err, "unit %s declares %s", u.Name(), t.Namespace().Qualify(t.Name()))
		}
		if s.registry.AddDependency(t) {
			s.log.Debugw("Registered type",
				logger.FieldType, t.Namespace().Qualify(t.Name()),
				logger.FieldUnit, t.Unit())
		}
	}
	return nil
}

// writeStub emits the stub for ns. It returns nil without touching the
// registry when target filtering leaves nothing to write.
func (s *Session) writeStub(renderer Renderer, ns meta.Namespace, types []meta.Type) (*WrittenFile, error) {
	if s.opts.OnlyTargetTypes {
		kept := types[:0]
		for _, t := range types {
			if s.loader.IsTarget(t.Unit()) {
				kept = append(kept, t)
			}
		}
		types = kept
	}
	if len(types) == 0 {
		s.log.Debugw("Skipping namespace without target types", logger.FieldNamespace, ns.String())
		return nil, nil
	}

	SortTypes(types)

	dir, err := s.mapper.Dir(ns)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "failed to create %s", dir)
	}

	reemit := s.registry.Emitted(ns)
	s.registry.ClearCurrent(ns)

	text, err := renderer.Render(ns, types)
	if err != nil {
		s.log.Errorw("Renderer failed", logger.FieldNamespace, ns.String(), logger.FieldError, err)
		return nil, err
	}

	path := filepath.Join(dir, s.opts.StubFileName)
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return nil, errors.Wrapf(err, "failed to write %s", path)
	}

	s.log.Infow("Wrote stub",
		logger.FieldNamespace, ns.String(),
		logger.FieldPath, path,
		logger.FieldCount, len(types),
		logger.FieldPending, s.registry.Pending())

	return &WrittenFile{Namespace: ns.String(), Path: path, Types: len(types), Reemit: reemit}, nil
}

// SortTypes orders types by simple name, then declaring unit, then kind.
func SortTypes(types []meta.Type) {
	sort.SliceStable(types, func(i, j int) bool {
		a, b := types[i], types[j]
		if a.Name() != b.Name() {
			return a.Name() < b.Name()
		}
		if a.Unit() != b.Unit() {
			return a.Unit() < b.Unit()
		}
		return a.Kind() < b.Kind()
	})
}
