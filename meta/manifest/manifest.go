// Package manifest provides units described by YAML, TOML or JSON manifest
// files.
//
// A manifest names its unit, the units it references and the types it
// declares:
//
//	name: Acme.Widgets
//	version: 1.2.0
//	references: ["System.Runtime, Version=4.0.0"]
//	types:
//	  - name: Gadget
//	    namespace: Acme.Widgets
//	    fields:
//	      - {name: Label, type: System.String}
//
// Type names in expressions are fully qualified and resolve against the
// unit itself first, then its direct references in declaration order.
package manifest

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/teranos/stubgen/errors"
	"github.com/teranos/stubgen/logger"
	"github.com/teranos/stubgen/meta"
)

// Provider loads manifest units and caches them for its lifetime.
type Provider struct {
	resolver meta.Resolver

	byPath map[string]*unit
	byName map[string]*unit

	log *zap.SugaredLogger
}

// New creates an empty Provider.
func New() *Provider {
	return &Provider{
		byPath: make(map[string]*unit),
		byName: make(map[string]*unit),
		log:    logger.ComponentLogger("stubgen.manifest"),
	}
}

// Extensions lists the manifest formats, in resolution preference order.
func (p *Provider) Extensions() []string {
	return []string{".yaml", ".yml", ".toml", ".json"}
}

// SetResolver replaces the hook used to locate referenced units.
func (p *Provider) SetResolver(r meta.Resolver) {
	p.resolver = r
}

// Load loads the manifest at path together with every unit it references.
func (p *Provider) Load(path string) (meta.Unit, error) {
	u, err := p.load(path)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (p *Provider) load(path string) (*unit, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid path %s", path)
	}
	if u, ok := p.byPath[abs]; ok {
		return u, nil
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("manifest %s does not exist", path)
		}
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	doc, err := decodeDocument(abs, data)
	if err != nil {
		return nil, err
	}

	u := newUnit(abs, doc)
	if prev, ok := p.byName[u.name]; ok {
		p.log.Warnw("Unit loaded from two locations; keeping the first",
			logger.FieldUnit, u.name,
			logger.FieldPath, abs,
			"first", prev.path)
		p.byPath[abs] = prev
		return prev, nil
	}

	// Register before resolving references so reference cycles terminate.
	p.byPath[abs] = u
	p.byName[u.name] = u

	if err := p.loadReferences(u, doc.References); err != nil {
		p.forget(u)
		return nil, errors.Wrapf(err, "unit %s", u.name)
	}
	if err := link(u); err != nil {
		p.forget(u)
		return nil, err
	}

	p.log.Debugw("Loaded manifest",
		logger.FieldUnit, u.name,
		logger.FieldPath, abs,
		logger.FieldCount, len(u.exported))
	return u, nil
}

func (p *Provider) forget(u *unit) {
	delete(p.byPath, u.path)
	delete(p.byName, u.name)
}

func (p *Provider) loadReferences(u *unit, refs []string) error {
	for _, ref := range refs {
		id := meta.ParseIdentity(ref)

		dep, ok := p.byName[id.Name]
		if !ok {
			if p.resolver == nil {
				return errors.NewUnresolvedError(ref, nil)
			}
			path, err := p.resolver(ref)
			if err != nil {
				return err
			}
			if dep, err = p.load(path); err != nil {
				return err
			}
			if dep.name != id.Name {
				return errors.Wrapf(errors.ErrInvalidManifest,
					"%s resolved to %s, which declares unit %s", ref, dep.path, dep.name)
			}
		}

		if !id.Satisfies(dep.version) {
			p.log.Warnw("Referenced unit is older than requested",
				logger.FieldUnit, u.name,
				logger.FieldIdentity, ref,
				logger.FieldWant, id.Version.String(),
				logger.FieldHave, dep.version)
		}
		u.refs = append(u.refs, dep)
	}
	return nil
}

func newUnit(path string, doc *document) *unit {
	u := &unit{
		name:    strings.TrimSpace(doc.Name),
		version: strings.TrimSpace(doc.Version),
		path:    path,
		index:   make(map[string]*mtype),
	}
	for _, d := range doc.Types {
		vis := strings.ToLower(d.Visibility)
		t := &mtype{
			decl:   d,
			ns:     meta.NewNamespace(d.Namespace),
			unit:   u.name,
			public: vis == "" || vis == "public",
		}
		u.types = append(u.types, t)
		u.index[t.ns.Qualify(t.decl.Name)] = t
		if t.public {
			u.exported = append(u.exported, t)
		}
	}
	return u
}
