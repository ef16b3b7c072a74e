package testing

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/teranos/stubgen/errors"
	"github.com/teranos/stubgen/meta"
)

// Type is an in-memory meta.Type for tests.
type Type struct {
	TypeName  string
	NS        meta.Namespace
	UnitName  string
	TypeKind  meta.Kind
	TypeDoc   string
	TypeBases []meta.TypeRef
	TypeField []meta.Field
	TypeMeth  []meta.Method
	TypeVals  []meta.EnumValue
}

// NewType creates a class from a qualified name such as "Acme.Widgets.Gadget".
func NewType(qualified, unit string) *Type {
	ns, name := meta.SplitQualified(qualified)
	return &Type{TypeName: name, NS: ns, UnitName: unit}
}

func (t *Type) Name() string { return t.TypeName }
func (t *Type) Namespace() meta.Namespace { return t.NS }
func (t *Type) Unit() string { return t.UnitName }
func (t *Type) Kind() meta.Kind { return t.TypeKind }
func (t *Type) Doc() string { return t.TypeDoc }
func (t *Type) Bases() []meta.TypeRef { return t.TypeBases }
func (t *Type) Fields() []meta.Field { return t.TypeField }
func (t *Type) Methods() []meta.Method { return t.TypeMeth }
func (t *Type) Values() []meta.EnumValue { return t.TypeVals }

// WithField appends a field and returns t.
func (t *Type) WithField(name string, ref meta.TypeRef) *Type {
	t.TypeField = append(t.TypeField, meta.Field{Name: name, Type: ref})
	return t
}

// WithBase appends a base and returns t.
func (t *Type) WithBase(ref meta.TypeRef) *Type {
	t.TypeBases = append(t.TypeBases, ref)
	return t
}

// WithMethod appends a method and returns t.
func (t *Type) WithMethod(m meta.Method) *Type {
	t.TypeMeth = append(t.TypeMeth, m)
	return t
}

// Unit is an in-memory meta.Unit.
type Unit struct {
	UnitName string
	Version  string
	Location string
	Types    []meta.Type
	// Requires lists identities the provider resolves while loading this unit.
	Requires []string
}

func (u *Unit) Name() string { return u.UnitName }
func (u *Unit) Path() string { return u.Location }
func (u *Unit) ExportedTypes() []meta.Type { return u.Types }

func (u *Unit) Identity() string {
	if u.Version == "" {
		return u.UnitName
	}
	return u.UnitName + ", Version=" + u.Version
}

// Provider serves Units keyed by path and resolves their Requires through
// the installed resolver, counting every resolution attempt.
type Provider struct {
	Units    map[string]*Unit
	Resolves []string

	resolver meta.Resolver
	loaded   map[string]bool
}

// NewProvider creates a Provider over the given units, keyed by Location.
func NewProvider(units ...*Unit) *Provider {
	p := &Provider{Units: make(map[string]*Unit), loaded: make(map[string]bool)}
	for _, u := range units {
		p.Units[u.Location] = u
	}
	return p
}

func (p *Provider) Extensions() []string { return []string{".unit"} }

func (p *Provider) SetResolver(r meta.Resolver) { p.resolver = r }

func (p *Provider) Load(path string) (meta.Unit, error) {
	u, ok := p.Units[path]
	if !ok {
		return nil, errors.NewNotFoundError("no unit at %s", path)
	}
	p.loaded[u.UnitName] = true
	for _, req := range u.Requires {
		name := meta.ParseIdentity(req).Name
		if p.loaded[name] {
			continue
		}
		p.Resolves = append(p.Resolves, req)
		if p.resolver == nil {
			return nil, errors.NewUnresolvedError(req, nil)
		}
		depPath, err := p.resolver(req)
		if err != nil {
			return nil, err
		}
		if _, err := p.Load(depPath); err != nil {
			return nil, err
		}
	}
	return u, nil
}

// WriteFile writes content to dir/name, creating parent directories.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

// ReadTree returns every regular file under root keyed by slash-separated
// relative path.
func ReadTree(t *testing.T, root string) map[string]string {
	t.Helper()

	files := make(map[string]string)
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to read tree %s: %v", root, err)
	}
	return files
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
