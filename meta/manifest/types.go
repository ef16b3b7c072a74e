package manifest

import (
	"github.com/teranos/stubgen/meta"
)

// unit is a loaded manifest.
type unit struct {
	name     string
	version  string
	path     string
	types    []*mtype
	exported []meta.Type
	index    map[string]*mtype
	refs     []*unit
}

func (u *unit) Name() string { return u.name }
func (u *unit) Version() string { return u.version }
func (u *unit) Path() string { return u.path }
func (u *unit) ExportedTypes() []meta.Type { return u.exported }

func (u *unit) Identity() string {
	if u.version == "" {
		return u.name
	}
	return u.name + ", Version=" + u.version
}

// mtype is a manifest-declared type. Its references are filled in by link.
type mtype struct {
	decl   typeDoc
	ns     meta.Namespace
	unit   string
	public bool

	bases   []meta.TypeRef
	fields  []meta.Field
	methods []meta.Method
	values  []meta.EnumValue
}

func (t *mtype) Name() string { return t.decl.Name }
func (t *mtype) Namespace() meta.Namespace { return t.ns }
func (t *mtype) Unit() string { return t.unit }
func (t *mtype) Kind() meta.Kind { return meta.ParseKind(t.decl.Kind) }
func (t *mtype) Doc() string { return t.decl.Doc }
func (t *mtype) Bases() []meta.TypeRef { return t.bases }
func (t *mtype) Fields() []meta.Field { return t.fields }
func (t *mtype) Methods() []meta.Method { return t.methods }
func (t *mtype) Values() []meta.EnumValue { return t.values }
