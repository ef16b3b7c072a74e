package gosrc

import (
	"fmt"
	"go/constant"
	"go/types"

	"github.com/teranos/stubgen/meta"
)

// gtype is a named Go type. Members are computed on first use.
type gtype struct {
	p   *Provider
	obj *types.TypeName

	built   bool
	kind    meta.Kind
	bases   []meta.TypeRef
	fields  []meta.Field
	methods []meta.Method
	values  []meta.EnumValue
}

func (t *gtype) Name() string { return t.obj.Name() }

func (t *gtype) Namespace() meta.Namespace {
	if t.obj.Pkg() == nil {
		return meta.Global
	}
	return Namespace(t.obj.Pkg().Path())
}

func (t *gtype) Unit() string {
	if t.obj.Pkg() == nil {
		return BuiltinUnit
	}
	return t.obj.Pkg().Path()
}

func (t *gtype) Doc() string { return t.p.docs.get(t.obj) }

func (t *gtype) Kind() meta.Kind { t.build(); return t.kind }
func (t *gtype) Bases() []meta.TypeRef { t.build(); return t.bases }
func (t *gtype) Fields() []meta.Field { t.build(); return t.fields }
func (t *gtype) Methods() []meta.Method { t.build(); return t.methods }
func (t *gtype) Values() []meta.EnumValue { t.build(); return t.values }

func (t *gtype) build() {
	if t.built {
		return
	}
	t.built = true

	named, ok := t.obj.Type().(*types.Named)
	if !ok {
		return
	}

	switch under := named.Underlying().(type) {
	case *types.Struct:
		t.kind = meta.KindStruct
		t.buildStruct(under)
	case *types.Interface:
		t.kind = meta.KindInterface
		t.buildInterface(under)
		return
	case *types.Basic:
		t.values = t.enumValues(named)
		if len(t.values) > 0 && under.Info()&(types.IsString|types.IsInteger) != 0 {
			t.kind = meta.KindEnum
		} else {
			t.values = nil
			t.kind = meta.KindClass
			t.bases = append(t.bases, t.p.ref(under))
		}
	default:
		t.kind = meta.KindClass
	}

	for i := 0; i < named.NumMethods(); i++ {
		if m := named.Method(i); m.Exported() {
			t.methods = append(t.methods, t.p.method(m, false))
		}
	}
}

func (t *gtype) buildStruct(st *types.Struct) {
	for i := 0; i < st.NumFields(); i++ {
		f := st.Field(i)
		if f.Embedded() {
			if ref := t.p.ref(f.Type()); ref.Kind == meta.RefNamed || ref.Kind == meta.RefOptional {
				t.bases = append(t.bases, stripOptional(ref))
			}
			continue
		}
		if !f.Exported() {
			continue
		}
		t.fields = append(t.fields, meta.Field{
			Name: f.Name(),
			Type: t.p.ref(f.Type()),
			Doc:  t.p.docs.get(f),
		})
	}
}

func (t *gtype) buildInterface(iface *types.Interface) {
	for i := 0; i < iface.NumEmbeddeds(); i++ {
		if ref := t.p.ref(iface.EmbeddedType(i)); ref.Kind == meta.RefNamed {
			t.bases = append(t.bases, ref)
		}
	}
	for i := 0; i < iface.NumExplicitMethods(); i++ {
		if m := iface.ExplicitMethod(i); m.Exported() {
			t.methods = append(t.methods, t.p.method(m, false))
		}
	}
}

// enumValues collects the exported package-level constants of type named in
// declaration order.
func (t *gtype) enumValues(named *types.Named) []meta.EnumValue {
	pkg := t.obj.Pkg()
	if pkg == nil {
		return nil
	}

	var consts []types.Object
	scope := pkg.Scope()
	for _, name := range scope.Names() {
		c, ok := scope.Lookup(name).(*types.Const)
		if ok && c.Exported() && types.Identical(c.Type(), named) {
			consts = append(consts, c)
		}
	}
	sortedByPos(consts)

	values := make([]meta.EnumValue, 0, len(consts))
	for _, obj := range consts {
		c := obj.(*types.Const)
		val := c.Val()
		lit := val.ExactString()
		if val.Kind() == constant.String {
			lit = constant.StringVal(val)
		}
		values = append(values, meta.EnumValue{Name: c.Name(), Value: lit})
	}
	return values
}

func stripOptional(ref meta.TypeRef) meta.TypeRef {
	if ref.Kind == meta.RefOptional && len(ref.Elems) == 1 {
		return ref.Elems[0]
	}
	return ref
}

// method converts a function or method. A trailing error result is dropped:
// the Python side raises instead of returning it.
func (p *Provider) method(fn *types.Func, static bool) meta.Method {
	sig := fn.Type().(*types.Signature)
	m := meta.Method{Name: fn.Name(), Static: static, Doc: p.docs.get(fn)}

	params := sig.Params()
	for i := 0; i < params.Len(); i++ {
		v := params.At(i)
		name := v.Name()
		if name == "" || name == "_" {
			name = fmt.Sprintf("arg%d", i)
		}
		typ := v.Type()
		variadic := sig.Variadic() && i == params.Len()-1
		if variadic {
			if s, ok := typ.(*types.Slice); ok {
				typ = s.Elem()
			}
		}
		m.Params = append(m.Params, meta.Param{Name: name, Type: p.ref(typ), Variadic: variadic})
	}

	results := sig.Results()
	n := results.Len()
	if n > 0 && isError(results.At(n-1).Type()) {
		n--
	}
	for i := 0; i < n; i++ {
		m.Results = append(m.Results, p.ref(results.At(i).Type()))
	}
	return m
}

func isError(t types.Type) bool {
	return types.Identical(t, types.Universe.Lookup("error").Type())
}

// ref converts a Go type to a reference. Named types that are not exported
// become Any.
func (p *Provider) ref(t types.Type) meta.TypeRef {
	switch t := t.(type) {
	case *types.Basic:
		return basicRef(t)
	case *types.Pointer:
		return meta.OptionalOf(p.ref(t.Elem()))
	case *types.Slice:
		if isByte(t.Elem()) {
			return meta.Prim(meta.PrimBytes)
		}
		return meta.ListOf(p.ref(t.Elem()))
	case *types.Array:
		if isByte(t.Elem()) {
			return meta.Prim(meta.PrimBytes)
		}
		return meta.ListOf(p.ref(t.Elem()))
	case *types.Map:
		return meta.DictOf(p.ref(t.Key()), p.ref(t.Elem()))
	case *types.Signature:
		return meta.Callable()
	case *types.Alias:
		return p.ref(types.Unalias(t))
	case *types.Named:
		obj := t.Origin().Obj()
		if obj.Pkg() == nil {
			if obj.Name() == "error" {
				return meta.Named(p.typeFor(obj))
			}
			return meta.Any()
		}
		if !obj.Exported() {
			return meta.Any()
		}
		return meta.Named(p.typeFor(obj))
	default:
		return meta.Any()
	}
}

func basicRef(b *types.Basic) meta.TypeRef {
	info := b.Info()
	switch {
	case info&types.IsBoolean != 0:
		return meta.Prim(meta.PrimBool)
	case info&types.IsString != 0:
		return meta.Prim(meta.PrimString)
	case info&types.IsInteger != 0:
		return meta.Prim(meta.PrimInt)
	case info&types.IsFloat != 0:
		return meta.Prim(meta.PrimFloat)
	case b.Kind() == types.UntypedNil:
		return meta.None()
	default:
		return meta.Any()
	}
}

func isByte(t types.Type) bool {
	b, ok := t.(*types.Basic)
	return ok && b.Kind() == types.Byte
}
