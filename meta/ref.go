package meta

// RefKind classifies a type reference.
type RefKind int

const (
	RefAny RefKind = iota
	RefNamed
	RefPrimitive
	RefList
	RefDict
	RefOptional
	RefTuple
	RefCallable
)

// Primitive names understood by renderers.
const (
	PrimString = "str"
	PrimInt    = "int"
	PrimFloat  = "float"
	PrimBool   = "bool"
	PrimBytes  = "bytes"
	PrimNone   = "none"
)

// TypeRef is a use of a type inside a declaration: a field type, a base, a
// parameter or result.
type TypeRef struct {
	Kind RefKind
	// Named is set for RefNamed.
	Named Type
	// Primitive is set for RefPrimitive.
	Primitive string
	// Elems holds the element for RefList and RefOptional, key and value for
	// RefDict, members for RefTuple.
	Elems []TypeRef
}

// Any is the unknown type.
func Any() TypeRef { return TypeRef{Kind: RefAny} }

// None is the empty result.
func None() TypeRef { return Prim(PrimNone) }

// Named references a declared type.
func Named(t Type) TypeRef { return TypeRef{Kind: RefNamed, Named: t} }

// Prim references a primitive.
func Prim(name string) TypeRef { return TypeRef{Kind: RefPrimitive, Primitive: name} }

// ListOf references a homogeneous sequence.
func ListOf(elem TypeRef) TypeRef { return TypeRef{Kind: RefList, Elems: []TypeRef{elem}} }

// DictOf references a mapping.
func DictOf(key, val TypeRef) TypeRef { return TypeRef{Kind: RefDict, Elems: []TypeRef{key, val}} }

// OptionalOf references a value that may be absent.
func OptionalOf(elem TypeRef) TypeRef {
	if elem.Kind == RefOptional || elem.Kind == RefAny {
		return elem
	}
	return TypeRef{Kind: RefOptional, Elems: []TypeRef{elem}}
}

// TupleOf references a fixed-size group of values.
func TupleOf(elems ...TypeRef) TypeRef { return TypeRef{Kind: RefTuple, Elems: elems} }

// Callable references a function value.
func Callable() TypeRef { return TypeRef{Kind: RefCallable} }

// Walk calls fn for every named type in r, outermost first.
func (r TypeRef) Walk(fn func(Type)) {
	if r.Kind == RefNamed && r.Named != nil {
		fn(r.Named)
	}
	for _, e := range r.Elems {
		e.Walk(fn)
	}
}

// References returns every named type one hop away from t: bases, field
// types, parameter and result types, including those nested in composite
// references. The result is de-duplicated by Key and ordered by first
// appearance; t itself is excluded.
func References(t Type) []Type {
	self := KeyOf(t)
	seen := map[Key]bool{self: true}
	var out []Type

	add := func(r Type) {
		k := KeyOf(r)
		if seen[k] {
			return
		}
		seen[k] = true
		out = append(out, r)
	}

	for _, b := range t.Bases() {
		b.Walk(add)
	}
	for _, f := range t.Fields() {
		f.Type.Walk(add)
	}
	for _, m := range t.Methods() {
		for _, p := range m.Params {
			p.Type.Walk(add)
		}
		for _, r := range m.Results {
			r.Walk(add)
		}
	}
	return out
}
