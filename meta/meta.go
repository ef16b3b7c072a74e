// Package meta defines the type metadata model stub generation walks.
//
// A metadata source (a Go package loader, a unit manifest reader, ...) adapts
// its own reflection data to the small capability set below. The generation
// engine only ever asks a type for its name, namespace, declaring unit and the
// types it references; renderers additionally read the structural members.
package meta

import (
	"strings"
)

// Namespace is a dot-delimited grouping of types. The zero value is the
// global namespace, used for types declared outside any namespace.
type Namespace struct {
	path string
}

// Global is the namespace of types that have none.
var Global = Namespace{}

// NewNamespace returns the namespace for a dot-delimited path.
// An empty path yields Global.
func NewNamespace(path string) Namespace {
	return Namespace{path: strings.Trim(path, ".")}
}

// IsGlobal reports whether n is the global namespace.
func (n Namespace) IsGlobal() bool {
	return n.path == ""
}

// String returns the dot-delimited path, or "" for Global.
func (n Namespace) String() string {
	return n.path
}

// Segments splits the namespace on its separator. Global has no segments.
func (n Namespace) Segments() []string {
	if n.IsGlobal() {
		return nil
	}
	return strings.Split(n.path, ".")
}

// BadSegment returns the first segment of a dot-delimited path that cannot
// name a directory of its own: an empty segment, or one holding a path
// separator or a character file systems reject. ok is false when every
// segment is usable.
func BadSegment(path string) (seg string, ok bool) {
	for _, s := range strings.Split(path, ".") {
		if s == "" || strings.ContainsFunc(s, badPathRune) {
			return s, true
		}
	}
	return "", false
}

func badPathRune(r rune) bool {
	return r < 0x20 || r == 0x7f || strings.ContainsRune(`/\:*?"<>|`, r)
}

// Qualify returns the fully qualified name of a type called name in n.
func (n Namespace) Qualify(name string) string {
	if n.IsGlobal() {
		return name
	}
	return n.path + "." + name
}

// SplitQualified splits "A.B.C" into namespace "A.B" and name "C".
func SplitQualified(qualified string) (Namespace, string) {
	i := strings.LastIndex(qualified, ".")
	if i < 0 {
		return Global, qualified
	}
	return NewNamespace(qualified[:i]), qualified[i+1:]
}

// Key is the identity of a type: two handles with equal keys describe the
// same declaration.
type Key struct {
	Namespace Namespace
	Name      string
	Unit      string
}

func (k Key) String() string {
	return k.Namespace.Qualify(k.Name) + " [" + k.Unit + "]"
}

// KeyOf returns the identity of t.
func KeyOf(t Type) Key {
	return Key{Namespace: t.Namespace(), Name: t.Name(), Unit: t.Unit()}
}

// Kind classifies a declaration for rendering.
type Kind int

const (
	KindClass Kind = iota
	KindStruct
	KindInterface
	KindEnum
)

func (k Kind) String() string {
	switch k {
	case KindStruct:
		return "struct"
	case KindInterface:
		return "interface"
	case KindEnum:
		return "enum"
	default:
		return "class"
	}
}

// ParseKind maps a manifest kind name to a Kind. Unknown names are classes.
func ParseKind(s string) Kind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "struct", "valuetype":
		return KindStruct
	case "interface", "protocol":
		return KindInterface
	case "enum":
		return KindEnum
	default:
		return KindClass
	}
}

// Field is a data member (field or property).
type Field struct {
	Name     string
	Type     TypeRef
	Static   bool
	ReadOnly bool
	Doc      string
}

// Param is a method parameter.
type Param struct {
	Name     string
	Type     TypeRef
	Variadic bool
	Optional bool
}

// Method is a callable member. Constructors are methods named "__init__".
type Method struct {
	Name    string
	Params  []Param
	Results []TypeRef
	Static  bool
	Doc     string
}

// EnumValue is a named constant of an enum type. Value is the literal as
// written by the metadata source.
type EnumValue struct {
	Name  string
	Value string
}

// Type is a handle to a reflected, publicly visible type.
type Type interface {
	// Name is the simple (unqualified) name.
	Name() string
	// Namespace is the grouping the type is declared in.
	Namespace() Namespace
	// Unit is the short identity of the declaring unit.
	Unit() string
	Kind() Kind
	Doc() string
	Bases() []TypeRef
	Fields() []Field
	Methods() []Method
	Values() []EnumValue
}

// Unit is a loaded unit of metadata (a "binary").
type Unit interface {
	// Name is the short identity used for target filtering and resolution.
	Name() string
	// Identity is the full identity, e.g. "Acme.Widgets, Version=1.2.0".
	Identity() string
	// Path is the file or directory the unit was loaded from.
	Path() string
	// ExportedTypes lists the publicly visible types declared by the unit.
	ExportedTypes() []Type
}

// Provider loads units from a metadata source.
type Provider interface {
	// Load loads the unit at path, together with whatever the source needs
	// to make its types usable.
	Load(path string) (Unit, error)
	// Extensions lists the file suffixes of loadable units, used when
	// resolving a unit identity to a file in a search path.
	Extensions() []string
}

// Resolver maps a unit identity to a loadable path.
type Resolver func(identity string) (string, error)

// ResolvingProvider is a Provider that asks for help locating the units its
// loads depend on. SetResolver replaces any previously installed resolver.
type ResolvingProvider interface {
	Provider
	SetResolver(Resolver)
}
