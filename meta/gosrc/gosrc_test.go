package gosrc

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stubtest "github.com/teranos/stubgen/internal/testing"
	"github.com/teranos/stubgen/meta"
)

const colorsSrc = `package colors

// Color is a paint color.
type Color string

const (
	Red  Color = "red"
	Blue Color = "blue"
)

type Level int

const (
	Low Level = iota
	High
)

// Celsius has no constants and stays a class.
type Celsius float64
`

const shapesSrc = `package shapes

import "example.com/paint/colors"

// Shape is anything with an area.
type Shape interface {
	Area() float64
}

type base struct{}

// Square is a shape with equal sides.
type Square struct {
	*Named
	base

	// Side is the edge length.
	Side   float64
	Tint   colors.Color
	Tags   []string
	Meta   map[string]*Square
	Raw    []byte
	Err    error
	hidden int
	Secret base
}

type Named struct {
	Name string
}

// Area returns the surface.
func (s *Square) Area() float64 { return s.Side * s.Side }

func (s Square) Scale(by ...float64) (*Square, error) { return &s, nil }

func (s Square) Split(_ int) (Square, Square) { return s, s }

func (s Square) unexported() {}

type Alias = Square
`

func writeModule(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	stubtest.WriteFile(t, root, "go.mod", "module example.com/paint\n\ngo 1.22\n")
	stubtest.WriteFile(t, filepath.Join(root, "colors"), "colors.go", colorsSrc)
	stubtest.WriteFile(t, filepath.Join(root, "shapes"), "shapes.go", shapesSrc)
	return root
}

func find(t *testing.T, u meta.Unit, name string) meta.Type {
	t.Helper()
	for _, typ := range u.ExportedTypes() {
		if typ.Name() == name {
			return typ
		}
	}
	t.Fatalf("type %s not exported by %s", name, u.Name())
	return nil
}

func TestNamespace(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"example.com/paint/colors", "example_com.paint.colors"},
		{"github.com/acme/go-widgets", "github_com.acme.go_widgets"},
		{"gopkg.in/yaml.v3", "gopkg_in.yaml_v3"},
		{"x/2d", "x._2d"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Namespace(tt.path).String(), tt.path)
	}
}

func TestLoad_Package(t *testing.T) {
	root := writeModule(t)
	p := New()

	u, err := p.Load(filepath.Join(root, "shapes"))
	require.NoError(t, err)
	assert.Equal(t, "example.com/paint/shapes", u.Name())
	assert.Equal(t, u.Name(), u.Identity())

	var names []string
	for _, typ := range u.ExportedTypes() {
		names = append(names, typ.Name())
	}
	assert.Equal(t, []string{"Named", "Shape", "Square"}, names, "aliases and unexported types are skipped")

	shape := find(t, u, "Shape")
	assert.Equal(t, meta.KindInterface, shape.Kind())
	assert.Equal(t, "Shape is anything with an area.", shape.Doc())
	require.Len(t, shape.Methods(), 1)
	assert.Equal(t, "Area", shape.Methods()[0].Name)

	sq := find(t, u, "Square")
	assert.Equal(t, meta.KindStruct, sq.Kind())
	assert.Equal(t, "example_com.paint.shapes", sq.Namespace().String())
	assert.Equal(t, "example.com/paint/shapes", sq.Unit())

	require.Len(t, sq.Bases(), 1)
	assert.Same(t, find(t, u, "Named"), sq.Bases()[0].Named)

	fields := sq.Fields()
	require.Len(t, fields, 7)
	assert.Equal(t, "Side", fields[0].Name)
	assert.Equal(t, "Side is the edge length.", fields[0].Doc)
	assert.Equal(t, meta.Prim(meta.PrimFloat), fields[0].Type)

	tint := fields[1].Type
	require.Equal(t, meta.RefNamed, tint.Kind)
	assert.Equal(t, "example_com.paint.colors", tint.Named.Namespace().String())

	assert.Equal(t, meta.ListOf(meta.Prim(meta.PrimString)), fields[2].Type)
	assert.Equal(t, meta.RefDict, fields[3].Type.Kind)
	assert.Equal(t, meta.RefOptional, fields[3].Type.Elems[1].Kind)
	assert.Same(t, sq, fields[3].Type.Elems[1].Elems[0].Named)
	assert.Equal(t, meta.Prim(meta.PrimBytes), fields[4].Type)

	errRef := fields[5].Type
	require.Equal(t, meta.RefNamed, errRef.Kind)
	assert.True(t, errRef.Named.Namespace().IsGlobal())
	assert.Equal(t, BuiltinUnit, errRef.Named.Unit())

	assert.Equal(t, meta.RefAny, fields[6].Type.Kind, "unexported types are hidden")

	methods := sq.Methods()
	require.Len(t, methods, 3)
	byName := map[string]meta.Method{}
	for _, m := range methods {
		byName[m.Name] = m
	}
	assert.Equal(t, "Area returns the surface.", byName["Area"].Doc)

	scale := byName["Scale"]
	require.Len(t, scale.Params, 1)
	assert.True(t, scale.Params[0].Variadic)
	assert.Equal(t, meta.Prim(meta.PrimFloat), scale.Params[0].Type)
	require.Len(t, scale.Results, 1, "trailing error is dropped")

	split := byName["Split"]
	assert.Equal(t, "arg0", split.Params[0].Name)
	assert.Len(t, split.Results, 2)
}

func TestLoad_EnumsFromConstants(t *testing.T) {
	root := writeModule(t)
	u, err := New().Load(filepath.Join(root, "colors"))
	require.NoError(t, err)

	color := find(t, u, "Color")
	assert.Equal(t, meta.KindEnum, color.Kind())
	assert.Equal(t, []meta.EnumValue{{Name: "Red", Value: "red"}, {Name: "Blue", Value: "blue"}}, color.Values())

	level := find(t, u, "Level")
	assert.Equal(t, meta.KindEnum, level.Kind())
	assert.Equal(t, []meta.EnumValue{{Name: "Low", Value: "0"}, {Name: "High", Value: "1"}}, level.Values())

	celsius := find(t, u, "Celsius")
	assert.Equal(t, meta.KindClass, celsius.Kind())
	assert.Equal(t, []meta.TypeRef{meta.Prim(meta.PrimFloat)}, celsius.Bases())
}

func TestLoad_SharesHandlesAcrossUnits(t *testing.T) {
	root := writeModule(t)
	p := New()

	shapes, err := p.Load(filepath.Join(root, "shapes"))
	require.NoError(t, err)
	again, err := p.Load(filepath.Join(root, "shapes", "."))
	require.NoError(t, err)
	assert.Same(t, shapes.(*unit), again.(*unit))

	colors, err := p.Load(filepath.Join(root, "colors"))
	require.NoError(t, err)

	// Packages loaded separately still hand out comparable keys.
	tint := find(t, shapes, "Square").Fields()[1].Type.Named
	assert.Equal(t, meta.KeyOf(find(t, colors, "Color")), meta.KeyOf(tint))
}

func TestLoad_BrokenPackage(t *testing.T) {
	root := t.TempDir()
	stubtest.WriteFile(t, root, "go.mod", "module example.com/broken\n\ngo 1.22\n")
	stubtest.WriteFile(t, root, "broken.go", "package broken\n\nvar x int = \"nope\"\n")

	_, err := New().Load(root)
	assert.Error(t, err)
}

func TestProvider_Extensions(t *testing.T) {
	assert.Empty(t, New().Extensions())
}
