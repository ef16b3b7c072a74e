package manifest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/stubgen/errors"
	stubtest "github.com/teranos/stubgen/internal/testing"
	"github.com/teranos/stubgen/meta"
)

const runtimeYAML = `
name: System.Runtime
version: 4.2.0
types:
  - name: String
    namespace: System
    methods:
      - name: Split
        params:
          - {name: separator, type: str}
        returns: ["str[]"]
  - name: Object
    namespace: System
  - name: Internal
    namespace: System
    visibility: internal
`

const widgetsYAML = `
name: Acme.Widgets
version: 1.0.0
references:
  - System.Runtime, Version=4.0.0
types:
  - name: Gadget
    namespace: Acme.Widgets
    doc: A configurable gadget.
    bases: [System.Object]
    fields:
      - {name: Label, type: System.String}
      - {name: Parts, type: "Acme.Widgets.Part[]"}
      - {name: Secret, type: System.Internal}
      - {name: Count, type: int, static: true}
    methods:
      - name: __init__
        params:
          - {name: label, type: System.String, optional: true}
      - name: Reset
        returns: [void]
      - name: Pair
        returns: [int, "System.String?"]
  - name: Part
    namespace: Acme.Widgets
    kind: struct
`

// dirResolver resolves identities to <dir>/<name>.yaml.
func dirResolver(dir string) meta.Resolver {
	return func(identity string) (string, error) {
		name := meta.ParseIdentity(identity).Name
		return filepath.Join(dir, name+".yaml"), nil
	}
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

func TestLoad_YAMLWithReferences(t *testing.T) {
	dir := t.TempDir()
	stubtest.WriteFile(t, dir, "System.Runtime.yaml", runtimeYAML)
	path := stubtest.WriteFile(t, dir, "Acme.Widgets.yaml", widgetsYAML)

	p := New()
	p.SetResolver(dirResolver(dir))

	u, err := p.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Acme.Widgets", u.Name())
	assert.Equal(t, "Acme.Widgets, Version=1.0.0", u.Identity())
	assert.Equal(t, "1.0.0", u.(interface{ Version() string }).Version())
	require.Len(t, u.ExportedTypes(), 2)

	gadget := find(t, u, "Gadget")
	assert.Equal(t, "Acme.Widgets", gadget.Namespace().String())
	assert.Equal(t, "Acme.Widgets", gadget.Unit())
	assert.Equal(t, meta.KindClass, gadget.Kind())
	assert.Equal(t, "A configurable gadget.", gadget.Doc())

	require.Len(t, gadget.Bases(), 1)
	assert.Equal(t, "Object", gadget.Bases()[0].Named.Name())
	assert.Equal(t, "System.Runtime", gadget.Bases()[0].Named.Unit())

	fields := gadget.Fields()
	require.Len(t, fields, 4)
	assert.Equal(t, "String", fields[0].Type.Named.Name())
	assert.Equal(t, meta.RefList, fields[1].Type.Kind)
	assert.Equal(t, "Part", fields[1].Type.Elems[0].Named.Name())
	assert.Equal(t, meta.RefAny, fields[2].Type.Kind, "non-public types are hidden")
	assert.True(t, fields[3].Static)

	methods := gadget.Methods()
	require.Len(t, methods, 3)
	assert.True(t, methods[0].Params[0].Optional)
	assert.Empty(t, methods[1].Results, "void result is no result")
	require.Len(t, methods[2].Results, 2)
	assert.Equal(t, meta.RefOptional, methods[2].Results[1].Kind)

	assert.Equal(t, meta.KindStruct, find(t, u, "Part").Kind())

	refs := meta.References(gadget)
	require.Len(t, refs, 3)
	assert.Equal(t, []string{"Object", "String", "Part"}, []string{refs[0].Name(), refs[1].Name(), refs[2].Name()})
}

func TestLoad_CachesUnits(t *testing.T) {
	dir := t.TempDir()
	stubtest.WriteFile(t, dir, "System.Runtime.yaml", runtimeYAML)
	path := stubtest.WriteFile(t, dir, "Acme.Widgets.yaml", widgetsYAML)

	resolves := 0
	p := New()
	p.SetResolver(func(identity string) (string, error) {
		resolves++
		return dirResolver(dir)(identity)
	})

	first, err := p.Load(path)
	require.NoError(t, err)
	second, err := p.Load(filepath.Join(dir, ".", "Acme.Widgets.yaml"))
	require.NoError(t, err)

	assert.Same(t, first.(*unit), second.(*unit))
	assert.Equal(t, 1, resolves)

	// The runtime was loaded as a dependency and is served from the cache.
	rt, err := p.Load(filepath.Join(dir, "System.Runtime.yaml"))
	require.NoError(t, err)
	assert.Len(t, rt.ExportedTypes(), 2)
	assert.Equal(t, 1, resolves)
}

func TestLoad_TOMLAndJSON(t *testing.T) {
	dir := t.TempDir()

	tomlPath := stubtest.WriteFile(t, dir, "Acme.Colors.toml", `
name = "Acme.Colors"

[[types]]
name = "Color"
namespace = "Acme"
kind = "enum"

  [[types.values]]
  name = "Red"
  value = 1

  [[types.values]]
  name = "Named"
  value = "crimson"
`)

	jsonPath := stubtest.WriteFile(t, dir, "Acme.Flags.json", `{
  "name": "Acme.Flags",
  "types": [
    {"name": "Flag", "kind": "enum", "values": [{"name": "On", "value": true}, {"name": "Level", "value": 2.5}]},
    {"name": "Holder", "fields": [{"name": "f", "type": "Flag?"}]}
  ]
}`)

	p := New()

	colors, err := p.Load(tomlPath)
	require.NoError(t, err)
	color := find(t, colors, "Color")
	assert.Equal(t, meta.KindEnum, color.Kind())
	assert.Equal(t, []meta.EnumValue{{Name: "Red", Value: "1"}, {Name: "Named", Value: "crimson"}}, color.Values())

	flags, err := p.Load(jsonPath)
	require.NoError(t, err)
	flag := find(t, flags, "Flag")
	assert.True(t, flag.Namespace().IsGlobal())
	assert.Equal(t, []meta.EnumValue{{Name: "On", Value: "true"}, {Name: "Level", Value: "2.5"}}, flag.Values())

	holder := find(t, flags, "Holder")
	assert.Equal(t, "Flag", holder.Fields()[0].Type.Elems[0].Named.Name())
}

func TestLoad_ReferenceCycle(t *testing.T) {
	dir := t.TempDir()
	stubtest.WriteFile(t, dir, "A.yaml", `
name: A
references: [B]
types:
  - {name: Alpha, namespace: A, fields: [{name: b, type: B.Beta}]}
`)
	stubtest.WriteFile(t, dir, "B.yaml", `
name: B
references: [A]
types:
  - {name: Beta, namespace: B, fields: [{name: a, type: A.Alpha}]}
`)

	p := New()
	p.SetResolver(dirResolver(dir))
	u, err := p.Load(filepath.Join(dir, "A.yaml"))
	require.NoError(t, err)

	alpha := find(t, u, "Alpha")
	beta := alpha.Fields()[0].Type.Named
	require.NotNil(t, beta)
	assert.Same(t, alpha, beta.Fields()[0].Type.Named)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		resolver bool
		sentinel error
	}{
		{
			name:     "unknown key",
			file:     "Bad.yaml",
			content:  "name: Bad\ncolour: red\n",
			sentinel: errors.ErrInvalidManifest,
		},
		{
			name:     "unknown toml key",
			file:     "Bad.toml",
			content:  "name = \"Bad\"\ncolour = \"red\"\n",
			sentinel: errors.ErrInvalidManifest,
		},
		{
			name:     "unknown json key",
			file:     "Bad.json",
			content:  `{"name": "Bad", "colour": "red"}`,
			sentinel: errors.ErrInvalidManifest,
		},
		{
			name:     "missing name",
			file:     "Bad.yaml",
			content:  "types: []\n",
			sentinel: errors.ErrInvalidManifest,
		},
		{
			name:     "duplicate type",
			file:     "Bad.yaml",
			content:  "name: Bad\ntypes: [{name: T}, {name: T}]\n",
			sentinel: errors.ErrInvalidManifest,
		},
		{
			name:     "dotted type name",
			file:     "Bad.yaml",
			content:  "name: Bad\ntypes: [{name: A.T}]\n",
			sentinel: errors.ErrInvalidManifest,
		},
		{
			name:     "empty namespace segment",
			file:     "Bad.yaml",
			content:  "name: Bad\ntypes: [{name: Clobber, namespace: Acme..Widgets}]\n",
			sentinel: errors.ErrInvalidNamespace,
		},
		{
			name:     "trailing namespace dot",
			file:     "Bad.toml",
			content:  "name = \"Bad\"\n[[types]]\nname = \"T\"\nnamespace = \"Acme.\"\n",
			sentinel: errors.ErrInvalidNamespace,
		},
		{
			name:     "separator in namespace",
			file:     "Bad.json",
			content:  `{"name": "Bad", "types": [{"name": "T", "namespace": "x.y/z"}]}`,
			sentinel: errors.ErrInvalidNamespace,
		},
		{
			name:     "bad visibility",
			file:     "Bad.yaml",
			content:  "name: Bad\ntypes: [{name: T, visibility: secret}]\n",
			sentinel: errors.ErrInvalidManifest,
		},
		{
			name:     "bad type expression",
			file:     "Bad.yaml",
			content:  "name: Bad\ntypes: [{name: T, fields: [{name: f, type: \"map[str\"}]}]\n",
			sentinel: errors.ErrInvalidManifest,
		},
		{
			name:     "unknown type",
			file:     "Bad.yaml",
			content:  "name: Bad\ntypes: [{name: T, bases: [Nowhere.Thing]}]\n",
			sentinel: errors.ErrNotFound,
		},
		{
			name:     "unresolved reference without resolver",
			file:     "Bad.yaml",
			content:  "name: Bad\nreferences: [Missing]\n",
			sentinel: errors.ErrUnresolved,
		},
		{
			name:     "resolved reference missing on disk",
			file:     "Bad.yaml",
			content:  "name: Bad\nreferences: [Missing]\n",
			resolver: true,
			sentinel: errors.ErrNotFound,
		},
		{
			name:     "unsupported extension",
			file:     "Bad.xml",
			content:  "<unit/>",
			sentinel: errors.ErrInvalidManifest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := stubtest.WriteFile(t, dir, tt.file, tt.content)

			p := New()
			if tt.resolver {
				p.SetResolver(dirResolver(dir))
			}
			_, err := p.Load(path)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.sentinel), "got %v", err)
			assert.True(t, errors.IsFatalLoadError(err))

			// A failed unit is not cached.
			assert.Empty(t, p.byName)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := New().Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestLoad_ResolvedUnitWithWrongName(t *testing.T) {
	dir := t.TempDir()
	stubtest.WriteFile(t, dir, "Other.yaml", "name: Different\n")
	path := stubtest.WriteFile(t, dir, "App.yaml", "name: App\nreferences: [Other]\n")

	p := New()
	p.SetResolver(dirResolver(dir))
	_, err := p.Load(path)
	assert.True(t, errors.Is(err, errors.ErrInvalidManifest))
}

func TestLoad_OlderReferenceIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	stubtest.WriteFile(t, dir, "System.Runtime.yaml", runtimeYAML)
	path := stubtest.WriteFile(t, dir, "App.yaml", "name: App\nreferences: [\"System.Runtime, Version=9.0.0\"]\n")

	p := New()
	p.SetResolver(dirResolver(dir))
	_, err := p.Load(path)
	assert.NoError(t, err)
}

func TestProvider_Extensions(t *testing.T) {
	assert.Equal(t, []string{".yaml", ".yml", ".toml", ".json"}, New().Extensions())
}
