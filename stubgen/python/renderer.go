// Package python renders namespaces as Python stub (.pyi) modules.
package python

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/teranos/stubgen/meta"
	"github.com/teranos/stubgen/stubgen/pathmap"
	"github.com/teranos/stubgen/stubgen/registry"
	"github.com/teranos/stubgen/stubgen/util"
)

// Header is the first line of every generated stub.
const Header = "# Code generated by stubgen. DO NOT EDIT."

// PrimitiveMapping defines how meta primitives map to Python types
var PrimitiveMapping = map[string]string{
	meta.PrimString: "str",
	meta.PrimInt:    "int",
	meta.PrimFloat:  "float",
	meta.PrimBool:   "bool",
	meta.PrimBytes:  "bytes",
	meta.PrimNone:   "None",
}

// pythonKeywords are reserved words in Python that need special handling
var pythonKeywords = map[string]bool{
	"False": true, "None": true, "True": true, "and": true, "as": true,
	"assert": true, "async": true, "await": true, "break": true, "class": true,
	"continue": true, "def": true, "del": true, "elif": true, "else": true,
	"except": true, "finally": true, "for": true, "from": true, "global": true,
	"if": true, "import": true, "in": true, "is": true, "lambda": true,
	"nonlocal": true, "not": true, "or": true, "pass": true, "raise": true,
	"return": true, "try": true, "while": true, "with": true, "yield": true,
	// Soft keywords (Python 3.10+)
	"match": true, "case": true, "type": true,
}

// toPythonIdent converts an identifier to a valid Python identifier
// Adds underscore suffix for Python keywords
func toPythonIdent(s string) string {
	if pythonKeywords[s] {
		return s + "_"
	}
	return s
}

// Options tunes the rendered output.
type Options struct {
	// SnakeCaseMembers renames fields, methods and parameters to snake_case.
	SnakeCaseMembers bool
	// GlobalModule is the module global types are imported from.
	GlobalModule string
}

// Renderer renders stub modules and registers every type they reference.
type Renderer struct {
	reg  registry.Registrar
	opts Options
}

// NewRenderer creates a Renderer reporting referenced types to reg.
func NewRenderer(reg registry.Registrar, opts Options) *Renderer {
	if opts.GlobalModule == "" {
		opts.GlobalModule = pathmap.GlobalDir
	}
	return &Renderer{reg: reg, opts: opts}
}

// module is the per-call rendering state.
type module struct {
	r       *Renderer
	ns      meta.Namespace
	typing  map[string]bool
	enum    bool
	imports map[string]bool
	conv    *util.TypeConverterConfig
}

// Render produces the stub module for ns declaring types in the given order.
func (r *Renderer) Render(ns meta.Namespace, types []meta.Type) (string, error) {
	m := &module{
		r:       r,
		ns:      ns,
		typing:  make(map[string]bool),
		imports: make(map[string]bool),
	}
	m.conv = &util.TypeConverterConfig{
		PrimitiveMapping: PrimitiveMapping,
		NamedFormat:      m.named,
		ListFormat:       func(elem string) string { return "list[" + elem + "]" },
		DictFormat:       func(key, val string) string { return fmt.Sprintf("dict[%s, %s]", key, val) },
		OptionalFormat:   func(elem string) string { return elem + " | None" },
		TupleFormat:      m.tuple,
		CallableType:     "Callable[..., Any]",
		UnknownType:      "Any",
	}

	blocks := make([]string, 0, len(types))
	names := make([]string, 0, len(types))
	for _, t := range types {
		blocks = append(blocks, m.class(t))
		names = append(names, toPythonIdent(t.Name()))
	}

	var sb strings.Builder
	sb.WriteString(Header + "\n")
	if !ns.IsGlobal() {
		sb.WriteString(fmt.Sprintf("# Namespace: %s\n", ns))
	}
	sb.WriteString("\n")
	sb.WriteString("from __future__ import annotations\n\n")

	if m.enum {
		sb.WriteString("from enum import Enum\n")
	}
	if len(m.typing) > 0 {
		sb.WriteString("from typing import " + strings.Join(sortedKeys(m.typing), ", ") + "\n")
	}
	for _, mod := range sortedKeys(m.imports) {
		sb.WriteString("import " + mod + "\n")
	}
	if m.enum || len(m.typing) > 0 || len(m.imports) > 0 {
		sb.WriteString("\n")
	}

	for _, block := range blocks {
		sb.WriteString("\n")
		sb.WriteString(block)
		sb.WriteString("\n\n")
	}

	sb.WriteString("\n__all__ = [\n")
	for _, name := range names {
		sb.WriteString(fmt.Sprintf("    %q,\n", name))
	}
	sb.WriteString("]\n")

	return sb.String(), nil
}

// named spells a reference to t and registers it.
func (m *module) named(t meta.Type) string {
	m.r.reg.AddDependency(t)

	name := toPythonIdent(t.Name())
	ns := t.Namespace()
	if ns == m.ns {
		return name
	}
	mod := ns.String()
	if ns.IsGlobal() {
		mod = m.r.opts.GlobalModule
	}
	m.imports[mod] = true
	return mod + "." + name
}

func (m *module) tuple(elems []string) string {
	if len(elems) == 0 {
		return "tuple[()]"
	}
	return "tuple[" + util.JoinTypes(elems) + "]"
}

func (m *module) spell(ref meta.TypeRef) string {
	markTyping(ref, m.typing)
	return util.ConvertTypeRef(ref, m.conv)
}

// markTyping records the typing imports the spelling of ref needs.
func markTyping(ref meta.TypeRef, typing map[string]bool) {
	switch ref.Kind {
	case meta.RefAny:
		typing["Any"] = true
	case meta.RefCallable:
		typing["Any"] = true
		typing["Callable"] = true
	case meta.RefNamed:
		if ref.Named == nil {
			typing["Any"] = true
		}
	case meta.RefPrimitive:
		if _, ok := PrimitiveMapping[ref.Primitive]; !ok {
			typing["Any"] = true
		}
	}
	for _, e := range ref.Elems {
		markTyping(e, typing)
	}
}

func (m *module) member(name string) string {
	if m.r.opts.SnakeCaseMembers && !strings.HasPrefix(name, "__") {
		name = util.ToSnakeCase(name)
	}
	return toPythonIdent(name)
}

func (m *module) class(t meta.Type) string {
	var sb strings.Builder

	var bases []string
	for _, b := range t.Bases() {
		bases = append(bases, m.spell(b))
	}
	switch t.Kind() {
	case meta.KindEnum:
		m.enum = true
		bases = append(bases, "Enum")
	case meta.KindInterface:
		m.typing["Protocol"] = true
		bases = append(bases, "Protocol")
	}

	if len(bases) > 0 {
		sb.WriteString(fmt.Sprintf("class %s(%s):\n", toPythonIdent(t.Name()), strings.Join(bases, ", ")))
	} else {
		sb.WriteString(fmt.Sprintf("class %s:\n", toPythonIdent(t.Name())))
	}

	body := 0
	if doc := strings.TrimSpace(t.Doc()); doc != "" {
		writeDocstring(&sb, doc, "    ")
		body++
	}

	for _, v := range t.Values() {
		sb.WriteString(fmt.Sprintf("    %s = %s\n", toPythonIdent(v.Name), enumLiteral(v.Value)))
		body++
	}

	for _, f := range t.Fields() {
		m.field(&sb, f)
		body++
	}

	for _, group := range groupMethods(t.Methods()) {
		for _, meth := range group {
			m.method(&sb, meth, len(group) > 1)
			body++
		}
	}

	if body == 0 {
		sb.WriteString("    ...\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (m *module) field(sb *strings.Builder, f meta.Field) {
	name := m.member(f.Name)
	typ := m.spell(f.Type)

	if f.ReadOnly && !f.Static {
		sb.WriteString("    @property\n")
		sb.WriteString(fmt.Sprintf("    def %s(self) -> %s:", name, typ))
		if doc := strings.TrimSpace(f.Doc); doc != "" {
			sb.WriteString("\n")
			writeDocstring(sb, doc, "        ")
			sb.WriteString("        ...\n")
			return
		}
		sb.WriteString(" ...\n")
		return
	}

	if f.Doc != "" {
		for _, line := range strings.Split(strings.TrimSpace(f.Doc), "\n") {
			sb.WriteString("    # " + strings.TrimSpace(line) + "\n")
		}
	}
	if f.Static {
		m.typing["ClassVar"] = true
		typ = "ClassVar[" + typ + "]"
	}
	sb.WriteString(fmt.Sprintf("    %s: %s\n", name, typ))
}

func (m *module) method(sb *strings.Builder, meth meta.Method, overloaded bool) {
	if overloaded {
		m.typing["overload"] = true
		sb.WriteString("    @overload\n")
	}
	if meth.Static {
		sb.WriteString("    @staticmethod\n")
	}

	var params []string
	if !meth.Static {
		params = append(params, "self")
	}
	for _, p := range meth.Params {
		params = append(params, m.param(p))
	}

	ret := "None"
	switch {
	case meth.Name == "__init__":
	case len(meth.Results) == 1:
		ret = m.spell(meth.Results[0])
	case len(meth.Results) > 1:
		ret = m.spell(meta.TupleOf(meth.Results...))
	}

	sb.WriteString(fmt.Sprintf("    def %s(%s) -> %s:", m.member(meth.Name), strings.Join(params, ", "), ret))
	if doc := strings.TrimSpace(meth.Doc); doc != "" {
		sb.WriteString("\n")
		writeDocstring(sb, doc, "        ")
		sb.WriteString("        ...\n")
		return
	}
	sb.WriteString(" ...\n")
}

func (m *module) param(p meta.Param) string {
	name := m.member(p.Name)
	if name == "" || name == "self" {
		name = "arg"
	}
	s := fmt.Sprintf("%s: %s", name, m.spell(p.Type))
	if p.Variadic {
		return "*" + s
	}
	if p.Optional {
		return s + " = ..."
	}
	return s
}

// groupMethods groups methods by name in order of first appearance.
func groupMethods(methods []meta.Method) [][]meta.Method {
	index := make(map[string]int)
	var groups [][]meta.Method
	for _, meth := range methods {
		i, ok := index[meth.Name]
		if !ok {
			i = len(groups)
			index[meth.Name] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], meth)
	}
	return groups
}

func writeDocstring(sb *strings.Builder, doc, indent string) {
	doc = strings.ReplaceAll(doc, `"""`, `\"\"\"`)
	lines := strings.Split(doc, "\n")
	if len(lines) == 1 {
		sb.WriteString(indent + `"""` + lines[0] + `"""` + "\n")
		return
	}
	sb.WriteString(indent + `"""` + strings.TrimSpace(lines[0]) + "\n")
	for _, line := range lines[1:] {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			sb.WriteString("\n")
			continue
		}
		sb.WriteString(indent + strings.TrimSpace(line) + "\n")
	}
	sb.WriteString(indent + `"""` + "\n")
}

// enumLiteral keeps numeric values as written and quotes everything else.
func enumLiteral(v string) string {
	if v == "" {
		return "..."
	}
	if _, err := strconv.ParseInt(v, 0, 64); err == nil {
		return v
	}
	if _, err := strconv.ParseFloat(v, 64); err == nil {
		return v
	}
	return strconv.Quote(v)
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
