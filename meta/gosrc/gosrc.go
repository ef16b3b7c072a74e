// Package gosrc provides units backed by Go packages, so the exported API of
// a Go package can be described with Python stubs.
//
// A unit is a package directory. Its namespace is the import path with "/"
// replaced by "." and other characters that are not valid in identifiers
// replaced by "_" (github.com/acme/widgets becomes github_com.acme.widgets).
// Predeclared types such as error live in the global namespace.
package gosrc

import (
	"go/ast"
	"go/types"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/tools/go/packages"

	"github.com/teranos/stubgen/errors"
	"github.com/teranos/stubgen/logger"
	"github.com/teranos/stubgen/meta"
)

// BuiltinUnit is the unit reported for predeclared types.
const BuiltinUnit = "builtin"

const loadMode = packages.NeedName | packages.NeedTypes | packages.NeedSyntax |
	packages.NeedTypesInfo | packages.NeedImports | packages.NeedDeps

// Provider loads Go packages and hands out one stable handle per named type.
type Provider struct {
	// Tags are passed to the build as -tags.
	Tags []string

	byDir map[string]*unit
	types map[*types.TypeName]*gtype
	docs  *docIndex

	log *zap.SugaredLogger
}

// New creates an empty Provider.
func New() *Provider {
	return &Provider{
		byDir: make(map[string]*unit),
		types: make(map[*types.TypeName]*gtype),
		docs:  newDocIndex(),
		log:   logger.ComponentLogger("stubgen.gosrc"),
	}
}

// Extensions is empty: imported packages are located by the go tool, not by
// search-path resolution.
func (p *Provider) Extensions() []string { return nil }

// Load type-checks the package in directory path.
func (p *Provider) Load(path string) (meta.Unit, error) {
	dir, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid path %s", path)
	}
	if u, ok := p.byDir[dir]; ok {
		return u, nil
	}

	cfg := &packages.Config{
		Mode: loadMode,
		Dir:  dir,
	}
	if len(p.Tags) > 0 {
		cfg.BuildFlags = []string{"-tags=" + strings.Join(p.Tags, ",")}
	}

	pkgs, err := packages.Load(cfg, ".")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load package in %s", dir)
	}
	if len(pkgs) == 0 {
		return nil, errors.NewNotFoundError("no Go package in %s", dir)
	}

	pkg := pkgs[0]
	if len(pkg.Errors) > 0 {
		err := errors.Newf("package %s: %v", pkg.PkgPath, pkg.Errors[0])
		return nil, errors.WithHintf(err, "%d error(s) reported; run go build in %s", len(pkg.Errors), dir)
	}
	if pkg.Types == nil {
		return nil, errors.NewNotFoundError("no Go package in %s", dir)
	}

	packages.Visit(pkgs, nil, func(dep *packages.Package) {
		p.docs.add(dep)
	})

	u := &unit{pkg: pkg.Types, dir: dir}
	scope := pkg.Types.Scope()
	for _, name := range scope.Names() {
		obj, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || !obj.Exported() || obj.IsAlias() {
			continue
		}
		u.exported = append(u.exported, p.typeFor(obj))
	}
	p.byDir[dir] = u

	p.log.Debugw("Loaded package",
		logger.FieldUnit, pkg.PkgPath,
		logger.FieldPath, dir,
		logger.FieldCount, len(u.exported))
	return u, nil
}

// typeFor returns the handle for obj, creating it on first use.
func (p *Provider) typeFor(obj *types.TypeName) *gtype {
	if t, ok := p.types[obj]; ok {
		return t
	}
	t := &gtype{p: p, obj: obj}
	p.types[obj] = t
	return t
}

var (
	_ meta.Provider = (*Provider)(nil)
	_ meta.Unit     = (*unit)(nil)
	_ meta.Type     = (*gtype)(nil)
)

// unit is a loaded package.
type unit struct {
	pkg      *types.Package
	dir      string
	exported []meta.Type
}

func (u *unit) Name() string { return u.pkg.Path() }
func (u *unit) Identity() string { return u.pkg.Path() }
func (u *unit) Path() string { return u.dir }
func (u *unit) ExportedTypes() []meta.Type { return u.exported }

// Namespace converts an import path to a namespace.
func Namespace(importPath string) meta.Namespace {
	segs := strings.Split(importPath, "/")
	for i, s := range segs {
		segs[i] = sanitize(s)
	}
	return meta.NewNamespace(strings.Join(segs, "."))
}

func sanitize(s string) string {
	var b strings.Builder
	for i, r := range s {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// docIndex maps declared objects to their doc comments.
type docIndex struct {
	seen map[*packages.Package]bool
	docs map[types.Object]string
}

func newDocIndex() *docIndex {
	return &docIndex{
		seen: make(map[*packages.Package]bool),
		docs: make(map[types.Object]string),
	}
}

func (d *docIndex) add(pkg *packages.Package) {
	if d.seen[pkg] || pkg.TypesInfo == nil {
		return
	}
	d.seen[pkg] = true

	for _, file := range pkg.Syntax {
		ast.Inspect(file, func(n ast.Node) bool {
			switch node := n.(type) {
			case *ast.GenDecl:
				for _, spec := range node.Specs {
					ts, ok := spec.(*ast.TypeSpec)
					if !ok {
						continue
					}
					doc := ts.Doc
					if doc == nil && len(node.Specs) == 1 {
						doc = node.Doc
					}
					d.set(pkg.TypesInfo.Defs[ts.Name], doc)
					switch typ := ts.Type.(type) {
					case *ast.StructType:
						d.members(pkg, typ.Fields)
					case *ast.InterfaceType:
						d.members(pkg, typ.Methods)
					}
				}
			case *ast.FuncDecl:
				d.set(pkg.TypesInfo.Defs[node.Name], node.Doc)
				return false
			}
			return true
		})
	}
}

// members indexes struct fields or interface methods.
func (d *docIndex) members(pkg *packages.Package, list *ast.FieldList) {
	if list == nil {
		return
	}
	for _, f := range list.List {
		doc := f.Doc
		if doc == nil {
			doc = f.Comment
		}
		for _, name := range f.Names {
			d.set(pkg.TypesInfo.Defs[name], doc)
		}
	}
}

func (d *docIndex) set(obj types.Object, doc *ast.CommentGroup) {
	if obj == nil || doc == nil {
		return
	}
	d.docs[obj] = strings.TrimSpace(doc.Text())
}

func (d *docIndex) get(obj types.Object) string {
	return d.docs[obj]
}

// sortedByPos orders objects by declaration position.
func sortedByPos(objs []types.Object) {
	sort.SliceStable(objs, func(i, j int) bool { return objs[i].Pos() < objs[j].Pos() })
}
