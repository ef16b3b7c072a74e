package manifest

import (
	"strings"

	"github.com/teranos/stubgen/errors"
	"github.com/teranos/stubgen/meta"
)

// linker turns the declarations of one unit into linked meta members.
type linker struct {
	u    *unit
	decl string
}

func link(u *unit) error {
	for _, t := range u.types {
		l := &linker{u: u, decl: t.ns.Qualify(t.decl.Name)}
		if err := l.linkType(t); err != nil {
			return errors.Wrapf(err, "unit %s: type %s", u.name, l.decl)
		}
	}
	return nil
}

func (l *linker) linkType(t *mtype) error {
	for _, b := range t.decl.Bases {
		ref, err := l.ref(b)
		if err != nil {
			return errors.Wrap(err, "base")
		}
		t.bases = append(t.bases, ref)
	}

	for _, f := range t.decl.Fields {
		ref, err := l.ref(f.Type)
		if err != nil {
			return errors.Wrapf(err, "field %s", f.Name)
		}
		t.fields = append(t.fields, meta.Field{
			Name:     f.Name,
			Type:     ref,
			Static:   f.Static,
			ReadOnly: f.ReadOnly,
			Doc:      f.Doc,
		})
	}

	for _, md := range t.decl.Methods {
		m := meta.Method{Name: md.Name, Static: md.Static, Doc: md.Doc}
		for _, pd := range md.Params {
			ref, err := l.ref(pd.Type)
			if err != nil {
				return errors.Wrapf(err, "method %s parameter %s", md.Name, pd.Name)
			}
			m.Params = append(m.Params, meta.Param{
				Name:     pd.Name,
				Type:     ref,
				Variadic: pd.Variadic,
				Optional: pd.Optional,
			})
		}
		for _, rd := range md.Returns {
			ref, err := l.ref(rd)
			if err != nil {
				return errors.Wrapf(err, "method %s result", md.Name)
			}
			// "void" results are spelled as no result at all
			if ref.Kind == meta.RefPrimitive && ref.Primitive == meta.PrimNone && len(md.Returns) == 1 {
				continue
			}
			m.Results = append(m.Results, ref)
		}
		t.methods = append(t.methods, m)
	}

	for _, v := range t.decl.Values {
		t.values = append(t.values, meta.EnumValue{Name: v.Name, Value: string(v.Value)})
	}
	return nil
}

func (l *linker) ref(src string) (meta.TypeRef, error) {
	if strings.TrimSpace(src) == "" {
		return meta.Any(), nil
	}
	expr, err := parseTypeExpr(src)
	if err != nil {
		return meta.TypeRef{}, errors.Wrapf(errors.ErrInvalidManifest, "%v", err)
	}
	return l.convert(expr)
}

func (l *linker) convert(e typeExpr) (meta.TypeRef, error) {
	elems := make([]meta.TypeRef, len(e.elems))
	for i, el := range e.elems {
		ref, err := l.convert(el)
		if err != nil {
			return meta.TypeRef{}, err
		}
		elems[i] = ref
	}

	switch e.kind {
	case exprName:
		return l.lookup(e.name)
	case exprPrim:
		return meta.Prim(e.name), nil
	case exprList:
		return meta.ListOf(elems[0]), nil
	case exprDict:
		return meta.DictOf(elems[0], elems[1]), nil
	case exprOptional:
		return meta.OptionalOf(elems[0]), nil
	case exprTuple:
		return meta.TupleOf(elems...), nil
	case exprFunc:
		return meta.Callable(), nil
	default:
		return meta.Any(), nil
	}
}

// lookup finds a qualified name in the unit, then in its direct references.
// Types that are not public are hidden behind Any.
func (l *linker) lookup(name string) (meta.TypeRef, error) {
	if t, ok := l.u.index[name]; ok {
		return visible(t), nil
	}
	for _, dep := range l.u.refs {
		if t, ok := dep.index[name]; ok {
			return visible(t), nil
		}
	}

	err := errors.NewNotFoundError("unknown type %q", name)
	if len(l.u.refs) == 0 {
		return meta.TypeRef{}, errors.WithHint(err, "declare the unit defining it under references")
	}
	return meta.TypeRef{}, errors.WithHintf(err, "searched %s and %d referenced unit(s)", l.u.name, len(l.u.refs))
}

func visible(t *mtype) meta.TypeRef {
	if !t.public {
		return meta.Any()
	}
	return meta.Named(t)
}
