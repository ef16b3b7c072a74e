package manifest

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/teranos/stubgen/errors"
	"github.com/teranos/stubgen/meta"
)

// exprKind mirrors meta.RefKind for parsed, not yet linked, expressions.
type exprKind int

const (
	exprName exprKind = iota
	exprPrim
	exprAny
	exprList
	exprDict
	exprOptional
	exprTuple
	exprFunc
)

// typeExpr is a parsed type expression. Names are linked to types later.
type typeExpr struct {
	kind  exprKind
	name  string
	elems []typeExpr
}

var primitives = map[string]string{
	"str":    meta.PrimString,
	"string": meta.PrimString,
	"int":    meta.PrimInt,
	"float":  meta.PrimFloat,
	"bool":   meta.PrimBool,
	"bytes":  meta.PrimBytes,
	"void":   meta.PrimNone,
	"none":   meta.PrimNone,
}

// parseTypeExpr parses the manifest type grammar:
//
//	expr    = primary { "[]" | "?" }
//	primary = "(" [ expr { "," expr } [ "," ] ] ")"
//	        | "map[" expr "]" expr
//	        | "func" | "any" | primitive | qualified-name
//
// A parenthesised single expression without a trailing comma is grouping;
// "(A,)" is a one-element tuple and "()" the empty tuple. Postfix operators
// after "map[K]V" apply to V; write "(map[K]V)?" for an optional map.
func parseTypeExpr(s string) (typeExpr, error) {
	p := &exprParser{src: s}
	e, err := p.expr()
	if err != nil {
		return typeExpr{}, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return typeExpr{}, p.errorf("unexpected %q", p.src[p.pos:])
	}
	return e, nil
}

type exprParser struct {
	src string
	pos int
}

func (p *exprParser) errorf(format string, args ...interface{}) error {
	err := errors.Newf(format, args...)
	return errors.Wrapf(err, "type %q at offset %d", p.src, p.pos)
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.src) {
		r, size := utf8.DecodeRuneInString(p.src[p.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		p.pos += size
	}
}

func (p *exprParser) consume(tok string) bool {
	p.skipSpace()
	if strings.HasPrefix(p.src[p.pos:], tok) {
		p.pos += len(tok)
		return true
	}
	return false
}

func (p *exprParser) expr() (typeExpr, error) {
	e, err := p.primary()
	if err != nil {
		return e, err
	}
	for {
		switch {
		case p.consume("[]"):
			e = typeExpr{kind: exprList, elems: []typeExpr{e}}
		case p.consume("?"):
			if e.kind != exprOptional && e.kind != exprAny {
				e = typeExpr{kind: exprOptional, elems: []typeExpr{e}}
			}
		default:
			return e, nil
		}
	}
}

func (p *exprParser) primary() (typeExpr, error) {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return typeExpr{}, p.errorf("missing type")
	}

	if p.consume("(") {
		return p.tuple()
	}
	if p.consume("map[") {
		key, err := p.expr()
		if err != nil {
			return key, err
		}
		if !p.consume("]") {
			return typeExpr{}, p.errorf("expected ]")
		}
		val, err := p.expr()
		if err != nil {
			return val, err
		}
		return typeExpr{kind: exprDict, elems: []typeExpr{key, val}}, nil
	}

	name := p.ident()
	switch {
	case name == "":
		return typeExpr{}, p.errorf("expected a type name")
	case name == "func":
		return typeExpr{kind: exprFunc}, nil
	case name == "any":
		return typeExpr{kind: exprAny}, nil
	}
	if prim, ok := primitives[name]; ok {
		return typeExpr{kind: exprPrim, name: prim}, nil
	}
	return typeExpr{kind: exprName, name: name}, nil
}

func (p *exprParser) tuple() (typeExpr, error) {
	if p.consume(")") {
		return typeExpr{kind: exprTuple}, nil
	}

	var elems []typeExpr
	trailingComma := false
	for {
		e, err := p.expr()
		if err != nil {
			return e, err
		}
		elems = append(elems, e)
		trailingComma = false

		if p.consume(")") {
			break
		}
		if !p.consume(",") {
			return typeExpr{}, p.errorf("expected , or )")
		}
		trailingComma = true
		if p.consume(")") {
			break
		}
	}

	if len(elems) == 1 && !trailingComma {
		return elems[0], nil
	}
	return typeExpr{kind: exprTuple, elems: elems}, nil
}

// ident reads a dotted identifier such as System.Collections.List.
func (p *exprParser) ident() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		r, size := utf8.DecodeRuneInString(p.src[p.pos:])
		if r == '_' || r == '.' || unicode.IsLetter(r) || (p.pos > start && unicode.IsDigit(r)) {
			p.pos += size
			continue
		}
		break
	}
	return strings.Trim(p.src[start:p.pos], ".")
}
