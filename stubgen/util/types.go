// Package util holds naming and type-conversion helpers shared by renderers.
package util

import (
	"strings"

	"github.com/teranos/stubgen/meta"
)

// TypeConverterConfig configures how type references are spelled in a
// target language.
type TypeConverterConfig struct {
	// PrimitiveMapping maps meta primitive names to target types
	PrimitiveMapping map[string]string

	// NamedFormat spells a reference to a declared type. It is also where a
	// renderer learns about every named type it emits.
	NamedFormat func(t meta.Type) string

	// ListFormat formats a list type given the element type
	// e.g., Python: "list[%s]", TypeScript: "%s[]"
	ListFormat func(elemType string) string

	// DictFormat formats a mapping given key and value types
	DictFormat func(keyType, valType string) string

	// OptionalFormat formats a value that may be absent
	OptionalFormat func(elemType string) string

	// TupleFormat formats a fixed group of values
	TupleFormat func(elemTypes []string) string

	// CallableType is the spelling of an opaque function value
	CallableType string

	// UnknownType is returned for RefAny and unrecognized references
	UnknownType string
}

// ConvertTypeRef spells ref according to config.
func ConvertTypeRef(ref meta.TypeRef, config *TypeConverterConfig) string {
	switch ref.Kind {
	case meta.RefNamed:
		if ref.Named == nil {
			return config.UnknownType
		}
		return config.NamedFormat(ref.Named)

	case meta.RefPrimitive:
		if mapped, ok := config.PrimitiveMapping[ref.Primitive]; ok {
			return mapped
		}
		return config.UnknownType

	case meta.RefList:
		return config.ListFormat(convertElem(ref, 0, config))

	case meta.RefDict:
		return config.DictFormat(convertElem(ref, 0, config), convertElem(ref, 1, config))

	case meta.RefOptional:
		return config.OptionalFormat(convertElem(ref, 0, config))

	case meta.RefTuple:
		elems := make([]string, len(ref.Elems))
		for i, e := range ref.Elems {
			elems[i] = ConvertTypeRef(e, config)
		}
		return config.TupleFormat(elems)

	case meta.RefCallable:
		return config.CallableType

	default:
		return config.UnknownType
	}
}

func convertElem(ref meta.TypeRef, i int, config *TypeConverterConfig) string {
	if i >= len(ref.Elems) {
		return config.UnknownType
	}
	return ConvertTypeRef(ref.Elems[i], config)
}

// JoinTypes joins type spellings with ", ".
func JoinTypes(types []string) string {
	return strings.Join(types, ", ")
}
