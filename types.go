// types.go: hash-consed structural type identities.
//
// A TypeHandle is a stable pointer into the registry: two handles compare
// equal iff the types are structurally equal. void, number and string have
// fixed package-level handles so they can be compared without a registry.
package cobalt

import "strings"

// TypeKind discriminates the structural variants a type can take.
type TypeKind int

const (
	KindVoid TypeKind = iota
	KindNumber
	KindString
	KindArray
	KindFunction
	KindTuple
	KindInitList
)

// Param is one parameter of a function type.
type Param struct {
	Type  TypeHandle
	ByRef bool
}

// Type is a structural type. Only the fields relevant to Kind are set:
// Inner for arrays, Return/Params for functions, Elems for tuples and init
// lists.
type Type struct {
	Kind   TypeKind
	Inner  TypeHandle
	Return TypeHandle
	Params []Param
	Elems  []TypeHandle
}

// TypeHandle is the canonical identity of a type.
type TypeHandle *Type

// Fixed handles for the simple types.
var (
	TypeVoid   = &Type{Kind: KindVoid}
	TypeNumber = &Type{Kind: KindNumber}
	TypeString = &Type{Kind: KindString}
)

// TypeRegistry deduplicates composite types. Construction of a composite
// requires all component handles, so interning can key on the rendered
// display form, which is injective over structures.
type TypeRegistry struct {
	types map[string]TypeHandle
}

// NewTypeRegistry creates an empty registry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{types: map[string]TypeHandle{}}
}

func (r *TypeRegistry) intern(t *Type) TypeHandle {
	key := typeToString(t)
	if existing, ok := r.types[key]; ok {
		return existing
	}
	r.types[key] = t
	return t
}

// ArrayType returns the canonical handle for inner[].
func (r *TypeRegistry) ArrayType(inner TypeHandle) TypeHandle {
	return r.intern(&Type{Kind: KindArray, Inner: inner})
}

// FunctionType returns the canonical handle for ret(params...).
func (r *TypeRegistry) FunctionType(ret TypeHandle, params []Param) TypeHandle {
	return r.intern(&Type{Kind: KindFunction, Return: ret, Params: params})
}

// TupleType returns the canonical handle for [elems...].
func (r *TypeRegistry) TupleType(elems []TypeHandle) TypeHandle {
	return r.intern(&Type{Kind: KindTuple, Elems: elems})
}

// InitListType returns the canonical handle for {elems...}, the transient
// type of a brace-enclosed initializer.
func (r *TypeRegistry) InitListType(elems []TypeHandle) TypeHandle {
	return r.intern(&Type{Kind: KindInitList, Elems: elems})
}

// typeToString renders the display form used in error messages:
// number, string, void, T[], R(P&,Q), [A,B], {A,B}.
func typeToString(t TypeHandle) string {
	switch t.Kind {
	case KindVoid:
		return "void"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return typeToString(t.Inner) + "[]"
	case KindFunction:
		var b strings.Builder
		b.WriteString(typeToString(t.Return))
		b.WriteByte('(')
		for i, p := range t.Params {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(typeToString(p.Type))
			if p.ByRef {
				b.WriteByte('&')
			}
		}
		b.WriteByte(')')
		return b.String()
	case KindTuple:
		var b strings.Builder
		b.WriteByte('[')
		for i, e := range t.Elems {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(typeToString(e))
		}
		b.WriteByte(']')
		return b.String()
	case KindInitList:
		var b strings.Builder
		b.WriteByte('{')
		for i, e := range t.Elems {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(typeToString(e))
		}
		b.WriteByte('}')
		return b.String()
	}
	return "<unknown>"
}
