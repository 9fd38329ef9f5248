// types_test.go
package cobalt

import "testing"

func Test_TypeRegistry_SimpleHandlesAreFixed(t *testing.T) {
	if TypeVoid == TypeNumber || TypeNumber == TypeString {
		t.Fatal("simple type handles must be distinct")
	}
}

func Test_TypeRegistry_HandleIdentity(t *testing.T) {
	r := NewTypeRegistry()

	a1 := r.ArrayType(TypeNumber)
	a2 := r.ArrayType(TypeNumber)
	if a1 != a2 {
		t.Fatal("structurally equal array types must share a handle")
	}
	if a1 == r.ArrayType(TypeString) {
		t.Fatal("different element types must differ")
	}

	f1 := r.FunctionType(TypeNumber, []Param{{Type: TypeNumber, ByRef: true}, {Type: TypeString}})
	f2 := r.FunctionType(TypeNumber, []Param{{Type: TypeNumber, ByRef: true}, {Type: TypeString}})
	if f1 != f2 {
		t.Fatal("structurally equal function types must share a handle")
	}
	f3 := r.FunctionType(TypeNumber, []Param{{Type: TypeNumber}, {Type: TypeString}})
	if f1 == f3 {
		t.Fatal("by-ref flag is part of the identity")
	}

	t1 := r.TupleType([]TypeHandle{TypeNumber, TypeString})
	t2 := r.TupleType([]TypeHandle{TypeNumber, TypeString})
	if t1 != t2 {
		t.Fatal("structurally equal tuple types must share a handle")
	}
	if t1 == r.InitListType([]TypeHandle{TypeNumber, TypeString}) {
		t.Fatal("tuple and init list are different variants")
	}

	nested1 := r.ArrayType(r.TupleType([]TypeHandle{TypeNumber, a1}))
	nested2 := r.ArrayType(r.TupleType([]TypeHandle{TypeNumber, r.ArrayType(TypeNumber)}))
	if nested1 != nested2 {
		t.Fatal("nesting must hash-cons through components")
	}
}

func Test_TypeRegistry_Display(t *testing.T) {
	r := NewTypeRegistry()

	cases := []struct {
		typeID TypeHandle
		want   string
	}{
		{TypeVoid, "void"},
		{TypeNumber, "number"},
		{TypeString, "string"},
		{r.ArrayType(TypeNumber), "number[]"},
		{r.ArrayType(r.ArrayType(TypeString)), "string[][]"},
		{r.FunctionType(TypeVoid, nil), "void()"},
		{
			r.FunctionType(TypeNumber, []Param{{Type: TypeNumber, ByRef: true}, {Type: TypeString}}),
			"number(number&,string)",
		},
		{r.TupleType([]TypeHandle{TypeNumber, TypeString}), "[number,string]"},
		{r.InitListType([]TypeHandle{TypeNumber, TypeNumber}), "{number,number}"},
	}

	for _, tc := range cases {
		if got := typeToString(tc.typeID); got != tc.want {
			t.Fatalf("want %q, got %q", tc.want, got)
		}
	}
}
