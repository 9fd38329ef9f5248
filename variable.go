// variable.go: the boxed runtime value model.
//
// Every slot the runtime manipulates is a *Variable box. Script-level
// reference semantics fall out of that uniformly: assignment overwrites the
// inner value of an existing box, and a by-ref parameter aliases the
// caller's box. Strings are shared immutable text; arrays and tuples share
// one ordered representation.
package cobalt

import (
	"strconv"
	"strings"
)

// Number is the numeric value type.
type Number = float64

// String is shared immutable text. Concatenation allocates a fresh one.
type String = *string

// Array is the ordered element sequence behind arrays and tuples.
type Array = []*Variable

// Tuple shares the array representation; element types differ per slot.
type Tuple = Array

// Function is a callable: script functions and host natives alike run
// against the runtime context, reading arguments from negative local slots
// and writing their result through the return slot.
type Function func(*RuntimeContext)

// Variable is a shared box holding one of Number, String, Array or
// Function.
type Variable struct {
	value interface{}
}

// NewNumberVariable boxes a number.
func NewNumberVariable(n Number) *Variable { return &Variable{value: n} }

// NewStringVariable boxes shared text.
func NewStringVariable(s String) *Variable { return &Variable{value: s} }

// NewStringVariableFrom boxes a fresh shared copy of s.
func NewStringVariableFrom(s string) *Variable { return &Variable{value: &s} }

// NewArrayVariable boxes an element sequence.
func NewArrayVariable(a Array) *Variable { return &Variable{value: a} }

// NewFunctionVariable boxes a callable.
func NewFunctionVariable(f Function) *Variable { return &Variable{value: f} }

func (v *Variable) number() Number     { return v.value.(Number) }
func (v *Variable) str() String        { return v.value.(String) }
func (v *Variable) array() Array       { return v.value.(Array) }
func (v *Variable) function() Function { return v.value.(Function) }

func (v *Variable) setNumber(n Number)     { v.value = n }
func (v *Variable) setString(s String)     { v.value = s }
func (v *Variable) setArray(a Array)       { v.value = a }
func (v *Variable) setFunction(f Function) { v.value = f }

// Clone produces an independent box. Array elements are cloned recursively;
// strings stay shared (they are immutable) and functions are copied by
// reference.
func (v *Variable) Clone() *Variable {
	switch val := v.value.(type) {
	case Array:
		return NewArrayVariable(cloneArray(val))
	default:
		return &Variable{value: val}
	}
}

func cloneArray(a Array) Array {
	ret := make(Array, len(a))
	for i, e := range a {
		ret[i] = e.Clone()
	}
	return ret
}

// ToString renders the box's value per the runtime stringification rules.
func (v *Variable) ToString() String {
	switch val := v.value.(type) {
	case Number:
		return convertNumberToString(val)
	case String:
		return val
	case Function:
		return sharedString("FUNCTION")
	case Array:
		return convertArrayToString(val)
	}
	return sharedString("")
}

func sharedString(s string) String { return &s }

// convertNumberToString prints integral values without a fractional part.
func convertNumberToString(n Number) String {
	if i := int64(n); float64(i) == n {
		return sharedString(strconv.FormatInt(i, 10))
	}
	return sharedString(strconv.FormatFloat(n, 'g', -1, 64))
}

func convertArrayToString(a Array) String {
	var b strings.Builder
	b.WriteByte('[')
	for i, e := range a {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(*e.ToString())
	}
	b.WriteByte(']')
	return sharedString(b.String())
}
