// errors_test.go
package cobalt

import (
	"strings"
	"testing"
)

func Test_Errors_KindPrefixes(t *testing.T) {
	if got := parsingError("x", 0, 0).Message; got != "Parsing error: x" {
		t.Fatalf("parsing: %q", got)
	}
	if got := syntaxError("x", 0, 0).Message; got != "Syntax error: x" {
		t.Fatalf("syntax: %q", got)
	}
	if got := semanticError("x", 0, 0).Message; got != "Semantic error: x" {
		t.Fatalf("semantic: %q", got)
	}
	if got := compilerError("x", 0, 0).Message; got != "Compiler error: x" {
		t.Fatalf("compiler: %q", got)
	}
	if got := wrongTypeError("number", "string", false, 0, 0).Message; got != "Semantic error: Cannot convert 'number' to 'string'" {
		t.Fatalf("wrong type: %q", got)
	}
	if got := wrongTypeError("number", "number", true, 0, 0).Message; got != "Semantic error: 'number' is not a lvalue" {
		t.Fatalf("lvalue: %q", got)
	}
}

func Test_Errors_FormatCaret(t *testing.T) {
	src := "number x = 1;\nnumber y = oops;\n"
	err := &Error{Message: "Semantic error: Undeclared identifier 'oops'", Line: 1, Col: 11}

	var out strings.Builder
	FormatError(err, stringSource(src), &out)

	want := "(2) Semantic error: Undeclared identifier 'oops'\n" +
		"number y = oops;\n" +
		"           ^\n"
	if out.String() != want {
		t.Fatalf("formatted output:\n%q\nwant:\n%q", out.String(), want)
	}
}

func Test_Errors_FormatReplacesTabs(t *testing.T) {
	src := "\tnumber y = oops;\n"
	err := &Error{Message: "Semantic error: Undeclared identifier 'oops'", Line: 0, Col: 12}

	var out strings.Builder
	FormatError(err, stringSource(src), &out)

	lines := strings.Split(out.String(), "\n")
	if lines[1] != " number y = oops;" {
		t.Fatalf("tab not softened: %q", lines[1])
	}
	if lines[2] != strings.Repeat(" ", 12)+"^" {
		t.Fatalf("caret misplaced: %q", lines[2])
	}
}

func Test_Errors_CompileErrorPositions(t *testing.T) {
	e := wantCompileError(t, "number x = ;", "Operand expected")
	if e.Line != 0 {
		t.Fatalf("line: want 0, got %d", e.Line)
	}
	if e.Col != 11 {
		t.Fatalf("col: want 11, got %d", e.Col)
	}
}
