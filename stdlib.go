// stdlib.go: the standard native function set.
//
// These are ordinary external functions registered through the module's
// declaration-string API; nothing here touches engine internals beyond the
// argument slots and the return slot.
package cobalt

import (
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
)

func argNumber(ctx *RuntimeContext, i int) Number {
	return ctx.Local(-1 - i).number()
}

func argString(ctx *RuntimeContext, i int) String {
	return ctx.Local(-1 - i).str()
}

func returnNumber(ctx *RuntimeContext, n Number) {
	ctx.SetRetval(NewNumberVariable(n))
}

func returnString(ctx *RuntimeContext, s string) {
	ctx.SetRetval(NewStringVariableFrom(s))
}

func addNumberFunction(m *Module, name string, f func(Number) Number) {
	m.AddExternalFunction(
		fmt.Sprintf("function number %s(number)", name),
		func(ctx *RuntimeContext) {
			returnNumber(ctx, f(argNumber(ctx, 0)))
		},
	)
}

// AddMathFunctions registers sin, cos, tan, log, exp, pow and rnd.
func AddMathFunctions(m *Module) {
	addNumberFunction(m, "sin", math.Sin)
	addNumberFunction(m, "cos", math.Cos)
	addNumberFunction(m, "tan", math.Tan)
	addNumberFunction(m, "log", math.Log)
	addNumberFunction(m, "exp", math.Exp)

	m.AddExternalFunction("function number pow(number, number)", func(ctx *RuntimeContext) {
		returnNumber(ctx, math.Pow(argNumber(ctx, 0), argNumber(ctx, 1)))
	})

	m.AddExternalFunction("function number rnd(number)", func(ctx *RuntimeContext) {
		bound := int(argNumber(ctx, 0))
		runtimeAssertion(bound > 0, "Invalid random bound")
		returnNumber(ctx, Number(rand.Intn(bound)))
	})
}

// AddStringFunctions registers strlen and substr.
func AddStringFunctions(m *Module) {
	m.AddExternalFunction("function number strlen(string)", func(ctx *RuntimeContext) {
		returnNumber(ctx, Number(len(*argString(ctx, 0))))
	})

	m.AddExternalFunction("function string substr(string, number, number)", func(ctx *RuntimeContext) {
		str := *argString(ctx, 0)
		from := int(argNumber(ctx, 1))
		count := int(argNumber(ctx, 2))
		runtimeAssertion(from >= 0 && from <= len(str), "Invalid substring position")
		if from+count > len(str) {
			count = len(str) - from
		}
		returnString(ctx, str[from:from+count])
	})
}

// AddTraceFunctions registers trace, writing each line to output (stdout
// when nil).
func AddTraceFunctions(m *Module, output io.Writer) {
	if output == nil {
		output = os.Stdout
	}
	m.AddExternalFunction("function void trace(string)", func(ctx *RuntimeContext) {
		fmt.Fprintln(output, *argString(ctx, 0))
	})
}

// AddStandardFunctions registers the whole standard set with trace bound to
// stdout.
func AddStandardFunctions(m *Module) {
	AddMathFunctions(m)
	AddStringFunctions(m)
	AddTraceFunctions(m, nil)
}
