// runtime.go: the runtime image and execution state.
//
// A compiled module yields a RuntimeContext: the function table, the
// public-name map, the global initializers and a value stack. Call frames
// lay out as [params...][retval][locals...] around retvalIdx, so parameters
// are reached through negative local indices.
package cobalt

// RuntimeContext is the execution state handed to every statement,
// expression and native function.
type RuntimeContext struct {
	functions       []Function
	publicFunctions map[string]int
	initializers    []lvalueEval
	globals         []*Variable
	stack           []*Variable
	retvalIdx       int
}

func newRuntimeContext(
	initializers []lvalueEval,
	functions []Function,
	publicFunctions map[string]int,
) *RuntimeContext {
	ctx := &RuntimeContext{
		functions:       functions,
		publicFunctions: publicFunctions,
		initializers:    initializers,
	}
	ctx.Initialize()
	return ctx
}

// Initialize clears the globals and reruns every initializer in source
// order. Running it twice produces identical observable globals.
func (ctx *RuntimeContext) Initialize() {
	ctx.globals = ctx.globals[:0]
	for _, initializer := range ctx.initializers {
		ctx.globals = append(ctx.globals, initializer(ctx))
	}
}

// Global returns the box of global idx.
func (ctx *RuntimeContext) Global(idx int) *Variable {
	runtimeAssertion(idx < len(ctx.globals), "Uninitialized global variable access")
	return ctx.globals[idx]
}

// Retval returns the current call frame's return slot.
func (ctx *RuntimeContext) Retval() *Variable {
	return ctx.stack[ctx.retvalIdx]
}

// SetRetval stores the call frame's return value.
func (ctx *RuntimeContext) SetRetval(v *Variable) {
	ctx.stack[ctx.retvalIdx] = v
}

// Local returns the box at frame offset idx: parameters live at -1, -2, ...
// and locals at 1, 2, ...
func (ctx *RuntimeContext) Local(idx int) *Variable {
	return ctx.stack[ctx.retvalIdx+idx]
}

// GetFunction returns the function table entry idx.
func (ctx *RuntimeContext) GetFunction(idx int) Function {
	return ctx.functions[idx]
}

// GetPublicFunction looks up a public function by its script name.
func (ctx *RuntimeContext) GetPublicFunction(name string) (Function, bool) {
	idx, ok := ctx.publicFunctions[name]
	if !ok {
		return nil, false
	}
	return ctx.functions[idx], true
}

// enterScope snapshots the stack depth and returns the restore function,
// pairing lexical scope with stack lifetime; call it with defer so the
// stack is truncated regardless of outcome.
func (ctx *RuntimeContext) enterScope() func() {
	size := len(ctx.stack)
	return func() { ctx.stack = ctx.stack[:size] }
}

func (ctx *RuntimeContext) push(v *Variable) {
	ctx.stack = append(ctx.stack, v)
}

// Call invokes f with the given boxed parameters. Parameters are pushed in
// reverse so parameter 0 ends at frame offset -1, one slot is reserved for
// the return value, and the stack is truncated back to the caller's view
// before returning the moved-out return box.
func (ctx *RuntimeContext) Call(f Function, params []*Variable) *Variable {
	entryDepth := len(ctx.stack)
	oldRetvalIdx := ctx.retvalIdx

	// Restores the caller's view whether the callee returns or a runtime
	// error unwinds through here.
	defer func() {
		ctx.stack = ctx.stack[:entryDepth]
		ctx.retvalIdx = oldRetvalIdx
	}()

	for i := len(params); i > 0; i-- {
		ctx.stack = append(ctx.stack, params[i-1])
	}

	ctx.retvalIdx = len(ctx.stack)
	ctx.stack = append(ctx.stack, nil)

	runtimeAssertion(f != nil, "Uninitialized function call")

	f(ctx)

	return ctx.stack[ctx.retvalIdx]
}
