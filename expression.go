// expression.go: lowering typed AST nodes into evaluators.
//
// Evaluators come in one flavor per result kind: void, number, string,
// array (tuples and init lists share it), function, and lvalue (a box, for
// every l-kind). A node is first lowered to its natural kind -- its resolved
// type plus lvalue flag -- and the to* wrappers apply the conversions the
// static types imply at the edges: unboxing (with a deep clone for arrays),
// and number-to-string stringification.
package cobalt

type (
	voidEval     func(*RuntimeContext)
	numberEval   func(*RuntimeContext) Number
	stringEval   func(*RuntimeContext) String
	arrayEval    func(*RuntimeContext) Array
	functionEval func(*RuntimeContext) Function
	lvalueEval   func(*RuntimeContext) *Variable
)

func builderError(np *node) *Error {
	return compilerError("Expression building failed", np.line, np.col)
}

// -- conversion wrappers ----------------------------------------------------

func toNumber(np *node) (numberEval, error) {
	if np.typeID != TypeNumber {
		return nil, builderError(np)
	}
	if np.lvalue {
		l, err := naturalLvalue(np)
		if err != nil {
			return nil, err
		}
		return func(ctx *RuntimeContext) Number { return l(ctx).number() }, nil
	}
	return naturalNumber(np)
}

func toString(np *node) (stringEval, error) {
	switch np.typeID {
	case TypeString:
		if np.lvalue {
			l, err := naturalLvalue(np)
			if err != nil {
				return nil, err
			}
			return func(ctx *RuntimeContext) String { return l(ctx).str() }, nil
		}
		return naturalString(np)
	case TypeNumber:
		n, err := toNumber(np)
		if err != nil {
			return nil, err
		}
		return func(ctx *RuntimeContext) String { return convertNumberToString(n(ctx)) }, nil
	default:
		return nil, builderError(np)
	}
}

func toArray(np *node) (arrayEval, error) {
	switch np.typeID.Kind {
	case KindArray, KindTuple:
		if np.lvalue {
			l, err := naturalLvalue(np)
			if err != nil {
				return nil, err
			}
			// Scripts see arrays by value: unboxing clones.
			return func(ctx *RuntimeContext) Array { return cloneArray(l(ctx).array()) }, nil
		}
		return naturalArray(np)
	case KindInitList:
		return naturalInitList(np)
	default:
		return nil, builderError(np)
	}
}

func toFunction(np *node) (functionEval, error) {
	if np.typeID.Kind != KindFunction {
		return nil, builderError(np)
	}
	if np.lvalue {
		l, err := naturalLvalue(np)
		if err != nil {
			return nil, err
		}
		return func(ctx *RuntimeContext) Function { return l(ctx).function() }, nil
	}
	return naturalFunction(np)
}

func toVoid(np *node) (voidEval, error) {
	if np.typeID == TypeVoid {
		return naturalVoid(np)
	}
	if np.lvalue {
		l, err := naturalLvalue(np)
		if err != nil {
			return nil, err
		}
		return func(ctx *RuntimeContext) { l(ctx) }, nil
	}
	switch np.typeID.Kind {
	case KindNumber:
		e, err := naturalNumber(np)
		if err != nil {
			return nil, err
		}
		return func(ctx *RuntimeContext) { e(ctx) }, nil
	case KindString:
		e, err := naturalString(np)
		if err != nil {
			return nil, err
		}
		return func(ctx *RuntimeContext) { e(ctx) }, nil
	case KindArray, KindTuple:
		e, err := naturalArray(np)
		if err != nil {
			return nil, err
		}
		return func(ctx *RuntimeContext) { e(ctx) }, nil
	case KindInitList:
		e, err := naturalInitList(np)
		if err != nil {
			return nil, err
		}
		return func(ctx *RuntimeContext) { e(ctx) }, nil
	case KindFunction:
		e, err := naturalFunction(np)
		if err != nil {
			return nil, err
		}
		return func(ctx *RuntimeContext) { e(ctx) }, nil
	}
	return nil, builderError(np)
}

// buildParamBox evaluates np converted to typeID and clones the result into
// a fresh box: pass-by-value for arguments, init-list elements and
// initializers.
func buildParamBox(typeID TypeHandle, np *node) (lvalueEval, error) {
	switch typeID.Kind {
	case KindNumber:
		e, err := toNumber(np)
		if err != nil {
			return nil, err
		}
		return func(ctx *RuntimeContext) *Variable { return NewNumberVariable(e(ctx)) }, nil
	case KindString:
		e, err := toString(np)
		if err != nil {
			return nil, err
		}
		return func(ctx *RuntimeContext) *Variable { return NewStringVariable(e(ctx)) }, nil
	case KindArray, KindTuple:
		e, err := toArray(np)
		if err != nil {
			return nil, err
		}
		return func(ctx *RuntimeContext) *Variable { return NewArrayVariable(e(ctx)) }, nil
	case KindFunction:
		e, err := toFunction(np)
		if err != nil {
			return nil, err
		}
		return func(ctx *RuntimeContext) *Variable { return NewFunctionVariable(e(ctx)) }, nil
	default:
		return nil, builderError(np)
	}
}

// -- natural-kind builders --------------------------------------------------

func naturalLvalue(np *node) (lvalueEval, error) {
	switch np.kind {
	case identifierNode:
		return identifierBox(np)
	case operationNode:
	default:
		return nil, builderError(np)
	}

	c := np.children

	switch np.op {
	case opPreinc, opPredec:
		delta := Number(1)
		if np.op == opPredec {
			delta = -1
		}
		l, err := naturalLvalue(c[0])
		if err != nil {
			return nil, err
		}
		return func(ctx *RuntimeContext) *Variable {
			box := l(ctx)
			box.setNumber(box.number() + delta)
			return box
		}, nil

	case opAssign:
		return buildAssign(np)

	case opAddAssign, opSubAssign, opMulAssign, opDivAssign, opIdivAssign,
		opModAssign, opBandAssign, opBorAssign, opBxorAssign, opBslAssign, opBsrAssign:
		return buildCompoundAssign(np)

	case opConcatAssign:
		l, err := naturalLvalue(c[0])
		if err != nil {
			return nil, err
		}
		r, err := toString(c[1])
		if err != nil {
			return nil, err
		}
		return func(ctx *RuntimeContext) *Variable {
			box := l(ctx)
			rhs := r(ctx)
			box.setString(sharedString(*box.str() + *rhs))
			return box
		}, nil

	case opComma:
		left, err := toVoid(c[0])
		if err != nil {
			return nil, err
		}
		right, err := naturalLvalue(c[1])
		if err != nil {
			return nil, err
		}
		return func(ctx *RuntimeContext) *Variable {
			left(ctx)
			return right(ctx)
		}, nil

	case opTernary:
		cond, err := toNumber(c[0])
		if err != nil {
			return nil, err
		}
		then, err := naturalLvalue(c[1])
		if err != nil {
			return nil, err
		}
		otherwise, err := naturalLvalue(c[2])
		if err != nil {
			return nil, err
		}
		return func(ctx *RuntimeContext) *Variable {
			if cond(ctx) != 0 {
				return then(ctx)
			}
			return otherwise(ctx)
		}, nil

	case opIndex:
		return buildIndexBox(np)
	}

	return nil, builderError(np)
}

func identifierBox(np *node) (lvalueEval, error) {
	info := np.info
	switch info.scope {
	case ScopeGlobalVariable:
		idx := info.index
		return func(ctx *RuntimeContext) *Variable { return ctx.Global(idx) }, nil
	case ScopeLocalVariable:
		idx := info.index
		return func(ctx *RuntimeContext) *Variable { return ctx.Local(idx) }, nil
	default:
		return nil, builderError(np)
	}
}

func buildAssign(np *node) (lvalueEval, error) {
	c := np.children
	l, err := naturalLvalue(c[0])
	if err != nil {
		return nil, err
	}
	switch np.typeID.Kind {
	case KindNumber:
		r, err := toNumber(c[1])
		if err != nil {
			return nil, err
		}
		return func(ctx *RuntimeContext) *Variable {
			box := l(ctx)
			box.setNumber(r(ctx))
			return box
		}, nil
	case KindString:
		r, err := toString(c[1])
		if err != nil {
			return nil, err
		}
		return func(ctx *RuntimeContext) *Variable {
			box := l(ctx)
			box.setString(r(ctx))
			return box
		}, nil
	case KindArray, KindTuple:
		r, err := toArray(c[1])
		if err != nil {
			return nil, err
		}
		return func(ctx *RuntimeContext) *Variable {
			box := l(ctx)
			box.setArray(r(ctx))
			return box
		}, nil
	case KindFunction:
		r, err := toFunction(c[1])
		if err != nil {
			return nil, err
		}
		return func(ctx *RuntimeContext) *Variable {
			box := l(ctx)
			box.setFunction(r(ctx))
			return box
		}, nil
	}
	return nil, builderError(np)
}

func buildCompoundAssign(np *node) (lvalueEval, error) {
	c := np.children
	l, err := naturalLvalue(c[0])
	if err != nil {
		return nil, err
	}
	r, err := toNumber(c[1])
	if err != nil {
		return nil, err
	}

	var apply func(a, b Number) Number
	switch np.op {
	case opAddAssign:
		apply = func(a, b Number) Number { return a + b }
	case opSubAssign:
		apply = func(a, b Number) Number { return a - b }
	case opMulAssign:
		apply = func(a, b Number) Number { return a * b }
	case opDivAssign:
		apply = func(a, b Number) Number { return a / b }
	case opIdivAssign:
		apply = func(a, b Number) Number { return Number(int64(a / b)) }
	case opModAssign:
		apply = func(a, b Number) Number { return a - b*Number(int64(a/b)) }
	case opBandAssign:
		apply = func(a, b Number) Number { return Number(int64(a) & int64(b)) }
	case opBorAssign:
		apply = func(a, b Number) Number { return Number(int64(a) | int64(b)) }
	case opBxorAssign:
		apply = func(a, b Number) Number { return Number(int64(a) ^ int64(b)) }
	case opBslAssign:
		apply = func(a, b Number) Number { return Number(int64(a) << uint64(int64(b))) }
	case opBsrAssign:
		apply = func(a, b Number) Number { return Number(int64(a) >> uint64(int64(b))) }
	default:
		return nil, builderError(np)
	}

	return func(ctx *RuntimeContext) *Variable {
		box := l(ctx)
		rhs := r(ctx)
		box.setNumber(apply(box.number(), rhs))
		return box
	}, nil
}

// buildIndexBox produces the element box of an index operation. Indexing an
// array past its current length grows it with default-initialized elements;
// a negative index is a runtime error. Tuple elements are direct slot
// access through a compile-time constant index.
func buildIndexBox(np *node) (lvalueEval, error) {
	c := np.children
	aggregate := c[0].typeID

	if aggregate.Kind == KindTuple {
		memberIdx := int(c[1].num)
		if c[0].lvalue {
			l, err := naturalLvalue(c[0])
			if err != nil {
				return nil, err
			}
			return func(ctx *RuntimeContext) *Variable { return l(ctx).array()[memberIdx] }, nil
		}
		e, err := naturalArray(c[0])
		if err != nil {
			return nil, err
		}
		return func(ctx *RuntimeContext) *Variable { return e(ctx)[memberIdx] }, nil
	}

	idxEval, err := toNumber(c[1])
	if err != nil {
		return nil, err
	}
	defaultInit, err := buildDefaultInitialization(aggregate.Inner)
	if err != nil {
		return nil, err
	}

	if c[0].lvalue {
		l, err := naturalLvalue(c[0])
		if err != nil {
			return nil, err
		}
		return func(ctx *RuntimeContext) *Variable {
			box := l(ctx)
			idx := int(idxEval(ctx))
			runtimeAssertion(idx >= 0, "Negative index is invalid")
			arr := box.array()
			for idx >= len(arr) {
				arr = append(arr, defaultInit(ctx))
			}
			box.setArray(arr)
			return arr[idx]
		}, nil
	}

	e, err := toArray(c[0])
	if err != nil {
		return nil, err
	}
	return func(ctx *RuntimeContext) *Variable {
		arr := e(ctx)
		idx := int(idxEval(ctx))
		runtimeAssertion(idx >= 0, "Negative index is invalid")
		for idx >= len(arr) {
			arr = append(arr, defaultInit(ctx))
		}
		return arr[idx]
	}, nil
}

func naturalNumber(np *node) (numberEval, error) {
	if np.kind == numberNode {
		n := np.num
		return func(*RuntimeContext) Number { return n }, nil
	}
	if np.kind != operationNode {
		return nil, builderError(np)
	}

	c := np.children

	binary := func(apply func(a, b Number) Number) (numberEval, error) {
		left, err := toNumber(c[0])
		if err != nil {
			return nil, err
		}
		right, err := toNumber(c[1])
		if err != nil {
			return nil, err
		}
		return func(ctx *RuntimeContext) Number { return apply(left(ctx), right(ctx)) }, nil
	}

	switch np.op {
	case opPostinc, opPostdec:
		delta := Number(1)
		if np.op == opPostdec {
			delta = -1
		}
		l, err := naturalLvalue(c[0])
		if err != nil {
			return nil, err
		}
		return func(ctx *RuntimeContext) Number {
			box := l(ctx)
			old := box.number()
			box.setNumber(old + delta)
			return old
		}, nil

	case opPositive:
		return toNumber(c[0])

	case opNegative:
		e, err := toNumber(c[0])
		if err != nil {
			return nil, err
		}
		return func(ctx *RuntimeContext) Number { return -e(ctx) }, nil

	case opBnot:
		e, err := toNumber(c[0])
		if err != nil {
			return nil, err
		}
		return func(ctx *RuntimeContext) Number { return Number(^int64(e(ctx))) }, nil

	case opLnot:
		e, err := toNumber(c[0])
		if err != nil {
			return nil, err
		}
		return func(ctx *RuntimeContext) Number {
			if e(ctx) == 0 {
				return 1
			}
			return 0
		}, nil

	case opSize:
		return buildSize(c[0])

	case opAdd:
		return binary(func(a, b Number) Number { return a + b })
	case opSub:
		return binary(func(a, b Number) Number { return a - b })
	case opMul:
		return binary(func(a, b Number) Number { return a * b })
	case opDiv:
		return binary(func(a, b Number) Number { return a / b })
	case opIdiv:
		return binary(func(a, b Number) Number { return Number(int64(a / b)) })
	case opMod:
		return binary(func(a, b Number) Number { return a - b*Number(int64(a/b)) })
	case opBand:
		return binary(func(a, b Number) Number { return Number(int64(a) & int64(b)) })
	case opBor:
		return binary(func(a, b Number) Number { return Number(int64(a) | int64(b)) })
	case opBxor:
		return binary(func(a, b Number) Number { return Number(int64(a) ^ int64(b)) })
	case opBsl:
		return binary(func(a, b Number) Number { return Number(int64(a) << uint64(int64(b))) })
	case opBsr:
		return binary(func(a, b Number) Number { return Number(int64(a) >> uint64(int64(b))) })

	case opEq, opNe, opLt, opGt, opLe, opGe:
		return buildComparison(np)

	case opLand:
		left, err := toNumber(c[0])
		if err != nil {
			return nil, err
		}
		right, err := toNumber(c[1])
		if err != nil {
			return nil, err
		}
		return func(ctx *RuntimeContext) Number {
			if left(ctx) != 0 && right(ctx) != 0 {
				return 1
			}
			return 0
		}, nil

	case opLor:
		left, err := toNumber(c[0])
		if err != nil {
			return nil, err
		}
		right, err := toNumber(c[1])
		if err != nil {
			return nil, err
		}
		return func(ctx *RuntimeContext) Number {
			if left(ctx) != 0 || right(ctx) != 0 {
				return 1
			}
			return 0
		}, nil

	case opComma:
		left, err := toVoid(c[0])
		if err != nil {
			return nil, err
		}
		right, err := toNumber(c[1])
		if err != nil {
			return nil, err
		}
		return func(ctx *RuntimeContext) Number {
			left(ctx)
			return right(ctx)
		}, nil

	case opIndex:
		box, err := buildIndexBox(np)
		if err != nil {
			return nil, err
		}
		return func(ctx *RuntimeContext) Number { return box(ctx).number() }, nil

	case opTernary:
		cond, err := toNumber(c[0])
		if err != nil {
			return nil, err
		}
		then, err := toNumber(c[1])
		if err != nil {
			return nil, err
		}
		otherwise, err := toNumber(c[2])
		if err != nil {
			return nil, err
		}
		return func(ctx *RuntimeContext) Number {
			if cond(ctx) != 0 {
				return then(ctx)
			}
			return otherwise(ctx)
		}, nil

	case opCall:
		call, err := buildCall(np)
		if err != nil {
			return nil, err
		}
		return func(ctx *RuntimeContext) Number { return call(ctx).number() }, nil
	}

	return nil, builderError(np)
}

// buildComparison compares numbers when both operands are statically
// numbers, and strings otherwise (numbers stringify). Everything routes
// through a single less-than kernel.
func buildComparison(np *node) (numberEval, error) {
	c := np.children

	var less func(ctx *RuntimeContext) (bool, bool) // (a<b, b<a)
	if c[0].typeID == TypeNumber && c[1].typeID == TypeNumber {
		left, err := toNumber(c[0])
		if err != nil {
			return nil, err
		}
		right, err := toNumber(c[1])
		if err != nil {
			return nil, err
		}
		less = func(ctx *RuntimeContext) (bool, bool) {
			a, b := left(ctx), right(ctx)
			return a < b, b < a
		}
	} else {
		left, err := toString(c[0])
		if err != nil {
			return nil, err
		}
		right, err := toString(c[1])
		if err != nil {
			return nil, err
		}
		less = func(ctx *RuntimeContext) (bool, bool) {
			a, b := left(ctx), right(ctx)
			return *a < *b, *b < *a
		}
	}

	var truth func(ab, ba bool) bool
	switch np.op {
	case opEq:
		truth = func(ab, ba bool) bool { return !ab && !ba }
	case opNe:
		truth = func(ab, ba bool) bool { return ab || ba }
	case opLt:
		truth = func(ab, ba bool) bool { return ab }
	case opGt:
		truth = func(ab, ba bool) bool { return ba }
	case opLe:
		truth = func(ab, ba bool) bool { return !ba }
	case opGe:
		truth = func(ab, ba bool) bool { return !ab }
	default:
		return nil, builderError(np)
	}

	return func(ctx *RuntimeContext) Number {
		ab, ba := less(ctx)
		if truth(ab, ba) {
			return 1
		}
		return 0
	}, nil
}

// buildSize lowers sizeof: the array length for arrays, the constant 1
// otherwise.
func buildSize(operand *node) (numberEval, error) {
	if operand.typeID.Kind != KindArray {
		return func(*RuntimeContext) Number { return 1 }, nil
	}
	if operand.lvalue {
		l, err := naturalLvalue(operand)
		if err != nil {
			return nil, err
		}
		return func(ctx *RuntimeContext) Number { return Number(len(l(ctx).array())) }, nil
	}
	e, err := naturalArray(operand)
	if err != nil {
		return nil, err
	}
	return func(ctx *RuntimeContext) Number { return Number(len(e(ctx))) }, nil
}

func naturalString(np *node) (stringEval, error) {
	if np.kind == stringNode {
		s := sharedString(np.str)
		return func(*RuntimeContext) String { return s }, nil
	}
	if np.kind != operationNode {
		return nil, builderError(np)
	}

	c := np.children

	switch np.op {
	case opTostring:
		return buildTostring(c[0])

	case opConcat:
		left, err := toString(c[0])
		if err != nil {
			return nil, err
		}
		right, err := toString(c[1])
		if err != nil {
			return nil, err
		}
		return func(ctx *RuntimeContext) String {
			return sharedString(*left(ctx) + *right(ctx))
		}, nil

	case opComma:
		left, err := toVoid(c[0])
		if err != nil {
			return nil, err
		}
		right, err := toString(c[1])
		if err != nil {
			return nil, err
		}
		return func(ctx *RuntimeContext) String {
			left(ctx)
			return right(ctx)
		}, nil

	case opIndex:
		box, err := buildIndexBox(np)
		if err != nil {
			return nil, err
		}
		return func(ctx *RuntimeContext) String { return box(ctx).str() }, nil

	case opTernary:
		cond, err := toNumber(c[0])
		if err != nil {
			return nil, err
		}
		then, err := toString(c[1])
		if err != nil {
			return nil, err
		}
		otherwise, err := toString(c[2])
		if err != nil {
			return nil, err
		}
		return func(ctx *RuntimeContext) String {
			if cond(ctx) != 0 {
				return then(ctx)
			}
			return otherwise(ctx)
		}, nil

	case opCall:
		call, err := buildCall(np)
		if err != nil {
			return nil, err
		}
		return func(ctx *RuntimeContext) String { return call(ctx).str() }, nil
	}

	return nil, builderError(np)
}

// buildTostring stringifies the operand by its natural kind. An lvalue
// operand defers to the box; init lists are not stringifiable.
func buildTostring(operand *node) (stringEval, error) {
	if operand.lvalue {
		l, err := naturalLvalue(operand)
		if err != nil {
			return nil, err
		}
		return func(ctx *RuntimeContext) String { return l(ctx).ToString() }, nil
	}
	switch operand.typeID.Kind {
	case KindNumber:
		e, err := naturalNumber(operand)
		if err != nil {
			return nil, err
		}
		return func(ctx *RuntimeContext) String { return convertNumberToString(e(ctx)) }, nil
	case KindString:
		return naturalString(operand)
	case KindFunction:
		e, err := naturalFunction(operand)
		if err != nil {
			return nil, err
		}
		return func(ctx *RuntimeContext) String {
			e(ctx)
			return sharedString("FUNCTION")
		}, nil
	case KindArray, KindTuple:
		e, err := naturalArray(operand)
		if err != nil {
			return nil, err
		}
		return func(ctx *RuntimeContext) String { return convertArrayToString(e(ctx)) }, nil
	default:
		return nil, builderError(operand)
	}
}

func naturalArray(np *node) (arrayEval, error) {
	if np.kind != operationNode {
		return nil, builderError(np)
	}

	c := np.children

	switch np.op {
	case opComma:
		left, err := toVoid(c[0])
		if err != nil {
			return nil, err
		}
		right, err := toArray(c[1])
		if err != nil {
			return nil, err
		}
		return func(ctx *RuntimeContext) Array {
			left(ctx)
			return right(ctx)
		}, nil

	case opIndex:
		box, err := buildIndexBox(np)
		if err != nil {
			return nil, err
		}
		return func(ctx *RuntimeContext) Array { return cloneArray(box(ctx).array()) }, nil

	case opTernary:
		cond, err := toNumber(c[0])
		if err != nil {
			return nil, err
		}
		then, err := toArray(c[1])
		if err != nil {
			return nil, err
		}
		otherwise, err := toArray(c[2])
		if err != nil {
			return nil, err
		}
		return func(ctx *RuntimeContext) Array {
			if cond(ctx) != 0 {
				return then(ctx)
			}
			return otherwise(ctx)
		}, nil

	case opCall:
		call, err := buildCall(np)
		if err != nil {
			return nil, err
		}
		return func(ctx *RuntimeContext) Array { return call(ctx).array() }, nil

	case opInit:
		return naturalInitList(np)
	}

	return nil, builderError(np)
}

// naturalInitList evaluates each element into a fresh box; the sequence
// coerces to the target array or tuple at the using site.
func naturalInitList(np *node) (arrayEval, error) {
	elems := make([]lvalueEval, len(np.children))
	for i, child := range np.children {
		e, err := buildParamBox(child.typeID, child)
		if err != nil {
			return nil, err
		}
		elems[i] = e
	}
	return func(ctx *RuntimeContext) Array {
		lst := make(Array, len(elems))
		for i, e := range elems {
			lst[i] = e(ctx)
		}
		return lst
	}, nil
}

func naturalFunction(np *node) (functionEval, error) {
	if np.kind == identifierNode {
		info := np.info
		if info.scope == ScopeFunction {
			idx := info.index
			return func(ctx *RuntimeContext) Function { return ctx.GetFunction(idx) }, nil
		}
		l, err := identifierBox(np)
		if err != nil {
			return nil, err
		}
		return func(ctx *RuntimeContext) Function { return l(ctx).function() }, nil
	}
	if np.kind != operationNode {
		return nil, builderError(np)
	}

	c := np.children

	switch np.op {
	case opComma:
		left, err := toVoid(c[0])
		if err != nil {
			return nil, err
		}
		right, err := toFunction(c[1])
		if err != nil {
			return nil, err
		}
		return func(ctx *RuntimeContext) Function {
			left(ctx)
			return right(ctx)
		}, nil

	case opIndex:
		box, err := buildIndexBox(np)
		if err != nil {
			return nil, err
		}
		return func(ctx *RuntimeContext) Function { return box(ctx).function() }, nil

	case opTernary:
		cond, err := toNumber(c[0])
		if err != nil {
			return nil, err
		}
		then, err := toFunction(c[1])
		if err != nil {
			return nil, err
		}
		otherwise, err := toFunction(c[2])
		if err != nil {
			return nil, err
		}
		return func(ctx *RuntimeContext) Function {
			if cond(ctx) != 0 {
				return then(ctx)
			}
			return otherwise(ctx)
		}, nil

	case opCall:
		call, err := buildCall(np)
		if err != nil {
			return nil, err
		}
		return func(ctx *RuntimeContext) Function { return call(ctx).function() }, nil
	}

	return nil, builderError(np)
}

func naturalVoid(np *node) (voidEval, error) {
	if np.kind != operationNode {
		return nil, builderError(np)
	}

	c := np.children

	switch np.op {
	case opComma:
		left, err := toVoid(c[0])
		if err != nil {
			return nil, err
		}
		right, err := toVoid(c[1])
		if err != nil {
			return nil, err
		}
		return func(ctx *RuntimeContext) {
			left(ctx)
			right(ctx)
		}, nil

	case opTernary:
		cond, err := toNumber(c[0])
		if err != nil {
			return nil, err
		}
		then, err := toVoid(c[1])
		if err != nil {
			return nil, err
		}
		otherwise, err := toVoid(c[2])
		if err != nil {
			return nil, err
		}
		return func(ctx *RuntimeContext) {
			if cond(ctx) != 0 {
				then(ctx)
			} else {
				otherwise(ctx)
			}
		}, nil

	case opCall:
		call, err := buildCall(np)
		if err != nil {
			return nil, err
		}
		return func(ctx *RuntimeContext) { call(ctx) }, nil
	}

	return nil, builderError(np)
}

// buildCall lowers a call node: arguments evaluate left-to-right into boxes
// (fresh clones unless by-ref), the callee expression resolves to a
// function, and the runtime call protocol does the rest.
func buildCall(np *node) (lvalueEval, error) {
	c := np.children
	ft := c[0].typeID

	arguments := make([]lvalueEval, len(c)-1)
	for i := 1; i < len(c); i++ {
		child := c[i]
		var err error
		if child.isOperation() && child.op == opParam {
			arguments[i-1], err = buildParamBox(ft.Params[i-1].Type, child.children[0])
		} else {
			arguments[i-1], err = naturalLvalue(child)
		}
		if err != nil {
			return nil, err
		}
	}

	callee, err := toFunction(c[0])
	if err != nil {
		return nil, err
	}

	return func(ctx *RuntimeContext) *Variable {
		params := make([]*Variable, len(arguments))
		for i, argument := range arguments {
			params[i] = argument(ctx)
		}
		f := callee(ctx)
		return ctx.Call(f, params)
	}, nil
}

// buildDefaultInitialization produces a fresh default value box for a type:
// zero, empty string, empty array, uninitialized function, and tuples
// default-initialize element-wise.
func buildDefaultInitialization(typeID TypeHandle) (lvalueEval, error) {
	switch typeID.Kind {
	case KindNumber:
		return func(*RuntimeContext) *Variable { return NewNumberVariable(0) }, nil
	case KindString:
		return func(*RuntimeContext) *Variable { return NewStringVariableFrom("") }, nil
	case KindFunction:
		return func(*RuntimeContext) *Variable { return NewFunctionVariable(nil) }, nil
	case KindArray:
		return func(*RuntimeContext) *Variable { return NewArrayVariable(nil) }, nil
	case KindTuple:
		elems := make([]lvalueEval, len(typeID.Elems))
		for i, e := range typeID.Elems {
			init, err := buildDefaultInitialization(e)
			if err != nil {
				return nil, err
			}
			elems[i] = init
		}
		return func(ctx *RuntimeContext) *Variable {
			tup := make(Tuple, len(elems))
			for i, e := range elems {
				tup[i] = e(ctx)
			}
			return NewArrayVariable(tup)
		}, nil
	default:
		return nil, &Error{Message: "Compiler error: cannot default-initialize " + typeToString(typeID)}
	}
}

// -- entry points used by the statement compiler ----------------------------

// buildVoidExpression parses and lowers an expression evaluated for effect.
// An empty expression is a no-op.
func buildVoidExpression(ctx *CompilerContext, it *tokenIterator) (voidEval, error) {
	np, err := parseExpressionTree(ctx, it, TypeVoid, true)
	if err != nil {
		return nil, err
	}
	if np == nil {
		return func(*RuntimeContext) {}, nil
	}
	return toVoid(np)
}

// buildNumberExpression parses and lowers a condition expression.
func buildNumberExpression(ctx *CompilerContext, it *tokenIterator) (numberEval, error) {
	np, err := parseExpressionTree(ctx, it, TypeNumber, true)
	if err != nil {
		return nil, err
	}
	return toNumber(np)
}

// buildInitialisationExpression parses an expression converted to typeID
// and boxes the value, for declarations, return values and initializers.
func buildInitialisationExpression(
	ctx *CompilerContext, it *tokenIterator, typeID TypeHandle, allowComma bool,
) (lvalueEval, error) {
	np, err := parseExpressionTree(ctx, it, typeID, allowComma)
	if err != nil {
		return nil, err
	}
	return buildParamBox(typeID, np)
}
