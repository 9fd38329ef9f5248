// compiler.go: recursive-descent statement compiler and the two-pass module
// compile.
//
// The first pass registers external and public declarations, collects
// top-level globals, and captures each script function's body as its raw
// token stream (balanced braces). Once every signature is known, the second
// pass compiles each body against its parameter scope, so mutually
// recursive functions resolve.
package cobalt

import "fmt"

// possibleFlow records which non-local control transfers are legal at the
// current program point.
type possibleFlow struct {
	breakLevel   int
	canContinue  bool
	returnTypeID TypeHandle
}

func (pf possibleFlow) addSwitch() possibleFlow {
	return possibleFlow{breakLevel: pf.breakLevel + 1, canContinue: pf.canContinue, returnTypeID: pf.returnTypeID}
}

func (pf possibleFlow) addLoop() possibleFlow {
	return possibleFlow{breakLevel: pf.breakLevel + 1, canContinue: true, returnTypeID: pf.returnTypeID}
}

func inFunctionFlow(returnTypeID TypeHandle) possibleFlow {
	return possibleFlow{returnTypeID: returnTypeID}
}

func isTypename(t Token) bool {
	switch t.Type {
	case tokKwNumber, tokKwString, tokKwVoid, tokOpenSquare:
		return true
	default:
		return false
	}
}

func unexpectedSyntax(it *tokenIterator) *Error {
	t := it.token()
	return unexpectedSyntaxError(t.Text(), t.Line, t.Col)
}

// parseTokenValue consumes exactly the expected reserved token.
func parseTokenValue(it *tokenIterator, tt TokenType) error {
	if it.token().is(tt) {
		return it.advance()
	}
	return expectedSyntaxError(reservedText(tt), it.token().Line, it.token().Col)
}

// parseDeclarationName consumes an identifier that may be declared at the
// current scope.
func parseDeclarationName(ctx *CompilerContext, it *tokenIterator) (string, error) {
	t := it.token()
	if !t.isIdentifier() {
		return "", unexpectedSyntax(it)
	}

	name := t.Str
	if !ctx.canDeclare(name) {
		return "", alreadyDeclaredError(name, t.Line, t.Col)
	}

	if err := it.advance(); err != nil {
		return "", err
	}
	return name, nil
}

// parseType parses a type: a simple type or tuple, then any number of
// array ([]) and function ((params)) suffixes.
func parseType(ctx *CompilerContext, it *tokenIterator) (TypeHandle, error) {
	t := it.token()
	if !t.isReserved() {
		return nil, unexpectedSyntax(it)
	}

	var typeID TypeHandle

	switch t.Type {
	case tokKwVoid:
		typeID = TypeVoid
		if err := it.advance(); err != nil {
			return nil, err
		}
	case tokKwNumber:
		typeID = TypeNumber
		if err := it.advance(); err != nil {
			return nil, err
		}
	case tokKwString:
		typeID = TypeString
		if err := it.advance(); err != nil {
			return nil, err
		}
	case tokOpenSquare:
		if err := it.advance(); err != nil {
			return nil, err
		}
		var elems []TypeHandle
		for !it.token().is(tokCloseSquare) {
			if len(elems) > 0 {
				if err := parseTokenValue(it, tokComma); err != nil {
					return nil, err
				}
			}
			inner, err := parseType(ctx, it)
			if err != nil {
				return nil, err
			}
			elems = append(elems, inner)
		}
		if err := it.advance(); err != nil {
			return nil, err
		}
		typeID = ctx.tupleType(elems)
	default:
		return nil, unexpectedSyntax(it)
	}

	for it.token().isReserved() {
		switch it.token().Type {
		case tokOpenSquare:
			if err := it.advance(); err != nil {
				return nil, err
			}
			if err := parseTokenValue(it, tokCloseSquare); err != nil {
				return nil, err
			}
			typeID = ctx.arrayType(typeID)
		case tokOpenRound:
			if err := it.advance(); err != nil {
				return nil, err
			}
			var params []Param
			for !it.token().is(tokCloseRound) {
				if len(params) > 0 {
					if err := parseTokenValue(it, tokComma); err != nil {
						return nil, err
					}
				}
				paramType, err := parseType(ctx, it)
				if err != nil {
					return nil, err
				}
				byRef := it.token().is(tokBitwiseAnd)
				if byRef {
					if err := it.advance(); err != nil {
						return nil, err
					}
				}
				params = append(params, Param{Type: paramType, ByRef: byRef})
			}
			if err := it.advance(); err != nil {
				return nil, err
			}
			typeID = ctx.functionType(typeID, params)
		default:
			return typeID, nil
		}
	}

	return typeID, nil
}

// compileVariableDeclaration handles `<type> name (init?)(, name init?)*`,
// producing one initializer per declared name. Initializers are `= expr`,
// the constructor form `(expr)`, or a default initialization.
func compileVariableDeclaration(ctx *CompilerContext, it *tokenIterator) ([]lvalueEval, error) {
	typeID, err := parseType(ctx, it)
	if err != nil {
		return nil, err
	}

	if typeID == TypeVoid {
		return nil, syntaxError("Cannot declare void variable", it.token().Line, it.token().Col)
	}

	var ret []lvalueEval

	for {
		if len(ret) > 0 {
			if err := it.advance(); err != nil {
				return nil, err
			}
		}

		name, err := parseDeclarationName(ctx, it)
		if err != nil {
			return nil, err
		}

		var init lvalueEval
		switch {
		case it.token().is(tokOpenRound):
			if err := it.advance(); err != nil {
				return nil, err
			}
			init, err = buildInitialisationExpression(ctx, it, typeID, false)
			if err != nil {
				return nil, err
			}
			if err := parseTokenValue(it, tokCloseRound); err != nil {
				return nil, err
			}
		case it.token().is(tokAssign):
			if err := it.advance(); err != nil {
				return nil, err
			}
			init, err = buildInitialisationExpression(ctx, it, typeID, false)
			if err != nil {
				return nil, err
			}
		default:
			init, err = buildDefaultInitialization(typeID)
			if err != nil {
				return nil, err
			}
		}
		ret = append(ret, init)

		ctx.createIdentifier(name, typeID)

		if !it.token().is(tokComma) {
			return ret, nil
		}
	}
}

func compileStatement(ctx *CompilerContext, it *tokenIterator, pf possibleFlow, inSwitch bool) (statement, error) {
	if it.token().isReserved() {
		switch it.token().Type {
		case tokKwFor:
			return compileForStatement(ctx, it, pf.addLoop())
		case tokKwWhile:
			return compileWhileStatement(ctx, it, pf.addLoop())
		case tokKwDo:
			return compileDoStatement(ctx, it, pf.addLoop())
		case tokKwIf:
			return compileIfStatement(ctx, it, pf)
		case tokKwSwitch:
			return compileSwitchStatement(ctx, it, pf.addSwitch())
		case tokKwBreak:
			return compileBreakStatement(it, pf)
		case tokKwContinue:
			return compileContinueStatement(it, pf)
		case tokKwReturn:
			return compileReturnStatement(ctx, it, pf)
		}
	}

	if isTypename(it.token()) {
		if inSwitch {
			return nil, syntaxError("Declarations in switch block are not allowed", it.token().Line, it.token().Col)
		}
		return compileVarStatement(ctx, it)
	}

	if it.token().is(tokOpenCurly) {
		return compileBlockStatement(ctx, it, pf)
	}

	return compileSimpleStatement(ctx, it)
}

func compileSimpleStatement(ctx *CompilerContext, it *tokenIterator) (statement, error) {
	expr, err := buildVoidExpression(ctx, it)
	if err != nil {
		return nil, err
	}
	if err := parseTokenValue(it, tokSemicolon); err != nil {
		return nil, err
	}
	return &simpleStatement{expr: expr}, nil
}

func compileVarStatement(ctx *CompilerContext, it *tokenIterator) (statement, error) {
	decls, err := compileVariableDeclaration(ctx, it)
	if err != nil {
		return nil, err
	}
	if err := parseTokenValue(it, tokSemicolon); err != nil {
		return nil, err
	}
	return &localDeclarationStatement{decls: decls}, nil
}

func compileForStatement(ctx *CompilerContext, it *tokenIterator, pf possibleFlow) (statement, error) {
	leave := ctx.scope()
	defer leave()

	if err := parseTokenValue(it, tokKwFor); err != nil {
		return nil, err
	}
	if err := parseTokenValue(it, tokOpenRound); err != nil {
		return nil, err
	}

	var decls []lvalueEval
	var expr1 voidEval
	var err error

	if isTypename(it.token()) {
		decls, err = compileVariableDeclaration(ctx, it)
	} else {
		expr1, err = buildVoidExpression(ctx, it)
	}
	if err != nil {
		return nil, err
	}

	if err := parseTokenValue(it, tokSemicolon); err != nil {
		return nil, err
	}

	expr2, err := buildNumberExpression(ctx, it)
	if err != nil {
		return nil, err
	}
	if err := parseTokenValue(it, tokSemicolon); err != nil {
		return nil, err
	}

	expr3, err := buildVoidExpression(ctx, it)
	if err != nil {
		return nil, err
	}
	if err := parseTokenValue(it, tokCloseRound); err != nil {
		return nil, err
	}

	block, err := compileBlockStatement(ctx, it, pf)
	if err != nil {
		return nil, err
	}

	return &forStatement{decls: decls, expr1: expr1, expr2: expr2, expr3: expr3, statement: block}, nil
}

func compileWhileStatement(ctx *CompilerContext, it *tokenIterator, pf possibleFlow) (statement, error) {
	if err := parseTokenValue(it, tokKwWhile); err != nil {
		return nil, err
	}

	if err := parseTokenValue(it, tokOpenRound); err != nil {
		return nil, err
	}
	expr, err := buildNumberExpression(ctx, it)
	if err != nil {
		return nil, err
	}
	if err := parseTokenValue(it, tokCloseRound); err != nil {
		return nil, err
	}

	block, err := compileBlockStatement(ctx, it, pf)
	if err != nil {
		return nil, err
	}

	return &whileStatement{expr: expr, statement: block}, nil
}

func compileDoStatement(ctx *CompilerContext, it *tokenIterator, pf possibleFlow) (statement, error) {
	if err := parseTokenValue(it, tokKwDo); err != nil {
		return nil, err
	}

	block, err := compileBlockStatement(ctx, it, pf)
	if err != nil {
		return nil, err
	}

	if err := parseTokenValue(it, tokKwWhile); err != nil {
		return nil, err
	}

	if err := parseTokenValue(it, tokOpenRound); err != nil {
		return nil, err
	}
	expr, err := buildNumberExpression(ctx, it)
	if err != nil {
		return nil, err
	}
	if err := parseTokenValue(it, tokCloseRound); err != nil {
		return nil, err
	}

	return &doStatement{expr: expr, statement: block}, nil
}

func compileIfStatement(ctx *CompilerContext, it *tokenIterator, pf possibleFlow) (statement, error) {
	leave := ctx.scope()
	defer leave()

	if err := parseTokenValue(it, tokKwIf); err != nil {
		return nil, err
	}
	if err := parseTokenValue(it, tokOpenRound); err != nil {
		return nil, err
	}

	var decls []lvalueEval
	var err error

	if isTypename(it.token()) {
		decls, err = compileVariableDeclaration(ctx, it)
		if err != nil {
			return nil, err
		}
		if err := parseTokenValue(it, tokSemicolon); err != nil {
			return nil, err
		}
	}

	var exprs []numberEval
	var stmts []statement

	expr, err := buildNumberExpression(ctx, it)
	if err != nil {
		return nil, err
	}
	exprs = append(exprs, expr)
	if err := parseTokenValue(it, tokCloseRound); err != nil {
		return nil, err
	}
	stmt, err := compileBlockStatement(ctx, it, pf)
	if err != nil {
		return nil, err
	}
	stmts = append(stmts, stmt)

	for it.token().is(tokKwElif) {
		if err := it.advance(); err != nil {
			return nil, err
		}
		if err := parseTokenValue(it, tokOpenRound); err != nil {
			return nil, err
		}
		expr, err := buildNumberExpression(ctx, it)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)
		if err := parseTokenValue(it, tokCloseRound); err != nil {
			return nil, err
		}
		stmt, err := compileBlockStatement(ctx, it, pf)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}

	if it.token().is(tokKwElse) {
		if err := it.advance(); err != nil {
			return nil, err
		}
		stmt, err := compileBlockStatement(ctx, it, pf)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	} else {
		stmts = append(stmts, &blockStatement{})
	}

	return &ifStatement{decls: decls, exprs: exprs, statements: stmts}, nil
}

func compileSwitchStatement(ctx *CompilerContext, it *tokenIterator, pf possibleFlow) (statement, error) {
	leave := ctx.scope()
	defer leave()

	if err := parseTokenValue(it, tokKwSwitch); err != nil {
		return nil, err
	}
	if err := parseTokenValue(it, tokOpenRound); err != nil {
		return nil, err
	}

	var decls []lvalueEval
	var err error

	if isTypename(it.token()) {
		decls, err = compileVariableDeclaration(ctx, it)
		if err != nil {
			return nil, err
		}
		if err := parseTokenValue(it, tokSemicolon); err != nil {
			return nil, err
		}
	}

	expr, err := buildNumberExpression(ctx, it)
	if err != nil {
		return nil, err
	}
	if err := parseTokenValue(it, tokCloseRound); err != nil {
		return nil, err
	}

	var stmts []statement
	cases := map[Number]int{}
	dflt := -1

	if err := parseTokenValue(it, tokOpenCurly); err != nil {
		return nil, err
	}

	for !it.token().is(tokCloseCurly) {
		switch {
		case it.token().is(tokKwCase):
			if err := it.advance(); err != nil {
				return nil, err
			}
			t := it.token()
			if !t.isNumber() {
				return nil, unexpectedSyntax(it)
			}
			if _, exists := cases[t.Number]; exists {
				return nil, syntaxError(fmt.Sprintf("Duplicate case %s", formatNumber(t.Number)), t.Line, t.Col)
			}
			cases[t.Number] = len(stmts)
			if err := it.advance(); err != nil {
				return nil, err
			}
			if err := parseTokenValue(it, tokColon); err != nil {
				return nil, err
			}
		case it.token().is(tokKwDefault):
			if err := it.advance(); err != nil {
				return nil, err
			}
			dflt = len(stmts)
			if err := parseTokenValue(it, tokColon); err != nil {
				return nil, err
			}
		default:
			stmt, err := compileStatement(ctx, it, pf, true)
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, stmt)
		}
	}

	if err := it.advance(); err != nil {
		return nil, err
	}

	if dflt < 0 {
		dflt = len(stmts)
	}

	return &switchStatement{decls: decls, expr: expr, statements: stmts, cases: cases, dflt: dflt}, nil
}

func compileBreakStatement(it *tokenIterator, pf possibleFlow) (statement, error) {
	if pf.breakLevel == 0 {
		return nil, unexpectedSyntax(it)
	}

	if err := parseTokenValue(it, tokKwBreak); err != nil {
		return nil, err
	}

	breakLevel := 1.0

	if t := it.token(); t.isNumber() {
		breakLevel = t.Number

		if breakLevel < 1 || breakLevel != float64(int(breakLevel)) || int(breakLevel) > pf.breakLevel {
			return nil, syntaxError("Invalid break value", t.Line, t.Col)
		}

		if err := it.advance(); err != nil {
			return nil, err
		}
	}

	if err := parseTokenValue(it, tokSemicolon); err != nil {
		return nil, err
	}

	return &breakStatement{breakLevel: int(breakLevel)}, nil
}

func compileContinueStatement(it *tokenIterator, pf possibleFlow) (statement, error) {
	if !pf.canContinue {
		return nil, unexpectedSyntax(it)
	}
	if err := parseTokenValue(it, tokKwContinue); err != nil {
		return nil, err
	}
	if err := parseTokenValue(it, tokSemicolon); err != nil {
		return nil, err
	}
	return &continueStatement{}, nil
}

func compileReturnStatement(ctx *CompilerContext, it *tokenIterator, pf possibleFlow) (statement, error) {
	if err := parseTokenValue(it, tokKwReturn); err != nil {
		return nil, err
	}

	if pf.returnTypeID == TypeVoid {
		if err := parseTokenValue(it, tokSemicolon); err != nil {
			return nil, err
		}
		return &returnVoidStatement{}, nil
	}

	expr, err := buildInitialisationExpression(ctx, it, pf.returnTypeID, true)
	if err != nil {
		return nil, err
	}
	if err := parseTokenValue(it, tokSemicolon); err != nil {
		return nil, err
	}
	return &returnStatement{expr: expr}, nil
}

func compileBlockContents(ctx *CompilerContext, it *tokenIterator, pf possibleFlow) ([]statement, error) {
	var ret []statement

	if it.token().is(tokOpenCurly) {
		if err := it.advance(); err != nil {
			return nil, err
		}
		for !it.token().is(tokCloseCurly) {
			stmt, err := compileStatement(ctx, it, pf, false)
			if err != nil {
				return nil, err
			}
			ret = append(ret, stmt)
		}
		if err := it.advance(); err != nil {
			return nil, err
		}
	} else {
		stmt, err := compileStatement(ctx, it, pf, false)
		if err != nil {
			return nil, err
		}
		ret = append(ret, stmt)
	}

	return ret, nil
}

func compileBlockStatement(ctx *CompilerContext, it *tokenIterator, pf possibleFlow) (statement, error) {
	leave := ctx.scope()
	defer leave()
	block, err := compileBlockContents(ctx, it, pf)
	if err != nil {
		return nil, err
	}
	return &blockStatement{statements: block}, nil
}

// compileFunctionBlock compiles a function body. A non-void function gets an
// implicit default-initialized return appended so every path produces a
// value.
func compileFunctionBlock(ctx *CompilerContext, it *tokenIterator, returnTypeID TypeHandle) (statement, error) {
	block, err := compileBlockContents(ctx, it, inFunctionFlow(returnTypeID))
	if err != nil {
		return nil, err
	}
	if returnTypeID != TypeVoid {
		init, err := buildDefaultInitialization(returnTypeID)
		if err != nil {
			return nil, err
		}
		block = append(block, &returnStatement{expr: init})
	}
	return &blockStatement{statements: block}, nil
}

// functionDeclaration is a parsed `function <ret> <name>(<params>)` header.
type functionDeclaration struct {
	name   string
	typeID TypeHandle
	params []string
}

// parseFunctionDeclaration parses a function header. A parameter name may
// be omitted; the slot still exists and gets a placeholder name.
func parseFunctionDeclaration(ctx *CompilerContext, it *tokenIterator) (functionDeclaration, error) {
	var ret functionDeclaration

	if err := parseTokenValue(it, tokKwFunction); err != nil {
		return ret, err
	}

	returnType, err := parseType(ctx, it)
	if err != nil {
		return ret, err
	}
	ret.name, err = parseDeclarationName(ctx, it)
	if err != nil {
		return ret, err
	}

	var params []Param

	leave := ctx.function()
	err = func() error {
		defer leave()

		if err := parseTokenValue(it, tokOpenRound); err != nil {
			return err
		}

		for !it.token().is(tokCloseRound) {
			if len(ret.params) > 0 {
				if err := parseTokenValue(it, tokComma); err != nil {
					return err
				}
			}

			paramType, err := parseType(ctx, it)
			if err != nil {
				return err
			}
			byRef := it.token().is(tokBitwiseAnd)
			if byRef {
				if err := it.advance(); err != nil {
					return err
				}
			}
			params = append(params, Param{Type: paramType, ByRef: byRef})

			if !it.token().is(tokCloseRound) && !it.token().is(tokComma) {
				name, err := parseDeclarationName(ctx, it)
				if err != nil {
					return err
				}
				ret.params = append(ret.params, name)
			} else {
				ret.params = append(ret.params, fmt.Sprintf("@%d", len(ret.params)))
			}
		}
		return it.advance()
	}()
	if err != nil {
		return ret, err
	}

	ret.typeID = ctx.functionType(returnType, params)

	return ret, nil
}

// incompleteFunction is a declared script function whose body is still a
// raw token stream, compiled once every signature is known.
type incompleteFunction struct {
	decl   functionDeclaration
	tokens []Token
}

func newIncompleteFunction(ctx *CompilerContext, it *tokenIterator) (*incompleteFunction, error) {
	decl, err := parseFunctionDeclaration(ctx, it)
	if err != nil {
		return nil, err
	}

	f := &incompleteFunction{decl: decl}

	f.tokens = append(f.tokens, it.token())

	if err := parseTokenValue(it, tokOpenCurly); err != nil {
		return nil, err
	}

	nesting := 1
	for nesting > 0 && it.more() {
		if it.token().is(tokOpenCurly) {
			nesting++
		}
		if it.token().is(tokCloseCurly) {
			nesting--
		}
		f.tokens = append(f.tokens, it.token())
		if err := it.advance(); err != nil {
			return nil, err
		}
	}

	if nesting > 0 {
		return nil, unexpectedSyntaxError("end of file", it.token().Line, it.token().Col)
	}

	ctx.createFunction(decl.name, decl.typeID)

	return f, nil
}

func (f *incompleteFunction) compile(ctx *CompilerContext) (Function, error) {
	leave := ctx.function()
	defer leave()

	ft := f.decl.typeID

	for i, name := range f.decl.params {
		ctx.createParam(name, ft.Params[i].Type)
	}

	it, err := newSliceIterator(f.tokens)
	if err != nil {
		return nil, err
	}

	stmt, err := compileFunctionBlock(ctx, it, ft.Return)
	if err != nil {
		return nil, err
	}

	return func(rctx *RuntimeContext) {
		stmt.execute(rctx)
	}, nil
}

// ExternalFunction pairs a host-native callable with the declaration string
// it is registered under.
type ExternalFunction struct {
	Declaration string
	Fn          Function
}

func declarationIterator(declaration string) (*tokenIterator, error) {
	return newStreamIterator(NewPushBackStream(stringSource(declaration)))
}

// compile drives the whole front end over the token stream and produces the
// runtime image.
func compile(
	it *tokenIterator,
	externalFunctions []ExternalFunction,
	publicDeclarations []string,
) (*RuntimeContext, error) {
	ctx := NewCompilerContext()

	for _, external := range externalFunctions {
		functionIt, err := declarationIterator(external.Declaration)
		if err != nil {
			return nil, err
		}
		decl, err := parseFunctionDeclaration(ctx, functionIt)
		if err != nil {
			return nil, err
		}
		ctx.createFunction(decl.name, decl.typeID)
	}

	publicFunctionTypes := map[string]TypeHandle{}

	for _, declaration := range publicDeclarations {
		functionIt, err := declarationIterator(declaration)
		if err != nil {
			return nil, err
		}
		decl, err := parseFunctionDeclaration(ctx, functionIt)
		if err != nil {
			return nil, err
		}
		publicFunctionTypes[decl.name] = decl.typeID
	}

	var initializers []lvalueEval
	var incompleteFunctions []*incompleteFunction
	publicFunctions := map[string]int{}

	for it.more() {
		if !it.token().isReserved() {
			return nil, unexpectedSyntax(it)
		}

		publicFunction := false

		switch it.token().Type {
		case tokKwPublic:
			publicFunction = true
			if err := it.advance(); err != nil {
				return nil, err
			}
			if !it.token().is(tokKwFunction) {
				return nil, unexpectedSyntax(it)
			}
			fallthrough
		case tokKwFunction:
			line := it.token().Line
			col := it.token().Col
			f, err := newIncompleteFunction(ctx, it)
			if err != nil {
				return nil, err
			}
			incompleteFunctions = append(incompleteFunctions, f)

			if publicFunction {
				if declared, ok := publicFunctionTypes[f.decl.name]; ok {
					if declared != f.decl.typeID {
						return nil, semanticError(
							"Public function doesn't match it's declaration "+typeToString(declared),
							line, col,
						)
					}
					delete(publicFunctionTypes, f.decl.name)
				}
				publicFunctions[f.decl.name] = len(externalFunctions) + len(incompleteFunctions) - 1
			}
		default:
			decls, err := compileVariableDeclaration(ctx, it)
			if err != nil {
				return nil, err
			}
			initializers = append(initializers, decls...)
			if err := parseTokenValue(it, tokSemicolon); err != nil {
				return nil, err
			}
		}
	}

	for name := range publicFunctionTypes {
		return nil, semanticError(
			fmt.Sprintf("Public function '%s' is not defined.", name),
			it.token().Line, it.token().Col,
		)
	}

	functions := make([]Function, 0, len(externalFunctions)+len(incompleteFunctions))
	for _, external := range externalFunctions {
		functions = append(functions, external.Fn)
	}
	for _, f := range incompleteFunctions {
		compiled, err := f.compile(ctx)
		if err != nil {
			return nil, err
		}
		functions = append(functions, compiled)
	}

	return newRuntimeContext(initializers, functions, publicFunctions), nil
}
