// context.go: compile-time symbol tables and the scope chain.
//
// Identifiers resolve to {type, index, scope}. Globals index from 0 in
// declaration order; functions likewise (externals first); locals use
// positive indices from 1 with parent and child scopes sharing one counter;
// parameters count down from -1 so a call frame lays out as
// [params...][retval][locals...].
package cobalt

// IdentifierScope says where an identifier's storage lives.
type IdentifierScope int

const (
	ScopeGlobalVariable IdentifierScope = iota
	ScopeLocalVariable
	ScopeFunction
)

type identifierInfo struct {
	typeID TypeHandle
	index  int
	scope  IdentifierScope
}

type identifierLookup struct {
	identifiers map[string]*identifierInfo
}

func newIdentifierLookup() identifierLookup {
	return identifierLookup{identifiers: map[string]*identifierInfo{}}
}

func (l *identifierLookup) insert(name string, typeID TypeHandle, index int, scope IdentifierScope) *identifierInfo {
	info := &identifierInfo{typeID: typeID, index: index, scope: scope}
	l.identifiers[name] = info
	return info
}

func (l *identifierLookup) find(name string) *identifierInfo {
	return l.identifiers[name]
}

func (l *identifierLookup) canDeclare(name string) bool {
	return l.identifiers[name] == nil
}

func (l *identifierLookup) size() int { return len(l.identifiers) }

type globalVariableLookup struct {
	identifierLookup
}

func (l *globalVariableLookup) createIdentifier(name string, typeID TypeHandle) *identifierInfo {
	return l.insert(name, typeID, l.size(), ScopeGlobalVariable)
}

type functionLookup struct {
	identifierLookup
}

func (l *functionLookup) createIdentifier(name string, typeID TypeHandle) *identifierInfo {
	return l.insert(name, typeID, l.size(), ScopeFunction)
}

// localVariableLookup is one lexical scope. A child inherits the parent's
// next local index so sibling scopes reuse the same stack slots. The
// function's parameter table is a local table without a parent that also
// hands out negative parameter indices.
type localVariableLookup struct {
	identifierLookup
	parent         *localVariableLookup
	nextIndex      int
	nextParamIndex int
}

func newLocalVariableLookup(parent *localVariableLookup) *localVariableLookup {
	next := 1
	if parent != nil {
		next = parent.nextIndex
	}
	return &localVariableLookup{
		identifierLookup: newIdentifierLookup(),
		parent:           parent,
		nextIndex:        next,
		nextParamIndex:   -1,
	}
}

func (l *localVariableLookup) find(name string) *identifierInfo {
	if info := l.identifierLookup.find(name); info != nil {
		return info
	}
	if l.parent != nil {
		return l.parent.find(name)
	}
	return nil
}

func (l *localVariableLookup) createIdentifier(name string, typeID TypeHandle) *identifierInfo {
	info := l.insert(name, typeID, l.nextIndex, ScopeLocalVariable)
	l.nextIndex++
	return info
}

func (l *localVariableLookup) createParam(name string, typeID TypeHandle) *identifierInfo {
	info := l.insert(name, typeID, l.nextParamIndex, ScopeLocalVariable)
	l.nextParamIndex--
	return info
}

// CompilerContext holds the symbol tables and type registry threaded
// through compilation.
type CompilerContext struct {
	functions functionLookup
	globals   globalVariableLookup
	params    *localVariableLookup
	locals    *localVariableLookup
	types     *TypeRegistry
}

// NewCompilerContext creates an empty compilation context.
func NewCompilerContext() *CompilerContext {
	return &CompilerContext{
		functions: functionLookup{newIdentifierLookup()},
		globals:   globalVariableLookup{newIdentifierLookup()},
		types:     NewTypeRegistry(),
	}
}

func (c *CompilerContext) arrayType(inner TypeHandle) TypeHandle {
	return c.types.ArrayType(inner)
}

func (c *CompilerContext) functionType(ret TypeHandle, params []Param) TypeHandle {
	return c.types.FunctionType(ret, params)
}

func (c *CompilerContext) tupleType(elems []TypeHandle) TypeHandle {
	return c.types.TupleType(elems)
}

func (c *CompilerContext) initListType(elems []TypeHandle) TypeHandle {
	return c.types.InitListType(elems)
}

func (c *CompilerContext) find(name string) *identifierInfo {
	if c.locals != nil {
		if info := c.locals.find(name); info != nil {
			return info
		}
	}
	if info := c.functions.find(name); info != nil {
		return info
	}
	return c.globals.find(name)
}

func (c *CompilerContext) createIdentifier(name string, typeID TypeHandle) *identifierInfo {
	if c.locals != nil {
		return c.locals.createIdentifier(name, typeID)
	}
	return c.globals.createIdentifier(name, typeID)
}

func (c *CompilerContext) createParam(name string, typeID TypeHandle) *identifierInfo {
	return c.params.createParam(name, typeID)
}

func (c *CompilerContext) createFunction(name string, typeID TypeHandle) *identifierInfo {
	return c.functions.createIdentifier(name, typeID)
}

func (c *CompilerContext) canDeclare(name string) bool {
	if c.locals != nil {
		return c.locals.canDeclare(name)
	}
	return c.globals.canDeclare(name) && c.functions.canDeclare(name)
}

// scope enters a nested local scope and returns the leave function;
// call it with defer.
func (c *CompilerContext) scope() func() {
	c.locals = newLocalVariableLookup(c.locals)
	return c.leaveScope
}

// function enters a function's parameter scope (no parent) and returns the
// leave function.
func (c *CompilerContext) function() func() {
	params := newLocalVariableLookup(nil)
	c.params = params
	c.locals = params
	return c.leaveScope
}

func (c *CompilerContext) leaveScope() {
	if c.params == c.locals {
		c.params = nil
	}
	c.locals = c.locals.parent
}
