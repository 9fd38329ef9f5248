// module.go: the host-facing surface.
//
// A host registers native functions and declares the public script
// functions it will call, then loads a source file. Loading compiles the
// source against those declarations and binds the public callers. Natives
// and callers exchange boxed Variables; runtime faults surface as
// *RuntimeError through the callers' error returns.
package cobalt

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// PublicFunctionCaller invokes a public script function with boxed
// positional arguments and returns the boxed result (nil for void).
type PublicFunctionCaller func(args ...*Variable) (*Variable, error)

type publicBinding struct {
	name string
	fn   Function
}

// Module collects host registrations and, once loaded, owns the compiled
// runtime image.
type Module struct {
	externalFunctions  []ExternalFunction
	publicDeclarations []string
	publicBindings     map[string]*publicBinding
	ctx                *RuntimeContext
}

// NewModule creates an empty module.
func NewModule() *Module {
	return &Module{publicBindings: map[string]*publicBinding{}}
}

// AddExternalFunction registers a native under a declaration of the form
// `function <ret> <name>(<t1>[,<t2>...])`. The callable reads its arguments
// from ctx.Local(-1), ctx.Local(-2), ... and stores its result with
// ctx.SetRetval.
func (m *Module) AddExternalFunction(declaration string, fn Function) {
	m.externalFunctions = append(m.externalFunctions, ExternalFunction{Declaration: declaration, Fn: fn})
}

// PublicCaller declares a public script function the host will invoke and
// returns its caller. The caller is bound when Load succeeds; invoking it
// before that fails.
func (m *Module) PublicCaller(name string, declaration string) PublicFunctionCaller {
	m.publicDeclarations = append(m.publicDeclarations, declaration)
	binding := &publicBinding{name: name}
	m.publicBindings[name] = binding

	return func(args ...*Variable) (ret *Variable, err error) {
		if binding.fn == nil {
			return nil, &RuntimeError{Message: fmt.Sprintf("Public function '%s' is not loaded", name)}
		}
		defer func() {
			if r := recover(); r != nil {
				if rtErr, ok := r.(*RuntimeError); ok {
					err = rtErr
					return
				}
				panic(r)
			}
		}()
		ret = m.ctx.Call(binding.fn, args)
		return ret, nil
	}
}

// Load reads and compiles the file at path, then binds the public callers.
// It returns *FileNotFoundError, *Error (compile) or *RuntimeError (global
// initialization) on failure; no partial image is kept.
func (m *Module) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return &FileNotFoundError{Message: fmt.Sprintf("'%s' not found", path)}
	}
	defer f.Close()

	return m.loadSource(readerSource(f))
}

// LoadSource compiles in-memory source text.
func (m *Module) LoadSource(src string) error {
	return m.loadSource(stringSource(src))
}

func (m *Module) loadSource(get GetCharacter) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if rtErr, ok := r.(*RuntimeError); ok {
				err = rtErr
				return
			}
			panic(r)
		}
	}()

	stream := NewPushBackStream(get)
	it, err := newStreamIterator(stream)
	if err != nil {
		return err
	}

	ctx, err := compile(it, m.externalFunctions, m.publicDeclarations)
	if err != nil {
		return err
	}

	m.ctx = ctx
	for name, binding := range m.publicBindings {
		if fn, ok := ctx.GetPublicFunction(name); ok {
			binding.fn = fn
		}
	}
	return nil
}

// TryLoad loads path, formatting any failure to errOutput (which may be
// nil). Compile errors are rendered with the caret formatter against a
// fresh read of the file.
func (m *Module) TryLoad(path string, errOutput io.Writer) bool {
	err := m.Load(path)
	if err == nil {
		return true
	}
	if errOutput == nil {
		return false
	}
	if compileErr, ok := err.(*Error); ok {
		if f, openErr := os.Open(path); openErr == nil {
			FormatError(compileErr, readerSource(f), errOutput)
			f.Close()
			return false
		}
	}
	fmt.Fprintln(errOutput, err.Error())
	return false
}

// ResetGlobals reruns the global initializers, restoring the module's
// observable globals to their just-loaded state.
func (m *Module) ResetGlobals() {
	if m.ctx != nil {
		m.ctx.Initialize()
	}
}

// RuntimeContext exposes the loaded image, or nil before a successful Load.
func (m *Module) RuntimeContext() *RuntimeContext {
	return m.ctx
}

func readerSource(r io.Reader) GetCharacter {
	br := bufio.NewReader(r)
	return func() int {
		b, err := br.ReadByte()
		if err != nil {
			return -1
		}
		return int(b)
	}
}
