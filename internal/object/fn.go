package object

import "fmt"

// Fn is a first-class function value. The evaluator core never compiles
// function bodies itself (that's internal/jit's job as the JIT host); Fn
// only carries identity plus an injected invocation thunk so that object
// stays free of a dependency on the compiler/engine packages.
type Fn struct {
	Name       string
	UniqueName string
	Arity      int
	Variadic   bool
	// Def is an opaque handle to the function's compiled definition
	// (internal/jit stores the *codegen.Proto the closure was built from);
	// it is typed `any` so object imports neither internal/codegen nor
	// internal/ast, both of which import internal/object. Non-owning by
	// design, mirroring the frame/fn_ctx back-reference spec.md §9 calls out.
	Def any
	// call is supplied by whichever component materializes this closure
	// (internal/jit, for compiled fn expressions).
	call func(args []Object) (Object, error)
}

func NewFn(name, uniqueName string, arity int, variadic bool, def any, call func(args []Object) (Object, error)) *Fn {
	return &Fn{Name: name, UniqueName: uniqueName, Arity: arity, Variadic: variadic, Def: def, call: call}
}

func (*Fn) Type() Type { return FnType }

func (f *Fn) Inspect() string {
	if f.Name != "" {
		return fmt.Sprintf("#<fn %s>", f.Name)
	}
	return fmt.Sprintf("#<fn %s>", f.UniqueName)
}

func (f *Fn) Call(args []Object) (Object, error) {
	if f.call == nil {
		return nil, fmt.Errorf("fn %s has no attached implementation", f.Inspect())
	}
	return f.call(args)
}

// Builtin is a function implemented directly in Go.
type Builtin struct {
	Name string
	Fn   func(args []Object) (Object, error)
}

func (*Builtin) Type() Type        { return BuiltinType }
func (b *Builtin) Inspect() string { return fmt.Sprintf("#<builtin %s>", b.Name) }

func (b *Builtin) Call(args []Object) (Object, error) {
	return b.Fn(args)
}
