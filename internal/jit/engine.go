// Package jit is the JIT host (spec.md §6): it accepts a wrapped function
// expression, drives internal/codegen to lower it, loads the resulting
// chunk into its execution engine, and returns a closure invoking the
// zero-arity entry point. There is no separate module constructor step:
// side effects such as var definitions run inline in the entry chunk.
package jit

import (
	"sync"
	"time"

	"github.com/driftlang/drift/internal/ast"
	"github.com/driftlang/drift/internal/bytecode"
	"github.com/driftlang/drift/internal/codegen"
	"github.com/driftlang/drift/internal/evalerr"
	"github.com/driftlang/drift/internal/object"
	"github.com/driftlang/drift/internal/rt"
	"github.com/driftlang/drift/internal/trace"
)

// Cache is the subset of internal/modcache.Store the engine needs: a
// lookup/store for compiled chunks keyed by unique_name, so compiling a
// wrapped function whose unique_name is already stored skips codegen
// (spec.md §3 domain stack).
type Cache interface {
	Get(uniqueName string) (*bytecode.Chunk, bool)
	Put(uniqueName string, chunk *bytecode.Chunk) error
}

// Engine is the execution engine: a registry of loaded modules plus a
// bytecode interpreter. It implements internal/evaluate's JITHost
// interface.
type Engine struct {
	mu          sync.Mutex
	modules     map[string]*bytecode.Chunk
	cache       Cache
	trace       *trace.Logger
	arrayMapMax int
	natives     map[string]func() (object.Object, error)
}

// NewEngine builds an Engine. cache may be nil (no persisted module
// cache); log may be nil (tracing disabled).
func NewEngine(cache Cache, log *trace.Logger, arrayMapMax int) *Engine {
	if log == nil {
		log = trace.New(nil, false)
	}
	if arrayMapMax <= 0 {
		arrayMapMax = 8
	}
	return &Engine{
		modules:     make(map[string]*bytecode.Chunk),
		cache:       cache,
		trace:       log,
		arrayMapMax: arrayMapMax,
		natives:     make(map[string]func() (object.Object, error)),
	}
}

func (e *Engine) maxArrayMapSize() int { return e.arrayMapMax }

// RegisterNativeRaw installs a handler a native_raw expression's code
// string resolves to at execution time (spec.md §3's documented
// simplification: native_raw's embedded low-level code has no
// interpreter of its own here, so hosts register concrete handlers by
// exact code string).
func (e *Engine) RegisterNativeRaw(code string, fn func() (object.Object, error)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.natives[code] = fn
}

func (e *Engine) nativeRaw(code string) (func() (object.Object, error), bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn, ok := e.natives[code]
	return fn, ok
}

// Compile implements internal/evaluate's JITHost: lower fn to bytecode
// (via internal/codegen), register the module, and return a Go closure
// invoking its zero-arity entry point — the evaluator's stand-in for
// "resolve <struct_name>_0 and invoke it" (spec.md §4.5 step 6).
func (e *Engine) Compile(fn *ast.Function, moduleName string, ctx *rt.Context) (func([]object.Object) (object.Object, error), error) {
	if e.cache != nil {
		if chunk, ok := e.cache.Get(fn.UniqueName); ok {
			return e.entryFor(chunk, ctx), nil
		}
	}

	start := time.Now()
	gen := codegen.New(fn, moduleName, codegen.TargetREPL, ctx)
	chunk, err := gen.Gen()
	if err != nil {
		e.trace.Failed(moduleName, err)
		return nil, err
	}
	e.trace.Wrap(fn.UniqueName, moduleName)

	e.mu.Lock()
	e.modules[moduleName] = chunk
	e.mu.Unlock()

	if e.cache != nil {
		if err := e.cache.Put(fn.UniqueName, chunk); err != nil {
			e.trace.Failed(moduleName, err)
		}
	}
	e.trace.Compiled(moduleName, time.Since(start))

	return e.entryFor(chunk, ctx), nil
}

func (e *Engine) entryFor(chunk *bytecode.Chunk, ctx *rt.Context) func([]object.Object) (object.Object, error) {
	return func(args []object.Object) (object.Object, error) {
		result, err := run(e, ctx, chunk, args, nil)
		if err != nil {
			if thrown, ok := err.(*ThrownValue); ok {
				return nil, &evalerr.Thrown{Payload: thrown.Payload}
			}
			return nil, err
		}
		return result, nil
	}
}

// Module returns the chunk registered under moduleName, if any — used by
// tests asserting on disassembly output.
func (e *Engine) Module(moduleName string) (*bytecode.Chunk, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := e.modules[moduleName]
	return c, ok
}
