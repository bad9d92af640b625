// Package evaluate is the AST evaluator core: given a runtime context, a
// JIT host, and an expression node, it returns a runtime object, deciding
// per node whether to interpret directly or to wrap-and-JIT the node
// (mirrors bpiel/jank's evaluate.cpp dispatch, reshaped around this
// module's Go object/ast/rt packages).
package evaluate

import (
	"github.com/driftlang/drift/internal/ast"
	"github.com/driftlang/drift/internal/evalconfig"
	"github.com/driftlang/drift/internal/evalerr"
	"github.com/driftlang/drift/internal/object"
	"github.com/driftlang/drift/internal/rt"
	"github.com/driftlang/drift/internal/trace"
)

// JITHost is the external collaborator that lowers a wrapped function
// expression to bytecode and returns a Go closure over its zero-arity
// entry point (spec.md §6's code-generator + JIT-host contract,
// collapsed to the single operation this evaluator ever needs from it).
// *jit.Engine satisfies this interface without evaluate importing jit,
// keeping the core decoupled from a specific JIT implementation.
type JITHost interface {
	Compile(fn *ast.Function, moduleName string, ctx *rt.Context) (func([]object.Object) (object.Object, error), error)
}

// Evaluator holds the tuning knobs the dispatcher needs beyond ctx/jit:
// the array-map/hash-map cutover threshold and the positional arity
// fast-path cutoff (spec.md §4.3, §4.4), both exposed as config rather
// than hardcoded (SPEC_FULL.md's ambient config stack).
type Evaluator struct {
	Config *evalconfig.Config
	Trace  *trace.Logger
}

// New builds an Evaluator. cfg may be nil (Defaults() is used); log may be
// nil (tracing disabled).
func New(cfg *evalconfig.Config, log *trace.Logger) *Evaluator {
	if cfg == nil {
		cfg = evalconfig.Defaults()
	}
	if log == nil {
		log = trace.New(nil, false)
	}
	return &Evaluator{Config: cfg, Trace: log}
}

// Eval dispatches on expr's variant tag and returns a non-nil object,
// exactly spec.md §4.1's eval(ctx, jit, expr) -> object contract.
func (e *Evaluator) Eval(ctx *rt.Context, host JITHost, expr ast.Expression) (object.Object, error) {
	switch n := expr.(type) {
	case *ast.PrimitiveLiteral:
		return e.evalPrimitiveLiteral(ctx, n)

	case *ast.VarDeref:
		v, err := ctx.FindVar(n.QualifiedName)
		if err != nil {
			return nil, evalerr.NewVarNotFound(n.QualifiedName)
		}
		return v.Deref(), nil

	case *ast.VarRef:
		v, err := ctx.FindVar(n.QualifiedName)
		if err != nil {
			return nil, evalerr.NewVarNotFound(n.QualifiedName)
		}
		return v, nil

	case *ast.Def:
		return e.evalDef(ctx, host, n)

	case *ast.Call:
		return e.evalCall(ctx, host, n)

	case *ast.Vector:
		return e.evalVector(ctx, host, n)

	case *ast.Map:
		return e.evalMap(ctx, host, n)

	case *ast.Set:
		return e.evalSet(ctx, host, n)

	case *ast.Do:
		return e.evalDo(ctx, host, n)

	case *ast.If:
		return e.evalIf(ctx, host, n)

	case *ast.Throw:
		val, err := e.Eval(ctx, host, n.Value)
		if err != nil {
			return nil, err
		}
		return nil, &evalerr.Thrown{Payload: val}

	case *ast.Function, *ast.Let, *ast.Try, *ast.NativeRaw:
		return e.evalViaJIT(ctx, host, expr)

	case *ast.LocalReference:
		return nil, evalerr.Unsupported("local_reference " + n.Name)
	case *ast.Recur:
		return nil, evalerr.Unsupported("recur")
	case *ast.RecursionReference:
		return nil, evalerr.Unsupported("recursion_reference")
	case *ast.NamedRecursion:
		return nil, evalerr.Unsupported("named_recursion " + n.Name)

	default:
		return nil, evalerr.Unsupported("unknown expression variant")
	}
}

// evalPrimitiveLiteral returns the carried object unchanged, except keyword
// literals, which are re-interned through ctx so pointer identity matches
// the canonical interned keyword (spec.md §4.2, §8 property 1).
func (e *Evaluator) evalPrimitiveLiteral(ctx *rt.Context, n *ast.PrimitiveLiteral) (object.Object, error) {
	if kw, ok := n.Data.(*object.Keyword); ok {
		return ctx.InternKeyword(kw.Namespace, kw.Name), nil
	}
	return n.Data, nil
}

func (e *Evaluator) evalDef(ctx *rt.Context, host JITHost, n *ast.Def) (object.Object, error) {
	v, err := ctx.InternVar(n.Name)
	if err != nil {
		return nil, err
	}
	applyDefMeta(v, n.Name)
	if n.Value != nil {
		val, err := e.Eval(ctx, host, n.Value)
		if err != nil {
			return nil, err
		}
		v.BindRoot(val)
	}
	return v, nil
}

// applyDefMeta copies the name symbol's metadata onto the var and sets the
// var's dynamic bit from a :dynamic key in that metadata (spec.md §4.2's
// supplemented def-metadata semantics, SPEC_FULL.md §4).
func applyDefMeta(v *object.Var, sym *object.Symbol) {
	v.Meta = sym.Meta
	if sym.Meta == nil {
		v.SetDynamic(false)
		return
	}
	getter, ok := sym.Meta.(object.Getter)
	if !ok {
		v.SetDynamic(false)
		return
	}
	dynFlag, found := getter.Get(&object.Keyword{Name: "dynamic"})
	v.SetDynamic(found && object.Truthy(dynFlag))
}

func (e *Evaluator) evalDo(ctx *rt.Context, host JITHost, n *ast.Do) (object.Object, error) {
	if len(n.Values) == 0 {
		return object.NilValue(), nil
	}
	var result object.Object = object.NilValue()
	for _, v := range n.Values {
		val, err := e.Eval(ctx, host, v)
		if err != nil {
			return nil, err
		}
		result = val
	}
	return result, nil
}

func (e *Evaluator) evalIf(ctx *rt.Context, host JITHost, n *ast.If) (object.Object, error) {
	cond, err := e.Eval(ctx, host, n.Condition)
	if err != nil {
		return nil, err
	}
	if object.Truthy(cond) {
		return e.Eval(ctx, host, n.Then)
	}
	if n.Else == nil {
		return object.NilValue(), nil
	}
	return e.Eval(ctx, host, n.Else)
}
