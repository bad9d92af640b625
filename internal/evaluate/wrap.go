package evaluate

import (
	"github.com/driftlang/drift/internal/ast"
	"github.com/driftlang/drift/internal/codegen"
	"github.com/driftlang/drift/internal/evalerr"
	"github.com/driftlang/drift/internal/frame"
	"github.com/driftlang/drift/internal/object"
	"github.com/driftlang/drift/internal/rt"
)

// evalViaJIT implements spec.md §4.5: wrap expr into a synthetic zero-arity
// function, hand it to the code generator/JIT host, then invoke the
// compiled entry point. It's the only path for function, let, try, and
// native_raw nodes, which introduce a function frame, local bindings,
// exception scope, or embedded low-level code the interpreter can't model
// directly.
func (e *Evaluator) evalViaJIT(ctx *rt.Context, host JITHost, expr ast.Expression) (object.Object, error) {
	fn := e.WrapExpression(ctx, expr)
	moduleName := nestModule(ctx.CurrentNamespace().Name, fn.UniqueName)

	e.Trace.Wrap(fn.UniqueName, moduleName)

	entry, err := host.Compile(fn, moduleName, ctx)
	if err != nil {
		return nil, evalerr.NewJITFailure(err, moduleName)
	}

	result, err := entry(nil)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// nestModule implements spec.md §6's module namer: nest_module(ns_name,
// mangled_unique_name) -> module_id.
func nestModule(nsName, uniqueName string) string {
	return nsName + "." + codegen.Munge(uniqueName)
}

// WrapExpression implements spec.md §4.6: synthesizes a zero-arity
// "repl_fn" function expression whose sole arity body is expr at tail
// position.
func (e *Evaluator) WrapExpression(ctx *rt.Context, expr ast.Expression) *ast.Function {
	expr.PropagatePosition(ast.Tail)
	return e.buildWrapper(ctx, expr.Base().Frame, []ast.Expression{expr})
}

// WrapExpressions implements spec.md §4.6's wrap_expressions, including the
// §9 Open Question: the source builds a wrapper from exprs[0] (which pushes
// it as body[0]), demotes that to statement, then iterates every element of
// exprs and appends it — including exprs[0] again, double-evaluating the
// first form. This implementation treats that as a bug rather than
// intended behavior (see DESIGN.md) and does not re-append index 0.
//
// rootFrame is the analyzer's root frame, used only when exprs is empty
// (the wrapper then wraps a synthetic nil literal at that frame).
func (e *Evaluator) WrapExpressions(ctx *rt.Context, exprs []ast.Expression, rootFrame *frame.Frame) *ast.Function {
	if len(exprs) == 0 {
		nilLit := &ast.PrimitiveLiteral{
			ExprBase: ast.Base{Frame: rootFrame, Pos: ast.Tail},
			Data:     object.NilValue(),
		}
		return e.buildWrapper(ctx, rootFrame, []ast.Expression{nilLit})
	}

	body := make([]ast.Expression, len(exprs))
	copy(body, exprs)

	last := len(body) - 1
	for i, v := range body {
		if i == last {
			v.PropagatePosition(ast.Tail)
		} else {
			v.PropagatePosition(ast.Statement)
		}
	}

	return e.buildWrapper(ctx, exprs[0].Base().Frame, body)
}

// buildWrapper performs spec.md §4.5 steps 1 and 4: builds the synthetic
// function expression, walks exprFrame to its root and marks that root's
// type fn, and cross-links the function context in both directions.
func (e *Evaluator) buildWrapper(ctx *rt.Context, exprFrame *frame.Frame, body []ast.Expression) *ast.Function {
	const name = "repl_fn"
	uniqueName := ctx.UniqueString(name)

	rootFrame := exprFrame.Root()
	rootFrame.Type = frame.Fn

	fn := &ast.Function{
		ExprBase:   ast.Base{Frame: exprFrame, Pos: ast.Value},
		Name:       name,
		UniqueName: uniqueName,
		Meta:       object.NewArrayMap(nil, nil),
	}

	fnCtx := &frame.FnContext{Name: name, UniqueName: uniqueName, Fn: fn}
	rootFrame.FnCtx = fnCtx

	fn.Arities = []ast.Arity{{
		Frame:    rootFrame,
		Body:     body,
		FnCtx:    fnCtx,
	}}
	return fn
}
