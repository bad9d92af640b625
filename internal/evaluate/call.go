package evaluate

import (
	"github.com/driftlang/drift/internal/ast"
	"github.com/driftlang/drift/internal/evalerr"
	"github.com/driftlang/drift/internal/object"
	"github.com/driftlang/drift/internal/rt"
)

// evalCall implements spec.md §4.4: evaluate source_expr, deref a var
// source, then dispatch on source's runtime type. Callable sources get the
// fast/slow positional-arity split (0..cutoff fixed-arity, beyond that a
// trailing persistent-list tail); literal-callable collections (keywords,
// maps, sets, transients) are invoked through the Invocable capability,
// which enforces its own 1-or-2 / exactly-1 arity rule (spec.md §9's
// "model via a capability trait" note) rather than a type ladder here.
func (e *Evaluator) evalCall(ctx *rt.Context, host JITHost, n *ast.Call) (object.Object, error) {
	source, err := e.Eval(ctx, host, n.SourceExpr)
	if err != nil {
		return nil, err
	}
	if v, ok := source.(*object.Var); ok {
		source = v.Deref()
	}

	args := make([]object.Object, len(n.ArgExprs))
	for i, a := range n.ArgExprs {
		val, err := e.Eval(ctx, host, a)
		if err != nil {
			return nil, err
		}
		args[i] = val
	}

	switch source.(type) {
	case object.Callable:
		callArgs := buildCallArgs(args, e.Config.ArityFastPathCutoff)
		result, err := object.DynamicCall(source, callArgs)
		if err != nil {
			return nil, translateCallErr(err)
		}
		return result, nil

	case object.Invocable:
		result, err := object.DynamicCall(source, args)
		if err != nil {
			return nil, translateCallErr(err)
		}
		return result, nil

	default:
		return nil, evalerr.Uncallable(inspectOrNil(source))
	}
}

// buildCallArgs implements spec.md §4.4's "for N > 10 ... pass a
// persistent-list of the remaining arguments as the trailing parameter"
// rule and §8 property 4's arity fast/slow path equivalence: up to cutoff
// positional arguments pass straight through; beyond it, the first cutoff
// arguments stay positional and everything else is collected into one
// trailing persistent.List argument.
func buildCallArgs(evaluated []object.Object, cutoff int) []object.Object {
	if cutoff <= 0 || len(evaluated) <= cutoff {
		return evaluated
	}
	head := make([]object.Object, cutoff, cutoff+1)
	copy(head, evaluated[:cutoff])
	tail := object.NewList(append([]object.Object{}, evaluated[cutoff:]...))
	return append(head, tail)
}

func translateCallErr(err error) error {
	switch v := err.(type) {
	case *object.ArityError:
		return evalerr.NewInvalidArity(v.N, v.Target)
	case *object.UncallableError:
		return evalerr.Uncallable(v.Inspect)
	default:
		return err
	}
}

func inspectOrNil(o object.Object) string {
	if o == nil {
		return "nil"
	}
	return o.Inspect()
}
