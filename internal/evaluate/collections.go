package evaluate

import (
	"github.com/driftlang/drift/internal/ast"
	"github.com/driftlang/drift/internal/object"
	"github.com/driftlang/drift/internal/rt"
)

// evalVector evaluates each element in order and builds a persistent
// vector, attaching any expression-level metadata (spec.md §4.3).
func (e *Evaluator) evalVector(ctx *rt.Context, host JITHost, n *ast.Vector) (object.Object, error) {
	vals := make([]object.Object, len(n.DataExprs))
	for i, d := range n.DataExprs {
		v, err := e.Eval(ctx, host, d)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return object.NewVector(vals, n.ExprBase.Meta), nil
}

// evalMap evaluates each key/value pair in order (keys before their
// corresponding value, spec.md §4.1's ordering rule), then picks an
// array-map or hash-map depending on e.Config.MaxArrayMapSize (spec.md
// §4.3; the threshold must match the runtime's own array-map cutoff. The
// in-process JIT engine keeps its own copy of that cutoff, set by the
// arrayMapMax argument of jit.NewEngine, and does not read this Config).
func (e *Evaluator) evalMap(ctx *rt.Context, host JITHost, n *ast.Map) (object.Object, error) {
	entries := make([]object.MapEntry, len(n.DataExprs))
	for i, p := range n.DataExprs {
		k, err := e.Eval(ctx, host, p.Key)
		if err != nil {
			return nil, err
		}
		v, err := e.Eval(ctx, host, p.Value)
		if err != nil {
			return nil, err
		}
		entries[i] = object.NewMapEntry(k, v)
	}
	if len(entries) < e.Config.MaxArrayMapSize {
		return object.NewArrayMap(entries, n.ExprBase.Meta), nil
	}
	return object.NewHashMap(entries, n.ExprBase.Meta), nil
}

// evalSet evaluates each element in order into a transient hash-set, then
// freezes it (spec.md §4.3).
func (e *Evaluator) evalSet(ctx *rt.Context, host JITHost, n *ast.Set) (object.Object, error) {
	transient := object.NewTransientHashSet()
	for _, d := range n.DataExprs {
		v, err := e.Eval(ctx, host, d)
		if err != nil {
			return nil, err
		}
		transient.Insert(v)
	}
	frozen := transient.Persistent()
	frozen.Meta = n.ExprBase.Meta
	return frozen, nil
}
