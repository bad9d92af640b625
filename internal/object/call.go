package object

import "fmt"

// DynamicCall implements spec.md §4.4's dispatch: deref source if it is a
// var, then invoke it through whichever capability it implements. The
// fast/slow positional-arity split and the >10 variadic-tail construction
// are the call evaluator's job (internal/evaluate), not this function's —
// by the time args reaches here it is already the final argument list the
// callee's Call/Invoke receives.
func DynamicCall(source Object, args []Object) (Object, error) {
	if v, ok := source.(*Var); ok {
		source = v.Deref()
	}
	switch v := source.(type) {
	case Callable:
		return v.Call(args)
	case Invocable:
		return v.Invoke(args)
	default:
		return nil, &UncallableError{Inspect: inspectOrNil(source)}
	}
}

func inspectOrNil(o Object) string {
	if o == nil {
		return "nil"
	}
	return o.Inspect()
}

// UncallableError is returned by DynamicCall when source has neither the
// Callable nor Invocable capability. internal/evaluate and internal/jit
// recognize this type the same way they recognize *ArityError.
type UncallableError struct {
	Inspect string
}

func (e *UncallableError) Error() string {
	return fmt.Sprintf("value is not callable: %s", e.Inspect)
}
