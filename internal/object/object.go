// Package object defines the runtime value universe the evaluator produces
// and consumes. In a full build of the dialect this is an external,
// independently-versioned library; this package is the minimal stand-in the
// evaluator core needs in order to compile and be tested on its own.
package object

import "fmt"

// Type discriminates the runtime object universe.
type Type string

const (
	NilType             Type = "nil"
	BoolType             Type = "bool"
	IntType              Type = "int"
	RealType             Type = "real"
	StringType           Type = "string"
	SymbolType           Type = "symbol"
	KeywordType          Type = "keyword"
	VarType              Type = "var"
	FnType               Type = "fn"
	BuiltinType          Type = "builtin"
	ListType             Type = "list"
	VectorType           Type = "vector"
	ArrayMapType         Type = "array-map"
	HashMapType          Type = "hash-map"
	HashSetType          Type = "hash-set"
	TransientVectorType  Type = "transient-vector"
	TransientHashMapType Type = "transient-hash-map"
	TransientHashSetType Type = "transient-hash-set"
	NamespaceType        Type = "namespace"
)

// Object is the base capability every runtime value satisfies.
type Object interface {
	Type() Type
	Inspect() string
}

// Truthy implements the dialect's single falsiness rule: everything is
// truthy except nil and the boolean false.
func Truthy(o Object) bool {
	switch v := o.(type) {
	case nil:
		return false
	case *Nil:
		return false
	case *Bool:
		return v.Value
	default:
		return true
	}
}

// Nil is the singleton nil value.
type Nil struct{}

func (*Nil) Type() Type      { return NilType }
func (*Nil) Inspect() string { return "nil" }

var theNil = &Nil{}

// NilValue returns the canonical nil object.
func NilValue() *Nil { return theNil }

// Bool wraps a boolean.
type Bool struct{ Value bool }

func (*Bool) Type() Type          { return BoolType }
func (b *Bool) Inspect() string   { return fmt.Sprintf("%t", b.Value) }

var (
	trueVal  = &Bool{Value: true}
	falseVal = &Bool{Value: false}
)

// Boolean returns the canonical interned boolean object for v.
func Boolean(v bool) *Bool {
	if v {
		return trueVal
	}
	return falseVal
}

// Int wraps a 64-bit integer.
type Int struct{ Value int64 }

func (*Int) Type() Type        { return IntType }
func (i *Int) Inspect() string { return fmt.Sprintf("%d", i.Value) }

// Real wraps a double-precision float.
type Real struct{ Value float64 }

func (*Real) Type() Type        { return RealType }
func (r *Real) Inspect() string { return fmt.Sprintf("%g", r.Value) }

// String wraps a string value.
type String struct{ Value string }

func (*String) Type() Type        { return StringType }
func (s *String) Inspect() string { return fmt.Sprintf("%q", s.Value) }

// Symbol is a (namespace, name) pair, not itself interned; equality is
// structural.
type Symbol struct {
	Namespace string
	Name      string
	Meta      Object
}

func (*Symbol) Type() Type { return SymbolType }
func (s *Symbol) Inspect() string {
	if s.Namespace == "" {
		return s.Name
	}
	return s.Namespace + "/" + s.Name
}

// QualifiedName renders the fully-qualified name used for var lookup.
func (s *Symbol) QualifiedName() string {
	if s.Namespace == "" {
		return s.Name
	}
	return s.Namespace + "/" + s.Name
}

// Keyword is an interned symbolic constant. Two keywords with the same
// namespace and name must be pointer-identical, which is the job of the
// context that interns them (see internal/rt); this type only carries the
// payload.
type Keyword struct {
	Namespace string
	Name      string
}

func (*Keyword) Type() Type { return KeywordType }
func (k *Keyword) Inspect() string {
	if k.Namespace == "" {
		return ":" + k.Name
	}
	return ":" + k.Namespace + "/" + k.Name
}

// Invoke makes a keyword callable as a 1- or 2-arg map lookup operator:
// (:k m) => (get m :k), (:k m default) => (get m :k default).
func (k *Keyword) Invoke(args []Object) (Object, error) {
	if len(args) != 1 && len(args) != 2 {
		return nil, InvalidArityErr(len(args), k.Inspect())
	}
	getter, ok := args[0].(Getter)
	if !ok {
		if len(args) == 2 {
			return args[1], nil
		}
		return theNil, nil
	}
	v, found := getter.Get(k)
	if found {
		return v, nil
	}
	if len(args) == 2 {
		return args[1], nil
	}
	return theNil, nil
}

// Getter is implemented by collections that support keyword/map-style
// lookup by key.
type Getter interface {
	Get(key Object) (Object, bool)
}

// Callable is implemented by anything directly invocable by the call
// evaluator's fast/slow argument-count paths: functions, builtins, and any
// other first-class callable value.
type Callable interface {
	Object
	Call(args []Object) (Object, error)
}

// Invocable is implemented by literal collections that are callable with a
// restricted arity (keywords, maps, some transient/hash-set variants),
// per spec.md §4.4. Each implementer validates its own arity instead of the
// call evaluator doing it via a type ladder.
type Invocable interface {
	Object
	Invoke(args []Object) (Object, error)
}

// ArityError is returned by Invocable.Invoke when called with a disallowed
// number of arguments. internal/evaluate and internal/jit recognize this type
// and wrap it as a Kind-tagged evalerr InvalidArity error; object stays free
// of an internal/evalerr import so the two packages don't cycle.
type ArityError struct {
	N      int
	Target string
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("invalid call with %d args to: %s", e.N, e.Target)
}

// InvalidArityErr constructs an *ArityError.
func InvalidArityErr(n int, target string) error {
	return &ArityError{N: n, Target: target}
}
