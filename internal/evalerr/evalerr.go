// Package evalerr defines the error kinds spec.md §7 assigns to the
// evaluator core, mirroring the teacher's internal/diagnostics approach of a
// single tagged error type rather than ad-hoc errors.New calls scattered
// through the dispatcher.
package evalerr

import (
	"fmt"

	"github.com/driftlang/drift/internal/object"
)

// Kind tags why an evaluation failed.
type Kind string

const (
	// EvalUnsupported: a variant that only makes sense inside a compiled
	// frame reached the top-level dispatcher (local_reference, recur,
	// recursion_reference, named_recursion).
	EvalUnsupported Kind = "EvalUnsupported"
	// UncallableSource: a call's source expression evaluated to something
	// with no callable or literal-callable-collection capability.
	UncallableSource Kind = "UncallableSource"
	// InvalidArity: a literal-callable collection was invoked with a
	// disallowed argument count.
	InvalidArity Kind = "InvalidArity"
	// VarNotFound: var_ref/var_deref named an unknown qualified symbol.
	VarNotFound Kind = "VarNotFound"
	// UserThrow: a throw expression executed. NewUserThrow carries the
	// thrown value's Inspect() rendering in Message (Cause is nil); Thrown
	// carries the value itself.
	UserThrow Kind = "UserThrow"
	// JITFailure: code generation or module registration failed while
	// evaluating a wrapped function/let/try/native_raw form.
	JITFailure Kind = "JITFailure"
)

// Error is the evaluator's tagged error type, recognizable by Kind. A user
// throw surfaces from internal/evaluate as a *Thrown instead, and an error
// returned by a called builtin passes through unchanged.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is lets errors.Is match on Kind alone via a sentinel-shaped comparison:
// errors.Is(err, evalerr.New(evalerr.VarNotFound, "")) matches any
// *Error with the same Kind, ignoring Message/Cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New builds a bare *Error with no wrapped cause.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error around an underlying cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func Unsupported(what string) *Error {
	return New(EvalUnsupported, "%s is only valid inside a compiled function frame", what)
}

func Uncallable(inspect string) *Error {
	return New(UncallableSource, "value is not callable: %s", inspect)
}

// NewInvalidArity builds an InvalidArity error. Named distinctly from the
// Kind constant of the same concept to avoid shadowing it.
func NewInvalidArity(n int, target string) *Error {
	return New(InvalidArity, "invalid call with %d args to: %s", n, target)
}

// NewVarNotFound builds a VarNotFound error.
func NewVarNotFound(qualifiedName string) *Error {
	return New(VarNotFound, "unable to resolve var: %s", qualifiedName)
}

// NewUserThrow builds a UserThrow error carrying only a string rendering of
// the thrown payload; callers that still have the original object.Object
// should use Thrown instead, which preserves its identity.
func NewUserThrow(payload string) *Error {
	return New(UserThrow, "%s", payload)
}

// NewJITFailure builds a JITFailure error.
func NewJITFailure(cause error, context string) *Error {
	return Wrap(JITFailure, cause, "JIT compilation failed: %s", context)
}

// Thrown is a UserThrow error that preserves the original thrown
// object.Object rather than flattening it to a string, so a surrounding
// catch clause or host can recover the real payload (spec.md §7's
// UserThrow policy: "raised with the evaluated value as payload").
type Thrown struct {
	Payload object.Object
}

func (t *Thrown) Error() string { return t.Payload.Inspect() }

// Is reports Thrown as a UserThrow-kind error for errors.Is(err,
// evalerr.New(evalerr.UserThrow, "")) style matching.
func (t *Thrown) Is(target error) bool {
	e, ok := target.(*Error)
	return ok && e.Kind == UserThrow
}
