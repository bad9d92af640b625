package object_test

import (
	"testing"

	"github.com/driftlang/drift/internal/object"
)

func TestDynamicCallDerefsVar(t *testing.T) {
	ns := object.NewNamespace("user")
	v := ns.InternVar("inc")
	v.BindRoot(&object.Builtin{Name: "inc", Fn: func(args []object.Object) (object.Object, error) {
		n := args[0].(*object.Int)
		return &object.Int{Value: n.Value + 1}, nil
	}})

	got, err := object.DynamicCall(v, []object.Object{&object.Int{Value: 41}})
	if err != nil {
		t.Fatalf("DynamicCall: %v", err)
	}
	if i := got.(*object.Int); i.Value != 42 {
		t.Fatalf("got %d, want 42", i.Value)
	}
}

func TestDynamicCallUncallable(t *testing.T) {
	_, err := object.DynamicCall(&object.Int{Value: 1}, nil)
	if err == nil {
		t.Fatal("expected an error calling a bare int")
	}
	if _, ok := err.(*object.UncallableError); !ok {
		t.Fatalf("got %T, want *object.UncallableError", err)
	}
}

func TestFnCallWithNoImplementation(t *testing.T) {
	fn := object.NewFn("f", "f$1", 0, false, nil, nil)
	_, err := fn.Call(nil)
	if err == nil {
		t.Fatal("expected an error calling an fn with no attached implementation")
	}
}

func TestFnCallDelegates(t *testing.T) {
	fn := object.NewFn("f", "f$1", 0, false, nil, func(args []object.Object) (object.Object, error) {
		return &object.String{Value: "called"}, nil
	})
	got, err := fn.Call(nil)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if s := got.(*object.String); s.Value != "called" {
		t.Fatalf("got %q, want called", s.Value)
	}
}

func TestVarUnboundDerefsToNil(t *testing.T) {
	v := object.NewVar("user", "x")
	if _, ok := v.Deref().(*object.Nil); !ok {
		t.Fatalf("expected an unbound var to deref to nil, got %#v", v.Deref())
	}
}

func TestVarDynamicBit(t *testing.T) {
	v := object.NewVar("user", "x")
	if v.IsDynamic() {
		t.Fatal("expected a fresh var to be non-dynamic")
	}
	v.SetDynamic(true)
	if !v.IsDynamic() {
		t.Fatal("expected IsDynamic to reflect SetDynamic(true)")
	}
}

func TestNamespaceInternVarIsIdempotent(t *testing.T) {
	ns := object.NewNamespace("user")
	a := ns.InternVar("x")
	b := ns.InternVar("x")
	if a != b {
		t.Fatal("InternVar should return the same *Var for the same name")
	}
	if _, ok := ns.FindVar("missing"); ok {
		t.Fatal("FindVar should not create a var")
	}
}
