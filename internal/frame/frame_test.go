package frame_test

import (
	"testing"

	"github.com/driftlang/drift/internal/frame"
)

func TestRootHasNoParent(t *testing.T) {
	root := frame.NewRoot()
	if root.Parent != nil {
		t.Fatal("a fresh root frame must have no parent")
	}
	if root.Type != frame.Root {
		t.Fatalf("type = %v, want Root", root.Type)
	}
}

func TestRootWalksToTopOfChain(t *testing.T) {
	root := frame.NewRoot()
	letFrame := root.NewChild(frame.Let)
	fnFrame := letFrame.NewChild(frame.Fn)

	if fnFrame.Root() != root {
		t.Fatal("Root() from a nested frame should return the chain's root")
	}
	if root.Root() != root {
		t.Fatal("Root() on the root itself should return itself")
	}
}

func TestIsFn(t *testing.T) {
	root := frame.NewRoot()
	if root.IsFn() {
		t.Fatal("a root frame is not an fn frame by default")
	}
	root.Type = frame.Fn
	if !root.IsFn() {
		t.Fatal("expected IsFn() true after setting Type = Fn")
	}
}

func TestTypeString(t *testing.T) {
	cases := map[frame.Type]string{
		frame.Root: "root",
		frame.Let:  "let",
		frame.Fn:   "fn",
	}
	for typ, want := range cases {
		if got := typ.String(); got != want {
			t.Fatalf("%v.String() = %q, want %q", typ, got, want)
		}
	}
}

func TestFnContextCrossLink(t *testing.T) {
	root := frame.NewRoot()
	type stubFn struct{ Name string }
	stub := &stubFn{Name: "repl_fn"}
	fc := &frame.FnContext{Name: "repl_fn", UniqueName: "repl_fn-1-abcd", Fn: stub}
	root.FnCtx = fc

	got, ok := root.FnCtx.Fn.(*stubFn)
	if !ok || got != stub {
		t.Fatal("FnCtx.Fn should round-trip the opaque handle unchanged")
	}
}
