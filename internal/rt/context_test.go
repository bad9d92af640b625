package rt_test

import (
	"strings"
	"testing"

	"github.com/driftlang/drift/internal/object"
	"github.com/driftlang/drift/internal/rt"
)

func TestNewContextStartsInUserNamespace(t *testing.T) {
	ctx := rt.NewContext()
	if got := ctx.CurrentNamespace().Name; got != "user" {
		t.Fatalf("current namespace = %q, want user", got)
	}
}

func TestInternVarQualifiedVsUnqualified(t *testing.T) {
	ctx := rt.NewContext()

	v, err := ctx.InternVar(&object.Symbol{Name: "x"})
	if err != nil {
		t.Fatalf("InternVar: %v", err)
	}
	if v.Namespace != "user" {
		t.Fatalf("unqualified intern landed in namespace %q, want user", v.Namespace)
	}

	found, err := ctx.FindVar("x")
	if err != nil {
		t.Fatalf("FindVar: %v", err)
	}
	if found != v {
		t.Fatal("FindVar(\"x\") should return the same var InternVar created")
	}

	_, err = ctx.InternVar(&object.Symbol{Namespace: "other", Name: "y"})
	if err != nil {
		t.Fatalf("InternVar qualified: %v", err)
	}
	found, err = ctx.FindVar("other/y")
	if err != nil {
		t.Fatalf("FindVar qualified: %v", err)
	}
	if found.Namespace != "other" || found.Name != "y" {
		t.Fatalf("found = %+v, want other/y", found)
	}
}

func TestFindVarUnresolvedErrors(t *testing.T) {
	ctx := rt.NewContext()
	if _, err := ctx.FindVar("nope"); err == nil {
		t.Fatal("expected an error resolving an unbound var")
	}
	if _, err := ctx.FindVar("missing-ns/x"); err == nil {
		t.Fatal("expected an error resolving a var in a namespace that doesn't exist")
	}
}

func TestInternKeywordIdentity(t *testing.T) {
	ctx := rt.NewContext()
	a := ctx.InternKeyword("", "a")
	b := ctx.InternKeyword("", "a")
	if a != b {
		t.Fatal("InternKeyword should return the same pointer for the same (ns, name)")
	}
	c := ctx.InternKeyword("ns", "a")
	if a == c {
		t.Fatal("keywords with different namespaces must not be identical")
	}
}

func TestUniqueStringIsCollisionFree(t *testing.T) {
	ctx := rt.NewContext()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		s := ctx.UniqueString("repl_fn")
		if seen[s] {
			t.Fatalf("duplicate unique string %q", s)
		}
		seen[s] = true
		if !strings.HasPrefix(s, "repl_fn-") {
			t.Fatalf("unique string %q missing prefix", s)
		}
	}
}

func TestSetCurrentNamespaceCreatesIfMissing(t *testing.T) {
	ctx := rt.NewContext()
	ctx.SetCurrentNamespace("other")
	if got := ctx.CurrentNamespace().Name; got != "other" {
		t.Fatalf("current namespace = %q, want other", got)
	}
}
