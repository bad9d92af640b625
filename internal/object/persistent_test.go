package object_test

import (
	"testing"

	"github.com/driftlang/drift/internal/object"
)

func TestArrayMapToHashMapCutoverBehaveTheSame(t *testing.T) {
	entries := []object.MapEntry{
		object.NewMapEntry(&object.Keyword{Name: "a"}, &object.Int{Value: 1}),
		object.NewMapEntry(&object.Keyword{Name: "b"}, &object.Int{Value: 2}),
	}
	am := object.NewArrayMap(entries, nil)
	hm := object.NewHashMap(entries, nil)

	for _, m := range []object.Getter{am, hm} {
		v, ok := m.Get(&object.Keyword{Name: "b"})
		if !ok {
			t.Fatalf("%T: expected key b to be found", m)
		}
		if i := v.(*object.Int); i.Value != 2 {
			t.Fatalf("%T: value = %d, want 2", m, i.Value)
		}
		if _, ok := m.Get(&object.Keyword{Name: "z"}); ok {
			t.Fatalf("%T: expected key z to be absent", m)
		}
	}
}

func TestHashSetMembership(t *testing.T) {
	set := object.NewHashSet([]object.Object{
		&object.Keyword{Name: "a"},
		&object.String{Value: "x"},
	}, nil)

	got, err := set.Invoke([]object.Object{&object.Keyword{Name: "a"}})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if _, ok := got.(*object.Keyword); !ok {
		t.Fatalf("expected the member back, got %#v", got)
	}

	got, err = set.Invoke([]object.Object{&object.Keyword{Name: "missing"}})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if _, ok := got.(*object.Nil); !ok {
		t.Fatalf("expected nil for a non-member, got %#v", got)
	}
}

func TestTransientHashSetFreezeIsIndependent(t *testing.T) {
	tset := object.NewTransientHashSet()
	tset.Insert(&object.Int{Value: 1})
	frozen := tset.Persistent()

	tset.Insert(&object.Int{Value: 2})

	got, err := frozen.Invoke([]object.Object{&object.Int{Value: 2}})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if _, ok := got.(*object.Nil); !ok {
		t.Fatal("mutating the transient after freezing should not affect the frozen set")
	}
}

func TestTransientVectorInvoke(t *testing.T) {
	tv := object.NewTransientVector()
	tv.Push(&object.String{Value: "x"})
	tv.Push(&object.String{Value: "y"})

	got, err := tv.Invoke([]object.Object{&object.Int{Value: 1}})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if s, ok := got.(*object.String); !ok || s.Value != "y" {
		t.Fatalf("got %#v, want String(y)", got)
	}

	got, err = tv.Invoke([]object.Object{&object.Int{Value: 99}})
	if err != nil {
		t.Fatalf("Invoke out of range: %v", err)
	}
	if _, ok := got.(*object.Nil); !ok {
		t.Fatalf("expected nil for out-of-range index, got %#v", got)
	}
}

func TestVectorCopiesInput(t *testing.T) {
	src := []object.Object{&object.Int{Value: 1}}
	v := object.NewVector(src, nil)
	src[0] = &object.Int{Value: 99}

	if i := v.Values[0].(*object.Int); i.Value != 1 {
		t.Fatalf("vector should have copied its input slice, got %d", i.Value)
	}
}
