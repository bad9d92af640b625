package object

import (
	"strconv"
	"strings"
)

// The collections below are intentionally simple copy-on-write wrappers,
// not a structurally-shared tree like a production persistent-vector/HAMT
// library (that library is external per spec.md §3 and out of this core's
// scope). They exist so the evaluator's collection-literal and call-eval
// paths (spec.md §4.3, §4.4) have something real to build and invoke.

// List is a slice-backed persistent list, used for the variadic call tail
// (spec.md §4.4) and as the general cons-list value.
type List struct {
	Values []Object
	Meta   Object
}

func NewList(values []Object) *List { return &List{Values: values, Meta: theNil} }

func (*List) Type() Type { return ListType }
func (l *List) Inspect() string {
	parts := make([]string, len(l.Values))
	for i, v := range l.Values {
		parts[i] = v.Inspect()
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// Vector is a persistent indexed sequence.
type Vector struct {
	Values []Object
	Meta   Object
}

func NewVector(values []Object, meta Object) *Vector {
	if meta == nil {
		meta = theNil
	}
	cp := make([]Object, len(values))
	copy(cp, values)
	return &Vector{Values: cp, Meta: meta}
}

func (*Vector) Type() Type { return VectorType }
func (v *Vector) Inspect() string {
	parts := make([]string, len(v.Values))
	for i, e := range v.Values {
		parts[i] = e.Inspect()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// TransientVector is a mutation-allowed vector builder, callable with
// exactly one argument (index lookup) per spec.md §4.4.
type TransientVector struct {
	values []Object
}

func NewTransientVector() *TransientVector { return &TransientVector{} }

func (*TransientVector) Type() Type        { return TransientVectorType }
func (t *TransientVector) Inspect() string { return "#<transient-vector>" }

func (t *TransientVector) Push(o Object) { t.values = append(t.values, o) }

func (t *TransientVector) Persistent() *Vector {
	return NewVector(t.values, theNil)
}

func (t *TransientVector) Invoke(args []Object) (Object, error) {
	if len(args) != 1 {
		return nil, InvalidArityErr(len(args), t.Inspect())
	}
	idx, ok := args[0].(*Int)
	if !ok || idx.Value < 0 || int(idx.Value) >= len(t.values) {
		return theNil, nil
	}
	return t.values[idx.Value], nil
}

// MapEntry preserves declaration order for array-maps.
type MapEntry struct {
	Key   Object
	Value Object
}

// keyString produces a map key comparable with Go's built-in equality for
// the object kinds the evaluator ever uses as map/set keys.
func keyString(o Object) string {
	switch v := o.(type) {
	case *Keyword:
		return "kw:" + v.Namespace + "/" + v.Name
	case *Symbol:
		return "sym:" + v.Namespace + "/" + v.Name
	case *String:
		return "str:" + v.Value
	case *Int:
		return "int:" + strconv.FormatInt(v.Value, 10)
	case *Real:
		return "real:" + strconv.FormatFloat(v.Value, 'g', -1, 64)
	case *Bool:
		return "bool:" + v.Inspect()
	case *Nil:
		return "nil"
	default:
		return "ptr:" + o.Inspect()
	}
}

// ArrayMap is a small packed array-map: contiguous key/value pairs, linear
// lookup, no hashing overhead. Used below the configured max_array_map_size
// threshold (spec.md §4.3).
type ArrayMap struct {
	entries []MapEntry
	Meta    Object
}

func NewArrayMap(entries []MapEntry, meta Object) *ArrayMap {
	if meta == nil {
		meta = theNil
	}
	return &ArrayMap{entries: entries, Meta: meta}
}

func (*ArrayMap) Type() Type { return ArrayMapType }
func (m *ArrayMap) Inspect() string {
	parts := make([]string, len(m.entries))
	for i, e := range m.entries {
		parts[i] = e.Key.Inspect() + " " + e.Value.Inspect()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (m *ArrayMap) Get(key Object) (Object, bool) {
	want := keyString(key)
	for _, e := range m.entries {
		if keyString(e.Key) == want {
			return e.Value, true
		}
	}
	return nil, false
}

func (m *ArrayMap) Invoke(args []Object) (Object, error) {
	if len(args) != 1 && len(args) != 2 {
		return nil, InvalidArityErr(len(args), m.Inspect())
	}
	if v, ok := m.Get(args[0]); ok {
		return v, nil
	}
	if len(args) == 2 {
		return args[1], nil
	}
	return theNil, nil
}

// HashMap is a persistent hash map used at/above max_array_map_size.
type HashMap struct {
	entries map[string]MapEntry
	Meta    Object
}

func NewHashMap(entries []MapEntry, meta Object) *HashMap {
	if meta == nil {
		meta = theNil
	}
	m := make(map[string]MapEntry, len(entries))
	for _, e := range entries {
		m[keyString(e.Key)] = e
	}
	return &HashMap{entries: m, Meta: meta}
}

func (*HashMap) Type() Type { return HashMapType }
func (h *HashMap) Inspect() string {
	parts := make([]string, 0, len(h.entries))
	for _, e := range h.entries {
		parts = append(parts, e.Key.Inspect()+" "+e.Value.Inspect())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (h *HashMap) Get(key Object) (Object, bool) {
	e, ok := h.entries[keyString(key)]
	if !ok {
		return nil, false
	}
	return e.Value, true
}

func (h *HashMap) Invoke(args []Object) (Object, error) {
	if len(args) != 1 && len(args) != 2 {
		return nil, InvalidArityErr(len(args), h.Inspect())
	}
	if v, ok := h.Get(args[0]); ok {
		return v, nil
	}
	if len(args) == 2 {
		return args[1], nil
	}
	return theNil, nil
}

// NewMapEntry is a helper for evaluator code building entries in order.
func NewMapEntry(k, v Object) MapEntry { return MapEntry{Key: k, Value: v} }

// HashSet is a persistent set, callable with exactly one argument per
// spec.md §4.4 (membership test returning the member or nil).
type HashSet struct {
	entries map[string]Object
	Meta    Object
}

func NewHashSet(values []Object, meta Object) *HashSet {
	if meta == nil {
		meta = theNil
	}
	m := make(map[string]Object, len(values))
	for _, v := range values {
		m[keyString(v)] = v
	}
	return &HashSet{entries: m, Meta: meta}
}

func (*HashSet) Type() Type { return HashSetType }
func (s *HashSet) Inspect() string {
	parts := make([]string, 0, len(s.entries))
	for _, v := range s.entries {
		parts = append(parts, v.Inspect())
	}
	return "#{" + strings.Join(parts, ", ") + "}"
}

func (s *HashSet) Invoke(args []Object) (Object, error) {
	if len(args) != 1 {
		return nil, InvalidArityErr(len(args), s.Inspect())
	}
	if v, ok := s.entries[keyString(args[0])]; ok {
		return v, nil
	}
	return theNil, nil
}

// TransientHashSet is the mutation-allowed set builder, callable with 1 or 2
// args like a map (spec.md §4.4 groups it with keywords/maps).
type TransientHashSet struct {
	entries map[string]Object
}

func NewTransientHashSet() *TransientHashSet {
	return &TransientHashSet{entries: make(map[string]Object)}
}

func (*TransientHashSet) Type() Type        { return TransientHashSetType }
func (t *TransientHashSet) Inspect() string { return "#<transient-hash-set>" }

func (t *TransientHashSet) Insert(o Object) { t.entries[keyString(o)] = o }

func (t *TransientHashSet) Persistent() *HashSet {
	vals := make([]Object, 0, len(t.entries))
	for _, v := range t.entries {
		vals = append(vals, v)
	}
	return NewHashSet(vals, theNil)
}

func (t *TransientHashSet) Invoke(args []Object) (Object, error) {
	if len(args) != 1 && len(args) != 2 {
		return nil, InvalidArityErr(len(args), t.Inspect())
	}
	if v, ok := t.entries[keyString(args[0])]; ok {
		return v, nil
	}
	if len(args) == 2 {
		return args[1], nil
	}
	return theNil, nil
}
