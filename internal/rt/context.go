// Package rt implements the external Context collaborator described in
// spec.md §6: namespace registry, interned keyword table, var
// lookup/intern, and the current-namespace var. The rest of this module
// treats it as the runtime's shared, externally-synchronized mutable store
// (spec.md §5).
package rt

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/driftlang/drift/internal/object"
)

// Context owns every piece of shared mutable state the evaluator touches:
// namespaces, vars, interned keywords, and unique-name generation.
type Context struct {
	mu         sync.Mutex
	namespaces map[string]*object.Namespace
	keywords   map[string]*object.Keyword
	currentNS  *object.Var
	counter    uint64
}

// NewContext creates a context with a single "user" namespace current.
func NewContext() *Context {
	ctx := &Context{
		namespaces: make(map[string]*object.Namespace),
		keywords:   make(map[string]*object.Keyword),
	}
	ns := ctx.findOrCreateNamespace("user")
	nsVar := object.NewVar("", "*ns*")
	nsVar.BindRoot(ns)
	nsVar.SetDynamic(true)
	ctx.currentNS = nsVar
	return ctx
}

func (c *Context) findOrCreateNamespace(name string) *object.Namespace {
	if ns, ok := c.namespaces[name]; ok {
		return ns
	}
	ns := object.NewNamespace(name)
	c.namespaces[name] = ns
	return ns
}

// CurrentNSVar returns the var whose deref yields the current namespace
// object (spec.md §6).
func (c *Context) CurrentNSVar() *object.Var {
	return c.currentNS
}

// CurrentNamespace derefs CurrentNSVar for convenience.
func (c *Context) CurrentNamespace() *object.Namespace {
	return c.currentNS.Deref().(*object.Namespace)
}

// SetCurrentNamespace switches the current-namespace var's root binding,
// creating the namespace if it doesn't exist yet.
func (c *Context) SetCurrentNamespace(name string) {
	c.mu.Lock()
	ns := c.findOrCreateNamespace(name)
	c.mu.Unlock()
	c.currentNS.BindRoot(ns)
}

// InternVar interns sym in the namespace it (or, if unqualified, the
// current namespace) names.
func (c *Context) InternVar(sym *object.Symbol) (*object.Var, error) {
	nsName := sym.Namespace
	if nsName == "" {
		nsName = c.CurrentNamespace().Name
	}
	c.mu.Lock()
	ns := c.findOrCreateNamespace(nsName)
	c.mu.Unlock()
	return ns.InternVar(sym.Name), nil
}

// FindVar looks up a var by a possibly-qualified name string
// ("ns/name" or bare "name", resolved against the current namespace).
func (c *Context) FindVar(qualifiedName string) (*object.Var, error) {
	nsName, name := splitQualified(qualifiedName)
	if nsName == "" {
		nsName = c.CurrentNamespace().Name
	}
	c.mu.Lock()
	ns, ok := c.namespaces[nsName]
	c.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("no such namespace: %s", nsName)
	}
	v, ok := ns.FindVar(name)
	if !ok {
		return nil, fmt.Errorf("unable to resolve var: %s", qualifiedName)
	}
	return v, nil
}

func splitQualified(qualifiedName string) (ns, name string) {
	if idx := strings.LastIndex(qualifiedName, "/"); idx >= 0 {
		return qualifiedName[:idx], qualifiedName[idx+1:]
	}
	return "", qualifiedName
}

// InternKeyword returns the canonical interned keyword for (ns, name), so
// that pointer identity matches across every call site (spec.md §4.2,
// property 1).
func (c *Context) InternKeyword(ns, name string) *object.Keyword {
	key := ns + "/" + name
	c.mu.Lock()
	defer c.mu.Unlock()
	if kw, ok := c.keywords[key]; ok {
		return kw
	}
	kw := &object.Keyword{Namespace: ns, Name: name}
	c.keywords[key] = kw
	return kw
}

// UniqueString returns a monotonic, process-unique identifier built from
// prefix, a counter, and a short UUID fragment — so synthetic wrapper
// names (spec.md §4.6's "repl_fn") stay collision-free even across
// process restarts sharing the same counter start value, the way the
// teacher's ext test fixtures lean on google/uuid for the same purpose.
func (c *Context) UniqueString(prefix string) string {
	c.mu.Lock()
	c.counter++
	n := c.counter
	c.mu.Unlock()
	frag := uuid.New().String()[:8]
	return fmt.Sprintf("%s-%d-%s", prefix, n, frag)
}
