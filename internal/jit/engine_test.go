package jit_test

import (
	"strings"
	"testing"

	"github.com/driftlang/drift/internal/ast"
	"github.com/driftlang/drift/internal/bytecode"
	"github.com/driftlang/drift/internal/evalerr"
	"github.com/driftlang/drift/internal/frame"
	"github.com/driftlang/drift/internal/jit"
	"github.com/driftlang/drift/internal/object"
	"github.com/driftlang/drift/internal/rt"
)

func wrapperOf(body []ast.Expression, params []string, variadic bool) *ast.Function {
	root := frame.NewRoot()
	root.Type = frame.Fn
	return &ast.Function{
		Name:       "repl_fn",
		UniqueName: "repl_fn-1-abcd",
		Arities: []ast.Arity{{
			Frame:    root,
			Params:   params,
			Variadic: variadic,
			Body:     body,
		}},
	}
}

func TestEngineCompileAndInvoke(t *testing.T) {
	fn := wrapperOf([]ast.Expression{&ast.PrimitiveLiteral{Data: &object.Int{Value: 9}}}, nil, false)
	engine := jit.NewEngine(nil, nil, 8)
	entry, err := engine.Compile(fn, "user.repl_fn_1", rt.NewContext())
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	result, err := entry(nil)
	if err != nil {
		t.Fatalf("entry: %v", err)
	}
	if i := result.(*object.Int); i.Value != 9 {
		t.Fatalf("result = %d, want 9", i.Value)
	}
	if _, ok := engine.Module("user.repl_fn_1"); !ok {
		t.Fatal("expected the compiled module to be registered")
	}
}

func TestEngineThrowEscapesAsEvalerrThrown(t *testing.T) {
	fn := wrapperOf([]ast.Expression{&ast.Throw{Value: &ast.PrimitiveLiteral{Data: &object.String{Value: "boom"}}}}, nil, false)
	engine := jit.NewEngine(nil, nil, 8)
	entry, err := engine.Compile(fn, "user.repl_fn_2", rt.NewContext())
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	_, err = entry(nil)
	if err == nil {
		t.Fatal("expected the uncaught throw to surface as an error")
	}
	thrown, ok := err.(*evalerr.Thrown)
	if !ok {
		t.Fatalf("expected *evalerr.Thrown, got %T", err)
	}
	if s, ok := thrown.Payload.(*object.String); !ok || s.Value != "boom" {
		t.Fatalf("expected the original payload \"boom\", got %#v", thrown.Payload)
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected the thrown payload to be reachable from the error, got %v", err)
	}
}

func TestEngineRegisterNativeRaw(t *testing.T) {
	fn := wrapperOf([]ast.Expression{&ast.NativeRaw{Code: "ping"}}, nil, false)
	engine := jit.NewEngine(nil, nil, 8)
	engine.RegisterNativeRaw("ping", func() (object.Object, error) {
		return &object.String{Value: "pong"}, nil
	})
	entry, err := engine.Compile(fn, "user.repl_fn_3", rt.NewContext())
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	result, err := entry(nil)
	if err != nil {
		t.Fatalf("entry: %v", err)
	}
	if s := result.(*object.String); s.Value != "pong" {
		t.Fatalf("result = %q, want pong", s.Value)
	}
}

func TestEngineNativeRawMissingHandlerFails(t *testing.T) {
	fn := wrapperOf([]ast.Expression{&ast.NativeRaw{Code: "unregistered"}}, nil, false)
	engine := jit.NewEngine(nil, nil, 8)
	entry, err := engine.Compile(fn, "user.repl_fn_4", rt.NewContext())
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if _, err := entry(nil); err == nil {
		t.Fatal("expected an error invoking an unregistered native_raw handler")
	}
}

type fakeCache struct {
	store map[string]*bytecode.Chunk
	gets  int
	puts  int
}

func newFakeCache() *fakeCache { return &fakeCache{store: make(map[string]*bytecode.Chunk)} }

func (f *fakeCache) Get(uniqueName string) (*bytecode.Chunk, bool) {
	f.gets++
	c, ok := f.store[uniqueName]
	return c, ok
}

func (f *fakeCache) Put(uniqueName string, chunk *bytecode.Chunk) error {
	f.puts++
	f.store[uniqueName] = chunk
	return nil
}

func TestEngineUsesCacheOnSecondCompile(t *testing.T) {
	cache := newFakeCache()
	engine := jit.NewEngine(cache, nil, 8)
	fn := wrapperOf([]ast.Expression{&ast.PrimitiveLiteral{Data: &object.Int{Value: 1}}}, nil, false)

	if _, err := engine.Compile(fn, "user.repl_fn_5", rt.NewContext()); err != nil {
		t.Fatalf("first compile: %v", err)
	}
	if cache.puts != 1 {
		t.Fatalf("puts = %d, want 1", cache.puts)
	}

	if _, err := engine.Compile(fn, "user.repl_fn_5", rt.NewContext()); err != nil {
		t.Fatalf("second compile: %v", err)
	}
	if cache.puts != 1 {
		t.Fatalf("puts after cache hit = %d, want still 1", cache.puts)
	}
	if cache.gets < 2 {
		t.Fatalf("gets = %d, want at least 2", cache.gets)
	}
}
