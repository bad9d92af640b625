package codegen_test

import (
	"strings"
	"testing"

	"github.com/driftlang/drift/internal/ast"
	"github.com/driftlang/drift/internal/bytecode"
	"github.com/driftlang/drift/internal/codegen"
	"github.com/driftlang/drift/internal/frame"
	"github.com/driftlang/drift/internal/object"
	"github.com/driftlang/drift/internal/rt"
)

func wrapperOf(body []ast.Expression, params []string) *ast.Function {
	root := frame.NewRoot()
	root.Type = frame.Fn
	return &ast.Function{
		Name:       "repl_fn",
		UniqueName: "repl_fn-1-abcd",
		Arities: []ast.Arity{{
			Frame:  root,
			Params: params,
			Body:   body,
		}},
	}
}

func TestGenConstantAndReturn(t *testing.T) {
	fn := wrapperOf([]ast.Expression{&ast.PrimitiveLiteral{Data: &object.Int{Value: 42}}}, nil)
	chunk, err := codegen.New(fn, "user.repl_fn_1", codegen.TargetREPL, rt.NewContext()).Gen()
	if err != nil {
		t.Fatalf("Gen: %v", err)
	}
	if len(chunk.Constants) != 1 {
		t.Fatalf("constants = %d, want 1", len(chunk.Constants))
	}
	if chunk.Code[0] != byte(bytecode.OpConst) {
		t.Fatalf("first opcode = %d, want OpConst", chunk.Code[0])
	}
	last := chunk.Code[len(chunk.Code)-1]
	if last != byte(bytecode.OpReturn) {
		t.Fatalf("last opcode = %d, want OpReturn", last)
	}
}

func TestGenLocalSlotsForParamsAndLet(t *testing.T) {
	letExpr := &ast.Let{
		Bindings: []ast.Binding{{Name: "y", Value: &ast.PrimitiveLiteral{Data: &object.Int{Value: 1}}}},
		Body:     []ast.Expression{&ast.LocalReference{Name: "x"}},
	}
	fn := wrapperOf([]ast.Expression{letExpr}, []string{"x"})
	chunk, err := codegen.New(fn, "user.repl_fn_2", codegen.TargetREPL, rt.NewContext()).Gen()
	if err != nil {
		t.Fatalf("Gen: %v", err)
	}
	// slot 0 is the param, slot 1 the let binding -> NumLocals must be 2.
	if chunk.NumLocals != 2 {
		t.Fatalf("NumLocals = %d, want 2", chunk.NumLocals)
	}
	if len(chunk.Params) != 1 || chunk.Params[0] != "x" {
		t.Fatalf("Params = %v, want [x]", chunk.Params)
	}
}

func TestGenUnknownLocalReferenceFails(t *testing.T) {
	fn := wrapperOf([]ast.Expression{&ast.LocalReference{Name: "nope"}}, nil)
	_, err := codegen.New(fn, "user.repl_fn_3", codegen.TargetREPL, rt.NewContext()).Gen()
	if err == nil {
		t.Fatal("expected an error referencing an unbound local")
	}
}

func TestGenIfEmitsBothBranchesAndPatchesJumps(t *testing.T) {
	ifExpr := &ast.If{
		Condition: &ast.PrimitiveLiteral{Data: object.Boolean(true)},
		Then:      &ast.PrimitiveLiteral{Data: &object.Int{Value: 1}},
		Else:      &ast.PrimitiveLiteral{Data: &object.Int{Value: 2}},
	}
	fn := wrapperOf([]ast.Expression{ifExpr}, nil)
	chunk, err := codegen.New(fn, "user.repl_fn_4", codegen.TargetREPL, rt.NewContext()).Gen()
	if err != nil {
		t.Fatalf("Gen: %v", err)
	}
	out := bytecode.Disassemble(chunk)
	if !containsAll(out, "JUMP_IF_FALSE", "JUMP", "CONST", "RETURN") {
		t.Fatalf("disassembly missing expected mnemonics: %s", out)
	}
	// Layout: CONST@0, JUMP_IF_FALSE@3 (operand 4), CONST@6, JUMP@9
	// (operand 10), CONST@12 (else), RETURN@15.
	if d := chunk.ReadConstantIndex(4); 4+2+d != 12 {
		t.Fatalf("JUMP_IF_FALSE targets %d, want 12 (the else branch)", 4+2+d)
	}
	if d := chunk.ReadConstantIndex(10); 10+2+d != 15 {
		t.Fatalf("JUMP targets %d, want 15 (past the else branch)", 10+2+d)
	}
}

func TestGenNoArityFails(t *testing.T) {
	fn := &ast.Function{Name: "repl_fn", UniqueName: "repl_fn-2-xyz"}
	_, err := codegen.New(fn, "user.repl_fn_5", codegen.TargetREPL, rt.NewContext()).Gen()
	if err == nil {
		t.Fatal("expected an error compiling a function with no arities")
	}
}

func TestMungeEscapesNonIdentifierRunes(t *testing.T) {
	got := codegen.Munge("repl-fn?3")
	if got == "repl-fn?3" {
		t.Fatal("Munge should rewrite hyphens and non-identifier runes")
	}
	for _, r := range got {
		ok := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_'
		if !ok {
			t.Fatalf("Munge output contains a non-identifier rune: %q in %q", r, got)
		}
	}
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
