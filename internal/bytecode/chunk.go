// Package bytecode is the low-level IR a wrapped function expression is
// lowered to (spec.md §6's "code generator" / "JIT host" collaborators).
// It is shaped like the teacher's internal/vm chunk/opcode design, cut down
// to just what a wrapped fn/let/try/native_raw body needs: constants,
// locals, calls, jumps, closures, and a throw/catch pair — none of the
// teacher's type-class or pattern-match opcodes, since this dialect has
// neither.
package bytecode

import "github.com/driftlang/drift/internal/object"

// Chunk is a sequence of bytecode instructions for one compiled module
// (one wrapped repl_fn and its nested arities).
type Chunk struct {
	// Code is the instruction stream.
	Code []byte
	// Constants is the constant pool: literals, symbol/keyword names,
	// nested closure prototypes.
	Constants []object.Object
	// Lines maps a code offset to the source line, for JITFailure
	// diagnostics.
	Lines []int
	// Name is the module name generated by nest_module (spec.md §4.5 step
	// 5), e.g. "user.repl_fn_3_f3a1b2c4".
	Name string
	// NumLocals is the number of local slots this chunk's invocation frame
	// needs, computed by internal/codegen while compiling.
	NumLocals int
	// Params is the parameter names bound to locals 0..len(Params)-1 on
	// invocation (empty for a zero-arity wrapper).
	Params []string
	// Variadic marks whether the last Params entry collects a trailing
	// persistent-list of extra positional arguments.
	Variadic bool
}

// NewChunk creates an empty chunk for module name.
func NewChunk(name string) *Chunk {
	return &Chunk{
		Code:      make([]byte, 0, 64),
		Constants: make([]object.Object, 0, 16),
		Lines:     make([]int, 0, 64),
		Name:      name,
	}
}

// Write appends a raw byte with its source line.
func (c *Chunk) Write(b byte, line int) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
}

// WriteOp appends an opcode.
func (c *Chunk) WriteOp(op Opcode, line int) {
	c.Write(byte(op), line)
}

// AddConstant appends value to the constant pool (no deduplication) and
// returns its index.
func (c *Chunk) AddConstant(value object.Object) int {
	c.Constants = append(c.Constants, value)
	return len(c.Constants) - 1
}

// WriteConstant emits OP_CONST followed by a 2-byte big-endian index.
func (c *Chunk) WriteConstant(value object.Object, line int) {
	idx := c.AddConstant(value)
	c.WriteOp(OpConst, line)
	c.Write(byte(idx>>8), line)
	c.Write(byte(idx), line)
}

// ReadConstantIndex reads the 2-byte index written by WriteConstant at
// offset.
func (c *Chunk) ReadConstantIndex(offset int) int {
	return int(c.Code[offset])<<8 | int(c.Code[offset+1])
}

// Len returns the number of bytes of instructions emitted so far.
func (c *Chunk) Len() int { return len(c.Code) }

// EmitJump writes a jump opcode with a 2-byte placeholder operand and
// returns the operand's offset, to be patched later by PatchJump.
func (c *Chunk) EmitJump(op Opcode, line int) int {
	c.WriteOp(op, line)
	c.Write(0xff, line)
	c.Write(0xff, line)
	return len(c.Code) - 2
}

// PatchJump backfills the 2-byte operand at offset with the distance from
// just past the operand to the current end of the chunk.
func (c *Chunk) PatchJump(offset int) {
	dist := len(c.Code) - offset - 2
	c.Code[offset] = byte(dist >> 8)
	c.Code[offset+1] = byte(dist)
}
