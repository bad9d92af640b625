package bytecode

import (
	"fmt"
	"strings"
)

// Disassemble renders chunk as human-readable text, grounded on the
// teacher's internal/vm.Disassemble (same offset/line-column layout, a much
// shorter opcode switch).
func Disassemble(chunk *Chunk) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "== %s ==\n", chunk.Name)
	offset := 0
	for offset < len(chunk.Code) {
		offset = disassembleInstruction(&sb, chunk, offset)
	}
	return sb.String()
}

func disassembleInstruction(sb *strings.Builder, chunk *Chunk, offset int) int {
	fmt.Fprintf(sb, "%04d ", offset)
	if offset > 0 && chunk.Lines[offset] == chunk.Lines[offset-1] {
		sb.WriteString("   | ")
	} else {
		fmt.Fprintf(sb, "%4d ", chunk.Lines[offset])
	}

	op := Opcode(chunk.Code[offset])
	name, ok := Names[op]
	if !ok {
		fmt.Fprintf(sb, "unknown opcode %d\n", op)
		return offset + 1
	}

	switch op {
	case OpConst, OpGetGlobalDeref, OpGetGlobalRef, OpDef, OpDefNoValue,
		OpMakeClosure, OpMakeVector, OpMakeMap, OpMakeSet, OpNativeRaw:
		idx := chunk.ReadConstantIndex(offset + 1)
		fmt.Fprintf(sb, "%-16s %4d\n", name, idx)
		return offset + 3
	case OpJump, OpJumpIfFalse, OpPushTry:
		dist := chunk.ReadConstantIndex(offset + 1)
		fmt.Fprintf(sb, "%-16s -> %d\n", name, offset+3+dist)
		return offset + 3
	case OpGetLocal, OpSetLocal, OpCall, OpRecur:
		fmt.Fprintf(sb, "%-16s %4d\n", name, chunk.Code[offset+1])
		return offset + 2
	default:
		fmt.Fprintf(sb, "%s\n", name)
		return offset + 1
	}
}
