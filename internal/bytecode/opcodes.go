package bytecode

// Opcode is a single VM instruction, same byte-sized encoding as the
// teacher's internal/vm.Opcode.
type Opcode byte

const (
	// OpConst pushes Constants[idx] (2-byte operand) onto the stack.
	OpConst Opcode = iota
	// OpNil, OpTrue, OpFalse push the corresponding singleton without a
	// constant-pool round trip.
	OpNil
	OpTrue
	OpFalse
	// OpPop discards the top of the stack (used after statement-position
	// forms, spec.md §3's do/let Statement demotion).
	OpPop
	// OpDup duplicates the top of the stack.
	OpDup

	// OpGetLocal / OpSetLocal address a slot in the current invocation's
	// locals array by index (1-byte operand); this is where
	// local_reference (spec.md §4.5) resolves once inside a compiled body.
	OpGetLocal
	OpSetLocal

	// OpGetGlobalDeref derefs the var named by the constant-pool string at
	// idx (2-byte operand) — var_deref.
	OpGetGlobalDeref
	// OpGetGlobalRef pushes the var object itself (no deref) — var_ref.
	OpGetGlobalRef
	// OpDef interns the var named by the symbol constant at idx (2-byte
	// operand), copies its metadata/dynamic bit, pops a value and binds it
	// as the var's root, then pushes the var.
	OpDef
	// OpDefNoValue is OpDef without a value expression: interns/updates
	// metadata only, no root-binding change, then pushes the var.
	OpDefNoValue

	// OpGetSelf pushes the currently-executing closure, for
	// recursion_reference/named_recursion (spec.md §4.5).
	OpGetSelf

	// OpJump / OpJumpIfFalse are 2-byte-operand relative jumps (if).
	OpJump
	OpJumpIfFalse
	// OpRecur pops N values (1-byte operand) in order, rebinds locals
	// 0..N-1 to them, and resets execution to the start of the current
	// arity's chunk — a tail-recursive loop, not a stack-growing call.
	OpRecur

	// OpCall invokes dynamic_call on the value below N argument values,
	// where N is a 1-byte operand (spec.md §4.4's dynamic_call contract).
	OpCall
	// OpReturn pops the top of stack as the arity's return value and exits
	// the current compiled frame.
	OpReturn

	// OpMakeClosure materializes a closure value from the constant-pool
	// function prototype at idx (2-byte operand). Every arity of the
	// source function expression is compiled eagerly at codegen time (see
	// internal/codegen); OpMakeClosure only binds the resulting prototype
	// to a runtime object.Fn.
	OpMakeClosure

	// OpMakeVector / OpMakeMap / OpMakeSet build a literal collection from
	// the top N stack values (2-byte operand count; for OpMakeMap, N is the
	// number of key/value pairs and 2N values are popped), mirroring
	// spec.md §4.3's evaluation order.
	OpMakeVector
	OpMakeMap
	OpMakeSet

	// OpPushTry marks the start of a protected region; its 2-byte operand
	// is the relative offset (from just past the operand) of the catch
	// handler to jump to if OpThrow fires while this handler is active.
	// This minimal stand-in has no typed-exception dispatch (that lives in
	// the external object/typesystem model), so a try's single catch
	// clause is treated as catch-all.
	OpPushTry
	// OpPopTry deactivates the most recently pushed try handler once its
	// body completes without throwing.
	OpPopTry
	// OpThrow raises the top of stack as the active exception payload,
	// unwinding to the nearest active try handler or, if none, failing the
	// whole invocation with evalerr.UserThrow.
	OpThrow

	// OpNativeRaw looks up the string constant at idx (2-byte operand) in
	// the engine's registered native-code table and invokes it; with no
	// registration, invoking it fails with evalerr.JITFailure.
	OpNativeRaw
)

// Names is used by Disassemble to render a human-readable mnemonic.
var Names = map[Opcode]string{
	OpConst:          "CONST",
	OpNil:            "NIL",
	OpTrue:           "TRUE",
	OpFalse:          "FALSE",
	OpPop:            "POP",
	OpDup:            "DUP",
	OpGetLocal:       "GET_LOCAL",
	OpSetLocal:       "SET_LOCAL",
	OpGetGlobalDeref: "GET_GLOBAL_DEREF",
	OpGetGlobalRef:   "GET_GLOBAL_REF",
	OpDef:            "DEF",
	OpDefNoValue:     "DEF_NO_VALUE",
	OpGetSelf:        "GET_SELF",
	OpJump:           "JUMP",
	OpJumpIfFalse:    "JUMP_IF_FALSE",
	OpRecur:          "RECUR",
	OpCall:           "CALL",
	OpReturn:         "RETURN",
	OpMakeClosure:    "MAKE_CLOSURE",
	OpMakeVector:     "MAKE_VECTOR",
	OpMakeMap:        "MAKE_MAP",
	OpMakeSet:        "MAKE_SET",
	OpPushTry:        "PUSH_TRY",
	OpPopTry:         "POP_TRY",
	OpThrow:          "THROW",
	OpNativeRaw:      "NATIVE_RAW",
}
