package jit

import (
	"github.com/driftlang/drift/internal/bytecode"
	"github.com/driftlang/drift/internal/codegen"
	"github.com/driftlang/drift/internal/evalerr"
	"github.com/driftlang/drift/internal/object"
	"github.com/driftlang/drift/internal/rt"
)

// vm is a single invocation's interpreter state: one locals array, one
// value stack, one active try-handler stack. A fresh vm is created per
// Run so recursive/reentrant invocations never share mutable state.
type vm struct {
	chunk    *bytecode.Chunk
	locals   []object.Object
	stack    []object.Object
	self     object.Object
	ctx      *rt.Context
	engine   *Engine
	tryStack []int
}

// run executes chunk with args bound to its declared parameters (and, for
// a variadic chunk, the trailing extras collected into a persistent list),
// in scope as the closure self for recursion_reference/named_recursion.
func run(engine *Engine, ctx *rt.Context, chunk *bytecode.Chunk, args []object.Object, self object.Object) (object.Object, error) {
	locals := make([]object.Object, chunk.NumLocals)
	bindParams(chunk, locals, args)
	m := &vm{chunk: chunk, locals: locals, ctx: ctx, engine: engine, self: self}
	return m.exec()
}

func bindParams(chunk *bytecode.Chunk, locals []object.Object, args []object.Object) {
	n := len(chunk.Params)
	for i := 0; i < n; i++ {
		if chunk.Variadic && i == n-1 {
			var tail []object.Object
			if len(args) > i {
				tail = append([]object.Object{}, args[i:]...)
			}
			locals[i] = object.NewList(tail)
			return
		}
		if i < len(args) {
			locals[i] = args[i]
		} else {
			locals[i] = object.NilValue()
		}
	}
}

func (m *vm) push(o object.Object) { m.stack = append(m.stack, o) }

func (m *vm) pop() object.Object {
	n := len(m.stack) - 1
	v := m.stack[n]
	m.stack = m.stack[:n]
	return v
}

func (m *vm) peek() object.Object { return m.stack[len(m.stack)-1] }

func (m *vm) popN(n int) []object.Object {
	if n == 0 {
		return nil
	}
	start := len(m.stack) - n
	out := append([]object.Object{}, m.stack[start:]...)
	m.stack = m.stack[:start]
	return out
}

func (m *vm) readIdx(pc int) int {
	return int(m.chunk.Code[pc])<<8 | int(m.chunk.Code[pc+1])
}

func (m *vm) makeClosure(proto *codegen.Proto) *object.Fn {
	arity := 0
	variadic := false
	if len(proto.Arities) > 0 {
		arity = len(proto.Arities[0].Params)
		variadic = proto.Arities[0].Variadic
	}
	var self *object.Fn
	self = object.NewFn(proto.Name, proto.UniqueName, arity, variadic, proto, func(args []object.Object) (object.Object, error) {
		chunk := selectArity(proto, len(args))
		if chunk == nil {
			return nil, evalerr.NewInvalidArity(len(args), proto.UniqueName)
		}
		return run(m.engine, m.ctx, chunk, args, self)
	})
	return self
}

func selectArity(proto *codegen.Proto, n int) *bytecode.Chunk {
	for _, c := range proto.Arities {
		if c.Variadic {
			if n >= len(c.Params)-1 {
				return c
			}
			continue
		}
		if len(c.Params) == n {
			return c
		}
	}
	return nil
}

// ThrownValue wraps a user-thrown object.Object that escaped every active
// try handler, so callers (internal/evaluate) can recover the original
// payload instead of just its string form.
type ThrownValue struct{ Payload object.Object }

func (t *ThrownValue) Error() string { return t.Payload.Inspect() }

func (m *vm) exec() (object.Object, error) {
	pc := 0
	for pc < len(m.chunk.Code) {
		op := bytecode.Opcode(m.chunk.Code[pc])
		pc++

		switch op {
		case bytecode.OpConst:
			idx := m.readIdx(pc)
			pc += 2
			m.push(m.chunk.Constants[idx])

		case bytecode.OpNil:
			m.push(object.NilValue())
		case bytecode.OpTrue:
			m.push(object.Boolean(true))
		case bytecode.OpFalse:
			m.push(object.Boolean(false))
		case bytecode.OpPop:
			m.pop()
		case bytecode.OpDup:
			m.push(m.peek())

		case bytecode.OpGetLocal:
			slot := int(m.chunk.Code[pc])
			pc++
			m.push(m.locals[slot])
		case bytecode.OpSetLocal:
			slot := int(m.chunk.Code[pc])
			pc++
			m.locals[slot] = m.pop()

		case bytecode.OpGetGlobalDeref:
			idx := m.readIdx(pc)
			pc += 2
			name := m.chunk.Constants[idx].(*object.String).Value
			v, err := m.ctx.FindVar(name)
			if err != nil {
				if handled, npc := m.tryThrow(pc, evalerr.NewVarNotFound(name)); handled {
					pc = npc
					continue
				}
				return nil, evalerr.Wrap(evalerr.VarNotFound, err, name)
			}
			m.push(v.Deref())

		case bytecode.OpGetGlobalRef:
			idx := m.readIdx(pc)
			pc += 2
			name := m.chunk.Constants[idx].(*object.String).Value
			v, err := m.ctx.FindVar(name)
			if err != nil {
				if handled, npc := m.tryThrow(pc, evalerr.NewVarNotFound(name)); handled {
					pc = npc
					continue
				}
				return nil, evalerr.Wrap(evalerr.VarNotFound, err, name)
			}
			m.push(v)

		case bytecode.OpDef:
			idx := m.readIdx(pc)
			pc += 2
			sym := m.chunk.Constants[idx].(*object.Symbol)
			val := m.pop()
			v, err := m.ctx.InternVar(sym)
			if err != nil {
				return nil, err
			}
			applyDefMeta(v, sym)
			v.BindRoot(val)
			m.push(v)

		case bytecode.OpDefNoValue:
			idx := m.readIdx(pc)
			pc += 2
			sym := m.chunk.Constants[idx].(*object.Symbol)
			v, err := m.ctx.InternVar(sym)
			if err != nil {
				return nil, err
			}
			applyDefMeta(v, sym)
			m.push(v)

		case bytecode.OpGetSelf:
			if m.self == nil {
				m.push(object.NilValue())
			} else {
				m.push(m.self)
			}

		case bytecode.OpJump:
			dist := m.readIdx(pc)
			pc = pc + 2 + dist

		case bytecode.OpJumpIfFalse:
			dist := m.readIdx(pc)
			pc += 2
			if !object.Truthy(m.pop()) {
				pc += dist
			}

		case bytecode.OpRecur:
			n := int(m.chunk.Code[pc])
			pc++
			vals := m.popN(n)
			for i := 0; i < n && i < len(m.locals); i++ {
				m.locals[i] = vals[i]
			}
			pc = 0

		case bytecode.OpCall:
			n := int(m.chunk.Code[pc])
			pc++
			args := m.popN(n)
			callee := m.pop()
			result, err := object.DynamicCall(callee, args)
			if err != nil {
				if handled, npc := m.tryThrow(pc, err); handled {
					pc = npc
					continue
				}
				return nil, wrapCallErr(err)
			}
			m.push(result)

		case bytecode.OpReturn:
			return m.pop(), nil

		case bytecode.OpMakeClosure:
			idx := m.readIdx(pc)
			pc += 2
			proto := m.chunk.Constants[idx].(*codegen.Proto)
			m.push(m.makeClosure(proto))

		case bytecode.OpMakeVector:
			n := m.readIdx(pc)
			pc += 2
			vals := m.popN(n)
			m.push(object.NewVector(vals, nil))

		case bytecode.OpMakeMap:
			n := m.readIdx(pc)
			pc += 2
			vals := m.popN(n * 2)
			entries := make([]object.MapEntry, 0, n)
			for i := 0; i < n; i++ {
				entries = append(entries, object.NewMapEntry(vals[i*2], vals[i*2+1]))
			}
			if n < m.engine.maxArrayMapSize() {
				m.push(object.NewArrayMap(entries, nil))
			} else {
				m.push(object.NewHashMap(entries, nil))
			}

		case bytecode.OpMakeSet:
			n := m.readIdx(pc)
			pc += 2
			vals := m.popN(n)
			m.push(object.NewHashSet(vals, nil))

		case bytecode.OpPushTry:
			dist := m.readIdx(pc)
			pc += 2
			m.tryStack = append(m.tryStack, pc+dist)

		case bytecode.OpPopTry:
			if len(m.tryStack) > 0 {
				m.tryStack = m.tryStack[:len(m.tryStack)-1]
			}

		case bytecode.OpThrow:
			payload := m.pop()
			if len(m.tryStack) > 0 {
				target := m.tryStack[len(m.tryStack)-1]
				m.tryStack = m.tryStack[:len(m.tryStack)-1]
				pc = target
				m.push(payload)
				continue
			}
			return nil, &ThrownValue{Payload: payload}

		case bytecode.OpNativeRaw:
			idx := m.readIdx(pc)
			pc += 2
			code := m.chunk.Constants[idx].(*object.String).Value
			fn, ok := m.engine.nativeRaw(code)
			if !ok {
				return nil, evalerr.NewJITFailure(nil, "no native_raw handler registered for: "+code)
			}
			result, err := fn()
			if err != nil {
				return nil, evalerr.NewJITFailure(err, code)
			}
			m.push(result)

		default:
			return nil, evalerr.NewJITFailure(nil, "unknown opcode")
		}
	}
	return object.NilValue(), nil
}

func wrapCallErr(err error) error {
	switch err.(type) {
	case *object.ArityError:
		return evalerr.Wrap(evalerr.InvalidArity, err, err.Error())
	case *object.UncallableError:
		return evalerr.Wrap(evalerr.UncallableSource, err, err.Error())
	default:
		return err
	}
}

// tryThrow unwinds to the most recently pushed try handler, if any,
// jumping execution there with the failure's message pushed as the
// exception payload the catch clause binds or discards. Returns false if
// no handler is active, leaving the stack untouched so the caller returns
// the original Go error.
func (m *vm) tryThrow(_ int, cause error) (bool, int) {
	if len(m.tryStack) == 0 {
		return false, 0
	}
	target := m.tryStack[len(m.tryStack)-1]
	m.tryStack = m.tryStack[:len(m.tryStack)-1]
	m.push(&object.String{Value: cause.Error()})
	return true, target
}

func applyDefMeta(v *object.Var, sym *object.Symbol) {
	v.Meta = sym.Meta
	if sym.Meta == nil {
		v.SetDynamic(false)
		return
	}
	getter, ok := sym.Meta.(object.Getter)
	if !ok {
		v.SetDynamic(false)
		return
	}
	dynFlag, found := getter.Get(&object.Keyword{Name: "dynamic"})
	v.SetDynamic(found && object.Truthy(dynFlag))
}
