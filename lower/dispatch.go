package lower

import "pirc/ir"

// lowerInstruction dispatches on instr.Op, the direct realization of the
// "tag-dispatched variants replace single-inheritance hierarchies" design
// note: a single switch stands in for what would otherwise be a virtual
// method per Instruction subclass.
func (l *Lowerer) lowerInstruction(instr *ir.Instruction) {
	switch instr.Op {
	case ir.OpLdConst:
		l.lowerLdConst(instr)
	case ir.OpLdArg:
		l.lowerLdArg(instr)
	case ir.OpLdVar, ir.OpLdVarSuper:
		l.lowerLdVar(instr)
	case ir.OpStVar, ir.OpStVarSuper:
		l.lowerStVar(instr)
	case ir.OpStArg:
		unsupported("StArg is not supported by native lowering")

	case ir.OpAdd, ir.OpSub, ir.OpMul, ir.OpDiv, ir.OpIDiv, ir.OpMod, ir.OpPow:
		l.lowerBinop(instr)
	case ir.OpLt, ir.OpLte, ir.OpGt, ir.OpGte, ir.OpEq, ir.OpNeq:
		l.lowerRelop(instr)
	case ir.OpPlus, ir.OpMinus, ir.OpNot:
		l.lowerUnop(instr)
	case ir.OpLAnd, ir.OpLOr:
		l.lowerLogicalBinop(instr)

	case ir.OpIsType:
		l.lowerIsType(instr)
	case ir.OpIsObject:
		l.lowerIsObject(instr)
	case ir.OpAsTest:
		l.lowerAsTest(instr)
	case ir.OpAsLogical:
		l.lowerAsLogical(instr)
	case ir.OpCheckTrueFalse:
		l.lowerCheckTrueFalse(instr)
	case ir.OpCastType:
		l.lowerCastType(instr)
	case ir.OpIs:
		unsupported("Is (source-language class test) has no native lowering")

	case ir.OpChkMissing:
		l.lowerChkMissing(instr)
	case ir.OpChkClosure:
		l.lowerChkClosure(instr)
	case ir.OpMissing:
		l.storeNative(instr, l.rep[instr], l.gen.EmitIntConst(0))
	case ir.OpForce:
		l.lowerForce(instr)
	case ir.OpMkArg:
		l.lowerMkArg(instr)
	case ir.OpUpdatePromise:
		l.lowerUpdatePromise(instr)

	case ir.OpMkEnv:
		l.lowerMkEnv(instr)
	case ir.OpMaterializeEnv:
		l.lowerMaterializeEnv(instr)
	case ir.OpIsEnvStub:
		l.storeNative(instr, l.rep[instr], l.gen.EmitIntConst(0))

	case ir.OpMkCls, ir.OpMkFunCls:
		l.lowerMkClosure(instr)

	case ir.OpCall, ir.OpNamedCall:
		l.lowerCall(instr)
	case ir.OpStaticCall:
		l.lowerStaticCall(instr)
	case ir.OpCallBuiltin, ir.OpCallSafeBuiltin:
		l.lowerCallBuiltin(instr)

	case ir.OpBranch:
		l.lowerBranch(instr)
	case ir.OpReturn:
		l.lowerReturn(instr)
	case ir.OpNonLocalReturn:
		l.lowerNonLocalReturn(instr)
	case ir.OpUnreachable:
		l.gen.EmitUnreachable()
	case ir.OpPhi:
		l.lowerPhi(instr)
	case ir.OpPirCopy:
		l.storeNative(instr, l.RepOf(instr.Args[0]), l.materialize(instr.Args[0], l.RepOf(instr.Args[0])))
	case ir.OpNop:
		// no-op: emits nothing.
	case ir.OpInvisible:
		l.lowerVisibility(false)
	case ir.OpVisible:
		l.lowerVisibility(true)

	case ir.OpCheckpoint:
		l.lowerCheckpoint(instr)
	case ir.OpAssume:
		l.lowerAssume(instr)
	case ir.OpFrameState:
		// FrameState carries no runtime effect of its own; it is only
		// consulted by ScheduledDeopt, which reads it via Args.
	case ir.OpScheduledDeopt:
		l.lowerScheduledDeopt(instr)
	case ir.OpRecordDeoptReason:
		// bookkeeping only; nothing to emit natively.

	case ir.OpPushContext:
		l.lowerPushContext(instr)
	case ir.OpPopContext:
		l.lowerPopContext(instr)

	case ir.OpExtract1_1D, ir.OpExtract1_2D, ir.OpExtract1_3D,
		ir.OpExtract2_1D, ir.OpExtract2_2D, ir.OpExtract2_3D,
		ir.OpSubassign1_1D, ir.OpSubassign1_2D, ir.OpSubassign1_3D,
		ir.OpSubassign2_1D, ir.OpSubassign2_2D, ir.OpSubassign2_3D:
		unsupported("%s has no fast native path, falls back to builtin dispatch", instr.Op)

	case ir.OpLdFun, ir.OpLdFunctionEnv, ir.OpLdDots:
		unsupported("%s is not yet supported by native lowering", instr.Op)

	default:
		unsupported("unrecognized instruction tag %s", instr.Op)
	}
}
