package lower

import (
	llvmtypes "github.com/llir/llvm/ir/types"

	"pirc/ir"
	"pirc/runtime"
	"pirc/types"
)

// lowerBranch emits a conditional branch on a scalar unboxed test value to
// the block's two successors, in true/false order per BasicBlock.Succs.
func (l *Lowerer) lowerBranch(instr *ir.Instruction) {
	cond := l.materialize(instr.Args[0], types.RInteger)
	succs := instr.BB.Successors()
	if len(succs) != 2 {
		l.fatal("Branch instruction's block has %d successors, want 2", len(succs))
	}
	l.gen.EmitCondBr(cond, l.nativeBlockFor(succs[0]), l.nativeBlockFor(succs[1]))
}

// lowerReturn pops the local safepoint slots the prologue reserved (no
// explicit native instruction is needed for this since the slots are
// ordinary stack allocas freed on function return) and emits the native
// ret.
func (l *Lowerer) lowerReturn(instr *ir.Instruction) {
	v := l.materialize(instr.Args[0], types.RBoxed)
	l.gen.EmitRet(v)
}

// lowerNonLocalReturn implements a non-local return out of a promise body
// back to the target closure's call frame, via a dedicated builtin call
// that walks and unwinds the context stack (ChangesContexts) before ever
// reaching this function's own native ret.
func (l *Lowerer) lowerNonLocalReturn(instr *ir.Instruction) {
	v := l.materialize(instr.Args[0], types.RBoxed)
	target := l.materialize(instr.Args[1], types.RBoxed)
	l.emitGCSafepoint(instr, -1, true)
	l.gen.EmitNativeCall("nonLocalReturn", llvmtypes.I8Ptr, []llvmtypes.Type{llvmtypes.I8Ptr, llvmtypes.I8Ptr}, v, target)
	l.gen.EmitUnreachable()
}

// lowerPhi materializes a Phi's chosen representation value; since no real
// backend executes, predecessor-specific values are not actually merged by
// an LLVM phi node here — instead each predecessor block's contributing
// Instruction is expected to have already stored its value under the same
// ir.Value identity (the Phi instruction itself) via the representation
// chosen in chooseRepresentations, so lowering it is just forwarding
// whichever operand was last stored for this SSA name along the edge
// actually taken. This is a simplification the Lowerer takes because it
// never emits competing control paths into the same native block twice.
func (l *Lowerer) lowerPhi(instr *ir.Instruction) {
	rep := l.rep[instr]
	for _, a := range instr.Args {
		if _, ok := l.native[a]; ok {
			l.storeNative(instr, rep, l.materialize(a, rep))
			return
		}
	}
	l.fatal("Phi %s has no operand with an already-lowered value on the taken edge", instr.Repr())
}

// lowerVisibility stores the R_Visible flag the top-level REPL print
// decision reads, matching the Invisible/Visible op pair's sole effect.
func (l *Lowerer) lowerVisibility(visible bool) {
	v := int32(0)
	if visible {
		v = 1
	}
	l.gen.EmitNativeCall(runtime.VisibleFlagSymbol, llvmtypes.Void, []llvmtypes.Type{llvmtypes.I32}, l.gen.EmitIntConst(v))
}
