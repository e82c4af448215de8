package lower

import (
	llvmtypes "github.com/llir/llvm/ir/types"

	"pirc/ir"
	"pirc/runtime"
	"pirc/types"
)

// lowerCheckpoint marks a restart point a later ScheduledDeopt's
// FrameState can unwind back to; since this Lowerer does not itself
// implement speculative optimization (that happens upstream of the
// Lowerer's input, per §4.5), a Checkpoint lowers to an unconditional
// branch to its single "fast path continues" successor — its second
// successor (the deopt-on-failure block) is only reached via an explicit
// Assume, never directly from here.
func (l *Lowerer) lowerCheckpoint(instr *ir.Instruction) {
	succs := instr.BB.Successors()
	if len(succs) != 2 {
		l.fatal("Checkpoint instruction's block has %d successors, want 2", len(succs))
	}
	l.gen.EmitBr(l.nativeBlockFor(succs[0]))
}

// lowerAssume emits the runtime test a speculative guard depends on,
// branching to the checkpoint's recorded deopt block on failure (§4.5:
// Assume "branches to deopt on failure, using the nearest dominating
// Checkpoint's FrameState").
func (l *Lowerer) lowerAssume(instr *ir.Instruction) {
	cond := l.materialize(instr.Args[0], types.RInteger)
	succs := instr.BB.Successors()
	if len(succs) != 2 {
		l.fatal("Assume instruction's block has %d successors, want 2", len(succs))
	}
	l.gen.EmitCondBr(cond, l.nativeBlockFor(succs[0]), l.nativeBlockFor(succs[1]))
}

// lowerScheduledDeopt implements the deopt-on-failure path: rebuild the
// interpreter's frame stack from DeoptAux's reversed (innermost-first)
// frame list and hand control back to the RIR interpreter via the deopt
// builtin, per §4.5's note that "recorded outermost-first, the
// interpreter wants innermost-first order."
func (l *Lowerer) lowerScheduledDeopt(instr *ir.Instruction) {
	aux, ok := instr.Aux.(ir.DeoptAux)
	if !ok {
		l.fatal("ScheduledDeopt instruction missing its DeoptAux payload")
	}

	l.emitGCSafepoint(instr, -1, true)

	for i := len(aux.Frames) - 1; i >= 0; i-- {
		frame := aux.Frames[i]
		l.gen.EmitNativeCall("pushDeoptFrame", llvmtypes.Void,
			[]llvmtypes.Type{llvmtypes.I32, llvmtypes.I32, llvmtypes.I32},
			l.gen.EmitIntConst(int32(frame.CodeIndex)), l.gen.EmitIntConst(int32(frame.PC)), l.gen.EmitIntConst(int32(frame.StackDepth)))
	}

	sig := runtime.Sig(runtime.DeoptBuiltin)
	l.gen.EmitNativeCall(sig.Name, llvmtypes.Void, []llvmtypes.Type{llvmtypes.I32}, l.gen.EmitIntConst(int32(len(aux.Frames))))
	l.gen.EmitUnreachable()
}
