package lower

import (
	llvmtypes "github.com/llir/llvm/ir/types"

	"pirc/ir"
	"pirc/types"
)

// lowerPushContext pushes an R-visible "context" record (the data
// longjmp-style non-local control flow and condition handling unwind
// against) for the call this instruction's env argument belongs to.
func (l *Lowerer) lowerPushContext(instr *ir.Instruction) {
	env := instr.Env
	if env == nil {
		l.fatal("PushContext without an env argument")
	}
	l.emitGCSafepoint(instr, -1, true)
	l.gen.EmitNativeCall("pushContext", llvmtypes.I8Ptr, []llvmtypes.Type{llvmtypes.I8Ptr}, l.materialize(env, types.RBoxed))
}

// lowerPopContext pops the context PushContext pushed, restoring the
// previous one; it carries no SSA result.
func (l *Lowerer) lowerPopContext(instr *ir.Instruction) {
	l.gen.EmitNativeCall("popContext", llvmtypes.Void, nil)
}
