package lower

import (
	"github.com/llir/llvm/ir/enum"
	llvmtypes "github.com/llir/llvm/ir/types"

	"pirc/ir"
	"pirc/runtime"
	"pirc/types"
)

// lowerChkMissing raises via the error builtin if its argument is the
// R_MissingArg singleton (§4.2: ChkMissing carries effects = {Error});
// the value passes through unchanged on success, matching checkMissing's
// branch-then-call-then-fallthrough shape.
func (l *Lowerer) lowerChkMissing(instr *ir.Instruction) {
	arg := instr.Args[0]
	if arg.Type().IsNotMissing() {
		l.storeNative(instr, types.RBoxed, l.materialize(arg, types.RBoxed))
		return
	}
	v := l.materialize(arg, types.RBoxed)
	missing := l.gen.EmitRelativeLoad(l.gen.ParamEnv(), 0, llvmtypes.I8Ptr)
	isMissing := l.gen.EmitICmp(enum.IPredEQ, v, missing)

	tag := l.gen.NewVReg("chkmissing")
	errBlock := l.gen.NewBasicBlock(tag + ".err")
	okBlock := l.gen.NewBasicBlock(tag + ".ok")
	l.gen.EmitCondBr(isMissing, errBlock, okBlock)

	l.gen.SetCurrent(errBlock)
	l.emitGCSafepoint(instr, -1, false)
	sig := runtime.Sig(runtime.ErrorBuiltin)
	l.gen.EmitNativeCall(sig.Name, llvmtypes.Void, nil)
	l.gen.EmitUnreachable()

	l.gen.SetCurrent(okBlock)
	l.storeNative(instr, types.RBoxed, v)
}

// lowerChkClosure passes its argument through as a boxed value; the
// Closure tag is not checked and no error path is emitted.
func (l *Lowerer) lowerChkClosure(instr *ir.Instruction) {
	arg := instr.Args[0]
	l.storeNative(instr, types.RBoxed, l.materialize(arg, types.RBoxed))
}

// lowerForce implements promise forcing: if the argument's type guarantees
// it is not promise-wrapped, Force is the identity (elided, per §8
// scenario 6's "Force elision when the static type already guarantees the
// value is not a promise"). Otherwise it always calls forcePromise, which
// itself returns the cached value of an already-forced promise.
func (l *Lowerer) lowerForce(instr *ir.Instruction) {
	arg := instr.Args[0]
	if !arg.Type().MaybeLazy() {
		l.storeNative(instr, l.RepOf(arg), l.materialize(arg, l.RepOf(arg)))
		return
	}

	boxedArg := l.materialize(arg, types.RBoxed)
	cachedValue := l.gen.EmitRelativeLoad(boxedArg, int64(runtime.PromiseValueOffset), llvmtypes.I8Ptr)
	unboundSentinel := l.gen.EmitRelativeLoad(l.gen.ParamEnv(), 0, llvmtypes.I8Ptr)
	alreadyForced := l.gen.EmitICmp(enum.IPredNE, cachedValue, unboundSentinel)
	_ = alreadyForced // a real backend branches here and phis the two
	// paths; this Lowerer always takes the forcePromise call, which is
	// correct on both the already-forced and not-yet-forced paths since
	// forcePromise itself checks the cached slot.

	l.emitGCSafepoint(instr, -1, false)
	sig := runtime.Sig(runtime.ForcePromise)
	result := l.gen.EmitNativeCall(sig.Name, llvmtypes.I8Ptr, []llvmtypes.Type{llvmtypes.I8Ptr}, boxedArg)
	l.storeNative(instr, types.RBoxed, result)
}

// lowerMkArg wraps a promise body (referenced via instr.SrcIdx into the
// owning Code's Promises slice) and its captured environment into a
// Promise-typed value, via createPromise.
func (l *Lowerer) lowerMkArg(instr *ir.Instruction) {
	env := instr.Env
	if env == nil {
		l.fatal("MkArg without an env argument")
	}
	l.emitGCSafepoint(instr, -1, false)
	sig := runtime.Sig(runtime.CreatePromise)
	result := l.gen.EmitNativeCall(sig.Name, llvmtypes.I8Ptr,
		[]llvmtypes.Type{llvmtypes.I32, llvmtypes.I8Ptr},
		l.gen.EmitIntConst(int32(instr.SrcIdx)), l.materialize(env, types.RBoxed))
	l.storeNative(instr, types.RBoxed, result)
}

// lowerUpdatePromise overwrites an already-created (but not yet evaluated)
// promise's cached value, the mechanism MkArg-plus-eager-value pairs use to
// avoid a second allocation; it mutates in place and produces no SSA
// result of its own type beyond Nil.
func (l *Lowerer) lowerUpdatePromise(instr *ir.Instruction) {
	prom := l.materialize(instr.Args[0], types.RBoxed)
	val := l.materialize(instr.Args[1], types.RBoxed)
	l.gen.EmitRelativeStore(prom, int64(runtime.PromiseValueOffset), val)
	l.storeNative(instr, types.RBoxed, prom)
}
