package lower

import (
	llvmtypes "github.com/llir/llvm/ir/types"

	"pirc/ir"
	"pirc/runtime"
	"pirc/types"
)

// lowerCall implements the generic (non-static, possibly named) call path:
// after a GC safepoint, the boxed callee, the argument count and every
// boxed argument are passed directly as native arguments to the generic
// call builtin, which performs dispatch and promise-wrapping of
// unevaluated arguments. No call frame is pushed onto or popped from the
// interpreter node stack here.
func (l *Lowerer) lowerCall(instr *ir.Instruction) {
	if len(instr.Args) == 0 {
		l.fatal("Call/NamedCall with no callee argument")
	}
	callee := instr.Args[0]
	callArgs := instr.Args[1:]

	l.emitGCSafepoint(instr, -1, true)

	argTypes := make([]llvmtypes.Type, 0, len(callArgs)+2)
	argVals := make([]llvmValue, 0, len(callArgs)+2)
	argTypes = append(argTypes, llvmtypes.I8Ptr, llvmtypes.I32)
	argVals = append(argVals, l.materialize(callee, types.RBoxed), l.gen.EmitIntConst(int32(len(callArgs))))
	for _, a := range callArgs {
		argTypes = append(argTypes, llvmtypes.I8Ptr)
		argVals = append(argVals, l.materialize(a, types.RBoxed))
	}

	sig := runtime.Sig(runtime.CallBuiltinEntry)
	result := l.gen.EmitNativeCall(sig.Name, llvmtypes.I8Ptr, argTypes, argVals...)
	l.storeNative(instr, types.RBoxed, result)
}

// lowerStaticCall lowers a monomorphic call site exactly like lowerCall:
// the callee's DispatchTable is not consulted and no specific Version is
// linked in, so the call always goes through the generic call builtin.
func (l *Lowerer) lowerStaticCall(instr *ir.Instruction) {
	aux, _ := instr.Aux.(ir.CallAux)
	_ = aux // the Context/Builtin fields are not read: this Lowerer does
	// not own a live DispatchTable at code-generation time, and nothing
	// else links a Version into the call site either.
	l.lowerCall(instr)
}

// lowerCallBuiltin implements a direct builtin call: no promise-wrapping
// of arguments (they're eagerly evaluated already), straight to
// callBuiltin.
func (l *Lowerer) lowerCallBuiltin(instr *ir.Instruction) {
	if len(instr.Args) == 0 {
		l.fatal("CallBuiltin/CallSafeBuiltin with no builtin-reference argument")
	}
	callee := instr.Args[0]
	callArgs := instr.Args[1:]

	if instr.Op == ir.OpCallBuiltin {
		l.emitGCSafepoint(instr, -1, true)
	}

	argTypes := make([]llvmtypes.Type, 0, len(callArgs)+2)
	argVals := make([]llvmValue, 0, len(callArgs)+2)
	argTypes = append(argTypes, llvmtypes.I8Ptr, llvmtypes.I32)
	argVals = append(argVals, l.materialize(callee, types.RBoxed), l.gen.EmitIntConst(int32(len(callArgs))))
	for _, a := range callArgs {
		argTypes = append(argTypes, llvmtypes.I8Ptr)
		argVals = append(argVals, l.materialize(a, types.RBoxed))
	}

	sig := runtime.Sig(runtime.CallBuiltinBuiltin)
	result := l.gen.EmitNativeCall(sig.Name, llvmtypes.I8Ptr, argTypes, argVals...)
	l.storeNative(instr, types.RBoxed, result)
}
