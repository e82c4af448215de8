package lower

import (
	llvmtypes "github.com/llir/llvm/ir/types"

	"pirc/ir"
	"pirc/runtime"
	"pirc/types"
)

// lowerMkEnv builds a fresh environment frame from its MkEnvAux payload
// (ordered binding names and missing-flags) plus the value arguments
// supplying each non-missing slot, via createEnvironment sized to the
// binding count, followed by a StVar-equivalent store per slot. Binding
// cache slots touching this environment are invalidated by simply never
// reusing an old (env, name) key for the new env value — a fresh Go value
// of type ir.Value is a fresh bindingCacheKey.
func (l *Lowerer) lowerMkEnv(instr *ir.Instruction) {
	aux, ok := instr.Aux.(ir.MkEnvAux)
	if !ok {
		l.fatal("MkEnv instruction missing its MkEnvAux payload")
	}
	if aux.Stub {
		l.storeNative(instr, types.RBoxed, l.gen.EmitIntConst(0))
		return
	}

	parent := instr.Env
	if parent == nil {
		l.fatal("MkEnv without a parent env argument")
	}

	l.emitGCSafepoint(instr, -1, true)
	sig := runtime.Sig(runtime.CreateEnvironment)
	envVal := l.gen.EmitNativeCall(sig.Name, llvmtypes.I8Ptr,
		[]llvmtypes.Type{llvmtypes.I8Ptr, llvmtypes.I32},
		l.materialize(parent, types.RBoxed), l.gen.EmitIntConst(int32(len(aux.Names))))

	// Args holds one value per non-missing slot, in the same order as the
	// non-missing entries of aux.Names/aux.Missing.
	stvarSig := runtime.Sig(runtime.StVarBuiltin)
	valueIdx := 0
	for i := range aux.Names {
		if aux.Missing[i] {
			continue
		}
		l.gen.EmitNativeCall(stvarSig.Name, llvmtypes.I8Ptr,
			[]llvmtypes.Type{llvmtypes.I32, llvmtypes.I8Ptr, llvmtypes.I8Ptr},
			l.gen.EmitIntConst(int32(i)), l.materialize(instr.Args[valueIdx], types.RBoxed), envVal)
		valueIdx++
	}

	l.storeNative(instr, types.RBoxed, envVal)
}

// lowerMaterializeEnv turns an env-stub placeholder into a real allocated
// environment on demand (the lazy-environment-materialization path);
// lowered identically to MkEnv since this module does not distinguish the
// stub representation at the native level.
func (l *Lowerer) lowerMaterializeEnv(instr *ir.Instruction) {
	l.lowerMkEnv(instr)
}

// lowerMkClosure packages a Code body, its formal-argument default
// promises, and the captured environment into a Closure SEXP, via
// consNrTagged (the cons-cell builder the original uses to assemble a
// CLOSXP's formals/body/env triple).
func (l *Lowerer) lowerMkClosure(instr *ir.Instruction) {
	env := instr.Env
	if env == nil {
		l.fatal("MkCls/MkFunCls without a captured env argument")
	}
	l.emitGCSafepoint(instr, -1, true)
	sig := runtime.Sig(runtime.ConsNrTagged)
	result := l.gen.EmitNativeCall(sig.Name, llvmtypes.I8Ptr,
		[]llvmtypes.Type{llvmtypes.I8Ptr, llvmtypes.I8Ptr},
		l.materialize(env, types.RBoxed), l.gen.EmitIntConst(int32(instr.SrcIdx)))
	l.storeNative(instr, types.RBoxed, result)
}
