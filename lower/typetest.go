package lower

import (
	"github.com/llir/llvm/ir/enum"
	llvmtypes "github.com/llir/llvm/ir/types"

	"pirc/ir"
	"pirc/runtime"
	"pirc/types"
)

// lowerIsType implements a static type test: since the Lowerer already
// knows instr.Args[0]'s chosen PirType statically, IsType against a
// subtype of that known type collapses to a compile-time constant, per
// §4.2's framing of IsType as a speculation-feeding predicate the
// optimizer (out of scope here) would normally have already resolved
// where possible. Where it cannot be resolved statically, the sxpinfo
// tag byte is compared against the requested tag at runtime.
func (l *Lowerer) lowerIsType(instr *ir.Instruction) {
	arg := instr.Args[0]
	known := arg.Type()
	want := instr.Result

	if known.IsA(want) {
		l.storeNative(instr, types.RInteger, l.gen.EmitIntConst(1))
		return
	}
	if known.Intersect(want) == 0 {
		l.storeNative(instr, types.RInteger, l.gen.EmitIntConst(0))
		return
	}

	boxedArg := l.materialize(arg, types.RBoxed)
	tagByte := l.gen.EmitRelativeLoad(boxedArg, int64(runtime.SxpInfoOffset), llvmtypes.I8)
	wantTag := l.gen.EmitIntConst(int32(want))
	result := l.gen.EmitICmp(enum.IPredEQ, tagByte, wantTag)
	l.storeNative(instr, types.RInteger, result)
}

// lowerIsObject tests the ModNotObject bit the sxpinfo byte carries;
// unlike IsType this always needs a runtime check unless the static type
// already guarantees NotObject.
func (l *Lowerer) lowerIsObject(instr *ir.Instruction) {
	arg := instr.Args[0]
	if arg.Type().IsNotObject() {
		l.storeNative(instr, types.RInteger, l.gen.EmitIntConst(0))
		return
	}
	boxedArg := l.materialize(arg, types.RBoxed)
	attribBits := l.gen.EmitRelativeLoad(boxedArg, int64(runtime.SxpInfoOffset), llvmtypes.I8)
	isObj := l.gen.EmitICmp(enum.IPredNE, attribBits, l.gen.EmitIntConst(0))
	l.storeNative(instr, types.RInteger, isObj)
}

// lowerAsTest implements the R "if"/"while" condition coercion: a scalar
// unboxed logical/integer value known not to be NA converts directly
// (nonzero is true); anything else, including a value that may be NA,
// goes through the asTest builtin, which raises the NA error and also
// performs the length-1 diagnostics a native fast path cannot cheaply
// reproduce.
func (l *Lowerer) lowerAsTest(instr *ir.Instruction) {
	arg := instr.Args[0]
	rep := l.RepOf(arg)
	if rep == types.RInteger && arg.Type().IsScalar() && arg.Type().IsNotObject() && arg.Type().IsNotNAOrNaN() {
		v := l.materialize(arg, types.RInteger)
		result := l.gen.EmitICmp(enum.IPredNE, v, l.gen.EmitIntConst(0))
		l.storeNative(instr, types.RInteger, result)
		return
	}

	l.emitGCSafepoint(instr, -1, false)
	sig := runtime.Sig(runtime.AsTestBuiltin)
	result := l.gen.EmitNativeCall(sig.Name, llvmtypes.I32, []llvmtypes.Type{llvmtypes.I8Ptr}, l.materialize(arg, types.RBoxed))
	l.storeNative(instr, types.RInteger, result)
}

// lowerAsLogical implements the builtin coercion to logical (e.g. for `&&`
// operands and `if` conditions that are not already scalar logicals), per
// §4.4 rule 7: an unboxed integer passes through unchanged, an unboxed real
// converts to Integer and normalizes NaN to the NA_INTEGER sentinel, and a
// boxed value dispatches to the asLogical builtin.
func (l *Lowerer) lowerAsLogical(instr *ir.Instruction) {
	arg := instr.Args[0]
	switch l.RepOf(arg) {
	case types.RInteger:
		l.storeNative(instr, types.RInteger, l.materialize(arg, types.RInteger))
		return
	case types.RReal:
		real := l.materialize(arg, types.RReal)
		rawInt := l.gen.EmitRealToInt(real)
		isNaN := l.gen.EmitSelfInequality(real)
		result := l.gen.EmitSelect(isNaN, l.gen.EmitIntConst(naSentinelInt), rawInt)
		l.storeNative(instr, types.RInteger, result)
		return
	}

	l.emitGCSafepoint(instr, -1, false)
	sig := runtime.Sig(runtime.AsLogicalBuiltin)
	result := l.gen.EmitNativeCall(sig.Name, llvmtypes.I32, []llvmtypes.Type{llvmtypes.I8Ptr}, l.materialize(arg, types.RBoxed))
	l.storeNative(instr, types.RInteger, result)
}

// lowerCheckTrueFalse passes a scalar-logical value through unchanged in
// its current representation; no NA check and no error path are emitted.
func (l *Lowerer) lowerCheckTrueFalse(instr *ir.Instruction) {
	arg := instr.Args[0]
	rep := l.RepOf(arg)
	v := l.materialize(arg, rep)
	l.storeNative(instr, rep, v)
}

// lowerCastType narrows or widens a value's PirType annotation without
// changing its representation unless the target representation differs,
// in which case it goes through the normal conversion matrix.
func (l *Lowerer) lowerCastType(instr *ir.Instruction) {
	arg := instr.Args[0]
	want := l.rep[instr]
	v := l.materialize(arg, want)
	l.storeNative(instr, want, v)
}
