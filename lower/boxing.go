package lower

import (
	llvmtypes "github.com/llir/llvm/ir/types"

	"pirc/ir"
	"pirc/runtime"
	"pirc/types"
)

// materialize returns v's codegen-level value, converting from whatever
// representation it was last stored in to want, per §4.4's box/unbox
// rules. It looks up already-lowered Instructions and Singletons in
// l.native; a cache miss means v was never lowered, which is itself an
// internal invariant violation (SSA well-formedness guarantees every use
// is preceded by its definition in lowering order).
func (l *Lowerer) materialize(v ir.Value, want types.Representation) llvmValue {
	cur, ok := l.native[v]
	if !ok {
		l.fatal("use of value %s before it was lowered", v.Repr())
	}
	if cur.rep == want {
		return cur.val
	}
	return l.convert(cur, want)
}

// convert implements the box/unbox conversion matrix. Any conversion
// requested but undefined here is a lowering failure (§4.4: "Any
// conversion requested but undefined is a lowering failure"), not a panic
// escaping to the caller — it goes through unsupported().
func (l *Lowerer) convert(v llValue, want types.Representation) llvmValue {
	switch {
	case v.rep == types.RBoxed && want == types.RInteger:
		return l.gen.EmitRelativeLoad(v.val, int64(runtime.ScalarValueOffset), llvmtypes.I32)
	case v.rep == types.RBoxed && want == types.RReal:
		return l.gen.EmitRelativeLoad(v.val, int64(runtime.ScalarValueOffset), llvmtypes.Double)
	case v.rep == types.RInteger && want == types.RReal:
		return l.gen.EmitIntToReal(v.val)
	case v.rep == types.RReal && want == types.RInteger:
		return l.gen.EmitRealToInt(v.val)
	case v.rep == types.RInteger && want == types.RBoxed:
		return l.boxWithSafepoint(runtime.NewInt, v.val)
	case v.rep == types.RReal && want == types.RBoxed:
		return l.boxWithSafepoint(runtime.NewReal, v.val)
	case v.rep == types.RBottom:
		l.fatal("cannot convert a Bottom-representation value to %s", want)
		return nil
	default:
		unsupported("no conversion from %s to %s", v.rep, want)
		return nil
	}
}

// boxWithSafepoint emits a call to one of the newInt/newReal/newLgl family
// of builtins, wrapped in a GC safepoint with protectArgs enabled, per
// §4.4's box/unbox rules: "Integer/Real→Boxed via newInt/newReal/newLgl
// ... wrapped in a GC safepoint with 'protect args' enabled."
func (l *Lowerer) boxWithSafepoint(b runtime.Builtin, arg llvmValue) llvmValue {
	sig := runtime.Sig(b)
	placeholder := &ir.Instruction{}
	l.native[ir.Value(placeholder)] = llValue{rep: types.RInteger, val: arg}
	l.emitGCSafepoint(placeholder, -1, true)

	return l.gen.EmitNativeCall(sig.Name, llvmtypes.I8Ptr, []llvmtypes.Type{llvmtypes.I8Ptr}, arg)
}

// storeNative records v's lowered value and representation.
func (l *Lowerer) storeNative(v ir.Value, rep types.Representation, val llvmValue) {
	l.native[v] = llValue{rep: rep, val: val}
}

// fatal reports an internal invariant violation (§7 item 3): a bug in this
// Lowerer, not a user-visible or unsupported-construct condition. It never
// returns (report.ReportICE calls os.Exit).
func (l *Lowerer) fatal(format string, args ...interface{}) {
	reportICE(format, args...)
}
