package lower

import (
	"github.com/llir/llvm/ir/enum"
	llvmtypes "github.com/llir/llvm/ir/types"

	"pirc/ir"
	"pirc/runtime"
	"pirc/types"
)

var binopBuiltinKind = map[ir.Op]int32{
	ir.OpAdd: 0, ir.OpSub: 1, ir.OpMul: 2, ir.OpDiv: 3, ir.OpIDiv: 4, ir.OpMod: 5, ir.OpPow: 6,
	ir.OpLt: 7, ir.OpLte: 8, ir.OpGt: 9, ir.OpGte: 10, ir.OpEq: 11, ir.OpNeq: 12,
}

// naSentinelInt is the boxed-integer NA bit pattern; the Lowerer compares
// against it directly rather than calling a builtin, per §4.4 rule 4.
const naSentinelInt int32 = -2147483648

// lowerBinop implements §4.4 rule 4 for the arithmetic family: if both
// operands are unboxed and neither may be an object, emit native ALU ops
// with NA propagation; otherwise call the boxed builtin.
func (l *Lowerer) lowerBinop(instr *ir.Instruction) {
	a, b := instr.Args[0], instr.Args[1]
	repA, repB := l.RepOf(a), l.RepOf(b)

	if repA == types.RBoxed || repB == types.RBoxed || a.Type().MaybeObj() || b.Type().MaybeObj() {
		l.callBoxedBinop(instr, a, b)
		return
	}

	rep := repA.Merge(repB)
	va := l.materialize(a, rep)
	vb := l.materialize(b, rep)

	result := l.emitNativeArith(instr.Op, rep, va, vb)
	l.storeNative(instr, rep, result)
}

func (l *Lowerer) emitNativeArith(op ir.Op, rep types.Representation, a, b llvmValue) llvmValue {
	if rep == types.RReal {
		switch op {
		case ir.OpAdd:
			return l.gen.EmitFAdd(a, b)
		case ir.OpSub:
			return l.gen.EmitFSub(a, b)
		case ir.OpMul:
			return l.gen.EmitFMul(a, b)
		case ir.OpDiv:
			return l.gen.EmitFDiv(a, b)
		default:
			unsupported("%s has no native real fast path", op)
		}
	}

	// Integer: any operand equal to the NA sentinel short-circuits to NA
	// (§4.4 rule 4: "any integer operand equal to the sentinel NA value
	// short-circuits to NA result"), mirroring compileBinop's explicit
	// NA_INTEGER check on both operands before doing the arithmetic.
	naConst := l.gen.EmitIntConst(naSentinelInt)
	naA := l.gen.EmitICmp(enum.IPredEQ, a, naConst)
	naB := l.gen.EmitICmp(enum.IPredEQ, b, naConst)
	isNA := l.gen.EmitIOr(naA, naB)

	var raw llvmValue
	switch op {
	case ir.OpAdd:
		raw = l.gen.EmitIAdd(a, b)
	case ir.OpSub:
		raw = l.gen.EmitISub(a, b)
	case ir.OpMul:
		raw = l.gen.EmitIMul(a, b)
	case ir.OpIDiv:
		raw = l.gen.EmitSDiv(a, b)
	case ir.OpMod:
		raw = l.gen.EmitSRem(a, b)
	default:
		unsupported("%s has no native integer fast path", op)
		return nil
	}

	return l.gen.EmitSelect(isNA, naConst, raw)
}

func (l *Lowerer) callBoxedBinop(instr *ir.Instruction, a, b ir.Value) {
	kind := binopBuiltinKind[instr.Op]
	l.emitGCSafepoint(instr, -1, false)

	if instr.Env != nil {
		sig := runtime.Sig(runtime.BinOpEnv)
		res := l.gen.EmitNativeCall(sig.Name, llvmtypes.I8Ptr,
			[]llvmtypes.Type{llvmtypes.I8Ptr, llvmtypes.I8Ptr, llvmtypes.I32, llvmtypes.I8Ptr},
			l.materialize(a, types.RBoxed), l.materialize(b, types.RBoxed), l.gen.EmitIntConst(kind), l.materialize(instr.Env, types.RBoxed))
		l.storeNative(instr, types.RBoxed, res)
		return
	}

	sig := runtime.Sig(runtime.BinOp)
	res := l.gen.EmitNativeCall(sig.Name, llvmtypes.I8Ptr,
		[]llvmtypes.Type{llvmtypes.I8Ptr, llvmtypes.I8Ptr, llvmtypes.I32},
		l.materialize(a, types.RBoxed), l.materialize(b, types.RBoxed), l.gen.EmitIntConst(kind))
	l.storeNative(instr, types.RBoxed, res)
}

// lowerRelop implements rules 4-5: relops always yield an Integer
// representation internally (the comparison's 0/1 result, short-circuited
// to the NA_INTEGER sentinel if either operand is NA); boxing to logical
// only happens if a later consumer needs a boxed value, via the normal
// materialize() box path.
func (l *Lowerer) lowerRelop(instr *ir.Instruction) {
	a, b := instr.Args[0], instr.Args[1]
	repA, repB := l.RepOf(a), l.RepOf(b)

	if repA == types.RBoxed || repB == types.RBoxed || a.Type().MaybeObj() || b.Type().MaybeObj() {
		l.callBoxedBinop(instr, a, b)
		return
	}

	rep := repA.Merge(repB)
	va := l.materialize(a, rep)
	vb := l.materialize(b, rep)

	// Either operand being NA short-circuits the relop to the NA_INTEGER
	// sentinel, per compileRelop: Integer NA is the sentinel value, Real
	// NA is detected by self-inequality (x != x).
	var naA, naB, cmp llvmValue
	if rep == types.RReal {
		naA = l.gen.EmitSelfInequality(va)
		naB = l.gen.EmitSelfInequality(vb)
		cmp = l.gen.EmitFCmp(relopFPred(instr.Op), va, vb)
	} else {
		naConst := l.gen.EmitIntConst(naSentinelInt)
		naA = l.gen.EmitICmp(enum.IPredEQ, va, naConst)
		naB = l.gen.EmitICmp(enum.IPredEQ, vb, naConst)
		cmp = l.gen.EmitICmp(relopIPred(instr.Op), va, vb)
	}
	isNA := l.gen.EmitIOr(naA, naB)

	result := l.gen.EmitSelect(isNA, l.gen.EmitIntConst(naSentinelInt), l.gen.EmitBoolToInt(cmp))
	l.storeNative(instr, types.RInteger, result)
}

func relopIPred(op ir.Op) enum.IPred {
	switch op {
	case ir.OpLt:
		return enum.IPredSLT
	case ir.OpLte:
		return enum.IPredSLE
	case ir.OpGt:
		return enum.IPredSGT
	case ir.OpGte:
		return enum.IPredSGE
	case ir.OpEq:
		return enum.IPredEQ
	case ir.OpNeq:
		return enum.IPredNE
	default:
		unsupported("%s is not a relop", op)
		return 0
	}
}

func relopFPred(op ir.Op) enum.FPred {
	switch op {
	case ir.OpLt:
		return enum.FPredOLT
	case ir.OpLte:
		return enum.FPredOLE
	case ir.OpGt:
		return enum.FPredOGT
	case ir.OpGte:
		return enum.FPredOGE
	case ir.OpEq:
		return enum.FPredOEQ
	case ir.OpNeq:
		return enum.FPredONE
	default:
		unsupported("%s is not a relop", op)
		return 0
	}
}

// lowerUnop handles Plus/Minus/Not: unlike binops these never take an env
// fast path distinction beyond the same object check.
func (l *Lowerer) lowerUnop(instr *ir.Instruction) {
	a := instr.Args[0]
	if l.RepOf(a) == types.RBoxed || a.Type().MaybeObj() {
		l.emitGCSafepoint(instr, -1, false)
		sig := runtime.Sig(runtime.BinOp)
		res := l.gen.EmitNativeCall(sig.Name, llvmtypes.I8Ptr, []llvmtypes.Type{llvmtypes.I8Ptr}, l.materialize(a, types.RBoxed))
		l.storeNative(instr, types.RBoxed, res)
		return
	}

	rep := l.RepOf(a)
	va := l.materialize(a, rep)
	switch instr.Op {
	case ir.OpPlus:
		l.storeNative(instr, rep, va)
	case ir.OpMinus:
		if rep == types.RReal {
			l.storeNative(instr, rep, l.gen.EmitFSub(l.gen.EmitRealConst(0), va))
		} else {
			l.storeNative(instr, rep, l.gen.EmitISub(l.gen.EmitIntConst(0), va))
		}
	case ir.OpNot:
		l.storeNative(instr, types.RInteger, l.gen.EmitICmp(enum.IPredEQ, va, l.gen.EmitIntConst(0)))
	}
}

// lowerLogicalBinop handles LAnd/LOr, which per §4.2 carry no env slot and
// always dispatch through the Error|Visibility boxed path since short-
// circuit evaluation interacts with laziness in ways this Lowerer does not
// fast-path.
func (l *Lowerer) lowerLogicalBinop(instr *ir.Instruction) {
	l.callBoxedBinop(instr, instr.Args[0], instr.Args[1])
}
