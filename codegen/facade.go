// Package codegen is the native code-generator facade the Lowerer consumes
// (§6 "Toward the code generator"): function creation with the fixed
// six-argument signature, typed virtual registers, basic-block labels,
// branches, ALU ops, relative load/store, memset, alloca, native call, and
// int/float conversion. It is implemented by emitting real LLVM IR through
// github.com/llir/llvm (pure Go) rather than the cgo LLVM-C bindings the
// teacher's own llvm/*.go package wraps; see DESIGN.md for why.
package codegen

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// Generator wraps one LLVM module and tracks the function currently being
// emitted, the way bootstrap/codegen/generator.go's Generator tracks its
// ctx/mod/irb/body/varBlock.
type Generator struct {
	Module *ir.Module

	fn       *ir.Func
	body     *ir.Block // the block instructions are currently appended to
	varBlock *ir.Block // the entry block holding parameter allocas
	blocks   map[string]*ir.Block
	nTemp    int
}

// NewGenerator creates a Generator over a fresh module named name.
func NewGenerator(name string) *Generator {
	mod := ir.NewModule()
	mod.SourceFilename = name
	return &Generator{Module: mod}
}

// nativeSig is the fixed six-argument signature §4.4 mandates:
// (code*, ctx*, args_stack_cell*, env_sexp, closure_sexp, caller_code*) -> sexp.
// Every pointer parameter is modeled as an opaque i8* (LLVM has no notion of
// this module's SEXP/Context/stack-cell struct layouts; runtime.Offset
// relative loads are emitted as i8*-plus-offset-then-bitcast, exactly as
// the original's libjit lowering treats every boxed pointer as untyped
// bytes until a specific field is read).
func nativeSig() (ret types.Type, params []*ir.Param) {
	ptr := types.I8Ptr
	return ptr, []*ir.Param{
		ir.NewParam("code", ptr),
		ir.NewParam("ctx", ptr),
		ir.NewParam("args", ptr),
		ir.NewParam("env", ptr),
		ir.NewParam("closure", ptr),
		ir.NewParam("callerCode", ptr),
	}
}

// NewNativeFunc declares a function with the fixed native signature and
// opens its entry ("var") block the way generateBodyPredicate does: an
// entry block for parameter storage, then a first real block the entry
// falls through to.
func (g *Generator) NewNativeFunc(name string) *ir.Func {
	ret, params := nativeSig()
	fn := g.Module.NewFunc(name, ret, params...)
	g.fn = fn
	g.blocks = map[string]*ir.Block{}

	g.varBlock = fn.NewBlock(name + ".entry")
	first := g.NewBasicBlock(name + ".bb0")
	g.varBlock.NewBr(first)
	g.body = first

	return fn
}

// Param returns the idx'th of the six fixed native parameters.
func (g *Generator) Param(idx int) value.Value { return g.fn.Params[idx] }

// ParamCode, ParamCtx, ParamArgs, ParamEnv, ParamClosure, ParamCallerCode
// name the six fixed parameters, mirroring
// rir/src/compiler/native/lower.cpp's paramCode/paramCtx/paramArgs/
// paramEnv/paramClosure accessors (plus the sixth, callerCode, which the
// original threads through the same way).
func (g *Generator) ParamCode() value.Value       { return g.Param(0) }
func (g *Generator) ParamCtx() value.Value        { return g.Param(1) }
func (g *Generator) ParamArgs() value.Value       { return g.Param(2) }
func (g *Generator) ParamEnv() value.Value        { return g.Param(3) }
func (g *Generator) ParamClosure() value.Value    { return g.Param(4) }
func (g *Generator) ParamCallerCode() value.Value { return g.Param(5) }

// NewBasicBlock allocates and registers a labeled block, without making it
// current.
func (g *Generator) NewBasicBlock(label string) *ir.Block {
	bb := g.fn.NewBlock(label)
	g.blocks[label] = bb
	return bb
}

// SetCurrent switches the block subsequent Emit* calls append to.
func (g *Generator) SetCurrent(bb *ir.Block) { g.body = bb }

// Current returns the block currently being appended to.
func (g *Generator) Current() *ir.Block { return g.body }

// NewVReg allocates a fresh virtual register name for debug/IR readability;
// llir/llvm assigns real SSA identity to the *ir.Value it returns, this
// just keeps names stable and inspectable in disassembly.
func (g *Generator) NewVReg(prefix string) string {
	g.nTemp++
	return fmt.Sprintf("%s.%d", prefix, g.nTemp)
}

// --- typed virtual registers / conversions --------------------------------

// EmitAlloca reserves stack space for typ, in the entry (var) block, the
// way generateBodyPredicate hoists parameter allocas there.
func (g *Generator) EmitAlloca(typ types.Type) *ir.InstAlloca {
	inst := g.varBlock.NewAlloca(typ)
	return inst
}

// EmitIntConst / EmitRealConst materialize scalar constants directly,
// without going through the constant pool (§4.4 rule 1).
func (g *Generator) EmitIntConst(v int32) value.Value {
	return constant.NewInt(types.I32, int64(v))
}
func (g *Generator) EmitRealConst(v float64) value.Value {
	return constant.NewFloat(types.Double, v)
}

// EmitIntToReal / EmitRealToInt are the NA-unaware native conversions
// §4.4's box/unbox rules call for: callers must have already ensured
// NA-safety via an explicit compare before calling these.
func (g *Generator) EmitIntToReal(v value.Value) value.Value {
	return g.body.NewSIToFP(v, types.Double)
}
func (g *Generator) EmitRealToInt(v value.Value) value.Value {
	return g.body.NewFPToSI(v, types.I32)
}

// EmitBoolToInt widens an i1 compare result to the Integer representation's
// i32, the way every relop's non-NA result is carried forward.
func (g *Generator) EmitBoolToInt(v value.Value) value.Value {
	return g.body.NewZExt(v, types.I32)
}

// --- ALU ---------------------------------------------------------------

func (g *Generator) EmitIAdd(a, b value.Value) value.Value { return g.body.NewAdd(a, b) }
func (g *Generator) EmitISub(a, b value.Value) value.Value { return g.body.NewSub(a, b) }
func (g *Generator) EmitIMul(a, b value.Value) value.Value { return g.body.NewMul(a, b) }
func (g *Generator) EmitSDiv(a, b value.Value) value.Value { return g.body.NewSDiv(a, b) }
func (g *Generator) EmitSRem(a, b value.Value) value.Value { return g.body.NewSRem(a, b) }

func (g *Generator) EmitFAdd(a, b value.Value) value.Value { return g.body.NewFAdd(a, b) }
func (g *Generator) EmitFSub(a, b value.Value) value.Value { return g.body.NewFSub(a, b) }
func (g *Generator) EmitFMul(a, b value.Value) value.Value { return g.body.NewFMul(a, b) }
func (g *Generator) EmitFDiv(a, b value.Value) value.Value { return g.body.NewFDiv(a, b) }

func (g *Generator) EmitIOr(a, b value.Value) value.Value { return g.body.NewOr(a, b) }

// EmitSelect picks a or b based on cond without branching, the mechanism
// every sentinel short-circuit (NA propagation) uses in place of a real
// control-flow join.
func (g *Generator) EmitSelect(cond, a, b value.Value) value.Value {
	return g.body.NewSelect(cond, a, b)
}

// EmitICmp / EmitFCmp emit a relop, yielding an i1: relops always lower to
// an Integer(i1)-representation internally per §4.4 rule 5.
func (g *Generator) EmitICmp(pred enum.IPred, a, b value.Value) value.Value {
	return g.body.NewICmp(pred, a, b)
}
func (g *Generator) EmitFCmp(pred enum.FPred, a, b value.Value) value.Value {
	return g.body.NewFCmp(pred, a, b)
}

// EmitSelfInequality tests v != v, the real-NaN round-trip detector §4.4
// rule 4 and §8's Round-trip NA property both specify.
func (g *Generator) EmitSelfInequality(v value.Value) value.Value {
	return g.body.NewFCmp(enum.FPredONE, v, v)
}

// --- control flow --------------------------------------------------------

func (g *Generator) EmitCondBr(cond value.Value, trueBB, falseBB *ir.Block) {
	g.body.NewCondBr(cond, trueBB, falseBB)
}

func (g *Generator) EmitBr(target *ir.Block) {
	g.body.NewBr(target)
}

func (g *Generator) EmitRet(v value.Value) {
	g.body.NewRet(v)
}

func (g *Generator) EmitUnreachable() {
	g.body.NewUnreachable()
}

// --- memory ---------------------------------------------------------------

// EmitRelativeLoad loads typ from base+offset bytes, the mechanism every
// Boxed->Integer/Real unbox and every sxpinfo/binding-cache probe uses.
func (g *Generator) EmitRelativeLoad(base value.Value, offset int64, typ types.Type) value.Value {
	addr := g.gepByte(base, offset)
	casted := g.body.NewBitCast(addr, types.NewPointer(typ))
	return g.body.NewLoad(typ, casted)
}

// EmitRelativeStore stores v to base+offset bytes.
func (g *Generator) EmitRelativeStore(base value.Value, offset int64, v value.Value) {
	addr := g.gepByte(base, offset)
	casted := g.body.NewBitCast(addr, types.NewPointer(v.Type()))
	g.body.NewStore(v, casted)
}

func (g *Generator) gepByte(base value.Value, offset int64) value.Value {
	return g.body.NewGetElementPtr(types.I8, base, constant.NewInt(types.I64, offset))
}

// EmitMemset zeroes n bytes starting at dst: used to initialize the local
// stack slots the GC safepoint protocol reserves.
func (g *Generator) EmitMemset(dst value.Value, n int64) {
	zero := constant.NewInt(types.I8, 0)
	for i := int64(0); i < n; i++ {
		g.EmitRelativeStore(dst, i, zero)
	}
}

// --- calls -----------------------------------------------------------------

// EmitNativeCall declares (if not already declared) and calls an external
// function with the given explicit signature, the mechanism every builtin
// invocation in runtime.Signatures goes through.
func (g *Generator) EmitNativeCall(name string, retType types.Type, argTypes []types.Type, args ...value.Value) value.Value {
	fn := g.declareOrReuse(name, retType, argTypes)
	return g.body.NewCall(fn, args...)
}

func (g *Generator) declareOrReuse(name string, retType types.Type, argTypes []types.Type) *ir.Func {
	for _, f := range g.Module.Funcs {
		if f.GlobalIdent.Name() == name {
			return f
		}
	}
	params := make([]*ir.Param, len(argTypes))
	for i, t := range argTypes {
		params[i] = ir.NewParam("", t)
	}
	return g.Module.NewFunc(name, retType, params...)
}
