package ir

import (
	"fmt"

	"pirc/types"
)

// Op is the closed tag enumerating every PIR instruction variant. Per the
// "tag-dispatched variants replace single-inheritance hierarchies" design
// note, there is exactly one concrete Instruction type; Op plus the Aux
// payload stand in for what would otherwise be a class hierarchy.
type Op uint16

const (
	OpLdConst Op = iota
	OpLdVar
	OpLdVarSuper
	OpLdFun
	OpLdArg
	OpLdFunctionEnv
	OpLdDots
	OpStVar
	OpStVarSuper
	OpStArg

	OpMkEnv
	OpMaterializeEnv
	OpIsEnvStub

	OpMkArg
	OpUpdatePromise
	OpForce
	OpChkMissing
	OpChkClosure
	OpMissing

	OpMkCls
	OpMkFunCls

	OpAdd
	OpSub
	OpMul
	OpDiv
	OpIDiv
	OpMod
	OpPow
	OpLt
	OpLte
	OpGt
	OpGte
	OpEq
	OpNeq
	OpLAnd
	OpLOr
	OpPlus
	OpMinus
	OpNot

	OpExtract1_1D
	OpExtract1_2D
	OpExtract1_3D
	OpExtract2_1D
	OpExtract2_2D
	OpExtract2_3D
	OpSubassign1_1D
	OpSubassign1_2D
	OpSubassign1_3D
	OpSubassign2_1D
	OpSubassign2_2D
	OpSubassign2_3D

	OpIsType
	OpIs
	OpIsObject
	OpAsLogical
	OpAsTest
	OpCheckTrueFalse
	OpCastType

	OpCall
	OpNamedCall
	OpStaticCall
	OpCallBuiltin
	OpCallSafeBuiltin

	OpBranch
	OpReturn
	OpNonLocalReturn
	OpUnreachable
	OpPhi
	OpPirCopy
	OpNop
	OpInvisible
	OpVisible

	OpCheckpoint
	OpAssume
	OpFrameState
	OpScheduledDeopt
	OpRecordDeoptReason

	OpPushContext
	OpPopContext

	opCount
)

var opNames = [opCount]string{
	OpLdConst: "LdConst", OpLdVar: "LdVar", OpLdVarSuper: "LdVarSuper",
	OpLdFun: "LdFun", OpLdArg: "LdArg", OpLdFunctionEnv: "LdFunctionEnv",
	OpLdDots: "LdDots", OpStVar: "StVar", OpStVarSuper: "StVarSuper",
	OpStArg: "StArg",

	OpMkEnv: "MkEnv", OpMaterializeEnv: "MaterializeEnv", OpIsEnvStub: "IsEnvStub",

	OpMkArg: "MkArg", OpUpdatePromise: "UpdatePromise", OpForce: "Force",
	OpChkMissing: "ChkMissing", OpChkClosure: "ChkClosure", OpMissing: "Missing",

	OpMkCls: "MkCls", OpMkFunCls: "MkFunCls",

	OpAdd: "Add", OpSub: "Sub", OpMul: "Mul", OpDiv: "Div", OpIDiv: "IDiv",
	OpMod: "Mod", OpPow: "Pow", OpLt: "Lt", OpLte: "Lte", OpGt: "Gt",
	OpGte: "Gte", OpEq: "Eq", OpNeq: "Neq", OpLAnd: "LAnd", OpLOr: "LOr",
	OpPlus: "Plus", OpMinus: "Minus", OpNot: "Not",

	OpExtract1_1D: "Extract1_1D", OpExtract1_2D: "Extract1_2D", OpExtract1_3D: "Extract1_3D",
	OpExtract2_1D: "Extract2_1D", OpExtract2_2D: "Extract2_2D", OpExtract2_3D: "Extract2_3D",
	OpSubassign1_1D: "Subassign1_1D", OpSubassign1_2D: "Subassign1_2D", OpSubassign1_3D: "Subassign1_3D",
	OpSubassign2_1D: "Subassign2_1D", OpSubassign2_2D: "Subassign2_2D", OpSubassign2_3D: "Subassign2_3D",

	OpIsType: "IsType", OpIs: "Is", OpIsObject: "IsObject", OpAsLogical: "AsLogical",
	OpAsTest: "AsTest", OpCheckTrueFalse: "CheckTrueFalse", OpCastType: "CastType",

	OpCall: "Call", OpNamedCall: "NamedCall", OpStaticCall: "StaticCall",
	OpCallBuiltin: "CallBuiltin", OpCallSafeBuiltin: "CallSafeBuiltin",

	OpBranch: "Branch", OpReturn: "Return", OpNonLocalReturn: "NonLocalReturn",
	OpUnreachable: "Unreachable", OpPhi: "Phi", OpPirCopy: "PirCopy",
	OpNop: "Nop", OpInvisible: "Invisible", OpVisible: "Visible",

	OpCheckpoint: "Checkpoint", OpAssume: "Assume", OpFrameState: "FrameState",
	OpScheduledDeopt: "ScheduledDeopt", OpRecordDeoptReason: "RecordDeoptReason",

	OpPushContext: "PushContext", OpPopContext: "PopContext",
}

func (o Op) String() string {
	if int(o) < len(opNames) && opNames[o] != "" {
		return opNames[o]
	}
	return fmt.Sprintf("Op(%d)", o)
}

// Arity classifies how an instruction's argument count is determined.
type Arity uint8

const (
	FixedArity Arity = iota
	VarArity
)

// ControlKind classifies an instruction's role at the end of a BasicBlock.
type ControlKind uint8

const (
	NotControl ControlKind = iota
	ControlBranch
	ControlExit
)

// contract is the static, per-Op metadata §4.2 requires: arity kind,
// default effects (no pass in this module narrows them afterwards),
// whether the instruction carries an environment argument, and its
// control-flow role.
type contract struct {
	arity        Arity
	defaultFx    Effects
	envBearing   bool
	control      ControlKind
}

var contracts = map[Op]contract{
	OpLdConst:       {FixedArity, 0, false, NotControl},
	OpLdVar:         {FixedArity, ReadsEnv | Error, true, NotControl},
	OpLdVarSuper:    {FixedArity, ReadsEnv | Error, true, NotControl},
	OpLdFun:         {FixedArity, ReadsEnv | Error | ExecuteCode, true, NotControl},
	OpLdArg:         {FixedArity, 0, false, NotControl},
	OpLdFunctionEnv: {FixedArity, 0, false, NotControl},
	OpLdDots:        {FixedArity, ReadsEnv | Error, true, NotControl},
	OpStVar:         {FixedArity, WritesEnv, true, NotControl},
	OpStVarSuper:    {FixedArity, WritesEnv | LeaksEnv, true, NotControl},
	OpStArg:         {FixedArity, WritesEnv, true, NotControl},

	OpMkEnv:          {VarArity, LeaksEnv, false, NotControl},
	OpMaterializeEnv: {FixedArity, 0, false, NotControl},
	OpIsEnvStub:      {FixedArity, 0, false, NotControl},

	OpMkArg:         {FixedArity, 0, true, NotControl},
	OpUpdatePromise: {FixedArity, MutatesArgument, false, NotControl},
	OpForce:         {FixedArity, Force | Reflection | Visibility | Warn | Error | ExecuteCode, true, NotControl},
	OpChkMissing:    {FixedArity, Error, false, NotControl},
	OpChkClosure:    {FixedArity, Error, false, NotControl},
	OpMissing:       {FixedArity, ReadsEnv, true, NotControl},

	OpMkCls:    {FixedArity, LeakArg, true, NotControl},
	OpMkFunCls: {FixedArity, LeakArg, true, NotControl},

	OpAdd: {FixedArity, Error | Warn | Visibility | DependsOnAssume | ExecuteCode, true, NotControl},
	OpSub: {FixedArity, Error | Warn | Visibility | DependsOnAssume | ExecuteCode, true, NotControl},
	OpMul: {FixedArity, Error | Warn | Visibility | DependsOnAssume | ExecuteCode, true, NotControl},
	OpDiv: {FixedArity, Error | Warn | Visibility | DependsOnAssume | ExecuteCode, true, NotControl},
	OpIDiv: {FixedArity, Error | Warn | Visibility | DependsOnAssume | ExecuteCode, true, NotControl},
	OpMod: {FixedArity, Error | Warn | Visibility | DependsOnAssume | ExecuteCode, true, NotControl},
	OpPow: {FixedArity, Error | Warn | Visibility | DependsOnAssume | ExecuteCode, true, NotControl},
	OpLt:  {FixedArity, Error | Visibility | DependsOnAssume | ExecuteCode, true, NotControl},
	OpLte: {FixedArity, Error | Visibility | DependsOnAssume | ExecuteCode, true, NotControl},
	OpGt:  {FixedArity, Error | Visibility | DependsOnAssume | ExecuteCode, true, NotControl},
	OpGte: {FixedArity, Error | Visibility | DependsOnAssume | ExecuteCode, true, NotControl},
	OpEq:  {FixedArity, Error | Visibility | DependsOnAssume | ExecuteCode, true, NotControl},
	OpNeq: {FixedArity, Error | Visibility | DependsOnAssume | ExecuteCode, true, NotControl},
	OpLAnd: {FixedArity, Error | Visibility, false, NotControl},
	OpLOr:  {FixedArity, Error | Visibility, false, NotControl},
	OpPlus:  {FixedArity, Error | Warn | Visibility, true, NotControl},
	OpMinus: {FixedArity, Error | Warn | Visibility, true, NotControl},
	OpNot:   {FixedArity, Error | Visibility, true, NotControl},

	OpExtract1_1D: {FixedArity, Error | Visibility | ExecuteCode, true, NotControl},
	OpExtract1_2D: {FixedArity, Error | Visibility | ExecuteCode, true, NotControl},
	OpExtract1_3D: {FixedArity, Error | Visibility | ExecuteCode, true, NotControl},
	OpExtract2_1D: {FixedArity, Error | ExecuteCode, true, NotControl},
	OpExtract2_2D: {FixedArity, Error | ExecuteCode, true, NotControl},
	OpExtract2_3D: {FixedArity, Error | ExecuteCode, true, NotControl},
	OpSubassign1_1D: {VarArity, Error | Visibility | ExecuteCode | MutatesArgument, true, NotControl},
	OpSubassign1_2D: {VarArity, Error | Visibility | ExecuteCode | MutatesArgument, true, NotControl},
	OpSubassign1_3D: {VarArity, Error | Visibility | ExecuteCode | MutatesArgument, true, NotControl},
	OpSubassign2_1D: {VarArity, Error | ExecuteCode | MutatesArgument, true, NotControl},
	OpSubassign2_2D: {VarArity, Error | ExecuteCode | MutatesArgument, true, NotControl},
	OpSubassign2_3D: {VarArity, Error | ExecuteCode | MutatesArgument, true, NotControl},

	OpIsType:         {FixedArity, 0, false, NotControl},
	OpIs:              {FixedArity, 0, false, NotControl},
	OpIsObject:        {FixedArity, 0, false, NotControl},
	OpAsLogical:       {FixedArity, Error, false, NotControl},
	OpAsTest:          {FixedArity, Error, false, NotControl},
	OpCheckTrueFalse:  {FixedArity, Error, false, NotControl},
	OpCastType:        {FixedArity, Error, false, NotControl},

	OpCall:            {VarArity, AllEffects &^ (LeakArg), true, NotControl},
	OpNamedCall:        {VarArity, AllEffects &^ (LeakArg), true, NotControl},
	OpStaticCall:       {VarArity, AllEffects &^ (LeakArg | Warn), true, NotControl},
	OpCallBuiltin:       {VarArity, AllEffects &^ (LeakArg), true, NotControl},
	OpCallSafeBuiltin:    {VarArity, ExecuteCode, false, NotControl},

	OpBranch:          {FixedArity, 0, false, ControlBranch},
	OpReturn:          {FixedArity, 0, false, ControlExit},
	OpNonLocalReturn:  {FixedArity, ChangesContexts, false, ControlExit},
	OpUnreachable:     {FixedArity, 0, false, ControlExit},
	OpPhi:             {VarArity, 0, false, NotControl},
	OpPirCopy:         {FixedArity, 0, false, NotControl},
	OpNop:             {FixedArity, 0, false, NotControl},
	OpInvisible:       {FixedArity, Visibility, false, NotControl},
	OpVisible:         {FixedArity, Visibility, false, NotControl},

	OpCheckpoint:         {FixedArity, 0, false, ControlBranch},
	OpAssume:              {FixedArity, TriggerDeopt | DependsOnAssume, false, NotControl},
	OpFrameState:           {VarArity, 0, false, NotControl},
	OpScheduledDeopt:        {VarArity, TriggerDeopt, false, ControlExit},
	OpRecordDeoptReason:      {FixedArity, UpdatesMetadata, false, NotControl},

	OpPushContext: {VarArity, ChangesContexts, true, NotControl},
	OpPopContext:  {FixedArity, ChangesContexts, false, NotControl},
}

// Contract returns op's static metadata.
func Contract(op Op) contract { return contracts[op] }

// TypeFeedback is an optional per-instruction slot recording an observed
// runtime type at the RIR boundary, consulted by representation selection
// when the static PirType alone is too coarse (e.g. "Other").
type TypeFeedback struct {
	Observed types.PirType
	Sampled  bool
}

// MkEnvAux is the family-specific payload for MkEnv: the ordered binding
// names and, per-slot, whether that binding starts out as R_MissingArg. Two
// MkEnv instructions are identical only if both the op and this record
// match, per §4.2's "record of names & missing vector is part of the
// instruction's identity".
type MkEnvAux struct {
	Names   []string
	Missing []bool
	Stub    bool
}

// DeoptAux is ScheduledDeopt's payload: number of inlined frames and the
// reversed per-frame info, since PIR frames are recorded outermost-first
// but the interpreter wants innermost-first (top of stack) order.
type DeoptAux struct {
	NumFrames int
	Frames    []FrameInfo
}

// FrameInfo is one entry of a ScheduledDeopt's frame list.
type FrameInfo struct {
	CodeIndex int
	PC        int
	StackDepth int
}

// CallAux carries call-site metadata: argument names for NamedCall, and the
// resolved assumption Context for StaticCall.
type CallAux struct {
	ArgNames []string
	Context  uint64
	Builtin  string
}

// Instruction is the single concrete type standing in for the ≈120-variant
// tagged union: Op plus a family-specific Aux payload instead of a distinct
// Go type per variant.
type Instruction struct {
	id     int
	Op     Op
	Result types.PirType
	Fx     Effects
	SrcIdx int
	BB     *BasicBlock

	Args []Value
	Env  Value // nil unless Contract(Op).envBearing

	Feedback *TypeFeedback
	Aux      interface{} // MkEnvAux, DeoptAux, CallAux, or nil

	// Rep is filled in by the Lowerer's representation-selection pass; it
	// is RBottom (the zero value) until then.
	Rep types.Representation
}

func (i *Instruction) Type() types.PirType { return i.Result }
func (i *Instruction) ValueID() int        { return i.id }
func (i *Instruction) Repr() string        { return fmt.Sprintf("$%d", i.id) }

// Effects returns the instruction's current (possibly narrowed) effect set.
func (i *Instruction) Effects() Effects { return i.Fx }

// Arg returns the i'th argument value.
func (i *Instruction) Arg(idx int) Value { return i.Args[idx] }

// IsTerminator reports whether this instruction ends its BasicBlock.
func (i *Instruction) IsTerminator() bool {
	c := Contract(i.Op)
	return c.control == ControlBranch || c.control == ControlExit
}

// Clone makes a deep-by-value copy of i's own fields (Aux is copied by
// value where it is a plain struct) with a shallow copy of the Args/Env
// argument pointers, per §4.2 "Cloning". Clone assigns the copy a fresh
// value id from owner, which is why it takes the owning Code explicitly;
// the clone is not attached to any BasicBlock, so the caller must insert it.
func (i *Instruction) Clone(owner *Code) *Instruction {
	clone := &Instruction{
		id:     owner.nextValueID(),
		Op:     i.Op,
		Result: i.Result,
		Fx:     i.Fx,
		SrcIdx: i.SrcIdx,
		Args:   append([]Value(nil), i.Args...),
		Env:    i.Env,
		Rep:    i.Rep,
	}
	if i.Feedback != nil {
		fb := *i.Feedback
		clone.Feedback = &fb
	}
	switch aux := i.Aux.(type) {
	case MkEnvAux:
		clone.Aux = MkEnvAux{Names: append([]string(nil), aux.Names...), Missing: append([]bool(nil), aux.Missing...), Stub: aux.Stub}
	case DeoptAux:
		clone.Aux = DeoptAux{NumFrames: aux.NumFrames, Frames: append([]FrameInfo(nil), aux.Frames...)}
	case CallAux:
		clone.Aux = CallAux{ArgNames: append([]string(nil), aux.ArgNames...), Context: aux.Context, Builtin: aux.Builtin}
	}
	return clone
}

// ReplaceUsesWith rewrites every argument (and Env slot) across scope that
// points at old with new. scope nil means "every instruction in owner";
// a non-nil scope restricts replacement to instructions within it (used for
// dominator-region-limited or single-BB replacement).
func ReplaceUsesWith(owner *Code, old, new Value, scope func(*Instruction) bool) {
	visit := func(instr *Instruction) {
		if scope != nil && !scope(instr) {
			return
		}
		for idx, a := range instr.Args {
			if a == old {
				instr.Args[idx] = new
			}
		}
		if instr.Env == old {
			instr.Env = new
		}
	}

	for _, bb := range owner.BasicBlocks() {
		for _, instr := range bb.Instrs {
			visit(instr)
		}
	}
}
