// Package runtime describes the external collaborators the core only calls
// through named operations: the builtin table, the constant pool, the
// promise/closure/environment field layout the Lowerer's relative loads
// depend on, and the per-closure dispatch table.
package runtime

import "pirc/types"

// Builtin identifies one of the fixed, named runtime entry points the
// Lowerer emits native calls to. Grounded on common/operator.go's
// enumerated-ID-plus-signature-table shape.
type Builtin uint8

const (
	BinOp Builtin = iota
	BinOpEnv
	LdVarBuiltin
	LdVarCacheMiss
	StVarBuiltin
	LdFunBuiltin
	CallBuiltinEntry
	CallBuiltinBuiltin
	ForcePromise
	CreatePromise
	CreateEnvironment
	ConsNrTagged
	ConsNrTaggedMissing
	NewInt
	NewReal
	NewLgl
	NewIntFromReal
	NewRealFromInt
	NewLglFromReal
	AsLogicalBuiltin
	AsTestBuiltin
	LengthBuiltin
	ErrorBuiltin
	DeoptBuiltin

	builtinCount
)

// Signature is a builtin's fixed arity and declared argument/result types,
// exactly what the Lowerer needs to emit a well-typed native call.
type Signature struct {
	Name    string
	Arity   int // -1 means variable arity (e.g. call with N arguments)
	Args    []types.PirType
	Result  types.PirType
	MayGC   bool // whether a GC safepoint must precede this call
}

// boxed is shorthand for "some boxed host value", used where a builtin's
// argument/result type is not narrowed further than "any SEXP".
var boxed = types.AnyHost

// Signatures is the fixed builtin table named in §6.
var Signatures = [builtinCount]Signature{
	BinOp:               {"binop", 3, []types.PirType{boxed, boxed, types.Integer}, boxed, true},
	BinOpEnv:             {"binopEnv", 4, []types.PirType{boxed, boxed, types.Integer, types.Env}, boxed, true},
	LdVarBuiltin:          {"ldvar", 2, []types.PirType{types.Sym, types.Env}, boxed, true},
	LdVarCacheMiss:         {"ldvarCacheMiss", 3, []types.PirType{types.Sym, types.Env, boxed}, boxed, true},
	StVarBuiltin:           {"stvar", 3, []types.PirType{types.Sym, boxed, types.Env}, types.Nil, true},
	LdFunBuiltin:            {"ldfun", 2, []types.PirType{types.Sym, types.Env}, boxed, true},
	CallBuiltinEntry:         {"call", -1, nil, boxed, true},
	CallBuiltinBuiltin:        {"callBuiltin", -1, nil, boxed, true},
	ForcePromise:                {"forcePromise", 1, []types.PirType{types.Promise}, boxed, true},
	CreatePromise:                {"createPromise", 2, []types.PirType{types.Code, types.Env}, types.Promise, true},
	CreateEnvironment:             {"createEnvironment", 2, []types.PirType{types.Env, types.Integer}, types.Env, true},
	ConsNrTagged:                   {"consNrTagged", 2, []types.PirType{boxed, boxed}, types.ListPair, true},
	ConsNrTaggedMissing:             {"consNrTaggedMissing", 1, []types.PirType{boxed}, types.ListPair, true},
	NewInt:                           {"newInt", 1, []types.PirType{types.Integer}, boxed, true},
	NewReal:                           {"newReal", 1, []types.PirType{types.Real}, boxed, true},
	NewLgl:                            {"newLgl", 1, []types.PirType{types.Integer}, boxed, true},
	NewIntFromReal:                    {"newIntFromReal", 1, []types.PirType{types.Real}, boxed, true},
	NewRealFromInt:                    {"newRealFromInt", 1, []types.PirType{types.Integer}, boxed, true},
	NewLglFromReal:                    {"newLglFromReal", 1, []types.PirType{types.Real}, boxed, true},
	AsLogicalBuiltin:                   {"asLogical", 1, []types.PirType{boxed}, types.Integer, true},
	AsTestBuiltin:                       {"asTest", 1, []types.PirType{boxed}, types.NativeTest, false},
	LengthBuiltin:                        {"length", 1, []types.PirType{boxed}, types.Integer, false},
	ErrorBuiltin:                          {"error", -1, nil, types.NativeVoid, true},
	DeoptBuiltin:                           {"deopt", 1, []types.PirType{boxed}, types.NativeVoid, true},
}

// Sig returns b's signature.
func Sig(b Builtin) Signature { return Signatures[b] }
