package runtime

// Offset is a byte offset from the start of a boxed value's header-aligned
// prefix, used by the Lowerer to emit relative loads/stores without going
// through a builtin call. Grounded on rir/src/compiler/native/lower.cpp's
// field-offset constants (cpOfs, carOfs, prValueOfs, sxpinfofOfs).
type Offset int

const (
	// SxpInfoOffset is where the type-tag/object/scalar header word lives;
	// IsType/IsObject/AsTest compile to a masked load here.
	SxpInfoOffset Offset = 0

	// ScalarValueOffset is where an unboxed int/double payload begins for
	// a scalar, notObject, noAttribs vector: the Boxed<->Integer/Real
	// conversions in §4.4's box/unbox rules load/store here directly.
	ScalarValueOffset Offset = 8

	// PromiseValueOffset is the forced-value slot inside a Promise's
	// header, read by Force once the promise is known already-forced.
	PromiseValueOffset Offset = 16

	// PromiseCodeOffset and PromiseEnvOffset locate a not-yet-forced
	// promise's code index and environment.
	PromiseCodeOffset Offset = 24
	PromiseEnvOffset  Offset = 32

	// EnvFrameOffset is where an environment's binding frame (the list of
	// name/value cons cells the binding cache probes) begins.
	EnvFrameOffset Offset = 8

	// EnvParentOffset locates an environment's parent-chain pointer, read
	// by LdVarSuper.
	EnvParentOffset Offset = 16

	// ConstantPoolBaseSymbol and NodeStackTopSymbol name the two
	// process-wide pointer symbols the Lowerer calls: the pool base on
	// every constant-pool load, the node-stack top once in the prologue.
	ConstantPoolBaseSymbol = "R_ConstantPoolBase"
	NodeStackTopSymbol     = "R_BCNodeStackTop"
	VisibleFlagSymbol      = "R_Visible"
)
