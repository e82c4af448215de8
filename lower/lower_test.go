package lower

import (
	"strings"
	"testing"

	"pirc/ir"
	"pirc/types"
)

func lowerCode(t *testing.T, c *ir.Code) Result {
	t.Helper()
	l := New(c, EnsureNamed{}, PromiseIndex{}, DefaultConfig)
	return l.Lower(c.Name)
}

// buildScalarAdd builds a single-block unit computing arg+arg and
// returning it, both operands guaranteed scalar notObject integers, so the
// Lowerer should take the native-ALU fast path rather than calling binop.
func buildScalarAdd() *ir.Code {
	c := ir.NewCode("scalarAdd")
	entry := c.Entry()

	arg := c.Emit(entry, ir.OpLdArg, 0)
	arg.Result = types.Integer.Scalar().NotObject()

	add := c.Emit(entry, ir.OpAdd, 0)
	add.Args = []ir.Value{arg, arg}
	add.Env = nil
	add.Result = types.Integer.Scalar().NotObject()

	ret := c.Emit(entry, ir.OpReturn, 0)
	ret.Args = []ir.Value{add}

	return c
}

func TestLowerScalarAddSucceeds(t *testing.T) {
	res := lowerCode(t, buildScalarAdd())
	if !res.Ok {
		t.Fatalf("expected success, got failure: %s", res.Reason)
	}
	if res.Fn == nil {
		t.Fatalf("expected a non-nil generator result")
	}
}

// buildObjectAdd forces the boxed-builtin path by giving the operand an
// Other-tagged (potentially object) type.
func buildObjectAdd() *ir.Code {
	c := ir.NewCode("objectAdd")
	entry := c.Entry()

	arg := c.Emit(entry, ir.OpLdArg, 0)
	arg.Result = types.Other

	add := c.Emit(entry, ir.OpAdd, 0)
	add.Args = []ir.Value{arg, arg}
	add.Result = types.Other

	ret := c.Emit(entry, ir.OpReturn, 0)
	ret.Args = []ir.Value{add}

	return c
}

func TestLowerObjectAddTakesBoxedPath(t *testing.T) {
	res := lowerCode(t, buildObjectAdd())
	if !res.Ok {
		t.Fatalf("expected success via the boxed builtin path, got failure: %s", res.Reason)
	}
}

// buildDiamondWithPhi builds entry -> (left, right) -> join, left and right
// each defining a value the join block consumes via Phi, testing the
// branch/phi/return family together.
func buildDiamondWithPhi() *ir.Code {
	c := ir.NewCode("diamond")
	entry := c.Entry()
	left := c.NewBlock()
	right := c.NewBlock()
	join := c.NewBlock()

	arg := c.Emit(entry, ir.OpLdArg, 0)
	arg.Result = types.Integer.Scalar().NotObject()

	cmp := c.Emit(entry, ir.OpLt, 0)
	cmp.Args = []ir.Value{arg, arg}
	cmp.Result = types.Integer.Scalar().NotObject()

	br := c.Emit(entry, ir.OpBranch, 0)
	br.Args = []ir.Value{cmp}
	entry.SetSucc0(left)
	entry.SetSucc1(right)

	leftConst := c.Emit(left, ir.OpLdConst, 0)
	leftConst.Args = []ir.Value{ir.TrueValue}
	leftConst.Result = types.Logical.Scalar().NotObject()
	left.SetSucc0(join)

	rightConst := c.Emit(right, ir.OpLdConst, 0)
	rightConst.Args = []ir.Value{ir.FalseValue}
	rightConst.Result = types.Logical.Scalar().NotObject()
	right.SetSucc0(join)

	phi := c.Emit(join, ir.OpPhi, 0)
	phi.Args = []ir.Value{leftConst, rightConst}
	phi.Result = types.Logical.Scalar().NotObject()

	joinRet := c.Emit(join, ir.OpReturn, 0)
	joinRet.Args = []ir.Value{phi}

	return c
}

func TestLowerDiamondWithPhiSucceeds(t *testing.T) {
	res := lowerCode(t, buildDiamondWithPhi())
	if !res.Ok {
		t.Fatalf("expected success, got failure: %s", res.Reason)
	}
}

// buildForceOnNonLazy exercises Force elision: the argument's type already
// guarantees it is not promise-wrapped, so Force must not emit a call to
// forcePromise (it cannot be observed directly here, but the lowering
// itself must still succeed without needing an env argument Force would
// otherwise require).
func buildForceOnNonLazy() *ir.Code {
	c := ir.NewCode("forceElided")
	entry := c.Entry()

	arg := c.Emit(entry, ir.OpLdArg, 0)
	arg.Result = types.Integer.Scalar().NotObject()

	force := c.Emit(entry, ir.OpForce, 0)
	force.Args = []ir.Value{arg}
	force.Result = types.Integer.Scalar().NotObject()

	ret := c.Emit(entry, ir.OpReturn, 0)
	ret.Args = []ir.Value{force}

	return c
}

func TestLowerForceElisionSucceeds(t *testing.T) {
	res := lowerCode(t, buildForceOnNonLazy())
	if !res.Ok {
		t.Fatalf("expected success, got failure: %s", res.Reason)
	}
}

// buildUnsupportedLdFun exercises the clean-failure path: LdFun has no
// native lowering, so Lower must return Ok:false with a non-empty Reason
// rather than panicking out to the caller.
func buildUnsupportedLdFun() *ir.Code {
	c := ir.NewCode("usesLdFun")
	entry := c.Entry()

	env := c.Emit(entry, ir.OpMkEnv, 0)
	env.Aux = ir.MkEnvAux{Stub: true}
	env.Result = types.Env

	fn := c.Emit(entry, ir.OpLdFun, 0)
	fn.Env = env
	fn.Result = types.Closure

	ret := c.Emit(entry, ir.OpReturn, 0)
	ret.Args = []ir.Value{fn}

	return c
}

func TestLowerUnsupportedConstructFailsCleanly(t *testing.T) {
	res := lowerCode(t, buildUnsupportedLdFun())
	if res.Ok {
		t.Fatalf("expected a clean failure for LdFun, got success")
	}
	if !strings.Contains(res.Reason, "LdFun") {
		t.Fatalf("expected failure reason to mention LdFun, got %q", res.Reason)
	}
}

// buildRelopOnReals exercises the real-NaN self-inequality path indirectly
// via the representation widening rule: both operands are Real, so the
// relop must go through EmitFCmp rather than EmitICmp.
func buildRelopOnReals() *ir.Code {
	c := ir.NewCode("realRelop")
	entry := c.Entry()

	arg := c.Emit(entry, ir.OpLdArg, 0)
	arg.Result = types.Real.Scalar().NotObject()

	lt := c.Emit(entry, ir.OpLt, 0)
	lt.Args = []ir.Value{arg, arg}
	lt.Result = types.Logical.Scalar().NotObject()

	ret := c.Emit(entry, ir.OpReturn, 0)
	ret.Args = []ir.Value{lt}

	return c
}

func TestLowerRealRelopSucceeds(t *testing.T) {
	res := lowerCode(t, buildRelopOnReals())
	if !res.Ok {
		t.Fatalf("expected success, got failure: %s", res.Reason)
	}
}
