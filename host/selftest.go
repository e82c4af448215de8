package host

import (
	"pirc/ir"
	"pirc/lower"
	"pirc/types"
)

// TestResult is one named self-test's outcome, the granularity
// cmd/pirc's `selftest` subcommand renders as a pterm results table.
type TestResult struct {
	Name   string
	Passed bool
	Reason string
}

// selftestCase names a hand-built fixture and the outcome expected of
// lowering it, the same shape lower_test.go's build*/Test* pairs use,
// collected here under one entry point the way PirTests::run() collects
// the original's scattered case functions into a single run_tests() call.
type selftestCase struct {
	name       string
	build      func() *ir.Code
	wantOk     bool
	reasonHint string // if !wantOk, the failure Reason must contain this
}

var selftestCases = []selftestCase{
	{name: "scalar-add-native-path", build: buildSelftestScalarAdd, wantOk: true},
	{name: "boxed-add-dispatch", build: buildSelftestBoxedAdd, wantOk: true},
	{name: "branch-phi-join", build: buildSelftestDiamond, wantOk: true},
	{name: "force-elision", build: buildSelftestForceElision, wantOk: true},
	{name: "unsupported-construct-clean-failure", build: buildSelftestLdFun, wantOk: false, reasonHint: "LdFun"},
}

// RunTests is run_tests(): invokes the built-in compiler test suite and
// returns a report for every case, the way the original's PirTests::run()
// exercises a fixed battery of hand-built PIR/RIR programs.
func RunTests() []TestResult {
	results := make([]TestResult, 0, len(selftestCases))
	for _, c := range selftestCases {
		res := lower.New(c.build(), lower.EnsureNamed{}, lower.PromiseIndex{}, lower.DefaultConfig).
			Lower("selftest." + c.name)

		switch {
		case res.Ok && c.wantOk:
			results = append(results, TestResult{Name: c.name, Passed: true})
		case !res.Ok && !c.wantOk && containsHint(res.Reason, c.reasonHint):
			results = append(results, TestResult{Name: c.name, Passed: true})
		case res.Ok && !c.wantOk:
			results = append(results, TestResult{Name: c.name, Passed: false, Reason: "expected clean failure, lowering succeeded"})
		default:
			results = append(results, TestResult{Name: c.name, Passed: false, Reason: res.Reason})
		}
	}
	return results
}

func containsHint(reason, hint string) bool {
	if hint == "" {
		return true
	}
	for i := 0; i+len(hint) <= len(reason); i++ {
		if reason[i:i+len(hint)] == hint {
			return true
		}
	}
	return false
}

func buildSelftestScalarAdd() *ir.Code {
	c := ir.NewCode("scalarAdd")
	entry := c.Entry()

	arg := c.Emit(entry, ir.OpLdArg, 0)
	arg.Result = types.Integer.Scalar().NotObject()

	add := c.Emit(entry, ir.OpAdd, 0)
	add.Args = []ir.Value{arg, arg}
	add.Result = types.Integer.Scalar().NotObject()

	ret := c.Emit(entry, ir.OpReturn, 0)
	ret.Args = []ir.Value{add}
	return c
}

func buildSelftestBoxedAdd() *ir.Code {
	c := ir.NewCode("boxedAdd")
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

func buildSelftestDiamond() *ir.Code {
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

func buildSelftestForceElision() *ir.Code {
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

func buildSelftestLdFun() *ir.Code {
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
