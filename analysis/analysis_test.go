package analysis

import (
	"testing"

	"pirc/ir"
	"pirc/types"
)

// buildDiamond builds entry -> (left, right) -> join -> exit, with a Lt
// branch in entry and a Phi-less join (Phi wiring is exercised in lower's
// tests); used to exercise CFG/dominator/liveness shape.
func buildDiamond() (*ir.Code, *ir.BasicBlock, *ir.BasicBlock, *ir.BasicBlock, *ir.BasicBlock) {
	c := ir.NewCode("diamond")
	entry := c.Entry()
	left := c.NewBlock()
	right := c.NewBlock()
	join := c.NewBlock()

	arg := c.Emit(entry, ir.OpLdArg, 0)
	arg.Result = types.Integer.Scalar().NotObject()

	cmp := c.Emit(entry, ir.OpLt, 0)
	cmp.Args = []ir.Value{arg, arg}
	cmp.Result = types.NativeTest

	br := c.Emit(entry, ir.OpBranch, 0)
	br.Args = []ir.Value{cmp}
	entry.SetSucc0(left)
	entry.SetSucc1(right)

	leftRet := c.Emit(left, ir.OpReturn, 0)
	leftRet.Args = []ir.Value{arg}
	left.SetSucc0(join)

	rightRet := c.Emit(right, ir.OpReturn, 0)
	rightRet.Args = []ir.Value{arg}
	right.SetSucc0(join)

	joinRet := c.Emit(join, ir.OpReturn, 0)
	joinRet.Args = []ir.Value{arg}

	return c, entry, left, right, join
}

func TestCFGReversePostOrderStartsAtEntry(t *testing.T) {
	c, entry, _, _, _ := buildDiamond()
	cfg := BuildCFG(c)

	rpo := cfg.ReversePostOrder()
	if len(rpo) == 0 || rpo[0] != entry {
		t.Fatalf("RPO must start at the entry block")
	}
}

func TestDominatorsJoinDominatedByEntry(t *testing.T) {
	c, entry, _, _, join := buildDiamond()
	dom := BuildDominators(BuildCFG(c))

	if !dom.Dominates(entry, join) {
		t.Fatalf("entry should dominate join")
	}
	if dom.Dominates(join, entry) {
		t.Fatalf("join should not dominate entry")
	}
}

func TestDominatorsNeitherBranchDominatesJoin(t *testing.T) {
	c, _, left, right, join := buildDiamond()
	dom := BuildDominators(BuildCFG(c))

	if dom.Dominates(left, join) {
		t.Fatalf("left alone should not dominate join: right is another path in")
	}
	if dom.Dominates(right, join) {
		t.Fatalf("right alone should not dominate join")
	}
}

func TestLivenessArgLiveAcrossBranch(t *testing.T) {
	c, entry, left, right, _ := buildDiamond()
	liveness := BuildLiveness(BuildCFG(c))

	argVal := entry.Instrs[0]
	if !liveness.LiveOut(entry)[ir.Value(argVal)] {
		t.Fatalf("arg is used in both branches, so it must be live-out of entry")
	}
	if !liveness.LiveIn(left)[ir.Value(argVal)] || !liveness.LiveIn(right)[ir.Value(argVal)] {
		t.Fatalf("arg must be live-in to both left and right")
	}
}

func TestVisitorLoweringOrderRespectsForwardEdges(t *testing.T) {
	c, entry, _, _, join := buildDiamond()
	cfg := BuildCFG(c)
	v := NewVisitor(cfg, BuildDominators(cfg))

	order := v.LoweringOrder()
	pos := map[*ir.BasicBlock]int{}
	for i, bb := range order {
		pos[bb] = i
	}

	if pos[entry] >= pos[join] {
		t.Fatalf("entry must be emitted before join")
	}
}

func TestBuildLivenessForAllCoversPromises(t *testing.T) {
	root := ir.NewCode("root")
	promiseBody := ir.NewCode("p0")
	root.AddPromise(promiseBody)

	results, err := BuildLivenessForAll(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := results[root]; !ok {
		t.Fatalf("missing liveness for root unit")
	}
	if _, ok := results[promiseBody]; !ok {
		t.Fatalf("missing liveness for promise body")
	}
}
