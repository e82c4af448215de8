package analysis

import (
	"context"

	"golang.org/x/sync/errgroup"

	"pirc/ir"
)

// Interval is the [start, end] instruction-position range (within a single
// BasicBlock's flattened position space; cross-block liveness is tracked
// separately via LiveIn/LiveOut) over which a value is live.
type Interval struct {
	Start, End int
}

// Liveness holds, per BasicBlock, the set of values live on entry and on
// exit, per the standard backward may-be-used-later dataflow fixpoint.
type Liveness struct {
	cfg     *CFG
	liveIn  map[*ir.BasicBlock]map[ir.Value]bool
	liveOut map[*ir.BasicBlock]map[ir.Value]bool
}

// BuildLiveness computes live-in/live-out sets for every block in cfg.
func BuildLiveness(cfg *CFG) *Liveness {
	l := &Liveness{
		cfg:     cfg,
		liveIn:  make(map[*ir.BasicBlock]map[ir.Value]bool),
		liveOut: make(map[*ir.BasicBlock]map[ir.Value]bool),
	}

	blocks := cfg.ReversePostOrder()
	for _, bb := range blocks {
		l.liveIn[bb] = map[ir.Value]bool{}
		l.liveOut[bb] = map[ir.Value]bool{}
	}

	changed := true
	for changed {
		changed = false
		for i := len(blocks) - 1; i >= 0; i-- {
			bb := blocks[i]

			out := map[ir.Value]bool{}
			for _, s := range bb.Successors() {
				for v := range l.liveIn[s] {
					out[v] = true
				}
			}

			in := map[ir.Value]bool{}
			for v := range out {
				in[v] = true
			}
			for idx := len(bb.Instrs) - 1; idx >= 0; idx-- {
				instr := bb.Instrs[idx]
				delete(in, ir.Value(instr))
				for _, a := range instr.Args {
					if _, ok := a.(*ir.Instruction); ok {
						in[a] = true
					}
				}
				if instr.Env != nil {
					if _, ok := instr.Env.(*ir.Instruction); ok {
						in[instr.Env] = true
					}
				}
			}

			if !setEqual(in, l.liveIn[bb]) || !setEqual(out, l.liveOut[bb]) {
				l.liveIn[bb] = in
				l.liveOut[bb] = out
				changed = true
			}
		}
	}

	return l
}

func setEqual(a, b map[ir.Value]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

// LiveIn returns the set of values live on entry to bb.
func (l *Liveness) LiveIn(bb *ir.BasicBlock) map[ir.Value]bool { return l.liveIn[bb] }

// LiveOut returns the set of values live on exit from bb.
func (l *Liveness) LiveOut(bb *ir.BasicBlock) map[ir.Value]bool { return l.liveOut[bb] }

// LiveAt returns the values live immediately after instr within its block
// (live-out of the block plus the uses of everything after instr), minus
// instr's own result; instr's own arguments are not added, which is why the
// Lowerer's GC safepoint has a separate protectArgs option.
func (l *Liveness) LiveAt(instr *ir.Instruction) map[ir.Value]bool {
	bb := instr.BB
	live := map[ir.Value]bool{}
	for v := range l.liveOut[bb] {
		live[v] = true
	}

	for idx := len(bb.Instrs) - 1; idx >= 0; idx-- {
		cur := bb.Instrs[idx]
		if cur == instr {
			delete(live, ir.Value(instr))
			return live
		}
		delete(live, ir.Value(cur))
		for _, a := range cur.Args {
			if _, ok := a.(*ir.Instruction); ok {
				live[a] = true
			}
		}
		if cur.Env != nil {
			if _, ok := cur.Env.(*ir.Instruction); ok {
				live[cur.Env] = true
			}
		}
	}
	return live
}

// MaxLive bounds the number of simultaneously-live values matching keep
// across the whole Code unit; the Lowerer calls this with a predicate that
// keeps only boxed-representation values to size its local stack slot
// reservation.
func (l *Liveness) MaxLive(keep func(ir.Value) bool) int {
	max := 0
	for bb := range l.liveIn {
		for _, instr := range bb.Instrs {
			n := 0
			for v := range l.LiveAt(instr) {
				if keep(v) {
					n++
				}
			}
			if n > max {
				max = n
			}
		}
	}
	return max
}

// BuildLivenessForAll computes Liveness for a Code unit and every Promise
// body it owns, concurrently: each Code unit's dataflow fixpoint is
// independent of its siblings', the same concurrency shape as per-file
// parsing elsewhere in this codebase's lineage, expressed with errgroup
// instead of a bare WaitGroup so the first analysis failure (were one
// possible; today BuildLiveness cannot fail) would cancel the rest.
func BuildLivenessForAll(root *ir.Code) (map[*ir.Code]*Liveness, error) {
	units := flattenUnits(root)
	results := make([]*Liveness, len(units))

	g, _ := errgroup.WithContext(context.Background())
	for i, unit := range units {
		i, unit := i, unit
		g.Go(func() error {
			results[i] = BuildLiveness(BuildCFG(unit))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[*ir.Code]*Liveness, len(units))
	for i, unit := range units {
		out[unit] = results[i]
	}
	return out, nil
}

func flattenUnits(c *ir.Code) []*ir.Code {
	units := []*ir.Code{c}
	for _, p := range c.Promises {
		units = append(units, flattenUnits(p)...)
	}
	return units
}
