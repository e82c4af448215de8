package analysis

import "pirc/ir"

// Dominators holds, per reachable BasicBlock, its immediate dominator.
// Computed with the standard Cooper-Harvey-Kennedy iterative data-flow
// algorithm over the CFG's reverse-post-order.
type Dominators struct {
	cfg  *CFG
	idom map[*ir.BasicBlock]*ir.BasicBlock
}

// BuildDominators computes the dominator tree of cfg's Code unit.
func BuildDominators(cfg *CFG) *Dominators {
	rpo := cfg.ReversePostOrder()
	if len(rpo) == 0 {
		return &Dominators{cfg: cfg, idom: map[*ir.BasicBlock]*ir.BasicBlock{}}
	}

	entry := rpo[0]
	idom := make(map[*ir.BasicBlock]*ir.BasicBlock, len(rpo))
	idom[entry] = entry

	changed := true
	for changed {
		changed = false
		for _, bb := range rpo[1:] {
			var newIdom *ir.BasicBlock
			for _, p := range cfg.Preds(bb) {
				if idom[p] == nil {
					continue
				}
				if newIdom == nil {
					newIdom = p
					continue
				}
				newIdom = intersect(cfg, idom, newIdom, p)
			}
			if newIdom != nil && idom[bb] != newIdom {
				idom[bb] = newIdom
				changed = true
			}
		}
	}

	delete(idom, entry) // entry has no dominator other than itself; callers special-case it
	idom[entry] = nil
	return &Dominators{cfg: cfg, idom: idom}
}

func intersect(cfg *CFG, idom map[*ir.BasicBlock]*ir.BasicBlock, a, b *ir.BasicBlock) *ir.BasicBlock {
	for a != b {
		for cfg.RPOIndex(a) > cfg.RPOIndex(b) {
			a = idom[a]
		}
		for cfg.RPOIndex(b) > cfg.RPOIndex(a) {
			b = idom[b]
		}
	}
	return a
}

// ImmediateDominator returns bb's immediate dominator, or nil for the entry
// block.
func (d *Dominators) ImmediateDominator(bb *ir.BasicBlock) *ir.BasicBlock {
	return d.idom[bb]
}

// Dominates reports whether a dominates b (reflexively: a dominates a).
func (d *Dominators) Dominates(a, b *ir.BasicBlock) bool {
	for b != nil {
		if b == a {
			return true
		}
		b = d.idom[b]
	}
	return false
}

// InstructionDominates reports whether def's defining block dominates use's
// block, which is the SSA well-formedness condition §8 requires for every
// use except Phi inputs (which are checked against the corresponding
// predecessor's terminator instead, see Phi-specific validation in lower).
func (d *Dominators) InstructionDominates(def, use *ir.Instruction) bool {
	if def.BB == use.BB {
		return indexInBlock(def) <= indexInBlock(use)
	}
	return d.Dominates(def.BB, use.BB)
}

func indexInBlock(instr *ir.Instruction) int {
	for i, x := range instr.BB.Instrs {
		if x == instr {
			return i
		}
	}
	return -1
}
