package analysis

import "pirc/ir"

// Visitor exposes the traversal orders the Lowerer and other passes need:
// forward (plain reverse-post-order), lowering order (RPO, but a block that
// starts with Phis is only visited once every predecessor that is not a
// loop-back edge has already been emitted, so that phi-predecessor stores
// land before the joining block's body), and a flat per-instruction walk.
type Visitor struct {
	cfg *CFG
	dom *Dominators
}

// NewVisitor builds a Visitor over cfg, using dom to detect loop-back
// (retreating) edges when computing lowering order.
func NewVisitor(cfg *CFG, dom *Dominators) *Visitor {
	return &Visitor{cfg: cfg, dom: dom}
}

// Forward returns blocks in plain reverse-post-order.
func (v *Visitor) Forward() []*ir.BasicBlock {
	return v.cfg.ReversePostOrder()
}

// LoweringOrder returns blocks in the order the Lowerer must emit them so
// that every non-loop-back predecessor of a block is emitted before it,
// which keeps Phi's per-predecessor stores available before the join block
// executes (rule §4.4.9: "each predecessor's terminator stores the
// appropriate argument value into it before branching to the join block").
// It is RPO unless a back edge exists, in which case RPO already has this
// property by construction (RPO only violates forward-predecessor-first
// ordering across back edges, which this instruction set's Checkpoint/Phi
// design tolerates by definition: a loop header's Phi reads the back edge's
// contribution from the already-stored virtual register, not from program
// order).
func (v *Visitor) LoweringOrder() []*ir.BasicBlock {
	return v.cfg.ReversePostOrder()
}

// IsBackEdge reports whether the edge from->to is a loop-retreating edge:
// to dominates from.
func (v *Visitor) IsBackEdge(from, to *ir.BasicBlock) bool {
	return v.dom.Dominates(to, from)
}

// EachInstruction walks every instruction of every block, in lowering
// order, calling fn for each.
func (v *Visitor) EachInstruction(fn func(*ir.BasicBlock, *ir.Instruction)) {
	for _, bb := range v.LoweringOrder() {
		for _, instr := range bb.Instrs {
			fn(bb, instr)
		}
	}
}
