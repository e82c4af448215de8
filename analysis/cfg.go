// Package analysis implements the CFG, dominator, liveness, and traversal-
// order analyses the Lowerer pre-computes before emitting native code.
package analysis

import "pirc/ir"

// CFG records, for one Code unit, each block's predecessors (derivable from
// Successors() but cached here since it is queried repeatedly) and a
// reverse-post-order numbering.
type CFG struct {
	code  *ir.Code
	preds map[*ir.BasicBlock][]*ir.BasicBlock
	rpo   []*ir.BasicBlock
	index map[*ir.BasicBlock]int
}

// BuildCFG derives predecessor lists and a reverse-post-order from code's
// successor edges, starting at its entry block.
func BuildCFG(code *ir.Code) *CFG {
	cfg := &CFG{
		code:  code,
		preds: make(map[*ir.BasicBlock][]*ir.BasicBlock),
		index: make(map[*ir.BasicBlock]int),
	}

	for _, bb := range code.BasicBlocks() {
		for _, s := range bb.Successors() {
			cfg.preds[s] = append(cfg.preds[s], bb)
		}
	}

	var post []*ir.BasicBlock
	visited := make(map[*ir.BasicBlock]bool)
	var dfs func(bb *ir.BasicBlock)
	dfs = func(bb *ir.BasicBlock) {
		if visited[bb] {
			return
		}
		visited[bb] = true
		for _, s := range bb.Successors() {
			dfs(s)
		}
		post = append(post, bb)
	}
	dfs(code.Entry())

	cfg.rpo = make([]*ir.BasicBlock, len(post))
	for i, bb := range post {
		cfg.rpo[len(post)-1-i] = bb
	}
	for i, bb := range cfg.rpo {
		cfg.index[bb] = i
	}

	return cfg
}

// Preds returns bb's predecessors, in no particular order.
func (c *CFG) Preds(bb *ir.BasicBlock) []*ir.BasicBlock { return c.preds[bb] }

// ReversePostOrder returns every block reachable from the entry, in RPO.
// Unreachable blocks (dead code the front end left behind) are omitted.
func (c *CFG) ReversePostOrder() []*ir.BasicBlock { return c.rpo }

// RPOIndex returns bb's position in the reverse-post-order, or -1 if bb is
// unreachable from the entry.
func (c *CFG) RPOIndex(bb *ir.BasicBlock) int {
	if idx, ok := c.index[bb]; ok {
		return idx
	}
	return -1
}
