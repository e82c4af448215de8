package ir

import (
	"strconv"
	"strings"
)

// Code is an arena-owned compilation unit: an entry BasicBlock, every
// BasicBlock and Instruction reachable from it, and the Promise bodies it
// owns (each itself a Code). Per the "owning vs. borrowing" design note,
// Code owns everything; Instruction arguments are references within this
// ownership domain and remain valid for the Code's whole lifetime.
type Code struct {
	Name string

	entry      *BasicBlock
	blocks     []*BasicBlock
	nextBBID   int
	nextValID  int

	Promises []*Code

	// Spans maps an instruction's SrcIdx to a source span, resolved against
	// a front end this module does not itself implement; empty here.
	Spans []TextSpanRef
}

// TextSpanRef is an opaque forward reference to a source span a future
// front end would populate; the Lowerer never dereferences it, it only
// carries SrcIdx through for diagnostics.
type TextSpanRef struct {
	File      string
	StartLine int
	StartCol  int
}

// NewCode creates an empty Code unit with a fresh entry block.
func NewCode(name string) *Code {
	c := &Code{Name: name}
	c.entry = c.NewBlock()
	return c
}

// Entry returns the unit's unique entry BasicBlock.
func (c *Code) Entry() *BasicBlock { return c.entry }

// NewBlock allocates and registers a fresh BasicBlock owned by c.
func (c *Code) NewBlock() *BasicBlock {
	b := &BasicBlock{ID: c.nextBBID, owner: c}
	c.nextBBID++
	c.blocks = append(c.blocks, b)
	return b
}

// BasicBlocks returns every block owned by c, in allocation order (not
// necessarily RPO; use analysis.Visitor for traversal order).
func (c *Code) BasicBlocks() []*BasicBlock { return c.blocks }

// nextValueID hands out the next arena-unique SSA value id.
func (c *Code) nextValueID() int {
	id := c.nextValID
	c.nextValID++
	return id
}

// Emit appends a freshly-tagged instruction to bb and returns it, filling
// in default effects/env-bearing shape from the Op's static contract. The
// caller is responsible for setting Result, Args, Env, and Aux afterward.
func (c *Code) Emit(bb *BasicBlock, op Op, srcIdx int) *Instruction {
	instr := &Instruction{
		id:     c.nextValueID(),
		Op:     op,
		Fx:     Contract(op).defaultFx,
		SrcIdx: srcIdx,
	}
	bb.Append(instr)
	return instr
}

// AddPromise registers a nested Promise body owned by this Code unit and
// returns its index in c.Promises (the index the front end's promise->index
// map is keyed on).
func (c *Code) AddPromise(body *Code) int {
	c.Promises = append(c.Promises, body)
	return len(c.Promises) - 1
}

// Repr renders the whole Code unit in lowering-unrelated allocation order,
// promise bodies nested underneath.
func (c *Code) Repr() string {
	var sb strings.Builder
	sb.WriteString("code ")
	sb.WriteString(c.Name)
	sb.WriteString(" {\n")
	for _, bb := range c.blocks {
		sb.WriteString(bb.Repr())
	}
	sb.WriteString("}\n")
	for i, p := range c.Promises {
		sb.WriteString("promise ")
		sb.WriteString(strconv.Itoa(i))
		sb.WriteString(" ")
		sb.WriteString(p.Repr())
	}
	return sb.String()
}
