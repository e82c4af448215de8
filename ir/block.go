package ir

import (
	"fmt"
	"strings"
)

// BasicBlock is an ordered list of instructions with at most two successors:
// 0 (Exit), 1 (fall-through/unconditional), or 2 (Branch/Checkpoint, in
// true/false order).
type BasicBlock struct {
	ID     int
	Instrs []*Instruction
	Succs  [2]*BasicBlock // Succs[0] = fall-through/true, Succs[1] = false; unused entries are nil
	nSucc  int

	owner *Code
}

// Append adds instr to the end of the block. instr must not already be a
// terminator-following instruction in this block: only the last instruction
// of a block may have a control-flow role.
func (b *BasicBlock) Append(instr *Instruction) {
	instr.BB = b
	b.Instrs = append(b.Instrs, instr)
}

// SetSucc0 sets the fall-through (or true-branch) successor.
func (b *BasicBlock) SetSucc0(s *BasicBlock) {
	b.Succs[0] = s
	if b.nSucc < 1 {
		b.nSucc = 1
	}
}

// SetSucc1 sets the false-branch successor (only valid for 2-successor
// terminators: Branch, Checkpoint).
func (b *BasicBlock) SetSucc1(s *BasicBlock) {
	b.Succs[1] = s
	b.nSucc = 2
}

// NumSuccessors returns 0, 1, or 2.
func (b *BasicBlock) NumSuccessors() int { return b.nSucc }

// Successors returns the block's successors in order.
func (b *BasicBlock) Successors() []*BasicBlock {
	if b.nSucc == 0 {
		return nil
	}
	return b.Succs[:b.nSucc]
}

// Terminator returns the block's last instruction, or nil if empty.
func (b *BasicBlock) Terminator() *Instruction {
	if len(b.Instrs) == 0 {
		return nil
	}
	return b.Instrs[len(b.Instrs)-1]
}

// Repr renders the block in the teacher's "$id := op (args);" textual style.
func (b *BasicBlock) Repr() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "bb%d:\n", b.ID)
	for _, instr := range b.Instrs {
		sb.WriteString("  ")
		sb.WriteString(ReprInstruction(instr))
		sb.WriteString("\n")
	}
	return sb.String()
}

// ReprInstruction renders a single instruction as "$id := Op (arg, arg);".
func ReprInstruction(instr *Instruction) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "$%d := %s (", instr.id, instr.Op)
	for idx, a := range instr.Args {
		if idx > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.Repr())
	}
	if instr.Env != nil {
		if len(instr.Args) > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "env=%s", instr.Env.Repr())
	}
	sb.WriteString(")")
	if instr.Rep != 0 {
		fmt.Fprintf(&sb, " [%s]", instr.Rep)
	}
	sb.WriteString(";")
	return sb.String()
}
