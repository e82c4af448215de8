// Package disasm pretty-prints a compiled Code unit and its dispatch
// table entries for the "disas" CLI command and the self-test harness.
// Grounded on bootstrap/src/logging/display.go's tag-plus-colored-message
// style: a styled banner per block/version, plain-text body beneath it.
package disasm

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	"pirc/ir"
	"pirc/runtime"
	"pirc/types"
)

var (
	headerStyle = pterm.NewStyle(pterm.BgBlue, pterm.FgWhite)
	blockStyle  = pterm.NewStyle(pterm.BgGray, pterm.FgBlack)
	repStyle    = pterm.FgLightCyan
	opStyle     = pterm.FgLightYellow
	fxStyle     = pterm.FgGray
)

// Code renders a full Code unit: one banner, then one styled sub-banner
// per BasicBlock with its instructions, their chosen representation (if
// reps is non-nil), and each instruction's effect set.
func Code(code *ir.Code, reps map[*ir.Instruction]types.Representation) string {
	var sb strings.Builder

	sb.WriteString(headerStyle.Sprintln(fmt.Sprintf(" code %s ", code.Name)))
	for _, bb := range code.BasicBlocks() {
		sb.WriteString(blockStyle.Sprintln(fmt.Sprintf(" bb%d ", bb.ID)))
		for _, instr := range bb.Instrs {
			writeInstruction(&sb, instr, reps)
		}
	}

	for i, p := range code.Promises {
		sb.WriteString(fmt.Sprintf("\npromise %d:\n", i))
		sb.WriteString(Code(p, reps))
	}

	return sb.String()
}

func writeInstruction(sb *strings.Builder, instr *ir.Instruction, reps map[*ir.Instruction]types.Representation) {
	sb.WriteString("  $")
	sb.WriteString(fmt.Sprintf("%d := ", instr.ValueID()))
	sb.WriteString(opStyle.Sprint(instr.Op.String()))
	sb.WriteString(" (")
	for i, a := range instr.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.Repr())
	}
	if instr.Env != nil {
		if len(instr.Args) > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("env=")
		sb.WriteString(instr.Env.Repr())
	}
	sb.WriteString(")")

	if reps != nil {
		if rep, ok := reps[instr]; ok {
			sb.WriteString(" ")
			sb.WriteString(repStyle.Sprint(fmt.Sprintf("[%s]", rep)))
		}
	}

	if instr.Effects() != 0 {
		sb.WriteString(" ")
		sb.WriteString(fxStyle.Sprint(effectsString(instr.Effects())))
	}

	sb.WriteString("\n")
}

func effectsString(fx ir.Effects) string {
	names := []struct {
		bit  ir.Effects
		name string
	}{
		{ir.Visibility, "Visibility"}, {ir.Warn, "Warn"}, {ir.Error, "Error"},
		{ir.Force, "Force"}, {ir.Reflection, "Reflection"}, {ir.LeakArg, "LeakArg"},
		{ir.ChangesContexts, "ChangesContexts"}, {ir.ReadsEnv, "ReadsEnv"},
		{ir.WritesEnv, "WritesEnv"}, {ir.LeaksEnv, "LeaksEnv"},
		{ir.TriggerDeopt, "TriggerDeopt"}, {ir.ExecuteCode, "ExecuteCode"},
		{ir.UpdatesMetadata, "UpdatesMetadata"}, {ir.DependsOnAssume, "DependsOnAssume"},
		{ir.MutatesArgument, "MutatesArgument"},
	}
	var parts []string
	for _, n := range names {
		if fx.Has(n.bit) {
			parts = append(parts, n.name)
		}
	}
	return "{" + strings.Join(parts, "|") + "}"
}

// DispatchTable renders every Version of a closure's dispatch table, in
// slot order, under a header giving the table's slot count.
func DispatchTable(name string, dt *runtime.DispatchTable) string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Sprintln(fmt.Sprintf(" %s: %d versions ", name, dt.Capacity())))
	for i, v := range dt.Versions() {
		linkage := "local"
		if v.Linkage == runtime.Exported {
			linkage = "exported"
		}
		sb.WriteString(fmt.Sprintf("  [%d] context=%#x linkage=%s optimize=%v\n", i, v.Context, linkage, v.Optimize))
	}
	return sb.String()
}
