package disasm

import (
	"strings"
	"testing"

	"pirc/ir"
	"pirc/runtime"
	"pirc/types"
)

func buildIdentityCode() *ir.Code {
	c := ir.NewCode("identity")
	entry := c.Entry()
	arg := c.Emit(entry, ir.OpLdArg, 0)
	arg.Result = types.Integer.Scalar().NotObject()
	ret := c.Emit(entry, ir.OpReturn, 0)
	ret.Args = []ir.Value{arg}
	return c
}

func TestCodeIncludesEveryBlockAndInstruction(t *testing.T) {
	out := Code(buildIdentityCode(), nil)
	if !strings.Contains(out, "identity") {
		t.Fatalf("expected the code unit's name to appear: %q", out)
	}
	if !strings.Contains(out, "LdArg") || !strings.Contains(out, "Return") {
		t.Fatalf("expected both instructions to appear: %q", out)
	}
}

func TestCodeAnnotatesRepresentationWhenProvided(t *testing.T) {
	code := buildIdentityCode()
	instr := code.Entry().Instrs[0]
	reps := map[*ir.Instruction]types.Representation{instr: types.RInteger}

	out := Code(code, reps)
	if !strings.Contains(out, types.RInteger.String()) {
		t.Fatalf("expected the chosen representation to be rendered: %q", out)
	}
}

func TestDispatchTableRendersEveryVersion(t *testing.T) {
	dt := runtime.NewDispatchTable()
	dt.AddVersion(&runtime.Version{Context: 0, Linkage: runtime.Exported})
	dt.AddVersion(&runtime.Version{Context: 1, Linkage: runtime.Local, Optimize: true})

	out := DispatchTable("f", dt)
	if !strings.Contains(out, "2 versions") {
		t.Fatalf("expected the version count to appear: %q", out)
	}
	if !strings.Contains(out, "exported") || !strings.Contains(out, "local") {
		t.Fatalf("expected both linkage tags to appear: %q", out)
	}
}
