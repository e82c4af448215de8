package runtime

import (
	"testing"

	"pirc/ir"
)

func TestNewClosureStartsWithAnEmptyTable(t *testing.T) {
	code := ir.NewCode("f")
	cl := NewClosure("f", code)

	if cl.Body != code {
		t.Fatalf("expected the closure to wrap the given Code unit")
	}
	if cl.Table.Capacity() != 0 {
		t.Fatalf("expected a freshly-wrapped closure to have no versions yet")
	}
}

func TestCompileHookIsUnsetWithoutHost(t *testing.T) {
	// host's init() is what registers CompileHook (mirroring api.cpp's
	// startup() wiring rir_compile in); this package never imports host,
	// so within runtime's own tests the hook stays nil.
	if CompileHook != nil {
		t.Fatalf("expected CompileHook to be unset in a binary that never imports host")
	}
}
