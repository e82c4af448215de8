// Package host implements §6's "toward the host runtime" surface: the
// handful of entry points a host interpreter calls into this core through
// (compile, disassemble, mark_optimize, pir_compile, eval, body, run_tests).
// Grounded line-for-line on original_source/rir/src/api.cpp, which is the
// file this surface was itself distilled from, with phase sequencing
// (analyze-then-generate, fail fast) following bootstrap/cmd/driver.go's
// RunCompiler.
package host

import (
	"fmt"

	"pirc/disasm"
	"pirc/ir"
	"pirc/lower"
	"pirc/report"
	"pirc/runtime"
)

func init() {
	runtime.CompileHook = func(cl *runtime.Closure) (*runtime.Closure, error) {
		return Compile(cl, lower.DefaultConfig)
	}
	runtime.OptimizeHook = dummyOptimize
}

// dummyOptimize is the currently-unused optimizer hook api.cpp registers
// alongside rir_compile as dummyOpt: it exists only so something is
// registered at startup, and returns its argument unchanged.
func dummyOptimize(opt interface{}) interface{} { return opt }

// buildPromiseIndex maps every promise body owned (transitively) by code to
// its index in its immediate parent's Promises slice, the promise->index
// map §4.4 names as Lowerer input.
func buildPromiseIndex(code *ir.Code) lower.PromiseIndex {
	idx := lower.PromiseIndex{}
	var walk func(c *ir.Code)
	walk = func(c *ir.Code) {
		for i, p := range c.Promises {
			idx[p] = i
			walk(p)
		}
	}
	walk(code)
	return idx
}

// Compile is rir_compile: lowers cl's body, installs the result as the
// dispatch table's first (baseline, Exported) slot, and reserves a second,
// Pending slot for the eventual optimized version pir_compile fills in.
// Reserving both slots up front is how this module keeps PirCompile's
// "exactly two slots" assertion literal (see that function) despite this
// table having no separately-preallocated capacity notion of its own.
// A closure already carrying a compiled baseline is returned unchanged
// (api.cpp's "body is already EXTERNALSXP" early-return, generalized from
// "already bytecode" to "already has a version").
func Compile(cl *runtime.Closure, cfg lower.Config) (*runtime.Closure, error) {
	if cl.Table.Capacity() > 0 {
		return cl, nil
	}

	promiseIdx := buildPromiseIndex(cl.Body)
	l := lower.New(cl.Body, lower.EnsureNamed{}, promiseIdx, cfg)
	res := l.Lower(cl.Name)
	if !res.Ok {
		return nil, fmt.Errorf("compilation failed: %s", res.Reason)
	}

	cl.Table.AddVersion(&runtime.Version{
		Context: 0,
		Linkage: runtime.Exported,
	})
	cl.Table.AddVersion(&runtime.Version{Pending: true})
	return cl, nil
}

// Disassemble is rir_disassemble: prints every available dispatch-table
// entry for cl, verbose controlling whether the instruction listing itself
// is included, mirroring CodeEditor(f).print(LOGICAL(verbose)[0]).
func Disassemble(cl *runtime.Closure, verbose bool) string {
	out := disasm.DispatchTable(cl.Name, cl.Table)
	if verbose {
		out += disasm.Code(cl.Body, nil)
	}
	return out
}

// MarkOptimize is rir_markOptimize: tags the dispatch table's first entry
// for optimization. Per the Open Question decision in DESIGN.md, this is
// kept exactly as the original implements it (mark only the first slot,
// not "the active version" or any richer policy) because the original
// author explicitly considered and rejected generalizing it.
func MarkOptimize(cl *runtime.Closure) {
	v := cl.Table.First()
	if v == nil {
		return
	}
	v.Optimize = true
}

// PirCompile is pir_compile: the bytecode->PIR->bytecode round trip. The
// dispatch table must have exactly two slots, literally per the original's
// assert(... capacity() == 2 && "fix, support for more than 2 slots
// needed..."); if the second slot is already filled (not Pending), cl is
// returned unchanged, the original's
// DispatchTable::unpack(...)->available(1) early-return.
func PirCompile(cl *runtime.Closure, cfg lower.Config, verbose bool) (*runtime.Closure, error) {
	if cl.Table.Capacity() != 2 {
		report.ReportICE("pirCompile: fix, support for more than 2 slots needed (have %d)", cl.Table.Capacity())
	}

	second := cl.Table.At(1)
	if !second.Pending {
		return cl, nil
	}

	promiseIdx := buildPromiseIndex(cl.Body)
	l := lower.New(cl.Body, lower.EnsureNamed{}, promiseIdx, cfg)
	res := l.Lower(cl.Name)
	if !res.Ok {
		fmt.Println("Compilation failed")
		return cl, nil
	}

	if verbose {
		fmt.Println(disasm.Code(cl.Body, nil))
	}

	second.Pending = false
	second.Linkage = runtime.Local
	second.Optimize = true
	return cl, nil
}

// Eval is rir_eval: dispatches to the best version satisfying available
// and calls its NativeFunc with env, erroring the way Rf_error("Not rir
// compiled code") does when no version can serve the call.
func Eval(cl *runtime.Closure, available runtime.Context, env, callerCode interface{}) (interface{}, error) {
	v := cl.Table.TryDispatch(available)
	if v == nil || v.Native == nil {
		return nil, fmt.Errorf("not rir compiled code")
	}
	return v.Native(cl.Body, available, nil, env, cl, callerCode), nil
}

// Body is rir_body: returns the closure's code container.
func Body(cl *runtime.Closure) *ir.Code { return cl.Body }
