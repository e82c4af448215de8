package runtime

import "pirc/ir"

// Closure is the in-process stand-in for a host closure_value: an owned PIR
// body plus the dispatch table (Glossary) holding its compiled native
// versions. Every §6 host-glue operation (compile, disassemble,
// mark_optimize, pir_compile, eval, body) takes or returns one of these.
type Closure struct {
	Name string
	Body *ir.Code

	// Env is the closure's defining environment, opaque to this module
	// (no host heap is implemented here; it is carried through only so
	// host.Eval has something to pass to a Version's NativeFunc).
	Env interface{}

	Table *DispatchTable
}

// NewClosure wraps body in a fresh, empty-tabled Closure.
func NewClosure(name string, body *ir.Code) *Closure {
	return &Closure{Name: name, Body: body, Table: NewDispatchTable()}
}

// CompileHook and OptimizeHook are the two process-wide entry points the
// host registers with this package at init, mirroring
// original_source/rir/src/api.cpp's startup()'s
// initializeRuntime(rir_compile, dummyOpt). Neither is called from within
// this package; they exist so that a future front end (or this module's
// own CLI) can reach host.Compile and the optimizer hook without an import
// cycle back into host.
var (
	CompileHook  func(*Closure) (*Closure, error)
	OptimizeHook func(interface{}) interface{}
)
