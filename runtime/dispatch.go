package runtime

import "sync"

// Context is the assumption set a compiled closure version was specialized
// under (argument types, missingness, eager-ness, etc.), packed as a flat
// bitset; StaticCall dispatches by matching the caller's live assumptions
// against each version's Context.
type Context uint64

// Linkage tags a dispatch-table entry's reachability, the array-language
// analog of the teacher's module-linkage flags (Private/Public/External):
// Local marks an entry for StaticCall sites whose Context matches,
// Exported one for generic Calls. TryDispatch does not consult it.
type Linkage uint8

const (
	Local Linkage = iota
	Exported
)

// Version is one compiled entry in a closure's dispatch table.
type Version struct {
	Context  Context
	Linkage  Linkage
	Native   NativeFunc
	Optimize bool // set by MarkOptimize

	// Pending marks a slot reserved but not yet compiled, the Go analog
	// of the original's DispatchTable::available(entry) returning false:
	// the table already has a slot for this Context, but nothing has
	// been installed into it yet. host.PirCompile fills a Pending slot
	// in place rather than appending a new one.
	Pending bool
}

// NativeFunc is the compiled function pointer the Lowerer's output is
// installed as: the fixed six-argument native signature from §4.4,
// represented here as an opaque Go func since this module's "native code"
// is an in-process compiled closure, not a linked object.
type NativeFunc func(code, ctx, argsStackCell, env, closureSexp, callerCode interface{}) interface{}

// DispatchTable is the per-closure table of compiled versions keyed by
// assumption Context, per the Glossary. capacity() == 2 in the original
// host runtime is asserted by PirCompile (see host package); this
// implementation allows an arbitrary capacity but the host package
// enforces the same two-slot assertion at its boundary, preserving the
// spec's unresolved-generalization Open Question rather than inventing a
// resolution for it.
type DispatchTable struct {
	mu       sync.Mutex
	versions []*Version

	// inProgress tracks (closure identity, Context) pairs whose
	// compilation has started but not finished, so that a StaticCall
	// lowering a recursive call to a version still being compiled does
	// not recursively re-enter the compiler. Grounded on
	// mir/lower_def.go's addForwardDecl / lower/visit.go's
	// already-visited bookkeeping, generalized from definitions to
	// dispatch-table entries.
	inProgress map[Context]bool
}

// NewDispatchTable creates an empty table.
func NewDispatchTable() *DispatchTable {
	return &DispatchTable{inProgress: map[Context]bool{}}
}

// Capacity returns the number of version slots currently allocated.
func (dt *DispatchTable) Capacity() int {
	dt.mu.Lock()
	defer dt.mu.Unlock()
	return len(dt.versions)
}

// First returns the dispatch table's first slot, or nil if empty.
// MarkOptimize operates on exactly this slot (see host package).
func (dt *DispatchTable) First() *Version {
	dt.mu.Lock()
	defer dt.mu.Unlock()
	if len(dt.versions) == 0 {
		return nil
	}
	return dt.versions[0]
}

// Versions returns a snapshot of the table's current entries, in slot
// order, for disassembly and introspection.
func (dt *DispatchTable) Versions() []*Version {
	dt.mu.Lock()
	defer dt.mu.Unlock()
	out := make([]*Version, len(dt.versions))
	copy(out, dt.versions)
	return out
}

// At returns the actual slot pointer at index i, for callers (host.
// PirCompile) that need to fill a Pending slot in place rather than
// appending a new one.
func (dt *DispatchTable) At(i int) *Version {
	dt.mu.Lock()
	defer dt.mu.Unlock()
	return dt.versions[i]
}

// AddVersion appends v as a new slot at the end of the table.
func (dt *DispatchTable) AddVersion(v *Version) {
	dt.mu.Lock()
	defer dt.mu.Unlock()
	dt.versions = append(dt.versions, v)
}

// TryDispatch finds the best version whose Context is satisfied by the
// caller's available assumptions: the one whose Context has the most bits
// set, the earliest slot winning a tie. Linkage is not consulted. Returns nil if no version can serve the call (the caller then falls back
// to the interpreter, per §4.2's "dispatches on version inferred from
// available assumptions").
func (dt *DispatchTable) TryDispatch(available Context) *Version {
	dt.mu.Lock()
	defer dt.mu.Unlock()

	var best *Version
	var bestBits int
	for _, v := range dt.versions {
		if v.Context&^available != 0 {
			continue // v assumes something the caller cannot guarantee
		}
		bits := popcount(v.Context)
		if best == nil || bits > bestBits {
			best, bestBits = v, bits
		}
	}
	return best
}

func popcount(c Context) int {
	n := 0
	for c != 0 {
		c &= c - 1
		n++
	}
	return n
}

// BeginCompiling marks ctx as in-progress, returning false if it already
// was (the recursive-StaticCall case: the caller should emit a call to the
// not-yet-finished version's eventual slot rather than recursing into the
// compiler again).
func (dt *DispatchTable) BeginCompiling(ctx Context) bool {
	dt.mu.Lock()
	defer dt.mu.Unlock()
	if dt.inProgress[ctx] {
		return false
	}
	dt.inProgress[ctx] = true
	return true
}

// FinishCompiling clears ctx's in-progress marker.
func (dt *DispatchTable) FinishCompiling(ctx Context) {
	dt.mu.Lock()
	defer dt.mu.Unlock()
	delete(dt.inProgress, ctx)
}
