package runtime

import "testing"

func TestPoolSnapshotRestoreRoundTrip(t *testing.T) {
	p := NewPool()
	idx := p.Insert(Constant{Kind: "int", Int: 42})

	data, err := p.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	p2 := NewPool()
	if err := p2.Restore(data); err != nil {
		t.Fatalf("restore: %v", err)
	}

	if got := p2.Get(idx); got.Int != 42 || got.Kind != "int" {
		t.Fatalf("round trip mismatch: got %+v", got)
	}
}

func TestPoolAppendOnlyIndicesStable(t *testing.T) {
	p := NewPool()
	i0 := p.Insert(Constant{Kind: "int", Int: 1})
	i1 := p.Insert(Constant{Kind: "int", Int: 2})

	if i0 == i1 {
		t.Fatalf("distinct inserts must get distinct indices")
	}
	if p.Get(i0).Int != 1 || p.Get(i1).Int != 2 {
		t.Fatalf("indices must stay stable after further inserts")
	}
}

func TestDispatchTableMarkFirstVersion(t *testing.T) {
	dt := NewDispatchTable()
	v0 := &Version{Context: 0}
	v1 := &Version{Context: 1}
	dt.AddVersion(v0)
	dt.AddVersion(v1)

	// mark_optimize always marks the first dispatch-table entry,
	// regardless of how many versions exist.
	dt.First().Optimize = true

	if !v0.Optimize {
		t.Fatalf("marking the first slot should flag the first-added version")
	}
	if v1.Optimize {
		t.Fatalf("marking the first slot must not flag later versions")
	}
}

func TestDispatchTableTryDispatchPrefersMostSpecific(t *testing.T) {
	dt := NewDispatchTable()
	general := &Version{Context: 0}
	specific := &Version{Context: 0b011}
	dt.AddVersion(general)
	dt.AddVersion(specific)

	got := dt.TryDispatch(Context(0b111))
	if got != specific {
		t.Fatalf("should prefer the most specific satisfiable version")
	}
}

func TestDispatchTableTryDispatchRejectsUnsatisfiable(t *testing.T) {
	dt := NewDispatchTable()
	needsBit := &Version{Context: 0b100}
	dt.AddVersion(needsBit)

	if got := dt.TryDispatch(Context(0b011)); got != nil {
		t.Fatalf("should not dispatch to a version whose assumptions aren't satisfied, got %+v", got)
	}
}

func TestDispatchTableVersionsSnapshotIsIndependentOfFurtherAdds(t *testing.T) {
	dt := NewDispatchTable()
	dt.AddVersion(&Version{Context: 0})

	snap := dt.Versions()
	dt.AddVersion(&Version{Context: 1})

	if len(snap) != 1 {
		t.Fatalf("Versions() snapshot must not grow when the table grows later, got len %d", len(snap))
	}
	if dt.Capacity() != 2 {
		t.Fatalf("expected the live table to have grown to 2, got %d", dt.Capacity())
	}
}

func TestDispatchTableAtReturnsTheLiveSlot(t *testing.T) {
	dt := NewDispatchTable()
	dt.AddVersion(&Version{Pending: true})

	dt.At(0).Pending = false
	if dt.Versions()[0].Pending {
		t.Fatalf("expected At to return the live slot, mutation should be visible through Versions()")
	}
}

func TestDispatchTableRecursiveCompilationGuard(t *testing.T) {
	dt := NewDispatchTable()
	ctx := Context(1)

	if !dt.BeginCompiling(ctx) {
		t.Fatalf("first BeginCompiling should succeed")
	}
	if dt.BeginCompiling(ctx) {
		t.Fatalf("recursive BeginCompiling for the same context must be refused")
	}

	dt.FinishCompiling(ctx)
	if !dt.BeginCompiling(ctx) {
		t.Fatalf("BeginCompiling should succeed again after FinishCompiling")
	}
}
