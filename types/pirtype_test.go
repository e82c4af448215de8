package types

import "testing"

func TestUnionSupertype(t *testing.T) {
	a := Integer.Scalar().NotObject()
	b := Real.Scalar().NotObject()
	u := a.Union(b)

	if !a.IsA(u) || !b.IsA(u) {
		t.Fatalf("union %v is not a supertype of both operands", u)
	}
}

func TestIntersectSubtype(t *testing.T) {
	a := Integer.Scalar()
	b := Integer.NotObject()
	i := a.Intersect(b)

	if !i.IsA(a) {
		t.Fatalf("intersection %v is not a subtype of left operand %v", i, a)
	}
}

func TestIsAReflexive(t *testing.T) {
	a := String.Scalar().NoAttribs()
	if !a.IsA(a) {
		t.Fatalf("%v.IsA(%v) should hold", a, a)
	}
}

func TestForcedClearsLazy(t *testing.T) {
	a := Real.Scalar() | ModMaybePromiseWrapped
	if a.Forced().MaybeLazy() {
		t.Fatalf("Forced() should clear MaybeLazy")
	}
}

func TestMergeWithConversionWidensNumerics(t *testing.T) {
	got := Logical.MergeWithConversion(Integer)
	if got.tagBits() != Integer {
		t.Fatalf("logical merged with integer should widen to integer, got %v", got.tagBits())
	}

	got = Integer.MergeWithConversion(Real)
	if got.tagBits() != Real {
		t.Fatalf("integer merged with real should widen to real, got %v", got.tagBits())
	}
}

func TestMergeWithConversionNonNumericFallsBackToUnion(t *testing.T) {
	got := String.MergeWithConversion(Closure)
	want := String.Union(Closure)
	if got != want {
		t.Fatalf("non-numeric merge should equal plain union: got %v want %v", got, want)
	}
}

func TestChooseRepresentation(t *testing.T) {
	cases := []struct {
		name string
		t    PirType
		want Representation
	}{
		{"scalar notObject integer", Integer.Scalar().NotObject(), RInteger},
		{"scalar notObject logical", Logical.Scalar().NotObject(), RInteger},
		{"scalar notObject real", Real.Scalar().NotObject(), RReal},
		{"native test", NativeTest, RInteger},
		{"non-scalar integer", Integer.NotObject(), RBoxed},
		{"object-possible integer", Integer.Scalar(), RBoxed},
		{"union of integer and real", Integer.Scalar().NotObject().Union(Real.Scalar().NotObject()), RBoxed},
		{"string", String.Scalar().NotObject(), RBoxed},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := ChooseRepresentation(c.t); got != c.want {
				t.Errorf("ChooseRepresentation(%v) = %v, want %v", c.t, got, c.want)
			}
		})
	}
}

func TestRepresentationMergeIsMax(t *testing.T) {
	if RInteger.Merge(RReal) != RReal {
		t.Fatalf("merge should take the max")
	}
	if RBoxed.Merge(RInteger) != RBoxed {
		t.Fatalf("merge should take the max")
	}
}

func TestUnionCommutativeAssociative(t *testing.T) {
	a, b, c := Integer.Scalar(), Real.NotObject(), String.NoAttribs()

	if a.Union(b) != b.Union(a) {
		t.Fatalf("union should be commutative")
	}
	if a.Union(b).Union(c) != a.Union(b.Union(c)) {
		t.Fatalf("union should be associative")
	}
}
