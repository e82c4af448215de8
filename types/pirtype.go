// Package types implements the PIR value lattice: the bitset PirType that
// every Value carries, and the Representation a value is lowered to.
package types

// PirType is a bitset over host type tags, native type tags, and modifier
// flags. Host and native tags are disjoint: a PirType is either a (possibly
// empty) subset of the native tags or a (possibly empty) subset of the host
// tags, never a mix of both.
type PirType uint64

// Host tags occupy the low bits. A value carrying any of these bits is a
// boxed, host-language-visible value of the corresponding R-like type.
const (
	Integer PirType = 1 << iota
	Logical
	Real
	Complex
	String
	ListPair
	Closure
	Env
	Promise
	Code
	ExpandedDots
	Dots
	Missing
	Nil
	Raw
	S4Obj
	Expr
	Sym
	Char
	Other

	hostTagCount = iota
)

// AnyHost is the union of every host tag.
const AnyHost = PirType((1 << hostTagCount) - 1)

// Native tags occupy the bits immediately above the host tags. They never
// co-occur with a host tag or with each other.
const (
	NativeTest PirType = 1 << (hostTagCount + iota)
	NativeFrameState
	NativeContext
	NativeCheckpoint
	NativeVoid

	nativeTagShift = hostTagCount
	nativeTagCount = iota
)

// AnyNative is the union of every native tag.
const AnyNative = ((1 << nativeTagCount) - 1) << nativeTagShift

// Modifier bits occupy the bits above the native tags. They refine a host
// (never a native) type.
const (
	ModScalar PirType = 1 << (nativeTagShift + nativeTagCount + iota)
	ModNotObject
	ModNoAttribs
	ModNotMissing
	ModNotNAOrNaN
	ModMaybePromiseWrapped

	modifierMask = ModScalar | ModNotObject | ModNoAttribs | ModNotMissing | ModNotNAOrNaN | ModMaybePromiseWrapped
)

// tagBits returns the receiver with all modifier bits stripped.
func (t PirType) tagBits() PirType { return t &^ modifierMask }

// mods returns the receiver's modifier bits only.
func (t PirType) mods() PirType { return t & modifierMask }

// Union returns the smallest PirType that is a supertype of both t and o:
// the bitwise union of tags, intersection of modifier guarantees (a modifier
// only survives union if both sides promised it).
func (t PirType) Union(o PirType) PirType {
	return t.tagBits() | o.tagBits() | (t.mods() & o.mods())
}

// Intersect returns the greatest PirType that is a subtype of both t and o.
// May be the empty/void type if t and o share no tag.
func (t PirType) Intersect(o PirType) PirType {
	return (t.tagBits() & o.tagBits()) | (t.mods() | o.mods())
}

// IsA reports whether t is a subtype of o: every tag bit t has, o also has,
// and every modifier o promises, t also promises.
func (t PirType) IsA(o PirType) bool {
	return t.tagBits()&^o.tagBits() == 0 && o.mods()&^t.mods() == 0
}

// numericRank orders the host numeric tags for mergeWithConversion's
// widening rule: logical ⊂ integer ⊂ real ⊂ complex.
var numericRank = map[PirType]int{
	Logical: 0,
	Integer: 1,
	Real:    2,
	Complex: 3,
}

// MergeWithConversion computes the numeric-widening supremum of t and o: if
// each carries exactly one numeric tag, the result is the wider of the two
// tags with the conjunction of their modifiers; otherwise (including a type
// carrying several numeric tags) it falls back to plain Union.
func (t PirType) MergeWithConversion(o PirType) PirType {
	tt, ot := t.tagBits(), o.tagBits()
	tr, tok := numericRank[tt]
	or, ook := numericRank[ot]
	if !tok || !ook {
		return t.Union(o)
	}

	widest := tt
	if or > tr {
		widest = ot
	}
	return widest | (t.mods() & o.mods())
}

// Forced returns t with the promise-wrapper modifier cleared: the type of
// the value once a Force instruction has run on it.
func (t PirType) Forced() PirType {
	return t &^ ModMaybePromiseWrapped
}

// Scalar, NotObject, NoAttribs, NotMissing, NotNAOrNaN set the corresponding
// modifier bit, returning the refined type.
func (t PirType) Scalar() PirType     { return t | ModScalar }
func (t PirType) NotObject() PirType  { return t | ModNotObject }
func (t PirType) NoAttribs() PirType  { return t | ModNoAttribs }
func (t PirType) NotMissing() PirType { return t | ModNotMissing }
func (t PirType) NotNAOrNaN() PirType { return t | ModNotNAOrNaN }

// IsScalar, IsNotObject, IsNoAttribs, IsNotMissing, IsNotNAOrNaN test the
// corresponding modifier bit.
func (t PirType) IsScalar() bool     { return t&ModScalar != 0 }
func (t PirType) IsNotObject() bool  { return t&ModNotObject != 0 }
func (t PirType) IsNoAttribs() bool  { return t&ModNoAttribs != 0 }
func (t PirType) IsNotMissing() bool { return t&ModNotMissing != 0 }
func (t PirType) IsNotNAOrNaN() bool { return t&ModNotNAOrNaN != 0 }

// Maybe reports whether t's host tag set includes tag (t is not guaranteed
// to exclude it).
func (t PirType) Maybe(tag PirType) bool {
	return t.tagBits()&tag.tagBits() != 0
}

// objectTags is the set of host tags that may carry an S3/S4/attribute
// object wrapper and therefore dispatch.
const objectTags = AnyHost &^ (Nil | Missing | Other)

// MaybeObj reports whether t might be a dispatch-bearing object: it is not
// flagged NotObject and its tags intersect the object-bearing host tags.
func (t PirType) MaybeObj() bool {
	return !t.IsNotObject() && t.tagBits()&objectTags != 0
}

// MaybeLazy reports whether t might still be wrapped in an unforced promise.
func (t PirType) MaybeLazy() bool {
	return t&ModMaybePromiseWrapped != 0
}

// ExtractType returns the PirType of a single element read out of t by
// (single-bracket single-index) array indexing. List-pairs extract to Other
// (the contained SEXP's type is unknown statically); atomic vectors extract
// to their own scalar element type; anything else is void (extraction is
// statically impossible, which the Lowerer treats as an unsupported path).
func (t PirType) ExtractType(idx int) PirType {
	tagsOnly := t.tagBits()
	switch tagsOnly {
	case Integer, Logical, Real, Complex, String, Raw:
		return tagsOnly.Scalar().NotObject()
	case ListPair, ExpandedDots, Dots:
		return Other
	default:
		return PirType(0)
	}
}

// SubsetType returns the PirType of a sub-vector read out of t by
// (single-bracket range/vector) subsetting: unlike ExtractType it preserves
// the vector-ness of t, so the scalar modifier is not added.
func (t PirType) SubsetType(idx int) PirType {
	tagsOnly := t.tagBits()
	switch tagsOnly {
	case Integer, Logical, Real, Complex, String, Raw:
		return tagsOnly.NotObject()
	default:
		return tagsOnly
	}
}
