package ir

import (
	"testing"

	"pirc/types"
)

func buildSimpleCode() (*Code, *Instruction, *Instruction) {
	c := NewCode("test")
	bb := c.Entry()

	ldArg := c.Emit(bb, OpLdArg, 0)
	ldArg.Result = types.Integer.Scalar().NotObject()

	ret := c.Emit(bb, OpReturn, 0)
	ret.Args = []Value{ldArg}

	return c, ldArg, ret
}

func TestSSASingleDefinition(t *testing.T) {
	c, ldArg, _ := buildSimpleCode()

	count := 0
	for _, bb := range c.BasicBlocks() {
		for _, instr := range bb.Instrs {
			if instr == ldArg {
				count++
			}
		}
	}
	if count != 1 {
		t.Fatalf("value should be defined exactly once, found %d", count)
	}
}

func TestReturnIsTerminator(t *testing.T) {
	_, _, ret := buildSimpleCode()
	if !ret.IsTerminator() {
		t.Fatalf("Return should be a terminator")
	}
}

func TestCloneIsIndependentValue(t *testing.T) {
	c, ldArg, _ := buildSimpleCode()
	clone := ldArg.Clone(c)

	if clone.ValueID() == ldArg.ValueID() {
		t.Fatalf("clone should get a fresh value id")
	}
	if clone.Op != ldArg.Op || clone.Result != ldArg.Result {
		t.Fatalf("clone should preserve op and result type")
	}
}

func TestReplaceUsesWith(t *testing.T) {
	c, ldArg, ret := buildSimpleCode()
	other := &Singleton{}
	_ = other

	replacement := c.Emit(c.Entry(), OpLdConst, 0)
	replacement.Result = ldArg.Result

	ReplaceUsesWith(c, ldArg, replacement, nil)

	if ret.Args[0] != replacement {
		t.Fatalf("ReplaceUsesWith should have rewritten Return's argument")
	}
}

func TestEffectsDerivedPredicates(t *testing.T) {
	fx := Visibility | Error | LeakArg | ReadsEnv
	if fx.Observable()&LeakArg != 0 {
		t.Fatalf("Observable should strip LeakArg")
	}
	if fx.Strong()&Visibility != 0 {
		t.Fatalf("Strong should strip Visibility")
	}
}

func TestForcedEffectsMonotone(t *testing.T) {
	// Force's declared initial effects are a superset of any narrowing of
	// them (e.g. eliding Reflection for a noReflection promise).
	full := Contract(OpForce).defaultFx
	narrowed := full &^ Reflection
	if narrowed&^full != 0 {
		t.Fatalf("narrowed effects must be a subset of declared initial effects")
	}
}
