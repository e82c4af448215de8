package lower

import (
	"github.com/llir/llvm/ir/types"

	"pirc/ir"
	"pirc/runtime"
	irtypes "pirc/types"
)

// maxLiveBoxed bounds the number of simultaneously-live Boxed-representation
// values across the whole Code unit: the number of local stack slots
// reserved at function entry (§4.4 "Local stack slots").
func (l *Lowerer) maxLiveBoxed() int {
	return l.live.MaxLive(func(v ir.Value) bool {
		return l.RepOf(v) == irtypes.RBoxed
	})
}

// emitSafepointPrologue reserves maxLive spill slots at function entry: it
// emits a call to the node-stack-top symbol (whose result is not used),
// allocates a local array of maxLive pointer slots and zeroes it. The
// interpreter node stack itself is not grown, and nothing is popped on
// Return.
func (l *Lowerer) emitSafepointPrologue() {
	n := l.maxLiveBoxed()
	if n == 0 {
		return
	}
	if n > l.config.MaxInlineSafepointSpill {
		unsupported("function needs %d live boxed slots, exceeds MaxInlineSafepointSpill=%d", n, l.config.MaxInlineSafepointSpill)
	}

	l.gen.EmitNativeCall(runtime.NodeStackTopSymbol, types.I8Ptr, nil)
	slots := l.gen.EmitAlloca(types.NewArray(uint64(n), types.I8Ptr))
	l.gen.EmitMemset(slots, int64(n)*8)
	l.safepointSlots = slots
}

// emitGCSafepoint implements the GC safepoint before any allocation that
// may trigger GC: it spills every currently-live boxed SSA value into the
// reserved local slots. No allocator-headroom check is emitted, so the
// spill happens whatever required is (-1 meaning unknown). protectArgs additionally spills
// consumer's own arguments even when the liveness query would not include
// them (e.g. they are about to be consumed and liveness analysis considers
// them dead at this point, but they must still survive the call that
// consumes them).
func (l *Lowerer) emitGCSafepoint(consumer *ir.Instruction, required int64, protectArgs bool) {
	live := l.live.LiveAt(consumer)

	toSpill := make([]ir.Value, 0, len(live))
	for v := range live {
		if l.RepOf(v) == irtypes.RBoxed {
			toSpill = append(toSpill, v)
		}
	}
	if protectArgs {
		for _, a := range consumer.Args {
			if l.RepOf(a) == irtypes.RBoxed {
				toSpill = append(toSpill, a)
			}
		}
	}

	if len(toSpill) == 0 {
		return
	}

	unconditional := required < 0
	_ = unconditional // the allocator-headroom check itself is a runtime
	// concern this module's in-process NativeFunc stand-in does not model;
	// we always spill when there is something boxed live, which is sound
	// (a superset of the required spills) even though it foregoes the
	// "skip when headroom suffices" fast path the original implements.

	for i, v := range toSpill {
		slot := int64(i) * 8
		if nv, ok := l.native[v]; ok {
			l.gen.EmitRelativeStore(l.safepointSlots, slot, nv.val)
		}
	}
}

// constPoolLoad loads the boxed pool entry at idx. It emits a fresh call to
// the pool-base symbol on every load; the base is not cached per function.
func (l *Lowerer) constPoolLoad(idx int) llvmValue {
	base := l.gen.EmitNativeCall(runtime.ConstantPoolBaseSymbol, types.I8Ptr, nil)
	return l.gen.EmitRelativeLoad(base, int64(idx)*8, types.I8Ptr)
}
