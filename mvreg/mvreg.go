// Package mvreg implements the Multi-Value Register: the smallest
// non-trivial CRDT in this library, retaining every concurrently-written
// value instead of picking a last writer.
package mvreg

import (
	"cmp"
	"log/slog"

	"github.com/Polqt/crdtcore"
	"github.com/Polqt/crdtcore/clock"
)

// entry is one retained (clock, value) pair. Invariant maintained by both
// Apply and Merge: no two entries in the same register have ≤-comparable
// clocks, except transiently equal clocks with distinct values, which are
// legitimate concurrency (see Merge's doc comment).
type entry[A cmp.Ordered, V comparable] struct {
	Clock clock.VClock[A]
	Val   V
}

// MVReg is a multi-value register over actor type A and value type V. The
// zero value is a valid empty register.
type MVReg[A cmp.Ordered, V comparable] struct {
	entries []entry[A, V]
}

// New returns an empty register.
func New[A cmp.Ordered, V comparable]() MVReg[A, V] {
	return MVReg[A, V]{}
}

// Op is the envelope for MVReg's sole operation: a causally-timestamped
// write. Op values are produced only by Set; hand-assembling one bypasses
// the library's causal-timestamp contract (see crdtcore.AddCtx).
type Op[A cmp.Ordered, V comparable] struct {
	Clock clock.VClock[A] `json:"clock"`
	Val   V               `json:"val"`
}

// Read returns every retained concurrent value, plus a ReadCtx whose
// AddClock and RmClock are both the join of all entries' clocks: the next
// write must causally depend on everything currently visible, and a remove
// (not meaningful for MVReg, but kept for contract uniformity) would
// reference the same join.
func (r MVReg[A, V]) Read() crdtcore.ReadCtx[A, []V] {
	join := clock.New[A]()
	vals := make([]V, 0, len(r.entries))
	for _, e := range r.entries {
		join.Merge(e.Clock)
		vals = append(vals, e.Val)
	}
	return crdtcore.ReadCtx[A, []V]{Val: vals, AddClock: join, RmClock: join}
}

// Set authors a Put Op for val, carrying ctx's causal clock. Set is pure: it
// does not mutate r. The host must call Apply with the result to make the
// write locally visible, and ship it to peers so they can do the same.
func (r MVReg[A, V]) Set(val V, ctx crdtcore.AddCtx[A]) Op[A, V] {
	return Op[A, V]{Clock: ctx.Clock, Val: val}
}

// Apply delivers op to r. Per §4.5:
//  1. An op with an empty clock is a no-op (logged, not errored).
//  2. Every entry whose clock is ≤ op.Clock is superseded and dropped.
//  3. The write is appended only if no surviving entry strictly dominates
//     op.Clock; otherwise a strictly later witness already exists and the
//     write is dropped.
//
// Apply is commutative, associative, and idempotent over any set of ops a
// replica applies, in any order, including duplicates.
func (r *MVReg[A, V]) Apply(op Op[A, V]) error {
	if op.Clock.IsEmpty() {
		slog.Debug("mvreg: dropping op with empty clock")
		return nil
	}

	kept := make([]entry[A, V], 0, len(r.entries)+1)
	dominated := false
	for _, e := range r.entries {
		if e.Clock.LessEq(op.Clock) {
			continue // e's causal past is entirely contained in op; superseded
		}
		kept = append(kept, e)
		if op.Clock.LessEq(e.Clock) {
			dominated = true
		}
	}
	if !dominated {
		kept = append(kept, entry[A, V]{Clock: op.Clock, Val: op.Val})
	}
	r.entries = kept
	return nil
}

// Merge computes the join of r and other: the union of both registers'
// entries, retaining exactly those whose clock is not strictly dominated by
// any other entry in the union. Exact (clock, value) duplicates collapse to
// one entry so that Merge is idempotent; entries with equal clocks but
// different values both survive, since neither dominates the other — this
// is essential to preserve commutativity when two replicas concurrently
// write equal values (or, via a malformed Op crafted outside Set, distinct
// values) under the same clock.
func (r MVReg[A, V]) Merge(other MVReg[A, V]) MVReg[A, V] {
	union := make([]entry[A, V], 0, len(r.entries)+len(other.entries))
	union = append(union, r.entries...)
	union = append(union, other.entries...)

	deduped := make([]entry[A, V], 0, len(union))
dedup:
	for _, e := range union {
		for _, d := range deduped {
			if d.Clock.Equal(e.Clock) && d.Val == e.Val {
				continue dedup
			}
		}
		deduped = append(deduped, e)
	}

	kept := make([]entry[A, V], 0, len(deduped))
	for i, e := range deduped {
		dominated := false
		for j, o := range deduped {
			if i != j && e.Clock.Less(o.Clock) {
				dominated = true
				break
			}
		}
		if !dominated {
			kept = append(kept, e)
		}
	}
	return MVReg[A, V]{entries: kept}
}

// Forget subtracts stabilityClock from every entry's clock and drops any
// entry whose clock becomes empty as a result. It never drops an entry whose
// clock is not fully covered by stabilityClock, so any read whose RmClock is
// not ≤ stabilityClock keeps seeing the value it saw before truncation.
func (r MVReg[A, V]) Forget(stabilityClock clock.VClock[A]) MVReg[A, V] {
	kept := make([]entry[A, V], 0, len(r.entries))
	for _, e := range r.entries {
		remaining := clock.Subtracted(e.Clock, stabilityClock)
		if remaining.IsEmpty() {
			continue
		}
		kept = append(kept, entry[A, V]{Clock: remaining, Val: e.Val})
	}
	return MVReg[A, V]{entries: kept}
}

// Equal reports whether r and other retain the same set of (clock, value)
// pairs, irrespective of order.
func (r MVReg[A, V]) Equal(other MVReg[A, V]) bool {
	if len(r.entries) != len(other.entries) {
		return false
	}
	used := make([]bool, len(other.entries))
	for _, e := range r.entries {
		found := false
		for j, o := range other.entries {
			if used[j] {
				continue
			}
			if e.Clock.Equal(o.Clock) && e.Val == o.Val {
				used[j] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

var (
	_ crdtcore.CvRDT[MVReg[string, int]]                         = MVReg[string, int]{}
	_ crdtcore.CmRDT[Op[string, int]]                            = (*MVReg[string, int])(nil)
	_ crdtcore.Causal[clock.VClock[string], MVReg[string, int]]  = MVReg[string, int]{}
)
