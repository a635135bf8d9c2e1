// Package clock implements version vectors: the partial-order algebra that
// every CRDT in this library builds its convergence guarantees on.
package clock

import (
	"cmp"
	"encoding/json"
	"maps"
	"slices"

	"github.com/Polqt/crdtcore/dot"
)

// Ordering is the result of comparing two VClocks.
type Ordering int

const (
	Concurrent Ordering = iota
	Equal
	Less
	Greater
)

// VClock maps actor to the highest counter witnessed for that actor. An
// absent actor is equivalent to counter zero; VClock never stores a zero
// entry (witnessing counter 0 is a no-op, and Subtract prunes entries that
// fall back to zero-equivalence... in practice counters only grow, so a
// stored entry is never literally zero, but New() before any Witness has no
// entries at all).
type VClock[A cmp.Ordered] struct {
	counters map[A]uint64
}

// New returns an empty clock.
func New[A cmp.Ordered]() VClock[A] {
	return VClock[A]{counters: make(map[A]uint64)}
}

// Get returns the counter recorded for actor a, or 0 if absent.
func (v VClock[A]) Get(a A) uint64 {
	if v.counters == nil {
		return 0
	}
	return v.counters[a]
}

// IsEmpty reports whether v has no witnessed actors.
func (v VClock[A]) IsEmpty() bool {
	return len(v.counters) == 0
}

// Len returns the number of distinct actors witnessed.
func (v VClock[A]) Len() int {
	return len(v.counters)
}

// Actors returns the witnessed actors in ascending order.
func (v VClock[A]) Actors() []A {
	actors := slices.Collect(maps.Keys(v.counters))
	slices.Sort(actors)
	return actors
}

// Clone returns a deep copy of v.
func (v VClock[A]) Clone() VClock[A] {
	return VClock[A]{counters: maps.Clone(v.counters)}
}

// Witness records that actor d.Actor has originated at least d.Counter
// events, growing the stored counter if d.Counter is larger. Witness never
// decreases a counter, so it is idempotent: witnessing the same dot twice
// has the same effect as witnessing it once.
func (v *VClock[A]) Witness(d dot.Dot[A]) {
	if v.counters == nil {
		v.counters = make(map[A]uint64)
	}
	if d.Counter > v.counters[d.Actor] {
		v.counters[d.Actor] = d.Counter
	}
}

// Inc bumps actor's counter by one and returns the resulting Dot, without
// mutating v. Callers that want the bump to stick should assign the result
// back via ApplyInc, or witness the returned dot.
func (v VClock[A]) Inc(actor A) dot.Dot[A] {
	return dot.New(actor, v.Get(actor)+1)
}

// ApplyInc increments actor's counter in place and returns the new Dot. This
// is the only sanctioned way to mint a fresh causal timestamp for a write.
func (v *VClock[A]) ApplyInc(actor A) dot.Dot[A] {
	d := v.Inc(actor)
	v.Witness(d)
	return d
}

// Merge mutates v to be the pointwise maximum of v and other, and also
// returns v for chaining. Merge is commutative, associative, and idempotent.
func (v *VClock[A]) Merge(other VClock[A]) VClock[A] {
	if v.counters == nil {
		v.counters = make(map[A]uint64)
	}
	for a, c := range other.counters {
		if c > v.counters[a] {
			v.counters[a] = c
		}
	}
	return *v
}

// Merged returns the pointwise maximum of v and other without mutating
// either receiver.
func Merged[A cmp.Ordered](v, other VClock[A]) VClock[A] {
	out := v.Clone()
	out.Merge(other)
	return out
}

// Subtract removes from v every actor a where v[a] <= other[a], leaving only
// events present in v that are not covered by other. It mutates v and also
// returns v for chaining.
func (v *VClock[A]) Subtract(other VClock[A]) VClock[A] {
	for a, c := range v.counters {
		if c <= other.Get(a) {
			delete(v.counters, a)
		}
	}
	return *v
}

// Subtracted returns v \ other (see Subtract) without mutating either
// receiver.
func Subtracted[A cmp.Ordered](v, other VClock[A]) VClock[A] {
	out := v.Clone()
	out.Subtract(other)
	return out
}

// Compare returns how v relates to other under the clock partial order.
func (v VClock[A]) Compare(other VClock[A]) Ordering {
	leq, geq := true, true
	for _, a := range v.Actors() {
		if v.Get(a) > other.Get(a) {
			leq = false
		}
	}
	for _, a := range other.Actors() {
		if other.Get(a) > v.Get(a) {
			geq = false
		}
	}
	switch {
	case leq && geq:
		return Equal
	case leq:
		return Less
	case geq:
		return Greater
	default:
		return Concurrent
	}
}

// LessEq reports whether v <= other (v's causal past is contained in other's).
func (v VClock[A]) LessEq(other VClock[A]) bool {
	ord := v.Compare(other)
	return ord == Less || ord == Equal
}

// Less reports whether v < other.
func (v VClock[A]) Less(other VClock[A]) bool {
	return v.Compare(other) == Less
}

// Equal reports whether v and other witness exactly the same events.
func (v VClock[A]) Equal(other VClock[A]) bool {
	return v.Compare(other) == Equal
}

// Concurrent reports whether neither v <= other nor other <= v.
func (v VClock[A]) Concurrent(other VClock[A]) bool {
	return v.Compare(other) == Concurrent
}

// MarshalJSON encodes the clock as a plain actor-to-counter object, so a
// nil (never-witnessed) clock round-trips as "{}" rather than "null".
func (v VClock[A]) MarshalJSON() ([]byte, error) {
	if v.counters == nil {
		return json.Marshal(map[A]uint64{})
	}
	return json.Marshal(v.counters)
}

// UnmarshalJSON decodes a clock from the object produced by MarshalJSON.
func (v *VClock[A]) UnmarshalJSON(data []byte) error {
	var m map[A]uint64
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	v.counters = m
	return nil
}

// Witnesses reports whether v has already recorded d's event, i.e. whether
// v's counter for d.Actor is at least d.Counter. Unlike Witness (which
// mutates), Witnesses is a pure membership test used by LSeq's state-based
// Merge and its Delete to decide whether an entry missing from a replica was
// dropped deliberately (witnessed) or simply never seen (not witnessed).
func (v VClock[A]) Witnesses(d dot.Dot[A]) bool {
	return v.Get(d.Actor) >= d.Counter
}
