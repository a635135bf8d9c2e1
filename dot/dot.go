// Package dot provides the Dot type: the smallest causality primitive in the
// library, naming a single event originated by a single actor.
package dot

import "cmp"

// Dot names the c-th event originated by actor A. Counters for a given actor
// are strictly increasing; the zero Counter is never assigned to a real
// event (it is reserved to mean "no event" in VClock lookups).
type Dot[A cmp.Ordered] struct {
	Actor   A      `json:"actor"`
	Counter uint64 `json:"counter"`
}

// New returns the Dot (actor, counter).
func New[A cmp.Ordered](actor A, counter uint64) Dot[A] {
	return Dot[A]{Actor: actor, Counter: counter}
}

// Inc returns a Dot for the same actor with the counter incremented by one.
func (d Dot[A]) Inc() Dot[A] {
	return Dot[A]{Actor: d.Actor, Counter: d.Counter + 1}
}

// Equal reports whether d and other name the same event.
func (d Dot[A]) Equal(other Dot[A]) bool {
	return d.Actor == other.Actor && d.Counter == other.Counter
}

// Less orders dots lexicographically by (actor, counter).
func (d Dot[A]) Less(other Dot[A]) bool {
	if d.Actor != other.Actor {
		return d.Actor < other.Actor
	}
	return d.Counter < other.Counter
}
