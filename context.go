package crdtcore

import (
	"cmp"

	"github.com/Polqt/crdtcore/clock"
	"github.com/Polqt/crdtcore/dot"
)

// ReadCtx is returned by a replica's Read. AddClock is the clock a fresh
// write must carry (typically the replica's full join clock); RmClock is
// the clock a remove must reference (what the reader actually observed).
// For types without a meaningful distinction between the two (MVReg), both
// fields hold the same clock.
type ReadCtx[A cmp.Ordered, V any] struct {
	Val      V
	AddClock clock.VClock[A]
	RmClock  clock.VClock[A]
}

// AddCtx is derived from a ReadCtx by incrementing the reader's view at the
// host-supplied actor. The resulting Clock is exactly the causal dependency
// set of the write the host is about to author; there is no other sanctioned
// way to obtain it.
type AddCtx[A cmp.Ordered] struct {
	Clock clock.VClock[A]
	Actor A
	Dot   dot.Dot[A]
}

// DeriveAddCtx increments rc.AddClock at actor and returns the resulting
// causal dependency set as an AddCtx. This is the sole entry point by which
// a host mints the clock for a new write; hand-assembling a clock is
// undefined behavior per the library's contract.
func (rc ReadCtx[A, V]) DeriveAddCtx(actor A) AddCtx[A] {
	next := rc.AddClock.Clone()
	d := next.ApplyInc(actor)
	return AddCtx[A]{Clock: next, Actor: actor, Dot: d}
}
