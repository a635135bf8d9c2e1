package lseq

import (
	"cmp"

	"github.com/Polqt/crdtcore"
	"github.com/pkg/errors"
)

// base is the fan-out at depth 0; fan-out doubles at every deeper level
// (boundary(d) = base * 2^d), so identifier length grows sub-linearly with
// insertions concentrated at one hotspot.
const base = 16

// maxDepth bounds how far the allocator will descend looking for a gap
// before giving up. With an exponentially growing boundary, exhaustion
// within this many levels is not reachable by any real editing session;
// the bound exists so a pathological (p, q) pair fails closed with
// ErrIdentifierExhaustion instead of looping forever.
const maxDepth = 48

func boundary(depth int) int64 {
	return int64(base) << uint(depth)
}

// allocate mints a fresh identifier strictly between p and q (either may be
// nil, meaning "sentinel begin"/"sentinel end"), stamped with actor and
// counter at its final level. allocate is a pure function of its four
// arguments: replaying it with the same arguments at any replica yields the
// identical identifier, which op-based convergence depends on (see §4.6.1 of
// the design spec) — it always takes the deterministic midpoint of the gap
// at the shallowest depth that has one, never randomized jitter. counter (the originating
// Dot's counter) exists only to disambiguate the same actor allocating at
// the same gap twice, e.g. across an insert/delete/insert cycle that leaves
// p and q unchanged between the two inserts.
func allocate[A cmp.Ordered](p, q Identifier[A], actor A, counter uint64) (Identifier[A], error) {
	prefix := make([]Level[A], 0, maxDepth)

	for depth := 0; depth < maxDepth; depth++ {
		pPos, pOK := posAt(p, depth)
		qPos, qOK := posAt(q, depth)

		// A missing level of p counts as position 0, so a minted final level
		// is never at position 0 and there is always room below it.
		low := int64(1)
		if pOK {
			low = pPos + 1
		}
		high := boundary(depth) - 1
		if qOK {
			high = qPos - 1
		}

		if high > low {
			mid := low + (high-low)/2
			id := make(Identifier[A], depth+1)
			copy(id, prefix)
			id[depth] = Level[A]{Position: uint64(mid), Actor: actor, Counter: counter}
			return id, nil
		}

		// No usable gap at this depth (zero or exactly one slot — per the
		// spec's pinned tie-break, a single slot differing only by actor
		// still forces a descent to guarantee density). Extend the prefix
		// along p while p still has a level here. Otherwise descend under a
		// position-0 level, which sorts below q's level here — unless q's
		// level is itself at position 0 (never a final level, so q continues
		// deeper), in which case follow q and keep bounding by its next level.
		var next Level[A]
		switch {
		case pOK:
			next = levelAt(p, depth)
		case qOK && qPos == 0:
			next = levelAt(q, depth)
		default:
			next = Level[A]{Position: 0, Actor: actor, Counter: counter}
		}
		prefix = append(prefix, next)
	}

	return nil, errors.WithStack(crdtcore.ErrIdentifierExhaustion)
}
