package lseq

import (
	"cmp"
	"log/slog"
	"sort"

	"github.com/Polqt/crdtcore"
	"github.com/Polqt/crdtcore/clock"
	"github.com/Polqt/crdtcore/dot"
	"github.com/pkg/errors"
)

// entry is one live sequence element: its identity, the Dot that originated
// it, and its value. Deletes remove the entry outright — the Dot survives
// only inside the global clock as a causal waypoint, per §4.6.
type entry[A cmp.Ordered, V comparable] struct {
	ID  Identifier[A]
	Dot dot.Dot[A]
	Val V
}

// LSeq is a replicated sequence over actor type A and value type V. Entries
// are kept sorted by Identifier so that iterating them yields the
// user-visible order directly. The zero value is a valid empty sequence.
type LSeq[A cmp.Ordered, V comparable] struct {
	items []entry[A, V]
	clock clock.VClock[A]
}

// New returns an empty sequence.
func New[A cmp.Ordered, V comparable]() LSeq[A, V] {
	return LSeq[A, V]{}
}

// Read returns the current user-visible value sequence (in identifier
// order) alongside a ReadCtx snapshotting the global clock; both AddClock
// and RmClock are that same clock, since every write (insert or delete)
// depends on everything the reader has seen.
func (s LSeq[A, V]) Read() crdtcore.ReadCtx[A, []V] {
	vals := make([]V, len(s.items))
	for i, e := range s.items {
		vals[i] = e.Val
	}
	return crdtcore.ReadCtx[A, []V]{Val: vals, AddClock: s.clock.Clone(), RmClock: s.clock.Clone()}
}

// Identifiers returns the identifiers currently alive, in sequence order —
// the host uses these as the p/q neighbor arguments to InsertBetween, and as
// the target of Delete.
func (s LSeq[A, V]) Identifiers() []Identifier[A] {
	ids := make([]Identifier[A], len(s.items))
	for i, e := range s.items {
		ids[i] = e.ID
	}
	return ids
}

// Begin and End are the sentinel neighbor values meaning "before the first
// element" and "after the last element" respectively. Both are nil; they
// exist as named constants so call sites read as intent rather than as a
// bare nil.
func Begin[A cmp.Ordered]() Identifier[A] { return nil }
func End[A cmp.Ordered]() Identifier[A]   { return nil }

// InsertBetween authors an Insert Op carrying val and the neighbors p, q as
// observed by the caller (either may be Begin()/End()). InsertBetween is
// pure: it does not mutate s, nor does it allocate the identifier itself —
// allocation happens at Apply time, identically at every replica that
// applies the resulting op (see allocate's doc comment).
func (s LSeq[A, V]) InsertBetween(val V, p, q Identifier[A], ctx crdtcore.AddCtx[A]) Op[A, V] {
	return Op[A, V]{Kind: KindInsert, Clock: ctx.Clock, Val: val, P: p, Q: q, OriginDot: ctx.Dot}
}

// Delete authors a Delete Op targeting id, carrying rmClock (typically
// Read().RmClock) as the causal context the removal references. Delete does
// not mint a new Dot: removing an entry is not itself a new originating
// event in this design, only a witness that the remover has seen at least
// rmClock.
func (s LSeq[A, V]) Delete(id Identifier[A], rmClock clock.VClock[A]) Op[A, V] {
	return Op[A, V]{Kind: KindDelete, Clock: rmClock, ID: id}
}

// Apply delivers op to s. Insert allocates a fresh identifier between
// op.P and op.Q (identically at every replica, since allocate is
// deterministic) and inserts it unless an entry with that identifier
// already exists (a duplicate delivery of the same causal event, handled
// idempotently). Delete removes the targeted entry; redelivering a Delete
// already reflected in s.clock is a no-op for the same reason, and only a
// target s.clock has never witnessed reports ErrUnknownIdentifier — the
// reference design assumes causal delivery, so a genuinely unknown target is
// a boundary error, not a dropped tombstone intent.
func (s *LSeq[A, V]) Apply(op Op[A, V]) error {
	switch op.Kind {
	case KindInsert:
		if op.Clock.IsEmpty() {
			slog.Debug("lseq: dropping insert with empty clock")
			return nil
		}
		id, err := allocate(op.P, op.Q, op.OriginDot.Actor, op.OriginDot.Counter)
		if err != nil {
			return err
		}
		if _, found := s.find(id); !found {
			s.insertAt(s.insertionIndex(id), entry[A, V]{ID: id, Dot: op.OriginDot, Val: op.Val})
		}
		next := s.clock.Clone()
		next.Witness(op.OriginDot)
		s.clock = next
		return nil

	case KindDelete:
		idx, found := s.find(op.ID)
		if !found {
			// The final level of an identifier carries its origin dot.
			if n := len(op.ID); n > 0 {
				last := op.ID[n-1]
				if last.Counter > 0 && s.clock.Witnesses(dot.New(last.Actor, last.Counter)) {
					slog.Debug("lseq: dropping already-applied delete")
					return nil
				}
			}
			return errors.WithStack(crdtcore.ErrUnknownIdentifier)
		}
		s.removeAt(idx)
		s.clock = clock.Merged(s.clock, op.Clock)
		return nil

	default:
		return errors.Errorf("lseq: unknown op kind %v", op.Kind)
	}
}

// Merge joins s and other into their union, resolving entries present on
// only one side by asking the other side's clock whether it has already
// witnessed (and therefore deliberately deleted) that entry's origin dot —
// the same observed-remove reasoning an OR-Set uses, adapted to a sequence
// keyed by identifier instead of a set keyed by value.
func (s LSeq[A, V]) Merge(other LSeq[A, V]) LSeq[A, V] {
	merged := make([]entry[A, V], 0, len(s.items)+len(other.items))
	i, j := 0, 0
	for i < len(s.items) && j < len(other.items) {
		switch Compare(s.items[i].ID, other.items[j].ID) {
		case 0:
			merged = append(merged, s.items[i])
			i++
			j++
		case -1:
			e := s.items[i]
			if !other.clock.Witnesses(e.Dot) {
				merged = append(merged, e)
			}
			i++
		default:
			e := other.items[j]
			if !s.clock.Witnesses(e.Dot) {
				merged = append(merged, e)
			}
			j++
		}
	}
	for ; i < len(s.items); i++ {
		e := s.items[i]
		if !other.clock.Witnesses(e.Dot) {
			merged = append(merged, e)
		}
	}
	for ; j < len(other.items); j++ {
		e := other.items[j]
		if !s.clock.Witnesses(e.Dot) {
			merged = append(merged, e)
		}
	}
	return LSeq[A, V]{items: merged, clock: clock.Merged(s.clock, other.clock)}
}

// Forget drops global-clock components covered by stabilityClock without
// touching the sequence itself: entry identities are stable under
// truncation, which is only a causal-history GC aid.
func (s LSeq[A, V]) Forget(stabilityClock clock.VClock[A]) LSeq[A, V] {
	kept := make([]entry[A, V], len(s.items))
	copy(kept, s.items)
	return LSeq[A, V]{items: kept, clock: clock.Subtracted(s.clock, stabilityClock)}
}

// Equal reports structural equality: the same identifiers, in the same
// order, each carrying the same originating Dot and value.
func (s LSeq[A, V]) Equal(other LSeq[A, V]) bool {
	if len(s.items) != len(other.items) {
		return false
	}
	for i := range s.items {
		a, b := s.items[i], other.items[i]
		if !a.ID.Equal(b.ID) || !a.Dot.Equal(b.Dot) || a.Val != b.Val {
			return false
		}
	}
	return true
}

func (s *LSeq[A, V]) find(id Identifier[A]) (int, bool) {
	idx := s.insertionIndex(id)
	if idx < len(s.items) && s.items[idx].ID.Equal(id) {
		return idx, true
	}
	return idx, false
}

func (s *LSeq[A, V]) insertionIndex(id Identifier[A]) int {
	return sort.Search(len(s.items), func(i int) bool {
		return Compare(s.items[i].ID, id) >= 0
	})
}

// insertAt and removeAt always build a freshly-allocated backing array
// rather than shifting s.items in place. LSeq values are copied by value
// throughout this library (every Merge/scenario test takes `replicaA :=
// base`); an in-place append-and-shift would write through the shared
// backing array copying gives you, silently corrupting any sibling value
// that happened to still have spare capacity over the same slots.
func (s *LSeq[A, V]) insertAt(idx int, e entry[A, V]) {
	next := make([]entry[A, V], len(s.items)+1)
	copy(next[:idx], s.items[:idx])
	next[idx] = e
	copy(next[idx+1:], s.items[idx:])
	s.items = next
}

func (s *LSeq[A, V]) removeAt(idx int) {
	next := make([]entry[A, V], len(s.items)-1)
	copy(next[:idx], s.items[:idx])
	copy(next[idx:], s.items[idx+1:])
	s.items = next
}

var (
	_ crdtcore.CvRDT[LSeq[string, rune]]                        = LSeq[string, rune]{}
	_ crdtcore.CmRDT[Op[string, rune]]                          = (*LSeq[string, rune])(nil)
	_ crdtcore.Causal[clock.VClock[string], LSeq[string, rune]] = LSeq[string, rune]{}
)
