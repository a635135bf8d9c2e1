// Package lseq implements a Logoot-style replicated sequence: an ordered,
// dense-identifier CRDT suitable for collaborative text.
package lseq

import "cmp"

// Level is one (position, actor, counter) step in an Identifier's path
// through the exponential identifier tree. Counter is the originating Dot's
// counter for the write that minted this level; it exists purely as a
// tie-breaker so that the same actor inserting at the same gap twice (e.g.
// insert "a", delete it, insert "a" again between the same now-empty
// neighbors) still mints two distinct identifiers, since allocate would
// otherwise compute the same (position, actor) pair both times.
type Level[A cmp.Ordered] struct {
	Position uint64 `json:"position"`
	Actor    A      `json:"actor"`
	Counter  uint64 `json:"counter"`
}

// Identifier is a non-empty path of Levels. Identifiers compare
// lexicographically by Position, with Actor and then Counter breaking ties
// level-by-level; a shorter identifier sorts before any extension of it once
// their common prefix compares equal. A nil Identifier is used only as a
// sentinel "begin"/"end" neighbor argument, never stored as a live entry's
// identity.
type Identifier[A cmp.Ordered] []Level[A]

// Compare returns -1, 0, or 1 as a sorts before, equal to, or after b.
func Compare[A cmp.Ordered](a, b Identifier[A]) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i].Position != b[i].Position {
			if a[i].Position < b[i].Position {
				return -1
			}
			return 1
		}
		if a[i].Actor != b[i].Actor {
			if a[i].Actor < b[i].Actor {
				return -1
			}
			return 1
		}
		if a[i].Counter != b[i].Counter {
			if a[i].Counter < b[i].Counter {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// Less reports whether id sorts strictly before other.
func (id Identifier[A]) Less(other Identifier[A]) bool {
	return Compare(id, other) < 0
}

// Equal reports whether id and other are the same path.
func (id Identifier[A]) Equal(other Identifier[A]) bool {
	return Compare(id, other) == 0
}

func posAt[A cmp.Ordered](id Identifier[A], depth int) (pos int64, ok bool) {
	if depth >= len(id) {
		return 0, false
	}
	return int64(id[depth].Position), true
}

func levelAt[A cmp.Ordered](id Identifier[A], depth int) Level[A] {
	return id[depth]
}
