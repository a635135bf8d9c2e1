package lseq

import (
	"cmp"

	"github.com/Polqt/crdtcore/clock"
	"github.com/Polqt/crdtcore/dot"
)

// Kind discriminates the two LSeq operations.
type Kind int

const (
	KindInsert Kind = iota
	KindDelete
)

// Op is the envelope for LSeq's two operations, produced only by
// InsertBetween and Delete. An Insert carries its observed neighbors rather
// than a pre-minted identifier: every replica that applies the op allocates
// the identifier itself (see allocate), which is why the allocator must be
// deterministic.
type Op[A cmp.Ordered, V any] struct {
	Kind  Kind            `json:"kind"`
	Clock clock.VClock[A] `json:"clock"`

	// Insert fields.
	Val       V              `json:"val,omitempty"`
	P         Identifier[A]  `json:"p,omitempty"`
	Q         Identifier[A]  `json:"q,omitempty"`
	OriginDot dot.Dot[A]     `json:"origin_dot"`

	// Delete fields.
	ID Identifier[A] `json:"id,omitempty"`
}
