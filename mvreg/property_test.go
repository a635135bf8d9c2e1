package mvreg

import (
	"testing"

	"github.com/Polqt/crdtcore"
	"github.com/Polqt/crdtcore/clock"
	"github.com/google/go-cmp/cmp"
	"pgregory.net/rapid"
)

var actorGen = rapid.SampledFrom([]string{"a", "b", "c", "d"})
var valGen = rapid.Uint8()

// step is one (actor, value) write intention; replaying a sequence of steps
// against an empty register and a running causal clock produces a history
// of Ops exactly as a host would author them.
type step struct {
	Actor string
	Val   uint8
}

var stepGen = rapid.Custom(func(t *rapid.T) step {
	return step{
		Actor: actorGen.Draw(t, "actor"),
		Val:   valGen.Draw(t, "val"),
	}
})

// applyHistory authors and applies each step in order against a fresh
// register, using a single shared clock so causally-later writes in the
// history really do dominate earlier ones from the same actor.
func applyHistory(steps []step) (MVReg[string, uint8], []Op[string, uint8]) {
	r := New[string, uint8]()
	ops := make([]Op[string, uint8], 0, len(steps))
	for _, s := range steps {
		ctx := r.Read().DeriveAddCtx(s.Actor)
		op := r.Set(s.Val, ctx)
		_ = r.Apply(op)
		ops = append(ops, op)
	}
	return r, ops
}

func equalRegs(t *rapid.T, a, b MVReg[string, uint8]) {
	t.Helper()
	if !a.Equal(b) {
		t.Fatalf("registers differ:\n  a = %+v\n  b = %+v", a, b)
	}
}

// P1: applying the same op twice equals applying it once.
func TestPropertyOpIdempotence(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		steps := rapid.SliceOfN(stepGen, 0, 8).Draw(t, "steps")
		r, ops := applyHistory(steps)
		if len(ops) == 0 {
			return
		}
		op := ops[rapid.IntRange(0, len(ops)-1).Draw(t, "idx")]
		once := r
		_ = once.Apply(op)
		twice := once
		_ = twice.Apply(op)
		equalRegs(t, once, twice)
	})
}

// disjointStepGen draws steps restricted to actors, so that two histories
// drawn from disjoint actor sets can never produce equal-clock-different-
// payload ops — the "compatible histories" precondition P2/P3 require.
func disjointStepGen(actors []string) *rapid.Generator[step] {
	gen := rapid.SampledFrom(actors)
	return rapid.Custom(func(t *rapid.T) step {
		return step{
			Actor: gen.Draw(t, "actor"),
			Val:   valGen.Draw(t, "val"),
		}
	})
}

var historyAActors = []string{"a", "b"}
var historyBActors = []string{"c", "d"}
var historyCActors = []string{"e", "f"}

func applyOps(ops []Op[string, uint8]) MVReg[string, uint8] {
	r := New[string, uint8]()
	for _, op := range ops {
		_ = r.Apply(op)
	}
	return r
}

// P2: applying history O2 on top of state-from-O1 equals applying O1 on top
// of state-from-O2, for compatible (disjoint-actor) histories.
func TestPropertyOpCommutativity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s1 := rapid.SliceOfN(disjointStepGen(historyAActors), 0, 5).Draw(t, "s1")
		s2 := rapid.SliceOfN(disjointStepGen(historyBActors), 0, 5).Draw(t, "s2")
		_, ops1 := applyHistory(s1)
		_, ops2 := applyHistory(s2)

		r12 := applyOps(ops1)
		for _, op := range ops2 {
			_ = r12.Apply(op)
		}

		r21 := applyOps(ops2)
		for _, op := range ops1 {
			_ = r21.Apply(op)
		}

		equalRegs(t, r12, r21)
	})
}

// P3: as P2, extended to three compatible histories — every order of
// applying the three in full agrees on the final state.
func TestPropertyOpAssociativity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s1 := rapid.SliceOfN(disjointStepGen(historyAActors), 0, 4).Draw(t, "s1")
		s2 := rapid.SliceOfN(disjointStepGen(historyBActors), 0, 4).Draw(t, "s2")
		s3 := rapid.SliceOfN(disjointStepGen(historyCActors), 0, 4).Draw(t, "s3")
		_, ops1 := applyHistory(s1)
		_, ops2 := applyHistory(s2)
		_, ops3 := applyHistory(s3)

		orders := [][][]Op[string, uint8]{
			{ops1, ops2, ops3},
			{ops2, ops3, ops1},
			{ops3, ops1, ops2},
			{ops1, ops3, ops2},
			{ops2, ops1, ops3},
			{ops3, ops2, ops1},
		}
		var first MVReg[string, uint8]
		for i, order := range orders {
			r := New[string, uint8]()
			for _, ops := range order {
				for _, op := range ops {
					_ = r.Apply(op)
				}
			}
			if i == 0 {
				first = r
				continue
			}
			equalRegs(t, first, r)
		}
	})
}

// P4: merging a register with its own clone is a no-op.
func TestPropertyMergeIdempotence(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		steps := rapid.SliceOfN(stepGen, 0, 8).Draw(t, "steps")
		r, _ := applyHistory(steps)
		equalRegs(t, r.Merge(r), r)
	})
}

// P5/P6: merge is commutative and associative.
func TestPropertyMergeCommutativeAssociative(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s1 := rapid.SliceOfN(stepGen, 0, 6).Draw(t, "s1")
		s2 := rapid.SliceOfN(stepGen, 0, 6).Draw(t, "s2")
		s3 := rapid.SliceOfN(stepGen, 0, 6).Draw(t, "s3")
		r1, _ := applyHistory(s1)
		r2, _ := applyHistory(s2)
		r3, _ := applyHistory(s3)

		equalRegs(t, r1.Merge(r2), r2.Merge(r1))
		equalRegs(t, r1.Merge(r2).Merge(r3), r1.Merge(r2.Merge(r3)))
	})
}

// P7: applying ops in sequence equals merging each op's singleton state.
func TestPropertyOpMergeEquivalence(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		steps := rapid.SliceOfN(stepGen, 0, 6).Draw(t, "steps")
		_, ops := applyHistory(steps)

		viaApply := New[string, uint8]()
		for _, op := range ops {
			_ = viaApply.Apply(op)
		}

		viaMerge := New[string, uint8]()
		for _, op := range ops {
			single := New[string, uint8]()
			_ = single.Apply(op)
			viaMerge = viaMerge.Merge(single)
		}

		equalRegs(t, viaApply, viaMerge)
	})
}

// P8: forgetting the empty clock changes nothing; forgetting the register's
// own join clock empties it.
func TestPropertyTruncation(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		steps := rapid.SliceOfN(stepGen, 0, 8).Draw(t, "steps")
		r, _ := applyHistory(steps)

		equalRegs(t, r.Forget(clock.New[string]()), r)
		equalRegs(t, r.Forget(r.Read().AddClock), New[string, uint8]())
	})
}

// Sanity check that ReadCtx round-trips through go-cmp for the documentation
// claim in §8 that deep structural equality of clocks is exercised with
// go-cmp rather than reflect.DeepEqual.
func TestReadCtxDeepEqualViaGoCmp(t *testing.T) {
	r := New[string, uint8]()
	op := r.Set(5, r.Read().DeriveAddCtx("a"))
	_ = r.Apply(op)

	got := r.Read()
	want := crdtcore.ReadCtx[string, []uint8]{Val: []uint8{5}, AddClock: got.AddClock, RmClock: got.RmClock}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ReadCtx mismatch (-want +got):\n%s", diff)
	}
}
