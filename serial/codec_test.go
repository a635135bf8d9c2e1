package serial_test

import (
	"testing"

	"github.com/Polqt/crdtcore/clock"
	"github.com/Polqt/crdtcore/lseq"
	"github.com/Polqt/crdtcore/mvreg"
	"github.com/Polqt/crdtcore/serial"
	"github.com/stretchr/testify/require"
)

func TestJSONCodecRoundTripsMVRegOp(t *testing.T) {
	r := mvreg.New[string, int]()
	op := r.Set(42, r.Read().DeriveAddCtx("alice"))

	codec := serial.JSON{}
	data, err := codec.Marshal(op)
	require.NoError(t, err)

	var got mvreg.Op[string, int]
	require.NoError(t, codec.Unmarshal(data, &got))

	require.True(t, op.Clock.Equal(got.Clock))
	require.Equal(t, op.Val, got.Val)
}

func TestJSONCodecRoundTripsLSeqOp(t *testing.T) {
	s := lseq.New[string, rune]()
	ctx := s.Read().DeriveAddCtx("alice")
	op := s.InsertBetween('a', lseq.Begin[string](), lseq.End[string](), ctx)

	codec := serial.JSON{}
	data, err := codec.Marshal(op)
	require.NoError(t, err)

	var got lseq.Op[string, rune]
	require.NoError(t, codec.Unmarshal(data, &got))

	require.True(t, op.Clock.Equal(got.Clock))
	require.Equal(t, op.Val, got.Val)
	require.True(t, op.OriginDot.Equal(got.OriginDot))
}

func TestJSONCodecRoundTripsEmptyClockAsObject(t *testing.T) {
	codec := serial.JSON{}
	data, err := codec.Marshal(clock.New[string]())
	require.NoError(t, err)
	require.JSONEq(t, `{}`, string(data))

	var got clock.VClock[string]
	require.NoError(t, codec.Unmarshal(data, &got))
	require.True(t, got.IsEmpty())
}
