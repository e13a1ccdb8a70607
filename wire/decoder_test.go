package wire

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFloatKnownBytes(t *testing.T) {
	e := NewEncoder()
	require.NoError(t, e.EncodeFloat32(1.5))
	require.Equal(t, []byte{0x01, 0x00, 0x00, 0xC0, 0x3F}, e.Bytes())

	e = NewEncoder()
	require.NoError(t, e.EncodeFloat64(1.5))
	require.Equal(t, []byte{0x02, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xF8, 0x3F}, e.Bytes())
}

func TestFloatRoundTrips(t *testing.T) {
	values := []float64{0, 1.5, -2.25, math.Pi, math.Inf(1), math.Inf(-1), math.SmallestNonzeroFloat64}
	for _, v := range values {
		e := NewEncoder()
		require.NoError(t, e.EncodeFloat64(v))
		got, err := NewDecoder(e.Bytes()).DecodeFloat64()
		require.NoError(t, err)
		require.Equal(t, v, got)
	}

	e := NewEncoder()
	require.NoError(t, e.EncodeFloat32(float32(math.Pi)))
	got32, err := NewDecoder(e.Bytes()).DecodeFloat32()
	require.NoError(t, err)
	require.Equal(t, float32(math.Pi), got32)
}

func TestFloatNaN(t *testing.T) {
	e := NewEncoder()
	require.NoError(t, e.EncodeFloat64(math.NaN()))
	got, err := NewDecoder(e.Bytes()).DecodeFloat64()
	require.NoError(t, err)
	require.True(t, math.IsNaN(got))
}

func TestFloatCrossWidth(t *testing.T) {
	// a reader expecting float64 widens a Fixed32 payload
	e := NewEncoder()
	require.NoError(t, e.EncodeFloat32(1.5))
	got, err := NewDecoder(e.Bytes()).DecodeFloat64()
	require.NoError(t, err)
	require.Equal(t, 1.5, got)

	// a reader expecting float32 truncates a Fixed64 payload
	e = NewEncoder()
	require.NoError(t, e.EncodeFloat64(math.Pi))
	got32, err := NewDecoder(e.Bytes()).DecodeFloat32()
	require.NoError(t, err)
	require.Equal(t, float32(math.Pi), got32)
}

func TestFloatRejectsIntegerWire(t *testing.T) {
	e := NewEncoder()
	require.NoError(t, e.EncodeUint64(42))
	_, err := NewDecoder(e.Bytes()).DecodeFloat64()
	require.ErrorIs(t, err, ErrWireTypeMismatch)
}

func TestFixedTruncated(t *testing.T) {
	e := NewEncoder()
	require.NoError(t, e.EncodeFloat64(1.0))
	_, err := NewDecoder(e.Bytes()[:5]).DecodeFloat64()
	require.ErrorIs(t, err, ErrUnexpectedEOF)
}

func TestStringRoundTrip(t *testing.T) {
	tests := []string{"", "a", "hello", "héllo wörld", string([]byte{0x00, 0xFF})}
	for _, s := range tests {
		e := NewEncoder()
		require.NoError(t, e.EncodeString(s))
		got, err := NewDecoder(e.Bytes()).DecodeString()
		require.NoError(t, err)
		require.Equal(t, s, got)
	}
}

func TestStringKnownBytes(t *testing.T) {
	e := NewEncoder()
	require.NoError(t, e.EncodeString("hi"))
	require.Equal(t, []byte{0x14, 'h', 'i'}, e.Bytes())
}

func TestBytesBorrowed(t *testing.T) {
	e := NewEncoder()
	require.NoError(t, e.EncodeBytes([]byte{1, 2, 3}))
	buf := e.Bytes()

	got, err := NewDecoder(buf).DecodeBytes()
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, got)

	// the default read aliases the input buffer
	buf[1] = 9
	require.Equal(t, []byte{9, 2, 3}, got)
}

func TestBytesCopied(t *testing.T) {
	e := NewEncoder()
	require.NoError(t, e.EncodeBytes([]byte{1, 2, 3}))
	buf := e.Bytes()

	got, err := NewDecoder(buf).DecodeBytesCopy()
	require.NoError(t, err)
	buf[1] = 9
	require.Equal(t, []byte{1, 2, 3}, got)
}

func TestBytesLengthPastEnd(t *testing.T) {
	// length claims more payload than the buffer holds
	e := NewEncoder()
	require.NoError(t, NewVarintEncoder(e).EncodeTagged(WireBytes, 100))
	_, err := NewDecoder(e.Bytes()).DecodeBytes()
	require.ErrorIs(t, err, ErrUnexpectedEOF)
}

func TestPeekWireType(t *testing.T) {
	e := NewEncoder()
	require.NoError(t, e.EncodeString("x"))

	d := NewDecoder(e.Bytes())
	wt, err := d.PeekWireType()
	require.NoError(t, err)
	require.Equal(t, WireBytes, wt)

	// peeking does not consume
	s, err := d.DecodeString()
	require.NoError(t, err)
	require.Equal(t, "x", s)
}

func TestDecodeOption(t *testing.T) {
	e := NewEncoder()
	require.NoError(t, e.BeginVariant(0))
	require.NoError(t, e.EncodeUnit())

	d := NewDecoder(e.Bytes())
	present, err := d.DecodeOption()
	require.NoError(t, err)
	require.False(t, present)
	require.Zero(t, d.Remaining())

	e = NewEncoder()
	require.NoError(t, e.BeginVariant(1))
	require.NoError(t, e.EncodeUint64(7))

	d = NewDecoder(e.Bytes())
	present, err = d.DecodeOption()
	require.NoError(t, err)
	require.True(t, present)
	v, err := d.DecodeUint64()
	require.NoError(t, err)
	require.Equal(t, uint64(7), v)
}

func TestEncoderLimit(t *testing.T) {
	e := NewEncoderWithLimit(4)
	require.NoError(t, e.EncodeString("ab"))
	err := e.EncodeString("cd")
	require.ErrorIs(t, err, ErrOutputExhausted)
}

func TestEncoderReset(t *testing.T) {
	e := NewEncoder()
	require.NoError(t, e.EncodeUint64(10042))
	require.Equal(t, 3, e.Len())
	e.Reset()
	require.Zero(t, e.Len())
	require.NoError(t, e.EncodeBool(true))
	require.Equal(t, []byte{0x08}, e.Bytes())
}
