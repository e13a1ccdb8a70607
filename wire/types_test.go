package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMakeTag(t *testing.T) {
	require.Equal(t, byte(0x00), MakeTag(WireInteger, 0, false))
	require.Equal(t, byte(0x78), MakeTag(WireInteger, 15, false))
	require.Equal(t, byte(0xD0), MakeTag(WireInteger, 10, true))
	require.Equal(t, byte(0x14), MakeTag(WireBytes, 2, false))

	// excess value bits are masked off
	require.Equal(t, MakeTag(WireInteger, 0x1F, false), MakeTag(WireInteger, 0x0F, false))
}

func TestTagWireType(t *testing.T) {
	for wt := WireType(0); wt < 8; wt++ {
		require.Equal(t, wt, TagWireType(MakeTag(wt, 9, true)))
	}
}

func TestWireTypeProperties(t *testing.T) {
	require.True(t, WireInteger.HasVarint())
	require.True(t, WireSequence.HasVarint())
	require.True(t, WireBytes.HasVarint())
	require.True(t, WireVariant.HasVarint())
	require.False(t, WireFixed32.HasVarint())
	require.False(t, WireFixed64.HasVarint())

	require.True(t, WireReserved6.Reserved())
	require.True(t, WireReserved7.Reserved())
	require.False(t, WireSequence.Reserved())

	require.Equal(t, "variant", WireVariant.String())
	require.Equal(t, "invalid", WireType(42).String())
}
