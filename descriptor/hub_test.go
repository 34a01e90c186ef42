package descriptor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeHubRoundTrip(t *testing.T) {
	raw := []byte{8, uint8(TypeHub), 4, 0x00, 0x00, 50, 50, 0x1E}
	d, err := Decode(raw)
	require.NoError(t, err)
	h, ok := d.(*Hub)
	require.True(t, ok)
	require.Equal(t, uint8(4), h.NumPorts)
	require.Equal(t, raw, h.Bytes())
}

func TestDecodeSuperSpeedHubRoundTrip(t *testing.T) {
	raw := []byte{12, uint8(TypeSuperSpeedHub), 4, 0x00, 0x00, 50, 50, 0x01, 0x64, 0x00, 0x00, 0x00}
	d, err := Decode(raw)
	require.NoError(t, err)
	h, ok := d.(*Hub)
	require.True(t, ok)
	require.Equal(t, raw, h.Bytes())
}

func TestDecodePortStatus4Byte(t *testing.T) {
	ps, err := DecodePortStatus(1, []byte{0x01, 0x01, 0x10, 0x00})
	require.NoError(t, err)
	require.False(t, ps.HasExtended)
	require.Equal(t, uint16(0x0101), ps.Status)
}

func TestDecodePortStatus8ByteExtended(t *testing.T) {
	ps, err := DecodePortStatus(1, []byte{0x01, 0x01, 0x10, 0x00, 0x01, 0x00, 0x00, 0x00})
	require.NoError(t, err)
	require.True(t, ps.HasExtended)
	require.Equal(t, uint32(1), ps.ExtendedStatus)
}
