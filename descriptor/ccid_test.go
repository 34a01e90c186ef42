package descriptor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeCCIDRoundTrip(t *testing.T) {
	raw := make([]byte, 54)
	raw[0], raw[1] = 54, uint8(TypeCSInterface)
	putLE16(raw[2:4], 0x0110)
	raw[4] = 0 // bMaxSlotIndex
	raw[5] = 0x07
	d, err := decodeCCID(raw)
	require.NoError(t, err)
	c, ok := d.(*CCID)
	require.True(t, ok)
	require.Equal(t, uint16(0x0110), c.BcdCCID)
	require.Equal(t, raw, c.Bytes())
}

func TestDecodeCCIDTooShort(t *testing.T) {
	_, err := decodeCCID(make([]byte, 10))
	require.Error(t, err)
}
