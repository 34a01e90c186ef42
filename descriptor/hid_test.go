package descriptor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeHIDTopAndRoundTrip(t *testing.T) {
	raw := []byte{
		9, uint8(TypeReport),
		0x10, 0x01, // bcdHID 1.10 wire form
		0x00,       // bCountryCode
		1,          // bNumDescriptors
		uint8(HIDReportTypeReport), 0x22, 0x00, // Report, length 34
	}
	d, err := decodeHIDTop(raw)
	require.NoError(t, err)
	h, ok := d.(*Hid)
	require.True(t, ok)
	require.Equal(t, uint16(0x0110), h.BcdHID)
	require.Len(t, h.Reports, 1)
	require.Equal(t, uint16(34), h.Reports[0].Length)
	require.Equal(t, raw, h.Bytes())
}

func TestDecodeHIDTopTooShort(t *testing.T) {
	_, err := decodeHIDTop([]byte{3, uint8(TypeReport), 0x00})
	require.Error(t, err)
}
