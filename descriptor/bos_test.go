package descriptor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeWebUSBURL(t *testing.T) {
	raw := []byte{0x0A, 0x03, 0x01, 'e', 'x', 'a', 'm', 'p', 'l', 'e'}
	url, err := DecodeWebUSBURL(raw)
	require.NoError(t, err)
	require.Equal(t, "https://example", url)
}

func TestDecodeWebUSBURLUnknownScheme(t *testing.T) {
	raw := []byte{0x0A, 0x03, 0x02, 'e', 'x', 'a', 'm', 'p', 'l', 'e'}
	_, err := DecodeWebUSBURL(raw)
	require.Error(t, err)
}

func TestDecodeBOSTruncatedCapabilityWarnsAndStops(t *testing.T) {
	raw := []byte{
		5, uint8(TypeBOS),
		9, 0, // wTotalLength (too short to hold a USB2Extension capability)
		1, // bNumDeviceCaps
		7, uint8(TypeDeviceCapability), uint8(CapUSB2Extension), 0x00, 0x00,
	}
	d, err := Decode(raw)
	require.NoError(t, err)
	bos, ok := d.(*BOS)
	require.True(t, ok)
	require.Empty(t, bos.Capabilities)
}

func TestPlatformWebUSBGUID(t *testing.T) {
	p := &Platform{}
	guid := []byte{0x38, 0xb6, 0x08, 0x34, 0xa9, 0x09, 0xa0, 0x47, 0x8b, 0xfd, 0xa0, 0x76, 0x88, 0x15, 0xb6, 0x65}
	copy(p.GUID[:], guid)
	require.True(t, p.IsWebUSB())
}
