package descriptor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeVersion(t *testing.T) {
	v := DecodeVersion(le16([]byte{0x10, 0x03}))
	require.Equal(t, Version{Major: 3, Minor: 1, SubMinor: 0}, v)
	require.Equal(t, "3.10", v.String())

	v2 := DecodeVersion(le16([]byte{0x01, 0x02}))
	require.Equal(t, Version{Major: 2, Minor: 0, SubMinor: 1}, v2)
	require.Equal(t, "2.01", v2.String())
}

func TestVersionRoundTrip(t *testing.T) {
	v := Version{Major: 3, Minor: 1, SubMinor: 0}
	require.Equal(t, v, DecodeVersion(v.Encode()))
}

func TestDeviceDecodeEncodeRoundTrip(t *testing.T) {
	raw := []byte{
		18, uint8(TypeDevice),
		0x00, 0x02, // bcdUSB 2.00
		0xFF, 0x00, 0x00, // class/sub/proto vendor-specific
		64,         // bMaxPacketSize0
		0x83, 0x04, // idVendor
		0x01, 0x00, // idProduct
		0x00, 0x01, // bcdDevice 1.00
		1, 2, 3, // string indices
		1, // bNumConfigurations
	}
	d, err := Decode(raw)
	require.NoError(t, err)
	dev, ok := d.(*Device)
	require.True(t, ok)
	require.Equal(t, uint16(0x0483), dev.VendorID)
	require.Equal(t, raw, dev.Bytes())
}

func TestDecodeTooShortProducesDescriptorLength(t *testing.T) {
	// bLength matches the (short) slice, so the buffer is genuinely
	// shorter than Device's minimum length rather than overrunning it.
	_, err := Decode([]byte{3, uint8(TypeDevice), 0x00})
	require.Error(t, err)
	require.Contains(t, err.Error(), "descriptor length")
}

func TestDecodeConfigRoundTrip(t *testing.T) {
	raw := []byte{9, uint8(TypeConfig), 0x19, 0x00, 1, 1, 0, 0x80, 50}
	d, err := Decode(raw)
	require.NoError(t, err)
	c, ok := d.(*Config)
	require.True(t, ok)
	require.Equal(t, uint16(0x0019), c.TotalLength)
	require.Equal(t, raw, c.Bytes())
}

func TestDecodeInterfaceAndEndpointRoundTrip(t *testing.T) {
	ifaceRaw := []byte{9, uint8(TypeInterface), 0, 0, 1, 0x03, 0x00, 0x00, 0}
	d, err := Decode(ifaceRaw)
	require.NoError(t, err)
	iface, ok := d.(*Interface)
	require.True(t, ok)
	require.Equal(t, uint8(ClassHID), iface.InterfaceClass)
	require.Equal(t, ifaceRaw, iface.Bytes())

	epRaw := []byte{7, uint8(TypeEndpoint), 0x81, 0x03, 0x08, 0x00, 0x0A}
	d, err = Decode(epRaw)
	require.NoError(t, err)
	ep, ok := d.(*Endpoint)
	require.True(t, ok)
	require.Equal(t, uint16(8), ep.MaxPacketSize)
	require.Equal(t, epRaw, ep.Bytes())
}

func TestDecodeStringDescriptor(t *testing.T) {
	raw := []byte{6, uint8(TypeString), 'A', 0x00, 'B', 0x00}
	d, err := Decode(raw)
	require.NoError(t, err)
	s, ok := d.(*String)
	require.True(t, ok)
	require.Equal(t, "AB", s.Text)
}

func TestDecodeBLengthOverrunIsInvalidNotPanic(t *testing.T) {
	raw := []byte{200, uint8(TypeDevice), 0x00, 0x02}
	var err error
	require.NotPanics(t, func() {
		_, err = Decode(raw)
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid descriptor")
}
