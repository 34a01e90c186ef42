package descriptor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodePrinterBasicDescriptors(t *testing.T) {
	raw := []byte{
		8, uint8(TypeCSInterface),
		0x01, // release number
		1,    // num descriptors
		0x00, 2, 0xAB, 0xCD,
	}
	d, err := decodePrinter(raw)
	require.NoError(t, err)
	p, ok := d.(*Printer)
	require.True(t, ok)
	require.Len(t, p.Descriptors, 1)
	require.Equal(t, []byte{0xAB, 0xCD}, p.Descriptors[0].Data)
}

func TestDecodePrinterTooShort(t *testing.T) {
	_, err := decodePrinter([]byte{1, 2})
	require.Error(t, err)
}
