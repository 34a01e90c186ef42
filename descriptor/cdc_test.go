package descriptor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeCommunicationHeader(t *testing.T) {
	raw := []byte{5, uint8(TypeCSInterface), CDCHeader, 0x10, 0x01}
	d, err := decodeCommunication(raw)
	require.NoError(t, err)
	c, ok := d.(*Communication)
	require.True(t, ok)
	require.NotNil(t, c.Header)
	require.Equal(t, uint16(0x0110), c.Header.BcdCDC)
}

func TestDecodeCommunicationUnion(t *testing.T) {
	raw := []byte{5, uint8(TypeCSInterface), CDCUnion, 0x00, 0x01}
	d, err := decodeCommunication(raw)
	require.NoError(t, err)
	c := d.(*Communication)
	require.NotNil(t, c.Union)
	require.Equal(t, uint8(0), c.Union.MasterInterface)
	require.Equal(t, []uint8{1}, c.Union.SlaveInterfaces)
}

func TestDecodeCommunicationTooShort(t *testing.T) {
	_, err := decodeCommunication([]byte{1, 2})
	require.Error(t, err)
}
