package descriptor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeVideoInputTerminal(t *testing.T) {
	raw := []byte{8, uint8(TypeCSInterface), UVCVCInputTerminal, 1, 0x01, 0x02, 0, 0}
	d, err := decodeVideo(raw, false)
	require.NoError(t, err)
	v, ok := d.(*Video)
	require.True(t, ok)
	require.NotNil(t, v.InputTerminal)
	require.Equal(t, uint8(1), v.InputTerminal.TerminalID)
	require.Equal(t, uint16(0x0201), v.InputTerminal.TerminalType)
}

func TestDecodeVideoSelectorUnit(t *testing.T) {
	raw := []byte{7, uint8(TypeCSInterface), UVCVCSelectorUnit, 5, 2, 1, 2, 0}
	d, err := decodeVideo(raw, false)
	require.NoError(t, err)
	v := d.(*Video)
	require.NotNil(t, v.SelectorUnit)
	require.Equal(t, []uint8{1, 2}, v.SelectorUnit.SourceIDs)
}

func TestDecodeVideoStreamingFormatUncompressed(t *testing.T) {
	raw := make([]byte, 27)
	raw[0], raw[1], raw[2] = 27, uint8(TypeCSInterface), UVCVSFormatUncompressed
	raw[3] = 1 // format index
	raw[4] = 2 // num frame descriptors
	d, err := decodeVideo(raw, true)
	require.NoError(t, err)
	v := d.(*Video)
	require.NotNil(t, v.FormatUncompressed)
	require.Equal(t, uint8(1), v.FormatUncompressed.FormatIndex)
	require.Equal(t, uint8(2), v.FormatUncompressed.NumFrameDescriptors)
}
