package descriptor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestDecodeMixerUnit1 matches spec.md §8 scenario 6 byte-for-byte.
func TestDecodeMixerUnit1(t *testing.T) {
	raw := []byte{
		14, uint8(TypeCSInterface), 0x04, // bDescriptorSubtype MIXER_UNIT (UAC1)
		5,          // unit_id
		2,          // nr_in_pins
		1, 2,       // source_ids
		2,          // nr_channels
		0x03, 0x00, // channel_config
		0,    // names_idx
		0, 0, // controls
		7, // mixer_idx
	}
	d, err := decodeAudio(raw, UAC1, false, false)
	require.NoError(t, err)
	a, ok := d.(*Audio)
	require.True(t, ok)
	require.NotNil(t, a.MixerUnit1)
	m := a.MixerUnit1
	require.Equal(t, uint8(5), m.UnitID)
	require.Equal(t, uint8(2), m.NrInPins)
	require.Equal(t, []uint8{1, 2}, m.SourceIDs)
	require.Equal(t, uint8(2), m.NrChannels)
	require.Equal(t, uint16(0x0003), m.ChannelConfig)
	require.Equal(t, []uint8{0, 0}, m.Controls)
	require.Equal(t, uint8(7), m.MixerIdx)

	names := ExpandChannelNames(UAC1, uint32(m.ChannelConfig))
	require.Equal(t, []string{"Left Front (L)", "Right Front (R)"}, names)
}

func TestDecodeAudioTooShort(t *testing.T) {
	_, err := decodeAudio([]byte{1, 2}, UAC1, false, false)
	require.Error(t, err)
}
