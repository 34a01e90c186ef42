package descriptor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeMidiHeader(t *testing.T) {
	raw := []byte{7, uint8(TypeCSInterface), MIDIHeader, 0x00, 0x01, 0x41, 0x00}
	d, err := decodeMidi(raw, false)
	require.NoError(t, err)
	m, ok := d.(*Midi)
	require.True(t, ok)
	require.NotNil(t, m.Header)
	require.Equal(t, uint16(0x0100), m.Header.BcdMSC)
	require.Equal(t, uint16(0x0041), m.Header.TotalLength)
}

func TestDecodeMidiOutJackWithSources(t *testing.T) {
	raw := []byte{
		11, uint8(TypeCSInterface), MIDIOutJack,
		0x01,       // embedded
		3,          // jack id
		2,          // nr input pins
		1, 1, 2, 1, // source_id/source_pin pairs
		0, // jack string index
	}
	d, err := decodeMidi(raw, false)
	require.NoError(t, err)
	m := d.(*Midi)
	require.NotNil(t, m.OutJack)
	require.True(t, m.OutJack.IsEmbedded)
	require.Equal(t, uint8(3), m.OutJack.JackID)
	require.Equal(t, []MidiSourcePin{{SourceID: 1, SourcePin: 1}, {SourceID: 2, SourcePin: 1}}, m.OutJack.Sources)
}

func TestDecodeMidiEndpointIsNotReinterpreted(t *testing.T) {
	raw := []byte{4, uint8(TypeCSEndpoint), MIDIEndpointGeneral, 2}
	d, err := decodeMidi(raw, true)
	require.NoError(t, err)
	m := d.(*Midi)
	require.Nil(t, m.Header)
	require.Nil(t, m.OutJack)
}
