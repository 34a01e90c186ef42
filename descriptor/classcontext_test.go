package descriptor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeClassSpecificRoutesByTriplet(t *testing.T) {
	cdcRaw := []byte{5, uint8(TypeCSInterface), CDCHeader, 0x10, 0x01}
	d, err := DecodeClassSpecific(cdcRaw, ClassTriplet{BaseClass: ClassCDCCommunications}, false)
	require.NoError(t, err)
	_, ok := d.(*Communication)
	require.True(t, ok)

	midiRaw := []byte{7, uint8(TypeCSInterface), MIDIHeader, 0x00, 0x01, 0x41, 0x00}
	d, err = DecodeClassSpecific(midiRaw, ClassTriplet{BaseClass: ClassAudio, SubClass: MIDIStreamingSubclass}, false)
	require.NoError(t, err)
	_, ok = d.(*Midi)
	require.True(t, ok)

	ccidRaw := make([]byte, 54)
	ccidRaw[0], ccidRaw[1] = 54, uint8(TypeCSInterface)
	d, err = DecodeClassSpecific(ccidRaw, ClassTriplet{BaseClass: ClassSmartCard}, false)
	require.NoError(t, err)
	_, ok = d.(*CCID)
	require.True(t, ok)
}

func TestDecodeClassSpecificAudioControlMixerUnit(t *testing.T) {
	acRaw := []byte{
		14, uint8(TypeCSInterface), 0x04,
		5, 2, 1, 2, 2, 0x03, 0x00, 0, 0, 0, 7,
	}
	d, err := DecodeClassSpecific(acRaw, ClassTriplet{BaseClass: ClassAudio, SubClass: AudioControlSubclass, Protocol: 0x00}, false)
	require.NoError(t, err)
	a, ok := d.(*Audio)
	require.True(t, ok)
	require.NotNil(t, a.MixerUnit1)
}
