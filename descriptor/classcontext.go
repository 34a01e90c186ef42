package descriptor

// Audio/Video interface subclasses (bInterfaceSubClass), used to pick which
// subtype table a CS_INTERFACE/CS_ENDPOINT TLV belongs to.
const (
	AudioControlSubclass   uint8 = 0x01
	AudioStreamingSubclass uint8 = 0x02
	MIDIStreamingSubclass  uint8 = 0x03

	VideoControlSubclass   uint8 = 0x01
	VideoStreamingSubclass uint8 = 0x02
)

// DecodeClassSpecific is the second decode pass described by spec.md §4.A:
// given the neutral bytes of a class-specific TLV and the class triplet of
// the interface it was found in, reinterpret the TLV into the precise
// class-specific variant (Hid, Ccid, Printer, Communication, Midi, Audio,
// Video) instead of the generic/Unknown shape Decode would otherwise
// produce for descriptor types it doesn't recognize on its own (CS_INTERFACE
// 0x24, CS_ENDPOINT 0x25, and the handful of class types that overload
// standard-looking type bytes).
//
// Interface/Endpoint/Config/Device bodies reinterpreted under class context
// are handled by the profiler directly (it already has the typed standard
// descriptor); this function only concerns the *extra* trailing TLVs.
func DecodeClassSpecific(raw []byte, class ClassTriplet, isEndpoint bool) (Descriptor, error) {
	if len(raw) < 2 {
		return &Junk{Raw: append([]byte(nil), raw...)}, nil
	}
	switch class.BaseClass {
	case ClassSmartCard:
		return decodeCCID(raw)
	case ClassPrinter:
		return decodePrinter(raw)
	case ClassCDCCommunications:
		return decodeCommunication(raw)
	case ClassAudio:
		protocol := AudioProtocol(class.Protocol)
		switch class.SubClass {
		case MIDIStreamingSubclass:
			return decodeMidi(raw, isEndpoint)
		case AudioStreamingSubclass:
			return decodeAudio(raw, protocol, true, isEndpoint)
		default:
			return decodeAudio(raw, protocol, false, isEndpoint)
		}
	case ClassVideo:
		return decodeVideo(raw, class.SubClass == VideoStreamingSubclass)
	default:
		return Decode(raw)
	}
}
