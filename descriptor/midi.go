package descriptor

import "github.com/usbtree/usbtree/errs"

// MIDIStreaming class-specific interface subtypes.
const (
	MIDIHeader     uint8 = 0x01
	MIDIInJack     uint8 = 0x02
	MIDIOutJack    uint8 = 0x03
	MIDIElement    uint8 = 0x04
)

// MIDIEndpointGeneral is the CS_ENDPOINT subtype for MIDIStreaming bulk
// endpoints (subtype 0x01 in the endpoint's own table).
const MIDIEndpointGeneral uint8 = 0x01

// Element capability bits (bmCapabilities of an Element descriptor).
const (
	ElementCapMIDIClock uint32 = 1 << 0
	ElementCapMTC       uint32 = 1 << 1
	ElementCapMMC       uint32 = 1 << 2
	ElementCapGM1       uint32 = 1 << 3
	ElementCapGM2       uint32 = 1 << 4
	ElementCapGS        uint32 = 1 << 5
	ElementCapXG        uint32 = 1 << 6
	ElementCapEFX       uint32 = 1 << 7
	ElementCapMIDIPatchBay uint32 = 1 << 8
	ElementCapDLS1      uint32 = 1 << 9
	ElementCapDLS2      uint32 = 1 << 10
)

// Midi is the class-context reinterpretation of a CS_INTERFACE/CS_ENDPOINT
// descriptor within a MIDIStreaming interface (class ClassAudio, subclass 3).
type Midi struct {
	Subtype uint8
	Raw     []byte

	Header   *MidiHeader
	InJack   *MidiJack
	OutJack  *MidiJack
	Element  *MidiElement
}

func (m *Midi) DescriptorType() uint8 { return uint8(TypeCSInterface) }
func (m *Midi) Bytes() []byte         { return m.Raw }

type MidiHeader struct {
	BcdMSC      uint16
	TotalLength uint16
}

// MidiJack models both InputJack (no source pairs) and OutputJack (variable
// source_id/source_pin pairs).
type MidiJack struct {
	IsEmbedded bool
	JackID     uint8
	Sources    []MidiSourcePin // non-empty only for OutputJack
	JackStrIdx uint8
}

type MidiSourcePin struct {
	SourceID  uint8
	SourcePin uint8
}

type MidiElement struct {
	ElementID    uint8
	NrInPins     uint8
	Sources      []MidiSourcePin
	NrOutPins    uint8
	InTerminalLink  uint8
	OutTerminalLink uint8
	ElCapsSize   uint8
	Capabilities uint32
	ElementStrIdx uint8
}

func decodeMidi(raw []byte, isEndpoint bool) (Descriptor, error) {
	if len(raw) < 3 {
		return nil, &errs.DescriptorLengthError{Expected: 3, Got: len(raw)}
	}
	m := &Midi{Subtype: raw[2], Raw: append([]byte(nil), raw...)}
	if isEndpoint {
		return m, nil
	}
	switch raw[2] {
	case MIDIHeader:
		if len(raw) < 7 {
			return nil, &errs.DescriptorLengthError{Expected: 7, Got: len(raw)}
		}
		m.Header = &MidiHeader{BcdMSC: le16(raw[3:5]), TotalLength: le16(raw[5:7])}
	case MIDIInJack:
		if len(raw) < 6 {
			return nil, &errs.DescriptorLengthError{Expected: 6, Got: len(raw)}
		}
		m.InJack = &MidiJack{IsEmbedded: raw[3] == 0x01, JackID: raw[4], JackStrIdx: raw[5]}
	case MIDIOutJack:
		if len(raw) < 6 {
			return nil, &errs.DescriptorLengthError{Expected: 6, Got: len(raw)}
		}
		j := &MidiJack{IsEmbedded: raw[3] == 0x01, JackID: raw[4]}
		nrPins := int(raw[5])
		pos := 6
		for i := 0; i < nrPins && pos+1 < len(raw); i++ {
			j.Sources = append(j.Sources, MidiSourcePin{SourceID: raw[pos], SourcePin: raw[pos+1]})
			pos += 2
		}
		if pos < len(raw) {
			j.JackStrIdx = raw[pos]
		}
		m.OutJack = j
	case MIDIElement:
		if len(raw) < 5 {
			return nil, &errs.DescriptorLengthError{Expected: 5, Got: len(raw)}
		}
		e := &MidiElement{ElementID: raw[3], NrInPins: raw[4]}
		pos := 5
		for i := uint8(0); i < e.NrInPins && pos+1 < len(raw); i++ {
			e.Sources = append(e.Sources, MidiSourcePin{SourceID: raw[pos], SourcePin: raw[pos+1]})
			pos += 2
		}
		if pos >= len(raw) {
			return nil, &errs.DescriptorLengthError{Expected: pos + 1, Got: len(raw)}
		}
		e.NrOutPins = raw[pos]
		pos++
		if pos+2 > len(raw) {
			return nil, &errs.DescriptorLengthError{Expected: pos + 2, Got: len(raw)}
		}
		e.InTerminalLink = raw[pos]
		e.OutTerminalLink = raw[pos+1]
		pos += 2
		if pos >= len(raw) {
			return nil, &errs.DescriptorLengthError{Expected: pos + 1, Got: len(raw)}
		}
		e.ElCapsSize = raw[pos]
		pos++
		for i := 0; i < int(e.ElCapsSize) && pos < len(raw); i++ {
			e.Capabilities |= uint32(raw[pos]) << (8 * i)
			pos++
		}
		if pos < len(raw) {
			e.ElementStrIdx = raw[pos]
		}
		m.Element = e
	}
	return m, nil
}
