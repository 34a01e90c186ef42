package descriptor

import "github.com/usbtree/usbtree/errs"

// UVC VideoControl interface subtypes.
const (
	UVCVCHeader       uint8 = 0x01
	UVCVCInputTerminal uint8 = 0x02
	UVCVCOutputTerminal uint8 = 0x03
	UVCVCSelectorUnit  uint8 = 0x04
	UVCVCProcessingUnit uint8 = 0x05
	UVCVCExtensionUnit uint8 = 0x06
	UVCVCEncodingUnit uint8 = 0x07
)

// UVC VideoStreaming interface subtypes.
const (
	UVCVSInputHeader         uint8 = 0x01
	UVCVSOutputHeader        uint8 = 0x02
	UVCVSStillImageFrame     uint8 = 0x03
	UVCVSFormatUncompressed  uint8 = 0x04
	UVCVSFrameUncompressed   uint8 = 0x05
	UVCVSFormatMJPEG         uint8 = 0x06
	UVCVSFrameMJPEG          uint8 = 0x07
	UVCVSFormatMPEG2TS       uint8 = 0x0A
	UVCVSFormatStreamBased   uint8 = 0x10
	UVCVSFormatFrameBased    uint8 = 0x11
	UVCVSFrameFrameBased     uint8 = 0x12
	UVCVSColorFormat         uint8 = 0x0D
)

// Video is the class-context reinterpretation of a CS_INTERFACE descriptor
// in an interface whose class triplet is (ClassVideo, *, *). VC and VS carry
// disjoint subtype spaces, distinguished by the enclosing interface's
// subclass (1 = VideoControl, 2 = VideoStreaming).
type Video struct {
	IsStreaming bool
	Subtype     uint8
	Raw         []byte

	InputTerminal  *VideoInputTerminal
	OutputTerminal *VideoOutputTerminal
	SelectorUnit   *VideoSelectorUnit
	ProcessingUnit *VideoProcessingUnit
	ExtensionUnit  *VideoExtensionUnit
	InputHeader    *VideoInputHeader
	FormatUncompressed *VideoFormatUncompressed
	FrameUncompressed  *VideoFrameUncompressed
}

func (v *Video) DescriptorType() uint8 { return uint8(TypeCSInterface) }
func (v *Video) Bytes() []byte         { return v.Raw }

type VideoInputTerminal struct {
	TerminalID    uint8
	TerminalType  uint16
	AssocTerminal uint8
	TerminalIdx   uint8
}

type VideoOutputTerminal struct {
	TerminalID    uint8
	TerminalType  uint16
	AssocTerminal uint8
	SourceID      uint8
	TerminalIdx   uint8
}

type VideoSelectorUnit struct {
	UnitID      uint8
	NrInPins    uint8
	SourceIDs   []uint8
	SelectorIdx uint8
}

type VideoProcessingUnit struct {
	UnitID       uint8
	SourceID     uint8
	MaxMultiplier uint16
	Controls     []byte
	ProcessingIdx uint8
	VideoStandards uint8
}

type VideoExtensionUnit struct {
	UnitID    uint8
	GUID      [16]byte
	NumControls uint8
	NrInPins  uint8
	SourceIDs []uint8
	Controls  []byte
	ExtensionIdx uint8
}

type VideoInputHeader struct {
	NumFormats   uint8
	TotalLength  uint16
	EndpointAddr uint8
	Info         uint8
	TerminalLink uint8
	StillCaptureMethod uint8
	TriggerSupport uint8
	TriggerUsage uint8
	ControlSize  uint8
	Controls     [][]byte
}

type VideoFormatUncompressed struct {
	FormatIndex  uint8
	NumFrameDescriptors uint8
	GUID         [16]byte
	BitsPerPixel uint8
	DefaultFrameIndex uint8
	AspectRatioX uint8
	AspectRatioY uint8
	InterlaceFlags uint8
	CopyProtect  uint8
}

type VideoFrameUncompressed struct {
	FrameIndex   uint8
	Capabilities uint8
	Width        uint16
	Height       uint16
	MinBitRate   uint32
	MaxBitRate   uint32
	MaxFrameBufferSize uint32
	DefaultFrameInterval uint32
	FrameIntervalType uint8
}

func decodeVideo(raw []byte, isStreaming bool) (Descriptor, error) {
	if len(raw) < 3 {
		return nil, &errs.DescriptorLengthError{Expected: 3, Got: len(raw)}
	}
	v := &Video{IsStreaming: isStreaming, Subtype: raw[2], Raw: append([]byte(nil), raw...)}
	if !isStreaming {
		switch raw[2] {
		case UVCVCInputTerminal:
			if len(raw) < 8 {
				return nil, &errs.DescriptorLengthError{Expected: 8, Got: len(raw)}
			}
			v.InputTerminal = &VideoInputTerminal{
				TerminalID: raw[3], TerminalType: le16(raw[4:6]), AssocTerminal: raw[6], TerminalIdx: raw[7],
			}
		case UVCVCOutputTerminal:
			if len(raw) < 9 {
				return nil, &errs.DescriptorLengthError{Expected: 9, Got: len(raw)}
			}
			v.OutputTerminal = &VideoOutputTerminal{
				TerminalID: raw[3], TerminalType: le16(raw[4:6]), AssocTerminal: raw[6], SourceID: raw[7], TerminalIdx: raw[8],
			}
		case UVCVCSelectorUnit:
			if len(raw) < 5 {
				return nil, &errs.DescriptorLengthError{Expected: 5, Got: len(raw)}
			}
			s := &VideoSelectorUnit{UnitID: raw[3], NrInPins: raw[4]}
			pos := 5
			for i := uint8(0); i < s.NrInPins && pos < len(raw); i++ {
				s.SourceIDs = append(s.SourceIDs, raw[pos])
				pos++
			}
			if pos < len(raw) {
				s.SelectorIdx = raw[pos]
			}
			v.SelectorUnit = s
		case UVCVCProcessingUnit:
			if len(raw) < 8 {
				return nil, &errs.DescriptorLengthError{Expected: 8, Got: len(raw)}
			}
			p := &VideoProcessingUnit{UnitID: raw[3], SourceID: raw[4], MaxMultiplier: le16(raw[5:7])}
			controlSize := int(raw[7])
			pos := 8
			if pos+controlSize <= len(raw) {
				p.Controls = append(p.Controls, raw[pos:pos+controlSize]...)
				pos += controlSize
			}
			if pos < len(raw) {
				p.ProcessingIdx = raw[pos]
				pos++
			}
			if pos < len(raw) {
				p.VideoStandards = raw[pos]
			}
			v.ProcessingUnit = p
		case UVCVCExtensionUnit:
			if len(raw) < 21 {
				return nil, &errs.DescriptorLengthError{Expected: 21, Got: len(raw)}
			}
			e := &VideoExtensionUnit{UnitID: raw[3]}
			copy(e.GUID[:], raw[4:20])
			e.NumControls = raw[20]
			if len(raw) < 22 {
				return nil, &errs.DescriptorLengthError{Expected: 22, Got: len(raw)}
			}
			e.NrInPins = raw[21]
			pos := 22
			for i := uint8(0); i < e.NrInPins && pos < len(raw); i++ {
				e.SourceIDs = append(e.SourceIDs, raw[pos])
				pos++
			}
			if pos < len(raw) {
				controlSize := int(raw[pos])
				pos++
				if pos+controlSize <= len(raw) {
					e.Controls = append(e.Controls, raw[pos:pos+controlSize]...)
					pos += controlSize
				}
			}
			if pos < len(raw) {
				e.ExtensionIdx = raw[pos]
			}
			v.ExtensionUnit = e
		}
		return v, nil
	}
	switch raw[2] {
	case UVCVSInputHeader:
		if len(raw) < 13 {
			return nil, &errs.DescriptorLengthError{Expected: 13, Got: len(raw)}
		}
		h := &VideoInputHeader{
			NumFormats: raw[3], TotalLength: le16(raw[4:6]), EndpointAddr: raw[6],
			Info: raw[7], TerminalLink: raw[8], StillCaptureMethod: raw[9],
			TriggerSupport: raw[10], TriggerUsage: raw[11], ControlSize: raw[12],
		}
		pos := 13
		for i := uint8(0); i < h.NumFormats && pos+int(h.ControlSize) <= len(raw); i++ {
			h.Controls = append(h.Controls, raw[pos:pos+int(h.ControlSize)])
			pos += int(h.ControlSize)
		}
		v.InputHeader = h
	case UVCVSFormatUncompressed:
		if len(raw) < 27 {
			return nil, &errs.DescriptorLengthError{Expected: 27, Got: len(raw)}
		}
		f := &VideoFormatUncompressed{FormatIndex: raw[3], NumFrameDescriptors: raw[4]}
		copy(f.GUID[:], raw[5:21])
		f.BitsPerPixel = raw[21]
		f.DefaultFrameIndex = raw[22]
		f.AspectRatioX = raw[23]
		f.AspectRatioY = raw[24]
		f.InterlaceFlags = raw[25]
		f.CopyProtect = raw[26]
		v.FormatUncompressed = f
	case UVCVSFrameUncompressed:
		if len(raw) < 26 {
			return nil, &errs.DescriptorLengthError{Expected: 26, Got: len(raw)}
		}
		fr := &VideoFrameUncompressed{
			FrameIndex: raw[3], Capabilities: raw[4],
			Width: le16(raw[5:7]), Height: le16(raw[7:9]),
			MinBitRate: le32(raw[9:13]), MaxBitRate: le32(raw[13:17]),
			MaxFrameBufferSize: le32(raw[17:21]), DefaultFrameInterval: le32(raw[21:25]),
			FrameIntervalType: raw[25],
		}
		v.FrameUncompressed = fr
	}
	return v, nil
}
