package descriptor

import "github.com/usbtree/usbtree/errs"

// CCID is the Smart Card (class ClassSmartCard) class descriptor, a single
// fixed-layout 54-byte functional descriptor (no subtype byte; it is
// identified purely by the enclosing interface's class triplet).
type CCID struct {
	BcdCCID       uint16
	MaxSlotIndex  uint8
	VoltageSupport uint8
	Protocols     uint32
	DefaultClock  uint32
	MaximumClock  uint32
	NumClockSupported uint8
	DataRate      uint32
	MaxDataRate   uint32
	NumDataRatesSupported uint8
	MaxIFSD       uint32
	SynchProtocols uint32
	Mechanical    uint32
	Features      uint32
	MaxCCIDMessageLength uint32
	ClassGetResponse uint8
	ClassEnvelope    uint8
	LcdLayout        uint16
	PINSupport       uint8
	MaxCCIDBusySlots uint8
	Raw              []byte
}

func (c *CCID) DescriptorType() uint8 { return uint8(TypeCSInterface) }
func (c *CCID) Bytes() []byte         { return c.Raw }

const minCCIDLen = 54

func decodeCCID(raw []byte) (Descriptor, error) {
	if len(raw) < minCCIDLen {
		return nil, &errs.DescriptorLengthError{Expected: minCCIDLen, Got: len(raw)}
	}
	return &CCID{
		BcdCCID:               le16(raw[2:4]),
		MaxSlotIndex:          raw[4],
		VoltageSupport:        raw[5],
		Protocols:             le32(raw[6:10]),
		DefaultClock:          le32(raw[10:14]),
		MaximumClock:          le32(raw[14:18]),
		NumClockSupported:     raw[18],
		DataRate:              le32(raw[19:23]),
		MaxDataRate:           le32(raw[23:27]),
		NumDataRatesSupported: raw[27],
		MaxIFSD:               le32(raw[28:32]),
		SynchProtocols:        le32(raw[32:36]),
		Mechanical:            le32(raw[36:40]),
		Features:              le32(raw[40:44]),
		MaxCCIDMessageLength:  le32(raw[44:48]),
		ClassGetResponse:      raw[48],
		ClassEnvelope:         raw[49],
		LcdLayout:             le16(raw[50:52]),
		PINSupport:            raw[52],
		MaxCCIDBusySlots:      raw[53],
		Raw:                   append([]byte(nil), raw...),
	}, nil
}
