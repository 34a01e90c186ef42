package descriptor

import "github.com/usbtree/usbtree/errs"

// HID class-specific descriptor subtypes (bDescriptorType inside the HID
// top-level descriptor's report list).
const (
	HIDReportTypeReport   uint8 = 0x22
	HIDReportTypePhysical uint8 = 0x23
)

// HIDReportEntry is one {bDescriptorType, wDescriptorLength} pair from the
// HID descriptor's report list. The report payload itself is fetched
// separately by the profiler and attached to ReportData.
type HIDReportEntry struct {
	Type       uint8
	Length     uint16
	ReportData []byte
}

// Hid is the class-context reinterpretation of a generic Interface/Config
// extra TLV with bDescriptorType == TypeReport (0x22) and interface class
// ClassHID. It models the HID descriptor header plus its variable list of
// report descriptors.
type Hid struct {
	BcdHID      uint16
	CountryCode uint8
	Reports     []HIDReportEntry
}

func (h *Hid) DescriptorType() uint8 { return uint8(TypeReport) }

func (h *Hid) Bytes() []byte {
	b := make([]byte, 6+3*len(h.Reports))
	b[0] = uint8(len(b))
	b[1] = uint8(TypeReport)
	putLE16(b[2:4], h.BcdHID)
	b[4] = h.CountryCode
	b[5] = uint8(len(h.Reports))
	for i, r := range h.Reports {
		off := 6 + 3*i
		b[off] = r.Type
		putLE16(b[off+1:off+3], r.Length)
	}
	return b
}

const minHIDLen = 6

func decodeHIDTop(b []byte) (Descriptor, error) {
	if len(b) < minHIDLen {
		return nil, &errs.DescriptorLengthError{Expected: minHIDLen, Got: len(b)}
	}
	h := &Hid{
		BcdHID:      le16(b[2:4]),
		CountryCode: b[4],
	}
	numDescs := int(b[5])
	pos := 6
	for i := 0; i < numDescs && pos+3 <= len(b); i++ {
		h.Reports = append(h.Reports, HIDReportEntry{
			Type:   b[pos],
			Length: le16(b[pos+1 : pos+3]),
		})
		pos += 3
	}
	return h, nil
}
