package descriptor

import (
	"fmt"

	"github.com/usbtree/usbtree/errs"
	"github.com/usbtree/usbtree/usbtreelog"
)

// DevCapabilityType is the bDevCapabilityType byte of a BOS capability.
type DevCapabilityType uint8

const (
	CapWireless            DevCapabilityType = 0x01
	CapUSB2Extension       DevCapabilityType = 0x02
	CapSuperSpeed          DevCapabilityType = 0x03
	CapContainerID         DevCapabilityType = 0x04
	CapPlatform            DevCapabilityType = 0x05
	CapPowerDelivery       DevCapabilityType = 0x06
	CapBattery             DevCapabilityType = 0x07
	CapPDConsumer          DevCapabilityType = 0x08
	CapPDProvider          DevCapabilityType = 0x09
	CapSuperSpeedPlus      DevCapabilityType = 0x0A
	CapPrecisionTime       DevCapabilityType = 0x0B
	CapWirelessExt         DevCapabilityType = 0x0C
	CapBillboard           DevCapabilityType = 0x0D
	CapAuthentication      DevCapabilityType = 0x0E
	CapBillboardAltMode    DevCapabilityType = 0x0F
	CapConfigurationSummary DevCapabilityType = 0x10
)

// WebUSBPlatformGUID identifies the WebUSB platform capability.
const WebUSBPlatformGUID = "3408b638-09a9-47a0-8bfd-a0768815b665"

// BOS is the decoded Binary Object Store top-level descriptor plus its
// bNumDeviceCaps capability descriptors laid end to end.
type BOS struct {
	TotalLength   uint16
	NumDeviceCaps uint8
	Capabilities  []Descriptor
}

func (b *BOS) DescriptorType() uint8 { return uint8(TypeBOS) }

func (b *BOS) Bytes() []byte {
	out := make([]byte, 5)
	out[0] = 5
	out[1] = uint8(TypeBOS)
	putLE16(out[2:4], b.TotalLength)
	out[4] = b.NumDeviceCaps
	for _, c := range b.Capabilities {
		out = append(out, c.Bytes()...)
	}
	return out
}

const minBOSLen = 5

// decodeBOS decodes the 5-byte BOS header plus as many capability TLVs as
// wTotalLength and the supplied buffer both allow. A capability whose
// declared length runs past the end of the buffer truncates the chain with
// a logged warning rather than a fatal error (spec: "BOS total_length is
// honoured; capabilities whose declared length exceeds remaining bytes are
// skipped with a warning, not treated as fatal").
func decodeBOS(b []byte) (Descriptor, error) {
	if len(b) < minBOSLen {
		return nil, &errs.DescriptorLengthError{Expected: minBOSLen, Got: len(b)}
	}
	bos := &BOS{
		TotalLength:   le16(b[2:4]),
		NumDeviceCaps: b[4],
	}
	limit := len(b)
	if int(bos.TotalLength) < limit {
		limit = int(bos.TotalLength)
	}
	pos := 5
	for i := 0; i < int(bos.NumDeviceCaps); i++ {
		if pos+3 > limit {
			usbtreelog.Warnf("BOS: capability %d runs off the end of the descriptor (pos=%d limit=%d)", i, pos, limit)
			break
		}
		length := int(b[pos])
		if length < 3 || pos+length > limit {
			usbtreelog.Warnf("BOS: capability %d declares length %d beyond remaining bytes", i, length)
			break
		}
		cap, err := decodeCapability(b[pos : pos+length])
		if err != nil {
			bos.Capabilities = append(bos.Capabilities, &Invalid{Raw: append([]byte(nil), b[pos:pos+length]...), Reason: err.Error()})
		} else {
			bos.Capabilities = append(bos.Capabilities, cap)
		}
		pos += length
	}
	return bos, nil
}

// USB2Extension is the USB 2.0 Extension BOS capability.
type USB2Extension struct {
	Attributes uint32
}

func (c *USB2Extension) DescriptorType() uint8 { return uint8(TypeDeviceCapability) }
func (c *USB2Extension) Bytes() []byte {
	b := make([]byte, 7)
	b[0] = 7
	b[1] = uint8(TypeDeviceCapability)
	b[2] = uint8(CapUSB2Extension)
	putLE32(b[3:7], c.Attributes)
	return b
}

// SuperSpeedCapability is the SuperSpeed USB BOS capability.
type SuperSpeedCapability struct {
	Attributes             uint8
	SpeedsSupported        uint16
	FunctionalitySupported uint8
	U1DevExitLat           uint8
	U2DevExitLat           uint16
}

func (c *SuperSpeedCapability) DescriptorType() uint8 { return uint8(TypeDeviceCapability) }
func (c *SuperSpeedCapability) Bytes() []byte {
	b := make([]byte, 10)
	b[0] = 10
	b[1] = uint8(TypeDeviceCapability)
	b[2] = uint8(CapSuperSpeed)
	b[3] = c.Attributes
	putLE16(b[4:6], c.SpeedsSupported)
	b[6] = c.FunctionalitySupported
	b[7] = c.U1DevExitLat
	putLE16(b[8:10], c.U2DevExitLat)
	return b
}

// SuperSpeedPlusCapability describes SuperSpeedPlus sublink speed attributes.
type SuperSpeedPlusCapability struct {
	Reserved        uint8
	Attributes      uint32
	FunctionalitySupport uint16
	Reserved2       uint16
	SublinkSpeedAttrs []uint32
}

func (c *SuperSpeedPlusCapability) DescriptorType() uint8 { return uint8(TypeDeviceCapability) }
func (c *SuperSpeedPlusCapability) Bytes() []byte {
	b := make([]byte, 12+4*len(c.SublinkSpeedAttrs))
	b[0] = uint8(len(b))
	b[1] = uint8(TypeDeviceCapability)
	b[2] = uint8(CapSuperSpeedPlus)
	b[3] = c.Reserved
	putLE32(b[4:8], c.Attributes)
	putLE16(b[8:10], c.FunctionalitySupport)
	putLE16(b[10:12], c.Reserved2)
	for i, a := range c.SublinkSpeedAttrs {
		putLE32(b[12+4*i:16+4*i], a)
	}
	return b
}

// NumSublinkSpeedAttributes extracts bNumSublinkSpeedAttributes from Attributes[4:0].
func (c *SuperSpeedPlusCapability) NumSublinkSpeedAttributes() uint8 { return uint8(c.Attributes & 0x1F) }

// ContainerID is a 128-bit UUID uniquely identifying a device instance.
type ContainerID struct {
	Reserved uint8
	UUID     [16]byte
}

func (c *ContainerID) DescriptorType() uint8 { return uint8(TypeDeviceCapability) }
func (c *ContainerID) Bytes() []byte {
	b := make([]byte, 20)
	b[0] = 20
	b[1] = uint8(TypeDeviceCapability)
	b[2] = uint8(CapContainerID)
	b[3] = c.Reserved
	copy(b[4:20], c.UUID[:])
	return b
}

// Platform is a generic PlatformCapability BOS entry. Its GUID, if it
// matches WebUSBPlatformGUID, is further decoded by the profiler into a
// WebUSB struct after an additional vendor control transfer.
type Platform struct {
	Reserved   uint8
	GUID       [16]byte
	CapabilityData []byte
	// WebUSB is populated from CapabilityData when GUID is the WebUSB
	// GUID; nil otherwise, and nil until the profiler decodes it.
	WebUSB *WebUSBCapability
}

func (p *Platform) DescriptorType() uint8 { return uint8(TypeDeviceCapability) }
func (p *Platform) Bytes() []byte {
	b := make([]byte, 20+len(p.CapabilityData))
	b[0] = uint8(len(b))
	b[1] = uint8(TypeDeviceCapability)
	b[2] = uint8(CapPlatform)
	b[3] = p.Reserved
	copy(b[4:20], p.GUID[:])
	copy(b[20:], p.CapabilityData)
	return b
}

// GUIDString renders the 16-byte little-endian-mixed GUID in the canonical
// 8-4-4-4-12 hex form.
func (p *Platform) GUIDString() string {
	g := p.GUID
	return fmt.Sprintf("%02x%02x%02x%02x-%02x%02x-%02x%02x-%02x%02x-%02x%02x%02x%02x%02x%02x",
		g[3], g[2], g[1], g[0],
		g[5], g[4],
		g[7], g[6],
		g[8], g[9],
		g[10], g[11], g[12], g[13], g[14], g[15])
}

// IsWebUSB reports whether this platform capability's GUID is the WebUSB GUID.
func (p *Platform) IsWebUSB() bool { return p.GUIDString() == WebUSBPlatformGUID }

// WebUSBCapability is the decoded capability-specific payload of a WebUSB
// platform capability (CapabilityData of a Platform whose GUID is WebUSB).
type WebUSBCapability struct {
	BcdVersion    uint16
	VendorCode    uint8
	LandingPageIndex uint8
	// URL is resolved lazily by the profiler via a vendor control transfer
	// (see profiler.resolveWebUSBURL); nil until resolved.
	URL *string
}

// DecodeWebUSBCapability decodes the capability-specific payload of a
// WebUSB platform capability (Platform.CapabilityData when IsWebUSB is
// true) into its fixed fields; URL is left nil, resolved separately via a
// vendor control transfer.
func DecodeWebUSBCapability(data []byte) (*WebUSBCapability, error) {
	if len(data) < 4 {
		return nil, &errs.DescriptorLengthError{Expected: 4, Got: len(data)}
	}
	return &WebUSBCapability{
		BcdVersion:       le16(data[0:2]),
		VendorCode:       data[2],
		LandingPageIndex: data[3],
	}, nil
}

const (
	webUSBURLSchemeHTTP     uint8 = 0x00
	webUSBURLSchemeHTTPS    uint8 = 0x01
	webUSBURLSchemeVerbatim uint8 = 0xFF
	webUSBURLDescriptorType uint8 = 0x03
)

// DecodeWebUSBURL parses the response to a WebUSB GET_URL vendor request:
// bLength, bDescriptorType (0x03), bScheme, then a UTF-8 URL suffix.
func DecodeWebUSBURL(raw []byte) (string, error) {
	if len(raw) < 3 {
		return "", &errs.DescriptorLengthError{Expected: 3, Got: len(raw)}
	}
	length := int(raw[0])
	if length > len(raw) {
		return "", &errs.InvalidDescriptorError{Reason: "bLength exceeds buffer"}
	}
	if raw[1] != webUSBURLDescriptorType {
		return "", &errs.InvalidDescriptorError{Reason: "not a WebUSB URL descriptor"}
	}
	var prefix string
	switch raw[2] {
	case webUSBURLSchemeHTTP:
		prefix = "http://"
	case webUSBURLSchemeHTTPS:
		prefix = "https://"
	case webUSBURLSchemeVerbatim:
		prefix = ""
	default:
		return "", errs.New(errs.KindParsing, "unknown WebUSB URL scheme byte")
	}
	return prefix + string(raw[3:length]), nil
}

// Billboard describes Alternate Modes supported by the device (USB Type-C).
type Billboard struct {
	CapabilityVersion uint16
	IAD               uint8
	VConnPower        uint8
	VConnPowerFlags   [32]byte
	NumAltModes       uint8
	PreferredAltMode  uint8
	VconnPower        uint16
	Configured        [32]byte
	AdditionalFailureInfo uint16
	AltModes          []BillboardAltMode
}

func (b *Billboard) DescriptorType() uint8 { return uint8(TypeDeviceCapability) }
func (b *Billboard) Bytes() []byte {
	// length-preserving re-encode only; field layout mirrors the spec.
	out := make([]byte, 48)
	out[0] = 48
	out[1] = uint8(TypeDeviceCapability)
	out[2] = uint8(CapBillboard)
	putLE16(out[3:5], b.CapabilityVersion)
	out[5] = b.IAD
	out[6] = b.VConnPower
	copy(out[7:39], b.VConnPowerFlags[:])
	out[39] = b.NumAltModes
	out[40] = b.PreferredAltMode
	putLE16(out[41:43], b.VconnPower)
	copy(out[43:47], b.Configured[:4])
	return out
}

// BillboardAltMode describes one supported alternate mode.
type BillboardAltMode struct {
	SVID    uint16
	AltMode uint8
	VDO     uint32
}

func (a *BillboardAltMode) DescriptorType() uint8 { return uint8(TypeDeviceCapability) }
func (a *BillboardAltMode) Bytes() []byte {
	b := make([]byte, 10)
	b[0] = 10
	b[1] = uint8(TypeDeviceCapability)
	b[2] = uint8(CapBillboardAltMode)
	putLE16(b[3:5], a.SVID)
	b[5] = a.AltMode
	putLE32(b[6:10], a.VDO)
	return b
}

// decodeCapability dispatches on DevCapabilityType; unrecognized capability
// types decode to a generic payload rather than failing.
func decodeCapability(b []byte) (Descriptor, error) {
	if len(b) < 3 {
		return nil, &errs.DescriptorLengthError{Expected: 3, Got: len(b)}
	}
	switch DevCapabilityType(b[2]) {
	case CapUSB2Extension:
		if len(b) < 7 {
			return nil, &errs.DescriptorLengthError{Expected: 7, Got: len(b)}
		}
		return &USB2Extension{Attributes: le32(b[3:7])}, nil
	case CapSuperSpeed:
		if len(b) < 10 {
			return nil, &errs.DescriptorLengthError{Expected: 10, Got: len(b)}
		}
		return &SuperSpeedCapability{
			Attributes:             b[3],
			SpeedsSupported:        le16(b[4:6]),
			FunctionalitySupported: b[6],
			U1DevExitLat:           b[7],
			U2DevExitLat:           le16(b[8:10]),
		}, nil
	case CapSuperSpeedPlus:
		if len(b) < 12 {
			return nil, &errs.DescriptorLengthError{Expected: 12, Got: len(b)}
		}
		c := &SuperSpeedPlusCapability{
			Reserved:             b[3],
			Attributes:           le32(b[4:8]),
			FunctionalitySupport: le16(b[8:10]),
			Reserved2:            le16(b[10:12]),
		}
		n := int(c.NumSublinkSpeedAttributes()) + 1
		for i := 0; i < n && 12+4*i+4 <= len(b); i++ {
			c.SublinkSpeedAttrs = append(c.SublinkSpeedAttrs, le32(b[12+4*i:16+4*i]))
		}
		return c, nil
	case CapContainerID:
		if len(b) < 20 {
			return nil, &errs.DescriptorLengthError{Expected: 20, Got: len(b)}
		}
		c := &ContainerID{Reserved: b[3]}
		copy(c.UUID[:], b[4:20])
		return c, nil
	case CapPlatform:
		if len(b) < 20 {
			return nil, &errs.DescriptorLengthError{Expected: 20, Got: len(b)}
		}
		p := &Platform{Reserved: b[3], CapabilityData: append([]byte(nil), b[20:]...)}
		copy(p.GUID[:], b[4:20])
		if p.IsWebUSB() {
			p.WebUSB, _ = DecodeWebUSBCapability(p.CapabilityData)
		}
		return p, nil
	case CapBillboard:
		if len(b) < 48 {
			return nil, &errs.DescriptorLengthError{Expected: 48, Got: len(b)}
		}
		bb := &Billboard{
			CapabilityVersion: le16(b[3:5]),
			IAD:               b[5],
			VConnPower:        b[6],
			NumAltModes:       b[39],
			PreferredAltMode:  b[40],
			VconnPower:        le16(b[41:43]),
		}
		copy(bb.VConnPowerFlags[:], b[7:39])
		return bb, nil
	case CapBillboardAltMode:
		if len(b) < 10 {
			return nil, &errs.DescriptorLengthError{Expected: 10, Got: len(b)}
		}
		return &BillboardAltMode{
			SVID:    le16(b[3:5]),
			AltMode: b[5],
			VDO:     le32(b[6:10]),
		}, nil
	case CapConfigurationSummary:
		return &generic{RawType: TypeDeviceCapability, Raw: append([]byte(nil), b...)}, nil
	default:
		return &generic{RawType: TypeDeviceCapability, Raw: append([]byte(nil), b...)}, nil
	}
}
