package descriptor

import (
	"fmt"
	"unicode/utf16"

	"github.com/usbtree/usbtree/errs"
)

// Version is a USB BCD version triplet (major, minor, sub_minor).
type Version struct {
	Major    uint8
	Minor    uint8
	SubMinor uint8
}

// DecodeVersion decodes a BCD uint16 (e.g. bcdUSB, bcdDevice) into a Version.
// High byte -> major, high nibble of low byte -> minor, low nibble -> sub_minor.
func DecodeVersion(bcd uint16) Version {
	hi := uint8(bcd >> 8)
	lo := uint8(bcd & 0xFF)
	return Version{Major: hi, Minor: lo >> 4, SubMinor: lo & 0x0F}
}

// Encode re-packs the triplet into a BCD uint16.
func (v Version) Encode() uint16 {
	return uint16(v.Major)<<8 | uint16(v.Minor)<<4 | uint16(v.SubMinor)
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d%d", v.Major, v.Minor, v.SubMinor)
}

func (v Version) Compare(o Version) int {
	if v.Major != o.Major {
		return int(v.Major) - int(o.Major)
	}
	if v.Minor != o.Minor {
		return int(v.Minor) - int(o.Minor)
	}
	return int(v.SubMinor) - int(o.SubMinor)
}

// Speed is the negotiated USB link speed.
type Speed int

const (
	SpeedUnknown Speed = iota
	SpeedLow
	SpeedFull
	SpeedHigh
	SpeedHighBandwidth
	SpeedSuper
	SpeedSuperPlus
)

type speedInfo struct {
	rate float64
	unit string
	desc string
}

var speedTable = map[Speed]speedInfo{
	SpeedLow:           {1.5, "Mbps", "Low Speed"},
	SpeedFull:          {12, "Mbps", "Full Speed"},
	SpeedHigh:          {480, "Mbps", "High Speed"},
	SpeedHighBandwidth: {480, "Mbps", "High Speed (high bandwidth)"},
	SpeedSuper:         {5, "Gbps", "SuperSpeed"},
	SpeedSuperPlus:     {10, "Gbps", "SuperSpeed+"},
	SpeedUnknown:       {0, "", "Unknown"},
}

func (s Speed) Rate() (float64, string) {
	info := speedTable[s]
	return info.rate, info.unit
}

func (s Speed) String() string { return speedTable[s].desc }

// Device base classes recognized per USB-IF.
const (
	ClassUseInterface    uint8 = 0x00
	ClassAudio           uint8 = 0x01
	ClassCDCCommunications uint8 = 0x02
	ClassHID             uint8 = 0x03
	ClassPhysical        uint8 = 0x05
	ClassImage           uint8 = 0x06
	ClassPrinter         uint8 = 0x07
	ClassMassStorage     uint8 = 0x08
	ClassHub             uint8 = 0x09
	ClassCDCData         uint8 = 0x0A
	ClassSmartCard       uint8 = 0x0B
	ClassContentSecurity uint8 = 0x0D
	ClassVideo           uint8 = 0x0E
	ClassPersonalHealth  uint8 = 0x0F
	ClassAudioVideo      uint8 = 0x10
	ClassBillboard       uint8 = 0x11
	ClassTypeCBridge     uint8 = 0x12
	ClassDiagnostic      uint8 = 0xDC
	ClassWireless        uint8 = 0xE0
	ClassMisc            uint8 = 0xEF
	ClassApplicationSpec uint8 = 0xFE
	ClassVendorSpecific  uint8 = 0xFF
)

// Device is the decoded standard Device descriptor (USB_DT_DEVICE, 18 bytes).
type Device struct {
	Length            uint8
	BcdUSB            uint16
	DeviceClass       uint8
	DeviceSubClass    uint8
	DeviceProtocol    uint8
	MaxPacketSize0    uint8
	VendorID          uint16
	ProductID         uint16
	BcdDevice         uint16
	ManufacturerIndex uint8
	ProductIndex      uint8
	SerialNumberIndex uint8
	NumConfigurations uint8
}

func (d *Device) DescriptorType() uint8 { return uint8(TypeDevice) }

func (d *Device) Bytes() []byte {
	b := make([]byte, 18)
	b[0] = 18
	b[1] = uint8(TypeDevice)
	putLE16(b[2:4], d.BcdUSB)
	b[4] = d.DeviceClass
	b[5] = d.DeviceSubClass
	b[6] = d.DeviceProtocol
	b[7] = d.MaxPacketSize0
	putLE16(b[8:10], d.VendorID)
	putLE16(b[10:12], d.ProductID)
	putLE16(b[12:14], d.BcdDevice)
	b[14] = d.ManufacturerIndex
	b[15] = d.ProductIndex
	b[16] = d.SerialNumberIndex
	b[17] = d.NumConfigurations
	return b
}

func (d *Device) Class() ClassTriplet {
	return ClassTriplet{BaseClass: d.DeviceClass, SubClass: d.DeviceSubClass, Protocol: d.DeviceProtocol}
}

const minDeviceLen = 18

func decodeDevice(b []byte) (Descriptor, error) {
	if len(b) < minDeviceLen {
		return nil, &errs.DescriptorLengthError{Expected: minDeviceLen, Got: len(b)}
	}
	return &Device{
		Length:            b[0],
		BcdUSB:            le16(b[2:4]),
		DeviceClass:       b[4],
		DeviceSubClass:    b[5],
		DeviceProtocol:    b[6],
		MaxPacketSize0:    b[7],
		VendorID:          le16(b[8:10]),
		ProductID:         le16(b[10:12]),
		BcdDevice:         le16(b[12:14]),
		ManufacturerIndex: b[14],
		ProductIndex:      b[15],
		SerialNumberIndex: b[16],
		NumConfigurations: b[17],
	}, nil
}

// ConfigAttr are bits of the configuration descriptor's bmAttributes byte.
type ConfigAttr uint8

const (
	ConfigAttrSelfPowered  ConfigAttr = 1 << 6
	ConfigAttrRemoteWakeup ConfigAttr = 1 << 5
	// ConfigAttrBatteryPowered is not part of the USB spec bitmap but is
	// surfaced by some class extensions (e.g. battery-charging spec); kept
	// as a named bit for symmetry with profile.Configuration.Attributes.
	ConfigAttrBatteryPowered ConfigAttr = 1 << 4
)

// Config is the decoded standard Configuration descriptor, minus its
// trailing "extra" TLV chain (interfaces/endpoints/class descriptors),
// which the profiler engine walks separately with class context.
type Config struct {
	Length             uint8
	RawType            Type // TypeConfig or TypeOtherSpeedConfig
	TotalLength        uint16
	NumInterfaces      uint8
	ConfigurationValue uint8
	ConfigurationIndex uint8
	Attributes         uint8
	MaxPower            uint8
}

func (c *Config) DescriptorType() uint8 { return uint8(c.RawType) }

func (c *Config) Bytes() []byte {
	b := make([]byte, 9)
	b[0] = 9
	b[1] = uint8(c.RawType)
	putLE16(b[2:4], c.TotalLength)
	b[4] = c.NumInterfaces
	b[5] = c.ConfigurationValue
	b[6] = c.ConfigurationIndex
	b[7] = c.Attributes
	b[8] = c.MaxPower
	return b
}

const minConfigLen = 9

func decodeConfig(b []byte) (Descriptor, error) {
	if len(b) < minConfigLen {
		return nil, &errs.DescriptorLengthError{Expected: minConfigLen, Got: len(b)}
	}
	return &Config{
		Length:             b[0],
		RawType:            Type(b[1]),
		TotalLength:        le16(b[2:4]),
		NumInterfaces:      b[4],
		ConfigurationValue: b[5],
		ConfigurationIndex: b[6],
		Attributes:         b[7],
		MaxPower:           b[8],
	}, nil
}

// String is a decoded STRING descriptor: bLength, bDescriptorType, then
// either a UTF-16LE string (index != 0) or a table of LANGIDs (index == 0).
type String struct {
	Raw  []byte
	Text string
}

func (s *String) DescriptorType() uint8 { return uint8(TypeString) }
func (s *String) Bytes() []byte         { return s.Raw }

func decodeString(b []byte) (Descriptor, error) {
	if len(b) < 2 {
		return nil, &errs.DescriptorLengthError{Expected: 2, Got: len(b)}
	}
	raw := append([]byte(nil), b...)
	n := len(raw)
	if n > int(raw[0]) {
		n = int(raw[0])
	}
	units := make([]uint16, 0, (n-2)/2)
	for i := 2; i+1 < n; i += 2 {
		units = append(units, le16(raw[i:i+2]))
	}
	return &String{Raw: raw, Text: string(utf16.Decode(units))}, nil
}

// Interface is the decoded standard Interface descriptor, prior to any
// class-context reinterpretation of its trailing extras (that happens at
// the Configuration/Interface level in the profiler, not here).
type Interface struct {
	Length            uint8
	InterfaceNumber   uint8
	AlternateSetting  uint8
	NumEndpoints      uint8
	InterfaceClass    uint8
	InterfaceSubClass uint8
	InterfaceProtocol uint8
	InterfaceIndex    uint8
}

func (i *Interface) DescriptorType() uint8 { return uint8(TypeInterface) }

func (i *Interface) Bytes() []byte {
	b := make([]byte, 9)
	b[0] = 9
	b[1] = uint8(TypeInterface)
	b[2] = i.InterfaceNumber
	b[3] = i.AlternateSetting
	b[4] = i.NumEndpoints
	b[5] = i.InterfaceClass
	b[6] = i.InterfaceSubClass
	b[7] = i.InterfaceProtocol
	b[8] = i.InterfaceIndex
	return b
}

func (i *Interface) Class() ClassTriplet {
	return ClassTriplet{BaseClass: i.InterfaceClass, SubClass: i.InterfaceSubClass, Protocol: i.InterfaceProtocol}
}

const minInterfaceLen = 9

func decodeInterface(b []byte) (Descriptor, error) {
	if len(b) < minInterfaceLen {
		return nil, &errs.DescriptorLengthError{Expected: minInterfaceLen, Got: len(b)}
	}
	return &Interface{
		Length:            b[0],
		InterfaceNumber:   b[2],
		AlternateSetting:  b[3],
		NumEndpoints:      b[4],
		InterfaceClass:    b[5],
		InterfaceSubClass: b[6],
		InterfaceProtocol: b[7],
		InterfaceIndex:    b[8],
	}, nil
}

// EndpointDirection is the direction bit of bEndpointAddress.
type EndpointDirection uint8

const (
	DirectionOut EndpointDirection = 0
	DirectionIn  EndpointDirection = 1
)

type EndpointTransferType uint8

const (
	EndpointControl     EndpointTransferType = 0
	EndpointIsochronous EndpointTransferType = 1
	EndpointBulk        EndpointTransferType = 2
	EndpointInterrupt   EndpointTransferType = 3
)

type EndpointSyncType uint8

const (
	SyncNone EndpointSyncType = iota
	SyncAsync
	SyncAdaptive
	SyncSync
)

type EndpointUsageType uint8

const (
	UsageData EndpointUsageType = iota
	UsageFeedback
	UsageImplicitFeedback
	UsageReserved
)

// Endpoint is the decoded standard Endpoint descriptor.
type Endpoint struct {
	Length        uint8
	EndpointAddr  uint8
	Attributes    uint8
	MaxPacketSize uint16
	Interval      uint8
}

func (e *Endpoint) DescriptorType() uint8 { return uint8(TypeEndpoint) }

func (e *Endpoint) Bytes() []byte {
	b := make([]byte, 7)
	b[0] = 7
	b[1] = uint8(TypeEndpoint)
	b[2] = e.EndpointAddr
	b[3] = e.Attributes
	putLE16(b[4:6], e.MaxPacketSize)
	b[6] = e.Interval
	return b
}

func (e *Endpoint) Number() uint8              { return e.EndpointAddr & 0x0F }
func (e *Endpoint) Direction() EndpointDirection {
	if e.EndpointAddr&0x80 != 0 {
		return DirectionIn
	}
	return DirectionOut
}
func (e *Endpoint) TransferType() EndpointTransferType { return EndpointTransferType(e.Attributes & 0x03) }
func (e *Endpoint) SyncType() EndpointSyncType         { return EndpointSyncType((e.Attributes >> 2) & 0x03) }
func (e *Endpoint) UsageType() EndpointUsageType       { return EndpointUsageType((e.Attributes >> 4) & 0x03) }

const minEndpointLen = 7

func decodeEndpoint(b []byte) (Descriptor, error) {
	if len(b) < minEndpointLen {
		return nil, &errs.DescriptorLengthError{Expected: minEndpointLen, Got: len(b)}
	}
	return &Endpoint{
		Length:        b[0],
		EndpointAddr:  b[2],
		Attributes:    b[3],
		MaxPacketSize: le16(b[4:6]),
		Interval:      b[6],
	}, nil
}

// DeviceQualifier describes the device's capabilities if it were to run at
// the other speed (USB 2.0+).
type DeviceQualifier struct {
	BcdUSB            uint16
	DeviceClass       uint8
	DeviceSubClass    uint8
	DeviceProtocol    uint8
	MaxPacketSize0    uint8
	NumConfigurations uint8
}

func (d *DeviceQualifier) DescriptorType() uint8 { return uint8(TypeDeviceQualifier) }

func (d *DeviceQualifier) Bytes() []byte {
	b := make([]byte, 10)
	b[0] = 10
	b[1] = uint8(TypeDeviceQualifier)
	putLE16(b[2:4], d.BcdUSB)
	b[4] = d.DeviceClass
	b[5] = d.DeviceSubClass
	b[6] = d.DeviceProtocol
	b[7] = d.MaxPacketSize0
	b[8] = d.NumConfigurations
	b[9] = 0
	return b
}

const minQualifierLen = 10

func decodeDeviceQualifier(b []byte) (Descriptor, error) {
	if len(b) < minQualifierLen {
		return nil, &errs.DescriptorLengthError{Expected: minQualifierLen, Got: len(b)}
	}
	return &DeviceQualifier{
		BcdUSB:            le16(b[2:4]),
		DeviceClass:       b[4],
		DeviceSubClass:    b[5],
		DeviceProtocol:    b[6],
		MaxPacketSize0:    b[7],
		NumConfigurations: b[8],
	}, nil
}

// OTG is the On-The-Go and Embedded Host Supplement descriptor.
type OTG struct {
	Attributes uint8
}

func (o *OTG) DescriptorType() uint8 { return uint8(TypeOTG) }
func (o *OTG) Bytes() []byte {
	return []byte{3, uint8(TypeOTG), o.Attributes}
}

func decodeOTG(b []byte) (Descriptor, error) {
	if len(b) < 3 {
		return nil, &errs.DescriptorLengthError{Expected: 3, Got: len(b)}
	}
	return &OTG{Attributes: b[2]}, nil
}

// Debug is the Debug descriptor (USB_DT_DEBUG, 0x0A): indexes of the debug
// in/out endpoints used by a device-class debug port.
type Debug struct {
	DebugInEndpoint  uint8
	DebugOutEndpoint uint8
}

func (d *Debug) DescriptorType() uint8 { return uint8(TypeDebug) }
func (d *Debug) Bytes() []byte {
	return []byte{4, uint8(TypeDebug), d.DebugInEndpoint, d.DebugOutEndpoint}
}

func decodeDebug(b []byte) (Descriptor, error) {
	if len(b) < 4 {
		return nil, &errs.DescriptorLengthError{Expected: 4, Got: len(b)}
	}
	return &Debug{DebugInEndpoint: b[2], DebugOutEndpoint: b[3]}, nil
}

// InterfaceAssociation groups a run of interfaces into one function.
type InterfaceAssociation struct {
	FirstInterface   uint8
	InterfaceCount   uint8
	FunctionClass    uint8
	FunctionSubClass uint8
	FunctionProtocol uint8
	FunctionIndex    uint8
}

func (i *InterfaceAssociation) DescriptorType() uint8 { return uint8(TypeInterfaceAssociation) }

func (i *InterfaceAssociation) Bytes() []byte {
	return []byte{8, uint8(TypeInterfaceAssociation), i.FirstInterface, i.InterfaceCount,
		i.FunctionClass, i.FunctionSubClass, i.FunctionProtocol, i.FunctionIndex}
}

const minIADLen = 8

func decodeIAD(b []byte) (Descriptor, error) {
	if len(b) < minIADLen {
		return nil, &errs.DescriptorLengthError{Expected: minIADLen, Got: len(b)}
	}
	return &InterfaceAssociation{
		FirstInterface:   b[2],
		InterfaceCount:   b[3],
		FunctionClass:    b[4],
		FunctionSubClass: b[5],
		FunctionProtocol: b[6],
		FunctionIndex:    b[7],
	}, nil
}

// SSEndpointCompanion is the USB 3.0+ SuperSpeed Endpoint Companion
// descriptor, always immediately following its Endpoint descriptor.
type SSEndpointCompanion struct {
	MaxBurst         uint8
	Attributes       uint8
	BytesPerInterval uint16
}

func (s *SSEndpointCompanion) DescriptorType() uint8 { return uint8(TypeSSEndpointCompanion) }
func (s *SSEndpointCompanion) Bytes() []byte {
	b := make([]byte, 6)
	b[0] = 6
	b[1] = uint8(TypeSSEndpointCompanion)
	b[2] = s.MaxBurst
	b[3] = s.Attributes
	putLE16(b[4:6], s.BytesPerInterval)
	return b
}

// MaxStreams returns bmAttributes[4:0] for bulk endpoints (stream count).
func (s *SSEndpointCompanion) MaxStreams() uint8 { return s.Attributes & 0x1F }

// MaxPacketsPerInterval returns bmAttributes[1:0] for isochronous endpoints.
func (s *SSEndpointCompanion) MaxPacketsPerInterval() uint8 { return s.Attributes & 0x03 }

const minSSCompanionLen = 6

func decodeSSEndpointCompanion(b []byte) (Descriptor, error) {
	if len(b) < minSSCompanionLen {
		return nil, &errs.DescriptorLengthError{Expected: minSSCompanionLen, Got: len(b)}
	}
	return &SSEndpointCompanion{
		MaxBurst:         b[2],
		Attributes:       b[3],
		BytesPerInterval: le16(b[4:6]),
	}, nil
}

// SSIsocEndpointCompanion follows an SSEndpointCompanion for isochronous
// endpoints that need per-interval bandwidth beyond what fits in 16 bits.
type SSIsocEndpointCompanion struct {
	Reserved      uint16
	BytesPerInterval uint32
}

func (s *SSIsocEndpointCompanion) DescriptorType() uint8 { return uint8(TypeSSIsocEndpointCompanion) }
func (s *SSIsocEndpointCompanion) Bytes() []byte {
	b := make([]byte, 8)
	b[0] = 8
	b[1] = uint8(TypeSSIsocEndpointCompanion)
	putLE16(b[2:4], s.Reserved)
	putLE32(b[4:8], s.BytesPerInterval)
	return b
}

const minSSIsocCompanionLen = 8

func decodeSSIsocEndpointCompanion(b []byte) (Descriptor, error) {
	if len(b) < minSSIsocCompanionLen {
		return nil, &errs.DescriptorLengthError{Expected: minSSIsocCompanionLen, Got: len(b)}
	}
	return &SSIsocEndpointCompanion{
		Reserved:         le16(b[2:4]),
		BytesPerInterval: le32(b[4:8]),
	}, nil
}
