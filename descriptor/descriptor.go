// Package descriptor decodes and encodes USB standard and class-specific
// descriptors byte-exactly. It is the single source of truth for descriptor
// semantics used by the profiler engine.
package descriptor

import (
	"encoding/binary"

	"github.com/usbtree/usbtree/errs"
)

// Type is the bDescriptorType discriminant byte.
type Type uint8

const (
	TypeDevice                    Type = 0x01
	TypeConfig                    Type = 0x02
	TypeString                    Type = 0x03
	TypeInterface                 Type = 0x04
	TypeEndpoint                  Type = 0x05
	TypeDeviceQualifier           Type = 0x06
	TypeOtherSpeedConfig          Type = 0x07
	TypeInterfacePower             Type = 0x08
	TypeOTG                       Type = 0x09
	TypeDebug                     Type = 0x0A
	TypeInterfaceAssociation      Type = 0x0B
	TypeSecurity                  Type = 0x0C
	TypeKey                       Type = 0x0D
	TypeEncrypted                 Type = 0x0E
	TypeBOS                       Type = 0x0F
	TypeDeviceCapability          Type = 0x10
	TypeWirelessEndpointCompanion Type = 0x11
	TypeWireAdaptor               Type = 0x21
	TypeReport                    Type = 0x22 // HID
	TypePhysical                  Type = 0x23
	TypePipe                      Type = 0x24
	TypeHub                       Type = 0x29
	TypeSuperSpeedHub              Type = 0x2A
	TypeSSEndpointCompanion        Type = 0x30
	TypeSSIsocEndpointCompanion    Type = 0x31
)

// Class-specific descriptor subtype lives in byte 2 for most class
// descriptors (bDescriptorSubtype); the type byte for class descriptors is
// usually 0x24 (CS_INTERFACE) or 0x25 (CS_ENDPOINT).
const (
	TypeCSInterface Type = 0x24
	TypeCSEndpoint  Type = 0x25
)

// ClassTriplet is (base class, sub class, protocol), taken from the USB
// Interface or Device descriptor.
type ClassTriplet struct {
	BaseClass uint8
	SubClass  uint8
	Protocol  uint8
}

// Descriptor is any decoded USB descriptor.
type Descriptor interface {
	// DescriptorType returns the raw bDescriptorType byte.
	DescriptorType() uint8
	// Bytes re-encodes the descriptor to its wire representation.
	Bytes() []byte
}

// Junk is what a descriptor too short to carry bLength/bDescriptorType
// decodes to (bLength < 2). The bytes are preserved for display but the
// variant is never treated as a standard descriptor.
type Junk struct {
	Raw []byte
}

func (j *Junk) DescriptorType() uint8 { return 0 }
func (j *Junk) Bytes() []byte         { return j.Raw }

// Invalid wraps a TLV that failed to decode (too short for its variant, or
// semantically impossible). Decode errors are captured here rather than
// propagated so that iteration over a descriptor chain can continue.
type Invalid struct {
	Raw    []byte
	Reason string
}

func (i *Invalid) DescriptorType() uint8 {
	if len(i.Raw) > 1 {
		return i.Raw[1]
	}
	return 0
}
func (i *Invalid) Bytes() []byte { return i.Raw }

func le16(b []byte) uint16 { return binary.LittleEndian.Uint16(b) }

func putLE16(b []byte, v uint16) { binary.LittleEndian.PutUint16(b, v) }

func le32(b []byte) uint32 { return binary.LittleEndian.Uint32(b) }

func putLE32(b []byte, v uint32) { binary.LittleEndian.PutUint32(b, v) }

// Decode dispatches on bDescriptorType and decodes a single descriptor. It
// does not walk a chain of multiple concatenated descriptors; callers use
// Walk for that.
func Decode(b []byte) (Descriptor, error) {
	if len(b) < 2 {
		return &Junk{Raw: append([]byte(nil), b...)}, nil
	}
	bLength := int(b[0])
	if bLength < 2 {
		return &Junk{Raw: append([]byte(nil), b...)}, nil
	}
	if bLength > len(b) {
		return nil, &errs.InvalidDescriptorError{Reason: "bLength exceeds buffer"}
	}
	switch Type(b[1]) {
	case TypeDevice:
		return decodeDevice(b)
	case TypeConfig, TypeOtherSpeedConfig:
		return decodeConfig(b)
	case TypeString:
		return decodeString(b)
	case TypeInterface:
		return decodeInterface(b)
	case TypeEndpoint:
		return decodeEndpoint(b)
	case TypeDeviceQualifier:
		return decodeDeviceQualifier(b)
	case TypeInterfacePower:
		return decodeGenericMin(b, TypeInterfacePower, 2)
	case TypeOTG:
		return decodeOTG(b)
	case TypeDebug:
		return decodeDebug(b)
	case TypeInterfaceAssociation:
		return decodeIAD(b)
	case TypeSecurity:
		return decodeGenericMin(b, TypeSecurity, 2)
	case TypeKey:
		return decodeGenericMin(b, TypeKey, 2)
	case TypeEncrypted:
		return decodeGenericMin(b, TypeEncrypted, 2)
	case TypeBOS:
		return decodeBOS(b)
	case TypeDeviceCapability:
		return decodeCapability(b)
	case TypeWirelessEndpointCompanion:
		return decodeGenericMin(b, TypeWirelessEndpointCompanion, 2)
	case TypeWireAdaptor:
		return decodeGenericMin(b, TypeWireAdaptor, 2)
	case TypeReport:
		return decodeHIDTop(b)
	case TypePhysical:
		return decodeGenericMin(b, TypePhysical, 2)
	case TypePipe:
		return decodeGenericMin(b, TypePipe, 2)
	case TypeHub, TypeSuperSpeedHub:
		return decodeHub(b)
	case TypeSSEndpointCompanion:
		return decodeSSEndpointCompanion(b)
	case TypeSSIsocEndpointCompanion:
		return decodeSSIsocEndpointCompanion(b)
	default:
		return decodeUnknown(b)
	}
}

// Unknown preserves a descriptor of a type this codec doesn't recognize, for
// forward compatibility with future USB-IF assignments.
type Unknown struct {
	RawType Type
	Raw     []byte
}

func (u *Unknown) DescriptorType() uint8 { return uint8(u.RawType) }
func (u *Unknown) Bytes() []byte         { return u.Raw }

func decodeUnknown(b []byte) (Descriptor, error) {
	return &Unknown{RawType: Type(b[1]), Raw: append([]byte(nil), b...)}, nil
}

// generic carries the raw bytes of a recognized but not specially modeled
// descriptor type, imposing only the minimum-length check.
type generic struct {
	RawType Type
	Raw     []byte
}

func (g *generic) DescriptorType() uint8 { return uint8(g.RawType) }
func (g *generic) Bytes() []byte         { return g.Raw }

func decodeGenericMin(b []byte, t Type, min int) (Descriptor, error) {
	if len(b) < min {
		return nil, &errs.DescriptorLengthError{Expected: min, Got: len(b)}
	}
	return &generic{RawType: t, Raw: append([]byte(nil), b...)}, nil
}

// Walk iterates a chain of concatenated {bLength, bDescriptorType, ...} TLVs
// (e.g. the "extra" trailing bytes after a configuration descriptor's fixed
// part), decoding each one. A TLV whose bLength would run past the end of
// buf terminates the walk (not an error); a TLV that fails its own decode is
// replaced by an Invalid and the walk continues.
func Walk(buf []byte, decodeOne func(tlv []byte) (Descriptor, error)) []Descriptor {
	var out []Descriptor
	pos := 0
	for pos+2 <= len(buf) {
		length := int(buf[pos])
		if length < 2 || pos+length > len(buf) {
			break
		}
		tlv := buf[pos : pos+length]
		d, err := decodeOne(tlv)
		if err != nil {
			out = append(out, &Invalid{Raw: append([]byte(nil), tlv...), Reason: err.Error()})
		} else {
			out = append(out, d)
		}
		pos += length
	}
	return out
}
