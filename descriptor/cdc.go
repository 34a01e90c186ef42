package descriptor

import "github.com/usbtree/usbtree/errs"

// CDC functional descriptor subtypes (bDescriptorSubtype).
const (
	CDCHeader             uint8 = 0x00
	CDCCallManagement     uint8 = 0x01
	CDCACM                uint8 = 0x02
	CDCUnion              uint8 = 0x06
	CDCCountrySelection   uint8 = 0x07
	CDCEthernetNetworking uint8 = 0x0F
	CDCMDLM               uint8 = 0x12
	CDCMDLMDetail         uint8 = 0x13
	CDCNCM                uint8 = 0x1A
	CDCMBIM               uint8 = 0x1B
)

// Communication is the class-context reinterpretation family for CDC
// functional descriptors (class ClassCDCCommunications, CS_INTERFACE 0x24).
// Subtype determines which embedded struct is populated.
type Communication struct {
	Subtype uint8

	Header *CDCHeaderDesc
	CallManagement *CDCCallManagementDesc
	ACM            *CDCACMDesc
	Union          *CDCUnionDesc
	Country        *CDCCountrySelectionDesc
	Ethernet       *CDCEthernetDesc
	Raw            []byte
}

func (c *Communication) DescriptorType() uint8 { return uint8(TypeCSInterface) }
func (c *Communication) Bytes() []byte         { return c.Raw }

type CDCHeaderDesc struct {
	BcdCDC uint16
}

type CDCCallManagementDesc struct {
	Capabilities uint8
	DataInterface uint8
}

type CDCACMDesc struct {
	Capabilities uint8
}

type CDCUnionDesc struct {
	MasterInterface uint8
	SlaveInterfaces []uint8
}

type CDCCountrySelectionDesc struct {
	CountryStringIndex uint8
	CountryCodes       []uint16
}

type CDCEthernetDesc struct {
	MacAddressIndex     uint8
	EthernetStatistics  uint32
	MaxSegmentSize      uint16
	NumMulticastFilters uint16
	NumberPowerFilters  uint8
}

// decodeCommunication decodes a CDC functional descriptor TLV (raw includes
// bLength/bDescriptorType/bDescriptorSubtype header).
func decodeCommunication(raw []byte) (Descriptor, error) {
	if len(raw) < 3 {
		return nil, &errs.DescriptorLengthError{Expected: 3, Got: len(raw)}
	}
	c := &Communication{Subtype: raw[2], Raw: append([]byte(nil), raw...)}
	switch c.Subtype {
	case CDCHeader:
		if len(raw) < 5 {
			return nil, &errs.DescriptorLengthError{Expected: 5, Got: len(raw)}
		}
		c.Header = &CDCHeaderDesc{BcdCDC: le16(raw[3:5])}
	case CDCCallManagement:
		if len(raw) < 5 {
			return nil, &errs.DescriptorLengthError{Expected: 5, Got: len(raw)}
		}
		c.CallManagement = &CDCCallManagementDesc{Capabilities: raw[3], DataInterface: raw[4]}
	case CDCACM:
		if len(raw) < 4 {
			return nil, &errs.DescriptorLengthError{Expected: 4, Got: len(raw)}
		}
		c.ACM = &CDCACMDesc{Capabilities: raw[3]}
	case CDCUnion:
		if len(raw) < 4 {
			return nil, &errs.DescriptorLengthError{Expected: 4, Got: len(raw)}
		}
		u := &CDCUnionDesc{MasterInterface: raw[3]}
		u.SlaveInterfaces = append(u.SlaveInterfaces, raw[4:]...)
		c.Union = u
	case CDCCountrySelection:
		if len(raw) < 4 {
			return nil, &errs.DescriptorLengthError{Expected: 4, Got: len(raw)}
		}
		cs := &CDCCountrySelectionDesc{CountryStringIndex: raw[3]}
		for i := 4; i+1 < len(raw); i += 2 {
			cs.CountryCodes = append(cs.CountryCodes, le16(raw[i:i+2]))
		}
		c.Country = cs
	case CDCEthernetNetworking:
		if len(raw) < 13 {
			return nil, &errs.DescriptorLengthError{Expected: 13, Got: len(raw)}
		}
		c.Ethernet = &CDCEthernetDesc{
			MacAddressIndex:     raw[3],
			EthernetStatistics:  le32(raw[4:8]),
			MaxSegmentSize:      le16(raw[8:10]),
			NumMulticastFilters: le16(raw[10:12]),
			NumberPowerFilters:  raw[12],
		}
	default:
		// MDLM/MBIM/NCM and other subtypes are preserved as raw payload only.
	}
	return c, nil
}
