package descriptor

import "github.com/usbtree/usbtree/errs"

// Hub is the decoded Hub (0x29) or SuperSpeedHub (0x2A) class descriptor.
// DeviceRemovable is a bitmap, one bit per downstream port (bit 0 unused),
// padded to a byte boundary; its length is derived from NumPorts.
type Hub struct {
	RawType           Type // TypeHub or TypeSuperSpeedHub
	NumPorts          uint8
	Characteristics   uint16
	PwrOn2PwrGood     uint8
	ControlCurrent    uint8
	DeviceRemovable   []byte
	// SuperSpeedHub-only fields (RawType == TypeSuperSpeedHub):
	HubDecLat     uint8
	HubDelay      uint16
	// PortStatuses is populated by the profiler after issuing one
	// Get-Status request per downstream port; it is not part of the wire
	// descriptor itself.
	PortStatuses []PortStatus
}

func (h *Hub) DescriptorType() uint8 { return uint8(h.RawType) }

func (h *Hub) Bytes() []byte {
	if h.RawType == TypeSuperSpeedHub {
		b := make([]byte, 12)
		b[0] = uint8(len(b))
		b[1] = uint8(h.RawType)
		b[2] = h.NumPorts
		putLE16(b[3:5], h.Characteristics)
		b[5] = h.PwrOn2PwrGood
		b[6] = h.ControlCurrent
		b[7] = h.HubDecLat
		putLE16(b[8:10], h.HubDelay)
		// DeviceRemovable for SS hubs is a fixed 2-byte bitmap.
		copy(b[10:12], h.DeviceRemovable)
		return b
	}
	removableLen := (int(h.NumPorts) / 8) + 1
	b := make([]byte, 7+removableLen)
	b[0] = uint8(len(b))
	b[1] = uint8(h.RawType)
	b[2] = h.NumPorts
	putLE16(b[3:5], h.Characteristics)
	b[5] = h.PwrOn2PwrGood
	b[6] = h.ControlCurrent
	copy(b[7:], h.DeviceRemovable)
	return b
}

const minHubLen = 7

func decodeHub(b []byte) (Descriptor, error) {
	if len(b) < minHubLen {
		return nil, &errs.DescriptorLengthError{Expected: minHubLen, Got: len(b)}
	}
	h := &Hub{
		RawType:         Type(b[1]),
		NumPorts:        b[2],
		Characteristics: le16(b[3:5]),
		PwrOn2PwrGood:   b[5],
		ControlCurrent:  b[6],
	}
	if h.RawType == TypeSuperSpeedHub {
		if len(b) < 12 {
			return nil, &errs.DescriptorLengthError{Expected: 12, Got: len(b)}
		}
		h.HubDecLat = b[7]
		h.HubDelay = le16(b[8:10])
		h.DeviceRemovable = append([]byte(nil), b[10:12]...)
		return h, nil
	}
	h.DeviceRemovable = append([]byte(nil), b[7:]...)
	return h, nil
}

// PortStatus is the result of a hub class Get-Status(Port) request: 4 bytes
// for USB 2.0 hubs, 8 bytes (standard + extended) for SuperSpeed hubs.
//
// The standard-vs-extended choice depends on three independent signals
// (device bcdUSB >= 3.10, interface protocol == 3 i.e. SuperSpeed hub, and
// the device's BOS capability set declaring SuperSpeedPlus); the profiler
// makes that decision explicit (see profiler.wantsExtendedPortStatus).
type PortStatus struct {
	PortNumber       uint8
	Status           uint16
	Change           uint16
	ExtendedStatus   uint32
	HasExtended      bool
}

// DecodePortStatus parses a 4-byte or 8-byte port status/change payload.
func DecodePortStatus(portNumber uint8, b []byte) (PortStatus, error) {
	if len(b) < 4 {
		return PortStatus{}, &errs.DescriptorLengthError{Expected: 4, Got: len(b)}
	}
	ps := PortStatus{
		PortNumber: portNumber,
		Status:     le16(b[0:2]),
		Change:     le16(b[2:4]),
	}
	if len(b) >= 8 {
		ps.HasExtended = true
		ps.ExtendedStatus = le32(b[4:8])
	}
	return ps, nil
}
