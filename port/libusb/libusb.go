//go:build usbtree_libusb

// Package libusb is the libusb-style wrapper port.Backend, built on
// github.com/google/gousb the way _examples/guiperry-HASHER's
// usb_device.go drives a libusb context for direct control transfers.
// It is selected at compile time with -tags usbtree_libusb, for hosts
// where usbdevfs isn't available or a libusb install is preferred.
package libusb

import (
	"time"

	"github.com/google/gousb"

	"github.com/usbtree/usbtree/errs"
	"github.com/usbtree/usbtree/port"
)

// Backend wraps a libusb context shared by every enumerated handle.
type Backend struct {
	ctx *gousb.Context
}

// New opens a libusb context. Close it when the profiler run completes.
func New() *Backend {
	return &Backend{ctx: gousb.NewContext()}
}

// Close releases the underlying libusb context.
func (b *Backend) Close() error {
	return b.ctx.Close()
}

// ListDevices enumerates every device libusb can see.
func (b *Backend) ListDevices() ([]port.Handle, error) {
	devices, err := b.ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool { return true })
	if err != nil && len(devices) == 0 {
		return nil, errs.Wrap(errs.KindLibUSB, "enumerate devices", err)
	}
	handles := make([]port.Handle, 0, len(devices))
	for _, d := range devices {
		handles = append(handles, &handle{dev: d})
	}
	return handles, nil
}

// ListRootHubs is empty: libusb does not expose Linux-style root hub
// pseudo-devices as a distinct enumerable handle.
func (b *Backend) ListRootHubs() (map[int]port.Handle, error) {
	return map[int]port.Handle{}, nil
}

// ProbePCIControllers is not available through libusb.
func (b *Backend) ProbePCIControllers(namePattern string) ([]port.PCIController, error) {
	return nil, nil
}

type handle struct {
	dev *gousb.Device
}

func (h *handle) BusNumber() int     { return h.dev.Desc.Bus }
func (h *handle) Address() int       { return h.dev.Desc.Address }
func (h *handle) PortNumbers() []int { return h.dev.Desc.Port.Numbers() }
func (h *handle) Speed() float64 {
	switch h.dev.Desc.Speed {
	case gousb.SpeedLow:
		return 1.5
	case gousb.SpeedFull:
		return 12
	case gousb.SpeedHigh:
		return 480
	case gousb.SpeedSuper:
		return 5000
	default:
		return 0
	}
}

// DeviceDescriptor re-renders libusb's parsed DeviceDesc back to the raw
// 18-byte wire form, since the profiler's decode path expects raw bytes
// for every backend uniformly.
func (h *handle) DeviceDescriptor() ([]byte, error) {
	d := h.dev.Desc
	b := make([]byte, 18)
	b[0] = 18
	b[1] = 0x01
	putBCD(b[2:4], d.Spec)
	b[4] = byte(d.Class)
	b[5] = byte(d.SubClass)
	b[6] = byte(d.Protocol)
	b[7] = byte(d.MaxControlPacketSize)
	putLE16(b[8:10], uint16(d.Vendor))
	putLE16(b[10:12], uint16(d.Product))
	putBCD(b[12:14], d.Device)
	b[17] = uint8(len(d.Configs))
	return b, nil
}

// ConfigDescriptor re-renders only the 9-byte header of the index-th
// configuration from libusb's already-parsed descriptor tree, with
// wTotalLength set to 9. Interface, endpoint and class-specific
// descriptors are not included, so the profiler finds no interfaces
// through this backend.
func (h *handle) ConfigDescriptor(index uint8) ([]byte, error) {
	cfg, ok := h.dev.Desc.Configs[int(index)+1]
	if !ok {
		return nil, errs.New(errs.KindNotFound, "configuration index not present")
	}
	b := make([]byte, 9)
	b[0] = 9
	b[1] = 0x02
	putLE16(b[2:4], 9)
	b[4] = uint8(len(cfg.Interfaces))
	b[5] = uint8(cfg.Number)
	b[7] = cfg.Attributes
	b[8] = uint8(cfg.MaxPower)
	return b, nil
}

// Open claims the device for control I/O. gousb devices are always
// opened on enumeration, so this just returns a wrapper over it.
func (h *handle) Open() (port.OpenHandle, error) {
	return &openHandle{dev: h.dev}, nil
}

// ReadSysfs has no libusb equivalent.
func (h *handle) ReadSysfs(attribute string) (string, bool) { return "", false }

// DriverName has no libusb equivalent without shelling out to udev.
func (h *handle) DriverName(portPath string) string { return "" }

// Syspath has no libusb equivalent.
func (h *handle) Syspath(portPath string) string { return "" }

type openHandle struct {
	dev *gousb.Device
}

func (o *openHandle) ReadLanguages(timeout time.Duration) ([]uint16, error) {
	buf := make([]byte, 255)
	n, err := o.dev.Control(0x80, 0x06, 0x0300, 0, buf)
	if err != nil {
		return nil, errs.Wrap(errs.KindLibUSB, "read languages", err)
	}
	if n < 2 {
		return nil, errs.New(errs.KindParsing, "malformed language list")
	}
	var langs []uint16
	for i := 2; i+1 < n; i += 2 {
		langs = append(langs, uint16(buf[i])|uint16(buf[i+1])<<8)
	}
	return langs, nil
}

func (o *openHandle) ReadStringDescriptor(lang uint16, index uint8, timeout time.Duration) (string, error) {
	if index == 0 {
		return "", errs.New(errs.KindInvalidArg, "string index 0 is reserved")
	}
	s, err := o.dev.GetStringDescriptor(int(index))
	if err != nil {
		return "", errs.Wrap(errs.KindLibUSB, "read string descriptor", err)
	}
	return s, nil
}

func (o *openHandle) ControlIn(requestType, request uint8, value, index uint16, length int, timeout time.Duration) ([]byte, error) {
	buf := make([]byte, length)
	n, err := o.dev.Control(requestType|0x80, request, value, index, buf)
	if err != nil {
		return nil, errs.Wrap(errs.KindLibUSB, "control transfer", err)
	}
	return buf[:n], nil
}

func (o *openHandle) Close() error { return nil }

func putLE16(b []byte, v uint16) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
}

func putBCD(b []byte, v gousb.BCD) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
}
