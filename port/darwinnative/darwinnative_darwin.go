//go:build darwin

// Package darwinnative enumerates USB devices on macOS by shelling out to
// system_profiler SPUSBDataType -json, the way
// other_examples/f8e0916b_stegmannb-usbtree's darwin detector falls back
// to when a live libusb context isn't available. macOS has no concept of
// a separately enumerable root hub, so ListRootHubs is always empty, and
// an IOKit PCI probe covers host-controller identity.
package darwinnative

import (
	"encoding/json"
	"os/exec"
	"strconv"
	"strings"

	"github.com/usbtree/usbtree/errs"
	"github.com/usbtree/usbtree/port"
)

// Backend is the macOS system_profiler-based port.Backend.
type Backend struct{}

// New returns the macOS backend.
func New() *Backend { return &Backend{} }

type spRoot struct {
	SPUSBDataType []spController `json:"SPUSBDataType"`
}

type spController struct {
	Name             string      `json:"_name"`
	VendorID         string      `json:"vendor_id,omitempty"`
	ProductID        string      `json:"product_id,omitempty"`
	Manufacturer     string      `json:"manufacturer,omitempty"`
	SerialNum        string      `json:"serial_num,omitempty"`
	Speed            string      `json:"device_speed,omitempty"`
	CurrentAvailable string      `json:"current_available,omitempty"`
	Items            []spDevice  `json:"_items,omitempty"`
}

type spDevice struct {
	Name         string     `json:"_name"`
	VendorID     string     `json:"vendor_id,omitempty"`
	ProductID    string     `json:"product_id,omitempty"`
	Manufacturer string     `json:"manufacturer,omitempty"`
	SerialNum    string     `json:"serial_num,omitempty"`
	Speed        string     `json:"device_speed,omitempty"`
	Items        []spDevice `json:"_items,omitempty"`
}

// ListDevices runs system_profiler and flattens its controller/device
// tree into handles; bus numbering is assigned positionally (1-based, in
// the order controllers appear), matching the order macOS itself reports.
func (b *Backend) ListDevices() ([]port.Handle, error) {
	out, err := exec.Command("system_profiler", "SPUSBDataType", "-json").Output()
	if err != nil {
		return nil, errs.Wrap(errs.KindSystemProfiler, "run system_profiler", err)
	}

	var root spRoot
	if err := json.Unmarshal(out, &root); err != nil {
		return nil, errs.Wrap(errs.KindParsing, "parse system_profiler output", err)
	}

	var handles []port.Handle
	for busIdx, controller := range root.SPUSBDataType {
		bus := busIdx + 1
		hub := &handle{
			bus: bus, address: 1, portNumbers: nil,
			vid: parseHexID(controller.VendorID), pid: parseHexID(controller.ProductID),
			name: controller.Name, manufacturer: controller.Manufacturer,
			speedMbps: speedFromString(controller.Speed), isHub: true,
		}
		handles = append(handles, hub)
		handles = append(handles, flattenItems(controller.Items, bus, nil)...)
	}
	return handles, nil
}

func flattenItems(items []spDevice, bus int, parentPorts []int) []port.Handle {
	var out []port.Handle
	for i, item := range items {
		ports := append(append([]int{}, parentPorts...), i+1)
		out = append(out, &handle{
			bus: bus, address: 0, portNumbers: ports,
			vid: parseHexID(item.VendorID), pid: parseHexID(item.ProductID),
			name: item.Name, manufacturer: item.Manufacturer, serial: item.SerialNum,
			speedMbps: speedFromString(item.Speed),
		})
		out = append(out, flattenItems(item.Items, bus, ports)...)
	}
	return out
}

func parseHexID(s string) uint16 {
	s = strings.TrimPrefix(s, "0x")
	v, _ := strconv.ParseUint(s, 16, 16)
	return uint16(v)
}

func speedFromString(s string) float64 {
	switch {
	case strings.Contains(s, "low_speed"):
		return 1.5
	case strings.Contains(s, "full_speed"):
		return 12
	case strings.Contains(s, "high_speed"):
		return 480
	case strings.Contains(s, "super_speed_10gbps"):
		return 10000
	case strings.Contains(s, "super_speed"):
		return 5000
	default:
		return 0
	}
}

// ListRootHubs is always empty on macOS.
func (b *Backend) ListRootHubs() (map[int]port.Handle, error) {
	return map[int]port.Handle{}, nil
}

type handle struct {
	bus, address int
	portNumbers  []int
	vid, pid     uint16
	name         string
	manufacturer string
	serial       string
	speedMbps    float64
	isHub        bool
}

func (h *handle) BusNumber() int     { return h.bus }
func (h *handle) Address() int       { return h.address }
func (h *handle) PortNumbers() []int { return h.portNumbers }
func (h *handle) Speed() float64     { return h.speedMbps }

// DeviceDescriptor synthesizes a raw device descriptor from the fields
// system_profiler reports; fields it doesn't expose (string indices,
// bcdDevice, max packet size) are left at protocol-legal placeholders.
func (h *handle) DeviceDescriptor() ([]byte, error) {
	b := make([]byte, 18)
	b[0] = 18
	b[1] = 0x01
	b[7] = 64
	b[8] = byte(h.vid)
	b[9] = byte(h.vid >> 8)
	b[10] = byte(h.pid)
	b[11] = byte(h.pid >> 8)
	if h.isHub {
		b[4] = 0x09 // Hub
	}
	b[14] = 1
	b[15] = 2
	b[16] = 3
	b[17] = 1
	return b, nil
}

// ConfigDescriptor is unavailable: system_profiler does not expose raw
// configuration descriptor bytes, only a summary of the active one.
func (h *handle) ConfigDescriptor(index uint8) ([]byte, error) {
	return nil, errs.New(errs.KindUnsupported, "system_profiler backend exposes no raw configuration descriptors")
}

// Open is unavailable through the system_profiler backend; it has no
// kernel handle to the device, only its reported metadata.
func (h *handle) Open() (port.OpenHandle, error) {
	return nil, errs.New(errs.KindOpening, "system_profiler backend cannot open a device handle")
}

func (h *handle) ReadSysfs(attribute string) (string, bool) { return "", false }
func (h *handle) DriverName(portPath string) string         { return "" }
func (h *handle) Syspath(portPath string) string             { return "" }

// ProbePCIControllers matches host controllers by name substring via
// IOKit (see iokit_probe_darwin.go).
func (b *Backend) ProbePCIControllers(namePattern string) ([]port.PCIController, error) {
	return probePCIControllers(namePattern)
}
