// Package profile defines the in-memory USB topology tree produced by the
// profiler engine: SystemProfile -> Bus -> Device -> Configuration ->
// Interface -> Endpoint, with a per-device Extra sidecar carrying decoded
// class descriptors.
package profile

import (
	"sort"

	"github.com/usbtree/usbtree/descriptor"
	"github.com/usbtree/usbtree/pathutil"
)

// SystemProfile is the root of a built USB topology: an ordered list of
// buses. It is rebuilt wholesale on each profiler run (or watch event); it
// never holds pointer back-references into its own tree.
type SystemProfile struct {
	Buses []*Bus
}

// Bus identifies one host controller and its devices.
type Bus struct {
	BusNumber      int
	Name           string
	HostController string
	PCIVendor      uint16
	PCIDevice      uint16
	PCIRevision    uint16
	Devices        []*Device
}

// DeviceLocation addresses a device's position in the topology: bus number,
// the port-number chain from the root hub down to it (its topological
// depth), and its kernel-assigned device address.
type DeviceLocation struct {
	Bus           int
	TreePositions []int
	Number        int
}

// Depth is the device's distance from its bus's root hub.
func (l DeviceLocation) Depth() int { return len(l.TreePositions) }

// PortPath renders the canonical port-path string for this location.
func (l DeviceLocation) PortPath(isRootHub bool) string {
	return pathutil.DevicePortPath(l.Bus, l.TreePositions, isRootHub)
}

// ParentPath renders the port-path of this location's parent.
func (l DeviceLocation) ParentPath() string {
	return pathutil.ParentPath(l.Bus, l.TreePositions)
}

// TrunkPath renders the port-path of the trunk device owning this location.
func (l DeviceLocation) TrunkPath() string {
	return pathutil.TrunkPath(l.Bus, l.TreePositions)
}

// LastEvent records the most recent hotplug transition observed for a
// device, the hook point the "watch" feature (out of scope here) attaches
// to.
type LastEvent struct {
	Kind string // "attached" or "detached"
	At   string // RFC3339 timestamp, stamped by the caller
}

// Device is the central tree entity.
type Device struct {
	Name         string
	Manufacturer string
	Serial       string

	VendorID  uint16
	ProductID uint16
	BcdDevice descriptor.Version
	BcdUSB    descriptor.Version

	DeviceSpeed Speed
	Location    DeviceLocation
	Class       descriptor.ClassTriplet

	IsRootHub bool

	Children []*Device
	Extra    *Extra

	ProfilerError string
	LastEvent     *LastEvent
}

// PortPath is this device's canonical port_path.
func (d *Device) PortPath() string {
	return d.Location.PortPath(d.IsRootHub)
}

// Extra is the sidecar of descriptors and lookups the profiler attaches to
// a Device when run with_extra == true.
type Extra struct {
	MaxPacketSize0 uint8

	ManufacturerIndex uint8
	ProductIndex      uint8
	SerialIndex       uint8

	DriverName string
	Syspath    string

	VendorFromDB  string
	ProductFromDB string

	Configurations []*Configuration

	StatusWord      uint16
	DebugDescriptor *descriptor.Debug
	BOS             *descriptor.BOS
	DeviceQualifier *descriptor.DeviceQualifier
	Hub             *descriptor.Hub
}

// Configuration is a decoded Configuration descriptor plus its interfaces.
type Configuration struct {
	Name               string
	StringIndex        uint8
	Number             uint8
	Attributes         descriptor.ConfigAttr
	MaxPowerMilliamps  int
	Length             uint8
	TotalLength        uint16
	Interfaces         []*Interface
	ExtraDescriptors   []descriptor.Descriptor
}

// Interface is a decoded Interface descriptor (one alternate setting) plus
// its endpoints.
type Interface struct {
	Name              string
	StringIndex       uint8
	InterfaceNumber   uint8
	AlternateSetting  uint8
	SysfsPath         string
	Class             descriptor.ClassTriplet
	Driver            string
	Syspath           string
	Endpoints         []*Endpoint
	ExtraDescriptors  []descriptor.Descriptor
}

// EndpointAddress decomposes bEndpointAddress into its component fields.
type EndpointAddress struct {
	Address   uint8
	Number    uint8
	Direction descriptor.EndpointDirection
}

// Endpoint is a decoded Endpoint descriptor plus its class-specific extras.
type Endpoint struct {
	Address          EndpointAddress
	TransferType     descriptor.EndpointTransferType
	SyncType         descriptor.EndpointSyncType
	UsageType        descriptor.EndpointUsageType
	MaxPacketSize    uint16
	Interval         uint8
	Length           uint8
	ExtraDescriptors []descriptor.Descriptor
}

// Flatten returns every device in the profile in a single ordered slice,
// depth-first, as the derived projection over the tree the legacy flat
// model exposed directly (see DESIGN.md).
func (sp *SystemProfile) Flatten() []*Device {
	var out []*Device
	for _, b := range sp.Buses {
		for _, d := range b.Devices {
			out = append(out, flattenDevice(d)...)
		}
	}
	return out
}

func flattenDevice(d *Device) []*Device {
	out := []*Device{d}
	for _, c := range d.Children {
		out = append(out, flattenDevice(c)...)
	}
	return out
}

// sortBuses orders buses by bus number, used after enumeration completes.
func sortBuses(buses []*Bus) {
	sort.Slice(buses, func(i, j int) bool { return buses[i].BusNumber < buses[j].BusNumber })
}
