// Package profiler implements the platform-independent enumeration
// algorithm: ask a port.Backend for every device, build a shallow Device
// per handle, and optionally open each handle to walk its configuration,
// hub, BOS, and qualifier descriptors into a full profile.Extra sidecar.
package profiler

import (
	"sort"

	"github.com/usbtree/usbtree/descriptor"
	"github.com/usbtree/usbtree/errs"
	"github.com/usbtree/usbtree/identify"
	"github.com/usbtree/usbtree/pathutil"
	"github.com/usbtree/usbtree/port"
	"github.com/usbtree/usbtree/profile"
	"github.com/usbtree/usbtree/usbtreelog"
)

// GetSPUSB enumerates the host's USB topology through backend and returns
// the assembled profile. Every handle is opened to read its string
// descriptors whether or not withExtra is set. With withExtra set, each
// device's configuration/hub/BOS/qualifier descriptors are also decoded
// into Extra; without it, Extra is left nil.
func GetSPUSB(backend port.Backend, withExtra bool) (*profile.SystemProfile, error) {
	handles, err := backend.ListDevices()
	if err != nil {
		return nil, errs.Wrap(errs.KindIO, "list devices", err)
	}
	rootHubs, err := backend.ListRootHubs()
	if err != nil {
		return nil, errs.Wrap(errs.KindIO, "list root hubs", err)
	}

	var devices []*profile.Device
	for _, h := range handles {
		dd, dev, err := buildShallowDevice(h)
		if err != nil {
			usbtreelog.Warnf("building device bus=%d addr=%d: %v", h.BusNumber(), h.Address(), err)
			continue
		}
		if withExtra {
			populateExtra(h, dd, dev)
		}
		devices = append(devices, dev)
	}

	// Shallow before deep, so every parent is already in the tree by the
	// time Insert looks it up for a child.
	sort.SliceStable(devices, func(i, j int) bool {
		if devices[i].Location.Bus != devices[j].Location.Bus {
			return devices[i].Location.Bus < devices[j].Location.Bus
		}
		return devices[i].Location.Depth() < devices[j].Location.Depth()
	})

	sp := &profile.SystemProfile{}
	for _, dev := range devices {
		sp.Insert(dev)
	}

	// Root hubs with no enumerated devices still surface as empty buses;
	// a bus already populated from ListDevices must not be clobbered.
	for bus := range rootHubs {
		if _, err := sp.GetBus(bus); err != nil {
			sp.Insert(&profile.Device{
				IsRootHub: true,
				Location:  profile.DeviceLocation{Bus: bus},
			})
		}
	}

	mergeRootHubData(sp, backend, rootHubs)

	return sp, nil
}

func buildShallowDevice(h port.Handle) (*descriptor.Device, *profile.Device, error) {
	raw, err := h.DeviceDescriptor()
	if err != nil {
		return nil, nil, errs.Wrap(errs.KindIO, "read device descriptor", err)
	}
	desc, err := descriptor.Decode(raw)
	if err != nil {
		return nil, nil, errs.Wrap(errs.KindDecoding, "decode device descriptor", err)
	}
	dd, ok := desc.(*descriptor.Device)
	if !ok {
		return nil, nil, errs.New(errs.KindDecoding, "device descriptor bytes did not decode to a Device")
	}

	ports := h.PortNumbers()
	dev := &profile.Device{
		VendorID:  dd.VendorID,
		ProductID: dd.ProductID,
		BcdDevice: descriptor.DecodeVersion(dd.BcdDevice),
		BcdUSB:    descriptor.DecodeVersion(dd.BcdUSB),
		Class:     dd.Class(),
		IsRootHub: len(ports) == 0,
		Location: profile.DeviceLocation{
			Bus:           h.BusNumber(),
			TreePositions: ports,
			Number:        h.Address(),
		},
	}
	dev.DeviceSpeed = profile.SpeedFromWireValue(h.Speed())

	resolveStrings(h, dd, dev)
	return dd, dev, nil
}

// resolveStrings fills in Name/Manufacturer/Serial in priority order: a
// live string-descriptor read through an opened handle, then Linux sysfs
// cached values, then the static USB-IDs database, finally left empty.
func resolveStrings(h port.Handle, dd *descriptor.Device, dev *profile.Device) {
	var langs []uint16
	oh, openErr := h.Open()
	if openErr == nil {
		defer oh.Close()
		langs, _ = oh.ReadLanguages(port.DefaultTimeout)
	} else {
		appendProfilerError(dev, "open: "+openErr.Error())
	}

	lang := uint16(0)
	if len(langs) > 0 {
		lang = langs[0]
	}

	dev.Manufacturer = stringSource(oh, lang, dd.ManufacturerIndex, h, "manufacturer", dev.VendorID, dev.ProductID, false)
	dev.Name = stringSource(oh, lang, dd.ProductIndex, h, "product", dev.VendorID, dev.ProductID, true)
	dev.Serial = stringSource(oh, lang, dd.SerialNumberIndex, h, "serial", dev.VendorID, dev.ProductID, false)
}

func stringSource(oh port.OpenHandle, lang uint16, index uint8, h port.Handle, sysfsAttr string, vid, pid uint16, isProduct bool) string {
	if oh != nil && index != 0 {
		if s, err := oh.ReadStringDescriptor(lang, index, port.DefaultTimeout); err == nil && s != "" {
			return s
		}
	}
	if s, ok := h.ReadSysfs(sysfsAttr); ok && s != "" {
		return s
	}
	if isProduct {
		if s := identify.Product(vid, pid); s != "" {
			return s
		}
	} else if sysfsAttr == "manufacturer" {
		if s := identify.Vendor(vid); s != "" {
			return s
		}
	}
	return ""
}

// mergeRootHubData carries the host-controller name and PCI identity up
// onto the owning Bus, matched by name substring via ProbePCIControllers.
func mergeRootHubData(sp *profile.SystemProfile, backend port.Backend, rootHubs map[int]port.Handle) {
	for busNum, h := range rootHubs {
		b, err := sp.GetBus(busNum)
		if err != nil {
			continue
		}
		name, _ := h.ReadSysfs("product")
		if name == "" {
			name, _ = h.ReadSysfs("manufacturer")
		}
		b.Name = name
		b.HostController = name

		controllers, err := backend.ProbePCIControllers(name)
		if err != nil || len(controllers) == 0 {
			continue
		}
		c := controllers[0]
		b.PCIVendor = c.VendorID
		b.PCIDevice = c.DeviceID
		b.PCIRevision = uint16(c.Revision)
	}
}

// devicePath is used when logging/attaching ProfilerError, so messages
// reference a stable address instead of a raw bus/port pair.
func devicePath(dev *profile.Device) string {
	return pathutil.DevicePortPath(dev.Location.Bus, dev.Location.TreePositions, dev.IsRootHub)
}
