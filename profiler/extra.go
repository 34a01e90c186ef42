package profiler

import (
	"github.com/usbtree/usbtree/descriptor"
	"github.com/usbtree/usbtree/identify"
	"github.com/usbtree/usbtree/port"
	"github.com/usbtree/usbtree/profile"
	"github.com/usbtree/usbtree/usbtreelog"
)

// Standard control request codes (USB_REQ_*) used to fetch the descriptors
// this package decodes.
const (
	reqGetStatus     uint8 = 0x00
	reqGetDescriptor uint8 = 0x06
)

// populateExtra opens h and walks its configuration, hub, BOS, qualifier,
// status, and debug descriptors into dev.Extra. A failed open or a failed
// hub or BOS fetch is recorded on dev.ProfilerError rather than propagated;
// configurations that fail to read or decode are logged and skipped, and
// failed qualifier, status and debug reads leave those fields unset. A
// device the profiler can't fully probe still belongs in the tree with
// whatever shallow data buildShallowDevice already gave it.
func populateExtra(h port.Handle, dd *descriptor.Device, dev *profile.Device) {
	extra := &profile.Extra{
		MaxPacketSize0:    dd.MaxPacketSize0,
		ManufacturerIndex: dd.ManufacturerIndex,
		ProductIndex:      dd.ProductIndex,
		SerialIndex:       dd.SerialNumberIndex,
		VendorFromDB:      vendorFromDB(dev.VendorID),
		ProductFromDB:     productFromDB(dev.VendorID, dev.ProductID),
	}
	extra.DriverName = h.DriverName(devicePath(dev))
	extra.Syspath = h.Syspath(devicePath(dev))
	dev.Extra = extra

	oh, err := h.Open()
	if err != nil {
		dev.ProfilerError = err.Error()
		return
	}
	defer oh.Close()

	for i := uint8(0); i < dd.NumConfigurations; i++ {
		raw, err := h.ConfigDescriptor(i)
		if err != nil {
			usbtreelog.Warnf("device %s: configuration %d: %v", devicePath(dev), i, err)
			continue
		}
		cfg, err := decodeConfiguration(raw)
		if err != nil {
			usbtreelog.Warnf("device %s: configuration %d: %v", devicePath(dev), i, err)
			continue
		}
		extra.Configurations = append(extra.Configurations, cfg)
	}

	if dev.BcdUSB.Compare(descriptor.Version{Major: 2, Minor: 0, SubMinor: 1}) >= 0 {
		if bos, err := fetchBOS(oh); err != nil {
			appendProfilerError(dev, "BOS: "+err.Error())
		} else {
			extra.BOS = bos
			resolveBOSExtras(oh, bos)
		}
	}

	if dev.Class.BaseClass == descriptor.ClassHub {
		if hub, err := fetchHub(oh, dev); err != nil {
			appendProfilerError(dev, "hub descriptor: "+err.Error())
		} else {
			extra.Hub = hub
		}
	}

	if dev.BcdUSB.Compare(descriptor.Version{Major: 2, Minor: 0, SubMinor: 0}) >= 0 {
		if q, err := fetchDeviceQualifier(oh); err == nil {
			extra.DeviceQualifier = q
		}
	}

	if status, err := oh.ControlIn(0x80, reqGetStatus, 0, 0, 2, port.DefaultTimeout); err == nil && len(status) == 2 {
		extra.StatusWord = uint16(status[0]) | uint16(status[1])<<8
	}

	if debugRaw, err := oh.ControlIn(0x80, reqGetDescriptor, uint16(descriptor.TypeDebug)<<8, 0, 4, port.DefaultTimeout); err == nil {
		if d, err := descriptor.Decode(debugRaw); err == nil {
			if dbg, ok := d.(*descriptor.Debug); ok {
				extra.DebugDescriptor = dbg
			}
		}
	}
}

func appendProfilerError(dev *profile.Device, msg string) {
	if usbtreelog.PrintNonCriticalToStderr() {
		usbtreelog.Errorf("device %s: %s", devicePath(dev), msg)
	}
	if dev.ProfilerError == "" {
		dev.ProfilerError = msg
		return
	}
	dev.ProfilerError += "; " + msg
}

// decodeConfiguration splits raw (the full wTotalLength worth of bytes) into
// its fixed 9-byte header and the flat TLV chain that follows, then walks
// that chain interpreting class-specific extras against whichever interface
// or endpoint they trail.
func decodeConfiguration(raw []byte) (*profile.Configuration, error) {
	d, err := descriptor.Decode(raw)
	if err != nil {
		return nil, err
	}
	std, ok := d.(*descriptor.Config)
	if !ok {
		return nil, err
	}

	cfg := &profile.Configuration{
		StringIndex:       std.ConfigurationIndex,
		Number:            std.ConfigurationValue,
		Attributes:        descriptor.ConfigAttr(std.Attributes),
		MaxPowerMilliamps: int(std.MaxPower) * 2,
		Length:            std.Length,
		TotalLength:       std.TotalLength,
	}

	body := raw
	if int(std.TotalLength) <= len(raw) {
		body = raw[:std.TotalLength]
	}
	if len(body) > int(std.Length) {
		body = body[std.Length:]
	} else {
		body = nil
	}

	var curIface *profile.Interface
	var curEndpoint *profile.Endpoint
	var inEndpointSection bool

	flush := func() {
		if curIface != nil {
			if curEndpoint != nil {
				curIface.Endpoints = append(curIface.Endpoints, curEndpoint)
				curEndpoint = nil
			}
			cfg.Interfaces = append(cfg.Interfaces, curIface)
			curIface = nil
		}
	}

	for pos := 0; pos+2 <= len(body); {
		length := int(body[pos])
		if length < 2 || pos+length > len(body) {
			break
		}
		tlv := body[pos : pos+length]
		pos += length

		switch descriptor.Type(tlv[1]) {
		case descriptor.TypeInterface:
			flush()
			iface, err := descriptor.Decode(tlv)
			if err != nil {
				usbtreelog.Warnf("interface descriptor: %v", err)
				continue
			}
			std := iface.(*descriptor.Interface)
			curIface = &profile.Interface{
				StringIndex:      std.InterfaceIndex,
				InterfaceNumber:  std.InterfaceNumber,
				AlternateSetting: std.AlternateSetting,
				Class:            std.Class(),
			}
			inEndpointSection = false

		case descriptor.TypeInterfaceAssociation:
			iad, err := descriptor.Decode(tlv)
			if err == nil {
				cfg.ExtraDescriptors = append(cfg.ExtraDescriptors, iad)
			}

		case descriptor.TypeEndpoint:
			if curIface == nil {
				continue
			}
			if curEndpoint != nil {
				curIface.Endpoints = append(curIface.Endpoints, curEndpoint)
			}
			d, err := descriptor.Decode(tlv)
			if err != nil {
				usbtreelog.Warnf("endpoint descriptor: %v", err)
				curEndpoint = nil
				continue
			}
			std := d.(*descriptor.Endpoint)
			curEndpoint = &profile.Endpoint{
				Address: profile.EndpointAddress{
					Address:   std.EndpointAddr,
					Number:    std.Number(),
					Direction: std.Direction(),
				},
				TransferType:  std.TransferType(),
				SyncType:      std.SyncType(),
				UsageType:     std.UsageType(),
				MaxPacketSize: std.MaxPacketSize,
				Interval:      std.Interval,
				Length:        std.Length,
			}
			inEndpointSection = true

		case descriptor.TypeSSEndpointCompanion, descriptor.TypeSSIsocEndpointCompanion:
			d, err := descriptor.Decode(tlv)
			if err == nil && curEndpoint != nil {
				curEndpoint.ExtraDescriptors = append(curEndpoint.ExtraDescriptors, d)
			}

		default:
			if curIface == nil {
				cfg.ExtraDescriptors = append(cfg.ExtraDescriptors, mustDecodeRaw(tlv))
				continue
			}
			// A misplaced class-specific descriptor that hasn't seen an
			// endpoint yet belongs to the interface, even if it happens to
			// carry the CS_ENDPOINT type byte.
			isEndpoint := inEndpointSection && curEndpoint != nil
			d, err := descriptor.DecodeClassSpecific(tlv, curIface.Class, isEndpoint)
			if err != nil {
				usbtreelog.Warnf("class-specific descriptor: %v", err)
				continue
			}
			if isEndpoint {
				curEndpoint.ExtraDescriptors = append(curEndpoint.ExtraDescriptors, d)
			} else {
				curIface.ExtraDescriptors = append(curIface.ExtraDescriptors, d)
			}
		}
	}
	flush()

	return cfg, nil
}

func mustDecodeRaw(tlv []byte) descriptor.Descriptor {
	d, err := descriptor.Decode(tlv)
	if err != nil {
		return &descriptor.Invalid{Raw: append([]byte(nil), tlv...), Reason: err.Error()}
	}
	return d
}

// wantsExtendedPortStatus decides between the 4-byte and 8-byte hub
// Get-Status(Port) response: the extended (8-byte) form is only used when
// the device negotiated bcdUSB >= 3.10, its interface protocol indicates a
// SuperSpeed hub (protocol == 3), and its BOS declared a SuperSpeedPlus
// capability.
func wantsExtendedPortStatus(dev *profile.Device) bool {
	if dev.BcdUSB.Compare(descriptor.Version{Major: 3, Minor: 1, SubMinor: 0}) < 0 {
		return false
	}
	if dev.Class.Protocol != 3 {
		return false
	}
	if dev.Extra == nil || dev.Extra.BOS == nil {
		return false
	}
	for _, c := range dev.Extra.BOS.Capabilities {
		if _, ok := c.(*descriptor.SuperSpeedPlusCapability); ok {
			return true
		}
	}
	return false
}

func fetchHub(oh port.OpenHandle, dev *profile.Device) (*descriptor.Hub, error) {
	raw, err := oh.ControlIn(0xA0, reqGetDescriptor, uint16(descriptor.TypeHub)<<8, 0, 7, port.DefaultTimeout)
	if err != nil {
		return nil, err
	}
	d, err := descriptor.Decode(raw)
	if err != nil {
		return nil, err
	}
	hub, ok := d.(*descriptor.Hub)
	if !ok {
		return nil, err
	}

	statusLen := 4
	if wantsExtendedPortStatus(dev) {
		statusLen = 8
	}
	for portNum := uint8(1); portNum <= hub.NumPorts; portNum++ {
		raw, err := oh.ControlIn(0xA3, reqGetStatus, 0, uint16(portNum), statusLen, port.DefaultTimeout)
		if err != nil {
			usbtreelog.Warnf("hub port %d status: %v", portNum, err)
			continue
		}
		ps, err := descriptor.DecodePortStatus(portNum, raw)
		if err != nil {
			usbtreelog.Warnf("hub port %d status decode: %v", portNum, err)
			continue
		}
		hub.PortStatuses = append(hub.PortStatuses, ps)
	}
	return hub, nil
}

func fetchBOS(oh port.OpenHandle) (*descriptor.BOS, error) {
	head, err := oh.ControlIn(0x80, reqGetDescriptor, uint16(descriptor.TypeBOS)<<8, 0, 5, port.DefaultTimeout)
	if err != nil {
		return nil, err
	}
	d, err := descriptor.Decode(head)
	if err != nil {
		return nil, err
	}
	partial, ok := d.(*descriptor.BOS)
	if !ok {
		return nil, err
	}
	if partial.TotalLength <= 5 {
		return partial, nil
	}
	full, err := oh.ControlIn(0x80, reqGetDescriptor, uint16(descriptor.TypeBOS)<<8, 0, int(partial.TotalLength), port.DefaultTimeout)
	if err != nil {
		return partial, nil
	}
	d, err = descriptor.Decode(full)
	if err != nil {
		return partial, nil
	}
	bos, ok := d.(*descriptor.BOS)
	if !ok {
		return partial, nil
	}
	return bos, nil
}

// resolveBOSExtras fetches the WebUSB landing-page URL for every WebUSB
// platform capability, mutating the already-decoded BOS in place. Billboard
// capabilities are left as decoded; no strings are fetched for them.
func resolveBOSExtras(oh port.OpenHandle, bos *descriptor.BOS) {
	for _, c := range bos.Capabilities {
		platform, ok := c.(*descriptor.Platform)
		if !ok || platform.WebUSB == nil {
			continue
		}
		url, err := resolveWebUSBURL(oh, platform.WebUSB.VendorCode, platform.WebUSB.LandingPageIndex)
		if err != nil {
			usbtreelog.Warnf("WebUSB URL: %v", err)
			continue
		}
		platform.WebUSB.URL = &url
	}
}

func fetchDeviceQualifier(oh port.OpenHandle) (*descriptor.DeviceQualifier, error) {
	raw, err := oh.ControlIn(0x80, reqGetDescriptor, uint16(descriptor.TypeDeviceQualifier)<<8, 0, 10, port.DefaultTimeout)
	if err != nil {
		return nil, err
	}
	d, err := descriptor.Decode(raw)
	if err != nil {
		return nil, err
	}
	q, ok := d.(*descriptor.DeviceQualifier)
	if !ok {
		return nil, err
	}
	return q, nil
}

func vendorFromDB(vid uint16) string {
	if s := identify.HWDBQuery(identify.USBModalias(vid, 0), "ID_VENDOR_FROM_DATABASE"); s != "" {
		return s
	}
	return identify.Vendor(vid)
}

func productFromDB(vid, pid uint16) string {
	if s := identify.HWDBQuery(identify.USBModalias(vid, pid), "ID_MODEL_FROM_DATABASE"); s != "" {
		return s
	}
	return identify.Product(vid, pid)
}
