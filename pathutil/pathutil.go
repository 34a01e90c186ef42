// Package pathutil implements the canonical path algebra used to address
// nodes in a SystemProfile tree: port paths, parent/trunk paths, interface
// and endpoint paths, sysfs names, and device-node paths.
package pathutil

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/usbtree/usbtree/errs"
)

// RootHubInterfaceSuffix is the fixed config.interface suffix a root hub is
// addressed by, since a root hub is modeled as interface 0 of configuration
// 1 of the host controller.
const RootHubInterfaceSuffix = ":1.0"

// PortPath renders the dot-joined port chain "{bus}-{ports[0]}.{ports[1]}…".
// An empty port list (the host controller itself, off a trunk device) is
// rendered as "{bus}-0".
func PortPath(bus int, ports []int) string {
	if len(ports) == 0 {
		return fmt.Sprintf("%d-0", bus)
	}
	segs := make([]string, len(ports))
	for i, p := range ports {
		segs[i] = strconv.Itoa(p)
	}
	return fmt.Sprintf("%d-%s", bus, strings.Join(segs, "."))
}

// DevicePortPath renders a device's port_path, special-casing the root hub
// pseudo-device, which is addressed as {bus}-0:1.0 (see spec.md §8 scenario 2)
// rather than the plain form PortPath would otherwise produce.
func DevicePortPath(bus int, ports []int, isRootHub bool) string {
	if isRootHub {
		return RootHubPath(bus)
	}
	return PortPath(bus, ports)
}

// RootHubPath is the canonical port_path of the root hub pseudo-device on a
// bus: the interface path of the host controller's own interface 0.
func RootHubPath(bus int) string {
	return fmt.Sprintf("%d-0%s", bus, RootHubInterfaceSuffix)
}

// ParentPath drops the last port segment. A trunk device's (single-port)
// parent is the bus's root hub, rendered via PortPath with no ports.
func ParentPath(bus int, ports []int) string {
	if len(ports) == 0 {
		return PortPath(bus, nil)
	}
	return PortPath(bus, ports[:len(ports)-1])
}

// TrunkPath is the port path of the trunk device (depth 1) that owns ports.
func TrunkPath(bus int, ports []int) string {
	if len(ports) == 0 {
		return PortPath(bus, nil)
	}
	return PortPath(bus, ports[:1])
}

// InterfacePath appends the configuration/interface suffix to a port path.
func InterfacePath(bus int, ports []int, cfg, iface int) string {
	return fmt.Sprintf("%s:%d.%d", PortPath(bus, ports), cfg, iface)
}

// EndpointPath appends the endpoint suffix to an interface path.
func EndpointPath(bus int, ports []int, cfg, iface, ep int) string {
	return fmt.Sprintf("%s/ep_%d", InterfacePath(bus, ports, cfg, iface), ep)
}

// DevPath renders the kernel device-node path for a bus/device-number pair.
// A zero devno is treated as absent and defaults to 1.
func DevPath(bus, devno int) string {
	if devno == 0 {
		devno = 1
	}
	return fmt.Sprintf("/dev/bus/usb/%03d/%03d", bus, devno)
}

// SysfsName is the sysfs device name for a device's location: "usb{bus}"
// for the root hub (no ports), otherwise identical to its port path.
func SysfsName(bus int, ports []int) string {
	if len(ports) == 0 {
		return fmt.Sprintf("usb%d", bus)
	}
	return PortPath(bus, ports)
}

// ParsePortPath recovers (bus, tree_positions) from a port path of the form
// "{bus}-{port}.{port}…", the inverse of PortPath. Interface/endpoint
// suffixes (":cfg.iface", "/ep_N") are rejected; SplitInterfaceSuffix strips
// the interface suffix, and there is no helper for the endpoint suffix.
func ParsePortPath(path string) (bus int, ports []int, err error) {
	dash := strings.IndexByte(path, '-')
	if dash < 0 {
		return 0, nil, errs.New(errs.KindParsing, "port path missing '-' separator")
	}
	bus, err = strconv.Atoi(path[:dash])
	if err != nil {
		return 0, nil, errs.Wrap(errs.KindParsing, "invalid bus number in port path", err)
	}
	rest := path[dash+1:]
	if rest == "0" {
		return bus, nil, nil
	}
	for _, seg := range strings.Split(rest, ".") {
		p, err := strconv.Atoi(seg)
		if err != nil {
			return 0, nil, errs.Wrap(errs.KindParsing, "invalid port segment in port path", err)
		}
		ports = append(ports, p)
	}
	return bus, ports, nil
}

// SplitInterfaceSuffix separates a trailing ":cfg.iface" suffix, if present.
func SplitInterfaceSuffix(path string) (base string, cfg, iface int, hasSuffix bool) {
	idx := strings.LastIndexByte(path, ':')
	if idx < 0 {
		return path, 0, 0, false
	}
	suffix := path[idx+1:]
	dot := strings.IndexByte(suffix, '.')
	if dot < 0 {
		return path, 0, 0, false
	}
	cfg, err1 := strconv.Atoi(suffix[:dot])
	iface, err2 := strconv.Atoi(suffix[dot+1:])
	if err1 != nil || err2 != nil {
		return path, 0, 0, false
	}
	return path[:idx], cfg, iface, true
}

// IsRootHubPath reports whether path is the special root hub interface
// path (bus-0:1.0), the form get_node uses to special-case lookups ending
// in ":1.0".
func IsRootHubPath(path string) bool {
	if !strings.HasSuffix(path, RootHubInterfaceSuffix) {
		return false
	}
	base := strings.TrimSuffix(path, RootHubInterfaceSuffix)
	return strings.HasSuffix(base, "-0")
}

// Depth returns len(tree_positions), the device's distance from its root
// hub.
func Depth(ports []int) int {
	return len(ports)
}
