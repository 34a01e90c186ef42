package profile

import (
	"github.com/usbtree/usbtree/errs"
	"github.com/usbtree/usbtree/pathutil"
)

// GetBus returns the bus with the given bus number.
func (sp *SystemProfile) GetBus(number int) (*Bus, error) {
	for _, b := range sp.Buses {
		if b.BusNumber == number {
			return b, nil
		}
	}
	return nil, errs.New(errs.KindNotFound, "no such bus")
}

// GetNode walks the tree to find the Device at path, which may be a plain
// port path or the special root-hub interface path ("{bus}-0:1.0").
func (sp *SystemProfile) GetNode(path string) (*Device, error) {
	if pathutil.IsRootHubPath(path) {
		base, _, _, _ := pathutil.SplitInterfaceSuffix(path)
		bus, _, err := pathutil.ParsePortPath(base)
		if err != nil {
			return nil, err
		}
		b, err := sp.GetBus(bus)
		if err != nil {
			return nil, err
		}
		for _, d := range b.Devices {
			if d.IsRootHub {
				return d, nil
			}
		}
		return nil, errs.New(errs.KindNotFound, "root hub not found on bus")
	}

	bus, ports, err := pathutil.ParsePortPath(path)
	if err != nil {
		return nil, err
	}
	b, err := sp.GetBus(bus)
	if err != nil {
		return nil, err
	}
	return findByPorts(b.Devices, ports)
}

// findByPorts walks down exactly one branch: at each level it looks for the
// sibling whose own tree position is a prefix of ports, then recurses only
// into that sibling's children, so the walk costs O(depth) rather than
// O(size of the subtree).
func findByPorts(devices []*Device, ports []int) (*Device, error) {
	for _, d := range devices {
		dp := d.Location.TreePositions
		if portsEqual(dp, ports) {
			return d, nil
		}
		if len(dp) < len(ports) && portsEqual(dp, ports[:len(dp)]) {
			if found, err := findByPorts(d.Children, ports); err == nil {
				return found, nil
			}
		}
	}
	return nil, errs.New(errs.KindNotFound, "no device at port path")
}

func portsEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// GetConfig returns the numbered Configuration on the device at path.
func (sp *SystemProfile) GetConfig(path string, cfgNumber uint8) (*Configuration, error) {
	dev, err := sp.GetNode(path)
	if err != nil {
		return nil, err
	}
	if dev.Extra == nil {
		return nil, errs.New(errs.KindNotFound, "device has no extra data")
	}
	for _, c := range dev.Extra.Configurations {
		if c.Number == cfgNumber {
			return c, nil
		}
	}
	return nil, errs.New(errs.KindNotFound, "no such configuration")
}

// GetInterface returns the numbered Interface within a Configuration.
func (sp *SystemProfile) GetInterface(path string, cfgNumber uint8, ifaceNumber uint8) (*Interface, error) {
	cfg, err := sp.GetConfig(path, cfgNumber)
	if err != nil {
		return nil, err
	}
	for _, i := range cfg.Interfaces {
		if i.InterfaceNumber == ifaceNumber {
			return i, nil
		}
	}
	return nil, errs.New(errs.KindNotFound, "no such interface")
}

// GetEndpoint returns the numbered Endpoint within an Interface.
func (sp *SystemProfile) GetEndpoint(path string, cfgNumber, ifaceNumber uint8, epAddr uint8) (*Endpoint, error) {
	iface, err := sp.GetInterface(path, cfgNumber, ifaceNumber)
	if err != nil {
		return nil, err
	}
	for _, e := range iface.Endpoints {
		if e.Address.Address == epAddr {
			return e, nil
		}
	}
	return nil, errs.New(errs.KindNotFound, "no such endpoint")
}
