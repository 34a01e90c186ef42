package profile

// Replace swaps the device at dev's port_path for dev, preserving its
// existing children and any internal flags (profiler_error, last_event)
// the caller didn't also set on dev. It returns false if no device
// currently occupies that path.
func (sp *SystemProfile) Replace(dev *Device) bool {
	b, err := sp.GetBus(dev.Location.Bus)
	if err != nil {
		return false
	}
	return replaceIn(&b.Devices, dev)
}

func replaceIn(devices *[]*Device, dev *Device) bool {
	for i, d := range *devices {
		if portsEqual(d.Location.TreePositions, dev.Location.TreePositions) {
			dev.Children = d.Children
			if dev.ProfilerError == "" {
				dev.ProfilerError = d.ProfilerError
			}
			if dev.LastEvent == nil {
				dev.LastEvent = d.LastEvent
			}
			(*devices)[i] = dev
			return true
		}
		if replaceIn(&d.Children, dev) {
			return true
		}
	}
	return false
}

// Insert places dev into the tree: replacing it in place if its port_path
// is already occupied, grafting it under its computed parent if the parent
// exists, or appending it to its bus's device list if it is a trunk device
// (or its parent cannot be found yet, e.g. during out-of-order enumeration).
func (sp *SystemProfile) Insert(dev *Device) {
	if sp.Replace(dev) {
		return
	}
	b := sp.ensureBus(dev.Location.Bus)
	if dev.Location.Depth() <= 1 {
		b.Devices = append(b.Devices, dev)
		return
	}
	parentPorts := dev.Location.TreePositions[:len(dev.Location.TreePositions)-1]
	if parent := findByPortsLoose(b.Devices, parentPorts); parent != nil {
		parent.Children = append(parent.Children, dev)
		return
	}
	b.Devices = append(b.Devices, dev)
}

func findByPortsLoose(devices []*Device, ports []int) *Device {
	for _, d := range devices {
		if portsEqual(d.Location.TreePositions, ports) {
			return d
		}
		if found := findByPortsLoose(d.Children, ports); found != nil {
			return found
		}
	}
	return nil
}

func (sp *SystemProfile) ensureBus(number int) *Bus {
	for _, b := range sp.Buses {
		if b.BusNumber == number {
			return b
		}
	}
	b := &Bus{BusNumber: number}
	sp.Buses = append(sp.Buses, b)
	sortBuses(sp.Buses)
	return b
}
