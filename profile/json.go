package profile

import (
	"encoding/json"

	"github.com/usbtree/usbtree/descriptor"
)

// Configuration.ExtraDescriptors and Interface.ExtraDescriptors hold a
// descriptor.Descriptor interface, which encoding/json cannot unmarshal
// without a concrete type to target. These wire the interface slice
// through its Bytes() wire form instead, re-decoding generically on the
// way back in. A descriptor that was originally reinterpreted by class
// context (e.g. a UAC mixer unit) round-trips through its standard
// decode, not its class-specific one; jsonio is a save/restore format for
// a single run, not a guarantee that a reloaded profile's Extra types
// match the live profiler's.

type configurationJSON struct {
	Name              string
	StringIndex       uint8
	Number            uint8
	Attributes        descriptor.ConfigAttr
	MaxPowerMilliamps int
	Length            uint8
	TotalLength       uint16
	Interfaces        []*Interface
	ExtraDescriptors  [][]byte
}

// MarshalJSON implements json.Marshaler.
func (c *Configuration) MarshalJSON() ([]byte, error) {
	aux := configurationJSON{
		Name: c.Name, StringIndex: c.StringIndex, Number: c.Number,
		Attributes: c.Attributes, MaxPowerMilliamps: c.MaxPowerMilliamps,
		Length: c.Length, TotalLength: c.TotalLength, Interfaces: c.Interfaces,
		ExtraDescriptors: descriptorsToRaw(c.ExtraDescriptors),
	}
	return json.Marshal(aux)
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Configuration) UnmarshalJSON(data []byte) error {
	var aux configurationJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	descs, err := rawToDescriptors(aux.ExtraDescriptors)
	if err != nil {
		return err
	}
	*c = Configuration{
		Name: aux.Name, StringIndex: aux.StringIndex, Number: aux.Number,
		Attributes: aux.Attributes, MaxPowerMilliamps: aux.MaxPowerMilliamps,
		Length: aux.Length, TotalLength: aux.TotalLength, Interfaces: aux.Interfaces,
		ExtraDescriptors: descs,
	}
	return nil
}

type interfaceJSON struct {
	Name             string
	StringIndex      uint8
	InterfaceNumber  uint8
	AlternateSetting uint8
	SysfsPath        string
	Class            descriptor.ClassTriplet
	Driver           string
	Syspath          string
	Endpoints        []*Endpoint
	ExtraDescriptors [][]byte
}

// MarshalJSON implements json.Marshaler.
func (i *Interface) MarshalJSON() ([]byte, error) {
	aux := interfaceJSON{
		Name: i.Name, StringIndex: i.StringIndex, InterfaceNumber: i.InterfaceNumber,
		AlternateSetting: i.AlternateSetting, SysfsPath: i.SysfsPath, Class: i.Class,
		Driver: i.Driver, Syspath: i.Syspath, Endpoints: i.Endpoints,
		ExtraDescriptors: descriptorsToRaw(i.ExtraDescriptors),
	}
	return json.Marshal(aux)
}

// UnmarshalJSON implements json.Unmarshaler.
func (i *Interface) UnmarshalJSON(data []byte) error {
	var aux interfaceJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	descs, err := rawToDescriptors(aux.ExtraDescriptors)
	if err != nil {
		return err
	}
	*i = Interface{
		Name: aux.Name, StringIndex: aux.StringIndex, InterfaceNumber: aux.InterfaceNumber,
		AlternateSetting: aux.AlternateSetting, SysfsPath: aux.SysfsPath, Class: aux.Class,
		Driver: aux.Driver, Syspath: aux.Syspath, Endpoints: aux.Endpoints,
		ExtraDescriptors: descs,
	}
	return nil
}

type endpointJSON struct {
	Address          EndpointAddress
	TransferType     descriptor.EndpointTransferType
	SyncType         descriptor.EndpointSyncType
	UsageType        descriptor.EndpointUsageType
	MaxPacketSize    uint16
	Interval         uint8
	Length           uint8
	ExtraDescriptors [][]byte
}

// MarshalJSON implements json.Marshaler.
func (e *Endpoint) MarshalJSON() ([]byte, error) {
	aux := endpointJSON{
		Address: e.Address, TransferType: e.TransferType, SyncType: e.SyncType,
		UsageType: e.UsageType, MaxPacketSize: e.MaxPacketSize, Interval: e.Interval,
		Length: e.Length, ExtraDescriptors: descriptorsToRaw(e.ExtraDescriptors),
	}
	return json.Marshal(aux)
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Endpoint) UnmarshalJSON(data []byte) error {
	var aux endpointJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	descs, err := rawToDescriptors(aux.ExtraDescriptors)
	if err != nil {
		return err
	}
	*e = Endpoint{
		Address: aux.Address, TransferType: aux.TransferType, SyncType: aux.SyncType,
		UsageType: aux.UsageType, MaxPacketSize: aux.MaxPacketSize, Interval: aux.Interval,
		Length: aux.Length, ExtraDescriptors: descs,
	}
	return nil
}

func descriptorsToRaw(ds []descriptor.Descriptor) [][]byte {
	if ds == nil {
		return nil
	}
	raw := make([][]byte, len(ds))
	for i, d := range ds {
		raw[i] = d.Bytes()
	}
	return raw
}

func rawToDescriptors(raw [][]byte) ([]descriptor.Descriptor, error) {
	if raw == nil {
		return nil, nil
	}
	ds := make([]descriptor.Descriptor, len(raw))
	for i, b := range raw {
		d, err := descriptor.Decode(b)
		if err != nil {
			return nil, err
		}
		ds[i] = d
	}
	return ds, nil
}
