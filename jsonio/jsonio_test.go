package jsonio

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/usbtree/usbtree/descriptor"
	"github.com/usbtree/usbtree/profile"
)

func buildProfile() *profile.SystemProfile {
	ep := &profile.Endpoint{
		Address:       profile.EndpointAddress{Address: 0x81, Number: 1, Direction: descriptor.DirectionIn},
		TransferType:  descriptor.EndpointBulk,
		MaxPacketSize: 512,
	}
	iface := &profile.Interface{
		Name: "Bulk Interface", InterfaceNumber: 0,
		Class:     descriptor.ClassTriplet{BaseClass: 0xff},
		Endpoints: []*profile.Endpoint{ep},
	}
	cfg := &profile.Configuration{Name: "Configuration 1", Number: 1, Interfaces: []*profile.Interface{iface}}
	dev := &profile.Device{
		Name: "Widget", VendorID: 0x1234, ProductID: 0x5678,
		Location: profile.DeviceLocation{Bus: 1, TreePositions: []int{1}},
		Extra:    &profile.Extra{Configurations: []*profile.Configuration{cfg}},
	}
	sp := &profile.SystemProfile{}
	sp.Insert(dev)
	return sp
}

func TestSaveLoadRoundTrip(t *testing.T) {
	sp := buildProfile()
	var buf bytes.Buffer
	require.NoError(t, Save(&buf, sp))

	loaded, err := Load(&buf)
	require.NoError(t, err)

	require.Len(t, loaded.Buses, 1)
	dev := loaded.Buses[0].Devices[0]
	require.Equal(t, "Widget", dev.Name)
	require.Equal(t, uint16(0x1234), dev.VendorID)
	require.Len(t, dev.Extra.Configurations, 1)
	require.Equal(t, "Bulk Interface", dev.Extra.Configurations[0].Interfaces[0].Name)
	require.Equal(t, uint16(512), dev.Extra.Configurations[0].Interfaces[0].Endpoints[0].MaxPacketSize)
}

func TestLoadInvalidJSONReturnsError(t *testing.T) {
	_, err := Load(bytes.NewReader([]byte("{not json")))
	require.Error(t, err)
}
