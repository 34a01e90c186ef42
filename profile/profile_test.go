package profile

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func rootHub(bus int) *Device {
	return &Device{
		Name:      "root hub",
		IsRootHub: true,
		Location:  DeviceLocation{Bus: bus, Number: 1},
	}
}

func trunkDevice(bus, port int) *Device {
	return &Device{
		Name:     "trunk device",
		Location: DeviceLocation{Bus: bus, TreePositions: []int{port}, Number: 2},
	}
}

func TestInsertTrunkAndChild(t *testing.T) {
	sp := &SystemProfile{}
	sp.Insert(rootHub(1))
	sp.Insert(trunkDevice(1, 1))

	child := &Device{Name: "child", Location: DeviceLocation{Bus: 1, TreePositions: []int{1, 2}, Number: 3}}
	sp.Insert(child)

	b, err := sp.GetBus(1)
	require.NoError(t, err)
	require.Len(t, b.Devices, 2) // root hub + trunk device
	trunk := b.Devices[1]
	require.Len(t, trunk.Children, 1)
	require.Equal(t, "child", trunk.Children[0].Name)
}

func TestDepthMatchesTreePositions(t *testing.T) {
	loc := DeviceLocation{Bus: 1, TreePositions: []int{1, 2, 3}}
	require.Equal(t, 3, loc.Depth())
	require.Equal(t, len(loc.TreePositions), loc.Depth())
}

func TestFlattenEveryDeviceBusMatches(t *testing.T) {
	sp := &SystemProfile{}
	sp.Insert(rootHub(1))
	sp.Insert(trunkDevice(1, 1))
	sp.Insert(&Device{Name: "child", Location: DeviceLocation{Bus: 1, TreePositions: []int{1, 2}, Number: 3}})

	flat := sp.Flatten()
	require.Len(t, flat, 3)
	for _, d := range flat {
		require.Equal(t, 1, d.Location.Bus)
	}
}

func TestReplacePreservesChildren(t *testing.T) {
	sp := &SystemProfile{}
	sp.Insert(rootHub(1))
	sp.Insert(trunkDevice(1, 1))
	sp.Insert(&Device{Name: "child", Location: DeviceLocation{Bus: 1, TreePositions: []int{1, 2}, Number: 3}})

	updated := trunkDevice(1, 1)
	updated.Name = "renamed trunk device"
	ok := sp.Replace(updated)
	require.True(t, ok)

	b, _ := sp.GetBus(1)
	require.Equal(t, "renamed trunk device", b.Devices[1].Name)
	require.Len(t, b.Devices[1].Children, 1)
}

func TestInsertReplaceIdempotence(t *testing.T) {
	sp1 := &SystemProfile{}
	sp1.Insert(rootHub(1))
	dev := trunkDevice(1, 1)
	sp1.Insert(dev)

	sp2 := &SystemProfile{}
	sp2.Insert(rootHub(1))
	sp2.Insert(dev)
	sp2.Replace(dev)

	b1, _ := sp1.GetBus(1)
	b2, _ := sp2.GetBus(1)
	require.Equal(t, len(b1.Devices), len(b2.Devices))
}

func TestGetNodeRootHubSpecialCase(t *testing.T) {
	sp := &SystemProfile{}
	sp.Insert(rootHub(2))

	dev, err := sp.GetNode("2-0:1.0")
	require.NoError(t, err)
	require.True(t, dev.IsRootHub)
}

func TestGetNodeTrunkDevice(t *testing.T) {
	sp := &SystemProfile{}
	sp.Insert(rootHub(1))
	sp.Insert(trunkDevice(1, 1))

	dev, err := sp.GetNode("1-1")
	require.NoError(t, err)
	require.Equal(t, "trunk device", dev.Name)
}
