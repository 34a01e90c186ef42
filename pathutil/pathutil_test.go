package pathutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTrunkDevicePortPath(t *testing.T) {
	ports := []int{1, 2, 3}
	require.Equal(t, "1-1.2.3", PortPath(1, ports))
	require.Equal(t, "1-1.2", ParentPath(1, ports))
	require.Equal(t, "1-1", TrunkPath(1, ports))
	require.Equal(t, "1-1.2.3", SysfsName(1, ports))
}

func TestRootHubPortPath(t *testing.T) {
	require.Equal(t, "2-0:1.0", DevicePortPath(2, nil, true))
	require.Equal(t, "usb2", SysfsName(2, nil))
	require.True(t, IsRootHubPath("2-0:1.0"))
}

func TestParsePortPathRoundTrip(t *testing.T) {
	bus, ports, err := ParsePortPath(PortPath(1, []int{1, 2, 3}))
	require.NoError(t, err)
	require.Equal(t, 1, bus)
	require.Equal(t, []int{1, 2, 3}, ports)
}

func TestInterfaceAndEndpointPath(t *testing.T) {
	require.Equal(t, "1-1.2:1.0", InterfacePath(1, []int{1, 2}, 1, 0))
	require.Equal(t, "1-1.2:1.0/ep_81", EndpointPath(1, []int{1, 2}, 1, 0, 81))
}

func TestDevPathDefaultsDevnoToOne(t *testing.T) {
	require.Equal(t, "/dev/bus/usb/001/001", DevPath(1, 0))
	require.Equal(t, "/dev/bus/usb/002/005", DevPath(2, 5))
}

func TestSplitInterfaceSuffix(t *testing.T) {
	base, cfg, iface, ok := SplitInterfaceSuffix("1-1.2:1.0")
	require.True(t, ok)
	require.Equal(t, "1-1.2", base)
	require.Equal(t, 1, cfg)
	require.Equal(t, 0, iface)
}
