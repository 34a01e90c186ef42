package profiler

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/usbtree/usbtree/descriptor"
	"github.com/usbtree/usbtree/port"
	"github.com/usbtree/usbtree/profile"
)

// fakeHandle is a minimal in-memory port.Handle for exercising the
// enumeration and tree-assembly pipeline without any real platform I/O.
type fakeHandle struct {
	bus, addr   int
	ports       []int
	speedMbps   float64
	device      *descriptor.Device
	config      []byte
	openErr     error
	sysfs       map[string]string
	driver      string
}

func (h *fakeHandle) BusNumber() int     { return h.bus }
func (h *fakeHandle) Address() int       { return h.addr }
func (h *fakeHandle) PortNumbers() []int { return h.ports }
func (h *fakeHandle) Speed() float64     { return h.speedMbps }

func (h *fakeHandle) DeviceDescriptor() ([]byte, error) { return h.device.Bytes(), nil }

func (h *fakeHandle) ConfigDescriptor(index uint8) ([]byte, error) {
	if index > 0 || h.config == nil {
		return nil, errNoMoreConfigs
	}
	return h.config, nil
}

func (h *fakeHandle) Open() (port.OpenHandle, error) {
	if h.openErr != nil {
		return nil, h.openErr
	}
	return &fakeOpenHandle{strings: map[uint8]string{}}, nil
}

func (h *fakeHandle) ReadSysfs(attr string) (string, bool) {
	v, ok := h.sysfs[attr]
	return v, ok
}
func (h *fakeHandle) DriverName(portPath string) string { return h.driver }
func (h *fakeHandle) Syspath(portPath string) string    { return "" }

var errNoMoreConfigs = errors.New("no more configurations")

// fakeOpenHandle reports 0x0409 as its only language, serves string
// descriptors from strings, and fails every ControlIn read, so no hub, BOS
// or qualifier data is produced through it.
type fakeOpenHandle struct {
	strings map[uint8]string
	closed  bool
}

func (o *fakeOpenHandle) ReadLanguages(timeout time.Duration) ([]uint16, error) {
	return []uint16{0x0409}, nil
}

func (o *fakeOpenHandle) ReadStringDescriptor(lang uint16, index uint8, timeout time.Duration) (string, error) {
	if s, ok := o.strings[index]; ok {
		return s, nil
	}
	return "", nil
}

func (o *fakeOpenHandle) ControlIn(requestType, request uint8, value, index uint16, length int, timeout time.Duration) ([]byte, error) {
	return nil, errNoMoreConfigs
}

func (o *fakeOpenHandle) Close() error { o.closed = true; return nil }

// fakeBackend serves a fixed handle list to GetSPUSB.
type fakeBackend struct {
	devices  []port.Handle
	rootHubs map[int]port.Handle
}

func (b *fakeBackend) ListDevices() ([]port.Handle, error) { return b.devices, nil }
func (b *fakeBackend) ListRootHubs() (map[int]port.Handle, error) {
	if b.rootHubs == nil {
		return map[int]port.Handle{}, nil
	}
	return b.rootHubs, nil
}
func (b *fakeBackend) ProbePCIControllers(namePattern string) ([]port.PCIController, error) {
	return nil, nil
}

func deviceDesc(vid, pid uint16, class uint8) *descriptor.Device {
	return &descriptor.Device{
		Length: 18, BcdUSB: 0x0200, DeviceClass: class,
		MaxPacketSize0: 64, VendorID: vid, ProductID: pid,
		NumConfigurations: 0,
	}
}

func TestGetSPUSBBuildsTrunkAndChild(t *testing.T) {
	rootHub := &fakeHandle{bus: 1, addr: 1, ports: nil, speedMbps: 480, device: deviceDesc(0x1d6b, 0x0002, descriptor.ClassHub)}
	trunk := &fakeHandle{bus: 1, addr: 2, ports: []int{1}, speedMbps: 480, device: deviceDesc(0x046d, 0x08e5, 0)}
	child := &fakeHandle{bus: 1, addr: 3, ports: []int{1, 1}, speedMbps: 12, device: deviceDesc(0x1234, 0x5678, 0)}

	backend := &fakeBackend{
		devices:  []port.Handle{child, trunk, rootHub}, // deliberately out of depth order
		rootHubs: map[int]port.Handle{1: rootHub},
	}

	sp, err := GetSPUSB(backend, false)
	require.NoError(t, err)

	b, err := sp.GetBus(1)
	require.NoError(t, err)
	require.Len(t, b.Devices, 2) // root hub + trunk

	var trunkDev *profile.Device
	for _, d := range b.Devices {
		if !d.IsRootHub {
			trunkDev = d
		}
	}
	require.NotNil(t, trunkDev)
	require.Len(t, trunkDev.Children, 1)
	require.Equal(t, uint16(0x1234), trunkDev.Children[0].VendorID)
	require.Nil(t, trunkDev.Extra)
}

func TestGetSPUSBEmptyRootHubBusSurfaces(t *testing.T) {
	rootHub := &fakeHandle{bus: 2, addr: 1, ports: nil, device: deviceDesc(0x1d6b, 0x0003, descriptor.ClassHub)}
	backend := &fakeBackend{rootHubs: map[int]port.Handle{2: rootHub}}

	sp, err := GetSPUSB(backend, false)
	require.NoError(t, err)

	b, err := sp.GetBus(2)
	require.NoError(t, err)
	require.Len(t, b.Devices, 1)
	require.True(t, b.Devices[0].IsRootHub)
}

func TestGetSPUSBRecordsOpenErrorOnShallowPath(t *testing.T) {
	h := &fakeHandle{
		bus: 1, addr: 2, ports: []int{1},
		device:  deviceDesc(0x046d, 0x08e5, 0),
		openErr: errors.New("permission denied"),
	}
	backend := &fakeBackend{devices: []port.Handle{h}}

	sp, err := GetSPUSB(backend, false)
	require.NoError(t, err)

	dev, err := sp.GetNode("1-1")
	require.NoError(t, err)
	require.Contains(t, dev.ProfilerError, "permission denied")
}

func TestGetSPUSBWithExtraPopulatesConfiguration(t *testing.T) {
	dd := deviceDesc(0x046d, 0x08e5, 0)
	dd.NumConfigurations = 1

	cfg := buildTestConfig(t)
	h := &fakeHandle{bus: 1, addr: 2, ports: []int{1}, device: dd, config: cfg}

	backend := &fakeBackend{devices: []port.Handle{h}}
	sp, err := GetSPUSB(backend, true)
	require.NoError(t, err)

	dev, err := sp.GetNode("1-1")
	require.NoError(t, err)
	require.NotNil(t, dev.Extra)
	require.Len(t, dev.Extra.Configurations, 1)
	require.Len(t, dev.Extra.Configurations[0].Interfaces, 1)
	iface := dev.Extra.Configurations[0].Interfaces[0]
	require.Len(t, iface.Endpoints, 1)
	require.Equal(t, descriptor.DirectionIn, iface.Endpoints[0].Address.Direction)
}

// buildTestConfig renders a minimal but real configuration descriptor: one
// interface, one bulk-IN endpoint, no class-specific extras.
func buildTestConfig(t *testing.T) []byte {
	t.Helper()
	cfgHeader := (&descriptor.Config{
		Length: 9, RawType: descriptor.TypeConfig, NumInterfaces: 1,
		ConfigurationValue: 1, Attributes: 0x80, MaxPower: 50,
	})
	iface := (&descriptor.Interface{
		Length: 9, InterfaceNumber: 0, NumEndpoints: 1,
		InterfaceClass: 0xFF,
	}).Bytes()
	ep := (&descriptor.Endpoint{
		Length: 7, EndpointAddr: 0x81, Attributes: 0x02, MaxPacketSize: 64, Interval: 0,
	}).Bytes()

	total := 9 + len(iface) + len(ep)
	cfgHeader.TotalLength = uint16(total)
	out := append([]byte{}, cfgHeader.Bytes()...)
	out = append(out, iface...)
	out = append(out, ep...)
	return out
}
