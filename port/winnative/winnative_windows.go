//go:build windows

// Package winnative enumerates USB devices on Windows via SetupAPI device
// interface enumeration (SetupDiGetClassDevs -> SetupDiEnumDeviceInterfaces
// -> SetupDiGetDeviceInterfaceDetail), populating port.Handle.
package winnative

import (
	"regexp"
	"strconv"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/usbtree/usbtree/errs"
	"github.com/usbtree/usbtree/port"
)

var guidDevInterfaceUSBDevice = windows.GUID{
	Data1: 0xA5DCBF10,
	Data2: 0x6530,
	Data3: 0x11D2,
	Data4: [8]byte{0x90, 0x1F, 0x00, 0xC0, 0x4F, 0xB9, 0x51, 0xED},
}

const (
	digcfPresent         = 0x00000002
	digcfDeviceInterface = 0x00000010
	errorNoMoreItems     = 259
)

var (
	modsetupapi = windows.NewLazySystemDLL("setupapi.dll")

	procSetupDiGetClassDevsW             = modsetupapi.NewProc("SetupDiGetClassDevsW")
	procSetupDiEnumDeviceInterfaces      = modsetupapi.NewProc("SetupDiEnumDeviceInterfaces")
	procSetupDiGetDeviceInterfaceDetailW = modsetupapi.NewProc("SetupDiGetDeviceInterfaceDetailW")
	procSetupDiDestroyDeviceInfoList     = modsetupapi.NewProc("SetupDiDestroyDeviceInfoList")
)

type spDevinfoData struct {
	cbSize    uint32
	ClassGUID windows.GUID
	DevInst   uint32
	Reserved  uintptr
}

type spDeviceInterfaceData struct {
	cbSize             uint32
	InterfaceClassGUID windows.GUID
	Flags              uint32
	Reserved           uintptr
}

type spDeviceInterfaceDetailData struct {
	cbSize     uint32
	DevicePath [1]uint16
}

func setupDiGetClassDevs(guid *windows.GUID, flags uint32) (windows.Handle, error) {
	r0, _, e1 := syscall.SyscallN(procSetupDiGetClassDevsW.Addr(),
		uintptr(unsafe.Pointer(guid)), 0, 0, uintptr(flags))
	handle := windows.Handle(r0)
	if handle == windows.InvalidHandle {
		return handle, e1
	}
	return handle, nil
}

func setupDiEnumDeviceInterfaces(set windows.Handle, guid *windows.GUID, index uint32, data *spDeviceInterfaceData) error {
	r0, _, e1 := syscall.SyscallN(procSetupDiEnumDeviceInterfaces.Addr(),
		uintptr(set), 0, uintptr(unsafe.Pointer(guid)), uintptr(index), uintptr(unsafe.Pointer(data)))
	if r0 == 0 {
		return e1
	}
	return nil
}

func setupDiGetDeviceInterfaceDetail(set windows.Handle, ifaceData *spDeviceInterfaceData, detail *spDeviceInterfaceDetailData, size uint32, required *uint32, devInfo *spDevinfoData) error {
	r0, _, e1 := syscall.SyscallN(procSetupDiGetDeviceInterfaceDetailW.Addr(),
		uintptr(set), uintptr(unsafe.Pointer(ifaceData)), uintptr(unsafe.Pointer(detail)),
		uintptr(size), uintptr(unsafe.Pointer(required)), uintptr(unsafe.Pointer(devInfo)))
	if r0 == 0 {
		return e1
	}
	return nil
}

func setupDiDestroyDeviceInfoList(set windows.Handle) {
	syscall.SyscallN(procSetupDiDestroyDeviceInfoList.Addr(), uintptr(set))
}

var vidPidPattern = regexp.MustCompile(`(?i)vid_([0-9a-f]{4})&pid_([0-9a-f]{4})`)

// Backend is the Windows SetupAPI port.Backend.
type Backend struct{}

// New returns the Windows backend.
func New() *Backend { return &Backend{} }

// ListDevices enumerates USB device interfaces and parses vendor/product
// IDs out of each device path's "VID_xxxx&PID_yyyy" hardware-ID fragment.
func (b *Backend) ListDevices() ([]port.Handle, error) {
	set, err := setupDiGetClassDevs(&guidDevInterfaceUSBDevice, digcfPresent|digcfDeviceInterface)
	if err != nil {
		return nil, errs.Wrap(errs.KindIO, "SetupDiGetClassDevs", err)
	}
	defer setupDiDestroyDeviceInfoList(set)

	var handles []port.Handle
	for i := uint32(0); ; i++ {
		var ifaceData spDeviceInterfaceData
		ifaceData.cbSize = uint32(unsafe.Sizeof(ifaceData))

		if err := setupDiEnumDeviceInterfaces(set, &guidDevInterfaceUSBDevice, i, &ifaceData); err != nil {
			if errno, ok := err.(syscall.Errno); ok && errno == errorNoMoreItems {
				break
			}
			continue
		}

		var required uint32
		setupDiGetDeviceInterfaceDetail(set, &ifaceData, nil, 0, &required, nil)
		if required == 0 {
			continue
		}
		buf := make([]byte, required)
		detail := (*spDeviceInterfaceDetailData)(unsafe.Pointer(&buf[0]))
		if unsafe.Sizeof(uintptr(0)) == 8 {
			detail.cbSize = 8
		} else {
			detail.cbSize = 6
		}

		var devInfo spDevinfoData
		devInfo.cbSize = uint32(unsafe.Sizeof(devInfo))
		if err := setupDiGetDeviceInterfaceDetail(set, &ifaceData, detail, required, nil, &devInfo); err != nil {
			continue
		}

		path := windows.UTF16PtrToString((*uint16)(unsafe.Pointer(&detail.DevicePath[0])))
		vid, pid := parseVidPid(path)
		handles = append(handles, &handle{path: path, address: int(i) + 1, vid: vid, pid: pid})
	}
	return handles, nil
}

func parseVidPid(path string) (uint16, uint16) {
	m := vidPidPattern.FindStringSubmatch(path)
	if m == nil {
		return 0, 0
	}
	vid, _ := strconv.ParseUint(m[1], 16, 16)
	pid, _ := strconv.ParseUint(m[2], 16, 16)
	return uint16(vid), uint16(pid)
}

// ListRootHubs is empty: SetupAPI's device-interface GUID doesn't
// distinguish a root hub class separately from this enumeration.
func (b *Backend) ListRootHubs() (map[int]port.Handle, error) {
	return map[int]port.Handle{}, nil
}

// ProbePCIControllers is unused on Windows; host controller identity is
// not exposed through this backend.
func (b *Backend) ProbePCIControllers(namePattern string) ([]port.PCIController, error) {
	return nil, nil
}

type handle struct {
	path    string
	address int
	vid     uint16
	pid     uint16
}

func (h *handle) BusNumber() int     { return 1 }
func (h *handle) Address() int       { return h.address }
func (h *handle) PortNumbers() []int { return nil }
func (h *handle) Speed() float64     { return 0 }

// DeviceDescriptor synthesizes a raw device descriptor from the VID/PID
// parsed out of the device path; SetupAPI doesn't expose further device
// descriptor fields without an additional WinUSB or driver-specific call.
func (h *handle) DeviceDescriptor() ([]byte, error) {
	b := make([]byte, 18)
	b[0] = 18
	b[1] = 0x01
	b[7] = 64
	b[8] = byte(h.vid)
	b[9] = byte(h.vid >> 8)
	b[10] = byte(h.pid)
	b[11] = byte(h.pid >> 8)
	b[17] = 1
	return b, nil
}

func (h *handle) ConfigDescriptor(index uint8) ([]byte, error) {
	return nil, errs.New(errs.KindUnsupported, "winnative backend exposes no raw configuration descriptors")
}

func (h *handle) Open() (port.OpenHandle, error) {
	return nil, errs.New(errs.KindOpening, "winnative backend cannot open a device handle without WinUSB")
}

func (h *handle) ReadSysfs(attribute string) (string, bool) { return "", false }
func (h *handle) DriverName(portPath string) string         { return "" }
func (h *handle) Syspath(portPath string) string { return h.path }
