//go:build linux

// Package native is the syscall/ioctl-based usbdevfs backend: the
// default port.Backend on Linux. It walks /sys/bus/usb/devices for
// enumeration and metadata, reads raw descriptors straight off the
// /dev/bus/usb device node, and issues control transfers via the
// USBDEVFS_CONTROL ioctl, the way the rest of this codebase's ecosystem
// (golang.org/x/sys/unix) expresses raw ioctls rather than hand-rolled
// syscall.Syscall plumbing.
package native

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/usbtree/usbtree/errs"
	"github.com/usbtree/usbtree/pathutil"
	"github.com/usbtree/usbtree/port"
)

const sysfsUSBDir = "/sys/bus/usb/devices"

// Backend is the Linux usbdevfs port.Backend.
type Backend struct{}

// New returns the Linux native backend.
func New() *Backend { return &Backend{} }

// ListDevices enumerates every entry under /sys/bus/usb/devices that
// names a device (not an interface, which sysfs names "bus-ports:cfg.if").
func (b *Backend) ListDevices() ([]port.Handle, error) {
	entries, err := os.ReadDir(sysfsUSBDir)
	if err != nil {
		return nil, errs.Wrap(errs.KindIO, "read sysfs usb directory", err)
	}

	var handles []port.Handle
	for _, entry := range entries {
		name := entry.Name()
		if strings.Contains(name, ":") {
			continue
		}
		if !strings.Contains(name, "-") && !strings.HasPrefix(name, "usb") {
			continue
		}
		h, err := loadHandle(filepath.Join(sysfsUSBDir, name), name)
		if err == nil {
			handles = append(handles, h)
		}
	}
	return handles, nil
}

// ListRootHubs returns the "usbN" sysfs entries, keyed by bus number.
func (b *Backend) ListRootHubs() (map[int]port.Handle, error) {
	entries, err := os.ReadDir(sysfsUSBDir)
	if err != nil {
		return nil, errs.Wrap(errs.KindIO, "read sysfs usb directory", err)
	}

	hubs := make(map[int]port.Handle)
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "usb") {
			continue
		}
		h, err := loadHandle(filepath.Join(sysfsUSBDir, name), name)
		if err != nil {
			continue
		}
		hubs[h.BusNumber()] = h
	}
	return hubs, nil
}

// ProbePCIControllers is a no-op on Linux: it reports no controllers, so
// the profiler leaves the Bus PCI fields zero on this backend.
func (b *Backend) ProbePCIControllers(namePattern string) ([]port.PCIController, error) {
	return nil, nil
}

type handle struct {
	sysfsPath   string
	name        string
	bus         int
	address     int
	portNumbers []int
	speedMbps   float64
}

func loadHandle(sysfsPath, name string) (*handle, error) {
	bus, err := readUint("busnum", sysfsPath)
	if err != nil {
		return nil, err
	}
	addr, err := readUint("devnum", sysfsPath)
	if err != nil {
		return nil, err
	}
	ports := parsePortsFromSysfsName(name)

	h := &handle{sysfsPath: sysfsPath, name: name, bus: bus, address: addr, portNumbers: ports}
	if speedStr := readString(sysfsPath, "speed"); speedStr != "" {
		if mbps, err := strconv.ParseFloat(speedStr, 64); err == nil {
			h.speedMbps = mbps
		}
	}
	return h, nil
}

// parsePortsFromSysfsName recovers the port-number chain from a sysfs
// device directory name ("1-2.3" -> [2,3]; "usb1" -> nil, the root hub).
func parsePortsFromSysfsName(name string) []int {
	if strings.HasPrefix(name, "usb") {
		return nil
	}
	dash := strings.IndexByte(name, '-')
	if dash < 0 {
		return nil
	}
	portPart := name[dash+1:]
	// Strip any trailing ":cfg.iface" suffix, defensive against being
	// handed an interface name by mistake.
	if colon := strings.IndexByte(portPart, ':'); colon >= 0 {
		portPart = portPart[:colon]
	}
	var ports []int
	for _, seg := range strings.Split(portPart, ".") {
		n, err := strconv.Atoi(seg)
		if err != nil {
			return nil
		}
		ports = append(ports, n)
	}
	return ports
}

func readUint(filename, sysfsPath string) (int, error) {
	data, err := os.ReadFile(filepath.Join(sysfsPath, filename))
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(data)))
	return v, err
}

func readString(sysfsPath, filename string) string {
	data, err := os.ReadFile(filepath.Join(sysfsPath, filename))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func (h *handle) BusNumber() int     { return h.bus }
func (h *handle) Address() int       { return h.address }
func (h *handle) PortNumbers() []int { return h.portNumbers }
func (h *handle) Speed() float64     { return h.speedMbps }

func (h *handle) devPath() string {
	return pathutil.DevPath(h.bus, h.address)
}

// DeviceDescriptor reads the raw 18-byte device descriptor directly off
// the /dev/bus/usb device node: that file's content always begins with
// the device descriptor, regardless of open permissions for control I/O.
func (h *handle) DeviceDescriptor() ([]byte, error) {
	raw, err := os.ReadFile(h.devPath())
	if err != nil {
		return nil, errs.Wrap(errs.KindIO, "read device descriptor", err)
	}
	if len(raw) < 18 {
		return nil, &errs.DescriptorLengthError{Expected: 18, Got: len(raw)}
	}
	return raw[:18], nil
}

// ConfigDescriptor returns the raw bytes of the index-th configuration
// descriptor (plus its full wTotalLength of trailing descriptors), found
// by walking the descriptor stream that follows the device descriptor in
// the usbdevfs device node.
func (h *handle) ConfigDescriptor(index uint8) ([]byte, error) {
	raw, err := os.ReadFile(h.devPath())
	if err != nil {
		return nil, errs.Wrap(errs.KindIO, "read config descriptor", err)
	}
	if len(raw) <= 18 {
		return nil, errs.New(errs.KindNotFound, "no configuration descriptors present")
	}

	pos := 18
	var seen uint8
	for pos+2 <= len(raw) {
		bLength := int(raw[pos])
		if bLength < 2 || pos+bLength > len(raw) {
			break
		}
		descType := raw[pos+1]
		if descType == 0x02 || descType == 0x07 { // CONFIGURATION or OTHER_SPEED_CONFIGURATION
			if bLength < 4 {
				break
			}
			totalLength := int(binary.LittleEndian.Uint16(raw[pos+2 : pos+4]))
			if totalLength < bLength || pos+totalLength > len(raw) {
				totalLength = len(raw) - pos
			}
			if seen == index {
				return raw[pos : pos+totalLength], nil
			}
			seen++
			pos += totalLength
			continue
		}
		pos += bLength
	}
	return nil, errs.New(errs.KindNotFound, fmt.Sprintf("configuration index %d not found", index))
}

// Open acquires O_RDWR access to the usbdevfs device node for control I/O.
func (h *handle) Open() (port.OpenHandle, error) {
	fd, err := unix.Open(h.devPath(), unix.O_RDWR, 0)
	if err != nil {
		if err == unix.EACCES {
			return nil, errs.Wrap(errs.KindOpening, "open device: permission denied", err)
		}
		return nil, errs.Wrap(errs.KindOpening, "open device", err)
	}
	return &openHandle{fd: fd}, nil
}

// ReadSysfs reads a sysfs attribute relative to this device's directory.
func (h *handle) ReadSysfs(attribute string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(h.sysfsPath, attribute))
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(data)), true
}

// DriverName returns the target name of the first interface directory's
// sysfs driver symlink; portPath is unused here because the handle
// already knows its own sysfs location.
func (h *handle) DriverName(portPath string) string {
	// Interfaces carry the driver symlink, not the device directory
	// itself; walk first-level interface subdirectories.
	entries, err := os.ReadDir(h.sysfsPath)
	if err != nil {
		return ""
	}
	for _, e := range entries {
		if !strings.Contains(e.Name(), ":") {
			continue
		}
		target, err := os.Readlink(filepath.Join(h.sysfsPath, e.Name(), "driver"))
		if err == nil {
			return filepath.Base(target)
		}
	}
	return ""
}

// Syspath resolves the udev syspath for portPath via udevadm.
func (h *handle) Syspath(portPath string) string {
	out, err := exec.Command("udevadm", "info", "-q", "path", "-p", h.sysfsPath).Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

type openHandle struct {
	fd int
}

type usbCtrlRequest struct {
	RequestType uint8
	Request     uint8
	Value       uint16
	Index       uint16
	Length      uint16
	Timeout     uint32
	Data        unsafe.Pointer
}

const usbdevfsControl = 0xc0185500

func (o *openHandle) control(requestType, request uint8, value, index uint16, buf []byte, timeout time.Duration) error {
	var dataPtr unsafe.Pointer
	if len(buf) > 0 {
		dataPtr = unsafe.Pointer(&buf[0])
	}
	ctrl := usbCtrlRequest{
		RequestType: requestType,
		Request:     request,
		Value:       value,
		Index:       index,
		Length:      uint16(len(buf)),
		Timeout:     uint32(timeout.Milliseconds()),
		Data:        dataPtr,
	}
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(o.fd), usbdevfsControl, uintptr(unsafe.Pointer(&ctrl)))
	if errno != 0 {
		if errno == unix.ETIMEDOUT {
			return errs.Wrap(errs.KindIO, "control transfer timed out", errno)
		}
		return errs.Wrap(errs.KindIO, "control transfer", errno)
	}
	return nil
}

// ReadLanguages reads string index 0, whose payload is a packed array of
// little-endian language IDs.
func (o *openHandle) ReadLanguages(timeout time.Duration) ([]uint16, error) {
	buf := make([]byte, 255)
	if err := o.control(0x80, 0x06, uint16(0x0300), 0, buf, timeout); err != nil {
		return nil, err
	}
	n := int(buf[0])
	if n < 2 || n > len(buf) {
		return nil, errs.New(errs.KindParsing, "malformed language list")
	}
	var langs []uint16
	for i := 2; i+1 < n; i += 2 {
		langs = append(langs, binary.LittleEndian.Uint16(buf[i:i+2]))
	}
	return langs, nil
}

// ReadStringDescriptor reads string index at lang and decodes its UTF-16LE
// payload to a Go string.
func (o *openHandle) ReadStringDescriptor(lang uint16, index uint8, timeout time.Duration) (string, error) {
	if index == 0 {
		return "", errs.New(errs.KindInvalidArg, "string index 0 is reserved")
	}
	buf := make([]byte, 255)
	value := uint16(0x0300) | uint16(index)
	if err := o.control(0x80, 0x06, value, lang, buf, timeout); err != nil {
		return "", err
	}
	n := int(buf[0])
	if n < 2 || n > len(buf) {
		return "", errs.New(errs.KindParsing, "malformed string descriptor")
	}
	return utf16leToString(buf[2:n]), nil
}

func utf16leToString(b []byte) string {
	var out bytes.Buffer
	for i := 0; i+1 < len(b); i += 2 {
		r := rune(binary.LittleEndian.Uint16(b[i : i+2]))
		out.WriteRune(r)
	}
	return out.String()
}

// ControlIn issues a control-IN transfer of up to length bytes.
func (o *openHandle) ControlIn(requestType, request uint8, value, index uint16, length int, timeout time.Duration) ([]byte, error) {
	buf := make([]byte, length)
	if err := o.control(requestType|0x80, request, value, index, buf, timeout); err != nil {
		return nil, err
	}
	return buf, nil
}

func (o *openHandle) Close() error {
	return unix.Close(o.fd)
}
