//go:build !linux

package identify

import "fmt"

// HWDBQuery is a no-op on non-Linux platforms: there is no udev hwdb to
// consult, so vendor/product text falls back to the static USB-IDs
// database.
func HWDBQuery(modalias, key string) string { return "" }

// USBModalias renders the modalias string hwdb expects for a vendor/product
// pair: "usb:v{VID:04X}p{PID:04X}".
func USBModalias(vid, pid uint16) string {
	return fmt.Sprintf("usb:v%04Xp%04X", vid, pid)
}
