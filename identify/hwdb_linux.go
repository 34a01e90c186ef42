//go:build linux

package identify

import (
	"bufio"
	"fmt"
	"os/exec"
	"strings"
)

// HWDBQuery looks up key (e.g. "ID_VENDOR_FROM_DATABASE") against the
// modalias string (e.g. "usb:v1D6Bp0001") via the systemd hwdb, the
// first-priority source for vendor/product text on Linux. Returns "" if
// hwdb is unavailable or the key is absent, never an error: this is a
// best-effort enrichment, not a required data source.
func HWDBQuery(modalias, key string) string {
	out, err := exec.Command("systemd-hwdb", "query", modalias).Output()
	if err != nil {
		out, err = exec.Command("udevadm", "hwdb", "query", modalias).Output()
		if err != nil {
			return ""
		}
	}
	prefix := key + "="
	scanner := bufio.NewScanner(strings.NewReader(string(out)))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, prefix) {
			return strings.TrimPrefix(line, prefix)
		}
	}
	return ""
}

// USBModalias renders the modalias string hwdb expects for a vendor/product
// pair: "usb:v{VID:04X}p{PID:04X}".
func USBModalias(vid, pid uint16) string {
	return fmt.Sprintf("usb:v%04Xp%04X", vid, pid)
}
