package profiler

import (
	"github.com/usbtree/usbtree/descriptor"
	"github.com/usbtree/usbtree/port"
)

// webUSBGetURL is the WEBUSB_GET_URL request index value defined by the
// WebUSB specification, shifted into the high byte of wIndex.
const webUSBGetURL uint16 = 0x02

// resolveWebUSBURL issues the vendor control transfer a WebUSB platform
// capability's landing page is fetched with: a short initial read to learn
// the descriptor's total length, then a full read decoded via
// descriptor.DecodeWebUSBURL.
func resolveWebUSBURL(oh port.OpenHandle, vendorCode uint8, landingPageIndex uint8) (string, error) {
	index := webUSBGetURL << 8
	head, err := oh.ControlIn(0xC0, vendorCode, uint16(landingPageIndex), index, 3, port.DefaultTimeout)
	if err != nil {
		return "", err
	}
	if len(head) < 1 {
		return descriptor.DecodeWebUSBURL(head)
	}
	total := int(head[0])
	if total <= len(head) {
		return descriptor.DecodeWebUSBURL(head)
	}
	full, err := oh.ControlIn(0xC0, vendorCode, uint16(landingPageIndex), index, total, port.DefaultTimeout)
	if err != nil {
		return "", err
	}
	return descriptor.DecodeWebUSBURL(full)
}
