//go:build darwin

package darwinnative

/*
#cgo LDFLAGS: -framework IOKit -framework CoreFoundation
#include <IOKit/IOKitLib.h>
#include <CoreFoundation/CoreFoundation.h>

#ifndef kIOMainPortDefault
  #ifdef kIOMasterPortDefault
    #define kIOMainPortDefault kIOMasterPortDefault
  #else
    #define kIOMainPortDefault 0
  #endif
#endif

static int usbtree_get_int_property(io_service_t service, const char *key) {
    CFStringRef keyRef = CFStringCreateWithCString(kCFAllocatorDefault, key, kCFStringEncodingUTF8);
    CFNumberRef valueRef = (CFNumberRef)IORegistryEntryCreateCFProperty(service, keyRef, kCFAllocatorDefault, 0);
    CFRelease(keyRef);
    if (valueRef == NULL) {
        return -1;
    }
    int value = 0;
    CFNumberGetValue(valueRef, kCFNumberIntType, &value);
    CFRelease(valueRef);
    return value;
}

static char *usbtree_get_string_property(io_service_t service, const char *key) {
    CFStringRef keyRef = CFStringCreateWithCString(kCFAllocatorDefault, key, kCFStringEncodingUTF8);
    CFStringRef valueRef = (CFStringRef)IORegistryEntryCreateCFProperty(service, keyRef, kCFAllocatorDefault, 0);
    CFRelease(keyRef);
    if (valueRef == NULL) {
        return NULL;
    }
    static char buffer[256];
    Boolean ok = CFStringGetCString(valueRef, buffer, sizeof(buffer), kCFStringEncodingUTF8);
    CFRelease(valueRef);
    if (!ok) {
        return NULL;
    }
    return buffer;
}

static io_iterator_t usbtree_match_controllers(const char *className) {
    io_iterator_t iterator = 0;
    CFMutableDictionaryRef matching = IOServiceMatching(className);
    if (matching == NULL) {
        return 0;
    }
    kern_return_t kr = IOServiceGetMatchingServices(kIOMainPortDefault, matching, &iterator);
    if (kr != KERN_SUCCESS) {
        return 0;
    }
    return iterator;
}
*/
import "C"

import (
	"strings"
	"unsafe"

	"github.com/usbtree/usbtree/port"
)

// probePCIControllers iterates IOKit host-controller services matching
// namePattern and extracts their PCI identity, the way iokit_darwin.go's
// CreateUSBIterator/GetIntProperty pair walks AppleUSBXHCI nodes.
func probePCIControllers(namePattern string) ([]port.PCIController, error) {
	className := C.CString("AppleUSBXHCI")
	defer C.free(unsafe.Pointer(className))

	iterator := C.usbtree_match_controllers(className)
	if iterator == 0 {
		return nil, nil
	}
	defer C.IOObjectRelease(C.io_object_t(iterator))

	var out []port.PCIController
	for {
		service := C.IOIteratorNext(iterator)
		if service == 0 {
			break
		}

		name := ""
		if cname := C.usbtree_get_string_property(service, C.CString("IOName")); cname != nil {
			name = C.GoString(cname)
		}
		if namePattern != "" && !strings.Contains(name, namePattern) {
			C.IOObjectRelease(service)
			continue
		}

		vendor := C.usbtree_get_int_property(service, C.CString("vendor-id"))
		device := C.usbtree_get_int_property(service, C.CString("device-id"))
		revision := C.usbtree_get_int_property(service, C.CString("revision-id"))
		class := C.usbtree_get_int_property(service, C.CString("class-code"))

		out = append(out, port.PCIController{
			Name:      name,
			VendorID:  uint16(vendor),
			DeviceID:  uint16(device),
			Revision:  uint8(revision),
			ClassCode: uint32(class),
		})
		C.IOObjectRelease(service)
	}
	return out, nil
}
