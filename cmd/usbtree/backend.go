package main

import (
	"fmt"
	"runtime"

	"github.com/usbtree/usbtree/port"
	"github.com/usbtree/usbtree/port/darwinnative"
	"github.com/usbtree/usbtree/port/native"
	"github.com/usbtree/usbtree/port/winnative"
)

// selectBackend picks the platform-native port.Backend for the running
// GOOS, unless forceLibusb asks for the libusb backend instead (only
// available when built with -tags usbtree_libusb).
func selectBackend(forceLibusb bool) (port.Backend, error) {
	if forceLibusb {
		return newLibusbBackend()
	}
	switch runtime.GOOS {
	case "linux":
		return native.New(), nil
	case "darwin":
		return darwinnative.New(), nil
	case "windows":
		return winnative.New(), nil
	default:
		return nil, fmt.Errorf("no native USB backend for GOOS %q; build with -tags usbtree_libusb", runtime.GOOS)
	}
}
