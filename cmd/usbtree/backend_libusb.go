//go:build usbtree_libusb

package main

import (
	"github.com/usbtree/usbtree/port"
	"github.com/usbtree/usbtree/port/libusb"
)

func newLibusbBackend() (port.Backend, error) {
	return libusb.New(), nil
}
