//go:build !usbtree_libusb

package main

import (
	"errors"

	"github.com/usbtree/usbtree/port"
)

func newLibusbBackend() (port.Backend, error) {
	return nil, errors.New("libusb backend not built; rebuild with -tags usbtree_libusb")
}
