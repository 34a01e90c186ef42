//go:build !linux

package native

import (
	"github.com/usbtree/usbtree/errs"
	"github.com/usbtree/usbtree/port"
)

// Backend is unavailable outside Linux; darwinnative, winnative, or the
// libusb backend cover those platforms instead.
type Backend struct{}

// New returns a Backend whose ListDevices and ListRootHubs fail and whose
// ProbePCIControllers reports no controllers; present so callers can
// still reference native.New() behind a build tag without a second
// conditional.
func New() *Backend { return &Backend{} }

func (b *Backend) ListDevices() ([]port.Handle, error) {
	return nil, errs.New(errs.KindUnsupported, "native backend is Linux-only")
}

func (b *Backend) ListRootHubs() (map[int]port.Handle, error) {
	return nil, errs.New(errs.KindUnsupported, "native backend is Linux-only")
}

func (b *Backend) ProbePCIControllers(namePattern string) ([]port.PCIController, error) {
	return nil, nil
}
