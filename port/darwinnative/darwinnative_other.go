//go:build !darwin

package darwinnative

import (
	"github.com/usbtree/usbtree/errs"
	"github.com/usbtree/usbtree/port"
)

// Backend is unavailable outside macOS.
type Backend struct{}

// New returns a Backend whose ListDevices fails outside macOS; its other
// methods return empty results.
func New() *Backend { return &Backend{} }

func (b *Backend) ListDevices() ([]port.Handle, error) {
	return nil, errs.New(errs.KindUnsupported, "darwinnative backend is macOS-only")
}

func (b *Backend) ListRootHubs() (map[int]port.Handle, error) {
	return map[int]port.Handle{}, nil
}

func (b *Backend) ProbePCIControllers(namePattern string) ([]port.PCIController, error) {
	return nil, nil
}
