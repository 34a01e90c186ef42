//go:build !windows

package winnative

import (
	"github.com/usbtree/usbtree/errs"
	"github.com/usbtree/usbtree/port"
)

// Backend is unavailable outside Windows.
type Backend struct{}

// New returns a Backend whose ListDevices fails outside Windows; its other
// methods return empty results.
func New() *Backend { return &Backend{} }

func (b *Backend) ListDevices() ([]port.Handle, error) {
	return nil, errs.New(errs.KindUnsupported, "winnative backend is Windows-only")
}

func (b *Backend) ListRootHubs() (map[int]port.Handle, error) {
	return map[int]port.Handle{}, nil
}

func (b *Backend) ProbePCIControllers(namePattern string) ([]port.PCIController, error) {
	return nil, nil
}
