//go:build !linux

package netprims

import (
	"fmt"
	"net"
	"runtime"

	"github.com/Sanji-IO/sanji-bundle-routes/internal/routes"
)

// ErrUnsupported is returned by every primitive on non-Linux platforms.
var ErrUnsupported = fmt.Errorf("network primitives not supported on %s", runtime.GOOS)

type stub struct{}

// New creates the platform primitives (stub for non-Linux builds).
func New() (routes.Primitives, error) {
	return stub{}, nil
}

func (stub) Interfaces() ([]string, error) { return nil, ErrUnsupported }

func (stub) LinkUp(string) (bool, error) { return false, ErrUnsupported }

func (stub) CurrentDefault() (*routes.DefaultRoute, error) { return nil, ErrUnsupported }

func (stub) DeleteDefaultRoute() error { return ErrUnsupported }

func (stub) AddDefaultRoute(string, net.IP) error { return ErrUnsupported }
