//go:build !linux

package daemon

import (
	"fmt"
	"runtime"
)

type unsupportedService struct{}

// NewPlatformService creates the platform service manager. Only systemd on
// Linux is supported; other platforms get a stub.
func NewPlatformService(execPath, configPath string) PlatformService {
	return unsupportedService{}
}

func errUnsupported() error {
	return fmt.Errorf("service management not supported on %s", runtime.GOOS)
}

func (unsupportedService) Install() error { return errUnsupported() }

func (unsupportedService) Uninstall() error { return errUnsupported() }

func (unsupportedService) Start() error { return errUnsupported() }

func (unsupportedService) Stop() error { return errUnsupported() }

func (unsupportedService) Status() (string, error) { return "unsupported", nil }

func (unsupportedService) IsInstalled() bool { return false }
