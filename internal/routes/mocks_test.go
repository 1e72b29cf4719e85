package routes

import (
	"net"

	"github.com/stretchr/testify/mock"

	"github.com/Sanji-IO/sanji-bundle-routes/internal/logger"
)

// MockPrimitives is a mock implementation of the Primitives interface.
type MockPrimitives struct {
	mock.Mock
}

func (m *MockPrimitives) Interfaces() ([]string, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockPrimitives) LinkUp(name string) (bool, error) {
	args := m.Called(name)
	return args.Bool(0), args.Error(1)
}

func (m *MockPrimitives) CurrentDefault() (*DefaultRoute, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*DefaultRoute), args.Error(1)
}

func (m *MockPrimitives) DeleteDefaultRoute() error {
	return m.Called().Error(0)
}

func (m *MockPrimitives) AddDefaultRoute(iface string, gateway net.IP) error {
	return m.Called(iface, gateway).Error(0)
}

// memStore is an in-memory ConfigStore for tests.
type memStore struct {
	cfg     PersistedConfig
	writes  int
	backups int
}

func (s *memStore) Read() PersistedConfig { return s.cfg }

func (s *memStore) Write(cfg PersistedConfig) error {
	s.cfg = cfg
	s.writes++
	return nil
}

func (s *memStore) Backup() error {
	s.backups++
	return nil
}

func newTestSwitcher(prims Primitives, st ConfigStore) *Switcher {
	return NewSwitcher(prims, st, NewRegistry(), logger.New("error"))
}

func strPtr(s string) *string { return &s }

// nilIP matches an absent gateway argument.
func nilIP(ip net.IP) bool { return ip == nil }
