package daemon

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/Sanji-IO/sanji-bundle-routes/internal/api"
	"github.com/Sanji-IO/sanji-bundle-routes/internal/config"
	"github.com/Sanji-IO/sanji-bundle-routes/internal/logger"
	"github.com/Sanji-IO/sanji-bundle-routes/internal/monitor"
	"github.com/Sanji-IO/sanji-bundle-routes/internal/netprims"
	"github.com/Sanji-IO/sanji-bundle-routes/internal/routes"
	"github.com/Sanji-IO/sanji-bundle-routes/internal/store"
)

// Version is stamped into service logs.
const Version = "1.0.0"

// ServiceManager wires the store, primitives, switcher, API server and link
// monitor together and runs them as one service.
type ServiceManager struct {
	config    *config.Config
	log       *logger.Logger
	store     *store.Store
	switcher  *routes.Switcher
	api       *api.Server
	monitor   *monitor.Monitor
	stopChan  chan os.Signal
	doneChan  chan struct{}
	ctx       context.Context
	cancel    context.CancelFunc
	mutex     sync.RWMutex
	isRunning bool
}

func NewServiceManager(cfg *config.Config, log *logger.Logger) (*ServiceManager, error) {
	ctx, cancel := context.WithCancel(context.Background())

	sm := &ServiceManager{
		config:   cfg,
		log:      log.WithComponent("service"),
		stopChan: make(chan os.Signal, 1),
		doneChan: make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}

	st, err := store.Open(cfg.DataDir, log)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open route store: %w", err)
	}
	sm.store = st

	prims, err := netprims.New()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create network primitives: %w", err)
	}

	sm.switcher = routes.NewSwitcher(prims, st, routes.NewRegistry(), log)

	sm.monitor, err = monitor.New(prims, sm.switcher, cfg.MonitorInterval,
		cfg.ProbeConcurrency, cfg.CellularPrefixes, log)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create link monitor: %w", err)
	}

	sm.api = api.NewServer(sm.switcher, api.ServerOptions{Addr: cfg.Addr}, log)

	return sm, nil
}

func (sm *ServiceManager) Start() error {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	if sm.isRunning {
		return fmt.Errorf("service is already running")
	}

	if os.Getuid() != 0 {
		return fmt.Errorf("root privileges required")
	}

	signal.Notify(sm.stopChan, unix.SIGINT, unix.SIGTERM, unix.SIGHUP)

	sm.log.ServiceStart(Version, fmt.Sprintf("%d", os.Getpid()))

	// restore the persisted default route; failures here are informational
	// (the interface may simply not be up yet)
	if err := sm.switcher.RestorePersisted(); err != nil {
		sm.log.Warn("Failed to restore persisted default route", "error", err)
	}

	sm.api.Start()

	if err := sm.monitor.Start(); err != nil {
		return fmt.Errorf("failed to start link monitor: %w", err)
	}

	go sm.serviceLoop()
	sm.isRunning = true

	return nil
}

func (sm *ServiceManager) Stop() error {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	if !sm.isRunning {
		return nil
	}

	sm.log.ServiceStop()

	sm.cancel()

	if err := sm.monitor.Stop(); err != nil {
		sm.log.Error("failed to stop link monitor", "error", err)
	}

	if err := sm.api.Stop(context.Background()); err != nil {
		sm.log.Error("failed to stop API server", "error", err)
	}

	sm.isRunning = false

	select {
	case <-sm.doneChan:
		return nil
	case <-time.After(10 * time.Second):
		return fmt.Errorf("service stop timeout")
	}
}

func (sm *ServiceManager) Wait() error {
	select {
	case <-sm.ctx.Done():
		return sm.ctx.Err()
	case sig := <-sm.stopChan:
		sm.log.Info("received signal", "signal", sig.String())
		return sm.Stop()
	}
}

func (sm *ServiceManager) serviceLoop() {
	defer close(sm.doneChan)

	for {
		select {
		case <-sm.ctx.Done():
			return
		case event := <-sm.monitor.Events():
			sm.log.Info("link transition observed",
				"interface", event.Interface,
				"up", event.Up,
				"cellular", event.Cellular)
		}
	}
}

func (sm *ServiceManager) IsRunning() bool {
	sm.mutex.RLock()
	defer sm.mutex.RUnlock()
	return sm.isRunning
}

func (sm *ServiceManager) GetStatus() map[string]interface{} {
	sm.mutex.RLock()
	defer sm.mutex.RUnlock()

	status := map[string]interface{}{
		"running": sm.isRunning,
		"default": sm.store.Read().Default,
	}
	if name, ok := sm.switcher.CellularActive(); ok {
		status["cellular"] = name
	}
	return status
}
