package monitor

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/Sanji-IO/sanji-bundle-routes/internal/logger"
	"github.com/Sanji-IO/sanji-bundle-routes/internal/routes"
)

// CellularSink receives cellular uplink transitions detected by the
// monitor. The switcher implements it.
type CellularSink interface {
	CellularSignal(name string, up bool) error
}

// Event is a link-state transition observed between two polls.
type Event struct {
	Interface string
	Up        bool
	Cellular  bool
	Timestamp time.Time
}

// Monitor polls interface link state and feeds cellular transitions into
// the core. Per-interface probes fan out through a bounded worker pool.
type Monitor struct {
	prims        routes.Primitives
	sink         CellularSink
	pool         *ants.Pool
	interval     time.Duration
	cellPrefixes []string
	linkState    map[string]bool
	eventChan    chan Event
	stopChan     chan struct{}
	doneChan     chan struct{}
	mutex        sync.Mutex
	isRunning    bool
	isStopped    bool
	log          *logger.Logger
}

func New(prims routes.Primitives, sink CellularSink, interval time.Duration,
	probeConcurrency int, cellPrefixes []string, log *logger.Logger) (*Monitor, error) {

	pool, err := ants.NewPool(probeConcurrency)
	if err != nil {
		return nil, fmt.Errorf("failed to create probe pool: %w", err)
	}

	return &Monitor{
		prims:        prims,
		sink:         sink,
		pool:         pool,
		interval:     interval,
		cellPrefixes: cellPrefixes,
		linkState:    make(map[string]bool),
		eventChan:    make(chan Event, 100),
		stopChan:     make(chan struct{}),
		doneChan:     make(chan struct{}),
		log:          log.WithComponent("monitor"),
	}, nil
}

func (m *Monitor) Start() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.isRunning {
		return fmt.Errorf("link monitor is already running")
	}
	// Stop releases the pool and closes the control channels, so a
	// stopped monitor cannot be started again.
	if m.isStopped {
		return fmt.Errorf("link monitor cannot be restarted")
	}

	go m.loop()
	m.isRunning = true
	m.log.MonitorStart(m.interval.String())

	return nil
}

func (m *Monitor) Stop() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if !m.isRunning {
		return nil
	}

	close(m.stopChan)
	<-m.doneChan
	m.pool.Release()
	m.isRunning = false
	m.isStopped = true
	m.log.MonitorStop()

	return nil
}

// Events exposes observed link transitions.
func (m *Monitor) Events() <-chan Event {
	return m.eventChan
}

func (m *Monitor) loop() {
	defer close(m.doneChan)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopChan:
			return
		case <-ticker.C:
			m.poll()
		}
	}
}

// poll probes every known interface and emits transitions against the
// previous poll. Probe errors leave an interface's last known state alone.
func (m *Monitor) poll() {
	names, err := m.prims.Interfaces()
	if err != nil {
		m.log.Debug("failed to list interfaces", "error", err)
		return
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		current = make(map[string]bool, len(names))
	)
	for _, name := range names {
		name := name
		wg.Add(1)
		err := m.pool.Submit(func() {
			defer wg.Done()
			up, err := m.prims.LinkUp(name)
			if err != nil {
				return
			}
			mu.Lock()
			current[name] = up
			mu.Unlock()
		})
		if err != nil {
			wg.Done()
		}
	}
	wg.Wait()

	for name, up := range current {
		prev, seen := m.linkState[name]
		if seen && prev == up {
			continue
		}
		m.linkState[name] = up
		if !seen && !up {
			// a newly discovered down interface is not a transition
			continue
		}
		m.transition(name, up)
	}

	// interfaces that disappeared count as down
	for name, prev := range m.linkState {
		if _, ok := current[name]; !ok && prev {
			m.linkState[name] = false
			m.transition(name, false)
		}
	}
}

func (m *Monitor) transition(name string, up bool) {
	cellular := m.isCellular(name)
	m.log.LinkChange(name, up)

	select {
	case m.eventChan <- Event{Interface: name, Up: up, Cellular: cellular, Timestamp: time.Now()}:
	default:
	}

	if !cellular {
		return
	}
	if err := m.sink.CellularSignal(name, up); err != nil {
		m.log.Warn("Cellular signal handling failed", "interface", name, "up", up, "error", err)
	}
}

func (m *Monitor) isCellular(name string) bool {
	for _, prefix := range m.cellPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

func (m *Monitor) IsRunning() bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.isRunning
}
