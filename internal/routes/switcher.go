package routes

import (
	"fmt"
	"net"
	"slices"
	"sync"

	"github.com/Sanji-IO/sanji-bundle-routes/internal/logger"
)

// Request is a desired default-route change. An empty Interface clears the
// default route.
type Request struct {
	Interface string `json:"interface,omitempty"`
	Gateway   string `json:"gateway,omitempty"`
}

// GatewayUpdate reports an interface together with its (possibly changed)
// gateway. A nil Gateway keeps whatever was registered before; an empty
// non-nil Gateway clears it.
type GatewayUpdate struct {
	Name    string  `json:"name"`
	Gateway *string `json:"gateway,omitempty"`
}

// DefaultView is the externally visible shape of the current default route.
type DefaultView struct {
	Interface string `json:"interface,omitempty"`
	Gateway   string `json:"gateway,omitempty"`
}

// Switcher owns the default-route state transitions. It is the single
// writer of the persisted route record and of the cellular lock, and it
// serializes every multi-step apply/rollback sequence behind one mutex: the
// OS routing table is shared mutable state with no transaction support.
type Switcher struct {
	mu       sync.Mutex
	prims    Primitives
	store    ConfigStore
	registry *Registry
	cellular string
	log      *logger.Logger
}

func NewSwitcher(prims Primitives, store ConfigStore, registry *Registry, log *logger.Logger) *Switcher {
	return &Switcher{
		prims:    prims,
		store:    store,
		registry: registry,
		log:      log.WithComponent("switcher"),
	}
}

// Registry exposes the gateway registry for read paths.
func (s *Switcher) Registry() *Registry {
	return s.registry
}

// ActiveInterfaces lists the interfaces whose link is up right now. Link
// state is never cached beyond a single call, and interfaces whose state
// cannot be read are skipped.
func (s *Switcher) ActiveInterfaces() ([]string, error) {
	names, err := s.prims.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("failed to list interfaces: %w", err)
	}

	up := make([]string, 0, len(names))
	for _, name := range names {
		ok, err := s.prims.LinkUp(name)
		if err != nil {
			continue
		}
		if ok {
			up = append(up, name)
		}
	}
	return up, nil
}

// SetDefault validates and applies a default-route change, persisting the
// result on success. On apply failure the previous route is restored on a
// best-effort basis and the original error is returned.
func (s *Switcher) SetDefault(req Request) (PersistedConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setDefault(req, false)
}

// setDefault runs the full transition with s.mu held. forced skips the
// registry lookup: cellular uplinks use their implicit gateway.
func (s *Switcher) setDefault(req Request, forced bool) (PersistedConfig, error) {
	if req.Interface == "" {
		return s.clearDefault()
	}

	// A malformed request gateway is rejected before anything touches
	// the OS.
	gwIP, err := parseGateway(req.Gateway)
	if err != nil {
		return s.store.Read(), errValidation(err)
	}

	up, err := s.ActiveInterfaces()
	if err != nil || !slices.Contains(up, req.Interface) {
		return s.store.Read(), errInterfaceDown(req.Interface)
	}

	if s.cellular != "" && req.Interface != s.cellular {
		return s.store.Read(), errCellularLocked(s.cellular)
	}

	iface := req.Interface
	if !forced {
		// A registered entry replaces the request's interface/gateway
		// pair wholesale, including a caller-supplied gateway. A bad
		// stored gateway is the server's fault, not the caller's.
		if entry, ok := s.registry.Lookup(iface); ok {
			iface = entry.Interface
			if gwIP, err = parseGateway(entry.Gateway); err != nil {
				return s.store.Read(), errApplyFailed(iface, err)
			}
		}
	}

	prev, err := s.prims.CurrentDefault()
	if err != nil {
		s.log.Warn("Failed to read current default route", "error", err)
		prev = nil
	}

	if err := s.applyRoute(iface, gwIP); err != nil {
		s.restore(prev)
		return s.store.Read(), errApplyFailed(iface, err)
	}

	cfg := s.store.Read()
	cfg.Default = iface
	if err := s.persist(cfg); err != nil {
		return cfg, err
	}

	gw := ""
	if gwIP != nil {
		gw = gwIP.String()
	}
	s.log.RouteApplied(iface, gw)
	return cfg, nil
}

// parseGateway parses an optional gateway address. Empty means no
// explicit next hop.
func parseGateway(gw string) (net.IP, error) {
	if gw == "" {
		return nil, nil
	}
	ip := net.ParseIP(gw)
	if ip == nil {
		return nil, fmt.Errorf("invalid gateway address %q", gw)
	}
	return ip, nil
}

// clearDefault removes the default route and drops the persisted record.
// There is no previous route to roll back to.
func (s *Switcher) clearDefault() (PersistedConfig, error) {
	if err := s.prims.DeleteDefaultRoute(); err != nil {
		return s.store.Read(), errApplyFailed("default", err)
	}

	cfg := s.store.Read()
	cfg.Default = ""
	if err := s.persist(cfg); err != nil {
		return cfg, err
	}

	s.log.RouteCleared()
	return cfg, nil
}

// applyRoute replaces the OS default route: remove the existing one
// (idempotent when absent), then add the new one.
func (s *Switcher) applyRoute(iface string, gw net.IP) error {
	if err := s.prims.DeleteDefaultRoute(); err != nil {
		return err
	}
	return s.prims.AddDefaultRoute(iface, gw)
}

// restore re-applies the route observed before a failed transition.
// Restore failures are logged here and never propagated; the caller keeps
// the original apply error.
func (s *Switcher) restore(prev *DefaultRoute) {
	if prev == nil {
		return
	}

	gw := ""
	if prev.Gateway != nil {
		gw = prev.Gateway.String()
	}
	s.log.RouteRollback(prev.Interface, gw, s.applyRoute(prev.Interface, prev.Gateway))
}

// persist writes the route record and refreshes its backup as a unit.
func (s *Switcher) persist(cfg PersistedConfig) error {
	if err := s.store.Write(cfg); err != nil {
		return fmt.Errorf("failed to persist route config: %w", err)
	}
	if err := s.store.Backup(); err != nil {
		return fmt.Errorf("failed to back up route config: %w", err)
	}
	return nil
}

// CellularSignal reacts to a cellular uplink coming up or going down. While
// a cellular interface is up it exclusively holds default-route rights; when
// it goes down and it was the persisted default, the default route is
// cleared and no fallback is selected.
func (s *Switcher) CellularSignal(name string, up bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.log.CellularSignal(name, up)

	if up {
		s.cellular = name
		_, err := s.setDefault(Request{Interface: name}, true)
		return err
	}

	if s.cellular != name {
		return nil
	}
	s.cellular = ""

	if s.store.Read().Default == name {
		_, err := s.setDefault(Request{}, true)
		return err
	}
	return nil
}

// CellularActive returns the interface currently holding the cellular lock.
func (s *Switcher) CellularActive() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cellular, s.cellular != ""
}

// UpdateInterface records an interface gateway update and, when the
// interface is the persisted default, re-applies the default route with the
// new gateway. The triggering event is informational, so re-apply failures
// are logged and dropped at this boundary instead of surfacing.
func (s *Switcher) UpdateInterface(u GatewayUpdate) Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateInterface(u)
}

func (s *Switcher) updateInterface(u GatewayUpdate) Entry {
	if u.Name == "" {
		return Entry{}
	}

	entry := s.registry.Upsert(u.Name, u.Gateway)

	if s.store.Read().Default == u.Name {
		if _, err := s.setDefault(Request{Interface: u.Name}, false); err != nil {
			s.log.Warn("Failed to re-apply default route after interface update",
				"interface", u.Name, "error", err)
		}
	}
	return entry
}

// UpdateInterfaces applies a batch of gateway updates in order and returns
// the full registry afterwards.
func (s *Switcher) UpdateInterfaces(updates []GatewayUpdate) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range updates {
		s.updateInterface(u)
	}
	return s.registry.All()
}

// CurrentDefault reconciles the OS-observed default route against the
// persisted record. When both name the same interface the observed route
// wins (it carries the live gateway); on any mismatch the persisted value
// is authoritative.
func (s *Switcher) CurrentDefault() DefaultView {
	s.mu.Lock()
	defer s.mu.Unlock()

	persisted := s.store.Read()

	observed, err := s.prims.CurrentDefault()
	if err == nil && observed != nil && observed.Interface == persisted.Default {
		view := DefaultView{Interface: observed.Interface}
		if observed.Gateway != nil {
			view.Gateway = observed.Gateway.String()
		}
		return view
	}

	return DefaultView{Interface: persisted.Default}
}

// RestorePersisted re-applies the persisted default route, if any. Called
// once at startup so the route survives restarts.
func (s *Switcher) RestorePersisted() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := s.store.Read()
	if cfg.Default == "" {
		return nil
	}
	_, err := s.setDefault(Request{Interface: cfg.Default}, false)
	return err
}
