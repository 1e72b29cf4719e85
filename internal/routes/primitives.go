package routes

import "net"

// DefaultRoute identifies the OS default route by its egress interface and
// optional next-hop gateway.
type DefaultRoute struct {
	Interface string
	Gateway   net.IP
}

// Primitives is the contract with the OS-level networking layer. Calls are
// synchronous and treated as atomic; the switcher never retries them.
type Primitives interface {
	// Interfaces lists all known interface names.
	Interfaces() ([]string, error)

	// LinkUp reports whether the named interface has link.
	LinkUp(name string) (bool, error)

	// CurrentDefault returns the current default route, or nil when the
	// routing table has none.
	CurrentDefault() (*DefaultRoute, error)

	// DeleteDefaultRoute removes the default route. Removing an absent
	// route is not an error.
	DeleteDefaultRoute() error

	// AddDefaultRoute installs a default route through iface. A nil
	// gateway installs an interface-only route.
	AddDefaultRoute(iface string, gateway net.IP) error
}

// PersistedConfig is the durable route record. Default may name an
// interface that has since gone down; read paths must tolerate that.
type PersistedConfig struct {
	Default string `json:"default,omitempty"`
}

// ConfigStore is the durable key-value collaborator holding the persisted
// route record. The switcher always calls Write and Backup as a unit.
type ConfigStore interface {
	Read() PersistedConfig
	Write(PersistedConfig) error
	Backup() error
}
