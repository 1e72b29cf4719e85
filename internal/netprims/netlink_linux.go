//go:build linux

package netprims

import (
	"fmt"
	"net"

	"github.com/vishvananda/netlink"

	"github.com/Sanji-IO/sanji-bundle-routes/internal/routes"
)

// Netlink implements the network primitives against the kernel routing and
// link tables.
type Netlink struct{}

// New creates the platform primitives (Linux implementation).
func New() (routes.Primitives, error) {
	return &Netlink{}, nil
}

func (n *Netlink) Interfaces() ([]string, error) {
	links, err := netlink.LinkList()
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}

	names := make([]string, 0, len(links))
	for _, l := range links {
		names = append(names, l.Attrs().Name)
	}
	return names, nil
}

func (n *Netlink) LinkUp(name string) (bool, error) {
	link, err := netlink.LinkByName(name)
	if err != nil {
		return false, fmt.Errorf("failed to query link %s: %w", name, err)
	}

	attrs := link.Attrs()
	switch attrs.OperState {
	case netlink.OperUp:
		return true, nil
	case netlink.OperUnknown:
		// some drivers (notably ppp) never report an oper state
		return attrs.Flags&net.FlagUp != 0, nil
	default:
		return false, nil
	}
}

func (n *Netlink) CurrentDefault() (*routes.DefaultRoute, error) {
	defaults, err := n.defaultRoutes()
	if err != nil {
		return nil, err
	}
	if len(defaults) == 0 {
		return nil, nil
	}

	r := defaults[0]

	iface := ""
	if link, err := netlink.LinkByIndex(r.LinkIndex); err == nil {
		iface = link.Attrs().Name
	}

	return &routes.DefaultRoute{Interface: iface, Gateway: r.Gw}, nil
}

func (n *Netlink) DeleteDefaultRoute() error {
	defaults, err := n.defaultRoutes()
	if err != nil {
		return err
	}

	for i := range defaults {
		if err := netlink.RouteDel(&defaults[i]); err != nil {
			return fmt.Errorf("failed to delete default route: %w", err)
		}
	}
	return nil
}

func (n *Netlink) AddDefaultRoute(iface string, gateway net.IP) error {
	link, err := netlink.LinkByName(iface)
	if err != nil {
		return fmt.Errorf("failed to query link %s: %w", iface, err)
	}

	route := &netlink.Route{
		LinkIndex: link.Attrs().Index,
		Dst:       nil, // nil destination = default route
		Gw:        gateway,
	}
	if gateway == nil {
		route.Scope = netlink.SCOPE_LINK
	}

	if err := netlink.RouteAdd(route); err != nil {
		return fmt.Errorf("failed to add default route via %s: %w", iface, err)
	}
	return nil
}

// defaultRoutes returns every IPv4 default route currently installed.
func (n *Netlink) defaultRoutes() ([]netlink.Route, error) {
	all, err := netlink.RouteList(nil, netlink.FAMILY_V4)
	if err != nil {
		return nil, fmt.Errorf("failed to list routes: %w", err)
	}

	var defaults []netlink.Route
	for _, r := range all {
		if r.Dst == nil {
			defaults = append(defaults, r)
			continue
		}
		if ones, _ := r.Dst.Mask.Size(); ones == 0 && r.Dst.IP.IsUnspecified() {
			defaults = append(defaults, r)
		}
	}
	return defaults, nil
}
