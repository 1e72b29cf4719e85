package routes

import "sync"

// Entry records an interface and its preferred gateway. An empty gateway
// means the interface routes without an explicit next hop.
type Entry struct {
	Interface string `json:"interface"`
	Gateway   string `json:"gateway,omitempty"`
}

// Registry is the in-memory table of known interfaces and their preferred
// gateways. Entries accumulate for the process lifetime and are never
// deleted.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	order   []string
}

func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*Entry),
	}
}

// Upsert creates or updates the entry for name. A nil gateway leaves any
// previously stored gateway untouched; an empty non-nil gateway clears it.
func (r *Registry) Upsert(name string, gateway *string) Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[name]
	if !ok {
		e = &Entry{Interface: name}
		r.entries[name] = e
		r.order = append(r.order, name)
	}
	if gateway != nil {
		e.Gateway = *gateway
	}
	return *e
}

// Lookup returns the entry for name, if one exists.
func (r *Registry) Lookup(name string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[name]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// All returns every entry in insertion order.
func (r *Registry) All() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]Entry, 0, len(r.order))
	for _, name := range r.order {
		all = append(all, *r.entries[name])
	}
	return all
}
