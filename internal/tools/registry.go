package tools

import (
	"sort"
	"sync"
)

// Descriptor describes one tool an agent may call: whether the tool is
// enabled and which actions it permits. Endpoint is the backend address the
// bridge connects to, when the tool has one.
type Descriptor struct {
	Name        string
	Enabled     bool
	Permissions []string
	Endpoint    string
}

// allows reports whether the descriptor permits the given action.
func (d Descriptor) allows(action string) bool {
	for _, permitted := range d.Permissions {
		if permitted == action {
			return true
		}
	}
	return false
}

// Registry maps tool names to descriptors. Registration happens once at
// setup from every agent's configured tool list; a later registration for
// an already-known name is ignored.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Descriptor
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Descriptor)}
}

// Register adds a descriptor unless the name is already registered.
// First registration wins.
func (r *Registry) Register(d Descriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[d.Name]; exists {
		return
	}
	r.tools[d.Name] = d
}

// Get returns the descriptor for a name.
func (r *Registry) Get(name string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.tools[name]
	return d, ok
}

// List returns registered tool names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Authorize reports whether the given agent tool list permits the call.
// Authorization is granted when the list contains an entry with the tool's
// name, the entry is enabled, and the action is in its permission set.
func (r *Registry) Authorize(agentTools []Descriptor, tool, action string) bool {
	for _, d := range agentTools {
		if d.Name != tool {
			continue
		}
		return d.Enabled && d.allows(action)
	}
	return false
}
