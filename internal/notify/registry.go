package notify

import "fmt"

// Registry holds the channels whose credentials were present at
// startup and allows lookup by name. It performs no delivery logic
// itself.
type Registry struct {
	channels map[string]Channel
}

// NewRegistry registers the given channels by name.
// Channel names must be unique.
func NewRegistry(list ...Channel) *Registry {
	m := make(map[string]Channel)
	for _, c := range list {
		m[c.Name()] = c
	}
	return &Registry{channels: m}
}

// Get returns the channel by name or an error if not registered.
func (r *Registry) Get(name string) (Channel, error) {
	c, ok := r.channels[name]
	if !ok {
		return nil, fmt.Errorf("channel not registered: %s", name)
	}
	return c, nil
}
