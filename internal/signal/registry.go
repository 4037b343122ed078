package signal

import "fmt"

// Registry holds providers in registration order. The order is fixed so
// aggregation stays deterministic for identical inputs.
type Registry struct {
	providers []Provider
	names     map[string]bool
}

func NewRegistry() *Registry {
	return &Registry{names: make(map[string]bool)}
}

func (r *Registry) Register(p Provider) error {
	if p == nil {
		return fmt.Errorf("nil provider")
	}
	name := p.Name()
	if name == "" {
		return fmt.Errorf("provider name cannot be empty")
	}
	if r.names[name] {
		return fmt.Errorf("provider %q already registered", name)
	}
	r.names[name] = true
	r.providers = append(r.providers, p)
	return nil
}

func (r *Registry) Providers() []Provider {
	out := make([]Provider, len(r.providers))
	copy(out, r.providers)
	return out
}
