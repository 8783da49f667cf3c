package transport

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-repowatch/core"
)

type TransportFactory func(config map[string]any) (core.Transport, error)

// Registry holds the active transports keyed by platform and resolves them
// for dispatch. Factories build a transport lazily the first time a platform
// is resolved.
type Registry struct {
	mu         sync.RWMutex
	transports map[string]core.Transport
	factories  map[string]TransportFactory
}

func NewRegistry() *Registry {
	return &Registry{
		transports: map[string]core.Transport{},
		factories:  map[string]TransportFactory{},
	}
}

func (r *Registry) Register(transport core.Transport) error {
	if r == nil {
		return fmt.Errorf("transport: registry is nil")
	}
	if transport == nil {
		return fmt.Errorf("transport: transport is nil")
	}
	platform := normalizePlatform(transport.Platform())
	if platform == "" {
		return fmt.Errorf("transport: transport platform is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.transports[platform]; exists {
		return fmt.Errorf("transport: platform %q already registered", platform)
	}
	r.transports[platform] = transport
	return nil
}

func (r *Registry) RegisterFactory(platform string, factory TransportFactory) error {
	if r == nil {
		return fmt.Errorf("transport: registry is nil")
	}
	platform = normalizePlatform(platform)
	if platform == "" {
		return fmt.Errorf("transport: transport platform is required")
	}
	if factory == nil {
		return fmt.Errorf("transport: transport factory is nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[platform]; exists {
		return fmt.Errorf("transport: factory for platform %q already registered", platform)
	}
	r.factories[platform] = factory
	return nil
}

// Resolve returns the transport registered for the platform, building and
// caching one from a registered factory if needed.
func (r *Registry) Resolve(platform string) (core.Transport, error) {
	if r == nil {
		return nil, fmt.Errorf("transport: registry is nil")
	}
	platform = normalizePlatform(platform)
	if platform == "" {
		return nil, fmt.Errorf("transport: transport platform is required")
	}

	r.mu.RLock()
	transport, ok := r.transports[platform]
	factory := r.factories[platform]
	r.mu.RUnlock()
	if ok {
		return transport, nil
	}
	if factory == nil {
		return nil, fmt.Errorf("transport: no transport registered for platform %q", platform)
	}

	built, err := factory(map[string]any{})
	if err != nil {
		return nil, err
	}
	if built == nil {
		return nil, fmt.Errorf("transport: factory for platform %q returned nil transport", platform)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.transports[platform]; ok {
		return existing, nil
	}
	r.transports[platform] = built
	return built, nil
}

func (r *Registry) Get(platform string) (core.Transport, bool) {
	if r == nil {
		return nil, false
	}
	platform = normalizePlatform(platform)
	r.mu.RLock()
	defer r.mu.RUnlock()
	transport, ok := r.transports[platform]
	return transport, ok
}

func (r *Registry) List() []core.Transport {
	if r == nil {
		return []core.Transport{}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	platforms := make([]string, 0, len(r.transports))
	for platform := range r.transports {
		platforms = append(platforms, platform)
	}
	sort.Strings(platforms)
	result := make([]core.Transport, 0, len(platforms))
	for _, platform := range platforms {
		result = append(result, r.transports[platform])
	}
	return result
}

func normalizePlatform(platform string) string {
	return strings.TrimSpace(strings.ToLower(platform))
}
