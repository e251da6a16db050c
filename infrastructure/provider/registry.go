// Package provider hosts the hosting-backend registry and its concrete
// implementations (github, gitlab, bitbucket, local filesystem).
package provider

import (
	"fmt"

	"github.com/rios0rios0/pipeforge/config"
	"github.com/rios0rios0/pipeforge/domain"
	"github.com/rios0rios0/pipeforge/infrastructure/provider/bitbucket"
	"github.com/rios0rios0/pipeforge/infrastructure/provider/github"
	"github.com/rios0rios0/pipeforge/infrastructure/provider/gitlab"
	"github.com/rios0rios0/pipeforge/infrastructure/provider/local"
)

// Factory builds a provider instance from its configuration.
type Factory func(cfg config.ProviderConfig) (domain.HostingProvider, error)

// Registry maps provider backend types to factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// NewDefaultRegistry creates a registry with all built-in backends.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(config.TypeGitHub, github.New)
	r.Register(config.TypeGitLab, gitlab.New)
	r.Register(config.TypeBitbucket, bitbucket.New)
	r.Register(config.TypeLocal, local.New)
	return r
}

// Register adds a factory under the given backend type.
func (r *Registry) Register(typeName string, factory Factory) {
	r.factories[typeName] = factory
}

// Get builds a configured provider for cfg.
func (r *Registry) Get(cfg config.ProviderConfig) (domain.HostingProvider, error) {
	factory, ok := r.factories[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("unknown provider type: %q", cfg.Type)
	}
	return factory(cfg)
}

// Types returns the registered backend types.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	return types
}
