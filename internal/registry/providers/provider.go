package providers

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"nsg/internal/registry/models"
)

// Provider is the interface every jurisdiction adapter implements.
type Provider interface {
	// Jurisdiction identifies the registry this provider queries.
	Jurisdiction() models.Jurisdiction

	// Fetch looks up nationalID and maps the result onto the canonical record.
	// identifier is the id exactly as the caller sent it.
	Fetch(ctx context.Context, nationalID, identifier string) (*models.CompanyRecord, error)
}

// Registry maintains the registered providers keyed by jurisdiction.
type Registry struct {
	mu        sync.RWMutex
	providers map[models.Jurisdiction]Provider
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[models.Jurisdiction]Provider),
	}
}

// Register adds a provider. Registering a jurisdiction twice is an error.
func (r *Registry) Register(p Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j := p.Jurisdiction()
	if _, exists := r.providers[j]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateProvider, j)
	}
	r.providers[j] = p
	return nil
}

// Get retrieves a provider by jurisdiction.
func (r *Registry) Get(j models.Jurisdiction) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[j]
	return p, ok
}

// All returns the registered providers ordered by jurisdiction.
func (r *Registry) All() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]Provider, 0, len(r.providers))
	for _, p := range r.providers {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Jurisdiction() < result[j].Jurisdiction()
	})
	return result
}
