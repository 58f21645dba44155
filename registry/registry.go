// Package registry maps logical ontology keys to backend handles. A
// registry is built once from a resolver configuration document and is
// read-only during expansion; opened handles are cached per binding for
// the lifetime of the run and shared across concurrent leaf evaluations.
package registry

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ontokit/vskit/backend"
)

// Keys reported by Lookup for the non-exact match classes.
const (
	// DefaultKey labels a lookup satisfied by the default resolver.
	DefaultKey = "default"
)

// Registry resolves a query's source_ontology (and seed identifier
// prefixes) to an open backend handle.
type Registry struct {
	defaultBinding *backend.Binding
	resources      map[string]backend.Binding
	prefixes       []PrefixBinding

	mu       sync.Mutex
	ports    map[string]backend.Port // binding key -> open handle
	injected map[string]backend.Port // exact resource key -> pre-opened handle
}

// New builds a registry from a parsed resolver configuration.
func New(cfg *Config) *Registry {
	r := &Registry{
		resources: make(map[string]backend.Binding),
		ports:     make(map[string]backend.Port),
		injected:  make(map[string]backend.Port),
	}
	if cfg == nil {
		return r
	}
	if cfg.DefaultResolver != nil {
		b := *cfg.DefaultResolver
		r.defaultBinding = &b
	}
	for key, b := range cfg.ResourceResolvers {
		r.resources[key] = b
	}
	r.prefixes = append(r.prefixes, cfg.PrefixResolvers...)
	return r
}

// Default returns a registry with the built-in zero-configuration
// binding: the public OLS term service.
func Default() *Registry {
	return New(&Config{
		DefaultResolver: &backend.Binding{
			Method: "ols",
			URL:    "https://www.ebi.ac.uk/ols4",
		},
	})
}

// AddPort registers an already-open handle under an exact resource key.
// The registry takes ownership and closes the handle with the rest.
func (r *Registry) AddPort(key string, p backend.Port) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.injected[key] = p
}

// Lookup resolves a backend handle for a query. Precedence: exact
// resource match on sourceOntology, then longest prefix match against
// sourceOntology and the seed identifiers (equal lengths broken by
// declaration order), then the default resolver. The returned key
// identifies which binding matched, for error context.
func (r *Registry) Lookup(sourceOntology string, seeds []string) (backend.Port, string, error) {
	// Exact resource match.
	r.mu.Lock()
	if p, ok := r.injected[sourceOntology]; ok {
		r.mu.Unlock()
		return p, sourceOntology, nil
	}
	r.mu.Unlock()
	if b, ok := r.resources[sourceOntology]; ok {
		p, err := r.open(b)
		return p, sourceOntology, err
	}

	// Prefix match. Candidates are the source_ontology value itself and
	// every seed identifier; the longest matching prefix wins, and among
	// equal lengths the one declared first in configuration wins.
	candidates := make([]string, 0, len(seeds)+1)
	if sourceOntology != "" {
		candidates = append(candidates, sourceOntology)
	}
	candidates = append(candidates, seeds...)

	best := -1
	for i, pb := range r.prefixes {
		if best >= 0 && len(pb.Prefix) <= len(r.prefixes[best].Prefix) {
			continue
		}
		for _, c := range candidates {
			if strings.HasPrefix(c, pb.Prefix) {
				best = i
				break
			}
		}
	}
	if best >= 0 {
		pb := r.prefixes[best]
		p, err := r.open(pb.Binding)
		return p, "prefix:" + pb.Prefix, err
	}

	// Default.
	if r.defaultBinding != nil {
		p, err := r.open(*r.defaultBinding)
		return p, DefaultKey, err
	}

	return nil, "", &UnboundResolverError{Key: sourceOntology}
}

// open returns the cached handle for a binding, opening it on first use.
func (r *Registry) open(b backend.Binding) (backend.Port, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := b.Key()
	if p, ok := r.ports[key]; ok {
		return p, nil
	}
	p, err := backend.Open(b)
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", b.Method, err)
	}
	r.ports[key] = p
	return p, nil
}

// Close releases every handle the registry opened or was given.
func (r *Registry) Close(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for key, p := range r.ports {
		if err := p.Close(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close backend %s: %w", key, err)
		}
	}
	for key, p := range r.injected {
		if err := p.Close(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close backend %s: %w", key, err)
		}
	}
	r.ports = make(map[string]backend.Port)
	r.injected = make(map[string]backend.Port)
	return firstErr
}
