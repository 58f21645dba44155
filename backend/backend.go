// Package backend defines the graph traversal capability that every
// ontology backend must implement, along with a registry of backend
// constructors keyed by method name. Concrete adapters (sqlite, neo4j,
// ols, memory) live in subpackages and register themselves via init().
package backend

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Direction selects which way a traversal walks from the seed nodes.
type Direction string

const (
	// DirectionAncestors walks from seeds towards more general nodes.
	DirectionAncestors Direction = "ancestors"

	// DirectionDescendants walks from seeds towards more specific nodes.
	DirectionDescendants Direction = "descendants"
)

// DefaultPredicate is the relationship type assumed when a traversal
// specifies none. Backends may widen this to their own notion of an
// is-a edge, but must honor it as the baseline.
const DefaultPredicate = "rdfs:subClassOf"

// ResolvedNode is the minimal metadata a backend returns per reachable node.
// Instances are immutable once produced and live only within one expansion run.
type ResolvedNode struct {
	// ID is the node identifier, in compact (CURIE) form where available.
	ID string

	// Label is the preferred human-readable name, empty if unknown.
	Label string

	// Definition is the node's definition text, empty if unknown.
	Definition string

	// Source tags which ontology/backend produced the node.
	Source string
}

// TraversalSpec describes one reachability query against a backend.
type TraversalSpec struct {
	// Seeds are the starting node identifiers. Never empty.
	Seeds []string

	// Predicates are the relationship types to follow. Empty means the
	// backend default (DefaultPredicate).
	Predicates []string

	// Direction selects ancestors or descendants of the seeds.
	Direction Direction

	// Direct limits the traversal to one hop instead of the transitive closure.
	Direct bool

	// IncludeSelf adds the seed nodes themselves to the result.
	IncludeSelf bool
}

// EffectivePredicates returns the predicate list with the default applied.
func (s TraversalSpec) EffectivePredicates() []string {
	if len(s.Predicates) == 0 {
		return []string{DefaultPredicate}
	}
	return s.Predicates
}

// Port is the uniform traversal capability of an ontology backend.
// Implementations must be safe for concurrent use: one handle is shared
// across all leaf evaluations of an expansion run.
type Port interface {
	// Traverse returns the set of nodes reachable from the seeds under the
	// given spec. Unknown seeds fail with UnknownNodeError; they are never
	// silently dropped. Connection-level failures surface as UnavailableError.
	Traverse(ctx context.Context, spec TraversalSpec) ([]ResolvedNode, error)

	// Close releases the backend connection.
	Close(ctx context.Context) error
}

// Binding is a connection descriptor for one backend, as found in
// resolver configuration. Read-only after construction.
type Binding struct {
	// Method is the backend kind (sqlite, neo4j, ols, memory).
	Method string `yaml:"method" json:"method"`

	// Shorthand is a method-specific connection string.
	Shorthand string `yaml:"shorthand,omitempty" json:"shorthand,omitempty"`

	// URL is the backend endpoint for network-backed methods.
	URL string `yaml:"url,omitempty" json:"url,omitempty"`
}

// Key returns a stable cache key for the binding.
func (b Binding) Key() string {
	return b.Method + "|" + b.Shorthand + "|" + b.URL
}

// Factory constructs a Port from a binding.
type Factory func(b Binding) (Port, error)

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]Factory)
)

// Register adds a backend factory under a method name. Called from the
// init() of adapter subpackages.
func Register(method string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[method] = f
}

// Open constructs a Port for the binding's method.
func Open(b Binding) (Port, error) {
	factoriesMu.RLock()
	f, ok := factories[b.Method]
	factoriesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown backend method: %q (registered: %v)", b.Method, Methods())
	}
	return f(b)
}

// Methods returns the registered backend method names, sorted.
func Methods() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
