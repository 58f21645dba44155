// Package memory provides an in-memory graph backend. It is used as a
// fixture in tests and for small hand-maintained vocabularies loaded
// programmatically; it has no persistent form.
package memory

import (
	"context"
	"sync"

	"github.com/ontokit/vskit/backend"
)

func init() {
	backend.Register("memory", func(b backend.Binding) (backend.Port, error) {
		return New(b.Shorthand), nil
	})
}

type edge struct {
	subject   string
	predicate string
	object    string
}

// Graph is an in-memory ontology graph implementing backend.Port.
// Edges point from the more specific node (subject) to the more general
// node (object), so ancestors follow subject -> object.
type Graph struct {
	source string

	mu    sync.RWMutex
	nodes map[string]backend.ResolvedNode
	edges []edge
}

// New creates an empty graph tagged with a source name.
func New(source string) *Graph {
	return &Graph{
		source: source,
		nodes:  make(map[string]backend.ResolvedNode),
	}
}

// AddNode registers a node. Re-adding an ID overwrites its metadata.
func (g *Graph) AddNode(id, label, definition string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nodes[id] = backend.ResolvedNode{
		ID:         id,
		Label:      label,
		Definition: definition,
		Source:     g.source,
	}
}

// AddEdge registers a subject -predicate-> object edge. Nodes referenced
// by an edge are created with identifier-only metadata if absent.
func (g *Graph) AddEdge(subject, predicate, object string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, id := range []string{subject, object} {
		if _, ok := g.nodes[id]; !ok {
			g.nodes[id] = backend.ResolvedNode{ID: id, Source: g.source}
		}
	}
	g.edges = append(g.edges, edge{subject: subject, predicate: predicate, object: object})
}

// Traverse implements backend.Port.
func (g *Graph) Traverse(ctx context.Context, spec backend.TraversalSpec) ([]backend.ResolvedNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	for _, seed := range spec.Seeds {
		if _, ok := g.nodes[seed]; !ok {
			return nil, &backend.UnknownNodeError{Backend: g.source, Node: seed}
		}
	}

	predicates := make(map[string]bool)
	for _, p := range spec.EffectivePredicates() {
		predicates[p] = true
	}

	// BFS from all seeds at once. Visited keeps the walk terminating on
	// cyclic graphs.
	visited := make(map[string]bool)
	frontier := append([]string(nil), spec.Seeds...)
	seeds := make(map[string]bool, len(spec.Seeds))
	for _, s := range spec.Seeds {
		seeds[s] = true
	}

	var result []backend.ResolvedNode
	emit := func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true
		result = append(result, g.nodes[id])
	}

	if spec.IncludeSelf {
		for _, s := range spec.Seeds {
			emit(s)
		}
	}

	for len(frontier) > 0 {
		var next []string
		for _, id := range frontier {
			for _, e := range g.edges {
				if !predicates[e.predicate] {
					continue
				}
				var reached string
				switch spec.Direction {
				case backend.DirectionDescendants:
					if e.object != id {
						continue
					}
					reached = e.subject
				default:
					if e.subject != id {
						continue
					}
					reached = e.object
				}
				if visited[reached] {
					continue
				}
				// Seeds are only part of the result when IncludeSelf is set,
				// even if reachable from another seed.
				if seeds[reached] && !spec.IncludeSelf {
					visited[reached] = true
				} else {
					emit(reached)
				}
				next = append(next, reached)
			}
		}
		if spec.Direct {
			break
		}
		frontier = next
	}

	return result, nil
}

// Close implements backend.Port. No resources are held.
func (g *Graph) Close(ctx context.Context) error {
	return nil
}
