package expand

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ontokit/vskit/backend"
	"github.com/ontokit/vskit/metrics"
	"github.com/ontokit/vskit/registry"
	"github.com/ontokit/vskit/render"
)

// Value is one element of an evaluated set, keyed by node identifier.
// Literal permissible_values carry their pre-rendered record; their
// identity is the entry's meaning when present, else its key text.
type Value struct {
	Node        backend.ResolvedNode
	Prerendered *render.Record
}

// Evaluator walks a resolved expression tree bottom-up, dispatching leaf
// queries to backends and combining child results with set algebra.
// Sibling branches of one union or minus list evaluate concurrently;
// their results are merged after completion in declared branch order, so
// the first-seen-wins deduplication policy stays deterministic.
type Evaluator struct {
	Registry *registry.Registry

	// Timeout bounds each backend call. Zero means no bound.
	Timeout time.Duration

	Logger *slog.Logger
}

func (ev *Evaluator) logger() *slog.Logger {
	if ev.Logger != nil {
		return ev.Logger
	}
	return slog.Default()
}

// Eval evaluates an expression tree into a single deduplicated set.
// The order of the returned slice is the deterministic first-seen order;
// serialization order is imposed later by the renderer.
func (ev *Evaluator) Eval(ctx context.Context, enum string, e Expr) ([]Value, error) {
	switch node := e.(type) {
	case *UnionExpr:
		lists, err := ev.evalAll(ctx, enum, node.Terms)
		if err != nil {
			return nil, err
		}
		return mergeValues(lists), nil

	case *MinusExpr:
		// Base and subtraction branches are sibling leaves: evaluate
		// them all concurrently, then subtract.
		branches := append([]Expr{node.Base}, node.Subtract...)
		lists, err := ev.evalAll(ctx, enum, branches)
		if err != nil {
			return nil, err
		}
		remove := make(map[string]bool)
		for _, sub := range lists[1:] {
			for _, v := range sub {
				remove[v.Node.ID] = true
			}
		}
		base := lists[0]
		kept := make([]Value, 0, len(base))
		for _, v := range base {
			// Removing an identifier absent from the base set is a no-op.
			if !remove[v.Node.ID] {
				kept = append(kept, v)
			}
		}
		return kept, nil

	case *QueryExpr:
		return ev.evalQuery(ctx, enum, node)

	case *ConceptsExpr:
		values := make([]Value, 0, len(node.IDs))
		for _, id := range node.IDs {
			values = append(values, Value{Node: backend.ResolvedNode{ID: id}})
		}
		return mergeValues([][]Value{values}), nil

	case *LiteralExpr:
		values := make([]Value, 0, len(node.Values))
		for i := range node.Values {
			rec := node.Values[i]
			id := rec.Meaning
			if id == "" {
				id = rec.Key
			}
			values = append(values, Value{
				Node:        backend.ResolvedNode{ID: id, Label: rec.Text, Definition: rec.Description},
				Prerendered: &rec,
			})
		}
		return mergeValues([][]Value{values}), nil

	default:
		return nil, fmt.Errorf("enum %s: unknown expression node %T", enum, e)
	}
}

// evalAll evaluates sibling branches concurrently, preserving slot order.
func (ev *Evaluator) evalAll(ctx context.Context, enum string, terms []Expr) ([][]Value, error) {
	lists := make([][]Value, len(terms))
	g, ctx := errgroup.WithContext(ctx)
	for i, term := range terms {
		i, term := i, term
		g.Go(func() error {
			values, err := ev.Eval(ctx, enum, term)
			if err != nil {
				return err
			}
			lists[i] = values
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return lists, nil
}

// evalQuery dispatches one traversal leaf through the resolver registry.
func (ev *Evaluator) evalQuery(ctx context.Context, enum string, q *QueryExpr) ([]Value, error) {
	port, key, err := ev.Registry.Lookup(q.Query.SourceOntology, q.Query.SourceNodes)
	if err != nil {
		return nil, fmt.Errorf("enum %s: reachable_from %s: %w", enum, q.Query.SourceOntology, err)
	}

	direction := backend.DirectionAncestors
	if !q.Query.Ancestors() {
		direction = backend.DirectionDescendants
	}
	spec := backend.TraversalSpec{
		Seeds:       q.Query.SourceNodes,
		Predicates:  q.Query.RelationshipTypes,
		Direction:   direction,
		Direct:      q.Query.IsDirect,
		IncludeSelf: q.Query.IncludeSelf,
	}

	queryCtx := ctx
	if ev.Timeout > 0 {
		var cancel context.CancelFunc
		queryCtx, cancel = context.WithTimeout(ctx, ev.Timeout)
		defer cancel()
	}

	start := time.Now()
	nodes, err := port.Traverse(queryCtx, spec)
	metrics.ObserveBackendQuery(key, time.Since(start), err)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = &backend.TimeoutError{Backend: key, Err: err}
		}
		return nil, fmt.Errorf("enum %s: reachable_from via %s: %w", enum, key, err)
	}

	ev.logger().Debug("traversal leaf evaluated",
		slog.String("enum", enum),
		slog.String("backend", key),
		slog.Int("seeds", len(spec.Seeds)),
		slog.Int("nodes", len(nodes)))

	values := make([]Value, 0, len(nodes))
	for _, n := range nodes {
		values = append(values, Value{Node: n})
	}
	return mergeValues([][]Value{values}), nil
}

// mergeValues unions value lists in order, deduplicating by node
// identifier. The first-seen entry keeps its metadata; later duplicates
// are discarded even when their labels or definitions differ.
func mergeValues(lists [][]Value) []Value {
	var total int
	for _, l := range lists {
		total += len(l)
	}
	merged := make([]Value, 0, total)
	seen := make(map[string]bool, total)
	for _, l := range lists {
		for _, v := range l {
			if seen[v.Node.ID] {
				continue
			}
			seen[v.Node.ID] = true
			merged = append(merged, v)
		}
	}
	return merged
}
