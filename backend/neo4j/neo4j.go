// Package neo4j implements the traversal port over a property graph.
// Terms are (:Term {id, label, definition}) nodes; relationships are
// typed by predicate identifier, pointing from the more specific term to
// the more general one. Credentials come from NEO4J_USER/NEO4J_PASSWORD.
package neo4j

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/ontokit/vskit/backend"
)

func init() {
	backend.Register("neo4j", func(b backend.Binding) (backend.Port, error) {
		uri := b.URL
		if uri == "" {
			uri = strings.TrimPrefix(b.Shorthand, "neo4j:")
		}
		if uri == "" {
			return nil, fmt.Errorf("neo4j backend requires a bolt URI in url or shorthand")
		}
		return Open(uri)
	})
}

// Store is an ontology graph backed by a Neo4j database.
type Store struct {
	driver neo4j.DriverWithContext
	source string
}

// Open connects to the database at the given bolt/neo4j URI.
func Open(uri string) (*Store, error) {
	user := os.Getenv("NEO4J_USER")
	if user == "" {
		user = "neo4j"
	}
	password := os.Getenv("NEO4J_PASSWORD")

	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, &backend.UnavailableError{Backend: uri, Err: err}
	}
	return &Store{driver: driver, source: uri}, nil
}

// Traverse implements backend.Port.
func (s *Store) Traverse(ctx context.Context, spec backend.TraversalSpec) ([]backend.ResolvedNode, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if err := s.checkSeeds(ctx, tx, spec.Seeds); err != nil {
			return nil, err
		}
		return s.reachable(ctx, tx, spec)
	})
	if err != nil {
		return nil, s.wrap(err)
	}
	return result.([]backend.ResolvedNode), nil
}

// checkSeeds fails with UnknownNodeError on the first seed with no Term node.
func (s *Store) checkSeeds(ctx context.Context, tx neo4j.ManagedTransaction, seeds []string) error {
	res, err := tx.Run(ctx,
		`UNWIND $seeds AS seed
		 OPTIONAL MATCH (t:Term {id: seed})
		 WITH seed WHERE t IS NULL
		 RETURN seed LIMIT 1`,
		map[string]any{"seeds": seeds})
	if err != nil {
		return err
	}
	records, err := res.Collect(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}
	missing, _ := records[0].Get("seed")
	return &backend.UnknownNodeError{Backend: s.source, Node: fmt.Sprint(missing)}
}

// reachable runs the variable-length traversal.
func (s *Store) reachable(ctx context.Context, tx neo4j.ManagedTransaction, spec backend.TraversalSpec) ([]backend.ResolvedNode, error) {
	hops := "*1.."
	if spec.Direct {
		hops = "*1..1"
	}
	pattern := fmt.Sprintf("(s)-[%s]->(t:Term)", hops)
	if spec.Direction == backend.DirectionDescendants {
		pattern = fmt.Sprintf("(s)<-[%s]-(t:Term)", hops)
	}

	query := fmt.Sprintf(
		`UNWIND $seeds AS seed
		 MATCH (s:Term {id: seed})
		 MATCH path = %s
		 WHERE ALL(rel IN relationships(path) WHERE type(rel) IN $predicates)
		 RETURN DISTINCT t.id AS id, t.label AS label, t.definition AS definition`,
		pattern)

	params := map[string]any{
		"seeds":      spec.Seeds,
		"predicates": spec.EffectivePredicates(),
	}

	res, err := tx.Run(ctx, query, params)
	if err != nil {
		return nil, err
	}

	var nodes []backend.ResolvedNode
	seen := make(map[string]bool)

	// Seeds belong to the result only when asked for, even when one seed
	// is reachable from another.
	if !spec.IncludeSelf {
		for _, seed := range spec.Seeds {
			seen[seed] = true
		}
	}

	if spec.IncludeSelf {
		selfRes, err := tx.Run(ctx,
			`UNWIND $seeds AS seed
			 MATCH (t:Term {id: seed})
			 RETURN DISTINCT t.id AS id, t.label AS label, t.definition AS definition`,
			map[string]any{"seeds": spec.Seeds})
		if err != nil {
			return nil, err
		}
		selfNodes, err := s.collect(ctx, selfRes, seen)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, selfNodes...)
	}

	reached, err := s.collect(ctx, res, seen)
	if err != nil {
		return nil, err
	}
	return append(nodes, reached...), nil
}

// collect drains a result into resolved nodes, skipping already-seen ids.
func (s *Store) collect(ctx context.Context, res neo4j.ResultWithContext, seen map[string]bool) ([]backend.ResolvedNode, error) {
	var nodes []backend.ResolvedNode
	for res.Next(ctx) {
		record := res.Record()
		node := backend.ResolvedNode{Source: s.source}
		if v, ok := record.Get("id"); ok && v != nil {
			node.ID = fmt.Sprint(v)
		}
		if v, ok := record.Get("label"); ok && v != nil {
			node.Label = fmt.Sprint(v)
		}
		if v, ok := record.Get("definition"); ok && v != nil {
			node.Definition = fmt.Sprint(v)
		}
		if node.ID == "" || seen[node.ID] {
			continue
		}
		seen[node.ID] = true
		nodes = append(nodes, node)
	}
	return nodes, res.Err()
}

// Close implements backend.Port.
func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

// wrap classifies driver errors, preserving typed failures and context
// cancellation.
func (s *Store) wrap(err error) error {
	if err == nil {
		return nil
	}
	var unknown *backend.UnknownNodeError
	if errors.As(err, &unknown) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}
	return &backend.UnavailableError{Backend: s.source, Err: err}
}
