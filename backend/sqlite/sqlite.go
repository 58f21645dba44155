// Package sqlite implements the traversal port over a local indexed
// ontology store in the semsql layout: an edge(subject, predicate,
// object) relation plus a statements relation carrying labels and
// definitions. Closure queries run as recursive CTEs directly against
// the store; the database's own index is the index.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/ontokit/vskit/backend"
)

const (
	labelPredicate      = "rdfs:label"
	definitionPredicate = "IAO:0000115"

	// metadataChunkSize bounds IN-list sizes when hydrating node metadata.
	metadataChunkSize = 500
)

func init() {
	backend.Register("sqlite", func(b backend.Binding) (backend.Port, error) {
		path := b.Shorthand
		if path == "" {
			path = b.URL
		}
		if path == "" {
			return nil, fmt.Errorf("sqlite backend requires a database path in shorthand or url")
		}
		path = strings.TrimPrefix(path, "sqlite:")
		return Open(path)
	})
}

// Store is a read-only ontology graph backed by a SQLite file.
type Store struct {
	db     *sql.DB
	source string
}

// Open opens a read-only connection to the store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &backend.UnavailableError{Backend: path, Err: err}
	}
	db.SetMaxOpenConns(4)
	return &Store{db: db, source: path}, nil
}

// OpenDB wraps an existing database handle. Used by tests with an
// in-memory database.
func OpenDB(db *sql.DB, source string) *Store {
	return &Store{db: db, source: source}
}

// Traverse implements backend.Port.
func (s *Store) Traverse(ctx context.Context, spec backend.TraversalSpec) ([]backend.ResolvedNode, error) {
	if err := s.checkSeeds(ctx, spec.Seeds); err != nil {
		return nil, err
	}

	ids, err := s.closure(ctx, spec)
	if err != nil {
		return nil, err
	}
	// Seeds belong to the result only when asked for, even when one seed
	// is reachable from another.
	for _, seed := range spec.Seeds {
		if spec.IncludeSelf {
			ids[seed] = true
		} else {
			delete(ids, seed)
		}
	}

	ordered := make([]string, 0, len(ids))
	for id := range ids {
		ordered = append(ordered, id)
	}
	sort.Strings(ordered)

	return s.hydrate(ctx, ordered)
}

// checkSeeds fails with UnknownNodeError on the first seed absent from
// the store. Unknown seeds are surfaced, never dropped.
func (s *Store) checkSeeds(ctx context.Context, seeds []string) error {
	const q = `SELECT EXISTS(SELECT 1 FROM statements WHERE subject = ?)
	           OR EXISTS(SELECT 1 FROM edge WHERE subject = ? OR object = ?)`
	for _, seed := range seeds {
		var found bool
		if err := s.db.QueryRowContext(ctx, q, seed, seed, seed).Scan(&found); err != nil {
			return s.wrap(err)
		}
		if !found {
			return &backend.UnknownNodeError{Backend: s.source, Node: seed}
		}
	}
	return nil
}

// closure computes the reachable node set with a recursive CTE.
func (s *Store) closure(ctx context.Context, spec backend.TraversalSpec) (map[string]bool, error) {
	predicates := spec.EffectivePredicates()
	from, to := "subject", "object"
	if spec.Direction == backend.DirectionDescendants {
		from, to = to, from
	}

	seedIn, args := inList(spec.Seeds)
	predIn, predArgs := inList(predicates)

	var q string
	if spec.Direct {
		q = fmt.Sprintf(
			`SELECT DISTINCT %s FROM edge WHERE %s IN %s AND predicate IN %s`,
			to, from, seedIn, predIn)
		args = append(args, predArgs...)
	} else {
		q = fmt.Sprintf(
			`WITH RECURSIVE closure(node) AS (
			   SELECT %[1]s FROM edge WHERE %[2]s IN %[3]s AND predicate IN %[4]s
			   UNION
			   SELECT e.%[1]s FROM edge e JOIN closure c ON e.%[2]s = c.node
			   WHERE e.predicate IN %[5]s
			 )
			 SELECT node FROM closure`,
			to, from, seedIn, predIn, predIn)
		args = append(args, predArgs...)
		args = append(args, predArgs...)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, s.wrap(err)
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, s.wrap(err)
		}
		ids[id] = true
	}
	return ids, s.wrap(rows.Err())
}

// hydrate fetches labels and definitions for the ids, chunked to keep
// IN lists bounded.
func (s *Store) hydrate(ctx context.Context, ids []string) ([]backend.ResolvedNode, error) {
	nodes := make([]backend.ResolvedNode, 0, len(ids))
	meta := make(map[string]*backend.ResolvedNode, len(ids))
	for _, id := range ids {
		nodes = append(nodes, backend.ResolvedNode{ID: id, Source: s.source})
	}
	for i := range nodes {
		meta[nodes[i].ID] = &nodes[i]
	}

	for start := 0; start < len(ids); start += metadataChunkSize {
		end := start + metadataChunkSize
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[start:end]

		in, args := inList(chunk)
		q := fmt.Sprintf(
			`SELECT subject, predicate, value FROM statements
			 WHERE subject IN %s AND predicate IN ('%s', '%s')`,
			in, labelPredicate, definitionPredicate)

		rows, err := s.db.QueryContext(ctx, q, args...)
		if err != nil {
			return nil, s.wrap(err)
		}
		for rows.Next() {
			var subject, predicate string
			var value sql.NullString
			if err := rows.Scan(&subject, &predicate, &value); err != nil {
				rows.Close()
				return nil, s.wrap(err)
			}
			node, ok := meta[subject]
			if !ok || !value.Valid {
				continue
			}
			switch predicate {
			case labelPredicate:
				node.Label = value.String
			case definitionPredicate:
				node.Definition = value.String
			}
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, s.wrap(err)
		}
		rows.Close()
	}

	return nodes, nil
}

// Close implements backend.Port.
func (s *Store) Close(ctx context.Context) error {
	return s.db.Close()
}

// wrap classifies driver errors, keeping context cancellation visible to
// the evaluator's timeout mapping.
func (s *Store) wrap(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}
	return &backend.UnavailableError{Backend: s.source, Err: err}
}

// inList builds a parenthesized placeholder list and its arguments.
func inList(values []string) (string, []any) {
	placeholders := make([]string, len(values))
	args := make([]any, len(values))
	for i, v := range values {
		placeholders[i] = "?"
		args[i] = v
	}
	return "(" + strings.Join(placeholders, ", ") + ")", args
}
