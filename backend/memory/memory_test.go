package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ontokit/vskit/backend"
)

// testGraph builds a small is-a hierarchy:
//
//	GO:1 (root)
//	  GO:2
//	    GO:4
//	  GO:3
//
// plus one part-of edge GO:5 -> GO:1.
func testGraph() *Graph {
	g := New("test")
	g.AddNode("GO:1", "root", "the root")
	g.AddNode("GO:2", "left", "")
	g.AddNode("GO:3", "right", "")
	g.AddNode("GO:4", "leaf", "")
	g.AddNode("GO:5", "part", "")
	g.AddEdge("GO:2", "rdfs:subClassOf", "GO:1")
	g.AddEdge("GO:3", "rdfs:subClassOf", "GO:1")
	g.AddEdge("GO:4", "rdfs:subClassOf", "GO:2")
	g.AddEdge("GO:5", "BFO:0000050", "GO:1")
	return g
}

func ids(nodes []backend.ResolvedNode) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}

func TestTraverse(t *testing.T) {
	g := testGraph()
	ctx := context.Background()

	t.Run("ancestors transitive", func(t *testing.T) {
		nodes, err := g.Traverse(ctx, backend.TraversalSpec{
			Seeds:     []string{"GO:4"},
			Direction: backend.DirectionAncestors,
		})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"GO:2", "GO:1"}, ids(nodes))
	})

	t.Run("descendants transitive", func(t *testing.T) {
		nodes, err := g.Traverse(ctx, backend.TraversalSpec{
			Seeds:     []string{"GO:1"},
			Direction: backend.DirectionDescendants,
		})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"GO:2", "GO:3", "GO:4"}, ids(nodes))
	})

	t.Run("direct limits to one hop", func(t *testing.T) {
		nodes, err := g.Traverse(ctx, backend.TraversalSpec{
			Seeds:     []string{"GO:1"},
			Direction: backend.DirectionDescendants,
			Direct:    true,
		})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"GO:2", "GO:3"}, ids(nodes))
	})

	t.Run("include self prepends seeds", func(t *testing.T) {
		nodes, err := g.Traverse(ctx, backend.TraversalSpec{
			Seeds:       []string{"GO:4"},
			Direction:   backend.DirectionAncestors,
			IncludeSelf: true,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"GO:4", "GO:2", "GO:1"}, ids(nodes))
	})

	t.Run("seeds excluded even when reachable from another seed", func(t *testing.T) {
		nodes, err := g.Traverse(ctx, backend.TraversalSpec{
			Seeds:     []string{"GO:4", "GO:2"},
			Direction: backend.DirectionAncestors,
		})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"GO:1"}, ids(nodes))
	})

	t.Run("non-default predicate", func(t *testing.T) {
		nodes, err := g.Traverse(ctx, backend.TraversalSpec{
			Seeds:      []string{"GO:5"},
			Predicates: []string{"BFO:0000050"},
			Direction:  backend.DirectionAncestors,
		})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"GO:1"}, ids(nodes))
	})

	t.Run("default predicate ignores other edge types", func(t *testing.T) {
		nodes, err := g.Traverse(ctx, backend.TraversalSpec{
			Seeds:     []string{"GO:5"},
			Direction: backend.DirectionAncestors,
		})
		require.NoError(t, err)
		assert.Empty(t, nodes)
	})

	t.Run("unknown seed fails", func(t *testing.T) {
		_, err := g.Traverse(ctx, backend.TraversalSpec{
			Seeds:     []string{"GO:999"},
			Direction: backend.DirectionAncestors,
		})
		require.Error(t, err)
		assert.True(t, backend.IsUnknownNode(err))
	})
}

func TestTraverseCycle(t *testing.T) {
	g := New("cyclic")
	g.AddEdge("A", "rdfs:subClassOf", "B")
	g.AddEdge("B", "rdfs:subClassOf", "A")

	nodes, err := g.Traverse(context.Background(), backend.TraversalSpec{
		Seeds:     []string{"A"},
		Direction: backend.DirectionAncestors,
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"B"}, ids(nodes))
}

func TestTraverseCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testGraph().Traverse(ctx, backend.TraversalSpec{
		Seeds: []string{"GO:1"},
	})
	assert.ErrorIs(t, err, context.Canceled)
}
