package registry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ontokit/vskit/backend"
	"github.com/ontokit/vskit/backend/memory"
	"github.com/ontokit/vskit/registry"
)

func TestLookupPrecedence(t *testing.T) {
	cfg, err := registry.ParseConfig([]byte(`
default_resolver:
  method: memory
  shorthand: default-graph
resource_resolvers:
  obo:go:
    method: memory
    shorthand: exact-graph
prefix_resolvers:
  "obo:":
    method: memory
    shorthand: prefix-graph
`))
	require.NoError(t, err)
	reg := registry.New(cfg)
	defer reg.Close(context.Background())

	t.Run("exact resource match beats prefix match", func(t *testing.T) {
		_, key, err := reg.Lookup("obo:go", []string{"GO:0016020"})
		require.NoError(t, err)
		assert.Equal(t, "obo:go", key)
	})

	t.Run("prefix match beats default", func(t *testing.T) {
		_, key, err := reg.Lookup("obo:chebi", nil)
		require.NoError(t, err)
		assert.Equal(t, "prefix:obo:", key)
	})

	t.Run("default catches everything else", func(t *testing.T) {
		_, key, err := reg.Lookup("anything", []string{"X:1"})
		require.NoError(t, err)
		assert.Equal(t, registry.DefaultKey, key)
	})
}

func TestLookupLongestPrefixWins(t *testing.T) {
	cfg, err := registry.ParseConfig([]byte(`
prefix_resolvers:
  "GO":
    method: memory
  "GO:00160":
    method: memory
`))
	require.NoError(t, err)
	reg := registry.New(cfg)
	defer reg.Close(context.Background())

	_, key, err := reg.Lookup("", []string{"GO:0016020"})
	require.NoError(t, err)
	assert.Equal(t, "prefix:GO:00160", key)
}

func TestLookupEqualPrefixTieBreaksByDeclarationOrder(t *testing.T) {
	// Both prefixes are three bytes and each matches one of the seeds;
	// the one declared first wins.
	cfg, err := registry.ParseConfig([]byte(`
prefix_resolvers:
  "HP:":
    method: memory
    shorthand: first
  "GO:":
    method: memory
    shorthand: second
`))
	require.NoError(t, err)
	require.Len(t, cfg.PrefixResolvers, 2)
	assert.Equal(t, "HP:", cfg.PrefixResolvers[0].Prefix)

	reg := registry.New(cfg)
	defer reg.Close(context.Background())

	_, key, err := reg.Lookup("", []string{"GO:0016020", "HP:0000118"})
	require.NoError(t, err)
	assert.Equal(t, "prefix:HP:", key)
}

func TestLookupSeedPrefixes(t *testing.T) {
	// A query with no source_ontology still resolves via its seed
	// identifiers' prefixes.
	cfg, err := registry.ParseConfig([]byte(`
prefix_resolvers:
  "CHEBI:":
    method: memory
`))
	require.NoError(t, err)
	reg := registry.New(cfg)
	defer reg.Close(context.Background())

	_, key, err := reg.Lookup("", []string{"CHEBI:15377"})
	require.NoError(t, err)
	assert.Equal(t, "prefix:CHEBI:", key)
}

func TestLookupUnbound(t *testing.T) {
	reg := registry.New(nil)

	_, _, err := reg.Lookup("obo:go", []string{"GO:0016020"})
	require.Error(t, err)
	assert.True(t, registry.IsUnbound(err))
}

func TestAddPort(t *testing.T) {
	reg := registry.New(nil)
	g := memory.New("injected")
	reg.AddPort("mygraph", g)
	defer reg.Close(context.Background())

	port, key, err := reg.Lookup("mygraph", nil)
	require.NoError(t, err)
	assert.Equal(t, "mygraph", key)
	assert.Same(t, backend.Port(g), port)
}

func TestConfigValidate(t *testing.T) {
	_, err := registry.ParseConfig([]byte(`
default_resolver:
  shorthand: missing-method
`))
	assert.Error(t, err)
}

func TestHandleCaching(t *testing.T) {
	cfg, err := registry.ParseConfig([]byte(`
default_resolver:
  method: memory
  shorthand: g
`))
	require.NoError(t, err)
	reg := registry.New(cfg)
	defer reg.Close(context.Background())

	p1, _, err := reg.Lookup("a", nil)
	require.NoError(t, err)
	p2, _, err := reg.Lookup("b", nil)
	require.NoError(t, err)
	assert.Same(t, p1, p2, "one binding opens one shared handle")
}
