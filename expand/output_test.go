package expand

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ontokit/vskit/render"
	"github.com/ontokit/vskit/schema"
)

func TestWriteDocument(t *testing.T) {
	doc := mustParse(t, `
id: https://example.org/membranes
name: membranes
prefixes:
  GO: http://purl.obolibrary.org/obo/GO_
enums:
  MembraneEnum:
    pv_formula: CURIE
    code_set: obo:go
    reachable_from:
      source_ontology: test
      source_nodes: [GO:0016020]
  UntouchedEnum:
    concepts: [GO:1]
`)
	report := &Report{
		RunID: "run-1",
		Expanded: []Result{{
			Enum: "MembraneEnum",
			Records: []render.Record{
				{Key: "GO:0005886", Text: "GO:0005886", Description: "The surface membrane.", Meaning: "GO:0005886"},
				{Key: "GO:0016020", Text: "GO:0016020", Meaning: "GO:0016020"},
			},
		}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteDocument(&buf, doc, report))
	out := buf.String()

	// The expanded enum loses its combinators and gains materialized values.
	assert.NotContains(t, out, "reachable_from")
	assert.Contains(t, out, "pv_formula: CURIE")
	assert.Contains(t, out, "code_set: obo:go")
	assert.Contains(t, out, "The surface membrane.")

	// The non-selected enum passes through unchanged.
	assert.Contains(t, out, "UntouchedEnum")
	assert.Contains(t, out, "concepts:")

	// Rendered keys appear in ordinal order.
	first := strings.Index(out, "GO:0005886")
	second := strings.Index(out, "GO:0016020")
	require.GreaterOrEqual(t, first, 0)
	require.Greater(t, second, first)

	// The output is itself a loadable document.
	reparsed, err := schema.Parse([]byte(out))
	require.NoError(t, err)
	spec := reparsed.Enums["MembraneEnum"]
	require.NotNil(t, spec)
	assert.False(t, spec.Intentional())
	require.Len(t, spec.PermissibleValues, 2)
	assert.Equal(t, "The surface membrane.", spec.PermissibleValues["GO:0005886"].Description)
}

func TestWriteDocumentValueOrder(t *testing.T) {
	doc := mustParse(t, `
enums:
  E:
    concepts: [X:1]
`)
	report := &Report{
		Expanded: []Result{{
			Enum: "E",
			Records: []render.Record{
				{Key: "A", Text: "A"},
				{Key: "a", Text: "a"},
				{Key: "b", Text: "b"},
			},
		}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteDocument(&buf, doc, report))

	// yaml.v3 preserves mapping order when re-decoded into a node, which
	// lets us assert on the serialized key sequence.
	var root yaml.Node
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &root))
	mapping := root.Content[0]

	values := findMapValue(t, findMapValue(t, findMapValue(t, mapping, "enums"), "E"), "permissible_values")
	var keys []string
	for i := 0; i < len(values.Content); i += 2 {
		keys = append(keys, values.Content[i].Value)
	}
	assert.Equal(t, []string{"A", "a", "b"}, keys)
}

func findMapValue(t *testing.T, mapping *yaml.Node, key string) *yaml.Node {
	t.Helper()
	require.Equal(t, yaml.MappingNode, mapping.Kind)
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	t.Fatalf("key %q not found in mapping", key)
	return nil
}

func TestWriteDocumentIdempotent(t *testing.T) {
	doc := mustParse(t, membraneDoc)
	reg := testRegistry(t, "test", membraneGraph())
	x := New(doc, reg, Options{})

	expandOnce := func() []byte {
		report, err := x.ExpandAll(context.Background(), doc.EnumNames())
		require.NoError(t, err)
		require.Empty(t, report.Failed)

		var buf bytes.Buffer
		require.NoError(t, WriteDocument(&buf, doc, report))
		return buf.Bytes()
	}

	assert.Equal(t, expandOnce(), expandOnce(), "expanding the same document twice yields identical output")
}
