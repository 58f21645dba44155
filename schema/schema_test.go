package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `
id: https://example.org/test
name: test-schema
prefixes:
  GO: http://purl.obolibrary.org/obo/GO_
enums:
  MembraneEnum:
    pv_formula: CODE
    inherits: [CellularComponentEnum]
    include:
      - reachable_from:
          source_ontology: obo:go
          source_nodes: [GO:0016020]
          relationship_types: [rdfs:subClassOf]
          include_self: true
          traverse_up: false
      - concepts: [GO:0005575]
    minus:
      - concepts: [GO:0031090]
    concepts: [GO:0009279]
    permissible_values:
      other:
        text: other
        description: anything else
  CellularComponentEnum:
    reachable_from:
      source_ontology: obo:go
      source_nodes: [GO:0005575]
  StaticEnum:
    permissible_values:
      a: {text: a}
      b: {text: b}
`

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(sampleDoc))
	require.NoError(t, err)
	require.Len(t, doc.Enums, 3)

	assert.Equal(t, "test-schema", doc.Name)
	assert.Equal(t, []string{"CellularComponentEnum", "MembraneEnum", "StaticEnum"}, doc.EnumNames())

	spec := doc.Enums["MembraneEnum"]
	require.NotNil(t, spec)
	assert.Equal(t, "MembraneEnum", spec.Name)
	assert.Equal(t, FormulaCODE, spec.Formula())
	assert.Equal(t, []string{"CellularComponentEnum"}, spec.Inherits)
	require.Len(t, spec.Include, 2)

	q := spec.Include[0].ReachableFrom
	require.NotNil(t, q)
	assert.Equal(t, "obo:go", q.SourceOntology)
	assert.True(t, q.IncludeSelf)
	assert.False(t, q.Ancestors(), "traverse_up: false walks descendants")
	assert.True(t, spec.Intentional())
	assert.False(t, doc.Enums["StaticEnum"].Intentional())
}

func TestParseDefaults(t *testing.T) {
	doc, err := Parse([]byte(`
enums:
  E:
    reachable_from:
      source_ontology: test
      source_nodes: [X:1]
`))
	require.NoError(t, err)

	spec := doc.Enums["E"]
	assert.Equal(t, FormulaCURIE, spec.Formula(), "pv_formula defaults to CURIE")

	q := spec.ReachableFrom
	assert.False(t, q.IsDirect, "is_direct defaults to transitive closure")
	assert.False(t, q.IncludeSelf)
	assert.True(t, q.Ancestors(), "traverse_up defaults to ancestors")
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "no enums",
			doc:  `name: empty`,
		},
		{
			name: "two variants in one expression",
			doc: `
enums:
  E:
    include:
      - concepts: [X:1]
        inherits: Other
`,
		},
		{
			name: "empty expression",
			doc: `
enums:
  E:
    include:
      - {}
`,
		},
		{
			name: "reachable_from without seeds",
			doc: `
enums:
  E:
    include:
      - reachable_from:
          source_ontology: test
`,
		},
		{
			name: "unknown pv_formula",
			doc: `
enums:
  E:
    pv_formula: URI
    concepts: [X:1]
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestSetExpressionValidate(t *testing.T) {
	valid := SetExpression{Concepts: []string{"X:1"}}
	assert.NoError(t, valid.Validate())

	invalid := SetExpression{
		Concepts: []string{"X:1"},
		Inherits: "Other",
	}
	assert.Error(t, invalid.Validate())
}
