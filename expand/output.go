package expand

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/ontokit/vskit/render"
	"github.com/ontokit/vskit/schema"
)

// WriteDocument serializes the expanded document: every successfully
// expanded enum has its permissible_values replaced by the rendered
// records, as a mapping from rendered key to {text, description, meaning}
// in the renderer's ordinal key order. Enums outside the report pass
// through unchanged. The mapping node is built explicitly because plain
// map marshaling would not preserve the ordering contract.
func WriteDocument(w io.Writer, doc *schema.Document, report *Report) error {
	root := &yaml.Node{Kind: yaml.MappingNode}

	if doc.ID != "" {
		appendScalar(root, "id", doc.ID)
	}
	if doc.Name != "" {
		appendScalar(root, "name", doc.Name)
	}
	if len(doc.Prefixes) > 0 {
		var prefixes yaml.Node
		if err := prefixes.Encode(doc.Prefixes); err != nil {
			return fmt.Errorf("encode prefixes: %w", err)
		}
		appendEntry(root, "prefixes", &prefixes)
	}

	expanded := make(map[string][]render.Record, len(report.Expanded))
	for _, res := range report.Expanded {
		expanded[res.Enum] = res.Records
	}

	enums := &yaml.Node{Kind: yaml.MappingNode}
	for _, name := range doc.EnumNames() {
		spec := doc.Enums[name]
		records, ok := expanded[name]
		if !ok {
			var node yaml.Node
			if err := node.Encode(spec); err != nil {
				return fmt.Errorf("encode enum %s: %w", name, err)
			}
			appendEntry(enums, name, &node)
			continue
		}
		node, err := expandedEnumNode(spec, records)
		if err != nil {
			return fmt.Errorf("encode enum %s: %w", name, err)
		}
		appendEntry(enums, name, node)
	}
	appendEntry(root, "enums", enums)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(root)
}

// expandedEnumNode renders one expanded enum: provenance fields kept,
// combinators replaced by the materialized permissible_values.
func expandedEnumNode(spec *schema.EnumSpec, records []render.Record) (*yaml.Node, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}

	if spec.EnumURI != "" {
		appendScalar(node, "enum_uri", spec.EnumURI)
	}
	if spec.PVFormula != "" {
		appendScalar(node, "pv_formula", string(spec.PVFormula))
	}
	if spec.CodeSet != "" {
		appendScalar(node, "code_set", spec.CodeSet)
	}
	if spec.CodeSetVersion != "" {
		appendScalar(node, "code_set_version", spec.CodeSetVersion)
	}

	values := &yaml.Node{Kind: yaml.MappingNode}
	for _, rec := range records {
		var value yaml.Node
		if err := value.Encode(rec); err != nil {
			return nil, err
		}
		if len(value.Content) == 0 {
			value = yaml.Node{Kind: yaml.MappingNode}
		}
		appendEntry(values, rec.Key, &value)
	}
	appendEntry(node, "permissible_values", values)

	return node, nil
}

func appendScalar(m *yaml.Node, key, value string) {
	var v yaml.Node
	v.SetString(value)
	appendEntry(m, key, &v)
}

func appendEntry(m *yaml.Node, key string, value *yaml.Node) {
	var k yaml.Node
	k.SetString(key)
	m.Content = append(m.Content, &k, value)
}
