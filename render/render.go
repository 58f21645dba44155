// Package render converts a final resolved node set into an ordered
// sequence of permissible-value records. Ordering is by rendered key,
// ordinal (byte-wise) comparison, so output is reproducible regardless of
// backend traversal order.
package render

import (
	"regexp"
	"sort"

	"github.com/ontokit/vskit/backend"
)

// Formula selects the key-rendering rule for a node identifier.
type Formula string

const (
	// FormulaCURIE uses the identifier as supplied by the backend.
	FormulaCURIE Formula = "CURIE"

	// FormulaCODE strips the namespace prefix: the text after the first
	// ':' or '/'. Identifiers with no separator are used unchanged.
	FormulaCODE Formula = "CODE"

	// FormulaLABEL uses the node label, falling back to the identifier
	// when the backend supplied no label.
	FormulaLABEL Formula = "LABEL"
)

// Record is one permissible value in the expanded enum.
type Record struct {
	// Key is the rendered key, unique within one expanded enum.
	Key string `yaml:"-" json:"-"`

	Text        string `yaml:"text,omitempty" json:"text,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Meaning is the original node identifier.
	Meaning string `yaml:"meaning,omitempty" json:"meaning,omitempty"`
}

// Input is one unit to render: either a resolved node, or a literal
// pre-rendered record that bypasses templating.
type Input struct {
	Node backend.ResolvedNode

	// Prerendered, when set, is emitted verbatim and inserted into the
	// final ordering by its own key.
	Prerendered *Record
}

// Options configures rendering for one enum.
type Options struct {
	// Formula is the pv_formula rule, applied when Template is empty.
	Formula Formula

	// Template, when non-empty, overrides the formula. Placeholders
	// {id}, {text} (alias of id) and {label} substitute node fields;
	// missing or unknown placeholders render as empty strings.
	Template string
}

var placeholderRe = regexp.MustCompile(`\{([a-zA-Z_]+)\}`)

// Key renders the key for one node under the given options.
func Key(n backend.ResolvedNode, opts Options) string {
	if opts.Template != "" {
		return expandTemplate(opts.Template, n)
	}
	switch opts.Formula {
	case FormulaCODE:
		return code(n.ID)
	case FormulaLABEL:
		if n.Label != "" {
			return n.Label
		}
		return n.ID
	default:
		return n.ID
	}
}

// Apply renders the inputs into records, deduplicates by rendered key
// (first occurrence wins) and sorts by key.
func Apply(inputs []Input, opts Options) []Record {
	records := make([]Record, 0, len(inputs))
	seen := make(map[string]bool, len(inputs))

	for _, in := range inputs {
		var rec Record
		if in.Prerendered != nil {
			rec = *in.Prerendered
		} else {
			key := Key(in.Node, opts)
			rec = Record{
				Key:         key,
				Text:        key,
				Description: in.Node.Definition,
				Meaning:     in.Node.ID,
			}
		}
		if seen[rec.Key] {
			continue
		}
		seen[rec.Key] = true
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Key < records[j].Key
	})
	return records
}

// code strips the namespace prefix from an identifier.
func code(id string) string {
	for i := 0; i < len(id); i++ {
		if id[i] == ':' || id[i] == '/' {
			return id[i+1:]
		}
	}
	return id
}

// expandTemplate substitutes {name} placeholders from node fields.
func expandTemplate(tpl string, n backend.ResolvedNode) string {
	return placeholderRe.ReplaceAllStringFunc(tpl, func(m string) string {
		switch m[1 : len(m)-1] {
		case "id", "text":
			return n.ID
		case "label":
			return n.Label
		case "definition":
			return n.Definition
		default:
			return ""
		}
	})
}
