// Package schema defines the enum specification document model: named
// EnumSpecs whose value sets are declared intentionally, as boolean
// expressions over graph-reachability queries, rather than listed out.
package schema

import (
	"fmt"
)

// PVFormula selects how a node identifier is rendered into a
// permissible-value key.
type PVFormula string

const (
	// FormulaCURIE renders the identifier as supplied by the backend,
	// assumed to already be in compact form. This is the default.
	FormulaCURIE PVFormula = "CURIE"

	// FormulaCODE renders the identifier with its namespace prefix stripped.
	FormulaCODE PVFormula = "CODE"

	// FormulaLABEL renders the node's label.
	FormulaLABEL PVFormula = "LABEL"
)

// ReachableFromQuery describes one graph-traversal leaf: the set of nodes
// reachable from the seeds along the given relationship types.
type ReachableFromQuery struct {
	// SourceOntology is the resolver key naming which backend answers
	// this query.
	SourceOntology string `yaml:"source_ontology,omitempty" json:"source_ontology,omitempty"`

	// SourceNodes are the seed identifiers. Must be non-empty.
	SourceNodes []string `yaml:"source_nodes" json:"source_nodes"`

	// RelationshipTypes are the predicates to follow. Empty means the
	// backend default (typically subclass/is-a).
	RelationshipTypes []string `yaml:"relationship_types,omitempty" json:"relationship_types,omitempty"`

	// IsDirect limits the query to direct relationships instead of the
	// transitive closure.
	IsDirect bool `yaml:"is_direct,omitempty" json:"is_direct,omitempty"`

	// IncludeSelf includes the seed nodes in the result.
	IncludeSelf bool `yaml:"include_self,omitempty" json:"include_self,omitempty"`

	// TraverseUp walks towards ancestors when true (the default) and
	// towards descendants when false. Pointer so that an absent key is
	// distinguishable from an explicit false.
	TraverseUp *bool `yaml:"traverse_up,omitempty" json:"traverse_up,omitempty"`
}

// Ancestors reports whether the query walks towards ancestors.
func (q *ReachableFromQuery) Ancestors() bool {
	return q.TraverseUp == nil || *q.TraverseUp
}

// Validate checks the query's structural invariants.
func (q *ReachableFromQuery) Validate() error {
	if len(q.SourceNodes) == 0 {
		return fmt.Errorf("reachable_from requires at least one source node")
	}
	return nil
}

// PermissibleValue is a literal, pre-rendered value-set entry. It bypasses
// the renderer and is emitted verbatim.
type PermissibleValue struct {
	Text        string `yaml:"text,omitempty" json:"text,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Meaning is the identifier the value denotes, when known. It is also
	// the identity used for deduplication and subtraction.
	Meaning string `yaml:"meaning,omitempty" json:"meaning,omitempty"`
}

// SetExpression is a tagged union: exactly one of the variant fields is
// populated. Validate enforces the invariant at load time.
type SetExpression struct {
	// ReachableFrom is a graph-traversal query leaf.
	ReachableFrom *ReachableFromQuery `yaml:"reachable_from,omitempty" json:"reachable_from,omitempty"`

	// Concepts is a literal set of identifiers.
	Concepts []string `yaml:"concepts,omitempty" json:"concepts,omitempty"`

	// PermissibleValues is a literal set of pre-rendered entries keyed by
	// rendered key.
	PermissibleValues map[string]PermissibleValue `yaml:"permissible_values,omitempty" json:"permissible_values,omitempty"`

	// Inherits names another EnumSpec whose resolved set is unioned in.
	Inherits string `yaml:"inherits,omitempty" json:"inherits,omitempty"`
}

// Validate enforces the exactly-one-variant invariant.
func (e *SetExpression) Validate() error {
	populated := 0
	if e.ReachableFrom != nil {
		populated++
		if err := e.ReachableFrom.Validate(); err != nil {
			return err
		}
	}
	if len(e.Concepts) > 0 {
		populated++
	}
	if len(e.PermissibleValues) > 0 {
		populated++
	}
	if e.Inherits != "" {
		populated++
	}
	switch populated {
	case 0:
		return fmt.Errorf("set expression is empty: expected exactly one of reachable_from, concepts, permissible_values, inherits")
	case 1:
		return nil
	default:
		return fmt.Errorf("set expression populates %d variants: expected exactly one of reachable_from, concepts, permissible_values, inherits", populated)
	}
}

// EnumSpec is one named, immutable enum specification. Expansion is a
// pure read over the spec; nothing here is mutated after loading.
type EnumSpec struct {
	// Name is the enum's identity within the document. Set by the loader.
	Name string `yaml:"-" json:"-"`

	// EnumURI optionally identifies the enum globally.
	EnumURI string `yaml:"enum_uri,omitempty" json:"enum_uri,omitempty"`

	// PVFormula selects the key-rendering rule. Empty means CURIE.
	PVFormula PVFormula `yaml:"pv_formula,omitempty" json:"pv_formula,omitempty"`

	// CodeSet and CodeSetVersion are free-text provenance, not evaluated.
	CodeSet        string `yaml:"code_set,omitempty" json:"code_set,omitempty"`
	CodeSetVersion string `yaml:"code_set_version,omitempty" json:"code_set_version,omitempty"`

	// Inherits names base enums whose resolved sets are unioned before
	// local combinators apply.
	Inherits []string `yaml:"inherits,omitempty" json:"inherits,omitempty"`

	// ReachableFrom is a top-level traversal query, equivalent to one more
	// include term.
	ReachableFrom *ReachableFromQuery `yaml:"reachable_from,omitempty" json:"reachable_from,omitempty"`

	// Include are additional union terms.
	Include []SetExpression `yaml:"include,omitempty" json:"include,omitempty"`

	// Minus are subtraction terms, applied last to the union of
	// everything preceding them.
	Minus []SetExpression `yaml:"minus,omitempty" json:"minus,omitempty"`

	// Concepts are literal identifiers, unioned.
	Concepts []string `yaml:"concepts,omitempty" json:"concepts,omitempty"`

	// PermissibleValues are literal entries, unioned verbatim.
	PermissibleValues map[string]PermissibleValue `yaml:"permissible_values,omitempty" json:"permissible_values,omitempty"`
}

// Formula returns the effective pv_formula, applying the CURIE default.
func (s *EnumSpec) Formula() PVFormula {
	if s.PVFormula == "" {
		return FormulaCURIE
	}
	return s.PVFormula
}

// Intentional reports whether the spec has any dynamic content, i.e.
// anything beyond a literal permissible_values listing.
func (s *EnumSpec) Intentional() bool {
	return len(s.Inherits) > 0 ||
		s.ReachableFrom != nil ||
		len(s.Include) > 0 ||
		len(s.Minus) > 0 ||
		len(s.Concepts) > 0
}

// Validate checks the spec's structural invariants.
func (s *EnumSpec) Validate() error {
	switch s.Formula() {
	case FormulaCURIE, FormulaCODE, FormulaLABEL:
	default:
		return fmt.Errorf("unknown pv_formula: %q", s.PVFormula)
	}
	if s.ReachableFrom != nil {
		if err := s.ReachableFrom.Validate(); err != nil {
			return err
		}
	}
	for i := range s.Include {
		if err := s.Include[i].Validate(); err != nil {
			return fmt.Errorf("include[%d]: %w", i, err)
		}
	}
	for i := range s.Minus {
		if err := s.Minus[i].Validate(); err != nil {
			return fmt.Errorf("minus[%d]: %w", i, err)
		}
	}
	return nil
}
