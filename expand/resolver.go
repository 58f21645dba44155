package expand

import (
	"sort"

	"github.com/ontokit/vskit/render"
	"github.com/ontokit/vskit/schema"
)

// Resolve produces the closed expression tree for one named enum: all
// inherits references are inlined recursively, with cycle detection over
// the resolution path. Pure function over the document's spec table.
//
// Resolution order: inherits bases first, then include terms,
// then literal concepts and permissible_values, finally minus applied to
// the union of everything preceding it.
func Resolve(doc *schema.Document, name string) (Expr, error) {
	r := &resolver{
		enums:  doc.Enums,
		onPath: make(map[string]bool),
	}
	return r.resolve("", name)
}

type resolver struct {
	enums  map[string]*schema.EnumSpec
	path   []string
	onPath map[string]bool
}

func (r *resolver) resolve(from, name string) (Expr, error) {
	if r.onPath[name] {
		// Report the cycle from its first occurrence on the path.
		start := 0
		for i, n := range r.path {
			if n == name {
				start = i
				break
			}
		}
		cycle := append(append([]string(nil), r.path[start:]...), name)
		return nil, &CyclicDefinitionError{Cycle: cycle}
	}

	spec, ok := r.enums[name]
	if !ok {
		return nil, &UnknownEnumReferenceError{Enum: from, Ref: name}
	}

	r.path = append(r.path, name)
	r.onPath[name] = true
	defer func() {
		r.path = r.path[:len(r.path)-1]
		delete(r.onPath, name)
	}()

	var union []Expr

	for _, base := range spec.Inherits {
		e, err := r.resolve(name, base)
		if err != nil {
			return nil, err
		}
		union = append(union, e)
	}

	if spec.ReachableFrom != nil {
		union = append(union, &QueryExpr{Enum: name, Query: spec.ReachableFrom})
	}

	for i := range spec.Include {
		e, err := r.fromSet(name, &spec.Include[i])
		if err != nil {
			return nil, err
		}
		union = append(union, e)
	}

	if len(spec.Concepts) > 0 {
		union = append(union, &ConceptsExpr{IDs: spec.Concepts})
	}
	if len(spec.PermissibleValues) > 0 {
		union = append(union, &LiteralExpr{Values: literalRecords(spec.PermissibleValues)})
	}

	var base Expr
	switch len(union) {
	case 0:
		base = &UnionExpr{}
	case 1:
		base = union[0]
	default:
		base = &UnionExpr{Terms: union}
	}

	if len(spec.Minus) == 0 {
		return base, nil
	}

	subtract := make([]Expr, 0, len(spec.Minus))
	for i := range spec.Minus {
		e, err := r.fromSet(name, &spec.Minus[i])
		if err != nil {
			return nil, err
		}
		subtract = append(subtract, e)
	}
	return &MinusExpr{Base: base, Subtract: subtract}, nil
}

// fromSet converts one SetExpression variant to a tree node, resolving
// inherits references recursively.
func (r *resolver) fromSet(enum string, e *schema.SetExpression) (Expr, error) {
	switch {
	case e.ReachableFrom != nil:
		return &QueryExpr{Enum: enum, Query: e.ReachableFrom}, nil
	case len(e.Concepts) > 0:
		return &ConceptsExpr{IDs: e.Concepts}, nil
	case len(e.PermissibleValues) > 0:
		return &LiteralExpr{Values: literalRecords(e.PermissibleValues)}, nil
	case e.Inherits != "":
		return r.resolve(enum, e.Inherits)
	default:
		// Validated at load time; an empty expression contributes nothing.
		return &UnionExpr{}, nil
	}
}

// literalRecords converts a literal permissible_values mapping into
// records, in key order so the tree is deterministic.
func literalRecords(values map[string]schema.PermissibleValue) []render.Record {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	records := make([]render.Record, 0, len(keys))
	for _, k := range keys {
		pv := values[k]
		text := pv.Text
		if text == "" {
			text = k
		}
		records = append(records, render.Record{
			Key:         k,
			Text:        text,
			Description: pv.Description,
			Meaning:     pv.Meaning,
		})
	}
	return records
}
