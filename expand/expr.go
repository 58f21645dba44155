// Package expand implements the value-set expansion engine: it resolves a
// named enum specification into a closed boolean expression tree, evaluates
// the tree against ontology backends with set algebra, and renders the
// result into an ordered permissible-value list.
package expand

import (
	"github.com/ontokit/vskit/render"
	"github.com/ontokit/vskit/schema"
)

// Expr is a node in a resolved expression tree. The variant set is closed
// so the evaluator can match exhaustively.
type Expr interface {
	isExpr()
}

// QueryExpr is a graph-traversal leaf.
type QueryExpr struct {
	// Enum names the spec the query came from, for error context.
	Enum  string
	Query *schema.ReachableFromQuery
}

// ConceptsExpr is a literal identifier-set leaf.
type ConceptsExpr struct {
	IDs []string
}

// LiteralExpr is a literal permissible-value leaf. Entries are already
// rendered and bypass the renderer.
type LiteralExpr struct {
	Values []render.Record
}

// UnionExpr is the set union of its terms, in declared order.
type UnionExpr struct {
	Terms []Expr
}

// MinusExpr subtracts each Subtract branch's set from the Base set.
type MinusExpr struct {
	Base     Expr
	Subtract []Expr
}

func (*QueryExpr) isExpr()    {}
func (*ConceptsExpr) isExpr() {}
func (*LiteralExpr) isExpr()  {}
func (*UnionExpr) isExpr()    {}
func (*MinusExpr) isExpr()    {}
