package exec

import (
	"fmt"

	"github.com/example/docsql/internal/sql/expr"
	"github.com/example/docsql/internal/sql/parser"
)

// predicate decides whether an entity passes the WHERE clause.
type predicate func(entity expr.Entity) bool

func acceptAll(expr.Entity) bool { return true }

// compileFilter turns the WHERE tree into a predicate, converting each literal
// once. Leaves resolve to plain true/false; AND/OR use two-valued logic.
func compileFilter(node parser.BooleanExpression) (predicate, error) {
	if node == nil {
		return acceptAll, nil
	}
	switch n := node.(type) {
	case *parser.Comparison:
		return compileComparison(n)
	case *parser.NullCheck:
		name, negated := n.Attribute, n.Negated
		return func(entity expr.Entity) bool {
			return attribute(entity, name).IsNull() != negated
		}, nil
	case *parser.BooleanExpr:
		left, err := compileFilter(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := compileFilter(n.Right)
		if err != nil {
			return nil, err
		}
		switch n.Op {
		case parser.BooleanAnd:
			return func(entity expr.Entity) bool {
				return left(entity) && right(entity)
			}, nil
		case parser.BooleanOr:
			return func(entity expr.Entity) bool {
				return left(entity) || right(entity)
			}, nil
		default:
			return nil, fmt.Errorf("exec: unsupported boolean operator %s", n.Op)
		}
	default:
		return nil, fmt.Errorf("exec: unsupported expression %T", node)
	}
}

// compileComparison builds an equality test. A missing or null attribute
// never matches.
func compileComparison(cmp *parser.Comparison) (predicate, error) {
	want, err := literalValue(cmp.Value)
	if err != nil {
		return nil, err
	}
	name := cmp.Attribute
	switch cmp.Op {
	case parser.ComparisonEqual:
		return func(entity expr.Entity) bool {
			return attribute(entity, name).Equal(want)
		}, nil
	default:
		return nil, fmt.Errorf("exec: unsupported comparison operator %s", cmp.Op)
	}
}
