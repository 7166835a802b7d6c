package validator

import (
	"fmt"

	"github.com/example/docsql/internal/sql/parser"
)

// GroupByProjectionMessage is the diagnostic for select-list entries that are
// neither aggregated, constant, nor grouped.
const GroupByProjectionMessage = "Only columns from the group by clause are allowed in the select clause"

// ValidationError reports a semantic rule violation. Column names the
// offending select-list entry; it is not part of the message.
type ValidationError struct {
	Column  string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ValidateSelect checks a parsed statement once, before it can be executed.
// Statements built by the parser always satisfy the structural checks; they
// guard ASTs assembled by hand.
func ValidateSelect(stmt *parser.SelectStatement) error {
	if stmt == nil {
		return fmt.Errorf("validator: statement is nil")
	}
	if len(stmt.Columns) == 0 {
		return fmt.Errorf("validator: SELECT list cannot be empty")
	}
	for _, col := range stmt.Columns {
		if err := validateColumn(col); err != nil {
			return err
		}
	}
	if stmt.Where != nil {
		if err := validateExpression(stmt.Where); err != nil {
			return err
		}
	}
	if stmt.GroupBy != nil {
		return validateGroupBy(stmt)
	}
	return nil
}

func validateGroupBy(stmt *parser.SelectStatement) error {
	if len(stmt.GroupBy.Columns) == 0 {
		return fmt.Errorf("validator: GROUP BY list cannot be empty")
	}
	for _, col := range stmt.Columns {
		switch c := col.(type) {
		case *parser.Aggregate, *parser.LiteralColumn:
		case *parser.AttributeRef:
			if !stmt.GroupBy.Contains(c.Name) {
				return &ValidationError{Column: c.Name, Message: GroupByProjectionMessage}
			}
		default:
			return &ValidationError{Column: parser.ColumnName(col), Message: GroupByProjectionMessage}
		}
	}
	return nil
}

func validateColumn(col parser.ColumnSpec) error {
	switch c := col.(type) {
	case *parser.Wildcard, *parser.LiteralColumn:
		return nil
	case *parser.AttributeRef:
		if c.Name == "" {
			return fmt.Errorf("validator: attribute name cannot be empty")
		}
		return nil
	case *parser.Aggregate:
		switch arg := c.Arg.(type) {
		case *parser.Wildcard:
			if c.Func != parser.AggregateCount {
				return fmt.Errorf("validator: %s requires an attribute argument", c.Func)
			}
		case *parser.AttributeRef:
			if arg.Name == "" {
				return fmt.Errorf("validator: attribute name cannot be empty")
			}
		default:
			return fmt.Errorf("validator: unsupported %s argument %T", c.Func, c.Arg)
		}
		return nil
	default:
		return fmt.Errorf("validator: unsupported column %T", col)
	}
}

func validateExpression(node parser.BooleanExpression) error {
	switch e := node.(type) {
	case *parser.Comparison:
		if e.Op != parser.ComparisonEqual {
			return fmt.Errorf("validator: unsupported comparison operator %q", e.Op)
		}
		return nil
	case *parser.NullCheck:
		return nil
	case *parser.BooleanExpr:
		if e.Left == nil || e.Right == nil {
			return fmt.Errorf("validator: %s requires two operands", e.Op)
		}
		if err := validateExpression(e.Left); err != nil {
			return err
		}
		return validateExpression(e.Right)
	default:
		return fmt.Errorf("validator: unsupported expression %T", node)
	}
}
