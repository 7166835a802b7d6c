package parser

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/example/docsql/internal/sql/lexer"
)

// ColumnNames derives the display name of every select-list entry from the
// AST alone. Attribute references keep their name, literals render their
// value, and wildcard/aggregate columns use their canonical SQL text. A
// derived name that repeats an earlier one gets a ":n" suffix.
func ColumnNames(stmt *SelectStatement) []string {
	names := make([]string, len(stmt.Columns))
	seen := make(map[string]int, len(stmt.Columns))
	for i, col := range stmt.Columns {
		name := ColumnName(col)
		switch col.(type) {
		case *Wildcard, *Aggregate:
			if n := seen[name]; n > 0 {
				base := name
				for {
					n++
					name = base + ":" + strconv.Itoa(n)
					if seen[name] == 0 {
						break
					}
				}
				seen[base] = n
			}
		}
		seen[name]++
		names[i] = name
	}
	return names
}

// ColumnName renders the display name of a single column.
func ColumnName(col ColumnSpec) string {
	switch c := col.(type) {
	case *Wildcard:
		return "*"
	case *AttributeRef:
		return c.Name
	case *LiteralColumn:
		if c.Literal.Kind == LiteralNumber {
			return formatNumber(c.Literal.Value)
		}
		return c.Literal.Value
	case *Aggregate:
		return string(c.Func) + "(" + ColumnName(c.Arg) + ")"
	default:
		return "?"
	}
}

// FormatStatement renders the statement as canonical SQL.
func FormatStatement(stmt *SelectStatement) string {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	for i, col := range stmt.Columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(FormatColumn(col))
	}
	sb.WriteString(" FROM ")
	sb.WriteString(formatIdentifier(stmt.Source.Name))
	if stmt.Where != nil {
		sb.WriteString(" WHERE ")
		sb.WriteString(FormatExpression(stmt.Where))
	}
	if stmt.GroupBy != nil {
		sb.WriteString(" GROUP BY ")
		for i, col := range stmt.GroupBy.Columns {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(formatIdentifier(col))
		}
	}
	return sb.String()
}

// FormatColumn renders a select-list entry as SQL.
func FormatColumn(col ColumnSpec) string {
	switch c := col.(type) {
	case *Wildcard:
		return "*"
	case *AttributeRef:
		return formatIdentifier(c.Name)
	case *LiteralColumn:
		return formatLiteral(c.Literal)
	case *Aggregate:
		return string(c.Func) + "(" + FormatColumn(c.Arg) + ")"
	default:
		return "<column>"
	}
}

// FormatExpression renders a WHERE tree. Parentheses are emitted only where
// the tree shape differs from what precedence alone would produce.
func FormatExpression(expr BooleanExpression) string {
	return formatExpressionWithPrecedence(expr, lowestPrecedence)
}

const (
	lowestPrecedence = 0
	orPrecedence     = 1
	andPrecedence    = 2
	atomPrecedence   = 3
)

func formatExpressionWithPrecedence(expr BooleanExpression, parent int) string {
	switch e := expr.(type) {
	case *Comparison:
		return formatIdentifier(e.Attribute) + " " + string(e.Op) + " " + formatLiteral(e.Value)
	case *NullCheck:
		text := formatIdentifier(e.Attribute) + " IS"
		if e.Negated {
			text += " NOT"
		}
		return text + " NULL"
	case *BooleanExpr:
		prec := precedenceForBoolean(e.Op)
		left := formatExpressionWithPrecedence(e.Left, prec)
		right := formatExpressionWithPrecedence(e.Right, prec+1)
		text := left + " " + string(e.Op) + " " + right
		if prec < parent {
			return "(" + text + ")"
		}
		return text
	default:
		return "<expr>"
	}
}

func precedenceForBoolean(op BooleanOp) int {
	switch op {
	case BooleanAnd:
		return andPrecedence
	case BooleanOr:
		return orPrecedence
	default:
		return atomPrecedence
	}
}

func formatLiteral(l Literal) string {
	switch l.Kind {
	case LiteralString:
		escaped := strings.ReplaceAll(l.Value, "'", "''")
		return "'" + escaped + "'"
	default:
		return formatNumber(l.Value)
	}
}

func formatNumber(text string) string {
	d, err := decimal.NewFromString(text)
	if err != nil {
		return text
	}
	return d.String()
}

func formatIdentifier(name string) string {
	if isPlainIdentifier(name) {
		return name
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func isPlainIdentifier(name string) bool {
	if name == "" || lexer.IsKeyword(name) {
		return false
	}
	for i, ch := range name {
		switch {
		case ch == '_', ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z':
		case ch >= '0' && ch <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
