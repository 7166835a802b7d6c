package parser

import "strings"

// AllSource is the table name that selects every entity.
const AllSource = "document"

// SelectStatement models SELECT ... FROM ... [WHERE ...] [GROUP BY ...]. It is
// never modified after Parse returns.
type SelectStatement struct {
	Columns []ColumnSpec
	Source  SourceRef
	Where   BooleanExpression
	GroupBy *GroupBy
}

// HasAggregate reports whether any column is an aggregate call.
func (s *SelectStatement) HasAggregate() bool {
	for _, col := range s.Columns {
		if _, ok := col.(*Aggregate); ok {
			return true
		}
	}
	return false
}

// SourceRef is the FROM target.
type SourceRef struct {
	Name string
}

// IsAll reports whether the source denotes every entity.
func (s SourceRef) IsAll() bool {
	return strings.EqualFold(s.Name, AllSource)
}

// GroupBy lists grouping attributes in first-mention order without duplicates.
type GroupBy struct {
	Columns []string
}

// Contains reports whether name is one of the grouping attributes.
func (g *GroupBy) Contains(name string) bool {
	if g == nil {
		return false
	}
	for _, col := range g.Columns {
		if col == name {
			return true
		}
	}
	return false
}

// ColumnSpec is one entry of the select list.
type ColumnSpec interface {
	columnSpec()
}

// Wildcard projects the whole entity.
type Wildcard struct{}

func (*Wildcard) columnSpec() {}

// AttributeRef projects a named attribute.
type AttributeRef struct {
	Name string
}

func (*AttributeRef) columnSpec() {}

// LiteralColumn projects a constant.
type LiteralColumn struct {
	Literal Literal
}

func (*LiteralColumn) columnSpec() {}

// AggregateFunc enumerates the aggregate functions.
type AggregateFunc string

const (
	AggregateSum   AggregateFunc = "SUM"
	AggregateCount AggregateFunc = "COUNT"
	AggregateMin   AggregateFunc = "MIN"
	AggregateMax   AggregateFunc = "MAX"
)

func aggregateFuncFor(keyword string) (AggregateFunc, bool) {
	switch fn := AggregateFunc(keyword); fn {
	case AggregateSum, AggregateCount, AggregateMin, AggregateMax:
		return fn, true
	default:
		return "", false
	}
}

// Aggregate applies Func over a group. Arg is *Wildcard (COUNT only) or
// *AttributeRef.
type Aggregate struct {
	Func AggregateFunc
	Arg  ColumnSpec
}

func (*Aggregate) columnSpec() {}

// LiteralKind identifies literal types.
type LiteralKind int

const (
	LiteralNumber LiteralKind = iota
	LiteralString
)

// Literal captures a literal value in its source form.
type Literal struct {
	Kind  LiteralKind
	Value string
}

// BooleanExpression is a node of the WHERE tree.
type BooleanExpression interface {
	boolExpr()
}

// ComparisonOp enumerates comparison operators.
type ComparisonOp string

const (
	ComparisonEqual ComparisonOp = "="
)

// Comparison compares an attribute against a literal.
type Comparison struct {
	Attribute string
	Op        ComparisonOp
	Value     Literal
}

func (*Comparison) boolExpr() {}

// NullCheck tests an attribute for the "no value" state, optionally negated.
type NullCheck struct {
	Attribute string
	Negated   bool
}

func (*NullCheck) boolExpr() {}

// BooleanOp enumerates logical operators.
type BooleanOp string

const (
	BooleanAnd BooleanOp = "AND"
	BooleanOr  BooleanOp = "OR"
)

// BooleanExpr combines two expressions with AND/OR.
type BooleanExpr struct {
	Left  BooleanExpression
	Right BooleanExpression
	Op    BooleanOp
}

func (*BooleanExpr) boolExpr() {}
