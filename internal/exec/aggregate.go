package exec

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/example/docsql/internal/sql/expr"
	"github.com/example/docsql/internal/sql/parser"
)

// group is a set of filtered entities sharing the same GROUP BY key. Members
// keep source order.
type group struct {
	members []expr.Entity
}

// groupEntities partitions entities by the grouping attributes, ordering the
// groups by first occurrence. Without GROUP BY a non-empty input forms one
// implicit group and an empty input forms none.
func groupEntities(entities []expr.Entity, groupBy *parser.GroupBy) []*group {
	if len(entities) == 0 {
		return nil
	}
	if groupBy == nil || len(groupBy.Columns) == 0 {
		return []*group{{members: entities}}
	}
	index := make(map[string]*group)
	var ordered []*group
	for _, entity := range entities {
		key := groupKey(entity, groupBy.Columns)
		g, ok := index[key]
		if !ok {
			g = &group{}
			index[key] = g
			ordered = append(ordered, g)
		}
		g.members = append(g.members, entity)
	}
	return ordered
}

func groupKey(entity expr.Entity, columns []string) string {
	var sb strings.Builder
	for i, col := range columns {
		if i > 0 {
			sb.WriteByte(0)
		}
		sb.WriteString(attribute(entity, col).Key())
	}
	return sb.String()
}

// aggregateRows emits one row per group. Non-aggregate columns take their
// value from the group's first entity, which for grouping columns is the
// shared key value.
func aggregateRows(projections []projection, groups []*group) ([]Row, error) {
	rows := make([]Row, 0, len(groups))
	for _, g := range groups {
		row := make(Row, len(projections))
		for i, p := range projections {
			if agg, ok := p.column.(*parser.Aggregate); ok {
				value, err := evaluateAggregate(agg, g.members)
				if err != nil {
					return nil, err
				}
				row[i] = value
				continue
			}
			row[i] = p.valueFor(g.members[0])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func evaluateAggregate(agg *parser.Aggregate, members []expr.Entity) (expr.Value, error) {
	ref, isAttribute := agg.Arg.(*parser.AttributeRef)
	if !isAttribute {
		if agg.Func != parser.AggregateCount {
			return expr.Value{}, fmt.Errorf("exec: %s requires an attribute argument", agg.Func)
		}
		return expr.Int(int64(len(members))), nil
	}

	values := make([]expr.Value, 0, len(members))
	for _, entity := range members {
		if value := attribute(entity, ref.Name); !value.IsNull() {
			values = append(values, value)
		}
	}

	switch agg.Func {
	case parser.AggregateCount:
		return expr.Int(int64(len(values))), nil
	case parser.AggregateSum:
		return sumValues(agg, values)
	case parser.AggregateMin:
		return extremeValue(agg, values, -1)
	case parser.AggregateMax:
		return extremeValue(agg, values, 1)
	default:
		return expr.Value{}, fmt.Errorf("exec: unsupported aggregate %s", agg.Func)
	}
}

func sumValues(agg *parser.Aggregate, values []expr.Value) (expr.Value, error) {
	if len(values) == 0 {
		return expr.Null(), nil
	}
	total := decimal.Zero
	for _, value := range values {
		d, ok := value.Decimal()
		if !ok {
			return expr.Value{}, fmt.Errorf("exec: %s requires numeric values but found %s %q", parser.ColumnName(agg), value.Kind(), value.String())
		}
		total = total.Add(d)
	}
	return expr.Number(total), nil
}

// extremeValue returns the minimum (want < 0) or maximum (want > 0) of values,
// which must all be numbers or all be strings.
func extremeValue(agg *parser.Aggregate, values []expr.Value, want int) (expr.Value, error) {
	if len(values) == 0 {
		return expr.Null(), nil
	}
	best := values[0]
	for _, value := range values[1:] {
		cmp, ok := value.Compare(best)
		if !ok {
			return expr.Value{}, fmt.Errorf("exec: %s cannot compare %s with %s", parser.ColumnName(agg), value.Kind(), best.Kind())
		}
		if cmp*want > 0 {
			best = value
		}
	}
	if best.Kind() == expr.KindEntity {
		return expr.Value{}, fmt.Errorf("exec: %s cannot order entity values", parser.ColumnName(agg))
	}
	return best, nil
}
