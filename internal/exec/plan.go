package exec

import (
	"fmt"
	"sort"
	"strings"

	"github.com/example/docsql/internal/sql/parser"
)

// Plan describes a tree of executor operations produced for a SQL statement.
type Plan struct {
	Root *PlanNode `json:"root"`
}

// PlanNode is an individual operator in the execution tree.
type PlanNode struct {
	Name     string                 `json:"name"`
	Detail   map[string]interface{} `json:"detail,omitempty"`
	Children []*PlanNode            `json:"children,omitempty"`
}

// newPlan creates a plan with the provided root node.
func newPlan(name string, detail map[string]interface{}) *Plan {
	return &Plan{Root: &PlanNode{Name: name, Detail: detail}}
}

// Explain describes how Execute would evaluate the statement without calling
// any supplier.
func (e *Executor) Explain(stmt *parser.SelectStatement) (*Plan, error) {
	if stmt == nil {
		return nil, fmt.Errorf("exec: statement is nil")
	}
	plan := newPlan("Project", map[string]interface{}{"columns": parser.ColumnNames(stmt)})
	current := plan.Root

	if stmt.HasAggregate() {
		functions := make([]string, 0, len(stmt.Columns))
		for _, col := range stmt.Columns {
			if _, ok := col.(*parser.Aggregate); ok {
				functions = append(functions, parser.FormatColumn(col))
			}
		}
		detail := map[string]interface{}{"functions": functions}
		if stmt.GroupBy != nil {
			detail["groupBy"] = append([]string(nil), stmt.GroupBy.Columns...)
		} else {
			detail["emptyInput"] = "no rows"
		}
		node := &PlanNode{Name: "Aggregate", Detail: detail}
		current.Children = append(current.Children, node)
		current = node
	}
	if stmt.Where != nil {
		node := &PlanNode{Name: "Filter", Detail: map[string]interface{}{"condition": parser.FormatExpression(stmt.Where)}}
		current.Children = append(current.Children, node)
		current = node
	}
	scan := &PlanNode{Name: "Scan", Detail: map[string]interface{}{"source": stmt.Source.Name}}
	if stmt.Source.IsAll() {
		scan.Detail["mode"] = "all"
	} else {
		scan.Detail["mode"] = "by-name"
	}
	current.Children = append(current.Children, scan)
	return plan, nil
}

// String renders the plan as an indented tree, one operator per line.
func (p *Plan) String() string {
	if p == nil || p.Root == nil {
		return ""
	}
	var sb strings.Builder
	writePlanNode(&sb, p.Root, 0)
	return strings.TrimRight(sb.String(), "\n")
}

func writePlanNode(sb *strings.Builder, node *PlanNode, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(node.Name)
	if len(node.Detail) > 0 {
		keys := make([]string, 0, len(node.Detail))
		for key := range node.Detail {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, key := range keys {
			parts[i] = fmt.Sprintf("%s=%v", key, node.Detail[key])
		}
		sb.WriteString(" (" + strings.Join(parts, ", ") + ")")
	}
	sb.WriteByte('\n')
	for _, child := range node.Children {
		writePlanNode(sb, child, depth+1)
	}
}
