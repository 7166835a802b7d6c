package exec

import (
	"fmt"

	"github.com/example/docsql/internal/sql/expr"
	"github.com/example/docsql/internal/sql/parser"
)

// AllSupplier returns every entity known to the host.
type AllSupplier func() []expr.Entity

// NameSupplier returns the entities matching a source name. It may return
// zero, one or many entities.
type NameSupplier func(name string) []expr.Entity

// Row holds one value per select-list entry.
type Row []expr.Value

// Result describes the outcome of executing a SELECT statement.
type Result struct {
	Columns []string
	Rows    []Row
}

// Executor evaluates parsed statements against the host suppliers. It keeps
// no state between calls; every Execute re-reads the suppliers.
type Executor struct {
	all    AllSupplier
	byName NameSupplier
}

// New creates an executor for the given suppliers.
func New(all AllSupplier, byName NameSupplier) *Executor {
	return &Executor{all: all, byName: byName}
}

// Execute runs a validated statement. The statement is only read.
func (e *Executor) Execute(stmt *parser.SelectStatement) (*Result, error) {
	if stmt == nil {
		return nil, fmt.Errorf("exec: statement is nil")
	}
	predicate, err := compileFilter(stmt.Where)
	if err != nil {
		return nil, err
	}
	projections, err := compileColumns(stmt.Columns)
	if err != nil {
		return nil, err
	}

	entities, err := e.resolveSource(stmt.Source)
	if err != nil {
		return nil, err
	}
	filtered := make([]expr.Entity, 0, len(entities))
	for _, entity := range entities {
		if predicate(entity) {
			filtered = append(filtered, entity)
		}
	}

	var rows []Row
	if stmt.HasAggregate() {
		rows, err = aggregateRows(projections, groupEntities(filtered, stmt.GroupBy))
		if err != nil {
			return nil, err
		}
	} else {
		rows = make([]Row, len(filtered))
		for i, entity := range filtered {
			rows[i] = projectEntity(projections, entity)
		}
	}

	return &Result{Columns: parser.ColumnNames(stmt), Rows: rows}, nil
}

func (e *Executor) resolveSource(source parser.SourceRef) ([]expr.Entity, error) {
	var entities []expr.Entity
	if source.IsAll() {
		if e.all == nil {
			return nil, fmt.Errorf("exec: no supplier configured for all entities")
		}
		entities = e.all()
	} else {
		if e.byName == nil {
			return nil, fmt.Errorf("exec: no supplier configured for source %q", source.Name)
		}
		entities = e.byName(source.Name)
	}
	out := make([]expr.Entity, 0, len(entities))
	for _, entity := range entities {
		if entity != nil {
			out = append(out, entity)
		}
	}
	return out, nil
}

// attribute looks up name on entity; absence degrades to null.
func attribute(entity expr.Entity, name string) expr.Value {
	value, ok := entity.Attribute(name)
	if !ok {
		return expr.Null()
	}
	return value
}

// projection computes one output column.
type projection struct {
	column   parser.ColumnSpec
	constant expr.Value
}

func compileColumns(columns []parser.ColumnSpec) ([]projection, error) {
	out := make([]projection, len(columns))
	for i, col := range columns {
		out[i] = projection{column: col}
		if lit, ok := col.(*parser.LiteralColumn); ok {
			value, err := literalValue(lit.Literal)
			if err != nil {
				return nil, err
			}
			out[i].constant = value
		}
	}
	return out, nil
}

// valueFor evaluates a non-aggregate column against an entity.
func (p projection) valueFor(entity expr.Entity) expr.Value {
	switch c := p.column.(type) {
	case *parser.Wildcard:
		return expr.EntityRef(entity)
	case *parser.AttributeRef:
		return attribute(entity, c.Name)
	default:
		return p.constant
	}
}

func projectEntity(projections []projection, entity expr.Entity) Row {
	row := make(Row, len(projections))
	for i, p := range projections {
		row[i] = p.valueFor(entity)
	}
	return row
}

func literalValue(lit parser.Literal) (expr.Value, error) {
	switch lit.Kind {
	case parser.LiteralString:
		return expr.String(lit.Value), nil
	case parser.LiteralNumber:
		value, err := expr.ParseNumber(lit.Value)
		if err != nil {
			return expr.Value{}, fmt.Errorf("exec: %w", err)
		}
		return value, nil
	default:
		return expr.Value{}, fmt.Errorf("exec: unsupported literal kind %d", lit.Kind)
	}
}
