package api

import (
	"encoding/json"

	"github.com/cockroachdb/errors"

	"github.com/example/docsql/internal/exec"
	"github.com/example/docsql/internal/sql/parser"
)

// StatementMeta summarises a prepared statement for tooling integration.
type StatementMeta struct {
	Statement string       `json:"statement"`
	Source    SourceMeta   `json:"source"`
	Columns   []ColumnMeta `json:"columns"`
	Where     *string      `json:"where"`
	GroupBy   []string     `json:"groupBy"`
	Aggregate bool         `json:"aggregate"`
}

// SourceMeta describes the FROM clause.
type SourceMeta struct {
	Name string `json:"name"`
	All  bool   `json:"all"`
}

// ColumnMeta describes one select-list entry.
type ColumnMeta struct {
	Name     string  `json:"name"`
	Kind     string  `json:"kind"`
	Function *string `json:"function,omitempty"`
	Argument *string `json:"argument,omitempty"`
	Literal  *string `json:"literal,omitempty"`
}

// Column kinds reported by Describe.
const (
	ColumnKindWildcard  = "wildcard"
	ColumnKindAttribute = "attribute"
	ColumnKindLiteral   = "literal"
	ColumnKindAggregate = "aggregate"
)

// Describe gathers metadata for the statement.
func (s *Statement) Describe() StatementMeta {
	meta := StatementMeta{
		Statement: s.String(),
		Source: SourceMeta{
			Name: s.stmt.Source.Name,
			All:  s.stmt.Source.IsAll(),
		},
		Columns:   make([]ColumnMeta, len(s.stmt.Columns)),
		GroupBy:   []string{},
		Aggregate: s.stmt.HasAggregate(),
	}
	for i, col := range s.stmt.Columns {
		meta.Columns[i] = buildColumnMeta(col, s.columns[i])
	}
	if s.stmt.Where != nil {
		where := parser.FormatExpression(s.stmt.Where)
		meta.Where = &where
	}
	if s.stmt.GroupBy != nil {
		meta.GroupBy = append(meta.GroupBy, s.stmt.GroupBy.Columns...)
	}
	return meta
}

// MetadataJSON returns the statement metadata encoded as JSON.
func (s *Statement) MetadataJSON() ([]byte, error) {
	data, err := json.Marshal(s.Describe())
	if err != nil {
		return nil, errors.Wrap(err, "api: encode statement metadata")
	}
	return data, nil
}

func buildColumnMeta(col parser.ColumnSpec, name string) ColumnMeta {
	meta := ColumnMeta{Name: name}
	switch c := col.(type) {
	case *parser.Wildcard:
		meta.Kind = ColumnKindWildcard
	case *parser.AttributeRef:
		meta.Kind = ColumnKindAttribute
	case *parser.LiteralColumn:
		meta.Kind = ColumnKindLiteral
		literal := c.Literal.Value
		meta.Literal = &literal
	case *parser.Aggregate:
		meta.Kind = ColumnKindAggregate
		fn := string(c.Func)
		arg := parser.ColumnName(c.Arg)
		meta.Function = &fn
		meta.Argument = &arg
	}
	return meta
}

// ExplainPayload is the JSON shape of an explained statement.
type ExplainPayload struct {
	Version int            `json:"version"`
	Plan    *exec.PlanNode `json:"plan"`
	Text    string         `json:"text"`
}

const explainVersion = 1

// ExplainJSON returns the operator tree encoded as JSON, together with its
// text rendering.
func (s *Statement) ExplainJSON() ([]byte, error) {
	plan, err := s.Explain()
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(ExplainPayload{
		Version: explainVersion,
		Plan:    plan.Root,
		Text:    plan.String(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "api: encode plan")
	}
	return data, nil
}
