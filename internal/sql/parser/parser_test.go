package parser_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/example/docsql/internal/sql/lexer"
	"github.com/example/docsql/internal/sql/parser"
)

func TestSelectProjectionParsing(t *testing.T) {
	stmt, err := parser.Parse("Select name, 42,'literal', * From document")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(stmt.Columns) != 4 {
		t.Fatalf("expected 4 columns, got %d", len(stmt.Columns))
	}
	if col, ok := stmt.Columns[0].(*parser.AttributeRef); !ok || col.Name != "name" {
		t.Fatalf("expected attribute reference name, got %T", stmt.Columns[0])
	}
	if lit, ok := stmt.Columns[1].(*parser.LiteralColumn); !ok || lit.Literal.Kind != parser.LiteralNumber || lit.Literal.Value != "42" {
		t.Fatalf("expected numeric literal 42, got %#v", stmt.Columns[1])
	}
	if lit, ok := stmt.Columns[2].(*parser.LiteralColumn); !ok || lit.Literal.Kind != parser.LiteralString || lit.Literal.Value != "literal" {
		t.Fatalf("expected string literal, got %#v", stmt.Columns[2])
	}
	if _, ok := stmt.Columns[3].(*parser.Wildcard); !ok {
		t.Fatalf("expected wildcard, got %T", stmt.Columns[3])
	}
	if !stmt.Source.IsAll() || stmt.Where != nil || stmt.GroupBy != nil {
		t.Fatalf("unexpected statement shape: %+v", stmt)
	}
}

func TestSourceNames(t *testing.T) {
	stmt, err := parser.Parse("Select * From DOCUMENT")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !stmt.Source.IsAll() {
		t.Fatalf("expected DOCUMENT to denote all entities")
	}
	stmt, err = parser.Parse("Select * From Wall")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if stmt.Source.IsAll() || stmt.Source.Name != "Wall" {
		t.Fatalf("expected named source Wall, got %+v", stmt.Source)
	}
}

func TestAggregateParsing(t *testing.T) {
	stmt, err := parser.Parse("select count(*), Sum(num), MIN(num), max(num), Count(role) from document")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []parser.AggregateFunc{parser.AggregateCount, parser.AggregateSum, parser.AggregateMin, parser.AggregateMax, parser.AggregateCount}
	for i, fn := range want {
		agg, ok := stmt.Columns[i].(*parser.Aggregate)
		if !ok || agg.Func != fn {
			t.Fatalf("column %d: expected %s aggregate, got %#v", i, fn, stmt.Columns[i])
		}
	}
	if _, ok := stmt.Columns[0].(*parser.Aggregate).Arg.(*parser.Wildcard); !ok {
		t.Fatalf("expected COUNT(*) wildcard argument")
	}
	if ref, ok := stmt.Columns[1].(*parser.Aggregate).Arg.(*parser.AttributeRef); !ok || ref.Name != "num" {
		t.Fatalf("expected SUM(num) attribute argument")
	}
	if !stmt.HasAggregate() {
		t.Fatalf("expected HasAggregate to report true")
	}
}

func TestWherePrecedence(t *testing.T) {
	stmt, err := parser.Parse("Select * From document Where role = 'space' or tag = 'inside' and num = 3")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	or, ok := stmt.Where.(*parser.BooleanExpr)
	if !ok || or.Op != parser.BooleanOr {
		t.Fatalf("expected OR at the root, got %#v", stmt.Where)
	}
	if cmp, ok := or.Left.(*parser.Comparison); !ok || cmp.Attribute != "role" {
		t.Fatalf("expected role comparison on the left")
	}
	and, ok := or.Right.(*parser.BooleanExpr)
	if !ok || and.Op != parser.BooleanAnd {
		t.Fatalf("expected AND to bind tighter than OR")
	}
}

func TestWhereParentheses(t *testing.T) {
	stmt, err := parser.Parse("Select * From document Where role = 'space' and (tag = 'living' or tag='something')")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	and, ok := stmt.Where.(*parser.BooleanExpr)
	if !ok || and.Op != parser.BooleanAnd {
		t.Fatalf("expected AND at the root, got %#v", stmt.Where)
	}
	if or, ok := and.Right.(*parser.BooleanExpr); !ok || or.Op != parser.BooleanOr {
		t.Fatalf("expected parenthesised OR on the right")
	}
	if got := parser.FormatExpression(stmt.Where); got != "role = 'space' AND (tag = 'living' OR tag = 'something')" {
		t.Fatalf("unexpected formatted expression %q", got)
	}
}

func TestNullChecks(t *testing.T) {
	stmt, err := parser.Parse("Select * From document Where role IS NOT Null or tag is null")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	or := stmt.Where.(*parser.BooleanExpr)
	left, ok := or.Left.(*parser.NullCheck)
	if !ok || left.Attribute != "role" || !left.Negated {
		t.Fatalf("expected role IS NOT NULL, got %#v", or.Left)
	}
	right, ok := or.Right.(*parser.NullCheck)
	if !ok || right.Attribute != "tag" || right.Negated {
		t.Fatalf("expected tag IS NULL, got %#v", or.Right)
	}
}

func TestGroupByParsing(t *testing.T) {
	stmt, err := parser.Parse("Select role, tag, count(*) From document Group By role, tag, role")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if stmt.GroupBy == nil {
		t.Fatalf("expected GROUP BY clause")
	}
	if got := strings.Join(stmt.GroupBy.Columns, ","); got != "role,tag" {
		t.Fatalf("expected duplicates to collapse in order, got %s", got)
	}
}

func TestStatementStyles(t *testing.T) {
	inputs := []string{
		"Select * From document;",
		"Select * From document",
		"Select * \nFrom document\n;",
	}
	for _, input := range inputs {
		stmt, err := parser.Parse(input)
		if err != nil {
			t.Fatalf("%q: parse: %v", input, err)
		}
		if got := parser.FormatStatement(stmt); got != "SELECT * FROM document" {
			t.Fatalf("%q: unexpected canonical form %q", input, got)
		}
	}
}

func TestFormatStatementRoundTrip(t *testing.T) {
	input := `select "display name", 'it''s', count(*) from document where (tag = 'a' or tag = 'b') and num = -3 group by "display name"`
	stmt, err := parser.Parse(input)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	text := parser.FormatStatement(stmt)
	want := `SELECT "display name", 'it''s', COUNT(*) FROM document WHERE (tag = 'a' OR tag = 'b') AND num = -3 GROUP BY "display name"`
	if text != want {
		t.Fatalf("unexpected canonical form:\n got %s\nwant %s", text, want)
	}
	again, err := parser.Parse(text)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if parser.FormatStatement(again) != text {
		t.Fatalf("expected canonical form to be stable")
	}
}

func TestColumnNames(t *testing.T) {
	stmt, err := parser.Parse("Select name, 42,'literal', count(*), Sum(num), *, COUNT(*) From document")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	got := parser.ColumnNames(stmt)
	want := []string{"name", "42", "literal", "COUNT(*)", "SUM(num)", "*", "COUNT(*):2"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("unexpected column names %v", got)
	}
}

func TestColumnNamesSkipTakenSuffixes(t *testing.T) {
	stmt, err := parser.Parse(`Select count(*), "COUNT(*):2", count(*), count(*) From document`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	got := strings.Join(parser.ColumnNames(stmt), "|")
	if got != "COUNT(*)|COUNT(*):2|COUNT(*):3|COUNT(*):4" {
		t.Fatalf("unexpected column names %s", got)
	}
}

func TestSyntaxErrors(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"Select name document", "expected FROM"},
		{"Select From document", "at least one column"},
		{"Select name, From document", "expected column"},
		{"Select * From document Where (role = 'space'", "expected ) to close expression"},
		{"Select * From document Where role = 'space')", "after end of statement"},
		{"Select * From document extra", "after end of statement"},
		{"Select Sum(*) From document", "SUM requires an attribute argument"},
		{"Select Count() From document", "COUNT expects exactly one argument"},
		{"Select Max(num, tag) From document", "MAX expects exactly one argument"},
		{"Select Min num From document", "expected ( after MIN"},
		{"Select * From document Where role = tag", "expected literal"},
		{"Select * From document Where role 'x'", "expected = or IS"},
		{"Select * From document Where role IS NOT 'x'", "expected NULL after IS"},
		{"Select * From document Group role", "expected BY"},
		{"Select * From document Group By", "expected attribute name in GROUP BY"},
		{"Select * From Where", "expected source name"},
		{"Select *; From document", "expected FROM"},
		{"Update document", "expected SELECT"},
		{"", "expected SELECT"},
	}
	for _, tc := range cases {
		_, err := parser.Parse(tc.input)
		var syntaxErr *parser.SyntaxError
		if !errors.As(err, &syntaxErr) {
			t.Fatalf("%q: expected SyntaxError, got %v", tc.input, err)
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%q: expected error containing %q, got %q", tc.input, tc.want, err.Error())
		}
	}
}

func TestLexErrorsBecomeSyntaxErrors(t *testing.T) {
	_, err := parser.Parse("Select name From document Where num > 3")
	var syntaxErr *parser.SyntaxError
	if !errors.As(err, &syntaxErr) {
		t.Fatalf("expected SyntaxError, got %v", err)
	}
	var lexErr *lexer.LexError
	if !errors.As(err, &lexErr) {
		t.Fatalf("expected the LexError to be wrapped")
	}
	if syntaxErr.Pos.Offset != 36 {
		t.Fatalf("expected position of '>', got %d", syntaxErr.Pos.Offset)
	}
}

func TestParseTokens(t *testing.T) {
	tokens, err := lexer.Tokenize("Select name From Wall")
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	stmt, err := parser.ParseTokens(tokens)
	if err != nil {
		t.Fatalf("parse tokens: %v", err)
	}
	if stmt.Source.Name != "Wall" {
		t.Fatalf("unexpected source %q", stmt.Source.Name)
	}
}
