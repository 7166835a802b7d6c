package parser

import (
	"errors"
	"fmt"

	"github.com/example/docsql/internal/sql/lexer"
)

// SyntaxError reports a grammar violation. Err holds the underlying
// *lexer.LexError when tokenisation failed.
type SyntaxError struct {
	Pos lexer.Position
	Msg string
	Err error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("parser: syntax error at %s: %s", e.Pos, e.Msg)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// Parse parses a single SELECT statement into an AST.
func Parse(input string) (*SelectStatement, error) {
	tokens, err := lexer.Tokenize(input)
	if err != nil {
		var lexErr *lexer.LexError
		if errors.As(err, &lexErr) {
			return nil, &SyntaxError{Pos: lexErr.Pos, Msg: lexErr.Msg, Err: lexErr}
		}
		return nil, err
	}
	return ParseTokens(tokens)
}

// ParseTokens parses an EOF-terminated token sequence as produced by
// lexer.Tokenize.
func ParseTokens(tokens []lexer.Token) (*SelectStatement, error) {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != lexer.EOF {
		tokens = append(tokens, lexer.Token{Type: lexer.EOF})
	}
	p := &Parser{tokens: tokens}
	p.curToken = p.tokens[0]
	stmt, err := p.parseSelect()
	if err != nil {
		return nil, err
	}
	if p.curToken.Type != lexer.EOF {
		return nil, p.errorf("unexpected %s after end of statement", describe(p.curToken))
	}
	return stmt, nil
}

// Parser implements a tiny hand-rolled recursive descent parser.
type Parser struct {
	tokens   []lexer.Token
	pos      int
	curToken lexer.Token
}

func (p *Parser) nextToken() {
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	p.curToken = p.tokens[p.pos]
}

func (p *Parser) errorf(format string, args ...interface{}) error {
	return &SyntaxError{Pos: p.curToken.Pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *Parser) consumeKeyword(keyword string) error {
	if !p.curToken.Is(keyword) {
		return p.errorf("expected %s but found %s", keyword, describe(p.curToken))
	}
	p.nextToken()
	return nil
}

func (p *Parser) expect(tt lexer.TokenType, context string) error {
	if p.curToken.Type != tt {
		return p.errorf("expected %s %s but found %s", tt, context, describe(p.curToken))
	}
	p.nextToken()
	return nil
}

func (p *Parser) parseSelect() (*SelectStatement, error) {
	if err := p.consumeKeyword("SELECT"); err != nil {
		return nil, err
	}
	columns, err := p.parseColumnList()
	if err != nil {
		return nil, err
	}
	if err := p.consumeKeyword("FROM"); err != nil {
		return nil, err
	}
	if p.curToken.Type != lexer.Ident {
		return nil, p.errorf("expected source name after FROM but found %s", describe(p.curToken))
	}
	stmt := &SelectStatement{Columns: columns, Source: SourceRef{Name: p.curToken.Literal}}
	p.nextToken()

	if p.curToken.Is("WHERE") {
		p.nextToken()
		where, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}

	if p.curToken.Is("GROUP") {
		p.nextToken()
		if err := p.consumeKeyword("BY"); err != nil {
			return nil, err
		}
		groupBy, err := p.parseGroupBy()
		if err != nil {
			return nil, err
		}
		stmt.GroupBy = groupBy
	}

	return stmt, nil
}

func (p *Parser) parseColumnList() ([]ColumnSpec, error) {
	if p.curToken.Is("FROM") || p.curToken.Type == lexer.EOF {
		return nil, p.errorf("expected at least one column after SELECT")
	}
	columns := []ColumnSpec{}
	for {
		col, err := p.parseColumn()
		if err != nil {
			return nil, err
		}
		columns = append(columns, col)
		if p.curToken.Type != lexer.Comma {
			return columns, nil
		}
		p.nextToken()
	}
}

func (p *Parser) parseColumn() (ColumnSpec, error) {
	switch p.curToken.Type {
	case lexer.Star:
		p.nextToken()
		return &Wildcard{}, nil
	case lexer.Ident:
		name := p.curToken.Literal
		p.nextToken()
		return &AttributeRef{Name: name}, nil
	case lexer.Number, lexer.String:
		lit, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		return &LiteralColumn{Literal: lit}, nil
	case lexer.Keyword:
		if fn, ok := aggregateFuncFor(p.curToken.Literal); ok {
			return p.parseAggregate(fn)
		}
	}
	return nil, p.errorf("expected column but found %s", describe(p.curToken))
}

func (p *Parser) parseAggregate(fn AggregateFunc) (ColumnSpec, error) {
	p.nextToken()
	if err := p.expect(lexer.LParen, "after "+string(fn)); err != nil {
		return nil, err
	}
	var arg ColumnSpec
	switch p.curToken.Type {
	case lexer.Star:
		if fn != AggregateCount {
			return nil, p.errorf("%s requires an attribute argument", fn)
		}
		arg = &Wildcard{}
	case lexer.Ident:
		arg = &AttributeRef{Name: p.curToken.Literal}
	case lexer.RParen:
		return nil, p.errorf("%s expects exactly one argument", fn)
	default:
		return nil, p.errorf("expected attribute or * in %s call but found %s", fn, describe(p.curToken))
	}
	p.nextToken()
	if p.curToken.Type == lexer.Comma {
		return nil, p.errorf("%s expects exactly one argument", fn)
	}
	if err := p.expect(lexer.RParen, "to close "+string(fn)+" call"); err != nil {
		return nil, err
	}
	return &Aggregate{Func: fn, Arg: arg}, nil
}

func (p *Parser) parseLiteral() (Literal, error) {
	switch p.curToken.Type {
	case lexer.String:
		lit := Literal{Kind: LiteralString, Value: p.curToken.Literal}
		p.nextToken()
		return lit, nil
	case lexer.Number:
		lit := Literal{Kind: LiteralNumber, Value: p.curToken.Literal}
		p.nextToken()
		return lit, nil
	}
	return Literal{}, p.errorf("expected literal but found %s", describe(p.curToken))
}

func (p *Parser) parseGroupBy() (*GroupBy, error) {
	groupBy := &GroupBy{}
	for {
		if p.curToken.Type != lexer.Ident {
			return nil, p.errorf("expected attribute name in GROUP BY but found %s", describe(p.curToken))
		}
		if !groupBy.Contains(p.curToken.Literal) {
			groupBy.Columns = append(groupBy.Columns, p.curToken.Literal)
		}
		p.nextToken()
		if p.curToken.Type != lexer.Comma {
			return groupBy, nil
		}
		p.nextToken()
	}
}

// parseOr handles the lowest-precedence level: andExpr (OR andExpr)*.
func (p *Parser) parseOr() (BooleanExpression, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.curToken.Is("OR") {
		p.nextToken()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &BooleanExpr{Left: left, Right: right, Op: BooleanOr}
	}
	return left, nil
}

func (p *Parser) parseAnd() (BooleanExpression, error) {
	left, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for p.curToken.Is("AND") {
		p.nextToken()
		right, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		left = &BooleanExpr{Left: left, Right: right, Op: BooleanAnd}
	}
	return left, nil
}

func (p *Parser) parseAtom() (BooleanExpression, error) {
	switch p.curToken.Type {
	case lexer.LParen:
		p.nextToken()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(lexer.RParen, "to close expression"); err != nil {
			return nil, err
		}
		return inner, nil
	case lexer.Ident:
		attribute := p.curToken.Literal
		p.nextToken()
		switch {
		case p.curToken.Type == lexer.Equal:
			p.nextToken()
			lit, err := p.parseLiteral()
			if err != nil {
				return nil, err
			}
			return &Comparison{Attribute: attribute, Op: ComparisonEqual, Value: lit}, nil
		case p.curToken.Is("IS"):
			return p.parseNullCheck(attribute)
		default:
			return nil, p.errorf("expected = or IS after %s but found %s", attribute, describe(p.curToken))
		}
	default:
		return nil, p.errorf("expected condition but found %s", describe(p.curToken))
	}
}

func (p *Parser) parseNullCheck(attribute string) (BooleanExpression, error) {
	if err := p.consumeKeyword("IS"); err != nil {
		return nil, err
	}
	negated := false
	if p.curToken.Is("NOT") {
		p.nextToken()
		negated = true
	}
	if !p.curToken.Is("NULL") {
		return nil, p.errorf("expected NULL after IS but found %s", describe(p.curToken))
	}
	p.nextToken()
	return &NullCheck{Attribute: attribute, Negated: negated}, nil
}

func describe(tok lexer.Token) string {
	switch tok.Type {
	case lexer.EOF:
		return "end of input"
	case lexer.Keyword:
		return tok.Literal
	default:
		return fmt.Sprintf("%q", tok.String())
	}
}
