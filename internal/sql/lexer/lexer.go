package lexer

import (
	"fmt"
	"strings"
	"unicode"
)

// TokenType identifies lexical tokens produced by the SQL lexer.
type TokenType int

const (
	EOF TokenType = iota
	Keyword
	Ident
	Number
	String
	Comma
	LParen
	RParen
	Semicolon
	Star
	Equal
)

func (t TokenType) String() string {
	switch t {
	case EOF:
		return "end of input"
	case Keyword:
		return "keyword"
	case Ident:
		return "identifier"
	case Number:
		return "number"
	case String:
		return "string"
	case Comma:
		return ","
	case LParen:
		return "("
	case RParen:
		return ")"
	case Semicolon:
		return ";"
	case Star:
		return "*"
	case Equal:
		return "="
	default:
		return "token"
	}
}

// Position locates a token in the source text. Offset counts runes from the
// start of the input; Line and Column are 1-based.
type Position struct {
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
}

// Token represents a lexical item. Keyword literals are upper-cased; all
// other literals keep the source spelling (string contents are unquoted).
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
}

// Is reports whether the token is the given keyword.
func (t Token) Is(keyword string) bool {
	return t.Type == Keyword && t.Literal == keyword
}

func (t Token) String() string {
	switch t.Type {
	case EOF:
		return "end of input"
	case String:
		return "'" + t.Literal + "'"
	default:
		return t.Literal
	}
}

var keywords = map[string]struct{}{
	"SELECT": {},
	"FROM":   {},
	"WHERE":  {},
	"GROUP":  {},
	"BY":     {},
	"AND":    {},
	"OR":     {},
	"IS":     {},
	"NOT":    {},
	"NULL":   {},
	"SUM":    {},
	"COUNT":  {},
	"MIN":    {},
	"MAX":    {},
}

// IsKeyword reports whether word is reserved, ignoring case.
func IsKeyword(word string) bool {
	_, ok := keywords[strings.ToUpper(word)]
	return ok
}

// LexError reports an unrecognised character or malformed literal.
type LexError struct {
	Pos Position
	Msg string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lexer: %s at %s", e.Msg, e.Pos)
}

// Lexer performs tokenisation over the input SQL string.
type Lexer struct {
	input []rune
	pos   int
	line  int
	col   int
}

// New initialises a lexer for the provided SQL source.
func New(input string) *Lexer {
	return &Lexer{input: []rune(input), line: 1, col: 1}
}

// Tokenize splits input into tokens terminated by a single EOF token. A
// trailing statement terminator is dropped.
func Tokenize(input string) ([]Token, error) {
	l := New(input)
	var tokens []Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		if tok.Type == EOF {
			if n := len(tokens); n > 0 && tokens[n-1].Type == Semicolon {
				tokens = tokens[:n-1]
			}
			return append(tokens, tok), nil
		}
		tokens = append(tokens, tok)
	}
}

// Next returns the next token from the stream.
func (l *Lexer) Next() (Token, error) {
	l.skipWhitespace()
	start := l.position()
	if l.pos >= len(l.input) {
		return Token{Type: EOF, Pos: start}, nil
	}

	ch := l.input[l.pos]
	switch ch {
	case ',':
		l.advance()
		return Token{Type: Comma, Literal: ",", Pos: start}, nil
	case '(':
		l.advance()
		return Token{Type: LParen, Literal: "(", Pos: start}, nil
	case ')':
		l.advance()
		return Token{Type: RParen, Literal: ")", Pos: start}, nil
	case ';':
		l.advance()
		return Token{Type: Semicolon, Literal: ";", Pos: start}, nil
	case '*':
		l.advance()
		return Token{Type: Star, Literal: "*", Pos: start}, nil
	case '=':
		l.advance()
		return Token{Type: Equal, Literal: "=", Pos: start}, nil
	case '\'':
		return l.scanString(start)
	case '"':
		return l.scanQuotedIdentifier(start)
	case '-':
		if l.pos+1 < len(l.input) && unicode.IsDigit(l.input[l.pos+1]) {
			return l.scanNumber(start)
		}
	}

	if unicode.IsLetter(ch) || ch == '_' {
		return l.scanIdentifier(start), nil
	}
	if unicode.IsDigit(ch) {
		return l.scanNumber(start)
	}

	return Token{}, &LexError{Pos: start, Msg: fmt.Sprintf("unexpected character %q", ch)}
}

func (l *Lexer) position() Position {
	return Position{Offset: l.pos, Line: l.line, Column: l.col}
}

func (l *Lexer) advance() {
	if l.input[l.pos] == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	l.pos++
}

func (l *Lexer) scanIdentifier(start Position) Token {
	from := l.pos
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_' {
			l.advance()
			continue
		}
		break
	}
	lit := string(l.input[from:l.pos])
	upper := strings.ToUpper(lit)
	if _, ok := keywords[upper]; ok {
		return Token{Type: Keyword, Literal: upper, Pos: start}
	}
	return Token{Type: Ident, Literal: lit, Pos: start}
}

func (l *Lexer) scanNumber(start Position) (Token, error) {
	from := l.pos
	if l.input[l.pos] == '-' {
		l.advance()
	}
	seenDot := false
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if unicode.IsDigit(ch) {
			l.advance()
			continue
		}
		if ch == '.' && !seenDot {
			seenDot = true
			l.advance()
			continue
		}
		break
	}
	lit := string(l.input[from:l.pos])
	if strings.HasSuffix(lit, ".") {
		return Token{}, &LexError{Pos: start, Msg: fmt.Sprintf("malformed number %q", lit)}
	}
	if l.pos < len(l.input) && (unicode.IsLetter(l.input[l.pos]) || l.input[l.pos] == '_') {
		return Token{}, &LexError{Pos: l.position(), Msg: fmt.Sprintf("unexpected character %q after number", l.input[l.pos])}
	}
	return Token{Type: Number, Literal: lit, Pos: start}, nil
}

func (l *Lexer) scanString(start Position) (Token, error) {
	lit, err := l.scanQuoted('\'', start, "string literal")
	if err != nil {
		return Token{}, err
	}
	return Token{Type: String, Literal: lit, Pos: start}, nil
}

func (l *Lexer) scanQuotedIdentifier(start Position) (Token, error) {
	lit, err := l.scanQuoted('"', start, "quoted identifier")
	if err != nil {
		return Token{}, err
	}
	if lit == "" {
		return Token{}, &LexError{Pos: start, Msg: "empty quoted identifier"}
	}
	return Token{Type: Ident, Literal: lit, Pos: start}, nil
}

// scanQuoted reads up to the closing quote; a doubled quote stands for one.
func (l *Lexer) scanQuoted(quote rune, start Position, what string) (string, error) {
	l.advance()
	var sb strings.Builder
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == quote {
			if l.pos+1 < len(l.input) && l.input[l.pos+1] == quote {
				sb.WriteRune(quote)
				l.advance()
				l.advance()
				continue
			}
			l.advance()
			return sb.String(), nil
		}
		sb.WriteRune(ch)
		l.advance()
	}
	return "", &LexError{Pos: start, Msg: "unterminated " + what}
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		if unicode.IsSpace(l.input[l.pos]) {
			l.advance()
			continue
		}
		break
	}
}
