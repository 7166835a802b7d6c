package api

import (
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/example/docsql/internal/exec"
	"github.com/example/docsql/internal/sql/lexer"
	"github.com/example/docsql/internal/sql/parser"
	"github.com/example/docsql/internal/sql/validator"
)

// Engine provides a public façade over the statement pipeline. It owns the
// host suppliers; statements prepared from it read them on every execution.
type Engine struct {
	executor *exec.Executor
	logger   *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for prepare and execute events.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an engine over the host suppliers.
func New(all exec.AllSupplier, byName exec.NameSupplier, opts ...Option) *Engine {
	e := &Engine{
		executor: exec.New(all, byName),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Prepare parses and validates text. The returned error is a
// *parser.SyntaxError or *validator.ValidationError carrying the statement
// text as a detail.
func (e *Engine) Prepare(text string) (*Statement, error) {
	stmt, err := parser.Parse(text)
	if err != nil {
		e.logger.Debug("statement rejected", zap.String("query", text), zap.Error(err))
		return nil, errors.WithDetailf(err, "statement: %s", text)
	}
	if err := validator.ValidateSelect(stmt); err != nil {
		e.logger.Debug("statement rejected", zap.String("query", text), zap.Error(err))
		return nil, errors.WithDetailf(err, "statement: %s", text)
	}
	e.logger.Debug("statement prepared", zap.String("query", text))
	return &Statement{
		engine:  e,
		text:    text,
		stmt:    stmt,
		columns: parser.ColumnNames(stmt),
	}, nil
}

// Query prepares and executes text in one step.
func (e *Engine) Query(text string) (*exec.Result, error) {
	stmt, err := e.Prepare(text)
	if err != nil {
		return nil, err
	}
	return stmt.Result()
}

// Statement is a prepared SELECT. It is immutable and may be executed any
// number of times, also concurrently.
type Statement struct {
	engine  *Engine
	text    string
	stmt    *parser.SelectStatement
	columns []string
}

// Execute evaluates the statement against the current supplier data.
func (s *Statement) Execute() ([]exec.Row, error) {
	res, err := s.Result()
	if err != nil {
		return nil, err
	}
	return res.Rows, nil
}

// Result evaluates the statement and returns rows together with their
// column names.
func (s *Statement) Result() (*exec.Result, error) {
	start := time.Now()
	res, err := s.engine.executor.Execute(s.stmt)
	if err != nil {
		s.engine.logger.Debug("statement failed", zap.String("query", s.text), zap.Error(err))
		return nil, errors.WithDetailf(err, "statement: %s", s.text)
	}
	s.engine.logger.Debug("statement executed",
		zap.String("query", s.text),
		zap.Int("count", len(res.Rows)),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return res, nil
}

// ColumnNames returns one display name per select-list entry.
func (s *Statement) ColumnNames() []string {
	out := make([]string, len(s.columns))
	copy(out, s.columns)
	return out
}

// Text returns the statement as it was prepared.
func (s *Statement) Text() string {
	return s.text
}

// String renders the parsed statement as canonical SQL.
func (s *Statement) String() string {
	return parser.FormatStatement(s.stmt)
}

// Explain returns the operator tree Execute would run.
func (s *Statement) Explain() (*exec.Plan, error) {
	return s.engine.executor.Explain(s.stmt)
}

// IsSyntaxError reports whether err came from lexing or parsing.
func IsSyntaxError(err error) bool {
	var syntaxErr *parser.SyntaxError
	if errors.As(err, &syntaxErr) {
		return true
	}
	var lexErr *lexer.LexError
	return errors.As(err, &lexErr)
}

// IsValidationError reports whether err is a statement validation failure.
func IsValidationError(err error) bool {
	var validationErr *validator.ValidationError
	return errors.As(err, &validationErr)
}
