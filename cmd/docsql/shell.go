package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/docsql/internal/api"
	"github.com/example/docsql/internal/docmodel"
	"github.com/example/docsql/internal/output"
)

const (
	shellPrompt  = "docsql> "
	historyFile  = ".docsql_history"
	shellHelpMsg = `Enter a SELECT statement, or one of:
  .columns [sql]   column names of sql, or of the last statement
  .explain <sql>   operator tree of sql
  .count           number of objects in the document
  .help            this message
  .quit            leave the shell`
)

func newShellCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive statement shell",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			if a.cfg.Data.Watch {
				w, err := docmodel.NewWatcher(a.cfg.Data.File, a.model, a.logger)
				if err != nil {
					return err
				}
				go func() {
					if err := w.Run(ctx); err != nil {
						a.logger.Warn("document watcher stopped", zap.Error(err))
					}
				}()
			}
			return runShell(newShell(a, cmd.OutOrStdout()))
		},
	}
}

// shell evaluates one input line at a time. It is separate from the liner
// loop so it can be driven directly.
type shell struct {
	engine    *api.Engine
	model     *docmodel.Model
	formatter output.Formatter
	out       io.Writer
	last      *api.Statement
}

func newShell(a *app, out io.Writer) *shell {
	return &shell{engine: a.engine, model: a.model, formatter: a.formatter, out: out}
}

// handle runs one line and reports whether the shell should exit.
func (s *shell) handle(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if !strings.HasPrefix(line, ".") {
		s.query(line)
		return false
	}

	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	switch name {
	case ".quit", ".exit":
		return true
	case ".help":
		fmt.Fprintln(s.out, shellHelpMsg)
	case ".count":
		fmt.Fprintf(s.out, "%d object(s)\n", s.model.Len())
	case ".columns":
		stmt := s.last
		if rest != "" {
			prepared, err := s.engine.Prepare(rest)
			if err != nil {
				s.printError(err)
				return false
			}
			stmt = prepared
		}
		if stmt == nil {
			s.printError(errors.New("no statement yet"))
			return false
		}
		fmt.Fprintln(s.out, strings.Join(stmt.ColumnNames(), ", "))
	case ".explain":
		stmt, err := s.engine.Prepare(rest)
		if err != nil {
			s.printError(err)
			return false
		}
		plan, err := stmt.Explain()
		if err != nil {
			s.printError(err)
			return false
		}
		fmt.Fprintln(s.out, plan.String())
	default:
		s.printError(errors.Newf("unknown command %s (try .help)", name))
	}
	return false
}

func (s *shell) query(text string) {
	stmt, err := s.engine.Prepare(text)
	if err != nil {
		s.printError(err)
		return
	}
	s.last = stmt
	res, err := stmt.Result()
	if err != nil {
		s.printError(err)
		return
	}
	if err := s.formatter.Format(s.out, res); err != nil {
		s.printError(err)
	}
}

func (s *shell) printError(err error) {
	fmt.Fprintf(s.out, "ERROR: %v\n", err)
}

func runShell(s *shell) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	history := ""
	if home, err := os.UserHomeDir(); err == nil {
		history = filepath.Join(home, historyFile)
		if f, err := os.Open(history); err == nil {
			_, _ = line.ReadHistory(f)
			f.Close()
		}
	}

	fmt.Fprintf(s.out, "docsql shell, %d object(s) loaded. Type .help for commands.\n", s.model.Len())
	for {
		input, err := line.Prompt(shellPrompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				break
			}
			return errors.Wrap(err, "read input")
		}
		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}
		if s.handle(input) {
			break
		}
	}

	if history != "" {
		if f, err := os.Create(history); err == nil {
			_, _ = line.WriteHistory(f)
			f.Close()
		}
	}
	return nil
}
