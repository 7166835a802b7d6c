// Package output renders statement results.
package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/olekukonko/tablewriter"

	"github.com/example/docsql/internal/exec"
	"github.com/example/docsql/internal/sql/expr"
)

// Formatter writes a result to w.
type Formatter interface {
	Format(w io.Writer, res *exec.Result) error
}

// New returns the formatter for a configured format name.
func New(format string) (Formatter, error) {
	switch format {
	case "", "table":
		return TableFormatter{}, nil
	case "csv":
		return CSVFormatter{}, nil
	case "json":
		return JSONFormatter{}, nil
	default:
		return nil, errors.Newf("output: unknown format %q", format)
	}
}

// TableFormatter draws an ASCII table followed by a row count.
type TableFormatter struct{}

// Format implements Formatter.
func (TableFormatter) Format(w io.Writer, res *exec.Result) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader(res.Columns)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	for _, row := range res.Rows {
		table.Append(cells(row))
	}
	table.Render()
	_, err := fmt.Fprintf(w, "(%d row(s))\n", len(res.Rows))
	return err
}

// CSVFormatter writes a header line and one record per row.
type CSVFormatter struct{}

// Format implements Formatter.
func (CSVFormatter) Format(w io.Writer, res *exec.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(res.Columns); err != nil {
		return errors.Wrap(err, "output: write csv header")
	}
	for _, row := range res.Rows {
		if err := cw.Write(cells(row)); err != nil {
			return errors.Wrap(err, "output: write csv row")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "output: flush csv")
}

// JSONFormatter writes one JSON object per row, keys in select-list order.
// Numbers stay exact, nulls become null and entities use their own JSON
// encoding when they have one.
type JSONFormatter struct{}

// Format implements Formatter.
func (JSONFormatter) Format(w io.Writer, res *exec.Result) error {
	var buf bytes.Buffer
	for _, row := range res.Rows {
		buf.Reset()
		buf.WriteByte('{')
		for i, value := range row {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(res.Columns[i])
			if err != nil {
				return errors.Wrap(err, "output: encode column name")
			}
			buf.Write(key)
			buf.WriteByte(':')
			encoded, err := jsonValue(value)
			if err != nil {
				return err
			}
			buf.Write(encoded)
		}
		buf.WriteString("}\n")
		if _, err := w.Write(buf.Bytes()); err != nil {
			return errors.Wrap(err, "output: write json row")
		}
	}
	return nil
}

func jsonValue(v expr.Value) ([]byte, error) {
	switch v.Kind() {
	case expr.KindNull:
		return []byte("null"), nil
	case expr.KindNumber:
		return []byte(v.String()), nil
	case expr.KindEntity:
		entity, _ := v.Entity()
		if m, ok := entity.(json.Marshaler); ok {
			data, err := m.MarshalJSON()
			return data, errors.Wrap(err, "output: encode entity")
		}
	}
	data, err := json.Marshal(v.String())
	return data, errors.Wrap(err, "output: encode value")
}

// cells renders a row for text output. Null renders as NULL.
func cells(row exec.Row) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = v.String()
	}
	return out
}
