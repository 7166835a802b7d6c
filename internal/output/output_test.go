package output_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/docsql/internal/docmodel"
	"github.com/example/docsql/internal/exec"
	"github.com/example/docsql/internal/output"
	"github.com/example/docsql/internal/sql/expr"
)

func sampleResult() *exec.Result {
	return &exec.Result{
		Columns: []string{"role", "COUNT(*)", "note"},
		Rows: []exec.Row{
			{expr.String("space"), expr.Int(4), expr.String(`say "hi", ok`)},
			{expr.Null(), expr.Number(decimal.RequireFromString("1.50")), expr.String("x")},
		},
	}
}

func TestNewFormatter(t *testing.T) {
	for _, name := range []string{"", "table", "csv", "json"} {
		f, err := output.New(name)
		require.NoError(t, err, name)
		assert.NotNil(t, f)
	}
	_, err := output.New("xml")
	require.Error(t, err)
}

func TestTableFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, output.TableFormatter{}.Format(&buf, sampleResult()))
	out := buf.String()
	assert.Contains(t, out, "COUNT(*)")
	assert.Contains(t, out, "role")
	assert.Contains(t, out, "space")
	assert.Contains(t, out, "NULL")
	assert.True(t, strings.HasSuffix(out, "(2 row(s))\n"), out)
}

func TestCSVFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, output.CSVFormatter{}.Format(&buf, sampleResult()))
	want := "role,COUNT(*),note\n" +
		"space,4,\"say \"\"hi\"\", ok\"\n" +
		"NULL,1.5,x\n"
	assert.Equal(t, want, buf.String())
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, output.JSONFormatter{}.Format(&buf, sampleResult()))
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `{"role":"space","COUNT(*)":4,"note":"say \"hi\", ok"}`, lines[0])
	assert.Equal(t, `{"role":null,"COUNT(*)":1.5,"note":"x"}`, lines[1])
}

func TestJSONFormatterEntities(t *testing.T) {
	obj := docmodel.NewObject(map[string]any{"id": "wall", "name": "Wall"})
	res := &exec.Result{Columns: []string{"*"}, Rows: []exec.Row{{expr.EntityRef(obj)}}}

	var buf bytes.Buffer
	require.NoError(t, output.JSONFormatter{}.Format(&buf, res))
	assert.JSONEq(t, `{"*":{"id":"wall","name":"Wall"}}`, buf.String())
}
