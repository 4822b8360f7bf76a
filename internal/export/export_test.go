package export_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/Qubut/IP-Claim/packages/mica_doi/internal/export"
	"github.com/Qubut/IP-Claim/packages/mica_doi/internal/mica"
)

func newExporter(t *testing.T, locale string) *export.Exporter {
	t.Helper()
	x, err := export.NewExporter(
		locale,
		nil,
		tracenoop.NewTracerProvider().Tracer("test"),
		zap.NewNop().Sugar(),
		metricnoop.NewMeterProvider().Meter("test"),
	)
	require.NoError(t, err)
	return x
}

var variables = []mica.VariableSummary{
	{
		ID:            "ds1:AGE:Collected",
		Name:          "AGE",
		VariableType:  "Collected",
		ValueType:     "integer",
		VariableLabel: json.RawMessage(`[{"lang":"en","value":"Age, in years"},{"lang":"fr","value":"Âge"}]`),
	},
	{
		ID:            "ds1:SEX:Collected",
		Name:          "SEX",
		VariableType:  "Collected",
		ValueType:     "text",
		VariableLabel: json.RawMessage(`null`),
	},
}

func TestWrite(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, newExporter(t, "en").Write(&buf, variables))

	assert.Equal(t,
		"id,name,variableType,valueType,label\n"+
			"ds1:AGE:Collected,AGE,Collected,integer,\"Age, in years\"\n"+
			"ds1:SEX:Collected,SEX,Collected,text,\n",
		buf.String(),
	)
}

func TestWriteUsesLocale(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Âge", export.Row(variables[0], "fr")[4])
	assert.Empty(t, export.Row(variables[0], "de")[4])
}

func TestWriteHeaderOnly(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, newExporter(t, "en").Write(&buf, nil))
	assert.Equal(t, "id,name,variableType,valueType,label\n", buf.String())
}

func TestVariablesToCSV(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "variables.csv")
	x := newExporter(t, "en")
	var progress bytes.Buffer
	x.ProgressWriter = &progress

	require.NoError(t, x.VariablesToCSV(context.Background(), variables, path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "ds1:SEX:Collected,SEX,Collected,text,\n")

	err = x.VariablesToCSV(context.Background(), variables, filepath.Join(t.TempDir(), "missing", "out.csv"))
	assert.Error(t, err)
}

type closeFailure struct {
	bytes.Buffer
	closed bool
}

func (c *closeFailure) Close() error {
	c.closed = true
	return errors.New("disk full")
}

type closer struct {
	bytes.Buffer
	closed bool
}

func (c *closer) Close() error {
	c.closed = true
	return nil
}

func TestSaveClosesWriter(t *testing.T) {
	t.Parallel()
	w := &closer{}
	require.NoError(t, newExporter(t, "en").Save(w, variables))
	assert.True(t, w.closed)
	assert.Contains(t, w.String(), "ds1:AGE:Collected")
}

func TestSaveReportsCloseError(t *testing.T) {
	t.Parallel()
	w := &closeFailure{}
	err := newExporter(t, "en").Save(w, variables)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to close CSV")
	assert.True(t, w.closed)
}
