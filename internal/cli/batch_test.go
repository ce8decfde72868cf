package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestBatchTextFile(t *testing.T) {
	file := writeFile(t, "exprs.txt", "# warmup\nx^2\n\nsin[x]\n")

	stdout, stderr, err := executeCommand(t, "batch", file, "--show-all")
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ x^2 → 2x")
	assert.Contains(t, stdout, "✓ sin[x] → cos[x]")
	assert.Contains(t, stdout, "All 2 expression(s) differentiated")
	assert.Contains(t, stderr, "[SPINNER START]")
}

func TestBatchReportsFailures(t *testing.T) {
	file := writeFile(t, "exprs.txt", "x^2\n  2++3\n")

	stdout, _, err := executeCommand(t, "batch", file)
	require.Error(t, err)
	assert.NotContains(t, stdout, "✓ x^2")
	assert.Contains(t, stdout, file+":2")
	assert.Contains(t, stdout, "Parse error at "+file+":2:5: unexpected operator +")
	assert.Contains(t, stdout, "1 of 2 expression(s) failed")
}

func TestBatchYAMLFile(t *testing.T) {
	file := writeFile(t, "exprs.yaml", `expressions:
  - x^3
  - expr: x^4
    order: 2
  - "sin[x"
`)

	stdout, _, err := executeCommand(t, "batch", file, "--output", "json")
	require.Error(t, err)

	var summary BatchSummary
	require.NoError(t, json.Unmarshal([]byte(stdout), &summary))
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)

	require.Len(t, summary.Results, 3)
	assert.Equal(t, []string{"3x^2"}, summary.Results[0].Derivatives)
	assert.Equal(t, 3, summary.Results[1].Line)
	assert.Equal(t, []string{"4x^3", "12x^2"}, summary.Results[1].Derivatives)
	assert.Equal(t, 5, summary.Results[2].Line)
	assert.Contains(t, summary.Results[2].Error, file+":5:9: no matching right bracket")
}

func TestBatchMultipleFiles(t *testing.T) {
	a := writeFile(t, "a.txt", "x\n")
	b := writeFile(t, "b.yml", "expressions: [x^2, 3]\n")

	stdout, _, err := executeCommand(t, "batch", a, b, "--output", "yaml")
	require.NoError(t, err)

	var summary BatchSummary
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &summary))
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, []string{"1"}, summary.Results[0].Derivatives)
	assert.Equal(t, []string{"0"}, summary.Results[2].Derivatives)
}

func TestBatchMissingFile(t *testing.T) {
	_, _, err := executeCommand(t, "batch", filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot read")
}

func TestBatchInvalidYAML(t *testing.T) {
	file := writeFile(t, "bad.yaml", "expressions: [x^2\n")

	_, _, err := executeCommand(t, "batch", file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid batch file")
}

func TestReadBatchEntries(t *testing.T) {
	entries, err := readBatchEntries("exprs.yaml", []byte("expressions:\n  - x\n  - expr: 'x^2'\n    order: 3\n"))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "x", entries[0].Expr)
	assert.Equal(t, 2, entries[0].line)
	assert.Equal(t, 5, entries[0].column)

	assert.Equal(t, "x^2", entries[1].Expr)
	assert.Equal(t, 3, entries[1].Order)
	assert.Equal(t, 3, entries[1].line)
	assert.Equal(t, 12, entries[1].column)
}
