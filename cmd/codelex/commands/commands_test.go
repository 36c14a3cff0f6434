package commands

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/codelex/pkg/persist"
	"github.com/Sumatoshi-tech/codelex/pkg/pipeline"
)

const testConfig = `lint:
  enabled: false
logging:
  level: error
`

// fixture writes an archive directory with one repository and a config file
// that disables the external linter.
func fixture(t *testing.T) (archives, configPath string) {
	t.Helper()

	dir := t.TempDir()
	archives = filepath.Join(dir, "archives")
	require.NoError(t, os.Mkdir(archives, 0o755))

	var buf bytes.Buffer

	zw := zip.NewWriter(&buf)

	for name, body := range map[string]string{
		"demo/README.md": "foo bar",
		"demo/m.py":      "def foo():\n    return bar\n",
	} {
		w, err := zw.Create(name)
		require.NoError(t, err)

		_, err = io.WriteString(w, body)
		require.NoError(t, err)
	}

	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(filepath.Join(archives, "demo.zip"), buf.Bytes(), 0o600))

	configPath = filepath.Join(dir, "codelex.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(testConfig), 0o600))

	return archives, configPath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(""))

	err := cmd.ExecuteContext(context.Background())

	return out.String(), err
}

func TestMetricsCommand_JSON(t *testing.T) {
	archives, configPath := fixture(t)
	output := filepath.Join(t.TempDir(), "results.json")

	out, err := execute(t, "metrics", archives, "--config", configPath, "-o", output, "--vocab")
	require.NoError(t, err)
	assert.Contains(t, out, "Analyzed 1 repositories")

	data, err := os.ReadFile(output)
	require.NoError(t, err)

	violations, err := persist.ValidateBatchResult(data)
	require.NoError(t, err)
	assert.Empty(t, violations)

	result, err := persist.NewPersister[pipeline.BatchResult](persist.NewJSONCodec()).Load(output)
	require.NoError(t, err)
	require.NotNil(t, result["demo"])
	require.NotNil(t, result["demo"].SharedVocabScore)
	assert.InDelta(t, 1.0, *result["demo"].SharedVocabScore, 1e-9)
	assert.InDelta(t, 1.0, result["demo"].CyclomaticComplexityAvg, 1e-9)
}

func TestMetricsCommand_YAMLParquetAndShow(t *testing.T) {
	archives, configPath := fixture(t)
	dir := t.TempDir()
	output := filepath.Join(dir, "results.yaml")
	dataset := filepath.Join(dir, "results.parquet")

	_, err := execute(t, "metrics", archives, "--config", configPath,
		"-o", output, "--format", "yaml", "--parquet", dataset, "-q")
	require.NoError(t, err)

	rows, err := persist.ReadParquet[pipeline.Row](dataset)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "demo", rows[0].Repository)
	assert.Nil(t, rows[0].SharedVocabScore)

	out, err := execute(t, "show", output)
	require.NoError(t, err)
	assert.Contains(t, out, "demo")
	assert.Contains(t, out, "Total: 1 repositories")
}

func TestMetricsCommand_MissingArchiveDir(t *testing.T) {
	_, configPath := fixture(t)

	_, err := execute(t, "metrics", filepath.Join(t.TempDir(), "missing"), "--config", configPath,
		"-o", filepath.Join(t.TempDir(), "out.json"))
	require.ErrorIs(t, err, pipeline.ErrArchiveDir)
}

func TestMetricsCommand_MetricsFile(t *testing.T) {
	archives, configPath := fixture(t)
	dir := t.TempDir()
	metricsFile := filepath.Join(dir, "codelex.prom")

	_, err := execute(t, "metrics", archives, "--config", configPath,
		"-o", filepath.Join(dir, "out.json"), "--metrics-file", metricsFile, "-q")
	require.NoError(t, err)

	data, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "codelex_archives_total")
}

func TestVocabCommand(t *testing.T) {
	archives, configPath := fixture(t)
	output := filepath.Join(t.TempDir(), "scores.csv")

	out, err := execute(t, "vocab", archives, "--config", configPath, "-o", output, "--format", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "repository,shared_vocab_score\ndemo,1\n")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "repository,shared_vocab_score\ndemo,1\n", string(data))
}

func TestVocabCommand_Table(t *testing.T) {
	archives, configPath := fixture(t)

	out, err := execute(t, "vocab", archives, "--config", configPath,
		"-o", filepath.Join(t.TempDir(), "scores.csv"))
	require.NoError(t, err)
	assert.Contains(t, out, "1.0000")
	assert.Contains(t, out, "demo")
}

func TestVocabCommand_UnknownFormat(t *testing.T) {
	_, err := execute(t, "vocab", "--format", "xml")
	require.ErrorIs(t, err, persist.ErrUnknownFormat)
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()

	valid := filepath.Join(dir, "valid.json")
	require.NoError(t, os.WriteFile(valid, []byte(`{"empty": null}`), 0o600))

	out, err := execute(t, "validate", valid, "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "Result is valid")

	invalid := filepath.Join(dir, "invalid.json")
	require.NoError(t, os.WriteFile(invalid, []byte(`{"repo": {"cyclomatic_complexity_avg": "high"}}`), 0o600))

	out, err = execute(t, "validate", invalid, "--no-color")
	require.ErrorIs(t, err, ErrInvalidResult)
	assert.Contains(t, out, "Result validation failed")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "codelex "))
}
