package pipeline

import (
	"archive/tar"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Sumatoshi-tech/codelex/pkg/analyzers/filemetrics"
	"github.com/Sumatoshi-tech/codelex/pkg/archive"
	"github.com/Sumatoshi-tech/codelex/pkg/observability"
)

const (
	simpleSource = "def f():\n    return 1\n"
	branchSource = "def g(x):\n    if x:\n        return 1\n    return 2\n"
)

var errLint = errors.New("lint tool crashed")

type fakeLinter struct {
	count int
	err   error
}

func (f fakeLinter) Count(context.Context, string) (int, error) {
	return f.count, f.err
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()

	for name, body := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	}

	return root
}

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()

	var buf bytes.Buffer

	zw := zip.NewWriter(&buf)

	for name, body := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)

		_, err = io.WriteString(w, body)
		require.NoError(t, err)
	}

	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
}

func writeTarGz(t *testing.T, path string, files map[string]string) {
	t.Helper()

	var raw bytes.Buffer

	tw := tar.NewWriter(&raw)

	for name, body := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     name,
			Mode:     0o644,
			Size:     int64(len(body)),
			Typeflag: tar.TypeReg,
		}))

		_, err := io.WriteString(tw, body)
		require.NoError(t, err)
	}

	require.NoError(t, tw.Close())

	var out bytes.Buffer

	gz := gzip.NewWriter(&out)
	_, err := gz.Write(raw.Bytes())
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, os.WriteFile(path, out.Bytes(), 0o600))
}

func newPipeline(t *testing.T, cfg Config, opts ...Option) *Pipeline {
	t.Helper()

	p, err := New(cfg, opts...)
	require.NoError(t, err)

	return p
}

func TestAnalyzeTree_NoSourceFiles(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{"README.md": "docs only\n"})

	rec, diag, err := newPipeline(t, Config{}).AnalyzeTree(context.Background(), root)
	require.NoError(t, err)
	assert.Nil(t, rec)
	assert.Zero(t, diag.Files)
}

func TestAnalyzeTree_SingleFunction(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{"a.py": simpleSource})

	rec, diag, err := newPipeline(t, Config{}).AnalyzeTree(context.Background(), root)
	require.NoError(t, err)
	require.NotNil(t, rec)

	assert.Equal(t, 1, diag.Files)
	assert.Zero(t, diag.DegradedTotal())
	assert.InDelta(t, 1.0, rec.CyclomaticComplexityAvg, 1e-9)
	assert.InDelta(t, 100.0, rec.MaintainabilityIndexAvg, 1e-9)
	assert.Zero(t, rec.CommentDensityAvg)
	assert.Zero(t, rec.ReadabilityScoreAvg)
	assert.Zero(t, rec.PylintWarningCount)
	assert.Equal(t, 3, rec.NamingStats.SnakeCase)
	assert.Zero(t, rec.NamingStats.Entropy)
	assert.InDelta(t, 1.4142, rec.NamingStats.StdDev, 1e-4)
	assert.Nil(t, rec.SharedVocabScore)
}

func TestAnalyzeTree_ComplexityIsBlockWeighted(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{
		"a.py":     simpleSource,
		"pkg/b.py": branchSource,
		"pkg/c.py": "x = 1\n",
	})

	rec, diag, err := newPipeline(t, Config{}).AnalyzeTree(context.Background(), root)
	require.NoError(t, err)
	require.NotNil(t, rec)

	assert.Equal(t, 3, diag.Files)
	assert.InDelta(t, 1.5, rec.CyclomaticComplexityAvg, 1e-9)
}

func TestAnalyzeTree_LintWarningsSummed(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{"a.py": simpleSource, "b.py": branchSource})

	rec, _, err := newPipeline(t, Config{}, WithLinter(fakeLinter{count: 2})).AnalyzeTree(context.Background(), root)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 4, rec.PylintWarningCount)
}

func TestAnalyzeTree_DiagnosticsCountDegradedMetrics(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{"a.py": simpleSource, "b.py": "def broken(:\n"})

	rec, diag, err := newPipeline(t, Config{}, WithLinter(fakeLinter{err: errLint})).
		AnalyzeTree(context.Background(), root)
	require.NoError(t, err)
	require.NotNil(t, rec)

	assert.Equal(t, 2, diag.Degraded[filemetrics.MetricLintWarnings])
	assert.Equal(t, 1, diag.Degraded[filemetrics.MetricComplexity])
	assert.Equal(t, 1, diag.Degraded[filemetrics.MetricMaintainability])
	assert.Zero(t, rec.PylintWarningCount)
	assert.InDelta(t, 50.0, rec.MaintainabilityIndexAvg, 1e-9)
}

func TestAnalyzeTree_VocabularyScore(t *testing.T) {
	t.Parallel()

	code := "def foo():\n    return bar\n"

	tests := []struct {
		name   string
		readme string
		want   float64
	}{
		{name: "disjoint", readme: "hello world", want: 0},
		{name: "identical", readme: "foo bar", want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			root := writeTree(t, map[string]string{"README.md": tt.readme, "m.py": code})

			rec, _, err := newPipeline(t, Config{VocabularyScore: true}).AnalyzeTree(context.Background(), root)
			require.NoError(t, err)
			require.NotNil(t, rec)
			require.NotNil(t, rec.SharedVocabScore)
			assert.InDelta(t, tt.want, *rec.SharedVocabScore, 1e-9)
		})
	}
}

func TestAnalyzeTree_Cancelled(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{"a.py": simpleSource})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := newPipeline(t, Config{}).AnalyzeTree(ctx, root)
	require.ErrorIs(t, err, context.Canceled)
}

func TestAnalyzeArchive_ExtractionFailure(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "broken.zip")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o600))

	rec, _, err := newPipeline(t, Config{}).AnalyzeArchive(context.Background(), path)
	require.ErrorIs(t, err, archive.ErrExtraction)
	assert.Nil(t, rec)

	var extractErr *archive.ExtractionError
	require.ErrorAs(t, err, &extractErr)
	assert.Equal(t, path, extractErr.Archive)
}

func batchDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()

	writeZip(t, filepath.Join(dir, "good1.zip"), map[string]string{
		"good1/README.md": "foo bar",
		"good1/m.py":      "def foo():\n    return bar\n",
	})
	writeTarGz(t, filepath.Join(dir, "good2.tar.gz"), map[string]string{
		"good2/a.py":     simpleSource,
		"good2/pkg/b.py": branchSource,
	})
	writeZip(t, filepath.Join(dir, "empty.zip"), map[string]string{"empty/README.md": "nothing\n"})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.zip"), []byte("not a zip"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600))

	return dir
}

func TestRunBatch(t *testing.T) {
	t.Parallel()

	dir := batchDir(t)
	work := t.TempDir()

	p := newPipeline(t, Config{Archive: archive.Config{TempDir: work}})

	result, err := p.RunBatch(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"empty", "good1", "good2"}, result.Names())
	assert.Nil(t, result["empty"])
	assert.NotContains(t, result, "broken")
	require.NotNil(t, result["good2"])
	assert.InDelta(t, 1.5, result["good2"].CyclomaticComplexityAvg, 1e-9)
	require.NotNil(t, result["good1"])
	assert.Nil(t, result["good1"].SharedVocabScore)

	leftovers, err := os.ReadDir(work)
	require.NoError(t, err)
	assert.Empty(t, leftovers)

	rows := result.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "good1", rows[0].Repository)
	assert.Equal(t, "good2", rows[1].Repository)
}

func TestRunBatch_DuplicateNamesKeepFirst(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeTarGz(t, filepath.Join(dir, "repo.tar.gz"), map[string]string{"repo/a.py": branchSource})
	writeZip(t, filepath.Join(dir, "repo.zip"), map[string]string{"repo/a.py": simpleSource})

	result, err := newPipeline(t, Config{}).RunBatch(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, result, 1)
	require.NotNil(t, result["repo"])
	assert.InDelta(t, 2.0, result["repo"].CyclomaticComplexityAvg, 1e-9)
}

func TestRunBatch_ArchiveDirMissing(t *testing.T) {
	t.Parallel()

	_, err := newPipeline(t, Config{}).RunBatch(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.ErrorIs(t, err, ErrArchiveDir)
}

func TestRunBatch_Cancelled(t *testing.T) {
	t.Parallel()

	dir := batchDir(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newPipeline(t, Config{}).RunBatch(ctx, dir)
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunBatch_RecordsMetrics(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	pm, err := observability.NewPipelineMetrics(provider.Meter("test"))
	require.NoError(t, err)

	_, err = newPipeline(t, Config{}, WithMetrics(pm)).RunBatch(context.Background(), batchDir(t))
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	byStatus := make(map[string]int64)
	files := int64(0)

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}

			for _, dp := range sum.DataPoints {
				switch m.Name {
				case "codelex.archives.total":
					status, _ := dp.Attributes.Value("status")
					byStatus[status.AsString()] += dp.Value
				case "codelex.files.total":
					files += dp.Value
				}
			}
		}
	}

	assert.Equal(t, map[string]int64{
		observability.StatusAnalyzed: 2,
		observability.StatusEmpty:    1,
		observability.StatusFailed:   1,
	}, byStatus)
	assert.Equal(t, int64(3), files)
}

func TestRunVocabBatch(t *testing.T) {
	t.Parallel()

	rows, err := newPipeline(t, Config{}).RunVocabBatch(context.Background(), batchDir(t))
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, VocabRow{Repository: "empty", Score: 0}, rows[0])
	assert.Equal(t, VocabRow{Repository: "good1", Score: 1}, rows[1])
	assert.Equal(t, VocabRow{Repository: "good2", Score: 0}, rows[2])
	assert.Equal(t, []string{"good1", "1"}, rows[1].Record())
}

func TestRepositoryMetricsJSON(t *testing.T) {
	t.Parallel()

	score := 0.25
	result := BatchResult{
		"plain": {CyclomaticComplexityAvg: 1},
		"vocab": {SharedVocabScore: &score},
		"empty": nil,
	}

	data, err := json.Marshal(result)
	require.NoError(t, err)

	var decoded map[string]map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Nil(t, decoded["empty"])
	assert.NotContains(t, decoded["plain"], "shared_vocab_score")
	assert.InDelta(t, 0.25, decoded["vocab"]["shared_vocab_score"], 1e-9)
	assert.Contains(t, decoded["plain"], "naming_stats")
	assert.NotContains(t, decoded["plain"]["naming_stats"], "Total")
}
