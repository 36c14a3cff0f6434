package filemetrics

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/codelex/pkg/analyzers/identifiers"
	"github.com/Sumatoshi-tech/codelex/pkg/metrics"
	"github.com/Sumatoshi-tech/codelex/pkg/pysyntax"
)

var errLint = errors.New("lint down")

type fakeLinter struct {
	count int
	err   error
	panic bool
}

func (f fakeLinter) Count(_ context.Context, _ string) (int, error) {
	if f.panic {
		panic("linter exploded")
	}

	return f.count, f.err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func newAnalyzer(t *testing.T, cfg Config, opts ...Option) *Analyzer {
	t.Helper()

	p, err := pysyntax.NewParser()
	require.NoError(t, err)

	return NewAnalyzer(p, cfg, opts...)
}

func TestAnalyze_SimpleFunction(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "simple.py", "def f():\n    return 1\n")
	a := newAnalyzer(t, Config{}, WithLinter(fakeLinter{count: 3}))

	fm := a.Analyze(context.Background(), path)

	assert.Empty(t, fm.Degraded())
	assert.Equal(t, Complexity{Total: 1, Blocks: 1}, fm.Complexity.Value)
	assert.InDelta(t, 100.0, fm.Maintainability.Value, 1e-9)
	assert.Equal(t, []string{"def", "f", "return"}, fm.Identifiers.Value)
	assert.Equal(t, 3, fm.LintWarnings.Value)
	assert.Zero(t, fm.CommentDensity.Value)
	assert.Zero(t, fm.Readability.Value)
}

func TestAnalyze_CommentsOnly(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "notes.py", "# The cat sat on the mat.\n# Another line here.\n")
	fm := newAnalyzer(t, Config{}).Analyze(context.Background(), path)

	assert.InDelta(t, 1.0, fm.CommentDensity.Value, 1e-9)
	assert.NotZero(t, fm.Readability.Value)
	assert.Equal(t, Complexity{}, fm.Complexity.Value)
	assert.False(t, fm.Complexity.IsDegraded())
	assert.Zero(t, fm.LintWarnings.Value)
}

func TestAnalyze_MissingFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "gone.py")
	fm := newAnalyzer(t, Config{}, WithLinter(fakeLinter{count: 2})).Analyze(context.Background(), path)

	degraded := fm.Degraded()

	assert.Len(t, degraded, 5)
	assert.NotContains(t, degraded, MetricLintWarnings)
	require.ErrorIs(t, degraded[MetricComplexity], metrics.ErrMetricComputation)
	require.ErrorIs(t, degraded[MetricComplexity], os.ErrNotExist)
	assert.Equal(t, 2, fm.LintWarnings.Value)
	assert.Empty(t, fm.Identifiers.Value)
}

func TestAnalyze_SyntaxErrorDegradesOnlyTreeMetrics(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "broken.py", "# header\ndef broken(:\n")
	fm := newAnalyzer(t, Config{}).Analyze(context.Background(), path)

	degraded := fm.Degraded()

	assert.Contains(t, degraded, MetricComplexity)
	assert.Contains(t, degraded, MetricMaintainability)
	assert.NotContains(t, degraded, MetricIdentifiers)
	assert.NotContains(t, degraded, MetricCommentDensity)
	assert.Equal(t, Complexity{}, fm.Complexity.Value)
	assert.Zero(t, fm.Maintainability.Value)
	assert.InDelta(t, 0.5, fm.CommentDensity.Value, 1e-9)
	require.ErrorIs(t, degraded[MetricComplexity], pysyntax.ErrSyntax)
}

func TestAnalyze_LinterFailures(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "a.py", "x = 1\n")

	failed := newAnalyzer(t, Config{}, WithLinter(fakeLinter{err: errLint})).Analyze(context.Background(), path)
	require.ErrorIs(t, failed.LintWarnings.Err, errLint)
	assert.Zero(t, failed.LintWarnings.Value)

	panicked := newAnalyzer(t, Config{}, WithLinter(fakeLinter{panic: true})).Analyze(context.Background(), path)
	require.ErrorIs(t, panicked.LintWarnings.Err, metrics.ErrMetricComputation)
	assert.Zero(t, panicked.LintWarnings.Value)
	assert.InDelta(t, 100.0, panicked.Maintainability.Value, 1e-9)
}

func TestAnalyze_SyntaxDepth(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "m.py", "import os\n\nclass Loader:\n    def load(self, path):\n        return os.path.exists(path)\n")
	fm := newAnalyzer(t, Config{Depth: identifiers.DepthSyntax}).Analyze(context.Background(), path)

	assert.Equal(t, []string{"Loader", "load", "os", "path"}, fm.Identifiers.Value)
}

func TestDescriptions(t *testing.T) {
	t.Parallel()

	names := make([]string, 0, len(Descriptions))
	for _, d := range Descriptions {
		names = append(names, d.Name())
	}

	assert.Equal(t, []string{
		MetricComplexity, MetricMaintainability, MetricIdentifiers,
		MetricLintWarnings, MetricCommentDensity, MetricReadability,
	}, names)
}
