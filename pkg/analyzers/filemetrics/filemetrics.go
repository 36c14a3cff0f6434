// Package filemetrics computes every per-file metric of a Python source.
// Each metric is computed independently; a failing one degrades to its
// default without affecting the others.
package filemetrics

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/Sumatoshi-tech/codelex/pkg/analyzers/comments"
	"github.com/Sumatoshi-tech/codelex/pkg/analyzers/complexity"
	"github.com/Sumatoshi-tech/codelex/pkg/analyzers/identifiers"
	"github.com/Sumatoshi-tech/codelex/pkg/analyzers/maintainability"
	"github.com/Sumatoshi-tech/codelex/pkg/metrics"
	"github.com/Sumatoshi-tech/codelex/pkg/pysyntax"
)

// Metric names, used as log and telemetry attributes.
const (
	MetricComplexity      = "cyclomatic_complexity"
	MetricMaintainability = "maintainability_index"
	MetricIdentifiers     = "identifiers"
	MetricLintWarnings    = "lint_warnings"
	MetricCommentDensity  = "comment_density"
	MetricReadability     = "comment_readability"
)

// Descriptions documents each per-file metric.
var Descriptions = []metrics.MetricMeta{
	{
		MetricName:        MetricComplexity,
		MetricDisplayName: "Cyclomatic complexity",
		MetricDescription: "Summed McCabe complexity of functions, classes and methods, with the block count.",
	},
	{
		MetricName:        MetricMaintainability,
		MetricDisplayName: "Maintainability index",
		MetricDescription: "Maintainability index on a 0..100 scale; 100 for files without operators or statements.",
	},
	{
		MetricName:        MetricIdentifiers,
		MetricDisplayName: "Identifiers",
		MetricDescription: "Identifier tokens, duplicates included, pooled per repository for naming statistics.",
	},
	{
		MetricName:        MetricLintWarnings,
		MetricDisplayName: "Lint warnings",
		MetricDescription: "Findings printed by the external linter.",
	},
	{
		MetricName:        MetricCommentDensity,
		MetricDisplayName: "Comment density",
		MetricDescription: "Fraction of lines that are full-line comments.",
	},
	{
		MetricName:        MetricReadability,
		MetricDisplayName: "Comment readability",
		MetricDescription: "Flesch reading ease of the comment prose; 0 without comments.",
	},
}

// Complexity is the complexity outcome of one file.
type Complexity struct {
	Total  int
	Blocks int
}

// FileMetrics holds every metric of one file.
type FileMetrics struct {
	Path            string
	Complexity      metrics.Result[Complexity]
	Maintainability metrics.Result[float64]
	Identifiers     metrics.Result[[]string]
	LintWarnings    metrics.Result[int]
	CommentDensity  metrics.Result[float64]
	Readability     metrics.Result[float64]
}

// Degraded returns the reason of every metric that fell back to its default,
// keyed by metric name.
func (m FileMetrics) Degraded() map[string]error {
	out := make(map[string]error)

	add := func(name string, err error) {
		if err != nil {
			out[name] = err
		}
	}

	add(MetricComplexity, m.Complexity.Err)
	add(MetricMaintainability, m.Maintainability.Err)
	add(MetricIdentifiers, m.Identifiers.Err)
	add(MetricLintWarnings, m.LintWarnings.Err)
	add(MetricCommentDensity, m.CommentDensity.Err)
	add(MetricReadability, m.Readability.Err)

	return out
}

// Linter counts lint findings for a file.
type Linter interface {
	Count(ctx context.Context, path string) (int, error)
}

// Config selects how identifiers and comments are read.
type Config struct {
	Depth         identifiers.Depth
	CommentMarker string
}

// Analyzer computes FileMetrics.
type Analyzer struct {
	parser pysyntax.FileParser
	linter Linter
	cfg    Config
	logger *slog.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger for degraded metrics.
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithLinter sets the lint runner. Without one, lint warnings are 0.
func WithLinter(l Linter) Option {
	return func(a *Analyzer) {
		a.linter = l
	}
}

// NewAnalyzer creates an Analyzer parsing with parser.
func NewAnalyzer(parser pysyntax.FileParser, cfg Config, opts ...Option) *Analyzer {
	if cfg.Depth == "" {
		cfg.Depth = identifiers.DepthRegex
	}

	if cfg.CommentMarker == "" {
		cfg.CommentMarker = comments.DefaultMarker
	}

	a := &Analyzer{
		parser: parser,
		cfg:    cfg,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Analyze computes every metric of the file at path. It never fails as a
// whole; see FileMetrics.Degraded for what fell back to defaults.
func (a *Analyzer) Analyze(ctx context.Context, path string) FileMetrics {
	fm := FileMetrics{Path: path}

	fm.LintWarnings = a.lint(ctx, path)

	content, err := os.ReadFile(path)
	if err != nil {
		readErr := fmt.Errorf("read %s: %w", path, err)
		fm.Complexity = metrics.Degraded(Complexity{}, readErr)
		fm.Maintainability = metrics.Degraded(0.0, readErr)
		fm.Identifiers = metrics.Degraded([]string{}, readErr)
		fm.CommentDensity = metrics.Degraded(0.0, readErr)
		fm.Readability = metrics.Degraded(0.0, readErr)
		a.logDegraded(fm)

		return fm
	}

	tree, parseErr := a.parser.ParseFile(ctx, path, content)
	treeOrErr := func() (*pysyntax.Tree, error) {
		if parseErr != nil {
			return nil, fmt.Errorf("parse %s: %w", path, parseErr)
		}

		return tree, nil
	}

	fm.Complexity = metrics.Compute(Complexity{}, func() (Complexity, error) {
		t, err := treeOrErr()
		if err != nil {
			return Complexity{}, err
		}

		res, err := complexity.Analyze(t)
		if err != nil {
			return Complexity{}, err
		}

		return Complexity{Total: res.Sum(), Blocks: len(res.Blocks)}, nil
	})

	fm.Maintainability = metrics.Compute(0.0, func() (float64, error) {
		t, err := treeOrErr()
		if err != nil {
			return 0, err
		}

		idx, err := maintainability.Analyze(t)
		if err != nil {
			return 0, err
		}

		return idx.Value, nil
	})

	fm.Identifiers = metrics.Compute([]string{}, func() ([]string, error) {
		if a.cfg.Depth == identifiers.DepthRegex {
			return identifiers.FromText(content), nil
		}

		t, err := treeOrErr()
		if err != nil {
			return nil, err
		}

		if t.HasErrors {
			return nil, pysyntax.ErrSyntax
		}

		return identifiers.FromSyntax(t), nil
	})

	fm.CommentDensity = metrics.Compute(0.0, func() (float64, error) {
		return comments.Density(content, a.cfg.CommentMarker), nil
	})

	fm.Readability = metrics.Compute(0.0, func() (float64, error) {
		return comments.Readability(content, a.cfg.CommentMarker), nil
	})

	a.logDegraded(fm)

	return fm
}

func (a *Analyzer) lint(ctx context.Context, path string) metrics.Result[int] {
	if a.linter == nil {
		return metrics.Success(0)
	}

	return metrics.Compute(0, func() (int, error) {
		return a.linter.Count(ctx, path)
	})
}

func (a *Analyzer) logDegraded(fm FileMetrics) {
	for name, err := range fm.Degraded() {
		a.logger.Debug("metric degraded", "path", fm.Path, "metric", name, "error", err)
	}
}
