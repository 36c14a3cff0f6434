// Package pipeline turns archived repositories into metrics records: it
// extracts each archive, analyzes every source file, folds the per-file
// results into one record per repository and collects the records of a
// batch.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/codelex/pkg/analyzers/filemetrics"
	"github.com/Sumatoshi-tech/codelex/pkg/archive"
	"github.com/Sumatoshi-tech/codelex/pkg/collect"
	"github.com/Sumatoshi-tech/codelex/pkg/observability"
	"github.com/Sumatoshi-tech/codelex/pkg/pysyntax"
	"github.com/Sumatoshi-tech/codelex/pkg/vocabulary"
)

const (
	spanBatch      = "codelex.batch"
	spanArchive    = "codelex.archive"
	spanRepository = "codelex.repository"

	attrArchive = "codelex.archive"
	attrRoot    = "codelex.repository.root"
	attrFiles   = "codelex.repository.files"
)

// Config configures a Pipeline.
type Config struct {
	Collect    collect.Config
	Archive    archive.Config
	Files      filemetrics.Config
	Vocabulary vocabulary.Config

	// VocabularyScore adds shared_vocab_score to every metrics record.
	VocabularyScore bool

	// ParseCacheSize bounds the per-repository parse cache; 0 uses the default.
	ParseCacheSize int
}

// Pipeline analyzes repositories. It processes one repository at a time and
// is not safe for concurrent use.
type Pipeline struct {
	cfg       Config
	logger    *slog.Logger
	tracer    trace.Tracer
	metrics   *observability.PipelineMetrics
	linter    filemetrics.Linter
	cache     *pysyntax.CachedParser
	extractor *archive.Extractor
	collector *collect.Collector
	analyzer  *filemetrics.Analyzer
	vocab     *vocabulary.Extractor
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger passed to every component.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithTracer sets the tracer for batch, archive and repository spans.
func WithTracer(t trace.Tracer) Option {
	return func(p *Pipeline) {
		if t != nil {
			p.tracer = t
		}
	}
}

// WithMetrics records every processed archive on pm.
func WithMetrics(pm *observability.PipelineMetrics) Option {
	return func(p *Pipeline) {
		p.metrics = pm
	}
}

// WithLinter sets the lint runner. Without one, lint warnings are 0.
func WithLinter(l filemetrics.Linter) Option {
	return func(p *Pipeline) {
		p.linter = l
	}
}

// New creates a Pipeline.
func New(cfg Config, opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		cfg:    cfg,
		logger: slog.Default(),
		tracer: otel.Tracer("codelex"),
	}

	for _, opt := range opts {
		opt(p)
	}

	parser, err := pysyntax.NewParser()
	if err != nil {
		return nil, fmt.Errorf("create python parser: %w", err)
	}

	size := cfg.ParseCacheSize
	if size <= 0 {
		size = pysyntax.DefaultCacheSize
	}

	p.cache, err = pysyntax.NewCachedParser(parser, size)
	if err != nil {
		return nil, fmt.Errorf("create parse cache: %w", err)
	}

	fileOpts := []filemetrics.Option{filemetrics.WithLogger(p.logger)}
	if p.linter != nil {
		fileOpts = append(fileOpts, filemetrics.WithLinter(p.linter))
	}

	p.extractor = archive.NewExtractor(cfg.Archive, archive.WithLogger(p.logger))
	p.collector = collect.NewCollector(cfg.Collect, collect.WithLogger(p.logger))
	p.analyzer = filemetrics.NewAnalyzer(p.cache, cfg.Files, fileOpts...)
	p.vocab = vocabulary.NewExtractor(p.cache, cfg.Vocabulary, vocabulary.WithLogger(p.logger))

	return p, nil
}

// AnalyzeTree analyzes the extracted repository at root. It returns a nil
// record when root holds no analyzable file. The only error is a cancelled
// ctx.
func (p *Pipeline) AnalyzeTree(ctx context.Context, root string) (*RepositoryMetrics, Diagnostics, error) {
	ctx, span := p.tracer.Start(ctx, spanRepository, trace.WithAttributes(attribute.String(attrRoot, root)))
	defer span.End()

	defer p.cache.Purge()

	start := time.Now()
	files := p.collector.Files(root)
	diag := Diagnostics{Files: len(files), Degraded: make(map[string]int)}

	span.SetAttributes(attribute.Int(attrFiles, len(files)))

	if len(files) == 0 {
		diag.Duration = time.Since(start)

		return nil, diag, nil
	}

	var acc accumulator

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, diag, err
		}

		fm := p.analyzer.Analyze(ctx, path)
		acc.add(fm)

		for name := range fm.Degraded() {
			diag.Degraded[name]++
		}
	}

	rec := acc.record()

	if p.cfg.VocabularyScore {
		sets, err := p.vocab.Extract(ctx, root, files)
		if err != nil {
			return nil, diag, err
		}

		score := sets.Score()
		rec.SharedVocabScore = &score
	}

	diag.Duration = time.Since(start)

	return rec, diag, nil
}

// AnalyzeArchive extracts the archive at path and analyzes it. The working
// tree is removed before returning. Extraction failures are returned as
// *archive.ExtractionError.
func (p *Pipeline) AnalyzeArchive(ctx context.Context, path string) (*RepositoryMetrics, Diagnostics, error) {
	ctx, span := p.tracer.Start(ctx, spanArchive, trace.WithAttributes(attribute.String(attrArchive, path)))
	defer span.End()

	tree, err := p.extractor.Extract(ctx, path)
	if err != nil {
		span.RecordError(err)

		return nil, Diagnostics{}, err
	}

	defer p.release(tree)

	return p.AnalyzeTree(ctx, tree.Root())
}

// ScoreArchive computes the vocabulary score of the archive at path without
// running the per-file analyzer.
func (p *Pipeline) ScoreArchive(ctx context.Context, path string) (VocabRow, error) {
	ctx, span := p.tracer.Start(ctx, spanArchive, trace.WithAttributes(attribute.String(attrArchive, path)))
	defer span.End()

	row := VocabRow{Repository: archive.Name(path)}

	tree, err := p.extractor.Extract(ctx, path)
	if err != nil {
		span.RecordError(err)

		return row, err
	}

	defer p.release(tree)
	defer p.cache.Purge()

	sets, err := p.vocab.Extract(ctx, tree.Root(), p.collector.Files(tree.Root()))
	if err != nil {
		return row, err
	}

	row.Score = sets.Score()

	return row, nil
}

func (p *Pipeline) release(tree *archive.WorkingTree) {
	if err := tree.Release(); err != nil {
		p.logger.Warn("failed to remove working tree", "root", tree.Root(), "error", err)
	}
}
