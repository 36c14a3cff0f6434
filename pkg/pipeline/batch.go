package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/codelex/pkg/observability"
)

// ErrArchiveDir reports an archive directory that cannot be listed.
var ErrArchiveDir = errors.New("cannot read archive directory")

// archives lists the supported archives directly under dir in name order.
// Archives that map to an already seen repository name are skipped.
func (p *Pipeline) archives(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrArchiveDir, err)
	}

	names := make([]string, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() || !p.extractor.Supported(entry.Name()) {
			continue
		}

		names = append(names, entry.Name())
	}

	slices.Sort(names)

	seen := make(map[string]string, len(names))
	paths := make([]string, 0, len(names))

	for _, name := range names {
		repo := p.extractor.Name(name)
		if prev, dup := seen[repo]; dup {
			p.logger.Warn("duplicate repository name, skipping archive",
				"archive", name, "repository", repo, "kept", prev)

			continue
		}

		seen[repo] = name
		paths = append(paths, filepath.Join(dir, name))
	}

	return paths, nil
}

// RunBatch analyzes every supported archive in dir. Archives that fail to
// extract are logged and left out of the result. Only an unreadable dir or a
// cancelled ctx fails the batch.
func (p *Pipeline) RunBatch(ctx context.Context, dir string) (BatchResult, error) {
	ctx, span := p.tracer.Start(ctx, spanBatch, trace.WithAttributes(attribute.String("codelex.batch.dir", dir)))
	defer span.End()

	ctx = observability.ContextWithRun(ctx, uuid.NewString())

	paths, err := p.archives(dir)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return nil, err
	}

	p.logger.InfoContext(ctx, "batch started", "dir", dir, "archives", len(paths))

	result := make(BatchResult, len(paths))
	failed := 0

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := p.extractor.Name(path)
		actx := observability.ContextWithRepository(ctx, name)
		start := time.Now()

		rec, diag, err := p.AnalyzeArchive(actx, path)

		stats := observability.ArchiveStats{Files: diag.Files, Degraded: diag.Degraded, Duration: time.Since(start)}

		switch {
		case ctx.Err() != nil:
			return nil, ctx.Err()
		case err != nil:
			failed++
			stats.Status = observability.StatusFailed

			p.logger.WarnContext(actx, "skipping archive", "archive", path, "error", err)
		case rec == nil:
			result[name] = nil
			stats.Status = observability.StatusEmpty

			p.logger.InfoContext(actx, "no source files")
		default:
			result[name] = rec
			stats.Status = observability.StatusAnalyzed

			p.logger.InfoContext(actx, "repository analyzed",
				"files", diag.Files,
				"degraded", diag.DegradedTotal(), "duration", diag.Duration)
		}

		p.metrics.RecordArchive(actx, stats)
	}

	span.SetAttributes(attribute.Int("codelex.batch.repositories", len(result)), attribute.Int("codelex.batch.failed", failed))
	p.logger.InfoContext(ctx, "batch finished", "repositories", len(result), "failed", failed)

	return result, nil
}

// RunVocabBatch computes the vocabulary score of every supported archive in
// dir, in name order. Archives that fail to extract are logged and skipped.
func (p *Pipeline) RunVocabBatch(ctx context.Context, dir string) ([]VocabRow, error) {
	ctx, span := p.tracer.Start(ctx, spanBatch, trace.WithAttributes(attribute.String("codelex.batch.dir", dir)))
	defer span.End()

	ctx = observability.ContextWithRun(ctx, uuid.NewString())

	paths, err := p.archives(dir)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return nil, err
	}

	rows := make([]VocabRow, 0, len(paths))

	for _, path := range paths {
		row, err := p.ScoreArchive(ctx, path)

		switch {
		case ctx.Err() != nil:
			return nil, ctx.Err()
		case err != nil:
			p.logger.WarnContext(ctx, "skipping archive", "archive", path, "error", err)

			continue
		}

		p.logger.InfoContext(ctx, "vocabulary scored", "repository", row.Repository, "score", row.Score)

		rows = append(rows, row)
	}

	return rows, nil
}
