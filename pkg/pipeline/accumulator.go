package pipeline

import (
	"github.com/Sumatoshi-tech/codelex/pkg/alg/stats"
	"github.com/Sumatoshi-tech/codelex/pkg/analyzers/filemetrics"
	"github.com/Sumatoshi-tech/codelex/pkg/analyzers/naming"
)

// accumulator folds per-file metrics into a repository record.
type accumulator struct {
	complexity  int
	blocks      int
	warnings    int
	mi          []float64
	density     []float64
	readability []float64
	identifiers []string
}

func (a *accumulator) add(fm filemetrics.FileMetrics) {
	a.complexity += fm.Complexity.Value.Total
	a.blocks += fm.Complexity.Value.Blocks
	a.warnings += fm.LintWarnings.Value
	a.mi = append(a.mi, fm.Maintainability.Value)
	a.density = append(a.density, fm.CommentDensity.Value)
	a.readability = append(a.readability, fm.Readability.Value)
	a.identifiers = append(a.identifiers, fm.Identifiers.Value...)
}

// record returns nil when no file was added.
func (a *accumulator) record() *RepositoryMetrics {
	if len(a.mi) == 0 {
		return nil
	}

	var ccAvg float64
	if a.blocks > 0 {
		ccAvg = float64(a.complexity) / float64(a.blocks)
	}

	return &RepositoryMetrics{
		CyclomaticComplexityAvg: ccAvg,
		MaintainabilityIndexAvg: stats.Mean(a.mi),
		NamingStats:             naming.Compute(a.identifiers),
		PylintWarningCount:      a.warnings,
		CommentDensityAvg:       stats.Mean(a.density),
		ReadabilityScoreAvg:     stats.Mean(a.readability),
	}
}
