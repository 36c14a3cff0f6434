// Package maintainability computes the maintainability index of Python
// sources on the 0..100 scale, the variant without comment-string credit.
package maintainability

import (
	"fmt"
	"math"

	"github.com/Sumatoshi-tech/codelex/pkg/alg/stats"
	"github.com/Sumatoshi-tech/codelex/pkg/analyzers/complexity"
	"github.com/Sumatoshi-tech/codelex/pkg/analyzers/halstead"
	"github.com/Sumatoshi-tech/codelex/pkg/pysyntax"
)

// MaxIndex is returned for files without measurable code.
const MaxIndex = 100.0

// Index is the maintainability index of one file and the inputs behind it.
type Index struct {
	Value          float64
	Volume         float64
	Complexity     int
	CommentPercent float64
	Raw            Raw
}

// Analyze computes the maintainability index of tree. Sources with syntax
// errors are rejected.
func Analyze(tree *pysyntax.Tree) (Index, error) {
	cc, err := complexity.Analyze(tree)
	if err != nil {
		return Index{}, fmt.Errorf("maintainability: %w", err)
	}

	hs, err := halstead.Analyze(tree)
	if err != nil {
		return Index{}, fmt.Errorf("maintainability: %w", err)
	}

	raw := CountRaw(tree)

	var commentPercent float64
	if raw.SLOC > 0 {
		commentPercent = float64(raw.Comments) / float64(raw.SLOC) * 100
	}

	return Index{
		Value:          Compute(hs.Volume, cc.Total, raw.LLOC, commentPercent),
		Volume:         hs.Volume,
		Complexity:     cc.Total,
		CommentPercent: commentPercent,
		Raw:            raw,
	}, nil
}

// Compute evaluates
// (171 − 5.2·ln V − 0.23·G − 16.2·ln L + 50·sin(√(2.46·rad(C)))) · 100/171
// clamped to [0, 100]. It returns MaxIndex when volume or lloc is not positive.
func Compute(volume float64, totalComplexity, lloc int, commentPercent float64) float64 {
	if volume <= 0 || lloc <= 0 {
		return MaxIndex
	}

	commentScale := math.Sqrt(2.46 * commentPercent * math.Pi / 180)
	nn := 171 -
		5.2*math.Log(volume) -
		0.23*float64(totalComplexity) -
		16.2*math.Log(float64(lloc)) +
		50*math.Sin(commentScale)

	return stats.Clamp(nn*100/171, 0, MaxIndex)
}
