// Package halstead computes Halstead software-science measures for Python
// sources from their arithmetic, boolean, comparison and augmented
// assignment expressions.
package halstead

import (
	"fmt"

	"github.com/Sumatoshi-tech/codelex/pkg/pysyntax"
)

// Metrics holds the Halstead counts of a file and the measures derived from them.
type Metrics struct {
	DistinctOperators int     `json:"distinct_operators"`
	DistinctOperands  int     `json:"distinct_operands"`
	TotalOperators    int     `json:"total_operators"`
	TotalOperands     int     `json:"total_operands"`
	Vocabulary        int     `json:"vocabulary"`
	Length            int     `json:"length"`
	EstimatedLength   float64 `json:"estimated_length"`
	Volume            float64 `json:"volume"`
	Difficulty        float64 `json:"difficulty"`
	Effort            float64 `json:"effort"`
	TimeToProgram     float64 `json:"time_to_program"`
	DeliveredBugs     float64 `json:"delivered_bugs"`
}

// Analyze counts operators and operands across the whole file. Operands are
// distinct per enclosing function, so the same name in two functions counts
// twice. Sources with syntax errors are rejected.
func Analyze(tree *pysyntax.Tree) (Metrics, error) {
	if tree == nil || tree.Root == nil || tree.HasErrors {
		return Metrics{}, fmt.Errorf("halstead: %w", pysyntax.ErrSyntax)
	}

	v := &visitor{
		tree:      tree,
		operators: make(map[string]struct{}),
		operands:  make(map[operandKey]struct{}),
	}
	v.visit(tree.Root, "")

	m := Metrics{
		DistinctOperators: len(v.operators),
		DistinctOperands:  len(v.operands),
		TotalOperators:    v.totalOperators,
		TotalOperands:     v.totalOperands,
	}
	m.Calculate()

	return m, nil
}
