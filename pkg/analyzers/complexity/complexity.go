// Package complexity computes McCabe cyclomatic complexity for Python
// sources, scored block by block the way radon scores them.
package complexity

import (
	"fmt"

	"github.com/Sumatoshi-tech/codelex/pkg/pysyntax"
)

// BlockKind identifies what a scored block is.
type BlockKind string

// Block kinds.
const (
	KindFunction BlockKind = "function"
	KindMethod   BlockKind = "method"
	KindClass    BlockKind = "class"
)

// Block is one scored function, method or class.
type Block struct {
	Name       string
	Kind       BlockKind
	Line       int
	Complexity int
}

// Result is the complexity of one file.
type Result struct {
	// Blocks lists top-level functions (including those nested in
	// statements), classes and class methods. Closures are not blocks.
	Blocks []Block

	// Module is the module-level score, 1 plus decisions outside any block.
	Module int

	// Total is the whole-file complexity used by the maintainability index:
	// Module plus every function score plus every class body score.
	Total int
}

// Sum returns the summed complexity of all blocks.
func (r Result) Sum() int {
	sum := 0

	for _, b := range r.Blocks {
		sum += b.Complexity
	}

	return sum
}

// Analyze scores every block in tree. Sources with syntax errors are rejected.
func Analyze(tree *pysyntax.Tree) (Result, error) {
	if tree == nil || tree.Root == nil {
		return Result{}, fmt.Errorf("complexity: %w", pysyntax.ErrSyntax)
	}

	if tree.HasErrors {
		return Result{}, fmt.Errorf("complexity: %w", pysyntax.ErrSyntax)
	}

	v := newVisitor(tree, 1)
	v.visitChildren(tree.Root)

	res := Result{Module: v.complexity, Total: v.complexity}

	for _, fn := range v.functions {
		res.Blocks = append(res.Blocks, fn)
		res.Total += fn.Complexity
	}

	for _, cls := range v.classes {
		res.Blocks = append(res.Blocks, cls.block)
		res.Blocks = append(res.Blocks, cls.methods...)
		res.Total += cls.real
	}

	return res, nil
}
