package complexity

import (
	"github.com/Sumatoshi-tech/codelex/pkg/pysyntax"
)

const anonymousBlockName = "anonymous"

type classScore struct {
	block   Block
	methods []Block
	real    int
}

// visitor accumulates decisions for one scope. Functions and classes open a
// fresh visitor for their body; what that visitor finds below its own
// functions stays there, so closures never reach the enclosing scope.
type visitor struct {
	tree       *pysyntax.Tree
	complexity int
	functions  []Block
	classes    []classScore
}

func newVisitor(tree *pysyntax.Tree, base int) *visitor {
	return &visitor{tree: tree, complexity: base}
}

func (v *visitor) visit(n, parent *pysyntax.Node) {
	switch n.Type {
	case "function_definition":
		v.visitFunction(n)

		return
	case "class_definition":
		v.visitClass(n)

		return
	case "decorator":
		return
	}

	v.complexity += v.decisions(n, parent)
	v.visitChildren(n)
}

func (v *visitor) visitChildren(n *pysyntax.Node) {
	for _, c := range n.Children {
		v.visit(c, n)
	}
}

func (v *visitor) visitFunction(n *pysyntax.Node) {
	body := newVisitor(v.tree, 0)

	if b := n.ChildByField("body"); b != nil {
		body.visitChildren(b)
	}

	v.functions = append(v.functions, Block{
		Name:       v.name(n),
		Kind:       KindFunction,
		Line:       n.StartLine,
		Complexity: 1 + body.complexity,
	})
}

func (v *visitor) visitClass(n *pysyntax.Node) {
	body := newVisitor(v.tree, 0)

	if b := n.ChildByField("body"); b != nil {
		body.visitChildren(b)
	}

	methods := make([]Block, 0, len(body.functions))
	real := 1 + body.complexity

	for _, fn := range body.functions {
		fn.Kind = KindMethod
		real += fn.Complexity
		methods = append(methods, fn)
	}

	score := real
	if len(methods) > 0 {
		score = real / len(methods)
		if len(methods) > 1 {
			score++
		}
	}

	v.classes = append(v.classes, classScore{
		block: Block{
			Name:       v.name(n),
			Kind:       KindClass,
			Line:       n.StartLine,
			Complexity: score,
		},
		methods: methods,
		real:    real,
	})
}

func (v *visitor) name(n *pysyntax.Node) string {
	if name := v.tree.Text(n.ChildByField("name")); name != "" {
		return name
	}

	return anonymousBlockName
}
