package halstead

import (
	"strconv"

	"github.com/Sumatoshi-tech/codelex/pkg/pysyntax"
)

type operandKey struct {
	scope string
	value string
}

type visitor struct {
	tree           *pysyntax.Tree
	operators      map[string]struct{}
	operands       map[operandKey]struct{}
	totalOperators int
	totalOperands  int
}

func (v *visitor) visit(n *pysyntax.Node, scope string) {
	if n.Type == "function_definition" {
		scope = v.tree.Text(n.ChildByField("name"))
	}

	switch n.Type {
	case "binary_operator", "boolean_operator", "augmented_assignment",
		"unary_operator", "not_operator", "comparison_operator":
		v.expression(n, scope)
	}

	for _, c := range n.Children {
		v.visit(c, scope)
	}
}

// expression records the operator tokens (anonymous children) and operand
// expressions (named children) of one operator node.
func (v *visitor) expression(n *pysyntax.Node, scope string) {
	for _, c := range n.Children {
		if c.Type == "comment" {
			continue
		}

		if !c.Named {
			if c.Type == "(" || c.Type == ")" {
				continue
			}

			v.totalOperators++
			v.operators[n.Type+":"+c.Type] = struct{}{}

			continue
		}

		v.totalOperands++
		v.operands[operandKey{scope: scope, value: v.operandValue(c)}] = struct{}{}
	}
}

// operandValue identifies names and literals by their text; any other
// expression is unique to its position.
func (v *visitor) operandValue(n *pysyntax.Node) string {
	switch n.Type {
	case "identifier", "integer", "float", "string", "true", "false", "none":
		return v.tree.Text(n)
	}

	return "@" + strconv.Itoa(n.StartByte) + ":" + strconv.Itoa(n.EndByte) + ":" + n.Type
}
