package complexity

import (
	"regexp"
	"strings"

	"github.com/Sumatoshi-tech/codelex/pkg/pysyntax"
)

var capturePatternRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// decisions returns the decision points contributed by n itself; its
// children are scored separately.
func (v *visitor) decisions(n, parent *pysyntax.Node) int {
	switch n.Type {
	case "if_statement", "elif_clause", "conditional_expression",
		"boolean_operator", "for_in_clause", "assert_statement":
		return 1
	case "if_clause":
		// Case guards are not branches of their own.
		if parent != nil && parent.Type == "case_clause" {
			return 0
		}

		return 1
	case "for_statement", "while_statement":
		return 1 + hasElse(n)
	case "try_statement":
		return countChildren(n, "except_clause", "except_group_clause") + hasElse(n)
	case "match_statement":
		return v.matchDecisions(n)
	}

	return 0
}

func hasElse(n *pysyntax.Node) int {
	if n.ChildOfType("else_clause") != nil {
		return 1
	}

	return 0
}

func countChildren(n *pysyntax.Node, types ...string) int {
	count := 0

	for _, c := range n.Children {
		for _, typ := range types {
			if c.Type == typ {
				count++

				break
			}
		}
	}

	return count
}

// matchDecisions counts one decision per case, minus one when some case is
// irrefutable (`case _:` or a bare capture name).
func (v *visitor) matchDecisions(n *pysyntax.Node) int {
	cases := 0
	irrefutable := false

	pysyntax.Inspect(n, func(c, _ *pysyntax.Node) bool {
		if c == n {
			return true
		}

		switch c.Type {
		case "case_clause":
			cases++

			if v.isIrrefutable(c) {
				irrefutable = true
			}

			return false
		case "block":
			return true
		}

		return false
	})

	if irrefutable {
		cases--
	}

	return max(0, cases)
}

func (v *visitor) isIrrefutable(caseClause *pysyntax.Node) bool {
	var patterns []*pysyntax.Node

	for _, c := range caseClause.Children {
		if c.Type == "case_pattern" {
			patterns = append(patterns, c)
		}
	}

	if len(patterns) != 1 {
		return false
	}

	return capturePatternRe.MatchString(strings.TrimSpace(v.tree.Text(patterns[0])))
}
