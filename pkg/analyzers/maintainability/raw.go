package maintainability

import (
	"strings"

	"github.com/Sumatoshi-tech/codelex/pkg/pysyntax"
	"github.com/Sumatoshi-tech/codelex/pkg/textutil"
)

// Raw holds line counts of a Python file. LOC = SLOC + Blank + Multi + SingleComments.
type Raw struct {
	LOC            int
	LLOC           int
	SLOC           int
	Comments       int // lines carrying a comment, trailing ones included
	SingleComments int // lines holding only a comment
	Multi          int // lines of standalone string statements
	Blank          int
}

var logicalLineTypes = map[string]struct{}{
	"expression_statement": {}, "return_statement": {}, "pass_statement": {},
	"import_statement": {}, "import_from_statement": {}, "future_import_statement": {},
	"assert_statement": {}, "raise_statement": {}, "delete_statement": {},
	"break_statement": {}, "continue_statement": {}, "global_statement": {},
	"nonlocal_statement": {}, "print_statement": {}, "exec_statement": {},
	"type_alias_statement": {},
	"if_statement": {}, "elif_clause": {}, "else_clause": {},
	"for_statement": {}, "while_statement": {}, "try_statement": {},
	"except_clause": {}, "except_group_clause": {}, "finally_clause": {},
	"with_statement": {}, "function_definition": {}, "class_definition": {},
	"match_statement": {}, "case_clause": {}, "decorator": {},
}

// CountRaw classifies every line of the parsed source.
func CountRaw(tree *pysyntax.Tree) Raw {
	lines := textutil.Lines(tree.Source)
	raw := Raw{LOC: len(lines)}

	commentLines := make(map[int]struct{})
	multiLines := make(map[int]struct{})

	pysyntax.Inspect(tree.Root, func(n, _ *pysyntax.Node) bool {
		if _, ok := logicalLineTypes[n.Type]; ok {
			raw.LLOC++
		}

		switch n.Type {
		case "comment":
			commentLines[n.StartLine] = struct{}{}
		case "expression_statement":
			if isStringStatement(n) {
				for line := n.StartLine; line <= n.EndLine; line++ {
					multiLines[line] = struct{}{}
				}
			}
		}

		return true
	})

	raw.Comments = len(commentLines)

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			raw.Blank++
		case strings.HasPrefix(trimmed, "#"):
			raw.SingleComments++
		default:
			if _, ok := multiLines[i+1]; ok {
				raw.Multi++
			} else {
				raw.SLOC++
			}
		}
	}

	return raw
}

func isStringStatement(n *pysyntax.Node) bool {
	named := n.NamedChildren()

	return len(named) == 1 && (named[0].Type == "string" || named[0].Type == "concatenated_string")
}
