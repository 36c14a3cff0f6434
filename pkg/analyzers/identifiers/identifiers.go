// Package identifiers extracts identifier tokens from Python sources, either
// lexically with a regular expression or from the syntax tree.
package identifiers

import (
	"errors"
	"fmt"
	"regexp"
	"unicode"
	"unicode/utf8"

	"github.com/Sumatoshi-tech/codelex/pkg/pysyntax"
)

// Depth selects how identifiers are extracted.
type Depth string

// Extraction depths.
const (
	// DepthRegex takes every identifier-shaped token, keywords and tokens
	// inside strings or comments included.
	DepthRegex Depth = "regex"
	// DepthSyntax takes declared function and class names plus name references.
	DepthSyntax Depth = "syntax"
)

// ErrUnknownDepth is returned for a depth other than regex or syntax.
var ErrUnknownDepth = errors.New("unknown identifier depth")

var identifierRe = regexp.MustCompile(`\b[A-Za-z_][A-Za-z0-9_]*\b`)

// ParseDepth validates a configured depth name.
func ParseDepth(s string) (Depth, error) {
	switch Depth(s) {
	case DepthRegex, DepthSyntax:
		return Depth(s), nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownDepth, s)
}

// FromText returns every identifier-shaped token of content in order,
// duplicates included. Word boundaries are Unicode-aware, so ASCII fragments
// of words such as "naïve" are not tokens.
func FromText(content []byte) []string {
	locs := identifierRe.FindAllIndex(content, -1)
	out := make([]string, 0, len(locs))

	for _, loc := range locs {
		if before, _ := utf8.DecodeLastRune(content[:loc[0]]); isWordRune(before) {
			continue
		}

		if after, _ := utf8.DecodeRune(content[loc[1]:]); isWordRune(after) {
			continue
		}

		out = append(out, string(content[loc[0]:loc[1]]))
	}

	return out
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// FromSyntax returns function and class names plus referenced names in
// source order, duplicates included. Attribute members, parameter names,
// keyword argument names, exception aliases and import paths are not
// references.
func FromSyntax(tree *pysyntax.Tree) []string {
	if tree == nil || tree.Root == nil {
		return nil
	}

	w := &walker{tree: tree}
	w.walk(tree.Root)

	return w.names
}

type walker struct {
	tree      *pysyntax.Tree
	ancestors []*pysyntax.Node
	names     []string
}

func (w *walker) walk(n *pysyntax.Node) {
	switch n.Type {
	case "import_statement", "import_from_statement", "future_import_statement",
		"global_statement", "nonlocal_statement":
		return
	case "identifier":
		if w.isName(n) {
			w.names = append(w.names, w.tree.Text(n))
		}

		return
	}

	w.ancestors = append(w.ancestors, n)

	for _, c := range n.Children {
		w.walk(c)
	}

	w.ancestors = w.ancestors[:len(w.ancestors)-1]
}

// ancestor returns the i-th ancestor of the node being visited, 1 being the
// parent, or nil.
func (w *walker) ancestor(i int) *pysyntax.Node {
	idx := len(w.ancestors) - i
	if idx < 0 {
		return nil
	}

	return w.ancestors[idx]
}

func (w *walker) isName(n *pysyntax.Node) bool {
	parent := w.ancestor(1)
	if parent == nil {
		return true
	}

	switch parent.Type {
	case "attribute":
		return n.Field != "attribute"
	case "keyword_argument", "default_parameter", "typed_default_parameter":
		return n.Field != "name"
	case "parameters", "lambda_parameters", "typed_parameter", "keyword_pattern":
		return false
	case "list_splat_pattern", "dictionary_splat_pattern":
		return !isParameterContainer(w.ancestor(2))
	case "as_pattern_target":
		return !isExceptAlias(w.ancestor(2), w.ancestor(3))
	case "except_clause", "except_group_clause":
		// Grammars without as_pattern list the alias as a second expression.
		named := parent.NamedChildren()

		return len(named) == 0 || named[0] == n
	}

	return true
}

func isParameterContainer(n *pysyntax.Node) bool {
	if n == nil {
		return false
	}

	switch n.Type {
	case "parameters", "lambda_parameters", "typed_parameter":
		return true
	}

	return false
}

func isExceptAlias(asPattern, clause *pysyntax.Node) bool {
	return asPattern != nil && clause != nil &&
		asPattern.Type == "as_pattern" &&
		(clause.Type == "except_clause" || clause.Type == "except_group_clause")
}
