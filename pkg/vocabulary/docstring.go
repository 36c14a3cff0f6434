package vocabulary

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Sumatoshi-tech/codelex/pkg/pysyntax"
)

// Docstrings returns the docstrings of the module and of every class and
// function (async included), in source order. Empty docstrings are dropped.
func Docstrings(tree *pysyntax.Tree) []string {
	if tree == nil || tree.Root == nil {
		return nil
	}

	var out []string

	add := func(body *pysyntax.Node) {
		if doc, ok := docstring(tree, body); ok && strings.TrimSpace(doc) != "" {
			out = append(out, doc)
		}
	}

	pysyntax.Inspect(tree.Root, func(n, _ *pysyntax.Node) bool {
		switch n.Type {
		case "module":
			add(n)
		case "function_definition", "class_definition":
			add(n.ChildByField("body"))
		}

		return true
	})

	return out
}

// docstring returns the value of the string literal forming the first
// statement of body.
func docstring(tree *pysyntax.Tree, body *pysyntax.Node) (string, bool) {
	first := firstStatement(body)
	if first == nil || first.Type != "expression_statement" {
		return "", false
	}

	named := first.NamedChildren()
	if len(named) != 1 {
		return "", false
	}

	switch lit := named[0]; lit.Type {
	case "string":
		return literalValue(tree.Text(lit))
	case "concatenated_string":
		var b strings.Builder

		for _, part := range lit.NamedChildren() {
			if part.Type != "string" {
				continue
			}

			v, ok := literalValue(tree.Text(part))
			if !ok {
				return "", false
			}

			b.WriteString(v)
		}

		return b.String(), true
	default:
		return "", false
	}
}

func firstStatement(body *pysyntax.Node) *pysyntax.Node {
	for _, c := range body.NamedChildren() {
		if c.Type != "comment" {
			return c
		}
	}

	return nil
}

// literalValue decodes a Python str literal. Bytes and f-strings are not
// docstrings and report false.
func literalValue(src string) (string, bool) {
	end := strings.IndexAny(src, `'"`)
	if end < 0 {
		return "", false
	}

	prefix := strings.ToLower(src[:end])
	if strings.ContainsAny(prefix, "bf") {
		return "", false
	}

	body := src[end:]

	quote := body[:1]
	if strings.HasPrefix(body, strings.Repeat(quote, 3)) && len(body) >= 6 {
		quote = strings.Repeat(quote, 3)
	}

	if len(body) < 2*len(quote) || !strings.HasSuffix(body, quote) {
		return "", false
	}

	body = body[len(quote) : len(body)-len(quote)]

	if strings.Contains(prefix, "r") {
		return body, true
	}

	return unescape(body), true
}

// unescape resolves backslash escapes. Unknown escapes keep their backslash.
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder

	b.Grow(len(s))

	for len(s) > 0 {
		if s[0] != '\\' {
			r, size := utf8.DecodeRuneInString(s)
			b.WriteRune(r)
			s = s[size:]

			continue
		}

		if len(s) >= 2 {
			switch s[1] {
			case '\n':
				s = s[2:]

				continue
			case '\'', '"':
				b.WriteByte(s[1])
				s = s[2:]

				continue
			}
		}

		r, _, tail, err := strconv.UnquoteChar(s, 0)
		if err != nil {
			b.WriteByte('\\')
			s = s[1:]

			continue
		}

		b.WriteRune(r)
		s = tail
	}

	return b.String()
}
