// Package pysyntax parses Python sources with tree-sitter and exposes the
// resulting concrete syntax tree as plain Go values.
package pysyntax

import (
	"context"
	"errors"
	"fmt"
	"sync"

	sitter "github.com/alexaandru/go-tree-sitter-bare"
	"github.com/alexaandru/go-sitter-forest/python"

	"github.com/Sumatoshi-tech/codelex/pkg/safeconv"
)

// Sentinel errors for parser operations.
var (
	// ErrSyntax reports that the source parsed only with error recovery.
	ErrSyntax = errors.New("python source has syntax errors")

	errNoRootNode = errors.New("pysyntax: no root node")
	errPoolType   = errors.New("pysyntax: pool returned unexpected type")
	errNoLanguage = errors.New("pysyntax: python grammar not available")
)

// trackedFields are the tree-sitter field names copied onto Node.Field.
var trackedFields = []string{
	"name", "body", "alternative", "attribute", "parameters", "type", "value", "function",
}

// Tree is a parsed Python file.
type Tree struct {
	Root   *Node
	Source []byte

	// HasErrors is set when tree-sitter had to recover from syntax errors.
	HasErrors bool
}

// Text returns the source text spanned by n.
func (t *Tree) Text(n *Node) string {
	if n == nil || n.StartByte < 0 || n.EndByte > len(t.Source) || n.StartByte > n.EndByte {
		return ""
	}

	return string(t.Source[n.StartByte:n.EndByte])
}

// FileParser parses the content of a named file.
type FileParser interface {
	ParseFile(ctx context.Context, path string, content []byte) (*Tree, error)
}

// Parser parses Python sources. It is safe for concurrent use.
type Parser struct {
	pool sync.Pool
}

// NewParser creates a Python parser.
func NewParser() (*Parser, error) {
	var lang *sitter.Language

	func() {
		defer func() {
			_ = recover() //nolint:errcheck // recover() returns any, not error
		}()

		lang = sitter.NewLanguage(python.GetLanguage())
	}()

	if lang == nil {
		return nil, errNoLanguage
	}

	p := &Parser{}
	p.pool = sync.Pool{
		New: func() any {
			tsParser := sitter.NewParser()
			tsParser.SetLanguage(lang)

			return tsParser
		},
	}

	return p, nil
}

// ParseFile parses content; the path is informational only.
func (p *Parser) ParseFile(ctx context.Context, _ string, content []byte) (*Tree, error) {
	return p.Parse(ctx, content)
}

// Parse parses content into a Tree. Syntax errors do not fail the parse;
// they set Tree.HasErrors.
func (p *Parser) Parse(ctx context.Context, content []byte) (*Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tsParser, ok := p.pool.Get().(*sitter.Parser)
	if !ok {
		return nil, errPoolType
	}

	defer p.pool.Put(tsParser)

	tsTree, err := tsParser.ParseString(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("pysyntax: failed to parse: %w", err)
	}
	defer tsTree.Close()

	root := tsTree.RootNode()
	if root.IsNull() {
		return nil, errNoRootNode
	}

	tree := &Tree{Source: content}
	tree.Root = tree.convert(root, "", true)

	return tree, nil
}

func (t *Tree) convert(tsNode sitter.Node, field string, isRoot bool) *Node {
	start := tsNode.StartPoint()
	end := tsNode.EndPoint()

	n := &Node{
		Type:      tsNode.Type(),
		Field:     field,
		Named:     tsNode.IsNamed(),
		StartByte: safeconv.MustUintToInt(uint(tsNode.StartByte())),
		EndByte:   safeconv.MustUintToInt(uint(tsNode.EndByte())),
		StartLine: safeconv.MustUintToInt(uint(start.Row)) + 1,
		EndLine:   safeconv.MustUintToInt(uint(end.Row)) + 1,
	}

	childCount := tsNode.ChildCount()

	if n.Type == "ERROR" || (!isRoot && childCount == 0 && n.StartByte == n.EndByte) {
		t.HasErrors = true
	}

	if childCount == 0 {
		return n
	}

	fields := fieldIndex(tsNode)
	n.Children = make([]*Node, 0, childCount)

	for i := range childCount {
		child := tsNode.Child(i)
		if child.IsNull() {
			continue
		}

		n.Children = append(n.Children, t.convert(child, fields[spanOf(child)], false))
	}

	return n
}

type span struct {
	start, end uint
	typ        string
}

func spanOf(n sitter.Node) span {
	return span{start: uint(n.StartByte()), end: uint(n.EndByte()), typ: n.Type()}
}

// fieldIndex maps the span of each tracked field child to its field name.
func fieldIndex(tsNode sitter.Node) map[span]string {
	var fields map[span]string

	for _, name := range trackedFields {
		child := tsNode.ChildByFieldName(name)
		if child.IsNull() {
			continue
		}

		if fields == nil {
			fields = make(map[span]string, len(trackedFields))
		}

		key := spanOf(child)
		if _, taken := fields[key]; !taken {
			fields[key] = name
		}
	}

	return fields
}
