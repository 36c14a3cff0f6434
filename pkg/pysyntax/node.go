package pysyntax

// Node is a Go-owned copy of one tree-sitter node. Trees outlive the
// tree-sitter parse, so they can be cached and walked without cgo calls.
type Node struct {
	Type      string
	Field     string // field name in the parent, for the fields in trackedFields
	Named     bool
	StartByte int
	EndByte   int
	StartLine int // 1-based
	EndLine   int // 1-based
	Children  []*Node
}

// ChildByField returns the first child tagged with field, or nil.
func (n *Node) ChildByField(field string) *Node {
	if n == nil {
		return nil
	}

	for _, c := range n.Children {
		if c.Field == field {
			return c
		}
	}

	return nil
}

// ChildOfType returns the first direct child of the given type, or nil.
func (n *Node) ChildOfType(typ string) *Node {
	if n == nil {
		return nil
	}

	for _, c := range n.Children {
		if c.Type == typ {
			return c
		}
	}

	return nil
}

// NamedChildren returns the named direct children.
func (n *Node) NamedChildren() []*Node {
	if n == nil {
		return nil
	}

	out := make([]*Node, 0, len(n.Children))

	for _, c := range n.Children {
		if c.Named {
			out = append(out, c)
		}
	}

	return out
}

// Inspect traverses the subtree rooted at n in depth-first pre-order,
// calling fn with each node and its parent (nil for n itself). Children are
// skipped when fn returns false.
func Inspect(n *Node, fn func(n, parent *Node) bool) {
	inspect(n, nil, fn)
}

func inspect(n, parent *Node, fn func(n, parent *Node) bool) {
	if n == nil || !fn(n, parent) {
		return
	}

	for _, c := range n.Children {
		inspect(c, n, fn)
	}
}
