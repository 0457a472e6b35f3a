package treesitter

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/gossip-lsp/lspeasy/document"
	"github.com/gossip-lsp/lspeasy/protocol"
)

// Capture is one named node captured by a query.
type Capture struct {
	Name string
	Node *tree_sitter.Node
	Text string
}

// NodeAt returns the deepest node at pos.
func (t *Tree) NodeAt(pos protocol.Position) *tree_sitter.Node {
	if t == nil || t.raw == nil {
		return nil
	}
	off := uint(document.OffsetAt(string(t.src), pos))
	return t.raw.RootNode().DescendantForByteRange(off, off)
}

// NamedNodeAt returns the deepest named node at pos.
func (t *Tree) NamedNodeAt(pos protocol.Position) *tree_sitter.Node {
	if t == nil || t.raw == nil {
		return nil
	}
	off := uint(document.OffsetAt(string(t.src), pos))
	return t.raw.RootNode().NamedDescendantForByteRange(off, off)
}

// Text returns the source text spanned by node.
func (t *Tree) Text(node *tree_sitter.Node) string {
	if t == nil || node == nil {
		return ""
	}
	start, end := node.StartByte(), node.EndByte()
	if start > end || end > uint(len(t.src)) {
		return ""
	}
	return string(t.src[start:end])
}

// Query runs a tree-sitter query against the whole tree, or only within
// the given ranges when any are passed, and returns every capture in match
// order.
func (t *Tree) Query(pattern string, ranges ...protocol.Range) ([]Capture, error) {
	if t == nil || t.raw == nil {
		return nil, nil
	}
	q, qerr := tree_sitter.NewQuery(t.raw.Language(), pattern)
	if qerr != nil {
		return nil, qerr
	}
	defer q.Close()
	names := q.CaptureNames()

	if len(ranges) == 0 {
		return t.collect(q, names, nil), nil
	}
	var out []Capture
	text := string(t.src)
	for _, r := range ranges {
		out = append(out, t.collect(q, names, &[2]uint{
			uint(document.OffsetAt(text, r.Start)),
			uint(document.OffsetAt(text, r.End)),
		})...)
	}
	return out, nil
}

func (t *Tree) collect(q *tree_sitter.Query, names []string, span *[2]uint) []Capture {
	cursor := tree_sitter.NewQueryCursor()
	defer cursor.Close()
	if span != nil {
		cursor.SetByteRange(span[0], span[1])
	}

	var out []Capture
	matches := cursor.Matches(q, t.raw.RootNode(), t.src)
	for m := matches.Next(); m != nil; m = matches.Next() {
		for _, c := range m.Captures {
			node := c.Node
			name := ""
			if int(c.Index) < len(names) {
				name = names[c.Index]
			}
			out = append(out, Capture{Name: name, Node: &node, Text: t.Text(&node)})
		}
	}
	return out
}
