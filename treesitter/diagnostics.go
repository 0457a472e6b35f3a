package treesitter

import (
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/gossip-lsp/lspeasy/protocol"
)

// SyntaxSource is the source of diagnostics produced by SyntaxDiagnostics.
const SyntaxSource = "tree-sitter"

// SyntaxDiagnostics reports one error diagnostic per ERROR node and per
// MISSING node in the tree. Subtrees without errors are skipped.
func SyntaxDiagnostics(t *Tree) []protocol.Diagnostic {
	root := t.RootNode()
	if root == nil || !root.HasError() {
		return nil
	}
	var diags []protocol.Diagnostic
	var walk func(n *tree_sitter.Node)
	walk = func(n *tree_sitter.Node) {
		switch {
		case n.IsMissing():
			diags = append(diags, protocol.Diagnostic{
				Range:    t.Range(n),
				Severity: protocol.SeverityError,
				Source:   SyntaxSource,
				Message:  fmt.Sprintf("missing %s", n.Kind()),
			})
			return
		case n.IsError():
			diags = append(diags, protocol.Diagnostic{
				Range:    t.Range(n),
				Severity: protocol.SeverityError,
				Source:   SyntaxSource,
				Message:  syntaxMessage(t, n),
			})
			return
		}
		if !n.HasError() {
			return
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return diags
}

func syntaxMessage(t *Tree, n *tree_sitter.Node) string {
	text := t.Text(n)
	if len(text) > 32 {
		text = text[:32] + "..."
	}
	if text == "" {
		return "syntax error"
	}
	return fmt.Sprintf("syntax error near %q", text)
}
