package lspeasytest

import (
	"testing"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/gossip-lsp/lspeasy/treesitter"
)

// ParseString parses src with lang and returns the tree. The tree and its
// parser are released when the test completes.
func ParseString(t testing.TB, lang *tree_sitter.Language, src string) *tree_sitter.Tree {
	t.Helper()
	parser := tree_sitter.NewParser()
	t.Cleanup(parser.Close)

	if err := parser.SetLanguage(lang); err != nil {
		t.Fatalf("setting tree-sitter language: %v", err)
	}
	tree := parser.Parse([]byte(src), nil)
	if tree == nil {
		t.Fatal("tree-sitter returned no tree")
	}
	t.Cleanup(tree.Close)
	return tree
}

// AssertNoErrors asserts that a managed tree contains no ERROR or MISSING
// nodes.
func AssertNoErrors(t testing.TB, tree *treesitter.Tree) {
	t.Helper()
	if tree == nil {
		t.Fatal("tree is nil")
	}
	if diags := treesitter.SyntaxDiagnostics(tree); len(diags) > 0 {
		t.Errorf("parse tree has %d syntax errors, first: %s", len(diags), diags[0].Message)
	}
}

// AssertNodeKind asserts that node has the expected kind.
func AssertNodeKind(t testing.TB, node *tree_sitter.Node, kind string) {
	t.Helper()
	if node == nil {
		t.Fatalf("node is nil, expected kind %q", kind)
	}
	if node.Kind() != kind {
		t.Errorf("node kind = %q, want %q", node.Kind(), kind)
	}
}
