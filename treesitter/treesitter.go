// Package treesitter keeps a tree-sitter parse tree for every open document
// whose language is registered. Trees are built on open, re-parsed
// incrementally on each change and dropped on close. Positions crossing the
// package boundary are LSP positions (UTF-16 columns); tree-sitter's byte
// columns stay inside.
package treesitter

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/gossip-lsp/lspeasy/document"
	"github.com/gossip-lsp/lspeasy/protocol"
)

// Config configures the tree-sitter integration.
type Config struct {
	// Languages maps file extensions (e.g. ".go") to languages.
	Languages map[string]*tree_sitter.Language

	// Matchers select languages by more than the extension. They are
	// consulted before Languages.
	Matchers []LanguageMatcher
}

// LanguageMatcher associates a language with the documents it parses. At
// least one of Extensions, Filenames, Pattern or LanguageID must be set.
type LanguageMatcher struct {
	Language   *tree_sitter.Language
	Extensions []string // e.g. [".yml", ".yaml"]
	Filenames  []string // exact base names, e.g. ["go.mod"]
	Pattern    string   // path.Match pattern against the URI or base name
	LanguageID string   // LSP languageId, e.g. "yaml"
}

// Tree is the parse tree of one document version.
type Tree struct {
	raw *tree_sitter.Tree
	src []byte
	// Changed lists the ranges whose syntax differs from the previous tree.
	// It is nil after a full parse.
	Changed []protocol.Range
}

// Raw returns the underlying tree-sitter Tree.
func (t *Tree) Raw() *tree_sitter.Tree {
	if t == nil {
		return nil
	}
	return t.raw
}

// Source returns the text the tree was parsed from.
func (t *Tree) Source() []byte {
	if t == nil {
		return nil
	}
	return t.src
}

// RootNode returns the root node, or nil for a nil tree.
func (t *Tree) RootNode() *tree_sitter.Node {
	if t == nil || t.raw == nil {
		return nil
	}
	return t.raw.RootNode()
}

// Range converts the span of node to an LSP range.
func (t *Tree) Range(node *tree_sitter.Node) protocol.Range {
	if t == nil || node == nil {
		return protocol.Range{}
	}
	return t.byteRange(node.StartByte(), node.EndByte())
}

func (t *Tree) byteRange(start, end uint) protocol.Range {
	text := string(t.src)
	return protocol.Range{
		Start: document.PositionAt(text, int(start)),
		End:   document.PositionAt(text, int(end)),
	}
}

// Close releases the tree-sitter tree.
func (t *Tree) Close() {
	if t != nil && t.raw != nil {
		t.raw.Close()
	}
}
