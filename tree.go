package lspeasy

import (
	"github.com/gossip-lsp/lspeasy/document"
	"github.com/gossip-lsp/lspeasy/protocol"
	"github.com/gossip-lsp/lspeasy/treesitter"
)

// TreeFor returns the parse tree attached to doc, or nil if tree-sitter is
// not enabled or the document's language is not registered.
func TreeFor(doc *document.Document) *treesitter.Tree {
	if doc == nil {
		return nil
	}
	t, _ := doc.Tree().(*treesitter.Tree)
	return t
}

// Tree returns the parse tree of the open document at uri, or nil.
func (c *Context) Tree(uri protocol.DocumentURI) *treesitter.Tree {
	return TreeFor(c.Documents.Get(uri))
}
