package lspeasytest

import (
	"strings"

	"github.com/gossip-lsp/lspeasy/protocol"
)

// FileURI creates a file:// URI from an absolute slash-separated path.
func FileURI(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return "file://" + path
}

// Pos creates a protocol.Position from line and character (0-indexed).
func Pos(line, char uint32) protocol.Position {
	return protocol.Position{Line: line, Character: char}
}

// Rng creates a protocol.Range from start and end positions.
func Rng(startLine, startChar, endLine, endChar uint32) protocol.Range {
	return protocol.Range{
		Start: Pos(startLine, startChar),
		End:   Pos(endLine, endChar),
	}
}

// Str returns a pointer to s, for optional text fields such as didSave's.
func Str(s string) *string { return &s }
