package lspeasy

import (
	"context"
	"log/slog"

	"github.com/gossip-lsp/lspeasy/document"
	"github.com/gossip-lsp/lspeasy/protocol"
)

// Context is handed to every callback. It carries the dispatch context and
// shortcuts to the session.
type Context struct {
	context.Context

	Documents *document.Store
	server    *Server
}

func (s *Server) newContext(ctx context.Context) *Context {
	return &Context{Context: ctx, Documents: s.docs, server: s}
}

// Server returns the session. It may be kept and used from other goroutines
// for the outbound helpers.
func (c *Context) Server() *Server { return c.server }

func (c *Context) Logger() *slog.Logger { return c.server.logger }

// Document returns the open document for uri, or nil.
func (c *Context) Document(uri protocol.DocumentURI) *document.Document {
	return c.Documents.Get(uri)
}

// Log is shorthand for Server().Log.
func (c *Context) Log(message string, typ protocol.MessageType) error {
	return c.server.Log(message, typ)
}

// SendDiagnostics is shorthand for Server().SendDiagnostics.
func (c *Context) SendDiagnostics(uri protocol.DocumentURI, diags []protocol.Diagnostic) error {
	return c.server.SendDiagnostics(uri, diags)
}

// WorkspaceRoot returns the first workspace folder, or "" when the client
// opened no folder.
func (c *Context) WorkspaceRoot() protocol.DocumentURI {
	if folders := c.server.WorkspaceFolders(); len(folders) > 0 {
		return folders[0].URI
	}
	return ""
}
