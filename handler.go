package lspeasy

import "github.com/gossip-lsp/lspeasy/protocol"

// Handler is the set of callback slots a server application can fill in.
// Embed NopHandler to get a no-op default for every slot and override only
// what you need.
//
// Callbacks run on the dispatch goroutine, one at a time, in message arrival
// order; a slow callback delays every message behind it. By the time a
// document slot runs, Context.Documents already reflects the change.
//
// Returning an error from a request slot whose token was not used answers
// the request with an InternalError. Errors from notification slots are
// logged.
type Handler interface {
	// Init runs once, after the handshake and before the first message is
	// dispatched. An error aborts the session.
	Init(ctx *Context) error

	// Completion handles textDocument/completion.
	Completion(ctx *Context, req *CompletionRequest) error

	// Diagnostics handles pull-style textDocument/diagnostic.
	Diagnostics(ctx *Context, req *DiagnosticsRequest) error

	TextDocumentOpened(ctx *Context, item protocol.TextDocumentItem) error
	TextDocumentChanged(ctx *Context, id protocol.VersionedTextDocumentIdentifier, changes []protocol.TextDocumentContentChangeEvent) error
	// TextDocumentSaved receives the saved text when the client includes it.
	TextDocumentSaved(ctx *Context, id protocol.TextDocumentIdentifier, text *string) error
	TextDocumentClosed(ctx *Context, id protocol.TextDocumentIdentifier) error
}

// NopHandler implements every Handler slot as a no-op. Request slots that are
// left as no-ops never answer their request.
type NopHandler struct{}

var _ Handler = NopHandler{}

func (NopHandler) Init(*Context) error { return nil }
func (NopHandler) Completion(*Context, *CompletionRequest) error { return nil }
func (NopHandler) Diagnostics(*Context, *DiagnosticsRequest) error { return nil }
func (NopHandler) TextDocumentOpened(*Context, protocol.TextDocumentItem) error { return nil }
func (NopHandler) TextDocumentChanged(*Context, protocol.VersionedTextDocumentIdentifier, []protocol.TextDocumentContentChangeEvent) error {
	return nil
}
func (NopHandler) TextDocumentSaved(*Context, protocol.TextDocumentIdentifier, *string) error {
	return nil
}
func (NopHandler) TextDocumentClosed(*Context, protocol.TextDocumentIdentifier) error { return nil }

// Funcs adapts a set of optional functions to Handler. Nil fields behave
// like NopHandler.
type Funcs struct {
	OnInit        func(ctx *Context) error
	OnCompletion  func(ctx *Context, req *CompletionRequest) error
	OnDiagnostics func(ctx *Context, req *DiagnosticsRequest) error
	OnOpened      func(ctx *Context, item protocol.TextDocumentItem) error
	OnChanged     func(ctx *Context, id protocol.VersionedTextDocumentIdentifier, changes []protocol.TextDocumentContentChangeEvent) error
	OnSaved       func(ctx *Context, id protocol.TextDocumentIdentifier, text *string) error
	OnClosed      func(ctx *Context, id protocol.TextDocumentIdentifier) error
}

var _ Handler = (*Funcs)(nil)

func (f *Funcs) Init(ctx *Context) error {
	if f.OnInit == nil {
		return nil
	}
	return f.OnInit(ctx)
}

func (f *Funcs) Completion(ctx *Context, req *CompletionRequest) error {
	if f.OnCompletion == nil {
		return nil
	}
	return f.OnCompletion(ctx, req)
}

func (f *Funcs) Diagnostics(ctx *Context, req *DiagnosticsRequest) error {
	if f.OnDiagnostics == nil {
		return nil
	}
	return f.OnDiagnostics(ctx, req)
}

func (f *Funcs) TextDocumentOpened(ctx *Context, item protocol.TextDocumentItem) error {
	if f.OnOpened == nil {
		return nil
	}
	return f.OnOpened(ctx, item)
}

func (f *Funcs) TextDocumentChanged(ctx *Context, id protocol.VersionedTextDocumentIdentifier, changes []protocol.TextDocumentContentChangeEvent) error {
	if f.OnChanged == nil {
		return nil
	}
	return f.OnChanged(ctx, id, changes)
}

func (f *Funcs) TextDocumentSaved(ctx *Context, id protocol.TextDocumentIdentifier, text *string) error {
	if f.OnSaved == nil {
		return nil
	}
	return f.OnSaved(ctx, id, text)
}

func (f *Funcs) TextDocumentClosed(ctx *Context, id protocol.TextDocumentIdentifier) error {
	if f.OnClosed == nil {
		return nil
	}
	return f.OnClosed(ctx, id)
}
