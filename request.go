package lspeasy

import (
	"fmt"
	"sync/atomic"

	"github.com/gossip-lsp/lspeasy/jsonrpc"
	"github.com/gossip-lsp/lspeasy/protocol"
)

// responder ties one inbound request id to its single response. Whoever
// claims it first (the callback through a token, or the dispatcher after a
// failure) is the only one that may send.
type responder struct {
	server  *Server
	id      jsonrpc.ID
	method  string
	claimed atomic.Bool
}

func newResponder(s *Server, req *jsonrpc.Request) *responder {
	return &responder{server: s, id: req.ID, method: req.Method}
}

func (r *responder) claim() bool { return r.claimed.CompareAndSwap(false, true) }

func (r *responder) done() bool { return r.claimed.Load() }

func (r *responder) reply(result interface{}, rerr error) error {
	if !r.claim() {
		r.server.logger.Error("request token reused", "method", r.method, "id", r.id.String())
		return fmt.Errorf("%s %s: %w", r.method, r.id, ErrAlreadyResponded)
	}
	return r.server.send(jsonrpc.NewResponse(r.id, result, rerr))
}

// CompletionRequest is the token handed to Handler.Completion. Respond may
// be called at most once, from any goroutine; leaving it unused leaves the
// client waiting.
type CompletionRequest struct {
	TextDocument protocol.TextDocumentIdentifier
	Position     protocol.Position
	// Context is nil when the client did not say how completion was triggered.
	Context *protocol.CompletionContext

	r *responder
}

// ID returns the id of the originating request.
func (req *CompletionRequest) ID() jsonrpc.ID { return req.r.id }

// Responded reports whether the token has been used.
func (req *CompletionRequest) Responded() bool { return req.r.done() }

// Respond sends items as the result, unchanged. A nil slice is sent as an
// empty array.
func (req *CompletionRequest) Respond(items []protocol.CompletionItem) error {
	if items == nil {
		items = []protocol.CompletionItem{}
	}
	return req.r.reply(items, nil)
}

// Fail answers the request with an error instead of a result. A
// *jsonrpc.Error is sent as is; anything else becomes an InternalError.
func (req *CompletionRequest) Fail(err error) error { return req.r.reply(nil, err) }

// DiagnosticsRequest is the token handed to Handler.Diagnostics.
type DiagnosticsRequest struct {
	TextDocument     protocol.TextDocumentIdentifier
	Identifier       string
	PreviousResultID string

	r *responder
}

// ID returns the id of the originating request.
func (req *DiagnosticsRequest) ID() jsonrpc.ID { return req.r.id }

// Responded reports whether the token has been used.
func (req *DiagnosticsRequest) Responded() bool { return req.r.done() }

// URI is shorthand for TextDocument.URI.
func (req *DiagnosticsRequest) URI() protocol.DocumentURI { return req.TextDocument.URI }

// Respond wraps diags in a full document diagnostic report and sends it.
func (req *DiagnosticsRequest) Respond(diags []protocol.Diagnostic) error {
	if diags == nil {
		diags = []protocol.Diagnostic{}
	}
	return req.r.reply(protocol.FullDocumentDiagnosticReport{
		Kind:  protocol.ReportFull,
		Items: diags,
	}, nil)
}

// Fail answers the request with an error instead of a result. A
// *jsonrpc.Error is sent as is; anything else becomes an InternalError.
func (req *DiagnosticsRequest) Fail(err error) error { return req.r.reply(nil, err) }
