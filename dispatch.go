package lspeasy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gossip-lsp/lspeasy/jsonrpc"
	"github.com/gossip-lsp/lspeasy/middleware"
	"github.com/gossip-lsp/lspeasy/protocol"
)

// loop dispatches inbound messages one at a time until the stream ends or a
// shutdown request arrives. A closed or failing stream is a normal end.
func (s *Server) loop(ctx context.Context) error {
	conn := s.connection()
	for {
		msg, err := conn.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Info("inbound stream closed", "reason", err)
			return nil
		}
		if req, ok := msg.(*jsonrpc.Request); ok && req.Method == protocol.MethodShutdown {
			s.setState(StateShuttingDown)
			return s.acknowledgeShutdown(ctx, req.ID)
		}
		s.handle(ctx, msg)
	}
}

// handle runs one message through the middleware chain and settles the
// outcome: a request whose token went unused when an error came back gets
// an error response.
func (s *Server) handle(ctx context.Context, msg jsonrpc.Message) {
	var rsp *responder
	if req, ok := msg.(*jsonrpc.Request); ok {
		rsp = newResponder(s, req)
	}
	next := middleware.Handler(func(ctx context.Context, msg jsonrpc.Message) error {
		return s.dispatch(ctx, msg, rsp)
	})
	if len(s.middlewares) > 0 {
		next = middleware.Chain(s.middlewares...)(next)
	}

	err := next(ctx, msg)
	if err == nil {
		return
	}
	method := jsonrpc.Method(msg)
	if errors.Is(err, ErrMalformedPayload) {
		s.logger.Warn("dropping malformed message", "method", method, "error", err)
		if _, ok := msg.(*jsonrpc.Notification); ok {
			s.clientLog(protocol.Warning, err.Error())
		}
	} else {
		s.logger.Error("handler failed", "method", method, "error", err)
	}
	if rsp != nil && !rsp.done() {
		jerr := &jsonrpc.Error{Code: jsonrpc.CodeInternalError, Message: err.Error()}
		errors.As(err, &jerr)
		if err := rsp.reply(nil, jerr); err != nil {
			s.logger.Error("sending error response", "method", method, "error", err)
		}
	}
}

func (s *Server) dispatch(ctx context.Context, msg jsonrpc.Message, rsp *responder) error {
	switch m := msg.(type) {
	case *jsonrpc.Request:
		return s.dispatchRequest(ctx, m, rsp)
	case *jsonrpc.Notification:
		return s.dispatchNotification(ctx, m)
	case *jsonrpc.Response:
		// The server never sends requests, so nothing is waiting for this.
		s.logger.Debug("discarding response", "id", m.ID.String())
	}
	return nil
}

func (s *Server) dispatchRequest(ctx context.Context, req *jsonrpc.Request, rsp *responder) error {
	switch req.Method {
	case protocol.MethodCompletion:
		var p struct {
			TextDocument protocol.TextDocumentIdentifier `json:"textDocument"`
			Position     *protocol.Position              `json:"position"`
			Context      *protocol.CompletionContext     `json:"context"`
		}
		if err := decodeParams(req.Method, req.Params, &p); err != nil {
			return s.rejectRequest(rsp, err)
		}
		if p.Position == nil {
			return s.rejectRequest(rsp, missingField(req.Method, "position"))
		}
		return s.handler.Completion(s.newContext(ctx), &CompletionRequest{
			TextDocument: p.TextDocument,
			Position:     *p.Position,
			Context:      p.Context,
			r:            rsp,
		})

	case protocol.MethodDiagnostic:
		var p struct {
			TextDocument     *protocol.TextDocumentIdentifier `json:"textDocument"`
			Identifier       string                           `json:"identifier"`
			PreviousResultID string                           `json:"previousResultId"`
		}
		if err := decodeParams(req.Method, req.Params, &p); err != nil {
			return s.rejectRequest(rsp, err)
		}
		if p.TextDocument == nil || p.TextDocument.URI == "" {
			return s.rejectRequest(rsp, missingField(req.Method, "textDocument.uri"))
		}
		return s.handler.Diagnostics(s.newContext(ctx), &DiagnosticsRequest{
			TextDocument:     *p.TextDocument,
			Identifier:       p.Identifier,
			PreviousResultID: p.PreviousResultID,
			r:                rsp,
		})
	}

	// Unknown requests are reported to the client and left unanswered.
	rsp.claim()
	s.logger.Warn("unrecognized request", "method", req.Method, "id", req.ID.String())
	s.clientLog(protocol.Warning, fmt.Sprintf("unrecognized request %s (id %s)", req.Method, req.ID))
	return nil
}

// rejectRequest answers a malformed request with InvalidParams and returns
// the payload error for logging.
func (s *Server) rejectRequest(rsp *responder, err error) error {
	if rerr := rsp.reply(nil, &jsonrpc.Error{Code: jsonrpc.CodeInvalidParams, Message: err.Error()}); rerr != nil {
		s.logger.Error("sending error response", "method", rsp.method, "error", rerr)
	}
	return err
}

func (s *Server) dispatchNotification(ctx context.Context, n *jsonrpc.Notification) error {
	switch n.Method {
	case protocol.MethodDidOpen:
		var p struct {
			TextDocument *protocol.TextDocumentItem `json:"textDocument"`
		}
		if err := decodeParams(n.Method, n.Params, &p); err != nil {
			return err
		}
		if p.TextDocument == nil || p.TextDocument.URI == "" {
			return missingField(n.Method, "textDocument.uri")
		}
		s.docs.Open(*p.TextDocument)
		return s.handler.TextDocumentOpened(s.newContext(ctx), *p.TextDocument)

	case protocol.MethodDidChange:
		var p struct {
			TextDocument   *protocol.VersionedTextDocumentIdentifier `json:"textDocument"`
			ContentChanges []protocol.TextDocumentContentChangeEvent `json:"contentChanges"`
		}
		if err := decodeParams(n.Method, n.Params, &p); err != nil {
			return err
		}
		if p.TextDocument == nil || p.TextDocument.URI == "" {
			return missingField(n.Method, "textDocument.uri")
		}
		if p.ContentChanges == nil {
			return missingField(n.Method, "contentChanges")
		}
		if s.docs.Change(*p.TextDocument, p.ContentChanges) == nil {
			s.logger.Debug("change for unopened document", "uri", p.TextDocument.URI)
		}
		return s.handler.TextDocumentChanged(s.newContext(ctx), *p.TextDocument, p.ContentChanges)

	case protocol.MethodDidSave:
		var p struct {
			TextDocument *protocol.TextDocumentIdentifier `json:"textDocument"`
			Text         *string                          `json:"text"`
		}
		if err := decodeParams(n.Method, n.Params, &p); err != nil {
			return err
		}
		if p.TextDocument == nil || p.TextDocument.URI == "" {
			return missingField(n.Method, "textDocument.uri")
		}
		return s.handler.TextDocumentSaved(s.newContext(ctx), *p.TextDocument, p.Text)

	case protocol.MethodDidClose:
		var p struct {
			TextDocument *protocol.TextDocumentIdentifier `json:"textDocument"`
		}
		if err := decodeParams(n.Method, n.Params, &p); err != nil {
			return err
		}
		if p.TextDocument == nil || p.TextDocument.URI == "" {
			return missingField(n.Method, "textDocument.uri")
		}
		s.docs.Close(p.TextDocument.URI)
		return s.handler.TextDocumentClosed(s.newContext(ctx), *p.TextDocument)
	}

	s.logger.Warn("unrecognized notification", "method", n.Method)
	s.clientLog(protocol.Warning, fmt.Sprintf("unrecognized notification %s", n.Method))
	return nil
}

func decodeParams(method string, raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 || string(raw) == "null" {
		return &PayloadError{Method: method, Err: errors.New("missing params")}
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &PayloadError{Method: method, Err: err}
	}
	return nil
}

func missingField(method, field string) error {
	return &PayloadError{Method: method, Err: fmt.Errorf("missing %s", field)}
}
