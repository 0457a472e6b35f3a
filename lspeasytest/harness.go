// Package lspeasytest provides testing utilities for lspeasy servers.
// It includes an in-memory client that talks to a server without network
// I/O, plus assertion helpers for common LSP patterns.
package lspeasytest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gossip-lsp/lspeasy"
	"github.com/gossip-lsp/lspeasy/jsonrpc"
	"github.com/gossip-lsp/lspeasy/protocol"
	"github.com/gossip-lsp/lspeasy/transport"
)

// DefaultTimeout bounds every round trip and wait performed by a Client.
var DefaultTimeout = 5 * time.Second

// barrierMethod is an unknown request the server logs and never answers.
// The log line echoes the request id, which makes it a sequencing point.
const barrierMethod = "$/lspeasytest/barrier"

// Client is a test LSP client connected to a server over an in-memory
// transport. It provides typed helpers for the requests and notifications
// the server understands.
type Client struct {
	t    testing.TB
	conn *jsonrpc.Conn

	nextID atomic.Int64
	done   chan struct{}
	served chan struct{}

	mu            sync.Mutex
	pending       map[string]chan *jsonrpc.Response
	notifications []notification
	signal        chan struct{}
	serveErr      error
}

type notification struct {
	Method string
	Params json.RawMessage
}

// NewClient starts s in a background goroutine, connects a client to it and
// performs the initialize handshake. The session is torn down when the test
// completes.
func NewClient(t testing.TB, s *lspeasy.Server) *Client {
	t.Helper()
	c := Connect(t, s)
	c.Initialize(protocol.InitializeParams{})
	return c
}

// Connect is NewClient without the handshake.
func Connect(t testing.TB, s *lspeasy.Server) *Client {
	t.Helper()
	clientTransport, serverTransport := transport.MemoryPipe()
	ctx, cancel := context.WithCancel(context.Background())

	c := &Client{
		t:       t,
		conn:    jsonrpc.NewConn(jsonrpc.NewCodec(clientTransport, clientTransport), clientTransport),
		done:    make(chan struct{}),
		served:  make(chan struct{}),
		pending: make(map[string]chan *jsonrpc.Response),
		signal:  make(chan struct{}),
	}
	c.conn.Start()

	go func() {
		defer close(c.served)
		err := lspeasy.Serve(ctx, s, lspeasy.WithTransport(serverTransport))
		c.mu.Lock()
		c.serveErr = err
		c.mu.Unlock()
	}()
	go c.read(ctx)

	t.Cleanup(func() {
		cancel()
		c.conn.Close()
		<-c.done
		select {
		case <-c.served:
		case <-time.After(DefaultTimeout):
			t.Errorf("server did not stop")
		}
	})
	return c
}

// read routes responses to their callers and records notifications.
func (c *Client) read(ctx context.Context) {
	defer close(c.done)
	for {
		msg, err := c.conn.Next(ctx)
		if err != nil {
			return
		}
		switch m := msg.(type) {
		case *jsonrpc.Response:
			c.mu.Lock()
			ch, ok := c.pending[m.ID.String()]
			delete(c.pending, m.ID.String())
			c.mu.Unlock()
			if ok {
				ch <- m
			} else {
				c.t.Logf("unexpected response for id %s", m.ID)
			}
		case *jsonrpc.Notification:
			c.mu.Lock()
			c.notifications = append(c.notifications, notification{Method: m.Method, Params: m.Params})
			close(c.signal)
			c.signal = make(chan struct{})
			c.mu.Unlock()
		case *jsonrpc.Request:
			c.t.Logf("unexpected server request %s", m.Method)
		}
	}
}

// Initialize sends initialize with params followed by initialized.
func (c *Client) Initialize(params protocol.InitializeParams) *protocol.InitializeResult {
	c.t.Helper()
	var result protocol.InitializeResult
	if err := c.Call(protocol.MethodInitialize, params, &result); err != nil {
		c.t.Fatalf("initialize: %v", err)
	}
	c.Notify(protocol.MethodInitialized, struct{}{})
	return &result
}

// Call sends a request and decodes its result into result, which may be
// nil. A JSON-RPC error response is returned as a *jsonrpc.Error.
func (c *Client) Call(method string, params, result interface{}) error {
	c.t.Helper()
	ch, id, err := c.send(method, params)
	if err != nil {
		return err
	}
	select {
	case resp := <-ch:
		if resp.Error != nil {
			return resp.Error
		}
		if result != nil && len(resp.Result) > 0 {
			if err := json.Unmarshal(resp.Result, result); err != nil {
				return fmt.Errorf("unmarshalling %s result: %w", method, err)
			}
		}
		return nil
	case <-time.After(DefaultTimeout):
		c.forget(id)
		return fmt.Errorf("%s: no response within %s", method, DefaultTimeout)
	}
}

// CallUnanswered sends a request and fails the test if a response arrives
// before the server has moved on to later messages.
func (c *Client) CallUnanswered(method string, params interface{}) {
	c.t.Helper()
	ch, id, err := c.send(method, params)
	if err != nil {
		c.t.Fatalf("%s: %v", method, err)
	}
	c.Sync()
	select {
	case resp := <-ch:
		c.t.Errorf("%s: unexpected response %+v", method, resp)
	default:
		c.forget(id)
	}
}

func (c *Client) send(method string, params interface{}) (chan *jsonrpc.Response, jsonrpc.ID, error) {
	id := jsonrpc.IntID(c.nextID.Add(1))
	req, err := jsonrpc.NewRequest(id, method, params)
	if err != nil {
		return nil, id, err
	}
	ch := make(chan *jsonrpc.Response, 1)
	c.mu.Lock()
	c.pending[id.String()] = ch
	c.mu.Unlock()
	if err := c.conn.Send(req); err != nil {
		c.forget(id)
		return nil, id, err
	}
	return ch, id, nil
}

func (c *Client) forget(id jsonrpc.ID) {
	c.mu.Lock()
	delete(c.pending, id.String())
	c.mu.Unlock()
}

// Notify sends a notification.
func (c *Client) Notify(method string, params interface{}) {
	c.t.Helper()
	if err := c.conn.Notify(method, params); err != nil {
		c.t.Fatalf("notify %s: %v", method, err)
	}
}

// Sync returns once the server has processed every message sent before it.
func (c *Client) Sync() {
	c.t.Helper()
	_, id, err := c.send(barrierMethod, nil)
	if err != nil {
		c.t.Fatalf("sync: %v", err)
	}
	defer c.forget(id)
	marker := fmt.Sprintf("%s (id %s)", barrierMethod, id)
	if !c.waitFor(func(n notification) bool {
		return n.Method == protocol.MethodLogMessage && strings.Contains(string(n.Params), marker)
	}) {
		c.t.Fatalf("sync: server did not reach barrier %s", id)
	}
}

// Open sends textDocument/didOpen for a plaintext document at version 1.
func (c *Client) Open(uri, text string) {
	c.t.Helper()
	c.OpenWithLanguage(uri, "plaintext", text)
}

// OpenWithLanguage sends textDocument/didOpen with a language id.
func (c *Client) OpenWithLanguage(uri, languageID, text string) {
	c.t.Helper()
	c.Notify(protocol.MethodDidOpen, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        protocol.DocumentURI(uri),
			LanguageID: languageID,
			Version:    1,
			Text:       text,
		},
	})
}

// Change sends textDocument/didChange replacing the whole content.
func (c *Client) Change(uri string, version int32, text string) {
	c.t.Helper()
	c.ChangeEvents(uri, version, protocol.TextDocumentContentChangeEvent{Text: text})
}

// ChangeIncremental sends textDocument/didChange replacing rng with text.
func (c *Client) ChangeIncremental(uri string, version int32, rng protocol.Range, text string) {
	c.t.Helper()
	c.ChangeEvents(uri, version, protocol.TextDocumentContentChangeEvent{Range: &rng, Text: text})
}

// ChangeEvents sends textDocument/didChange with the given events.
func (c *Client) ChangeEvents(uri string, version int32, events ...protocol.TextDocumentContentChangeEvent) {
	c.t.Helper()
	c.Notify(protocol.MethodDidChange, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: protocol.DocumentURI(uri)},
			Version:                version,
		},
		ContentChanges: events,
	})
}

// Save sends textDocument/didSave, including text when it is non-nil.
func (c *Client) Save(uri string, text *string) {
	c.t.Helper()
	c.Notify(protocol.MethodDidSave, &protocol.DidSaveTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: protocol.DocumentURI(uri)},
		Text:         text,
	})
}

// Close sends textDocument/didClose.
func (c *Client) Close(uri string) {
	c.t.Helper()
	c.Notify(protocol.MethodDidClose, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: protocol.DocumentURI(uri)},
	})
}

// Completion sends textDocument/completion.
func (c *Client) Completion(uri string, pos protocol.Position) ([]protocol.CompletionItem, error) {
	c.t.Helper()
	var items []protocol.CompletionItem
	err := c.Call(protocol.MethodCompletion, &protocol.CompletionParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: protocol.DocumentURI(uri)},
		Position:     pos,
	}, &items)
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Diagnostic sends a pull-style textDocument/diagnostic request.
func (c *Client) Diagnostic(uri string) (*protocol.FullDocumentDiagnosticReport, error) {
	c.t.Helper()
	var report protocol.FullDocumentDiagnosticReport
	err := c.Call(protocol.MethodDiagnostic, &protocol.DocumentDiagnosticParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: protocol.DocumentURI(uri)},
	}, &report)
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// Shutdown sends the shutdown request and fails the test on error.
func (c *Client) Shutdown() {
	c.t.Helper()
	if err := c.Call(protocol.MethodShutdown, nil, nil); err != nil {
		c.t.Fatalf("shutdown: %v", err)
	}
}

// Exit sends the exit notification.
func (c *Client) Exit() {
	c.t.Helper()
	c.Notify(protocol.MethodExit, nil)
}

// Wait blocks until Serve returns and reports its error.
func (c *Client) Wait() error {
	c.t.Helper()
	select {
	case <-c.served:
	case <-time.After(DefaultTimeout):
		c.t.Fatalf("server did not stop within %s", DefaultTimeout)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.serveErr
}

// Logs returns every window/logMessage received so far, in order.
func (c *Client) Logs() []protocol.LogMessageParams {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []protocol.LogMessageParams
	for _, n := range c.notifications {
		if p, ok := decodeLog(n); ok {
			out = append(out, p)
		}
	}
	return out
}

// WaitForLog waits until a window/logMessage containing substr arrives.
func (c *Client) WaitForLog(substr string) protocol.LogMessageParams {
	c.t.Helper()
	var found protocol.LogMessageParams
	if !c.waitFor(func(n notification) bool {
		p, ok := decodeLog(n)
		if ok && strings.Contains(p.Message, substr) {
			found = p
			return true
		}
		return false
	}) {
		c.t.Fatalf("timed out waiting for log message containing %q", substr)
	}
	return found
}

func decodeLog(n notification) (protocol.LogMessageParams, bool) {
	var p protocol.LogMessageParams
	if n.Method != protocol.MethodLogMessage || json.Unmarshal(n.Params, &p) != nil {
		return p, false
	}
	return p, !strings.Contains(p.Message, barrierMethod)
}

// Diagnostics returns every publishDiagnostics notification received so far.
func (c *Client) Diagnostics() []protocol.PublishDiagnosticsParams {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []protocol.PublishDiagnosticsParams
	for _, n := range c.notifications {
		if p, ok := decodeDiagnostics(n); ok {
			out = append(out, p)
		}
	}
	return out
}

// WaitForDiagnostics waits until at least count publishDiagnostics
// notifications for uri have arrived and returns the latest one.
func (c *Client) WaitForDiagnostics(uri string, count int) protocol.PublishDiagnosticsParams {
	c.t.Helper()
	var (
		seen   int
		latest protocol.PublishDiagnosticsParams
	)
	if !c.waitFor(func(n notification) bool {
		if p, ok := decodeDiagnostics(n); ok && string(p.URI) == uri {
			seen++
			latest = p
		}
		return seen >= count
	}) {
		c.t.Fatalf("timed out waiting for %d diagnostics notifications on %s", count, uri)
	}
	return latest
}

func decodeDiagnostics(n notification) (protocol.PublishDiagnosticsParams, bool) {
	var p protocol.PublishDiagnosticsParams
	if n.Method != protocol.MethodPublishDiagnostics || json.Unmarshal(n.Params, &p) != nil {
		return p, false
	}
	return p, true
}

// waitFor feeds recorded notifications to match, each once and in arrival
// order, until match reports true or DefaultTimeout elapses.
func (c *Client) waitFor(match func(notification) bool) bool {
	timer := time.NewTimer(DefaultTimeout)
	defer timer.Stop()
	next := 0
	closed := false
	for {
		c.mu.Lock()
		pending := c.notifications[next:]
		next = len(c.notifications)
		signal := c.signal
		c.mu.Unlock()
		for _, n := range pending {
			if match(n) {
				return true
			}
		}
		if closed {
			return false
		}
		select {
		case <-signal:
		case <-c.done:
			closed = true
		case <-timer.C:
			return false
		}
	}
}

// IsCode reports whether err is a JSON-RPC error response with code.
func IsCode(err error, code int) bool {
	var jerr *jsonrpc.Error
	return errors.As(err, &jerr) && jerr.Code == code
}
