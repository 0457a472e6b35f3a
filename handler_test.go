package lspeasy

import (
	"errors"
	"testing"

	"github.com/gossip-lsp/lspeasy/protocol"
)

func TestNilFuncsAreNoOps(t *testing.T) {
	var f Funcs
	ctx := &Context{}
	if err := f.Init(ctx); err != nil {
		t.Error(err)
	}
	if err := f.Completion(ctx, &CompletionRequest{}); err != nil {
		t.Error(err)
	}
	if err := f.Diagnostics(ctx, &DiagnosticsRequest{}); err != nil {
		t.Error(err)
	}
	if err := f.TextDocumentOpened(ctx, protocol.TextDocumentItem{}); err != nil {
		t.Error(err)
	}
	if err := f.TextDocumentChanged(ctx, protocol.VersionedTextDocumentIdentifier{}, nil); err != nil {
		t.Error(err)
	}
	if err := f.TextDocumentSaved(ctx, protocol.TextDocumentIdentifier{}, nil); err != nil {
		t.Error(err)
	}
	if err := f.TextDocumentClosed(ctx, protocol.TextDocumentIdentifier{}); err != nil {
		t.Error(err)
	}
}

func TestFuncsForwardErrors(t *testing.T) {
	boom := errors.New("boom")
	f := &Funcs{OnSaved: func(*Context, protocol.TextDocumentIdentifier, *string) error { return boom }}
	if err := f.TextDocumentSaved(&Context{}, protocol.TextDocumentIdentifier{}, nil); !errors.Is(err, boom) {
		t.Errorf("got %v, want boom", err)
	}
}

// embedded overrides one slot and inherits the rest.
type embedded struct {
	NopHandler
	inits int
}

func (e *embedded) Init(*Context) error {
	e.inits++
	return nil
}

func TestEmbeddedNopHandler(t *testing.T) {
	h := &embedded{}
	s := NewServer(protocol.ServerCapabilities{}, h, WithLogger(quietLogger()))
	conn := newFakeConn(true, session(t, request(t, 2, protocol.MethodCompletion, protocol.CompletionParams{}))...)
	if err := serve(t, s, conn); err != nil {
		t.Fatalf("Serve: %v", err)
	}
	if h.inits != 1 {
		t.Errorf("Init ran %d times, want 1", h.inits)
	}
	if _, ok := conn.responses()["2"]; ok {
		t.Error("no-op completion slot answered the request")
	}
}

func TestStateString(t *testing.T) {
	want := map[State]string{
		StateInit:         "init",
		StateRunning:      "running",
		StateShuttingDown: "shutting-down",
		StateTerminated:   "terminated",
		State(42):         "unknown",
	}
	for st, s := range want {
		if st.String() != s {
			t.Errorf("State(%d).String() = %q, want %q", int32(st), st.String(), s)
		}
	}
}

func TestPayloadErrorMatchesSentinel(t *testing.T) {
	err := error(&PayloadError{Method: "textDocument/didOpen", Err: errors.New("missing textDocument.uri")})
	if !errors.Is(err, ErrMalformedPayload) {
		t.Error("PayloadError does not match ErrMalformedPayload")
	}
	var perr *PayloadError
	if !errors.As(err, &perr) || perr.Method != "textDocument/didOpen" {
		t.Errorf("errors.As = %+v", perr)
	}
}
