package lspeasytest_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gossip-lsp/lspeasy"
	"github.com/gossip-lsp/lspeasy/jsonrpc"
	"github.com/gossip-lsp/lspeasy/lspeasytest"
	"github.com/gossip-lsp/lspeasy/protocol"
	"github.com/gossip-lsp/lspeasy/treesitter"
)

func TestClientCompletion(t *testing.T) {
	s := lspeasy.NewServer(protocol.ServerCapabilities{CompletionProvider: &protocol.CompletionOptions{}}, &lspeasy.Funcs{
		OnCompletion: func(ctx *lspeasy.Context, req *lspeasy.CompletionRequest) error {
			label := fmt.Sprintf("char%dline%d", req.Position.Character, req.Position.Line)
			return req.Respond([]protocol.CompletionItem{{Label: label}})
		},
	})
	c := lspeasytest.NewClient(t, s)

	items, err := c.Completion(lspeasytest.FileURI("/a.txt"), lspeasytest.Pos(3, 7))
	if err != nil {
		t.Fatalf("completion: %v", err)
	}
	if diff := cmp.Diff([]protocol.CompletionItem{{Label: "char7line3"}}, items); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}
	lspeasytest.AssertCompletionContains(t, items, "char7line3")
}

func TestClientDiagnosticPull(t *testing.T) {
	s := lspeasy.NewServer(protocol.ServerCapabilities{}, &lspeasy.Funcs{
		OnDiagnostics: func(ctx *lspeasy.Context, req *lspeasy.DiagnosticsRequest) error {
			doc := ctx.Document(req.URI())
			if doc == nil {
				return req.Respond(nil)
			}
			return req.Respond([]protocol.Diagnostic{{
				Range:   lspeasytest.Rng(0, 0, 0, 1),
				Message: doc.Text(),
			}})
		},
	})
	c := lspeasytest.NewClient(t, s)
	uri := lspeasytest.FileURI("/doc.txt")

	report, err := c.Diagnostic(uri)
	if err != nil {
		t.Fatalf("diagnostic: %v", err)
	}
	if report.Kind != protocol.ReportFull || len(report.Items) != 0 {
		t.Errorf("report for unopened document = %+v", report)
	}

	c.Open(uri, "hello")
	report, err = c.Diagnostic(uri)
	if err != nil {
		t.Fatalf("diagnostic: %v", err)
	}
	lspeasytest.AssertDiagnosticAt(t, report.Items, lspeasytest.Rng(0, 0, 0, 1), "hello")
}

func TestClientPushDiagnostics(t *testing.T) {
	s := lspeasy.NewServer(protocol.ServerCapabilities{}, &lspeasy.Funcs{
		OnChanged: func(ctx *lspeasy.Context, id protocol.VersionedTextDocumentIdentifier, _ []protocol.TextDocumentContentChangeEvent) error {
			text := ctx.Document(id.URI).Text()
			return ctx.SendDiagnostics(id.URI, []protocol.Diagnostic{{Message: text}})
		},
	})
	c := lspeasytest.NewClient(t, s)
	uri := lspeasytest.FileURI("/doc.txt")

	c.Open(uri, "one")
	c.Change(uri, 2, "two")
	got := c.WaitForDiagnostics(uri, 1)
	if got.Version == nil || *got.Version != 2 {
		t.Errorf("version = %v, want 2", got.Version)
	}
	lspeasytest.AssertDiagnosticCount(t, c.Diagnostics(), uri, 1)
	if got.Diagnostics[0].Message != "two" {
		t.Errorf("message = %q, want %q", got.Diagnostics[0].Message, "two")
	}
}

func TestClientUnknownRequestIsNotAnswered(t *testing.T) {
	s := lspeasy.NewServer(protocol.ServerCapabilities{}, nil)
	c := lspeasytest.NewClient(t, s)

	c.CallUnanswered("textDocument/hover", map[string]int{"x": 1})
	lspeasytest.AssertLogged(t, c.Logs(), protocol.Warning, "unrecognized request textDocument/hover")
}

func TestClientMalformedRequest(t *testing.T) {
	s := lspeasy.NewServer(protocol.ServerCapabilities{}, nil)
	c := lspeasytest.NewClient(t, s)

	err := c.Call(protocol.MethodCompletion, map[string]string{"textDocument": "nope"}, nil)
	if !lspeasytest.IsCode(err, jsonrpc.CodeInvalidParams) {
		t.Errorf("err = %v, want InvalidParams", err)
	}
}

func TestClientHandlerError(t *testing.T) {
	s := lspeasy.NewServer(protocol.ServerCapabilities{}, &lspeasy.Funcs{
		OnCompletion: func(*lspeasy.Context, *lspeasy.CompletionRequest) error {
			return errors.New("index not ready")
		},
	})
	c := lspeasytest.NewClient(t, s)

	_, err := c.Completion(lspeasytest.FileURI("/a.txt"), lspeasytest.Pos(0, 0))
	if !lspeasytest.IsCode(err, jsonrpc.CodeInternalError) {
		t.Errorf("err = %v, want InternalError", err)
	}
}

func TestClientShutdownAndExit(t *testing.T) {
	s := lspeasy.NewServer(protocol.ServerCapabilities{}, nil)
	c := lspeasytest.NewClient(t, s)

	c.Shutdown()
	c.Exit()
	if err := c.Wait(); err != nil {
		t.Errorf("serve returned %v, want nil", err)
	}
	if s.State() != lspeasy.StateTerminated {
		t.Errorf("state = %s, want terminated", s.State())
	}
}

func TestClientInitializeResult(t *testing.T) {
	caps := protocol.ServerCapabilities{CompletionProvider: &protocol.CompletionOptions{TriggerCharacters: []string{"."}}}
	s := lspeasy.NewServer(caps, nil, lspeasy.WithServerInfo("demo", "1.2.3"))
	c := lspeasytest.Connect(t, s)

	root := protocol.DocumentURI(lspeasytest.FileURI("/work/project"))
	result := c.Initialize(protocol.InitializeParams{RootURI: &root})
	if diff := cmp.Diff(caps.CompletionProvider, result.Capabilities.CompletionProvider); diff != "" {
		t.Errorf("capabilities mismatch (-want +got):\n%s", diff)
	}
	if result.ServerInfo == nil || result.ServerInfo.Name != "demo" {
		t.Errorf("server info = %+v", result.ServerInfo)
	}
	c.Sync()
	want := []protocol.WorkspaceFolder{{URI: root, Name: "project"}}
	if diff := cmp.Diff(want, s.WorkspaceFolders()); diff != "" {
		t.Errorf("folders mismatch (-want +got):\n%s", diff)
	}
}

func TestClientTreeSitter(t *testing.T) {
	s := lspeasy.NewServer(protocol.ServerCapabilities{}, nil, lspeasy.WithTreeSitter(treesitter.Builtin()))
	c := lspeasytest.NewClient(t, s)
	uri := lspeasytest.FileURI("/data.json")

	c.OpenWithLanguage(uri, "json", `{"a": [1, 2`)
	c.ChangeIncremental(uri, 2, lspeasytest.Rng(0, 11, 0, 11), "]}")
	c.Sync()

	tree := s.TreeSitter().Tree(protocol.DocumentURI(uri))
	lspeasytest.AssertNoErrors(t, tree)
	lspeasytest.AssertNodeKind(t, tree.NamedNodeAt(lspeasytest.Pos(0, 7)), "number")

	raw := lspeasytest.ParseString(t, treesitter.JSON, `[true]`)
	lspeasytest.AssertNodeKind(t, raw.RootNode().NamedChild(0), "array")
}
