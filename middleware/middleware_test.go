package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gossip-lsp/lspeasy/jsonrpc"
)

func request(method string) *jsonrpc.Request {
	return &jsonrpc.Request{JSONRPC: jsonrpc.Version, ID: jsonrpc.IntID(1), Method: method}
}

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next Handler) Handler {
			return func(ctx context.Context, msg jsonrpc.Message) error {
				order = append(order, name+">")
				err := next(ctx, msg)
				order = append(order, "<"+name)
				return err
			}
		}
	}
	h := Chain(mark("a"), mark("b"))(func(context.Context, jsonrpc.Message) error {
		order = append(order, "handler")
		return nil
	})
	if err := h(context.Background(), request("x")); err != nil {
		t.Fatal(err)
	}
	want := []string{"a>", "b>", "handler", "<b", "<a"}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Errorf("order (-want +got):\n%s", diff)
	}
}

func TestRecovery(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	h := Recovery(logger)(func(context.Context, jsonrpc.Message) error {
		panic("boom")
	})

	err := h(context.Background(), request("textDocument/completion"))
	if !errors.Is(err, ErrPanic) {
		t.Fatalf("err = %v, want ErrPanic", err)
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("error %q does not carry the panic value", err)
	}
	if !strings.Contains(buf.String(), "textDocument/completion") {
		t.Errorf("log does not name the method: %s", buf.String())
	}
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	failing := errors.New("no luck")
	h := Logging(logger)(func(_ context.Context, msg jsonrpc.Message) error {
		if jsonrpc.Method(msg) == "bad" {
			return failing
		}
		return nil
	})

	if err := h(context.Background(), &jsonrpc.Notification{Method: "good"}); err != nil {
		t.Fatal(err)
	}
	if err := h(context.Background(), request("bad")); !errors.Is(err, failing) {
		t.Fatalf("err = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"message handled", "method=good", "kind=notification", "message failed", "error=\"no luck\"", "id=1"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q:\n%s", want, out)
		}
	}
}

func TestTelemetry(t *testing.T) {
	metrics := NewMetrics()
	h := Telemetry(metrics)(func(_ context.Context, msg jsonrpc.Message) error {
		if jsonrpc.Method(msg) == "textDocument/diagnostic" {
			return errors.New("failed")
		}
		return nil
	})

	ctx := context.Background()
	_ = h(ctx, request("textDocument/completion"))
	_ = h(ctx, request("textDocument/completion"))
	_ = h(ctx, request("textDocument/diagnostic"))
	_ = h(ctx, &jsonrpc.Response{ID: jsonrpc.IntID(4)})

	snap := metrics.Snapshot()
	got := make(map[string][2]int64, len(snap))
	var methods []string
	for _, s := range snap {
		methods = append(methods, s.Method)
		got[s.Method] = [2]int64{s.Count, s.Errors}
		if s.MaxTime > s.TotalTime {
			t.Errorf("%s: max %v exceeds total %v", s.Method, s.MaxTime, s.TotalTime)
		}
	}
	want := map[string][2]int64{
		"$/response":              {1, 0},
		"textDocument/completion": {2, 0},
		"textDocument/diagnostic": {1, 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("metrics (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"$/response", "textDocument/completion", "textDocument/diagnostic"}, methods); diff != "" {
		t.Errorf("snapshot order (-want +got):\n%s", diff)
	}
	if (MethodSnapshot{}).Mean() != 0 {
		t.Error("Mean of an empty snapshot should be 0")
	}
}
