package lspeasytest

import (
	"strings"
	"testing"

	"github.com/gossip-lsp/lspeasy/protocol"
)

// AssertCompletionContains asserts that items contain one with the given label.
func AssertCompletionContains(t testing.TB, items []protocol.CompletionItem, label string) {
	t.Helper()
	labels := make([]string, len(items))
	for i, item := range items {
		if item.Label == label {
			return
		}
		labels[i] = item.Label
	}
	t.Errorf("completion items do not contain %q, got: %v", label, labels)
}

// AssertDiagnosticCount asserts the number of diagnostics in the latest
// publishDiagnostics for uri.
func AssertDiagnosticCount(t testing.TB, published []protocol.PublishDiagnosticsParams, uri string, count int) {
	t.Helper()
	for i := len(published) - 1; i >= 0; i-- {
		if string(published[i].URI) != uri {
			continue
		}
		if got := len(published[i].Diagnostics); got != count {
			t.Errorf("expected %d diagnostics for %s, got %d", count, uri, got)
		}
		return
	}
	if count != 0 {
		t.Errorf("no diagnostics published for %s, expected %d", uri, count)
	}
}

// AssertDiagnosticAt asserts that diags contain one covering rng whose
// message contains substr.
func AssertDiagnosticAt(t testing.TB, diags []protocol.Diagnostic, rng protocol.Range, substr string) {
	t.Helper()
	for _, d := range diags {
		if d.Range == rng && strings.Contains(d.Message, substr) {
			return
		}
	}
	t.Errorf("no diagnostic at %v containing %q in %+v", rng, substr, diags)
}

// AssertLogged asserts that a log message of the given type contains substr.
func AssertLogged(t testing.TB, logs []protocol.LogMessageParams, typ protocol.MessageType, substr string) {
	t.Helper()
	for _, l := range logs {
		if l.Type == typ && strings.Contains(l.Message, substr) {
			return
		}
	}
	t.Errorf("no %s log message containing %q in %+v", typ, substr, logs)
}
