package treesitter

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/gossip-lsp/lspeasy/document"
	"github.com/gossip-lsp/lspeasy/protocol"
)

func setup(t *testing.T) (*document.Store, *Manager) {
	t.Helper()
	store := document.NewStore()
	m := NewManager(Builtin(), store)
	t.Cleanup(m.Close)
	return store, m
}

func open(store *document.Store, uri protocol.DocumentURI, lang, text string) *document.Document {
	return store.Open(protocol.TextDocumentItem{URI: uri, LanguageID: lang, Version: 1, Text: text})
}

func change(store *document.Store, uri protocol.DocumentURI, version int32, r protocol.Range, text string) {
	store.Change(protocol.VersionedTextDocumentIdentifier{
		TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
		Version:                version,
	}, []protocol.TextDocumentContentChangeEvent{{Range: &r, Text: text}})
}

func rng(sl, sc, el, ec uint32) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: sl, Character: sc},
		End:   protocol.Position{Line: el, Character: ec},
	}
}

func TestRegistryLookup(t *testing.T) {
	custom := JSON
	r := NewRegistry(Config{
		Languages: map[string]*tree_sitter.Language{"py": Python},
		Matchers: []LanguageMatcher{
			{Language: YAML, Filenames: []string{"Pipfile.lock"}},
			{Language: custom, LanguageID: "jsonc"},
			{Language: YAML, Pattern: "*.workflow"},
		},
	})

	tests := []struct {
		uri, languageID string
		want            *tree_sitter.Language
	}{
		{"file:///p/Pipfile.lock", "json", YAML},
		{"file:///p/settings.txt", "jsonc", custom},
		{"file:///p/build.workflow", "", YAML},
		{"file:///p/main.PY", "", Python},
	}
	for _, tt := range tests {
		got, err := r.Lookup(tt.uri, tt.languageID)
		if err != nil {
			t.Errorf("Lookup(%s): %v", tt.uri, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Lookup(%s, %q) picked the wrong language", tt.uri, tt.languageID)
		}
	}
	if r.Has("file:///p/readme.md") {
		t.Error("markdown should not be registered")
	}
}

func TestManagerParsesOnOpen(t *testing.T) {
	store, m := setup(t)
	doc := open(store, "file:///a.json", "json", `{"a": 1, "b": [true]}`)

	tree := m.Tree("file:///a.json")
	if tree == nil {
		t.Fatal("no tree after open")
	}
	if doc.Tree() != tree {
		t.Error("document does not carry the manager's tree")
	}
	if tree.RootNode().HasError() {
		t.Errorf("unexpected errors: %s", tree.RootNode().ToSexp())
	}
	if tree.Changed != nil {
		t.Errorf("full parse reported changed ranges: %v", tree.Changed)
	}

	if m.Tree("file:///notes.txt") != nil {
		t.Error("unregistered language got a tree")
	}
	open(store, "file:///notes.txt", "plaintext", "hello")
	if m.Tree("file:///notes.txt") != nil {
		t.Error("unregistered language got a tree")
	}
}

func TestManagerIncrementalReparse(t *testing.T) {
	store, m := setup(t)
	open(store, "file:///a.json", "json", "{\n  \"a\": 1\n}")

	var updates int
	m.OnUpdate(func(protocol.DocumentURI, *Tree) { updates++ })

	// Replace the value 1 with an unterminated array.
	change(store, "file:///a.json", 2, rng(1, 7, 1, 8), "[")
	broken := m.Tree("file:///a.json")
	if diags := SyntaxDiagnostics(broken); len(diags) == 0 {
		t.Fatalf("expected syntax errors in %q", broken.Source())
	}

	change(store, "file:///a.json", 3, rng(1, 7, 1, 8), "[2]")
	fixed := m.Tree("file:///a.json")
	if got := string(fixed.Source()); got != "{\n  \"a\": [2]\n}" {
		t.Fatalf("source = %q", got)
	}
	if diags := SyntaxDiagnostics(fixed); len(diags) != 0 {
		t.Errorf("unexpected diagnostics after fix: %v", diags)
	}
	if len(fixed.Changed) == 0 {
		t.Error("incremental parse reported no changed ranges")
	}
	if updates != 2 {
		t.Errorf("OnUpdate ran %d times, want 2", updates)
	}
}

func TestManagerDropsTreeOnClose(t *testing.T) {
	store, m := setup(t)
	open(store, "file:///a.py", "python", "x = 1\n")
	if m.Tree("file:///a.py") == nil {
		t.Fatal("no tree after open")
	}
	store.Close("file:///a.py")
	if m.Tree("file:///a.py") != nil {
		t.Error("tree survived close")
	}
}

func TestSyntaxDiagnosticsUTF16Range(t *testing.T) {
	store, m := setup(t)
	// The emoji takes four bytes but two UTF-16 units.
	open(store, "file:///a.json", "json", "{\"\U0001F600\": @}")

	diags := SyntaxDiagnostics(m.Tree("file:///a.json"))
	if len(diags) == 0 {
		t.Fatal("expected a syntax error")
	}
	d := diags[0]
	if d.Severity != protocol.SeverityError || d.Source != SyntaxSource {
		t.Errorf("diagnostic = %+v", d)
	}
	// '@' sits at byte 9 but UTF-16 column 7.
	if d.Range.Start.Character > 7 {
		t.Errorf("range %v uses byte columns", d.Range)
	}
}

func TestQuery(t *testing.T) {
	store, m := setup(t)
	open(store, "file:///a.json", "json", "{\"one\": 1,\n \"two\": 2}")
	tree := m.Tree("file:///a.json")

	caps, err := tree.Query(`(pair key: (string) @key)`)
	if err != nil {
		t.Fatal(err)
	}
	var keys []string
	for _, c := range caps {
		if c.Name != "key" {
			t.Errorf("capture name = %q", c.Name)
		}
		keys = append(keys, c.Text)
	}
	if diff := cmp.Diff([]string{`"one"`, `"two"`}, keys); diff != "" {
		t.Errorf("keys (-want +got):\n%s", diff)
	}

	caps, err = tree.Query(`(pair key: (string) @key)`, rng(1, 0, 1, 9))
	if err != nil {
		t.Fatal(err)
	}
	if len(caps) != 1 || caps[0].Text != `"two"` {
		t.Errorf("range-limited query = %+v", caps)
	}
	if got := tree.Range(caps[0].Node); got != rng(1, 1, 1, 6) {
		t.Errorf("Range = %v", got)
	}

	if _, err := tree.Query(`(not_a_node) @x`); err == nil {
		t.Error("expected an invalid query error")
	}

	node := tree.NamedNodeAt(protocol.Position{Line: 0, Character: 8})
	if node == nil || node.Kind() != "number" || tree.Text(node) != "1" {
		t.Errorf("NamedNodeAt = %v", node)
	}
}

func TestManagerInspect(t *testing.T) {
	store := document.NewStore()
	m := NewManager(Builtin(), store)
	t.Cleanup(m.Close)

	store.Open(protocol.TextDocumentItem{URI: "file:///p/a.json", LanguageID: "json", Version: 1, Text: `[1]`})
	var kind string
	m.Inspect("file:///p/a.json", func(tree *Tree) {
		if tree != nil {
			kind = tree.RootNode().Kind()
		}
	})
	if kind != "document" {
		t.Errorf("root kind = %q, want document", kind)
	}
	called := false
	m.Inspect("file:///p/none.json", func(tree *Tree) { called = tree == nil })
	if !called {
		t.Error("Inspect did not report a missing tree")
	}
}
