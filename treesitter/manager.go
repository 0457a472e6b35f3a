package treesitter

import (
	"strings"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/gossip-lsp/lspeasy/document"
	"github.com/gossip-lsp/lspeasy/protocol"
)

// Manager owns one parser and one tree per open document of a registered
// language. It hooks into a document.Store: trees appear on open, follow
// every change and disappear on close.
type Manager struct {
	registry *Registry
	store    *document.Store

	mu       sync.Mutex
	parsers  map[protocol.DocumentURI]*tree_sitter.Parser
	trees    map[protocol.DocumentURI]*Tree
	onUpdate []func(uri protocol.DocumentURI, tree *Tree)
}

// NewManager creates a manager fed by store.
func NewManager(cfg Config, store *document.Store) *Manager {
	m := &Manager{
		registry: NewRegistry(cfg),
		store:    store,
		parsers:  make(map[protocol.DocumentURI]*tree_sitter.Parser),
		trees:    make(map[protocol.DocumentURI]*Tree),
	}
	store.OnOpen(m.open)
	store.OnClose(m.close)
	return m
}

// Registry returns the language registry.
func (m *Manager) Registry() *Registry { return m.registry }

// OnUpdate registers fn to run after every parse, on the goroutine that
// changed the document.
func (m *Manager) OnUpdate(fn func(uri protocol.DocumentURI, tree *Tree)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onUpdate = append(m.onUpdate, fn)
}

// Tree returns the current tree for uri, or nil. The tree is only stable on
// the goroutine that changes documents; elsewhere use Inspect.
func (m *Manager) Tree(uri protocol.DocumentURI) *Tree {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.trees[uri]
}

// Inspect runs fn with the current tree for uri while no reparse can edit or
// release it. fn gets nil when uri has no tree and must not keep the tree.
func (m *Manager) Inspect(uri protocol.DocumentURI, fn func(*Tree)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(m.trees[uri])
}

func (m *Manager) open(doc *document.Document) {
	uri := doc.URI()
	lang, err := m.registry.Lookup(string(uri), doc.LanguageID())
	if err != nil {
		return
	}
	parser := tree_sitter.NewParser()
	if err := parser.SetLanguage(lang); err != nil {
		parser.Close()
		return
	}

	src := []byte(doc.Text())
	tree := &Tree{raw: parser.Parse(src, nil), src: src}

	m.mu.Lock()
	if old, ok := m.parsers[uri]; ok {
		old.Close()
	}
	m.trees[uri].Close()
	m.parsers[uri] = parser
	m.trees[uri] = tree
	m.mu.Unlock()

	doc.SetTree(tree)
	doc.OnEdit(func(edits []document.EditRange) { m.reparse(doc, edits) })
	m.notify(uri, tree)
}

func (m *Manager) close(uri protocol.DocumentURI) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.parsers[uri]; ok {
		p.Close()
		delete(m.parsers, uri)
	}
	m.trees[uri].Close()
	delete(m.trees, uri)
}

// reparse replays edits onto the old tree and parses the new text reusing
// it. Edit points are computed in bytes from a running copy of the old
// source, since tree-sitter columns are byte offsets.
func (m *Manager) reparse(doc *document.Document, edits []document.EditRange) {
	uri := doc.URI()

	m.mu.Lock()
	parser, ok := m.parsers[uri]
	old := m.trees[uri]
	if !ok || old == nil || old.raw == nil {
		m.mu.Unlock()
		return
	}

	src := string(old.src)
	for _, e := range edits {
		start, oldEnd := bytePoint(src, e.StartByte), bytePoint(src, e.OldEndByte)
		src = src[:e.StartByte] + e.Text + src[e.OldEndByte:]
		old.raw.Edit(&tree_sitter.InputEdit{
			StartByte:      uint(e.StartByte),
			OldEndByte:     uint(e.OldEndByte),
			NewEndByte:     uint(e.NewEndByte),
			StartPosition:  start,
			OldEndPosition: oldEnd,
			NewEndPosition: bytePoint(src, e.NewEndByte),
		})
	}

	text := []byte(doc.Text())
	tree := &Tree{raw: parser.Parse(text, old.raw), src: text}
	for _, r := range old.raw.ChangedRanges(tree.raw) {
		tree.Changed = append(tree.Changed, tree.byteRange(r.StartByte, r.EndByte))
	}
	old.Close()
	m.trees[uri] = tree
	m.mu.Unlock()

	doc.SetTree(tree)
	m.notify(uri, tree)
}

func (m *Manager) notify(uri protocol.DocumentURI, tree *Tree) {
	m.mu.Lock()
	fns := append([]func(protocol.DocumentURI, *Tree){}, m.onUpdate...)
	m.mu.Unlock()
	for _, fn := range fns {
		fn(uri, tree)
	}
}

// bytePoint returns the tree-sitter point of a byte offset.
func bytePoint(text string, offset int) tree_sitter.Point {
	offset = max(0, min(offset, len(text)))
	lineStart := strings.LastIndexByte(text[:offset], '\n') + 1
	return tree_sitter.Point{
		Row:    uint(strings.Count(text[:offset], "\n")),
		Column: uint(offset - lineStart),
	}
}

// Close releases every parser and tree.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for uri, p := range m.parsers {
		p.Close()
		delete(m.parsers, uri)
	}
	for uri, t := range m.trees {
		t.Close()
		delete(m.trees, uri)
	}
}
