package document

import (
	"sync"

	"github.com/gossip-lsp/lspeasy/protocol"
)

// Document is one open text document.
type Document struct {
	mu         sync.RWMutex
	uri        protocol.DocumentURI
	languageID string
	version    int32
	text       string

	// tree is owned by the treesitter package; kept untyped to avoid an
	// import cycle.
	tree   any
	onEdit func(edits []EditRange)
}

// New creates a Document from a didOpen item.
func New(item protocol.TextDocumentItem) *Document {
	return &Document{
		uri:        item.URI,
		languageID: item.LanguageID,
		version:    item.Version,
		text:       item.Text,
	}
}

func (d *Document) URI() protocol.DocumentURI {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.uri
}

func (d *Document) LanguageID() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.languageID
}

func (d *Document) Version() int32 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.version
}

// Text returns the full current content.
func (d *Document) Text() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.text
}

func (d *Document) LineAt(line uint32) string { return LineAt(d.Text(), line) }

func (d *Document) WordAt(pos protocol.Position) string { return WordAt(d.Text(), pos) }

func (d *Document) OffsetAt(pos protocol.Position) int { return OffsetAt(d.Text(), pos) }

func (d *Document) PositionAt(offset int) protocol.Position { return PositionAt(d.Text(), offset) }

// Item returns the document as a protocol item snapshot.
func (d *Document) Item() protocol.TextDocumentItem {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return protocol.TextDocumentItem{URI: d.uri, LanguageID: d.languageID, Version: d.version, Text: d.text}
}

// SetTree attaches a parse tree.
func (d *Document) SetTree(tree any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tree = tree
}

// Tree returns the attached parse tree, if any.
func (d *Document) Tree() any {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.tree
}

// OnEdit sets the callback invoked after each ApplyChanges with the edits
// that were applied.
func (d *Document) OnEdit(fn func(edits []EditRange)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onEdit = fn
}

// ApplyChanges applies content changes and moves the document to version.
func (d *Document) ApplyChanges(version int32, changes []protocol.TextDocumentContentChangeEvent) []EditRange {
	d.mu.Lock()
	text, edits := ApplyChangesWithEdits(d.text, changes)
	d.text = text
	d.version = version
	cb := d.onEdit
	d.mu.Unlock()

	// Outside the lock: the callback reads Text().
	if cb != nil && len(edits) > 0 {
		cb(edits)
	}
	return edits
}
