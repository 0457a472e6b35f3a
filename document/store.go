// Package document tracks the text of open documents. The lspeasy dispatcher
// feeds a Store from didOpen, didChange and didClose before the matching
// callback runs, so callbacks always observe the post-change text.
package document

import (
	"sort"
	"sync"

	"github.com/gossip-lsp/lspeasy/protocol"
)

// Store is a thread-safe set of open documents keyed by URI.
type Store struct {
	mu   sync.RWMutex
	docs map[protocol.DocumentURI]*Document

	onOpen  []func(doc *Document)
	onClose []func(uri protocol.DocumentURI)
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{docs: make(map[protocol.DocumentURI]*Document)}
}

// OnOpen registers a callback run after a document is opened. Callbacks run
// in registration order.
func (s *Store) OnOpen(fn func(doc *Document)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onOpen = append(s.onOpen, fn)
}

// OnClose registers a callback run after a document is closed.
func (s *Store) OnClose(fn func(uri protocol.DocumentURI)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onClose = append(s.onClose, fn)
}

// Get returns the document for uri, or nil.
func (s *Store) Get(uri protocol.DocumentURI) *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs[uri]
}

// URIs returns the URIs of all open documents, sorted.
func (s *Store) URIs() []protocol.DocumentURI {
	s.mu.RLock()
	uris := make([]protocol.DocumentURI, 0, len(s.docs))
	for uri := range s.docs {
		uris = append(uris, uri)
	}
	s.mu.RUnlock()
	sort.Slice(uris, func(i, j int) bool { return uris[i] < uris[j] })
	return uris
}

// Open adds or replaces a document.
func (s *Store) Open(item protocol.TextDocumentItem) *Document {
	doc := New(item)

	s.mu.Lock()
	s.docs[item.URI] = doc
	callbacks := append([]func(*Document){}, s.onOpen...)
	s.mu.Unlock()

	for _, cb := range callbacks {
		cb(doc)
	}
	return doc
}

// Change applies edits to an open document. Changes to documents that were
// never opened are ignored and nil is returned.
func (s *Store) Change(id protocol.VersionedTextDocumentIdentifier, changes []protocol.TextDocumentContentChangeEvent) *Document {
	doc := s.Get(id.URI)
	if doc != nil {
		doc.ApplyChanges(id.Version, changes)
	}
	return doc
}

// Close removes a document.
func (s *Store) Close(uri protocol.DocumentURI) {
	s.mu.Lock()
	delete(s.docs, uri)
	callbacks := append([]func(protocol.DocumentURI){}, s.onClose...)
	s.mu.Unlock()

	for _, cb := range callbacks {
		cb(uri)
	}
}
