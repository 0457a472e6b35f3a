package treesitter

import (
	"fmt"
	"path"
	"slices"
	"strings"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// Registry resolves documents to languages.
type Registry struct {
	mu         sync.RWMutex
	extensions map[string]*tree_sitter.Language
	matchers   []LanguageMatcher
}

// NewRegistry creates a registry from cfg.
func NewRegistry(cfg Config) *Registry {
	r := &Registry{
		extensions: make(map[string]*tree_sitter.Language, len(cfg.Languages)),
		matchers:   slices.Clone(cfg.Matchers),
	}
	for ext, lang := range cfg.Languages {
		r.extensions[normalizeExt(ext)] = lang
	}
	return r
}

func normalizeExt(ext string) string {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return strings.ToLower(ext)
}

// Register maps a file extension to lang.
func (r *Registry) Register(ext string, lang *tree_sitter.Language) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extensions[normalizeExt(ext)] = lang
}

// RegisterMatcher appends m to the matchers.
func (r *Registry) RegisterMatcher(m LanguageMatcher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.matchers = append(r.matchers, m)
}

// Lookup returns the language for a document. Matchers are tried by exact
// filename, then languageID, then pattern, then extension; the extension
// map comes last.
func (r *Registry) Lookup(uri, languageID string) (*tree_sitter.Language, error) {
	base := path.Base(uri)
	ext := strings.ToLower(path.Ext(base))

	r.mu.RLock()
	defer r.mu.RUnlock()

	passes := []func(m LanguageMatcher) bool{
		func(m LanguageMatcher) bool { return slices.Contains(m.Filenames, base) },
		func(m LanguageMatcher) bool { return languageID != "" && m.LanguageID == languageID },
		func(m LanguageMatcher) bool { return m.Pattern != "" && (globMatch(m.Pattern, uri) || globMatch(m.Pattern, base)) },
		func(m LanguageMatcher) bool {
			return ext != "" && slices.ContainsFunc(m.Extensions, func(e string) bool { return normalizeExt(e) == ext })
		},
	}
	for _, match := range passes {
		for _, m := range r.matchers {
			if match(m) {
				return m.Language, nil
			}
		}
	}
	if lang, ok := r.extensions[ext]; ok && ext != "" {
		return lang, nil
	}
	return nil, fmt.Errorf("no language registered for %s", uri)
}

func globMatch(pattern, name string) bool {
	ok, _ := path.Match(pattern, name)
	return ok
}

// Has reports whether a language is registered for uri.
func (r *Registry) Has(uri string) bool {
	lang, err := r.Lookup(uri, "")
	return err == nil && lang != nil
}
