package treesitter

import (
	"unsafe"

	ts_yaml "github.com/tree-sitter-grammars/tree-sitter-yaml/bindings/go"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	ts_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	ts_json "github.com/tree-sitter/tree-sitter-json/bindings/go"
	ts_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// Grammars bundled with the module.
var (
	Go     = tree_sitter.NewLanguage(unsafe.Pointer(ts_go.Language()))
	JSON   = tree_sitter.NewLanguage(unsafe.Pointer(ts_json.Language()))
	Python = tree_sitter.NewLanguage(unsafe.Pointer(ts_python.Language()))
	YAML   = tree_sitter.NewLanguage(unsafe.Pointer(ts_yaml.Language()))
)

// Builtin returns a Config covering the bundled grammars, matched by
// extension and by LSP languageId.
func Builtin() Config {
	return Config{
		Matchers: []LanguageMatcher{
			{Language: Go, Extensions: []string{".go"}, LanguageID: "go"},
			{Language: JSON, Extensions: []string{".json"}, LanguageID: "json"},
			{Language: Python, Extensions: []string{".py", ".pyi"}, LanguageID: "python"},
			{Language: YAML, Extensions: []string{".yaml", ".yml"}, LanguageID: "yaml"},
		},
	}
}
