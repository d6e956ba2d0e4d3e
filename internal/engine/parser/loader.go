package parser

import (
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"

	"cppbind/internal/shared/util"
)

// DefaultExtensions are the header extensions parsed when none are configured.
var DefaultExtensions = []string{".h", ".hh", ".hpp", ".hxx"}

// GrammarLoader owns the C++ grammar and the set of file extensions routed to
// it.
type GrammarLoader struct {
	language   *sitter.Language
	extensions map[string]bool
}

func NewGrammarLoader(extensions []string) (*GrammarLoader, error) {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	gl := &GrammarLoader{
		language:   sitter.NewLanguage(tree_sitter_cpp.Language()),
		extensions: make(map[string]bool, len(extensions)),
	}
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return nil, fmt.Errorf("invalid header extension %q: must start with '.'", ext)
		}
		gl.extensions[ext] = true
	}
	return gl, nil
}

func (gl *GrammarLoader) Language() *sitter.Language {
	return gl.language
}

func (gl *GrammarLoader) SupportedExtensions() []string {
	return util.SortedStringKeys(gl.extensions)
}
