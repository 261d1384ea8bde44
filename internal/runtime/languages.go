package runtime

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/scala"
)

// extToLanguage maps file extensions to the language tags used by the
// pattern table.
var extToLanguage = map[string]string{
	".java":  "java",
	".go":    "go",
	".py":    "python",
	".js":    "javascript",
	".mjs":   "javascript",
	".cjs":   "javascript",
	".rs":    "rust",
	".erl":   "erlang",
	".hrl":   "erlang",
	".scala": "scala",
	".sc":    "scala",
	".cpp":   "cpp",
	".cc":    "cpp",
	".cxx":   "cpp",
	".hpp":   "cpp",
	".hh":    "cpp",
	".cs":    "csharp",
}

// langToGrammar maps language tags to tree-sitter Language objects.
// Lazily initialized on first call via sync.Once. Erlang has no grammar.
var (
	langToGrammar map[string]*sitter.Language
	grammarsOnce  sync.Once
)

func initGrammars() {
	grammarsOnce.Do(func() {
		langToGrammar = map[string]*sitter.Language{
			"java":       java.GetLanguage(),
			"go":         golang.GetLanguage(),
			"python":     python.GetLanguage(),
			"javascript": javascript.GetLanguage(),
			"rust":       rust.GetLanguage(),
			"scala":      scala.GetLanguage(),
			"cpp":        cpp.GetLanguage(),
			"csharp":     csharp.GetLanguage(),
		}
	})
}

// LanguageForFile returns the language tag for a file path based on its
// extension. Returns ("", false) if the extension is not recognized.
func LanguageForFile(path string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	lang, ok := extToLanguage[ext]
	return lang, ok
}

// ParserForLanguage returns the tree-sitter Language for a language tag.
// Returns (nil, false) if no grammar is bundled for it.
func ParserForLanguage(lang string) (*sitter.Language, bool) {
	initGrammars()
	l, ok := langToGrammar[strings.ToLower(lang)]
	return l, ok
}

// SupportedLanguages returns the sorted language tags recognized by
// LanguageForFile.
func SupportedLanguages() []string {
	seen := make(map[string]bool)
	var langs []string
	for _, l := range extToLanguage {
		if !seen[l] {
			seen[l] = true
			langs = append(langs, l)
		}
	}
	sort.Strings(langs)
	return langs
}
