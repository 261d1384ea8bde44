package runtime

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
)

// SyntaxErrors parses src with the language's grammar and counts ERROR and
// MISSING nodes. The second result is false when no grammar is bundled for
// the language or parsing was cancelled.
func SyntaxErrors(ctx context.Context, lang string, src []byte) (int, bool) {
	grammar, ok := ParserForLanguage(lang)
	if !ok {
		return 0, false
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(grammar)

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return 0, false
	}

	root := tree.RootNode()
	if !root.HasError() {
		return 0, true
	}
	return countErrors(root), true
}

func countErrors(n *sitter.Node) int {
	count := 0
	if n.IsError() || n.IsMissing() {
		count++
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if child := n.Child(i); child != nil {
			count += countErrors(child)
		}
	}
	return count
}
