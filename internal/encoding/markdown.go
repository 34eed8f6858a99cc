package encoding

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Summary returns the text of the first non-empty paragraph of a Markdown
// document, or "" when there is none.
func Summary(in []byte) (string, error) {
	root := goldmark.New().Parser().Parse(text.NewReader(in))
	var summary string
	err := ast.Walk(root, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		p, ok := node.(*ast.Paragraph)
		if !ok {
			return ast.WalkContinue, nil
		}
		s, err := DecodeTextFromNode(p, in)
		if err != nil {
			return ast.WalkStop, err
		}
		if summary = strings.TrimSpace(s); summary != "" {
			return ast.WalkStop, nil
		}
		return ast.WalkSkipChildren, nil
	})
	if err != nil {
		return "", err
	}
	return summary, nil
}

// DecodeTextFromNode extracts text content from an AST node
func DecodeTextFromNode(node ast.Node, src []byte) (string, error) {
	var b strings.Builder
	err := ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if textNode, ok := n.(*ast.Text); ok {
				b.Write(textNode.Segment.Value(src))
				if textNode.SoftLineBreak() || textNode.HardLineBreak() {
					b.WriteByte(' ')
				}
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}
