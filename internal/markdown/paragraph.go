package markdown

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
)

var paragraphParser = goldmark.New().Parser()

// FirstParagraph returns the first non-blank paragraph that follows the
// document's level-1 title. Without a title it returns the document's first
// paragraph. Lines of the paragraph are trimmed and joined with "\n".
func FirstParagraph(text string) string {
	source := []byte(normalizeNewlines(text))
	doc := paragraphParser.Parse(gmtext.NewReader(source))

	seenTitle := !hasTitle(doc)
	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		if heading, ok := node.(*ast.Heading); ok && heading.Level == 1 && !seenTitle {
			seenTitle = true
			continue
		}
		if !seenTitle {
			continue
		}
		if paragraph, ok := node.(*ast.Paragraph); ok {
			if s := paragraphText(paragraph, source); s != "" {
				return s
			}
		}
	}
	return ""
}

func hasTitle(doc ast.Node) bool {
	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		if heading, ok := node.(*ast.Heading); ok && heading.Level == 1 {
			return true
		}
	}
	return false
}

func paragraphText(paragraph *ast.Paragraph, source []byte) string {
	segments := paragraph.Lines()
	lines := make([]string, 0, segments.Len())
	for i := 0; i < segments.Len(); i++ {
		segment := segments.At(i)
		if line := strings.TrimSpace(string(segment.Value(source))); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
